package inventory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poscore/backend/internal/application/notification"
	"github.com/poscore/backend/internal/domain/catalog"
	"github.com/poscore/backend/internal/domain/inventory"
	"github.com/poscore/backend/internal/domain/shared"
)

// MockEventPublisher collects published events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{events: make([]shared.DomainEvent, 0)}
}

func (m *MockEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// fakeLedgerRepo is an in-memory LedgerRepository
type fakeLedgerRepo struct {
	entries []*inventory.LedgerEntry
}

func (f *fakeLedgerRepo) Append(_ context.Context, entry *inventory.LedgerEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLedgerRepo) AppendAll(_ context.Context, entries []*inventory.LedgerEntry) error {
	f.entries = append(f.entries, entries...)
	return nil
}

func (f *fakeLedgerRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*inventory.LedgerEntry, error) {
	for _, e := range f.entries {
		if e.TenantID == tenantID && e.ID == id {
			return e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeLedgerRepo) FindAll(_ context.Context, tenantID uuid.UUID, _ inventory.LedgerFilter) ([]*inventory.LedgerEntry, error) {
	result := make([]*inventory.LedgerEntry, 0)
	for _, e := range f.entries {
		if e.TenantID == tenantID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (f *fakeLedgerRepo) Count(_ context.Context, tenantID uuid.UUID, _ inventory.LedgerFilter) (int64, error) {
	var n int64
	for _, e := range f.entries {
		if e.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (f *fakeLedgerRepo) SumQuantity(_ context.Context, tenantID, productID, locationID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, e := range f.entries {
		if e.TenantID == tenantID && e.ProductID == productID && e.LocationID == locationID {
			sum = sum.Add(e.Quantity)
		}
	}
	return sum, nil
}

func (f *fakeLedgerRepo) SumByLocation(_ context.Context, tenantID, locationID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	sums := make(map[uuid.UUID]decimal.Decimal)
	for _, e := range f.entries {
		if e.TenantID == tenantID && e.LocationID == locationID {
			sums[e.ProductID] = sums[e.ProductID].Add(e.Quantity)
		}
	}
	return sums, nil
}

func (f *fakeLedgerRepo) SumAll(_ context.Context, tenantID uuid.UUID) ([]inventory.ProductLocationSum, error) {
	type key struct{ p, l uuid.UUID }
	sums := make(map[key]decimal.Decimal)
	for _, e := range f.entries {
		if e.TenantID == tenantID {
			k := key{e.ProductID, e.LocationID}
			sums[k] = sums[k].Add(e.Quantity)
		}
	}
	result := make([]inventory.ProductLocationSum, 0, len(sums))
	for k, q := range sums {
		result = append(result, inventory.ProductLocationSum{ProductID: k.p, LocationID: k.l, Quantity: q})
	}
	return result, nil
}

// fakeBatchRepo is an in-memory BatchRepository
type fakeBatchRepo struct {
	batches map[uuid.UUID]*inventory.Batch
}

func newFakeBatchRepo() *fakeBatchRepo {
	return &fakeBatchRepo{batches: make(map[uuid.UUID]*inventory.Batch)}
}

func (f *fakeBatchRepo) Save(_ context.Context, b *inventory.Batch) error {
	f.batches[b.ID] = b
	return nil
}

func (f *fakeBatchRepo) SaveWithLock(_ context.Context, b *inventory.Batch) error {
	f.batches[b.ID] = b
	return nil
}

func (f *fakeBatchRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*inventory.Batch, error) {
	if b, ok := f.batches[id]; ok && b.TenantID == tenantID {
		return b, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeBatchRepo) FindByNumber(_ context.Context, tenantID, productID, locationID uuid.UUID, number string) (*inventory.Batch, error) {
	for _, b := range f.batches {
		if b.TenantID == tenantID && b.ProductID == productID && b.LocationID == locationID && b.BatchNumber == number {
			return b, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeBatchRepo) FindByProductLocation(_ context.Context, tenantID, productID, locationID uuid.UUID) ([]*inventory.Batch, error) {
	result := make([]*inventory.Batch, 0)
	for _, b := range f.batches {
		if b.TenantID == tenantID && b.ProductID == productID && b.LocationID == locationID {
			result = append(result, b)
		}
	}
	return result, nil
}

func (f *fakeBatchRepo) FindAvailable(_ context.Context, tenantID, productID, locationID uuid.UUID, asOf time.Time) ([]*inventory.Batch, error) {
	result := make([]*inventory.Batch, 0)
	for _, b := range f.batches {
		if b.TenantID == tenantID && b.ProductID == productID && b.LocationID == locationID && b.IsAvailable(asOf) {
			result = append(result, b)
		}
	}
	return result, nil
}

func (f *fakeBatchRepo) FindExpiring(_ context.Context, tenantID uuid.UUID, before time.Time, _ shared.Filter) ([]*inventory.Batch, error) {
	result := make([]*inventory.Batch, 0)
	for _, b := range f.batches {
		if b.TenantID == tenantID && b.ExpiryDate != nil && b.ExpiryDate.Before(before) && b.Quantity.IsPositive() {
			result = append(result, b)
		}
	}
	return result, nil
}

func (f *fakeBatchRepo) FindAll(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]*inventory.Batch, error) {
	result := make([]*inventory.Batch, 0)
	for _, b := range f.batches {
		if b.TenantID == tenantID {
			result = append(result, b)
		}
	}
	return result, nil
}

// fakeStockLevelRepo is an in-memory StockLevelRepository
type fakeStockLevelRepo struct {
	levels map[string]*inventory.StockLevel
}

func newFakeStockLevelRepo() *fakeStockLevelRepo {
	return &fakeStockLevelRepo{levels: make(map[string]*inventory.StockLevel)}
}

func levelKey(tenantID, productID, locationID uuid.UUID) string {
	return tenantID.String() + "/" + productID.String() + "/" + locationID.String()
}

func (f *fakeStockLevelRepo) Save(_ context.Context, l *inventory.StockLevel) error {
	f.levels[levelKey(l.TenantID, l.ProductID, l.LocationID)] = l
	return nil
}

func (f *fakeStockLevelRepo) SaveWithLock(_ context.Context, l *inventory.StockLevel) error {
	f.levels[levelKey(l.TenantID, l.ProductID, l.LocationID)] = l
	return nil
}

func (f *fakeStockLevelRepo) Find(_ context.Context, tenantID, productID, locationID uuid.UUID) (*inventory.StockLevel, error) {
	if l, ok := f.levels[levelKey(tenantID, productID, locationID)]; ok {
		return l, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeStockLevelRepo) FindByLocation(_ context.Context, tenantID, locationID uuid.UUID, _ shared.Filter) ([]*inventory.StockLevel, error) {
	result := make([]*inventory.StockLevel, 0)
	for _, l := range f.levels {
		if l.TenantID == tenantID && l.LocationID == locationID {
			result = append(result, l)
		}
	}
	return result, nil
}

func (f *fakeStockLevelRepo) FindByProduct(_ context.Context, tenantID, productID uuid.UUID) ([]*inventory.StockLevel, error) {
	result := make([]*inventory.StockLevel, 0)
	for _, l := range f.levels {
		if l.TenantID == tenantID && l.ProductID == productID {
			result = append(result, l)
		}
	}
	return result, nil
}

func (f *fakeStockLevelRepo) DeleteByTenant(_ context.Context, tenantID uuid.UUID) error {
	for k, l := range f.levels {
		if l.TenantID == tenantID {
			delete(f.levels, k)
		}
	}
	return nil
}

// fakeCatalogRepo serves products for reorder checks
type fakeCatalogRepo struct {
	products map[uuid.UUID]*catalog.Product
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{products: make(map[uuid.UUID]*catalog.Product)}
}

func (f *fakeCatalogRepo) Save(_ context.Context, p *catalog.Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *fakeCatalogRepo) SaveWithLock(_ context.Context, p *catalog.Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *fakeCatalogRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	if p, ok := f.products[id]; ok && p.TenantID == tenantID {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeCatalogRepo) FindBySKU(_ context.Context, tenantID uuid.UUID, sku string) (*catalog.Product, error) {
	for _, p := range f.products {
		if p.TenantID == tenantID && p.SKU == sku {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeCatalogRepo) FindAll(context.Context, uuid.UUID, shared.Filter) ([]*catalog.Product, error) {
	return nil, nil
}

func (f *fakeCatalogRepo) Search(context.Context, uuid.UUID, string, shared.Filter) ([]*catalog.Product, error) {
	return nil, nil
}

func (f *fakeCatalogRepo) Count(context.Context, uuid.UUID) (int64, error) { return 0, nil }

func (f *fakeCatalogRepo) ExistsBySKU(context.Context, uuid.UUID, string) (bool, error) {
	return false, nil
}

// fakeNotifier collects notifications
type fakeNotifier struct {
	messages []notification.Message
}

func (f *fakeNotifier) Notify(_ context.Context, msg notification.Message) error {
	f.messages = append(f.messages, msg)
	return nil
}

type serviceFixture struct {
	service    *Service
	ledgerRepo *fakeLedgerRepo
	batchRepo  *fakeBatchRepo
	levelRepo  *fakeStockLevelRepo
	catalog    *fakeCatalogRepo
	publisher  *MockEventPublisher
	notifier   *fakeNotifier
	tenantID   uuid.UUID
	actorID    uuid.UUID
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	ledgerRepo := &fakeLedgerRepo{}
	batchRepo := newFakeBatchRepo()
	levelRepo := newFakeStockLevelRepo()
	catalogRepo := newFakeCatalogRepo()
	publisher := NewMockEventPublisher()
	notifier := &fakeNotifier{}

	svc := NewService(NewNoOpTransactionScope(ledgerRepo, batchRepo, levelRepo), catalogRepo)
	svc.SetEventPublisher(publisher)
	svc.SetNotifier(notifier)

	return &serviceFixture{
		service:    svc,
		ledgerRepo: ledgerRepo,
		batchRepo:  batchRepo,
		levelRepo:  levelRepo,
		catalog:    catalogRepo,
		publisher:  publisher,
		notifier:   notifier,
		tenantID:   uuid.New(),
		actorID:    uuid.New(),
	}
}

func (fx *serviceFixture) receive(t *testing.T, productID, locationID uuid.UUID, number string, qty int64, expiry *time.Time) *BatchResponse {
	t.Helper()
	resp, err := fx.service.ReceiveBatch(context.Background(), fx.tenantID, fx.actorID, ReceiveBatchRequest{
		ProductID:   productID,
		LocationID:  locationID,
		BatchNumber: number,
		Quantity:    decimal.NewFromInt(qty),
		ExpiryDate:  expiry,
	})
	require.NoError(t, err)
	return resp
}

func TestService_ReceiveBatch(t *testing.T) {
	fx := newFixture(t)
	productID := uuid.New()
	locationID := uuid.New()

	resp := fx.receive(t, productID, locationID, "B-001", 50, nil)
	assert.Equal(t, "AVAILABLE", resp.Status)

	// founding IN entry written
	require.Len(t, fx.ledgerRepo.entries, 1)
	entry := fx.ledgerRepo.entries[0]
	assert.Equal(t, inventory.EntryTypeIn, entry.EntryType)
	assert.True(t, entry.Quantity.Equal(decimal.NewFromInt(50)))
	require.NotNil(t, entry.BatchID)
	assert.Equal(t, resp.ID, *entry.BatchID)

	// cache updated
	level, err := fx.levelRepo.Find(context.Background(), fx.tenantID, productID, locationID)
	require.NoError(t, err)
	assert.True(t, level.Quantity.Equal(decimal.NewFromInt(50)))

	// duplicate batch number rejected
	_, err = fx.service.ReceiveBatch(context.Background(), fx.tenantID, fx.actorID, ReceiveBatchRequest{
		ProductID:   productID,
		LocationID:  locationID,
		BatchNumber: "B-001",
		Quantity:    decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	// the same number at another location is a different batch
	elsewhere := fx.receive(t, productID, uuid.New(), "B-001", 10, nil)
	assert.NotEqual(t, resp.ID, elsewhere.ID)
}

func TestService_ReceiveBatch_ManufactureDate(t *testing.T) {
	fx := newFixture(t)
	made := time.Now().Add(-48 * time.Hour)

	resp, err := fx.service.ReceiveBatch(context.Background(), fx.tenantID, fx.actorID, ReceiveBatchRequest{
		ProductID:       uuid.New(),
		LocationID:      uuid.New(),
		BatchNumber:     "B-010",
		Quantity:        decimal.NewFromInt(20),
		ManufactureDate: &made,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.ManufactureDate)
	assert.True(t, resp.ManufactureDate.Equal(made))
}

func TestService_RecordSale(t *testing.T) {
	fx := newFixture(t)
	productID := uuid.New()
	locationID := uuid.New()

	soon := time.Now().Add(24 * time.Hour)
	later := time.Now().Add(72 * time.Hour)
	first := fx.receive(t, productID, locationID, "B-001", 5, &soon)
	second := fx.receive(t, productID, locationID, "B-002", 10, &later)
	saleID := uuid.New()

	entries, err := fx.service.RecordSale(context.Background(), fx.tenantID, fx.actorID, MovementRequest{
		ProductID:   productID,
		LocationID:  locationID,
		Quantity:    decimal.NewFromInt(8),
		ReferenceID: &saleID,
	})
	require.NoError(t, err)

	// earliest expiry consumed first, remainder from the next batch
	require.Len(t, entries, 2)
	assert.Equal(t, first.ID, *entries[0].BatchID)
	assert.True(t, entries[0].Quantity.Equal(decimal.NewFromInt(-5)))
	assert.Equal(t, second.ID, *entries[1].BatchID)
	assert.True(t, entries[1].Quantity.Equal(decimal.NewFromInt(-3)))
	assert.Equal(t, "SALE", entries[0].EntryType)

	level, err := fx.levelRepo.Find(context.Background(), fx.tenantID, productID, locationID)
	require.NoError(t, err)
	assert.True(t, level.Quantity.Equal(decimal.NewFromInt(7)))

	firstBatch, err := fx.batchRepo.FindByID(context.Background(), fx.tenantID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.BatchStatusDepleted, firstBatch.Status)
}

func TestService_RecordSale_InsufficientStock(t *testing.T) {
	fx := newFixture(t)
	productID := uuid.New()
	locationID := uuid.New()
	fx.receive(t, productID, locationID, "B-001", 5, nil)

	_, err := fx.service.RecordSale(context.Background(), fx.tenantID, fx.actorID, MovementRequest{
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   decimal.NewFromInt(6),
	})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
}

func TestService_RecordSale_LowStockAlert(t *testing.T) {
	fx := newFixture(t)
	locationID := uuid.New()

	product, err := catalog.NewProduct(fx.tenantID, "BRD-001", "Sourdough Loaf", catalog.UnitPiece)
	require.NoError(t, err)
	require.NoError(t, product.SetReorderLevel(decimal.NewFromInt(10)))
	require.NoError(t, fx.catalog.Save(context.Background(), product))

	fx.receive(t, product.ID, locationID, "B-001", 12, nil)

	_, err = fx.service.RecordSale(context.Background(), fx.tenantID, fx.actorID, MovementRequest{
		ProductID:  product.ID,
		LocationID: locationID,
		Quantity:   decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	require.Len(t, fx.notifier.messages, 1)
	assert.Equal(t, notification.TopicLowStock, fx.notifier.messages[0].Topic)
	assert.Len(t, fx.publisher.GetEventsByType(inventory.EventTypeStockBelowReorder), 1)
}

func TestService_AdjustStock(t *testing.T) {
	fx := newFixture(t)
	productID := uuid.New()
	locationID := uuid.New()
	fx.receive(t, productID, locationID, "B-001", 10, nil)

	t.Run("reason required", func(t *testing.T) {
		_, err := fx.service.AdjustStock(context.Background(), fx.tenantID, fx.actorID, AdjustStockRequest{
			ProductID:  productID,
			LocationID: locationID,
			Quantity:   decimal.NewFromInt(-2),
		})
		assert.Error(t, err)
	})

	t.Run("negative adjustment", func(t *testing.T) {
		resp, err := fx.service.AdjustStock(context.Background(), fx.tenantID, fx.actorID, AdjustStockRequest{
			ProductID:  productID,
			LocationID: locationID,
			Quantity:   decimal.NewFromInt(-2),
			Reason:     "shelf count short",
		})
		require.NoError(t, err)
		assert.Equal(t, "ADJUST", resp.EntryType)

		level, err := fx.levelRepo.Find(context.Background(), fx.tenantID, productID, locationID)
		require.NoError(t, err)
		assert.True(t, level.Quantity.Equal(decimal.NewFromInt(8)))
	})

	t.Run("cannot go below zero", func(t *testing.T) {
		_, err := fx.service.AdjustStock(context.Background(), fx.tenantID, fx.actorID, AdjustStockRequest{
			ProductID:  productID,
			LocationID: locationID,
			Quantity:   decimal.NewFromInt(-100),
			Reason:     "typo",
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("batch of another product rejected", func(t *testing.T) {
		other := fx.receive(t, uuid.New(), locationID, "B-002", 5, nil)

		_, err := fx.service.AdjustStock(context.Background(), fx.tenantID, fx.actorID, AdjustStockRequest{
			ProductID:  productID,
			LocationID: locationID,
			Quantity:   decimal.NewFromInt(2),
			Reason:     "recount",
			BatchID:    &other.ID,
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "BATCH_MISMATCH", domainErr.Code)
	})

	t.Run("batch at another location rejected", func(t *testing.T) {
		elsewhere := fx.receive(t, productID, uuid.New(), "B-003", 5, nil)

		_, err := fx.service.AdjustStock(context.Background(), fx.tenantID, fx.actorID, AdjustStockRequest{
			ProductID:  productID,
			LocationID: locationID,
			Quantity:   decimal.NewFromInt(2),
			Reason:     "recount",
			BatchID:    &elsewhere.ID,
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "BATCH_MISMATCH", domainErr.Code)
	})
}

func TestService_VoidSaleAndReturn(t *testing.T) {
	fx := newFixture(t)
	productID := uuid.New()
	locationID := uuid.New()
	fx.receive(t, productID, locationID, "B-001", 10, nil)
	saleID := uuid.New()

	_, err := fx.service.RecordSale(context.Background(), fx.tenantID, fx.actorID, MovementRequest{
		ProductID:   productID,
		LocationID:  locationID,
		Quantity:    decimal.NewFromInt(4),
		ReferenceID: &saleID,
	})
	require.NoError(t, err)

	resp, err := fx.service.VoidSale(context.Background(), fx.tenantID, fx.actorID, MovementRequest{
		ProductID:   productID,
		LocationID:  locationID,
		Quantity:    decimal.NewFromInt(4),
		ReferenceID: &saleID,
	})
	require.NoError(t, err)
	assert.Equal(t, "SALE_VOID", resp.EntryType)

	level, err := fx.levelRepo.Find(context.Background(), fx.tenantID, productID, locationID)
	require.NoError(t, err)
	assert.True(t, level.Quantity.Equal(decimal.NewFromInt(10)))
}

func TestService_GetOnHand_FallsBackToLedger(t *testing.T) {
	fx := newFixture(t)
	productID := uuid.New()
	locationID := uuid.New()
	fx.receive(t, productID, locationID, "B-001", 20, nil)

	// drop the cache; the ledger still answers
	require.NoError(t, fx.levelRepo.DeleteByTenant(context.Background(), fx.tenantID))

	resp, err := fx.service.GetOnHand(context.Background(), fx.tenantID, productID, locationID)
	require.NoError(t, err)
	assert.True(t, resp.Quantity.Equal(decimal.NewFromInt(20)))
}

func TestService_GetTotalOnHand_SumsAcrossLocations(t *testing.T) {
	fx := newFixture(t)
	productID := uuid.New()
	storesID := uuid.New()
	shopID := uuid.New()
	fx.receive(t, productID, storesID, "B-001", 30, nil)
	fx.receive(t, productID, shopID, "B-002", 12, nil)

	resp, err := fx.service.GetTotalOnHand(context.Background(), fx.tenantID, productID)
	require.NoError(t, err)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(42)))
	assert.Len(t, resp.Locations, 2)

	// a product with no stock sums to zero
	empty, err := fx.service.GetTotalOnHand(context.Background(), fx.tenantID, uuid.New())
	require.NoError(t, err)
	assert.True(t, empty.Total.IsZero())
	assert.Empty(t, empty.Locations)
}

func TestService_RebuildStockLevels(t *testing.T) {
	fx := newFixture(t)
	productID := uuid.New()
	locationID := uuid.New()
	fx.receive(t, productID, locationID, "B-001", 20, nil)
	_, err := fx.service.RecordSale(context.Background(), fx.tenantID, fx.actorID, MovementRequest{
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   decimal.NewFromInt(3),
	})
	require.NoError(t, err)

	// corrupt the cache
	level, err := fx.levelRepo.Find(context.Background(), fx.tenantID, productID, locationID)
	require.NoError(t, err)
	level.Quantity = decimal.NewFromInt(999)

	rebuilt, err := fx.service.RebuildStockLevels(context.Background(), fx.tenantID)
	require.NoError(t, err)
	assert.Equal(t, 1, rebuilt)

	level, err = fx.levelRepo.Find(context.Background(), fx.tenantID, productID, locationID)
	require.NoError(t, err)
	assert.True(t, level.Quantity.Equal(decimal.NewFromInt(17)))
}
