package request

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poscore/backend/internal/application/notification"
	"github.com/poscore/backend/internal/domain/catalog"
	"github.com/poscore/backend/internal/domain/location"
	"github.com/poscore/backend/internal/domain/request"
	"github.com/poscore/backend/internal/domain/shared"
	"github.com/poscore/backend/internal/domain/transfer"
)

// fakeRequestRepo is an in-memory request.Repository
type fakeRequestRepo struct {
	requests map[uuid.UUID]*request.StockRequest
	sequence int
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[uuid.UUID]*request.StockRequest)}
}

func (f *fakeRequestRepo) Save(_ context.Context, r *request.StockRequest) error {
	f.requests[r.ID] = r
	return nil
}

func (f *fakeRequestRepo) SaveWithLock(_ context.Context, r *request.StockRequest) error {
	f.requests[r.ID] = r
	return nil
}

func (f *fakeRequestRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*request.StockRequest, error) {
	if r, ok := f.requests[id]; ok && r.TenantID == tenantID {
		return r, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeRequestRepo) FindByNumber(_ context.Context, tenantID uuid.UUID, number string) (*request.StockRequest, error) {
	for _, r := range f.requests {
		if r.TenantID == tenantID && r.RequestNumber == number {
			return r, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeRequestRepo) FindAll(_ context.Context, tenantID uuid.UUID, _ request.Filter) ([]*request.StockRequest, error) {
	result := make([]*request.StockRequest, 0)
	for _, r := range f.requests {
		if r.TenantID == tenantID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (f *fakeRequestRepo) Count(_ context.Context, tenantID uuid.UUID, _ request.Filter) (int64, error) {
	var n int64
	for _, r := range f.requests {
		if r.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRequestRepo) GenerateRequestNumber(context.Context, uuid.UUID) (string, error) {
	f.sequence++
	return fmt.Sprintf("REQ%06d", f.sequence), nil
}

// fakeTransferRepo records transfers created by conversion
type fakeTransferRepo struct {
	transfers map[uuid.UUID]*transfer.Transfer
	sequence  int
}

func newFakeTransferRepo() *fakeTransferRepo {
	return &fakeTransferRepo{transfers: make(map[uuid.UUID]*transfer.Transfer)}
}

func (f *fakeTransferRepo) Save(_ context.Context, t *transfer.Transfer) error {
	f.transfers[t.ID] = t
	return nil
}

func (f *fakeTransferRepo) SaveWithLock(_ context.Context, t *transfer.Transfer) error {
	f.transfers[t.ID] = t
	return nil
}

func (f *fakeTransferRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*transfer.Transfer, error) {
	if t, ok := f.transfers[id]; ok && t.TenantID == tenantID {
		return t, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeTransferRepo) FindByNumber(context.Context, uuid.UUID, string) (*transfer.Transfer, error) {
	return nil, shared.ErrNotFound
}

func (f *fakeTransferRepo) FindAll(context.Context, uuid.UUID, transfer.Filter) ([]*transfer.Transfer, error) {
	return nil, nil
}

func (f *fakeTransferRepo) Count(context.Context, uuid.UUID, transfer.Filter) (int64, error) {
	return 0, nil
}

func (f *fakeTransferRepo) GenerateTransferNumber(context.Context, uuid.UUID) (string, error) {
	f.sequence++
	return fmt.Sprintf("TRF%06d", f.sequence), nil
}

// fakeLocationRepo serves locations by ID
type fakeLocationRepo struct {
	locations map[uuid.UUID]*location.Location
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{locations: make(map[uuid.UUID]*location.Location)}
}

func (f *fakeLocationRepo) Save(_ context.Context, l *location.Location) error {
	f.locations[l.ID] = l
	return nil
}

func (f *fakeLocationRepo) SaveWithLock(_ context.Context, l *location.Location) error {
	f.locations[l.ID] = l
	return nil
}

func (f *fakeLocationRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*location.Location, error) {
	if l, ok := f.locations[id]; ok && l.TenantID == tenantID {
		return l, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeLocationRepo) FindByName(context.Context, uuid.UUID, string) (*location.Location, error) {
	return nil, shared.ErrNotFound
}

func (f *fakeLocationRepo) FindAll(context.Context, uuid.UUID, shared.Filter) ([]*location.Location, error) {
	return nil, nil
}

func (f *fakeLocationRepo) FindByType(context.Context, uuid.UUID, location.LocationType, shared.Filter) ([]*location.Location, error) {
	return nil, nil
}

func (f *fakeLocationRepo) Count(context.Context, uuid.UUID) (int64, error) { return 0, nil }

// fakeCatalogRepo serves products by ID
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

func (f *fakeCatalogRepo) FindBySKU(context.Context, uuid.UUID, string) (*catalog.Product, error) {
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

type fixture struct {
	service      *Service
	requestRepo  *fakeRequestRepo
	transferRepo *fakeTransferRepo
	notifier     *fakeNotifier
	tenantID     uuid.UUID
	actorID      uuid.UUID
	shop         *location.Location
	stores       *location.Location
	product      *catalog.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tenantID := uuid.New()

	requestRepo := newFakeRequestRepo()
	transferRepo := newFakeTransferRepo()
	locationRepo := newFakeLocationRepo()
	catalogRepo := newFakeCatalogRepo()
	notifier := &fakeNotifier{}

	shop, err := location.NewLocation(tenantID, "Shop 1", location.LocationTypeShop)
	require.NoError(t, err)
	stores, err := location.NewLocation(tenantID, "Central Stores", location.LocationTypeStores)
	require.NoError(t, err)
	require.NoError(t, locationRepo.Save(context.Background(), shop))
	require.NoError(t, locationRepo.Save(context.Background(), stores))

	product, err := catalog.NewProduct(tenantID, "BRD-001", "Sourdough Loaf", catalog.UnitPiece)
	require.NoError(t, err)
	require.NoError(t, catalogRepo.Save(context.Background(), product))

	svc := NewService(NewNoOpTransactionScope(requestRepo, transferRepo), locationRepo, catalogRepo)
	svc.SetNotifier(notifier)

	return &fixture{
		service:      svc,
		requestRepo:  requestRepo,
		transferRepo: transferRepo,
		notifier:     notifier,
		tenantID:     tenantID,
		actorID:      uuid.New(),
		shop:         shop,
		stores:       stores,
		product:      product,
	}
}

func (fx *fixture) create(t *testing.T, qty int64) *RequestResponse {
	t.Helper()
	resp, err := fx.service.Create(context.Background(), fx.tenantID, fx.actorID, CreateRequest{
		RequesterID: fx.shop.ID,
		SupplierID:  fx.stores.ID,
		Items:       []ItemRequest{{ProductID: fx.product.ID, Quantity: decimal.NewFromInt(qty)}},
	})
	require.NoError(t, err)
	return resp
}

func TestService_Create(t *testing.T) {
	fx := newFixture(t)

	resp := fx.create(t, 12)
	assert.Equal(t, "REQ000001", resp.RequestNumber)
	assert.Equal(t, "PENDING", resp.Status)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "BRD-001", resp.Items[0].ProductSKU)

	// supplier side gets alerted
	require.Len(t, fx.notifier.messages, 1)
	assert.Equal(t, notification.TopicRequestPending, fx.notifier.messages[0].Topic)
}

func TestService_Create_InvalidDirection(t *testing.T) {
	fx := newFixture(t)

	// a shop cannot source directly from another shop
	other, err := location.NewLocation(fx.tenantID, "Shop 2", location.LocationTypeShop)
	require.NoError(t, err)
	require.NoError(t, fx.service.locationRepo.Save(context.Background(), other))

	_, err = fx.service.Create(context.Background(), fx.tenantID, fx.actorID, CreateRequest{
		RequesterID: fx.shop.ID,
		SupplierID:  other.ID,
		Items:       []ItemRequest{{ProductID: fx.product.ID, Quantity: decimal.NewFromInt(1)}},
	})
	assert.Error(t, err)
}

func TestService_ApproveRejectCancel(t *testing.T) {
	fx := newFixture(t)

	t.Run("approve", func(t *testing.T) {
		created := fx.create(t, 5)
		resp, err := fx.service.Approve(context.Background(), fx.tenantID, fx.actorID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "APPROVED", resp.Status)
		assert.NotNil(t, resp.DecidedAt)
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		created := fx.create(t, 5)
		_, err := fx.service.Reject(context.Background(), fx.tenantID, fx.actorID, created.ID, RejectRequest{})
		assert.Error(t, err)

		resp, err := fx.service.Reject(context.Background(), fx.tenantID, fx.actorID, created.ID, RejectRequest{Reason: "out of season"})
		require.NoError(t, err)
		assert.Equal(t, "REJECTED", resp.Status)
		assert.Equal(t, "out of season", resp.RejectReason)
	})

	t.Run("cancel", func(t *testing.T) {
		created := fx.create(t, 5)
		resp, err := fx.service.Cancel(context.Background(), fx.tenantID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", resp.Status)
	})

	t.Run("decided requests cannot be approved again", func(t *testing.T) {
		created := fx.create(t, 5)
		_, err := fx.service.Cancel(context.Background(), fx.tenantID, created.ID)
		require.NoError(t, err)
		_, err = fx.service.Approve(context.Background(), fx.tenantID, fx.actorID, created.ID)
		assert.Error(t, err)
	})
}

func TestService_Convert(t *testing.T) {
	fx := newFixture(t)
	created := fx.create(t, 12)
	_, err := fx.service.Approve(context.Background(), fx.tenantID, fx.actorID, created.ID)
	require.NoError(t, err)

	resp, err := fx.service.Convert(context.Background(), fx.tenantID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "CONVERTED", resp.Status)
	require.NotNil(t, resp.TransferID)

	// draft transfer runs supplier to requester
	tr, err := fx.transferRepo.FindByID(context.Background(), fx.tenantID, *resp.TransferID)
	require.NoError(t, err)
	assert.Equal(t, "TRF000001", tr.TransferNumber)
	assert.Equal(t, transfer.StatusDraft, tr.Status)
	assert.Equal(t, fx.stores.ID, tr.SourceID)
	assert.Equal(t, fx.shop.ID, tr.DestinationID)
	require.Len(t, tr.Items, 1)
	assert.True(t, tr.Items[0].QuantityRequested.Equal(decimal.NewFromInt(12)))
}

func TestService_Convert_ZeroQuantityBecomesOne(t *testing.T) {
	fx := newFixture(t)
	created := fx.create(t, 0)
	_, err := fx.service.Approve(context.Background(), fx.tenantID, fx.actorID, created.ID)
	require.NoError(t, err)

	resp, err := fx.service.Convert(context.Background(), fx.tenantID, created.ID)
	require.NoError(t, err)

	tr, err := fx.transferRepo.FindByID(context.Background(), fx.tenantID, *resp.TransferID)
	require.NoError(t, err)
	require.Len(t, tr.Items, 1)
	assert.True(t, tr.Items[0].QuantityRequested.Equal(decimal.NewFromInt(1)))
}

func TestService_Convert_RequiresApproval(t *testing.T) {
	fx := newFixture(t)
	created := fx.create(t, 3)

	_, err := fx.service.Convert(context.Background(), fx.tenantID, created.ID)
	assert.Error(t, err)
}
