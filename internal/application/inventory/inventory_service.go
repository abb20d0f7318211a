package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poscore/backend/internal/application/notification"
	"github.com/poscore/backend/internal/domain/catalog"
	"github.com/poscore/backend/internal/domain/inventory"
	"github.com/poscore/backend/internal/domain/shared"
)

// Service handles stock movement operations. Every movement appends a
// ledger entry and folds it into the stock level cache inside one
// transaction; the ledger remains the source of truth.
type Service struct {
	txScope        TransactionScope
	catalogRepo    catalog.Repository
	eventPublisher shared.EventPublisher
	notifier       notification.Notifier
	clock          shared.Clock
	lowStockAlerts bool
}

// NewService creates a new inventory Service
func NewService(txScope TransactionScope, catalogRepo catalog.Repository) *Service {
	return &Service{
		txScope:        txScope,
		catalogRepo:    catalogRepo,
		notifier:       notification.NoOpNotifier{},
		clock:          shared.SystemClock{},
		lowStockAlerts: true,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetNotifier sets the notifier for operational alerts
func (s *Service) SetNotifier(notifier notification.Notifier) {
	s.notifier = notifier
}

// SetClock overrides the time source
func (s *Service) SetClock(clock shared.Clock) {
	s.clock = clock
}

// SetLowStockAlerts toggles reorder-level alerting on stock decreases
func (s *Service) SetLowStockAlerts(enabled bool) {
	s.lowStockAlerts = enabled
}

// publishDomainEvents publishes and clears pending events. Errors are
// handled by the event bus, not propagated.
func (s *Service) publishDomainEvents(ctx context.Context, aggregates ...shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	for _, agg := range aggregates {
		events := agg.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		_ = s.eventPublisher.Publish(ctx, events...)
		agg.ClearDomainEvents()
	}
}

// ReceiveBatch records goods arriving from outside the system: a new
// batch plus its founding IN ledger entry, committed atomically.
func (s *Service) ReceiveBatch(ctx context.Context, tenantID, actorID uuid.UUID, req ReceiveBatchRequest) (*BatchResponse, error) {
	now := s.clock.Now()

	batch, err := inventory.NewBatch(tenantID, req.ProductID, req.LocationID, req.BatchNumber, req.Quantity, now)
	if err != nil {
		return nil, err
	}
	if req.ExpiryDate != nil {
		batch.WithExpiry(*req.ExpiryDate)
		batch.RefreshStatus(now)
	}
	if req.ManufactureDate != nil {
		batch.WithManufactureDate(*req.ManufactureDate)
	}
	if !req.UnitCost.IsZero() {
		if req.UnitCost.IsNegative() {
			return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
		}
		batch.WithUnitCost(req.UnitCost)
	}
	batch.SetCreatedBy(actorID)

	entry, err := inventory.NewLedgerEntry(tenantID, req.ProductID, req.LocationID, inventory.EntryTypeIn, req.Quantity, now)
	if err != nil {
		return nil, err
	}
	entry.WithBatch(batch.ID).WithReference(inventory.ReferenceKindBatch, batch.ID)
	entry.SetCreatedBy(actorID)

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.BatchRepo().FindByNumber(ctx, tenantID, req.ProductID, req.LocationID, batch.BatchNumber)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			return shared.ErrAlreadyExists
		}
		if err := repos.BatchRepo().Save(ctx, batch); err != nil {
			return err
		}
		if err := repos.LedgerRepo().Append(ctx, entry); err != nil {
			return err
		}
		_, err = s.applyToStockLevel(ctx, repos, tenantID, req.ProductID, req.LocationID, req.Quantity)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, batch, entry)

	resp := ToBatchResponse(batch)
	return &resp, nil
}

// AdjustStock corrects the on-hand figure by a signed quantity. A
// reason is mandatory; negative adjustments cannot take the balance
// below zero.
func (s *Service) AdjustStock(ctx context.Context, tenantID, actorID uuid.UUID, req AdjustStockRequest) (*LedgerEntryResponse, error) {
	if req.Reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Adjustment reason is required")
	}
	now := s.clock.Now()

	entry, err := inventory.NewLedgerEntry(tenantID, req.ProductID, req.LocationID, inventory.EntryTypeAdjust, req.Quantity, now)
	if err != nil {
		return nil, err
	}
	entry.WithReference(inventory.ReferenceKindAdjustment, entry.ID).WithReason(req.Reason)
	entry.SetCreatedBy(actorID)

	var onHand decimal.Decimal
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if req.Quantity.IsNegative() {
			level, err := s.findLevel(ctx, repos, tenantID, req.ProductID, req.LocationID)
			if err != nil {
				return err
			}
			if level.Quantity.Add(req.Quantity).IsNegative() {
				return shared.ErrInsufficientStock
			}
		}
		if req.BatchID != nil {
			batch, err := repos.BatchRepo().FindByID(ctx, tenantID, *req.BatchID)
			if err != nil {
				return err
			}
			if batch.ProductID != req.ProductID || batch.LocationID != req.LocationID {
				return shared.NewDomainError("BATCH_MISMATCH", "Batch does not hold this product at this location")
			}
			entry.WithBatch(batch.ID)
			if req.Quantity.IsNegative() {
				if err := batch.Deduct(req.Quantity.Neg(), now); err != nil {
					return err
				}
			} else {
				if err := batch.Add(req.Quantity, now); err != nil {
					return err
				}
			}
			if err := repos.BatchRepo().SaveWithLock(ctx, batch); err != nil {
				return err
			}
		}
		if err := repos.LedgerRepo().Append(ctx, entry); err != nil {
			return err
		}
		var err error
		onHand, err = s.applyToStockLevel(ctx, repos, tenantID, req.ProductID, req.LocationID, req.Quantity)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, entry)
	if req.Quantity.IsNegative() {
		s.checkReorder(ctx, tenantID, req.ProductID, req.LocationID, onHand)
	}

	resp := ToLedgerEntryResponse(entry)
	return &resp, nil
}

// RecordSale records stock sold at a shop. Quantity is drawn from
// batches first-expired-first-out; any remainder not covered by a
// tracked batch is recorded unbatched as long as the aggregate on-hand
// figure covers it.
func (s *Service) RecordSale(ctx context.Context, tenantID, actorID uuid.UUID, req MovementRequest) ([]LedgerEntryResponse, error) {
	return s.recordDecrease(ctx, tenantID, actorID, req, inventory.EntryTypeSale, inventory.ReferenceKindSale)
}

// RecordDamage writes off damaged or spoiled stock
func (s *Service) RecordDamage(ctx context.Context, tenantID, actorID uuid.UUID, req MovementRequest) ([]LedgerEntryResponse, error) {
	if req.Reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Damage reason is required")
	}
	return s.recordDecrease(ctx, tenantID, actorID, req, inventory.EntryTypeDamage, inventory.ReferenceKindAdjustment)
}

// VoidSale restores the quantity of a voided sale
func (s *Service) VoidSale(ctx context.Context, tenantID, actorID uuid.UUID, req MovementRequest) (*LedgerEntryResponse, error) {
	return s.recordIncrease(ctx, tenantID, actorID, req, inventory.EntryTypeSaleVoid, inventory.ReferenceKindSale)
}

// RecordReturn records a customer return coming back into stock
func (s *Service) RecordReturn(ctx context.Context, tenantID, actorID uuid.UUID, req MovementRequest) (*LedgerEntryResponse, error) {
	return s.recordIncrease(ctx, tenantID, actorID, req, inventory.EntryTypeReturn, inventory.ReferenceKindSale)
}

// RecordProduction records finished goods produced at a production facility
func (s *Service) RecordProduction(ctx context.Context, tenantID, actorID uuid.UUID, req MovementRequest) (*LedgerEntryResponse, error) {
	return s.recordIncrease(ctx, tenantID, actorID, req, inventory.EntryTypeProduction, inventory.ReferenceKindProduction)
}

// recordIncrease appends one positive entry and updates the cache
func (s *Service) recordIncrease(
	ctx context.Context,
	tenantID, actorID uuid.UUID,
	req MovementRequest,
	entryType inventory.EntryType,
	refKind inventory.ReferenceKind,
) (*LedgerEntryResponse, error) {
	if !req.Quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	now := s.clock.Now()

	entry, err := inventory.NewLedgerEntry(tenantID, req.ProductID, req.LocationID, entryType, req.Quantity, now)
	if err != nil {
		return nil, err
	}
	if req.ReferenceID != nil {
		entry.WithReference(refKind, *req.ReferenceID)
	}
	if req.Reason != "" {
		entry.WithReason(req.Reason)
	}
	entry.SetCreatedBy(actorID)

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.LedgerRepo().Append(ctx, entry); err != nil {
			return err
		}
		_, err := s.applyToStockLevel(ctx, repos, tenantID, req.ProductID, req.LocationID, req.Quantity)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, entry)

	resp := ToLedgerEntryResponse(entry)
	return &resp, nil
}

// recordDecrease appends negative entries drawn FEFO from batches and
// updates the cache, rejecting movements that would go below zero
func (s *Service) recordDecrease(
	ctx context.Context,
	tenantID, actorID uuid.UUID,
	req MovementRequest,
	entryType inventory.EntryType,
	refKind inventory.ReferenceKind,
) ([]LedgerEntryResponse, error) {
	if !req.Quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	now := s.clock.Now()

	var entries []*inventory.LedgerEntry
	var onHand decimal.Decimal

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		level, err := s.findLevel(ctx, repos, tenantID, req.ProductID, req.LocationID)
		if err != nil {
			return err
		}
		if level.Quantity.LessThan(req.Quantity) {
			return shared.ErrInsufficientStock
		}

		batches, err := repos.BatchRepo().FindAvailable(ctx, tenantID, req.ProductID, req.LocationID, now)
		if err != nil {
			return err
		}
		allocations, shortfall := inventory.AllocateFEFO(batches, req.Quantity, now)

		entries = entries[:0]
		for _, alloc := range allocations {
			entry, err := inventory.NewLedgerEntry(tenantID, req.ProductID, req.LocationID, entryType, alloc.Quantity.Neg(), now)
			if err != nil {
				return err
			}
			entry.WithBatch(alloc.Batch.ID)
			if req.ReferenceID != nil {
				entry.WithReference(refKind, *req.ReferenceID)
			}
			if req.Reason != "" {
				entry.WithReason(req.Reason)
			}
			entry.SetCreatedBy(actorID)

			if err := alloc.Batch.Deduct(alloc.Quantity, now); err != nil {
				return err
			}
			if err := repos.BatchRepo().SaveWithLock(ctx, alloc.Batch); err != nil {
				return err
			}
			entries = append(entries, entry)
		}

		// Stock held outside tracked batches
		if shortfall.IsPositive() {
			entry, err := inventory.NewLedgerEntry(tenantID, req.ProductID, req.LocationID, entryType, shortfall.Neg(), now)
			if err != nil {
				return err
			}
			if req.ReferenceID != nil {
				entry.WithReference(refKind, *req.ReferenceID)
			}
			if req.Reason != "" {
				entry.WithReason(req.Reason)
			}
			entry.SetCreatedBy(actorID)
			entries = append(entries, entry)
		}

		if err := repos.LedgerRepo().AppendAll(ctx, entries); err != nil {
			return err
		}
		onHand, err = s.applyToStockLevel(ctx, repos, tenantID, req.ProductID, req.LocationID, req.Quantity.Neg())
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		s.publishDomainEvents(ctx, entry)
	}
	s.checkReorder(ctx, tenantID, req.ProductID, req.LocationID, onHand)

	return ToLedgerEntryResponses(entries), nil
}

// findLevel returns the cache row or a zero-balance row if none exists yet
func (s *Service) findLevel(ctx context.Context, repos TransactionalRepositories, tenantID, productID, locationID uuid.UUID) (*inventory.StockLevel, error) {
	level, err := repos.StockLevelRepo().Find(ctx, tenantID, productID, locationID)
	if errors.Is(err, shared.ErrNotFound) {
		return inventory.NewStockLevel(tenantID, productID, locationID), nil
	}
	if err != nil {
		return nil, err
	}
	return level, nil
}

// applyToStockLevel folds a movement into the cache row, creating it on
// first use, and returns the new balance
func (s *Service) applyToStockLevel(ctx context.Context, repos TransactionalRepositories, tenantID, productID, locationID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	now := s.clock.Now()
	level, err := repos.StockLevelRepo().Find(ctx, tenantID, productID, locationID)
	if errors.Is(err, shared.ErrNotFound) {
		level = inventory.NewStockLevel(tenantID, productID, locationID)
		level.Apply(delta, now)
		return level.Quantity, repos.StockLevelRepo().Save(ctx, level)
	}
	if err != nil {
		return decimal.Zero, err
	}
	level.Apply(delta, now)
	return level.Quantity, repos.StockLevelRepo().SaveWithLock(ctx, level)
}

// checkReorder raises a low stock alert when a decrease lands the
// balance at or below the product's reorder level. Best effort.
func (s *Service) checkReorder(ctx context.Context, tenantID, productID, locationID uuid.UUID, onHand decimal.Decimal) {
	if !s.lowStockAlerts || s.catalogRepo == nil {
		return
	}
	product, err := s.catalogRepo.FindByID(ctx, tenantID, productID)
	if err != nil || !product.NeedsReorder(onHand) {
		return
	}

	if s.eventPublisher != nil {
		event := inventory.NewStockBelowReorderEvent(tenantID, productID, locationID, onHand, product.ReorderLevel)
		_ = s.eventPublisher.Publish(ctx, event)
	}
	_ = s.notifier.Notify(ctx, notification.Message{
		Topic:    notification.TopicLowStock,
		TenantID: tenantID.String(),
		Title:    "Low stock: " + product.Name,
		Body:     product.SKU + " is at " + onHand.String() + ", reorder level " + product.ReorderLevel.String(),
		Metadata: map[string]string{
			"product_id":  productID.String(),
			"location_id": locationID.String(),
		},
	})
}

// GetOnHand returns the current on-hand figure for a product at a
// location, preferring the cache and falling back to summing the ledger.
func (s *Service) GetOnHand(ctx context.Context, tenantID, productID, locationID uuid.UUID) (*StockLevelResponse, error) {
	var resp StockLevelResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		level, err := repos.StockLevelRepo().Find(ctx, tenantID, productID, locationID)
		if errors.Is(err, shared.ErrNotFound) {
			qty, err := repos.LedgerRepo().SumQuantity(ctx, tenantID, productID, locationID)
			if err != nil {
				return err
			}
			level = inventory.NewStockLevel(tenantID, productID, locationID)
			level.Quantity = qty
		} else if err != nil {
			return err
		}
		resp = ToStockLevelResponse(level)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTotalOnHand sums a product's stock across every location
func (s *Service) GetTotalOnHand(ctx context.Context, tenantID, productID uuid.UUID) (*TotalStockResponse, error) {
	resp := TotalStockResponse{
		ProductID: productID,
		Total:     decimal.Zero,
		Locations: []StockLevelResponse{},
	}
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		levels, err := repos.StockLevelRepo().FindByProduct(ctx, tenantID, productID)
		if err != nil {
			return err
		}
		for _, level := range levels {
			resp.Total = resp.Total.Add(level.Quantity)
			resp.Locations = append(resp.Locations, ToStockLevelResponse(level))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListLedger retrieves ledger entries with filtering and pagination
func (s *Service) ListLedger(ctx context.Context, tenantID uuid.UUID, filter LedgerListFilter) ([]LedgerEntryResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := inventory.LedgerFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "occurred_at",
			OrderDir: "desc",
		},
		ProductID:  filter.ProductID,
		LocationID: filter.LocationID,
		BatchID:    filter.BatchID,
		From:       filter.From,
		To:         filter.To,
	}
	if filter.EntryType != nil {
		entryType := inventory.EntryType(*filter.EntryType)
		if !entryType.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_ENTRY_TYPE", "Invalid ledger entry type")
		}
		domainFilter.EntryType = &entryType
	}

	var entries []*inventory.LedgerEntry
	var total int64
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		entries, err = repos.LedgerRepo().FindAll(ctx, tenantID, domainFilter)
		if err != nil {
			return err
		}
		total, err = repos.LedgerRepo().Count(ctx, tenantID, domainFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	return ToLedgerEntryResponses(entries), total, nil
}

// ListBatches retrieves batches for a product at a location
func (s *Service) ListBatches(ctx context.Context, tenantID, productID, locationID uuid.UUID) ([]BatchResponse, error) {
	var batches []*inventory.Batch
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		batches, err = repos.BatchRepo().FindByProductLocation(ctx, tenantID, productID, locationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	inventory.SortFEFO(batches)
	return ToBatchResponses(batches), nil
}

// ListExpiring retrieves batches that expire before the given horizon
func (s *Service) ListExpiring(ctx context.Context, tenantID uuid.UUID, horizonDays int, filter shared.Filter) ([]BatchResponse, error) {
	if horizonDays <= 0 {
		horizonDays = 7
	}
	before := s.clock.Now().AddDate(0, 0, horizonDays)

	var batches []*inventory.Batch
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		batches, err = repos.BatchRepo().FindExpiring(ctx, tenantID, before, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToBatchResponses(batches), nil
}

// ListStockByLocation retrieves the cached on-hand figures at a location
func (s *Service) ListStockByLocation(ctx context.Context, tenantID, locationID uuid.UUID, filter shared.Filter) ([]StockLevelResponse, error) {
	var levels []*inventory.StockLevel
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		levels, err = repos.StockLevelRepo().FindByLocation(ctx, tenantID, locationID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToStockLevelResponses(levels), nil
}

// RebuildStockLevels drops the tenant's cache and recomputes every
// balance from the ledger. Used after manual data repair.
func (s *Service) RebuildStockLevels(ctx context.Context, tenantID uuid.UUID) (int, error) {
	now := s.clock.Now()
	var rebuilt int
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		sums, err := repos.LedgerRepo().SumAll(ctx, tenantID)
		if err != nil {
			return err
		}
		if err := repos.StockLevelRepo().DeleteByTenant(ctx, tenantID); err != nil {
			return err
		}
		for _, sum := range sums {
			level := inventory.NewStockLevel(tenantID, sum.ProductID, sum.LocationID)
			level.Reset(sum.Quantity, now)
			if err := repos.StockLevelRepo().Save(ctx, level); err != nil {
				return err
			}
		}
		rebuilt = len(sums)
		return nil
	})
	return rebuilt, err
}
