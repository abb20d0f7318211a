package transfer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poscore/backend/internal/application/notification"
	"github.com/poscore/backend/internal/domain/catalog"
	"github.com/poscore/backend/internal/domain/inventory"
	"github.com/poscore/backend/internal/domain/location"
	"github.com/poscore/backend/internal/domain/shared"
	"github.com/poscore/backend/internal/domain/transfer"
)

// Service drives the transfer state machine and keeps the ledger in
// step with it: TRANSFER_OUT entries at the source when a transfer is
// sent, TRANSFER_IN entries at the destination when it is received.
type Service struct {
	txScope        TransactionScope
	locationRepo   location.Repository
	catalogRepo    catalog.Repository
	eventPublisher shared.EventPublisher
	notifier       notification.Notifier
	clock          shared.Clock
}

// NewService creates a new transfer Service
func NewService(txScope TransactionScope, locationRepo location.Repository, catalogRepo catalog.Repository) *Service {
	return &Service{
		txScope:      txScope,
		locationRepo: locationRepo,
		catalogRepo:  catalogRepo,
		notifier:     notification.NoOpNotifier{},
		clock:        shared.SystemClock{},
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

func (s *Service) publishDomainEvents(ctx context.Context, agg shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	events := agg.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	agg.ClearDomainEvents()
}

// Create builds a draft transfer with its lines. The transfer number
// is issued inside the saving transaction so concurrent creates cannot
// collide.
func (s *Service) Create(ctx context.Context, tenantID, actorID uuid.UUID, req CreateTransferRequest) (*TransferResponse, error) {
	source, err := s.locationRepo.FindByID(ctx, tenantID, req.SourceID)
	if err != nil {
		return nil, err
	}
	destination, err := s.locationRepo.FindByID(ctx, tenantID, req.DestinationID)
	if err != nil {
		return nil, err
	}

	var tr *transfer.Transfer
	create := func(repos TransactionalRepositories) error {
		number, err := repos.TransferRepo().GenerateTransferNumber(ctx, tenantID)
		if err != nil {
			return err
		}

		tr, err = transfer.NewTransfer(tenantID, number, source, destination)
		if err != nil {
			return err
		}
		tr.Notes = req.Notes
		tr.SetCreatedBy(actorID)

		for _, item := range req.Items {
			product, err := s.catalogRepo.FindByID(ctx, tenantID, item.ProductID)
			if err != nil {
				return err
			}
			if err := tr.AddItem(product.ID, product.Name, product.SKU, item.Quantity, item.BatchID, item.Notes); err != nil {
				return err
			}
		}

		return repos.TransferRepo().Save(ctx, tr)
	}

	err = s.txScope.Execute(ctx, create)
	if errors.Is(err, shared.ErrAlreadyExists) {
		// concurrent create took the number; one more attempt gets the next
		err = s.txScope.Execute(ctx, create)
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.ErrConcurrencyConflict
		}
	}
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, tr)

	resp := ToTransferResponse(tr)
	return &resp, nil
}

// Send commits a draft transfer and deducts the sent quantities from
// the source. Lines pinned to a batch are checked against and drawn
// from that batch; unbatched lines send without a sufficiency check.
func (s *Service) Send(ctx context.Context, tenantID, actorID, transferID uuid.UUID) (*TransferResponse, error) {
	now := s.clock.Now()

	var tr *transfer.Transfer
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		tr, err = repos.TransferRepo().FindByID(ctx, tenantID, transferID)
		if err != nil {
			return err
		}
		if err := tr.Send(actorID, now); err != nil {
			return err
		}

		for i := range tr.Items {
			item := &tr.Items[i]
			if err := s.deductFromSource(ctx, repos, tr, item, actorID, now); err != nil {
				return err
			}
		}

		return repos.TransferRepo().SaveWithLock(ctx, tr)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, tr)
	_ = s.notifier.Notify(ctx, notification.Message{
		Topic:    notification.TopicTransferIncoming,
		TenantID: tenantID.String(),
		Title:    "Incoming transfer " + tr.TransferNumber,
		Body:     "Transfer " + tr.TransferNumber + " has been sent and is on its way",
		Metadata: map[string]string{
			"transfer_id":    tr.ID.String(),
			"destination_id": tr.DestinationID.String(),
		},
	})

	resp := ToTransferResponse(tr)
	return &resp, nil
}

// deductFromSource writes the TRANSFER_OUT side of one line
func (s *Service) deductFromSource(
	ctx context.Context,
	repos TransactionalRepositories,
	tr *transfer.Transfer,
	item *transfer.Item,
	actorID uuid.UUID,
	now time.Time,
) error {
	entry, err := inventory.NewLedgerEntry(tr.TenantID, item.ProductID, tr.SourceID, inventory.EntryTypeTransferOut, item.QuantitySent.Neg(), now)
	if err != nil {
		return err
	}
	entry.WithReference(inventory.ReferenceKindTransfer, tr.ID)
	entry.SetCreatedBy(actorID)

	if item.BatchID != nil {
		batch, err := repos.BatchRepo().FindByID(ctx, tr.TenantID, *item.BatchID)
		if err != nil {
			return err
		}
		if batch.ProductID != item.ProductID || batch.LocationID != tr.SourceID {
			return shared.NewDomainError("BATCH_MISMATCH", "Batch does not hold this product at the source location")
		}
		if err := batch.Deduct(item.QuantitySent, now); err != nil {
			return err
		}
		if err := repos.BatchRepo().SaveWithLock(ctx, batch); err != nil {
			return err
		}
		if item.UnitCost.IsZero() {
			item.UnitCost = batch.UnitCost
		}
		entry.WithBatch(batch.ID)
	}

	if err := repos.LedgerRepo().Append(ctx, entry); err != nil {
		return err
	}
	return s.applyToStockLevel(ctx, repos, tr.TenantID, item.ProductID, tr.SourceID, item.QuantitySent.Neg(), now)
}

// Receive confirms arrival at the destination and writes TRANSFER_IN
// entries for the received quantities. Lines omitted from the request
// count as received in full. Stock from a tracked source batch lands
// in a destination batch of the same number, created on first receipt
// with the source's unit cost and expiry.
func (s *Service) Receive(ctx context.Context, tenantID, actorID, transferID uuid.UUID, req ReceiveRequest) (*TransferResponse, error) {
	now := s.clock.Now()

	receipts := make([]transfer.Receipt, len(req.Items))
	for i, item := range req.Items {
		receipts[i] = transfer.Receipt{ItemID: item.ItemID, Quantity: item.Quantity}
	}

	var tr *transfer.Transfer
	var touched []shared.AggregateRoot
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		tr, err = repos.TransferRepo().FindByID(ctx, tenantID, transferID)
		if err != nil {
			return err
		}
		if err := tr.Receive(actorID, receipts, now); err != nil {
			return err
		}

		touched = touched[:0]
		for i := range tr.Items {
			item := &tr.Items[i]
			if !item.QuantityReceived.IsPositive() {
				continue
			}
			entry, err := inventory.NewLedgerEntry(tenantID, item.ProductID, tr.DestinationID, inventory.EntryTypeTransferIn, item.QuantityReceived, now)
			if err != nil {
				return err
			}
			entry.WithReference(inventory.ReferenceKindTransfer, tr.ID)
			entry.SetCreatedBy(actorID)

			if item.BatchID != nil {
				dest, err := s.bookIntoDestinationBatch(ctx, repos, tr, item, actorID, now)
				if err != nil {
					return err
				}
				entry.WithBatch(dest.ID)
				touched = append(touched, dest)
			}

			if err := repos.LedgerRepo().Append(ctx, entry); err != nil {
				return err
			}
			if err := s.applyToStockLevel(ctx, repos, tenantID, item.ProductID, tr.DestinationID, item.QuantityReceived, now); err != nil {
				return err
			}
		}

		return repos.TransferRepo().SaveWithLock(ctx, tr)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, tr)
	for _, agg := range touched {
		s.publishDomainEvents(ctx, agg)
	}

	resp := ToTransferResponse(tr)
	return &resp, nil
}

// bookIntoDestinationBatch finds or creates the batch the received
// quantity lands in, keyed by the source batch's number at the
// destination location. Unit cost and expiry carry over on creation.
func (s *Service) bookIntoDestinationBatch(
	ctx context.Context,
	repos TransactionalRepositories,
	tr *transfer.Transfer,
	item *transfer.Item,
	actorID uuid.UUID,
	now time.Time,
) (*inventory.Batch, error) {
	source, err := repos.BatchRepo().FindByID(ctx, tr.TenantID, *item.BatchID)
	if err != nil {
		return nil, err
	}

	dest, err := repos.BatchRepo().FindByNumber(ctx, tr.TenantID, item.ProductID, tr.DestinationID, source.BatchNumber)
	if errors.Is(err, shared.ErrNotFound) {
		dest, err = inventory.NewBatch(tr.TenantID, item.ProductID, tr.DestinationID, source.BatchNumber, item.QuantityReceived, now)
		if err != nil {
			return nil, err
		}
		dest.WithUnitCost(source.UnitCost)
		if source.ExpiryDate != nil {
			dest.WithExpiry(*source.ExpiryDate)
			dest.RefreshStatus(now)
		}
		dest.SetCreatedBy(actorID)
		return dest, repos.BatchRepo().Save(ctx, dest)
	}
	if err != nil {
		return nil, err
	}

	if err := dest.Add(item.QuantityReceived, now); err != nil {
		return nil, err
	}
	return dest, repos.BatchRepo().SaveWithLock(ctx, dest)
}

func (s *Service) applyToStockLevel(ctx context.Context, repos TransactionalRepositories, tenantID, productID, locationID uuid.UUID, delta decimal.Decimal, now time.Time) error {
	level, err := repos.StockLevelRepo().Find(ctx, tenantID, productID, locationID)
	if errors.Is(err, shared.ErrNotFound) {
		level = inventory.NewStockLevel(tenantID, productID, locationID)
		level.Apply(delta, now)
		return repos.StockLevelRepo().Save(ctx, level)
	}
	if err != nil {
		return err
	}
	level.Apply(delta, now)
	return repos.StockLevelRepo().SaveWithLock(ctx, level)
}

// Dispute flags a received transfer for investigation. No ledger
// entries are written; the recorded quantities stand until resolved by
// an explicit adjustment.
func (s *Service) Dispute(ctx context.Context, tenantID, actorID, transferID uuid.UUID, req DisputeRequest) (*TransferResponse, error) {
	now := s.clock.Now()

	var tr *transfer.Transfer
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		tr, err = repos.TransferRepo().FindByID(ctx, tenantID, transferID)
		if err != nil {
			return err
		}
		if err := tr.Dispute(req.Reason, now); err != nil {
			return err
		}
		return repos.TransferRepo().SaveWithLock(ctx, tr)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, tr)
	_ = s.notifier.Notify(ctx, notification.Message{
		Topic:    notification.TopicTransferDisputed,
		TenantID: tenantID.String(),
		Title:    "Transfer " + tr.TransferNumber + " disputed",
		Body:     req.Reason,
		Metadata: map[string]string{"transfer_id": tr.ID.String()},
	})

	resp := ToTransferResponse(tr)
	return &resp, nil
}

// Close finalizes a transfer, recording optional resolution notes.
// Discrepancies are not written off here.
func (s *Service) Close(ctx context.Context, tenantID, transferID uuid.UUID, req CloseRequest) (*TransferResponse, error) {
	now := s.clock.Now()

	var tr *transfer.Transfer
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		tr, err = repos.TransferRepo().FindByID(ctx, tenantID, transferID)
		if err != nil {
			return err
		}
		if err := tr.Close(req.Notes, now); err != nil {
			return err
		}
		return repos.TransferRepo().SaveWithLock(ctx, tr)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, tr)

	resp := ToTransferResponse(tr)
	return &resp, nil
}

// Cancel abandons a draft transfer
func (s *Service) Cancel(ctx context.Context, tenantID, transferID uuid.UUID) (*TransferResponse, error) {
	now := s.clock.Now()

	var tr *transfer.Transfer
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		tr, err = repos.TransferRepo().FindByID(ctx, tenantID, transferID)
		if err != nil {
			return err
		}
		if err := tr.Cancel(now); err != nil {
			return err
		}
		return repos.TransferRepo().SaveWithLock(ctx, tr)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, tr)

	resp := ToTransferResponse(tr)
	return &resp, nil
}

// GetByID retrieves a transfer by ID
func (s *Service) GetByID(ctx context.Context, tenantID, transferID uuid.UUID) (*TransferResponse, error) {
	var tr *transfer.Transfer
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		tr, err = repos.TransferRepo().FindByID(ctx, tenantID, transferID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToTransferResponse(tr)
	return &resp, nil
}

// List retrieves transfers with filtering and pagination
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]TransferResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := transfer.Filter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "created_at",
			OrderDir: "desc",
		},
		SourceID:      filter.SourceID,
		DestinationID: filter.DestinationID,
	}
	if filter.Status != nil {
		status := transfer.Status(*filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Invalid transfer status")
		}
		domainFilter.Status = &status
	}

	var transfers []*transfer.Transfer
	var total int64
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		transfers, err = repos.TransferRepo().FindAll(ctx, tenantID, domainFilter)
		if err != nil {
			return err
		}
		total, err = repos.TransferRepo().Count(ctx, tenantID, domainFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	return ToTransferResponses(transfers), total, nil
}
