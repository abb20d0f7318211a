package request

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/poscore/backend/internal/application/notification"
	"github.com/poscore/backend/internal/domain/catalog"
	"github.com/poscore/backend/internal/domain/location"
	"github.com/poscore/backend/internal/domain/request"
	"github.com/poscore/backend/internal/domain/shared"
)

// Service drives the stock request workflow: raise, decide, convert.
// Conversion creates a draft transfer in the opposite direction and
// links it back to the request, atomically.
type Service struct {
	txScope        TransactionScope
	locationRepo   location.Repository
	catalogRepo    catalog.Repository
	eventPublisher shared.EventPublisher
	notifier       notification.Notifier
	clock          shared.Clock
}

// NewService creates a new request Service
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

// Create raises a pending stock request with its lines
func (s *Service) Create(ctx context.Context, tenantID, actorID uuid.UUID, req CreateRequest) (*RequestResponse, error) {
	requester, err := s.locationRepo.FindByID(ctx, tenantID, req.RequesterID)
	if err != nil {
		return nil, err
	}
	supplier, err := s.locationRepo.FindByID(ctx, tenantID, req.SupplierID)
	if err != nil {
		return nil, err
	}

	var sr *request.StockRequest
	create := func(repos TransactionalRepositories) error {
		number, err := repos.RequestRepo().GenerateRequestNumber(ctx, tenantID)
		if err != nil {
			return err
		}

		sr, err = request.NewStockRequest(tenantID, number, requester, supplier)
		if err != nil {
			return err
		}
		sr.Notes = req.Notes
		sr.SetCreatedBy(actorID)

		for _, item := range req.Items {
			product, err := s.catalogRepo.FindByID(ctx, tenantID, item.ProductID)
			if err != nil {
				return err
			}
			if err := sr.AddItem(product.ID, product.Name, product.SKU, item.Quantity); err != nil {
				return err
			}
		}

		return repos.RequestRepo().Save(ctx, sr)
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

	s.publishDomainEvents(ctx, sr)
	_ = s.notifier.Notify(ctx, notification.Message{
		Topic:    notification.TopicRequestPending,
		TenantID: tenantID.String(),
		Title:    "Stock request " + sr.RequestNumber + " awaiting approval",
		Body:     requester.Name + " requested stock from " + supplier.Name,
		Metadata: map[string]string{
			"request_id":  sr.ID.String(),
			"supplier_id": supplier.ID.String(),
		},
	})

	resp := ToRequestResponse(sr)
	return &resp, nil
}

// Approve accepts a pending request at the supplier side
func (s *Service) Approve(ctx context.Context, tenantID, actorID, requestID uuid.UUID) (*RequestResponse, error) {
	return s.transition(ctx, tenantID, requestID, func(sr *request.StockRequest) error {
		return sr.Approve(actorID, s.clock.Now())
	})
}

// Reject declines a pending request with a reason
func (s *Service) Reject(ctx context.Context, tenantID, actorID, requestID uuid.UUID, req RejectRequest) (*RequestResponse, error) {
	return s.transition(ctx, tenantID, requestID, func(sr *request.StockRequest) error {
		return sr.Reject(actorID, req.Reason, s.clock.Now())
	})
}

// Cancel withdraws a pending request at the requester side
func (s *Service) Cancel(ctx context.Context, tenantID, requestID uuid.UUID) (*RequestResponse, error) {
	return s.transition(ctx, tenantID, requestID, func(sr *request.StockRequest) error {
		return sr.Cancel(s.clock.Now())
	})
}

func (s *Service) transition(ctx context.Context, tenantID, requestID uuid.UUID, fn func(*request.StockRequest) error) (*RequestResponse, error) {
	var sr *request.StockRequest
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sr, err = repos.RequestRepo().FindByID(ctx, tenantID, requestID)
		if err != nil {
			return err
		}
		if err := fn(sr); err != nil {
			return err
		}
		return repos.RequestRepo().SaveWithLock(ctx, sr)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, sr)

	resp := ToRequestResponse(sr)
	return &resp, nil
}

// Convert turns an approved request into a draft transfer from the
// supplier to the requester. The request and the new transfer are
// saved in one transaction.
func (s *Service) Convert(ctx context.Context, tenantID, requestID uuid.UUID) (*RequestResponse, error) {
	now := s.clock.Now()

	var sr *request.StockRequest
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sr, err = repos.RequestRepo().FindByID(ctx, tenantID, requestID)
		if err != nil {
			return err
		}

		requester, err := s.locationRepo.FindByID(ctx, tenantID, sr.RequesterID)
		if err != nil {
			return err
		}
		supplier, err := s.locationRepo.FindByID(ctx, tenantID, sr.SupplierID)
		if err != nil {
			return err
		}

		number, err := repos.TransferRepo().GenerateTransferNumber(ctx, tenantID)
		if err != nil {
			return err
		}

		tr, err := sr.ConvertToTransfer(number, requester, supplier, now)
		if err != nil {
			return err
		}
		if sr.CreatedBy != nil {
			tr.SetCreatedBy(*sr.CreatedBy)
		}

		if err := repos.TransferRepo().Save(ctx, tr); err != nil {
			return err
		}
		return repos.RequestRepo().SaveWithLock(ctx, sr)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, sr)

	resp := ToRequestResponse(sr)
	return &resp, nil
}

// GetByID retrieves a request by ID
func (s *Service) GetByID(ctx context.Context, tenantID, requestID uuid.UUID) (*RequestResponse, error) {
	var sr *request.StockRequest
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sr, err = repos.RequestRepo().FindByID(ctx, tenantID, requestID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToRequestResponse(sr)
	return &resp, nil
}

// List retrieves requests with filtering and pagination
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]RequestResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := request.Filter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "created_at",
			OrderDir: "desc",
		},
		RequesterID: filter.RequesterID,
		SupplierID:  filter.SupplierID,
	}
	if filter.Status != nil {
		status := request.Status(*filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Invalid request status")
		}
		domainFilter.Status = &status
	}

	var requests []*request.StockRequest
	var total int64
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		requests, err = repos.RequestRepo().FindAll(ctx, tenantID, domainFilter)
		if err != nil {
			return err
		}
		total, err = repos.RequestRepo().Count(ctx, tenantID, domainFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	return ToRequestResponses(requests), total, nil
}
