package cash

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poscore/backend/internal/domain/cashledger"
	"github.com/poscore/backend/internal/domain/shared"
)

// TransactionScope provides transactional access to the cash ledger so
// a balance check and the append it guards commit together.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repo cashledger.Repository) error) error
}

// NoOpTransactionScope runs functions without a real transaction, for tests.
type NoOpTransactionScope struct {
	repo cashledger.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repository.
func NewNoOpTransactionScope(repo cashledger.Repository) *NoOpTransactionScope {
	return &NoOpTransactionScope{repo: repo}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repo cashledger.Repository) error) error {
	return fn(s.repo)
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)

// AppendEntryRequest records one cash movement at a shop
type AppendEntryRequest struct {
	ShopID      uuid.UUID       `json:"shop_id" binding:"required"`
	Account     string          `json:"account" binding:"required,oneof=CASH ECASH"`
	EntryType   string          `json:"entry_type" binding:"required,oneof=PAYMENT WITHDRAWAL REFUND ADJUSTMENT"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	ReferenceID *uuid.UUID      `json:"reference_id"`
	Reason      string          `json:"reason,omitempty"`
}

// EntryResponse represents a cash ledger row in API responses
type EntryResponse struct {
	ID          uuid.UUID       `json:"id"`
	ShopID      uuid.UUID       `json:"shop_id"`
	Account     string          `json:"account"`
	EntryType   string          `json:"entry_type"`
	Amount      decimal.Decimal `json:"amount"`
	ReferenceID *uuid.UUID      `json:"reference_id,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToEntryResponse converts a domain entry to its response form
func ToEntryResponse(e *cashledger.Entry) EntryResponse {
	return EntryResponse{
		ID:          e.ID,
		ShopID:      e.ShopID,
		Account:     e.Account.String(),
		EntryType:   e.EntryType.String(),
		Amount:      e.Amount,
		ReferenceID: e.ReferenceID,
		Reason:      e.Reason,
		OccurredAt:  e.OccurredAt,
		CreatedAt:   e.CreatedAt,
	}
}

// ToEntryResponses converts a slice of entries
func ToEntryResponses(entries []*cashledger.Entry) []EntryResponse {
	responses := make([]EntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = ToEntryResponse(e)
	}
	return responses
}

// BalanceResponse is one shop account balance
type BalanceResponse struct {
	ShopID  uuid.UUID       `json:"shop_id"`
	Account string          `json:"account"`
	Balance decimal.Decimal `json:"balance"`
}

// ListFilter represents filter options for cash ledger queries
type ListFilter struct {
	ShopID    *uuid.UUID `form:"shop_id"`
	Account   *string    `form:"account"`
	EntryType *string    `form:"entry_type"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Service records shop cash movements. Like the stock ledger, entries
// are append-only; a shop's balance is the sum of its entries, and
// withdrawals and refunds may not overdraw it.
type Service struct {
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	clock          shared.Clock
}

// NewService creates a new cash Service
func NewService(txScope TransactionScope) *Service {
	return &Service{
		txScope: txScope,
		clock:   shared.SystemClock{},
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides the time source
func (s *Service) SetClock(clock shared.Clock) {
	s.clock = clock
}

// AppendEntry records one cash movement. Balance-decreasing entries
// are checked against the current balance inside the transaction.
func (s *Service) AppendEntry(ctx context.Context, tenantID, actorID uuid.UUID, req AppendEntryRequest) (*EntryResponse, error) {
	entry, err := cashledger.NewEntry(
		tenantID, req.ShopID,
		cashledger.Account(req.Account),
		cashledger.EntryType(req.EntryType),
		req.Amount,
		s.clock.Now(),
	)
	if err != nil {
		return nil, err
	}
	if entry.EntryType == cashledger.EntryTypeAdjustment && req.Reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Adjustment reason is required")
	}
	if req.ReferenceID != nil {
		entry.WithReference(*req.ReferenceID)
	}
	if req.Reason != "" {
		entry.WithReason(req.Reason)
	}
	entry.SetCreatedBy(actorID)

	err = s.txScope.Execute(ctx, func(repo cashledger.Repository) error {
		if entry.Amount.IsNegative() {
			balance, err := repo.Balance(ctx, tenantID, entry.ShopID, entry.Account)
			if err != nil {
				return err
			}
			if balance.Add(entry.Amount).IsNegative() {
				return shared.ErrInsufficientBalance
			}
		}
		return repo.Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, entry.GetDomainEvents()...)
		entry.ClearDomainEvents()
	}

	resp := ToEntryResponse(entry)
	return &resp, nil
}

// GetBalance returns the current balance of one shop account
func (s *Service) GetBalance(ctx context.Context, tenantID, shopID uuid.UUID, account string) (*BalanceResponse, error) {
	acc := cashledger.Account(account)
	if !acc.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Invalid cash account")
	}

	var balance decimal.Decimal
	err := s.txScope.Execute(ctx, func(repo cashledger.Repository) error {
		var err error
		balance, err = repo.Balance(ctx, tenantID, shopID, acc)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &BalanceResponse{ShopID: shopID, Account: account, Balance: balance}, nil
}

// List retrieves cash entries with filtering and pagination
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]EntryResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := cashledger.Filter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "occurred_at",
			OrderDir: "desc",
		},
		ShopID: filter.ShopID,
		From:   filter.From,
		To:     filter.To,
	}
	if filter.Account != nil {
		acc := cashledger.Account(*filter.Account)
		if !acc.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_ACCOUNT", "Invalid cash account")
		}
		domainFilter.Account = &acc
	}
	if filter.EntryType != nil {
		entryType := cashledger.EntryType(*filter.EntryType)
		if !entryType.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_ENTRY_TYPE", "Invalid cash entry type")
		}
		domainFilter.EntryType = &entryType
	}

	var entries []*cashledger.Entry
	var total int64
	err := s.txScope.Execute(ctx, func(repo cashledger.Repository) error {
		var err error
		entries, err = repo.FindAll(ctx, tenantID, domainFilter)
		if err != nil {
			return err
		}
		total, err = repo.Count(ctx, tenantID, domainFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	return ToEntryResponses(entries), total, nil
}
