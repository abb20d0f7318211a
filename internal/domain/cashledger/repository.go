package cashledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poscore/backend/internal/domain/shared"
)

// Filter narrows cash ledger queries
type Filter struct {
	shared.Filter
	ShopID    *uuid.UUID
	Account   *Account
	EntryType *EntryType
	From      *time.Time
	To        *time.Time
}

// Repository persists cash ledger entries. Append-only, like the
// stock ledger.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Entry, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]*Entry, error)
	Count(ctx context.Context, tenantID uuid.UUID, filter Filter) (int64, error)
	// Balance returns the current balance of one shop account.
	Balance(ctx context.Context, tenantID, shopID uuid.UUID, account Account) (decimal.Decimal, error)
}
