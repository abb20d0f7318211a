package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poscore/backend/internal/domain/shared"
)

// LedgerFilter narrows ledger queries
type LedgerFilter struct {
	shared.Filter
	ProductID  *uuid.UUID
	LocationID *uuid.UUID
	BatchID    *uuid.UUID
	EntryType  *EntryType
	From       *time.Time
	To         *time.Time
}

// LedgerRepository persists ledger entries. The ledger is append-only:
// there are no update or delete operations.
type LedgerRepository interface {
	Append(ctx context.Context, entry *LedgerEntry) error
	AppendAll(ctx context.Context, entries []*LedgerEntry) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*LedgerEntry, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter LedgerFilter) ([]*LedgerEntry, error)
	Count(ctx context.Context, tenantID uuid.UUID, filter LedgerFilter) (int64, error)
	// SumQuantity returns the net movement for a product at a location,
	// i.e. the authoritative on-hand figure.
	SumQuantity(ctx context.Context, tenantID, productID, locationID uuid.UUID) (decimal.Decimal, error)
	// SumByLocation returns net quantities per product at one location.
	SumByLocation(ctx context.Context, tenantID, locationID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
	// SumAll returns net quantities for every product-location pair of
	// a tenant, used to rebuild the stock level cache.
	SumAll(ctx context.Context, tenantID uuid.UUID) ([]ProductLocationSum, error)
}

// ProductLocationSum is one rebuilt balance
type ProductLocationSum struct {
	ProductID  uuid.UUID
	LocationID uuid.UUID
	Quantity   decimal.Decimal
}

// BatchRepository persists stock batches
type BatchRepository interface {
	Save(ctx context.Context, batch *Batch) error
	SaveWithLock(ctx context.Context, batch *Batch) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Batch, error)
	// FindByNumber resolves a batch by its number within the scope the
	// number is unique in: one tenant, product and location.
	FindByNumber(ctx context.Context, tenantID, productID, locationID uuid.UUID, batchNumber string) (*Batch, error)
	FindByProductLocation(ctx context.Context, tenantID, productID, locationID uuid.UUID) ([]*Batch, error)
	FindAvailable(ctx context.Context, tenantID, productID, locationID uuid.UUID, asOf time.Time) ([]*Batch, error)
	FindExpiring(ctx context.Context, tenantID uuid.UUID, before time.Time, filter shared.Filter) ([]*Batch, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Batch, error)
}

// StockLevelRepository persists the running-balance cache
type StockLevelRepository interface {
	Save(ctx context.Context, level *StockLevel) error
	SaveWithLock(ctx context.Context, level *StockLevel) error
	Find(ctx context.Context, tenantID, productID, locationID uuid.UUID) (*StockLevel, error)
	FindByLocation(ctx context.Context, tenantID, locationID uuid.UUID, filter shared.Filter) ([]*StockLevel, error)
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]*StockLevel, error)
	DeleteByTenant(ctx context.Context, tenantID uuid.UUID) error
}
