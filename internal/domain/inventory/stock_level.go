package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poscore/backend/internal/domain/shared"
)

// StockLevel is a running-balance cache of the ledger for one product
// at one location. It exists to make on-hand lookups cheap; the ledger
// is the source of truth and the cache can always be rebuilt from it.
type StockLevel struct {
	shared.TenantAggregateRoot
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_key,priority:2"`
	LocationID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_key,priority:3"`
	Quantity   decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
}

// TableName returns the table name for GORM
func (StockLevel) TableName() string {
	return "stock_levels"
}

// NewStockLevel creates a zero-balance cache row
func NewStockLevel(tenantID, productID, locationID uuid.UUID) *StockLevel {
	return &StockLevel{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		LocationID:          locationID,
		Quantity:            decimal.Zero,
	}
}

// Apply folds a ledger entry quantity into the running balance
func (s *StockLevel) Apply(quantity decimal.Decimal, now time.Time) {
	s.Quantity = s.Quantity.Add(quantity)
	s.UpdatedAt = now
	s.IncrementVersion()
}

// Reset overwrites the balance, used when rebuilding from the ledger
func (s *StockLevel) Reset(quantity decimal.Decimal, now time.Time) {
	s.Quantity = quantity
	s.UpdatedAt = now
	s.IncrementVersion()
}
