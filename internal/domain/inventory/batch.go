package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poscore/backend/internal/domain/shared"
)

// BatchStatus represents the derived availability of a batch
type BatchStatus string

const (
	BatchStatusAvailable BatchStatus = "AVAILABLE"
	// BatchStatusReserved marks stock held back manually; it is never
	// derived, only set by an operator, and sticks until cleared.
	BatchStatusReserved BatchStatus = "RESERVED"
	BatchStatusExpired  BatchStatus = "EXPIRED"
	BatchStatusDepleted BatchStatus = "DEPLETED"
)

// Batch is a lot of a product at a location, optionally carrying an
// expiry date. Batch quantity drops as stock is consumed; the derived
// status is recomputed on every mutation. Depletion takes precedence
// over expiry.
type Batch struct {
	shared.TenantAggregateRoot
	// Batch numbers are unique per tenant, product and location; the
	// same number at two locations is two independent batches.
	BatchNumber     string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_batch_key,priority:4"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_batch_product_location;uniqueIndex:idx_batch_key,priority:2"`
	LocationID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_batch_product_location;uniqueIndex:idx_batch_key,priority:3"`
	Quantity        decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ExpiryDate      *time.Time      `gorm:"index"`
	ManufactureDate *time.Time      `gorm:""`
	ReceivedAt      time.Time       `gorm:"not null"`
	Status          BatchStatus     `gorm:"type:varchar(20);not null;default:'AVAILABLE'"`
}

// TableName returns the table name for GORM
func (Batch) TableName() string {
	return "stock_batches"
}

// NewBatch creates a batch with an initial positive quantity
func NewBatch(
	tenantID, productID, locationID uuid.UUID,
	batchNumber string,
	quantity decimal.Decimal,
	receivedAt time.Time,
) (*Batch, error) {
	batchNumber = strings.TrimSpace(batchNumber)
	if batchNumber == "" {
		return nil, shared.NewDomainError("INVALID_BATCH_NUMBER", "Batch number cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product is required")
	}
	if locationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Location is required")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Batch quantity must be positive")
	}

	batch := &Batch{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BatchNumber:         batchNumber,
		ProductID:           productID,
		LocationID:          locationID,
		Quantity:            quantity,
		UnitCost:            decimal.Zero,
		ReceivedAt:          receivedAt,
		Status:              BatchStatusAvailable,
	}
	batch.RefreshStatus(receivedAt)

	batch.AddDomainEvent(NewBatchCreatedEvent(batch))

	return batch, nil
}

// WithExpiry sets the expiry date
func (b *Batch) WithExpiry(expiry time.Time) *Batch {
	b.ExpiryDate = &expiry
	return b
}

// WithUnitCost sets the per-unit acquisition cost
func (b *Batch) WithUnitCost(cost decimal.Decimal) *Batch {
	b.UnitCost = cost
	return b
}

// WithManufactureDate sets the manufacture date
func (b *Batch) WithManufactureDate(date time.Time) *Batch {
	b.ManufactureDate = &date
	return b
}

// IsExpired returns true if the batch has an expiry date in the past
func (b *Batch) IsExpired(now time.Time) bool {
	return b.ExpiryDate != nil && b.ExpiryDate.Before(now)
}

// IsAvailable returns true if the batch has stock and has not expired
func (b *Batch) IsAvailable(now time.Time) bool {
	return b.Quantity.IsPositive() && !b.IsExpired(now)
}

// DeriveStatus computes the status at the given time without mutating
// the batch. Depletion wins over expiry; a manual RESERVED marker
// survives as long as the batch still holds unexpired stock.
func (b *Batch) DeriveStatus(now time.Time) BatchStatus {
	if !b.Quantity.IsPositive() {
		return BatchStatusDepleted
	}
	if b.IsExpired(now) {
		return BatchStatusExpired
	}
	if b.Status == BatchStatusReserved {
		return BatchStatusReserved
	}
	return BatchStatusAvailable
}

// RefreshStatus recomputes and stores the derived status
func (b *Batch) RefreshStatus(now time.Time) {
	b.Status = b.DeriveStatus(now)
}

// Deduct removes quantity from the batch. The batch cannot go negative.
func (b *Batch) Deduct(quantity decimal.Decimal, now time.Time) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Deduct quantity must be positive")
	}
	if b.Quantity.LessThan(quantity) {
		return shared.ErrInsufficientStock
	}

	b.Quantity = b.Quantity.Sub(quantity)
	b.RefreshStatus(now)
	b.UpdatedAt = now
	b.IncrementVersion()

	if b.Status == BatchStatusDepleted {
		b.AddDomainEvent(NewBatchDepletedEvent(b))
	}

	return nil
}

// Add returns quantity to the batch, used for voids and returns
func (b *Batch) Add(quantity decimal.Decimal, now time.Time) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Add quantity must be positive")
	}

	b.Quantity = b.Quantity.Add(quantity)
	b.RefreshStatus(now)
	b.UpdatedAt = now
	b.IncrementVersion()

	return nil
}
