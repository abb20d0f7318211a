package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poscore/backend/internal/domain/shared"
)

// EntryType represents the kind of stock movement recorded in the ledger
type EntryType string

const (
	EntryTypeIn          EntryType = "IN"           // Goods received from outside the system
	EntryTypeOut         EntryType = "OUT"          // Goods leaving outside normal sale/transfer flows
	EntryTypeAdjust      EntryType = "ADJUST"       // Manual stock correction, either sign
	EntryTypeTransferOut EntryType = "TRANSFER_OUT" // Stock leaving the source location of a transfer
	EntryTypeTransferIn  EntryType = "TRANSFER_IN"  // Stock arriving at the destination of a transfer
	EntryTypeSale        EntryType = "SALE"         // Sold at point of sale
	EntryTypeSaleVoid    EntryType = "SALE_VOID"    // Voided sale, restores the quantity
	EntryTypeReturn      EntryType = "RETURN"       // Customer return
	EntryTypeDamage      EntryType = "DAMAGE"       // Written off as damaged or spoiled
	EntryTypeProduction  EntryType = "PRODUCTION"   // Produced at a production facility
)

// IsValid returns true if the entry type is valid
func (t EntryType) IsValid() bool {
	switch t {
	case EntryTypeIn, EntryTypeOut, EntryTypeAdjust, EntryTypeTransferOut,
		EntryTypeTransferIn, EntryTypeSale, EntryTypeSaleVoid,
		EntryTypeReturn, EntryTypeDamage, EntryTypeProduction:
		return true
	}
	return false
}

// String returns the string representation of EntryType
func (t EntryType) String() string {
	return string(t)
}

// Sign returns +1 for types that must increase stock, -1 for types that
// must decrease it, and 0 for types that allow either sign.
func (t EntryType) Sign() int {
	switch t {
	case EntryTypeIn, EntryTypeTransferIn, EntryTypeSaleVoid, EntryTypeReturn, EntryTypeProduction:
		return 1
	case EntryTypeOut, EntryTypeTransferOut, EntryTypeSale, EntryTypeDamage:
		return -1
	}
	return 0
}

// ReferenceKind identifies the type of record a ledger entry points back to
type ReferenceKind string

const (
	ReferenceKindBatch        ReferenceKind = "BATCH"
	ReferenceKindSale         ReferenceKind = "SALE"
	ReferenceKindTransfer     ReferenceKind = "TRANSFER"
	ReferenceKindAdjustment   ReferenceKind = "ADJUSTMENT"
	ReferenceKindStockRequest ReferenceKind = "STOCK_REQUEST"
	ReferenceKindProduction   ReferenceKind = "PRODUCTION"
)

// IsValid returns true if the reference kind is valid
func (k ReferenceKind) IsValid() bool {
	switch k {
	case ReferenceKindBatch, ReferenceKindSale, ReferenceKindTransfer,
		ReferenceKindAdjustment, ReferenceKindStockRequest, ReferenceKindProduction:
		return true
	}
	return false
}

// Reference ties a ledger entry to the record that caused it
type Reference struct {
	Kind ReferenceKind `gorm:"column:reference_kind;type:varchar(20)"`
	ID   uuid.UUID     `gorm:"column:reference_id;type:uuid"`
}

// IsZero returns true if no reference is set
func (r Reference) IsZero() bool {
	return r.Kind == "" && r.ID == uuid.Nil
}

// LedgerEntry is one immutable row in the stock movement ledger.
// Entries are append-only: they are never updated or deleted, and
// corrections are made by appending offsetting entries. The running
// stock of a product at a location is the sum of its entry quantities.
type LedgerEntry struct {
	shared.TenantAggregateRoot
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_product_location"`
	LocationID uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_product_location"`
	BatchID    *uuid.UUID      `gorm:"type:uuid;index"`
	EntryType  EntryType       `gorm:"type:varchar(20);not null;index"`
	Quantity   decimal.Decimal `gorm:"type:decimal(12,3);not null"` // Signed: positive adds stock, negative removes it
	Reference  Reference       `gorm:"embedded"`
	Reason     string          `gorm:"type:varchar(500)"`
	OccurredAt time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (LedgerEntry) TableName() string {
	return "inventory_ledger"
}

// NewLedgerEntry creates a ledger entry after validating the quantity
// sign against the entry type. The quantity must be non-zero.
func NewLedgerEntry(
	tenantID, productID, locationID uuid.UUID,
	entryType EntryType,
	quantity decimal.Decimal,
	occurredAt time.Time,
) (*LedgerEntry, error) {
	if !entryType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTRY_TYPE", "Invalid ledger entry type")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product is required")
	}
	if locationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Location is required")
	}
	if quantity.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Ledger quantity cannot be zero")
	}
	switch entryType.Sign() {
	case 1:
		if quantity.IsNegative() {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive for entry type "+entryType.String())
		}
	case -1:
		if quantity.IsPositive() {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be negative for entry type "+entryType.String())
		}
	}

	entry := &LedgerEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		LocationID:          locationID,
		EntryType:           entryType,
		Quantity:            quantity,
		OccurredAt:          occurredAt,
	}

	entry.AddDomainEvent(NewLedgerEntryAppendedEvent(entry))

	return entry, nil
}

// WithBatch attaches the batch the movement drew from or fed into
func (e *LedgerEntry) WithBatch(batchID uuid.UUID) *LedgerEntry {
	e.BatchID = &batchID
	return e
}

// WithReference attaches the record that caused this movement
func (e *LedgerEntry) WithReference(kind ReferenceKind, id uuid.UUID) *LedgerEntry {
	e.Reference = Reference{Kind: kind, ID: id}
	return e
}

// WithReason attaches a free-text reason, required for adjustments
func (e *LedgerEntry) WithReason(reason string) *LedgerEntry {
	e.Reason = reason
	return e
}

// IsIncrease returns true if this entry adds stock
func (e *LedgerEntry) IsIncrease() bool {
	return e.Quantity.IsPositive()
}

// Offset builds the offsetting entry that cancels this one. The
// original row stays in place; the pair nets to zero.
func (e *LedgerEntry) Offset(reason string, occurredAt time.Time) (*LedgerEntry, error) {
	offset, err := NewLedgerEntry(e.TenantID, e.ProductID, e.LocationID, EntryTypeAdjust, e.Quantity.Neg(), occurredAt)
	if err != nil {
		return nil, err
	}
	if e.BatchID != nil {
		offset.WithBatch(*e.BatchID)
	}
	offset.WithReference(ReferenceKindAdjustment, e.ID).WithReason(reason)
	return offset, nil
}
