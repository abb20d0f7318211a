package cashledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poscore/backend/internal/domain/shared"
)

// Account is the money pool the entry belongs to. Each shop holds a
// physical cash drawer balance and an electronic money balance.
type Account string

const (
	AccountCash  Account = "CASH"
	AccountECash Account = "ECASH"
)

// IsValid returns true if the account is valid
func (a Account) IsValid() bool {
	return a == AccountCash || a == AccountECash
}

// String returns the string representation of Account
func (a Account) String() string {
	return string(a)
}

// EntryType represents the kind of cash movement
type EntryType string

const (
	EntryTypePayment    EntryType = "PAYMENT"    // Customer payment received
	EntryTypeWithdrawal EntryType = "WITHDRAWAL" // Cash taken out of the drawer or account
	EntryTypeRefund     EntryType = "REFUND"     // Money returned to a customer
	EntryTypeAdjustment EntryType = "ADJUSTMENT" // Manual correction, either sign
)

// IsValid returns true if the entry type is valid
func (t EntryType) IsValid() bool {
	switch t {
	case EntryTypePayment, EntryTypeWithdrawal, EntryTypeRefund, EntryTypeAdjustment:
		return true
	}
	return false
}

// String returns the string representation of EntryType
func (t EntryType) String() string {
	return string(t)
}

// Sign returns +1 for types that must increase the balance, -1 for
// types that must decrease it, and 0 for types that allow either sign.
func (t EntryType) Sign() int {
	switch t {
	case EntryTypePayment:
		return 1
	case EntryTypeWithdrawal, EntryTypeRefund:
		return -1
	}
	return 0
}

// Entry is one immutable row in a shop's cash ledger. Like the stock
// ledger it is append-only; a shop's balance on an account is the sum
// of its entry amounts.
type Entry struct {
	shared.TenantAggregateRoot
	ShopID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_cash_shop_account"`
	Account     Account         `gorm:"type:varchar(10);not null;index:idx_cash_shop_account"`
	EntryType   EntryType       `gorm:"type:varchar(20);not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"` // Signed: positive adds to the balance
	ReferenceID *uuid.UUID      `gorm:"type:uuid;index"`             // Sale or adjustment this entry settles
	Reason      string          `gorm:"type:varchar(500)"`
	OccurredAt  time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Entry) TableName() string {
	return "cash_ledger"
}

// NewEntry creates a cash ledger entry after validating the amount
// sign against the entry type. The amount must be non-zero.
func NewEntry(
	tenantID, shopID uuid.UUID,
	account Account,
	entryType EntryType,
	amount decimal.Decimal,
	occurredAt time.Time,
) (*Entry, error) {
	if shopID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop is required")
	}
	if !account.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Invalid cash account")
	}
	if !entryType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTRY_TYPE", "Invalid cash entry type")
	}
	if amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Cash amount cannot be zero")
	}
	switch entryType.Sign() {
	case 1:
		if amount.IsNegative() {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive for entry type "+entryType.String())
		}
	case -1:
		if amount.IsPositive() {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be negative for entry type "+entryType.String())
		}
	}

	entry := &Entry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ShopID:              shopID,
		Account:             account,
		EntryType:           entryType,
		Amount:              amount,
		OccurredAt:          occurredAt,
	}

	entry.AddDomainEvent(NewCashEntryAppendedEvent(entry))

	return entry, nil
}

// WithReference attaches the record this entry settles
func (e *Entry) WithReference(id uuid.UUID) *Entry {
	e.ReferenceID = &id
	return e
}

// WithReason attaches a free-text reason, required for adjustments
func (e *Entry) WithReason(reason string) *Entry {
	e.Reason = reason
	return e
}
