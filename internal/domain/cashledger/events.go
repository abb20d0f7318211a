package cashledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poscore/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeCashEntry = "CashEntry"

// Event type constant
const EventTypeCashEntryAppended = "CashEntryAppended"

// CashEntryAppendedEvent is published when a cash movement is recorded
type CashEntryAppendedEvent struct {
	shared.BaseDomainEvent
	EntryID   uuid.UUID       `json:"entry_id"`
	ShopID    uuid.UUID       `json:"shop_id"`
	Account   string          `json:"account"`
	EntryKind string          `json:"entry_kind"`
	Amount    decimal.Decimal `json:"amount"`
}

// NewCashEntryAppendedEvent creates a new CashEntryAppendedEvent
func NewCashEntryAppendedEvent(entry *Entry) *CashEntryAppendedEvent {
	return &CashEntryAppendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCashEntryAppended, AggregateTypeCashEntry, entry.ID, entry.TenantID),
		EntryID:         entry.ID,
		ShopID:          entry.ShopID,
		Account:         entry.Account.String(),
		EntryKind:       entry.EntryType.String(),
		Amount:          entry.Amount,
	}
}
