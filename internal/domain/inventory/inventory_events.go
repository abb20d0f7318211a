package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poscore/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeLedgerEntry = "LedgerEntry"
	AggregateTypeBatch       = "Batch"
)

// Event type constants
const (
	EventTypeLedgerEntryAppended = "LedgerEntryAppended"
	EventTypeBatchCreated        = "BatchCreated"
	EventTypeBatchDepleted       = "BatchDepleted"
	EventTypeStockBelowReorder   = "StockBelowReorder"
)

// LedgerEntryAppendedEvent is published when a movement is recorded
type LedgerEntryAppendedEvent struct {
	shared.BaseDomainEvent
	EntryID    uuid.UUID       `json:"entry_id"`
	ProductID  uuid.UUID       `json:"product_id"`
	LocationID uuid.UUID       `json:"location_id"`
	EntryKind  string          `json:"entry_kind"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// NewLedgerEntryAppendedEvent creates a new LedgerEntryAppendedEvent
func NewLedgerEntryAppendedEvent(entry *LedgerEntry) *LedgerEntryAppendedEvent {
	return &LedgerEntryAppendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLedgerEntryAppended, AggregateTypeLedgerEntry, entry.ID, entry.TenantID),
		EntryID:         entry.ID,
		ProductID:       entry.ProductID,
		LocationID:      entry.LocationID,
		EntryKind:       entry.EntryType.String(),
		Quantity:        entry.Quantity,
	}
}

// BatchCreatedEvent is published when a new batch is received
type BatchCreatedEvent struct {
	shared.BaseDomainEvent
	BatchID     uuid.UUID       `json:"batch_id"`
	BatchNumber string          `json:"batch_number"`
	ProductID   uuid.UUID       `json:"product_id"`
	LocationID  uuid.UUID       `json:"location_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// NewBatchCreatedEvent creates a new BatchCreatedEvent
func NewBatchCreatedEvent(batch *Batch) *BatchCreatedEvent {
	return &BatchCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchCreated, AggregateTypeBatch, batch.ID, batch.TenantID),
		BatchID:         batch.ID,
		BatchNumber:     batch.BatchNumber,
		ProductID:       batch.ProductID,
		LocationID:      batch.LocationID,
		Quantity:        batch.Quantity,
	}
}

// BatchDepletedEvent is published when a batch reaches zero quantity
type BatchDepletedEvent struct {
	shared.BaseDomainEvent
	BatchID     uuid.UUID `json:"batch_id"`
	BatchNumber string    `json:"batch_number"`
	ProductID   uuid.UUID `json:"product_id"`
	LocationID  uuid.UUID `json:"location_id"`
}

// NewBatchDepletedEvent creates a new BatchDepletedEvent
func NewBatchDepletedEvent(batch *Batch) *BatchDepletedEvent {
	return &BatchDepletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchDepleted, AggregateTypeBatch, batch.ID, batch.TenantID),
		BatchID:         batch.ID,
		BatchNumber:     batch.BatchNumber,
		ProductID:       batch.ProductID,
		LocationID:      batch.LocationID,
	}
}

// StockBelowReorderEvent is published when a movement drops the
// on-hand quantity to or below the product's reorder level
type StockBelowReorderEvent struct {
	shared.BaseDomainEvent
	ProductID    uuid.UUID       `json:"product_id"`
	LocationID   uuid.UUID       `json:"location_id"`
	OnHand       decimal.Decimal `json:"on_hand"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
}

// NewStockBelowReorderEvent creates a new StockBelowReorderEvent
func NewStockBelowReorderEvent(tenantID, productID, locationID uuid.UUID, onHand, reorderLevel decimal.Decimal) *StockBelowReorderEvent {
	return &StockBelowReorderEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowReorder, AggregateTypeLedgerEntry, productID, tenantID),
		ProductID:       productID,
		LocationID:      locationID,
		OnHand:          onHand,
		ReorderLevel:    reorderLevel,
	}
}
