package transfer

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poscore/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeTransfer = "Transfer"

// Event type constants
const (
	EventTypeTransferCreated   = "TransferCreated"
	EventTypeTransferSent      = "TransferSent"
	EventTypeTransferReceived  = "TransferReceived"
	EventTypeTransferDisputed  = "TransferDisputed"
	EventTypeTransferClosed    = "TransferClosed"
	EventTypeTransferCancelled = "TransferCancelled"
)

// TransferCreatedEvent is published when a draft transfer is created
type TransferCreatedEvent struct {
	shared.BaseDomainEvent
	TransferID     uuid.UUID `json:"transfer_id"`
	TransferNumber string    `json:"transfer_number"`
	SourceID       uuid.UUID `json:"source_id"`
	DestinationID  uuid.UUID `json:"destination_id"`
}

// NewTransferCreatedEvent creates a new TransferCreatedEvent
func NewTransferCreatedEvent(t *Transfer) *TransferCreatedEvent {
	return &TransferCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferCreated, AggregateTypeTransfer, t.ID, t.TenantID),
		TransferID:      t.ID,
		TransferNumber:  t.TransferNumber,
		SourceID:        t.SourceID,
		DestinationID:   t.DestinationID,
	}
}

// TransferSentEvent is published when a transfer leaves the source
type TransferSentEvent struct {
	shared.BaseDomainEvent
	TransferID     uuid.UUID       `json:"transfer_id"`
	TransferNumber string          `json:"transfer_number"`
	SourceID       uuid.UUID       `json:"source_id"`
	DestinationID  uuid.UUID       `json:"destination_id"`
	TotalSent      decimal.Decimal `json:"total_sent"`
}

// NewTransferSentEvent creates a new TransferSentEvent
func NewTransferSentEvent(t *Transfer) *TransferSentEvent {
	return &TransferSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferSent, AggregateTypeTransfer, t.ID, t.TenantID),
		TransferID:      t.ID,
		TransferNumber:  t.TransferNumber,
		SourceID:        t.SourceID,
		DestinationID:   t.DestinationID,
		TotalSent:       t.TotalSent(),
	}
}

// TransferReceivedEvent is published when the destination confirms arrival
type TransferReceivedEvent struct {
	shared.BaseDomainEvent
	TransferID     uuid.UUID       `json:"transfer_id"`
	TransferNumber string          `json:"transfer_number"`
	Full           bool            `json:"full"`
	TotalReceived  decimal.Decimal `json:"total_received"`
}

// NewTransferReceivedEvent creates a new TransferReceivedEvent
func NewTransferReceivedEvent(t *Transfer, full bool) *TransferReceivedEvent {
	return &TransferReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferReceived, AggregateTypeTransfer, t.ID, t.TenantID),
		TransferID:      t.ID,
		TransferNumber:  t.TransferNumber,
		Full:            full,
		TotalReceived:   t.TotalReceived(),
	}
}

// TransferDisputedEvent is published when a transfer is flagged for investigation
type TransferDisputedEvent struct {
	shared.BaseDomainEvent
	TransferID     uuid.UUID `json:"transfer_id"`
	TransferNumber string    `json:"transfer_number"`
	Reason         string    `json:"reason"`
}

// NewTransferDisputedEvent creates a new TransferDisputedEvent
func NewTransferDisputedEvent(t *Transfer) *TransferDisputedEvent {
	return &TransferDisputedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferDisputed, AggregateTypeTransfer, t.ID, t.TenantID),
		TransferID:      t.ID,
		TransferNumber:  t.TransferNumber,
		Reason:          t.DisputeReason,
	}
}

// TransferClosedEvent is published when a transfer is finalized
type TransferClosedEvent struct {
	shared.BaseDomainEvent
	TransferID     uuid.UUID `json:"transfer_id"`
	TransferNumber string    `json:"transfer_number"`
	Discrepancy    bool      `json:"discrepancy"`
}

// NewTransferClosedEvent creates a new TransferClosedEvent
func NewTransferClosedEvent(t *Transfer) *TransferClosedEvent {
	return &TransferClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferClosed, AggregateTypeTransfer, t.ID, t.TenantID),
		TransferID:      t.ID,
		TransferNumber:  t.TransferNumber,
		Discrepancy:     t.HasDiscrepancy(),
	}
}

// TransferCancelledEvent is published when a draft transfer is abandoned
type TransferCancelledEvent struct {
	shared.BaseDomainEvent
	TransferID     uuid.UUID `json:"transfer_id"`
	TransferNumber string    `json:"transfer_number"`
}

// NewTransferCancelledEvent creates a new TransferCancelledEvent
func NewTransferCancelledEvent(t *Transfer) *TransferCancelledEvent {
	return &TransferCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferCancelled, AggregateTypeTransfer, t.ID, t.TenantID),
		TransferID:      t.ID,
		TransferNumber:  t.TransferNumber,
	}
}
