package request

import (
	"github.com/google/uuid"

	"github.com/poscore/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeStockRequest = "StockRequest"

// Event type constants
const (
	EventTypeStockRequestCreated   = "StockRequestCreated"
	EventTypeStockRequestApproved  = "StockRequestApproved"
	EventTypeStockRequestRejected  = "StockRequestRejected"
	EventTypeStockRequestCancelled = "StockRequestCancelled"
	EventTypeStockRequestConverted = "StockRequestConverted"
)

// StockRequestCreatedEvent is published when a request is raised
type StockRequestCreatedEvent struct {
	shared.BaseDomainEvent
	RequestID     uuid.UUID `json:"request_id"`
	RequestNumber string    `json:"request_number"`
	RequesterID   uuid.UUID `json:"requester_id"`
	SupplierID    uuid.UUID `json:"supplier_id"`
}

// NewStockRequestCreatedEvent creates a new StockRequestCreatedEvent
func NewStockRequestCreatedEvent(r *StockRequest) *StockRequestCreatedEvent {
	return &StockRequestCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockRequestCreated, AggregateTypeStockRequest, r.ID, r.TenantID),
		RequestID:       r.ID,
		RequestNumber:   r.RequestNumber,
		RequesterID:     r.RequesterID,
		SupplierID:      r.SupplierID,
	}
}

// StockRequestApprovedEvent is published when the supplier approves
type StockRequestApprovedEvent struct {
	shared.BaseDomainEvent
	RequestID     uuid.UUID `json:"request_id"`
	RequestNumber string    `json:"request_number"`
}

// NewStockRequestApprovedEvent creates a new StockRequestApprovedEvent
func NewStockRequestApprovedEvent(r *StockRequest) *StockRequestApprovedEvent {
	return &StockRequestApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockRequestApproved, AggregateTypeStockRequest, r.ID, r.TenantID),
		RequestID:       r.ID,
		RequestNumber:   r.RequestNumber,
	}
}

// StockRequestRejectedEvent is published when the supplier declines
type StockRequestRejectedEvent struct {
	shared.BaseDomainEvent
	RequestID     uuid.UUID `json:"request_id"`
	RequestNumber string    `json:"request_number"`
	Reason        string    `json:"reason"`
}

// NewStockRequestRejectedEvent creates a new StockRequestRejectedEvent
func NewStockRequestRejectedEvent(r *StockRequest) *StockRequestRejectedEvent {
	return &StockRequestRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockRequestRejected, AggregateTypeStockRequest, r.ID, r.TenantID),
		RequestID:       r.ID,
		RequestNumber:   r.RequestNumber,
		Reason:          r.RejectReason,
	}
}

// StockRequestCancelledEvent is published when the requester withdraws
type StockRequestCancelledEvent struct {
	shared.BaseDomainEvent
	RequestID     uuid.UUID `json:"request_id"`
	RequestNumber string    `json:"request_number"`
}

// NewStockRequestCancelledEvent creates a new StockRequestCancelledEvent
func NewStockRequestCancelledEvent(r *StockRequest) *StockRequestCancelledEvent {
	return &StockRequestCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockRequestCancelled, AggregateTypeStockRequest, r.ID, r.TenantID),
		RequestID:       r.ID,
		RequestNumber:   r.RequestNumber,
	}
}

// StockRequestConvertedEvent is published when an approved request
// becomes a draft transfer
type StockRequestConvertedEvent struct {
	shared.BaseDomainEvent
	RequestID     uuid.UUID `json:"request_id"`
	RequestNumber string    `json:"request_number"`
	TransferID    uuid.UUID `json:"transfer_id"`
}

// NewStockRequestConvertedEvent creates a new StockRequestConvertedEvent
func NewStockRequestConvertedEvent(r *StockRequest, transferID uuid.UUID) *StockRequestConvertedEvent {
	return &StockRequestConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockRequestConverted, AggregateTypeStockRequest, r.ID, r.TenantID),
		RequestID:       r.ID,
		RequestNumber:   r.RequestNumber,
		TransferID:      transferID,
	}
}
