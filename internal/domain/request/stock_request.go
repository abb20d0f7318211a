package request

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poscore/backend/internal/domain/location"
	"github.com/poscore/backend/internal/domain/shared"
	"github.com/poscore/backend/internal/domain/transfer"
)

// Status represents the status of a stock request
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
	StatusConverted Status = "CONVERTED"
)

// IsValid checks if the status is a valid request status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled, StatusConverted:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusApproved || target == StatusRejected || target == StatusCancelled
	case StatusApproved:
		return target == StatusConverted
	case StatusRejected, StatusCancelled, StatusConverted:
		return false // Terminal states
	}
	return false
}

// Item represents a requested line
type Item struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	RequestID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	ProductSKU  string          `gorm:"type:varchar(64);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "stock_request_items"
}

// NewItem creates a requested line. Zero quantity is accepted and
// treated as "send some" at conversion time.
func NewItem(requestID, productID uuid.UUID, productName, productSKU string, quantity decimal.Decimal) (*Item, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}

	now := time.Now()
	return &Item{
		ID:          uuid.New(),
		RequestID:   requestID,
		ProductID:   productID,
		ProductName: productName,
		ProductSKU:  productSKU,
		Quantity:    quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// StockRequest is a replenishment request raised by a location against
// its supplier: shops request from stores, stores request from
// production. An approved request converts into a draft transfer
// travelling the opposite direction.
type StockRequest struct {
	shared.TenantAggregateRoot
	RequestNumber  string     `gorm:"type:varchar(20);not null;uniqueIndex:idx_request_tenant_number,priority:2"`
	RequesterID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	SupplierID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	Status         Status     `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Notes          string     `gorm:"type:varchar(1000)"`
	RejectReason   string     `gorm:"type:varchar(1000)"`
	DecidedAt      *time.Time `gorm:""`
	DecidedBy      *uuid.UUID `gorm:"type:uuid"`
	TransferID     *uuid.UUID `gorm:"type:uuid;index"` // Set once the request is converted
	Items          []Item     `gorm:"foreignKey:RequestID"`
}

// TableName returns the table name for GORM
func (StockRequest) TableName() string {
	return "stock_requests"
}

// NewStockRequest creates a pending request from a requester to its
// supplier. The direction must be legal for the location types.
func NewStockRequest(
	tenantID uuid.UUID,
	requestNumber string,
	requester, supplier *location.Location,
) (*StockRequest, error) {
	if strings.TrimSpace(requestNumber) == "" {
		return nil, shared.NewDomainError("INVALID_REQUEST_NUMBER", "Request number cannot be empty")
	}
	if requester == nil || supplier == nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Requester and supplier are required")
	}
	if requester.ID == supplier.ID {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Requester and supplier cannot be the same location")
	}
	if requester.TenantID != tenantID || supplier.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	if !requester.IsActive {
		return nil, shared.NewDomainError("INACTIVE_LOCATION", "Requester location is inactive")
	}
	if !supplier.IsActive {
		return nil, shared.NewDomainError("INACTIVE_LOCATION", "Supplier location is inactive")
	}
	if !requester.Type.CanRequestFrom(supplier.Type) {
		return nil, shared.NewDomainError("INVALID_DIRECTION",
			requester.Type.String()+" locations cannot request stock from "+supplier.Type.String())
	}

	req := &StockRequest{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		RequestNumber:       requestNumber,
		RequesterID:         requester.ID,
		SupplierID:          supplier.ID,
		Status:              StatusPending,
		Items:               make([]Item, 0),
	}

	req.AddDomainEvent(NewStockRequestCreatedEvent(req))

	return req, nil
}

// AddItem adds a requested line. Only pending requests can be edited.
func (r *StockRequest) AddItem(productID uuid.UUID, productName, productSKU string, quantity decimal.Decimal) error {
	if r.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Can only add items to pending requests")
	}

	for i := range r.Items {
		if r.Items[i].ProductID == productID {
			r.Items[i].Quantity = r.Items[i].Quantity.Add(quantity)
			r.Items[i].UpdatedAt = time.Now()
			r.UpdatedAt = time.Now()
			r.IncrementVersion()
			return nil
		}
	}

	item, err := NewItem(r.ID, productID, productName, productSKU, quantity)
	if err != nil {
		return err
	}

	r.Items = append(r.Items, *item)
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}

// RemoveItem removes a line from a pending request
func (r *StockRequest) RemoveItem(itemID uuid.UUID) error {
	if r.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Can only remove items from pending requests")
	}

	for i := range r.Items {
		if r.Items[i].ID == itemID {
			r.Items = append(r.Items[:i], r.Items[i+1:]...)
			r.UpdatedAt = time.Now()
			r.IncrementVersion()
			return nil
		}
	}

	return shared.ErrNotFound
}

// Approve accepts the request at the supplier side
func (r *StockRequest) Approve(actorID uuid.UUID, now time.Time) error {
	if !r.Status.CanTransitionTo(StatusApproved) {
		return shared.NewDomainError("INVALID_STATE", "Request cannot be approved from status "+r.Status.String())
	}
	if len(r.Items) == 0 {
		return shared.NewDomainError("EMPTY_REQUEST", "Request must have at least one item")
	}

	r.Status = StatusApproved
	r.DecidedAt = &now
	r.DecidedBy = &actorID
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewStockRequestApprovedEvent(r))

	return nil
}

// Reject declines the request with a reason
func (r *StockRequest) Reject(actorID uuid.UUID, reason string, now time.Time) error {
	if !r.Status.CanTransitionTo(StatusRejected) {
		return shared.NewDomainError("INVALID_STATE", "Request cannot be rejected from status "+r.Status.String())
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Reject reason is required")
	}

	r.Status = StatusRejected
	r.RejectReason = reason
	r.DecidedAt = &now
	r.DecidedBy = &actorID
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewStockRequestRejectedEvent(r))

	return nil
}

// Cancel withdraws a pending request at the requester side
func (r *StockRequest) Cancel(now time.Time) error {
	if !r.Status.CanTransitionTo(StatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", "Only pending requests can be cancelled")
	}

	r.Status = StatusCancelled
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewStockRequestCancelledEvent(r))

	return nil
}

// ConvertToTransfer turns an approved request into a draft transfer
// from the supplier to the requester. Lines requested with zero
// quantity are carried over as quantity one. The caller persists both
// aggregates in one transaction.
func (r *StockRequest) ConvertToTransfer(
	transferNumber string,
	requester, supplier *location.Location,
	now time.Time,
) (*transfer.Transfer, error) {
	if !r.Status.CanTransitionTo(StatusConverted) {
		return nil, shared.NewDomainError("INVALID_STATE", "Request cannot be converted from status "+r.Status.String())
	}
	if requester == nil || supplier == nil || requester.ID != r.RequesterID || supplier.ID != r.SupplierID {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Locations do not match the request")
	}

	tr, err := transfer.NewTransfer(r.TenantID, transferNumber, supplier, requester)
	if err != nil {
		return nil, err
	}

	for i := range r.Items {
		qty := r.Items[i].Quantity
		if qty.IsZero() {
			qty = decimal.NewFromInt(1)
		}
		// Batch is left unset; the supplier picks one at send time
		if err := tr.AddItem(r.Items[i].ProductID, r.Items[i].ProductName, r.Items[i].ProductSKU, qty, nil, ""); err != nil {
			return nil, err
		}
	}

	r.Status = StatusConverted
	r.TransferID = &tr.ID
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewStockRequestConvertedEvent(r, tr.ID))

	return tr, nil
}
