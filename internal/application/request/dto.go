package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poscore/backend/internal/domain/request"
)

// CreateRequest raises a stock request with its lines
type CreateRequest struct {
	RequesterID uuid.UUID     `json:"requester_id" binding:"required"`
	SupplierID  uuid.UUID     `json:"supplier_id" binding:"required"`
	Notes       string        `json:"notes" binding:"max=1000"`
	Items       []ItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ItemRequest is one requested line. Zero quantity means "send some".
type ItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// RejectRequest declines a stock request
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// ItemResponse represents a requested line in API responses
type ItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSKU  string          `json:"product_sku"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// RequestResponse represents a stock request in API responses
type RequestResponse struct {
	ID            uuid.UUID      `json:"id"`
	RequestNumber string         `json:"request_number"`
	RequesterID   uuid.UUID      `json:"requester_id"`
	SupplierID    uuid.UUID      `json:"supplier_id"`
	Status        string         `json:"status"`
	Notes         string         `json:"notes,omitempty"`
	RejectReason  string         `json:"reject_reason,omitempty"`
	TransferID    *uuid.UUID     `json:"transfer_id,omitempty"`
	DecidedAt     *time.Time     `json:"decided_at,omitempty"`
	Items         []ItemResponse `json:"items"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Version       int            `json:"version"`
}

// ToRequestResponse converts a domain request to its response form
func ToRequestResponse(r *request.StockRequest) RequestResponse {
	items := make([]ItemResponse, len(r.Items))
	for i := range r.Items {
		items[i] = ItemResponse{
			ID:          r.Items[i].ID,
			ProductID:   r.Items[i].ProductID,
			ProductName: r.Items[i].ProductName,
			ProductSKU:  r.Items[i].ProductSKU,
			Quantity:    r.Items[i].Quantity,
		}
	}
	return RequestResponse{
		ID:            r.ID,
		RequestNumber: r.RequestNumber,
		RequesterID:   r.RequesterID,
		SupplierID:    r.SupplierID,
		Status:        r.Status.String(),
		Notes:         r.Notes,
		RejectReason:  r.RejectReason,
		TransferID:    r.TransferID,
		DecidedAt:     r.DecidedAt,
		Items:         items,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		Version:       r.GetVersion(),
	}
}

// ToRequestResponses converts a slice of requests
func ToRequestResponses(requests []*request.StockRequest) []RequestResponse {
	responses := make([]RequestResponse, len(requests))
	for i, r := range requests {
		responses[i] = ToRequestResponse(r)
	}
	return responses
}

// ListFilter represents filter options for request lists
type ListFilter struct {
	Status      *string    `form:"status"`
	RequesterID *uuid.UUID `form:"requester_id"`
	SupplierID  *uuid.UUID `form:"supplier_id"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}
