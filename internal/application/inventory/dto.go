package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poscore/backend/internal/domain/inventory"
)

// ReceiveBatchRequest records goods arriving from outside the system
type ReceiveBatchRequest struct {
	ProductID       uuid.UUID       `json:"product_id" binding:"required"`
	LocationID      uuid.UUID       `json:"location_id" binding:"required"`
	BatchNumber     string          `json:"batch_number" binding:"required,max=64"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	ExpiryDate      *time.Time      `json:"expiry_date"`
	ManufactureDate *time.Time      `json:"manufacture_date"`
}

// AdjustStockRequest corrects the on-hand figure by a signed quantity
type AdjustStockRequest struct {
	ProductID  uuid.UUID       `json:"product_id" binding:"required"`
	LocationID uuid.UUID       `json:"location_id" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
	Reason     string          `json:"reason" binding:"required,max=500"`
	BatchID    *uuid.UUID      `json:"batch_id"`
}

// MovementRequest records a sale, void, return, damage or production movement
type MovementRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	LocationID  uuid.UUID       `json:"location_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"` // Always positive; the entry type fixes the direction
	ReferenceID *uuid.UUID      `json:"reference_id"`
	Reason      string          `json:"reason,omitempty"`
}

// LedgerEntryResponse represents a ledger row in API responses
type LedgerEntryResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	LocationID    uuid.UUID       `json:"location_id"`
	BatchID       *uuid.UUID      `json:"batch_id,omitempty"`
	EntryType     string          `json:"entry_type"`
	Quantity      decimal.Decimal `json:"quantity"`
	ReferenceKind string          `json:"reference_kind,omitempty"`
	ReferenceID   *uuid.UUID      `json:"reference_id,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToLedgerEntryResponse converts a domain entry to its response form
func ToLedgerEntryResponse(e *inventory.LedgerEntry) LedgerEntryResponse {
	resp := LedgerEntryResponse{
		ID:         e.ID,
		ProductID:  e.ProductID,
		LocationID: e.LocationID,
		BatchID:    e.BatchID,
		EntryType:  e.EntryType.String(),
		Quantity:   e.Quantity,
		Reason:     e.Reason,
		OccurredAt: e.OccurredAt,
		CreatedAt:  e.CreatedAt,
	}
	if !e.Reference.IsZero() {
		resp.ReferenceKind = string(e.Reference.Kind)
		refID := e.Reference.ID
		resp.ReferenceID = &refID
	}
	return resp
}

// ToLedgerEntryResponses converts a slice of entries
func ToLedgerEntryResponses(entries []*inventory.LedgerEntry) []LedgerEntryResponse {
	responses := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = ToLedgerEntryResponse(e)
	}
	return responses
}

// BatchResponse represents a batch in API responses
type BatchResponse struct {
	ID              uuid.UUID       `json:"id"`
	BatchNumber     string          `json:"batch_number"`
	ProductID       uuid.UUID       `json:"product_id"`
	LocationID      uuid.UUID       `json:"location_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	ManufactureDate *time.Time      `json:"manufacture_date,omitempty"`
	ReceivedAt      time.Time       `json:"received_at"`
	Status          string          `json:"status"`
	Version         int             `json:"version"`
}

// ToBatchResponse converts a domain batch to its response form
func ToBatchResponse(b *inventory.Batch) BatchResponse {
	return BatchResponse{
		ID:              b.ID,
		BatchNumber:     b.BatchNumber,
		ProductID:       b.ProductID,
		LocationID:      b.LocationID,
		Quantity:        b.Quantity,
		UnitCost:        b.UnitCost,
		ExpiryDate:      b.ExpiryDate,
		ManufactureDate: b.ManufactureDate,
		ReceivedAt:      b.ReceivedAt,
		Status:          string(b.Status),
		Version:         b.GetVersion(),
	}
}

// ToBatchResponses converts a slice of batches
func ToBatchResponses(batches []*inventory.Batch) []BatchResponse {
	responses := make([]BatchResponse, len(batches))
	for i, b := range batches {
		responses[i] = ToBatchResponse(b)
	}
	return responses
}

// StockLevelResponse represents an on-hand figure in API responses
type StockLevelResponse struct {
	ProductID  uuid.UUID       `json:"product_id"`
	LocationID uuid.UUID       `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ToStockLevelResponse converts a cache row to its response form
func ToStockLevelResponse(s *inventory.StockLevel) StockLevelResponse {
	return StockLevelResponse{
		ProductID:  s.ProductID,
		LocationID: s.LocationID,
		Quantity:   s.Quantity,
		UpdatedAt:  s.UpdatedAt,
	}
}

// TotalStockResponse aggregates a product's on-hand figure across all
// locations, with the per-location breakdown
type TotalStockResponse struct {
	ProductID uuid.UUID            `json:"product_id"`
	Total     decimal.Decimal      `json:"total"`
	Locations []StockLevelResponse `json:"locations"`
}

// ToStockLevelResponses converts a slice of cache rows
func ToStockLevelResponses(levels []*inventory.StockLevel) []StockLevelResponse {
	responses := make([]StockLevelResponse, len(levels))
	for i, s := range levels {
		responses[i] = ToStockLevelResponse(s)
	}
	return responses
}

// LedgerListFilter represents filter options for ledger queries
type LedgerListFilter struct {
	ProductID  *uuid.UUID `form:"product_id"`
	LocationID *uuid.UUID `form:"location_id"`
	BatchID    *uuid.UUID `form:"batch_id"`
	EntryType  *string    `form:"entry_type"`
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}
