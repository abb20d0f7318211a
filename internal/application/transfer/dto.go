package transfer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poscore/backend/internal/domain/transfer"
)

// CreateTransferRequest creates a draft transfer with its lines
type CreateTransferRequest struct {
	SourceID      uuid.UUID           `json:"source_id" binding:"required"`
	DestinationID uuid.UUID           `json:"destination_id" binding:"required"`
	Notes         string              `json:"notes" binding:"max=1000"`
	Items         []ItemRequest       `json:"items" binding:"required,min=1,dive"`
}

// ItemRequest is one requested line. BatchID optionally pins the
// source batch the line should draw from.
type ItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	BatchID   *uuid.UUID      `json:"batch_id"`
	Notes     string          `json:"notes" binding:"max=500"`
}

// ReceiveRequest confirms arrival quantities per line
type ReceiveRequest struct {
	Items []ReceiptRequest `json:"items" binding:"required,min=1,dive"`
}

// ReceiptRequest is one confirmed line
type ReceiptRequest struct {
	ItemID   uuid.UUID       `json:"item_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// DisputeRequest flags a transfer for investigation
type DisputeRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// CloseRequest finalizes a transfer with optional resolution notes
type CloseRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

// ItemResponse represents a transfer line in API responses
type ItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	ProductName       string          `json:"product_name"`
	ProductSKU        string          `json:"product_sku"`
	BatchID           *uuid.UUID      `json:"batch_id,omitempty"`
	QuantityRequested decimal.Decimal `json:"quantity_requested"`
	QuantitySent      decimal.Decimal `json:"quantity_sent"`
	QuantityReceived  decimal.Decimal `json:"quantity_received"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	Discrepancy       decimal.Decimal `json:"discrepancy"`
	Notes             string          `json:"notes,omitempty"`
}

// TransferResponse represents a transfer in API responses
type TransferResponse struct {
	ID              uuid.UUID       `json:"id"`
	TransferNumber  string          `json:"transfer_number"`
	SourceID        uuid.UUID       `json:"source_id"`
	DestinationID   uuid.UUID       `json:"destination_id"`
	Status          string          `json:"status"`
	Notes           string          `json:"notes,omitempty"`
	DisputeReason   string          `json:"dispute_reason,omitempty"`
	ResolutionNotes string          `json:"resolution_notes,omitempty"`
	TotalSent       decimal.Decimal `json:"total_sent"`
	TotalReceived   decimal.Decimal `json:"total_received"`
	SentAt          *time.Time      `json:"sent_at,omitempty"`
	ReceivedAt      *time.Time      `json:"received_at,omitempty"`
	ClosedAt        *time.Time      `json:"closed_at,omitempty"`
	Items           []ItemResponse  `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// ToTransferResponse converts a domain transfer to its response form
func ToTransferResponse(t *transfer.Transfer) TransferResponse {
	items := make([]ItemResponse, len(t.Items))
	for i := range t.Items {
		items[i] = ItemResponse{
			ID:                t.Items[i].ID,
			ProductID:         t.Items[i].ProductID,
			ProductName:       t.Items[i].ProductName,
			ProductSKU:        t.Items[i].ProductSKU,
			BatchID:           t.Items[i].BatchID,
			QuantityRequested: t.Items[i].QuantityRequested,
			QuantitySent:      t.Items[i].QuantitySent,
			QuantityReceived:  t.Items[i].QuantityReceived,
			UnitCost:          t.Items[i].UnitCost,
			Discrepancy:       t.Items[i].Discrepancy(),
			Notes:             t.Items[i].Notes,
		}
	}
	return TransferResponse{
		ID:              t.ID,
		TransferNumber:  t.TransferNumber,
		SourceID:        t.SourceID,
		DestinationID:   t.DestinationID,
		Status:          t.Status.String(),
		Notes:           t.Notes,
		DisputeReason:   t.DisputeReason,
		ResolutionNotes: t.ResolutionNotes,
		TotalSent:       t.TotalSent(),
		TotalReceived:   t.TotalReceived(),
		SentAt:          t.SentAt,
		ReceivedAt:      t.ReceivedAt,
		ClosedAt:        t.ClosedAt,
		Items:           items,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		Version:         t.GetVersion(),
	}
}

// ToTransferResponses converts a slice of transfers
func ToTransferResponses(transfers []*transfer.Transfer) []TransferResponse {
	responses := make([]TransferResponse, len(transfers))
	for i, t := range transfers {
		responses[i] = ToTransferResponse(t)
	}
	return responses
}

// ListFilter represents filter options for transfer lists
type ListFilter struct {
	Status        *string    `form:"status"`
	SourceID      *uuid.UUID `form:"source_id"`
	DestinationID *uuid.UUID `form:"destination_id"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}
