package transfer

import (
	"context"

	"github.com/google/uuid"
	"github.com/poscore/backend/internal/domain/shared"
)

// Filter narrows transfer queries
type Filter struct {
	shared.Filter
	Status        *Status
	SourceID      *uuid.UUID
	DestinationID *uuid.UUID
}

// Repository defines persistence operations for transfers
type Repository interface {
	Save(ctx context.Context, transfer *Transfer) error
	SaveWithLock(ctx context.Context, transfer *Transfer) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Transfer, error)
	FindByNumber(ctx context.Context, tenantID uuid.UUID, transferNumber string) (*Transfer, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]*Transfer, error)
	Count(ctx context.Context, tenantID uuid.UUID, filter Filter) (int64, error)
	// GenerateTransferNumber issues the next tenant-scoped number in
	// the TRF%06d sequence. Must be called inside the transaction that
	// saves the transfer so concurrent creates cannot collide.
	GenerateTransferNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}
