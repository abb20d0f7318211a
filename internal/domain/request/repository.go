package request

import (
	"context"

	"github.com/google/uuid"
	"github.com/poscore/backend/internal/domain/shared"
)

// Filter narrows request queries
type Filter struct {
	shared.Filter
	Status      *Status
	RequesterID *uuid.UUID
	SupplierID  *uuid.UUID
}

// Repository defines persistence operations for stock requests
type Repository interface {
	Save(ctx context.Context, req *StockRequest) error
	SaveWithLock(ctx context.Context, req *StockRequest) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*StockRequest, error)
	FindByNumber(ctx context.Context, tenantID uuid.UUID, requestNumber string) (*StockRequest, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]*StockRequest, error)
	Count(ctx context.Context, tenantID uuid.UUID, filter Filter) (int64, error)
	// GenerateRequestNumber issues the next tenant-scoped number in the
	// REQ%06d sequence, inside the saving transaction.
	GenerateRequestNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}
