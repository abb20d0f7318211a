package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/poscore/backend/internal/domain/shared"
)

// Repository defines persistence operations for products
type Repository interface {
	Save(ctx context.Context, product *Product) error
	SaveWithLock(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*Product, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Product, error)
	Search(ctx context.Context, tenantID uuid.UUID, query string, filter shared.Filter) ([]*Product, error)
	Count(ctx context.Context, tenantID uuid.UUID) (int64, error)
	ExistsBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (bool, error)
}
