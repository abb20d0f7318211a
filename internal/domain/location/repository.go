package location

import (
	"context"

	"github.com/google/uuid"
	"github.com/poscore/backend/internal/domain/shared"
)

// Repository defines persistence operations for locations
type Repository interface {
	Save(ctx context.Context, loc *Location) error
	SaveWithLock(ctx context.Context, loc *Location) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Location, error)
	FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*Location, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Location, error)
	FindByType(ctx context.Context, tenantID uuid.UUID, locationType LocationType, filter shared.Filter) ([]*Location, error)
	Count(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
