package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/poscore/backend/internal/domain/location"
	"github.com/poscore/backend/internal/domain/shared"
)

// GormLocationRepository implements location.Repository using GORM
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// Save creates or updates a location
func (r *GormLocationRepository) Save(ctx context.Context, loc *location.Location) error {
	return r.db.WithContext(ctx).Save(loc).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormLocationRepository) SaveWithLock(ctx context.Context, loc *location.Location) error {
	result := r.db.WithContext(ctx).
		Model(loc).
		Where("id = ? AND version = ?", loc.ID, loc.Version-1).
		Updates(map[string]interface{}{
			"name":       loc.Name,
			"address":    loc.Address,
			"phone":      loc.Phone,
			"is_active":  loc.IsActive,
			"version":    loc.Version,
			"updated_at": loc.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Location was modified by another transaction")
	}
	return nil
}

// FindByID finds a location by ID within a tenant
func (r *GormLocationRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*location.Location, error) {
	var loc location.Location
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&loc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &loc, nil
}

// FindByName finds a location by its tenant-unique name
func (r *GormLocationRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*location.Location, error) {
	var loc location.Location
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND name = ?", tenantID, strings.TrimSpace(name)).
		First(&loc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &loc, nil
}

// FindAll finds all locations for a tenant
func (r *GormLocationRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*location.Location, error) {
	var locations []*location.Location
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&location.Location{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// FindByType finds all locations of one type for a tenant
func (r *GormLocationRepository) FindByType(ctx context.Context, tenantID uuid.UUID, locationType location.LocationType, filter shared.Filter) ([]*location.Location, error) {
	var locations []*location.Location
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&location.Location{}).
			Where("tenant_id = ? AND type = ?", tenantID, locationType),
		filter,
	)
	if err := query.Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// Count counts locations for a tenant
func (r *GormLocationRepository) Count(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&location.Location{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}

// applyFilter applies pagination and ordering to a query
func (r *GormLocationRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, LocationSortFields, "name")
	orderDir := "ASC"
	if strings.ToLower(filter.OrderDir) == "desc" {
		orderDir = "DESC"
	}
	return query.Order(orderBy + " " + orderDir)
}

var _ location.Repository = (*GormLocationRepository)(nil)
