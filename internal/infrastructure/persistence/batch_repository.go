package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/poscore/backend/internal/domain/inventory"
	"github.com/poscore/backend/internal/domain/shared"
)

// GormBatchRepository implements inventory.BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// Save creates or updates a batch
func (r *GormBatchRepository) Save(ctx context.Context, batch *inventory.Batch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormBatchRepository) SaveWithLock(ctx context.Context, batch *inventory.Batch) error {
	result := r.db.WithContext(ctx).
		Model(batch).
		Where("id = ? AND version = ?", batch.ID, batch.Version-1).
		Updates(map[string]interface{}{
			"quantity":   batch.Quantity,
			"status":     batch.Status,
			"version":    batch.Version,
			"updated_at": batch.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Batch was modified by another transaction")
	}
	return nil
}

// FindByID finds a batch by ID within a tenant
func (r *GormBatchRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Batch, error) {
	var batch inventory.Batch
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindByNumber finds a batch by its number within one tenant, product
// and location, the scope the number is unique in
func (r *GormBatchRepository) FindByNumber(ctx context.Context, tenantID, productID, locationID uuid.UUID, batchNumber string) (*inventory.Batch, error) {
	var batch inventory.Batch
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND location_id = ? AND batch_number = ?",
			tenantID, productID, locationID, strings.TrimSpace(batchNumber)).
		First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindByProductLocation finds all batches of a product at a location
func (r *GormBatchRepository) FindByProductLocation(ctx context.Context, tenantID, productID, locationID uuid.UUID) ([]*inventory.Batch, error) {
	var batches []*inventory.Batch
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND location_id = ?", tenantID, productID, locationID).
		Order("received_at ASC").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}

// FindAvailable finds batches of a product at a location that still
// hold stock and have not expired as of the given time. Ordering for
// first-expired-first-out is done in the domain.
func (r *GormBatchRepository) FindAvailable(ctx context.Context, tenantID, productID, locationID uuid.UUID, asOf time.Time) ([]*inventory.Batch, error) {
	var batches []*inventory.Batch
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND location_id = ?", tenantID, productID, locationID).
		Where("quantity > 0").
		Where("expiry_date IS NULL OR expiry_date > ?", asOf).
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}

// FindExpiring finds batches with stock that expire before the given time
func (r *GormBatchRepository) FindExpiring(ctx context.Context, tenantID uuid.UUID, before time.Time, filter shared.Filter) ([]*inventory.Batch, error) {
	var batches []*inventory.Batch
	query := r.db.WithContext(ctx).Model(&inventory.Batch{}).
		Where("tenant_id = ?", tenantID).
		Where("quantity > 0").
		Where("expiry_date IS NOT NULL AND expiry_date <= ?", before).
		Order("expiry_date ASC")

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindAll finds all batches for a tenant
func (r *GormBatchRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*inventory.Batch, error) {
	var batches []*inventory.Batch
	query := r.db.WithContext(ctx).Model(&inventory.Batch{}).Where("tenant_id = ?", tenantID)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, BatchSortFields, "received_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

var _ inventory.BatchRepository = (*GormBatchRepository)(nil)
