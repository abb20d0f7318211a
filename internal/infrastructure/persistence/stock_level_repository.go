package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/poscore/backend/internal/domain/inventory"
	"github.com/poscore/backend/internal/domain/shared"
)

// GormStockLevelRepository implements inventory.StockLevelRepository
// using GORM. Rows are a cache of ledger sums; DeleteByTenant exists
// so a rebuild can start from nothing.
type GormStockLevelRepository struct {
	db *gorm.DB
}

// NewGormStockLevelRepository creates a new GormStockLevelRepository
func NewGormStockLevelRepository(db *gorm.DB) *GormStockLevelRepository {
	return &GormStockLevelRepository{db: db}
}

// Save creates or updates a stock level row
func (r *GormStockLevelRepository) Save(ctx context.Context, level *inventory.StockLevel) error {
	return r.db.WithContext(ctx).Save(level).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormStockLevelRepository) SaveWithLock(ctx context.Context, level *inventory.StockLevel) error {
	result := r.db.WithContext(ctx).
		Model(level).
		Where("id = ? AND version = ?", level.ID, level.Version-1).
		Updates(map[string]interface{}{
			"quantity":   level.Quantity,
			"version":    level.Version,
			"updated_at": level.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Stock level was modified by another transaction")
	}
	return nil
}

// Find finds the cache row for one product at one location
func (r *GormStockLevelRepository) Find(ctx context.Context, tenantID, productID, locationID uuid.UUID) (*inventory.StockLevel, error) {
	var level inventory.StockLevel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND location_id = ?", tenantID, productID, locationID).
		First(&level).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}

// FindByLocation finds all cache rows at one location
func (r *GormStockLevelRepository) FindByLocation(ctx context.Context, tenantID, locationID uuid.UUID, filter shared.Filter) ([]*inventory.StockLevel, error) {
	var levels []*inventory.StockLevel
	query := r.db.WithContext(ctx).Model(&inventory.StockLevel{}).
		Where("tenant_id = ? AND location_id = ?", tenantID, locationID)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, StockLevelSortFields, "product_id")
	orderDir := "ASC"
	if strings.ToLower(filter.OrderDir) == "desc" {
		orderDir = "DESC"
	}
	query = query.Order(orderBy + " " + orderDir)

	if err := query.Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// FindByProduct finds all cache rows for one product across locations
func (r *GormStockLevelRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]*inventory.StockLevel, error) {
	var levels []*inventory.StockLevel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Find(&levels).Error
	if err != nil {
		return nil, err
	}
	return levels, nil
}

// DeleteByTenant removes every cache row of a tenant before a rebuild
func (r *GormStockLevelRepository) DeleteByTenant(ctx context.Context, tenantID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&inventory.StockLevel{}, "tenant_id = ?", tenantID).Error
}

var _ inventory.StockLevelRepository = (*GormStockLevelRepository)(nil)
