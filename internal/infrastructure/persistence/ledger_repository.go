package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/poscore/backend/internal/domain/inventory"
	"github.com/poscore/backend/internal/domain/shared"
)

// GormLedgerRepository implements inventory.LedgerRepository using GORM.
// The ledger table is append-only; there is deliberately no update or
// delete path here.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Append inserts one ledger entry
func (r *GormLedgerRepository) Append(ctx context.Context, entry *inventory.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// AppendAll inserts a group of entries in one statement so a movement
// spanning several batches lands atomically
func (r *GormLedgerRepository) AppendAll(ctx context.Context, entries []*inventory.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(entries).Error
}

// FindByID finds a ledger entry by ID within a tenant
func (r *GormLedgerRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.LedgerEntry, error) {
	var entry inventory.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindAll finds ledger entries matching the filter
func (r *GormLedgerRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter inventory.LedgerFilter) ([]*inventory.LedgerEntry, error) {
	var entries []*inventory.LedgerEntry
	query := r.applyLedgerFilter(
		r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, LedgerSortFields, "occurred_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Count counts ledger entries matching the filter
func (r *GormLedgerRepository) Count(ctx context.Context, tenantID uuid.UUID, filter inventory.LedgerFilter) (int64, error) {
	var count int64
	query := r.applyLedgerFilter(
		r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	err := query.Count(&count).Error
	return count, err
}

// SumQuantity returns the net movement for a product at a location
func (r *GormLedgerRepository) SumQuantity(ctx context.Context, tenantID, productID, locationID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}).
		Select("SUM(quantity)").
		Where("tenant_id = ? AND product_id = ? AND location_id = ?", tenantID, productID, locationID).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// SumByLocation returns net quantities per product at one location
func (r *GormLedgerRepository) SumByLocation(ctx context.Context, tenantID, locationID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	var rows []struct {
		ProductID uuid.UUID
		Quantity  decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}).
		Select("product_id, SUM(quantity) AS quantity").
		Where("tenant_id = ? AND location_id = ?", tenantID, locationID).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	sums := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, row := range rows {
		sums[row.ProductID] = row.Quantity
	}
	return sums, nil
}

// SumAll returns net quantities for every product-location pair of a tenant
func (r *GormLedgerRepository) SumAll(ctx context.Context, tenantID uuid.UUID) ([]inventory.ProductLocationSum, error) {
	var sums []inventory.ProductLocationSum
	err := r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}).
		Select("product_id, location_id, SUM(quantity) AS quantity").
		Where("tenant_id = ?", tenantID).
		Group("product_id, location_id").
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}
	return sums, nil
}

// applyLedgerFilter applies the optional ledger query narrowing
func (r *GormLedgerRepository) applyLedgerFilter(query *gorm.DB, filter inventory.LedgerFilter) *gorm.DB {
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.LocationID != nil {
		query = query.Where("location_id = ?", *filter.LocationID)
	}
	if filter.BatchID != nil {
		query = query.Where("batch_id = ?", *filter.BatchID)
	}
	if filter.EntryType != nil {
		query = query.Where("entry_type = ?", *filter.EntryType)
	}
	if filter.From != nil {
		query = query.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("occurred_at < ?", *filter.To)
	}
	return query
}

var _ inventory.LedgerRepository = (*GormLedgerRepository)(nil)
