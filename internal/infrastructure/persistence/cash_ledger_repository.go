package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/poscore/backend/internal/domain/cashledger"
	"github.com/poscore/backend/internal/domain/shared"
)

// GormCashLedgerRepository implements cashledger.Repository using
// GORM. Like the stock ledger the table is append-only, so there are
// no update or delete operations.
type GormCashLedgerRepository struct {
	db *gorm.DB
}

// NewGormCashLedgerRepository creates a new GormCashLedgerRepository
func NewGormCashLedgerRepository(db *gorm.DB) *GormCashLedgerRepository {
	return &GormCashLedgerRepository{db: db}
}

// Append inserts a new cash ledger entry
func (r *GormCashLedgerRepository) Append(ctx context.Context, entry *cashledger.Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByID finds an entry within a tenant
func (r *GormCashLedgerRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*cashledger.Entry, error) {
	var entry cashledger.Entry
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

// FindAll finds entries matching the filter
func (r *GormCashLedgerRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter cashledger.Filter) ([]*cashledger.Entry, error) {
	var entries []*cashledger.Entry
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&cashledger.Entry{}).
			Where("tenant_id = ?", tenantID),
		filter, true,
	)

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Count counts entries matching the filter
func (r *GormCashLedgerRepository) Count(ctx context.Context, tenantID uuid.UUID, filter cashledger.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&cashledger.Entry{}).
			Where("tenant_id = ?", tenantID),
		filter, false,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Balance returns the signed sum of a shop account
func (r *GormCashLedgerRepository) Balance(ctx context.Context, tenantID, shopID uuid.UUID, account cashledger.Account) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&cashledger.Entry{}).
		Select("SUM(amount)").
		Where("tenant_id = ? AND shop_id = ? AND account = ?", tenantID, shopID, account).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

func (r *GormCashLedgerRepository) applyFilter(query *gorm.DB, filter cashledger.Filter, paginate bool) *gorm.DB {
	if filter.ShopID != nil {
		query = query.Where("shop_id = ?", *filter.ShopID)
	}
	if filter.Account != nil {
		query = query.Where("account = ?", *filter.Account)
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

	if !paginate {
		return query
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, CashLedgerSortFields, "occurred_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

var _ cashledger.Repository = (*GormCashLedgerRepository)(nil)
