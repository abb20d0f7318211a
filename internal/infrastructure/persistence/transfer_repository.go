package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/poscore/backend/internal/domain/shared"
	"github.com/poscore/backend/internal/domain/transfer"
)

// GormTransferRepository implements transfer.Repository using GORM
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a new GormTransferRepository
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// Save persists a transfer together with its items in a transaction.
// A duplicate transfer number surfaces as ErrAlreadyExists so the
// service can regenerate and retry.
func (r *GormTransferRepository) Save(ctx context.Context, t *transfer.Transfer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(t).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists
			}
			return err
		}
		return r.saveItems(tx, t)
	})
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormTransferRepository) SaveWithLock(ctx context.Context, t *transfer.Transfer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(t).
			Where("id = ? AND version = ?", t.ID, t.Version-1).
			Updates(map[string]interface{}{
				"status":           t.Status,
				"notes":            t.Notes,
				"dispute_reason":   t.DisputeReason,
				"resolution_notes": t.ResolutionNotes,
				"sent_at":          t.SentAt,
				"received_at":      t.ReceivedAt,
				"closed_at":        t.ClosedAt,
				"sent_by":          t.SentBy,
				"received_by":      t.ReceivedBy,
				"version":          t.Version,
				"updated_at":       t.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Transfer was modified by another transaction")
		}
		return r.saveItems(tx, t)
	})
}

// saveItems replaces the item rows to match the aggregate
func (r *GormTransferRepository) saveItems(tx *gorm.DB, t *transfer.Transfer) error {
	itemIDs := make([]uuid.UUID, 0, len(t.Items))
	for _, item := range t.Items {
		itemIDs = append(itemIDs, item.ID)
	}

	if len(itemIDs) > 0 {
		if err := tx.Where("transfer_id = ? AND id NOT IN ?", t.ID, itemIDs).
			Delete(&transfer.Item{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("transfer_id = ?", t.ID).
			Delete(&transfer.Item{}).Error; err != nil {
			return err
		}
	}

	for i := range t.Items {
		t.Items[i].TransferID = t.ID
		if err := tx.Save(&t.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindByID finds a transfer with its items within a tenant
func (r *GormTransferRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*transfer.Transfer, error) {
	var t transfer.Transfer
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FindByNumber finds a transfer by its document number
func (r *GormTransferRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, transferNumber string) (*transfer.Transfer, error) {
	var t transfer.Transfer
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND transfer_number = ?", tenantID, transferNumber).
		First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FindAll finds transfers matching the filter
func (r *GormTransferRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter transfer.Filter) ([]*transfer.Transfer, error) {
	var transfers []*transfer.Transfer
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&transfer.Transfer{}).
			Preload("Items").
			Where("tenant_id = ?", tenantID),
		filter, true,
	)

	if err := query.Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// Count counts transfers matching the filter
func (r *GormTransferRepository) Count(ctx context.Context, tenantID uuid.UUID, filter transfer.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&transfer.Transfer{}).
			Where("tenant_id = ?", tenantID),
		filter, false,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateTransferNumber issues the next number in the tenant's
// TRF%06d sequence. Call inside the transaction that saves the
// transfer so concurrent creates cannot collide.
func (r *GormTransferRepository) GenerateTransferNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	var maxNumber string
	err := r.db.WithContext(ctx).Model(&transfer.Transfer{}).
		Select("transfer_number").
		Where("tenant_id = ? AND transfer_number LIKE ?", tenantID, "TRF%").
		Order("transfer_number DESC").
		Limit(1).
		Pluck("transfer_number", &maxNumber).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var seq int
	if maxNumber != "" {
		if _, err := fmt.Sscanf(maxNumber, "TRF%06d", &seq); err != nil {
			return "", fmt.Errorf("malformed transfer number %q: %w", maxNumber, err)
		}
	}
	return fmt.Sprintf("TRF%06d", seq+1), nil
}

func (r *GormTransferRepository) applyFilter(query *gorm.DB, filter transfer.Filter, paginate bool) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.SourceID != nil {
		query = query.Where("source_id = ?", *filter.SourceID)
	}
	if filter.DestinationID != nil {
		query = query.Where("destination_id = ?", *filter.DestinationID)
	}
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(transfer_number) LIKE ?", searchPattern)
	}

	if !paginate {
		return query
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, TransferSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

var _ transfer.Repository = (*GormTransferRepository)(nil)
