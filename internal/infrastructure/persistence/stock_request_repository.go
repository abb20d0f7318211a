package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/poscore/backend/internal/domain/request"
	"github.com/poscore/backend/internal/domain/shared"
)

// GormStockRequestRepository implements request.Repository using GORM
type GormStockRequestRepository struct {
	db *gorm.DB
}

// NewGormStockRequestRepository creates a new GormStockRequestRepository
func NewGormStockRequestRepository(db *gorm.DB) *GormStockRequestRepository {
	return &GormStockRequestRepository{db: db}
}

// Save persists a request together with its items in a transaction.
// A duplicate request number surfaces as ErrAlreadyExists so the
// service can regenerate and retry.
func (r *GormStockRequestRepository) Save(ctx context.Context, req *request.StockRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(req).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists
			}
			return err
		}
		return r.saveItems(tx, req)
	})
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormStockRequestRepository) SaveWithLock(ctx context.Context, req *request.StockRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(req).
			Where("id = ? AND version = ?", req.ID, req.Version-1).
			Updates(map[string]interface{}{
				"status":        req.Status,
				"notes":         req.Notes,
				"reject_reason": req.RejectReason,
				"decided_at":    req.DecidedAt,
				"decided_by":    req.DecidedBy,
				"transfer_id":   req.TransferID,
				"version":       req.Version,
				"updated_at":    req.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Stock request was modified by another transaction")
		}
		return r.saveItems(tx, req)
	})
}

func (r *GormStockRequestRepository) saveItems(tx *gorm.DB, req *request.StockRequest) error {
	itemIDs := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		itemIDs = append(itemIDs, item.ID)
	}

	if len(itemIDs) > 0 {
		if err := tx.Where("request_id = ? AND id NOT IN ?", req.ID, itemIDs).
			Delete(&request.Item{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("request_id = ?", req.ID).
			Delete(&request.Item{}).Error; err != nil {
			return err
		}
	}

	for i := range req.Items {
		req.Items[i].RequestID = req.ID
		if err := tx.Save(&req.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindByID finds a request with its items within a tenant
func (r *GormStockRequestRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*request.StockRequest, error) {
	var req request.StockRequest
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// FindByNumber finds a request by its document number
func (r *GormStockRequestRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, requestNumber string) (*request.StockRequest, error) {
	var req request.StockRequest
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND request_number = ?", tenantID, requestNumber).
		First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// FindAll finds requests matching the filter
func (r *GormStockRequestRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter request.Filter) ([]*request.StockRequest, error) {
	var requests []*request.StockRequest
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&request.StockRequest{}).
			Preload("Items").
			Where("tenant_id = ?", tenantID),
		filter, true,
	)

	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// Count counts requests matching the filter
func (r *GormStockRequestRepository) Count(ctx context.Context, tenantID uuid.UUID, filter request.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&request.StockRequest{}).
			Where("tenant_id = ?", tenantID),
		filter, false,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateRequestNumber issues the next number in the tenant's
// REQ%06d sequence, inside the saving transaction.
func (r *GormStockRequestRepository) GenerateRequestNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	var maxNumber string
	err := r.db.WithContext(ctx).Model(&request.StockRequest{}).
		Select("request_number").
		Where("tenant_id = ? AND request_number LIKE ?", tenantID, "REQ%").
		Order("request_number DESC").
		Limit(1).
		Pluck("request_number", &maxNumber).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var seq int
	if maxNumber != "" {
		if _, err := fmt.Sscanf(maxNumber, "REQ%06d", &seq); err != nil {
			return "", fmt.Errorf("malformed request number %q: %w", maxNumber, err)
		}
	}
	return fmt.Sprintf("REQ%06d", seq+1), nil
}

func (r *GormStockRequestRepository) applyFilter(query *gorm.DB, filter request.Filter, paginate bool) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.RequesterID != nil {
		query = query.Where("requester_id = ?", *filter.RequesterID)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(request_number) LIKE ?", searchPattern)
	}

	if !paginate {
		return query
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, RequestSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

var _ request.Repository = (*GormStockRequestRepository)(nil)
