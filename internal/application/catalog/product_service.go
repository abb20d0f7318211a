package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poscore/backend/internal/domain/catalog"
	"github.com/poscore/backend/internal/domain/shared"
)

// CreateProductRequest creates a catalog product
type CreateProductRequest struct {
	SKU          string          `json:"sku" binding:"required,max=64"`
	Name         string          `json:"name" binding:"required,max=200"`
	Description  string          `json:"description,omitempty"`
	Barcode      string          `json:"barcode,omitempty" binding:"max=64"`
	Unit         string          `json:"unit,omitempty"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
}

// UpdateProductRequest updates a product's details
type UpdateProductRequest struct {
	Name         string           `json:"name" binding:"required,max=200"`
	Description  string           `json:"description,omitempty"`
	Barcode      *string          `json:"barcode,omitempty"`
	CostPrice    *decimal.Decimal `json:"cost_price,omitempty"`
	SellingPrice *decimal.Decimal `json:"selling_price,omitempty"`
	ReorderLevel *decimal.Decimal `json:"reorder_level,omitempty"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID           uuid.UUID       `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Barcode      string          `json:"barcode,omitempty"`
	Unit         string          `json:"unit"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

// ToProductResponse converts a domain product to its response form
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		Barcode:      p.Barcode,
		Unit:         p.Unit.String(),
		CostPrice:    p.CostPrice,
		SellingPrice: p.SellingPrice,
		ReorderLevel: p.ReorderLevel,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Version:      p.GetVersion(),
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []*catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductResponse(p)
	}
	return responses
}

// ListFilter represents filter options for product lists
type ListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ProductService handles catalog operations
type ProductService struct {
	repo           catalog.Repository
	eventPublisher shared.EventPublisher
}

// NewProductService creates a new ProductService
func NewProductService(repo catalog.Repository) *ProductService {
	return &ProductService{repo: repo}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ProductService) publishDomainEvents(ctx context.Context, product *catalog.Product) {
	if s.eventPublisher == nil {
		return
	}
	events := product.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	product.ClearDomainEvents()
}

// Create adds a product to the catalog. The SKU must be unique within
// the tenant.
func (s *ProductService) Create(ctx context.Context, tenantID, actorID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	exists, err := s.repo.ExistsBySKU(ctx, tenantID, req.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.ErrAlreadyExists
	}

	product, err := catalog.NewProduct(tenantID, req.SKU, req.Name, catalog.Unit(req.Unit))
	if err != nil {
		return nil, err
	}
	product.SetCreatedBy(actorID)
	product.Description = req.Description
	if req.Barcode != "" {
		product.SetBarcode(req.Barcode)
	}
	if !req.CostPrice.IsZero() || !req.SellingPrice.IsZero() {
		if err := product.SetPrices(req.CostPrice, req.SellingPrice); err != nil {
			return nil, err
		}
	}
	if !req.ReorderLevel.IsZero() {
		if err := product.SetReorderLevel(req.ReorderLevel); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// Update changes a product's details
func (s *ProductService) Update(ctx context.Context, tenantID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	if err := product.Update(req.Name, req.Description); err != nil {
		return nil, err
	}
	if req.Barcode != nil {
		product.SetBarcode(*req.Barcode)
	}
	if req.CostPrice != nil || req.SellingPrice != nil {
		cost := product.CostPrice
		selling := product.SellingPrice
		if req.CostPrice != nil {
			cost = *req.CostPrice
		}
		if req.SellingPrice != nil {
			selling = *req.SellingPrice
		}
		if err := product.SetPrices(cost, selling); err != nil {
			return nil, err
		}
	}
	if req.ReorderLevel != nil {
		if err := product.SetReorderLevel(*req.ReorderLevel); err != nil {
			return nil, err
		}
	}

	if err := s.repo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// Deactivate marks a product as discontinued
func (s *ProductService) Deactivate(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	product.Deactivate()
	if err := s.repo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetBySKU retrieves a product by its tenant-unique SKU
func (s *ProductService) GetBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*ProductResponse, error) {
	product, err := s.repo.FindBySKU(ctx, tenantID, sku)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List retrieves products with search and pagination
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]ProductResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "name",
		OrderDir: "asc",
		Search:   filter.Search,
	}

	var products []*catalog.Product
	var err error
	if filter.Search != "" {
		products, err = s.repo.Search(ctx, tenantID, filter.Search, domainFilter)
	} else {
		products, err = s.repo.FindAll(ctx, tenantID, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}

	return ToProductResponses(products), total, nil
}
