package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/poscore/backend/internal/domain/catalog"
	"github.com/poscore/backend/internal/domain/shared"
)

// MockProductRepository is a mock implementation of catalog.Repository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*catalog.Product, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Search(ctx context.Context, tenantID uuid.UUID, query string, filter shared.Filter) ([]*catalog.Product, error) {
	args := m.Called(ctx, tenantID, query, filter)
	return args.Get(0).([]*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) ExistsBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (bool, error) {
	args := m.Called(ctx, tenantID, sku)
	return args.Bool(0), args.Error(1)
}

func newTestTenantID() uuid.UUID {
	return uuid.MustParse("11111111-1111-1111-1111-111111111111")
}

func createTestProduct(tenantID uuid.UUID) *catalog.Product {
	product, _ := catalog.NewProduct(tenantID, "BRD-001", "Sourdough Loaf", catalog.UnitPiece)
	return product
}

func TestProductService_Create_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	req := CreateProductRequest{
		SKU:  "brd-001",
		Name: "Sourdough Loaf",
		Unit: "UNIT",
	}

	mockRepo.On("ExistsBySKU", ctx, tenantID, req.SKU).Return(false, nil)
	mockRepo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

	result, err := service.Create(ctx, tenantID, uuid.New(), req)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "BRD-001", result.SKU)
	assert.Equal(t, "Sourdough Loaf", result.Name)
	assert.Equal(t, "UNIT", result.Unit)
	assert.True(t, result.IsActive)
	mockRepo.AssertExpectations(t)
}

func TestProductService_Create_WithPricing(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	req := CreateProductRequest{
		SKU:          "BRD-002",
		Name:         "Rye Loaf",
		Unit:         "UNIT",
		Barcode:      "6001234567890",
		CostPrice:    decimal.NewFromFloat(12.50),
		SellingPrice: decimal.NewFromFloat(28.00),
		ReorderLevel: decimal.NewFromInt(10),
	}

	mockRepo.On("ExistsBySKU", ctx, tenantID, req.SKU).Return(false, nil)
	mockRepo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

	result, err := service.Create(ctx, tenantID, uuid.New(), req)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "6001234567890", result.Barcode)
	assert.True(t, result.CostPrice.Equal(decimal.NewFromFloat(12.50)))
	assert.True(t, result.SellingPrice.Equal(decimal.NewFromFloat(28.00)))
	assert.True(t, result.ReorderLevel.Equal(decimal.NewFromInt(10)))
	mockRepo.AssertExpectations(t)
}

func TestProductService_Create_DuplicateSKU(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	req := CreateProductRequest{SKU: "BRD-001", Name: "Sourdough Loaf"}

	mockRepo.On("ExistsBySKU", ctx, tenantID, req.SKU).Return(true, nil)

	result, err := service.Create(ctx, tenantID, uuid.New(), req)

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	mockRepo.AssertExpectations(t)
}

func TestProductService_Update_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	product := createTestProduct(tenantID)
	newPrice := decimal.NewFromFloat(32.00)

	mockRepo.On("FindByID", ctx, tenantID, product.ID).Return(product, nil)
	mockRepo.On("SaveWithLock", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

	result, err := service.Update(ctx, tenantID, product.ID, UpdateProductRequest{
		Name:         "Sourdough Loaf 800g",
		SellingPrice: &newPrice,
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "Sourdough Loaf 800g", result.Name)
	assert.True(t, result.SellingPrice.Equal(newPrice))
	mockRepo.AssertExpectations(t)
}

func TestProductService_Update_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	productID := uuid.New()

	mockRepo.On("FindByID", ctx, tenantID, productID).Return(nil, shared.ErrNotFound)

	result, err := service.Update(ctx, tenantID, productID, UpdateProductRequest{Name: "Anything"})

	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Nil(t, result)
	mockRepo.AssertExpectations(t)
}

func TestProductService_Deactivate(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	product := createTestProduct(tenantID)

	mockRepo.On("FindByID", ctx, tenantID, product.ID).Return(product, nil)
	mockRepo.On("SaveWithLock", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

	result, err := service.Deactivate(ctx, tenantID, product.ID)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.False(t, result.IsActive)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetBySKU(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	product := createTestProduct(tenantID)

	mockRepo.On("FindBySKU", ctx, tenantID, "BRD-001").Return(product, nil)

	result, err := service.GetBySKU(ctx, tenantID, "BRD-001")

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, product.ID, result.ID)
	mockRepo.AssertExpectations(t)
}

func TestProductService_List(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	products := []*catalog.Product{createTestProduct(tenantID)}

	mockRepo.On("FindAll", ctx, tenantID, mock.AnythingOfType("shared.Filter")).Return(products, nil)
	mockRepo.On("Count", ctx, tenantID).Return(int64(1), nil)

	result, total, err := service.List(ctx, tenantID, ListFilter{})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, result, 1)
	mockRepo.AssertExpectations(t)
}

func TestProductService_List_Search(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	products := []*catalog.Product{createTestProduct(tenantID)}

	mockRepo.On("Search", ctx, tenantID, "sourdough", mock.AnythingOfType("shared.Filter")).Return(products, nil)
	mockRepo.On("Count", ctx, tenantID).Return(int64(1), nil)

	result, total, err := service.List(ctx, tenantID, ListFilter{Search: "sourdough"})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, result, 1)
	mockRepo.AssertExpectations(t)
}
