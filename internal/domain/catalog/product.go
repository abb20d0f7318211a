package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poscore/backend/internal/domain/shared"
)

// Unit represents the measurement unit of a product
type Unit string

const (
	UnitPiece      Unit = "UNIT"
	UnitKilogram   Unit = "KG"
	UnitGram       Unit = "G"
	UnitLiter      Unit = "L"
	UnitMilliliter Unit = "ML"
	UnitMeter      Unit = "M"
	UnitCentimeter Unit = "CM"
	UnitBox        Unit = "BOX"
	UnitPack       Unit = "PACK"
	UnitDozen      Unit = "DOZEN"
)

// IsValid returns true if the unit is one of the supported units
func (u Unit) IsValid() bool {
	switch u {
	case UnitPiece, UnitKilogram, UnitGram, UnitLiter, UnitMilliliter,
		UnitMeter, UnitCentimeter, UnitBox, UnitPack, UnitDozen:
		return true
	}
	return false
}

// String returns the string representation of Unit
func (u Unit) String() string {
	return string(u)
}

// Product represents a product/SKU in the catalog.
// It is the aggregate root for product-related operations. Ledger
// entries and transfer lines reference products by ID; the SKU is the
// human-facing key and is unique per tenant.
type Product struct {
	shared.TenantAggregateRoot
	SKU          string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_product_tenant_sku,priority:2"`
	Name         string          `gorm:"type:varchar(200);not null"`
	Description  string          `gorm:"type:text"`
	Barcode      string          `gorm:"type:varchar(64);index"`
	Unit         Unit            `gorm:"type:varchar(10);not null;default:'UNIT'"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ReorderLevel decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"` // Stock level that triggers replenishment alerts
	IsActive     bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(tenantID uuid.UUID, sku, name string, unit Unit) (*Product, error) {
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if unit == "" {
		unit = UnitPiece
	}
	if !unit.IsValid() {
		return nil, shared.NewDomainError("INVALID_UNIT", "Invalid product unit")
	}

	product := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SKU:                 strings.ToUpper(strings.TrimSpace(sku)),
		Name:                strings.TrimSpace(name),
		Unit:                unit,
		CostPrice:           decimal.Zero,
		SellingPrice:        decimal.Zero,
		ReorderLevel:        decimal.Zero,
		IsActive:            true,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, description string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = strings.TrimSpace(name)
	p.Description = description
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetPrices updates cost and selling price. Prices cannot be negative.
func (p *Product) SetPrices(cost, selling decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Cost price cannot be negative")
	}
	if selling.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Selling price cannot be negative")
	}

	p.CostPrice = cost
	p.SellingPrice = selling
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetBarcode updates the product barcode
func (p *Product) SetBarcode(barcode string) {
	p.Barcode = strings.TrimSpace(barcode)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetReorderLevel updates the replenishment threshold
func (p *Product) SetReorderLevel(level decimal.Decimal) error {
	if level.IsNegative() {
		return shared.NewDomainError("INVALID_REORDER_LEVEL", "Reorder level cannot be negative")
	}

	p.ReorderLevel = level
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// Deactivate marks the product as discontinued. Existing batches and
// ledger history remain queryable.
func (p *Product) Deactivate() {
	p.IsActive = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductDeactivatedEvent(p))
}

// Activate marks the product as active again
func (p *Product) Activate() {
	p.IsActive = true
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// NeedsReorder returns true if the given on-hand quantity is at or
// below the reorder level. A zero reorder level disables the alert.
func (p *Product) NeedsReorder(onHand decimal.Decimal) bool {
	if p.ReorderLevel.IsZero() {
		return false
	}
	return onHand.LessThanOrEqual(p.ReorderLevel)
}

func validateSKU(sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "Product SKU cannot be empty")
	}
	if len(sku) > 64 {
		return shared.NewDomainError("INVALID_SKU", "Product SKU cannot exceed 64 characters")
	}
	return nil
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
