package location

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/poscore/backend/internal/domain/shared"
)

// LocationType represents the kind of physical site.
// The type determines which transfer and stock-request directions are legal.
type LocationType string

const (
	// LocationTypeProduction is a production facility
	LocationTypeProduction LocationType = "PRODUCTION"
	// LocationTypeStores is a central warehouse
	LocationTypeStores LocationType = "STORES"
	// LocationTypeShop is a retail shop
	LocationTypeShop LocationType = "SHOP"
)

// String returns the string representation of LocationType
func (t LocationType) String() string {
	return string(t)
}

// IsValid returns true if the location type is valid
func (t LocationType) IsValid() bool {
	switch t {
	case LocationTypeProduction, LocationTypeStores, LocationTypeShop:
		return true
	}
	return false
}

// transferDirections maps a source location type to the destination
// types it may transfer to.
var transferDirections = map[LocationType][]LocationType{
	LocationTypeProduction: {LocationTypeStores},
	LocationTypeStores:     {LocationTypeShop, LocationTypeProduction},
	LocationTypeShop:       {LocationTypeStores},
}

// requestDirections maps a requesting location type to the supplier
// types it may request stock from. It is the inverse of the transfer
// table: requests travel up the supply chain.
var requestDirections = map[LocationType][]LocationType{
	LocationTypeShop:   {LocationTypeStores},
	LocationTypeStores: {LocationTypeProduction},
}

// CanTransferTo returns true if a location of this type may send a
// transfer to a location of the destination type.
func (t LocationType) CanTransferTo(dest LocationType) bool {
	for _, allowed := range transferDirections[t] {
		if allowed == dest {
			return true
		}
	}
	return false
}

// CanRequestFrom returns true if a location of this type may request
// stock from a location of the supplier type.
func (t LocationType) CanRequestFrom(supplier LocationType) bool {
	for _, allowed := range requestDirections[t] {
		if allowed == supplier {
			return true
		}
	}
	return false
}

// AllowedTransferDestinations returns the destination types legal for this source type.
func (t LocationType) AllowedTransferDestinations() []LocationType {
	return transferDirections[t]
}

// AllowedSuppliers returns the supplier types this type may request from.
func (t LocationType) AllowedSuppliers() []LocationType {
	return requestDirections[t]
}

// Location represents a physical site: production facility, central
// stores, or retail shop. It is the aggregate root for location operations.
type Location struct {
	shared.TenantAggregateRoot
	Name     string       `gorm:"type:varchar(200);not null;uniqueIndex:idx_location_tenant_name,priority:2"`
	Type     LocationType `gorm:"type:varchar(20);not null;index"`
	Address  string       `gorm:"type:text"`
	Phone    string       `gorm:"type:varchar(50)"`
	IsActive bool         `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Location) TableName() string {
	return "locations"
}

// NewLocation creates a new location with required fields
func NewLocation(tenantID uuid.UUID, name string, locationType LocationType) (*Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Location name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Location name cannot exceed 200 characters")
	}
	if !locationType.IsValid() {
		return nil, shared.NewDomainError("INVALID_LOCATION_TYPE", "Invalid location type")
	}

	return &Location{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Type:                locationType,
		IsActive:            true,
	}, nil
}

// UpdateContact updates address and phone
func (l *Location) UpdateContact(address, phone string) {
	l.Address = address
	l.Phone = phone
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
}

// Rename changes the location name
func (l *Location) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Location name cannot be empty")
	}
	l.Name = name
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

// Deactivate marks the location as inactive. Inactive locations cannot
// originate new transfers or requests; historical ledger rows keep
// referencing them.
func (l *Location) Deactivate() {
	l.IsActive = false
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
}

// Activate marks the location as active
func (l *Location) Activate() {
	l.IsActive = true
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
}
