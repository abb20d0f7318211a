package location

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocation(t *testing.T) {
	tenantID := uuid.New()

	t.Run("valid location", func(t *testing.T) {
		loc, err := NewLocation(tenantID, "Central Stores", LocationTypeStores)
		require.NoError(t, err)
		assert.Equal(t, "Central Stores", loc.Name)
		assert.Equal(t, LocationTypeStores, loc.Type)
		assert.True(t, loc.IsActive)
		assert.Equal(t, tenantID, loc.TenantID)
		assert.Equal(t, 1, loc.GetVersion())
	})

	t.Run("trims whitespace", func(t *testing.T) {
		loc, err := NewLocation(tenantID, "  Shop 12  ", LocationTypeShop)
		require.NoError(t, err)
		assert.Equal(t, "Shop 12", loc.Name)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := NewLocation(tenantID, "   ", LocationTypeShop)
		assert.Error(t, err)
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := NewLocation(tenantID, "Depot", LocationType("DEPOT"))
		assert.Error(t, err)
	})
}

func TestLocationType_CanTransferTo(t *testing.T) {
	tests := []struct {
		name string
		from LocationType
		to   LocationType
		want bool
	}{
		{"production to stores", LocationTypeProduction, LocationTypeStores, true},
		{"production to shop", LocationTypeProduction, LocationTypeShop, false},
		{"stores to shop", LocationTypeStores, LocationTypeShop, true},
		{"stores to production", LocationTypeStores, LocationTypeProduction, true},
		{"shop to stores", LocationTypeShop, LocationTypeStores, true},
		{"shop to shop", LocationTypeShop, LocationTypeShop, false},
		{"shop to production", LocationTypeShop, LocationTypeProduction, false},
		{"production to production", LocationTypeProduction, LocationTypeProduction, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransferTo(tt.to))
		})
	}
}

func TestLocationType_CanRequestFrom(t *testing.T) {
	tests := []struct {
		name     string
		requester LocationType
		supplier  LocationType
		want      bool
	}{
		{"shop from stores", LocationTypeShop, LocationTypeStores, true},
		{"shop from production", LocationTypeShop, LocationTypeProduction, false},
		{"stores from production", LocationTypeStores, LocationTypeProduction, true},
		{"stores from shop", LocationTypeStores, LocationTypeShop, false},
		{"production from stores", LocationTypeProduction, LocationTypeStores, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.requester.CanRequestFrom(tt.supplier))
		})
	}
}

func TestLocation_Deactivate(t *testing.T) {
	loc, err := NewLocation(uuid.New(), "Shop 1", LocationTypeShop)
	require.NoError(t, err)

	loc.Deactivate()
	assert.False(t, loc.IsActive)
	assert.Equal(t, 2, loc.GetVersion())

	loc.Activate()
	assert.True(t, loc.IsActive)
	assert.Equal(t, 3, loc.GetVersion())
}

func TestLocation_Rename(t *testing.T) {
	loc, err := NewLocation(uuid.New(), "Shop 1", LocationTypeShop)
	require.NoError(t, err)

	require.NoError(t, loc.Rename("Shop One"))
	assert.Equal(t, "Shop One", loc.Name)

	assert.Error(t, loc.Rename(""))
}
