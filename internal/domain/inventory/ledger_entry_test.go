package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLedgerEntry(t *testing.T) {
	tenantID := uuid.New()
	productID := uuid.New()
	locationID := uuid.New()
	now := time.Now()

	t.Run("valid increase", func(t *testing.T) {
		e, err := NewLedgerEntry(tenantID, productID, locationID, EntryTypeIn, decimal.NewFromInt(10), now)
		require.NoError(t, err)
		assert.True(t, e.IsIncrease())
		assert.Len(t, e.GetDomainEvents(), 1)
	})

	t.Run("valid decrease", func(t *testing.T) {
		e, err := NewLedgerEntry(tenantID, productID, locationID, EntryTypeSale, decimal.NewFromInt(-3), now)
		require.NoError(t, err)
		assert.False(t, e.IsIncrease())
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		_, err := NewLedgerEntry(tenantID, productID, locationID, EntryTypeAdjust, decimal.Zero, now)
		assert.Error(t, err)
	})

	t.Run("sign enforced for increase types", func(t *testing.T) {
		_, err := NewLedgerEntry(tenantID, productID, locationID, EntryTypeIn, decimal.NewFromInt(-5), now)
		assert.Error(t, err)
		_, err = NewLedgerEntry(tenantID, productID, locationID, EntryTypeTransferIn, decimal.NewFromInt(-5), now)
		assert.Error(t, err)
	})

	t.Run("sign enforced for decrease types", func(t *testing.T) {
		_, err := NewLedgerEntry(tenantID, productID, locationID, EntryTypeSale, decimal.NewFromInt(5), now)
		assert.Error(t, err)
		_, err = NewLedgerEntry(tenantID, productID, locationID, EntryTypeDamage, decimal.NewFromInt(5), now)
		assert.Error(t, err)
	})

	t.Run("adjust allows either sign", func(t *testing.T) {
		_, err := NewLedgerEntry(tenantID, productID, locationID, EntryTypeAdjust, decimal.NewFromInt(5), now)
		assert.NoError(t, err)
		_, err = NewLedgerEntry(tenantID, productID, locationID, EntryTypeAdjust, decimal.NewFromInt(-5), now)
		assert.NoError(t, err)
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := NewLedgerEntry(tenantID, productID, locationID, EntryType("MYSTERY"), decimal.NewFromInt(1), now)
		assert.Error(t, err)
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := NewLedgerEntry(tenantID, uuid.Nil, locationID, EntryTypeIn, decimal.NewFromInt(1), now)
		assert.Error(t, err)
	})
}

func TestLedgerEntry_Offset(t *testing.T) {
	tenantID := uuid.New()
	batchID := uuid.New()
	now := time.Now()

	original, err := NewLedgerEntry(tenantID, uuid.New(), uuid.New(), EntryTypeSale, decimal.NewFromInt(-4), now)
	require.NoError(t, err)
	original.WithBatch(batchID)

	offset, err := original.Offset("keyed wrong quantity", now.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, EntryTypeAdjust, offset.EntryType)
	assert.True(t, offset.Quantity.Equal(decimal.NewFromInt(4)))
	assert.True(t, original.Quantity.Add(offset.Quantity).IsZero())
	assert.Equal(t, ReferenceKindAdjustment, offset.Reference.Kind)
	assert.Equal(t, original.ID, offset.Reference.ID)
	require.NotNil(t, offset.BatchID)
	assert.Equal(t, batchID, *offset.BatchID)
	assert.Equal(t, "keyed wrong quantity", offset.Reason)
}

func TestEntryType_Sign(t *testing.T) {
	assert.Equal(t, 1, EntryTypeIn.Sign())
	assert.Equal(t, 1, EntryTypeReturn.Sign())
	assert.Equal(t, 1, EntryTypeProduction.Sign())
	assert.Equal(t, 1, EntryTypeSaleVoid.Sign())
	assert.Equal(t, -1, EntryTypeOut.Sign())
	assert.Equal(t, -1, EntryTypeTransferOut.Sign())
	assert.Equal(t, -1, EntryTypeDamage.Sign())
	assert.Equal(t, 0, EntryTypeAdjust.Sign())
}
