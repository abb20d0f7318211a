package cashledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry(t *testing.T) {
	tenantID := uuid.New()
	shopID := uuid.New()
	now := time.Now()

	t.Run("payment", func(t *testing.T) {
		e, err := NewEntry(tenantID, shopID, AccountCash, EntryTypePayment, decimal.NewFromFloat(12.50), now)
		require.NoError(t, err)
		assert.Equal(t, AccountCash, e.Account)
		assert.Len(t, e.GetDomainEvents(), 1)
	})

	t.Run("withdrawal must be negative", func(t *testing.T) {
		_, err := NewEntry(tenantID, shopID, AccountECash, EntryTypeWithdrawal, decimal.NewFromInt(5), now)
		assert.Error(t, err)
		_, err = NewEntry(tenantID, shopID, AccountECash, EntryTypeWithdrawal, decimal.NewFromInt(-5), now)
		assert.NoError(t, err)
	})

	t.Run("refund must be negative", func(t *testing.T) {
		_, err := NewEntry(tenantID, shopID, AccountCash, EntryTypeRefund, decimal.NewFromInt(3), now)
		assert.Error(t, err)
	})

	t.Run("adjustment allows either sign", func(t *testing.T) {
		_, err := NewEntry(tenantID, shopID, AccountCash, EntryTypeAdjustment, decimal.NewFromInt(3), now)
		assert.NoError(t, err)
		_, err = NewEntry(tenantID, shopID, AccountCash, EntryTypeAdjustment, decimal.NewFromInt(-3), now)
		assert.NoError(t, err)
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		_, err := NewEntry(tenantID, shopID, AccountCash, EntryTypeAdjustment, decimal.Zero, now)
		assert.Error(t, err)
	})

	t.Run("invalid account", func(t *testing.T) {
		_, err := NewEntry(tenantID, shopID, Account("CARD"), EntryTypePayment, decimal.NewFromInt(1), now)
		assert.Error(t, err)
	})

	t.Run("missing shop", func(t *testing.T) {
		_, err := NewEntry(tenantID, uuid.Nil, AccountCash, EntryTypePayment, decimal.NewFromInt(1), now)
		assert.Error(t, err)
	})
}
