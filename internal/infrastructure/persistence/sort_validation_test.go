package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	assert.Equal(t, "ASC", ValidateSortOrder("asc"))
	assert.Equal(t, "ASC", ValidateSortOrder(" ASC "))
	assert.Equal(t, "DESC", ValidateSortOrder("desc"))
	assert.Equal(t, "DESC", ValidateSortOrder(""))
	assert.Equal(t, "DESC", ValidateSortOrder("ascending; DROP TABLE products"))
}

func TestValidateSortField(t *testing.T) {
	t.Run("accepts whitelisted fields", func(t *testing.T) {
		assert.Equal(t, "sku", ValidateSortField("sku", ProductSortFields, "name"))
		assert.Equal(t, "expiry_date", ValidateSortField("expiry_date", BatchSortFields, "received_at"))
		assert.Equal(t, "transfer_number", ValidateSortField("transfer_number", TransferSortFields, "created_at"))
	})

	t.Run("falls back to the default for unknown fields", func(t *testing.T) {
		assert.Equal(t, "name", ValidateSortField("", ProductSortFields, "name"))
		assert.Equal(t, "name", ValidateSortField("password", ProductSortFields, "name"))
		assert.Equal(t, "occurred_at", ValidateSortField("1; DELETE FROM inventory_ledger", LedgerSortFields, "occurred_at"))
	})
}
