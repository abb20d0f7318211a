package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"sku":           true,
	"name":          true,
	"barcode":       true,
	"unit":          true,
	"cost_price":    true,
	"selling_price": true,
	"reorder_level": true,
	"is_active":     true,
}

// LocationSortFields contains allowed sort fields for locations
var LocationSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"type":       true,
	"is_active":  true,
}

// LedgerSortFields contains allowed sort fields for ledger entries
var LedgerSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"occurred_at": true,
	"entry_type":  true,
	"quantity":    true,
	"product_id":  true,
	"location_id": true,
}

// BatchSortFields contains allowed sort fields for stock batches
var BatchSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"batch_number": true,
	"product_id":   true,
	"location_id":  true,
	"quantity":     true,
	"expiry_date":  true,
	"received_at":  true,
	"status":       true,
}

// StockLevelSortFields contains allowed sort fields for stock levels
var StockLevelSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"product_id":  true,
	"location_id": true,
	"quantity":    true,
}

// TransferSortFields contains allowed sort fields for stock transfers
var TransferSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"transfer_number": true,
	"source_id":       true,
	"destination_id":  true,
	"status":          true,
	"sent_at":         true,
	"received_at":     true,
	"closed_at":       true,
}

// RequestSortFields contains allowed sort fields for stock requests
var RequestSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"request_number": true,
	"requester_id":   true,
	"supplier_id":    true,
	"status":         true,
	"decided_at":     true,
}

// CashLedgerSortFields contains allowed sort fields for cash ledger entries
var CashLedgerSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"occurred_at": true,
	"shop_id":     true,
	"account":     true,
	"entry_type":  true,
	"amount":      true,
}
