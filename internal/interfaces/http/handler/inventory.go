package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/poscore/backend/internal/application/inventory"
	"github.com/poscore/backend/internal/domain/shared"
)

// InventoryHandler handles inventory ledger HTTP requests
type InventoryHandler struct {
	BaseHandler
	service *inventory.Service
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(service *inventory.Service) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// ReceiveBatch handles POST /inventory/batches
func (h *InventoryHandler) ReceiveBatch(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req inventory.ReceiveBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	batch, err := h.service.ReceiveBatch(c.Request.Context(), tenantID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, batch)
}

// AdjustStock handles POST /inventory/adjustments
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req inventory.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	entry, err := h.service.AdjustStock(c.Request.Context(), tenantID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, entry)
}

// RecordSale handles POST /inventory/movements/sale
func (h *InventoryHandler) RecordSale(c *gin.Context) {
	h.recordMultiEntry(c, h.service.RecordSale)
}

// RecordDamage handles POST /inventory/movements/damage
func (h *InventoryHandler) RecordDamage(c *gin.Context) {
	h.recordMultiEntry(c, h.service.RecordDamage)
}

// VoidSale handles POST /inventory/movements/void-sale
func (h *InventoryHandler) VoidSale(c *gin.Context) {
	h.recordSingleEntry(c, h.service.VoidSale)
}

// RecordReturn handles POST /inventory/movements/return
func (h *InventoryHandler) RecordReturn(c *gin.Context) {
	h.recordSingleEntry(c, h.service.RecordReturn)
}

// RecordProduction handles POST /inventory/movements/production
func (h *InventoryHandler) RecordProduction(c *gin.Context) {
	h.recordSingleEntry(c, h.service.RecordProduction)
}

func (h *InventoryHandler) recordMultiEntry(
	c *gin.Context,
	record func(ctx context.Context, tenantID, actorID uuid.UUID, req inventory.MovementRequest) ([]inventory.LedgerEntryResponse, error),
) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req inventory.MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	entries, err := record(c.Request.Context(), tenantID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, entries)
}

func (h *InventoryHandler) recordSingleEntry(
	c *gin.Context,
	record func(ctx context.Context, tenantID, actorID uuid.UUID, req inventory.MovementRequest) (*inventory.LedgerEntryResponse, error),
) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req inventory.MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	entry, err := record(c.Request.Context(), tenantID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, entry)
}

// GetOnHand handles GET /inventory/stock/lookup?product_id=..&location_id=..
func (h *InventoryHandler) GetOnHand(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product_id")
		return
	}
	locationID, err := uuid.Parse(c.Query("location_id"))
	if err != nil {
		h.BadRequest(c, "Invalid location_id")
		return
	}

	level, err := h.service.GetOnHand(c.Request.Context(), tenantID, productID, locationID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, level)
}

// GetTotalOnHand handles GET /inventory/stock/total?product_id=..
func (h *InventoryHandler) GetTotalOnHand(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product_id")
		return
	}

	total, err := h.service.GetTotalOnHand(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, total)
}

// ListLedger handles GET /inventory/ledger
func (h *InventoryHandler) ListLedger(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter inventory.LedgerListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}

	entries, total, err := h.service.ListLedger(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}

// ListBatches handles GET /inventory/batches?product_id=..&location_id=..
func (h *InventoryHandler) ListBatches(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product_id")
		return
	}
	locationID, err := uuid.Parse(c.Query("location_id"))
	if err != nil {
		h.BadRequest(c, "Invalid location_id")
		return
	}

	batches, err := h.service.ListBatches(c.Request.Context(), tenantID, productID, locationID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, batches)
}

// ListExpiring handles GET /inventory/batches/expiring?days=30
func (h *InventoryHandler) ListExpiring(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	days := 30
	if raw := c.Query("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil || days < 1 {
			h.BadRequest(c, "Invalid days")
			return
		}
	}

	filter := bindSharedFilter(c)

	batches, err := h.service.ListExpiring(c.Request.Context(), tenantID, days, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, batches)
}

// ListStockByLocation handles GET /inventory/locations/:id/stock
func (h *InventoryHandler) ListStockByLocation(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	locationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid location ID")
		return
	}

	filter := bindSharedFilter(c)

	levels, err := h.service.ListStockByLocation(c.Request.Context(), tenantID, locationID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, levels)
}

// RebuildStockLevels handles POST /inventory/stock/rebuild
func (h *InventoryHandler) RebuildStockLevels(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	rebuilt, err := h.service.RebuildStockLevels(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"rebuilt": rebuilt})
}

// bindSharedFilter reads common pagination parameters into a shared.Filter
func bindSharedFilter(c *gin.Context) shared.Filter {
	filter := shared.DefaultFilter()
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page >= 1 {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.Query("page_size")); err == nil && size >= 1 && size <= 100 {
		filter.PageSize = size
	}
	return filter
}
