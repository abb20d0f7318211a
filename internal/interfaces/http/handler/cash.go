package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/poscore/backend/internal/application/cash"
)

// CashHandler handles shop cash ledger HTTP requests
type CashHandler struct {
	BaseHandler
	service *cash.Service
}

// NewCashHandler creates a new CashHandler
func NewCashHandler(service *cash.Service) *CashHandler {
	return &CashHandler{service: service}
}

// AppendEntry handles POST /cash/entries
func (h *CashHandler) AppendEntry(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req cash.AppendEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	entry, err := h.service.AppendEntry(c.Request.Context(), tenantID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, entry)
}

// GetBalance handles GET /cash/shops/:id/balance?account=CASH
func (h *CashHandler) GetBalance(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	shopID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid shop ID")
		return
	}

	account := c.DefaultQuery("account", "CASH")

	balance, err := h.service.GetBalance(c.Request.Context(), tenantID, shopID, account)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, balance)
}

// List handles GET /cash/entries
func (h *CashHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter cash.ListFilter
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

	// Shop-scoped listing via /cash/shops/:id/entries
	if raw := c.Param("id"); raw != "" {
		shopID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid shop ID")
			return
		}
		filter.ShopID = &shopID
	}

	entries, total, err := h.service.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}
