package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/poscore/backend/internal/application/transfer"
)

// TransferHandler handles stock transfer HTTP requests
type TransferHandler struct {
	BaseHandler
	service *transfer.Service
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(service *transfer.Service) *TransferHandler {
	return &TransferHandler{service: service}
}

// Create handles POST /transfers
func (h *TransferHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req transfer.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	t, err := h.service.Create(c.Request.Context(), tenantID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, t)
}

// Send handles POST /transfers/:id/send
func (h *TransferHandler) Send(c *gin.Context) {
	h.transition(c, func(tenantID, actorID, transferID uuid.UUID) (*transfer.TransferResponse, error) {
		return h.service.Send(c.Request.Context(), tenantID, actorID, transferID)
	})
}

// Receive handles POST /transfers/:id/receive
func (h *TransferHandler) Receive(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	transferID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	var req transfer.ReceiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	t, err := h.service.Receive(c.Request.Context(), tenantID, actorID, transferID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, t)
}

// Dispute handles POST /transfers/:id/dispute
func (h *TransferHandler) Dispute(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	transferID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	var req transfer.DisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	t, err := h.service.Dispute(c.Request.Context(), tenantID, actorID, transferID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, t)
}

// Close handles POST /transfers/:id/close
func (h *TransferHandler) Close(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	transferID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	// Resolution notes are optional; close accepts an empty body
	var req transfer.CloseRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	t, err := h.service.Close(c.Request.Context(), tenantID, transferID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, t)
}

// Cancel handles POST /transfers/:id/cancel
func (h *TransferHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	transferID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	t, err := h.service.Cancel(c.Request.Context(), tenantID, transferID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, t)
}

// GetByID handles GET /transfers/:id
func (h *TransferHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	transferID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), tenantID, transferID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, t)
}

// List handles GET /transfers
func (h *TransferHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter transfer.ListFilter
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

	transfers, total, err := h.service.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, transfers, total, filter.Page, filter.PageSize)
}

// transition runs an actor-initiated state change identified by the :id param
func (h *TransferHandler) transition(c *gin.Context, fn func(tenantID, actorID, transferID uuid.UUID) (*transfer.TransferResponse, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	transferID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	t, err := fn(tenantID, actorID, transferID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, t)
}
