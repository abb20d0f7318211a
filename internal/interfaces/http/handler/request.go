package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/poscore/backend/internal/application/request"
)

// RequestHandler handles stock request HTTP requests
type RequestHandler struct {
	BaseHandler
	service *request.Service
}

// NewRequestHandler creates a new RequestHandler
func NewRequestHandler(service *request.Service) *RequestHandler {
	return &RequestHandler{service: service}
}

// Create handles POST /requests
func (h *RequestHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req request.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	r, err := h.service.Create(c.Request.Context(), tenantID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, r)
}

// Approve handles POST /requests/:id/approve
func (h *RequestHandler) Approve(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	requestID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid request ID")
		return
	}

	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	r, err := h.service.Approve(c.Request.Context(), tenantID, actorID, requestID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, r)
}

// Reject handles POST /requests/:id/reject
func (h *RequestHandler) Reject(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	requestID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid request ID")
		return
	}

	var req request.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	r, err := h.service.Reject(c.Request.Context(), tenantID, actorID, requestID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, r)
}

// Cancel handles POST /requests/:id/cancel
func (h *RequestHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	requestID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid request ID")
		return
	}

	r, err := h.service.Cancel(c.Request.Context(), tenantID, requestID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, r)
}

// Convert handles POST /requests/:id/convert
func (h *RequestHandler) Convert(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	requestID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid request ID")
		return
	}

	r, err := h.service.Convert(c.Request.Context(), tenantID, requestID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, r)
}

// GetByID handles GET /requests/:id
func (h *RequestHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	requestID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid request ID")
		return
	}

	r, err := h.service.GetByID(c.Request.Context(), tenantID, requestID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, r)
}

// List handles GET /requests
func (h *RequestHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter request.ListFilter
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

	requests, total, err := h.service.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, requests, total, filter.Page, filter.PageSize)
}
