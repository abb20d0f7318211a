package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/poscore/backend/internal/application/location"
)

// LocationHandler handles location HTTP requests
type LocationHandler struct {
	BaseHandler
	service *location.Service
}

// NewLocationHandler creates a new LocationHandler
func NewLocationHandler(service *location.Service) *LocationHandler {
	return &LocationHandler{service: service}
}

// Create handles POST /locations
func (h *LocationHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req location.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	loc, err := h.service.Create(c.Request.Context(), tenantID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, loc)
}

// Update handles PUT /locations/:id
func (h *LocationHandler) Update(c *gin.Context) {
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

	var req location.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	loc, err := h.service.Update(c.Request.Context(), tenantID, locationID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, loc)
}

// Deactivate handles POST /locations/:id/deactivate
func (h *LocationHandler) Deactivate(c *gin.Context) {
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

	loc, err := h.service.Deactivate(c.Request.Context(), tenantID, locationID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, loc)
}

// GetByID handles GET /locations/:id
func (h *LocationHandler) GetByID(c *gin.Context) {
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

	loc, err := h.service.GetByID(c.Request.Context(), tenantID, locationID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, loc)
}

// List handles GET /locations
func (h *LocationHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter location.ListFilter
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

	locations, total, err := h.service.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, locations, total, filter.Page, filter.PageSize)
}
