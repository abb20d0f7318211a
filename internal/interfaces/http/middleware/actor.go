package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/poscore/backend/internal/interfaces/http/dto"
)

// Context keys for the acting tenant and user
const (
	ContextKeyTenantID = "tenant_id"
	ContextKeyUserID   = "user_id"
)

// DefaultTenantID is the development fallback tenant used when no
// X-Tenant-ID header is present. Deployments behind an authenticating
// gateway always set the header.
var DefaultTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// Actor resolves the acting tenant and user from the X-Tenant-ID and
// X-User-ID headers and stores them in the request context. Malformed
// IDs are rejected before any handler runs.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := DefaultTenantID
		if raw := c.GetHeader("X-Tenant-ID"); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
					dto.ErrCodeBadRequest,
					"Invalid X-Tenant-ID header",
				))
				return
			}
			tenantID = parsed
		}
		c.Set(ContextKeyTenantID, tenantID)

		if raw := c.GetHeader("X-User-ID"); raw != "" {
			userID, err := uuid.Parse(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
					dto.ErrCodeBadRequest,
					"Invalid X-User-ID header",
				))
				return
			}
			c.Set(ContextKeyUserID, userID)
		}

		c.Next()
	}
}

// GetTenantID returns the acting tenant set by Actor
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextKeyTenantID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetUserID returns the acting user set by Actor
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextKeyUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
