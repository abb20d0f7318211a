package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poscore/backend/internal/interfaces/http/dto"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestFormatValidationErrors_UsesJSONFieldNames(t *testing.T) {
	type createRequest struct {
		SKU      string `json:"sku" binding:"required"`
		Quantity int    `json:"quantity" binding:"required,min=1"`
	}

	SetupValidator()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req createRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"quantity": 0}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, dto.ErrCodeValidation)
	assert.Contains(t, body, `"sku"`)
	assert.Contains(t, body, "This field is required")
}

func TestValidationMessage(t *testing.T) {
	type target struct {
		Account  string `json:"account" binding:"oneof=CASH ECASH"`
		Name     string `json:"name" binding:"max=3"`
		Quantity int    `json:"quantity" binding:"min=2"`
	}

	SetupValidator()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	err := v.Struct(target{Account: "CARD", Name: "toolong", Quantity: 1})
	require.Error(t, err)

	validationErrors, ok := err.(validator.ValidationErrors)
	require.True(t, ok)
	require.Len(t, validationErrors, 3)

	messages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		messages[e.Field()] = validationMessage(e)
	}

	assert.Equal(t, "Must be one of: CASH ECASH", messages["account"])
	assert.Equal(t, "Must be at most 3 characters", messages["name"])
	assert.Equal(t, "Must be at least 2", messages["quantity"])
}
