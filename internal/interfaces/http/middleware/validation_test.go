package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addLineInput struct {
	SKU      string `json:"sku" binding:"required,sku"`
	Quantity int    `json:"quantity" binding:"required,gte=1"`
}

func bindRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	SetupValidator()

	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req addLineInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(req))
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	type skuHolder struct {
		SKU string `json:"sku" validate:"sku"`
	}
	assert.NoError(t, v.Struct(skuHolder{SKU: "TSHIRT-RED-M"}))
	assert.Error(t, v.Struct(skuHolder{SKU: "has space"}))
	assert.Error(t, v.Struct(skuHolder{SKU: strings.Repeat("x", maxSKULength+1)}))
}

func TestHandleValidationError(t *testing.T) {
	router := bindRouter(t)

	t.Run("lists rejected fields by json name", func(t *testing.T) {
		w := postJSON(router, `{"sku": "bad sku", "quantity": 0}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)

		fields := map[string]string{}
		for _, d := range resp.Error.Details {
			fields[d.Field] = d.Message
		}
		assert.Equal(t, "Must be a SKU without spaces", fields["sku"])
		assert.Equal(t, "This field is required", fields["quantity"])
	})

	t.Run("malformed body", func(t *testing.T) {
		w := postJSON(router, `{"sku": `)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeInvalidJSON)
	})

	t.Run("wrong type", func(t *testing.T) {
		w := postJSON(router, `{"sku": "A", "quantity": "two"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeInvalidJSON)
	})

	t.Run("valid input", func(t *testing.T) {
		w := postJSON(router, `{"sku": "A-1", "quantity": 2}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetValidationMessage(t *testing.T) {
	type input struct {
		Name   string `validate:"min=5"`
		Status string `validate:"oneof=success failure pending"`
		Qty    int    `validate:"gte=1"`
		Inc    int    `validate:"ne=0"`
	}

	err := validator.New().Struct(input{Name: "ab", Status: "paid", Qty: 0, Inc: 0})
	require.Error(t, err)

	got := map[string]string{}
	for _, e := range err.(validator.ValidationErrors) {
		got[e.Field()] = getValidationMessage(e)
	}
	assert.Equal(t, "Must be at least 5 characters", got["Name"])
	assert.Equal(t, "Must be one of: success failure pending", got["Status"])
	assert.Equal(t, "Must be greater than or equal to 1", got["Qty"])
	assert.Equal(t, "Must not be 0", got["Inc"])
}
