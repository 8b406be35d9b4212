package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// maxSKULength matches the inventory_items.sku column
const maxSKULength = 64

var setupOnce sync.Once

// SetupValidator configures gin's validator: field errors are reported under
// their JSON names and the "sku" tag is registered
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
		_ = v.RegisterValidation("sku", validSKU)
	})
}

// validSKU accepts non-empty identifiers without whitespace or control characters
func validSKU(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" || len(s) > maxSKULength {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	}

	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError writes a 400 for a failed bind. Field rule violations
// are listed in details; anything else (malformed JSON, wrong types) is
// reported as INVALID_JSON.
func HandleValidationError(c *gin.Context, err error) {
	id := requestID(c)
	c.Set(ErrorCodeKey, dto.ErrCodeValidation)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		c.Set(ErrorCodeKey, dto.ErrCodeInvalidJSON)
		c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeInvalidJSON, "Request body could not be parsed", id))
		return
	}
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, id))
}

// getValidationMessage returns a human-readable validation message
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "sku":
		return "Must be a SKU without spaces"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "lte":
		return "Must be less than or equal to " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "ne":
		return "Must not be " + e.Param()
	case "dive":
		return "Invalid entry"
	case "required_without":
		return "Required when " + e.Param() + " is missing"
	default:
		return "Invalid value"
	}
}
