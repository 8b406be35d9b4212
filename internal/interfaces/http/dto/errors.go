package dto

import (
	"errors"
	"net/http"

	"github.com/storefront/backend/internal/domain/shared"
)

// Transport-level error codes. Domain failures keep the code of their DomainError.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeInvalidID       = "INVALID_ID"
	ErrCodeRouteNotFound   = "ROUTE_NOT_FOUND"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeUnavailable     = "SERVICE_UNAVAILABLE"
)

// kindHTTPStatus maps error kinds to HTTP status codes
var kindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindValidation: http.StatusBadRequest,
	shared.KindNotFound:   http.StatusNotFound,
	shared.KindConflict:   http.StatusConflict,
	shared.KindState:      http.StatusUnprocessableEntity,
}

// StatusForKind returns the HTTP status for an error kind. Transaction and
// unknown kinds map to 500.
func StatusForKind(kind shared.ErrorKind) int {
	if status, ok := kindHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// FromError converts err into an HTTP status and error payload.
//
// The payload code is the outermost DomainError so callers see which
// operation failed (ORDER_CREATION_FAILED, FAILED_REFUND, ...). The status
// follows the innermost DomainError so a refund that failed because the order
// was unpaid reports 422, not 500. Errors without any DomainError in the
// chain are reported as INTERNAL_ERROR and their text is not exposed.
func FromError(err error) (int, *ErrorInfo) {
	outer, inner := domainChain(err)
	if outer == nil {
		return http.StatusInternalServerError, &ErrorInfo{
			Code:    ErrCodeInternal,
			Message: "An unexpected error occurred",
		}
	}

	info := &ErrorInfo{Code: outer.Code, Message: outer.Message}
	if inner != outer {
		info.Cause = &CauseInfo{Code: inner.Code, Message: inner.Message}
	}
	return StatusForKind(inner.Kind), info
}

// domainChain returns the first and last DomainError found while unwrapping err
func domainChain(err error) (outer, inner *shared.DomainError) {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if de, ok := e.(*shared.DomainError); ok {
			if outer == nil {
				outer = de
			}
			inner = de
		}
	}
	return outer, inner
}
