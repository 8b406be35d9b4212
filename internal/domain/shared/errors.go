package shared

import "errors"

// ErrorKind classifies a DomainError for callers that need to react to the
// category of failure rather than the concrete code (HTTP mapping, logging).
type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"
	KindConflict    ErrorKind = "conflict"
	KindState       ErrorKind = "state"
	KindNotFound    ErrorKind = "not_found"
	KindTransaction ErrorKind = "transaction"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Kind    ErrorKind `json:"-"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause so errors.Is/As reach through wrappers
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithMessage returns a copy of the error carrying a more specific message
func (e *DomainError) WithMessage(message string) *DomainError {
	return &DomainError{Code: e.Code, Message: message, Kind: e.Kind, Cause: e.Cause}
}

// Wrap returns a copy of the error with cause attached
func (e *DomainError) Wrap(cause error) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Kind: e.Kind, Cause: cause}
}

// NewDomainError creates a new domain error of the validation kind
func NewDomainError(code, message string) *DomainError {
	return NewDomainErrorOfKind(KindValidation, code, message)
}

// NewDomainErrorOfKind creates a new domain error with an explicit kind
func NewDomainErrorOfKind(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Kind:    kind,
	}
}

// KindOf returns the kind of the outermost DomainError in err's chain
func KindOf(err error) (ErrorKind, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

// Common domain errors
var (
	ErrNotFound            = NewDomainErrorOfKind(KindNotFound, "NOT_FOUND", "Resource not found")
	ErrInvalidInput        = NewDomainErrorOfKind(KindValidation, "INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainErrorOfKind(KindConflict, "CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainErrorOfKind(KindState, "INVALID_STATE", "Operation not allowed in current state")
)

// Stock errors
var (
	ErrInvalidOperation       = NewDomainErrorOfKind(KindValidation, "INVALID_OPERATION", "Invalid stock operation")
	ErrInvalidQuantity        = NewDomainErrorOfKind(KindValidation, "INVALID_QUANTITY", "Quantity must be a positive integer")
	ErrOutOfStock             = NewDomainErrorOfKind(KindConflict, "OUT_OF_STOCK", "Not enough stock to complete the operation")
	ErrInsufficientStock      = NewDomainErrorOfKind(KindConflict, "INSUFFICIENT_STOCK", "Requested quantity exceeds available stock")
	ErrNoStockAvailable       = NewDomainErrorOfKind(KindConflict, "NO_STOCK_AVAILABLE", "Item is not available for purchase")
	ErrStockInvariantViolated = NewDomainErrorOfKind(KindValidation, "STOCK_INVARIANT_VIOLATED", "Available stock cannot exceed actual stock")
	ErrInvalidStockValue      = NewDomainErrorOfKind(KindState, "INVALID_STOCK_VALUE", "Actual stock is lower than available stock")
	ErrCategoryNotActive      = NewDomainErrorOfKind(KindState, "CATEGORY_NOT_ACTIVE", "Category is not active")
	ErrProductNotActive       = NewDomainErrorOfKind(KindState, "PRODUCT_NOT_ACTIVE", "Product is not active")
	ErrItemNotActive          = NewDomainErrorOfKind(KindState, "ITEM_NOT_ACTIVE", "Item is not active")
)

// Cart and order errors
var (
	ErrDuplicateLine           = NewDomainErrorOfKind(KindConflict, "DUPLICATE_LINE", "Cart holds more than one line for the same item")
	ErrLineNotFound            = NewDomainErrorOfKind(KindState, "LINE_NOT_FOUND", "Line does not belong to the cart")
	ErrEmptyCart               = NewDomainErrorOfKind(KindValidation, "EMPTY_CART", "Cart has no lines")
	ErrVoucherNotActive        = NewDomainErrorOfKind(KindState, "VOUCHER_NOT_ACTIVE", "Voucher is not active")
	ErrInvalidTransactionRef   = NewDomainErrorOfKind(KindValidation, "INVALID_TRANSACTION_REF", "Transaction reference is required")
	ErrDuplicateTransactionRef = NewDomainErrorOfKind(KindConflict, "DUPLICATE_TRANSACTION_REF", "Transaction reference already used")
	ErrInvalidGatewayStatus    = NewDomainErrorOfKind(KindValidation, "INVALID_GATEWAY_STATUS", "Unknown payment gateway status")
	ErrInvalidReason           = NewDomainErrorOfKind(KindValidation, "INVALID_REASON", "Refund reason is required")
	ErrAlreadyRefunded         = NewDomainErrorOfKind(KindConflict, "ALREADY_REFUNDED", "Order line has already been refunded")
)

// Transaction failures
var (
	ErrOrderCreationFailed     = NewDomainErrorOfKind(KindTransaction, "ORDER_CREATION_FAILED", "Failed to create order from cart")
	ErrOrderFinalizationFailed = NewDomainErrorOfKind(KindTransaction, "ORDER_FINALIZATION_FAILED", "Failed to finalize order after payment")
	ErrFailedRefund            = NewDomainErrorOfKind(KindTransaction, "FAILED_REFUND", "Failed to refund order line")
)
