package model

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeSessionNotFound    = "SESSION_NOT_FOUND"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodePaymentInit        = "PAYMENT_INIT_FAILED"
	ErrCodePaymentVerify      = "PAYMENT_VERIFY_FAILED"
	ErrCodeNoOrder            = "NO_CURRENT_ORDER"
	ErrCodeCatalogUnavailable = "CATALOG_UNAVAILABLE"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError is a business error safe to surface to the user.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrSessionNotFound    = NewDomainError(ErrCodeSessionNotFound, "Conversation session not found")
	ErrEmptyCart          = NewDomainError(ErrCodeEmptyCart, "An order must contain at least one item")
	ErrNoCurrentOrder     = NewDomainError(ErrCodeNoOrder, "No order is awaiting payment for this conversation")
	ErrCatalogUnavailable = NewDomainError(ErrCodeCatalogUnavailable, "The dish catalogue is not available")
)
