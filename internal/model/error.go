package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeMissingField     = "MISSING_FIELD"
	ErrCodeProductNotFound  = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound    = "ORDER_NOT_FOUND"
	ErrCodeAuditNotFound    = "AUDIT_ENTRY_NOT_FOUND"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeOrderBlocked     = "ORDER_BLOCKED"
	ErrCodeUnauthorised     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeTooManyAttempts  = "TOO_MANY_ATTEMPTS"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrOrderNotFound   = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrAuditNotFound   = NewDomainError(ErrCodeAuditNotFound, "Audit entry not found")
	ErrOrderBlocked    = NewDomainError(ErrCodeOrderBlocked, "Order could not be placed because your cart changed during checkout. Please review it and try again.")
	ErrUnauthorised    = NewDomainError(ErrCodeUnauthorised, "Authentication required")
	ErrForbidden       = NewDomainError(ErrCodeForbidden, "Not allowed to access this resource")
	ErrTooManyAttempts = NewDomainError(ErrCodeTooManyAttempts, "Too many checkout attempts. Please wait a few minutes and try again.")
)

// ValidationFailedError is returned by checkout when the composite
// validation rejected the order. The result carries every error and warning.
type ValidationFailedError struct {
	Result ValidationResult
}

func (e *ValidationFailedError) Error() string {
	return "order validation failed: " + e.Result.Summary()
}

// ValidationErrorResponse is the 422 body of a rejected checkout. Guidance
// maps each error and warning code to the text shown to the customer.
type ValidationErrorResponse struct {
	Error    string            `json:"error"`
	Message  string            `json:"message"`
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
	Guidance map[string]string `json:"guidance"`
}
