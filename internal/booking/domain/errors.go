package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Common domain error codes
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeInvalidState  = "INVALID_STATE"
	ErrCodePaymentFailed = "PAYMENT_FAILED"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeInternal      = "INTERNAL_ERROR"
)

// NewInvalidInputError creates a new invalid input error
func NewInvalidInputError(message, details string) *DomainError {
	return &DomainError{Code: ErrCodeInvalidInput, Message: message, Details: details}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Details: fmt.Sprintf("ID: %s", id),
	}
}

// NewAlreadyExistsError creates a new already exists error
func NewAlreadyExistsError(resource, id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeAlreadyExists,
		Message: fmt.Sprintf("%s already exists", resource),
		Details: fmt.Sprintf("ID: %s", id),
	}
}

// NewInvalidStateError creates a new invalid state error
func NewInvalidStateError(message, details string) *DomainError {
	return &DomainError{Code: ErrCodeInvalidState, Message: message, Details: details}
}

// NewPaymentFailedError creates a new payment failed error
func NewPaymentFailedError(reason string) *DomainError {
	return &DomainError{Code: ErrCodePaymentFailed, Message: "Payment processing failed", Details: reason}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *DomainError {
	return &DomainError{Code: ErrCodeUnauthorized, Message: message}
}

// NewInternalError creates a new internal error
func NewInternalError(message string) *DomainError {
	return &DomainError{Code: ErrCodeInternal, Message: message}
}

// IsNotFound reports whether err is a NOT_FOUND domain error.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsInvalidInput reports whether err is an INVALID_INPUT domain error.
func IsInvalidInput(err error) bool {
	return hasCode(err, ErrCodeInvalidInput)
}

// IsInvalidState reports whether err is an INVALID_STATE domain error.
func IsInvalidState(err error) bool {
	return hasCode(err, ErrCodeInvalidState)
}

func hasCode(err error, code string) bool {
	de, ok := err.(*DomainError)
	if !ok {
		return false
	}
	return de.Code == code
}
