package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCategory represents the category of error for handling
type ErrorCategory string

const (
	CategoryDeclined       ErrorCategory = "declined"
	CategorySystemError    ErrorCategory = "system_error"
	CategoryNetworkError   ErrorCategory = "network_error"
	CategoryInvalidRequest ErrorCategory = "invalid_request"
	CategoryUnauthorized   ErrorCategory = "unauthorized"
	CategoryNotFound       ErrorCategory = "not_found"
)

// PaymentError is a failure reported by, or on the way to, the payment gateway
type PaymentError struct {
	Code        string
	Message     string
	StatusCode  int // HTTP status from the gateway, 0 when no response arrived
	IsRetriable bool
	Category    ErrorCategory
	Err         error
}

// Error returns the gateway's message so it can be surfaced to the host as-is
func (e *PaymentError) Error() string {
	return e.Message
}

// Unwrap returns the transport or decoding cause, if any
func (e *PaymentError) Unwrap() error {
	return e.Err
}

// ErrorCode exposes the gateway code to error normalizers
func (e *PaymentError) ErrorCode() string {
	return e.Code
}

// NewPaymentError creates a new payment error
func NewPaymentError(code, message string, category ErrorCategory, retriable bool) *PaymentError {
	return &PaymentError{
		Code:        code,
		Message:     message,
		Category:    category,
		IsRetriable: retriable,
	}
}

// FromHTTPStatus classifies a non-2xx gateway response. Code and message come
// from the response body when present.
func FromHTTPStatus(status int, code, message string) *PaymentError {
	if message == "" {
		message = fmt.Sprintf("payment gateway returned %d %s", status, http.StatusText(status))
	}

	pe := &PaymentError{Code: code, Message: message, StatusCode: status}
	switch {
	case status >= 500:
		pe.Category = CategorySystemError
		pe.IsRetriable = true
		if pe.Code == "" {
			pe.Code = "GATEWAY_ERROR"
		}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		pe.Category = CategoryUnauthorized
		if pe.Code == "" {
			pe.Code = "GATEWAY_UNAUTHORIZED"
		}
	case status == http.StatusNotFound:
		pe.Category = CategoryNotFound
		if pe.Code == "" {
			pe.Code = "PAYMENT_NOT_FOUND"
		}
	case status == http.StatusPaymentRequired || status == http.StatusUnprocessableEntity:
		pe.Category = CategoryDeclined
		if pe.Code == "" {
			pe.Code = "PAYMENT_DECLINED"
		}
	default:
		pe.Category = CategoryInvalidRequest
		if pe.Code == "" {
			pe.Code = "REQUEST_ERROR"
		}
	}
	return pe
}

// IsRetriable reports whether err is a PaymentError that may succeed on retry
func IsRetriable(err error) bool {
	var pe *PaymentError
	return errors.As(err, &pe) && pe.IsRetriable
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ErrorCode exposes a stable code to error normalizers
func (e *ValidationError) ErrorCode() string {
	return "VALIDATION_MISSING_FIELD"
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
