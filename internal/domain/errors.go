package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Generic
	ErrorCodeUnknown ErrorCode = "UNKNOWN_ERROR"

	// Validation Errors (VALIDATION_*)
	ErrorCodeValidationFailed       ErrorCode = "VALIDATION_FAILED"
	ErrorCodeValidationMissingField ErrorCode = "VALIDATION_MISSING_FIELD"

	// Payment Gateway Errors
	ErrorCodeGatewayError      ErrorCode = "GATEWAY_ERROR"
	ErrorCodeGatewayNetwork    ErrorCode = "NETWORK_ERROR"
	ErrorCodeGatewayCircuit    ErrorCode = "CIRCUIT_OPEN"
	ErrorCodeCaptureFailed     ErrorCode = "CAPTURE_FAILED"
	ErrorCodeRefundFailed      ErrorCode = "REFUND_FAILED"
	ErrorCodeInvalidGatewayRes ErrorCode = "INVALID_GATEWAY_RESPONSE"

	// Session Errors (SESSION_*)
	ErrorCodeSessionNotFound         ErrorCode = "SESSION_NOT_FOUND"
	ErrorCodeSessionStoreUnavailable ErrorCode = "SESSION_STORE_UNAVAILABLE"
)

// DefaultErrorMessage is used when a failure carries no message of its own
const DefaultErrorMessage = "An unknown error occurred"

var (
	ErrSessionNotFound         = errors.New("payment session not found")
	ErrSessionStoreUnavailable = errors.New("payment session store is not configured")
)

// ProcessorError is the normalized failure every processor operation returns.
// It serializes as {"error": ..., "code": ..., "detail": ...}.
type ProcessorError struct {
	Err     error     `json:"-"`
	Detail  any       `json:"detail,omitempty"`
	Code    ErrorCode `json:"code,omitempty"`
	Message string    `json:"error"`
}

// Error implements the error interface
func (e *ProcessorError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ProcessorError) Unwrap() error {
	return e.Err
}

// WithDetail attaches diagnostic detail to the error
func (e *ProcessorError) WithDetail(detail any) *ProcessorError {
	e.Detail = detail
	return e
}

// NewProcessorError creates a processor error without a cause
func NewProcessorError(code ErrorCode, message string) *ProcessorError {
	if message == "" {
		message = DefaultErrorMessage
	}
	return &ProcessorError{Code: code, Message: message}
}

// WrapError normalizes err into a ProcessorError. The message is taken from
// err and the code from the first Coder in the chain, falling back to code.
// An existing ProcessorError is returned unchanged.
func WrapError(code ErrorCode, err error) *ProcessorError {
	if err == nil {
		return nil
	}

	var pe *ProcessorError
	if errors.As(err, &pe) {
		return pe
	}

	var coder Coder
	if errors.As(err, &coder) && coder.ErrorCode() != "" {
		code = ErrorCode(coder.ErrorCode())
	}

	message := err.Error()
	if message == "" {
		message = DefaultErrorMessage
	}
	return &ProcessorError{Code: code, Message: message, Err: err}
}

// Wrapf normalizes err with a formatted message prefix
func Wrapf(code ErrorCode, err error, format string, args ...any) *ProcessorError {
	return &ProcessorError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// Coder is implemented by errors that carry their own code, such as gateway errors
type Coder interface {
	ErrorCode() string
}

// GetErrorCode extracts the error code from an error, returns empty string if not a ProcessorError
func GetErrorCode(err error) ErrorCode {
	var pe *ProcessorError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
