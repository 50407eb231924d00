package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromHTTPStatus(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		code          string
		message       string
		wantCode      string
		wantCategory  ErrorCategory
		wantRetriable bool
		wantMessage   string
	}{
		{
			name:          "server error is retriable",
			status:        http.StatusBadGateway,
			wantCode:      "GATEWAY_ERROR",
			wantCategory:  CategorySystemError,
			wantRetriable: true,
			wantMessage:   "payment gateway returned 502 Bad Gateway",
		},
		{
			name:         "body code and message win",
			status:       http.StatusBadRequest,
			code:         "INVALID_AMOUNT",
			message:      "amount must be positive",
			wantCode:     "INVALID_AMOUNT",
			wantCategory: CategoryInvalidRequest,
			wantMessage:  "amount must be positive",
		},
		{
			name:         "unauthorized",
			status:       http.StatusUnauthorized,
			wantCode:     "GATEWAY_UNAUTHORIZED",
			wantCategory: CategoryUnauthorized,
			wantMessage:  "payment gateway returned 401 Unauthorized",
		},
		{
			name:         "not found",
			status:       http.StatusNotFound,
			message:      "payment not found",
			wantCode:     "PAYMENT_NOT_FOUND",
			wantCategory: CategoryNotFound,
			wantMessage:  "payment not found",
		},
		{
			name:         "declined",
			status:       http.StatusPaymentRequired,
			message:      "card declined",
			wantCode:     "PAYMENT_DECLINED",
			wantCategory: CategoryDeclined,
			wantMessage:  "card declined",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := FromHTTPStatus(tt.status, tt.code, tt.message)
			assert.Equal(t, tt.wantCode, pe.Code)
			assert.Equal(t, tt.wantCategory, pe.Category)
			assert.Equal(t, tt.wantRetriable, pe.IsRetriable)
			assert.Equal(t, tt.wantMessage, pe.Error())
			assert.Equal(t, tt.status, pe.StatusCode)
		})
	}
}

func TestIsRetriable(t *testing.T) {
	retriable := NewPaymentError("NETWORK_ERROR", "connection refused", CategoryNetworkError, true)

	assert.True(t, IsRetriable(retriable))
	assert.True(t, IsRetriable(fmt.Errorf("get payment: %w", retriable)))
	assert.False(t, IsRetriable(FromHTTPStatus(http.StatusBadRequest, "", "")))
	assert.False(t, IsRetriable(errors.New("plain")))
}

func TestPaymentError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	pe := &PaymentError{Code: "NETWORK_ERROR", Message: "failed to reach payment gateway", Err: cause}

	assert.ErrorIs(t, pe, cause)
	assert.Equal(t, "NETWORK_ERROR", pe.ErrorCode())
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("id", "payment id is required")
	assert.Equal(t, "validation error on field 'id': payment id is required", err.Error())
	assert.Equal(t, "VALIDATION_MISSING_FIELD", err.ErrorCode())
}
