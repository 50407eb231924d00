package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// PaymentSessionStatus is the host's view of where a payment session stands
type PaymentSessionStatus string

const (
	SessionStatusAuthorized   PaymentSessionStatus = "authorized"
	SessionStatusPending      PaymentSessionStatus = "pending"
	SessionStatusRequiresMore PaymentSessionStatus = "requires_more"
	SessionStatusError        PaymentSessionStatus = "error"
	SessionStatusCanceled     PaymentSessionStatus = "canceled"
)

// IsKnown reports whether the status is one the host understands.
// Gateway statuses are forwarded as-is, so unknown values are possible.
func (s PaymentSessionStatus) IsKnown() bool {
	switch s {
	case SessionStatusAuthorized, SessionStatusPending, SessionStatusRequiresMore,
		SessionStatusError, SessionStatusCanceled:
		return true
	}
	return false
}

// PaymentStatus labels the outcome of capture and refund
type PaymentStatus string

const (
	PaymentStatusCaptured PaymentStatus = "captured"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusFailed   PaymentStatus = "failed"
)

// PaymentMethodPayTR tags tokens issued by this processor
const PaymentMethodPayTR = "paytr"

// SessionData is the gateway-specific metadata stored on a payment session
type SessionData map[string]any

// ID returns the gateway identifier as text, or "" when absent
func (d SessionData) ID() string {
	return d.String("id")
}

// String returns the value for key as text. Numbers and booleans are
// formatted; absent keys, nulls and nested objects give "".
func (d SessionData) String(key string) string {
	switch v := d[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case int, int32, int64, uint, uint32, uint64, bool:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

// PaymentSession is the host-owned session record. The processor only reads it.
type PaymentSession struct {
	ID         string
	ProviderID string
	Status     PaymentSessionStatus
	Amount     int64
	Data       SessionData
}

// ProcessorContext carries the host's payment context into initiate and update
type ProcessorContext struct {
	Amount             int64          `json:"amount"`
	CurrencyCode       string         `json:"currency_code"`
	Email              string         `json:"email,omitempty"`
	ResourceID         string         `json:"resource_id,omitempty"`
	Customer           map[string]any `json:"customer,omitempty"`
	Context            map[string]any `json:"context,omitempty"`
	PaymentSessionData SessionData    `json:"paymentSessionData,omitempty"`
}

// SessionResponse is returned from initiate and update
type SessionResponse struct {
	SessionData SessionData `json:"session_data"`
}

// AuthorizeResult is returned from authorize
type AuthorizeResult struct {
	Status PaymentSessionStatus `json:"status"`
	Data   SessionData          `json:"data"`
}

// CaptureInput identifies the charge to capture
type CaptureInput struct {
	Token  string `json:"token"`
	Amount int64  `json:"amount"`
}

// CaptureResult is returned from a successful capture
type CaptureResult struct {
	ID     any           `json:"id"`
	Amount int64         `json:"amount"`
	Status PaymentStatus `json:"status"`
}

// RefundResult is returned from refund. Error is set only when Status is failed.
type RefundResult struct {
	Status PaymentStatus `json:"status"`
	Error  string        `json:"error,omitempty"`
}

// TokenInput requests a payment token for a new payment
type TokenInput struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// PaymentToken is a gateway token ready to be persisted by the host
type PaymentToken struct {
	Token         string `json:"token"`
	PaymentMethod string `json:"payment_method"`
}
