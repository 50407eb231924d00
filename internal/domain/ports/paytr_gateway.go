package ports

import (
	"context"
)

// GatewayPayment is the opaque payment object PayTR returns. The processor
// forwards it without validating its shape.
type GatewayPayment map[string]any

// InitiateRequest opens a new payment at the gateway
type InitiateRequest struct {
	Amount       int64          // minor units
	CurrencyCode string
	Email        string
	Metadata     map[string]any
}

// CaptureRequest captures a tokenized charge
type CaptureRequest struct {
	PaymentToken string
	Amount       int64
}

// CaptureResponse is the gateway's verdict on a capture. ID carries the
// gateway's value as decoded, whatever its JSON type.
type CaptureResponse struct {
	Success bool   `json:"success"`
	ID      any    `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RefundRequest returns funds for a previously captured charge
type RefundRequest struct {
	PaymentToken string
	Amount       int64 // minor units
	CurrencyCode string
}

// TokenRequest asks the gateway for a payment token
type TokenRequest struct {
	Amount   int64
	Currency string
}

// PayTRGateway is the gateway-facing contract the processor depends on.
// Implementations authenticate with merchant credentials supplied at construction.
type PayTRGateway interface {
	// Initiate creates a payment and returns the gateway object, including its "id"
	Initiate(ctx context.Context, req *InitiateRequest) (GatewayPayment, error)

	// Authorize authorizes the payment identified by id
	Authorize(ctx context.Context, id string) (GatewayPayment, error)

	// Update applies arbitrary data to an existing payment
	Update(ctx context.Context, id string, data map[string]any) (GatewayPayment, error)

	// Retrieve fetches the current payment object
	Retrieve(ctx context.Context, id string) (GatewayPayment, error)

	// Cancel cancels the payment and returns the fields the gateway reports
	Cancel(ctx context.Context, id string) (GatewayPayment, error)

	// Delete removes the payment at the gateway
	Delete(ctx context.Context, id string) error

	// GetStatus returns the gateway's raw status value for the payment
	GetStatus(ctx context.Context, id string) (any, error)

	// Capture captures a tokenized charge. A declined capture is reported in
	// the response with Success false, not as an error.
	Capture(ctx context.Context, req *CaptureRequest) (*CaptureResponse, error)

	// Refund refunds a captured charge
	Refund(ctx context.Context, req *RefundRequest) error

	// GetToken obtains a payment token for a new payment
	GetToken(ctx context.Context, req *TokenRequest) (string, error)
}
