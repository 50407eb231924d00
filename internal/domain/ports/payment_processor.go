package ports

import (
	"context"

	"github.com/kevin07696/paytr-processor/internal/domain/models"
)

// PaymentProcessor is the capability set the host platform invokes.
// Every method returns either a result or a *domain.ProcessorError, never both,
// with one exception: RefundPayment also returns a failed RefundResult so the
// host can record the failure status.
type PaymentProcessor interface {
	// InitiatePayment opens a gateway payment for the context's amount and currency
	InitiatePayment(ctx context.Context, pc *models.ProcessorContext) (*models.SessionResponse, error)

	// AuthorizePayment authorizes the session's gateway payment
	AuthorizePayment(ctx context.Context, data models.SessionData, extra map[string]any) (*models.AuthorizeResult, error)

	// UpdatePayment pushes the whole context to the gateway and echoes the session data
	UpdatePayment(ctx context.Context, pc *models.ProcessorContext) (*models.SessionResponse, error)

	// UpdatePaymentData looks the session up in the host store and updates its gateway payment
	UpdatePaymentData(ctx context.Context, sessionID string, data map[string]any) (models.SessionData, error)

	// RetrievePayment returns the gateway payment object unmodified
	RetrievePayment(ctx context.Context, data models.SessionData) (GatewayPayment, error)

	// CapturePayment captures a tokenized charge
	CapturePayment(ctx context.Context, in *models.CaptureInput) (*models.CaptureResult, error)

	// RefundPayment refunds amount (minor units) against the session's payment token
	RefundPayment(ctx context.Context, data models.SessionData, amount int64) (*models.RefundResult, error)

	// CancelPayment cancels the session's payment
	CancelPayment(ctx context.Context, data models.SessionData) (models.SessionData, error)

	// DeletePayment deletes the session's payment at the gateway
	DeletePayment(ctx context.Context, data models.SessionData) (models.SessionData, error)

	// GetPaymentStatus returns the gateway's status for the session, unmodified.
	// String values are typed as models.PaymentSessionStatus.
	GetPaymentStatus(ctx context.Context, data models.SessionData) (any, error)

	// CreatePaymentToken obtains a gateway token tagged with the paytr payment method
	CreatePaymentToken(ctx context.Context, in *models.TokenInput) (*models.PaymentToken, error)
}
