package contract

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kevin07696/paytr-processor/internal/domain"
	"github.com/kevin07696/paytr-processor/internal/domain/models"
	"github.com/kevin07696/paytr-processor/internal/domain/ports"
)

// AuthorizeRequest is the body of the authorize operation
type AuthorizeRequest struct {
	SessionData models.SessionData `json:"session_data"`
	Context     map[string]any     `json:"context,omitempty"`
}

// SessionRequest is the body of operations that only need the session data
type SessionRequest struct {
	SessionData models.SessionData `json:"session_data"`
}

// UpdateDataRequest is the body of the update-data operation
type UpdateDataRequest struct {
	SessionID string         `json:"session_id"`
	Data      map[string]any `json:"data"`
}

// RefundRequest is the body of the refund operation
type RefundRequest struct {
	SessionData models.SessionData `json:"session_data"`
	Amount      int64              `json:"amount"`
}

// StatusResponse wraps the payment status so every response is an object
type StatusResponse struct {
	Status any `json:"status"`
}

type operation func(ctx context.Context, p ports.PaymentProcessor, body []byte) (any, error)

var operations = map[string]operation{
	"initiate": func(ctx context.Context, p ports.PaymentProcessor, body []byte) (any, error) {
		var req models.ProcessorContext
		if err := decode(body, &req); err != nil {
			return nil, err
		}
		return p.InitiatePayment(ctx, &req)
	},
	"authorize": func(ctx context.Context, p ports.PaymentProcessor, body []byte) (any, error) {
		var req AuthorizeRequest
		if err := decode(body, &req); err != nil {
			return nil, err
		}
		return p.AuthorizePayment(ctx, req.SessionData, req.Context)
	},
	"update": func(ctx context.Context, p ports.PaymentProcessor, body []byte) (any, error) {
		var req models.ProcessorContext
		if err := decode(body, &req); err != nil {
			return nil, err
		}
		return p.UpdatePayment(ctx, &req)
	},
	"update-data": func(ctx context.Context, p ports.PaymentProcessor, body []byte) (any, error) {
		var req UpdateDataRequest
		if err := decode(body, &req); err != nil {
			return nil, err
		}
		return p.UpdatePaymentData(ctx, req.SessionID, req.Data)
	},
	"retrieve": func(ctx context.Context, p ports.PaymentProcessor, body []byte) (any, error) {
		var req SessionRequest
		if err := decode(body, &req); err != nil {
			return nil, err
		}
		return p.RetrievePayment(ctx, req.SessionData)
	},
	"capture": func(ctx context.Context, p ports.PaymentProcessor, body []byte) (any, error) {
		var req models.CaptureInput
		if err := decode(body, &req); err != nil {
			return nil, err
		}
		return p.CapturePayment(ctx, &req)
	},
	"refund": func(ctx context.Context, p ports.PaymentProcessor, body []byte) (any, error) {
		var req RefundRequest
		if err := decode(body, &req); err != nil {
			return nil, err
		}
		return p.RefundPayment(ctx, req.SessionData, req.Amount)
	},
	"cancel": func(ctx context.Context, p ports.PaymentProcessor, body []byte) (any, error) {
		var req SessionRequest
		if err := decode(body, &req); err != nil {
			return nil, err
		}
		return p.CancelPayment(ctx, req.SessionData)
	},
	"delete": func(ctx context.Context, p ports.PaymentProcessor, body []byte) (any, error) {
		var req SessionRequest
		if err := decode(body, &req); err != nil {
			return nil, err
		}
		return p.DeletePayment(ctx, req.SessionData)
	},
	"status": func(ctx context.Context, p ports.PaymentProcessor, body []byte) (any, error) {
		var req SessionRequest
		if err := decode(body, &req); err != nil {
			return nil, err
		}
		status, err := p.GetPaymentStatus(ctx, req.SessionData)
		if err != nil {
			return nil, err
		}
		return &StatusResponse{Status: status}, nil
	},
	"token": func(ctx context.Context, p ports.PaymentProcessor, body []byte) (any, error) {
		var req models.TokenInput
		if err := decode(body, &req); err != nil {
			return nil, err
		}
		return p.CreatePaymentToken(ctx, &req)
	},
}

// Dispatch decodes a validated body and runs the named processor operation.
// The result is returned even alongside an error, since a failed refund still
// reports its status.
func Dispatch(ctx context.Context, p ports.PaymentProcessor, operation string, body []byte) (any, error) {
	op, ok := operations[operation]
	if !ok {
		return nil, fmt.Errorf("unknown operation %q", operation)
	}
	return op(ctx, p, body)
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// ErrorBody builds the normalized error body {error, code, detail}. A failed
// refund also carries its status so the host can record the failure.
func ErrorBody(result any, err error) map[string]any {
	pe := domain.WrapError(domain.ErrorCodeUnknown, err)
	body := map[string]any{
		"error": pe.Message,
		"code":  pe.Code,
	}
	if pe.Detail != nil {
		body["detail"] = pe.Detail
	}
	if refund, ok := result.(*models.RefundResult); ok && refund != nil {
		body["status"] = refund.Status
	}
	return body
}
