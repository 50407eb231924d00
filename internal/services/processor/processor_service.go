package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kevin07696/paytr-processor/internal/domain"
	"github.com/kevin07696/paytr-processor/internal/domain/models"
	"github.com/kevin07696/paytr-processor/internal/domain/ports"
	pkgerrors "github.com/kevin07696/paytr-processor/pkg/errors"
	"github.com/kevin07696/paytr-processor/pkg/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/kevin07696/paytr-processor/internal/services/processor"

// Service adapts the PayTR gateway to the host's payment processor contract.
// Each operation makes exactly one gateway call and never retries on its own.
type Service struct {
	gateway  ports.PayTRGateway
	sessions ports.SessionStore
	logger   ports.Logger
	tracer   trace.Tracer
}

var _ ports.PaymentProcessor = (*Service)(nil)

// NewService creates a new payment processor service.
// sessions may be nil, in which case UpdatePaymentData reports the store as unavailable.
func NewService(gateway ports.PayTRGateway, sessions ports.SessionStore, logger ports.Logger) *Service {
	return &Service{
		gateway:  gateway,
		sessions: sessions,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
	}
}

// InitiatePayment implements ports.PaymentProcessor
func (s *Service) InitiatePayment(ctx context.Context, pc *models.ProcessorContext) (*models.SessionResponse, error) {
	if pc == nil {
		pc = &models.ProcessorContext{}
	}
	ctx, done := s.track(ctx, "initiate",
		attribute.Int64("payment.amount", pc.Amount),
		attribute.String("payment.currency", pc.CurrencyCode),
	)

	payment, err := s.gateway.Initiate(ctx, &ports.InitiateRequest{
		Amount:       pc.Amount,
		CurrencyCode: pc.CurrencyCode,
		Email:        pc.Email,
		Metadata:     initiateMetadata(pc),
	})
	if err != nil {
		return nil, done(domain.WrapError(domain.ErrorCodeUnknown, err))
	}

	data := pickID(payment)
	s.logger.Info("payment initiated", ports.String("payment_id", data.ID()))
	return &models.SessionResponse{SessionData: data}, done(nil)
}

// AuthorizePayment implements ports.PaymentProcessor
func (s *Service) AuthorizePayment(ctx context.Context, data models.SessionData, _ map[string]any) (*models.AuthorizeResult, error) {
	id := data.ID()
	ctx, done := s.track(ctx, "authorize", attribute.String("payment.id", id))

	if _, err := s.gateway.Authorize(ctx, id); err != nil {
		return nil, done(domain.WrapError(domain.ErrorCodeUnknown, err))
	}

	return &models.AuthorizeResult{
		Status: models.SessionStatusAuthorized,
		Data:   models.SessionData{"id": id},
	}, done(nil)
}

// UpdatePayment implements ports.PaymentProcessor
func (s *Service) UpdatePayment(ctx context.Context, pc *models.ProcessorContext) (*models.SessionResponse, error) {
	if pc == nil {
		pc = &models.ProcessorContext{}
	}
	id := pc.PaymentSessionData.ID()
	ctx, done := s.track(ctx, "update", attribute.String("payment.id", id))

	update, err := contextToMap(pc)
	if err != nil {
		return nil, done(domain.WrapError(domain.ErrorCodeValidationFailed, err))
	}

	if _, err := s.gateway.Update(ctx, id, update); err != nil {
		return nil, done(domain.WrapError(domain.ErrorCodeUnknown, err))
	}

	return &models.SessionResponse{SessionData: pc.PaymentSessionData}, done(nil)
}

// UpdatePaymentData implements ports.PaymentProcessor
func (s *Service) UpdatePaymentData(ctx context.Context, sessionID string, data map[string]any) (models.SessionData, error) {
	ctx, done := s.track(ctx, "update_data", attribute.String("session.id", sessionID))

	if s.sessions == nil {
		return nil, done(domain.WrapError(domain.ErrorCodeSessionStoreUnavailable, domain.ErrSessionStoreUnavailable))
	}

	session, err := s.sessions.RetrieveSession(ctx, sessionID)
	if err != nil {
		code := domain.ErrorCodeSessionStoreUnavailable
		if errors.Is(err, domain.ErrSessionNotFound) {
			code = domain.ErrorCodeSessionNotFound
		}
		return nil, done(&domain.ProcessorError{Code: code, Message: err.Error(), Err: err})
	}

	payment, err := s.gateway.Update(ctx, session.Data.ID(), data)
	if err != nil {
		return nil, done(domain.WrapError(domain.ErrorCodeUnknown, err))
	}

	return pickID(payment), done(nil)
}

// RetrievePayment implements ports.PaymentProcessor
func (s *Service) RetrievePayment(ctx context.Context, data models.SessionData) (ports.GatewayPayment, error) {
	id := data.ID()
	ctx, done := s.track(ctx, "retrieve", attribute.String("payment.id", id))

	payment, err := s.gateway.Retrieve(ctx, id)
	if err != nil {
		return nil, done(domain.WrapError(domain.ErrorCodeUnknown, err))
	}
	if payment == nil {
		payment = ports.GatewayPayment{}
	}
	return payment, done(nil)
}

// CapturePayment implements ports.PaymentProcessor
func (s *Service) CapturePayment(ctx context.Context, in *models.CaptureInput) (*models.CaptureResult, error) {
	if in == nil {
		in = &models.CaptureInput{}
	}
	ctx, done := s.track(ctx, "capture", attribute.Int64("payment.amount", in.Amount))

	resp, err := s.gateway.Capture(ctx, &ports.CaptureRequest{PaymentToken: in.Token, Amount: in.Amount})
	if err != nil {
		return nil, done(domain.Wrapf(domain.ErrorCodeCaptureFailed, err, "failed to capture payment: %s", err.Error()))
	}
	if !resp.Success {
		reason := resp.Error
		if reason == "" {
			reason = "payment gateway did not confirm the capture"
		}
		pe := domain.NewProcessorError(domain.ErrorCodeCaptureFailed, "failed to capture payment: "+reason)
		if resp.Error != "" {
			pe = pe.WithDetail(resp.Error)
		}
		return nil, done(pe)
	}

	observability.RecordProcessorAmount("capture", "", in.Amount)
	s.logger.Info("payment captured", ports.String("payment_id", fmt.Sprint(resp.ID)), ports.Int64("amount", in.Amount))
	return &models.CaptureResult{
		ID:     resp.ID,
		Amount: in.Amount,
		Status: models.PaymentStatusCaptured,
	}, done(nil)
}

// RefundPayment implements ports.PaymentProcessor.
// On failure both a failed RefundResult and the error are returned.
func (s *Service) RefundPayment(ctx context.Context, data models.SessionData, amount int64) (*models.RefundResult, error) {
	currency := data.String("currency_code")
	ctx, done := s.track(ctx, "refund",
		attribute.Int64("payment.amount", amount),
		attribute.String("payment.currency", currency),
	)

	err := s.gateway.Refund(ctx, &ports.RefundRequest{
		PaymentToken: data.String("payment_token"),
		Amount:       amount,
		CurrencyCode: currency,
	})
	if err != nil {
		pe := domain.WrapError(domain.ErrorCodeRefundFailed, err)
		return &models.RefundResult{Status: models.PaymentStatusFailed, Error: pe.Message}, done(pe)
	}

	observability.RecordProcessorAmount("refund", currency, amount)
	return &models.RefundResult{Status: models.PaymentStatusRefunded}, done(nil)
}

// CancelPayment implements ports.PaymentProcessor. Fields reported by the
// gateway are merged over the session id.
func (s *Service) CancelPayment(ctx context.Context, data models.SessionData) (models.SessionData, error) {
	id := data.ID()
	ctx, done := s.track(ctx, "cancel", attribute.String("payment.id", id))

	canceled, err := s.gateway.Cancel(ctx, id)
	if err != nil {
		return nil, done(domain.WrapError(domain.ErrorCodeUnknown, err))
	}

	result := models.SessionData{"id": id}
	for k, v := range canceled {
		result[k] = v
	}
	return result, done(nil)
}

// DeletePayment implements ports.PaymentProcessor
func (s *Service) DeletePayment(ctx context.Context, data models.SessionData) (models.SessionData, error) {
	id := data.ID()
	ctx, done := s.track(ctx, "delete", attribute.String("payment.id", id))

	if err := s.gateway.Delete(ctx, id); err != nil {
		return nil, done(domain.WrapError(domain.ErrorCodeUnknown, err))
	}
	return models.SessionData{}, done(nil)
}

// GetPaymentStatus implements ports.PaymentProcessor. The gateway's value is
// returned as-is even when the host does not know it. String values come back
// as models.PaymentSessionStatus.
func (s *Service) GetPaymentStatus(ctx context.Context, data models.SessionData) (any, error) {
	id := data.ID()
	ctx, done := s.track(ctx, "get_status", attribute.String("payment.id", id))

	raw, err := s.gateway.GetStatus(ctx, id)
	if err != nil {
		return nil, done(domain.WrapError(domain.ErrorCodeUnknown, err))
	}

	text, ok := raw.(string)
	if ok && models.PaymentSessionStatus(text).IsKnown() {
		return models.PaymentSessionStatus(text), done(nil)
	}

	s.logger.Warn("unrecognized PayTR payment status",
		ports.String("payment_id", id),
		ports.String("status", fmt.Sprint(raw)),
	)
	if ok {
		return models.PaymentSessionStatus(text), done(nil)
	}
	return raw, done(nil)
}

// CreatePaymentToken implements ports.PaymentProcessor
func (s *Service) CreatePaymentToken(ctx context.Context, in *models.TokenInput) (*models.PaymentToken, error) {
	if in == nil {
		in = &models.TokenInput{}
	}
	ctx, done := s.track(ctx, "create_token",
		attribute.Int64("payment.amount", in.Amount),
		attribute.String("payment.currency", in.Currency),
	)

	token, err := s.gateway.GetToken(ctx, &ports.TokenRequest{Amount: in.Amount, Currency: in.Currency})
	if err != nil {
		return nil, done(domain.WrapError(domain.ErrorCodeUnknown, err))
	}

	return &models.PaymentToken{Token: token, PaymentMethod: models.PaymentMethodPayTR}, done(nil)
}

// track starts a span for op and returns a finisher that records the outcome.
// The finisher returns its argument as an error, or a nil error on success.
func (s *Service) track(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(*domain.ProcessorError) error) {
	ctx, span := s.tracer.Start(ctx, "PaymentProcessor."+op, trace.WithAttributes(attrs...))
	start := time.Now()

	return ctx, func(pe *domain.ProcessorError) error {
		defer span.End()

		if pe == nil {
			observability.RecordProcessorOperation(op, "", time.Since(start))
			return nil
		}

		span.RecordError(pe)
		span.SetStatus(codes.Error, pe.Message)
		observability.RecordProcessorOperation(op, string(pe.Code), time.Since(start))

		fields := []ports.Field{
			ports.String("operation", op),
			ports.String("code", string(pe.Code)),
			ports.Err(pe),
		}
		var ve *pkgerrors.ValidationError
		if errors.As(pe, &ve) {
			s.logger.Warn("payment processor rejected input", fields...)
		} else {
			s.logger.Error("payment processor operation failed", fields...)
		}
		return pe
	}
}

// pickID keeps only the gateway id; a missing id stays absent
func pickID(payment ports.GatewayPayment) models.SessionData {
	data := models.SessionData{}
	if id, ok := payment["id"]; ok {
		data["id"] = id
	}
	return data
}

func initiateMetadata(pc *models.ProcessorContext) map[string]any {
	meta := map[string]any{}
	if pc.ResourceID != "" {
		meta["resource_id"] = pc.ResourceID
	}
	if len(pc.Customer) > 0 {
		meta["customer"] = pc.Customer
	}
	if len(pc.Context) > 0 {
		meta["context"] = pc.Context
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

// contextToMap sends the context to the gateway with the same keys the host uses
func contextToMap(pc *models.ProcessorContext) (map[string]any, error) {
	raw, err := json.Marshal(pc)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
