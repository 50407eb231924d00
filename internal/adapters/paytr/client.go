package paytr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/kevin07696/paytr-processor/internal/domain/ports"
	pkgerrors "github.com/kevin07696/paytr-processor/pkg/errors"
	"github.com/kevin07696/paytr-processor/pkg/observability"
	"github.com/kevin07696/paytr-processor/pkg/resilience"
)

const maxResponseBytes = 1 << 20

// Client implements ports.PayTRGateway over the PayTR JSON API
type Client struct {
	creds      Credentials
	baseURL    string
	httpClient ports.HTTPClient
	logger     ports.Logger
	breaker    *CircuitBreaker
	readRetry  resilience.RetryPolicy
	newOrderID func() string
}

var _ ports.PayTRGateway = (*Client)(nil)

// Option customizes a Client
type Option func(*Client)

// WithCircuitBreaker replaces the default breaker
func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(c *Client) { c.breaker = cb }
}

// WithReadRetry replaces the retry policy used for GET requests
func WithReadRetry(policy resilience.RetryPolicy) Option {
	return func(c *Client) { c.readRetry = policy }
}

// WithOrderIDGenerator sets how merchant order ids are generated
func WithOrderIDGenerator(fn func() string) Option {
	return func(c *Client) { c.newOrderID = fn }
}

// NewClient creates a PayTR client with dependency injection
func NewClient(creds Credentials, baseURL string, httpClient ports.HTTPClient, logger ports.Logger, opts ...Option) *Client {
	cbConfig := DefaultCircuitBreakerConfig()
	cbConfig.IsFailure = isGatewayFailure
	cbConfig.OnStateChange = func(from, to CircuitState) {
		observability.SetGatewayCircuitState(int(to))
		logger.Warn("PayTR circuit breaker state changed",
			ports.String("from", from.String()),
			ports.String("to", to.String()),
		)
	}

	c := &Client{
		creds:      creds,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
		breaker:    NewCircuitBreaker(cbConfig),
		readRetry: resilience.RetryPolicy{
			MaxRetries: 2,
			Backoff:    resilience.DefaultExponentialBackoff(),
			Retryable:  pkgerrors.IsRetriable,
		},
		newOrderID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CircuitState exposes the breaker state for health checks
func (c *Client) CircuitState() CircuitState {
	return c.breaker.State()
}

type initiateBody struct {
	MerchantOID   string         `json:"merchant_oid"`
	Amount        int64          `json:"amount"`
	PaymentAmount string         `json:"payment_amount"`
	CurrencyCode  string         `json:"currency_code"`
	Email         string         `json:"email,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Initiate implements PayTRGateway.Initiate
func (c *Client) Initiate(ctx context.Context, req *ports.InitiateRequest) (ports.GatewayPayment, error) {
	body := initiateBody{
		MerchantOID:   c.newOrderID(),
		Amount:        req.Amount,
		PaymentAmount: FormatMajorUnits(req.Amount, req.CurrencyCode),
		CurrencyCode:  req.CurrencyCode,
		Email:         req.Email,
		Metadata:      req.Metadata,
	}

	var payment ports.GatewayPayment
	if err := c.do(ctx, "initiate", http.MethodPost, "/payments", body, &payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// Authorize implements PayTRGateway.Authorize
func (c *Client) Authorize(ctx context.Context, id string) (ports.GatewayPayment, error) {
	return c.paymentAction(ctx, "authorize", http.MethodPost, id, "/authorize", nil)
}

// Update implements PayTRGateway.Update
func (c *Client) Update(ctx context.Context, id string, data map[string]any) (ports.GatewayPayment, error) {
	if data == nil {
		data = map[string]any{}
	}
	return c.paymentAction(ctx, "update", http.MethodPatch, id, "", data)
}

// Retrieve implements PayTRGateway.Retrieve
func (c *Client) Retrieve(ctx context.Context, id string) (ports.GatewayPayment, error) {
	return c.paymentAction(ctx, "retrieve", http.MethodGet, id, "", nil)
}

// Cancel implements PayTRGateway.Cancel
func (c *Client) Cancel(ctx context.Context, id string) (ports.GatewayPayment, error) {
	return c.paymentAction(ctx, "cancel", http.MethodPost, id, "/cancel", nil)
}

// Delete implements PayTRGateway.Delete
func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return pkgerrors.NewValidationError("id", "payment id is required")
	}
	return c.do(ctx, "delete", http.MethodDelete, paymentPath(id, ""), nil, nil)
}

// GetStatus implements PayTRGateway.GetStatus
func (c *Client) GetStatus(ctx context.Context, id string) (any, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("id", "payment id is required")
	}

	var resp ports.GatewayPayment
	if err := c.do(ctx, "get_status", http.MethodGet, paymentPath(id, "/status"), nil, &resp); err != nil {
		return nil, err
	}
	return resp["status"], nil
}

// Capture implements PayTRGateway.Capture
func (c *Client) Capture(ctx context.Context, req *ports.CaptureRequest) (*ports.CaptureResponse, error) {
	if req.PaymentToken == "" {
		return nil, pkgerrors.NewValidationError("token", "payment token is required")
	}

	body := map[string]any{
		"payment_token": req.PaymentToken,
		"amount":        req.Amount,
	}

	var resp ports.GatewayPayment
	if err := c.do(ctx, "capture", http.MethodPost, "/capture", body, &resp); err != nil {
		return nil, err
	}

	success, _ := resp["success"].(bool)
	return &ports.CaptureResponse{
		Success: success,
		ID:      resp["id"],
		Error:   scalarString(resp["error"]),
	}, nil
}

// scalarString renders a loosely typed gateway field as text, "" when absent
func scalarString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Refund implements PayTRGateway.Refund
func (c *Client) Refund(ctx context.Context, req *ports.RefundRequest) error {
	if req.PaymentToken == "" {
		return pkgerrors.NewValidationError("payment_token", "payment token is required")
	}

	body := map[string]any{
		"merchant_id":   c.creds.MerchantID,
		"payment_token": req.PaymentToken,
		"amount":        req.Amount,
		"return_amount": FormatMajorUnits(req.Amount, req.CurrencyCode),
	}
	return c.do(ctx, "refund", http.MethodPost, "/refund", body, nil)
}

// GetToken implements PayTRGateway.GetToken
func (c *Client) GetToken(ctx context.Context, req *ports.TokenRequest) (string, error) {
	body := map[string]any{
		"merchant_oid": c.newOrderID(),
		"amount":       req.Amount,
		"currency":     req.Currency,
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, "get_token", http.MethodPost, "/token", body, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", pkgerrors.NewPaymentError("INVALID_GATEWAY_RESPONSE", "payment gateway returned no token", pkgerrors.CategorySystemError, false)
	}
	return resp.Token, nil
}

func (c *Client) paymentAction(ctx context.Context, op, method, id, suffix string, body any) (ports.GatewayPayment, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("id", "payment id is required")
	}

	var payment ports.GatewayPayment
	if err := c.do(ctx, op, method, paymentPath(id, suffix), body, &payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func paymentPath(id, suffix string) string {
	return "/payments/" + url.PathEscape(id) + suffix
}

// do sends one logical request. Reads are retried on retriable failures;
// writes are sent exactly once.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
	}

	attempt := func(ctx context.Context) error {
		err := c.breaker.Execute(ctx, func(ctx context.Context) error {
			return c.makeRequest(ctx, op, method, path, payload, out)
		})
		if errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrTooManyRequests) {
			observability.RecordGatewayRequest(op, "circuit_open", 0)
			return &pkgerrors.PaymentError{
				Code:     "CIRCUIT_OPEN",
				Message:  "payment gateway temporarily unavailable",
				Category: pkgerrors.CategorySystemError,
				Err:      err,
			}
		}
		return err
	}

	if method != http.MethodGet {
		return attempt(ctx)
	}

	return resilience.Retry(ctx, c.readRetry, attempt, func(retry int, delay time.Duration, err error) {
		c.logger.Warn("retrying PayTR request",
			ports.String("operation", op),
			ports.Int("retry", retry),
			ports.Duration("delay", delay),
			ports.Err(err),
		)
	})
}

// makeRequest makes a single signed HTTP request to the PayTR API
func (c *Client) makeRequest(ctx context.Context, op, method, path string, payload []byte, out any) error {
	signature := CalculateSignature(c.creds.APISecret, c.creds.MerchantID, method, path, payload)

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(headerMerchantID, c.creds.MerchantID)
	httpReq.Header.Set(headerAPIKey, c.creds.APIKey)
	httpReq.Header.Set(headerSignature, signature)

	// Credentials and bodies stay out of the log
	c.logger.Info("making request to PayTR",
		ports.String("operation", op),
		ports.String("method", method),
		ports.String("endpoint", path),
	)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			observability.RecordGatewayRequest(op, "canceled", time.Since(start))
			return ctxErr
		}
		observability.RecordGatewayRequest(op, string(pkgerrors.CategoryNetworkError), time.Since(start))
		c.logger.Error("PayTR request failed", ports.String("endpoint", path), ports.Err(err))
		return &pkgerrors.PaymentError{
			Code:        "NETWORK_ERROR",
			Message:     "failed to connect to payment gateway",
			IsRetriable: true,
			Category:    pkgerrors.CategoryNetworkError,
			Err:         err,
		}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		observability.RecordGatewayRequest(op, string(pkgerrors.CategoryNetworkError), time.Since(start))
		return &pkgerrors.PaymentError{
			Code:        "NETWORK_ERROR",
			Message:     "failed to read payment gateway response",
			IsRetriable: true,
			Category:    pkgerrors.CategoryNetworkError,
			Err:         err,
		}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		code, message := parseErrorBody(respBody)
		pe := pkgerrors.FromHTTPStatus(httpResp.StatusCode, code, message)
		observability.RecordGatewayRequest(op, string(pe.Category), time.Since(start))
		c.logger.Warn("PayTR returned an error",
			ports.String("operation", op),
			ports.Int("status", httpResp.StatusCode),
			ports.String("code", pe.Code),
		)
		return pe
	}

	observability.RecordGatewayRequest(op, "ok", time.Since(start))

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &pkgerrors.PaymentError{
			Code:     "INVALID_GATEWAY_RESPONSE",
			Message:  "failed to decode payment gateway response",
			Category: pkgerrors.CategorySystemError,
			Err:      err,
		}
	}
	return nil
}

// parseErrorBody extracts {error|message, code} from a PayTR error response.
// PayTR sometimes answers with {"status":"failed","reason":"..."} instead.
func parseErrorBody(body []byte) (code, message string) {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Reason  string `json:"reason"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return "", ""
	}

	switch {
	case e.Error != "":
		message = e.Error
	case e.Message != "":
		message = e.Message
	default:
		message = e.Reason
	}
	return e.Code, message
}

// isGatewayFailure decides which errors count against the circuit breaker.
// Rejections of our own request say nothing about PayTR's health.
func isGatewayFailure(err error) bool {
	var pe *pkgerrors.PaymentError
	if errors.As(err, &pe) {
		return pe.Category == pkgerrors.CategorySystemError || pe.Category == pkgerrors.CategoryNetworkError
	}
	return true
}
