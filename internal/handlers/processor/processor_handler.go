package processor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/kevin07696/paytr-processor/internal/api/contract"
	"github.com/kevin07696/paytr-processor/internal/domain"
	"github.com/kevin07696/paytr-processor/internal/domain/ports"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Handler exposes the payment processor as JSON over HTTP
type Handler struct {
	processor ports.PaymentProcessor
	monitor   *contract.Monitor
	logger    *zap.Logger
}

// NewHandler creates a new processor HTTP handler
func NewHandler(processor ports.PaymentProcessor, monitor *contract.Monitor, logger *zap.Logger) *Handler {
	return &Handler{
		processor: processor,
		monitor:   monitor,
		logger:    logger,
	}
}

// Routes returns a mux serving POST /processor/{operation}
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	for _, op := range h.monitor.Operations() {
		mux.HandleFunc("POST /processor/"+op, h.handle(op))
	}
	return mux
}

// Healthz reports liveness of the HTTP surface
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) handle(op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			h.writeValidationError(w, op, "request body could not be read", []string{err.Error()})
			return
		}

		violations, err := h.monitor.Validate(op, body)
		if err != nil {
			h.writeValidationError(w, op, "request body is not valid JSON", []string{err.Error()})
			return
		}
		if len(violations) > 0 {
			h.writeValidationError(w, op, "request body failed validation", violations)
			return
		}

		result, err := contract.Dispatch(r.Context(), h.processor, op, body)
		if err != nil {
			status := StatusForError(err)
			if status >= http.StatusInternalServerError {
				h.logger.Error("Processor request failed",
					zap.String("operation", op),
					zap.String("code", string(domain.WrapError(domain.ErrorCodeUnknown, err).Code)),
					zap.Error(err),
				)
			}
			h.writeJSON(w, status, contract.ErrorBody(result, err))
			return
		}
		h.writeJSON(w, http.StatusOK, result)
	}
}

func (h *Handler) writeValidationError(w http.ResponseWriter, op, message string, violations []string) {
	h.logger.Warn("Rejected processor request",
		zap.String("operation", op),
		zap.Strings("violations", violations),
	)
	pe := domain.NewProcessorError(domain.ErrorCodeValidationFailed, message).WithDetail(violations)
	h.writeJSON(w, http.StatusBadRequest, pe)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// StatusForError maps a processor failure to an HTTP status
func StatusForError(err error) int {
	var pe *domain.ProcessorError
	if !errors.As(err, &pe) {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	}

	switch pe.Code {
	case domain.ErrorCodeValidationFailed, domain.ErrorCodeValidationMissingField:
		return http.StatusBadRequest
	case domain.ErrorCodeSessionNotFound:
		return http.StatusNotFound
	case domain.ErrorCodeSessionStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
