package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/kevin07696/paytr-processor/internal/api/contract"
	"github.com/kevin07696/paytr-processor/internal/domain"
	"github.com/kevin07696/paytr-processor/internal/domain/ports"
)

// Handler implements the gRPC PaymentProcessor service
type Handler struct {
	processor ports.PaymentProcessor
	monitor   *contract.Monitor
	logger    ports.Logger
}

var _ PaymentProcessorServer = (*Handler)(nil)

// NewHandler creates a new payment processor gRPC handler
func NewHandler(processor ports.PaymentProcessor, monitor *contract.Monitor, logger ports.Logger) *Handler {
	return &Handler{
		processor: processor,
		monitor:   monitor,
		logger:    logger,
	}
}

func (h *Handler) Initiate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.invoke(ctx, "initiate", req)
}

func (h *Handler) Authorize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.invoke(ctx, "authorize", req)
}

func (h *Handler) Update(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.invoke(ctx, "update", req)
}

func (h *Handler) UpdateData(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.invoke(ctx, "update-data", req)
}

func (h *Handler) Retrieve(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.invoke(ctx, "retrieve", req)
}

func (h *Handler) Capture(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.invoke(ctx, "capture", req)
}

func (h *Handler) Refund(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.invoke(ctx, "refund", req)
}

func (h *Handler) Cancel(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.invoke(ctx, "cancel", req)
}

func (h *Handler) Delete(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.invoke(ctx, "delete", req)
}

func (h *Handler) GetStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.invoke(ctx, "status", req)
}

func (h *Handler) CreateToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.invoke(ctx, "token", req)
}

func (h *Handler) invoke(ctx context.Context, op string, req *structpb.Struct) (*structpb.Struct, error) {
	body, err := protojson.Marshal(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("invalid request: %v", err))
	}

	violations, err := h.monitor.Validate(op, body)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if len(violations) > 0 {
		h.logger.Warn("gRPC processor request rejected",
			ports.String("operation", op),
			ports.Int("violations", len(violations)))
		pe := domain.NewProcessorError(domain.ErrorCodeValidationFailed, "request body failed validation").WithDetail(violations)
		return nil, toStatus(nil, pe)
	}

	result, err := contract.Dispatch(ctx, h.processor, op, body)
	if err != nil {
		return nil, toStatus(result, err)
	}

	out, err := toStruct(result)
	if err != nil {
		h.logger.Error("Failed to encode gRPC response",
			ports.String("operation", op),
			ports.Err(err))
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}

// toStatus converts a processor failure into a gRPC status whose details
// carry the normalized error body
func toStatus(result any, err error) error {
	body := contract.ErrorBody(result, err)
	message, _ := body["error"].(string)

	st := status.New(CodeForError(err), message)
	if detail, convErr := toStruct(body); convErr == nil {
		if withDetail, detailErr := st.WithDetails(detail); detailErr == nil {
			st = withDetail
		}
	}
	return st.Err()
}

// CodeForError maps a processor failure to a gRPC status code
func CodeForError(err error) codes.Code {
	switch {
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	}

	var pe *domain.ProcessorError
	if !errors.As(err, &pe) {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return codes.InvalidArgument
		}
		return codes.Internal
	}

	switch pe.Code {
	case domain.ErrorCodeValidationFailed, domain.ErrorCodeValidationMissingField:
		return codes.InvalidArgument
	case domain.ErrorCodeSessionNotFound:
		return codes.NotFound
	case domain.ErrorCodeSessionStoreUnavailable, domain.ErrorCodeCaptureFailed, domain.ErrorCodeRefundFailed:
		return codes.FailedPrecondition
	case domain.ErrorCodeGatewayError, domain.ErrorCodeGatewayNetwork, domain.ErrorCodeGatewayCircuit:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if string(raw) == "null" {
		return out, nil
	}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}
