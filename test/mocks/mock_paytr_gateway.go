package mocks

import (
	"context"

	"github.com/kevin07696/paytr-processor/internal/domain/models"
	"github.com/kevin07696/paytr-processor/internal/domain/ports"
	"github.com/stretchr/testify/mock"
)

// MockPayTRGateway is a testify mock of ports.PayTRGateway
type MockPayTRGateway struct {
	mock.Mock
}

var _ ports.PayTRGateway = (*MockPayTRGateway)(nil)

func (m *MockPayTRGateway) Initiate(ctx context.Context, req *ports.InitiateRequest) (ports.GatewayPayment, error) {
	args := m.Called(ctx, req)
	return payment(args.Get(0)), args.Error(1)
}

func (m *MockPayTRGateway) Authorize(ctx context.Context, id string) (ports.GatewayPayment, error) {
	args := m.Called(ctx, id)
	return payment(args.Get(0)), args.Error(1)
}

func (m *MockPayTRGateway) Update(ctx context.Context, id string, data map[string]any) (ports.GatewayPayment, error) {
	args := m.Called(ctx, id, data)
	return payment(args.Get(0)), args.Error(1)
}

func (m *MockPayTRGateway) Retrieve(ctx context.Context, id string) (ports.GatewayPayment, error) {
	args := m.Called(ctx, id)
	return payment(args.Get(0)), args.Error(1)
}

func (m *MockPayTRGateway) Cancel(ctx context.Context, id string) (ports.GatewayPayment, error) {
	args := m.Called(ctx, id)
	return payment(args.Get(0)), args.Error(1)
}

func (m *MockPayTRGateway) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPayTRGateway) GetStatus(ctx context.Context, id string) (any, error) {
	args := m.Called(ctx, id)
	return args.Get(0), args.Error(1)
}

func (m *MockPayTRGateway) Capture(ctx context.Context, req *ports.CaptureRequest) (*ports.CaptureResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.CaptureResponse), args.Error(1)
}

func (m *MockPayTRGateway) Refund(ctx context.Context, req *ports.RefundRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockPayTRGateway) GetToken(ctx context.Context, req *ports.TokenRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func payment(v interface{}) ports.GatewayPayment {
	if v == nil {
		return nil
	}
	return v.(ports.GatewayPayment)
}

// MockSessionStore is a testify mock of ports.SessionStore
type MockSessionStore struct {
	mock.Mock
}

var _ ports.SessionStore = (*MockSessionStore)(nil)

func (m *MockSessionStore) RetrieveSession(ctx context.Context, sessionID string) (*models.PaymentSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentSession), args.Error(1)
}
