package middleware

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

func newTestLimiter(t *testing.T, rps float64, burst int) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(rps, burst, zap.NewNop())
	t.Cleanup(rl.Shutdown)
	return rl
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := newTestLimiter(t, 0.001, 2)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/processor/capture", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:40000").Code)
	// A new source port is the same client
	assert.Equal(t, http.StatusOK, send("10.0.0.1:40001").Code)

	limited := send("10.0.0.1:40002")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Contains(t, limited.Body.String(), "RATE_LIMITED")
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, send("10.0.0.2:40000").Code)
}

func TestRateLimiter_UnaryServerInterceptor(t *testing.T) {
	rl := newTestLimiter(t, 0.001, 1)
	interceptor := rl.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/paytr.processor.v1.PaymentProcessor/Refund"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) { return "ok", nil }

	ctx := peer.NewContext(context.Background(), &peer.Peer{
		Addr: &net.TCPAddr{IP: net.ParseIP("192.168.1.7"), Port: 5000},
	})

	resp, err := interceptor(ctx, nil, info, handler)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)

	_, err = interceptor(ctx, nil, info, handler)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestRateLimiter_CleanupAndEviction(t *testing.T) {
	rl := newTestLimiter(t, 10, 10)
	rl.maxSize = 2

	rl.Allow("a")
	rl.Allow("b")
	rl.mu.Lock()
	rl.limiters["a"].lastAccess = time.Now().Add(-time.Minute)
	rl.mu.Unlock()
	rl.Allow("c")

	rl.mu.Lock()
	assert.Len(t, rl.limiters, 2)
	assert.NotContains(t, rl.limiters, "a")
	rl.mu.Unlock()

	removed := rl.cleanup(time.Now().Add(rl.cleanupInterval + time.Second))
	assert.Equal(t, 2, removed)
}

func TestRateLimiter_ShutdownTwice(t *testing.T) {
	rl := NewRateLimiter(1, 1, zap.NewNop())
	assert.NotPanics(t, func() {
		rl.Shutdown()
		rl.Shutdown()
	})
}

func TestClientIP(t *testing.T) {
	assert.Equal(t, "10.0.0.1", clientIP("10.0.0.1:8080"))
	assert.Equal(t, "::1", clientIP("[::1]:8080"))
	assert.Equal(t, "unix", clientIP("unix"))
}
