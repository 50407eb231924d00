package paytr

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	pkgerrors "github.com/kevin07696/paytr-processor/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(cfg CircuitBreakerConfig) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(cfg)
	cb.now = clock.Now
	cb.lastStateChangeTime = clock.Now()
	return cb, clock
}

func fail(err error) func(context.Context) error {
	return func(context.Context) error { return err }
}

func succeed(context.Context) error { return nil }

func TestCircuitBreaker_DefaultConfig(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig()
	assert.Equal(t, uint32(5), cfg.MaxFailures)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, uint32(1), cfg.MaxRequestsHalfOpen)
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	var transitions []string
	cb, _ := newTestBreaker(CircuitBreakerConfig{
		MaxFailures:         3,
		Timeout:             time.Second,
		MaxRequestsHalfOpen: 1,
		OnStateChange: func(from, to CircuitState) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})
	boom := errors.New("boom")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(ctx, fail(boom)), boom)
	}

	assert.Equal(t, StateOpen, cb.State())
	assert.Equal(t, []string{"closed->open"}, transitions)

	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{MaxFailures: 2, Timeout: time.Second, MaxRequestsHalfOpen: 1})
	ctx := context.Background()

	_ = cb.Execute(ctx, fail(errors.New("x")))
	require.Equal(t, uint32(1), cb.Failures())

	require.NoError(t, cb.Execute(ctx, succeed))
	assert.Equal(t, uint32(0), cb.Failures())
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb, clock := newTestBreaker(CircuitBreakerConfig{MaxFailures: 1, Timeout: time.Second, MaxRequestsHalfOpen: 1})
	ctx := context.Background()

	_ = cb.Execute(ctx, fail(errors.New("down")))
	require.Equal(t, StateOpen, cb.State())

	clock.Advance(2 * time.Second)
	require.NoError(t, cb.Execute(ctx, succeed))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb, clock := newTestBreaker(CircuitBreakerConfig{MaxFailures: 1, Timeout: time.Second, MaxRequestsHalfOpen: 1})
	ctx := context.Background()

	_ = cb.Execute(ctx, fail(errors.New("down")))
	clock.Advance(2 * time.Second)

	_ = cb.Execute(ctx, fail(errors.New("still down")))
	assert.Equal(t, StateOpen, cb.State())
	assert.ErrorIs(t, cb.Execute(ctx, succeed), ErrCircuitOpen)
}

func TestCircuitBreaker_HalfOpenAllowsSingleProbe(t *testing.T) {
	cb, clock := newTestBreaker(CircuitBreakerConfig{MaxFailures: 1, Timeout: time.Second, MaxRequestsHalfOpen: 1})
	ctx := context.Background()

	_ = cb.Execute(ctx, fail(errors.New("down")))
	clock.Advance(2 * time.Second)

	err := cb.Execute(ctx, func(ctx context.Context) error {
		assert.Equal(t, StateHalfOpen, cb.State())
		assert.ErrorIs(t, cb.Execute(ctx, succeed), ErrTooManyRequests)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_IgnoresClientErrors(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{
		MaxFailures:         1,
		Timeout:             time.Second,
		MaxRequestsHalfOpen: 1,
		IsFailure:           isGatewayFailure,
	})
	ctx := context.Background()

	rejected := pkgerrors.FromHTTPStatus(http.StatusBadRequest, "INVALID_AMOUNT", "invalid amount")
	_ = cb.Execute(ctx, fail(rejected))
	assert.Equal(t, StateClosed, cb.State())

	_ = cb.Execute(ctx, fail(pkgerrors.FromHTTPStatus(http.StatusBadGateway, "", "")))
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_IgnoresCallerCancellation(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{MaxFailures: 1, Timeout: time.Second, MaxRequestsHalfOpen: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cb.Execute(ctx, func(ctx context.Context) error { return ctx.Err() })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{MaxFailures: 1, Timeout: time.Hour, MaxRequestsHalfOpen: 1})
	_ = cb.Execute(context.Background(), fail(errors.New("down")))
	require.Equal(t, StateOpen, cb.State())

	cb.Reset()
	assert.Equal(t, StateClosed, cb.State())
	assert.NoError(t, cb.Execute(context.Background(), succeed))
}
