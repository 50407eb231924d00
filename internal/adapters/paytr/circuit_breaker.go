package paytr

import (
	"context"
	"errors"
	"sync"
	"time"
)

// CircuitState represents the current state of the circuit breaker
type CircuitState int

const (
	// StateClosed - requests flow to PayTR normally
	StateClosed CircuitState = iota
	// StateOpen - requests fail fast without reaching PayTR
	StateOpen
	// StateHalfOpen - a probe request is checking whether PayTR recovered
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var (
	// ErrCircuitOpen is returned when circuit breaker is open
	ErrCircuitOpen = errors.New("paytr circuit breaker is open")
	// ErrTooManyRequests is returned when the half-open probe slot is taken
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// CircuitBreakerConfig configures circuit breaker behavior
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures before opening circuit
	MaxFailures uint32
	// Timeout is how long to wait before transitioning from open to half-open
	Timeout time.Duration
	// MaxRequestsHalfOpen is max concurrent requests allowed in half-open state
	MaxRequestsHalfOpen uint32
	// IsFailure decides which errors count against the gateway. Nil counts every error.
	IsFailure func(err error) bool
	// OnStateChange is called with the lock held; it must not call back into the breaker.
	OnStateChange func(from, to CircuitState)
}

// DefaultCircuitBreakerConfig returns 5 failures / 30s / 1 probe
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxFailures:         5,
		Timeout:             30 * time.Second,
		MaxRequestsHalfOpen: 1,
	}
}

// CircuitBreaker guards calls to the PayTR API
type CircuitBreaker struct {
	mu                  sync.RWMutex
	state               CircuitState
	failures            uint32
	requestsHalfOpen    uint32
	lastStateChangeTime time.Time
	config              CircuitBreakerConfig
	now                 func() time.Time
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	cb := &CircuitBreaker{
		state:  StateClosed,
		config: config,
		now:    time.Now,
	}
	cb.lastStateChangeTime = cb.now()
	return cb
}

// Execute runs fn if the circuit allows it and records the outcome.
// A cancelled caller context is not counted as a gateway failure.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := cb.acquire(); err != nil {
		return err
	}

	err := fn(ctx)

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == StateHalfOpen && cb.requestsHalfOpen > 0 {
		cb.requestsHalfOpen--
	}

	switch {
	case err == nil:
		cb.onSuccess()
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		// caller gave up; says nothing about PayTR health
	case cb.config.IsFailure == nil || cb.config.IsFailure(err):
		cb.onFailure()
	default:
		cb.onSuccess()
	}
	return err
}

func (cb *CircuitBreaker) acquire() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil

	case StateOpen:
		if cb.now().Sub(cb.lastStateChangeTime) < cb.config.Timeout {
			return ErrCircuitOpen
		}
		cb.setState(StateHalfOpen)
		cb.requestsHalfOpen++
		return nil

	case StateHalfOpen:
		if cb.requestsHalfOpen >= cb.config.MaxRequestsHalfOpen {
			return ErrTooManyRequests
		}
		cb.requestsHalfOpen++
		return nil
	}
	return ErrCircuitOpen
}

func (cb *CircuitBreaker) onFailure() {
	cb.failures++

	switch cb.state {
	case StateClosed:
		if cb.failures >= cb.config.MaxFailures {
			cb.setState(StateOpen)
		}
	case StateHalfOpen:
		cb.setState(StateOpen)
	}
}

func (cb *CircuitBreaker) onSuccess() {
	switch cb.state {
	case StateHalfOpen:
		cb.setState(StateClosed)
	case StateClosed:
		cb.failures = 0
	}
}

func (cb *CircuitBreaker) setState(newState CircuitState) {
	if cb.state == newState {
		return
	}

	prev := cb.state
	cb.state = newState
	cb.lastStateChangeTime = cb.now()
	cb.failures = 0
	cb.requestsHalfOpen = 0

	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(prev, newState)
	}
}

// State returns the current circuit state (thread-safe)
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// Failures returns the consecutive failure count (thread-safe)
func (cb *CircuitBreaker) Failures() uint32 {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.failures
}

// Reset closes the circuit and clears counters
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.setState(StateClosed)
	cb.failures = 0
}
