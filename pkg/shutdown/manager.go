package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	shutdownDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "processor_shutdown_duration_seconds",
		Help:    "Total time taken to shutdown gracefully",
		Buckets: []float64{1, 5, 10, 15, 20, 25, 30},
	})

	componentShutdownDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "processor_component_shutdown_duration_seconds",
		Help:    "Time taken to shutdown individual components",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 15, 20, 25, 30},
	}, []string{"component"})

	shutdownErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "processor_shutdown_errors_total",
		Help: "Total number of shutdown errors by component",
	}, []string{"component"})
)

// ShutdownFunc represents a function that shuts down a component
type ShutdownFunc func(context.Context) error

// Component represents a registered shutdown component
type Component struct {
	Name         string
	ShutdownFunc ShutdownFunc
}

// Manager coordinates graceful shutdown of the processor's servers and clients.
// Components shut down one at a time in reverse registration order, so
// register the database and tracer before the servers that use them.
type Manager struct {
	logger     *zap.Logger
	components []Component
	mu         sync.Mutex
	timeout    time.Duration
	once       sync.Once
	err        error
}

// NewManager creates a new shutdown manager
func NewManager(logger *zap.Logger, timeout time.Duration) *Manager {
	return &Manager{
		logger:  logger,
		timeout: timeout,
	}
}

// Register adds a shutdown function to be called during graceful shutdown
func (sm *Manager) Register(name string, fn ShutdownFunc) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.components = append(sm.components, Component{Name: name, ShutdownFunc: fn})

	sm.logger.Debug("Registered shutdown component",
		zap.String("component", name),
		zap.Int("registration_order", len(sm.components)),
	)
}

// WaitForShutdown blocks until SIGINT, SIGTERM or ctx cancellation, then shuts
// every component down
func (sm *Manager) WaitForShutdown(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	sm.logger.Info("Received shutdown signal, initiating graceful shutdown",
		zap.Duration("timeout", sm.timeout),
	)
	return sm.Shutdown()
}

// Shutdown runs every registered component's shutdown once. Later calls
// return the first result.
func (sm *Manager) Shutdown() error {
	sm.once.Do(func() {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), sm.timeout)
		defer cancel()

		sm.err = sm.shutdownComponents(ctx)

		elapsed := time.Since(start)
		shutdownDuration.Observe(elapsed.Seconds())
		if sm.err != nil {
			sm.logger.Error("Graceful shutdown completed with errors",
				zap.Error(sm.err),
				zap.Duration("elapsed", elapsed),
			)
			return
		}
		sm.logger.Info("Graceful shutdown completed successfully",
			zap.Duration("elapsed", elapsed),
		)
	})
	return sm.err
}

func (sm *Manager) shutdownComponents(ctx context.Context) error {
	sm.mu.Lock()
	components := make([]Component, len(sm.components))
	copy(components, sm.components)
	sm.mu.Unlock()

	var errs []error
	for i := len(components) - 1; i >= 0; i-- {
		comp := components[i]

		if ctx.Err() != nil {
			sm.logger.Warn("Shutdown timeout exceeded, skipping component",
				zap.String("component", comp.Name),
			)
			errs = append(errs, fmt.Errorf("%s: %w", comp.Name, ctx.Err()))
			continue
		}

		start := time.Now()
		err := comp.ShutdownFunc(ctx)
		componentShutdownDuration.WithLabelValues(comp.Name).Observe(time.Since(start).Seconds())

		if err != nil {
			shutdownErrors.WithLabelValues(comp.Name).Inc()
			sm.logger.Error("Component shutdown failed",
				zap.String("component", comp.Name),
				zap.Error(err),
				zap.Duration("elapsed", time.Since(start)),
			)
			errs = append(errs, fmt.Errorf("%s: %w", comp.Name, err))
			continue
		}

		sm.logger.Info("Component shut down",
			zap.String("component", comp.Name),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	return errors.Join(errs...)
}

// RegisterHTTPServer is a convenience method for registering HTTP servers
func (sm *Manager) RegisterHTTPServer(name string, server interface{ Shutdown(context.Context) error }) {
	sm.Register(name, server.Shutdown)
}

// RegisterNoErr is a convenience method for shutdown functions that don't return errors
func (sm *Manager) RegisterNoErr(name string, fn func()) {
	sm.Register(name, func(ctx context.Context) error {
		fn()
		return nil
	})
}

// RegisterGRPCServer stops a gRPC server gracefully, forcing it when ctx ends
// first
func (sm *Manager) RegisterGRPCServer(name string, server interface {
	GracefulStop()
	Stop()
}) {
	sm.Register(name, func(ctx context.Context) error {
		done := make(chan struct{})
		go func() {
			server.GracefulStop()
			close(done)
		}()

		select {
		case <-done:
			return nil
		case <-ctx.Done():
			server.Stop()
			return fmt.Errorf("forced stop: %w", ctx.Err())
		}
	})
}
