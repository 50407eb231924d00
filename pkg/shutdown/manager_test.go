package shutdown

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestManager_ShutdownRunsInReverseOrder(t *testing.T) {
	sm := NewManager(zap.NewNop(), time.Second)

	var mu sync.Mutex
	var order []string
	record := func(name string) func() {
		return func() {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
		}
	}

	sm.RegisterNoErr("database", record("database"))
	sm.RegisterNoErr("grpc", record("grpc"))
	sm.RegisterNoErr("http", record("http"))

	require.NoError(t, sm.Shutdown())
	assert.Equal(t, []string{"http", "grpc", "database"}, order)
}

func TestManager_ShutdownJoinsErrorsAndRunsOnce(t *testing.T) {
	sm := NewManager(zap.NewNop(), time.Second)
	boom := errors.New("close failed")
	calls := 0

	sm.Register("pool", func(context.Context) error {
		calls++
		return boom
	})
	sm.RegisterNoErr("tracer", func() {})

	err := sm.Shutdown()
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "pool: close failed")

	assert.Equal(t, err, sm.Shutdown())
	assert.Equal(t, 1, calls)
}

func TestManager_TimeoutSkipsRemaining(t *testing.T) {
	sm := NewManager(zap.NewNop(), 20*time.Millisecond)
	skippedRan := false

	sm.RegisterNoErr("database", func() { skippedRan = true })
	sm.Register("slow server", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	err := sm.Shutdown()

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, skippedRan)
}

type fakeGRPCServer struct {
	block   chan struct{}
	stopped bool
}

func (s *fakeGRPCServer) GracefulStop() { <-s.block }
func (s *fakeGRPCServer) Stop() {
	s.stopped = true
	close(s.block)
}

func TestManager_RegisterGRPCServerForcesStop(t *testing.T) {
	sm := NewManager(zap.NewNop(), 20*time.Millisecond)
	server := &fakeGRPCServer{block: make(chan struct{})}
	sm.RegisterGRPCServer("grpc", server)

	err := sm.Shutdown()

	assert.ErrorContains(t, err, "forced stop")
	assert.True(t, server.stopped)
}

func TestManager_WaitForShutdownOnContextCancel(t *testing.T) {
	sm := NewManager(zap.NewNop(), time.Second)
	ran := false
	sm.RegisterNoErr("http", func() { ran = true })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, sm.WaitForShutdown(ctx))
	assert.True(t, ran)
}
