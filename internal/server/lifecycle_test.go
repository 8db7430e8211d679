package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type blockingService struct {
	started atomic.Bool
	stopped atomic.Bool
	once    sync.Once
	quit    chan struct{}
	order   *[]string
	mu      *sync.Mutex
	name    string
}

func newBlockingService(name string, order *[]string, mu *sync.Mutex) *blockingService {
	return &blockingService{quit: make(chan struct{}), order: order, mu: mu, name: name}
}

func (b *blockingService) Serve() error {
	b.started.Store(true)
	<-b.quit
	return nil
}

func (b *blockingService) Shutdown(context.Context) error {
	b.stopped.Store(true)
	if b.order != nil {
		b.mu.Lock()
		*b.order = append(*b.order, b.name)
		b.mu.Unlock()
	}
	b.once.Do(func() { close(b.quit) })
	return nil
}

func TestLifecycle_CancelStopsInReverseOrder(t *testing.T) {
	var order []string
	var mu sync.Mutex
	lc := NewLifecycle(zaptest.NewLogger(t), time.Second)
	first := newBlockingService("first", &order, &mu)
	second := newBlockingService("second", &order, &mu)
	lc.Add("first", first)
	lc.Add("second", second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	require.Eventually(t, func() bool { return first.started.Load() && second.started.Load() },
		2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestLifecycle_ServiceFailureIsReturned(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t), time.Second)
	peer := newBlockingService("peer", nil, nil)
	boom := errors.New("port in use")
	lc.Add("peer", peer)
	lc.Add("broken", &FuncService{ServeFn: func() error { return boom }})

	done := make(chan error, 1)
	go func() { done <- lc.Run(context.Background()) }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "service broken")
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not stop after a failure")
	}
	assert.True(t, peer.stopped.Load())
}

func TestLifecycle_ShutdownErrorsAreJoined(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t), time.Second)
	quit := make(chan struct{})
	stuck := errors.New("drain timed out")
	lc.Add("svc", &FuncService{
		ServeFn: func() error { <-quit; return nil },
		ShutdownFn: func(context.Context) error {
			close(quit)
			return stuck
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := lc.Run(ctx)
	assert.ErrorIs(t, err, stuck)
}

func TestFuncService_NilShutdown(t *testing.T) {
	f := &FuncService{ServeFn: func() error { return nil }}
	assert.NoError(t, f.Shutdown(context.Background()))
}
