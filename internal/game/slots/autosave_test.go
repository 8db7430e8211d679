package slots_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/dungeon/internal/game/slots"
)

type fakeSource struct {
	started atomic.Bool
	calls   atomic.Int32
}

func (f *fakeSource) AutoSaveSnapshot() (any, bool) {
	f.calls.Add(1)
	if !f.started.Load() {
		return nil, false
	}
	return map[string]string{"screen": "game"}, true
}

func TestAutoSaver_TickSkipsWhenNotStarted(t *testing.T) {
	m := newManager(t, newMemStore())
	src := &fakeSource{}
	a := slots.NewAutoSaver(m, src, time.Hour, zaptest.NewLogger(t))

	assert.False(t, a.Tick(context.Background()))
	_, ok := m.LastAutoSave(context.Background())
	assert.False(t, ok)

	src.started.Store(true)
	assert.True(t, a.Tick(context.Background()))
	_, ok = m.LastAutoSave(context.Background())
	assert.True(t, ok)
}

func TestAutoSaver_RunsOnIntervalAndStops(t *testing.T) {
	m := newManager(t, newMemStore())
	src := &fakeSource{}
	src.started.Store(true)
	a := slots.NewAutoSaver(m, src, 10*time.Millisecond, zaptest.NewLogger(t))

	done := make(chan error, 1)
	go func() { done <- a.Serve() }()

	require.Eventually(t, func() bool { return src.calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, a.Shutdown(context.Background()))
	require.NoError(t, a.Shutdown(context.Background()))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("auto-saver did not stop")
	}
}
