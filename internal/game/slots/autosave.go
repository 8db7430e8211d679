package slots

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultAutoSaveInterval is used when no interval is configured.
const DefaultAutoSaveInterval = 5 * time.Minute

// Snapshotter supplies the document to auto-save. ok is false while no game
// is in progress, in which case nothing is written.
type Snapshotter interface {
	AutoSaveSnapshot() (doc any, ok bool)
}

// AutoSaver periodically writes a Snapshotter's document to the auto-save
// slot. It satisfies server.Service.
type AutoSaver struct {
	manager  *Manager
	source   Snapshotter
	interval time.Duration
	logger   *zap.Logger

	stopOnce sync.Once
	done     chan struct{}
}

// NewAutoSaver creates an AutoSaver.
//
// Precondition: manager, source and logger must be non-nil. interval <= 0
// uses DefaultAutoSaveInterval.
func NewAutoSaver(manager *Manager, source Snapshotter, interval time.Duration, logger *zap.Logger) *AutoSaver {
	if interval <= 0 {
		interval = DefaultAutoSaveInterval
	}
	return &AutoSaver{
		manager:  manager,
		source:   source,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Serve blocks, saving on every tick until Shutdown is called.
func (a *AutoSaver) Serve() error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.Tick(context.Background())
		case <-a.done:
			return nil
		}
	}
}

// Shutdown ends Serve after a final save bounded by ctx.
func (a *AutoSaver) Shutdown(ctx context.Context) error {
	a.stopOnce.Do(func() {
		a.Tick(ctx)
		close(a.done)
	})
	return nil
}

// Tick performs one auto-save and reports whether a snapshot was written.
func (a *AutoSaver) Tick(ctx context.Context) bool {
	doc, ok := a.source.AutoSaveSnapshot()
	if !ok {
		return false
	}
	if !a.manager.AutoSave(ctx, doc) {
		return false
	}
	a.logger.Debug("auto-saved")
	return true
}
