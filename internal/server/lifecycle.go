// Package server runs the API's long-lived listeners and stops them in
// reverse order on a signal, a cancelled context or the first failure.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running listener.
type Service interface {
	// Serve blocks until the service stops. A clean stop returns nil.
	Serve() error
	// Shutdown stops the service, waiting for in-flight work until ctx ends.
	Shutdown(ctx context.Context) error
}

// FuncService adapts a serve/shutdown pair into a Service.
type FuncService struct {
	ServeFn    func() error
	ShutdownFn func(ctx context.Context) error
}

// Serve calls ServeFn.
func (f *FuncService) Serve() error { return f.ServeFn() }

// Shutdown calls ShutdownFn when set.
func (f *FuncService) Shutdown(ctx context.Context) error {
	if f.ShutdownFn == nil {
		return nil
	}
	return f.ShutdownFn(ctx)
}

type namedService struct {
	name    string
	service Service
}

// Lifecycle starts services together and stops them in reverse order.
type Lifecycle struct {
	logger          *zap.Logger
	shutdownTimeout time.Duration
	signals         []os.Signal

	mu       sync.Mutex
	services []namedService
}

// NewLifecycle creates a Lifecycle that allows each service shutdownTimeout
// to drain.
//
// Precondition: logger must be non-nil; shutdownTimeout must be positive.
func NewLifecycle(logger *zap.Logger, shutdownTimeout time.Duration) *Lifecycle {
	return &Lifecycle{
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
		signals:         []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
}

// Add registers svc under name. Services are stopped in reverse order of Add.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Run serves every registered service and blocks until SIGINT, SIGTERM,
// ctx cancellation or a service failure.
//
// Postcondition: every service has been shut down. The first service
// failure is returned; a signal or cancellation returns nil.
func (l *Lifecycle) Run(ctx context.Context) error {
	l.mu.Lock()
	services := append([]namedService(nil), l.services...)
	l.mu.Unlock()

	start := time.Now()
	ctx, stop := signal.NotifyContext(ctx, l.signals...)
	defer stop()

	failed := make(chan error, len(services))
	var wg sync.WaitGroup
	for _, ns := range services {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.logger.Info("starting service", zap.String("service", ns.name))
			if err := ns.service.Serve(); err != nil {
				l.logger.Error("service failed", zap.String("service", ns.name), zap.Error(err))
				failed <- fmt.Errorf("service %s: %w", ns.name, err)
			}
		}()
	}

	var runErr error
	select {
	case runErr = <-failed:
		l.logger.Error("service error, shutting down", zap.Error(runErr))
	case <-ctx.Done():
		l.logger.Info("shutting down", zap.NamedError("cause", context.Cause(ctx)))
	}

	shutdownErr := l.shutdown(services)
	wg.Wait()
	l.logger.Info("shutdown complete", zap.Duration("uptime", time.Since(start)))
	return errors.Join(runErr, shutdownErr)
}

func (l *Lifecycle) shutdown(services []namedService) error {
	var errs []error
	for i := len(services) - 1; i >= 0; i-- {
		ns := services[i]
		ctx, cancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
		began := time.Now()
		if err := ns.service.Shutdown(ctx); err != nil {
			l.logger.Warn("service shutdown failed", zap.String("service", ns.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("stopping %s: %w", ns.name, err))
		} else {
			l.logger.Info("service stopped",
				zap.String("service", ns.name),
				zap.Duration("elapsed", time.Since(began)),
			)
		}
		cancel()
	}
	return errors.Join(errs...)
}
