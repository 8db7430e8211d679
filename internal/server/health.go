package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/cory-johannsen/dungeon/internal/config"
)

// HealthServiceName is the service name reported alongside the overall status.
const HealthServiceName = "dungeon.v1.API"

// Pinger reports backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthService exposes the standard gRPC health protocol and keeps it in
// step with periodic store probes.
type HealthService struct {
	grpcServer *grpc.Server
	health     *health.Server
	lis        net.Listener
	store      Pinger
	interval   time.Duration
	logger     *zap.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewHealthService binds cfg.Addr() and starts in NOT_SERVING until the
// first probe succeeds.
//
// Precondition: cfg.GRPCPort must be non-zero; store and logger non-nil.
func NewHealthService(cfg config.HealthConfig, store Pinger, logger *zap.Logger) (*HealthService, error) {
	lis, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", cfg.Addr(), err)
	}
	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, hs)

	s := &HealthService{
		grpcServer: grpcServer,
		health:     hs,
		lis:        lis,
		store:      store,
		interval:   cfg.ProbeInterval,
		logger:     logger,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	s.set(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	return s, nil
}

// Addr is the bound listen address.
func (s *HealthService) Addr() string { return s.lis.Addr().String() }

// Probe pings the store once and publishes the result.
func (s *HealthService) Probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("store probe failed", zap.Error(err))
		s.set(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		return
	}
	s.set(grpc_health_v1.HealthCheckResponse_SERVING)
}

func (s *HealthService) set(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(HealthServiceName, status)
}

func (s *HealthService) probeLoop() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.Probe(context.Background())
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.Probe(context.Background())
		}
	}
}

// Serve runs the probe loop and the gRPC server until Shutdown.
func (s *HealthService) Serve() error {
	s.startOnce.Do(func() { go s.probeLoop() })
	if err := s.grpcServer.Serve(s.lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Shutdown reports NOT_SERVING to watchers, stops probing and stops the
// server, forcing it closed when ctx ends first.
func (s *HealthService) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.startOnce.Do(func() {
		close(s.done)
		_ = s.lis.Close()
	})
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		s.grpcServer.Stop()
	}
	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
