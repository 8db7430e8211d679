package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/cory-johannsen/dungeon/internal/config"
)

// HTTPService serves handler on a TCP listener.
type HTTPService struct {
	srv *http.Server
	lis net.Listener
}

// NewHTTPService binds cfg.Addr() immediately so Addr is known before Serve.
//
// Postcondition: returns a bound service or a non-nil error.
func NewHTTPService(cfg config.ServerConfig, handler http.Handler) (*HTTPService, error) {
	lis, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", cfg.Addr(), err)
	}
	return &HTTPService{
		srv: &http.Server{
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		lis: lis,
	}, nil
}

// Addr is the bound listen address.
func (h *HTTPService) Addr() string { return h.lis.Addr().String() }

// Serve blocks until Shutdown.
func (h *HTTPService) Serve() error {
	if err := h.srv.Serve(h.lis); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx ends.
func (h *HTTPService) Shutdown(ctx context.Context) error {
	return h.srv.Shutdown(ctx)
}
