package simulator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/louisbranch/cypress-simulator/internal/platform/timeouts"
)

// Server hosts the simulator HTTP surface and lifecycle.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	service    *service
}

// NewServer validates config and constructs a simulator server.
func NewServer(_ context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	svc, err := newService(cfg)
	if err != nil {
		return nil, fmt.Errorf("compose simulator service: %w", err)
	}
	return &Server{
		httpAddr: httpAddr,
		service:  svc,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           svc.handler(),
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
	}, nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.httpAddr
}

// ListenAndServe serves HTTP traffic until context cancellation or server stop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("simulator server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()
	go s.service.runBackground(bgCtx)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown simulator http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve simulator http: %w", err)
	}
}

// Close closes open server resources. The storage passed in Config is owned
// by the caller.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.service != nil {
		s.service.close()
	}
}
