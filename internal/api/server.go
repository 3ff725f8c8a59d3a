// Package api provides the HTTP server hosting the srpgate authentication
// endpoints.
//
//nolint:revive // "api" is a clear and appropriate package name
package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/srpgate/srpgate/internal/config"
	"github.com/srpgate/srpgate/internal/logging"
)

// Server wraps http.Server with the service's TLS and shutdown policy.
type Server struct {
	httpServer *http.Server
	logger     *logging.Logger
	useTLS     bool
}

// New creates an API server bound to the configured address. TLS is enabled
// when the config carries a certificate pair; otherwise the server speaks
// plain HTTP and expects a terminating proxy in front.
func New(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	mux := http.NewServeMux()

	server := &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Service.ListenAddress, cfg.Service.Port),
			Handler:           mux,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}

	if cfg.TLS.Cert != "" {
		cert, err := tls.LoadX509KeyPair(cfg.TLS.Cert, cfg.TLS.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
		}
		server.httpServer.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
		server.useTLS = true
	}

	return server, nil
}

// Start serves requests until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting server", map[string]any{
		"address": s.httpServer.Addr,
		"tls":     s.useTLS,
	})

	errChan := make(chan error, 1)
	go func() {
		var err error
		if s.useTLS {
			// Certificates already live in TLSConfig.
			err = s.httpServer.ListenAndServeTLS("", "")
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// RegisterRoute registers a handler for an HTTP pattern.
func (s *Server) RegisterRoute(pattern string, handler http.Handler) {
	if mux, ok := s.httpServer.Handler.(*http.ServeMux); ok {
		mux.Handle(pattern, handler)
	}
}

// RegisterRouteFunc registers a handler function for an HTTP pattern.
func (s *Server) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	if mux, ok := s.httpServer.Handler.(*http.ServeMux); ok {
		mux.HandleFunc(pattern, handler)
	}
}
