// Package web serves the read-only run status endpoint while a match runs.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wkg-uslp/internal/web/handlers"
	"github.com/wkg-uslp/internal/web/middleware"
)

// Server represents the status server
type Server struct {
	config     *Config
	httpServer *http.Server
	router     *mux.Router
	logger     *slog.Logger
}

// NewServer creates a status server reporting progress
func NewServer(config *Config, progress handlers.ProgressSource, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	server := &Server{
		config: config,
		logger: logger,
	}
	server.setupRoutes(progress)

	server.httpServer = &http.Server{
		Addr:         config.Addr,
		Handler:      server.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(progress handlers.ProgressSource) {
	s.router = mux.NewRouter()
	statusHandler := &handlers.StatusHandler{Progress: progress, Logger: s.logger}

	s.router.HandleFunc("/healthz", statusHandler.Health).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", statusHandler.GetStatus).Methods("GET")
	api.Use(middleware.Authentication(s.config.Token))

	s.router.Use(middleware.RequestLogging(s.logger))
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Status server listening", slog.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("status server shutdown: %w", err)
	}
	s.logger.Debug("Status server stopped")
	return nil
}
