// Package server implements the local report server, a small read-only HTTP
// surface over the snapshot store.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/starlens/starlens/internal/config"
	"github.com/starlens/starlens/internal/server/handlers"
	servermw "github.com/starlens/starlens/internal/server/middleware"
)

// Server is the HTTP report server.
type Server struct {
	router *chi.Mux
	server *http.Server
	cfg    config.ServerConfig
	logger *zap.Logger
}

// New assembles the router and middleware stack. The store may be any
// implementation of handlers.SnapshotStore.
func New(cfg config.ServerConfig, st handlers.SnapshotStore, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(servermw.RequestID)
	r.Use(servermw.Logging(logger))
	r.Use(servermw.Recovery(logger))

	snapshots := &handlers.Snapshots{Store: st}

	r.Get("/healthz", handlers.Health)
	r.Get("/version", handlers.Version)
	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshots", snapshots.List)
		r.Get("/snapshots/{id}", snapshots.Get)
	})

	return &Server{
		router: r,
		cfg:    cfg,
		logger: logger,
	}
}

// Handler exposes the assembled router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the server and blocks until the context is canceled or the
// listener fails. On cancellation it drains in-flight requests for up to
// the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("report server listening", zap.String("addr", addr))
		errc <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("report server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("report server shutting down")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("report server shutdown: %w", err)
	}
	return nil
}
