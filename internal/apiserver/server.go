// Package apiserver exposes the agent over a small JSON HTTP API.
package apiserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"repolens/internal/history"
	"repolens/internal/tool"
)

// Service is what the server needs from the application.
type Service interface {
	// Ask answers query and returns the stored record. The error is
	// non-nil only when the record could not be persisted.
	Ask(ctx context.Context, query string) (*history.Record, error)
	Tools() []tool.Spec
	History(ctx context.Context, limit int) ([]history.Record, error)
	Lookup(ctx context.Context, id string) (*history.Record, error)
	Health(ctx context.Context) error
}

// Server is the repolens REST API server.
type Server struct {
	router  *mux.Router
	service Service
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a fully-wired Server ready to Start().
func NewServer(addr string, svc Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &Server{
		router:  mux.NewRouter(),
		service: svc,
		logger:  logger.Named("apiserver"),
	}
	srv.server = &http.Server{
		Addr:        addr,
		Handler:     srv.router,
		ReadTimeout: 15 * time.Second,
		// Answering a query spans two completions and several tool calls.
		WriteTimeout: 5 * time.Minute,
	}
	srv.registerRoutes()
	return srv
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening and serving HTTP requests. It blocks until the
// server is shut down or encounters a fatal error.
func (s *Server) Start() error {
	s.logger.Info("API server starting", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
