// Package server provides the HTTP API for kotae.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/corpus"
	"github.com/hyperjump/kotae/internal/engine"
	"github.com/hyperjump/kotae/internal/metrics"
	"github.com/hyperjump/kotae/internal/storage"
)

// Server is the HTTP server for the kotae API.
type Server struct {
	engine  *engine.Engine
	manager *corpus.Manager
	store   *storage.ChunkStore
	config  *config.Config
	metrics *metrics.Metrics
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	eng *engine.Engine,
	manager *corpus.Manager,
	store *storage.ChunkStore,
	cfg *config.Config,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Server {
	return &Server{
		engine:  eng,
		manager: manager,
		store:   store,
		config:  cfg,
		metrics: m,
		logger:  logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/answer", s.handleAnswer)
	r.Post("/api/v1/rank", s.handleRank)
	r.Post("/api/v1/rebuild", s.handleRebuild)
	r.Get("/api/v1/chunks", s.handleListChunks)
	r.Get("/api/v1/chunks/{id}", s.handleGetChunk)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
