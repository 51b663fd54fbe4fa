// Package server exposes the prediction engine over HTTP: tire wear
// predictions, strategy comparisons, the pit stop optimizer, and the
// operational surfaces around them (health, status, metrics, pprof).
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/undercut/pitwall/internal/catalog"
	"github.com/undercut/pitwall/internal/config"
	"github.com/undercut/pitwall/internal/degradation"
	"github.com/undercut/pitwall/internal/race"
	"github.com/undercut/pitwall/internal/server/middleware"
	"github.com/undercut/pitwall/internal/storage"
	"github.com/undercut/pitwall/internal/strategy"
)

type Server struct {
	httpServer *http.Server
	catalog    *catalog.Catalog
	model      *degradation.Model
	evaluator  *strategy.Evaluator
	agent      *race.Agent
	store      *storage.Store
	config     *config.Config
	logger     *slog.Logger
	version    string
	started    time.Time
	authConfig *middleware.AuthConfig
	metrics    *metrics
}

func New(cfg *config.Config, cat *catalog.Catalog, model *degradation.Model, evaluator *strategy.Evaluator, agent *race.Agent, store *storage.Store, logger *slog.Logger, version string) *Server {
	authConfig := &middleware.AuthConfig{
		Enabled:  cfg.Auth.Enabled,
		User:     cfg.Auth.User,
		Password: cfg.Auth.Password,
	}

	s := &Server{
		catalog:    cat,
		model:      model,
		evaluator:  evaluator,
		agent:      agent,
		store:      store,
		config:     cfg,
		logger:     logger,
		version:    version,
		started:    time.Now(),
		authConfig: authConfig,
		metrics:    newMetrics(),
	}

	// Artifacts restored before startup count as served state
	if model.Trained() {
		s.metrics.modelTrained.Set(1)
	}
	s.metrics.agentEpisodes.Set(float64(agent.Status().Episodes))

	mux := s.setupRoutes()

	rateLimit := &middleware.RateLimitConfig{
		Enabled:           cfg.Server.RateLimit.Enabled,
		RequestsPerSecond: cfg.Server.RateLimit.RequestsPerSecond,
		Burst:             cfg.Server.RateLimit.Burst,
	}

	handler := middleware.Chain(
		mux,
		middleware.Recovery(logger),
		middleware.Logging(logger),
		middleware.SecurityHeaders(),
		middleware.RateLimit(rateLimit),
		middleware.MaxBody(0),
		middleware.Auth(authConfig, "/health", "/metrics"), // probes and scrapers skip auth
	)

	s.httpServer = &http.Server{
		Addr:        cfg.ListenAddr(),
		Handler:     handler,
		ReadTimeout: 10 * time.Second,
		// Training answers synchronously and can take minutes at default
		// volume, so writes get matching headroom.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// ReloadConfig reloads configuration that can be changed at runtime.
// Note: host/port changes require restart.
func (s *Server) ReloadConfig(cfg *config.Config) {
	s.logger.Info("reloading configuration")

	// Auth config pointer is shared with the middleware
	s.authConfig.Update(cfg.Auth.Enabled, cfg.Auth.User, cfg.Auth.Password)

	s.config = cfg

	s.logger.Info("configuration reloaded",
		"auth_enabled", cfg.Auth.Enabled,
	)
}

func (s *Server) Start() error {
	s.logger.Info("server starting",
		"addr", s.httpServer.Addr,
	)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
