// Package handler provides HTTP handlers for all API endpoints.
// Handlers read through the store gateway and the query router; generated
// answers and roster views are cached per import run.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/albapepper/career-analyzer/internal/api/respond"
	"github.com/albapepper/career-analyzer/internal/cache"
	"github.com/albapepper/career-analyzer/internal/config"
	"github.com/albapepper/career-analyzer/internal/query"
	"github.com/albapepper/career-analyzer/internal/store"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	gw     store.Gateway
	router *query.Router
	cache  *cache.Cache
	cfg    *config.Config
	logger *slog.Logger

	mu      sync.Mutex
	seenRun string
}

// New creates a Handler with shared dependencies.
func New(gw store.Gateway, router *query.Router, c *cache.Cache, cfg *config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		gw:     gw,
		router: router,
		cache:  c,
		cfg:    cfg,
		logger: logger,
	}
}

// syncRun clears the cache when a newer import run has landed since the last
// request. Cached payloads are only valid for the roster they were built from.
func (h *Handler) syncRun(ctx context.Context) error {
	run, err := h.gw.LastImport(ctx)
	if err != nil {
		return err
	}
	id := "none"
	if run != nil {
		id = run.ID.String()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if id != h.seenRun {
		if h.seenRun != "" {
			h.logger.Info("New import detected, clearing cache", "run_id", id)
		}
		h.cache.Clear()
		h.seenRun = id
	}
	return nil
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status, and the configured generative provider.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":     "FC26 Career Analyzer API",
		"version":  "1.0.0",
		"status":   "running",
		"docs":     "/docs",
		"provider": h.cfg.LLMProvider,
		"features": []string{
			"deterministic_sql_answers",
			"generative_fallback",
			"in_memory_cache",
			"etag_support",
		},
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies connectivity of the configured store (SQLite or Postgres).
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	backend := "sqlite"
	if h.cfg.UsesPostgres() {
		backend = "postgres"
	}
	if err := h.gw.Ping(r.Context()); err != nil {
		h.logger.Warn("Database health check failed", "error", err)
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"backend":   backend,
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"backend":   backend,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory cache statistics (active keys, expired keys, hits, misses).
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
