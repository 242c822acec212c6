// Package handler provides HTTP handlers for all API endpoints.
// Read endpoints serve projections from the in-memory standings
// snapshot; session and match entry goes through the store, and the
// database NOTIFY path brings changes back around into a new snapshot.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sandcourt/rallyrank/internal/api/respond"
	"github.com/sandcourt/rallyrank/internal/auth"
	"github.com/sandcourt/rallyrank/internal/cache"
	"github.com/sandcourt/rallyrank/internal/config"
	"github.com/sandcourt/rallyrank/internal/db"
	"github.com/sandcourt/rallyrank/internal/standings"
	"github.com/sandcourt/rallyrank/internal/store"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	pool      *db.Pool
	store     *store.Store
	standings *standings.Service
	cache     *cache.Cache
	auth      *auth.Manager
	cfg       *config.Config
}

// New creates a Handler with shared dependencies.
func New(pool *db.Pool, st *store.Store, svc *standings.Service, c *cache.Cache, am *auth.Manager, cfg *config.Config) *Handler {
	return &Handler{
		pool:      pool,
		store:     st,
		standings: svc,
		cache:     c,
		auth:      am,
		cfg:       cfg,
	}
}

// snapshot fetches the current standings snapshot, writing a 503 when no
// recompute has completed yet.
func (h *Handler) snapshot(w http.ResponseWriter) (*standings.Snapshot, bool) {
	snap, ok := h.standings.Current()
	if !ok {
		respond.WriteError(w, http.StatusServiceUnavailable, "NOT_READY",
			"Standings have not been computed yet")
		return nil, false
	}
	return snap, true
}

// serveCached renders v as JSON through the response cache with ETag
// revalidation. The cache is cleared on every snapshot swap, so entries
// never outlive the state they were rendered from.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, v any) {
	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODING_FAILED",
			"Failed to encode response")
		return
	}
	etag := h.cache.Set(key, data, ttl)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, ttl, false)
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, and status.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"name":    "RallyRank API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
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
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.pool.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory cache statistics (active keys, expired keys).
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckSnapshot reports the state of the standings snapshot.
// @Summary Snapshot health check
// @Description Reports version, age, and size of the current standings snapshot.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/snapshot [get]
func (h *Handler) HealthCheckSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.standings.Current()
	if !ok {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"snapshot":  "missing",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":      "healthy",
		"version":     snap.Version,
		"computed_at": snap.ComputedAt.Format(time.RFC3339),
		"matches":     snap.MatchCount(),
		"players":     snap.PlayerCount(),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}
