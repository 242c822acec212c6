package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/sandcourt/rallyrank/internal/api/handler"
	"github.com/sandcourt/rallyrank/internal/auth"
	"github.com/sandcourt/rallyrank/internal/cache"
	"github.com/sandcourt/rallyrank/internal/config"
	"github.com/sandcourt/rallyrank/internal/db"
	"github.com/sandcourt/rallyrank/internal/standings"
	"github.com/sandcourt/rallyrank/internal/store"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(pool *db.Pool, st *store.Store, svc *standings.Service, appCache *cache.Cache, am *auth.Manager, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Authorization", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(pool, st, svc, appCache, am, cfg)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
		r.Get("/snapshot", h.HealthCheckSnapshot)
	})

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Standings read models
		r.Get("/rankings", h.GetRankings)
		r.Get("/timeline", h.GetTimeline)
		r.Get("/matches", h.GetMatches)

		// Players
		r.Get("/players", h.GetPlayers)
		r.Get("/players/{name}", h.GetPlayer)
		r.Get("/players/{name}/matches", h.GetPlayerMatches)

		// Sessions: reads are public, mutations require a token
		r.Get("/sessions", h.ListSessions)
		r.Get("/sessions/{id}", h.GetSession)
		r.Group(func(r chi.Router) {
			r.Use(am.Middleware)
			r.Post("/sessions", h.CreateSession)
			r.Post("/sessions/{id}/matches", h.AddMatch)
			r.Post("/sessions/{id}/lock", h.LockSession)
			r.Post("/admin/recompute", h.Recompute)
		})

		// Auth
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)
	})

	return r
}
