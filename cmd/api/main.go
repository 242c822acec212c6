// Command api is the RallyRank API server.
//
// Usage:
//
//	rallyrank-api
//	API_PORT=8080 rallyrank-api

// @title RallyRank API
// @version 1.0.0
// @description Doubles beach volleyball ratings and statistics. Matches are entered in sessions; locking a session feeds its matches to the rating engine, which fully recomputes all standings.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name RallyRank
// @license.name MIT
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/sandcourt/rallyrank/internal/api"
	"github.com/sandcourt/rallyrank/internal/auth"
	"github.com/sandcourt/rallyrank/internal/cache"
	"github.com/sandcourt/rallyrank/internal/config"
	"github.com/sandcourt/rallyrank/internal/db"
	"github.com/sandcourt/rallyrank/internal/elo"
	"github.com/sandcourt/rallyrank/internal/listener"
	"github.com/sandcourt/rallyrank/internal/standings"
	"github.com/sandcourt/rallyrank/internal/store"

	_ "github.com/sandcourt/rallyrank/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Auth manager
	authManager, err := auth.NewManager(cfg.JWTSecret, cfg.JWTExpiration)
	if err != nil {
		logger.Error("Failed to initialize auth", "error", err)
		os.Exit(1)
	}

	// Standings service over the store; cached responses are dropped on
	// every snapshot swap.
	st := store.New(pool.Pool)
	svc := standings.New(st, elo.Config{
		InitialRating:    cfg.InitialRating,
		KFactor:          cfg.KFactor,
		PointDiffScaling: cfg.PointDiffScaling,
	}, logger)
	svc.OnSwap(func(*standings.Snapshot) { appCache.Clear() })

	// Initial recompute so the API starts with a snapshot.
	if _, err := svc.Recompute(ctx); err != nil {
		logger.Error("Initial recompute failed", "error", err)
		os.Exit(1)
	}

	// Start LISTEN/NOTIFY consumer so match changes recompute standings
	go listener.Start(ctx, cfg.DatabaseURL, svc, logger)

	// Create router
	router := api.NewRouter(pool, st, svc, appCache, authManager, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting RallyRank API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
