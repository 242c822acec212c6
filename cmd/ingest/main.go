// Command ingest is the RallyRank data management CLI.
//
// Usage:
//
//	rallyrank-ingest import --file matches.csv --name "2024 archive"
//	rallyrank-ingest recompute
//	rallyrank-ingest export --dir ./out
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sandcourt/rallyrank/internal/config"
	"github.com/sandcourt/rallyrank/internal/db"
	"github.com/sandcourt/rallyrank/internal/elo"
	"github.com/sandcourt/rallyrank/internal/export"
	"github.com/sandcourt/rallyrank/internal/importer"
	"github.com/sandcourt/rallyrank/internal/standings"
	"github.com/sandcourt/rallyrank/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "rallyrank-ingest",
		Short: "RallyRank data management CLI",
	}

	root.AddCommand(importCmd())
	root.AddCommand(recomputeCmd())
	root.AddCommand(exportCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// import command
// --------------------------------------------------------------------------

func importCmd() *cobra.Command {
	var file, name string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a match CSV as a locked session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			return run(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("open %s: %w", file, err)
				}
				defer f.Close()

				if name == "" {
					name = "import " + filepath.Base(file)
				}

				start := time.Now()
				res, err := importer.New(store.New(pool.Pool)).Import(ctx, f, name)
				if err != nil {
					return fmt.Errorf("import %s: %w", file, err)
				}
				logger.Info("Import finished",
					"file", file,
					"session_id", res.SessionID,
					"matches", res.Matches,
					"duration", time.Since(start).Round(time.Millisecond))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "CSV file to import")
	cmd.Flags().StringVar(&name, "name", "", "Session name (defaults to the file name)")
	return cmd
}

// --------------------------------------------------------------------------
// recompute command
// --------------------------------------------------------------------------

func recomputeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute",
		Short: "Rebuild all derived statistics from the locked-in match list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				svc := newStandings(cfg, pool)
				start := time.Now()
				snap, err := svc.Recompute(ctx)
				if err != nil {
					return err
				}
				logger.Info("Recompute finished",
					"matches", snap.MatchCount(),
					"players", snap.PlayerCount(),
					"duration", time.Since(start).Round(time.Millisecond))
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// export command
// --------------------------------------------------------------------------

func exportCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write standings, timelines, and player files to disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				svc := newStandings(cfg, pool)
				snap, err := svc.Recompute(ctx)
				if err != nil {
					return err
				}
				if err := export.Write(snap, dir); err != nil {
					return err
				}
				logger.Info("Export finished",
					"dir", dir,
					"matches", snap.MatchCount(),
					"players", snap.PlayerCount())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "./export", "Output directory")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

func newStandings(cfg *config.Config, pool *db.Pool) *standings.Service {
	return standings.New(store.New(pool.Pool), elo.Config{
		InitialRating:    cfg.InitialRating,
		KFactor:          cfg.KFactor,
		PointDiffScaling: cfg.PointDiffScaling,
	}, logger)
}

// run handles config loading, DB connection, and context cancellation.
func run(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}
