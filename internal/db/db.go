// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sandcourt/rallyrank/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers all statements the API, recompute,
// and ingestion layers use. Prepared statements eliminate parse overhead
// on every request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Source matches, in entry order. Only matches from locked
		// sessions reach the rating engine.
		"locked_matches": `SELECT m.id, m.date,
			m.team_a_player1, m.team_a_player2, m.team_b_player1, m.team_b_player2,
			m.score_a, m.score_b
			FROM matches m JOIN sessions s ON s.id = m.session_id
			WHERE s.locked_at IS NOT NULL
			ORDER BY m.id`,

		"session_matches": `SELECT id, session_id, date,
			team_a_player1, team_a_player2, team_b_player1, team_b_player2,
			score_a, score_b
			FROM matches WHERE session_id = $1 ORDER BY id`,

		"insert_match": `INSERT INTO matches
			(session_id, date, team_a_player1, team_a_player2, team_b_player1, team_b_player2, score_a, score_b)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,

		// Sessions
		"insert_session": `INSERT INTO sessions (token, name, date, created_by)
			VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		"session_by_id": `SELECT id, token, name, date, created_by, locked_at, created_at
			FROM sessions WHERE id = $1`,
		"session_by_token": `SELECT id, token, name, date, created_by, locked_at, created_at
			FROM sessions WHERE token = $1`,
		"list_sessions": `SELECT s.id, s.token, s.name, s.date, s.created_by, s.locked_at, s.created_at,
			count(m.id) AS match_count
			FROM sessions s LEFT JOIN matches m ON m.session_id = s.id
			GROUP BY s.id ORDER BY s.id DESC`,
		"lock_session": `UPDATE sessions SET locked_at = now()
			WHERE id = $1 AND locked_at IS NULL RETURNING locked_at`,
		"session_match_count": "SELECT count(*) FROM matches WHERE session_id = $1",

		// Users
		"insert_user": `INSERT INTO users (username, password_hash)
			VALUES ($1, $2) RETURNING id, created_at`,
		"user_by_username": `SELECT id, username, password_hash, created_at
			FROM users WHERE username = $1`,

		// Derived-table flush (recompute write-back)
		"flush_players":        "DELETE FROM players",
		"flush_partnerships":   "DELETE FROM partnership_stats",
		"flush_opponents":      "DELETE FROM opponent_stats",
		"flush_rating_history": "DELETE FROM rating_history",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
