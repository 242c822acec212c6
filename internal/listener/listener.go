// Package listener provides a Postgres LISTEN/NOTIFY consumer that keeps
// the standings snapshot in sync with the source match data. It holds a
// dedicated pgx connection (not from the pool) listening on the
// `matches_changed` channel.
//
// Any statement-level change to locked-in matches, including a session
// lock-in, fires pg_notify and this consumer schedules a full recompute.
package listener

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sandcourt/rallyrank/internal/standings"
)

const (
	channel          = "matches_changed"
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second

	// Locking a session fires one notification per touched table;
	// coalescing them keeps a burst down to a single recompute.
	debounce = 250 * time.Millisecond
)

// Recomputer rebuilds the derived state from scratch.
type Recomputer interface {
	Recompute(ctx context.Context) (*standings.Snapshot, error)
}

// Start opens a dedicated connection and listens on the matches_changed
// channel, triggering a recompute for each burst of notifications. It
// reconnects automatically on connection loss. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, dbURL string, svc Recomputer, logger *slog.Logger) {
	kick := make(chan struct{}, 1)
	go recomputeWorker(ctx, kick, svc, logger)

	backoff := reconnectBackoff
	for {
		err := listenLoop(ctx, dbURL, kick, logger)
		if ctx.Err() != nil {
			logger.Info("Match listener stopped (context cancelled)")
			return
		}

		logger.Error("Match listener disconnected, reconnecting...",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = min(backoff*2, maxReconnect)
		case <-ctx.Done():
			return
		}
	}
}

// listenLoop runs a single listen session. Returns when the connection
// drops or the context is cancelled.
func listenLoop(ctx context.Context, dbURL string, kick chan<- struct{}, logger *slog.Logger) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	_, err = conn.Exec(ctx, "LISTEN "+channel)
	if err != nil {
		return fmt.Errorf("LISTEN %s: %w", channel, err)
	}
	logger.Info("Match listener connected", "channel", channel)

	// A change may have slipped past while we were disconnected.
	schedule(kick)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		logger.Debug("Match change notification", "payload", notification.Payload)
		schedule(kick)
	}
}

// schedule requests a recompute without blocking; a request already
// pending absorbs the new one.
func schedule(kick chan<- struct{}) {
	select {
	case kick <- struct{}{}:
	default:
	}
}

// recomputeWorker consumes recompute requests, waiting out the debounce
// window so trigger bursts collapse into one pass.
func recomputeWorker(ctx context.Context, kick <-chan struct{}, svc Recomputer, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-kick:
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(debounce):
		}

		if _, err := svc.Recompute(ctx); err != nil {
			logger.Error("Recompute after match change failed", "error", err)
		}
	}
}
