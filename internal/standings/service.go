// Package standings owns the full-recompute lifecycle: load every
// locked-in match in entry order, run a fresh rating engine pass, build
// all read-model projections, and atomically swap the resulting
// immutable snapshot. Handlers only ever read snapshots; there is no
// incremental update path.
package standings

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sandcourt/rallyrank/internal/elo"
	"github.com/sandcourt/rallyrank/internal/store"
)

// Storage is the slice of the store the recompute needs: the ordered
// source matches and the derived-table write-back.
type Storage interface {
	LockedMatches(ctx context.Context) ([]store.MatchRecord, error)
	SaveDerived(ctx context.Context, tracker *elo.Tracker) error
}

// Service computes and publishes standings snapshots.
type Service struct {
	storage Storage
	cfg     elo.Config
	logger  *slog.Logger

	recomputeMu sync.Mutex // serializes recompute passes

	mu      sync.RWMutex
	current *Snapshot
	version int64
	onSwap  func(*Snapshot)
}

// New creates a Service. No snapshot exists until the first Recompute.
func New(storage Storage, cfg elo.Config, logger *slog.Logger) *Service {
	return &Service{storage: storage, cfg: cfg, logger: logger}
}

// OnSwap registers a callback invoked after each snapshot swap, e.g. to
// drop cached responses rendered from the previous snapshot. Must be set
// before the first Recompute.
func (s *Service) OnSwap(fn func(*Snapshot)) { s.onSwap = fn }

// Current returns the latest snapshot, or false before the first
// successful recompute.
func (s *Service) Current() (*Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != nil
}

// Recompute rebuilds the entire derived state from the source match
// list. The in-memory snapshot is swapped before the database write-back
// so API readers pick up the new state even if persistence fails; a
// write-back failure is returned for the caller to retry.
func (s *Service) Recompute(ctx context.Context) (*Snapshot, error) {
	s.recomputeMu.Lock()
	defer s.recomputeMu.Unlock()

	start := time.Now()
	records, err := s.storage.LockedMatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}

	tracker := elo.NewTracker(s.cfg)
	matches := make([]*elo.Match, 0, len(records))
	for _, r := range records {
		matches = append(matches, tracker.Config().NewMatch(
			r.ID, elo.Team(r.TeamA), elo.Team(r.TeamB), r.ScoreA, r.ScoreB, r.Date))
	}
	tracker.ProcessAll(matches)

	s.mu.Lock()
	s.version++
	snap := newSnapshot(s.version, tracker, matches)
	s.current = snap
	s.mu.Unlock()

	if s.onSwap != nil {
		s.onSwap(snap)
	}

	s.logger.Info("Standings recomputed",
		"matches", len(matches),
		"players", tracker.PlayerCount(),
		"version", snap.Version,
		"duration", time.Since(start).Round(time.Millisecond))

	if err := s.storage.SaveDerived(ctx, tracker); err != nil {
		return snap, fmt.Errorf("persist derived tables: %w", err)
	}
	return snap, nil
}
