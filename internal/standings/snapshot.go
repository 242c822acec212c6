package standings

import (
	"fmt"
	"time"

	"github.com/sandcourt/rallyrank/internal/elo"
)

// Snapshot is one immutable, internally consistent view of the derived
// state. Every projection inside it comes from the same engine pass, so
// cross-referencing rankings, timelines, and per-player detail never
// mixes versions.
type Snapshot struct {
	Version    int64               `json:"version"`
	ComputedAt time.Time           `json:"computed_at"`
	Rankings   []elo.RankingRow    `json:"rankings"`
	Timeline   []elo.TimelinePoint `json:"timeline"`
	Matches    []elo.MatchRow      `json:"matches"`

	tracker *elo.Tracker
	source  []*elo.Match
}

func newSnapshot(version int64, tracker *elo.Tracker, matches []*elo.Match) *Snapshot {
	return &Snapshot{
		Version:    version,
		ComputedAt: time.Now().UTC(),
		Rankings:   tracker.Rankings(),
		Timeline:   tracker.RatingTimeline(),
		Matches:    elo.MatchRows(matches),
		tracker:    tracker,
		source:     matches,
	}
}

// ETag is a strong validator for conditional GETs; it changes with
// every recompute.
func (sn *Snapshot) ETag() string {
	return fmt.Sprintf("%q", fmt.Sprintf("standings-v%d", sn.Version))
}

// MatchCount reports the number of locked-in matches behind this view.
func (sn *Snapshot) MatchCount() int { return len(sn.source) }

// PlayerCount reports the number of players that have appeared in a
// locked-in match.
func (sn *Snapshot) PlayerCount() int { return sn.tracker.PlayerCount() }

// PlayerDetail returns the full per-player view, or false for names
// that have never played.
func (sn *Snapshot) PlayerDetail(name string) (elo.PlayerDetail, bool) {
	return sn.tracker.PlayerDetail(name)
}

// PlayerMatchHistory returns the player's matches newest first, or nil
// for unknown names.
func (sn *Snapshot) PlayerMatchHistory(name string) []elo.MatchSummary {
	return sn.tracker.PlayerMatchHistory(name, sn.source)
}
