package export

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sandcourt/rallyrank/internal/elo"
	"github.com/sandcourt/rallyrank/internal/standings"
	"github.com/sandcourt/rallyrank/internal/store"
)

type staticStorage struct{ records []store.MatchRecord }

func (s *staticStorage) LockedMatches(ctx context.Context) ([]store.MatchRecord, error) {
	return s.records, nil
}

func (s *staticStorage) SaveDerived(ctx context.Context, tracker *elo.Tracker) error {
	return nil
}

func testSnapshot(t *testing.T) *standings.Snapshot {
	t.Helper()
	svc := standings.New(&staticStorage{records: []store.MatchRecord{
		{ID: 1, Date: "2024-06-01", TeamA: [2]string{"Alice", "Bob"}, TeamB: [2]string{"Carol", "Dave"}, ScoreA: 21, ScoreB: 15},
		{ID: 2, Date: "2024-06-02", TeamA: [2]string{"Alice", "Carol"}, TeamB: [2]string{"Bob", "Dave"}, ScoreA: 21, ScoreB: 18},
	}}, elo.Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	snap, err := svc.Recompute(context.Background())
	if err != nil {
		t.Fatalf("Recompute() error: %v", err)
	}
	return snap
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	if err := Write(testSnapshot(t), dir); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	var rankings []elo.RankingRow
	readJSON(t, filepath.Join(dir, "rankings.json"), &rankings)
	if len(rankings) != 4 {
		t.Errorf("len(rankings) = %d, want 4", len(rankings))
	}

	var timeline []elo.TimelinePoint
	readJSON(t, filepath.Join(dir, "timeline.json"), &timeline)
	if len(timeline) != 2 {
		t.Errorf("len(timeline) = %d, want 2", len(timeline))
	}

	var matches []elo.MatchRow
	readJSON(t, filepath.Join(dir, "matches.json"), &matches)
	if len(matches) != 2 {
		t.Errorf("len(matches) = %d, want 2", len(matches))
	}

	var player struct {
		Name    string             `json:"name"`
		Matches []elo.MatchSummary `json:"matches"`
	}
	readJSON(t, filepath.Join(dir, "players", "Alice.json"), &player)
	if player.Name != "Alice" || len(player.Matches) != 2 {
		t.Errorf("player export = %q with %d matches", player.Name, len(player.Matches))
	}

	raw, err := os.ReadFile(filepath.Join(dir, "rank_changes.csv"))
	if err != nil {
		t.Fatalf("read rank_changes.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	// Header plus one row per player per match: 4 players x 2 matches.
	if len(lines) != 9 {
		t.Errorf("rank_changes.csv has %d lines, want 9", len(lines))
	}
	if lines[0] != "player,match_id,date,delta,rating_after" {
		t.Errorf("header = %q", lines[0])
	}
}

func TestPlayerFileName(t *testing.T) {
	tests := []struct {
		name, want string
	}{
		{"Alice", "Alice.json"},
		{"Mary Jane", "Mary_Jane.json"},
		{"../evil", "evil.json"},
		{"", "player.json"},
	}
	for _, tt := range tests {
		if got := playerFileName(tt.name); got != tt.want {
			t.Errorf("playerFileName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("unmarshal %s: %v", path, err)
	}
}
