// Package export writes a standings snapshot to disk as JSON files
// plus a rating-change CSV, for spreadsheet imports and static site
// builds.
//
// Layout under the output directory:
//
//	rankings.json        leaderboard rows
//	timeline.json        rating timeline points
//	matches.json         full match list with deltas
//	rank_changes.csv     per-player rating history
//	players/<name>.json  detail view per player
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sandcourt/rallyrank/internal/elo"
	"github.com/sandcourt/rallyrank/internal/standings"
)

// Write renders snap into dir, creating it if needed. Existing files
// are overwritten; the export is not atomic across files.
func Write(snap *standings.Snapshot, dir string) error {
	if err := os.MkdirAll(filepath.Join(dir, "players"), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	files := map[string]any{
		"rankings.json": snap.Rankings,
		"timeline.json": snap.Timeline,
		"matches.json":  snap.Matches,
	}
	for name, v := range files {
		if err := writeJSON(filepath.Join(dir, name), v); err != nil {
			return err
		}
	}

	for _, row := range snap.Rankings {
		detail, ok := snap.PlayerDetail(row.Name)
		if !ok {
			continue
		}
		path := filepath.Join(dir, "players", playerFileName(row.Name))
		payload := struct {
			Name string `json:"name"`
			elo.PlayerDetail
			Matches []elo.MatchSummary `json:"matches"`
		}{
			Name:         row.Name,
			PlayerDetail: detail,
			Matches:      snap.PlayerMatchHistory(row.Name),
		}
		if err := writeJSON(path, payload); err != nil {
			return err
		}
	}

	return writeRankChanges(snap, filepath.Join(dir, "rank_changes.csv"))
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// writeRankChanges emits one CSV row per player per processed match.
func writeRankChanges(snap *standings.Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"player", "match_id", "date", "delta", "rating_after"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range snap.Rankings {
		for _, m := range snap.PlayerMatchHistory(row.Name) {
			record := []string{
				row.Name,
				strconv.FormatInt(m.MatchID, 10),
				m.Date,
				strconv.FormatFloat(m.RatingDelta, 'f', 2, 64),
				strconv.FormatFloat(m.RatingAfter, 'f', 2, 64),
			}
			if err := w.Write(record); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

// playerFileName maps a player name to a safe file name.
func playerFileName(name string) string {
	safe := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			safe = append(safe, r)
		case r == ' ':
			safe = append(safe, '_')
		}
	}
	if len(safe) == 0 {
		safe = []rune("player")
	}
	return string(safe) + ".json"
}
