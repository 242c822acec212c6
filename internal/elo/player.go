package elo

// HistoryEntry is one append-only rating history record: the player's
// rating after a match, the delta applied, and the match it came from.
type HistoryEntry struct {
	Rating  float64
	Delta   float64
	Date    string
	MatchID int64
}

// PlayerStats is the mutable running aggregate for one player.
//
// All maps are keyed by the other player's name. Derived figures
// (win rate, average point differential, points) are computed from the
// counters on demand and never stored.
type PlayerStats struct {
	Name   string
	Rating float64

	GamesPlayed int
	Wins        int

	GamesWith    map[string]int
	WinsWith     map[string]int
	GamesAgainst map[string]int
	WinsAgainst  map[string]int

	PointDiffTotal   int
	PointDiffWith    map[string]int
	PointDiffAgainst map[string]int

	History []HistoryEntry
}

func newPlayerStats(name string, initialRating float64) *PlayerStats {
	return &PlayerStats{
		Name:             name,
		Rating:           initialRating,
		GamesWith:        make(map[string]int),
		WinsWith:         make(map[string]int),
		GamesAgainst:     make(map[string]int),
		WinsAgainst:      make(map[string]int),
		PointDiffWith:    make(map[string]int),
		PointDiffAgainst: make(map[string]int),
	}
}

// Losses is games played minus wins. Ties count as losses for the 3-1
// points system.
func (p *PlayerStats) Losses() int {
	return p.GamesPlayed - p.Wins
}

// WinRate is wins over games played, 0 for a player with no games.
func (p *PlayerStats) WinRate() float64 {
	if p.GamesPlayed == 0 {
		return 0
	}
	return float64(p.Wins) / float64(p.GamesPlayed)
}

// AvgPointDiff is the mean per-game point differential, 0 with no games.
func (p *PlayerStats) AvgPointDiff() float64 {
	if p.GamesPlayed == 0 {
		return 0
	}
	return float64(p.PointDiffTotal) / float64(p.GamesPlayed)
}

// Points implements the 3-1 leaderboard scoring: 3 per win, 1 per loss.
// Independent of rating.
func (p *PlayerStats) Points() int {
	return p.Wins*3 + p.Losses()*1
}

// applyDelta adds delta to the rating and appends a history entry.
func (p *PlayerStats) applyDelta(delta float64, date string, matchID int64) {
	p.Rating += delta
	p.History = append(p.History, HistoryEntry{
		Rating:  p.Rating,
		Delta:   delta,
		Date:    date,
		MatchID: matchID,
	})
}
