package elo

import (
	"math"
	"sort"
)

// Rating model defaults.
const (
	DefaultInitialRating = 1200.0
	DefaultKFactor       = 40.0
)

// KFunc chooses the K-factor for a match given the average games played
// across its four participants (counted after the match's game increments).
// The default strategy ignores the argument and returns a flat constant;
// the hook exists so experience-based scaling can be opted into without
// changing default behavior.
type KFunc func(avgGamesPlayed float64) float64

// Config holds the engine knobs supplied at tracker construction.
// Zero values fall back to the defaults above.
type Config struct {
	InitialRating    float64
	KFactor          float64
	PointDiffScaling bool
	KFunc            KFunc
}

func (c Config) withDefaults() Config {
	if c.InitialRating == 0 {
		c.InitialRating = DefaultInitialRating
	}
	if c.KFactor == 0 {
		c.KFactor = DefaultKFactor
	}
	if c.KFunc == nil {
		k := c.KFactor
		c.KFunc = func(float64) float64 { return k }
	}
	return c
}

// NewMatch builds a match using this config's result-scaling mode.
func (c Config) NewMatch(id int64, teamA, teamB Team, scoreA, scoreB int, date string) *Match {
	return NewMatch(id, teamA, teamB, scoreA, scoreB, date, c.PointDiffScaling)
}

// ExpectedScore is the logistic ELO win probability for a team rated
// rating against a team rated opponent.
func ExpectedScore(rating, opponent float64) float64 {
	return 1 / (1 + math.Pow(10, (opponent-rating)/400))
}

// Tracker owns the player-name to PlayerStats mapping and is the single
// mutation point of the aggregation. A tracker is created fresh for every
// full recompute pass and discarded once projections are extracted; there
// is no incremental update of derived state.
type Tracker struct {
	cfg     Config
	players map[string]*PlayerStats
}

// NewTracker creates an empty tracker with the given configuration.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{
		cfg:     cfg.withDefaults(),
		players: make(map[string]*PlayerStats),
	}
}

// Config returns the effective configuration after defaulting.
func (t *Tracker) Config() Config { return t.cfg }

// Player looks up a player's aggregate by name.
func (t *Tracker) Player(name string) (*PlayerStats, bool) {
	p, ok := t.players[name]
	return p, ok
}

// Players returns all player aggregates sorted by name.
func (t *Tracker) Players() []*PlayerStats {
	out := make([]*PlayerStats, 0, len(t.players))
	for _, p := range t.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PlayerCount returns the number of distinct players seen so far.
func (t *Tracker) PlayerCount() int { return len(t.players) }

func (t *Tracker) getOrCreate(name string) *PlayerStats {
	if p, ok := t.players[name]; ok {
		return p
	}
	p := newPlayerStats(name, t.cfg.InitialRating)
	t.players[name] = p
	return p
}

// ProcessAll processes matches in slice order. Order is significant:
// every rating update depends on the ratings produced by everything
// before it, so callers must supply the final chronological order.
func (t *Tracker) ProcessAll(matches []*Match) {
	for _, m := range matches {
		t.ProcessMatch(m)
	}
}

// ProcessMatch updates every statistic one match affects, in a fixed
// order: game and partnership counters, win counters (skipped on a tie),
// point differentials, and finally the rating update. The rating step
// runs last so the K-factor hook sees post-increment game counts.
func (t *Tracker) ProcessMatch(m *Match) {
	for _, name := range m.Players() {
		t.getOrCreate(name)
	}

	t.recordGames(m.TeamA, m.TeamB)
	t.recordGames(m.TeamB, m.TeamA)

	if m.Winner != WinnerTie {
		winners, losers := m.TeamA, m.TeamB
		if m.Winner == WinnerB {
			winners, losers = m.TeamB, m.TeamA
		}
		t.recordWins(winners, losers)
	}

	diff := m.ScoreA - m.ScoreB
	t.recordPointDiffs(m.TeamA, m.TeamB, diff)
	t.recordPointDiffs(m.TeamB, m.TeamA, -diff)

	t.updateRatings(m)
}

// recordGames increments game, partnership, and opponent counters for
// both players on team against opponents.
func (t *Tracker) recordGames(team, opponents Team) {
	for i, name := range team {
		p := t.players[name]
		p.GamesPlayed++
		p.GamesWith[team[1-i]]++
		for _, opp := range opponents {
			p.GamesAgainst[opp]++
		}
	}
}

// recordWins increments win counters for the winning team.
func (t *Tracker) recordWins(winners, losers Team) {
	for i, name := range winners {
		p := t.players[name]
		p.Wins++
		p.WinsWith[winners[1-i]]++
		for _, opp := range losers {
			p.WinsAgainst[opp]++
		}
	}
}

// recordPointDiffs adds the signed point differential to the team's
// totals and per-partner/per-opponent breakdowns. Runs on ties too.
func (t *Tracker) recordPointDiffs(team, opponents Team, diff int) {
	for i, name := range team {
		p := t.players[name]
		p.PointDiffTotal += diff
		p.PointDiffWith[team[1-i]] += diff
		for _, opp := range opponents {
			p.PointDiffAgainst[opp] += diff
		}
	}
}

// updateRatings computes and applies the two-team ELO update. Team
// strength is the arithmetic mean of its players' current ratings; both
// teammates receive the identical delta.
func (t *Tracker) updateRatings(m *Match) {
	ratingA := t.teamRating(m.TeamA)
	ratingB := t.teamRating(m.TeamB)

	expectedA := ExpectedScore(ratingA, ratingB)
	expectedB := ExpectedScore(ratingB, ratingA)

	var totalGames int
	for _, name := range m.Players() {
		totalGames += t.players[name].GamesPlayed
	}
	k := t.cfg.KFunc(float64(totalGames) / 4)

	deltaA := k * (m.Result - expectedA)
	deltaB := k * ((1 - m.Result) - expectedB)
	m.setDeltas(deltaA, deltaB)

	for _, name := range m.TeamA {
		t.players[name].applyDelta(deltaA, m.Date, m.ID)
	}
	for _, name := range m.TeamB {
		t.players[name].applyDelta(deltaB, m.Date, m.ID)
	}
}

func (t *Tracker) teamRating(team Team) float64 {
	return (t.players[team[0]].Rating + t.players[team[1]].Rating) / 2
}
