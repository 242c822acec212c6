// Package elo implements the rating and statistics aggregation engine:
// match outcome normalization, per-player running aggregates, the ELO
// update applied after every match, and the read-model projections
// (rankings, rating timeline, player detail, match history).
//
// The engine is pure computation over an ordered match list. It performs
// no I/O, holds no global state, and trusts its inputs; validation
// belongs to the ingestion and API layers.
package elo

// Winner identifies the winning side of a match.
type Winner int

const (
	WinnerA Winner = iota
	WinnerB
	WinnerTie
)

// Label returns the display form used in match listings.
func (w Winner) Label() string {
	switch w {
	case WinnerA:
		return "Team A"
	case WinnerB:
		return "Team B"
	default:
		return "Tie"
	}
}

// Team is an unordered pair of player names.
type Team [2]string

// Other returns the teammate of name. Callers guarantee name is on the team.
func (t Team) Other(name string) string {
	if t[0] == name {
		return t[1]
	}
	return t[0]
}

// Contains reports whether name plays on this team.
func (t Team) Contains(name string) bool {
	return t[0] == name || t[1] == name
}

// Match is one completed game between two teams of two players.
//
// Winner and Result are derived once at construction and never recomputed.
// DeltaA/DeltaB are populated exactly once by the tracker during processing.
type Match struct {
	ID     int64
	TeamA  Team
	TeamB  Team
	ScoreA int
	ScoreB int
	Date   string // opaque, lexicographically sortable; may be empty

	Winner Winner
	Result float64 // actual-score input to the rating formula, team A's perspective

	deltaA    float64
	deltaB    float64
	deltasSet bool
}

// NewMatch normalizes raw match inputs into a fixed outcome representation.
//
// In binary mode the result scalar is 1/0/0.5 for a team A win/loss/tie.
// With pointDiffScaling enabled, both raw scores are shifted so the losing
// score becomes 10 and the result is adjustedA/(adjustedA+adjustedB),
// compressing blowouts toward 0.5 instead of a flat 0/1. Ties are 0.5 in
// both modes.
func NewMatch(id int64, teamA, teamB Team, scoreA, scoreB int, date string, pointDiffScaling bool) *Match {
	m := &Match{
		ID:     id,
		TeamA:  teamA,
		TeamB:  teamB,
		ScoreA: scoreA,
		ScoreB: scoreB,
		Date:   date,
	}

	switch {
	case scoreA > scoreB:
		m.Winner = WinnerA
	case scoreB > scoreA:
		m.Winner = WinnerB
	default:
		m.Winner = WinnerTie
	}

	switch {
	case m.Winner == WinnerTie:
		m.Result = 0.5
	case pointDiffScaling:
		losing := scoreA
		if scoreB < losing {
			losing = scoreB
		}
		shift := float64(10 - losing)
		adjA := float64(scoreA) + shift
		adjB := float64(scoreB) + shift
		m.Result = adjA / (adjA + adjB)
	case m.Winner == WinnerA:
		m.Result = 1.0
	default:
		m.Result = 0.0
	}

	return m
}

// Players returns the four participant names in team A, team B order.
func (m *Match) Players() [4]string {
	return [4]string{m.TeamA[0], m.TeamA[1], m.TeamB[0], m.TeamB[1]}
}

// Deltas returns the per-team rating changes and whether they have been
// computed yet.
func (m *Match) Deltas() (deltaA, deltaB float64, ok bool) {
	return m.deltaA, m.deltaB, m.deltasSet
}

// setDeltas records the rating changes. Write-once: later calls are ignored.
func (m *Match) setDeltas(deltaA, deltaB float64) {
	if m.deltasSet {
		return
	}
	m.deltaA = deltaA
	m.deltaB = deltaB
	m.deltasSet = true
}
