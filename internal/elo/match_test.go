package elo

import (
	"math"
	"testing"
)

func TestNewMatchWinner(t *testing.T) {
	tests := []struct {
		name       string
		scoreA     int
		scoreB     int
		wantWinner Winner
		wantResult float64
	}{
		{"team A wins", 21, 15, WinnerA, 1.0},
		{"team B wins", 15, 21, WinnerB, 0.0},
		{"tie", 10, 10, WinnerTie, 0.5},
		{"zero-zero tie", 0, 0, WinnerTie, 0.5},
		{"one point margin", 22, 21, WinnerA, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatch(1, Team{"a1", "a2"}, Team{"b1", "b2"}, tt.scoreA, tt.scoreB, "1/1/2024", false)
			if m.Winner != tt.wantWinner {
				t.Errorf("Winner = %v, want %v", m.Winner, tt.wantWinner)
			}
			if m.Result != tt.wantResult {
				t.Errorf("Result = %v, want %v", m.Result, tt.wantResult)
			}
		})
	}
}

func TestNewMatchPointDiffScaling(t *testing.T) {
	tests := []struct {
		name       string
		scoreA     int
		scoreB     int
		wantResult float64
	}{
		// Losing score 5 shifts both scores by +5: 26/(26+10).
		{"blowout", 21, 5, 26.0 / 36.0},
		// Losing score 15 shifts by -5: 16/(16+10).
		{"close win", 21, 15, 16.0 / 26.0},
		// Mirror of the blowout from team B's side.
		{"blowout reversed", 5, 21, 10.0 / 36.0},
		// Ties stay at 0.5 regardless of mode.
		{"tie", 10, 10, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatch(1, Team{"a1", "a2"}, Team{"b1", "b2"}, tt.scoreA, tt.scoreB, "", true)
			if math.Abs(m.Result-tt.wantResult) > 1e-12 {
				t.Errorf("Result = %v, want %v", m.Result, tt.wantResult)
			}
		})
	}
}

func TestMatchDeltasWriteOnce(t *testing.T) {
	m := NewMatch(1, Team{"a1", "a2"}, Team{"b1", "b2"}, 21, 15, "", false)

	if _, _, ok := m.Deltas(); ok {
		t.Fatal("deltas reported as set before processing")
	}

	m.setDeltas(20, -20)
	m.setDeltas(99, 99) // ignored

	dA, dB, ok := m.Deltas()
	if !ok || dA != 20 || dB != -20 {
		t.Errorf("Deltas() = (%v, %v, %v), want (20, -20, true)", dA, dB, ok)
	}
}

func TestTeamHelpers(t *testing.T) {
	team := Team{"Alice", "Bob"}

	if got := team.Other("Alice"); got != "Bob" {
		t.Errorf("Other(Alice) = %q, want Bob", got)
	}
	if got := team.Other("Bob"); got != "Alice" {
		t.Errorf("Other(Bob) = %q, want Alice", got)
	}
	if !team.Contains("Alice") || !team.Contains("Bob") {
		t.Error("Contains should report both teammates")
	}
	if team.Contains("Carol") {
		t.Error("Contains(Carol) should be false")
	}
}

func TestWinnerLabel(t *testing.T) {
	tests := []struct {
		w    Winner
		want string
	}{
		{WinnerA, "Team A"},
		{WinnerB, "Team B"},
		{WinnerTie, "Tie"},
	}
	for _, tt := range tests {
		if got := tt.w.Label(); got != tt.want {
			t.Errorf("Label(%v) = %q, want %q", tt.w, got, tt.want)
		}
	}
}
