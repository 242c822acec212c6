package elo

import (
	"fmt"
	"sort"
)

// Read-model projections. All functions here are pure over the final
// tracker state and match list; they hold no mutable state of their own
// and can be recomputed at any time.

// RankingRow is one leaderboard entry.
type RankingRow struct {
	Name         string  `json:"name"`
	Points       int     `json:"points"`
	Games        int     `json:"games"`
	WinRate      float64 `json:"win_rate"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	AvgPointDiff float64 `json:"avg_point_diff"`
	Rating       float64 `json:"rating"`
}

// Rankings returns every player ordered by the leaderboard total order:
// points desc, average point differential desc, win rate desc, rating
// desc, name asc. The final name key makes the order deterministic.
func (t *Tracker) Rankings() []RankingRow {
	players := t.Players()
	rows := make([]RankingRow, 0, len(players))
	for _, p := range players {
		rows = append(rows, RankingRow{
			Name:         p.Name,
			Points:       p.Points(),
			Games:        p.GamesPlayed,
			WinRate:      p.WinRate(),
			Wins:         p.Wins,
			Losses:       p.Losses(),
			AvgPointDiff: p.AvgPointDiff(),
			Rating:       p.Rating,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.AvgPointDiff != b.AvgPointDiff {
			return a.AvgPointDiff > b.AvgPointDiff
		}
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		return a.Name < b.Name
	})
	return rows
}

// TimelinePoint is one row of the rating timeline: every player's rating
// as of the most recent match at or before Date.
type TimelinePoint struct {
	Date    string             `json:"date"`
	Ratings map[string]float64 `json:"ratings"`
}

// RatingTimeline returns the union of all dated matches, ascending, with
// each player's rating carried forward from their last match on or before
// each date. Players who have not yet played carry the initial rating.
// Matches without a date contribute no timeline rows.
func (t *Tracker) RatingTimeline() []TimelinePoint {
	dateSet := make(map[string]struct{})
	for _, p := range t.players {
		for _, h := range p.History {
			if h.Date != "" {
				dateSet[h.Date] = struct{}{}
			}
		}
	}
	if len(dateSet) == 0 {
		return nil
	}

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	players := t.Players()

	// Last rating recorded per player per date, in processing order so a
	// later match on the same date wins.
	lastOnDate := make(map[string]map[string]float64, len(players))
	for _, p := range players {
		byDate := make(map[string]float64)
		for _, h := range p.History {
			if h.Date != "" {
				byDate[h.Date] = h.Rating
			}
		}
		lastOnDate[p.Name] = byDate
	}

	points := make([]TimelinePoint, 0, len(dates))
	carried := make(map[string]float64, len(players))
	for _, p := range players {
		carried[p.Name] = t.cfg.InitialRating
	}
	for _, date := range dates {
		ratings := make(map[string]float64, len(players))
		for _, p := range players {
			if r, ok := lastOnDate[p.Name][date]; ok {
				carried[p.Name] = r
			}
			ratings[p.Name] = carried[p.Name]
		}
		points = append(points, TimelinePoint{Date: date, Ratings: ratings})
	}
	return points
}

// BreakdownRow is one partnership or opponent line in a player detail view.
type BreakdownRow struct {
	Name         string  `json:"name"`
	Points       int     `json:"points"`
	Games        int     `json:"games"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	WinRate      float64 `json:"win_rate"`
	AvgPointDiff float64 `json:"avg_point_diff"`
}

// PlayerOverview summarizes one player for the detail view.
type PlayerOverview struct {
	Ranking      int     `json:"ranking"`
	Points       int     `json:"points"`
	Rating       float64 `json:"rating"`
	Games        int     `json:"games"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	WinRate      float64 `json:"win_rate"`
	AvgPointDiff float64 `json:"avg_point_diff"`
}

// PlayerDetail is the full per-player view: overall summary plus one row
// per distinct partner and per distinct opponent. Section headers and
// separator rows are a presentation concern and are not produced here.
type PlayerDetail struct {
	Overview  PlayerOverview `json:"overview"`
	Partners  []BreakdownRow `json:"partners"`
	Opponents []BreakdownRow `json:"opponents"`
}

// PlayerDetail builds the detail view for name. The second return is
// false for unknown players.
func (t *Tracker) PlayerDetail(name string) (PlayerDetail, bool) {
	p, ok := t.players[name]
	if !ok {
		return PlayerDetail{}, false
	}

	ranking := 0
	for i, row := range t.Rankings() {
		if row.Name == name {
			ranking = i + 1
			break
		}
	}

	return PlayerDetail{
		Overview: PlayerOverview{
			Ranking:      ranking,
			Points:       p.Points(),
			Rating:       p.Rating,
			Games:        p.GamesPlayed,
			Wins:         p.Wins,
			Losses:       p.Losses(),
			WinRate:      p.WinRate(),
			AvgPointDiff: p.AvgPointDiff(),
		},
		Partners:  breakdownRows(p.GamesWith, p.WinsWith, p.PointDiffWith),
		Opponents: breakdownRows(p.GamesAgainst, p.WinsAgainst, p.PointDiffAgainst),
	}, true
}

// breakdownRows derives per-counterpart stats from the raw counter maps,
// sorted by games desc then name asc.
func breakdownRows(games, wins, pointDiff map[string]int) []BreakdownRow {
	rows := make([]BreakdownRow, 0, len(games))
	for name, g := range games {
		w := wins[name]
		losses := g - w
		var winRate, avgDiff float64
		if g > 0 {
			winRate = float64(w) / float64(g)
			avgDiff = float64(pointDiff[name]) / float64(g)
		}
		rows = append(rows, BreakdownRow{
			Name:         name,
			Points:       w*3 + losses*1,
			Games:        g,
			Wins:         w,
			Losses:       losses,
			WinRate:      winRate,
			AvgPointDiff: avgDiff,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Games != rows[j].Games {
			return rows[i].Games > rows[j].Games
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

// MatchRow is one entry of the full match listing with computed deltas.
type MatchRow struct {
	MatchID int64   `json:"match_id"`
	Date    string  `json:"date"`
	TeamA   Team    `json:"team_a"`
	TeamB   Team    `json:"team_b"`
	ScoreA  int     `json:"score_a"`
	ScoreB  int     `json:"score_b"`
	Winner  string  `json:"winner"`
	DeltaA  float64 `json:"delta_a"`
	DeltaB  float64 `json:"delta_b"`
}

// MatchRows summarizes processed matches most-recent-first (date desc,
// then sequence desc for same-day games).
func MatchRows(matches []*Match) []MatchRow {
	rows := make([]MatchRow, 0, len(matches))
	for _, m := range matches {
		deltaA, deltaB, _ := m.Deltas()
		rows = append(rows, MatchRow{
			MatchID: m.ID,
			Date:    m.Date,
			TeamA:   m.TeamA,
			TeamB:   m.TeamB,
			ScoreA:  m.ScoreA,
			ScoreB:  m.ScoreB,
			Winner:  m.Winner.Label(),
			DeltaA:  deltaA,
			DeltaB:  deltaB,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date > rows[j].Date
		}
		return rows[i].MatchID > rows[j].MatchID
	})
	return rows
}

// MatchSummary is one match as seen from a single player's perspective.
type MatchSummary struct {
	MatchID     int64   `json:"match_id"`
	Date        string  `json:"date"`
	Partner     string  `json:"partner"`
	Opponent1   string  `json:"opponent1"`
	Opponent2   string  `json:"opponent2"`
	Result      string  `json:"result"` // W, L, or T
	Score       string  `json:"score"`  // player's team first
	RatingDelta float64 `json:"rating_delta"`
	RatingAfter float64 `json:"rating_after"`
}

// PlayerMatchHistory returns every processed match the player appeared
// in, annotated with their role, most-recent-first (date desc, then
// sequence desc).
func (t *Tracker) PlayerMatchHistory(name string, matches []*Match) []MatchSummary {
	p, ok := t.players[name]
	if !ok {
		return nil
	}

	afterByMatch := make(map[int64]HistoryEntry, len(p.History))
	for _, h := range p.History {
		afterByMatch[h.MatchID] = h
	}

	var rows []MatchSummary
	for _, m := range matches {
		var own, opp Team
		var ownScore, oppScore int
		var won Winner
		switch {
		case m.TeamA.Contains(name):
			own, opp = m.TeamA, m.TeamB
			ownScore, oppScore = m.ScoreA, m.ScoreB
			won = WinnerA
		case m.TeamB.Contains(name):
			own, opp = m.TeamB, m.TeamA
			ownScore, oppScore = m.ScoreB, m.ScoreA
			won = WinnerB
		default:
			continue
		}

		result := "L"
		switch m.Winner {
		case won:
			result = "W"
		case WinnerTie:
			result = "T"
		}

		entry := afterByMatch[m.ID]
		rows = append(rows, MatchSummary{
			MatchID:     m.ID,
			Date:        m.Date,
			Partner:     own.Other(name),
			Opponent1:   opp[0],
			Opponent2:   opp[1],
			Result:      result,
			Score:       fmt.Sprintf("%d-%d", ownScore, oppScore),
			RatingDelta: entry.Delta,
			RatingAfter: entry.Rating,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date > rows[j].Date
		}
		return rows[i].MatchID > rows[j].MatchID
	})
	return rows
}
