package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sandcourt/rallyrank/internal/config"
	"github.com/sandcourt/rallyrank/internal/elo"
)

// SaveDerived flushes and repopulates every derived table from a freshly
// computed tracker, in a single transaction. Readers of the derived
// tables therefore see either the fully-prior or the fully-new state,
// never a partial mix. That is the only consistency model the rating
// engine supports.
func (s *Store) SaveDerived(ctx context.Context, tracker *elo.Tracker) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin derived write-back: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range []string{
		"flush_rating_history", "flush_partnerships", "flush_opponents", "flush_players",
	} {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}

	players := tracker.Players()

	playerRows := make([][]any, 0, len(players))
	var partnershipRows, opponentRows, historyRows [][]any
	for _, p := range players {
		playerRows = append(playerRows, []any{
			p.Name, p.Rating, p.GamesPlayed, p.Wins,
			p.Points(), p.WinRate(), p.AvgPointDiff(),
		})

		detail, _ := tracker.PlayerDetail(p.Name)
		for _, row := range detail.Partners {
			partnershipRows = append(partnershipRows, []any{
				p.Name, row.Name, row.Games, row.Wins,
				row.Points, row.WinRate, row.AvgPointDiff,
			})
		}
		for _, row := range detail.Opponents {
			opponentRows = append(opponentRows, []any{
				p.Name, row.Name, row.Games, row.Wins,
				row.Points, row.WinRate, row.AvgPointDiff,
			})
		}
		for _, h := range p.History {
			historyRows = append(historyRows, []any{
				p.Name, h.MatchID, h.Date, h.Rating, h.Delta,
			})
		}
	}

	copies := []struct {
		table   string
		columns []string
		rows    [][]any
	}{
		{config.PlayersTable,
			[]string{"name", "rating", "games", "wins", "points", "win_rate", "avg_point_diff"},
			playerRows},
		{config.PartnershipsTable,
			[]string{"player_name", "partner_name", "games", "wins", "points", "win_rate", "avg_point_diff"},
			partnershipRows},
		{config.OpponentsTable,
			[]string{"player_name", "opponent_name", "games", "wins", "points", "win_rate", "avg_point_diff"},
			opponentRows},
		{config.RatingHistoryTable,
			[]string{"player_name", "match_id", "date", "rating_after", "delta"},
			historyRows},
	}
	for _, c := range copies {
		if len(c.rows) == 0 {
			continue
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{c.table}, c.columns, pgx.CopyFromRows(c.rows)); err != nil {
			return fmt.Errorf("copy into %s: %w", c.table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit derived write-back: %w", err)
	}
	return nil
}
