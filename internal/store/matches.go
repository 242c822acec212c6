package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// MatchRecord is one raw match row as entered: names, scores, and the
// optional date token. Outcome derivation happens in the engine, not here.
type MatchRecord struct {
	ID        int64  `json:"id"`
	SessionID int64  `json:"session_id"`
	Date      string `json:"date"`
	TeamA     [2]string
	TeamB     [2]string
	ScoreA    int `json:"score_a"`
	ScoreB    int `json:"score_b"`
}

// LockedMatches returns every match belonging to a locked session, in
// entry order. Entry order is the chronological order the engine
// processes; pending sessions are invisible here.
func (s *Store) LockedMatches(ctx context.Context) ([]MatchRecord, error) {
	rows, err := s.pool.Query(ctx, "locked_matches")
	if err != nil {
		return nil, fmt.Errorf("query locked matches: %w", err)
	}
	defer rows.Close()

	var out []MatchRecord
	for rows.Next() {
		var m MatchRecord
		if err := rows.Scan(&m.ID, &m.Date,
			&m.TeamA[0], &m.TeamA[1], &m.TeamB[0], &m.TeamB[1],
			&m.ScoreA, &m.ScoreB); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SessionMatches returns the matches entered in one session, locked or
// not, in entry order.
func (s *Store) SessionMatches(ctx context.Context, sessionID int64) ([]MatchRecord, error) {
	rows, err := s.pool.Query(ctx, "session_matches", sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session matches: %w", err)
	}
	defer rows.Close()

	var out []MatchRecord
	for rows.Next() {
		var m MatchRecord
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Date,
			&m.TeamA[0], &m.TeamA[1], &m.TeamB[0], &m.TeamB[1],
			&m.ScoreA, &m.ScoreB); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// InsertMatch appends a match to a pending session and returns its ID.
// Returns ErrNotFound for unknown sessions and ErrSessionLocked when the
// session has already been locked in.
func (s *Store) InsertMatch(ctx context.Context, sessionID int64, m MatchRecord) (int64, error) {
	sess, err := s.SessionByID(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if sess.LockedAt != nil {
		return 0, ErrSessionLocked
	}

	var id int64
	err = s.pool.QueryRow(ctx, "insert_match",
		sessionID, m.Date,
		m.TeamA[0], m.TeamA[1], m.TeamB[0], m.TeamB[1],
		m.ScoreA, m.ScoreB,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert match: %w", err)
	}
	return id, nil
}

func noRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
