package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session groups matches entered together. Matches in a session reach
// the rating engine only after the session is locked; locking fires the
// matches_changed NOTIFY trigger that drives a recompute.
type Session struct {
	ID         int64      `json:"id"`
	Token      uuid.UUID  `json:"token"`
	Name       string     `json:"name"`
	Date       string     `json:"date"`
	CreatedBy  *int64     `json:"created_by,omitempty"`
	LockedAt   *time.Time `json:"locked_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	MatchCount int        `json:"match_count"`
}

// Pending reports whether the session still accepts matches.
func (s Session) Pending() bool { return s.LockedAt == nil }

// CreateSession opens a new pending session owned by userID (zero for
// anonymous deployments).
func (s *Store) CreateSession(ctx context.Context, name, date string, userID int64) (Session, error) {
	sess := Session{
		Token: uuid.New(),
		Name:  name,
		Date:  date,
	}
	var createdBy any
	if userID != 0 {
		createdBy = userID
		sess.CreatedBy = &userID
	}
	err := s.pool.QueryRow(ctx, "insert_session", sess.Token, name, date, createdBy).
		Scan(&sess.ID, &sess.CreatedAt)
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// SessionByID fetches one session. Returns ErrNotFound for unknown IDs.
func (s *Store) SessionByID(ctx context.Context, id int64) (Session, error) {
	var sess Session
	err := s.pool.QueryRow(ctx, "session_by_id", id).Scan(
		&sess.ID, &sess.Token, &sess.Name, &sess.Date,
		&sess.CreatedBy, &sess.LockedAt, &sess.CreatedAt)
	if noRows(err) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("query session %d: %w", id, err)
	}

	if err := s.pool.QueryRow(ctx, "session_match_count", id).Scan(&sess.MatchCount); err != nil {
		return Session{}, fmt.Errorf("count session matches: %w", err)
	}
	return sess, nil
}

// ListSessions returns all sessions, newest first, with match counts.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.pool.Query(ctx, "list_sessions")
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Token, &sess.Name, &sess.Date,
			&sess.CreatedBy, &sess.LockedAt, &sess.CreatedAt, &sess.MatchCount); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// LockSession locks in a pending session, making its matches visible to
// the next recompute. Returns ErrSessionLocked if already locked and
// ErrNotFound for unknown IDs.
func (s *Store) LockSession(ctx context.Context, id int64) (time.Time, error) {
	var lockedAt time.Time
	err := s.pool.QueryRow(ctx, "lock_session", id).Scan(&lockedAt)
	if noRows(err) {
		// Either the session does not exist or it is already locked;
		// a second lookup distinguishes the two for the caller.
		if _, lookupErr := s.SessionByID(ctx, id); lookupErr != nil {
			return time.Time{}, lookupErr
		}
		return time.Time{}, ErrSessionLocked
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("lock session %d: %w", id, err)
	}
	return lockedAt, nil
}
