// Package store handles all Postgres access for source data (users,
// sessions, matches) and the derived-table write-back that follows a
// recompute. All queries go through prepared statements registered in
// internal/db.
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSessionLocked is returned for writes against a locked session.
	ErrSessionLocked = errors.New("session already locked")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("already exists")
)

// Store provides typed access to the RallyRank schema.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store on top of an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
