// Package postgres is a parameter store backed by a single PostgreSQL table.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"idproof/pkg/platform/sentinel"
)

const schema = `
CREATE TABLE IF NOT EXISTS parameters (
	name       TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// Store reads parameters from the parameters table.
type Store struct {
	db    *sql.DB
	clock func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for updated_at.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New constructs a PostgreSQL-backed parameter store.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// EnsureSchema creates the parameters table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create parameters table: %w", err)
	}
	return nil
}

// Load returns the parameter value, or sentinel.ErrNotFound.
func (s *Store) Load(ctx context.Context, name string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM parameters WHERE name = $1`, name).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("load parameter %s: %w: %w", name, sentinel.ErrUnavailable, err)
	}
	return value, nil
}

// Put upserts a parameter.
func (s *Store) Put(ctx context.Context, name, value string) error {
	query := `
		INSERT INTO parameters (name, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, name, value, s.clock()); err != nil {
		return fmt.Errorf("put parameter %s: %w", name, err)
	}
	return nil
}
