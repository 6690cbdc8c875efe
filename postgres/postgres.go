// Package postgres implements proofread.PreferenceStore on PostgreSQL using
// a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/proofread"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ proofread.PreferenceStore = (*Store)(nil)

const schema = `CREATE TABLE IF NOT EXISTS user_languages (
	user_id    BIGINT PRIMARY KEY,
	language   TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists interface languages in PostgreSQL.
type Store struct {
	db DB
}

// New wraps db without touching the schema.
func New(db DB) *Store {
	return &Store{db: db}
}

// Connect opens a pool for databaseURL and applies the schema. The caller
// closes the returned pool.
func Connect(ctx context.Context, databaseURL string) (*Store, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, strings.TrimSpace(databaseURL))
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: connect: %w", err)
	}
	s := New(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return s, pool, nil
}

// Migrate creates the preference table when it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: create schema: %w", err)
	}
	return nil
}

// Language returns the stored language for userID, or proofread.ErrNotFound.
func (s *Store) Language(ctx context.Context, userID int64) (proofread.Language, error) {
	var lang string
	err := s.db.QueryRow(ctx,
		`SELECT language FROM user_languages WHERE user_id = $1`, userID).Scan(&lang)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", proofread.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("postgres: %w", err)
	}
	return proofread.Language(lang), nil
}

// SetLanguage stores lang for userID, replacing any previous value.
func (s *Store) SetLanguage(ctx context.Context, userID int64, lang proofread.Language) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO user_languages (user_id, language, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET
			language = EXCLUDED.language,
			updated_at = EXCLUDED.updated_at`,
		userID, string(lang))
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	return nil
}
