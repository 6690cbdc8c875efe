// Package sqlite implements proofread.PreferenceStore on an embedded SQLite
// database using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/proofread"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

var _ proofread.PreferenceStore = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS user_languages (
	user_id    INTEGER NOT NULL PRIMARY KEY,
	language   TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);`

// Store persists interface languages in a single SQLite table.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path and applies the schema.
// Use ":memory:" for a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	// SQLite serializes writers; one connection also keeps an in-memory
	// database alive and shared.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Language returns the stored language for userID, or proofread.ErrNotFound.
func (s *Store) Language(ctx context.Context, userID int64) (proofread.Language, error) {
	var lang string
	err := s.db.QueryRowContext(ctx,
		`SELECT language FROM user_languages WHERE user_id = ?`, userID).Scan(&lang)
	if errors.Is(err, sql.ErrNoRows) {
		return "", proofread.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("sqlite: %w", err)
	}
	return proofread.Language(lang), nil
}

// SetLanguage stores lang for userID, replacing any previous value.
func (s *Store) SetLanguage(ctx context.Context, userID int64, lang proofread.Language) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_languages (user_id, language, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			language = excluded.language,
			updated_at = excluded.updated_at`,
		userID, string(lang), s.now().UTC())
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	return nil
}
