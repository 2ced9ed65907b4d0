// package store persists the client session in a local SQLite database.
//
// Three keys exist: the application token, and the PKCE codeVerifier/state
// pair that only lives for the duration of the login redirect round trip.
package store

import (
	"database/sql"
	"fmt"
	"time"
)

const (
	keyToken    = "token"
	keyVerifier = "codeVerifier"
	keyState    = "state"
)

const schema = `
	CREATE TABLE IF NOT EXISTS session_store (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)
`

// Store is a small key-value layer over a SQLite connection.
type Store struct {
	db *sql.DB
}

// New creates a Store and ensures its schema exists.
func New(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create session schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM session_store WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) set(key, value string) error {
	query := `
		INSERT INTO session_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.Exec(query, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *Store) delete(keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.Exec(`DELETE FROM session_store WHERE key = ?`, key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return nil
}

// Token returns the persisted application token, or "" when unauthenticated.
func (s *Store) Token() (string, error) {
	return s.get(keyToken)
}

// SetToken persists the application token.
func (s *Store) SetToken(token string) error {
	return s.set(keyToken, token)
}

// ClearToken removes the application token.
func (s *Store) ClearToken() error {
	return s.delete(keyToken)
}

// SaveArtifact persists the PKCE verifier and anti-forgery state for the
// redirect round trip.
func (s *Store) SaveArtifact(verifier, state string) error {
	if err := s.set(keyVerifier, verifier); err != nil {
		return err
	}
	return s.set(keyState, state)
}

// Artifact returns the persisted verifier and state; both are "" when no
// login is in flight.
func (s *Store) Artifact() (verifier, state string, err error) {
	if verifier, err = s.get(keyVerifier); err != nil {
		return "", "", err
	}
	if state, err = s.get(keyState); err != nil {
		return "", "", err
	}
	return verifier, state, nil
}

// ClearArtifact erases the verifier and state. Called once the artifact is
// consumed, on success and on every failure path.
func (s *Store) ClearArtifact() error {
	return s.delete(keyVerifier, keyState)
}
