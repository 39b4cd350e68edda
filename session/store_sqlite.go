package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

const sqliteOpTimeout = 2 * time.Second

// SQLiteStore persists the session record in a per-tab SQLite file.
//
// The file is transient state: Clear deletes both rows, and a fresh tab gets
// a fresh database. SQLite is used instead of plain files so the two-key
// write in Save is atomic.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the store at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("empty store path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One tab, one writer.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS session_state (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Load returns the stored session or ErrNoSession.
func (s *SQLiteStore) Load() (Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	token, err := s.get(ctx, KeyToken)
	if err != nil {
		return Session{}, err
	}
	userJSON, err := s.get(ctx, KeyUser)
	if err != nil {
		return Session{}, err
	}
	if token == "" {
		return Session{}, ErrNoSession
	}

	var u User
	if err := json.Unmarshal([]byte(userJSON), &u); err != nil {
		_ = s.Clear()
		return Session{}, ErrStorageCorrupt
	}
	u.Role = NormalizeRole(string(u.Role))

	return Session{Token: token, User: u}, nil
}

// Save persists the session. Both keys are written in one transaction.
func (s *SQLiteStore) Save(sess Session) error {
	b, err := json.Marshal(sess.User)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const upsert = `
		INSERT INTO session_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`

	if _, err := tx.ExecContext(ctx, upsert, KeyToken, sess.Token); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, upsert, KeyUser, string(b)); err != nil {
		return err
	}
	return tx.Commit()
}

// Clear removes both keys.
func (s *SQLiteStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM session_state WHERE key IN (?, ?)`, KeyToken, KeyUser)
	return err
}

// get reads a single key. A missing row maps to ErrNoSession.
func (s *SQLiteStore) get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_state WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// put stores a raw value under a key, bypassing Save's marshalling.
// Test hook for corrupt-storage scenarios.
func (s *SQLiteStore) put(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}
