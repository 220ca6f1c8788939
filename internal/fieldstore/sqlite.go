package fieldstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Revision describes the last write to a stored field value
type Revision struct {
	ID        string
	UpdatedAt time.Time
}

// SQLiteStore persists one named field value in SQLite
type SQLiteStore struct {
	db     *sql.DB
	key    string
	schema Schema

	mu     sync.Mutex
	height int
}

// OpenSQLite opens (or creates) the field database and binds the store to key.
// Use ":memory:" for an in-memory database.
func OpenSQLite(path, key string, schema Schema) (*SQLiteStore, error) {
	if key == "" {
		return nil, errors.New("fieldstore: key is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS field_values (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		revision   TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db, key: key, schema: schema}, nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetValue(ctx context.Context) (json.RawMessage, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM field_values WHERE key = ?", s.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get field %q: %w", s.key, err)
	}
	return json.RawMessage(value), nil
}

func (s *SQLiteStore) SetValue(ctx context.Context, value json.RawMessage) error {
	if IsAbsent(value) {
		return s.ClearValue(ctx)
	}
	if !json.Valid(value) {
		return fmt.Errorf("set field %q: value is not valid JSON", s.key)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO field_values (key, value, revision, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, revision = excluded.revision, updated_at = excluded.updated_at`,
		s.key, []byte(value), uuid.NewString(), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("set field %q: %w", s.key, err)
	}
	return nil
}

func (s *SQLiteStore) ClearValue(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM field_values WHERE key = ?", s.key); err != nil {
		return fmt.Errorf("clear field %q: %w", s.key, err)
	}
	return nil
}

// Revision returns the revision of the stored value; ok is false when no value is stored
func (s *SQLiteStore) Revision(ctx context.Context) (rev Revision, ok bool, err error) {
	var updated string
	err = s.db.QueryRowContext(ctx,
		"SELECT revision, updated_at FROM field_values WHERE key = ?", s.key).Scan(&rev.ID, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Revision{}, false, nil
	}
	if err != nil {
		return Revision{}, false, fmt.Errorf("get revision %q: %w", s.key, err)
	}
	rev.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return rev, true, nil
}

func (s *SQLiteStore) SetHeight(pixels int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.height = pixels
}

// Height returns the last requested frame height
func (s *SQLiteStore) Height() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.height
}

func (s *SQLiteStore) Schema() Schema {
	return s.schema
}
