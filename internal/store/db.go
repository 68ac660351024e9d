package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrFutureSchema is returned for write operations when the on-disk schema
// was created by a newer version of idlewipe. Reads still work; migrating
// backwards is never attempted.
var ErrFutureSchema = errors.New("store schema is newer than this version of idlewipe (upgrade idlewipe, or remove the store to start fresh)")

// Store provides SQLite database operations for the idle-usage tracker.
type Store struct {
	db *sql.DB

	// futureVersion is non-zero when the on-disk schema version is greater
	// than the newest migration known to this build.
	futureVersion int
}

// New opens (or creates) the store at dbPath, configures pragmas, and brings
// the schema up to date. Use ":memory:" for in-memory stores (useful for
// testing). A store written by newer code is opened read-compatible without
// migrating; writes then fail with ErrFutureSchema.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only allows one writer at a time; the busy timeout makes a
	// second concurrent invocation wait instead of failing immediately.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// FutureSchema reports whether the store was written by a newer version of
// idlewipe than this build knows about.
func (s *Store) FutureSchema() bool {
	return s.futureVersion != 0
}

// RecordLaunch opens the store at dbPath, records a launch of appID at now,
// and closes the store again. No connection is held across calls.
func RecordLaunch(dbPath, appID string, now time.Time) error {
	s, err := New(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.RecordLaunch(appID, now)
}

// LastLaunch opens the store at dbPath, reads the last recorded use of
// appID, and closes the store again. Returns nil if appID was never used.
func LastLaunch(dbPath, appID string) (*time.Time, error) {
	s, err := New(dbPath)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.LastLaunch(appID)
}
