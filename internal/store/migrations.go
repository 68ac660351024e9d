package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "launches: one last-launch instant per application",
		SQL: `
CREATE TABLE launches (
    app_id      TEXT PRIMARY KEY,
    last_launch TEXT NOT NULL
);
`,
	},
	{
		Version:     2,
		Description: "usage_touches: filesystem activity observed by the watcher",
		SQL: `
CREATE TABLE usage_touches (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    app_id    TEXT NOT NULL,
    source    TEXT NOT NULL,
    timestamp TEXT NOT NULL
);

CREATE INDEX idx_touches_app ON usage_touches(app_id, timestamp DESC);
`,
	},
}

// migrate brings the on-disk schema up to the newest version this build
// knows about. Each missing step runs in its own transaction together with
// the recording of its version row, so a crash mid-migration leaves the
// store at the previous consistent version. Downgrades are never attempted:
// if the stored version is ahead of the code, migrate records that fact on
// the Store and leaves the schema untouched.
func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	stored, err := s.SchemaVersion()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	latest := migrations[len(migrations)-1].Version
	if stored > latest {
		s.futureVersion = stored
		return nil
	}

	for _, m := range migrations {
		if m.Version <= stored {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current on-disk schema version. A brand-new
// store (no version rows yet) reports version 0.
func (s *Store) SchemaVersion() (int, error) {
	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
