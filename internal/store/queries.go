package store

import (
	"database/sql"
	"fmt"
	"time"
)

// RecordLaunch sets appID's last-launch instant to now (stored in UTC).
// The write is an upsert: safe to retry and idempotent for a given instant.
func (s *Store) RecordLaunch(appID string, now time.Time) error {
	if s.FutureSchema() {
		return fmt.Errorf("record launch for %s: %w", appID, ErrFutureSchema)
	}

	query := `
		INSERT INTO launches (app_id, last_launch)
		VALUES (?, ?)
		ON CONFLICT(app_id) DO UPDATE SET last_launch = excluded.last_launch
	`

	_, err := s.db.Exec(query, appID, now.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record launch for %s: %w", appID, err)
	}

	return nil
}

// LastLaunch returns the most recent recorded use of appID: the later of the
// last explicit launch and the newest watcher touch. Returns nil if the
// application has never been used.
func (s *Store) LastLaunch(appID string) (*time.Time, error) {
	launch, err := s.lastLaunchRecord(appID)
	if err != nil {
		return nil, err
	}

	touch, err := s.lastTouch(appID)
	if err != nil {
		return nil, err
	}

	switch {
	case launch == nil:
		return touch, nil
	case touch == nil:
		return launch, nil
	case touch.After(*launch):
		return touch, nil
	default:
		return launch, nil
	}
}

func (s *Store) lastLaunchRecord(appID string) (*time.Time, error) {
	var ts string
	err := s.db.QueryRow("SELECT last_launch FROM launches WHERE app_id = ?", appID).Scan(&ts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last launch for %s: %w", appID, err)
	}

	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse last launch for %s: %w", appID, err)
	}

	return &t, nil
}

func (s *Store) lastTouch(appID string) (*time.Time, error) {
	query := `
		SELECT timestamp
		FROM usage_touches
		WHERE app_id = ?
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var ts string
	err := s.db.QueryRow(query, appID).Scan(&ts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last touch for %s: %w", appID, err)
	}

	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse touch timestamp for %s: %w", appID, err)
	}

	return &t, nil
}

// InsertTouch records one watcher-observed activity event.
func (s *Store) InsertTouch(touch *Touch) error {
	if s.FutureSchema() {
		return fmt.Errorf("insert touch for %s: %w", touch.AppID, ErrFutureSchema)
	}

	query := `
		INSERT INTO usage_touches (app_id, source, timestamp)
		VALUES (?, ?, ?)
	`

	_, err := s.db.Exec(query, touch.AppID, touch.Source, touch.Timestamp.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert touch for %s: %w", touch.AppID, err)
	}

	return nil
}

// TouchCountSince returns how many activity touches were recorded for appID
// at or after since.
func (s *Store) TouchCountSince(appID string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM usage_touches
		WHERE app_id = ? AND timestamp >= ?
	`

	var count int
	err := s.db.QueryRow(query, appID, since.UTC().Format(time.RFC3339)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count touches for %s: %w", appID, err)
	}

	return count, nil
}

// ListRecords returns all stored launch records ordered by application ID.
func (s *Store) ListRecords() ([]*UsageRecord, error) {
	rows, err := s.db.Query("SELECT app_id, last_launch FROM launches ORDER BY app_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list launch records: %w", err)
	}
	defer rows.Close()

	var records []*UsageRecord
	for rows.Next() {
		var rec UsageRecord
		var ts string

		if err := rows.Scan(&rec.AppID, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan launch record: %w", err)
		}

		rec.LastLaunch, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse last launch for %s: %w", rec.AppID, err)
		}

		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating launch records: %w", err)
	}

	return records, nil
}
