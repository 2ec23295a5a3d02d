package history

import (
	"fmt"
	"time"
)

// Actions recorded in the journal.
const (
	ActionInstall = "install"
	ActionRemove  = "remove"
	ActionUpdate  = "update"
)

// Event is one journal row.
type Event struct {
	ID         int64
	Package    string
	Version    string
	Action     string
	OccurredAt time.Time
}

// Record appends an event for package name.
func (j *Journal) Record(name, version, action string) error {
	query := `
		INSERT INTO events (package, version, action, occurred_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := j.db.Exec(query, name, version, action, time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record %s event for %s: %w", action, name, err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (j *Journal) Recent(limit int) ([]Event, error) {
	query := `
		SELECT id, package, version, action, occurred_at
		FROM events
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := j.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var occurredAt string
		if err := rows.Scan(&ev.ID, &ev.Package, &ev.Version, &ev.Action, &occurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.OccurredAt, err = time.Parse(time.RFC3339, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse event timestamp: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return events, nil
}

// ForPackage returns every event for name, newest first.
func (j *Journal) ForPackage(name string) ([]Event, error) {
	query := `
		SELECT id, package, version, action, occurred_at
		FROM events
		WHERE package = ?
		ORDER BY id DESC
	`
	rows, err := j.db.Query(query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for %s: %w", name, err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var occurredAt string
		if err := rows.Scan(&ev.ID, &ev.Package, &ev.Version, &ev.Action, &occurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.OccurredAt, err = time.Parse(time.RFC3339, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse event timestamp: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return events, nil
}
