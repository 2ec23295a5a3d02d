// Package history records install, remove, and update events in a
// sqlite journal under the prefix.
package history

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Journal provides sqlite-backed event logging for lilith.
type Journal struct {
	db *sql.DB
}

// Open creates a Journal at the specified database path.
// Use ":memory:" for in-memory databases (useful for testing).
func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	j := &Journal{db: db}
	if err := j.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

func (j *Journal) createSchema() error {
	if _, err := j.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
