package database

import (
	"database/sql"
	"fmt"
)

// TableCreator handles the creation of the event log schema.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

// CreateSchema executes all necessary queries to build the event table and
// its indexes. Safe to run at every startup; only additive columns are
// ever introduced.
func (tc *TableCreator) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}

// The event log is append-only: rows are inserted by the ingestor and
// never updated or deleted. Optional fields stay NULL when absent so that
// aggregation can exclude them. meta is an opaque serialized blob.
var tables = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts TEXT NOT NULL,
		event_type TEXT NOT NULL,
		client_id TEXT,
		session_id TEXT,
		path TEXT,
		city_input TEXT,
		city_resolved TEXT,
		country TEXT,
		country_code TEXT,
		target_date TEXT,
		purpose TEXT,
		link_url TEXT,
		error_code TEXT,
		error_message TEXT,
		load_ms REAL,
		meta TEXT
	)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts)`,
	`CREATE INDEX IF NOT EXISTS idx_events_type ON events(event_type)`,
	`CREATE INDEX IF NOT EXISTS idx_events_client_ts ON events(client_id, ts)`,
}
