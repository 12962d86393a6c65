// Package database provides tenant instantiation
package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/security"
)

// TableCreator handles the creation of the database schema for a new tenant.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

// CreateSchema executes all necessary queries to build the tenant's database tables and indexes.
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

// SeedInitialContent adds the default scan required for a new tenant to function.
func (tc *TableCreator) SeedInitialContent(db *sql.DB) error {
	// Idempotently create the demo scan so a fresh tenant has a walkthrough
	// to point the capture agent at.
	var scanID string
	err := db.QueryRow("SELECT id FROM scans WHERE name = 'Demo Walkthrough'").Scan(&scanID)
	if err == sql.ErrNoRows {
		scanID = security.GenerateULID()
		_, err = db.Exec(`INSERT INTO scans (id, name, created_at) VALUES (?, ?, ?)`,
			scanID, "Demo Walkthrough", time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("failed to insert demo scan: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to check for demo scan: %w", err)
	}

	return nil
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS scans (id TEXT PRIMARY KEY, name TEXT NOT NULL, created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS scan_sessions (id TEXT PRIMARY KEY, scan_id TEXT NOT NULL REFERENCES scans(id), visitor_id TEXT NOT NULL, device TEXT NOT NULL, entry_point TEXT NOT NULL DEFAULT 'Direct', started_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, ended_at TIMESTAMP, duration INTEGER NOT NULL DEFAULT 0, total_moves INTEGER NOT NULL DEFAULT 0, total_zooms INTEGER NOT NULL DEFAULT 0)`,
	`CREATE TABLE IF NOT EXISTS scan_events (id TEXT PRIMARY KEY, session_id TEXT NOT NULL REFERENCES scan_sessions(id), type TEXT NOT NULL, position_x REAL, position_y REAL, position_z REAL, target_id TEXT, duration REAL, metadata TEXT, created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS scan_tags (id TEXT PRIMARY KEY, scan_id TEXT NOT NULL REFERENCES scans(id), tag_id TEXT NOT NULL, label TEXT NOT NULL, category TEXT NOT NULL DEFAULT '', position_x REAL NOT NULL, position_y REAL NOT NULL, position_z REAL NOT NULL, click_count INTEGER NOT NULL DEFAULT 0, dwell_time INTEGER NOT NULL DEFAULT 0)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_scan_sessions_scan_id ON scan_sessions(scan_id)`,
	`CREATE INDEX IF NOT EXISTS idx_scan_sessions_started_at ON scan_sessions(started_at)`,
	`CREATE INDEX IF NOT EXISTS idx_scan_events_session_id ON scan_events(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_scan_events_type ON scan_events(type)`,
	`CREATE INDEX IF NOT EXISTS idx_scan_events_created_at ON scan_events(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_scan_tags_scan_id ON scan_tags(scan_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_scan_tags_scan_tag ON scan_tags(scan_id, tag_id)`,
}
