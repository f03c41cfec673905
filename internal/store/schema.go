package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Dates and clock times are stored as text (YYYY-MM-DD, HH:MM:SS) so both
// drivers scan them into strings unchanged.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id           TEXT PRIMARY KEY,
		college      TEXT NOT NULL,
		instructor   TEXT NOT NULL,
		section      TEXT NOT NULL,
		course       TEXT NOT NULL,
		session_date TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_date ON sessions (session_date, created_at)`,
	`CREATE TABLE IF NOT EXISTS attendance_records (
		id           TEXT PRIMARY KEY,
		session_id   TEXT NOT NULL REFERENCES sessions(id),
		student_name TEXT NOT NULL,
		student_id   TEXT NOT NULL,
		status       TEXT NOT NULL CHECK (status IN ('present', 'late')),
		scan_date    TEXT NOT NULL,
		scan_time    TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_attendance_scan ON attendance_records (session_id, student_id, scan_date)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_session_time ON attendance_records (session_id, scan_time)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id           TEXT PRIMARY KEY,
		college      TEXT NOT NULL,
		instructor   TEXT NOT NULL,
		section      TEXT NOT NULL,
		course       TEXT NOT NULL,
		session_date TEXT NOT NULL,
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_date ON sessions (session_date, created_at)`,
	`CREATE TABLE IF NOT EXISTS attendance_records (
		id           TEXT PRIMARY KEY,
		session_id   TEXT NOT NULL REFERENCES sessions(id),
		student_name TEXT NOT NULL,
		student_id   TEXT NOT NULL,
		status       TEXT NOT NULL CHECK (status IN ('present', 'late')),
		scan_date    TEXT NOT NULL,
		scan_time    TEXT NOT NULL,
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_attendance_scan ON attendance_records (session_id, student_id, scan_date)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_session_time ON attendance_records (session_id, scan_time)`,
}

// Migrate creates the sessions and attendance_records tables if missing.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	var stmts []string
	switch driver {
	case DriverPostgres:
		stmts = postgresSchema
	case DriverSQLite:
		stmts = sqliteSchema
	default:
		return fmt.Errorf("unknown driver %q", driver)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
