package db

import (
	"context"
	"database/sql"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         SERIAL PRIMARY KEY,
		email      TEXT NOT NULL UNIQUE,
		password   TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id            SERIAL PRIMARY KEY,
		title         VARCHAR(100) NOT NULL,
		description   VARCHAR(500) NOT NULL,
		status        TEXT NOT NULL,
		due_date      TIMESTAMPTZ NOT NULL,
		creation_date TIMESTAMPTZ NOT NULL,
		completed_at  TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS tasks_title_idx ON tasks (title)`,
	`CREATE TABLE IF NOT EXISTS analytics_events (
		event_id         TEXT PRIMARY KEY,
		event_name       TEXT NOT NULL,
		event_time       TIMESTAMPTZ NOT NULL,
		user_id          INTEGER,
		session_id       TEXT,
		platform         TEXT NOT NULL,
		app_version      TEXT NOT NULL,
		device_locale    TEXT,
		source_event_key TEXT UNIQUE,
		properties       TEXT NOT NULL
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		email      TEXT NOT NULL UNIQUE,
		password   TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		title         TEXT NOT NULL,
		description   TEXT NOT NULL,
		status        TEXT NOT NULL,
		due_date      DATETIME NOT NULL,
		creation_date DATETIME NOT NULL,
		completed_at  DATETIME
	)`,
	`CREATE INDEX IF NOT EXISTS tasks_title_idx ON tasks (title)`,
	`CREATE TABLE IF NOT EXISTS analytics_events (
		event_id         TEXT PRIMARY KEY,
		event_name       TEXT NOT NULL,
		event_time       DATETIME NOT NULL,
		user_id          INTEGER,
		session_id       TEXT,
		platform         TEXT NOT NULL,
		app_version      TEXT NOT NULL,
		device_locale    TEXT,
		source_event_key TEXT UNIQUE,
		properties       TEXT NOT NULL
	)`,
}

// Migrate creates the tables the service needs. Safe to run on every start.
func Migrate(ctx context.Context, dbx *sql.DB, driver string) error {
	stmts := postgresSchema
	if driver == DriverSQLite {
		stmts = sqliteSchema
	}

	for i, stmt := range stmts {
		if _, err := dbx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i, err)
		}
	}
	return nil
}
