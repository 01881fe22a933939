package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all SQLite schema migrations. Every statement is idempotent,
// so the full list is replayed on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS library_items (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		type       TEXT NOT NULL
		           CHECK(type IN ('story','worksheet','visual-aid','reading-assessment','conversation')),
		title      TEXT NOT NULL,
		content    TEXT NOT NULL DEFAULT '',
		metadata   TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_library_items_user_created ON library_items(user_id, created_at DESC)`,

	`CREATE INDEX IF NOT EXISTS idx_library_items_type ON library_items(type)`,
}

// MigratePostgres applies the Postgres schema.
func MigratePostgres(ctx context.Context, db *sql.DB) error {
	for i, stmt := range postgresMigrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres migration %d: %w", i, err)
		}
	}
	return nil
}

var postgresMigrations = []string{
	`CREATE TABLE IF NOT EXISTS library_items (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		type       TEXT NOT NULL
		           CHECK(type IN ('story','worksheet','visual-aid','reading-assessment','conversation')),
		title      TEXT NOT NULL,
		content    TEXT NOT NULL DEFAULT '',
		metadata   JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_library_items_user_created ON library_items(user_id, created_at DESC)`,

	`CREATE INDEX IF NOT EXISTS idx_library_items_type ON library_items(type)`,
}
