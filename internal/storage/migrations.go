package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	Up      string
}

// migrations holds all database migrations in order.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Up: `
			-- Company accounts
			CREATE TABLE IF NOT EXISTS companies (
				id TEXT PRIMARY KEY,
				username TEXT UNIQUE NOT NULL,
				email TEXT UNIQUE NOT NULL,
				password_hash TEXT NOT NULL,
				anonymous_id TEXT UNIQUE NOT NULL,
				company_name TEXT,
				contact_email TEXT,
				phone TEXT,
				address TEXT,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			);

			-- Capacity offers
			CREATE TABLE IF NOT EXISTS resources (
				id TEXT PRIMARY KEY,
				company_id TEXT NOT NULL,
				competence TEXT NOT NULL,
				price REAL NOT NULL,
				price_type TEXT NOT NULL,
				period_from DATETIME NOT NULL,
				period_to DATETIME NOT NULL,
				comments TEXT,
				is_taken INTEGER NOT NULL DEFAULT 0,
				taken_by TEXT,
				taken_at DATETIME,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE CASCADE
			);

			-- Thread messages. thread_id equals the id of the thread's
			-- first message.
			CREATE TABLE IF NOT EXISTS messages (
				id TEXT PRIMARY KEY,
				thread_id TEXT NOT NULL,
				from_company_id TEXT NOT NULL,
				to_company_id TEXT NOT NULL,
				resource_id TEXT NOT NULL,
				subject TEXT NOT NULL,
				content TEXT NOT NULL,
				system INTEGER NOT NULL DEFAULT 0,
				read_at DATETIME,
				created_at DATETIME NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages(thread_id, created_at);
			CREATE INDEX IF NOT EXISTS idx_messages_to ON messages(to_company_id, read_at);
			CREATE INDEX IF NOT EXISTS idx_messages_resource ON messages(resource_id);

			-- Contact disclosures. PRIMARY KEY on thread_id enforces the
			-- at-most-one-per-thread rule under concurrent writers.
			CREATE TABLE IF NOT EXISTS disclosures (
				thread_id TEXT PRIMARY KEY,
				from_company_id TEXT NOT NULL,
				to_company_id TEXT NOT NULL,
				created_at DATETIME NOT NULL
			);

			-- Refresh tokens
			CREATE TABLE IF NOT EXISTS refresh_tokens (
				id TEXT PRIMARY KEY,
				company_id TEXT NOT NULL,
				token_hash TEXT UNIQUE NOT NULL,
				expires_at DATETIME NOT NULL,
				created_at DATETIME NOT NULL,
				revoked INTEGER NOT NULL DEFAULT 0,
				revoked_at DATETIME,
				FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE CASCADE
			);

			CREATE INDEX IF NOT EXISTS idx_refresh_tokens_hash ON refresh_tokens(token_hash);
		`,
	},
}

func runMigrations(db *sql.DB) error {
	// Create migrations table if not exists
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	// Apply pending migrations
	for _, m := range migrations {
		if m.Version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction for migration %d: %w", m.Version, err)
		}

		_, err = tx.Exec(m.Up)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("execute migration %d (%s): %w", m.Version, m.Name, err)
		}

		_, err = tx.Exec(
			"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
			m.Version, m.Name, time.Now(),
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}
