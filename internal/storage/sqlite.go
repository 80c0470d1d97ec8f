package storage

import (
	"context"
	"database/sql"
	"fmt"

	// Pure-Go SQLite driver.
	_ "modernc.org/sqlite"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	path string
	db   *sql.DB

	companies   *sqliteCompanyRepo
	resources   *sqliteResourceRepo
	messages    *sqliteMessageRepo
	disclosures *sqliteDisclosureRepo
	tokens      *sqliteTokenRepo
}

// NewSQLiteStorage creates a new SQLite storage.
func NewSQLiteStorage(path string) *SQLiteStorage {
	return &SQLiteStorage{path: path}
}

// Open initializes the database connection.
func (s *SQLiteStorage) Open() error {
	ctx := context.Background()

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", s.path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	s.db = db

	// Initialize repositories
	s.companies = &sqliteCompanyRepo{db: db}
	s.resources = &sqliteResourceRepo{db: db}
	s.messages = &sqliteMessageRepo{db: db}
	s.disclosures = &sqliteDisclosureRepo{db: db}
	s.tokens = &sqliteTokenRepo{db: db}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying database connection for health checks.
func (s *SQLiteStorage) DB() *sql.DB {
	return s.db
}

// Migrate runs database migrations.
func (s *SQLiteStorage) Migrate() error {
	return runMigrations(s.db)
}

// Companies returns the company repository.
func (s *SQLiteStorage) Companies() CompanyRepository {
	return s.companies
}

// Resources returns the resource repository.
func (s *SQLiteStorage) Resources() ResourceRepository {
	return s.resources
}

// Messages returns the message repository.
func (s *SQLiteStorage) Messages() MessageRepository {
	return s.messages
}

// Disclosures returns the disclosure repository.
func (s *SQLiteStorage) Disclosures() DisclosureRepository {
	return s.disclosures
}

// Tokens returns the token repository.
func (s *SQLiteStorage) Tokens() TokenRepository {
	return s.tokens
}
