// Package store keeps enrolled users and their fingerprint templates in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// BusyTimeoutMillis is how long a connection waits on a locked database.
const BusyTimeoutMillis = 5000

// connPragmas run on every pooled connection as it is opened.
var connPragmas = []string{
	"foreign_keys(1)",
	fmt.Sprintf("busy_timeout(%d)", BusyTimeoutMillis),
	"journal_mode(WAL)",
}

// Store is the enrollment gallery database.
type Store struct {
	db   *sql.DB
	path string
}

// dsn builds a modernc sqlite URI for path carrying connPragmas.
func dsn(path string) string {
	q := url.Values{}
	for _, p := range connPragmas {
		q.Add("_pragma", p)
	}
	return "file:" + path + "?" + q.Encode()
}

// New opens the database at dbPath, creating it if needed, and migrates the schema
// to the latest version.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", dbPath, err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// Close closes every pooled connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the connection pool for queries outside the repositories.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }
