package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// DefaultPageSize is the row count per page for card loads. LoadAll
// pages until exhaustion, so this only bounds memory per round trip.
const DefaultPageSize = 1000

// Store wraps the SQLite connection and hands out repositories.
type Store struct {
	db       *sql.DB
	pageSize int
}

// Open connects to the SQLite database at dsn, applies the recommended
// pragmas, and creates the schema if missing.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, pageSize: DefaultPageSize}, nil
}

// SetPageSize overrides the card-load page size. Values < 1 are ignored.
func (s *Store) SetPageSize(n int) {
	if n >= 1 {
		s.pageSize = n
	}
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Cards returns the card repository backed by this store.
func (s *Store) Cards() CardRepo {
	return &cardRepo{db: s.db, pageSize: s.pageSize}
}

// History returns the answer-history repository backed by this store.
func (s *Store) History() HistoryRepo {
	return &historyRepo{db: s.db}
}

// Progress returns the advisory quiz-progress repository.
func (s *Store) Progress() ProgressRepo {
	return &progressRepo{db: s.db}
}

// applyPragmas configures SQLite for single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. STUDYFLOW_DB environment variable
// 2. $XDG_DATA_HOME/studyflow/studyflow.db
// 3. ~/.local/share/studyflow/studyflow.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("STUDYFLOW_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "studyflow", "studyflow.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
