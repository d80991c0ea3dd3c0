// Package store provides the SQLite-backed offline cache.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/driftchat/driftchat/internal/logging"
)

// Store wraps a SQLite database holding the offline message and channel
// cache. It satisfies the bridge's offline storage capability (SetLogger,
// Close).
type Store struct {
	sql *sql.DB

	mu     sync.Mutex
	log    *logging.Logger
	closed bool
}

// Open opens (or creates) the cache database at the given path and runs
// migrations. Use ":memory:" for an in-memory database (useful for tests).
func Open(path string, log *logging.Logger) (*Store, error) {
	if log == nil {
		log = logging.Nop()
	}
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	s := &Store{sql: sqlDB, log: log.Sub("store")}

	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	s.log.Info().Str("path", path).Msg("offline cache opened")
	return s, nil
}

// SetLogger replaces the store's logger. The connection bridge binds its own
// logger in here when the store is attached to it.
func (s *Store) SetLogger(log *logging.Logger) {
	if log == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = log.Sub("store")
}

// Close closes the database connection. Idempotent: the bridge closes the
// store during teardown, and the owner may close it again.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.log.Info().Msg("closing offline cache")
	return s.sql.Close()
}

// SQL returns the underlying *sql.DB for direct queries.
func (s *Store) SQL() *sql.DB {
	return s.sql
}

func (s *Store) logger() *logging.Logger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log
}

// migrate runs all pending migrations.
func (s *Store) migrate() error {
	if _, err := s.sql.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	for _, m := range migrations {
		applied, err := s.isMigrationApplied(m.Version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		s.logger().Info().Int("version", m.Version).Str("name", m.Name).Msg("applying migration")

		tx, err := s.sql.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

func (s *Store) isMigrationApplied(version int) (bool, error) {
	var count int
	err := s.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking migration %d: %w", version, err)
	}
	return count > 0, nil
}
