package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Base project schema
// 2 - stream_components backfilled from streams.composition_json
// 3 - reactions (created by the schema itself, no data to move)
const currentSchemaVersion = 3

// Options tunes how a project database is opened.
type Options struct {
	// BusyTimeout is how long SQLite waits on a locked database per statement.
	BusyTimeout time.Duration

	// OpenRetries bounds how many times opening is retried while another
	// process holds the database lock. Zero disables retrying.
	OpenRetries uint64

	// Logger receives retry diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
}

// DefaultOptions returns the options used by Open.
func DefaultOptions() Options {
	return Options{
		BusyTimeout: 5 * time.Second,
		OpenRetries: 3,
	}
}

// Store is the persistence facade over a project's SQLite database.
// It assumes a single writer: one desktop user in one process.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens a project database at the given path with default
// options. Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - busy timeout for lock contention
//   - Foreign key enforcement (balance records cascade with their unit)
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	return OpenContext(context.Background(), path, DefaultOptions())
}

// OpenContext opens a project database, retrying with exponential backoff
// while the file is locked by another process.
func OpenContext(ctx context.Context, path string, opts Options) (*Store, error) {
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = DefaultOptions().BusyTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var db *sql.DB
	operation := func() error {
		var err error
		db, err = openOnce(path, opts.BusyTimeout)
		if err == nil {
			return nil
		}
		if isLocked(err) {
			logger.Warn("database locked, retrying", zap.String("path", path), zap.Error(err))
			return err
		}
		return backoff.Permanent(err)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), opts.OpenRetries), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

func openOnce(path string, busyTimeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db, busyTimeout); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}

// isLocked reports whether err is SQLite lock contention.
func isLocked(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// SetClock replaces the timestamp source. Used by tests.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB, busyTimeout time.Duration) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeout.Milliseconds()),
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 2 {
		if err := migrateToV2(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV2 fills stream_components for databases whose streams were
// written before the membership table existed. No-op on a fresh database.
func migrateToV2(db *sql.DB) error {
	_, err := db.Exec(`
		INSERT OR IGNORE INTO stream_components (stream_id, material_id, fraction)
		SELECT s.stream_id, j.key, j.value
		FROM streams s, json_each(s.composition_json) j
	`)
	if err != nil {
		return fmt.Errorf("migrate to v2: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
