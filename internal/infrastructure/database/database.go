package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	dirPermissions  = 0750
	filePermissions = 0600

	msPerSecond = 1000

	connectionTimeout = 5 * time.Second
)

// DB wraps a sql.DB opened on the node's SQLite journal file.
type DB struct {
	*sql.DB
	path string
}

// Config maps the journal section of config.yaml.
type Config struct {
	// Path is the SQLite file. Its directory is created if missing.
	Path string

	// WALMode enables write-ahead logging so the journal survives an
	// ungraceful reset without corruption.
	WALMode bool

	// BusyTimeout is the lock wait in seconds.
	BusyTimeout int
}

// Open opens (creating if needed) the database at cfg.Path and pings it.
//
// Returns:
//   - *DB: Connected database wrapper
//   - error: If the directory, file or connection cannot be set up
func Open(cfg Config) (*DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("opening database: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), dirPermissions); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	// See: https://github.com/mattn/go-sqlite3#connection-string
	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
		cfg.Path,
		cfg.BusyTimeout*msPerSecond,
	)
	if cfg.WALMode {
		connStr += "&_journal_mode=WAL&_synchronous=NORMAL"
	}

	sqlDB, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One writer: the node writes a handful of rows per boot.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	db := &DB{DB: sqlDB, path: cfg.Path}

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck // File may not exist until first write

	return db, nil
}

// Close closes the connection.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// HealthCheck runs a trivial query.
func (db *DB) HealthCheck(ctx context.Context) error {
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}
