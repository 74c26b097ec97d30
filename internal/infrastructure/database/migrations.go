package database

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

// MigrationsFS holds the *.up.sql files. The migrations package sets it
// from an embedded filesystem at init.
var MigrationsFS fs.FS

// MigrationsDir is the directory within MigrationsFS to read.
var MigrationsDir = "."

// Migration is one schema change loaded from NNNN_name.up.sql.
type Migration struct {
	// Version is the leading YYYYMMDD_HHMMSS of the filename.
	Version string
	Name    string
	SQL     string
}

// Migrate applies pending migrations in version order, each in its own
// transaction, and records them in schema_migrations. A failed migration
// is rolled back and later ones are not attempted.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	applied, err := db.AppliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := db.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("applying migration %s (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// AppliedVersions returns the set of recorded migration versions.
func (db *DB) AppliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("querying migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning migration row: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating migrations: %w", err)
	}
	return applied, nil
}

func (db *DB) applyMigration(ctx context.Context, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("executing SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
		m.Version,
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}
	return tx.Commit()
}

// loadMigrations reads every *.up.sql file, sorted by version.
func loadMigrations() ([]Migration, error) {
	if MigrationsFS == nil {
		return nil, nil
	}

	entries, err := fs.ReadDir(MigrationsFS, MigrationsDir)
	if err != nil {
		return nil, err
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version, name, ok := parseMigrationFilename(entry.Name())
		if !ok {
			continue
		}
		body, err := fs.ReadFile(MigrationsFS, path.Join(MigrationsDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		migrations = append(migrations, Migration{Version: version, Name: name, SQL: string(body)})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// parseMigrationFilename splits "20261015_090000_journal.up.sql" into
// version "20261015_090000" and name "journal".
func parseMigrationFilename(filename string) (version, name string, ok bool) {
	base, found := strings.CutSuffix(filename, ".up.sql")
	if !found {
		return "", "", false
	}
	parts := strings.SplitN(base, "_", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	version = parts[0] + "_" + parts[1]
	name = base
	if len(parts) == 3 {
		name = parts[2]
	}
	return version, name, true
}
