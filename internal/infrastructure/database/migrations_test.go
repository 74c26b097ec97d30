package database

import (
	"context"
	"io/fs"
	"testing"
	"testing/fstest"
)

// useMigrations swaps MigrationsFS for the duration of a test.
func useMigrations(t *testing.T, fsys fs.FS) {
	t.Helper()
	origFS, origDir := MigrationsFS, MigrationsDir
	t.Cleanup(func() {
		MigrationsFS, MigrationsDir = origFS, origDir
	})
	MigrationsFS, MigrationsDir = fsys, "."
}

func TestMigrate(t *testing.T) {
	useMigrations(t, fstest.MapFS{
		"20260101_000000_boots.up.sql":  {Data: []byte("CREATE TABLE boots (id TEXT PRIMARY KEY)")},
		"20260102_000000_faults.up.sql": {Data: []byte("CREATE TABLE faults (id TEXT PRIMARY KEY)")},
		"README.md":                     {Data: []byte("ignored")},
	})
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	for _, table := range []string{"boots", "faults"} {
		var name string
		err := db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s not created: %v", table, err)
		}
	}

	applied, err := db.AppliedVersions(ctx)
	if err != nil {
		t.Fatalf("AppliedVersions() error = %v", err)
	}
	if len(applied) != 2 || !applied["20260101_000000"] {
		t.Errorf("applied = %v, want both versions", applied)
	}

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestMigrate_FailureRollsBack(t *testing.T) {
	useMigrations(t, fstest.MapFS{
		"20260101_000000_ok.up.sql":     {Data: []byte("CREATE TABLE ok (x INTEGER)")},
		"20260102_000000_broken.up.sql": {Data: []byte("CREATE TABLE ok (x INTEGER)")},
	})
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err == nil {
		t.Fatal("Migrate() error = nil, want failure on duplicate table")
	}
	applied, _ := db.AppliedVersions(ctx)
	if !applied["20260101_000000"] || applied["20260102_000000"] {
		t.Errorf("applied = %v, want only the first migration", applied)
	}
}

func TestMigrate_NoMigrations(t *testing.T) {
	useMigrations(t, nil)
	db := openTestDB(t)

	if err := db.Migrate(context.Background()); err != nil {
		t.Errorf("Migrate() with no migrations error = %v", err)
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		filename    string
		wantVersion string
		wantName    string
		wantOK      bool
	}{
		{"20261015_090000_journal.up.sql", "20261015_090000", "journal", true},
		{"20261015_090000_boot_and_fault.up.sql", "20261015_090000", "boot_and_fault", true},
		{"20261015_090000.up.sql", "20261015_090000", "20261015_090000", true},
		{"20261015_090000_journal.down.sql", "", "", false},
		{"20261015.up.sql", "", "", false},
		{"notes.txt", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, ok := parseMigrationFilename(tt.filename)
			if ok != tt.wantOK || version != tt.wantVersion || name != tt.wantName {
				t.Errorf("parseMigrationFilename() = %q, %q, %v; want %q, %q, %v",
					version, name, ok, tt.wantVersion, tt.wantName, tt.wantOK)
			}
		})
	}
}
