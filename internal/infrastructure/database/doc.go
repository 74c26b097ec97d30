// Package database opens the node's SQLite journal and applies its schema.
//
// The journal is diagnostic: it records boots and faults so a reset node
// leaves a trail. Nothing in it is read back to restore runtime state.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Journal.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migrations are *.up.sql files embedded by package migrations. They are
// additive only; there are no down migrations.
package database
