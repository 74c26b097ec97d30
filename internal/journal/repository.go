package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// timeLayout is fixed width so TEXT ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000Z"

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// Repository defines the journal operations.
type Repository interface {
	RecordBoot(ctx context.Context, boot Boot) (Boot, error)
	RecordFault(ctx context.Context, fault Fault) (Fault, error)
	ListFaults(ctx context.Context, limit int) ([]Fault, error)
	LastBoot(ctx context.Context) (Boot, error)
}

// SQLiteRepository stores the journal in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository on an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// RecordBoot inserts a boot row. ID and StartedAt are generated if empty.
func (r *SQLiteRepository) RecordBoot(ctx context.Context, boot Boot) (Boot, error) {
	if boot.Node == "" || boot.Strategy == "" {
		return Boot{}, fmt.Errorf("%w: boot needs node and strategy", ErrInvalidEntry)
	}
	if boot.ID == "" {
		boot.ID = "boot-" + uuid.NewString()[:8]
	}
	if boot.StartedAt.IsZero() {
		boot.StartedAt = time.Now()
	}
	boot.StartedAt = boot.StartedAt.UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO boots (id, node, strategy, version, started_at) VALUES (?, ?, ?, ?, ?)`,
		boot.ID, boot.Node, boot.Strategy, boot.Version, boot.StartedAt.Format(timeLayout),
	)
	if err != nil {
		return Boot{}, fmt.Errorf("inserting boot: %w", err)
	}
	return boot, nil
}

// RecordFault inserts a fault row. ID and OccurredAt are generated if empty.
func (r *SQLiteRepository) RecordFault(ctx context.Context, fault Fault) (Fault, error) {
	if fault.Node == "" || fault.Step == "" {
		return Fault{}, fmt.Errorf("%w: fault needs node and step", ErrInvalidEntry)
	}
	if fault.ID == "" {
		fault.ID = "fault-" + uuid.NewString()[:8]
	}
	if fault.OccurredAt.IsZero() {
		fault.OccurredAt = time.Now()
	}
	fault.OccurredAt = fault.OccurredAt.UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO faults (id, boot_id, node, step, message, occurred_at) VALUES (?, ?, ?, ?, ?, ?)`,
		fault.ID, nullableString(fault.BootID), fault.Node, fault.Step, fault.Message,
		fault.OccurredAt.Format(timeLayout),
	)
	if err != nil {
		return Fault{}, fmt.Errorf("inserting fault: %w", err)
	}
	return fault, nil
}

// ListFaults returns the most recent faults first. limit is clamped to
// [1, 200]; zero or less means 20.
func (r *SQLiteRepository) ListFaults(ctx context.Context, limit int) ([]Fault, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, boot_id, node, step, message, occurred_at
		 FROM faults ORDER BY occurred_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying faults: %w", err)
	}
	defer rows.Close()

	faults := []Fault{}
	for rows.Next() {
		var f Fault
		var bootID sql.NullString
		var occurredAt string
		if err := rows.Scan(&f.ID, &bootID, &f.Node, &f.Step, &f.Message, &occurredAt); err != nil {
			return nil, fmt.Errorf("scanning fault: %w", err)
		}
		f.BootID = bootID.String
		if f.OccurredAt, err = time.Parse(timeLayout, occurredAt); err != nil {
			return nil, fmt.Errorf("parsing fault timestamp %q: %w", occurredAt, err)
		}
		faults = append(faults, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating faults: %w", err)
	}
	return faults, nil
}

// LastBoot returns the most recent boot, or ErrNoBoots.
func (r *SQLiteRepository) LastBoot(ctx context.Context) (Boot, error) {
	var b Boot
	var startedAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, node, strategy, version, started_at
		 FROM boots ORDER BY started_at DESC, rowid DESC LIMIT 1`,
	).Scan(&b.ID, &b.Node, &b.Strategy, &b.Version, &startedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Boot{}, ErrNoBoots
	}
	if err != nil {
		return Boot{}, fmt.Errorf("querying last boot: %w", err)
	}
	if b.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return Boot{}, fmt.Errorf("parsing boot timestamp %q: %w", startedAt, err)
	}
	return b, nil
}

// nullableString maps "" to SQL NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
