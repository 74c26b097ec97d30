// Package heartbeat implements the file-based liveness signal between the
// button node and its watchdog.
//
// The node touches a file from its dispatch loop; the watchdog checks the
// file's modification time. A node stuck in the fault sink stops touching
// the file and is reset once the file goes stale.
package heartbeat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	dirPermissions  = 0750
	filePermissions = 0600
)

var (
	// ErrStale is returned by a StaleCheck when the file is older than maxAge.
	ErrStale = errors.New("heartbeat stale")

	// ErrMissing is returned by a StaleCheck when the file does not exist.
	ErrMissing = errors.New("heartbeat file missing")
)

// Writer touches the heartbeat file at most once per interval. It satisfies
// node.Heartbeat. A Writer with an empty path does nothing.
type Writer struct {
	path     string
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last time.Time
}

// NewWriter creates a Writer for path. interval <= 0 touches on every Beat.
func NewWriter(path string, interval time.Duration) *Writer {
	return &Writer{path: path, interval: interval, now: time.Now}
}

// Beat touches the file unless the previous touch was less than one
// interval ago.
func (w *Writer) Beat() error {
	if w.path == "" {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if !w.last.IsZero() && now.Sub(w.last) < w.interval {
		return nil
	}
	if err := Touch(w.path, now); err != nil {
		return err
	}
	w.last = now
	return nil
}

// Path returns the heartbeat file path.
func (w *Writer) Path() string {
	return w.path
}

// Touch creates path if needed and sets its modification time to t.
func Touch(path string, t time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("creating heartbeat directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, filePermissions)
	if err != nil {
		return fmt.Errorf("opening heartbeat file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing heartbeat file: %w", err)
	}
	if err := os.Chtimes(path, t, t); err != nil {
		return fmt.Errorf("touching heartbeat file: %w", err)
	}
	return nil
}

// Age returns how long ago the file was last touched.
func Age(path string) (time.Duration, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, ErrMissing
	}
	if err != nil {
		return 0, fmt.Errorf("stat heartbeat file: %w", err)
	}
	return time.Since(info.ModTime()), nil
}

// StaleCheck returns a health check for process.Config that fails when the
// file at path is missing or older than maxAge.
func StaleCheck(path string, maxAge time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		age, err := Age(path)
		if err != nil {
			return err
		}
		if age > maxAge {
			return fmt.Errorf("%w: last beat %s ago (max %s)", ErrStale, age.Round(time.Millisecond), maxAge)
		}
		return nil
	}
}
