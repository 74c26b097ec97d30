package heartbeat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriter_Beat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "heartbeat")
	w := NewWriter(path, time.Second)

	clock := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return clock }

	if err := w.Beat(); err != nil {
		t.Fatalf("Beat() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("heartbeat file not created: %v", err)
	}
	if !info.ModTime().Equal(clock) {
		t.Errorf("ModTime = %v, want %v", info.ModTime(), clock)
	}

	// Within the interval the file is left alone.
	clock = clock.Add(500 * time.Millisecond)
	if err := w.Beat(); err != nil {
		t.Fatalf("Beat() error = %v", err)
	}
	info, _ = os.Stat(path)
	if !info.ModTime().Equal(clock.Add(-500 * time.Millisecond)) {
		t.Errorf("ModTime moved within interval: %v", info.ModTime())
	}

	clock = clock.Add(time.Second)
	if err := w.Beat(); err != nil {
		t.Fatalf("Beat() error = %v", err)
	}
	info, _ = os.Stat(path)
	if !info.ModTime().Equal(clock) {
		t.Errorf("ModTime = %v, want %v", info.ModTime(), clock)
	}
}

func TestWriter_EmptyPath(t *testing.T) {
	w := NewWriter("", time.Second)
	if err := w.Beat(); err != nil {
		t.Errorf("Beat() with empty path error = %v", err)
	}
}

func TestWriter_Unwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0600); err != nil {
		t.Fatal(err)
	}

	w := NewWriter(filepath.Join(blocker, "heartbeat"), 0)
	if err := w.Beat(); err == nil {
		t.Error("Beat() under a regular file error = nil")
	}
}

func TestStaleCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heartbeat")
	check := StaleCheck(path, time.Minute)
	ctx := context.Background()

	if err := check(ctx); !errors.Is(err, ErrMissing) {
		t.Errorf("check() on missing file error = %v, want ErrMissing", err)
	}

	if err := Touch(path, time.Now()); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}
	if err := check(ctx); err != nil {
		t.Errorf("check() on fresh file error = %v", err)
	}

	if err := Touch(path, time.Now().Add(-2*time.Minute)); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}
	if err := check(ctx); !errors.Is(err, ErrStale) {
		t.Errorf("check() on old file error = %v, want ErrStale", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := check(cancelled); !errors.Is(err, context.Canceled) {
		t.Errorf("check() with cancelled ctx error = %v, want context.Canceled", err)
	}
}
