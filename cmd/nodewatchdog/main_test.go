package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-buttonnode/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-buttonnode/internal/process"
)

func TestNewManager_RequiresBinary(t *testing.T) {
	cfg := config.Default()
	if _, err := newManager(cfg, "config.yaml"); !errors.Is(err, ErrNoBinary) {
		t.Errorf("newManager() error = %v, want ErrNoBinary", err)
	}
}

func TestNewManager_RefreshesHeartbeatOnStart(t *testing.T) {
	dir := t.TempDir()
	hb := filepath.Join(dir, "heartbeat")

	cfg := config.Default()
	cfg.Watchdog.Binary = "/bin/sleep"
	cfg.Watchdog.Args = []string{"60"}
	cfg.Health.HeartbeatFile = hb

	mgr, err := newManager(cfg, filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("newManager() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer mgr.Stop() //nolint:errcheck // Test cleanup

	info, err := os.Stat(hb)
	if err != nil {
		t.Fatalf("heartbeat not created on start: %v", err)
	}
	if time.Since(info.ModTime()) > time.Minute {
		t.Errorf("heartbeat ModTime = %v, want recent", info.ModTime())
	}
	if mgr.Status() != process.StatusRunning {
		t.Errorf("Status() = %q, want running", mgr.Status())
	}
}

func TestRun_StopsOnSignal(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
watchdog:
  binary: /bin/sleep
  args: ["60"]
logging:
  output: discard
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("BUTTONNODE_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Errorf("run() error = %v, want nil on signal", err)
	}
}
