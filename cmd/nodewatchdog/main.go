// Node watchdog - supervises the button node and resets it when its
// heartbeat goes stale.
//
// A node parked in the fault sink keeps running but stops beating; the
// watchdog kills it and starts a fresh process, which retries setup from
// scratch. This is the only recovery path for a setup failure.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/gray-logic-buttonnode/internal/heartbeat"
	"github.com/nerrad567/gray-logic-buttonnode/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-buttonnode/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-buttonnode/internal/process"
)

var version = "dev"

const defaultConfigPath = "configs/config.yaml"

// ErrNoBinary is returned when watchdog.binary is not configured.
var ErrNoBinary = errors.New("watchdog.binary is not set")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configPath := defaultConfigPath
	if path := os.Getenv("BUTTONNODE_CONFIG"); path != "" {
		configPath = path
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(cfg.Logging, version).Component("watchdog")

	mgr, err := newManager(cfg, configPath)
	if err != nil {
		return err
	}
	mgr.SetLogger(log)

	if err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("starting node: %w", err)
	}
	log.Info("watchdog started",
		"binary", cfg.Watchdog.Binary,
		"heartbeat", cfg.Health.HeartbeatFile,
		"stale_after", time.Duration(cfg.Watchdog.StaleAfterMS)*time.Millisecond,
	)

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, stopping node")
		return mgr.Stop()
	case <-mgr.Done():
		if ctx.Err() != nil {
			return nil
		}
		stats := mgr.Stats()
		return fmt.Errorf("node supervision ended after %d restarts: %s", stats.RestartCount, stats.LastError)
	}
}

// newManager maps the watchdog config onto a process manager. The heartbeat
// file is refreshed before each launch so a new node gets a full stale
// window to finish setup.
func newManager(cfg *config.Config, configPath string) (*process.Manager, error) {
	wd := cfg.Watchdog
	if wd.Binary == "" {
		return nil, ErrNoBinary
	}

	pcfg := process.DefaultConfig("buttonnode", wd.Binary, wd.Args)
	pcfg.Env = []string{"BUTTONNODE_CONFIG=" + configPath}
	pcfg.RestartDelay = time.Duration(wd.RestartDelayMS) * time.Millisecond
	pcfg.MaxRestartAttempts = wd.MaxRestarts

	if path := cfg.Health.HeartbeatFile; path != "" {
		pcfg.HealthCheck = heartbeat.StaleCheck(path, time.Duration(wd.StaleAfterMS)*time.Millisecond)
		pcfg.HealthCheckInterval = time.Duration(wd.CheckIntervalMS) * time.Millisecond
		pcfg.OnStart = func() {
			_ = heartbeat.Touch(path, time.Now())
		}
	}

	return process.NewManager(pcfg), nil
}
