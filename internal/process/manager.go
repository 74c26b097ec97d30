package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Status is the supervised process state.
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusFailed   Status = "failed"
)

const (
	defaultRestartDelay        = 5 * time.Second
	defaultMaxRestartDelay     = 5 * time.Minute
	defaultStableThreshold     = 2 * time.Minute
	defaultGracefulTimeout     = 10 * time.Second
	defaultHealthCheckInterval = 30 * time.Second
	defaultMaxHealthFailures   = 3

	healthCheckTimeout = 5 * time.Second
	killWaitTimeout    = 5 * time.Second
	maxOutputLine      = 64 * 1024
)

// Config holds configuration for a supervised process.
type Config struct {
	// Name is used in log records.
	Name string

	// Binary is the executable path.
	Binary string

	// Args are passed to Binary.
	Args []string

	// Env is appended to the parent environment. Nil inherits it unchanged.
	Env []string

	// WorkDir is the child's working directory. Empty inherits it.
	WorkDir string

	// RestartOnFailure restarts the process after an unexpected exit.
	RestartOnFailure bool

	// RestartDelay is the first backoff delay. Each further attempt doubles
	// it up to MaxRestartDelay.
	RestartDelay    time.Duration
	MaxRestartDelay time.Duration

	// StableThreshold is the uptime after which the attempt counter resets.
	StableThreshold time.Duration

	// MaxRestartAttempts limits consecutive restarts. 0 means unlimited.
	MaxRestartAttempts int

	// GracefulTimeout is the SIGTERM grace period before SIGKILL.
	GracefulTimeout time.Duration

	// HealthCheck is polled every HealthCheckInterval while the process
	// runs. Nil means running is healthy.
	HealthCheck         func(ctx context.Context) error
	HealthCheckInterval time.Duration

	// MaxHealthFailures is the run of failed checks that forces a kill.
	MaxHealthFailures int

	// OnStart runs before each launch, e.g. to refresh the heartbeat file.
	OnStart func()

	// OnExit runs after each exit with its cause; nil for a requested stop.
	OnExit func(err error)

	// OnRestart runs before each restart attempt.
	OnRestart func(attempt int)
}

// DefaultConfig returns a restarting Config with default timings.
func DefaultConfig(name, binary string, args []string) Config {
	return Config{
		Name:                name,
		Binary:              binary,
		Args:                args,
		RestartOnFailure:    true,
		RestartDelay:        defaultRestartDelay,
		MaxRestartDelay:     defaultMaxRestartDelay,
		StableThreshold:     defaultStableThreshold,
		MaxRestartAttempts:  10,
		GracefulTimeout:     defaultGracefulTimeout,
		HealthCheckInterval: defaultHealthCheckInterval,
		MaxHealthFailures:   defaultMaxHealthFailures,
	}
}

// Logger defines the logging interface for the manager.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Manager supervises one child process.
type Manager struct {
	config Config
	logger Logger

	mu            sync.RWMutex
	cmd           *exec.Cmd
	status        Status
	restartCount  int
	lastError     error
	startTime     time.Time
	stopRequested bool

	done chan struct{}
}

// NewManager creates a stopped manager, filling zero timings with defaults.
func NewManager(cfg Config) *Manager {
	if cfg.RestartDelay <= 0 {
		cfg.RestartDelay = defaultRestartDelay
	}
	if cfg.MaxRestartDelay <= 0 {
		cfg.MaxRestartDelay = defaultMaxRestartDelay
	}
	if cfg.StableThreshold <= 0 {
		cfg.StableThreshold = defaultStableThreshold
	}
	if cfg.GracefulTimeout <= 0 {
		cfg.GracefulTimeout = defaultGracefulTimeout
	}
	if cfg.HealthCheckInterval <= 0 {
		cfg.HealthCheckInterval = defaultHealthCheckInterval
	}
	if cfg.MaxHealthFailures <= 0 {
		cfg.MaxHealthFailures = defaultMaxHealthFailures
	}

	return &Manager{
		config: cfg,
		logger: noopLogger{},
		status: StatusStopped,
	}
}

// SetLogger sets the logger. Call before Start.
func (m *Manager) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	m.logger = logger
}

// Start launches the process and the monitor goroutine. It fails if the
// first launch fails; later launches are retried by the monitor.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.status == StatusRunning || m.status == StatusStarting {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, m.config.Name)
	}
	m.status = StatusStarting
	m.stopRequested = false
	m.done = make(chan struct{})
	m.mu.Unlock()

	if err := m.launch(ctx); err != nil {
		m.mu.Lock()
		m.status = StatusFailed
		m.lastError = err
		done := m.done
		m.done = nil
		m.mu.Unlock()
		close(done)
		return err
	}

	go m.monitor(ctx)
	return nil
}

// launch starts the child in its own process group.
func (m *Manager) launch(ctx context.Context) error {
	if m.config.OnStart != nil {
		m.config.OnStart()
	}

	cmd := exec.CommandContext(ctx, m.config.Binary, m.config.Args...) //nolint:gosec // Binary comes from the watchdog config
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if m.config.Env != nil {
		cmd.Env = append(os.Environ(), m.config.Env...)
	}
	if m.config.WorkDir != "" {
		cmd.Dir = m.config.WorkDir
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", m.config.Name, err)
	}

	m.mu.Lock()
	m.cmd = cmd
	m.status = StatusRunning
	m.startTime = time.Now()
	m.mu.Unlock()

	go m.relayOutput("stdout", stdout)
	go m.relayOutput("stderr", stderr)

	m.logger.Info("process started", "name", m.config.Name, "pid", cmd.Process.Pid)
	return nil
}

// relayOutput logs the child's output line by line.
func (m *Manager) relayOutput(stream string, r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxOutputLine)
	for scanner.Scan() {
		m.logger.Info("process output",
			"name", m.config.Name,
			"stream", stream,
			"line", scanner.Text(),
		)
	}
}

// wait blocks until the child exits or fails MaxHealthFailures checks in a
// row, in which case it kills the process group.
func (m *Manager) wait(ctx context.Context, cmd *exec.Cmd) error {
	exitCh := make(chan error, 1)
	go func() {
		exitCh <- cmd.Wait()
	}()

	if m.config.HealthCheck == nil {
		return <-exitCh
	}

	ticker := time.NewTicker(m.config.HealthCheckInterval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case err := <-exitCh:
			return err

		case <-ctx.Done():
			return <-exitCh

		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
			err := m.config.HealthCheck(checkCtx)
			cancel()

			if err == nil {
				if failures > 0 {
					m.logger.Info("health check recovered", "name", m.config.Name, "previous_failures", failures)
				}
				failures = 0
				continue
			}

			failures++
			m.logger.Warn("health check failed",
				"name", m.config.Name,
				"error", err,
				"consecutive_failures", failures,
			)
			if failures < m.config.MaxHealthFailures {
				continue
			}

			m.logger.Error("process unhealthy, resetting", "name", m.config.Name, "failures", failures)
			_ = signalGroup(cmd, syscall.SIGKILL)

			select {
			case <-exitCh:
			case <-time.After(killWaitTimeout):
				return fmt.Errorf("%w: %s did not exit after kill", ErrUnhealthy, m.config.Name)
			}
			return fmt.Errorf("%w: %d consecutive health check failures: %w", ErrUnhealthy, failures, err)
		}
	}
}

// monitor waits on the current child and restarts it as configured.
func (m *Manager) monitor(ctx context.Context) {
	m.mu.RLock()
	done := m.done
	m.mu.RUnlock()
	defer close(done)

	for {
		m.mu.RLock()
		cmd := m.cmd
		m.mu.RUnlock()
		if cmd == nil {
			return
		}

		err := m.wait(ctx, cmd)

		m.mu.Lock()
		stopRequested := m.stopRequested
		uptime := time.Since(m.startTime)
		m.mu.Unlock()

		if stopRequested || ctx.Err() != nil {
			m.logger.Info("process stopped", "name", m.config.Name)
			m.setStatus(StatusStopped, nil)
			if m.config.OnExit != nil {
				m.config.OnExit(nil)
			}
			return
		}

		m.logger.Warn("process exited", "name", m.config.Name, "error", err, "uptime", uptime)
		m.setStatus(StatusFailed, err)
		if m.config.OnExit != nil {
			m.config.OnExit(err)
		}

		if !m.config.RestartOnFailure || !IsRecoverable(err) {
			m.logger.Info("not restarting", "name", m.config.Name)
			return
		}

		m.mu.Lock()
		if uptime >= m.config.StableThreshold {
			m.restartCount = 0
		}
		m.restartCount++
		attempt := m.restartCount
		m.mu.Unlock()

		if m.config.MaxRestartAttempts > 0 && attempt > m.config.MaxRestartAttempts {
			m.logger.Error("max restart attempts reached", "name", m.config.Name, "attempts", attempt-1)
			return
		}

		delay := m.calculateBackoffDelay(attempt)
		m.logger.Info("restarting process", "name", m.config.Name, "attempt", attempt, "delay", delay)
		if m.config.OnRestart != nil {
			m.config.OnRestart(attempt)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		m.mu.RLock()
		stopRequested = m.stopRequested
		m.mu.RUnlock()
		if stopRequested {
			m.setStatus(StatusStopped, nil)
			return
		}

		if err := m.launch(ctx); err != nil {
			m.logger.Error("restart failed", "name", m.config.Name, "error", err)
			m.setStatus(StatusFailed, err)
			return
		}
	}
}

// calculateBackoffDelay doubles RestartDelay per attempt, capped at
// MaxRestartDelay.
func (m *Manager) calculateBackoffDelay(attempt int) time.Duration {
	delay := m.config.RestartDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= m.config.MaxRestartDelay {
			return m.config.MaxRestartDelay
		}
	}
	return delay
}

func (m *Manager) setStatus(status Status, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
	if err != nil {
		m.lastError = err
	}
}

// signalGroup sends sig to the child's process group.
func signalGroup(cmd *exec.Cmd, sig syscall.Signal) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	if err := syscall.Kill(-cmd.Process.Pid, sig); err != nil && !errors.Is(err, syscall.ESRCH) {
		return err
	}
	return nil
}

// Stop sends SIGTERM to the process group, waits GracefulTimeout, then
// sends SIGKILL. It returns once the monitor has exited.
func (m *Manager) Stop() error {
	m.mu.Lock()
	m.stopRequested = true
	cmd := m.cmd
	done := m.done
	m.mu.Unlock()

	if done == nil {
		return nil
	}

	if err := signalGroup(cmd, syscall.SIGTERM); err != nil {
		m.logger.Warn("failed to send SIGTERM", "name", m.config.Name, "error", err)
	}

	select {
	case <-done:
		return nil
	case <-time.After(m.config.GracefulTimeout):
		m.logger.Warn("graceful stop timed out, sending SIGKILL", "name", m.config.Name)
	}

	m.mu.RLock()
	cmd = m.cmd
	m.mu.RUnlock()
	if err := signalGroup(cmd, syscall.SIGKILL); err != nil {
		return fmt.Errorf("killing %s: %w", m.config.Name, err)
	}
	<-done
	return nil
}

// Status returns the current status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// IsRunning reports whether the child is running.
func (m *Manager) IsRunning() bool {
	return m.Status() == StatusRunning
}

// LastError returns the cause of the last unexpected exit.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastError
}

// RestartCount returns the current run of restart attempts.
func (m *Manager) RestartCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.restartCount
}

// Uptime returns the running child's uptime, or 0.
func (m *Manager) Uptime() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.status != StatusRunning {
		return 0
	}
	return time.Since(m.startTime)
}

// PID returns the child's process ID, or 0 before the first launch.
func (m *Manager) PID() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cmd != nil && m.cmd.Process != nil {
		return m.cmd.Process.Pid
	}
	return 0
}

// Done is closed when the monitor exits. Nil before Start.
func (m *Manager) Done() <-chan struct{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.done
}

// Stats is a snapshot of the supervised process.
type Stats struct {
	Name         string        `json:"name"`
	Status       Status        `json:"status"`
	PID          int           `json:"pid,omitempty"`
	Uptime       time.Duration `json:"uptime,omitempty"`
	RestartCount int           `json:"restart_count"`
	LastError    string        `json:"last_error,omitempty"`
}

// Stats returns a snapshot of the supervised process.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Stats{
		Name:         m.config.Name,
		Status:       m.status,
		RestartCount: m.restartCount,
	}
	if m.cmd != nil && m.cmd.Process != nil {
		stats.PID = m.cmd.Process.Pid
	}
	if m.status == StatusRunning {
		stats.Uptime = time.Since(m.startTime)
	}
	if m.lastError != nil {
		stats.LastError = m.lastError.Error()
	}
	return stats
}
