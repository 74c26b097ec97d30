package node

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// FaultState is the node's run state.
type FaultState int32

const (
	// FaultRunning is the initial state.
	FaultRunning FaultState = iota

	// FaultFaulted is terminal; nothing leaves it at runtime.
	FaultFaulted
)

func (s FaultState) String() string {
	switch s {
	case FaultRunning:
		return "running"
	case FaultFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// faultIdleTick is the sleep period of the faulted idle loop.
const faultIdleTick = 100 * time.Millisecond

// FaultSink is the terminal state for unrecoverable setup failures.
//
// Trip moves Running to Faulted exactly once and emits the diagnostic once.
// Idle then parks the caller, doing no node work and never beating the
// heartbeat, so a supervising watchdog observes a hung node and resets it.
type FaultSink struct {
	state atomic.Int32
	once  sync.Once

	mu    sync.RWMutex
	step  string
	cause error

	logger    Logger
	telemetry Telemetry
	recorder  FaultRecorder
}

// NewFaultSink creates a sink in the Running state. recorder may be nil.
func NewFaultSink(logger Logger, telemetry Telemetry, recorder FaultRecorder) *FaultSink {
	if logger == nil {
		logger = noopLogger{}
	}
	if telemetry == nil {
		telemetry = noopTelemetry{}
	}
	return &FaultSink{
		logger:    logger,
		telemetry: telemetry,
		recorder:  recorder,
	}
}

// Trip enters Faulted. Later calls are ignored.
func (f *FaultSink) Trip(ctx context.Context, cause error) {
	f.once.Do(func() {
		step := "unknown"
		var setupErr *SetupError
		if errors.As(cause, &setupErr) {
			step = setupErr.Step
		}

		f.mu.Lock()
		f.step = step
		f.cause = cause
		f.mu.Unlock()
		f.state.Store(int32(FaultFaulted))

		f.logger.Error("Error!", "step", step, "error", cause)
		f.telemetry.RecordFault(step, cause)
		if f.recorder != nil {
			if err := f.recorder.RecordFault(ctx, step, cause); err != nil {
				f.logger.Warn("recording fault failed", "error", err)
			}
		}
	})
}

// Idle blocks in the faulted wait loop until ctx is done.
func (f *FaultSink) Idle(ctx context.Context) {
	ticker := time.NewTicker(faultIdleTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// State returns the current state.
func (f *FaultSink) State() FaultState {
	return FaultState(f.state.Load())
}

// Faulted reports whether Trip has been called.
func (f *FaultSink) Faulted() bool {
	return f.State() == FaultFaulted
}

// Cause returns the failed step and error, or "" and nil while running.
func (f *FaultSink) Cause() (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.step, f.cause
}
