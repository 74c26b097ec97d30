package node

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// DefaultMaxWait is the reference spin budget.
const DefaultMaxWait = 100 * time.Millisecond

// DispatchLoop repeatedly gives the middleware a bounded slot to deliver
// inbound messages and flush outbound ones.
type DispatchLoop struct {
	executor  Executor
	maxWait   time.Duration
	logger    Logger
	heartbeat Heartbeat

	spins    atomic.Uint64
	failures atomic.Uint64
}

// NewDispatchLoop creates a loop spinning exec for up to maxWait per call.
func NewDispatchLoop(exec Executor, maxWait time.Duration, logger Logger, hb Heartbeat) *DispatchLoop {
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	if logger == nil {
		logger = noopLogger{}
	}
	if hb == nil {
		hb = noopHeartbeat{}
	}
	return &DispatchLoop{
		executor:  exec,
		maxWait:   maxWait,
		logger:    logger,
		heartbeat: hb,
	}
}

// SpinOnce runs one bounded spin and beats the heartbeat.
//
// Spin failures are soft: they are logged, counted and returned, and the
// caller carries on. Cancellation of ctx is not counted as a failure.
func (d *DispatchLoop) SpinOnce(ctx context.Context) error {
	d.spins.Add(1)

	if err := d.heartbeat.Beat(); err != nil {
		d.logger.Debug("heartbeat failed", "error", err)
	}

	err := d.executor.SpinSome(ctx, d.maxWait)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}

	d.failures.Add(1)
	d.logger.Warn("spin failed, continuing", "error", err)
	return err
}

// Iterate runs one SpinOnce. After a failed spin it waits out the rest of
// the spin budget so a persistently failing executor cannot busy-loop.
func (d *DispatchLoop) Iterate(ctx context.Context) {
	start := time.Now()
	if err := d.SpinOnce(ctx); err != nil {
		if rest := d.maxWait - time.Since(start); rest > 0 {
			sleep(ctx, rest)
		}
	}
}

// Run iterates until ctx is done.
func (d *DispatchLoop) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		d.Iterate(ctx)
	}
	return nil
}

// Spins returns the number of spin attempts.
func (d *DispatchLoop) Spins() uint64 {
	return d.spins.Load()
}

// Failures returns the number of soft spin failures.
func (d *DispatchLoop) Failures() uint64 {
	return d.failures.Load()
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
