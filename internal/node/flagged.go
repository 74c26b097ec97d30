package node

import (
	"context"
	"math/bits"
	"sync/atomic"
	"time"
)

// FlaggedBridge holds one pending flag per event kind in a single atomic word.
//
// Emit sets the bit (release); TryDrain clears the lowest set bit (acquire).
// Presses that arrive while the bit is already set collapse into the one
// pending event: at most one pending event per kind.
type FlaggedBridge struct {
	pending atomic.Uint32

	// wake lets Drain sleep instead of polling. Capacity 1, never closed.
	wake chan struct{}

	emitted   atomic.Uint64
	collapsed atomic.Uint64
	delivered atomic.Uint64
}

// NewFlaggedBridge creates a flagged bridge with no pending events.
func NewFlaggedBridge() *FlaggedBridge {
	return &FlaggedBridge{wake: make(chan struct{}, 1)}
}

// Emit marks ev as pending. It always succeeds for valid events.
func (f *FlaggedBridge) Emit(ev Event) bool {
	if !ev.Valid() {
		return false
	}
	f.emitted.Add(1)

	bit := uint32(1) << ev
	if f.pending.Or(bit)&bit != 0 {
		f.collapsed.Add(1)
	}

	select {
	case f.wake <- struct{}{}:
	default:
	}
	return true
}

// TryDrain clears and returns the lowest pending event kind.
func (f *FlaggedBridge) TryDrain() (Event, bool) {
	for {
		old := f.pending.Load()
		if old == 0 {
			return 0, false
		}
		low := old & -old
		if f.pending.CompareAndSwap(old, old&^low) {
			f.delivered.Add(1)
			return Event(bits.TrailingZeros32(low)), true
		}
	}
}

// Drain waits for a pending flag, the timeout, or ctx.
func (f *FlaggedBridge) Drain(ctx context.Context, timeout time.Duration) (Event, bool) {
	if ev, ok := f.TryDrain(); ok {
		return ev, true
	}

	timer, stop := waitTimer(timeout)
	defer stop()

	for {
		select {
		case <-f.wake:
			// A wake token may be stale if TryDrain already consumed its flag.
			if ev, ok := f.TryDrain(); ok {
				return ev, true
			}
		case <-timer:
			return 0, false
		case <-ctx.Done():
			return 0, false
		}
	}
}

// Pending reports whether any event is waiting.
func (f *FlaggedBridge) Pending() bool {
	return f.pending.Load() != 0
}

// Stats returns a snapshot of the bridge counters.
func (f *FlaggedBridge) Stats() BridgeStats {
	return BridgeStats{
		Emitted:   f.emitted.Load(),
		Collapsed: f.collapsed.Load(),
		Delivered: f.delivered.Load(),
	}
}

// Strategy returns StrategyFlagged.
func (f *FlaggedBridge) Strategy() string {
	return StrategyFlagged
}
