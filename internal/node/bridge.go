package node

import (
	"context"
	"fmt"
	"time"
)

// Bridge strategy names.
const (
	StrategyQueued  = "queued"
	StrategyFlagged = "flagged"
)

// Bridge moves events from interrupt context to task context.
//
// Emit is the only method that may be called from interrupt context. It must
// return in bounded time without blocking, allocating, or calling into the
// middleware. TryDrain and Drain are called from exactly one consumer.
type Bridge interface {
	// Emit offers an event. It returns false when the event was dropped.
	Emit(ev Event) bool

	// TryDrain returns the next pending event without waiting.
	TryDrain() (Event, bool)

	// Drain waits up to timeout for an event. A timeout <= 0 waits until
	// an event arrives or ctx is done.
	Drain(ctx context.Context, timeout time.Duration) (Event, bool)

	// Stats returns a snapshot of the bridge counters.
	Stats() BridgeStats

	// Strategy returns the strategy name.
	Strategy() string
}

// BridgeStats counts bridge traffic since construction.
type BridgeStats struct {
	// Emitted is every Emit call with a valid event, accepted or not.
	Emitted uint64 `json:"emitted"`

	// Dropped is events lost to a full queue, whether evicted or rejected
	// (queued only).
	Dropped uint64 `json:"dropped"`

	// Collapsed is events merged into an already pending flag (flagged only).
	Collapsed uint64 `json:"collapsed"`

	// Delivered is events handed to the consumer.
	Delivered uint64 `json:"delivered"`
}

// NewBridge builds a bridge for the named strategy.
// capacity and overflow are only used by the queued strategy.
func NewBridge(strategy string, capacity int, overflow Overflow) (Bridge, error) {
	switch strategy {
	case StrategyQueued:
		return NewQueuedBridge(capacity, overflow)
	case StrategyFlagged:
		return NewFlaggedBridge(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

// waitTimer returns a channel that fires after timeout, or nil (blocks
// forever) when timeout <= 0, plus a stop function.
func waitTimer(timeout time.Duration) (<-chan time.Time, func()) {
	if timeout <= 0 {
		return nil, func() {}
	}
	t := time.NewTimer(timeout)
	return t.C, func() { t.Stop() }
}
