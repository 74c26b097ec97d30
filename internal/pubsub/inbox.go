package pubsub

import (
	"context"
	"sync"
	"time"
)

// Message is one inbound message waiting for the executor.
type Message struct {
	Topic   string
	Payload []byte
}

// InboxStats counts inbox traffic since construction.
type InboxStats struct {
	Received uint64 `json:"received"`
	Replaced uint64 `json:"replaced"`
	Dropped  uint64 `json:"dropped"`
}

// Inbox buffers inbound messages between spins.
//
// Push may be called from any goroutine. Wait and TakeAll belong to the
// executor. At most one message per topic is pending; a newer message for
// the same topic replaces the older one and takes its place at the back.
type Inbox struct {
	mu       sync.Mutex
	capacity int
	pending  []Message
	closed   bool
	stats    InboxStats

	// notify has capacity 1 and is never closed; Close wakes waiters with
	// a final token instead.
	notify chan struct{}
}

// NewInbox creates an inbox holding at most capacity messages.
// capacity below 1 is treated as 1.
func NewInbox(capacity int) *Inbox {
	if capacity < 1 {
		capacity = 1
	}
	return &Inbox{
		capacity: capacity,
		pending:  make([]Message, 0, capacity),
		notify:   make(chan struct{}, 1),
	}
}

// Push queues a copy of payload for topic. It never blocks.
func (in *Inbox) Push(topic string, payload []byte) {
	msg := Message{Topic: topic, Payload: append([]byte(nil), payload...)}

	in.mu.Lock()
	if in.closed {
		in.mu.Unlock()
		return
	}
	in.stats.Received++
	for i := range in.pending {
		if in.pending[i].Topic == topic {
			in.pending = append(in.pending[:i], in.pending[i+1:]...)
			in.stats.Replaced++
			break
		}
	}
	if len(in.pending) == in.capacity {
		in.pending = append(in.pending[:0], in.pending[1:]...)
		in.stats.Dropped++
	}
	in.pending = append(in.pending, msg)
	in.mu.Unlock()

	in.signal()
}

func (in *Inbox) signal() {
	select {
	case in.notify <- struct{}{}:
	default:
	}
}

// Wait blocks until a message is pending, maxWait elapses, ctx is done, or
// the inbox is closed. It reports whether anything is pending.
func (in *Inbox) Wait(ctx context.Context, maxWait time.Duration) bool {
	if in.Len() > 0 {
		return true
	}

	timer := time.NewTimer(maxWait)
	defer timer.Stop()

	for {
		select {
		case <-in.notify:
			if in.Len() > 0 {
				return true
			}
			if in.isClosed() {
				return false
			}
		case <-timer.C:
			return in.Len() > 0
		case <-ctx.Done():
			return false
		}
	}
}

// TakeAll removes and returns every pending message in arrival order.
func (in *Inbox) TakeAll() []Message {
	in.mu.Lock()
	defer in.mu.Unlock()
	if len(in.pending) == 0 {
		return nil
	}
	out := make([]Message, len(in.pending))
	copy(out, in.pending)
	in.pending = in.pending[:0]
	return out
}

// Len returns the number of pending messages.
func (in *Inbox) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.pending)
}

// Stats returns a snapshot of the inbox counters.
func (in *Inbox) Stats() InboxStats {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.stats
}

// Close discards pending messages and rejects further pushes.
func (in *Inbox) Close() {
	in.mu.Lock()
	in.closed = true
	in.pending = in.pending[:0]
	in.mu.Unlock()
	in.signal()
}

func (in *Inbox) isClosed() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.closed
}
