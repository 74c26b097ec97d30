package pubsub

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-buttonnode/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-buttonnode/internal/node"
)

// ExecutorStats counts deliveries since construction.
type ExecutorStats struct {
	Delivered     uint64 `json:"delivered"`
	HandlerErrors uint64 `json:"handler_errors"`
	Unhandled     uint64 `json:"unhandled"`
}

// Executor delivers inbox messages to registered handlers. SpinSome must
// only be called from the dispatch context.
type Executor struct {
	session *Session
	handles int

	mu       sync.RWMutex
	handlers map[string]node.MessageHandler

	delivered     atomic.Uint64
	handlerErrors atomic.Uint64
	unhandled     atomic.Uint64
}

func newExecutor(s *Session, handles int) *Executor {
	return &Executor{
		session:  s,
		handles:  handles,
		handlers: make(map[string]node.MessageHandler, handles),
	}
}

// AddSubscription registers handler for sub. It uses one handle.
func (e *Executor) AddSubscription(sub node.Subscription, handler node.MessageHandler) error {
	own, ok := sub.(*Subscription)
	if !ok || own.session != e.session {
		return ErrForeignSubscription
	}
	if handler == nil {
		return fmt.Errorf("%w: nil handler", node.ErrMissingDependency)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.handlers[own.topic]; !exists && len(e.handlers) >= e.handles {
		return fmt.Errorf("%w: %d of %d in use", ErrExecutorFull, len(e.handlers), e.handles)
	}
	e.handlers[own.topic] = handler
	return nil
}

// SpinSome waits up to maxWait for the first pending message, then runs
// the handler of every message pending at that point, in arrival order.
//
// Handler errors are logged and counted; they do not fail the spin. The
// spin fails when the transport is down, after pending messages have been
// delivered.
func (e *Executor) SpinSome(ctx context.Context, maxWait time.Duration) error {
	inbox := e.session.inbox
	if inbox.Wait(ctx, maxWait) {
		for _, msg := range inbox.TakeAll() {
			e.deliver(msg)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !e.session.Connected() {
		return mqtt.ErrNotConnected
	}
	return nil
}

func (e *Executor) deliver(msg Message) {
	e.mu.RLock()
	handler := e.handlers[msg.Topic]
	e.mu.RUnlock()

	if handler == nil {
		e.unhandled.Add(1)
		return
	}
	e.delivered.Add(1)
	if err := handler(msg.Payload); err != nil {
		e.handlerErrors.Add(1)
		e.session.logger.Warn("message handler failed",
			"topic", msg.Topic,
			"error", err,
		)
	}
}

// Stats returns a snapshot of the executor counters.
func (e *Executor) Stats() ExecutorStats {
	return ExecutorStats{
		Delivered:     e.delivered.Load(),
		HandlerErrors: e.handlerErrors.Load(),
		Unhandled:     e.unhandled.Load(),
	}
}
