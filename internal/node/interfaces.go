package node

import (
	"context"
	"time"
)

// Logger is the logging interface used by the node core.
// Compatible with logging.Logger and slog.Logger.
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

// MessageHandler receives one inbound payload. It is called only from
// Executor.SpinSome.
type MessageHandler func(payload []byte) error

// Middleware is the pub/sub layer as seen by Setup. Each call is one
// irreversible setup step; any error is fatal.
type Middleware interface {
	// Init creates the middleware context (transport session).
	Init(ctx context.Context) error

	// CreateNode registers the node identity.
	CreateNode(ctx context.Context, name, namespace string) error

	// CreatePublisher creates an outbound handle for topic.
	CreatePublisher(ctx context.Context, topic string) (Publisher, error)

	// CreateSubscription creates an inbound handle for topic.
	CreateSubscription(ctx context.Context, topic string) (Subscription, error)

	// CreateExecutor creates the dispatcher with room for handles subscriptions.
	CreateExecutor(ctx context.Context, handles int) (Executor, error)
}

// Publisher sends payloads on one topic. Publish is fire-and-forget from the
// core's perspective: failures are soft. It must not wait for the broker's
// acknowledgement, because in the Flagged strategy it runs on the dispatch
// context.
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
}

// Subscription identifies an inbound topic.
type Subscription interface {
	Topic() string
}

// Executor delivers inbound messages to registered handlers.
type Executor interface {
	// AddSubscription binds handler to sub.
	AddSubscription(sub Subscription, handler MessageHandler) error

	// SpinSome processes pending traffic for at most maxWait. Returning
	// with nothing delivered is not an error.
	SpinSome(ctx context.Context, maxWait time.Duration) error
}

// OutputLine is the digital output driving the actuator.
type OutputLine interface {
	SetLevel(on bool) error
}

// Telemetry records node activity. Implementations must not block.
type Telemetry interface {
	RecordButtonPress(counter uint8)
	RecordActuator(on bool)
	RecordBridgeStats(emitted, dropped, collapsed uint64)
	RecordFault(step string, err error)
}

type noopTelemetry struct{}

func (noopTelemetry) RecordButtonPress(uint8)                  {}
func (noopTelemetry) RecordActuator(bool)                      {}
func (noopTelemetry) RecordBridgeStats(uint64, uint64, uint64) {}
func (noopTelemetry) RecordFault(string, error)                {}

// Heartbeat signals liveness to an external watchdog.
type Heartbeat interface {
	Beat() error
}

type noopHeartbeat struct{}

func (noopHeartbeat) Beat() error { return nil }

// FaultRecorder persists the fault diagnostic, e.g. to the journal.
type FaultRecorder interface {
	RecordFault(ctx context.Context, step string, cause error) error
}
