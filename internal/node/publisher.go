package node

import (
	"context"
	"fmt"
	"sync/atomic"
)

// PublisherAdapter turns button events into counter publishes.
//
// It owns the Counter. OnEvent must only be called from the consumer
// context; that single caller is what makes the counter lock-free.
type PublisherAdapter struct {
	counter   *Counter
	publisher Publisher
	codec     Codec
	logger    Logger
	telemetry Telemetry

	published atomic.Uint64
	failures  atomic.Uint64
}

// NewPublisherAdapter creates an adapter publishing through pub.
func NewPublisherAdapter(pub Publisher, codec Codec, logger Logger, telemetry Telemetry) *PublisherAdapter {
	if logger == nil {
		logger = noopLogger{}
	}
	if telemetry == nil {
		telemetry = noopTelemetry{}
	}
	return &PublisherAdapter{
		counter:   &Counter{},
		publisher: pub,
		codec:     codec,
		logger:    logger,
		telemetry: telemetry,
	}
}

// OnEvent increments the counter by one and publishes the new value.
//
// A publish failure is soft: it is logged and counted, the counter keeps its
// new value, and the next event publishes a fresher one.
//
// Returns:
//   - error: wrapped ErrPublishFailed, for callers that want to observe it
func (p *PublisherAdapter) OnEvent(ctx context.Context, ev Event) error {
	if ev != EventButtonPressed {
		return nil
	}

	value := p.counter.Increment()
	p.telemetry.RecordButtonPress(value)

	if err := p.publisher.Publish(ctx, p.codec.Encode(value)); err != nil {
		p.failures.Add(1)
		p.logger.Warn("publish failed, continuing",
			"counter", value,
			"error", err,
		)
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	p.published.Add(1)
	p.logger.Debug("counter published", "counter", value)
	return nil
}

// Counter returns the current counter value.
func (p *PublisherAdapter) Counter() uint8 {
	return p.counter.Value()
}

// Published returns the number of successful publishes.
func (p *PublisherAdapter) Published() uint64 {
	return p.published.Load()
}

// Failures returns the number of soft publish failures.
func (p *PublisherAdapter) Failures() uint64 {
	return p.failures.Load()
}
