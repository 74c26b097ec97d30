package node

import (
	"fmt"
	"sync/atomic"
)

// SubscriberAdapter drives the output line from inbound messages.
//
// OnMessage is registered with the Executor and therefore runs only on the
// dispatch context. It is the sole writer of the actuator state.
type SubscriberAdapter struct {
	output    OutputLine
	codec     Codec
	logger    Logger
	telemetry Telemetry

	state    atomic.Bool
	received atomic.Uint64
	rejected atomic.Uint64
}

// NewSubscriberAdapter creates an adapter writing to out. The actuator
// starts off; the output line is not touched until the first message.
func NewSubscriberAdapter(out OutputLine, codec Codec, logger Logger, telemetry Telemetry) *SubscriberAdapter {
	if logger == nil {
		logger = noopLogger{}
	}
	if telemetry == nil {
		telemetry = noopTelemetry{}
	}
	return &SubscriberAdapter{
		output:    out,
		codec:     codec,
		logger:    logger,
		telemetry: telemetry,
	}
}

// OnMessage sets the actuator to payload != 0 and writes the output line.
//
// The line is written on every message, including repeats; state change
// logging and telemetry only happen when the level actually flips.
func (s *SubscriberAdapter) OnMessage(payload []byte) error {
	value, err := s.codec.Decode(payload)
	if err != nil {
		s.rejected.Add(1)
		return err
	}
	s.received.Add(1)

	on := value != 0
	if err := s.output.SetLevel(on); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputFailed, err)
	}

	if prev := s.state.Swap(on); prev != on {
		s.logger.Info("actuator changed", "on", on, "payload", value)
		s.telemetry.RecordActuator(on)
	}
	return nil
}

// Handler returns OnMessage as a MessageHandler for Executor registration.
func (s *SubscriberAdapter) Handler() MessageHandler {
	return s.OnMessage
}

// State returns the current actuator state.
func (s *SubscriberAdapter) State() bool {
	return s.state.Load()
}

// Received returns the number of accepted messages.
func (s *SubscriberAdapter) Received() uint64 {
	return s.received.Load()
}

// Rejected returns the number of undecodable payloads.
func (s *SubscriberAdapter) Rejected() uint64 {
	return s.rejected.Load()
}
