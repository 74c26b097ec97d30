package hal

import (
	"sync"
	"sync/atomic"
)

// SimInput is an in-memory button.
type SimInput struct {
	mu      sync.Mutex
	handler func()
	closed  bool
	presses atomic.Uint64
}

// NewSimInput returns an input with no handler attached.
func NewSimInput() *SimInput {
	return &SimInput{}
}

// OnRisingEdge attaches handler.
func (s *SimInput) OnRisingEdge(handler func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.handler != nil {
		return ErrHandlerSet
	}
	s.handler = handler
	return nil
}

// Press simulates one rising edge on the calling goroutine. It reports
// whether a handler ran.
func (s *SimInput) Press() bool {
	s.mu.Lock()
	h := s.handler
	closed := s.closed
	s.mu.Unlock()

	if closed || h == nil {
		return false
	}
	s.presses.Add(1)
	h()
	return true
}

// Presses returns the number of delivered edges.
func (s *SimInput) Presses() uint64 {
	return s.presses.Load()
}

// Close detaches the handler.
func (s *SimInput) Close() error {
	s.mu.Lock()
	s.closed = true
	s.handler = nil
	s.mu.Unlock()
	return nil
}

// SimOutput is an in-memory LED that remembers every write.
type SimOutput struct {
	mu      sync.Mutex
	level   bool
	writes  int
	closed  bool
	onWrite func(on bool)
}

// NewSimOutput returns a low output.
func NewSimOutput() *SimOutput {
	return &SimOutput{}
}

// SetLevel drives the output.
func (s *SimOutput) SetLevel(on bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.level = on
	s.writes++
	cb := s.onWrite
	s.mu.Unlock()

	if cb != nil {
		cb(on)
	}
	return nil
}

// Level returns the last written level.
func (s *SimOutput) Level() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// Writes returns the number of SetLevel calls.
func (s *SimOutput) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// OnWrite registers a callback run after every write, e.g. to echo the LED
// on the bench console.
func (s *SimOutput) OnWrite(cb func(on bool)) {
	s.mu.Lock()
	s.onWrite = cb
	s.mu.Unlock()
}

// Close rejects further writes.
func (s *SimOutput) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
