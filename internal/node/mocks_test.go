package node

import (
	"context"
	"errors"
	"sync"
	"time"
)

var errInjected = errors.New("injected failure")

// mockMiddleware implements Middleware and records the order of setup calls.
type mockMiddleware struct {
	mu     sync.Mutex
	calls  []string
	failAt string

	publisher *mockPublisher
	executor  *mockExecutor
}

func newMockMiddleware() *mockMiddleware {
	return &mockMiddleware{
		publisher: &mockPublisher{},
		executor:  newMockExecutor(),
	}
}

func (m *mockMiddleware) step(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
	if m.failAt == name {
		return errInjected
	}
	return nil
}

func (m *mockMiddleware) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockMiddleware) Init(context.Context) error {
	return m.step(StepContext)
}

func (m *mockMiddleware) CreateNode(context.Context, string, string) error {
	return m.step(StepNode)
}

func (m *mockMiddleware) CreatePublisher(context.Context, string) (Publisher, error) {
	if err := m.step(StepPublisher); err != nil {
		return nil, err
	}
	return m.publisher, nil
}

func (m *mockMiddleware) CreateSubscription(_ context.Context, topic string) (Subscription, error) {
	if err := m.step(StepSubscription); err != nil {
		return nil, err
	}
	return mockSubscription(topic), nil
}

func (m *mockMiddleware) CreateExecutor(context.Context, int) (Executor, error) {
	if err := m.step(StepExecutor); err != nil {
		return nil, err
	}
	m.executor.failAdd = m.failAt == StepRegister
	return m.executor, nil
}

type mockSubscription string

func (s mockSubscription) Topic() string { return string(s) }

// mockPublisher records every payload it is asked to publish.
type mockPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (p *mockPublisher) Publish(_ context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, append([]byte(nil), payload...))
	return nil
}

func (p *mockPublisher) SetError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *mockPublisher) Payloads() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]byte(nil), p.payloads...)
}

// mockExecutor queues inbound payloads until SpinSome delivers them.
type mockExecutor struct {
	mu       sync.Mutex
	handler  MessageHandler
	failAdd  bool
	spinErr  error
	spins    int
	incoming chan []byte
}

func newMockExecutor() *mockExecutor {
	return &mockExecutor{incoming: make(chan []byte, 16)}
}

func (e *mockExecutor) AddSubscription(_ Subscription, h MessageHandler) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failAdd {
		return errInjected
	}
	e.handler = h
	return nil
}

func (e *mockExecutor) SpinSome(ctx context.Context, maxWait time.Duration) error {
	e.mu.Lock()
	e.spins++
	spinErr := e.spinErr
	handler := e.handler
	e.mu.Unlock()

	if spinErr != nil {
		return spinErr
	}

	timer := time.NewTimer(maxWait)
	defer timer.Stop()
	select {
	case p := <-e.incoming:
		if handler != nil {
			return handler(p)
		}
		return nil
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *mockExecutor) Spins() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.spins
}

// mockOutput records every level written.
type mockOutput struct {
	mu     sync.Mutex
	levels []bool
	err    error
}

func (o *mockOutput) SetLevel(on bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.levels = append(o.levels, on)
	return nil
}

func (o *mockOutput) Levels() []bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]bool(nil), o.levels...)
}

// mockTelemetry counts telemetry calls.
type mockTelemetry struct {
	mu        sync.Mutex
	presses   []uint8
	actuator  []bool
	faults    []string
	bridgeOps int
}

func (t *mockTelemetry) RecordButtonPress(c uint8) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.presses = append(t.presses, c)
}

func (t *mockTelemetry) RecordActuator(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.actuator = append(t.actuator, on)
}

func (t *mockTelemetry) RecordBridgeStats(uint64, uint64, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bridgeOps++
}

func (t *mockTelemetry) RecordFault(step string, _ error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.faults = append(t.faults, step)
}

// mockRecorder implements FaultRecorder.
type mockRecorder struct {
	mu    sync.Mutex
	steps []string
}

func (r *mockRecorder) RecordFault(_ context.Context, step string, _ error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, step)
	return nil
}

func (r *mockRecorder) Steps() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.steps...)
}

// countingHeartbeat counts beats.
type countingHeartbeat struct {
	mu    sync.Mutex
	beats int
}

func (h *countingHeartbeat) Beat() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.beats++
	return nil
}

func (h *countingHeartbeat) Beats() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.beats
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
