package node

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestNode(t *testing.T, bridge Bridge, mw *mockMiddleware, out *mockOutput) *Node {
	t.Helper()
	n, err := New(Options{
		Name:            "pio_micro_ros",
		ButtonTopic:     "button",
		LEDTopic:        "led",
		Bridge:          bridge,
		Middleware:      mw,
		Output:          out,
		Codec:           BinaryCodec{},
		MaxWait:         10 * time.Millisecond,
		ConsumerTimeout: 20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return n
}

// runNode starts n.Run in the background and returns a stop function that
// cancels it and waits for it to return.
func runNode(t *testing.T, n *Node) func() error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- n.Run(ctx) }()

	return func() error {
		cancel()
		select {
		case err := <-errCh:
			return err
		case <-time.After(2 * time.Second):
			t.Fatal("Run() did not return after cancellation")
			return nil
		}
	}
}

func TestNew_MissingDependencies(t *testing.T) {
	q, _ := NewQueuedBridge(1, DropOldest)
	full := Options{
		Bridge:     q,
		Middleware: newMockMiddleware(),
		Output:     &mockOutput{},
		Codec:      BinaryCodec{},
	}

	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"no bridge", func(o *Options) { o.Bridge = nil }},
		{"no middleware", func(o *Options) { o.Middleware = nil }},
		{"no output", func(o *Options) { o.Output = nil }},
		{"no codec", func(o *Options) { o.Codec = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := full
			tt.mutate(&opts)
			if _, err := New(opts); !errors.Is(err, ErrMissingDependency) {
				t.Errorf("New() error = %v, want ErrMissingDependency", err)
			}
		})
	}
}

func TestNode_QueuedPublishesEveryPress(t *testing.T) {
	q, _ := NewQueuedBridge(8, DropOldest)
	mw := newMockMiddleware()
	n := newTestNode(t, q, mw, &mockOutput{})
	stop := runNode(t, n)

	for i := 0; i < 3; i++ {
		n.OnButtonPressed()
	}

	if !waitFor(time.Second, func() bool { return len(mw.publisher.Payloads()) == 3 }) {
		t.Fatalf("published %d payloads, want 3", len(mw.publisher.Payloads()))
	}
	if err := stop(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for i, p := range mw.publisher.Payloads() {
		if p[0] != uint8(i+1) {
			t.Errorf("payload #%d = %d, want %d", i, p[0], i+1)
		}
	}
	if n.Stats().Counter != 3 {
		t.Errorf("Stats().Counter = %d, want 3", n.Stats().Counter)
	}
}

func TestNode_QueuedBurstBeyondCapacity(t *testing.T) {
	q, _ := NewQueuedBridge(8, DropOldest)
	mw := newMockMiddleware()
	n := newTestNode(t, q, mw, &mockOutput{})

	// Presses arrive before the consumer exists, so the queue must absorb them.
	for i := 0; i < 20; i++ {
		n.OnButtonPressed()
	}
	stop := runNode(t, n)

	if !waitFor(time.Second, func() bool { return len(mw.publisher.Payloads()) == 8 }) {
		t.Fatalf("published %d payloads, want 8", len(mw.publisher.Payloads()))
	}
	time.Sleep(50 * time.Millisecond)
	_ = stop()

	if got := len(mw.publisher.Payloads()); got != 8 {
		t.Errorf("published %d payloads, want min(20, 8) = 8", got)
	}
	if stats := n.Stats(); stats.Bridge.Dropped != 12 {
		t.Errorf("Bridge.Dropped = %d, want 12", stats.Bridge.Dropped)
	}
}

func TestNode_FlaggedCollapsesBurst(t *testing.T) {
	f := NewFlaggedBridge()
	mw := newMockMiddleware()
	n := newTestNode(t, f, mw, &mockOutput{})

	for i := 0; i < 10; i++ {
		n.OnButtonPressed()
	}
	stop := runNode(t, n)

	if !waitFor(time.Second, func() bool { return len(mw.publisher.Payloads()) == 1 }) {
		t.Fatalf("published %d payloads, want 1", len(mw.publisher.Payloads()))
	}
	time.Sleep(50 * time.Millisecond)

	// A later press is a new event.
	n.OnButtonPressed()
	if !waitFor(time.Second, func() bool { return len(mw.publisher.Payloads()) == 2 }) {
		t.Fatalf("published %d payloads, want 2", len(mw.publisher.Payloads()))
	}
	_ = stop()

	if got := n.Stats().Counter; got != 2 {
		t.Errorf("Counter = %d, want 2", got)
	}
}

func TestNode_InboundDrivesActuator(t *testing.T) {
	for _, strategy := range []string{StrategyQueued, StrategyFlagged} {
		t.Run(strategy, func(t *testing.T) {
			b, _ := NewBridge(strategy, 8, DropOldest)
			mw := newMockMiddleware()
			out := &mockOutput{}
			n := newTestNode(t, b, mw, out)
			stop := runNode(t, n)

			mw.executor.incoming <- []byte{7}
			if !waitFor(time.Second, n.Actuator) {
				t.Fatal("actuator not switched on by payload 7")
			}

			mw.executor.incoming <- []byte{0}
			if !waitFor(time.Second, func() bool { return !n.Actuator() }) {
				t.Fatal("actuator not switched off by payload 0")
			}
			_ = stop()

			if n.Stats().Received != 2 {
				t.Errorf("Received = %d, want 2", n.Stats().Received)
			}
		})
	}
}

func TestNode_FlaggedSpinsWhileIdle(t *testing.T) {
	mw := newMockMiddleware()
	n := newTestNode(t, NewFlaggedBridge(), mw, &mockOutput{})
	stop := runNode(t, n)

	if !waitFor(time.Second, func() bool { return mw.executor.Spins() >= 3 }) {
		t.Fatalf("Spins = %d, want the loop to keep spinning with no events", mw.executor.Spins())
	}
	_ = stop()
}

func TestNode_SetupFailureFaults(t *testing.T) {
	q, _ := NewQueuedBridge(8, DropOldest)
	mw := newMockMiddleware()
	mw.failAt = StepPublisher
	rec := &mockRecorder{}

	n, err := New(Options{
		Name:          "pio_micro_ros",
		Bridge:        q,
		Middleware:    mw,
		Output:        &mockOutput{},
		Codec:         BinaryCodec{},
		FaultRecorder: rec,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := runNode(t, n)

	if !waitFor(time.Second, n.Faulted) {
		t.Fatal("node did not fault")
	}
	n.OnButtonPressed()
	time.Sleep(50 * time.Millisecond)

	err = stop()
	var setupErr *SetupError
	if !errors.As(err, &setupErr) || setupErr.Step != StepPublisher {
		t.Fatalf("Run() error = %v, want publisher setup failure", err)
	}

	if got := mw.Calls(); len(got) != 3 {
		t.Errorf("calls = %v, want stop after publisher", got)
	}
	if mw.executor.Spins() != 0 {
		t.Error("faulted node spun the executor")
	}
	if len(mw.publisher.Payloads()) != 0 {
		t.Error("faulted node published")
	}
	if got := rec.Steps(); len(got) != 1 || got[0] != StepPublisher {
		t.Errorf("recorded faults = %v, want [publisher]", got)
	}
	if n.Stats().State != "faulted" {
		t.Errorf("Stats().State = %q, want faulted", n.Stats().State)
	}
}

func TestNode_RunTwice(t *testing.T) {
	q, _ := NewQueuedBridge(1, DropOldest)
	n := newTestNode(t, q, newMockMiddleware(), &mockOutput{})
	stop := runNode(t, n)
	defer stop()

	if !waitFor(time.Second, func() bool { return n.runOnce.Load() }) {
		t.Fatal("first Run() did not start")
	}
	if err := n.Run(context.Background()); err == nil {
		t.Error("second Run() error = nil, want error")
	}
}

func TestNode_PublishFailureKeepsRunning(t *testing.T) {
	q, _ := NewQueuedBridge(8, DropOldest)
	mw := newMockMiddleware()
	mw.publisher.SetError(errInjected)
	n := newTestNode(t, q, mw, &mockOutput{})
	stop := runNode(t, n)

	n.OnButtonPressed()
	if !waitFor(time.Second, func() bool { return n.Stats().PublishFailures == 1 }) {
		t.Fatal("publish failure not counted")
	}

	mw.publisher.SetError(nil)
	n.OnButtonPressed()
	if !waitFor(time.Second, func() bool { return len(mw.publisher.Payloads()) == 1 }) {
		t.Fatal("node stopped publishing after a failure")
	}
	_ = stop()

	if p := mw.publisher.Payloads()[0]; p[0] != 2 {
		t.Errorf("payload = %d, want 2", p[0])
	}
	if n.Faulted() {
		t.Error("publish failure faulted the node")
	}
}
