package node

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Options holds everything a Node needs. Bridge, Middleware, Output and
// Codec are required; the rest default to no-ops.
type Options struct {
	Name        string
	Namespace   string
	ButtonTopic string
	LEDTopic    string

	Bridge     Bridge
	Middleware Middleware
	Output     OutputLine
	Codec      Codec

	// MaxWait is the spin budget per dispatch iteration. Default 100ms.
	MaxWait time.Duration

	// ConsumerTimeout bounds each blocking drain in the queued strategy.
	// Zero waits until an event arrives.
	ConsumerTimeout time.Duration

	// ExecutorHandles sizes the executor. Default 1.
	ExecutorHandles int

	Logger        Logger
	Telemetry     Telemetry
	Heartbeat     Heartbeat
	FaultRecorder FaultRecorder
}

// Node is the single owned context of the button node. It replaces the
// process-wide handles, counters and flags of a firmware image.
type Node struct {
	opts   Options
	logger Logger

	bridge     Bridge
	publisher  *PublisherAdapter
	subscriber *SubscriberAdapter
	fault      *FaultSink

	mu       sync.RWMutex
	handle   *Handle
	dispatch *DispatchLoop

	runOnce     atomic.Bool
	lastDropped atomic.Uint64
}

// Stats is a point-in-time view of the node, safe to take from any goroutine.
type Stats struct {
	Name            string      `json:"name"`
	Strategy        string      `json:"strategy"`
	State           string      `json:"state"`
	Counter         uint8       `json:"counter"`
	Actuator        bool        `json:"actuator"`
	Bridge          BridgeStats `json:"bridge"`
	Published       uint64      `json:"published"`
	PublishFailures uint64      `json:"publish_failures"`
	Received        uint64      `json:"received"`
	Rejected        uint64      `json:"rejected"`
	Spins           uint64      `json:"spins"`
	SpinFailures    uint64      `json:"spin_failures"`
}

// New validates opts and builds a Node. No middleware call is made here.
func New(opts Options) (*Node, error) {
	switch {
	case opts.Bridge == nil:
		return nil, fmt.Errorf("%w: bridge", ErrMissingDependency)
	case opts.Middleware == nil:
		return nil, fmt.Errorf("%w: middleware", ErrMissingDependency)
	case opts.Output == nil:
		return nil, fmt.Errorf("%w: output line", ErrMissingDependency)
	case opts.Codec == nil:
		return nil, fmt.Errorf("%w: codec", ErrMissingDependency)
	}

	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	if opts.Telemetry == nil {
		opts.Telemetry = noopTelemetry{}
	}
	if opts.Heartbeat == nil {
		opts.Heartbeat = noopHeartbeat{}
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = DefaultMaxWait
	}
	if opts.ExecutorHandles < 1 {
		opts.ExecutorHandles = 1
	}

	n := &Node{
		opts:   opts,
		logger: opts.Logger,
		bridge: opts.Bridge,
		fault:  NewFaultSink(opts.Logger, opts.Telemetry, opts.FaultRecorder),
	}
	n.subscriber = NewSubscriberAdapter(opts.Output, opts.Codec, opts.Logger, opts.Telemetry)
	return n, nil
}

// OnButtonPressed is the interrupt entry point. Wire it to the input line's
// rising edge. It only touches the bridge.
func (n *Node) OnButtonPressed() {
	n.bridge.Emit(EventButtonPressed)
}

// Run performs Setup and then runs the configured strategy until ctx is done.
//
// When Setup fails the node trips the FaultSink, idles until ctx is done, and
// returns the *SetupError. Run may only be called once.
func (n *Node) Run(ctx context.Context) error {
	if !n.runOnce.CompareAndSwap(false, true) {
		return fmt.Errorf("node %s: Run called twice", n.opts.Name)
	}

	handle, err := Setup(ctx, n.opts.Middleware, SetupOptions{
		NodeName:        n.opts.Name,
		Namespace:       n.opts.Namespace,
		ButtonTopic:     n.opts.ButtonTopic,
		LEDTopic:        n.opts.LEDTopic,
		ExecutorHandles: n.opts.ExecutorHandles,
		OnMessage:       n.subscriber.Handler(),
	})
	if err != nil {
		n.fault.Trip(ctx, err)
		n.fault.Idle(ctx)
		return err
	}

	pub := NewPublisherAdapter(handle.Publisher, n.opts.Codec, n.opts.Logger, n.opts.Telemetry)
	dispatch := NewDispatchLoop(handle.Executor, n.opts.MaxWait, n.opts.Logger, n.opts.Heartbeat)

	n.mu.Lock()
	n.handle = handle
	n.publisher = pub
	n.dispatch = dispatch
	n.mu.Unlock()

	n.logger.Info("node running",
		"name", n.opts.Name,
		"strategy", n.bridge.Strategy(),
		"max_wait", n.opts.MaxWait,
	)

	switch n.bridge.Strategy() {
	case StrategyFlagged:
		return n.runFlagged(ctx, pub, dispatch)
	default:
		return n.runQueued(ctx, pub, dispatch)
	}
}

// runQueued runs the dispatch task and the consumer task side by side.
// Neither returns an error; the group ends when ctx is done.
func (n *Node) runQueued(ctx context.Context, pub *PublisherAdapter, dispatch *DispatchLoop) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return dispatch.Run(gctx)
	})

	g.Go(func() error {
		for {
			ev, ok := n.bridge.Drain(gctx, n.opts.ConsumerTimeout)
			if gctx.Err() != nil {
				return nil
			}
			if !ok {
				continue
			}
			n.handleEvent(gctx, pub, ev)
		}
	})

	return g.Wait()
}

// runFlagged is the single cooperative loop. The spin always comes before
// the flag check so inbound traffic is never starved by outbound work.
func (n *Node) runFlagged(ctx context.Context, pub *PublisherAdapter, dispatch *DispatchLoop) error {
	for ctx.Err() == nil {
		dispatch.Iterate(ctx)

		if ev, ok := n.bridge.TryDrain(); ok {
			n.handleEvent(ctx, pub, ev)
		}
	}
	return nil
}

// handleEvent is the consumer's switch over event kinds.
func (n *Node) handleEvent(ctx context.Context, pub *PublisherAdapter, ev Event) {
	switch ev {
	case EventButtonPressed:
		n.logger.Info("Button is pressed!")
		_ = pub.OnEvent(ctx, ev) // soft; already logged and counted
	default:
		return
	}
	n.reportDrops()
}

// reportDrops surfaces bridge losses once per change. It runs on the
// consumer side because Emit may not log.
func (n *Node) reportDrops() {
	stats := n.bridge.Stats()
	lost := stats.Dropped + stats.Collapsed
	if prev := n.lastDropped.Swap(lost); prev != lost {
		n.logger.Warn("button events lost in bridge",
			"strategy", n.bridge.Strategy(),
			"dropped", stats.Dropped,
			"collapsed", stats.Collapsed,
		)
		n.opts.Telemetry.RecordBridgeStats(stats.Emitted, stats.Dropped, stats.Collapsed)
	}
}

// Faulted reports whether setup failed.
func (n *Node) Faulted() bool {
	return n.fault.Faulted()
}

// FaultSink exposes the node's fault state.
func (n *Node) FaultSink() *FaultSink {
	return n.fault
}

// Actuator returns the current actuator state.
func (n *Node) Actuator() bool {
	return n.subscriber.State()
}

// Stats returns a snapshot of counters across all components.
func (n *Node) Stats() Stats {
	n.mu.RLock()
	pub := n.publisher
	dispatch := n.dispatch
	n.mu.RUnlock()

	s := Stats{
		Name:     n.opts.Name,
		Strategy: n.bridge.Strategy(),
		State:    n.fault.State().String(),
		Actuator: n.subscriber.State(),
		Bridge:   n.bridge.Stats(),
		Received: n.subscriber.Received(),
		Rejected: n.subscriber.Rejected(),
	}
	if pub != nil {
		s.Counter = pub.Counter()
		s.Published = pub.Published()
		s.PublishFailures = pub.Failures()
	}
	if dispatch != nil {
		s.Spins = dispatch.Spins()
		s.SpinFailures = dispatch.Failures()
	}
	return s
}
