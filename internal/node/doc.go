// Package node is the concurrency core of the button node.
//
// It moves a button press from interrupt context to task context, turns it
// into an outbound counter publish, and turns inbound single-byte messages
// into an output line level. Three execution contexts are involved:
//
//   - interrupt context: the GPIO edge callback. It only calls Bridge.Emit,
//     which never blocks, never allocates and never touches the middleware.
//   - dispatch context: DispatchLoop, the only caller of Executor.SpinSome
//     and therefore the only context in which SubscriberAdapter.OnMessage runs.
//   - consumer context: drains the Bridge and drives PublisherAdapter.
//
// # Strategies
//
// Queued (default) runs dispatch and consumer as two goroutines. Events sit in
// a fixed-capacity FIFO and are delivered in order of emission. When it is
// full the oldest event is evicted (DropOldest, default) or the incoming one
// is rejected (DropNewest); either way the loss is counted.
//
// Flagged runs one cooperative loop: spin the middleware first, then check a
// single atomic flag. Any number of presses between two checks collapse into
// one event. This loses counts under rapid input and is accepted behaviour.
//
// # Ownership
//
// CounterState is written only by the consumer (PublisherAdapter.OnEvent).
// ActuatorState is written only by SubscriberAdapter.OnMessage. Both are held
// in atomics so that Stats can read them from other goroutines; a second
// writer would need a lock.
//
// # Setup and faults
//
// Setup creates the middleware resources in a fixed order and stops at the
// first failure. Node.Run hands that failure to the FaultSink, which logs a
// single diagnostic and idles without beating the heartbeat, so an external
// watchdog sees the node as hung and restarts it.
package node
