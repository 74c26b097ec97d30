// Package pubsub implements the node's middleware on top of MQTT.
//
// A Session walks the setup chain that the node core drives: Init dials the
// transport, CreateNode records the node identity, and CreatePublisher,
// CreateSubscription and CreateExecutor hand out the resources the node
// holds for its lifetime.
//
// # Delivery model
//
// Broker callbacks never run node code. They only push into a bounded
// Inbox. Executor.SpinSome is the one place message handlers run, so every
// inbound message is handled on the dispatch context:
//
//	paho goroutine ──Push──▶ Inbox ──SpinSome──▶ handler (dispatch context)
//
// The inbox keeps only the newest pending message per topic, and drops the
// oldest pending message when it is full.
//
// # Transports
//
//   - *mqtt.Client talks to a real broker (see MQTTDialer)
//   - *Loopback is an in-process bus for bench runs and tests
package pubsub
