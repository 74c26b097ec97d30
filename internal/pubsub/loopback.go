package pubsub

import (
	"sync"

	"github.com/nerrad567/gray-logic-buttonnode/internal/infrastructure/mqtt"
)

// Loopback is an in-process Transport with exact-match topics.
//
// Publish delivers synchronously on the caller's goroutine. Retained
// messages are replayed to later subscribers, as a broker would.
type Loopback struct {
	mu        sync.RWMutex
	subs      map[string][]mqtt.MessageHandler
	retained  map[string][]byte
	connected bool
	published uint64

	onConnect    func()
	onDisconnect func(err error)
}

// NewLoopback returns a connected loopback bus.
func NewLoopback() *Loopback {
	return &Loopback{
		subs:      make(map[string][]mqtt.MessageHandler),
		retained:  make(map[string][]byte),
		connected: true,
	}
}

// Publish delivers payload to every subscriber of topic.
func (l *Loopback) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := mqtt.ValidatePublishTopic(topic); err != nil {
		return err
	}
	if qos > 2 {
		return mqtt.ErrInvalidQoS
	}

	l.mu.Lock()
	if !l.connected {
		l.mu.Unlock()
		return mqtt.ErrNotConnected
	}
	l.published++
	if retained {
		l.retained[topic] = append([]byte(nil), payload...)
	}
	handlers := append([]mqtt.MessageHandler(nil), l.subs[topic]...)
	l.mu.Unlock()

	for _, h := range handlers {
		_ = h(topic, append([]byte(nil), payload...))
	}
	return nil
}

// Subscribe adds handler for topic and replays any retained message.
func (l *Loopback) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	if err := mqtt.ValidatePublishTopic(topic); err != nil {
		return err
	}
	if qos > 2 {
		return mqtt.ErrInvalidQoS
	}
	if handler == nil {
		return mqtt.ErrSubscribeFailed
	}

	l.mu.Lock()
	if !l.connected {
		l.mu.Unlock()
		return mqtt.ErrNotConnected
	}
	l.subs[topic] = append(l.subs[topic], handler)
	kept, hasRetained := l.retained[topic]
	l.mu.Unlock()

	if hasRetained {
		_ = handler(topic, append([]byte(nil), kept...))
	}
	return nil
}

// Unsubscribe removes every handler for topic.
func (l *Loopback) Unsubscribe(topic string) error {
	if topic == "" {
		return mqtt.ErrInvalidTopic
	}
	l.mu.Lock()
	delete(l.subs, topic)
	l.mu.Unlock()
	return nil
}

// IsConnected reports the simulated link state.
func (l *Loopback) IsConnected() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.connected
}

// SetConnected simulates the broker link going down or coming back, firing
// the matching callback on a change.
func (l *Loopback) SetConnected(up bool) {
	l.mu.Lock()
	changed := l.connected != up
	l.connected = up
	onConnect, onDisconnect := l.onConnect, l.onDisconnect
	l.mu.Unlock()

	switch {
	case !changed:
	case up && onConnect != nil:
		onConnect()
	case !up && onDisconnect != nil:
		onDisconnect(mqtt.ErrNotConnected)
	}
}

// SetOnConnect sets the callback for a link coming back up.
func (l *Loopback) SetOnConnect(callback func()) {
	l.mu.Lock()
	l.onConnect = callback
	l.mu.Unlock()
}

// SetOnDisconnect sets the callback for a link going down.
func (l *Loopback) SetOnDisconnect(callback func(err error)) {
	l.mu.Lock()
	l.onDisconnect = callback
	l.mu.Unlock()
}

// Published returns the number of accepted publishes.
func (l *Loopback) Published() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.published
}
