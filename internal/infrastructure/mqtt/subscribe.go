package mqtt

import (
	"fmt"
)

// Subscribe registers handler for topic. The subscription is tracked and
// restored automatically after a reconnect.
//
// The handler runs on a paho goroutine for each message.
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.subMu.Lock()
	c.subscriptions[topic] = subscription{
		topic:   topic,
		qos:     qos,
		handler: handler,
	}
	c.subMu.Unlock()

	token := c.client.Subscribe(topic, qos, c.wrapHandler(handler))
	if !token.WaitTimeout(defaultPublishTimeout) {
		c.forget(topic)
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		c.forget(topic)
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	return nil
}

// Unsubscribe stops delivery for topic. Messages already in flight may
// still reach the handler.
func (c *Client) Unsubscribe(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.forget(topic)

	token := c.client.Unsubscribe(topic)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrUnsubscribeFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnsubscribeFailed, err)
	}
	return nil
}

func (c *Client) forget(topic string) {
	c.subMu.Lock()
	delete(c.subscriptions, topic)
	c.subMu.Unlock()
}

// SubscriptionCount returns the number of tracked subscriptions.
func (c *Client) SubscriptionCount() int {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return len(c.subscriptions)
}

// HasSubscription reports whether topic is tracked (exact match).
func (c *Client) HasSubscription(topic string) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	_, exists := c.subscriptions[topic]
	return exists
}
