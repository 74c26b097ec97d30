package mqtt

import (
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// maxPayloadSize caps outbound payloads. The node only ever sends one byte
// plus status JSON, so this mostly guards against misuse.
const maxPayloadSize = 64 << 10

// Publish sends payload to topic and waits for the broker acknowledgement
// (QoS 1 and 2) or the publish timeout.
//
// Returns:
//   - error: ErrInvalidTopic, ErrInvalidQoS, ErrNotConnected, or a wrapped
//     ErrPublishFailed
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := c.checkPublish(topic, payload, qos); err != nil {
		return err
	}
	return waitPublish(c.client.Publish(topic, qos, retained, payload), defaultPublishTimeout)
}

// PublishAsync hands payload to paho and returns without waiting for the
// broker. Argument and connection errors are returned directly. The
// acknowledgement outcome goes to done, on another goroutine, when done is
// not nil.
func (c *Client) PublishAsync(topic string, payload []byte, qos byte, retained bool, done func(error)) error {
	if err := c.checkPublish(topic, payload, qos); err != nil {
		return err
	}
	token := c.client.Publish(topic, qos, retained, payload)
	if done != nil {
		go func() {
			done(waitPublish(token, defaultPublishTimeout))
		}()
	}
	return nil
}

func (c *Client) checkPublish(topic string, payload []byte, qos byte) error {
	if err := ValidatePublishTopic(topic); err != nil {
		return err
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// waitPublish waits for token and maps its outcome to ErrPublishFailed.
func waitPublish(token pahomqtt.Token, timeout time.Duration) error {
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}
