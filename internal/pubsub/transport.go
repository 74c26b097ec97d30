package pubsub

import (
	"context"

	"github.com/nerrad567/gray-logic-buttonnode/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-buttonnode/internal/infrastructure/mqtt"
)

// Transport is the broker side of a Session. *mqtt.Client and *Loopback
// satisfy it.
type Transport interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	IsConnected() bool
}

// AsyncPublisher is implemented by transports that can publish without
// waiting for the broker. done receives the delivery outcome later, on a
// goroutine of the transport's choosing. *mqtt.Client satisfies it.
type AsyncPublisher interface {
	PublishAsync(topic string, payload []byte, qos byte, retained bool, done func(error)) error
}

// Dialer produces a connected Transport. Session.Init calls it once.
type Dialer func(ctx context.Context) (Transport, error)

// MQTTDialer returns a Dialer connecting to the configured broker.
// statusTopic carries the client's retained online/offline status.
func MQTTDialer(cfg config.MQTTConfig, statusTopic string, logger mqtt.Logger) Dialer {
	return func(ctx context.Context) (Transport, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		client, err := mqtt.Connect(cfg, statusTopic)
		if err != nil {
			return nil, err
		}
		if logger != nil {
			client.SetLogger(logger)
		}
		return client, nil
	}
}

// StaticDialer returns a Dialer that always yields t.
func StaticDialer(t Transport) Dialer {
	return func(context.Context) (Transport, error) {
		return t, nil
	}
}
