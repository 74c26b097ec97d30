package mqtt

import (
	"context"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-logic-buttonnode/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang for the button node.
//
// It owns the broker session: connection, the retained status topic with its
// Last Will, subscription restore after reconnect, and panic-safe handler
// dispatch.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Handlers run on paho's goroutines, never on the caller's.
type Client struct {
	client  pahomqtt.Client
	options *pahomqtt.ClientOptions
	cfg     config.MQTTConfig

	clientID    string
	statusTopic string

	// subscriptions are replayed after every reconnect.
	subscriptions map[string]subscription
	subMu         sync.RWMutex

	connected bool
	connMu    sync.RWMutex

	onConnect    func()
	onDisconnect func(err error)
	callbackMu   sync.RWMutex

	logger   Logger
	loggerMu sync.RWMutex
}

// Logger is the subset of logging.Logger the client needs.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

type subscription struct {
	topic   string
	qos     byte
	handler MessageHandler
}

// MessageHandler receives one message. It runs on a paho goroutine and
// should hand the payload off rather than do work in place.
//
// A returned error is logged; it does not affect acknowledgement.
type MessageHandler func(topic string, payload []byte) error

// Connect dials the broker and returns a connected client.
//
// The Last Will marks statusTopic offline if the process dies; on every
// (re)connect the client publishes a retained online status there. An empty
// statusTopic disables both. An empty cfg.Broker.ClientID is replaced with a
// generated one.
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: wrapped ErrConnectionFailed if the broker is not reachable in time
func Connect(cfg config.MQTTConfig, statusTopic string) (*Client, error) {
	clientID := resolveClientID(cfg.Broker.ClientID)
	opts := buildClientOptions(cfg, clientID)
	if statusTopic != "" {
		configureLWT(opts, statusTopic, clientID)
	}

	c := &Client{
		cfg:           cfg,
		options:       opts,
		clientID:      clientID,
		statusTopic:   statusTopic,
		subscriptions: make(map[string]subscription),
	}

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleDisconnect(err)
	})
	opts.SetReconnectingHandler(func(_ pahomqtt.Client, _ *pahomqtt.ClientOptions) {
		if logger := c.getLogger(); logger != nil {
			logger.Warn("mqtt reconnecting", "client_id", clientID)
		}
	})

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		// Stops the background connect retry.
		c.client.Disconnect(0)
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		c.client.Disconnect(0)
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The OnConnect callback is asynchronous; mark connected now so callers
	// can publish immediately.
	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	return c, nil
}

func (c *Client) handleConnect() {
	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	c.restoreSubscriptions()
	c.publishStatus(StatusOnline, "")

	c.callbackMu.RLock()
	callback := c.onConnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback()
	}
}

func (c *Client) handleDisconnect(err error) {
	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	if logger := c.getLogger(); logger != nil {
		logger.Warn("mqtt connection lost", "error", err)
	}

	c.callbackMu.RLock()
	callback := c.onDisconnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback(err)
	}
}

// restoreSubscriptions replays tracked subscriptions. Errors are ignored;
// a failed restore is retried on the next reconnect.
func (c *Client) restoreSubscriptions() {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	for _, sub := range c.subscriptions {
		c.client.Subscribe(sub.topic, sub.qos, c.wrapHandler(sub.handler))
	}
}

// publishStatus sends a retained status message without waiting for the ack.
func (c *Client) publishStatus(status, reason string) pahomqtt.Token {
	if c.statusTopic == "" {
		return nil
	}
	payload := buildStatusPayload(status, c.clientID, reason)
	return c.client.Publish(c.statusTopic, byte(c.cfg.QoS), true, payload)
}

// Close publishes a graceful offline status and disconnects.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	if c.IsConnected() {
		if token := c.publishStatus(StatusOffline, ReasonShutdown); token != nil {
			token.WaitTimeout(defaultPublishTimeout)
		}
	}

	c.client.Disconnect(defaultDisconnectQuiesce)

	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	return nil
}

// HealthCheck returns ErrNotConnected while the broker session is down.
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected returns the last known connection state.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client != nil && c.client.IsConnected()
}

// SetOnConnect sets a callback run after every successful (re)connect.
func (c *Client) SetOnConnect(callback func()) {
	c.callbackMu.Lock()
	c.onConnect = callback
	c.callbackMu.Unlock()
}

// SetOnDisconnect sets a callback run when the connection drops.
func (c *Client) SetOnDisconnect(callback func(err error)) {
	c.callbackMu.Lock()
	c.onDisconnect = callback
	c.callbackMu.Unlock()
}

// SetLogger sets the logger used for handler failures and reconnects.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// wrapHandler adds panic recovery and error logging around a handler.
func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if logger := c.getLogger(); logger != nil {
					logger.Error("mqtt handler panic recovered",
						"topic", msg.Topic(),
						"panic", r,
					)
				}
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("mqtt handler returned error",
					"topic", msg.Topic(),
					"error", err,
				)
			}
		}
	}
}
