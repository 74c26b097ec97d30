package mqtt

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-buttonnode/internal/infrastructure/config"
)

const (
	defaultConnectTimeout = 10 * time.Second

	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is in milliseconds, as paho expects.
	defaultDisconnectQuiesce = 250

	defaultKeepAlive = 30 * time.Second

	maxQoS = 2

	tlsMinVersion = tls.VersionTLS12

	// clientIDPrefix prefixes generated client IDs.
	clientIDPrefix = "buttonnode-"
)

// Status values carried on the retained status topic.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"

	ReasonShutdown   = "graceful_shutdown"
	ReasonConnection = "unexpected_disconnect"
)

// resolveClientID returns id, or a unique generated one when id is empty.
func resolveClientID(id string) string {
	if id != "" {
		return id
	}
	return clientIDPrefix + uuid.NewString()[:8]
}

// buildClientOptions maps the node's MQTT config onto paho options.
// Sessions are clean: nothing queued before a reset is replayed.
func buildClientOptions(cfg config.MQTTConfig, clientID string) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))
	opts.SetClientID(clientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second)
	opts.SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
	}

	return opts
}

// configureLWT makes the broker publish a retained offline status on
// statusTopic if this client disappears without a clean disconnect.
func configureLWT(opts *pahomqtt.ClientOptions, statusTopic, clientID string) {
	opts.SetWill(statusTopic, buildStatusPayload(StatusOffline, clientID, ReasonConnection), 1, true)
}

// statusPayload is the JSON body of status messages.
type statusPayload struct {
	Status    string `json:"status"`
	ClientID  string `json:"client_id"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

func buildStatusPayload(status, clientID, reason string) string {
	b, err := json.Marshal(statusPayload{
		Status:    status,
		ClientID:  clientID,
		Reason:    reason,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		// Only strings are marshalled; this cannot fail.
		return fmt.Sprintf(`{"status":%q}`, status)
	}
	return string(b)
}
