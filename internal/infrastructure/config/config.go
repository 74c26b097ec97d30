package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Bridge strategy names accepted in bridge.strategy.
const (
	StrategyQueued  = "queued"
	StrategyFlagged = "flagged"
)

// Queue overflow policies accepted in bridge.overflow.
const (
	OverflowDropOldest = "drop_oldest"
	OverflowDropNewest = "drop_newest"
)

// GPIO backend names accepted in gpio.backend.
const (
	GPIOBackendSim      = "sim"
	GPIOBackendGPIOCDev = "gpiocdev"
)

// Pub/sub transports accepted in mqtt.transport.
const (
	TransportMQTT     = "mqtt"
	TransportLoopback = "loopback"
)

// Payload encodings accepted in topics.payload_encoding.
const (
	EncodingBinary = "binary"
	EncodingText   = "text"
)

// Config is the root configuration structure for the button node.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Node     NodeConfig     `yaml:"node"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Topics   TopicsConfig   `yaml:"topics"`
	Bridge   BridgeConfig   `yaml:"bridge"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	GPIO     GPIOConfig     `yaml:"gpio"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Journal  JournalConfig  `yaml:"journal"`
	Health   HealthConfig   `yaml:"health"`
	Watchdog WatchdogConfig `yaml:"watchdog"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// NodeConfig identifies this node on the pub/sub layer.
type NodeConfig struct {
	Name      string `yaml:"name"`
	Namespace string `yaml:"namespace"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	// Transport is "mqtt" (a real broker) or "loopback" (in-process bus
	// for bench runs without a broker).
	Transport string `yaml:"transport"`

	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`

	// InboxSize bounds the number of inbound messages held between spins.
	InboxSize int `yaml:"inbox_size"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// TopicsConfig names the topics the node publishes and subscribes to.
type TopicsConfig struct {
	Button string `yaml:"button"`
	LED    string `yaml:"led"`
	Status string `yaml:"status"`

	// PayloadEncoding selects how single-byte values travel: "binary" sends
	// the raw byte, "text" sends its decimal representation.
	PayloadEncoding string `yaml:"payload_encoding"`
}

// BridgeConfig selects how button events cross from interrupt to task context.
type BridgeConfig struct {
	// Strategy is "queued" (bounded FIFO + consumer task) or
	// "flagged" (single atomic flag polled by one cooperative loop).
	Strategy string `yaml:"strategy"`

	// QueueCapacity is the fixed FIFO size for the queued strategy.
	QueueCapacity int `yaml:"queue_capacity"`

	// Overflow picks the event lost when the queue is full: "drop_oldest"
	// keeps the latest presses, "drop_newest" rejects the incoming one like
	// a send-from-ISR into a full RTOS queue.
	Overflow string `yaml:"overflow"`

	// ConsumerTimeoutMS bounds each blocking drain. 0 waits forever.
	ConsumerTimeoutMS int `yaml:"consumer_timeout_ms"`
}

// DispatchConfig controls the middleware spin cadence.
type DispatchConfig struct {
	MaxWaitMS       int `yaml:"max_wait_ms"`
	ExecutorHandles int `yaml:"executor_handles"`
}

// GPIOConfig selects the hardware backend and lines.
type GPIOConfig struct {
	Backend    string `yaml:"backend"`
	Chip       string `yaml:"chip"`
	ButtonLine int    `yaml:"button_line"`
	LEDLine    int    `yaml:"led_line"`
	DebounceMS int    `yaml:"debounce_ms"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// JournalConfig contains the SQLite boot/fault journal settings.
type JournalConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// HealthConfig controls the liveness heartbeat read by the watchdog.
type HealthConfig struct {
	HeartbeatFile       string `yaml:"heartbeat_file"`
	HeartbeatIntervalMS int    `yaml:"heartbeat_interval_ms"`
}

// WatchdogConfig configures cmd/nodewatchdog.
type WatchdogConfig struct {
	Binary          string   `yaml:"binary"`
	Args            []string `yaml:"args"`
	StaleAfterMS    int      `yaml:"stale_after_ms"`
	CheckIntervalMS int      `yaml:"check_interval_ms"`
	RestartDelayMS  int      `yaml:"restart_delay_ms"`
	MaxRestarts     int      `yaml:"max_restarts"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: BUTTONNODE_SECTION_KEY
// For example: BUTTONNODE_MQTT_HOST, BUTTONNODE_BRIDGE_STRATEGY
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with the firmware's reference values.
func Default() *Config {
	return &Config{
		Node: NodeConfig{
			Name: "pio_micro_ros",
		},
		MQTT: MQTTConfig{
			Transport: TransportMQTT,
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
			InboxSize: 32,
		},
		Topics: TopicsConfig{
			Button:          "button",
			LED:             "led",
			Status:          "buttonnode/status",
			PayloadEncoding: EncodingBinary,
		},
		Bridge: BridgeConfig{
			Strategy:      StrategyQueued,
			QueueCapacity: 8,
			Overflow:      OverflowDropOldest,
		},
		Dispatch: DispatchConfig{
			MaxWaitMS:       100,
			ExecutorHandles: 1,
		},
		GPIO: GPIOConfig{
			Backend:    GPIOBackendSim,
			Chip:       "gpiochip0",
			ButtonLine: 0,
			LEDLine:    2,
		},
		Journal: JournalConfig{
			Path:        "./data/buttonnode.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Health: HealthConfig{
			HeartbeatIntervalMS: 1000,
		},
		Watchdog: WatchdogConfig{
			StaleAfterMS:    5000,
			CheckIntervalMS: 2000,
			RestartDelayMS:  2000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: BUTTONNODE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Node
	if v := os.Getenv("BUTTONNODE_NODE_NAME"); v != "" {
		cfg.Node.Name = v
	}

	// MQTT
	if v := os.Getenv("BUTTONNODE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("BUTTONNODE_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("BUTTONNODE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("BUTTONNODE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("BUTTONNODE_MQTT_TRANSPORT"); v != "" {
		cfg.MQTT.Transport = strings.ToLower(v)
	}

	// Bridge
	if v := os.Getenv("BUTTONNODE_BRIDGE_STRATEGY"); v != "" {
		cfg.Bridge.Strategy = strings.ToLower(v)
	}
	if v := os.Getenv("BUTTONNODE_BRIDGE_OVERFLOW"); v != "" {
		cfg.Bridge.Overflow = strings.ToLower(v)
	}

	// GPIO
	if v := os.Getenv("BUTTONNODE_GPIO_BACKEND"); v != "" {
		cfg.GPIO.Backend = strings.ToLower(v)
	}

	// InfluxDB
	if v := os.Getenv("BUTTONNODE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Journal
	if v := os.Getenv("BUTTONNODE_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of all validation failures, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Node.Name == "" {
		errs = append(errs, "node.name is required")
	}

	switch c.MQTT.Transport {
	case TransportMQTT, TransportLoopback:
	default:
		errs = append(errs, "mqtt.transport must be mqtt or loopback")
	}
	if c.MQTT.Transport == TransportMQTT && (c.MQTT.Broker.Host == "" || c.MQTT.Broker.Port < 1) {
		errs = append(errs, "mqtt.broker.host and mqtt.broker.port are required for the mqtt transport")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.InboxSize < 1 {
		errs = append(errs, "mqtt.inbox_size must be at least 1")
	}

	if c.Topics.Button == "" || c.Topics.LED == "" {
		errs = append(errs, "topics.button and topics.led are required")
	}
	switch c.Topics.PayloadEncoding {
	case EncodingBinary, EncodingText:
	default:
		errs = append(errs, "topics.payload_encoding must be binary or text")
	}

	switch c.Bridge.Strategy {
	case StrategyQueued, StrategyFlagged:
	default:
		errs = append(errs, "bridge.strategy must be queued or flagged")
	}
	if c.Bridge.Strategy == StrategyQueued && c.Bridge.QueueCapacity < 1 {
		errs = append(errs, "bridge.queue_capacity must be at least 1")
	}
	switch c.Bridge.Overflow {
	case OverflowDropOldest, OverflowDropNewest:
	default:
		errs = append(errs, "bridge.overflow must be drop_oldest or drop_newest")
	}
	if c.Bridge.ConsumerTimeoutMS < 0 {
		errs = append(errs, "bridge.consumer_timeout_ms must not be negative")
	}

	if c.Dispatch.MaxWaitMS < 1 {
		errs = append(errs, "dispatch.max_wait_ms must be at least 1")
	}
	if c.Dispatch.ExecutorHandles < 1 {
		errs = append(errs, "dispatch.executor_handles must be at least 1")
	}

	switch c.GPIO.Backend {
	case GPIOBackendSim, GPIOBackendGPIOCDev:
	default:
		errs = append(errs, "gpio.backend must be sim or gpiocdev")
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		errs = append(errs, "journal.path is required when the journal is enabled")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetMaxWait returns the dispatch spin budget as a Duration.
func (c *Config) GetMaxWait() time.Duration {
	return time.Duration(c.Dispatch.MaxWaitMS) * time.Millisecond
}

// GetConsumerTimeout returns the blocking drain timeout. Zero means forever.
func (c *Config) GetConsumerTimeout() time.Duration {
	return time.Duration(c.Bridge.ConsumerTimeoutMS) * time.Millisecond
}

// GetHeartbeatInterval returns the minimum spacing between heartbeat touches.
func (c *Config) GetHeartbeatInterval() time.Duration {
	return time.Duration(c.Health.HeartbeatIntervalMS) * time.Millisecond
}

// GetDebounce returns the input debounce period. Zero disables debouncing.
func (g GPIOConfig) GetDebounce() time.Duration {
	return time.Duration(g.DebounceMS) * time.Millisecond
}
