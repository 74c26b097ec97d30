// Button node - interrupt-driven button publisher and LED subscriber.
//
// A rising edge on the button line becomes one event on the bridge; the
// node publishes a wrapping 8-bit press counter on the button topic and
// drives the LED from single-byte messages on the led topic. Setup failures
// park the node in the fault sink until the watchdog resets it.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/gray-logic-buttonnode/migrations"

	"github.com/nerrad567/gray-logic-buttonnode/internal/hal"
	"github.com/nerrad567/gray-logic-buttonnode/internal/heartbeat"
	"github.com/nerrad567/gray-logic-buttonnode/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-buttonnode/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-buttonnode/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-buttonnode/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-buttonnode/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-buttonnode/internal/journal"
	"github.com/nerrad567/gray-logic-buttonnode/internal/node"
	"github.com/nerrad567/gray-logic-buttonnode/internal/pubsub"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the node and blocks until ctx is done.
//
// stdin feeds sim commands when the gpio backend is "sim"; nil disables them.
// A setup failure is returned only after ctx is done, since the faulted node
// idles until reset.
func run(ctx context.Context, stdin io.Reader) error {
	log := logging.Default()
	log.Info("starting button node",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"strategy", cfg.Bridge.Strategy,
		"overflow", cfg.Bridge.Overflow,
		"transport", cfg.MQTT.Transport,
		"gpio", cfg.GPIO.Backend,
	)

	lines, err := hal.Open(cfg.GPIO)
	if err != nil {
		return fmt.Errorf("opening gpio: %w", err)
	}
	defer func() {
		if closeErr := lines.Close(); closeErr != nil {
			log.Error("error releasing gpio lines", "error", closeErr)
		}
	}()

	overflow, err := node.ParseOverflow(cfg.Bridge.Overflow)
	if err != nil {
		return fmt.Errorf("creating bridge: %w", err)
	}
	bridge, err := node.NewBridge(cfg.Bridge.Strategy, cfg.Bridge.QueueCapacity, overflow)
	if err != nil {
		return fmt.Errorf("creating bridge: %w", err)
	}
	codec, err := node.NewCodec(cfg.Topics.PayloadEncoding)
	if err != nil {
		return fmt.Errorf("creating codec: %w", err)
	}

	var recorder node.FaultRecorder
	if cfg.Journal.Enabled {
		db, repo, dbErr := openJournal(ctx, cfg)
		if dbErr != nil {
			return dbErr
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing journal", "error", closeErr)
			}
		}()

		boot, bootErr := repo.RecordBoot(ctx, journal.Boot{
			Node:     cfg.Node.Name,
			Strategy: cfg.Bridge.Strategy,
			Version:  version,
		})
		if bootErr != nil {
			return fmt.Errorf("recording boot: %w", bootErr)
		}
		recorder = journal.NewFaultRecorder(repo, cfg.Node.Name, boot.ID)
		log.Info("journal opened", "path", cfg.Journal.Path, "boot_id", boot.ID)
	}

	var telemetry node.Telemetry
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			// Telemetry is optional; the button keeps working without it.
			log.Warn("InfluxDB unavailable, telemetry disabled", "error", influxErr)
		} else {
			defer func() {
				if closeErr := influxClient.Close(); closeErr != nil {
					log.Error("error closing InfluxDB", "error", closeErr)
				}
			}()
			influxClient.SetOnError(func(err error) {
				log.Warn("InfluxDB write error", "error", err)
			})
			telemetry = influxClient.Telemetry(cfg.Node.Name)
			log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
		}
	}

	var loopback *pubsub.Loopback
	var dial pubsub.Dialer
	switch cfg.MQTT.Transport {
	case config.TransportLoopback:
		loopback = pubsub.NewLoopback()
		dial = pubsub.StaticDialer(loopback)
	default:
		dial = pubsub.MQTTDialer(cfg.MQTT, cfg.Topics.Status, log.Component("mqtt"))
	}

	session := pubsub.NewSession(dial, pubsub.Options{
		QoS:           byte(cfg.MQTT.QoS), //nolint:gosec // validated to 0-2
		InboxSize:     cfg.MQTT.InboxSize,
		AnnounceTopic: cfg.Topics.Status + "/node",
		Logger:        log.Component("pubsub"),
	})
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			log.Error("error closing pub/sub session", "error", closeErr)
		}
	}()

	n, err := node.New(node.Options{
		Name:            cfg.Node.Name,
		Namespace:       cfg.Node.Namespace,
		ButtonTopic:     cfg.Topics.Button,
		LEDTopic:        cfg.Topics.LED,
		Bridge:          bridge,
		Middleware:      session,
		Output:          lines.LED,
		Codec:           codec,
		MaxWait:         cfg.GetMaxWait(),
		ConsumerTimeout: cfg.GetConsumerTimeout(),
		ExecutorHandles: cfg.Dispatch.ExecutorHandles,
		Logger:          log.Component("node"),
		Telemetry:       telemetry,
		Heartbeat:       heartbeat.NewWriter(cfg.Health.HeartbeatFile, cfg.GetHeartbeatInterval()),
		FaultRecorder:   recorder,
	})
	if err != nil {
		return fmt.Errorf("creating node: %w", err)
	}

	// The output line is already configured; attaching the interrupt is the
	// last step before the node reports itself started.
	if err := lines.Button.OnRisingEdge(n.OnButtonPressed); err != nil {
		return fmt.Errorf("attaching button interrupt: %w", err)
	}
	log.Info("Started...")

	if sim, ok := lines.Button.(*hal.SimInput); ok && stdin != nil {
		console := &simConsole{
			input:    sim,
			loopback: loopback,
			ledTopic: mqtt.Topics{Namespace: cfg.Node.Namespace}.Resolve(cfg.Topics.LED),
			codec:    codec,
			node:     n,
			log:      log.Component("sim"),
		}
		if led, ok := lines.LED.(*hal.SimOutput); ok {
			console.echoLED(led)
		}
		go console.run(ctx, stdin)
	}

	runErr := n.Run(ctx)

	stats := n.Stats()
	inbox := session.InboxStats()
	publishes := session.PublishStats()
	log.Info("button node stopped",
		"state", stats.State,
		"counter", stats.Counter,
		"published", stats.Published,
		"publish_unacked", publishes.Failed,
		"dropped", stats.Bridge.Dropped,
		"collapsed", stats.Bridge.Collapsed,
		"inbox_replaced", inbox.Replaced,
		"inbox_dropped", inbox.Dropped,
		"link_drops", session.LinkDrops(),
	)
	if runErr != nil {
		return fmt.Errorf("node faulted: %w", runErr)
	}
	return nil
}

// getConfigPath returns BUTTONNODE_CONFIG or the default path.
func getConfigPath() string {
	if path := os.Getenv("BUTTONNODE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// openJournal opens and migrates the SQLite journal.
func openJournal(ctx context.Context, cfg *config.Config) (*database.DB, *journal.SQLiteRepository, error) {
	db, err := database.Open(database.Config{
		Path:        cfg.Journal.Path,
		WALMode:     cfg.Journal.WALMode,
		BusyTimeout: cfg.Journal.BusyTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening journal: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrating journal: %w", err)
	}
	return db, journal.NewSQLiteRepository(db.DB), nil
}
