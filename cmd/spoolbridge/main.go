// Spoolbridge - Filament Inventory Synchronization Bridge
//
// This is the main entry point for the Spoolbridge application.
// Spoolbridge keeps a Spoolman filament inventory in step with the
// 3D-printer telemetry a home-automation hub exposes as sensor entities:
//   - Deducts reported filament usage from the spool claiming a tray
//   - Assigns/releases spools as RFID tags appear and disappear in trays
//   - Records every synchronization outcome in a local activity log
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/openspool/spoolbridge/migrations"

	"github.com/openspool/spoolbridge/internal/activity"
	"github.com/openspool/spoolbridge/internal/api"
	"github.com/openspool/spoolbridge/internal/events"
	"github.com/openspool/spoolbridge/internal/hub"
	"github.com/openspool/spoolbridge/internal/infrastructure/config"
	"github.com/openspool/spoolbridge/internal/infrastructure/database"
	"github.com/openspool/spoolbridge/internal/infrastructure/logging"
	"github.com/openspool/spoolbridge/internal/infrastructure/mqtt"
	"github.com/openspool/spoolbridge/internal/infrastructure/telemetry"
	"github.com/openspool/spoolbridge/internal/inventory"
	"github.com/openspool/spoolbridge/internal/syncengine"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Spoolbridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Activity log
	activityRepo := activity.NewSQLiteRepository(db.DB)

	// Upstream clients
	hubClient := hub.NewClient(cfg.Hub)
	inventoryClient := inventory.NewClient(cfg.Spoolman)

	// Event broadcaster for live updates (WebSocket, MQTT relay)
	broadcaster := events.NewBroadcaster(log)
	defer broadcaster.Close()

	// Connect to InfluxDB for usage telemetry (optional)
	var telemetryClient *telemetry.Client
	var usageRecorder syncengine.UsageRecorder
	if cfg.Telemetry.Enabled {
		telemetryClient, err = telemetry.Connect(cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := telemetryClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.Telemetry.URL,
			"org", cfg.Telemetry.Org,
			"bucket", cfg.Telemetry.Bucket,
		)

		// Writes are non-blocking; failures surface here
		telemetryClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		usageRecorder = telemetryClient
	} else {
		log.Info("usage telemetry disabled")
	}

	// Sync engine
	engine := syncengine.New(hubClient, inventoryClient, broadcaster, activityRepo, usageRecorder, log)

	// Connect to MQTT broker and relay events (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		relayToken := startEventRelay(broadcaster, mqttClient, byte(cfg.MQTT.QoS), log)
		defer broadcaster.Unsubscribe(relayToken)
	} else {
		log.Info("MQTT relay disabled")
	}

	// Start API server (HTTP + WebSocket)
	server, err := api.New(api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Logger:      log,
		Engine:      engine,
		Hub:         hubClient,
		Inventory:   inventoryClient,
		Activity:    activityRepo,
		Broadcaster: broadcaster,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()
	log.Info("API server started",
		"addr", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
	)

	// Verify local infrastructure is healthy
	if err := healthCheck(ctx, db, mqttClient, telemetryClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	// Probe the upstream services. These are remote and may come up
	// after the bridge does, so failures are logged rather than fatal.
	if probeErr := hubClient.HealthCheck(ctx); probeErr != nil {
		log.Warn("hub not reachable at startup", "url", cfg.Hub.URL, "error", probeErr)
	}
	if probeErr := inventoryClient.HealthCheck(ctx); probeErr != nil {
		log.Warn("Spoolman not reachable at startup", "url", cfg.Spoolman.URL, "error", probeErr)
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. MQTT (if enabled)
	// 3. InfluxDB (if enabled)
	// 4. Broadcaster
	// 5. Database

	log.Info("Spoolbridge stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SPOOLBRIDGE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SPOOLBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies local infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - telemetryClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, telemetryClient *telemetry.Client) error {
	// Check database
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	// Check MQTT (if enabled)
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	// Check InfluxDB (if enabled)
	if telemetryClient != nil {
		if err := telemetryClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// startEventRelay subscribes to the broadcaster and republishes every
// synchronization event to the MQTT broker, one topic per event type
// (e.g. spoolbridge/events/usage). Relay failures are logged and
// dropped; MQTT consumers are best-effort observers, not participants.
//
// Parameters:
//   - broadcaster: In-process event source
//   - client: Connected MQTT client
//   - qos: QoS level for relayed events
//   - log: Logger instance
//
// Returns:
//   - string: Subscription token for Unsubscribe on shutdown
func startEventRelay(broadcaster *events.Broadcaster, client *mqtt.Client, qos byte, log *logging.Logger) string {
	topics := mqtt.Topics{}

	return broadcaster.Subscribe(func(event events.SyncEvent) {
		payload, err := json.Marshal(event)
		if err != nil {
			log.Error("marshalling event for MQTT relay",
				"type", event.Type,
				"error", err,
			)
			return
		}

		topic := topics.Event(string(event.Type))
		if pubErr := client.Publish(topic, payload, qos, false); pubErr != nil {
			log.Warn("relaying event to MQTT",
				"topic", topic,
				"error", pubErr,
			)
		}
	})
}
