// Switchboard - MQTT Home Control Service
//
// This is the main entry point for the Switchboard service. Switchboard
// is a bus-centric home automation core providing:
//   - A persistent job scheduler (interval, daily, one-shot jobs)
//   - A device presence registry with retained MQTT status
//   - A switch registry with last-known-state tracking
//
// All interaction happens over MQTT request/response topics; there is
// no HTTP surface.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/switchboard/migrations"

	"github.com/nerrad567/switchboard/internal/devices"
	"github.com/nerrad567/switchboard/internal/hub"
	"github.com/nerrad567/switchboard/internal/infrastructure/config"
	"github.com/nerrad567/switchboard/internal/infrastructure/database"
	"github.com/nerrad567/switchboard/internal/infrastructure/influxdb"
	"github.com/nerrad567/switchboard/internal/infrastructure/logging"
	"github.com/nerrad567/switchboard/internal/infrastructure/mqtt"
	"github.com/nerrad567/switchboard/internal/jobs"
	"github.com/nerrad567/switchboard/internal/scheduler"
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
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
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
// Startup ordering matters: collections are loaded and scheduler
// registrations rebuilt before any MQTT subscription is made, so no
// request can observe a half-restored store.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Switchboard",
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
	db, err := database.Open(ctx, database.Config{
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

	// Connect to MQTT broker. The connect handler publishes the retained
	// online status and presence records; subscriptions are made later,
	// once the store and registry are loaded.
	mqttClient, err := mqtt.Connect(cfg.MQTT)
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
		"topic_prefix", cfg.MQTT.TopicPrefix,
	)

	// Set up MQTT logging callbacks
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Build the scheduler and job store. A fired one-shot job removes
	// itself from the persistent store.
	qos := byte(cfg.MQTT.QoS)
	sched := scheduler.New(mqttClient, qos)
	sched.SetLogger(log)

	store := jobs.NewStore(jobs.NewSQLiteRepository(db.DB), sched)
	store.SetLogger(log)
	sched.SetOnOnceFired(func(key jobs.Key) {
		store.DeleteOne(context.Background(), key)
	})

	if loadErr := store.Load(ctx); loadErr != nil {
		return fmt.Errorf("loading job store: %w", loadErr)
	}
	log.Info("job store loaded", "jobs", store.Count())

	// Initialise the device registry
	registry := devices.NewRegistry(devices.NewSQLiteRepository(db.DB))
	registry.SetLogger(log)
	if loadErr := registry.Load(ctx); loadErr != nil {
		return fmt.Errorf("loading device registry: %w", loadErr)
	}
	log.Info("device registry loaded",
		"clients", registry.ClientCount(),
		"switches", registry.SwitchCount(),
	)

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})

		sched.SetTelemetry(influxClient)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Wire the message hub and subscribe to the control topics
	h := hub.New(mqttClient, mqttClient.Topics(), store, sched, registry,
		cfg.MQTT.Broker.ClientID, qos)
	h.SetLogger(log)
	if influxClient != nil {
		h.SetTelemetry(influxClient)
	}
	if startErr := h.Start(); startErr != nil {
		return fmt.Errorf("starting hub: %w", startErr)
	}
	log.Info("hub started")

	// Start the scheduler poll loop
	go sched.Run(ctx, cfg.TickInterval())
	log.Info("scheduler running", "tick", cfg.TickInterval())

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. InfluxDB (if enabled)
	// 2. MQTT (publishes retained offline status and presence)
	// 3. Database

	log.Info("Switchboard stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SWITCHBOARD_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SWITCHBOARD_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
