// Attic - Home Assistant state archive
//
// This is the main entry point for the Attic service. Attic ingests
// full-state exports from a Home Assistant instance into a versioned,
// queryable SQLite archive:
//   - Every import produces an immutable snapshot with run statistics
//   - Registry data (areas, devices, entities, services) is upserted in place
//   - States and attributes accumulate as append-only history
//   - Typed projections are maintained for persons, zones, automations
//     and media players
//
// The archive is served over a REST API and can optionally announce
// import runs over MQTT and mirror numeric states to InfluxDB.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/atticlabs/attic/migrations"

	"github.com/atticlabs/attic/internal/api"
	"github.com/atticlabs/attic/internal/entity"
	"github.com/atticlabs/attic/internal/importer"
	"github.com/atticlabs/attic/internal/infrastructure/config"
	"github.com/atticlabs/attic/internal/infrastructure/database"
	"github.com/atticlabs/attic/internal/infrastructure/influxdb"
	"github.com/atticlabs/attic/internal/infrastructure/logging"
	"github.com/atticlabs/attic/internal/infrastructure/mqtt"
	"github.com/atticlabs/attic/internal/inventory"
	"github.com/atticlabs/attic/internal/profiles"
	"github.com/atticlabs/attic/internal/services"
	"github.com/atticlabs/attic/internal/snapshot"
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
	configPath := flag.String("config", "", "path to configuration file (overrides ATTIC_CONFIG)")
	importPath := flag.String("import", "", "import a full-state export file and exit")
	flag.Parse()

	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configPath, *importPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - configFlag: -config flag value, empty to fall back to env/default
//   - importFile: -import flag value; when set, runs a single import and exits
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, configFlag, importFile string) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Attic",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath(configFlag)
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

	// Wire up repositories
	snapshots := snapshot.NewSQLiteRepository(db.DB)
	inventoryRepo := inventory.NewSQLiteRepository(db.DB)
	entities := entity.NewSQLiteRepository(db.DB)
	history := entity.NewSQLiteHistoryRepository(db.DB)
	profilesRepo := profiles.NewSQLiteRepository(db.DB)
	servicesRepo := services.NewSQLiteRepository(db.DB)

	// Connect to MQTT broker (optional; imports work without announcements)
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
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional; numeric state mirroring only)
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
	} else {
		log.Info("InfluxDB disabled")
	}

	// Build the import pipeline
	imp := importer.New(importer.Deps{
		Snapshots: snapshots,
		Inventory: inventoryRepo,
		Entities:  entities,
		History:   history,
		Profiles:  profilesRepo,
		Services:  servicesRepo,
		Logger:    log,
		Announcer: mqttClient,
		Mirror:    influxClient,
	})

	// One-shot mode: import a file and exit without serving
	if importFile != "" {
		log.Info("running one-shot import", "path", importFile)
		result, importErr := imp.ImportFile(ctx, importFile)
		if importErr != nil {
			return fmt.Errorf("importing %s: %w", importFile, importErr)
		}
		log.Info("import complete",
			"snapshot_id", result.Snapshot.ID,
			"entities", result.Stats.Entities,
			"states", result.Stats.States,
			"skipped", result.Stats.Skipped,
		)
		return nil
	}

	// Start API server
	server, err := api.New(api.Deps{
		Config:    cfg.API,
		Logger:    log,
		DB:        db,
		Importer:  imp,
		Snapshots: snapshots,
		Inventory: inventoryRepo,
		Entities:  entities,
		History:   history,
		Profiles:  profilesRepo,
		Services:  servicesRepo,
		MQTT:      mqttClient,
		Influx:    influxClient,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("Attic stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Precedence: -config flag, ATTIC_CONFIG environment variable, default.
func getConfigPath(configFlag string) string {
	if configFlag != "" {
		return configFlag
	}
	if path := os.Getenv("ATTIC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
