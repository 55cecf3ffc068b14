// Sengled Bridge - MQTT bridge for Sengled Wi-Fi devices
//
// This is the main entry point for the bridge daemon. It discovers Sengled
// Wi-Fi bulbs and diffusers from a device provider (local add-on API or the
// Sengled cloud), mirrors their state from the wifielement MQTT topics, and
// translates REST commands into device publishes.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/nerrad567/sengled-bridge/migrations"

	"github.com/nerrad567/sengled-bridge/internal/addon"
	"github.com/nerrad567/sengled-bridge/internal/api"
	"github.com/nerrad567/sengled-bridge/internal/auth"
	"github.com/nerrad567/sengled-bridge/internal/cloud"
	"github.com/nerrad567/sengled-bridge/internal/device"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/config"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/database"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/influxdb"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/logging"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/sengled-bridge/internal/sengled"
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

// hoursPerDay converts the configured retention days to a Duration.
const hoursPerDay = 24

func main() {
	hashPassword := flag.Bool("hash-password", false,
		"read a password from stdin, print its Argon2id hash for security.auth.password, and exit")
	flag.Parse()

	if *hashPassword {
		if err := hashPasswordCommand(os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// hashPasswordCommand reads a single password line from r and writes its
// PHC hash string to w, ready to paste into the security.auth.password
// config field.
//
// Parameters:
//   - r: Source of the plaintext password (stdin in production)
//   - w: Destination for the hash
//
// Returns:
//   - error: If no password was provided or hashing failed
func hashPasswordCommand(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		return fmt.Errorf("no password provided on stdin")
	}

	password := strings.TrimSpace(scanner.Text())
	if password == "" {
		return fmt.Errorf("no password provided on stdin")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	fmt.Fprintln(w, hash)
	return nil
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
	log.Info("starting Sengled bridge",
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

	// Initialise device registry
	deviceRepo := device.NewSQLiteRepository(db.DB)
	deviceRegistry := device.NewRegistry(deviceRepo)
	deviceRegistry.SetLogger(log)

	if refreshErr := deviceRegistry.RefreshCache(ctx); refreshErr != nil {
		return fmt.Errorf("loading device registry: %w", refreshErr)
	}
	log.Info("device registry initialised", "devices", deviceRegistry.GetDeviceCount())

	// State history repository shares the database connection
	historyRepo := device.NewSQLiteStateHistoryRepository(db.DB)

	// Connect to MQTT broker
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
	)

	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

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
	} else {
		log.Info("InfluxDB disabled")
	}

	// Select the device provider
	provider, err := buildProvider(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initialising device provider: %w", err)
	}

	// Create the bridge over the MQTT client
	publisher := sengled.NewPublisher(mqttClient, byte(cfg.MQTT.QoS))
	publisher.SetLogger(log)

	bridge := sengled.NewBridge(sengled.Config{
		PollInterval:     cfg.PollInterval(),
		HistoryRetention: time.Duration(cfg.Bridge.HistoryRetentionDays) * hoursPerDay * time.Hour,
		QoS:              byte(cfg.MQTT.QoS),
	}, provider, deviceRegistry, publisher, mqttClient)
	bridge.SetLogger(log)
	bridge.SetHistory(historyRepo)
	if influxClient != nil {
		bridge.SetMetrics(influxClient)
	}

	// Start the API server
	apiServer, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Logger:   log,
		Registry: deviceRegistry,
		Control:  bridge,
		History:  historyRepo,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	// State changes fan out to WebSocket subscribers
	bridge.SetOnChange(apiServer.BroadcastDeviceState)

	if startErr := bridge.Start(ctx); startErr != nil {
		return fmt.Errorf("starting bridge: %w", startErr)
	}
	defer func() {
		log.Info("stopping bridge")
		bridge.Stop()
	}()
	log.Info("bridge started",
		"devices", deviceRegistry.GetDeviceCount(),
		"poll_interval", cfg.PollInterval(),
	)

	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient, apiServer); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. Bridge (poll loop, subscriptions)
	// 3. InfluxDB (if enabled)
	// 4. MQTT
	// 5. Database

	log.Info("Sengled bridge stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SENGLED_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SENGLED_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// buildProvider creates the configured device provider.
//
// In cloud mode the session is established eagerly so credential problems
// surface at startup rather than on the first poll.
//
// Parameters:
//   - ctx: Context for the initial cloud login
//   - cfg: Application configuration
//   - log: Logger instance
//
// Returns:
//   - sengled.DeviceProvider: Ready provider
//   - error: If the provider cannot be initialised
func buildProvider(ctx context.Context, cfg *config.Config, log *logging.Logger) (sengled.DeviceProvider, error) {
	switch cfg.Provider.Mode {
	case config.ProviderAddon:
		client := addon.NewClient(cfg.Provider.Addon)
		log.Info("device provider initialised",
			"mode", config.ProviderAddon,
			"base_url", cfg.Provider.Addon.BaseURL,
		)
		return client, nil

	case config.ProviderCloud:
		client := cloud.NewClient(cfg.Provider.Cloud)
		if err := client.Login(ctx); err != nil {
			return nil, fmt.Errorf("cloud login: %w", err)
		}
		log.Info("device provider initialised",
			"mode", config.ProviderCloud,
			"username", cfg.Provider.Cloud.Username,
		)
		return client, nil

	default:
		return nil, fmt.Errorf("unknown provider mode %q", cfg.Provider.Mode)
	}
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//   - apiServer: API server to check
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client, apiServer *api.Server) error {
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

	if err := apiServer.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	return nil
}
