// Door Core - provisioning and control service for networked door hubs.
//
// Door Core discovers doors from a hub's SQL Server database (or takes
// them manually), persists one entry per door, and exposes an HTTP API
// for firing the hub's schedule-override actions.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/onoffautomations/doorcore/internal/api"
	"github.com/onoffautomations/doorcore/internal/discovery"
	"github.com/onoffautomations/doorcore/internal/entry"
	"github.com/onoffautomations/doorcore/internal/hub"
	"github.com/onoffautomations/doorcore/internal/infrastructure/config"
	"github.com/onoffautomations/doorcore/internal/infrastructure/database"
	"github.com/onoffautomations/doorcore/internal/infrastructure/logging"
	"github.com/onoffautomations/doorcore/internal/infrastructure/mqtt"
	"github.com/onoffautomations/doorcore/internal/provisioning"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Context that cancels on interrupt signals for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Door Core", "version", version, "commit", commit)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised", "level", cfg.Logging.Level, "format", cfg.Logging.Format)

	// Open entry store
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

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	repo := entry.NewSQLiteRepository(db.DB)

	// Discovery service (auto provisioning path)
	disc := discovery.NewService(cfg.Discovery, log)
	log.Info("discovery service initialised", "enabled", disc.Enabled())

	// Hub client and action dispatcher
	hubClient := hub.NewClient(cfg.HubRequestTimeout(), log)
	dispatcher := hub.NewDispatcher(hubClient, log)

	// Provisioning flow manager
	flows := provisioning.NewManager(repo, disc, cfg.Hub, cfg.Discovery, log)
	flows.StartCleanup(ctx)

	// Optional MQTT event announcer
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

		announcer := mqtt.NewAnnouncer(mqttClient, log)
		flows.AddNotifier(announcer)
		dispatcher.AddNotifier(announcer)
	}

	// API server
	srv, err := api.New(api.Deps{
		Config:     cfg.API,
		WS:         cfg.WebSocket,
		Security:   cfg.Security,
		Logger:     log,
		Repo:       repo,
		Flows:      flows,
		Dispatcher: dispatcher,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	// Wire entry and action events to the WebSocket hub before the
	// listener accepts its first request.
	flows.AddNotifier(srv.WebSocketHub())
	dispatcher.AddNotifier(srv.WebSocketHub())

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := srv.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal",
		"api", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port))

	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	return nil
}

// getConfigPath returns the configuration file path from the command line,
// the DOORCORE_CONFIG environment variable, or the default.
func getConfigPath() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	if path := os.Getenv("DOORCORE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
