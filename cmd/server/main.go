/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Shopify → Klara sync backend.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, flags)
  2. Initialize logger and log missing credentials
  3. Open the day store (memory, SQLite or PostgreSQL)
  4. Build storefront client, bookkeeper, ledger, collector, importer,
     dispatcher
  5. Configure HTTP router, start the collect scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port, overrides PORT
  -db      SQLite database path, overrides DB_PATH and selects the sqlite
           driver. Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the collect scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database and Redis connections
  5. Exit

EXAMPLES:
  # Run with the in-memory store (default)
  ./server

  # Run with a file database
  ./server -db="./data/daybook.db"

  # Run against PostgreSQL with a shared import lock
  DB_DRIVER=postgres DATABASE_URL=postgres://... REDIS_ADDRESS=localhost:6379 ./server

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/laprofumo/shopify-klara-sync-backend/api"
	"github.com/laprofumo/shopify-klara-sync-backend/config"
	"github.com/laprofumo/shopify-klara-sync-backend/daybook"
	"github.com/laprofumo/shopify-klara-sync-backend/daybook/store"
	"github.com/laprofumo/shopify-klara-sync-backend/klara"
	"github.com/laprofumo/shopify-klara-sync-backend/logging"
	"github.com/laprofumo/shopify-klara-sync-backend/metrics"
	"github.com/laprofumo/shopify-klara-sync-backend/runlock"
	"github.com/laprofumo/shopify-klara-sync-backend/shopify"
	"github.com/laprofumo/shopify-klara-sync-backend/store/postgres"
	"github.com/laprofumo/shopify-klara-sync-backend/store/sqlite"
)

// dayStore is what every store driver provides.
type dayStore interface {
	daybook.Store
	daybook.RunLog
}

func main() {
	// Flags
	port := flag.Int("port", 0, "HTTP server port (overrides PORT)")
	dbPath := flag.String("db", "", "SQLite database path (overrides DB_PATH, selects sqlite)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBDriver = "sqlite"
		cfg.DBPath = *dbPath
	}

	logger := logging.New(cfg.LogLevel, cfg.LogPretty)
	for _, w := range cfg.Warnings() {
		logger.Warn().Msg(w)
	}

	ctx := context.Background()

	// Initialize store
	days, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("Failed to initialize database")
	}
	defer closeStore()

	// Metrics
	var recorder daybook.Recorder = daybook.NopRecorder{}
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		prom := metrics.New()
		recorder = prom
		metricsHandler = prom.Handler()
	}

	// Import lock
	importerOpts := []daybook.ImporterOption{
		daybook.WithImporterLogger(logger.With().Str("component", "importer").Logger()),
		daybook.WithImporterRecorder(recorder),
		daybook.WithRunLog(days),
	}
	if cfg.RedisAddress != "" {
		locker, rdb, err := runlock.Connect(ctx, cfg.RedisAddress)
		if err != nil {
			logger.Fatal().Err(err).Str("address", cfg.RedisAddress).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		importerOpts = append(importerOpts, daybook.WithLocker(locker, daybook.DefaultImportLockTTL))
		logger.Info().Str("address", cfg.RedisAddress).Msg("Using Redis import lock")
	}

	// Collaborators
	storefront := shopify.NewClient(cfg.ShopifyStoreDomain, cfg.ShopifyAccessToken, cfg.ShopifyAPIVersion)
	var bookkeeper daybook.Bookkeeper
	if cfg.KlaraDryRun() {
		bookkeeper = klara.NewDryRun(logger.With().Str("component", "klara").Logger())
	} else {
		bookkeeper = klara.NewClient(cfg.KlaraAPIBaseURL, cfg.KlaraAPIToken)
	}

	// Pipeline
	ledger := daybook.NewLedger(days, daybook.WithLedgerRecorder(recorder))
	collector := daybook.NewCollector(storefront, ledger,
		daybook.WithCollectorLogger(logger.With().Str("component", "collector").Logger()),
		daybook.WithCollectorRecorder(recorder),
	)
	importer := daybook.NewImporter(collector, importerOpts...)
	dispatcher := daybook.NewDispatcher(ledger, bookkeeper,
		daybook.WithDispatcherLogger(logger.With().Str("component", "dispatcher").Logger()),
		daybook.WithDispatcherRecorder(recorder),
	)

	// Initialize handler
	handler := api.NewHandler(ledger, collector, importer, dispatcher, logger)
	handler.RunLog = days

	// Create router
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
		Metrics:        metricsHandler,
	})

	scheduler := api.NewCollectScheduler(collector, ledger, cfg.CollectInterval, logger)
	scheduler.Start()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ImportWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Int("port", cfg.Port).
			Str("db_driver", cfg.DBDriver).
			Bool("klara_dry_run", cfg.KlaraDryRun()).
			Msgf("Server starting on http://localhost:%d", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	logger.Info().Msg("Server stopped")
}

// openStore opens the configured driver. The returned func closes it.
func openStore(ctx context.Context, cfg config.Config) (dayStore, func(), error) {
	switch cfg.DBDriver {
	case "sqlite":
		s, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return s, closer(s.Close), nil
	case "postgres":
		s, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, closer(s.Close), nil
	default:
		return store.NewMemory(), func() {}, nil
	}
}

func closer(fn func() error) func() {
	return func() {
		if err := fn(); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}
}
