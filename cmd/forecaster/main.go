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

	"github.com/OldStager01/energy-forecaster/api"
	"github.com/OldStager01/energy-forecaster/internal/events"
	"github.com/OldStager01/energy-forecaster/internal/ingest"
	"github.com/OldStager01/energy-forecaster/internal/logger"
	"github.com/OldStager01/energy-forecaster/internal/metrics"
	"github.com/OldStager01/energy-forecaster/internal/pipeline"
	"github.com/OldStager01/energy-forecaster/internal/resilience"
	"github.com/OldStager01/energy-forecaster/internal/store"
	"github.com/OldStager01/energy-forecaster/pkg/config"
	"github.com/OldStager01/energy-forecaster/pkg/database"
)

// @title Energy Forecaster API
// @version 1.0
// @description Upload energy-load time series and forecast them with naive, ARIMA, Prophet-style, LSTM-style and hybrid models.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token from /auth/login
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	migrate := flag.Bool("migrate", false, "run database migrations and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	logger.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Mode)

	loc, err := cfg.Forecast.Location()
	if err != nil {
		return fmt.Errorf("invalid forecast timezone: %w", err)
	}

	st, err := openStore(cfg, *migrate)
	if err != nil {
		return err
	}
	defer st.Close()

	if *migrate {
		return nil
	}

	m := metrics.Get()
	if sqlStore, ok := st.(*store.SQLStore); ok {
		m.RegisterDBStats(sqlStore.Stats)
	}

	bus := events.NewEventBus(cfg.Events.BufferSize)
	defer bus.Close()

	eventLogger := events.NewEventLogger(m, bus.SubscribeAll())
	eventLogger.Start()
	defer eventLogger.Stop()

	fetcher := ingest.NewResilientFetcher(ingest.ResilientFetcherConfig{
		Fetcher: ingest.NewHTTPFetcher(ingest.HTTPFetcherConfig{
			Timeout:  cfg.Source.Timeout,
			MaxBytes: cfg.Source.MaxBytes,
		}),
		MaxFailures:   cfg.Source.CircuitBreaker.MaxFailures,
		Timeout:       cfg.Source.CircuitBreaker.Timeout,
		RetryAttempts: cfg.Source.RetryAttempts,
		RetryDelay:    cfg.Source.RetryDelay,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warnf("Circuit %s: %s -> %s", name, from, to)
			m.SetCircuitBreakerState(name, int(to))
		},
	})
	defer fetcher.Close()

	p := pipeline.New(pipeline.Config{
		Location:       loc,
		MinTrainPoints: cfg.Forecast.MinTrainPoints,
		PreviewRows:    cfg.API.PreviewRows,
	}, st, events.NewPublisher(bus), m).WithFetcher(fetcher)

	var metricsServer *http.Server
	if cfg.Prometheus.Enabled {
		metricsServer = metrics.StartServer(cfg.Prometheus.Port)
	}

	server := api.NewServer(cfg, p, bus, m)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on port %d", cfg.API.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdownChan:
		logger.Infof("Received signal %v, shutting down", sig)
	}

	timeout := cfg.App.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Metrics server shutdown error: %v", err)
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// openStore returns the configured store. With migrate set the schema is
// applied before returning.
func openStore(cfg *config.Config, migrate bool) (store.Store, error) {
	if cfg.Database.Driver == config.DriverMemory {
		if migrate {
			logger.Info("Memory store has no schema, nothing to migrate")
		}
		return store.NewMemoryStore(), nil
	}

	db, err := database.New(cfg.Database.ToDBConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Infof("Database connection established (%s)", cfg.Database.Driver)

	if migrate {
		timeout := cfg.Database.MigrationTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		logger.Info("Running database migrations")
		if err := database.NewMigrator(db).Run(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Migrations completed successfully")
		return store.NewSQLStore(db), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.NewMigrator(db).Verify(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w (run with -migrate)", err)
	}

	return store.NewSQLStore(db), nil
}
