package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"bikeshare-platform/internal/config"
	"bikeshare-platform/internal/dataset"
	"bikeshare-platform/internal/handlers"
	"bikeshare-platform/internal/repository"
	"bikeshare-platform/internal/services"
	"bikeshare-platform/pkg/database"
	"bikeshare-platform/pkg/logging"
	"bikeshare-platform/pkg/metrics"
)

func main() {
	cmd := &cli.Command{
		Name:  "bikeshare-server",
		Usage: "Serve the bike sharing dashboard and its JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "optional .env file read before the environment",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: "record store source: csv or database (overrides BIKESHARE_DATASET_SOURCE)",
			},
			&cli.StringFlag{
				Name:  "csv",
				Usage: "path of the daily dataset CSV (overrides BIKESHARE_DATASET_PATH)",
			},
		},
		Action: serve,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.LoadConfig(cmd.String("env-file"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if source := cmd.String("source"); source != "" {
		cfg.Dataset.Source = source
	}
	if path := cmd.String("csv"); path != "" {
		cfg.Dataset.Path = path
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.NewStructuredLogger(cfg.Service, cfg.Version, cfg.Logging.LogLevel())
	defer logger.Sync()

	logger.Info(ctx, "[STARTUP] Starting bike sharing dashboard server", logging.Fields{
		"version":        cfg.Version,
		"address":        cfg.Server.Address(),
		"dataset_source": cfg.Dataset.Source,
	})

	metricsCollector := metrics.NewCollector("bikeshare", nil)

	// The record store is loaded once; the database, when used, stays open
	// for health checks.
	var (
		store  *dataset.Store
		health handlers.HealthChecker
	)
	switch cfg.Dataset.Source {
	case config.SourceDatabase:
		db, err := database.Open(cfg.Database.Connection(), logger, metricsCollector)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		repo := repository.NewRentalRepository(db, logger, metricsCollector)
		store, err = services.NewDatasetService(repo, logger, metricsCollector).LoadFromDatabase(ctx)
		if err != nil {
			return err
		}
		health = repo
	default:
		store, err = services.NewDatasetService(nil, logger, metricsCollector).LoadFromFile(ctx, cfg.Dataset.Path)
		if err != nil {
			return err
		}
	}

	dashboardService := services.NewDashboardService(store, logger, metricsCollector)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, health, logger, metricsCollector)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handlers.NewRouter(dashboardHandler, prometheus.DefaultGatherer),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		return err
	case <-quit:
	}

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
		return err
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
	return nil
}
