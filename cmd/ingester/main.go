package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"bikeshare-platform/internal/config"
	"bikeshare-platform/internal/repository"
	"bikeshare-platform/internal/services"
	"bikeshare-platform/pkg/database"
	"bikeshare-platform/pkg/logging"
	"bikeshare-platform/pkg/metrics"
)

const maxPrintedErrors = 10

func main() {
	cmd := &cli.Command{
		Name:  "bikeshare-ingester",
		Usage: "Load daily rental CSV files into the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "optional .env file read before the environment",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "path",
				Usage: "CSV file or directory of CSV files (defaults to BIKESHARE_DATASET_PATH)",
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "records per upsert transaction (defaults to BIKESHARE_INGEST_BATCH_SIZE)",
			},
		},
		Action: ingest,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func ingest(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.LoadConfig(cmd.String("env-file"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if path := cmd.String("path"); path != "" {
		cfg.Dataset.Path = path
	}
	if cmd.IsSet("batch-size") {
		cfg.Ingestion.BatchSize = cmd.Int("batch-size")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.NewStructuredLogger("bikeshare-ingester", cfg.Version, cfg.Logging.LogLevel())
	defer logger.Sync()

	logger.Info(ctx, "[INGESTER_START] Starting daily rental ingestion", logging.Fields{
		"version":    cfg.Version,
		"path":       cfg.Dataset.Path,
		"batch_size": cfg.Ingestion.BatchSize,
		"driver":     cfg.Database.Driver,
	})

	metricsCollector := metrics.NewCollector("bikeshare_ingester", nil)

	db, err := database.Open(cfg.Database.Connection(), logger, metricsCollector)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repo := repository.NewRentalRepository(db, logger, metricsCollector)
	ingestionService := services.NewIngestionService(repo, logger, metricsCollector)

	result, err := ingestionService.IngestPath(ctx, cfg.Dataset.Path, cfg.Ingestion.BatchSize)
	if err != nil {
		logger.Error(ctx, "[INGESTION_ERROR] Ingestion failed", logging.Fields{}, err)
		return err
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("INGESTION COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Total Files:        %d\n", result.TotalFiles)
	fmt.Printf("Total Records:      %d\n", result.TotalRecords)
	fmt.Printf("Successful Records: %d\n", result.SuccessfulRecords)
	fmt.Printf("Failed Records:     %d\n", result.FailedRecords)
	fmt.Printf("Duration:           %v\n", result.Duration)
	if secs := result.Duration.Seconds(); secs > 0 {
		fmt.Printf("Records/Second:     %.2f\n", float64(result.SuccessfulRecords)/secs)
	}

	if err := printStored(ctx, os.Stdout, repo); err != nil {
		return err
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(result.Errors))
		for i, errMsg := range result.Errors {
			if i == maxPrintedErrors {
				fmt.Printf("  ... and %d more errors\n", len(result.Errors)-maxPrintedErrors)
				break
			}
			fmt.Printf("  - %s\n", errMsg)
		}
	}

	logger.Info(ctx, "[INGESTER_COMPLETE] Ingestion completed", logging.Fields{
		"total_files":        result.TotalFiles,
		"total_records":      result.TotalRecords,
		"successful_records": result.SuccessfulRecords,
		"failed_records":     result.FailedRecords,
		"duration_seconds":   result.Duration.Seconds(),
	})
	return nil
}

// printStored reports what the table holds after ingestion.
func printStored(ctx context.Context, w io.Writer, repo repository.RentalRepository) error {
	count, err := repo.CountDays(ctx)
	if err != nil {
		return fmt.Errorf("failed to count stored days: %w", err)
	}
	fmt.Fprintf(w, "Stored Days:        %d\n", count)

	bounds, err := repo.DateBounds(ctx)
	var nfErr *repository.NotFoundError
	switch {
	case errors.As(err, &nfErr):
		fmt.Fprintln(w, "Stored Range:       none")
	case err != nil:
		return fmt.Errorf("failed to read stored date range: %w", err)
	default:
		fmt.Fprintf(w, "Stored Range:       %s to %s\n", bounds.Start.String(), bounds.End.String())
	}
	return nil
}
