package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"bikeshare-platform/internal/config"
	"bikeshare-platform/migrations"
	"bikeshare-platform/pkg/database"
	"bikeshare-platform/pkg/logging"
	"bikeshare-platform/pkg/metrics"
)

func main() {
	cmd := &cli.Command{
		Name:  "bikeshare-migrate",
		Usage: "Apply or roll back the daily_rentals schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "optional .env file read before the environment",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "direction",
				Usage: "migration direction: up or down",
				Value: "up",
				Validator: func(v string) error {
					if v != "up" && v != "down" {
						return fmt.Errorf("direction must be up or down, got %q", v)
					}
					return nil
				},
			},
		},
		Action: migrate,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func migrate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.LoadConfig(cmd.String("env-file"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.NewStructuredLogger("bikeshare-migrate", cfg.Version, cfg.Logging.LogLevel())
	defer logger.Sync()

	db, err := database.Open(cfg.Database.Connection(), logger, metrics.NewCollector("bikeshare_migrate", nil))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	direction := cmd.String("direction")
	applied, err := db.Migrate(ctx, migrations.FS, direction)
	if err != nil {
		return err
	}

	for _, name := range applied {
		fmt.Printf("Applied %s\n", name)
	}
	fmt.Printf("Migration %s completed (%d files)\n", direction, len(applied))
	return nil
}
