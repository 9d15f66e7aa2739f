package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"bikeshare-platform/internal/models"
	"bikeshare-platform/internal/services"
	"bikeshare-platform/pkg/logging"
	"bikeshare-platform/pkg/metrics"
)

const rule = "════════════════════════════════════════════════════════════════"

func main() {
	cmd := &cli.Command{
		Name:      "bikeshare-report",
		Usage:     "Print the dashboard aggregates for a date range without a server",
		ArgsUsage: "[day.csv]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "start",
				Usage: "first day of the range (YYYY-MM-DD)",
			},
			&cli.StringFlag{
				Name:  "end",
				Usage: "last day of the range (YYYY-MM-DD)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level: debug, info, warn or error",
				Value: "warn",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	path := "data/day.csv"
	if cmd.Args().Present() {
		path = cmd.Args().First()
	}

	start, err := optionalDate(cmd.String("start"))
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	end, err := optionalDate(cmd.String("end"))
	if err != nil {
		return fmt.Errorf("--end: %w", err)
	}

	logger := logging.NewStructuredLogger("bikeshare-report", "dev", logging.ParseLevel(cmd.String("log-level")))
	logger.SetOutput(os.Stderr)
	defer logger.Sync()

	// Metrics are collected into a private registry and discarded.
	collector := metrics.NewCollector("bikeshare_report", prometheus.NewRegistry())

	store, err := services.NewDatasetService(nil, logger, collector).LoadFromFile(ctx, path)
	if err != nil {
		return err
	}

	dashboard := services.NewDashboardService(store, logger, collector)
	rng, err := dashboard.ResolveRange(start, end)
	if err != nil {
		return err
	}

	return writeReport(os.Stdout, dashboard.Compute(ctx, rng))
}

func optionalDate(s string) (*models.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// writeReport prints every aggregate of d as plain-text tables.
func writeReport(w io.Writer, d *models.Dashboard) error {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	section := func(title string) {
		b.WriteString(rule + "\n")
		b.WriteString(title + "\n")
		b.WriteString(rule + "\n")
	}

	section(fmt.Sprintf("BIKE SHARING REPORT %s to %s", d.Range.Start.String(), d.Range.End.String()))
	p.Fprintf(&b, "Days:               %d\n", d.Totals.DayCount)
	p.Fprintf(&b, "Casual riders:      %d\n", d.Totals.Casual)
	p.Fprintf(&b, "Registered riders:  %d\n", d.Totals.Registered)
	p.Fprintf(&b, "Total riders:       %d\n", d.Totals.TotalUsers)
	b.WriteString("\n")

	section("AVERAGE RIDERS BY SEASON")
	p.Fprintf(&b, "%-16s %6s %12s %12s %12s\n", "season", "days", "casual", "registered", "total")
	for _, s := range d.Seasons {
		p.Fprintf(&b, "%-16s %6d %12.1f %12.1f %12.1f\n", s.Season, s.DayCount, s.MeanCasual, s.MeanRegistered, s.MeanTotal)
	}
	b.WriteString("\n")

	section("AVERAGE RIDERS BY WEATHER")
	p.Fprintf(&b, "%-16s %12s\n", "weathersit", "total")
	for _, s := range d.Weather {
		p.Fprintf(&b, "%-16s %12.1f\n", s.Weather, s.MeanTotal)
	}
	b.WriteString("\n")

	section("AVERAGE RIDERS BY MONTH")
	p.Fprintf(&b, "%-16s %6s %12s\n", "month", "days", "total")
	for _, s := range d.Monthly {
		p.Fprintf(&b, "%-16d %6d %12.1f\n", s.Month, s.DayCount, s.MeanTotal)
	}
	b.WriteString("\n")

	section("DAILY RIDERS")
	for _, r := range d.Daily {
		p.Fprintf(&b, "%s %-10s %-8s %-16s %8d\n", r.Date.String(), r.WeekdayLabel, r.SeasonLabel, r.WeatherLabel, r.TotalUsers)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
