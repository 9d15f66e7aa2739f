package services

import (
	"context"
	"time"

	"bikeshare-platform/internal/analytics"
	"bikeshare-platform/internal/dataset"
	"bikeshare-platform/internal/models"
	"bikeshare-platform/pkg/logging"
	"bikeshare-platform/pkg/metrics"
)

// DashboardService recomputes the aggregate views for a date range
type DashboardService struct {
	store   *dataset.Store
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewDashboardService creates a new dashboard service over store
func NewDashboardService(store *dataset.Store, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *DashboardService {
	return &DashboardService{
		store:   store,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Info returns the bounds and size of the record store
func (s *DashboardService) Info() models.DatasetInfo {
	bounds := s.store.Bounds()
	return models.DatasetInfo{
		MinDate:     bounds.Start,
		MaxDate:     bounds.End,
		RecordCount: s.store.Len(),
	}
}

// ResolveRange turns optional user bounds into a range over the store.
// Missing bounds default to the dataset bounds and out-of-range bounds are
// clamped. A start after the end is rejected.
func (s *DashboardService) ResolveRange(start, end *models.Date) (models.DateRange, error) {
	var r models.DateRange
	if start != nil {
		r.Start = *start
	}
	if end != nil {
		r.End = *end
	}

	if start != nil && end != nil && start.After(end.Time) {
		return models.DateRange{}, &models.ValidationError{
			Field:   "start_date",
			Value:   start.String(),
			Message: "start_date must not be after end_date " + end.String(),
		}
	}

	return s.store.Clamp(r), nil
}

// Compute runs one full recompute pass: filter, normalize once, then every
// aggregation over the same labeled rows.
func (s *DashboardService) Compute(ctx context.Context, r models.DateRange) *models.Dashboard {
	startTime := time.Now()
	rows := s.prepare(ctx, r)

	dashboard := &models.Dashboard{
		Range:   r,
		Totals:  analytics.Sum(rows),
		Seasons: s.seasons(rows),
		Weather: s.weather(rows),
		Monthly: s.monthly(rows),
		Daily:   s.daily(rows),
	}

	s.logger.Debug(ctx, "[DASHBOARD_COMPUTED] Recompute pass completed", logging.Fields{
		"start_date":  r.Start.String(),
		"end_date":    r.End.String(),
		"rows":        len(rows),
		"duration_ms": time.Since(startTime).Milliseconds(),
	})

	return dashboard
}

// Totals returns the summed counts for r
func (s *DashboardService) Totals(ctx context.Context, r models.DateRange) models.Totals {
	return analytics.Sum(s.prepare(ctx, r))
}

// Seasons returns the season aggregate for r
func (s *DashboardService) Seasons(ctx context.Context, r models.DateRange) []models.SeasonSummary {
	return s.seasons(s.prepare(ctx, r))
}

// Weather returns the weather aggregate for r
func (s *DashboardService) Weather(ctx context.Context, r models.DateRange) []models.WeatherSummary {
	return s.weather(s.prepare(ctx, r))
}

// Monthly returns the month aggregate for r
func (s *DashboardService) Monthly(ctx context.Context, r models.DateRange) []models.MonthlySummary {
	return s.monthly(s.prepare(ctx, r))
}

// Daily returns the labeled daily series for r
func (s *DashboardService) Daily(ctx context.Context, r models.DateRange) []models.LabeledRecord {
	return s.daily(s.prepare(ctx, r))
}

// prepare filters the store to r and labels the copy.
func (s *DashboardService) prepare(ctx context.Context, r models.DateRange) []models.LabeledRecord {
	records := s.store.Range(r)
	rows, unmapped := analytics.Normalize(records)

	for dimension, n := range unmapped {
		s.metrics.RecordUnmappedCodes(dimension, n)
		s.logger.Debug(ctx, "[LABEL_PASSTHROUGH] Unmapped codes kept as-is", logging.Fields{
			"dimension": dimension,
			"count":     n,
		})
	}

	return rows
}

func (s *DashboardService) seasons(rows []models.LabeledRecord) []models.SeasonSummary {
	defer s.observe(models.ViewSeason, len(rows))()
	return analytics.BySeason(rows)
}

func (s *DashboardService) weather(rows []models.LabeledRecord) []models.WeatherSummary {
	defer s.observe(models.ViewWeather, len(rows))()
	return analytics.ByWeather(rows)
}

func (s *DashboardService) monthly(rows []models.LabeledRecord) []models.MonthlySummary {
	defer s.observe(models.ViewMonthly, len(rows))()
	return analytics.ByMonth(rows)
}

func (s *DashboardService) daily(rows []models.LabeledRecord) []models.LabeledRecord {
	defer s.observe(models.ViewDaily, len(rows))()
	return analytics.DailySeries(rows)
}

func (s *DashboardService) observe(view string, n int) func() {
	s.metrics.AggregationRows.WithLabelValues(view).Observe(float64(n))
	timer := s.metrics.NewTimer(s.metrics.AggregationDuration.WithLabelValues(view))
	return func() { timer.ObserveDuration() }
}
