package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bikeshare-platform/internal/models"
	"bikeshare-platform/pkg/database"
	"bikeshare-platform/pkg/logging"
	"bikeshare-platform/pkg/metrics"
)

// RentalRepository provides data access for daily rental records
type RentalRepository interface {
	UpsertDaysBatch(ctx context.Context, days []models.DailyRecord) error
	ListDays(ctx context.Context, filter DayFilter) ([]models.DailyRecord, error)
	CountDays(ctx context.Context) (int, error)
	DateBounds(ctx context.Context) (models.DateRange, error)

	HealthCheck(ctx context.Context) error
}

// DayFilter restricts ListDays to an inclusive date range. Nil bounds are open.
type DayFilter struct {
	StartDate *models.Date
	EndDate   *models.Date
}

const dayColumns = `instant, dteday, season, yr, mnth, holiday, weekday, workingday,
	weathersit, temp, atemp, hum, windspeed, casual, registered, cnt`

// dayRow scans a daily_rentals row. Drivers disagree on how DATE comes back,
// so dteday is read as text and parsed.
type dayRow struct {
	models.DailyRecord
	Dteday string `db:"dteday"`
}

func (r dayRow) toRecord() (models.DailyRecord, error) {
	rec := r.DailyRecord
	date, err := parseStoredDate(r.Dteday)
	if err != nil {
		return rec, fmt.Errorf("instant %d: invalid dteday %q: %w", rec.Instant, r.Dteday, err)
	}
	rec.Date = date
	return rec, nil
}

func parseStoredDate(s string) (models.Date, error) {
	if d, err := models.ParseDate(s); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return models.Date{}, err
	}
	return models.NewDate(t.Year(), t.Month(), t.Day()), nil
}

// rentalRepository implements RentalRepository
type rentalRepository struct {
	db      *database.DB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewRentalRepository creates a new rental repository
func NewRentalRepository(db *database.DB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) RentalRepository {
	return &rentalRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// UpsertDaysBatch inserts or replaces multiple days in a single transaction
func (r *rentalRepository) UpsertDaysBatch(ctx context.Context, days []models.DailyRecord) error {
	if len(days) == 0 {
		return nil
	}

	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		r.metrics.IngestionBatchSize.Observe(float64(len(days)))
		r.logger.Debug(ctx, "[REPO_BATCH_UPSERT] Batch upsert completed", logging.Fields{
			"count":       len(days),
			"duration_ms": duration.Milliseconds(),
		})
	}()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, r.db.Rebind(`
		INSERT INTO daily_rentals (`+dayColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (instant) DO UPDATE SET
			dteday = EXCLUDED.dteday,
			season = EXCLUDED.season,
			yr = EXCLUDED.yr,
			mnth = EXCLUDED.mnth,
			holiday = EXCLUDED.holiday,
			weekday = EXCLUDED.weekday,
			workingday = EXCLUDED.workingday,
			weathersit = EXCLUDED.weathersit,
			temp = EXCLUDED.temp,
			atemp = EXCLUDED.atemp,
			hum = EXCLUDED.hum,
			windspeed = EXCLUDED.windspeed,
			casual = EXCLUDED.casual,
			registered = EXCLUDED.registered,
			cnt = EXCLUDED.cnt
	`))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, day := range days {
		_, err := stmt.ExecContext(ctx,
			day.Instant,
			day.Date.String(),
			day.Season,
			day.Year,
			day.Month,
			day.Holiday,
			day.Weekday,
			day.WorkingDay,
			day.Weather,
			day.Temp,
			day.ATemp,
			day.Humidity,
			day.WindSpeed,
			day.Casual,
			day.Registered,
			day.TotalUsers,
		)
		if err != nil {
			r.metrics.RecordDBError("upsert_error")
			return fmt.Errorf("failed to upsert day %s: %w", day.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.metrics.IngestionRecordsTotal.Add(float64(len(days)))

	return nil
}

// ListDays retrieves days ordered by date, optionally limited to a range
func (r *rentalRepository) ListDays(ctx context.Context, filter DayFilter) ([]models.DailyRecord, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.StartDate != nil {
		conds = append(conds, "dteday >= ?")
		args = append(args, filter.StartDate.String())
	}
	if filter.EndDate != nil {
		conds = append(conds, "dteday <= ?")
		args = append(args, filter.EndDate.String())
	}

	query := "SELECT " + dayColumns + " FROM daily_rentals"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY dteday, instant"

	var rows []dayRow
	if err := r.db.SelectContext(ctx, "list_days", &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list days: %w", err)
	}

	days := make([]models.DailyRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		days = append(days, rec)
	}

	return days, nil
}

// CountDays returns the number of stored days
func (r *rentalRepository) CountDays(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, "count_days", &count, "SELECT COUNT(*) FROM daily_rentals"); err != nil {
		return 0, fmt.Errorf("failed to count days: %w", err)
	}
	return count, nil
}

// DateBounds returns the first and last stored date
func (r *rentalRepository) DateBounds(ctx context.Context) (models.DateRange, error) {
	var first, last string
	for _, q := range []struct {
		dest  *string
		order string
	}{
		{&first, "ASC"},
		{&last, "DESC"},
	} {
		query := "SELECT dteday FROM daily_rentals ORDER BY dteday " + q.order + " LIMIT 1"
		err := r.db.GetContext(ctx, "date_bounds", q.dest, query)
		if errors.Is(err, sql.ErrNoRows) {
			return models.DateRange{}, &NotFoundError{Resource: "daily_rental", ID: "any"}
		}
		if err != nil {
			return models.DateRange{}, fmt.Errorf("failed to get date bounds: %w", err)
		}
	}

	start, err := parseStoredDate(first)
	if err != nil {
		return models.DateRange{}, fmt.Errorf("invalid first date %q: %w", first, err)
	}
	end, err := parseStoredDate(last)
	if err != nil {
		return models.DateRange{}, fmt.Errorf("invalid last date %q: %w", last, err)
	}

	return models.DateRange{Start: start, End: end}, nil
}

// HealthCheck performs a repository health check
func (r *rentalRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}
