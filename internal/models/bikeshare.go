package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by the source file, the API and the database.
const DateLayout = "2006-01-02"

// Date wraps time.Time but marshals/unmarshals as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its UTC calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DailyRecord is one calendar day of rental activity.
// Categorical fields hold the raw integer codes of the source file.
type DailyRecord struct {
	Instant    int     `json:"instant" db:"instant"`
	Date       Date    `json:"dteday" db:"-"`
	Season     int     `json:"season" db:"season"`
	Year       int     `json:"yr" db:"yr"`
	Month      int     `json:"mnth" db:"mnth"`
	Holiday    int     `json:"holiday" db:"holiday"`
	Weekday    int     `json:"weekday" db:"weekday"`
	WorkingDay int     `json:"workingday" db:"workingday"`
	Weather    int     `json:"weathersit" db:"weathersit"`
	Temp       float64 `json:"temp" db:"temp"`
	ATemp      float64 `json:"atemp" db:"atemp"`
	Humidity   float64 `json:"hum" db:"hum"`
	WindSpeed  float64 `json:"windspeed" db:"windspeed"`
	Casual     int     `json:"casual" db:"casual"`
	Registered int     `json:"registered" db:"registered"`
	// TotalUsers is the source "cnt" column.
	TotalUsers int `json:"total_users" db:"cnt"`
}

// LabeledRecord is a DailyRecord with human-readable categorical labels.
type LabeledRecord struct {
	DailyRecord
	SeasonLabel  string `json:"season_label"`
	WeatherLabel string `json:"weather_label"`
	WeekdayLabel string `json:"weekday_label"`
}

// SeasonSummary aggregates a range by season label.
type SeasonSummary struct {
	Season         string  `json:"season"`
	DayCount       int     `json:"day_count"`
	MeanCasual     float64 `json:"casual"`
	MeanRegistered float64 `json:"registered"`
	MeanTotal      float64 `json:"total_users"`
}

// WeatherSummary aggregates a range by weather situation label.
type WeatherSummary struct {
	Weather   string  `json:"weathersit"`
	MeanTotal float64 `json:"total_users"`
}

// MonthlySummary aggregates a range by month number.
type MonthlySummary struct {
	Month     int     `json:"mnth"`
	DayCount  int     `json:"day_count"`
	MeanTotal float64 `json:"total_users"`
}

// Totals holds the summed counts of a range.
type Totals struct {
	DayCount   int `json:"day_count"`
	Casual     int `json:"casual"`
	Registered int `json:"registered"`
	TotalUsers int `json:"total_users"`
}

// DateRange is an inclusive calendar range.
type DateRange struct {
	Start Date `json:"start_date"`
	End   Date `json:"end_date"`
}

// Aggregate view names
const (
	ViewSeason  = "season"
	ViewWeather = "weather"
	ViewMonthly = "monthly"
	ViewDaily   = "daily"
)

// Views lists every aggregate view in display order.
var Views = []string{ViewSeason, ViewWeather, ViewMonthly, ViewDaily}

// DatasetInfo describes the loaded record store.
type DatasetInfo struct {
	MinDate     Date `json:"min_date"`
	MaxDate     Date `json:"max_date"`
	RecordCount int  `json:"record_count"`
}

// Dashboard is the result of one recompute pass over a date range.
type Dashboard struct {
	Range   DateRange        `json:"range"`
	Totals  Totals           `json:"totals"`
	Seasons []SeasonSummary  `json:"seasons"`
	Weather []WeatherSummary `json:"weather"`
	Monthly []MonthlySummary `json:"monthly"`
	Daily   []LabeledRecord  `json:"daily"`
}

// RawDayRecord represents a single row of the source CSV file before type coercion.
// Used during loading and ingestion.
type RawDayRecord struct {
	Instant    string
	Dteday     string
	Season     string
	Yr         string
	Mnth       string
	Holiday    string
	Weekday    string
	Workingday string
	Weathersit string
	Temp       string
	Atemp      string
	Hum        string
	Windspeed  string
	Casual     string
	Registered string
	Cnt        string
}

// ToDailyRecord coerces the raw string fields into a DailyRecord.
// Only type coercion is performed: codes and counts are not range-checked.
func (r *RawDayRecord) ToDailyRecord() (*DailyRecord, error) {
	date, err := ParseDate(r.Dteday)
	if err != nil {
		return nil, &ValidationError{
			Field:   "dteday",
			Value:   r.Dteday,
			Message: "invalid date format, expected YYYY-MM-DD",
		}
	}

	rec := &DailyRecord{Date: date}

	required := []struct {
		field string
		value string
		dest  *int
	}{
		{"instant", r.Instant, &rec.Instant},
		{"season", r.Season, &rec.Season},
		{"mnth", r.Mnth, &rec.Month},
		{"weekday", r.Weekday, &rec.Weekday},
		{"weathersit", r.Weathersit, &rec.Weather},
		{"casual", r.Casual, &rec.Casual},
		{"registered", r.Registered, &rec.Registered},
		{"cnt", r.Cnt, &rec.TotalUsers},
	}
	for _, f := range required {
		v, err := strconv.Atoi(strings.TrimSpace(f.value))
		if err != nil {
			return nil, &ValidationError{
				Field:   f.field,
				Value:   f.value,
				Message: "invalid " + f.field + ": expected integer",
			}
		}
		*f.dest = v
	}

	optionalInts := []struct {
		field string
		value string
		dest  *int
	}{
		{"yr", r.Yr, &rec.Year},
		{"holiday", r.Holiday, &rec.Holiday},
		{"workingday", r.Workingday, &rec.WorkingDay},
	}
	for _, f := range optionalInts {
		if isMissing(f.value) {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(f.value))
		if err != nil {
			return nil, &ValidationError{
				Field:   f.field,
				Value:   f.value,
				Message: "invalid " + f.field + ": expected integer",
			}
		}
		*f.dest = v
	}

	optionalFloats := []struct {
		field string
		value string
		dest  *float64
	}{
		{"temp", r.Temp, &rec.Temp},
		{"atemp", r.Atemp, &rec.ATemp},
		{"hum", r.Hum, &rec.Humidity},
		{"windspeed", r.Windspeed, &rec.WindSpeed},
	}
	for _, f := range optionalFloats {
		if isMissing(f.value) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(f.value), 64)
		if err != nil {
			return nil, &ValidationError{
				Field:   f.field,
				Value:   f.value,
				Message: "invalid " + f.field + ": expected number",
			}
		}
		*f.dest = v
	}

	return rec, nil
}

func isMissing(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "NA", "NaN":
		return true
	}
	return false
}

// ValidationError represents a data validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
