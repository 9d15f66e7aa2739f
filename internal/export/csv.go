// Package export writes aggregate views as CSV through gota dataframes.
package export

import (
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"bikeshare-platform/internal/models"
)

// SeasonFrame builds the season view dataframe.
func SeasonFrame(rows []models.SeasonSummary) dataframe.DataFrame {
	season := make([]string, len(rows))
	days := make([]int, len(rows))
	casual := make([]float64, len(rows))
	registered := make([]float64, len(rows))
	total := make([]float64, len(rows))
	for i, r := range rows {
		season[i] = r.Season
		days[i] = r.DayCount
		casual[i] = r.MeanCasual
		registered[i] = r.MeanRegistered
		total[i] = r.MeanTotal
	}

	return dataframe.New(
		series.New(season, series.String, "season"),
		series.New(days, series.Int, "day_count"),
		series.New(casual, series.Float, "casual"),
		series.New(registered, series.Float, "registered"),
		series.New(total, series.Float, "total_users"),
	)
}

// WeatherFrame builds the weather view dataframe.
func WeatherFrame(rows []models.WeatherSummary) dataframe.DataFrame {
	weather := make([]string, len(rows))
	total := make([]float64, len(rows))
	for i, r := range rows {
		weather[i] = r.Weather
		total[i] = r.MeanTotal
	}

	return dataframe.New(
		series.New(weather, series.String, "weathersit"),
		series.New(total, series.Float, "total_users"),
	)
}

// MonthlyFrame builds the month view dataframe.
func MonthlyFrame(rows []models.MonthlySummary) dataframe.DataFrame {
	month := make([]int, len(rows))
	days := make([]int, len(rows))
	total := make([]float64, len(rows))
	for i, r := range rows {
		month[i] = r.Month
		days[i] = r.DayCount
		total[i] = r.MeanTotal
	}

	return dataframe.New(
		series.New(month, series.Int, "mnth"),
		series.New(days, series.Int, "day_count"),
		series.New(total, series.Float, "total_users"),
	)
}

// DailyFrame builds the daily series dataframe with categorical codes
// replaced by their labels.
func DailyFrame(rows []models.LabeledRecord) dataframe.DataFrame {
	n := len(rows)
	var (
		instant    = make([]int, n)
		dteday     = make([]string, n)
		season     = make([]string, n)
		yr         = make([]int, n)
		mnth       = make([]int, n)
		holiday    = make([]int, n)
		weekday    = make([]string, n)
		workingday = make([]int, n)
		weathersit = make([]string, n)
		temp       = make([]float64, n)
		atemp      = make([]float64, n)
		hum        = make([]float64, n)
		windspeed  = make([]float64, n)
		casual     = make([]int, n)
		registered = make([]int, n)
		total      = make([]int, n)
	)
	for i, r := range rows {
		instant[i] = r.Instant
		dteday[i] = r.Date.String()
		season[i] = r.SeasonLabel
		yr[i] = r.Year
		mnth[i] = r.Month
		holiday[i] = r.Holiday
		weekday[i] = r.WeekdayLabel
		workingday[i] = r.WorkingDay
		weathersit[i] = r.WeatherLabel
		temp[i] = r.Temp
		atemp[i] = r.ATemp
		hum[i] = r.Humidity
		windspeed[i] = r.WindSpeed
		casual[i] = r.Casual
		registered[i] = r.Registered
		total[i] = r.TotalUsers
	}

	return dataframe.New(
		series.New(instant, series.Int, "instant"),
		series.New(dteday, series.String, "dteday"),
		series.New(season, series.String, "season"),
		series.New(yr, series.Int, "yr"),
		series.New(mnth, series.Int, "mnth"),
		series.New(holiday, series.Int, "holiday"),
		series.New(weekday, series.String, "weekday"),
		series.New(workingday, series.Int, "workingday"),
		series.New(weathersit, series.String, "weathersit"),
		series.New(temp, series.Float, "temp"),
		series.New(atemp, series.Float, "atemp"),
		series.New(hum, series.Float, "hum"),
		series.New(windspeed, series.Float, "windspeed"),
		series.New(casual, series.Int, "casual"),
		series.New(registered, series.Int, "registered"),
		series.New(total, series.Int, "total_users"),
	)
}

// Frame returns the dataframe of one named view of d.
func Frame(view string, d *models.Dashboard) (dataframe.DataFrame, error) {
	switch view {
	case models.ViewSeason:
		return SeasonFrame(d.Seasons), nil
	case models.ViewWeather:
		return WeatherFrame(d.Weather), nil
	case models.ViewMonthly:
		return MonthlyFrame(d.Monthly), nil
	case models.ViewDaily:
		return DailyFrame(d.Daily), nil
	default:
		return dataframe.DataFrame{}, fmt.Errorf("unknown view %q", view)
	}
}

// WriteCSV writes df with a header row.
func WriteCSV(w io.Writer, df dataframe.DataFrame) error {
	if df.Err != nil {
		return fmt.Errorf("failed to build dataframe: %w", df.Err)
	}
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
