// Package charts builds Vega-Lite specifications for the dashboard views.
package charts

import (
	"fmt"

	"bikeshare-platform/internal/models"
)

// VegaSchema is the Vega-Lite schema every spec declares.
const VegaSchema = "https://vega.github.io/schema/vega-lite/v5.json"

// Chart names
const (
	Weather          = "weather"
	SeasonTotal      = "season-total"
	SeasonCasual     = "season-casual"
	SeasonRegistered = "season-registered"
	Monthly          = "monthly"
	Daily            = "daily"
)

// Names lists every chart in display order.
var Names = []string{Weather, SeasonTotal, SeasonCasual, SeasonRegistered, Monthly, Daily}

// Palettes
var (
	weatherColors = []string{"#030bfc", "#fc6203", "#fc034e"}
	seasonColors  = []string{"#4287f5", "#030bfc", "#42f551", "#d742f5"}
	monthBase     = "#030bfc"
	monthPeak     = "#fc6203"
	dailyColor    = "#FF0000"
)

// Spec is a Vega-Lite specification ready for JSON encoding.
type Spec map[string]any

// ErrUnknownChart is returned by Build for names outside Names.
type ErrUnknownChart struct {
	Name string
}

func (e *ErrUnknownChart) Error() string {
	return fmt.Sprintf("unknown chart %q", e.Name)
}

// View returns the aggregate view a chart is drawn from.
func View(name string) (string, error) {
	switch name {
	case Weather:
		return models.ViewWeather, nil
	case SeasonTotal, SeasonCasual, SeasonRegistered:
		return models.ViewSeason, nil
	case Monthly:
		return models.ViewMonthly, nil
	case Daily:
		return models.ViewDaily, nil
	default:
		return "", &ErrUnknownChart{Name: name}
	}
}

// Build returns the named chart for a dashboard. Only the view named by
// View(name) needs to be populated.
func Build(name string, d *models.Dashboard) (Spec, error) {
	switch name {
	case Weather:
		return WeatherBar(d.Weather), nil
	case SeasonTotal:
		return SeasonBar(d.Seasons, "total_users", "Average riders per season"), nil
	case SeasonCasual:
		return SeasonBar(d.Seasons, "casual", "Average casual riders per season"), nil
	case SeasonRegistered:
		return SeasonBar(d.Seasons, "registered", "Average registered riders per season"), nil
	case Monthly:
		return MonthlyBar(d.Monthly), nil
	case Daily:
		return DailyLine(d.Daily), nil
	default:
		return nil, &ErrUnknownChart{Name: name}
	}
}

// WeatherBar charts mean total riders per weather situation.
func WeatherBar(rows []models.WeatherSummary) Spec {
	values := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		values = append(values, map[string]any{
			"weathersit":  r.Weather,
			"total_users": r.MeanTotal,
		})
	}

	return bar("Average riders by weather situation", values,
		nominal("weathersit", "Weather situation"),
		quantitative("total_users", "Average riders"),
		palette("weathersit", weatherColors),
	)
}

// SeasonBar charts one mean field ("total_users", "casual" or "registered")
// per season.
func SeasonBar(rows []models.SeasonSummary, field, title string) Spec {
	values := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		values = append(values, map[string]any{
			"season":      r.Season,
			"day_count":   r.DayCount,
			"casual":      r.MeanCasual,
			"registered":  r.MeanRegistered,
			"total_users": r.MeanTotal,
		})
	}

	return bar(title, values,
		nominal("season", "Season"),
		quantitative(field, "Average riders"),
		palette("season", seasonColors),
	)
}

// MonthlyBar charts mean total riders per calendar month. June to
// September are highlighted.
func MonthlyBar(rows []models.MonthlySummary) Spec {
	values := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		color := monthBase
		if r.Month >= 6 && r.Month <= 9 {
			color = monthPeak
		}
		values = append(values, map[string]any{
			"mnth":        r.Month,
			"day_count":   r.DayCount,
			"total_users": r.MeanTotal,
			"color":       color,
		})
	}

	x := map[string]any{"field": "mnth", "type": "ordinal", "title": "Month", "sort": "ascending"}
	color := map[string]any{"field": "color", "type": "nominal", "scale": nil, "legend": nil}

	return bar("Average riders per calendar month", values,
		x, quantitative("total_users", "Average riders"), color)
}

// DailyLine charts total riders per day.
func DailyLine(rows []models.LabeledRecord) Spec {
	values := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		values = append(values, map[string]any{
			"dteday":      r.Date.String(),
			"weekday":     r.WeekdayLabel,
			"total_users": r.TotalUsers,
		})
	}

	return Spec{
		"$schema": VegaSchema,
		"title":   "Daily riders",
		"width":   "container",
		"data":    map[string]any{"values": values},
		"mark":    map[string]any{"type": "line", "color": dailyColor},
		"encoding": map[string]any{
			"x": map[string]any{"field": "dteday", "type": "temporal", "title": "Date"},
			"y": quantitative("total_users", "Riders"),
			"tooltip": []map[string]any{
				{"field": "dteday", "type": "temporal"},
				{"field": "weekday", "type": "nominal"},
				{"field": "total_users", "type": "quantitative"},
			},
		},
	}
}

func bar(title string, values []map[string]any, x, y, color map[string]any) Spec {
	return Spec{
		"$schema": VegaSchema,
		"title":   title,
		"width":   "container",
		"data":    map[string]any{"values": values},
		"mark":    "bar",
		"encoding": map[string]any{
			"x":       x,
			"y":       y,
			"color":   color,
			"tooltip": []map[string]any{
				{"field": x["field"], "type": x["type"]},
				{"field": y["field"], "type": y["type"]},
			},
		},
	}
}

func nominal(field, title string) map[string]any {
	return map[string]any{"field": field, "type": "nominal", "title": title, "sort": nil}
}

func quantitative(field, title string) map[string]any {
	return map[string]any{"field": field, "type": "quantitative", "title": title}
}

func palette(field string, colors []string) map[string]any {
	return map[string]any{
		"field":  field,
		"type":   "nominal",
		"scale":  map[string]any{"range": colors},
		"legend": nil,
	}
}
