// Package analytics holds the label normalizer and the aggregations behind
// every dashboard view. All functions are pure: they never modify their input.
package analytics

import (
	"strconv"

	"bikeshare-platform/internal/models"
)

// Dimension names used for labels and pass-through accounting.
const (
	DimensionSeason  = "season"
	DimensionWeather = "weathersit"
	DimensionWeekday = "weekday"
)

var (
	seasonNames = map[int]string{
		1: "Spring",
		2: "Summer",
		3: "Fall",
		4: "Winter",
	}

	weatherNames = map[int]string{
		1: "Clear",
		2: "Misty",
		3: "Light_rainsnow",
		4: "Heavy_rainsnow",
	}

	weekdayNames = map[int]string{
		0: "Sunday",
		1: "Monday",
		2: "Tuesday",
		3: "Wednesday",
		4: "Thursday",
		5: "Friday",
		6: "Saturday",
	}
)

func lookup(names map[int]string, code int) (string, bool) {
	if name, ok := names[code]; ok {
		return name, true
	}
	return strconv.Itoa(code), false
}

// SeasonLabel returns the season name for a code. Unknown codes are returned
// as their decimal text and ok is false.
func SeasonLabel(code int) (label string, ok bool) { return lookup(seasonNames, code) }

// WeatherLabel returns the weather situation name for a code.
func WeatherLabel(code int) (label string, ok bool) { return lookup(weatherNames, code) }

// WeekdayLabel returns the weekday name for a Sunday-first code.
func WeekdayLabel(code int) (label string, ok bool) { return lookup(weekdayNames, code) }

// Unmapped counts the codes per dimension that had no label during a Normalize call.
type Unmapped map[string]int

// Normalize labels a copy of records. Codes without a label pass through as
// their decimal text and are tallied in the returned Unmapped.
func Normalize(records []models.DailyRecord) ([]models.LabeledRecord, Unmapped) {
	out := make([]models.LabeledRecord, len(records))
	unmapped := Unmapped{}

	for i, rec := range records {
		season, ok := SeasonLabel(rec.Season)
		if !ok {
			unmapped[DimensionSeason]++
		}
		weather, ok := WeatherLabel(rec.Weather)
		if !ok {
			unmapped[DimensionWeather]++
		}
		weekday, ok := WeekdayLabel(rec.Weekday)
		if !ok {
			unmapped[DimensionWeekday]++
		}

		out[i] = models.LabeledRecord{
			DailyRecord:  rec,
			SeasonLabel:  season,
			WeatherLabel: weather,
			WeekdayLabel: weekday,
		}
	}

	return out, unmapped
}
