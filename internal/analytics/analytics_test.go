package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"bikeshare-platform/internal/models"
)

func day(instant int, date models.Date, season, weather, weekday, casual, registered int) models.DailyRecord {
	return models.DailyRecord{
		Instant:    instant,
		Date:       date,
		Season:     season,
		Month:      int(date.Month()),
		Weekday:    weekday,
		Weather:    weather,
		Casual:     casual,
		Registered: registered,
		TotalUsers: casual + registered,
	}
}

func TestLabels(t *testing.T) {
	seasons := []string{"Spring", "Summer", "Fall", "Winter"}
	for i, want := range seasons {
		got, ok := SeasonLabel(i + 1)
		if !ok || got != want {
			t.Errorf("SeasonLabel(%d) = %q, %v, want %q, true", i+1, got, ok, want)
		}
	}

	weather := []string{"Clear", "Misty", "Light_rainsnow", "Heavy_rainsnow"}
	for i, want := range weather {
		got, ok := WeatherLabel(i + 1)
		if !ok || got != want {
			t.Errorf("WeatherLabel(%d) = %q, %v, want %q, true", i+1, got, ok, want)
		}
	}

	weekdays := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	for i, want := range weekdays {
		got, ok := WeekdayLabel(i)
		if !ok || got != want {
			t.Errorf("WeekdayLabel(%d) = %q, %v, want %q, true", i, got, ok, want)
		}
	}
}

func TestLabels_PassThrough(t *testing.T) {
	tests := []struct {
		name  string
		label func(int) (string, bool)
		code  int
		want  string
	}{
		{"season zero", SeasonLabel, 0, "0"},
		{"season five", SeasonLabel, 5, "5"},
		{"weather negative", WeatherLabel, -1, "-1"},
		{"weekday seven", WeekdayLabel, 7, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.label(tt.code)
			if ok {
				t.Errorf("ok = true for unmapped code %d", tt.code)
			}
			if got != tt.want {
				t.Errorf("label = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	records := []models.DailyRecord{
		day(1, models.NewDate(2011, 1, 1), 1, 3, 6, 10, 20),
		day(2, models.NewDate(2011, 1, 2), 9, 7, 0, 10, 20),
	}
	original := append([]models.DailyRecord(nil), records...)

	labeled, unmapped := Normalize(records)

	if diff := cmp.Diff(original, records); diff != "" {
		t.Errorf("Normalize modified its input (-want, +got):\n%s", diff)
	}

	if len(labeled) != 2 {
		t.Fatalf("len(labeled) = %d, want 2", len(labeled))
	}

	first := labeled[0]
	if first.SeasonLabel != "Spring" || first.WeatherLabel != "Light_rainsnow" || first.WeekdayLabel != "Saturday" {
		t.Errorf("labels = %q/%q/%q, want Spring/Light_rainsnow/Saturday",
			first.SeasonLabel, first.WeatherLabel, first.WeekdayLabel)
	}

	second := labeled[1]
	if second.SeasonLabel != "9" || second.WeatherLabel != "7" || second.WeekdayLabel != "Sunday" {
		t.Errorf("labels = %q/%q/%q, want 9/7/Sunday",
			second.SeasonLabel, second.WeatherLabel, second.WeekdayLabel)
	}

	want := Unmapped{DimensionSeason: 1, DimensionWeather: 1}
	if diff := cmp.Diff(want, unmapped); diff != "" {
		t.Errorf("unmapped diff (-want, +got):\n%s", diff)
	}
}

func TestBySeason(t *testing.T) {
	totals := []int{10, 20, 30, 40, 50}
	seasons := []int{1, 1, 2, 3, 4}

	var records []models.DailyRecord
	for i := range totals {
		date := models.NewDate(2011, time.January, i+1)
		records = append(records, day(i+1, date, seasons[i], 1, i%7, totals[i]/2, totals[i]-totals[i]/2))
	}
	rows, _ := Normalize(records)

	got := BySeason(rows)

	want := []models.SeasonSummary{
		{Season: "Fall", DayCount: 1, MeanCasual: 20, MeanRegistered: 20, MeanTotal: 40},
		{Season: "Spring", DayCount: 2, MeanCasual: 7.5, MeanRegistered: 7.5, MeanTotal: 15},
		{Season: "Summer", DayCount: 1, MeanCasual: 15, MeanRegistered: 15, MeanTotal: 30},
		{Season: "Winter", DayCount: 1, MeanCasual: 25, MeanRegistered: 25, MeanTotal: 50},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("BySeason diff (-want, +got):\n%s", diff)
	}
}

func TestBySeason_MeanTotalIsSumOfMeans(t *testing.T) {
	records := []models.DailyRecord{
		day(1, models.NewDate(2011, 3, 1), 1, 1, 2, 3, 101),
		day(2, models.NewDate(2011, 3, 2), 1, 2, 3, 17, 88),
		day(3, models.NewDate(2011, 6, 1), 2, 1, 3, 251, 3007),
		day(4, models.NewDate(2011, 6, 2), 2, 3, 4, 1, 999),
		day(5, models.NewDate(2011, 6, 3), 2, 1, 5, 77, 1234),
	}
	rows, _ := Normalize(records)

	for _, s := range BySeason(rows) {
		if math.Abs(s.MeanTotal-(s.MeanCasual+s.MeanRegistered)) > 1e-9 {
			t.Errorf("%s: MeanTotal = %v, MeanCasual+MeanRegistered = %v",
				s.Season, s.MeanTotal, s.MeanCasual+s.MeanRegistered)
		}
	}
}

func TestBySeason_CountsDistinctDays(t *testing.T) {
	// The same instant twice counts as one day but contributes two samples.
	records := []models.DailyRecord{
		day(7, models.NewDate(2011, 1, 7), 1, 1, 5, 10, 10),
		day(7, models.NewDate(2011, 1, 7), 1, 1, 5, 20, 20),
	}
	rows, _ := Normalize(records)

	got := BySeason(rows)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].DayCount != 1 {
		t.Errorf("DayCount = %d, want 1", got[0].DayCount)
	}
	if got[0].MeanTotal != 30 {
		t.Errorf("MeanTotal = %v, want 30", got[0].MeanTotal)
	}
}

func TestByWeather(t *testing.T) {
	records := []models.DailyRecord{
		day(1, models.NewDate(2011, 1, 1), 1, 1, 6, 50, 50),
		day(2, models.NewDate(2011, 1, 2), 1, 3, 0, 5, 15),
		day(3, models.NewDate(2011, 1, 3), 1, 3, 1, 10, 30),
		day(4, models.NewDate(2011, 1, 4), 1, 2, 2, 30, 30),
	}
	rows, _ := Normalize(records)

	got := ByWeather(rows)

	want := []models.WeatherSummary{
		{Weather: "Clear", MeanTotal: 100},
		{Weather: "Light_rainsnow", MeanTotal: 30},
		{Weather: "Misty", MeanTotal: 60},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ByWeather diff (-want, +got):\n%s", diff)
	}
}

func TestByMonth(t *testing.T) {
	records := []models.DailyRecord{
		day(1, models.NewDate(2011, 11, 1), 4, 1, 2, 10, 10),
		day(2, models.NewDate(2011, 2, 1), 1, 1, 2, 5, 5),
		day(3, models.NewDate(2011, 11, 2), 4, 1, 3, 20, 20),
		day(4, models.NewDate(2012, 2, 1), 1, 1, 3, 15, 15),
		day(5, models.NewDate(2011, 7, 1), 3, 1, 5, 1, 1),
	}
	rows, _ := Normalize(records)

	got := ByMonth(rows)

	want := []models.MonthlySummary{
		{Month: 2, DayCount: 2, MeanTotal: 20},
		{Month: 7, DayCount: 1, MeanTotal: 2},
		{Month: 11, DayCount: 2, MeanTotal: 30},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ByMonth diff (-want, +got):\n%s", diff)
	}
}

func TestDailySeries(t *testing.T) {
	records := []models.DailyRecord{
		day(3, models.NewDate(2011, 1, 3), 1, 1, 1, 1, 1),
		day(1, models.NewDate(2011, 1, 1), 1, 1, 6, 1, 1),
		day(2, models.NewDate(2011, 1, 2), 1, 1, 0, 1, 1),
	}
	rows, _ := Normalize(records)

	got := DailySeries(rows)

	if len(got) != len(records) {
		t.Fatalf("len = %d, want %d", len(got), len(records))
	}
	for i, r := range got {
		if r.Instant != i+1 {
			t.Errorf("row %d: Instant = %d, want %d", i, r.Instant, i+1)
		}
	}
	if rows[0].Instant != 3 {
		t.Error("DailySeries reordered its input")
	}
}

func TestAggregations_EmptyInput(t *testing.T) {
	rows, unmapped := Normalize(nil)

	if len(rows) != 0 || len(unmapped) != 0 {
		t.Fatalf("Normalize(nil) = %v, %v, want empty", rows, unmapped)
	}
	if got := BySeason(rows); got == nil || len(got) != 0 {
		t.Errorf("BySeason = %#v, want empty non-nil slice", got)
	}
	if got := ByWeather(rows); got == nil || len(got) != 0 {
		t.Errorf("ByWeather = %#v, want empty non-nil slice", got)
	}
	if got := ByMonth(rows); got == nil || len(got) != 0 {
		t.Errorf("ByMonth = %#v, want empty non-nil slice", got)
	}
	if got := DailySeries(rows); got == nil || len(got) != 0 {
		t.Errorf("DailySeries = %#v, want empty non-nil slice", got)
	}
	if got := Sum(rows); got != (models.Totals{}) {
		t.Errorf("Sum = %+v, want zero", got)
	}
}

func TestSum(t *testing.T) {
	records := []models.DailyRecord{
		day(1, models.NewDate(2011, 1, 1), 1, 1, 6, 331, 654),
		day(2, models.NewDate(2011, 1, 2), 1, 2, 0, 131, 670),
	}
	rows, _ := Normalize(records)

	want := models.Totals{DayCount: 2, Casual: 462, Registered: 1324, TotalUsers: 1786}
	if got := Sum(rows); got != want {
		t.Errorf("Sum = %+v, want %+v", got, want)
	}
}
