package charts

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"bikeshare-platform/internal/models"
)

func sampleDashboard() *models.Dashboard {
	return &models.Dashboard{
		Seasons: []models.SeasonSummary{
			{Season: "Fall", DayCount: 2, MeanCasual: 10, MeanRegistered: 30, MeanTotal: 40},
			{Season: "Spring", DayCount: 1, MeanCasual: 5, MeanRegistered: 10, MeanTotal: 15},
		},
		Weather: []models.WeatherSummary{
			{Weather: "Clear", MeanTotal: 100},
			{Weather: "Misty", MeanTotal: 60},
		},
		Monthly: []models.MonthlySummary{
			{Month: 5, DayCount: 31, MeanTotal: 20},
			{Month: 6, DayCount: 30, MeanTotal: 25},
			{Month: 10, DayCount: 31, MeanTotal: 15},
		},
		Daily: []models.LabeledRecord{
			{DailyRecord: models.DailyRecord{Date: models.NewDate(2011, 1, 1), TotalUsers: 985}, WeekdayLabel: "Saturday"},
			{DailyRecord: models.DailyRecord{Date: models.NewDate(2011, 1, 2), TotalUsers: 801}, WeekdayLabel: "Sunday"},
		},
	}
}

func values(t *testing.T, spec Spec) []map[string]any {
	t.Helper()
	data, ok := spec["data"].(map[string]any)
	if !ok {
		t.Fatalf("spec has no data block: %v", spec)
	}
	v, ok := data["values"].([]map[string]any)
	if !ok {
		t.Fatalf("data.values has type %T", data["values"])
	}
	return v
}

func encodingField(t *testing.T, spec Spec, channel string) any {
	t.Helper()
	enc := spec["encoding"].(map[string]any)
	return enc[channel].(map[string]any)["field"]
}

func TestBuild_AllNames(t *testing.T) {
	d := sampleDashboard()

	for _, name := range Names {
		t.Run(name, func(t *testing.T) {
			spec, err := Build(name, d)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if spec["$schema"] != VegaSchema {
				t.Errorf("$schema = %v", spec["$schema"])
			}
			if _, err := json.Marshal(spec); err != nil {
				t.Errorf("spec does not encode: %v", err)
			}
		})
	}
}

func TestBuild_Unknown(t *testing.T) {
	_, err := Build("pie", sampleDashboard())

	var unknown *ErrUnknownChart
	if !errors.As(err, &unknown) || unknown.Name != "pie" {
		t.Errorf("Build() error = %v, want ErrUnknownChart for pie", err)
	}
}

func TestView(t *testing.T) {
	want := map[string]string{
		Weather:          models.ViewWeather,
		SeasonTotal:      models.ViewSeason,
		SeasonCasual:     models.ViewSeason,
		SeasonRegistered: models.ViewSeason,
		Monthly:          models.ViewMonthly,
		Daily:            models.ViewDaily,
	}
	for _, name := range Names {
		got, err := View(name)
		if err != nil || got != want[name] {
			t.Errorf("View(%q) = %q, %v, want %q", name, got, err, want[name])
		}
	}

	var unknown *ErrUnknownChart
	if _, err := View("pie"); !errors.As(err, &unknown) {
		t.Errorf("View(pie) error = %v, want ErrUnknownChart", err)
	}
}

func TestSeasonBar_Fields(t *testing.T) {
	d := sampleDashboard()

	tests := []struct {
		chart string
		field string
	}{
		{SeasonTotal, "total_users"},
		{SeasonCasual, "casual"},
		{SeasonRegistered, "registered"},
	}

	for _, tt := range tests {
		t.Run(tt.chart, func(t *testing.T) {
			spec, err := Build(tt.chart, d)
			if err != nil {
				t.Fatal(err)
			}
			if got := encodingField(t, spec, "y"); got != tt.field {
				t.Errorf("y field = %v, want %s", got, tt.field)
			}
			if got := encodingField(t, spec, "x"); got != "season" {
				t.Errorf("x field = %v, want season", got)
			}
			if n := len(values(t, spec)); n != 2 {
				t.Errorf("len(values) = %d, want 2", n)
			}
		})
	}
}

func TestWeatherBar_KeepsOrder(t *testing.T) {
	spec := WeatherBar(sampleDashboard().Weather)

	var got []any
	for _, v := range values(t, spec) {
		got = append(got, v["weathersit"])
	}
	if diff := cmp.Diff([]any{"Clear", "Misty"}, got); diff != "" {
		t.Errorf("weather order diff (-want, +got):\n%s", diff)
	}
	if spec["mark"] != "bar" {
		t.Errorf("mark = %v, want bar", spec["mark"])
	}
}

func TestMonthlyBar_HighlightsSummer(t *testing.T) {
	spec := MonthlyBar(sampleDashboard().Monthly)

	want := map[any]string{5: monthBase, 6: monthPeak, 10: monthBase}
	for _, v := range values(t, spec) {
		if v["color"] != want[v["mnth"]] {
			t.Errorf("month %v color = %v, want %v", v["mnth"], v["color"], want[v["mnth"]])
		}
	}
}

func TestDailyLine(t *testing.T) {
	spec := DailyLine(sampleDashboard().Daily)

	mark := spec["mark"].(map[string]any)
	if mark["type"] != "line" {
		t.Errorf("mark type = %v, want line", mark["type"])
	}

	rows := values(t, spec)
	if len(rows) != 2 || rows[0]["dteday"] != "2011-01-01" || rows[1]["total_users"] != 801 {
		t.Errorf("values = %v", rows)
	}
}

func TestEmptyViews(t *testing.T) {
	spec, err := Build(Daily, &models.Dashboard{})
	if err != nil {
		t.Fatal(err)
	}

	b, err := json.Marshal(spec)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Data struct {
			Values []any `json:"values"`
		} `json:"data"`
	}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Data.Values == nil || len(decoded.Data.Values) != 0 {
		t.Errorf("values = %#v, want empty array", decoded.Data.Values)
	}
}
