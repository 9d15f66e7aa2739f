package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"bikeshare-platform/internal/models"
)

const sampleCSV = `instant,dteday,season,yr,mnth,holiday,weekday,workingday,weathersit,temp,atemp,hum,windspeed,casual,registered,cnt
3,2011-01-03,1,0,1,0,1,1,1,0.196364,0.189405,0.437273,0.248309,120,1229,1349
1,2011-01-01,1,0,1,0,6,0,2,0.344167,0.363625,0.805833,0.160446,331,654,985
2,2011-01-02,1,0,1,0,0,0,2,0.363478,0.353739,0.696087,0.248539,131,670,801
4,2011-01-04,1,0,1,0,2,1,1,0.2,0.212122,0.590435,0.160296,108,1454,1562
`

func TestLoadCSV(t *testing.T) {
	records, err := LoadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}

	if len(records) != 4 {
		t.Fatalf("len(records) = %d, want 4", len(records))
	}

	// File order is preserved; sorting is the store's job.
	got := records[1]
	want := models.DailyRecord{
		Instant:    1,
		Date:       models.NewDate(2011, 1, 1),
		Season:     1,
		Year:       0,
		Month:      1,
		Holiday:    0,
		Weekday:    6,
		WorkingDay: 0,
		Weather:    2,
		Temp:       0.344167,
		ATemp:      0.363625,
		Humidity:   0.805833,
		WindSpeed:  0.160446,
		Casual:     331,
		Registered: 654,
		TotalUsers: 985,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("record diff (-want, +got):\n%s", diff)
	}
}

func TestLoadCSV_OptionalColumnsAbsent(t *testing.T) {
	src := "instant,dteday,season,weathersit,weekday,mnth,casual,registered,cnt\n" +
		"1,2011-01-01,1,2,6,1,331,654,985\n"

	records, err := LoadCSV(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].TotalUsers != 985 || records[0].Temp != 0 {
		t.Errorf("record = %+v", records[0])
	}
}

func TestLoadCSV_MissingRequiredColumn(t *testing.T) {
	src := "instant,dteday,season,weathersit,weekday,mnth,casual,registered\n" +
		"1,2011-01-01,1,2,6,1,331,654\n"

	_, err := LoadCSV(strings.NewReader(src))
	if err == nil {
		t.Fatal("LoadCSV() should fail without the cnt column")
	}
	if !strings.Contains(err.Error(), `"cnt"`) {
		t.Errorf("error = %v, want it to name the missing column", err)
	}
}

func TestLoadCSV_BadRowFailsFast(t *testing.T) {
	src := "instant,dteday,season,weathersit,weekday,mnth,casual,registered,cnt\n" +
		"1,2011-01-01,1,2,6,1,331,654,985\n" +
		"2,not-a-date,1,2,0,1,131,670,801\n"

	_, err := LoadCSV(strings.NewReader(src))
	var vErr *models.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v, want *models.ValidationError", err)
	}
	if vErr.Field != "dteday" {
		t.Errorf("Field = %v, want dteday", vErr.Field)
	}
	if !strings.Contains(err.Error(), "row 3") {
		t.Errorf("error = %v, want row number", err)
	}
}

func TestLoadCSV_NoDataRows(t *testing.T) {
	header := strings.SplitN(sampleCSV, "\n", 2)[0]

	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"header only", header + "\n"},
		{"header and blank lines", header + "\n\n  \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCSV(strings.NewReader(tt.input))
			if !errors.Is(err, ErrEmptyDataset) {
				t.Errorf("LoadCSV() error = %v, want ErrEmptyDataset", err)
			}
		})
	}
}

func TestLoadFile_HeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "day.csv")
	header := strings.SplitN(sampleCSV, "\n", 2)[0]
	if err := os.WriteFile(path, []byte(header+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFile(path); !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("LoadFile() error = %v, want ErrEmptyDataset", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "day.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	records, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(records) != 4 {
		t.Errorf("len(records) = %d, want 4", len(records))
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("LoadFile() of a missing file should fail")
	}
}

func newSampleStore(t *testing.T) *Store {
	t.Helper()
	records, err := LoadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}
	store, err := NewStore(records)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store
}

func TestNewStore_SortsByDate(t *testing.T) {
	store := newSampleStore(t)

	all := store.Range(store.Bounds())
	for i, rec := range all {
		if rec.Instant != i+1 {
			t.Errorf("record %d: Instant = %d, want %d", i, rec.Instant, i+1)
		}
	}

	bounds := store.Bounds()
	if bounds.Start.String() != "2011-01-01" || bounds.End.String() != "2011-01-04" {
		t.Errorf("Bounds() = %s..%s, want 2011-01-01..2011-01-04", bounds.Start, bounds.End)
	}
	if store.Len() != 4 {
		t.Errorf("Len() = %d, want 4", store.Len())
	}
}

func TestNewStore_Empty(t *testing.T) {
	if _, err := NewStore(nil); !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("NewStore(nil) error = %v, want ErrEmptyDataset", err)
	}
}

func TestStore_Range(t *testing.T) {
	store := newSampleStore(t)

	tests := []struct {
		name  string
		r     models.DateRange
		wantN []int
	}{
		{"full range", store.Bounds(), []int{1, 2, 3, 4}},
		{"inclusive bounds", models.DateRange{Start: models.NewDate(2011, 1, 2), End: models.NewDate(2011, 1, 3)}, []int{2, 3}},
		{"single day", models.DateRange{Start: models.NewDate(2011, 1, 4), End: models.NewDate(2011, 1, 4)}, []int{4}},
		{"before data", models.DateRange{Start: models.NewDate(2010, 1, 1), End: models.NewDate(2010, 12, 31)}, nil},
		{"inverted", models.DateRange{Start: models.NewDate(2011, 1, 3), End: models.NewDate(2011, 1, 2)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := store.Range(tt.r)
			if got == nil {
				t.Fatal("Range() returned nil, want empty slice")
			}
			var instants []int
			for _, rec := range got {
				instants = append(instants, rec.Instant)
			}
			if diff := cmp.Diff(tt.wantN, instants); diff != "" {
				t.Errorf("instants diff (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestStore_RangeReturnsCopy(t *testing.T) {
	store := newSampleStore(t)

	got := store.Range(store.Bounds())
	got[0].Season = 42
	got[0].TotalUsers = -1

	again := store.Range(store.Bounds())
	if again[0].Season == 42 || again[0].TotalUsers == -1 {
		t.Error("mutating a Range() result changed the store")
	}
}

func TestStore_Clamp(t *testing.T) {
	store := newSampleStore(t)

	tests := []struct {
		name string
		in   models.DateRange
		want string
	}{
		{"zero range is the full range", models.DateRange{}, "2011-01-01..2011-01-04"},
		{"outside both bounds", models.DateRange{Start: models.NewDate(2000, 1, 1), End: models.NewDate(2030, 1, 1)}, "2011-01-01..2011-01-04"},
		{"inside is unchanged", models.DateRange{Start: models.NewDate(2011, 1, 2), End: models.NewDate(2011, 1, 3)}, "2011-01-02..2011-01-03"},
		{"open end", models.DateRange{Start: models.NewDate(2011, 1, 3)}, "2011-01-03..2011-01-04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := store.Clamp(tt.in)
			if s := got.Start.String() + ".." + got.End.String(); s != tt.want {
				t.Errorf("Clamp() = %s, want %s", s, tt.want)
			}
		})
	}
}
