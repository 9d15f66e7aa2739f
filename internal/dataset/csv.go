package dataset

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"bikeshare-platform/internal/models"
)

// RequiredColumns must be present in every source file.
var RequiredColumns = []string{
	"instant", "dteday", "season", "weathersit", "weekday", "mnth", "casual", "registered", "cnt",
}

// OptionalColumns are read when present and left at zero otherwise.
var OptionalColumns = []string{
	"yr", "holiday", "workingday", "temp", "atemp", "hum", "windspeed",
}

// ReadRaw reads a CSV source into uncoerced rows. Every column is read as text
// so that coercion failures can be reported per row.
func ReadRaw(r io.Reader) ([]models.RawDayRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if !hasDataRow(data) {
		return nil, ErrEmptyDataset
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", df.Err)
	}

	names := df.Names()
	for _, col := range RequiredColumns {
		if !slices.Contains(names, col) {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	column := func(name string) []string {
		if !slices.Contains(names, name) {
			return make([]string, df.Nrow())
		}
		return df.Col(name).Records()
	}

	var (
		instant    = column("instant")
		dteday     = column("dteday")
		season     = column("season")
		yr         = column("yr")
		mnth       = column("mnth")
		holiday    = column("holiday")
		weekday    = column("weekday")
		workingday = column("workingday")
		weathersit = column("weathersit")
		temp       = column("temp")
		atemp      = column("atemp")
		hum        = column("hum")
		windspeed  = column("windspeed")
		casual     = column("casual")
		registered = column("registered")
		cnt        = column("cnt")
	)

	rows := make([]models.RawDayRecord, df.Nrow())
	for i := range rows {
		rows[i] = models.RawDayRecord{
			Instant:    instant[i],
			Dteday:     dteday[i],
			Season:     season[i],
			Yr:         yr[i],
			Mnth:       mnth[i],
			Holiday:    holiday[i],
			Weekday:    weekday[i],
			Workingday: workingday[i],
			Weathersit: weathersit[i],
			Temp:       temp[i],
			Atemp:      atemp[i],
			Hum:        hum[i],
			Windspeed:  windspeed[i],
			Casual:     casual[i],
			Registered: registered[i],
			Cnt:        cnt[i],
		}
	}

	return rows, nil
}

// hasDataRow reports whether data holds a non-blank line after the header.
func hasDataRow(data []byte) bool {
	lines := 0
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		lines++
		if lines == 2 {
			return true
		}
	}
	return false
}

// LoadCSV reads and coerces a CSV source. The first row that fails coercion
// aborts the load.
func LoadCSV(r io.Reader) ([]models.DailyRecord, error) {
	raw, err := ReadRaw(r)
	if err != nil {
		return nil, err
	}

	records := make([]models.DailyRecord, 0, len(raw))
	for i := range raw {
		rec, err := raw[i].ToDailyRecord()
		if err != nil {
			// Row numbers are 1-based and skip the header line.
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, *rec)
	}

	return records, nil
}

// LoadFile opens path and loads it with LoadCSV.
func LoadFile(path string) ([]models.DailyRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	records, err := LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return records, nil
}
