package analytics

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/stat"

	"bikeshare-platform/internal/models"
)

// group collects the per-key samples of one aggregation bucket.
type group[K cmp.Ordered] struct {
	key        K
	instants   map[int]struct{}
	casual     []float64
	registered []float64
	total      []float64
}

func (g *group[K]) dayCount() int { return len(g.instants) }

// groupBy buckets rows by key and returns the buckets ordered by key ascending.
func groupBy[K cmp.Ordered](rows []models.LabeledRecord, key func(models.LabeledRecord) K) []*group[K] {
	index := make(map[K]*group[K])
	var groups []*group[K]

	for _, row := range rows {
		k := key(row)
		g, ok := index[k]
		if !ok {
			g = &group[K]{key: k, instants: make(map[int]struct{})}
			index[k] = g
			groups = append(groups, g)
		}
		g.instants[row.Instant] = struct{}{}
		g.casual = append(g.casual, float64(row.Casual))
		g.registered = append(g.registered, float64(row.Registered))
		g.total = append(g.total, float64(row.TotalUsers))
	}

	slices.SortFunc(groups, func(a, b *group[K]) int { return cmp.Compare(a.key, b.key) })
	return groups
}

// BySeason returns one row per season label present in rows: the number of
// distinct days and the mean casual, registered and total riders.
func BySeason(rows []models.LabeledRecord) []models.SeasonSummary {
	groups := groupBy(rows, func(r models.LabeledRecord) string { return r.SeasonLabel })

	out := make([]models.SeasonSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.SeasonSummary{
			Season:         g.key,
			DayCount:       g.dayCount(),
			MeanCasual:     stat.Mean(g.casual, nil),
			MeanRegistered: stat.Mean(g.registered, nil),
			MeanTotal:      stat.Mean(g.total, nil),
		})
	}
	return out
}

// ByWeather returns the mean total riders per weather situation label.
func ByWeather(rows []models.LabeledRecord) []models.WeatherSummary {
	groups := groupBy(rows, func(r models.LabeledRecord) string { return r.WeatherLabel })

	out := make([]models.WeatherSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.WeatherSummary{
			Weather:   g.key,
			MeanTotal: stat.Mean(g.total, nil),
		})
	}
	return out
}

// ByMonth returns distinct day count and mean total riders per month number,
// ascending. Months without rows are omitted.
func ByMonth(rows []models.LabeledRecord) []models.MonthlySummary {
	groups := groupBy(rows, func(r models.LabeledRecord) int { return r.Month })

	out := make([]models.MonthlySummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.MonthlySummary{
			Month:     g.key,
			DayCount:  g.dayCount(),
			MeanTotal: stat.Mean(g.total, nil),
		})
	}
	return out
}

// DailySeries returns a copy of rows sorted ascending by date.
func DailySeries(rows []models.LabeledRecord) []models.LabeledRecord {
	out := slices.Clone(rows)
	if out == nil {
		out = []models.LabeledRecord{}
	}
	slices.SortStableFunc(out, func(a, b models.LabeledRecord) int {
		return a.Date.Compare(b.Date.Time)
	})
	return out
}

// Sum returns the summed counts of rows.
func Sum(rows []models.LabeledRecord) models.Totals {
	var t models.Totals
	days := make(map[int]struct{}, len(rows))
	for _, r := range rows {
		days[r.Instant] = struct{}{}
		t.Casual += r.Casual
		t.Registered += r.Registered
		t.TotalUsers += r.TotalUsers
	}
	t.DayCount = len(days)
	return t
}
