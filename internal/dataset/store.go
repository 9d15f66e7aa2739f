// Package dataset holds the read-only record store shared by every request.
package dataset

import (
	"errors"
	"slices"

	"bikeshare-platform/internal/models"
)

// ErrEmptyDataset is returned when a store is built from zero records.
var ErrEmptyDataset = errors.New("dataset contains no records")

// Store is an immutable, date-sorted table of daily records.
// It is safe for concurrent use.
type Store struct {
	records []models.DailyRecord
	bounds  models.DateRange
}

// NewStore copies records and sorts the copy ascending by date.
func NewStore(records []models.DailyRecord) (*Store, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b models.DailyRecord) int {
		return a.Date.Compare(b.Date.Time)
	})

	return &Store{
		records: sorted,
		bounds: models.DateRange{
			Start: sorted[0].Date,
			End:   sorted[len(sorted)-1].Date,
		},
	}, nil
}

// Len returns the number of records held.
func (s *Store) Len() int {
	return len(s.records)
}

// Bounds returns the first and last date present.
func (s *Store) Bounds() models.DateRange {
	return s.bounds
}

// Clamp limits r to the store bounds. The result may be empty (Start after
// End) when r lies completely outside the data.
func (s *Store) Clamp(r models.DateRange) models.DateRange {
	if r.Start.IsZero() || r.Start.Before(s.bounds.Start.Time) {
		r.Start = s.bounds.Start
	}
	if r.End.IsZero() || r.End.After(s.bounds.End.Time) {
		r.End = s.bounds.End
	}
	return r
}

// Range returns a fresh copy of the records dated within r, bounds included,
// in ascending date order.
func (s *Store) Range(r models.DateRange) []models.DailyRecord {
	lo, _ := slices.BinarySearchFunc(s.records, r.Start, func(rec models.DailyRecord, d models.Date) int {
		return rec.Date.Compare(d.Time)
	})
	hi, found := slices.BinarySearchFunc(s.records, r.End, func(rec models.DailyRecord, d models.Date) int {
		return rec.Date.Compare(d.Time)
	})
	if found {
		// Step past every record sharing the end date.
		for hi < len(s.records) && s.records[hi].Date.Equal(r.End.Time) {
			hi++
		}
	}
	if lo >= hi {
		return []models.DailyRecord{}
	}
	return slices.Clone(s.records[lo:hi])
}
