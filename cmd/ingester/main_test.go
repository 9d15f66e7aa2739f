package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bikeshare-platform/internal/models"
	"bikeshare-platform/internal/repository"
)

type storedRepository struct {
	repository.RentalRepository
	count     int
	bounds    models.DateRange
	boundsErr error
}

func (r *storedRepository) CountDays(ctx context.Context) (int, error) {
	return r.count, nil
}

func (r *storedRepository) DateBounds(ctx context.Context) (models.DateRange, error) {
	return r.bounds, r.boundsErr
}

func TestPrintStored(t *testing.T) {
	tests := []struct {
		name    string
		repo    *storedRepository
		want    []string
		wantErr bool
	}{
		{
			name: "populated",
			repo: &storedRepository{
				count:  731,
				bounds: models.DateRange{Start: models.NewDate(2011, 1, 1), End: models.NewDate(2012, 12, 31)},
			},
			want: []string{"Stored Days:        731", "Stored Range:       2011-01-01 to 2012-12-31"},
		},
		{
			name: "empty table",
			repo: &storedRepository{boundsErr: &repository.NotFoundError{Resource: "daily_rental", ID: "bounds"}},
			want: []string{"Stored Days:        0", "Stored Range:       none"},
		},
		{
			name:    "query failure",
			repo:    &storedRepository{boundsErr: errors.New("connection reset")},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			err := printStored(context.Background(), &b, tt.repo)
			if (err != nil) != tt.wantErr {
				t.Fatalf("printStored() error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, want := range tt.want {
				if !strings.Contains(b.String(), want) {
					t.Errorf("output missing %q\n%s", want, b.String())
				}
			}
		})
	}
}
