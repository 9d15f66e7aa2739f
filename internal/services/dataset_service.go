package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bikeshare-platform/internal/dataset"
	"bikeshare-platform/internal/repository"
	"bikeshare-platform/pkg/logging"
	"bikeshare-platform/pkg/metrics"
)

// DatasetService builds the record store from a CSV file or the database
type DatasetService struct {
	repo    repository.RentalRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewDatasetService creates a new dataset service. repo may be nil when the
// store is only ever loaded from files.
func NewDatasetService(repo repository.RentalRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *DatasetService {
	return &DatasetService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// LoadFromFile reads path into a store. Any malformed row aborts the load.
func (s *DatasetService) LoadFromFile(ctx context.Context, path string) (*dataset.Store, error) {
	startTime := time.Now()

	records, err := dataset.LoadFile(path)
	if err != nil {
		s.metrics.RecordIngestionError("load_error")
		return nil, err
	}

	store, err := dataset.NewStore(records)
	if err != nil {
		return nil, fmt.Errorf("failed to build store from %s: %w", path, err)
	}

	s.loaded(ctx, store, "csv", startTime)
	return store, nil
}

// LoadFromDatabase reads every stored day into a store.
func (s *DatasetService) LoadFromDatabase(ctx context.Context) (*dataset.Store, error) {
	if s.repo == nil {
		return nil, errors.New("dataset service has no repository")
	}

	startTime := time.Now()

	records, err := s.repo.ListDays(ctx, repository.DayFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to read days: %w", err)
	}

	store, err := dataset.NewStore(records)
	if err != nil {
		return nil, fmt.Errorf("failed to build store from database: %w", err)
	}

	s.loaded(ctx, store, "database", startTime)
	return store, nil
}

func (s *DatasetService) loaded(ctx context.Context, store *dataset.Store, source string, startTime time.Time) {
	s.metrics.DatasetRecords.Set(float64(store.Len()))

	bounds := store.Bounds()
	s.logger.Info(ctx, "[DATASET_LOADED] Record store ready", logging.Fields{
		"source":      source,
		"records":     store.Len(),
		"min_date":    bounds.Start.String(),
		"max_date":    bounds.End.String(),
		"duration_ms": time.Since(startTime).Milliseconds(),
	})
}
