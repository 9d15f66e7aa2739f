package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bikeshare-platform/internal/dataset"
	"bikeshare-platform/internal/models"
	"bikeshare-platform/internal/repository"
	"bikeshare-platform/pkg/logging"
	"bikeshare-platform/pkg/metrics"
)

// IngestionService loads daily rental CSV files into the database
type IngestionService struct {
	repo    repository.RentalRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// IngestionResult contains ingestion statistics
type IngestionResult struct {
	TotalFiles        int
	TotalRecords      int
	SuccessfulRecords int
	FailedRecords     int
	Duration          time.Duration
	Errors            []string
}

// FileIngestionResult contains per-file ingestion statistics
type FileIngestionResult struct {
	TotalRecords      int
	SuccessfulRecords int
	FailedRecords     int
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(repo repository.RentalRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *IngestionService {
	return &IngestionService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// IngestPath ingests a single CSV file, or every *.csv file when path is a directory
func (s *IngestionService) IngestPath(ctx context.Context, path string, batchSize int) (*IngestionResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return s.IngestDirectory(ctx, path, batchSize)
	}
	return s.ingestFiles(ctx, []string{path}, batchSize)
}

// IngestDirectory ingests all CSV files from a directory
func (s *IngestionService) IngestDirectory(ctx context.Context, dataDir string, batchSize int) (*IngestionResult, error) {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no data files found in %s", dataDir)
	}

	return s.ingestFiles(ctx, files, batchSize)
}

func (s *IngestionService) ingestFiles(ctx context.Context, files []string, batchSize int) (*IngestionResult, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	startTime := time.Now()

	s.logger.Info(ctx, "[INGEST_START] Starting data ingestion", logging.Fields{
		"file_count": len(files),
		"batch_size": batchSize,
		"stage":      "INITIALIZATION",
	})

	result := &IngestionResult{
		TotalFiles: len(files),
		Errors:     make([]string, 0),
	}

	for _, filePath := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		fileLogger := s.logger.WithFields(logging.Fields{"file_path": filePath})

		// A failed file may still have committed earlier batches.
		fileResult, err := s.IngestFile(ctx, filePath, batchSize)
		if fileResult != nil {
			result.TotalRecords += fileResult.TotalRecords
			result.SuccessfulRecords += fileResult.SuccessfulRecords
			result.FailedRecords += fileResult.FailedRecords
		}

		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to ingest %s: %v", filePath, err))
			fileLogger.Error(ctx, "[INGEST_FILE_ERROR] File ingestion failed", logging.Fields{
				"stage": "FILE_PROCESSING",
			}, err)
			s.metrics.RecordIngestionError("file_error")
			continue
		}

		fileLogger.Info(ctx, "[INGEST_FILE_SUCCESS] File ingested successfully", logging.Fields{
			"total_records":      fileResult.TotalRecords,
			"successful_records": fileResult.SuccessfulRecords,
			"failed_records":     fileResult.FailedRecords,
			"stage":              "FILE_COMPLETE",
		})
	}

	result.Duration = time.Since(startTime)
	s.metrics.IngestionDuration.Observe(result.Duration.Seconds())

	s.logger.Info(ctx, "[INGEST_COMPLETE] Data ingestion completed", logging.Fields{
		"total_files":        result.TotalFiles,
		"total_records":      result.TotalRecords,
		"successful_records": result.SuccessfulRecords,
		"failed_records":     result.FailedRecords,
		"duration_seconds":   result.Duration.Seconds(),
		"error_count":        len(result.Errors),
		"stage":              "COMPLETE",
	})

	return result, nil
}

// IngestFile ingests one CSV file. Rows that fail coercion are counted and
// skipped; a missing column or a database failure aborts the file. When a
// batch fails, the returned result still counts the batches already
// committed.
func (s *IngestionService) IngestFile(ctx context.Context, filePath string, batchSize int) (*FileIngestionResult, error) {
	fileLogger := s.logger.WithFields(logging.Fields{"file_path": filePath})

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	rows, err := dataset.ReadRaw(file)
	if err != nil {
		return nil, err
	}

	result := &FileIngestionResult{}
	batch := make([]models.DailyRecord, 0, batchSize)

	flush := func() error {
		if err := s.repo.UpsertDaysBatch(ctx, batch); err != nil {
			return err
		}
		result.SuccessfulRecords += len(batch)
		fileLogger.Debug(ctx, "[INGEST_BATCH] Batch upserted", logging.Fields{
			"batch_size":         len(batch),
			"successful_records": result.SuccessfulRecords,
		})
		batch = batch[:0]
		return nil
	}

	for i := range rows {
		result.TotalRecords++

		record, err := rows[i].ToDailyRecord()
		if err != nil {
			result.FailedRecords++
			s.metrics.RecordIngestionError("conversion_error")
			fileLogger.Warn(ctx, "[INGEST_ROW_SKIPPED] Row failed type coercion", logging.Fields{
				"row":   i + 2,
				"error": err.Error(),
			})
			continue
		}

		batch = append(batch, *record)

		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return result, fmt.Errorf("failed to upsert batch: %w", err)
			}
		}
	}

	if len(batch) > 0 {
		if err := flush(); err != nil {
			return result, fmt.Errorf("failed to upsert final batch: %w", err)
		}
	}

	return result, nil
}
