package services

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"agroclimate-platform/internal/models"
	"agroclimate-platform/internal/repository"
	"agroclimate-platform/pkg/logging"
	"agroclimate-platform/pkg/metrics"
)

// IngestionService handles county temperature data ingestion
type IngestionService struct {
	repo    repository.ClimateRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// IngestionResult contains ingestion statistics
type IngestionResult struct {
	TotalFiles        int
	TotalRecords      int
	SuccessfulRecords int
	FailedRecords     int
	CountiesCreated   int
	Duration          time.Duration
	Errors            []string
}

// countyManifestEntry is one record of the optional counties.json manifest
// that accompanies a data directory. It carries the metadata a bare
// observation file cannot: name, state, centroid and map geometry.
type countyManifestEntry struct {
	FIPS      string          `json:"fips"`
	Name      string          `json:"name"`
	State     string          `json:"state"`
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	Geometry  json.RawMessage `json:"geometry,omitempty"`
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(repo repository.ClimateRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *IngestionService {
	return &IngestionService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// IngestDirectory ingests all county temperature files from a directory.
// Observation files are named <fips>.txt; a counties.json manifest, when
// present, supplies county metadata for the map layer.
func (s *IngestionService) IngestDirectory(ctx context.Context, dataDir string, batchSize int) (*IngestionResult, error) {
	startTime := time.Now()

	s.logger.Info(ctx, "[INGEST_START] Starting data ingestion", logging.Fields{
		"data_dir":   dataDir,
		"batch_size": batchSize,
		"stage":      "INITIALIZATION",
	})

	result := &IngestionResult{
		Errors: make([]string, 0),
	}

	manifest, err := s.loadManifest(dataDir)
	if err != nil {
		return nil, err
	}

	files, err := filepath.Glob(filepath.Join(dataDir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no data files found in %s", dataDir)
	}

	result.TotalFiles = len(files)

	s.logger.Info(ctx, "[INGEST_FILES] Found data files", logging.Fields{
		"file_count":       len(files),
		"manifest_entries": len(manifest),
		"stage":            "FILE_DISCOVERY",
	})

	for _, filePath := range files {
		fileResult, err := s.ingestFile(ctx, filePath, manifest, batchSize)
		if err != nil {
			errMsg := fmt.Sprintf("failed to ingest %s: %v", filePath, err)
			result.Errors = append(result.Errors, errMsg)
			s.logger.Error(ctx, "[INGEST_FILE_ERROR] File ingestion failed", logging.Fields{
				"file_path": filePath,
				"stage":     "FILE_PROCESSING",
			}, err)
			s.metrics.RecordIngestionError("file_error")
			continue
		}

		result.TotalRecords += fileResult.TotalRecords
		result.SuccessfulRecords += fileResult.SuccessfulRecords
		result.FailedRecords += fileResult.FailedRecords
		result.CountiesCreated++

		s.logger.Info(ctx, "[INGEST_FILE_SUCCESS] File ingested successfully", logging.Fields{
			"file_path":          filePath,
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
		"records_per_second": float64(result.SuccessfulRecords) / result.Duration.Seconds(),
		"error_count":        len(result.Errors),
		"stage":              "COMPLETE",
	})

	return result, nil
}

// loadManifest reads counties.json from the data directory. A missing
// manifest is not an error; counties are then created from filenames alone
// and carry no centroid, so their analyses resolve to the synthetic path.
func (s *IngestionService) loadManifest(dataDir string) (map[string]countyManifestEntry, error) {
	manifest := make(map[string]countyManifestEntry)

	data, err := os.ReadFile(filepath.Join(dataDir, "counties.json"))
	if os.IsNotExist(err) {
		return manifest, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read county manifest: %w", err)
	}

	var entries []countyManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse county manifest: %w", err)
	}

	for _, entry := range entries {
		manifest[entry.FIPS] = entry
	}

	return manifest, nil
}

// FileIngestionResult contains per-file ingestion statistics
type FileIngestionResult struct {
	TotalRecords      int
	SuccessfulRecords int
	FailedRecords     int
}

// ingestFile ingests a single county temperature file
func (s *IngestionService) ingestFile(ctx context.Context, filePath string, manifest map[string]countyManifestEntry, batchSize int) (*FileIngestionResult, error) {
	fileName := filepath.Base(filePath)
	fips := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	county := &models.County{
		FIPS:      fips,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if entry, ok := manifest[fips]; ok {
		county.Name = entry.Name
		county.State = entry.State
		county.Latitude = entry.Latitude
		county.Longitude = entry.Longitude
		county.Geometry = string(entry.Geometry)
	}

	if err := s.repo.CreateCounty(ctx, county); err != nil {
		return nil, fmt.Errorf("failed to create county: %w", err)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	result := &FileIngestionResult{}
	batch := make([]*models.TemperatureObservation, 0, batchSize)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		result.TotalRecords++

		line := scanner.Text()
		record, err := s.parseLine(line)
		if err != nil {
			result.FailedRecords++
			s.metrics.RecordIngestionError("parse_error")
			continue
		}

		observation, err := record.ToObservation(fips)
		if err != nil {
			result.FailedRecords++
			s.metrics.RecordIngestionError("conversion_error")
			continue
		}

		batch = append(batch, observation)

		// Process batch when full
		if len(batch) >= batchSize {
			if err := s.repo.CreateObservationsBatch(ctx, batch); err != nil {
				return nil, fmt.Errorf("failed to insert batch: %w", err)
			}
			result.SuccessfulRecords += len(batch)
			batch = batch[:0]
		}
	}

	// Process remaining records
	if len(batch) > 0 {
		if err := s.repo.CreateObservationsBatch(ctx, batch); err != nil {
			return nil, fmt.Errorf("failed to insert final batch: %w", err)
		}
		result.SuccessfulRecords += len(batch)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return result, nil
}

// parseLine parses a single line from a county temperature file
// Format: YYYYMMDD\tMAX_TEMP\tMIN_TEMP\tPRECIP
func (s *IngestionService) parseLine(line string) (*models.RawTemperatureRecord, error) {
	parts := strings.Split(line, "\t")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid line format: expected 4 fields, got %d", len(parts))
	}

	maxTemp, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, fmt.Errorf("invalid max temperature: %w", err)
	}

	minTemp, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return nil, fmt.Errorf("invalid min temperature: %w", err)
	}

	precip, err := strconv.Atoi(strings.TrimSpace(parts[3]))
	if err != nil {
		return nil, fmt.Errorf("invalid precipitation: %w", err)
	}

	return &models.RawTemperatureRecord{
		Date:                 strings.TrimSpace(parts[0]),
		MaxTemperatureTenths: maxTemp,
		MinTemperatureTenths: minTemp,
		PrecipitationTenths:  precip,
	}, nil
}
