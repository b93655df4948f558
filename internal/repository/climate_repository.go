package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"agroclimate-platform/internal/models"
	"agroclimate-platform/pkg/database"
	"agroclimate-platform/pkg/logging"
	"agroclimate-platform/pkg/metrics"
)

// ClimateRepository provides data access for county climate data. The
// analytics core never touches it directly; it feeds the orchestrator's
// providers and the thin record-access API.
type ClimateRepository interface {
	// County operations
	CreateCounty(ctx context.Context, county *models.County) error
	GetCounty(ctx context.Context, fips string) (*models.County, error)
	ListCounties(ctx context.Context, limit, offset int) ([]*models.County, int, error)

	// Observation operations
	CreateObservationsBatch(ctx context.Context, observations []*models.TemperatureObservation) error
	GetObservations(ctx context.Context, filter ObservationFilter) ([]*models.TemperatureObservation, int, error)
	GetDailyMaxTemperatures(ctx context.Context, fips string, days int) ([]float64, error)
	GetAnnualMeanMaxSeries(ctx context.Context, fips string) ([]models.YearValue, error)

	// Analysis cache operations. TTL is supplied by the caller; the core
	// stays cache-free and deterministic.
	GetCachedAnalysis(ctx context.Context, key string, ttl time.Duration) (json.RawMessage, bool, error)
	UpsertCachedAnalysis(ctx context.Context, key string, payload json.RawMessage) error

	// Utility operations
	HealthCheck(ctx context.Context) error
}

// ObservationFilter defines filters for querying observations
type ObservationFilter struct {
	CountyFIPS *string
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
	Offset     int
}

// climateRepository implements ClimateRepository
type climateRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewClimateRepository creates a new climate repository
func NewClimateRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) ClimateRepository {
	return &climateRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// CreateCounty creates a new county record
func (r *climateRepository) CreateCounty(ctx context.Context, county *models.County) error {
	query := `
		INSERT INTO counties (fips, name, state, latitude, longitude, geometry, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (fips) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, "insert_county", query,
		county.FIPS,
		county.Name,
		county.State,
		county.Latitude,
		county.Longitude,
		county.Geometry,
		county.CreatedAt,
		county.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create county: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_CREATE_COUNTY] County created", logging.Fields{
		"fips":  county.FIPS,
		"state": county.State,
	})

	return nil
}

// GetCounty retrieves a county by FIPS code
func (r *climateRepository) GetCounty(ctx context.Context, fips string) (*models.County, error) {
	query := `
		SELECT fips, name, state, latitude, longitude, geometry, created_at, updated_at
		FROM counties
		WHERE fips = $1
	`

	var county models.County
	err := r.db.GetContext(ctx, "get_county", &county, query, fips)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "county",
			ID:       fips,
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get county: %w", err)
	}

	return &county, nil
}

// ListCounties retrieves counties with pagination
func (r *climateRepository) ListCounties(ctx context.Context, limit, offset int) ([]*models.County, int, error) {
	var totalCount int
	if err := r.db.GetContext(ctx, "count_counties", &totalCount, "SELECT COUNT(*) FROM counties"); err != nil {
		return nil, 0, fmt.Errorf("failed to count counties: %w", err)
	}

	query := `
		SELECT fips, name, state, latitude, longitude, geometry, created_at, updated_at
		FROM counties
		ORDER BY fips
		LIMIT $1 OFFSET $2
	`

	var counties []*models.County
	if err := r.db.SelectContext(ctx, "list_counties", &counties, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list counties: %w", err)
	}

	return counties, totalCount, nil
}

// CreateObservationsBatch creates multiple observations in a single transaction
func (r *climateRepository) CreateObservationsBatch(ctx context.Context, observations []*models.TemperatureObservation) error {
	if len(observations) == 0 {
		return nil
	}

	timer := time.Now()
	defer func() {
		r.metrics.IngestionBatchSize.Observe(float64(len(observations)))
		r.logger.Debug(ctx, "[REPO_BATCH_INSERT] Batch insert completed", logging.Fields{
			"count":       len(observations),
			"duration_ms": time.Since(timer).Milliseconds(),
		})
	}()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO temperature_observations (
			county_fips, observation_date,
			max_temperature_celsius, min_temperature_celsius, precipitation_cm,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (county_fips, observation_date) DO UPDATE SET
			max_temperature_celsius = EXCLUDED.max_temperature_celsius,
			min_temperature_celsius = EXCLUDED.min_temperature_celsius,
			precipitation_cm = EXCLUDED.precipitation_cm
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, obs := range observations {
		_, err := stmt.ExecContext(ctx,
			obs.CountyFIPS,
			obs.ObservationDate,
			obs.MaxTemperatureCelsius,
			obs.MinTemperatureCelsius,
			obs.PrecipitationCm,
			obs.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert observation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.metrics.IngestionRecordsTotal.Add(float64(len(observations)))

	return nil
}

// GetObservations retrieves temperature observations with filtering and pagination
func (r *climateRepository) GetObservations(ctx context.Context, filter ObservationFilter) ([]*models.TemperatureObservation, int, error) {
	query := `
		SELECT id, county_fips, observation_date,
		       max_temperature_celsius, min_temperature_celsius, precipitation_cm,
		       created_at
		FROM temperature_observations
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filter.CountyFIPS != nil {
		query += fmt.Sprintf(" AND county_fips = $%d", argNum)
		args = append(args, *filter.CountyFIPS)
		argNum++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND observation_date >= $%d", argNum)
		args = append(args, *filter.StartDate)
		argNum++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND observation_date <= $%d", argNum)
		args = append(args, *filter.EndDate)
		argNum++
	}

	countQuery := "SELECT COUNT(*) FROM (" + query + ") AS count_query"
	var totalCount int
	err := r.db.GetContext(ctx, "count_observations", &totalCount, countQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count observations: %w", err)
	}

	query += " ORDER BY observation_date DESC, county_fips"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	var observations []*models.TemperatureObservation
	err = r.db.SelectContext(ctx, "get_observations", &observations, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get observations: %w", err)
	}

	return observations, totalCount, nil
}

// GetDailyMaxTemperatures returns the most recent daily maximum temperatures
// for a county, chronological, with NULL readings filtered out. This is the
// shape the heatwave detector consumes.
func (r *climateRepository) GetDailyMaxTemperatures(ctx context.Context, fips string, days int) ([]float64, error) {
	query := `
		SELECT max_temperature_celsius
		FROM (
			SELECT observation_date, max_temperature_celsius
			FROM temperature_observations
			WHERE county_fips = $1
			  AND max_temperature_celsius IS NOT NULL
			ORDER BY observation_date DESC
			LIMIT $2
		) AS recent
		ORDER BY observation_date ASC
	`

	var temps []float64
	if err := r.db.SelectContext(ctx, "get_daily_max", &temps, query, fips, days); err != nil {
		return nil, fmt.Errorf("failed to get daily max temperatures: %w", err)
	}

	return temps, nil
}

// GetAnnualMeanMaxSeries returns the annual mean of daily maximum
// temperatures for a county, ascending by year. Years without valid readings
// are absent rather than zero-filled.
func (r *climateRepository) GetAnnualMeanMaxSeries(ctx context.Context, fips string) ([]models.YearValue, error) {
	timer := time.Now()
	defer func() {
		r.metrics.AnalysisDuration.WithLabelValues("annual_series_query").Observe(time.Since(timer).Seconds())
	}()

	query := `
		SELECT EXTRACT(YEAR FROM observation_date)::int AS year,
		       AVG(max_temperature_celsius) AS value
		FROM temperature_observations
		WHERE county_fips = $1
		  AND max_temperature_celsius IS NOT NULL
		GROUP BY year
		ORDER BY year ASC
	`

	var series []models.YearValue
	if err := r.db.SelectContext(ctx, "get_annual_series", &series, query, fips); err != nil {
		return nil, fmt.Errorf("failed to get annual series: %w", err)
	}

	return series, nil
}

// GetCachedAnalysis returns a cached analysis payload when one exists and is
// younger than the caller-supplied TTL.
func (r *climateRepository) GetCachedAnalysis(ctx context.Context, key string, ttl time.Duration) (json.RawMessage, bool, error) {
	query := `
		SELECT cache_key, payload, computed_at
		FROM analysis_cache
		WHERE cache_key = $1
	`

	var row models.CachedAnalysis
	err := r.db.GetContext(ctx, "get_cached_analysis", &row, query, key)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached analysis: %w", err)
	}

	if time.Since(row.ComputedAt) > ttl {
		return nil, false, nil
	}

	return row.Payload, true, nil
}

// UpsertCachedAnalysis stores an analysis payload under its cache key.
func (r *climateRepository) UpsertCachedAnalysis(ctx context.Context, key string, payload json.RawMessage) error {
	query := `
		INSERT INTO analysis_cache (cache_key, payload, computed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (cache_key) DO UPDATE SET
			payload = EXCLUDED.payload,
			computed_at = EXCLUDED.computed_at
	`

	_, err := r.db.ExecContext(ctx, "upsert_cached_analysis", query, key, []byte(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert cached analysis: %w", err)
	}

	return nil
}

// HealthCheck performs a repository health check
func (r *climateRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}
