package services

import (
	"context"

	"agroclimate-platform/internal/models"
	"agroclimate-platform/internal/repository"
	"agroclimate-platform/pkg/logging"
	"agroclimate-platform/pkg/metrics"
)

// ClimateService handles county and observation data operations
type ClimateService struct {
	repo    repository.ClimateRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewClimateService creates a new climate service
func NewClimateService(repo repository.ClimateRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *ClimateService {
	return &ClimateService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// GetCounty retrieves a county by FIPS code
func (s *ClimateService) GetCounty(ctx context.Context, fips string) (*models.County, error) {
	return s.repo.GetCounty(ctx, fips)
}

// ListCounties retrieves counties with pagination
func (s *ClimateService) ListCounties(ctx context.Context, limit, offset int) ([]*models.County, int, error) {
	return s.repo.ListCounties(ctx, limit, offset)
}

// GetObservations retrieves temperature observations with filtering
func (s *ClimateService) GetObservations(ctx context.Context, filter repository.ObservationFilter) ([]*models.TemperatureObservation, int, error) {
	return s.repo.GetObservations(ctx, filter)
}

// HealthCheck verifies the data layer is reachable
func (s *ClimateService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}
