package services

import (
	"context"

	"agroclimate-platform/internal/analysis"
	"agroclimate-platform/internal/models"
	"agroclimate-platform/internal/repository"
)

// repoTemperatureProvider serves the orchestrator's daily-max series from the
// observation table.
type repoTemperatureProvider struct {
	repo repository.ClimateRepository
}

func (p *repoTemperatureProvider) FetchDailyMax(ctx context.Context, site analysis.Site, days int) ([]float64, error) {
	return p.repo.GetDailyMaxTemperatures(ctx, site.FIPS, days)
}

// repoAnnualSeriesProvider serves the orchestrator's annual series from the
// observation table.
type repoAnnualSeriesProvider struct {
	repo repository.ClimateRepository
}

func (p *repoAnnualSeriesProvider) FetchAnnualSeries(ctx context.Context, site analysis.Site) ([]models.YearValue, error) {
	return p.repo.GetAnnualMeanMaxSeries(ctx, site.FIPS)
}
