package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agroclimate-platform/internal/analysis"
	"agroclimate-platform/internal/config"
	"agroclimate-platform/internal/models"
	"agroclimate-platform/internal/repository"
	"agroclimate-platform/pkg/logging"
	"agroclimate-platform/pkg/metrics"
)

// AnalysisService fronts the analytics engine for the HTTP layer. It owns
// logging, metrics and the Postgres-backed result cache; the engine itself
// stays pure and cache-free.
type AnalysisService struct {
	repo         repository.ClimateRepository
	orchestrator *analysis.Orchestrator
	heat         *analysis.HeatwaveDetector
	trends       *analysis.TrendAnalyzer
	cacheTTL     time.Duration
	logger       *logging.StructuredLogger
	metrics      *metrics.Collector
}

// CountyAnalysisResult is the combined severe-weather and trend view served
// for a county.
type CountyAnalysisResult struct {
	County        *models.County           `json:"county"`
	SevereWeather *models.SoundingAnalysis `json:"severe_weather"`
	Trend         *models.TrendAnalysis    `json:"trend"`
}

// NewAnalysisService builds the calculators from configuration and wires the
// orchestrator with repository-backed providers. The sounding provider is
// injected; passing nil means every severe-weather analysis for a county uses
// the synthetic fallback profile.
func NewAnalysisService(
	cfg config.AnalysisConfig,
	repo repository.ClimateRepository,
	soundings analysis.SoundingProvider,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *AnalysisService {
	indices := analysis.NewIndicesCalculator(analysis.IndicesConfig{
		MaxPressureGapHPa:     cfg.MaxPressureGapHPa,
		CAPEWeight:            cfg.CAPEWeight,
		HelicityWeight:        cfg.HelicityWeight,
		HeatWeight:            cfg.HeatWeight,
		CAPENormalization:     cfg.CAPENormalization,
		HelicityNormalization: cfg.HelicityNormalization,
	})
	heat := analysis.NewHeatwaveDetector(analysis.HeatwaveConfig{
		PercentileRank: cfg.HeatPercentileRank,
		MinEventRun:    cfg.HeatwaveMinRunDays,
	})
	trends := analysis.NewTrendAnalyzer(analysis.TrendConfig{
		SignificanceLevel: cfg.SignificanceLevel,
		ChangePointSigma:  cfg.ChangePointSigma,
	})

	orchCfg := analysis.DefaultOrchestratorConfig()
	orchCfg.UpstreamTimeout = cfg.UpstreamTimeout
	orchCfg.HeatSeriesDays = cfg.HeatSeriesDays

	orchestrator := analysis.NewOrchestrator(
		orchCfg,
		soundings,
		&repoTemperatureProvider{repo: repo},
		&repoAnnualSeriesProvider{repo: repo},
		indices,
		heat,
		trends,
	)

	return &AnalysisService{
		repo:         repo,
		orchestrator: orchestrator,
		heat:         heat,
		trends:       trends,
		cacheTTL:     cfg.CacheTTL,
		logger:       logger,
		metrics:      metricsCollector,
	}
}

// AnalyzeSounding computes severe-weather indices for a caller-supplied
// profile. When a daily-max series accompanies the request, heat metrics are
// derived from it and folded into the composite risk.
func (s *AnalysisService) AnalyzeSounding(ctx context.Context, sounding *models.Sounding, dailyMax []float64) *models.SoundingAnalysis {
	timer := time.Now()
	defer func() {
		s.metrics.AnalysisDuration.WithLabelValues("sounding").Observe(time.Since(timer).Seconds())
	}()

	var heat *models.HeatMetrics
	if len(dailyMax) > 0 {
		h := s.heat.DetectHeatEvents(dailyMax)
		heat = &h
	}

	result := s.orchestrator.AnalyzeSounding(sounding, heat)

	s.logger.Info(ctx, "[ANALYSIS_SOUNDING] Sounding analysis completed", logging.Fields{
		"levels":       sounding.Levels(),
		"cape":         result.Indices.CAPE,
		"cape_invalid": result.Indices.CAPEInvalid,
		"has_heat":     heat != nil,
	})

	return result
}

// AnalyzeTrendSeries runs the trend analyzer over a caller-supplied annual
// series. Typed analyzer errors surface unchanged for the handler to map.
func (s *AnalysisService) AnalyzeTrendSeries(ctx context.Context, series []models.YearValue) (*models.TrendAnalysis, error) {
	timer := time.Now()
	defer func() {
		s.metrics.AnalysisDuration.WithLabelValues("trend").Observe(time.Since(timer).Seconds())
	}()

	trend, err := s.trends.AnalyzeTrend(series)
	if err != nil {
		s.metrics.RecordAnalysisError("trend")
		return nil, err
	}

	s.logger.Info(ctx, "[ANALYSIS_TREND] Trend analysis completed", logging.Fields{
		"points":      len(series),
		"direction":   trend.Direction,
		"significant": trend.Significant,
	})

	return &models.TrendAnalysis{
		Trend:       *trend,
		Source:      models.SourceObserved,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// AnalyzeCounty produces the combined severe-weather and trend analysis for a
// county, serving a cached result when one is fresh enough. Results are
// cached as the serialized response so cache hits skip the engine entirely.
func (s *AnalysisService) AnalyzeCounty(ctx context.Context, fips string) (json.RawMessage, error) {
	county, err := s.repo.GetCounty(ctx, fips)
	if err != nil {
		return nil, err
	}

	cacheKey := "county_analysis:" + fips
	if payload, ok, err := s.repo.GetCachedAnalysis(ctx, cacheKey, s.cacheTTL); err != nil {
		// A broken cache degrades to recomputation, never to a failed request.
		s.logger.Warn(ctx, "[ANALYSIS_CACHE_ERROR] Cache lookup failed, recomputing", logging.Fields{
			"county_fips": fips,
		})
		s.metrics.RecordDBError("cache_lookup")
	} else if ok {
		s.metrics.AnalysisCacheHits.Inc()
		s.logger.Debug(ctx, "[ANALYSIS_CACHE_HIT] Serving cached county analysis", logging.Fields{
			"county_fips": fips,
		})
		return payload, nil
	} else {
		s.metrics.AnalysisCacheMisses.Inc()
	}

	timer := time.Now()
	defer func() {
		s.metrics.AnalysisDuration.WithLabelValues("county").Observe(time.Since(timer).Seconds())
	}()

	site := analysis.Site{
		FIPS:      county.FIPS,
		Latitude:  county.Latitude,
		Longitude: county.Longitude,
	}

	severe, err := s.orchestrator.AnalyzeSevereWeather(ctx, site)
	if err != nil {
		s.metrics.RecordAnalysisError("severe_weather")
		return nil, fmt.Errorf("severe weather analysis failed: %w", err)
	}
	if severe.Source == models.SourceSyntheticFallback {
		s.metrics.RecordAnalysisFallback("severe_weather")
	}

	trend, err := s.orchestrator.AnalyzeTrend(ctx, site)
	if err != nil {
		s.metrics.RecordAnalysisError("trend")
		return nil, fmt.Errorf("trend analysis failed: %w", err)
	}
	if trend.Source == models.SourceSyntheticFallback {
		s.metrics.RecordAnalysisFallback("trend")
	}

	result := CountyAnalysisResult{
		County:        county,
		SevereWeather: severe,
		Trend:         trend,
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode county analysis: %w", err)
	}

	if err := s.repo.UpsertCachedAnalysis(ctx, cacheKey, payload); err != nil {
		s.logger.Warn(ctx, "[ANALYSIS_CACHE_ERROR] Cache store failed", logging.Fields{
			"county_fips": fips,
		})
		s.metrics.RecordDBError("cache_store")
	}

	s.logger.Info(ctx, "[ANALYSIS_COUNTY] County analysis completed", logging.Fields{
		"county_fips":           fips,
		"severe_weather_source": string(severe.Source),
		"trend_source":          string(trend.Source),
		"composite_risk":        severe.Indices.CompositeRisk,
		"trend_direction":       trend.Trend.Direction,
	})

	return payload, nil
}
