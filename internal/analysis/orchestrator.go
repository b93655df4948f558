package analysis

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"agroclimate-platform/internal/models"
)

// Site identifies the location an analysis is requested for. FIPS keys the
// persisted county data; latitude/longitude drive upstream fetches and the
// synthetic generator.
type Site struct {
	FIPS      string
	Latitude  float64
	Longitude float64
}

// SoundingProvider is the upstream collaborator that delivers a real
// vertical profile. An error or a nil sounding signals unavailability, which
// is a normal input to the fallback path, not a failure of the analysis.
type SoundingProvider interface {
	FetchSounding(ctx context.Context, site Site) (*models.Sounding, error)
}

// TemperatureProvider delivers the recent daily-maximum temperature series
// for a site, chronological, with missing days already filtered out.
type TemperatureProvider interface {
	FetchDailyMax(ctx context.Context, site Site, days int) ([]float64, error)
}

// AnnualSeriesProvider delivers the multi-decade annual temperature series
// for trend analysis.
type AnnualSeriesProvider interface {
	FetchAnnualSeries(ctx context.Context, site Site) ([]models.YearValue, error)
}

// OrchestratorConfig bounds the orchestrator's upstream waits and sizes the
// fallback series.
type OrchestratorConfig struct {
	// UpstreamTimeout caps the total wait on upstream fetches. The
	// orchestrator always returns within this bound; a slow fetch resolves
	// to the fallback path instead of blocking the call.
	UpstreamTimeout time.Duration
	// HeatSeriesDays is the length of the daily-max series requested for
	// heat metrics.
	HeatSeriesDays int
	// SyntheticTrendStartYear/EndYear bound the fallback annual series.
	SyntheticTrendStartYear int
	SyntheticTrendEndYear   int
}

// DefaultOrchestratorConfig returns sensible operational defaults.
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		UpstreamTimeout:         5 * time.Second,
		HeatSeriesDays:          90,
		SyntheticTrendStartYear: 1970,
		SyntheticTrendEndYear:   time.Now().UTC().Year(),
	}
}

// Orchestrator combines the calculators with the real-data/synthetic-data
// fallback policy. Each invocation works on its own inputs and output;
// concurrent calls are independent and safe.
type Orchestrator struct {
	cfg       OrchestratorConfig
	soundings SoundingProvider
	temps     TemperatureProvider
	annual    AnnualSeriesProvider
	indices   *IndicesCalculator
	heat      *HeatwaveDetector
	trends    *TrendAnalyzer
	synth     *SyntheticGenerator
	now       func() time.Time
}

// NewOrchestrator wires the calculators and providers together. Any provider
// may be nil, in which case that input always takes the fallback path.
func NewOrchestrator(
	cfg OrchestratorConfig,
	soundings SoundingProvider,
	temps TemperatureProvider,
	annual AnnualSeriesProvider,
	indices *IndicesCalculator,
	heat *HeatwaveDetector,
	trends *TrendAnalyzer,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		soundings: soundings,
		temps:     temps,
		annual:    annual,
		indices:   indices,
		heat:      heat,
		trends:    trends,
		synth:     NewSyntheticGenerator(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// AnalyzeSevereWeather fetches the sounding and the heat series concurrently
// under a shared deadline, resolves each unavailable input to synthetic data,
// and computes the severe-weather indices. A result is never a mix of
// observed and synthetic inputs: when either fetch falls back, both inputs
// are regenerated synthetically and the whole call is tagged
// synthetic-fallback.
func (o *Orchestrator) AnalyzeSevereWeather(ctx context.Context, site Site) (*models.SoundingAnalysis, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, o.cfg.UpstreamTimeout)
	defer cancel()

	var (
		sounding *models.Sounding
		series   []float64
	)

	// Plain group, not WithContext: one failing fetch must not cancel the
	// other, and fetch failures are fallback inputs, not errors.
	var g errgroup.Group
	g.Go(func() error {
		if o.soundings == nil {
			return nil
		}
		if s, err := o.soundings.FetchSounding(fetchCtx, site); err == nil {
			sounding = s
		}
		return nil
	})
	g.Go(func() error {
		if o.temps == nil {
			return nil
		}
		if t, err := o.temps.FetchDailyMax(fetchCtx, site, o.cfg.HeatSeriesDays); err == nil {
			series = t
		}
		return nil
	})
	_ = g.Wait()

	source := models.SourceObserved
	if sounding == nil || len(series) == 0 {
		source = models.SourceSyntheticFallback
		sounding = o.synth.Sounding(site.Latitude, site.Longitude)
		series = o.synth.DailyMaxSeries(site.Latitude, site.Longitude, o.cfg.HeatSeriesDays)
	}

	heat := o.heat.DetectHeatEvents(series)
	indices := o.indices.ComputeIndices(sounding, &heat)

	return &models.SoundingAnalysis{
		Indices:     indices,
		Heat:        &heat,
		Source:      source,
		GeneratedAt: o.now(),
	}, nil
}

// AnalyzeSounding runs the calculators over a caller-supplied profile, for
// requests that carry their own observed sounding instead of asking the
// orchestrator to fetch one.
func (o *Orchestrator) AnalyzeSounding(sounding *models.Sounding, heat *models.HeatMetrics) *models.SoundingAnalysis {
	return &models.SoundingAnalysis{
		Indices:     o.indices.ComputeIndices(sounding, heat),
		Heat:        heat,
		Source:      models.SourceObserved,
		GeneratedAt: o.now(),
	}
}

// AnalyzeTrend fetches the annual series for a site and runs the trend
// analyzer, falling back to a synthetic series when the upstream collaborator
// has nothing usable. Typed errors from the analyzer itself (too few points
// in an observed series is possible when a county has sparse data) surface
// unchanged.
func (o *Orchestrator) AnalyzeTrend(ctx context.Context, site Site) (*models.TrendAnalysis, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, o.cfg.UpstreamTimeout)
	defer cancel()

	source := models.SourceObserved
	var series []models.YearValue
	if o.annual != nil {
		if s, err := o.annual.FetchAnnualSeries(fetchCtx, site); err == nil {
			series = s
		}
	}
	if len(series) < minTrendPoints {
		source = models.SourceSyntheticFallback
		series = o.synth.AnnualSeries(site.Latitude, o.cfg.SyntheticTrendStartYear, o.cfg.SyntheticTrendEndYear)
	}

	trend, err := o.trends.AnalyzeTrend(series)
	if err != nil {
		return nil, err
	}

	return &models.TrendAnalysis{
		Trend:       *trend,
		Source:      source,
		GeneratedAt: o.now(),
	}, nil
}
