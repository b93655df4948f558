package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"agroclimate-platform/internal/models"
)

type stubSoundingProvider struct {
	sounding *models.Sounding
	err      error
	delay    time.Duration
}

func (p *stubSoundingProvider) FetchSounding(ctx context.Context, site Site) (*models.Sounding, error) {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return p.sounding, p.err
}

type stubTemperatureProvider struct {
	series []float64
	err    error
}

func (p *stubTemperatureProvider) FetchDailyMax(ctx context.Context, site Site, days int) ([]float64, error) {
	return p.series, p.err
}

type stubAnnualProvider struct {
	series []models.YearValue
	err    error
}

func (p *stubAnnualProvider) FetchAnnualSeries(ctx context.Context, site Site) ([]models.YearValue, error) {
	return p.series, p.err
}

func newTestOrchestrator(cfg OrchestratorConfig, soundings SoundingProvider, temps TemperatureProvider, annual AnnualSeriesProvider) *Orchestrator {
	return NewOrchestrator(
		cfg,
		soundings,
		temps,
		annual,
		NewIndicesCalculator(DefaultIndicesConfig()),
		NewHeatwaveDetector(DefaultHeatwaveConfig()),
		NewTrendAnalyzer(DefaultTrendConfig()),
	)
}

var testSite = Site{FIPS: "19153", Latitude: 41.6, Longitude: -93.6}

func TestAnalyzeSevereWeatherObserved(t *testing.T) {
	sounding := NewSyntheticGenerator().Sounding(35, -90)
	series := []float64{28, 29, 31, 30, 33, 35, 36, 34, 27, 26}

	o := newTestOrchestrator(
		DefaultOrchestratorConfig(),
		&stubSoundingProvider{sounding: sounding},
		&stubTemperatureProvider{series: series},
		nil,
	)

	result, err := o.AnalyzeSevereWeather(context.Background(), testSite)
	if err != nil {
		t.Fatalf("AnalyzeSevereWeather() error = %v", err)
	}

	if result.Source != models.SourceObserved {
		t.Errorf("Source = %q, want %q", result.Source, models.SourceObserved)
	}
	if result.GeneratedAt.IsZero() {
		t.Error("GeneratedAt must be set")
	}
	if result.Heat == nil {
		t.Error("heat metrics missing from combined analysis")
	}
}

func TestAnalyzeSevereWeatherFallbackLabeling(t *testing.T) {
	tests := []struct {
		name      string
		soundings SoundingProvider
		temps     TemperatureProvider
		want      models.AnalysisSource
	}{
		{
			name:      "sounding fetch fails",
			soundings: &stubSoundingProvider{err: errors.New("upstream down")},
			temps:     &stubTemperatureProvider{series: []float64{30, 31, 32}},
			want:      models.SourceSyntheticFallback,
		},
		{
			name:      "temperature fetch empty",
			soundings: &stubSoundingProvider{sounding: NewSyntheticGenerator().Sounding(40, -100)},
			temps:     &stubTemperatureProvider{series: nil},
			want:      models.SourceSyntheticFallback,
		},
		{
			name:      "no providers wired",
			soundings: nil,
			temps:     nil,
			want:      models.SourceSyntheticFallback,
		},
		{
			name:      "both available",
			soundings: &stubSoundingProvider{sounding: NewSyntheticGenerator().Sounding(40, -100)},
			temps:     &stubTemperatureProvider{series: []float64{30, 31, 32}},
			want:      models.SourceObserved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOrchestrator(DefaultOrchestratorConfig(), tt.soundings, tt.temps, nil)

			result, err := o.AnalyzeSevereWeather(context.Background(), testSite)
			if err != nil {
				t.Fatalf("AnalyzeSevereWeather() error = %v", err)
			}
			if result.Source != tt.want {
				t.Errorf("Source = %q, want %q", result.Source, tt.want)
			}
		})
	}
}

func TestAnalyzeSevereWeatherBoundedBySlowUpstream(t *testing.T) {
	cfg := DefaultOrchestratorConfig()
	cfg.UpstreamTimeout = 50 * time.Millisecond

	o := newTestOrchestrator(
		cfg,
		&stubSoundingProvider{
			sounding: NewSyntheticGenerator().Sounding(40, -100),
			delay:    5 * time.Second,
		},
		&stubTemperatureProvider{series: []float64{30, 31, 32}},
		nil,
	)

	start := time.Now()
	result, err := o.AnalyzeSevereWeather(context.Background(), testSite)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("AnalyzeSevereWeather() error = %v", err)
	}
	if elapsed > 2*time.Second {
		t.Fatalf("orchestrator blocked for %v, must return within the configured bound", elapsed)
	}
	if result.Source != models.SourceSyntheticFallback {
		t.Errorf("Source = %q, want %q after upstream timeout", result.Source, models.SourceSyntheticFallback)
	}
}

func TestAnalyzeSevereWeatherDeterministicFallback(t *testing.T) {
	o := newTestOrchestrator(DefaultOrchestratorConfig(), nil, nil, nil)

	first, err := o.AnalyzeSevereWeather(context.Background(), testSite)
	if err != nil {
		t.Fatalf("AnalyzeSevereWeather() error = %v", err)
	}
	second, err := o.AnalyzeSevereWeather(context.Background(), testSite)
	if err != nil {
		t.Fatalf("AnalyzeSevereWeather() error = %v", err)
	}

	if first.Indices.CAPE != second.Indices.CAPE ||
		first.Indices.CompositeRisk != second.Indices.CompositeRisk ||
		*first.Heat != *second.Heat {
		t.Error("synthetic fallback must be deterministic for identical sites")
	}
}

func TestAnalyzeSoundingDirect(t *testing.T) {
	o := newTestOrchestrator(DefaultOrchestratorConfig(), nil, nil, nil)

	sounding := NewSyntheticGenerator().Sounding(30, -85)
	result := o.AnalyzeSounding(sounding, nil)

	if result.Source != models.SourceObserved {
		t.Errorf("Source = %q, want %q for caller-supplied profile", result.Source, models.SourceObserved)
	}
	if result.Indices.CAPE < 0 {
		t.Errorf("CAPE = %v, must never be negative", result.Indices.CAPE)
	}
}

func TestAnalyzeTrendProvenance(t *testing.T) {
	observed := []models.YearValue{
		{Year: 1990, Value: 10.0},
		{Year: 2000, Value: 10.4},
		{Year: 2010, Value: 10.9},
		{Year: 2020, Value: 11.3},
	}

	tests := []struct {
		name   string
		annual AnnualSeriesProvider
		want   models.AnalysisSource
	}{
		{"observed series", &stubAnnualProvider{series: observed}, models.SourceObserved},
		{"fetch error", &stubAnnualProvider{err: errors.New("db down")}, models.SourceSyntheticFallback},
		{"series too short", &stubAnnualProvider{series: observed[:2]}, models.SourceSyntheticFallback},
		{"no provider", nil, models.SourceSyntheticFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOrchestrator(DefaultOrchestratorConfig(), nil, nil, tt.annual)

			result, err := o.AnalyzeTrend(context.Background(), testSite)
			if err != nil {
				t.Fatalf("AnalyzeTrend() error = %v", err)
			}
			if result.Source != tt.want {
				t.Errorf("Source = %q, want %q", result.Source, tt.want)
			}
		})
	}
}

func TestSyntheticGeneratorDeterministic(t *testing.T) {
	g := NewSyntheticGenerator()

	a := g.Sounding(41.6, -93.6)
	b := g.Sounding(41.6, -93.6)
	for i := range a.Temperature {
		if a.Temperature[i] != b.Temperature[i] {
			t.Fatal("synthetic sounding not deterministic")
		}
	}

	s1 := g.DailyMaxSeries(41.6, -93.6, 90)
	s2 := g.DailyMaxSeries(41.6, -93.6, 90)
	for i := range s1 {
		if s1[i] != s2[i] {
			t.Fatal("synthetic daily series not deterministic")
		}
	}

	y1 := g.AnnualSeries(41.6, 1970, 2020)
	if len(y1) != 51 {
		t.Fatalf("AnnualSeries length = %d, want 51", len(y1))
	}
}
