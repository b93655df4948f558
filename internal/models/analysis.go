package models

import "time"

// HeatMetrics summarizes extreme-heat behavior of a daily maximum
// temperature series. The extreme-heat threshold is the 95th percentile of
// the series itself, so a flat series never reports extreme days.
type HeatMetrics struct {
	ExtremeHeatDays int     `json:"extreme_heat_days"`
	HeatWaveCount   int     `json:"heat_wave_count"`
	CurrentStreak   int     `json:"current_streak"`
	MaxTemperature  float64 `json:"max_temperature_celsius"`
	Threshold       float64 `json:"threshold_celsius"`
}

// SevereWeatherIndices holds the severe-weather indices derived from one
// sounding, plus an optional heatwave contribution. Indices that could not be
// computed for this profile are nil pointers (K-Index, Total Totals) or
// carry an explicit invalid flag (CAPE); partial results are still emitted
// because partial severe-weather information remains actionable.
type SevereWeatherIndices struct {
	CAPE         float64 `json:"cape_jkg"`
	CAPEInvalid  bool    `json:"cape_invalid,omitempty"`
	CAPECategory string  `json:"cape_category"`

	KIndex         *float64 `json:"k_index,omitempty"`
	KIndexCategory string   `json:"k_index_category"`

	TotalTotals         *float64 `json:"total_totals,omitempty"`
	TotalTotalsCategory string   `json:"total_totals_category"`

	StormRelativeHelicity float64 `json:"storm_relative_helicity_m2s2"`
	HelicityCategory      string  `json:"helicity_category"`

	CompositeRisk        float64  `json:"composite_risk"`
	HeatwaveContribution *float64 `json:"heatwave_contribution,omitempty"`
}

// YearValue is a single point of an annual time series.
type YearValue struct {
	Year  int     `json:"year" db:"year"`
	Value float64 `json:"value" db:"value"`
}

// TrendDirection labels the outcome of a trend analysis. A slope sign alone
// never implies warming or cooling; the significance gate decides.
type TrendDirection string

const (
	TrendWarming TrendDirection = "warming"
	TrendCooling TrendDirection = "cooling"
	TrendNone    TrendDirection = "no-trend"
)

// TrendResult holds a statistically validated climate trend: the OLS fit,
// the Mann-Kendall significance test, and CUSUM change-point years.
type TrendResult struct {
	Series                  []YearValue    `json:"series"`
	SlopePerYear            float64        `json:"slope_per_year"`
	InterceptAtFirstYear    float64        `json:"intercept_at_first_year"`
	Direction               TrendDirection `json:"direction"`
	PValue                  float64        `json:"p_value"`
	Significant             bool           `json:"significant"`
	PercentChangeOverPeriod float64        `json:"percent_change_over_period"`
	ChangePoints            []int          `json:"change_points"`
}

// AnalysisSource tags the provenance of an analysis result. A result is
// wholly observed or wholly synthetic, never a mix.
type AnalysisSource string

const (
	SourceObserved          AnalysisSource = "observed"
	SourceSyntheticFallback AnalysisSource = "synthetic-fallback"
)

// SoundingAnalysis is the combined severe-weather analysis response: the
// indices, the heat metrics that contributed to them, and the provenance tag
// that is always present for caller transparency.
type SoundingAnalysis struct {
	Indices     SevereWeatherIndices `json:"indices"`
	Heat        *HeatMetrics         `json:"heat_metrics,omitempty"`
	Source      AnalysisSource       `json:"source"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// TrendAnalysis wraps a TrendResult with its provenance tag.
type TrendAnalysis struct {
	Trend       TrendResult    `json:"trend"`
	Source      AnalysisSource `json:"source"`
	GeneratedAt time.Time      `json:"generated_at"`
}
