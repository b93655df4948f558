package analysis

import (
	"math"
	"sort"

	"agroclimate-platform/internal/models"
)

// HeatwaveConfig carries the heuristic constants of the detector. The
// percentile-based threshold is a screening heuristic, not a standards-based
// heatwave definition; keep it overridable for calibration.
type HeatwaveConfig struct {
	// PercentileRank of the series used as the extreme-heat threshold.
	PercentileRank float64
	// MinEventRun is the consecutive-day run length that counts as one
	// heatwave event.
	MinEventRun int
}

// DefaultHeatwaveConfig returns the calibration defaults.
func DefaultHeatwaveConfig() HeatwaveConfig {
	return HeatwaveConfig{
		PercentileRank: 0.95,
		MinEventRun:    3,
	}
}

// HeatwaveDetector derives heat metrics from a chronological daily-maximum
// temperature series. Pure function: no state, no side effects.
type HeatwaveDetector struct {
	cfg HeatwaveConfig
}

// NewHeatwaveDetector creates a detector with the given policy.
func NewHeatwaveDetector(cfg HeatwaveConfig) *HeatwaveDetector {
	return &HeatwaveDetector{cfg: cfg}
}

// DetectHeatEvents computes the extreme-heat-day count, heatwave-event count
// and the currently open consecutive-hot-day streak. The threshold is the
// series' own 95th percentile; days exactly at the threshold do not count as
// extreme. Empty input is a legitimate observation and yields zero metrics.
func (d *HeatwaveDetector) DetectHeatEvents(dailyMaxTemps []float64) models.HeatMetrics {
	if len(dailyMaxTemps) == 0 {
		return models.HeatMetrics{}
	}

	threshold := percentile(dailyMaxTemps, d.cfg.PercentileRank)

	metrics := models.HeatMetrics{
		MaxTemperature: dailyMaxTemps[0],
		Threshold:      threshold,
	}

	run := 0
	for _, temp := range dailyMaxTemps {
		if temp > metrics.MaxTemperature {
			metrics.MaxTemperature = temp
		}

		if temp > threshold {
			metrics.ExtremeHeatDays++
			run++
			// An event is counted once, at the moment a run first reaches
			// the qualifying length.
			if run == d.cfg.MinEventRun {
				metrics.HeatWaveCount++
			}
		} else {
			run = 0
		}
	}
	metrics.CurrentStreak = run

	return metrics
}

// percentile computes the given percentile rank over a sorted copy of the
// series using linear interpolation between closest ranks.
func percentile(values []float64, rank float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}

	pos := rank * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
