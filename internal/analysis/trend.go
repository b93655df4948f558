package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"agroclimate-platform/internal/models"
)

// minTrendPoints is the smallest series the analyzer accepts.
const minTrendPoints = 3

// TrendConfig carries the statistical policy of the analyzer.
type TrendConfig struct {
	// SignificanceLevel is the two-sided Mann-Kendall alpha below which a
	// trend counts as significant. 0.05 is policy, not law.
	SignificanceLevel float64
	// ChangePointSigma scales the series' standard deviation into the CUSUM
	// exceedance threshold. The change-point scan is a screening heuristic,
	// not a formal test.
	ChangePointSigma float64
}

// DefaultTrendConfig returns the calibration defaults.
func DefaultTrendConfig() TrendConfig {
	return TrendConfig{
		SignificanceLevel: 0.05,
		ChangePointSigma:  3.0,
	}
}

// TrendAnalyzer converts a multi-decade annual temperature series into a
// validated climate trend. Pure function over its input.
type TrendAnalyzer struct {
	cfg TrendConfig
}

// NewTrendAnalyzer creates an analyzer with the given policy.
func NewTrendAnalyzer(cfg TrendConfig) *TrendAnalyzer {
	return &TrendAnalyzer{cfg: cfg}
}

// AnalyzeTrend computes the OLS linear trend, the Mann-Kendall monotonic
// trend test and CUSUM change points for an ordered (year, value) series.
// Fewer than 3 points is an InsufficientDataError; duplicate years are a
/// ValidationError. The direction label is gated on significance: an
// insignificant slope is "no-trend" regardless of its sign.
func (a *TrendAnalyzer) AnalyzeTrend(series []models.YearValue) (*models.TrendResult, error) {
	if len(series) < minTrendPoints {
		return nil, &models.InsufficientDataError{
			Required: minTrendPoints,
			Actual:   len(series),
			Subject:  "trend analysis",
		}
	}

	sorted := append([]models.YearValue(nil), series...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Year == sorted[i-1].Year {
			return nil, &models.ValidationError{
				Field:   "series",
				Value:   fmt.Sprintf("%d", sorted[i].Year),
				Message: fmt.Sprintf("duplicate year %d in trend series", sorted[i].Year),
			}
		}
	}

	years := make([]float64, len(sorted))
	values := make([]float64, len(sorted))
	for i, p := range sorted {
		years[i] = float64(p.Year)
		values[i] = p.Value
	}

	intercept, slope := stat.LinearRegression(years, values, nil, false)

	pValue := a.mannKendall(values)
	significant := pValue < a.cfg.SignificanceLevel

	direction := models.TrendNone
	if significant && slope > 0 {
		direction = models.TrendWarming
	} else if significant && slope < 0 {
		direction = models.TrendCooling
	}

	mean := stat.Mean(values, nil)
	percentChange := 0.0
	if mean != 0 {
		percentChange = slope * (years[len(years)-1] - years[0]) / mean * 100
	}

	return &models.TrendResult{
		Series:                  sorted,
		SlopePerYear:            slope,
		InterceptAtFirstYear:    intercept + slope*years[0],
		Direction:               direction,
		PValue:                  pValue,
		Significant:             significant,
		PercentChangeOverPeriod: percentChange,
		ChangePoints:            a.changePoints(sorted, values),
	}, nil
}

// mannKendall runs the non-parametric Mann-Kendall test and returns the
// two-sided p-value. The variance of the S statistic uses the standard
// correction for tied values.
func (a *TrendAnalyzer) mannKendall(values []float64) float64 {
	n := len(values)

	s := 0
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			switch {
			case values[j] > values[i]:
				s++
			case values[j] < values[i]:
				s--
			}
		}
	}

	// Tie correction: sum t(t-1)(2t+5) over groups of tied values.
	ties := make(map[float64]int, n)
	for _, v := range values {
		ties[v]++
	}
	tieTerm := 0.0
	for _, t := range ties {
		if t > 1 {
			tf := float64(t)
			tieTerm += tf * (tf - 1) * (2*tf + 5)
		}
	}

	nf := float64(n)
	variance := (nf*(nf-1)*(2*nf+5) - tieTerm) / 18.0
	if variance <= 0 {
		// Fully tied series: no evidence of a monotonic trend.
		return 1.0
	}

	var z float64
	switch {
	case s > 0:
		z = (float64(s) - 1) / math.Sqrt(variance)
	case s < 0:
		z = (float64(s) + 1) / math.Sqrt(variance)
	default:
		z = 0
	}

	return 2 * (1 - distuv.UnitNormal.CDF(math.Abs(z)))
}

// changePoints scans the cumulative deviation from the series mean and flags
// the years where the cumulative sum first exceeds a threshold derived from
// the standard deviation. Each crossing is reported once, at the year the
// exceedance begins, not once per exceeding sample.
func (a *TrendAnalyzer) changePoints(series []models.YearValue, values []float64) []int {
	mean, stddev := stat.MeanStdDev(values, nil)
	if stddev == 0 || math.IsNaN(stddev) {
		return nil
	}
	threshold := a.cfg.ChangePointSigma * stddev

	points := make([]int, 0)
	cusum := 0.0
	exceeding := false
	for i, v := range values {
		cusum += v - mean
		if math.Abs(cusum) > threshold {
			if !exceeding {
				points = append(points, series[i].Year)
				exceeding = true
			}
		} else {
			exceeding = false
		}
	}

	return points
}
