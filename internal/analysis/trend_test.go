package analysis

import (
	"errors"
	"math"
	"testing"

	"agroclimate-platform/internal/models"
)

func TestAnalyzeTrendFlatSeries(t *testing.T) {
	analyzer := NewTrendAnalyzer(DefaultTrendConfig())

	result, err := analyzer.AnalyzeTrend([]models.YearValue{
		{Year: 1970, Value: 10},
		{Year: 1980, Value: 10},
		{Year: 1990, Value: 10},
		{Year: 2000, Value: 10},
	})
	if err != nil {
		t.Fatalf("AnalyzeTrend() error = %v", err)
	}

	if result.SlopePerYear != 0 {
		t.Errorf("SlopePerYear = %v, want 0", result.SlopePerYear)
	}
	if result.Direction != models.TrendNone {
		t.Errorf("Direction = %v, want %v", result.Direction, models.TrendNone)
	}
	if result.PValue != 1 {
		t.Errorf("PValue = %v, want 1", result.PValue)
	}
	if result.Significant {
		t.Error("flat series must not be significant")
	}
	if len(result.ChangePoints) != 0 {
		t.Errorf("ChangePoints = %v, want none", result.ChangePoints)
	}
}

func TestAnalyzeTrendLinearWarming(t *testing.T) {
	analyzer := NewTrendAnalyzer(DefaultTrendConfig())

	series := make([]models.YearValue, 0, 56)
	for year := 1970; year <= 2025; year++ {
		series = append(series, models.YearValue{
			Year:  year,
			Value: 0.05 * float64(year-1970),
		})
	}

	result, err := analyzer.AnalyzeTrend(series)
	if err != nil {
		t.Fatalf("AnalyzeTrend() error = %v", err)
	}

	if math.Abs(result.SlopePerYear-0.05) > 1e-6 {
		t.Errorf("SlopePerYear = %v, want 0.05 ± 1e-6", result.SlopePerYear)
	}
	if result.Direction != models.TrendWarming {
		t.Errorf("Direction = %v, want %v", result.Direction, models.TrendWarming)
	}
	if !result.Significant {
		t.Error("perfectly monotonic series must be significant")
	}
	if math.Abs(result.InterceptAtFirstYear) > 1e-6 {
		t.Errorf("InterceptAtFirstYear = %v, want 0", result.InterceptAtFirstYear)
	}
}

func TestAnalyzeTrendCooling(t *testing.T) {
	analyzer := NewTrendAnalyzer(DefaultTrendConfig())

	series := make([]models.YearValue, 0, 40)
	for year := 1980; year < 2020; year++ {
		series = append(series, models.YearValue{
			Year:  year,
			Value: 15.0 - 0.03*float64(year-1980),
		})
	}

	result, err := analyzer.AnalyzeTrend(series)
	if err != nil {
		t.Fatalf("AnalyzeTrend() error = %v", err)
	}

	if result.Direction != models.TrendCooling {
		t.Errorf("Direction = %v, want %v", result.Direction, models.TrendCooling)
	}
	if result.SlopePerYear >= 0 {
		t.Errorf("SlopePerYear = %v, want negative", result.SlopePerYear)
	}
	if result.PercentChangeOverPeriod >= 0 {
		t.Errorf("PercentChangeOverPeriod = %v, want negative", result.PercentChangeOverPeriod)
	}
}

func TestAnalyzeTrendErrors(t *testing.T) {
	analyzer := NewTrendAnalyzer(DefaultTrendConfig())

	tests := []struct {
		name    string
		series  []models.YearValue
		wantErr func(error) bool
	}{
		{
			name:   "too few points",
			series: []models.YearValue{{Year: 2000, Value: 1}, {Year: 2001, Value: 2}},
			wantErr: func(err error) bool {
				var insufficientErr *models.InsufficientDataError
				return errors.As(err, &insufficientErr)
			},
		},
		{
			name:   "empty series",
			series: nil,
			wantErr: func(err error) bool {
				var insufficientErr *models.InsufficientDataError
				return errors.As(err, &insufficientErr)
			},
		},
		{
			name: "duplicate years",
			series: []models.YearValue{
				{Year: 2000, Value: 1},
				{Year: 2000, Value: 2},
				{Year: 2001, Value: 3},
			},
			wantErr: func(err error) bool {
				var validationErr *models.ValidationError
				return errors.As(err, &validationErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analyzer.AnalyzeTrend(tt.series)
			if err == nil {
				t.Fatal("AnalyzeTrend() expected error, got nil")
			}
			if !tt.wantErr(err) {
				t.Errorf("AnalyzeTrend() error = %T(%v), wrong type", err, err)
			}
		})
	}
}

func TestAnalyzeTrendInsignificantSlopeIsNoTrend(t *testing.T) {
	analyzer := NewTrendAnalyzer(DefaultTrendConfig())

	// Slope is nonzero but the series is far too noisy and short for the
	// Mann-Kendall test to call it a trend.
	result, err := analyzer.AnalyzeTrend([]models.YearValue{
		{Year: 2000, Value: 12.0},
		{Year: 2001, Value: 11.2},
		{Year: 2002, Value: 12.6},
		{Year: 2003, Value: 11.4},
	})
	if err != nil {
		t.Fatalf("AnalyzeTrend() error = %v", err)
	}

	if result.Significant {
		t.Fatalf("noisy 4-point series reported significant (p=%v)", result.PValue)
	}
	if result.Direction != models.TrendNone {
		t.Errorf("Direction = %v, want %v despite nonzero slope %v",
			result.Direction, models.TrendNone, result.SlopePerYear)
	}
}

func TestAnalyzeTrendSortsUnorderedInput(t *testing.T) {
	analyzer := NewTrendAnalyzer(DefaultTrendConfig())

	result, err := analyzer.AnalyzeTrend([]models.YearValue{
		{Year: 1990, Value: 11},
		{Year: 1970, Value: 10},
		{Year: 2000, Value: 11.5},
		{Year: 1980, Value: 10.5},
	})
	if err != nil {
		t.Fatalf("AnalyzeTrend() error = %v", err)
	}

	for i := 1; i < len(result.Series); i++ {
		if result.Series[i].Year <= result.Series[i-1].Year {
			t.Fatalf("result series not ascending by year: %+v", result.Series)
		}
	}
}

func TestAnalyzeTrendChangePointReportedOnce(t *testing.T) {
	// Mean shift at 2000; the cumulative deviation stays past the threshold
	// for many samples but the crossing must be flagged exactly once.
	cfg := DefaultTrendConfig()
	cfg.ChangePointSigma = 1.0
	analyzer := NewTrendAnalyzer(cfg)

	series := make([]models.YearValue, 0, 60)
	for year := 1970; year < 2000; year++ {
		series = append(series, models.YearValue{Year: year, Value: 10})
	}
	for year := 2000; year < 2030; year++ {
		series = append(series, models.YearValue{Year: year, Value: 14})
	}

	result, err := analyzer.AnalyzeTrend(series)
	if err != nil {
		t.Fatalf("AnalyzeTrend() error = %v", err)
	}

	if len(result.ChangePoints) != 1 {
		t.Fatalf("ChangePoints = %v, want exactly one crossing year", result.ChangePoints)
	}
	if result.ChangePoints[0] >= 2000 {
		t.Errorf("change point %d should precede the shift completing at 2000", result.ChangePoints[0])
	}
}

func TestAnalyzeTrendIdempotent(t *testing.T) {
	analyzer := NewTrendAnalyzer(DefaultTrendConfig())

	series := []models.YearValue{
		{Year: 1970, Value: 10.1},
		{Year: 1980, Value: 10.6},
		{Year: 1990, Value: 10.3},
		{Year: 2000, Value: 11.2},
		{Year: 2010, Value: 11.0},
	}

	first, err := analyzer.AnalyzeTrend(series)
	if err != nil {
		t.Fatalf("AnalyzeTrend() error = %v", err)
	}
	second, err := analyzer.AnalyzeTrend(series)
	if err != nil {
		t.Fatalf("AnalyzeTrend() error = %v", err)
	}

	if first.SlopePerYear != second.SlopePerYear ||
		first.PValue != second.PValue ||
		first.PercentChangeOverPeriod != second.PercentChangeOverPeriod {
		t.Errorf("identical input produced different results: %+v vs %+v", first, second)
	}
}
