package analysis

import (
	"math"

	"agroclimate-platform/internal/models"
)

// SyntheticGenerator produces deterministic stand-in data for the fallback
// path when an upstream collaborator has nothing to offer. Identical inputs
// always produce identical outputs: the generator is a pure function of the
// requested location and span, so orchestrated results stay cacheable.
type SyntheticGenerator struct{}

// NewSyntheticGenerator creates a generator.
func NewSyntheticGenerator() *SyntheticGenerator {
	return &SyntheticGenerator{}
}

// Sounding generates a plausible clear-sky vertical profile for the given
// location: a standard-atmosphere temperature curve over a latitude-scaled
// surface temperature, a drying dewpoint spread, and winds veering and
// strengthening with height.
func (g *SyntheticGenerator) Sounding(lat, lon float64) *models.Sounding {
	// 1000 hPa down to 100 hPa in 50 hPa steps.
	const levels = 19

	surfaceTemp := 32.0 - 0.45*math.Abs(lat)
	// Small deterministic longitude perturbation so nearby sites differ.
	surfaceTemp += 1.5 * math.Sin(lon*math.Pi/180.0)

	pressure := make([]float64, levels)
	temperature := make([]float64, levels)
	dewpoint := make([]float64, levels)
	height := make([]float64, levels)
	windSpeed := make([]float64, levels)
	windDirection := make([]float64, levels)

	for i := 0; i < levels; i++ {
		p := 1000.0 - 50.0*float64(i)
		pressure[i] = p

		// Hypsometric-style height for a standard atmosphere.
		z := 44330.0 * (1.0 - math.Pow(p/1013.25, 0.1903))
		height[i] = z

		temperature[i] = surfaceTemp - 0.0065*z
		dewpoint[i] = temperature[i] - (2.0 + z/1000.0)

		windSpeed[i] = 3.0 + 0.004*z
		windDirection[i] = math.Mod(180.0+z/150.0, 360.0)
	}

	s, err := models.NewSounding(pressure, temperature, dewpoint, height, windSpeed, windDirection)
	if err != nil {
		// The generated profile is monotonic by construction.
		panic("synthetic sounding failed validation: " + err.Error())
	}
	return s
}

// DailyMaxSeries generates a seasonal daily-maximum temperature series of the
// given length ending today, with a deterministic day-to-day wobble.
func (g *SyntheticGenerator) DailyMaxSeries(lat, lon float64, days int) []float64 {
	if days <= 0 {
		return nil
	}

	base := 28.0 - 0.35*math.Abs(lat)
	phase := lon * math.Pi / 180.0

	series := make([]float64, days)
	for i := 0; i < days; i++ {
		seasonal := 8.0 * math.Sin(2*math.Pi*float64(i)/365.25)
		wobble := 2.5*math.Sin(float64(i)*0.7+phase) + 1.2*math.Sin(float64(i)*2.3)
		series[i] = base + seasonal + wobble
	}
	return series
}

// AnnualSeries generates an annual mean temperature series with a mild
// built-in warming signal, suitable as a trend-analysis fallback.
func (g *SyntheticGenerator) AnnualSeries(lat float64, startYear, endYear int) []models.YearValue {
	if endYear < startYear {
		return nil
	}

	base := 22.0 - 0.3*math.Abs(lat)
	series := make([]models.YearValue, 0, endYear-startYear+1)
	for year := startYear; year <= endYear; year++ {
		offset := float64(year - startYear)
		value := base + 0.02*offset + 0.4*math.Sin(offset*1.3)
		series = append(series, models.YearValue{Year: year, Value: value})
	}
	return series
}
