package analysis

import (
	"math"

	"agroclimate-platform/internal/models"
)

// Physical constants used by the parcel computation.
const (
	gravity        = 9.80665 // m/s²
	kelvinOffset   = 273.15
	dryAdiabatRate = 0.0098 // K/m, dry adiabatic lapse rate
	moistLapseRate = 0.0060 // K/m, representative pseudo-adiabatic lapse rate
	lclMetersPerK  = 125.0  // m of lift per K of dewpoint depression (Espy)
)

// Pressure levels (hPa) at which the empirical indices are evaluated.
const (
	level850 = 850.0
	level700 = 700.0
	level500 = 500.0
)

// Layer depths (m AGL) for the helicity integration and storm-motion estimate.
const (
	helicityDepth    = 3000.0
	stormMotionDepth = 6000.0
)

// IndicesConfig carries the tunable policy knobs of the calculator. The
// composite-risk weights are calibration policy, not physics; override them
// rather than editing thresholds in code.
type IndicesConfig struct {
	// MaxPressureGapHPa is the widest pressure spacing between consecutive
	// valid environment samples that CAPE will interpolate across. A wider
	// gap invalidates CAPE for the run instead of fabricating buoyancy.
	MaxPressureGapHPa float64

	// Composite-risk weights and normalization caps.
	CAPEWeight            float64
	HelicityWeight        float64
	HeatWeight            float64
	CAPENormalization     float64 // J/kg mapped to a full score
	HelicityNormalization float64 // m²/s² mapped to a full score
}

// DefaultIndicesConfig returns the calibration defaults.
func DefaultIndicesConfig() IndicesConfig {
	return IndicesConfig{
		MaxPressureGapHPa:     100.0,
		CAPEWeight:            0.5,
		HelicityWeight:        0.3,
		HeatWeight:            0.2,
		CAPENormalization:     4000.0,
		HelicityNormalization: 400.0,
	}
}

// IndicesCalculator computes severe-weather indices from a sounding. It is a
// pure function over its immutable input: identical soundings always produce
// identical indices, which supports external caching.
type IndicesCalculator struct {
	cfg IndicesConfig
}

// NewIndicesCalculator creates a calculator with the given policy.
func NewIndicesCalculator(cfg IndicesConfig) *IndicesCalculator {
	return &IndicesCalculator{cfg: cfg}
}

// ComputeIndices derives CAPE, K-Index, Total Totals, storm-relative helicity
// and the composite risk rating from one sounding, optionally folding in heat
// metrics. Indices the profile cannot support are reported as unavailable
// (nil or invalid-flagged) rather than failing the whole computation.
func (c *IndicesCalculator) ComputeIndices(s *models.Sounding, heat *models.HeatMetrics) models.SevereWeatherIndices {
	var out models.SevereWeatherIndices

	out.CAPE, out.CAPEInvalid = c.computeCAPE(s)
	out.CAPECategory = categorize(capeCategories, out.CAPE)

	if ki, ok := c.computeKIndex(s); ok {
		out.KIndex = &ki
		out.KIndexCategory = categorize(kIndexCategories, ki)
	} else {
		out.KIndexCategory = categoryUnavailable
	}

	if tt, ok := c.computeTotalTotals(s); ok {
		out.TotalTotals = &tt
		out.TotalTotalsCategory = categorize(totalTotalsCategories, tt)
	} else {
		out.TotalTotalsCategory = categoryUnavailable
	}

	out.StormRelativeHelicity = c.computeHelicity(s)
	out.HelicityCategory = categorize(helicityCategories, out.StormRelativeHelicity)

	out.CompositeRisk, out.HeatwaveContribution = c.compositeRisk(out, heat)

	return out
}

// computeCAPE lifts a surface parcel dry-adiabatically to its lifted
// condensation level and moist-adiabatically above it, then integrates
// g·(Tp−Te)/Te over height for the positively buoyant layers. Levels whose
// environment temperature is NaN are skipped; a pressure gap between
// surviving samples wider than the configured maximum invalidates the run.
func (c *IndicesCalculator) computeCAPE(s *models.Sounding) (cape float64, invalid bool) {
	type sample struct {
		pressure float64
		envTemp  float64
		height   float64
	}

	valid := make([]sample, 0, s.Levels())
	for i := 0; i < s.Levels(); i++ {
		if math.IsNaN(s.Temperature[i]) {
			continue
		}
		valid = append(valid, sample{s.Pressure[i], s.Temperature[i], s.Height[i]})
	}
	if len(valid) < 2 {
		return 0, true
	}

	for i := 1; i < len(valid); i++ {
		if valid[i-1].pressure-valid[i].pressure > c.cfg.MaxPressureGapHPa {
			return 0, true
		}
	}

	surface := valid[0]
	surfaceDew := s.Dewpoint[0]
	if math.IsNaN(surfaceDew) {
		return 0, true
	}

	lclHeight := surface.height + lclMetersPerK*(surface.envTemp-surfaceDew)
	lclTemp := surface.envTemp - dryAdiabatRate*(lclHeight-surface.height)

	parcelTemp := func(z float64) float64 {
		if z <= lclHeight {
			return surface.envTemp - dryAdiabatRate*(z-surface.height)
		}
		return lclTemp - moistLapseRate*(z-lclHeight)
	}

	// Trapezoidal integration over the positive-buoyancy portion only.
	prevBuoy := 0.0
	for i := 1; i < len(valid); i++ {
		envK := valid[i].envTemp + kelvinOffset
		buoy := gravity * (parcelTemp(valid[i].height) - valid[i].envTemp) / envK
		if buoy < 0 {
			buoy = 0
		}

		dz := valid[i].height - valid[i-1].height
		cape += 0.5 * (prevBuoy + buoy) * dz
		prevBuoy = buoy
	}

	return cape, false
}

// computeKIndex evaluates (T850 − T500) + Td850 − (T700 − Td700) at the
// nearest available pressures, interpolating linearly in pressure. It fails
// soft when the profile does not span 850-500 hPa.
func (c *IndicesCalculator) computeKIndex(s *models.Sounding) (float64, bool) {
	t850, ok1 := s.TemperatureAt(level850)
	t700, ok2 := s.TemperatureAt(level700)
	t500, ok3 := s.TemperatureAt(level500)
	td850, ok4 := s.DewpointAt(level850)
	td700, ok5 := s.DewpointAt(level700)
	if !(ok1 && ok2 && ok3 && ok4 && ok5) {
		return 0, false
	}
	return (t850 - t500) + td850 - (t700 - td700), true
}

// computeTotalTotals evaluates (T850 + Td850) − 2·T500 with the same
// interpolation and soft-fail rule as the K-Index.
func (c *IndicesCalculator) computeTotalTotals(s *models.Sounding) (float64, bool) {
	t850, ok1 := s.TemperatureAt(level850)
	t500, ok2 := s.TemperatureAt(level500)
	td850, ok3 := s.DewpointAt(level850)
	if !(ok1 && ok2 && ok3) {
		return 0, false
	}
	return (t850 + td850) - 2*t500, true
}

// computeHelicity integrates storm-relative helicity over the 0-3 km layer,
// estimating storm motion as the 0-6 km mean wind when no observed motion is
// available (the standard simplification).
func (c *IndicesCalculator) computeHelicity(s *models.Sounding) float64 {
	var sumU, sumV float64
	count := 0
	for i := 0; i < s.Levels(); i++ {
		if s.HeightAGL(i) > stormMotionDepth {
			break
		}
		u, v := s.WindComponents(i)
		sumU += u
		sumV += v
		count++
	}
	if count < 2 {
		return 0
	}
	stormU := sumU / float64(count)
	stormV := sumV / float64(count)

	var srh float64
	for i := 0; i < count-1; i++ {
		if s.HeightAGL(i+1) > helicityDepth {
			break
		}
		u0, v0 := s.WindComponents(i)
		u1, v1 := s.WindComponents(i + 1)
		srh += (u0-stormU)*(v1-stormV) - (u1-stormU)*(v0-stormV)
	}

	return srh
}

// compositeRisk maps normalized CAPE, helicity and the optional heatwave
// contribution onto a 0-100 rating via the configured weights. When heat
// metrics are absent, the remaining weights are renormalized so the scale
// stays comparable across calls.
func (c *IndicesCalculator) compositeRisk(idx models.SevereWeatherIndices, heat *models.HeatMetrics) (float64, *float64) {
	capeN := clamp01(idx.CAPE / c.cfg.CAPENormalization)
	srhN := clamp01(math.Max(idx.StormRelativeHelicity, 0) / c.cfg.HelicityNormalization)

	weightSum := c.cfg.CAPEWeight + c.cfg.HelicityWeight
	score := c.cfg.CAPEWeight*capeN + c.cfg.HelicityWeight*srhN

	var contribution *float64
	if heat != nil {
		heatN := clamp01(float64(heat.HeatWaveCount)/5.0 + float64(heat.CurrentStreak)/10.0)
		score += c.cfg.HeatWeight * heatN
		weightSum += c.cfg.HeatWeight

		v := 100 * heatN
		contribution = &v
	}

	if weightSum == 0 {
		return 0, contribution
	}
	return clamp01(score/weightSum) * 100, contribution
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
