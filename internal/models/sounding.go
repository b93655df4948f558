package models

import (
	"fmt"
	"math"
	"sort"
)

// Sounding represents a vertical atmospheric profile as six parallel series
// indexed by level. Pressure (hPa) is the vertical coordinate and is strictly
// decreasing with height. Wind speed is stored in m/s; collaborators supplying
// knots must convert before construction.
//
// A Sounding is immutable after construction: NewSounding copies its inputs
// and no method mutates the level data.
type Sounding struct {
	Pressure      []float64 `json:"pressure"`       // hPa, strictly decreasing
	Temperature   []float64 `json:"temperature"`    // °C
	Dewpoint      []float64 `json:"dewpoint"`       // °C, clamped to <= temperature
	Height        []float64 `json:"height"`         // m, strictly increasing
	WindSpeed     []float64 `json:"wind_speed"`     // m/s
	WindDirection []float64 `json:"wind_direction"` // degrees, 0-360
}

// NewSounding validates and constructs a Sounding from six raw parallel
// sequences. Inputs are copied, then reordered by descending pressure before
// the monotonicity checks, so callers may supply levels in any order as long
// as the index pairing across the six arrays is preserved. Supersaturated
// levels (dewpoint above temperature) are clamped, never rejected.
func NewSounding(pressure, temperature, dewpoint, height, windSpeed, windDirection []float64) (*Sounding, error) {
	n := len(pressure)
	if n < 2 {
		return nil, &ValidationError{
			Field:   "pressure",
			Value:   fmt.Sprintf("%d levels", n),
			Message: "sounding requires at least 2 levels",
		}
	}

	for name, seq := range map[string][]float64{
		"temperature":    temperature,
		"dewpoint":       dewpoint,
		"height":         height,
		"wind_speed":     windSpeed,
		"wind_direction": windDirection,
	} {
		if len(seq) != n {
			return nil, &ValidationError{
				Field:   name,
				Value:   fmt.Sprintf("%d values", len(seq)),
				Message: fmt.Sprintf("array length mismatch: %s has %d values, pressure has %d", name, len(seq), n),
			}
		}
	}

	s := &Sounding{
		Pressure:      append([]float64(nil), pressure...),
		Temperature:   append([]float64(nil), temperature...),
		Dewpoint:      append([]float64(nil), dewpoint...),
		Height:        append([]float64(nil), height...),
		WindSpeed:     append([]float64(nil), windSpeed...),
		WindDirection: append([]float64(nil), windDirection...),
	}

	// Reorder all six arrays by descending pressure, keeping level pairing.
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return s.Pressure[idx[a]] > s.Pressure[idx[b]]
	})
	s.reorder(idx)

	for i := 1; i < n; i++ {
		if s.Pressure[i] >= s.Pressure[i-1] {
			return nil, &ValidationError{
				Field:   "pressure",
				Value:   fmt.Sprintf("%.1f hPa at level %d", s.Pressure[i], i),
				Message: "pressure must be strictly decreasing with height",
			}
		}
		if s.Height[i] <= s.Height[i-1] {
			return nil, &ValidationError{
				Field:   "height",
				Value:   fmt.Sprintf("%.1f m at level %d", s.Height[i], i),
				Message: "height must be strictly increasing",
			}
		}
	}

	// Clamp supersaturation instead of rejecting it.
	for i := range s.Dewpoint {
		if s.Dewpoint[i] > s.Temperature[i] {
			s.Dewpoint[i] = s.Temperature[i]
		}
	}

	return s, nil
}

func (s *Sounding) reorder(idx []int) {
	for _, seq := range [][]float64{s.Pressure, s.Temperature, s.Dewpoint, s.Height, s.WindSpeed, s.WindDirection} {
		tmp := make([]float64, len(seq))
		for i, j := range idx {
			tmp[i] = seq[j]
		}
		copy(seq, tmp)
	}
}

// Levels returns the number of vertical levels.
func (s *Sounding) Levels() int {
	return len(s.Pressure)
}

// SpansPressure reports whether the given pressure lies within the vertical
// extent of the profile.
func (s *Sounding) SpansPressure(hPa float64) bool {
	return hPa <= s.Pressure[0] && hPa >= s.Pressure[len(s.Pressure)-1]
}

// TemperatureAt linearly interpolates temperature (°C) at the given pressure.
// The second return value is false when the profile does not span the level.
func (s *Sounding) TemperatureAt(hPa float64) (float64, bool) {
	return s.interpolate(s.Temperature, hPa)
}

// DewpointAt linearly interpolates dewpoint (°C) at the given pressure.
func (s *Sounding) DewpointAt(hPa float64) (float64, bool) {
	return s.interpolate(s.Dewpoint, hPa)
}

// HeightAt linearly interpolates geometric height (m) at the given pressure.
func (s *Sounding) HeightAt(hPa float64) (float64, bool) {
	return s.interpolate(s.Height, hPa)
}

// interpolate performs linear interpolation in pressure over one of the
// parallel series, skipping levels where the series holds NaN.
func (s *Sounding) interpolate(values []float64, hPa float64) (float64, bool) {
	if !s.SpansPressure(hPa) {
		return 0, false
	}

	prev := -1
	for i := 0; i < len(s.Pressure); i++ {
		if math.IsNaN(values[i]) {
			continue
		}
		if s.Pressure[i] == hPa {
			return values[i], true
		}
		if s.Pressure[i] < hPa {
			if prev < 0 {
				return 0, false
			}
			frac := (s.Pressure[prev] - hPa) / (s.Pressure[prev] - s.Pressure[i])
			return values[prev] + frac*(values[i]-values[prev]), true
		}
		prev = i
	}

	return 0, false
}

// WindComponents returns the zonal (u) and meridional (v) wind components in
// m/s at the given level, using the meteorological convention that direction
// is the bearing the wind blows from.
func (s *Sounding) WindComponents(level int) (u, v float64) {
	rad := s.WindDirection[level] * math.Pi / 180.0
	u = -s.WindSpeed[level] * math.Sin(rad)
	v = -s.WindSpeed[level] * math.Cos(rad)
	return u, v
}

// HeightAGL returns the height of a level above the lowest level.
func (s *Sounding) HeightAGL(level int) float64 {
	return s.Height[level] - s.Height[0]
}
