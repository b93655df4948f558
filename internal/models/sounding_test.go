package models

import (
	"errors"
	"math"
	"testing"
)

func TestNewSounding(t *testing.T) {
	tests := []struct {
		name     string
		pressure []float64
		temp     []float64
		dewpoint []float64
		height   []float64
		speed    []float64
		dir      []float64
		wantErr  bool
		check    func(*testing.T, *Sounding)
	}{
		{
			name:     "valid three-level profile",
			pressure: []float64{1000, 900, 800},
			temp:     []float64{20, 14, 8},
			dewpoint: []float64{15, 10, 4},
			height:   []float64{0, 950, 2000},
			speed:    []float64{5, 8, 12},
			dir:      []float64{180, 200, 220},
			wantErr:  false,
			check: func(t *testing.T, s *Sounding) {
				if s.Levels() != 3 {
					t.Errorf("Levels() = %d, want 3", s.Levels())
				}
			},
		},
		{
			name:     "single level rejected",
			pressure: []float64{1000},
			temp:     []float64{20},
			dewpoint: []float64{15},
			height:   []float64{0},
			speed:    []float64{5},
			dir:      []float64{180},
			wantErr:  true,
		},
		{
			name:     "length mismatch rejected",
			pressure: []float64{1000, 900, 800},
			temp:     []float64{20, 14},
			dewpoint: []float64{15, 10, 4},
			height:   []float64{0, 950, 2000},
			speed:    []float64{5, 8, 12},
			dir:      []float64{180, 200, 220},
			wantErr:  true,
		},
		{
			name:     "duplicate pressure rejected after sort",
			pressure: []float64{1000, 900, 900},
			temp:     []float64{20, 14, 13},
			dewpoint: []float64{15, 10, 9},
			height:   []float64{0, 950, 960},
			speed:    []float64{5, 8, 9},
			dir:      []float64{180, 200, 210},
			wantErr:  true,
		},
		{
			name:     "non-monotonic height rejected",
			pressure: []float64{1000, 900, 800},
			temp:     []float64{20, 14, 8},
			dewpoint: []float64{15, 10, 4},
			height:   []float64{0, 2000, 950},
			speed:    []float64{5, 8, 12},
			dir:      []float64{180, 200, 220},
			wantErr:  true,
		},
		{
			name:     "unordered levels sorted by descending pressure",
			pressure: []float64{800, 1000, 900},
			temp:     []float64{8, 20, 14},
			dewpoint: []float64{4, 15, 10},
			height:   []float64{2000, 0, 950},
			speed:    []float64{12, 5, 8},
			dir:      []float64{220, 180, 200},
			wantErr:  false,
			check: func(t *testing.T, s *Sounding) {
				if s.Pressure[0] != 1000 || s.Pressure[2] != 800 {
					t.Errorf("Pressure = %v, want descending [1000 900 800]", s.Pressure)
				}
				if s.Temperature[0] != 20 || s.Height[0] != 0 {
					t.Errorf("level pairing broken after sort: T=%v h=%v", s.Temperature, s.Height)
				}
			},
		},
		{
			name:     "supersaturation clamped not rejected",
			pressure: []float64{1000, 900},
			temp:     []float64{20, 14},
			dewpoint: []float64{23, 14},
			height:   []float64{0, 950},
			speed:    []float64{5, 8},
			dir:      []float64{180, 200},
			wantErr:  false,
			check: func(t *testing.T, s *Sounding) {
				if s.Dewpoint[0] != 20 {
					t.Errorf("Dewpoint[0] = %v, want clamped to temperature 20", s.Dewpoint[0])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSounding(tt.pressure, tt.temp, tt.dewpoint, tt.height, tt.speed, tt.dir)

			if (err != nil) != tt.wantErr {
				t.Fatalf("NewSounding() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var validationErr *ValidationError
				if !errors.As(err, &validationErr) {
					t.Errorf("error type = %T, want *ValidationError", err)
				}
				return
			}
			if tt.check != nil {
				tt.check(t, s)
			}
		})
	}
}

func TestSoundingImmutableFromInputs(t *testing.T) {
	pressure := []float64{1000, 900}
	temp := []float64{20, 14}

	s, err := NewSounding(pressure, temp, []float64{15, 10}, []float64{0, 950}, []float64{5, 8}, []float64{180, 200})
	if err != nil {
		t.Fatalf("NewSounding() error = %v", err)
	}

	pressure[0] = 1
	temp[0] = -99

	if s.Pressure[0] != 1000 || s.Temperature[0] != 20 {
		t.Error("Sounding shares backing arrays with caller input")
	}
}

func TestSoundingInterpolation(t *testing.T) {
	s, err := NewSounding(
		[]float64{1000, 900, 800},
		[]float64{20, 14, 8},
		[]float64{15, 10, 4},
		[]float64{0, 950, 2000},
		[]float64{5, 8, 12},
		[]float64{180, 200, 220},
	)
	if err != nil {
		t.Fatalf("NewSounding() error = %v", err)
	}

	tests := []struct {
		name   string
		hPa    float64
		want   float64
		wantOK bool
	}{
		{"exact level", 900, 14, true},
		{"midpoint", 950, 17, true},
		{"above top", 700, 0, false},
		{"below surface", 1050, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.TemperatureAt(tt.hPa)
			if ok != tt.wantOK {
				t.Fatalf("TemperatureAt(%v) ok = %v, want %v", tt.hPa, ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("TemperatureAt(%v) = %v, want %v", tt.hPa, got, tt.want)
			}
		})
	}
}

func TestSoundingWindComponents(t *testing.T) {
	s, err := NewSounding(
		[]float64{1000, 900},
		[]float64{20, 14},
		[]float64{15, 10},
		[]float64{0, 950},
		[]float64{10, 10},
		[]float64{180, 270}, // southerly, then westerly
	)
	if err != nil {
		t.Fatalf("NewSounding() error = %v", err)
	}

	u, v := s.WindComponents(0)
	if math.Abs(u) > 1e-9 || math.Abs(v-10) > 1e-9 {
		t.Errorf("southerly wind components = (%v, %v), want (0, 10)", u, v)
	}

	u, v = s.WindComponents(1)
	if math.Abs(u-10) > 1e-9 || math.Abs(v) > 1e-9 {
		t.Errorf("westerly wind components = (%v, %v), want (10, 0)", u, v)
	}
}
