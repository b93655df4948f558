package models

import (
	"testing"
	"time"
)

// TestRawTemperatureRecord_ToObservation tests sentinel handling and unit
// conversion during ingestion.
func TestRawTemperatureRecord_ToObservation(t *testing.T) {
	tests := []struct {
		name        string
		record      RawTemperatureRecord
		countyFIPS  string
		wantErr     bool
		checkValues func(*testing.T, *TemperatureObservation)
	}{
		{
			name: "valid record with all values",
			record: RawTemperatureRecord{
				Date:                 "20230715",
				MaxTemperatureTenths: 355,
				MinTemperatureTenths: 210,
				PrecipitationTenths:  40,
			},
			countyFIPS: "19153",
			wantErr:    false,
			checkValues: func(t *testing.T, obs *TemperatureObservation) {
				if obs.CountyFIPS != "19153" {
					t.Errorf("CountyFIPS = %v, want 19153", obs.CountyFIPS)
				}

				expectedDate := time.Date(2023, 7, 15, 0, 0, 0, 0, time.UTC)
				if !obs.ObservationDate.Equal(expectedDate) {
					t.Errorf("ObservationDate = %v, want %v", obs.ObservationDate, expectedDate)
				}

				if obs.MaxTemperatureCelsius == nil || *obs.MaxTemperatureCelsius != 35.5 {
					t.Errorf("MaxTemperatureCelsius = %v, want 35.5", obs.MaxTemperatureCelsius)
				}
				if obs.MinTemperatureCelsius == nil || *obs.MinTemperatureCelsius != 21.0 {
					t.Errorf("MinTemperatureCelsius = %v, want 21.0", obs.MinTemperatureCelsius)
				}
				if obs.PrecipitationCm == nil || *obs.PrecipitationCm != 0.4 {
					t.Errorf("PrecipitationCm = %v, want 0.4", obs.PrecipitationCm)
				}
			},
		},
		{
			name: "missing values (-9999) become NULL",
			record: RawTemperatureRecord{
				Date:                 "20230715",
				MaxTemperatureTenths: -9999,
				MinTemperatureTenths: -9999,
				PrecipitationTenths:  -9999,
			},
			countyFIPS: "19153",
			wantErr:    false,
			checkValues: func(t *testing.T, obs *TemperatureObservation) {
				if obs.MaxTemperatureCelsius != nil {
					t.Error("MaxTemperatureCelsius should be nil for -9999")
				}
				if obs.MinTemperatureCelsius != nil {
					t.Error("MinTemperatureCelsius should be nil for -9999")
				}
				if obs.PrecipitationCm != nil {
					t.Error("PrecipitationCm should be nil for -9999")
				}
			},
		},
		{
			name: "negative temperatures are valid",
			record: RawTemperatureRecord{
				Date:                 "20230115",
				MaxTemperatureTenths: -52,
				MinTemperatureTenths: -188,
				PrecipitationTenths:  0,
			},
			countyFIPS: "19153",
			wantErr:    false,
			checkValues: func(t *testing.T, obs *TemperatureObservation) {
				if obs.MaxTemperatureCelsius == nil || *obs.MaxTemperatureCelsius != -5.2 {
					t.Errorf("MaxTemperatureCelsius = %v, want -5.2", obs.MaxTemperatureCelsius)
				}
				if obs.MinTemperatureCelsius == nil || *obs.MinTemperatureCelsius != -18.8 {
					t.Errorf("MinTemperatureCelsius = %v, want -18.8", obs.MinTemperatureCelsius)
				}
			},
		},
		{
			name: "invalid date format",
			record: RawTemperatureRecord{
				Date:                 "2023-07-15",
				MaxTemperatureTenths: 355,
				MinTemperatureTenths: 210,
				PrecipitationTenths:  40,
			},
			countyFIPS: "19153",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, err := tt.record.ToObservation(tt.countyFIPS)

			if (err != nil) != tt.wantErr {
				t.Errorf("ToObservation() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && tt.checkValues != nil {
				tt.checkValues(t, obs)
			}
		})
	}
}

func TestTypedErrors(t *testing.T) {
	vErr := &ValidationError{Field: "date", Value: "invalid", Message: "invalid date format"}
	if vErr.Error() != "invalid date format" {
		t.Errorf("Error() = %v, want %v", vErr.Error(), "invalid date format")
	}
	if vErr.IsTransient() {
		t.Error("ValidationError should not be transient")
	}

	iErr := &InsufficientDataError{Required: 3, Actual: 1, Subject: "trend analysis"}
	if !iErr.IsTransient() {
		t.Error("InsufficientDataError should be transient")
	}
	want := "insufficient data for trend analysis: need at least 3 points, got 1"
	if iErr.Error() != want {
		t.Errorf("Error() = %q, want %q", iErr.Error(), want)
	}
}
