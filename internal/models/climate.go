package models

import (
	"encoding/json"
	"time"
)

// County represents a county served by the dashboard, keyed by FIPS code.
// Geometry is stored as a GeoJSON document and handed to the map front end
// untouched.
type County struct {
	FIPS      string    `json:"fips" db:"fips"`
	Name      string    `json:"name" db:"name"`
	State     string    `json:"state" db:"state"`
	Latitude  float64   `json:"latitude" db:"latitude"`
	Longitude float64   `json:"longitude" db:"longitude"`
	Geometry  string    `json:"geometry,omitempty" db:"geometry"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TemperatureObservation represents one day of county-level temperature data.
// NULL values represented as pointers for -9999 handling
type TemperatureObservation struct {
	ID                    int64     `json:"id" db:"id"`
	CountyFIPS            string    `json:"county_fips" db:"county_fips"`
	ObservationDate       time.Time `json:"observation_date" db:"observation_date"`
	MaxTemperatureCelsius *float64  `json:"max_temperature_celsius,omitempty" db:"max_temperature_celsius"`
	MinTemperatureCelsius *float64  `json:"min_temperature_celsius,omitempty" db:"min_temperature_celsius"`
	PrecipitationCm       *float64  `json:"precipitation_cm,omitempty" db:"precipitation_cm"`
	CreatedAt             time.Time `json:"created_at" db:"created_at"`
}

// RawTemperatureRecord represents a single line from input data files,
// used during ingestion.
type RawTemperatureRecord struct {
	Date                 string
	MaxTemperatureTenths int // Raw value in 0.1°C (may be -9999)
	MinTemperatureTenths int // Raw value in 0.1°C (may be -9999)
	PrecipitationTenths  int // Raw value in 0.1mm (may be -9999)
}

// ToObservation converts a RawTemperatureRecord to a TemperatureObservation,
// handling -9999 sentinel values and unit conversions.
func (r *RawTemperatureRecord) ToObservation(countyFIPS string) (*TemperatureObservation, error) {
	date, err := time.Parse("20060102", r.Date)
	if err != nil {
		return nil, &ValidationError{
			Field:   "date",
			Value:   r.Date,
			Message: "invalid date format, expected YYYYMMDD",
		}
	}

	obs := &TemperatureObservation{
		CountyFIPS:      countyFIPS,
		ObservationDate: date,
		CreatedAt:       time.Now().UTC(),
	}

	// Convert max temperature: 0.1°C to °C, handle -9999 as NULL
	if r.MaxTemperatureTenths != -9999 {
		temp := float64(r.MaxTemperatureTenths) / 10.0
		obs.MaxTemperatureCelsius = &temp
	}

	// Convert min temperature: 0.1°C to °C, handle -9999 as NULL
	if r.MinTemperatureTenths != -9999 {
		temp := float64(r.MinTemperatureTenths) / 10.0
		obs.MinTemperatureCelsius = &temp
	}

	// Convert precipitation: 0.1mm to cm, handle -9999 as NULL
	if r.PrecipitationTenths != -9999 {
		precip := float64(r.PrecipitationTenths) / 100.0
		obs.PrecipitationCm = &precip
	}

	return obs, nil
}

// CachedAnalysis is one row of the analysis cache. The core never caches;
// the TTL contract is applied by the repository on behalf of callers.
type CachedAnalysis struct {
	CacheKey   string          `json:"cache_key" db:"cache_key"`
	Payload    json.RawMessage `json:"payload" db:"payload"`
	ComputedAt time.Time       `json:"computed_at" db:"computed_at"`
}
