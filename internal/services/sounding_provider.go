package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"agroclimate-platform/internal/analysis"
	"agroclimate-platform/internal/models"
	"agroclimate-platform/pkg/logging"
)

// HTTPSoundingProvider fetches vertical profiles from an upstream sounding
// service. Any failure (transport, status, decode, physically inconsistent
// profile) is returned as an error; the orchestrator treats it as a normal
// fallback input.
type HTTPSoundingProvider struct {
	baseURL string
	client  *http.Client
	logger  *logging.StructuredLogger
}

// soundingPayload is the upstream wire format: parallel arrays ordered
// surface-first.
type soundingPayload struct {
	PressureHPa      []float64 `json:"pressure_hpa"`
	TemperatureC     []float64 `json:"temperature_c"`
	DewpointC        []float64 `json:"dewpoint_c"`
	HeightM          []float64 `json:"height_m"`
	WindSpeedMS      []float64 `json:"wind_speed_ms"`
	WindDirectionDeg []float64 `json:"wind_direction_deg"`
}

// NewHTTPSoundingProvider creates a provider against the given base URL.
func NewHTTPSoundingProvider(baseURL string, timeout time.Duration, logger *logging.StructuredLogger) *HTTPSoundingProvider {
	return &HTTPSoundingProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// FetchSounding retrieves the latest profile for a site.
func (p *HTTPSoundingProvider) FetchSounding(ctx context.Context, site analysis.Site) (*models.Sounding, error) {
	url := fmt.Sprintf("%s?lat=%.4f&lon=%.4f", p.baseURL, site.Latitude, site.Longitude)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build sounding request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn(ctx, "[SOUNDING_FETCH_FAILED] Upstream sounding fetch failed", logging.Fields{
			"site_fips": site.FIPS,
		})
		return nil, fmt.Errorf("sounding fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sounding fetch returned status %d", resp.StatusCode)
	}

	var payload soundingPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode sounding payload: %w", err)
	}

	return models.NewSounding(
		payload.PressureHPa,
		payload.TemperatureC,
		payload.DewpointC,
		payload.HeightM,
		payload.WindSpeedMS,
		payload.WindDirectionDeg,
	)
}
