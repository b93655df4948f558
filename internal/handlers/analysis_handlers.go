package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"agroclimate-platform/internal/models"
	"agroclimate-platform/internal/repository"
	"agroclimate-platform/internal/services"
	"agroclimate-platform/pkg/logging"
	"agroclimate-platform/pkg/metrics"
)

// AnalysisHandler handles atmospheric analysis API endpoints
type AnalysisHandler struct {
	analysisService *services.AnalysisService
	logger          *logging.StructuredLogger
	metrics         *metrics.Collector
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(
	analysisService *services.AnalysisService,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		logger:          logger,
		metrics:         metricsCollector,
	}
}

// SoundingRequest carries a vertical profile as parallel arrays ordered
// surface-first, plus an optional recent daily-max series for heat metrics.
type SoundingRequest struct {
	PressureHPa          []float64 `json:"pressure_hpa"`
	TemperatureC         []float64 `json:"temperature_c"`
	DewpointC            []float64 `json:"dewpoint_c"`
	HeightM              []float64 `json:"height_m"`
	WindSpeedMS          []float64 `json:"wind_speed_ms"`
	WindDirectionDeg     []float64 `json:"wind_direction_deg"`
	DailyMaxTemperatures []float64 `json:"daily_max_temperatures_c,omitempty"`
}

// TrendRequest carries an annual temperature series.
type TrendRequest struct {
	Series []models.YearValue `json:"series"`
}

// AnalyzeSounding handles POST /api/analysis/sounding
func (h *AnalysisHandler) AnalyzeSounding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/analysis/sounding").Observe(time.Since(startTime).Seconds())
	}()

	var req SoundingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, r, h.metrics, "invalid JSON body", http.StatusBadRequest)
		return
	}

	sounding, err := models.NewSounding(
		req.PressureHPa,
		req.TemperatureC,
		req.DewpointC,
		req.HeightM,
		req.WindSpeedMS,
		req.WindDirectionDeg,
	)
	if err != nil {
		var validation *models.ValidationError
		if errors.As(err, &validation) {
			sendError(w, r, h.metrics, validation.Error(), http.StatusBadRequest)
			return
		}
		sendError(w, r, h.metrics, "invalid sounding", http.StatusBadRequest)
		return
	}

	result := h.analysisService.AnalyzeSounding(ctx, sounding, req.DailyMaxTemperatures)

	h.metrics.RecordAPIRequest("/api/analysis/sounding", "POST", "200")
	sendJSON(w, result, http.StatusOK)
}

// AnalyzeTrend handles POST /api/analysis/trend
func (h *AnalysisHandler) AnalyzeTrend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/analysis/trend").Observe(time.Since(startTime).Seconds())
	}()

	var req TrendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, r, h.metrics, "invalid JSON body", http.StatusBadRequest)
		return
	}

	result, err := h.analysisService.AnalyzeTrendSeries(ctx, req.Series)
	if err != nil {
		h.writeAnalysisError(w, r, "/api/analysis/trend", err)
		return
	}

	h.metrics.RecordAPIRequest("/api/analysis/trend", "POST", "200")
	sendJSON(w, result, http.StatusOK)
}

// AnalyzeCounty handles GET /api/counties/{fips}/analysis
func (h *AnalysisHandler) AnalyzeCounty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/counties/{fips}/analysis").Observe(time.Since(startTime).Seconds())
	}()

	fips := mux.Vars(r)["fips"]

	payload, err := h.analysisService.AnalyzeCounty(ctx, fips)
	if err != nil {
		var notFound *repository.NotFoundError
		if errors.As(err, &notFound) {
			sendError(w, r, h.metrics, notFound.Error(), http.StatusNotFound)
			return
		}
		h.writeAnalysisError(w, r, "/api/counties/{fips}/analysis", err)
		return
	}

	h.metrics.RecordAPIRequest("/api/counties/{fips}/analysis", "GET", "200")
	sendRawJSON(w, payload, http.StatusOK)
}

// writeAnalysisError maps typed engine errors to HTTP statuses. Validation
// problems are the caller's fault; insufficient data is a well-formed request
// the data cannot satisfy.
func (h *AnalysisHandler) writeAnalysisError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	var validation *models.ValidationError
	if errors.As(err, &validation) {
		sendError(w, r, h.metrics, validation.Error(), http.StatusBadRequest)
		return
	}

	var insufficient *models.InsufficientDataError
	if errors.As(err, &insufficient) {
		sendError(w, r, h.metrics, insufficient.Error(), http.StatusUnprocessableEntity)
		return
	}

	h.logger.Error(r.Context(), "[API_ANALYSIS_ERROR] Analysis failed", logging.Fields{
		"endpoint": endpoint,
	}, err)
	h.metrics.RecordAPIError("internal_error", endpoint)
	sendError(w, r, h.metrics, "analysis failed", http.StatusInternalServerError)
}

// RegisterRoutes registers analysis API routes
func (h *AnalysisHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/analysis/sounding", h.AnalyzeSounding).Methods("POST")
	router.HandleFunc("/api/analysis/trend", h.AnalyzeTrend).Methods("POST")
	router.HandleFunc("/api/counties/{fips}/analysis", h.AnalyzeCounty).Methods("GET")
}
