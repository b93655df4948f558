package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"agroclimate-platform/internal/repository"
	"agroclimate-platform/internal/services"
	"agroclimate-platform/pkg/logging"
	"agroclimate-platform/pkg/metrics"
)

// ClimateHandler handles county and observation API endpoints
type ClimateHandler struct {
	climateService *services.ClimateService
	logger         *logging.StructuredLogger
	metrics        *metrics.Collector
}

// NewClimateHandler creates a new climate handler
func NewClimateHandler(
	climateService *services.ClimateService,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *ClimateHandler {
	return &ClimateHandler{
		climateService: climateService,
		logger:         logger,
		metrics:        metricsCollector,
	}
}

// ListCounties handles GET /api/counties
func (h *ClimateHandler) ListCounties(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/counties").Observe(time.Since(startTime).Seconds())
	}()

	page, limit, offset := parsePagination(r)

	counties, total, err := h.climateService.ListCounties(ctx, limit, offset)
	if err != nil {
		h.logger.Error(ctx, "[API_LIST_COUNTIES_ERROR] Failed to list counties", logging.Fields{
			"page":  page,
			"limit": limit,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/counties")
		sendError(w, r, h.metrics, "failed to retrieve counties", http.StatusInternalServerError)
		return
	}

	response := PaginatedResponse{
		Data:       counties,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}

	h.metrics.RecordAPIRequest("/api/counties", "GET", "200")
	sendJSON(w, response, http.StatusOK)
}

// GetCounty handles GET /api/counties/{fips}
func (h *ClimateHandler) GetCounty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/counties/{fips}").Observe(time.Since(startTime).Seconds())
	}()

	fips := mux.Vars(r)["fips"]

	county, err := h.climateService.GetCounty(ctx, fips)
	if err != nil {
		var notFound *repository.NotFoundError
		if errors.As(err, &notFound) {
			sendError(w, r, h.metrics, notFound.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error(ctx, "[API_GET_COUNTY_ERROR] Failed to get county", logging.Fields{
			"fips": fips,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/counties/{fips}")
		sendError(w, r, h.metrics, "failed to retrieve county", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/counties/{fips}", "GET", "200")
	sendJSON(w, county, http.StatusOK)
}

// GetTemperatures handles GET /api/counties/{fips}/temperatures
func (h *ClimateHandler) GetTemperatures(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/counties/{fips}/temperatures").Observe(time.Since(startTime).Seconds())
	}()

	fips := mux.Vars(r)["fips"]
	page, limit, offset := parsePagination(r)

	filter := repository.ObservationFilter{
		CountyFIPS: &fips,
		Limit:      limit,
		Offset:     offset,
	}

	if startDateStr := r.URL.Query().Get("start_date"); startDateStr != "" {
		startDate, err := time.Parse("2006-01-02", startDateStr)
		if err != nil {
			sendError(w, r, h.metrics, "invalid start_date format, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		filter.StartDate = &startDate
	}

	if endDateStr := r.URL.Query().Get("end_date"); endDateStr != "" {
		endDate, err := time.Parse("2006-01-02", endDateStr)
		if err != nil {
			sendError(w, r, h.metrics, "invalid end_date format, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		filter.EndDate = &endDate
	}

	observations, total, err := h.climateService.GetObservations(ctx, filter)
	if err != nil {
		h.logger.Error(ctx, "[API_GET_TEMPERATURES_ERROR] Failed to get observations", logging.Fields{
			"fips": fips,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/counties/{fips}/temperatures")
		sendError(w, r, h.metrics, "failed to retrieve observations", http.StatusInternalServerError)
		return
	}

	response := PaginatedResponse{
		Data:       observations,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}

	h.metrics.RecordAPIRequest("/api/counties/{fips}/temperatures", "GET", "200")
	sendJSON(w, response, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *ClimateHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	code := http.StatusOK

	if err := h.climateService.HealthCheck(ctx); err != nil {
		status["status"] = "degraded"
		status["database"] = "unreachable"
		code = http.StatusServiceUnavailable
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{
		"status": status["status"],
	})
	sendJSON(w, status, code)
}

// RegisterRoutes registers county and observation API routes
func (h *ClimateHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/counties", h.ListCounties).Methods("GET")
	router.HandleFunc("/api/counties/{fips}", h.GetCounty).Methods("GET")
	router.HandleFunc("/api/counties/{fips}/temperatures", h.GetTemperatures).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
