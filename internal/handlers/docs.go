package handlers

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec returns the OpenAPI 3.0 specification for the Agroclimate Platform API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	paginationParams := []map[string]interface{}{
		{
			"name":        "page",
			"in":          "query",
			"description": "Page number (default: 1)",
			"required":    false,
			"schema":      map[string]interface{}{"type": "integer", "default": 1},
		},
		{
			"name":        "limit",
			"in":          "query",
			"description": "Records per page (default: 100)",
			"required":    false,
			"schema":      map[string]interface{}{"type": "integer", "default": 100},
		},
	}

	fipsParam := map[string]interface{}{
		"name":        "fips",
		"in":          "path",
		"description": "County FIPS code",
		"required":    true,
		"schema":      map[string]string{"type": "string"},
	}

	soundingAnalysisSchema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"indices": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"cape_jkg":                     map[string]string{"type": "number"},
					"cape_invalid":                 map[string]string{"type": "boolean"},
					"cape_category":                map[string]string{"type": "string"},
					"k_index":                      map[string]interface{}{"type": "number", "nullable": true},
					"k_index_category":             map[string]string{"type": "string"},
					"total_totals":                 map[string]interface{}{"type": "number", "nullable": true},
					"total_totals_category":        map[string]string{"type": "string"},
					"storm_relative_helicity_m2s2": map[string]string{"type": "number"},
					"helicity_category":            map[string]string{"type": "string"},
					"composite_risk":               map[string]string{"type": "number"},
					"heatwave_contribution":        map[string]interface{}{"type": "number", "nullable": true},
				},
			},
			"heat_metrics": map[string]interface{}{"type": "object", "nullable": true},
			"source":       map[string]interface{}{"type": "string", "enum": []string{"observed", "synthetic-fallback"}},
			"generated_at": map[string]string{"type": "string", "format": "date-time"},
		},
	}

	trendAnalysisSchema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"trend": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"slope_per_year":             map[string]string{"type": "number"},
					"intercept_at_first_year":    map[string]string{"type": "number"},
					"direction":                  map[string]interface{}{"type": "string", "enum": []string{"warming", "cooling", "no-trend"}},
					"p_value":                    map[string]string{"type": "number"},
					"significant":                map[string]string{"type": "boolean"},
					"percent_change_over_period": map[string]string{"type": "number"},
					"change_points":              map[string]interface{}{"type": "array", "items": map[string]string{"type": "integer"}},
				},
			},
			"source":       map[string]interface{}{"type": "string", "enum": []string{"observed", "synthetic-fallback"}},
			"generated_at": map[string]string{"type": "string", "format": "date-time"},
		},
	}

	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Agroclimate Platform API",
			"description": "County-level agricultural climate analytics: severe-weather indices from atmospheric soundings, heatwave detection, and long-term temperature trend analysis",
			"version":     "1.0.0",
			"contact": map[string]string{
				"name": "Agroclimate Platform Team",
			},
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/counties": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List counties",
					"description": "Retrieve counties with pagination, including map geometry",
					"parameters":  paginationParams,
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Successful response",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"data": map[string]interface{}{
												"type": "array",
												"items": map[string]interface{}{
													"type": "object",
													"properties": map[string]interface{}{
														"fips":      map[string]string{"type": "string"},
														"name":      map[string]string{"type": "string"},
														"state":     map[string]string{"type": "string"},
														"latitude":  map[string]string{"type": "number"},
														"longitude": map[string]string{"type": "number"},
														"geometry":  map[string]string{"type": "string"},
													},
												},
											},
											"total":       map[string]string{"type": "integer"},
											"page":        map[string]string{"type": "integer"},
											"limit":       map[string]string{"type": "integer"},
											"total_pages": map[string]string{"type": "integer"},
										},
									},
								},
							},
						},
					},
				},
			},
			"/api/counties/{fips}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get county",
					"description": "Retrieve a single county by FIPS code",
					"parameters":  []map[string]interface{}{fipsParam},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Successful response"},
						"404": map[string]interface{}{"description": "County not found"},
					},
				},
			},
			"/api/counties/{fips}/temperatures": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get county temperature observations",
					"description": "Retrieve daily temperature observations for a county with date filtering and pagination",
					"parameters": append([]map[string]interface{}{
						fipsParam,
						{
							"name":        "start_date",
							"in":          "query",
							"description": "Filter by start date (YYYY-MM-DD)",
							"required":    false,
							"schema":      map[string]string{"type": "string", "format": "date"},
						},
						{
							"name":        "end_date",
							"in":          "query",
							"description": "Filter by end date (YYYY-MM-DD)",
							"required":    false,
							"schema":      map[string]string{"type": "string", "format": "date"},
						},
					}, paginationParams...),
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Successful response"},
						"400": map[string]interface{}{"description": "Invalid date filter"},
					},
				},
			},
			"/api/counties/{fips}/analysis": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get combined county analysis",
					"description": "Severe-weather indices and long-term trend for a county; recomputed or served from cache. Results are tagged observed or synthetic-fallback.",
					"parameters":  []map[string]interface{}{fipsParam},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Successful response",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"county":         map[string]interface{}{"type": "object"},
											"severe_weather": soundingAnalysisSchema,
											"trend":          trendAnalysisSchema,
										},
									},
								},
							},
						},
						"404": map[string]interface{}{"description": "County not found"},
						"422": map[string]interface{}{"description": "Insufficient data for analysis"},
					},
				},
			},
			"/api/analysis/sounding": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Analyze an atmospheric sounding",
					"description": "Compute CAPE, K-Index, Total Totals, storm-relative helicity and composite risk from a caller-supplied vertical profile, optionally folding in heat metrics from a daily-max series",
					"requestBody": map[string]interface{}{
						"required": true,
						"content": map[string]interface{}{
							"application/json": map[string]interface{}{
								"schema": map[string]interface{}{
									"type":     "object",
									"required": []string{"pressure_hpa", "temperature_c", "dewpoint_c", "height_m", "wind_speed_ms", "wind_direction_deg"},
									"properties": map[string]interface{}{
										"pressure_hpa":             map[string]interface{}{"type": "array", "items": map[string]string{"type": "number"}},
										"temperature_c":            map[string]interface{}{"type": "array", "items": map[string]string{"type": "number"}},
										"dewpoint_c":               map[string]interface{}{"type": "array", "items": map[string]string{"type": "number"}},
										"height_m":                 map[string]interface{}{"type": "array", "items": map[string]string{"type": "number"}},
										"wind_speed_ms":            map[string]interface{}{"type": "array", "items": map[string]string{"type": "number"}},
										"wind_direction_deg":       map[string]interface{}{"type": "array", "items": map[string]string{"type": "number"}},
										"daily_max_temperatures_c": map[string]interface{}{"type": "array", "items": map[string]string{"type": "number"}},
									},
								},
							},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Successful response",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{"schema": soundingAnalysisSchema},
							},
						},
						"400": map[string]interface{}{"description": "Malformed or physically inconsistent profile"},
					},
				},
			},
			"/api/analysis/trend": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Analyze an annual temperature series",
					"description": "Fit a linear trend, test significance with Mann-Kendall, and flag change points in a caller-supplied annual series",
					"requestBody": map[string]interface{}{
						"required": true,
						"content": map[string]interface{}{
							"application/json": map[string]interface{}{
								"schema": map[string]interface{}{
									"type":     "object",
									"required": []string{"series"},
									"properties": map[string]interface{}{
										"series": map[string]interface{}{
											"type": "array",
											"items": map[string]interface{}{
												"type": "object",
												"properties": map[string]interface{}{
													"year":  map[string]string{"type": "integer"},
													"value": map[string]string{"type": "number"},
												},
											},
										},
									},
								},
							},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Successful response",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{"schema": trendAnalysisSchema},
							},
						},
						"400": map[string]interface{}{"description": "Malformed series"},
						"422": map[string]interface{}{"description": "Too few points for a trend"},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Check if the API and its database are reachable",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "API is healthy",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"status": map[string]string{"type": "string"},
										},
									},
								},
							},
						},
						"503": map[string]interface{}{"description": "Database unreachable"},
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Prometheus metrics",
					"description": "Prometheus metrics endpoint for monitoring",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{
									"schema": map[string]string{"type": "string"},
								},
							},
						},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
