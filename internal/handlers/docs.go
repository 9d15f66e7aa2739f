package handlers

import (
	"encoding/json"
	"net/http"

	"bikeshare-platform/internal/charts"
	"bikeshare-platform/internal/models"
)

func rangeParameters() []map[string]interface{} {
	return []map[string]interface{}{
		{
			"name":        "start_date",
			"in":          "query",
			"description": "First day of the range (YYYY-MM-DD, inclusive). Defaults to the first day of the dataset.",
			"required":    false,
			"schema":      map[string]string{"type": "string", "format": "date"},
		},
		{
			"name":        "end_date",
			"in":          "query",
			"description": "Last day of the range (YYYY-MM-DD, inclusive). Defaults to the last day of the dataset.",
			"required":    false,
			"schema":      map[string]string{"type": "string", "format": "date"},
		},
	}
}

func jsonResponse(description string, schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{"schema": schema},
		},
	}
}

func errorRef() map[string]interface{} {
	return jsonResponse("Error response", map[string]interface{}{"$ref": "#/components/schemas/Error"})
}

// OpenAPISpec returns the OpenAPI 3.0 specification for the dashboard API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	viewParams := append(rangeParameters(),
		map[string]interface{}{
			"name":     "view",
			"in":       "path",
			"required": true,
			"schema":   map[string]interface{}{"type": "string", "enum": models.Views},
		},
		map[string]interface{}{
			"name":        "format",
			"in":          "query",
			"description": "Response format (default: json)",
			"required":    false,
			"schema":      map[string]interface{}{"type": "string", "enum": []string{"json", "csv"}},
		},
	)

	chartParams := append(rangeParameters(), map[string]interface{}{
		"name":     "chart",
		"in":       "path",
		"required": true,
		"schema":   map[string]interface{}{"type": "string", "enum": charts.Names},
	})

	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Bike Sharing Dashboard API",
			"description": "Daily bike-sharing rentals summarized by season, weather, month and day",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/v1/dataset": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Describe the loaded dataset",
					"responses": map[string]interface{}{
						"200": jsonResponse("Dataset bounds and record count", map[string]interface{}{"$ref": "#/components/schemas/DatasetInfo"}),
					},
				},
			},
			"/api/v1/summary": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get every aggregate for a date range",
					"description": "Returns totals together with the season, weather, monthly and daily views",
					"parameters":  rangeParameters(),
					"responses": map[string]interface{}{
						"200": jsonResponse("Dashboard for the range", map[string]interface{}{"$ref": "#/components/schemas/Dashboard"}),
						"400": errorRef(),
					},
				},
			},
			"/api/v1/summary/{view}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":    "Get one aggregate view as JSON or CSV",
					"parameters": viewParams,
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "View rows",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{"schema": map[string]string{"type": "object"}},
								"text/csv":         map[string]interface{}{"schema": map[string]string{"type": "string"}},
							},
						},
						"400": errorRef(),
						"404": errorRef(),
					},
				},
			},
			"/api/v1/charts/{chart}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":    "Get a Vega-Lite chart specification",
					"parameters": chartParams,
					"responses": map[string]interface{}{
						"200": jsonResponse("Vega-Lite specification with inline data", map[string]interface{}{"type": "object"}),
						"400": errorRef(),
						"404": errorRef(),
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Health check",
					"responses": map[string]interface{}{
						"200": map[string]string{"description": "Service is healthy"},
						"503": map[string]string{"description": "Database is unreachable"},
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Prometheus metrics",
					"responses": map[string]interface{}{
						"200": map[string]string{"description": "Metrics in Prometheus text format"},
					},
				},
			},
		},
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"Error": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"error":   map[string]string{"type": "string"},
						"message": map[string]string{"type": "string"},
						"code":    map[string]string{"type": "integer"},
					},
				},
				"DatasetInfo": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"min_date":     map[string]string{"type": "string", "format": "date"},
						"max_date":     map[string]string{"type": "string", "format": "date"},
						"record_count": map[string]string{"type": "integer"},
					},
				},
				"Dashboard": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"range":   map[string]string{"type": "object"},
						"totals":  map[string]string{"type": "object"},
						"seasons": map[string]string{"type": "array"},
						"weather": map[string]string{"type": "array"},
						"monthly": map[string]string{"type": "array"},
						"daily":   map[string]string{"type": "array"},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
