package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"bikeshare-platform/internal/charts"
	"bikeshare-platform/internal/export"
	"bikeshare-platform/internal/models"
	"bikeshare-platform/internal/services"
	"bikeshare-platform/pkg/logging"
	"bikeshare-platform/pkg/metrics"
)

// HealthChecker reports whether a backing dependency is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// DashboardHandler handles dashboard API endpoints
type DashboardHandler struct {
	dashboard *services.DashboardService
	health    HealthChecker
	logger    *logging.StructuredLogger
	metrics   *metrics.Collector
}

// NewDashboardHandler creates a new dashboard handler. health may be nil
// when the record store is not backed by a database.
func NewDashboardHandler(
	dashboard *services.DashboardService,
	health HealthChecker,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		health:    health,
		logger:    logger,
		metrics:   metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ViewResponse wraps a single aggregate view
type ViewResponse struct {
	Range models.DateRange `json:"range"`
	View  string           `json:"view"`
	Rows  interface{}      `json:"rows"`
}

// RangeQuery holds the query parameters shared by every dashboard endpoint
type RangeQuery struct {
	StartDate string `validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `validate:"omitempty,datetime=2006-01-02"`
	Format    string `validate:"omitempty,oneof=json csv"`
}

var validate = validator.New()

// parseRange validates the query string and resolves it against the store
func (h *DashboardHandler) parseRange(r *http.Request) (models.DateRange, RangeQuery, error) {
	q := RangeQuery{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
		Format:    r.URL.Query().Get("format"),
	}

	if err := validate.Struct(q); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) && len(vErrs) > 0 {
			fe := vErrs[0]
			return models.DateRange{}, q, &models.ValidationError{
				Field:   queryParamName(fe.Field()),
				Value:   fmt.Sprint(fe.Value()),
				Message: queryParamMessage(fe),
			}
		}
		return models.DateRange{}, q, err
	}

	var start, end *models.Date
	if q.StartDate != "" {
		d, err := models.ParseDate(q.StartDate)
		if err != nil {
			return models.DateRange{}, q, &models.ValidationError{Field: "start_date", Value: q.StartDate, Message: "expected YYYY-MM-DD"}
		}
		start = &d
	}
	if q.EndDate != "" {
		d, err := models.ParseDate(q.EndDate)
		if err != nil {
			return models.DateRange{}, q, &models.ValidationError{Field: "end_date", Value: q.EndDate, Message: "expected YYYY-MM-DD"}
		}
		end = &d
	}

	rng, err := h.dashboard.ResolveRange(start, end)
	return rng, q, err
}

func queryParamName(field string) string {
	switch field {
	case "StartDate":
		return "start_date"
	case "EndDate":
		return "end_date"
	case "Format":
		return "format"
	default:
		return field
	}
}

func queryParamMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "datetime":
		return "invalid " + queryParamName(fe.Field()) + " format, expected YYYY-MM-DD"
	case "oneof":
		return "invalid " + queryParamName(fe.Field()) + ", expected one of: " + fe.Param()
	default:
		return "invalid " + queryParamName(fe.Field())
	}
}

// GetDataset handles GET /api/v1/dataset
func (h *DashboardHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, h.dashboard.Info(), http.StatusOK)
}

// GetSummary handles GET /api/v1/summary
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	rng, _, err := h.parseRange(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendJSON(w, h.dashboard.Compute(r.Context(), rng), http.StatusOK)
}

// GetView handles GET /api/v1/summary/{view}
func (h *DashboardHandler) GetView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view := mux.Vars(r)["view"]

	if !slices.Contains(models.Views, view) {
		h.sendError(w, r, fmt.Sprintf("unknown view %q", view), http.StatusNotFound)
		return
	}

	rng, q, err := h.parseRange(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	d, rows := h.view(ctx, view, rng)

	if q.Format != "csv" {
		h.sendJSON(w, ViewResponse{Range: rng, View: view, Rows: rows}, http.StatusOK)
		return
	}

	df, err := export.Frame(view, d)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	filename := fmt.Sprintf("%s_%s_%s.csv", view, rng.Start, rng.End)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if err := export.WriteCSV(w, df); err != nil {
		h.logger.Error(ctx, "[API_EXPORT_ERROR] Failed to write csv", logging.Fields{
			"view": view,
		}, err)
	}
}

// GetChart handles GET /api/v1/charts/{chart}
func (h *DashboardHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["chart"]

	if !slices.Contains(charts.Names, name) {
		h.sendError(w, r, fmt.Sprintf("unknown chart %q", name), http.StatusNotFound)
		return
	}

	rng, _, err := h.parseRange(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	view, err := charts.View(name)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	d, _ := h.view(r.Context(), view, rng)
	spec, err := charts.Build(name, d)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendJSON(w, spec, http.StatusOK)
}

// view computes a single aggregate view. The returned dashboard carries
// only that view; rows is the same slice.
func (h *DashboardHandler) view(ctx context.Context, view string, rng models.DateRange) (*models.Dashboard, interface{}) {
	d := &models.Dashboard{Range: rng}
	switch view {
	case models.ViewSeason:
		d.Seasons = h.dashboard.Seasons(ctx, rng)
		return d, d.Seasons
	case models.ViewWeather:
		d.Weather = h.dashboard.Weather(ctx, rng)
		return d, d.Weather
	case models.ViewMonthly:
		d.Monthly = h.dashboard.Monthly(ctx, rng)
		return d, d.Monthly
	default:
		d.Daily = h.dashboard.Daily(ctx, rng)
		return d, d.Daily
	}
}

// HealthCheck handles GET /health
func (h *DashboardHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"records":   h.dashboard.Info().RecordCount,
	}

	code := http.StatusOK
	if h.health != nil {
		if err := h.health.HealthCheck(ctx); err != nil {
			h.logger.Warn(ctx, "[HEALTH_CHECK_FAILED] Database unreachable", logging.Fields{
				"error": err.Error(),
			})
			status["status"] = "unhealthy"
			status["database"] = err.Error()
			code = http.StatusServiceUnavailable
		} else {
			status["database"] = "ok"
		}
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, code)
}

// handleError maps service errors to HTTP status codes
func (h *DashboardHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *models.ValidationError
	var chartErr *charts.ErrUnknownChart

	switch {
	case errors.As(err, &vErr):
		h.metrics.RecordAPIError("validation_error", routeName(r))
		h.sendError(w, r, vErr.Error(), http.StatusBadRequest)
	case errors.As(err, &chartErr):
		h.sendError(w, r, chartErr.Error(), http.StatusNotFound)
	default:
		h.logger.Error(r.Context(), "[API_ERROR] Request failed", logging.Fields{
			"path": r.URL.Path,
		}, err)
		h.metrics.RecordAPIError("internal_error", routeName(r))
		h.sendError(w, r, "internal server error", http.StatusInternalServerError)
	}
}

// sendJSON sends a JSON response
func (h *DashboardHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *DashboardHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.logger.Debug(r.Context(), "[API_REJECTED] Request rejected", logging.Fields{
		"path":   r.URL.Path,
		"status": strconv.Itoa(statusCode),
		"reason": message,
	})

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all dashboard routes
func (h *DashboardHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", h.Dashboard).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/dataset", h.GetDataset).Methods("GET")
	api.HandleFunc("/summary", h.GetSummary).Methods("GET")
	api.HandleFunc("/summary/{view}", h.GetView).Methods("GET")
	api.HandleFunc("/charts/{chart}", h.GetChart).Methods("GET")

	router.HandleFunc("/api/docs", SwaggerUI).Methods("GET")
	router.HandleFunc("/api/docs/openapi.json", OpenAPISpec).Methods("GET")
}
