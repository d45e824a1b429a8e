// Package web provides the HTTP surface of the solarcast dashboard: location
// CRUD pages and the forecast detail page that triggers a snapshot refresh.
package web

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gridwatch/solarcast/internal/chart"
	"github.com/gridwatch/solarcast/internal/forecast"
	"github.com/gridwatch/solarcast/internal/store"
	"github.com/gridwatch/solarcast/pkg/metrics"
)

// Handlers bundles the collaborators behind the HTTP routes.
type Handlers struct {
	logger    *slog.Logger
	locations *store.LocationStore
	refresher *forecast.Refresher
	renderer  *chart.Renderer
	metrics   *metrics.WebMetrics // Optional metrics
	validate  *validator.Validate
}

// RouterConfig holds the dependencies for NewRouter.
type RouterConfig struct {
	Logger    *slog.Logger
	Locations *store.LocationStore
	Refresher *forecast.Refresher
	Renderer  *chart.Renderer
	Metrics   *metrics.WebMetrics
}

// NewRouter builds the HTTP route table over the given collaborators.
func NewRouter(cfg *RouterConfig) (http.Handler, error) {
	if cfg == nil {
		return nil, errors.New("router config cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.Locations == nil {
		return nil, errors.New("location store cannot be nil")
	}

	if cfg.Refresher == nil {
		return nil, errors.New("refresher cannot be nil")
	}

	if cfg.Renderer == nil {
		return nil, errors.New("chart renderer cannot be nil")
	}

	h := &Handlers{
		logger:    cfg.Logger,
		locations: cfg.Locations,
		refresher: cfg.Refresher,
		renderer:  cfg.Renderer,
		metrics:   cfg.Metrics,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}

	mux := http.NewServeMux()

	// Health check and metrics
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	// Location CRUD
	mux.HandleFunc("GET /location/new", h.handleNewLocation)
	mux.HandleFunc("POST /location/new", h.handleCreateLocation)
	mux.HandleFunc("GET /location/{id}/edit", h.handleEditLocation)
	mux.HandleFunc("POST /location/{id}/edit", h.handleUpdateLocation)
	mux.HandleFunc("POST /location/{id}/delete", h.handleDeleteLocation)

	// Forecast detail page (refresh + chart)
	mux.HandleFunc("GET /location/{id}", h.handleLocation)

	// Index page (catch-all, must be last)
	mux.HandleFunc("GET /{$}", h.handleIndex)

	return withHTTPMetrics(mux, cfg.Metrics), nil
}

// handleIndex serves the location list page.
func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("handling index request")

	locations, err := h.locations.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list locations", "error", err)
		h.renderFailure(w, r, http.StatusInternalServerError, "Failed to load locations")
		return
	}

	if err := renderIndex(r.Context(), w, locations, h.metrics); err != nil {
		h.logger.Error("failed to render index", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// handleNewLocation serves the empty create form.
func (h *Handlers) handleNewLocation(w http.ResponseWriter, r *http.Request) {
	if err := renderLocationForm(r.Context(), w, "Add location", "/location/new", LocationForm{}, nil, h.metrics); err != nil {
		h.logger.Error("failed to render location form", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// handleCreateLocation validates the submitted form and persists a new
// location. Invalid input re-renders the form and touches no storage.
func (h *Handlers) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	form, err := parseLocationForm(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if fieldErrors := form.Validate(h.validate); len(fieldErrors) > 0 {
		w.WriteHeader(http.StatusUnprocessableEntity)
		if err := renderLocationForm(r.Context(), w, "Add location", "/location/new", form, fieldErrors, h.metrics); err != nil {
			h.logger.Error("failed to render location form", "error", err)
		}
		return
	}

	loc, err := form.Model()
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := h.locations.Create(r.Context(), &loc); err != nil {
		h.logger.Error("failed to create location", "error", err)
		h.renderFailure(w, r, http.StatusInternalServerError, "Failed to save location")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleEditLocation serves the edit form pre-filled with the stored fields.
func (h *Handlers) handleEditLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	loc, err := h.locations.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.renderFailure(w, r, http.StatusNotFound, "Location not found")
			return
		}
		h.logger.Error("failed to fetch location", "location_id", id, "error", err)
		h.renderFailure(w, r, http.StatusInternalServerError, "Failed to load location")
		return
	}

	action := fmt.Sprintf("/location/%d/edit", id)
	if err := renderLocationForm(r.Context(), w, "Edit location", action, formFromLocation(loc), nil, h.metrics); err != nil {
		h.logger.Error("failed to render location form", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// handleUpdateLocation validates the submitted form and replaces all fields of
// an existing location. Invalid input leaves the stored record untouched.
func (h *Handlers) handleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	form, err := parseLocationForm(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	action := fmt.Sprintf("/location/%d/edit", id)
	if fieldErrors := form.Validate(h.validate); len(fieldErrors) > 0 {
		w.WriteHeader(http.StatusUnprocessableEntity)
		if err := renderLocationForm(r.Context(), w, "Edit location", action, form, fieldErrors, h.metrics); err != nil {
			h.logger.Error("failed to render location form", "error", err)
		}
		return
	}

	loc, err := form.Model()
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	loc.ID = id

	if err := h.locations.Update(r.Context(), &loc); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.renderFailure(w, r, http.StatusNotFound, "Location not found")
			return
		}
		h.logger.Error("failed to update location", "location_id", id, "error", err)
		h.renderFailure(w, r, http.StatusInternalServerError, "Failed to save location")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleDeleteLocation deletes a location together with its forecast points.
func (h *Handlers) handleDeleteLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.locations.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.renderFailure(w, r, http.StatusNotFound, "Location not found")
			return
		}
		h.logger.Error("failed to delete location", "location_id", id, "error", err)
		h.renderFailure(w, r, http.StatusInternalServerError, "Failed to delete location")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleLocation refreshes the forecast snapshot for a location and renders
// the resulting ordered points as an inline chart. A failed refresh reports
// the failure; the previously stored snapshot stays valid.
func (h *Handlers) handleLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	h.logger.Debug("handling location request", "location_id", id)

	loc, err := h.locations.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.renderFailure(w, r, http.StatusNotFound, "Location not found")
			return
		}
		h.logger.Error("failed to fetch location", "location_id", id, "error", err)
		h.renderFailure(w, r, http.StatusInternalServerError, "Failed to load location")
		return
	}

	points, err := h.refresher.Refresh(r.Context(), id)
	if err != nil {
		h.failRefresh(w, r, id, err)
		return
	}

	chartB64 := ""
	if len(points) > 0 {
		title := fmt.Sprintf("Solar Irradiation Forecast for Lat: %s, Long: %s",
			formatCoord(loc.Latitude), formatCoord(loc.Longitude))
		png, err := h.renderChart(title, points)
		if err != nil {
			if h.metrics != nil {
				h.metrics.ChartRenderErrors.Inc()
			}
			h.logger.Error("failed to render chart", "location_id", id, "error", err)
			h.renderFailure(w, r, http.StatusInternalServerError, "Failed to render forecast chart")
			return
		}
		chartB64 = base64.StdEncoding.EncodeToString(png)
	}

	if err := renderLocation(r.Context(), w, loc, chartB64, points, h.metrics); err != nil {
		h.logger.Error("failed to render location page", "location_id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// renderChart wraps chart rendering with metrics tracking.
func (h *Handlers) renderChart(title string, points []store.ForecastPoint) ([]byte, error) {
	if h.metrics == nil {
		return h.renderer.Render(title, points)
	}

	timer := prometheus.NewTimer(h.metrics.ChartRenderTime)
	defer timer.ObserveDuration()

	return h.renderer.Render(title, points)
}

// handleHealth serves health check endpoint.
func (h *Handlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
		h.logger.Error("failed to write health response", "error", err)
	}
}

// failRefresh maps a refresh error onto a distinguishable HTTP outcome.
func (h *Handlers) failRefresh(w http.ResponseWriter, r *http.Request, id uint, err error) {
	var fetchErr *forecast.FetchFailedError
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.renderFailure(w, r, http.StatusNotFound, "Location not found")
	case errors.Is(err, forecast.ErrNoAPIKey):
		h.logger.Warn("refresh without credential", "location_id", id)
		h.renderFailure(w, r, http.StatusInternalServerError,
			"No API key configured: set a system default or a per-location override")
	case errors.As(err, &fetchErr):
		h.logger.Error("forecast fetch failed", "location_id", id, "error", err)
		h.renderFailure(w, r, http.StatusBadGateway,
			"Fetching the forecast failed; the previously stored snapshot is unchanged")
	default:
		h.logger.Error("refresh failed", "location_id", id, "error", err)
		h.renderFailure(w, r, http.StatusInternalServerError,
			"Storing the forecast failed; the previously stored snapshot is unchanged")
	}
}

// renderFailure writes an error status and the failure page.
func (h *Handlers) renderFailure(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := renderError(r.Context(), w, message, h.metrics); err != nil {
		h.logger.Error("failed to render error page", "error", err)
	}
}

// pathID parses the {id} path segment; a malformed id is reported as not found.
func (h *Handlers) pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		h.renderFailure(w, r, http.StatusNotFound, "Location not found")
		return 0, false
	}
	return uint(id), true
}
