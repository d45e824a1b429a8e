package web

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gridwatch/solarcast/internal/store"
	"github.com/gridwatch/solarcast/pkg/metrics"
)

// renderIndex renders the location list page.
func renderIndex(ctx context.Context, w http.ResponseWriter, locations []store.Location, m *metrics.WebMetrics) error {
	return trackTemplateRender(ctx, w, m, "index", func() error {
		return indexPage(locations).Render(ctx, w)
	})
}

// renderLocationForm renders the create/edit form page.
func renderLocationForm(ctx context.Context, w http.ResponseWriter, title, action string, form LocationForm, fieldErrors map[string]string, m *metrics.WebMetrics) error {
	return trackTemplateRender(ctx, w, m, "location_form", func() error {
		return locationFormPage(title, action, form, fieldErrors).Render(ctx, w)
	})
}

// renderLocation renders the forecast detail page for a location.
func renderLocation(ctx context.Context, w http.ResponseWriter, loc store.Location, chartB64 string, points []store.ForecastPoint, m *metrics.WebMetrics) error {
	return trackTemplateRender(ctx, w, m, "location", func() error {
		return locationPage(loc, chartB64, points).Render(ctx, w)
	})
}

// renderError renders the failure page.
func renderError(ctx context.Context, w http.ResponseWriter, message string, m *metrics.WebMetrics) error {
	return trackTemplateRender(ctx, w, m, "error", func() error {
		return errorPage(message).Render(ctx, w)
	})
}

// trackTemplateRender wraps template rendering with metrics tracking.
func trackTemplateRender(_ context.Context, _ http.ResponseWriter, m *metrics.WebMetrics, templateName string, renderFunc func() error) error {
	// If metrics not enabled, just render
	if m == nil {
		return renderFunc()
	}

	// Track duration
	timer := prometheus.NewTimer(m.TemplateRenderTime.WithLabelValues(templateName))
	defer timer.ObserveDuration()

	// Render template
	err := renderFunc()

	// Track errors
	if err != nil {
		m.TemplateRenderErrors.WithLabelValues(templateName, "render_error").Inc()
		return err
	}

	return nil
}
