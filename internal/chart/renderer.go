// Package chart renders forecast snapshots as PNG time-series charts suitable
// for inline embedding.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/gridwatch/solarcast/internal/store"
)

// seriesSpec names one plottable series and selects its value from a point.
type seriesSpec struct {
	value func(p store.ForecastPoint) *float64
	name  string
}

// The irradiance series plotted on the location detail page, all in W/m².
var irradianceSeries = []seriesSpec{
	{name: "GHI", value: func(p store.ForecastPoint) *float64 { return p.GHI }},
	{name: "GHI10", value: func(p store.ForecastPoint) *float64 { return p.GHI10 }},
	{name: "GHI90", value: func(p store.ForecastPoint) *float64 { return p.GHI90 }},
	{name: "DNI", value: func(p store.ForecastPoint) *float64 { return p.DNI }},
	{name: "DHI", value: func(p store.ForecastPoint) *float64 { return p.DHI }},
}

// Renderer turns ordered forecast points into an encoded PNG image.
type Renderer struct {
	logger *slog.Logger
}

// NewRenderer creates a new Renderer instance.
func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Renderer{logger: logger}, nil
}

// Render plots each irradiance series as its own line keyed by point
// timestamp, preserving the input order. A nil value is simply absent from its
// series rather than plotted as zero. Series with fewer than two plottable
// points are skipped; if nothing remains drawable an error is returned.
func (r *Renderer) Render(title string, points []store.ForecastPoint) ([]byte, error) {
	if len(points) == 0 {
		return nil, errors.New("cannot render an empty snapshot")
	}

	var series []gochart.Series
	for _, spec := range irradianceSeries {
		var xs []time.Time
		var ys []float64
		for _, p := range points {
			if v := spec.value(p); v != nil {
				xs = append(xs, p.Timestamp)
				ys = append(ys, *v)
			}
		}
		if len(xs) < 2 {
			continue
		}
		series = append(series, gochart.TimeSeries{
			Name:    spec.name,
			XValues: xs,
			YValues: ys,
		})
	}

	if len(series) == 0 {
		return nil, errors.New("no series with enough values to plot")
	}

	graph := gochart.Chart{
		Title:  title,
		Width:  1200,
		Height: 500,
		XAxis: gochart.XAxis{
			Name:           "Time",
			ValueFormatter: gochart.TimeValueFormatterWithFormat("Jan 2 15:04"),
		},
		YAxis: gochart.YAxis{
			Name: "Irradiance (W/m2)",
		},
		Series: series,
	}
	graph.Elements = []gochart.Renderable{
		gochart.Legend(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	r.logger.Debug("rendered chart", "title", title, "series", len(series), "points", len(points))
	return buf.Bytes(), nil
}
