package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gridwatch/solarcast/internal/store"
	"github.com/gridwatch/solarcast/pkg/metrics"
)

// ErrNoAPIKey is returned when neither the location nor the configuration
// carries a usable API credential. The refresh aborts before any network call.
var ErrNoAPIKey = errors.New("no API key configured")

// FetchFailedError marks a fetcher failure so callers can tell it apart from a
// storage failure. Error and Unwrap expose the fetcher's error unchanged.
type FetchFailedError struct {
	Err error
}

func (e *FetchFailedError) Error() string {
	return e.Err.Error()
}

func (e *FetchFailedError) Unwrap() error {
	return e.Err
}

// Refresher coordinates a snapshot refresh: resolve the location, fetch fresh
// data, and replace the stored snapshot in one transaction.
type Refresher struct {
	logger        *slog.Logger
	locations     *store.LocationStore
	forecasts     *store.ForecastStore
	fetcher       Fetcher
	metrics       *metrics.RefreshMetrics // Optional metrics
	defaultAPIKey string

	// Concurrent refreshes of the same location serialize on a per-location
	// mutex; refreshes of different locations proceed independently.
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// RefresherConfig holds the configuration for the Refresher.
type RefresherConfig struct {
	Logger    *slog.Logger
	Locations *store.LocationStore
	Forecasts *store.ForecastStore
	Fetcher   Fetcher
	Metrics   *metrics.RefreshMetrics

	// DefaultAPIKey is the system-wide credential used when a location has no
	// override. Passed in explicitly so tests can inject arbitrary values.
	DefaultAPIKey string
}

// NewRefresher creates a new Refresher instance.
func NewRefresher(cfg *RefresherConfig) (*Refresher, error) {
	if cfg == nil {
		return nil, errors.New("refresher config cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.Locations == nil {
		return nil, errors.New("location store cannot be nil")
	}

	if cfg.Forecasts == nil {
		return nil, errors.New("forecast store cannot be nil")
	}

	if cfg.Fetcher == nil {
		return nil, errors.New("fetcher cannot be nil")
	}

	return &Refresher{
		logger:        cfg.Logger,
		locations:     cfg.Locations,
		forecasts:     cfg.Forecasts,
		fetcher:       cfg.Fetcher,
		metrics:       cfg.Metrics,
		defaultAPIKey: cfg.DefaultAPIKey,
		locks:         make(map[uint]*sync.Mutex),
	}, nil
}

// Refresh fetches the latest forecast for a location, replaces its stored
// snapshot, and returns the fresh rows ordered ascending by timestamp.
// On any failure before or during storage the prior snapshot is preserved
// unchanged.
func (r *Refresher) Refresh(ctx context.Context, locationID uint) ([]store.ForecastPoint, error) {
	lock := r.locationLock(locationID)
	lock.Lock()
	defer lock.Unlock()

	var timer *prometheus.Timer
	if r.metrics != nil {
		timer = prometheus.NewTimer(r.metrics.RefreshDuration)
		defer timer.ObserveDuration()
	}

	loc, err := r.locations.Get(ctx, locationID)
	if err != nil {
		r.trackOutcome("not_found")
		return nil, err
	}

	apiKey := loc.APIKey
	if apiKey == "" {
		apiKey = r.defaultAPIKey
	}
	if apiKey == "" {
		r.trackOutcome("no_api_key")
		return nil, fmt.Errorf("%w: location %d", ErrNoAPIKey, locationID)
	}

	r.logger.Info("refreshing forecast snapshot",
		"location_id", loc.ID,
		"name", loc.Name,
		"latitude", loc.Latitude,
		"longitude", loc.Longitude,
	)

	entries, err := r.fetcher.Fetch(ctx, loc.Latitude, loc.Longitude, apiKey)
	if err != nil {
		r.trackOutcome("fetch_error")
		r.logger.Error("forecast fetch failed", "location_id", loc.ID, "error", err)
		return nil, &FetchFailedError{Err: err}
	}

	points := make([]store.ForecastPoint, len(entries))
	for i, e := range entries {
		points[i] = store.ForecastPoint{
			LocationID:   loc.ID,
			Timestamp:    e.PeriodEnd,
			GHI:          e.GHI,
			GHI10:        e.GHI10,
			GHI90:        e.GHI90,
			EBH:          e.EBH,
			DNI:          e.DNI,
			DNI10:        e.DNI10,
			DNI90:        e.DNI90,
			DHI:          e.DHI,
			AirTemp:      e.AirTemp,
			Zenith:       e.Zenith,
			Azimuth:      e.Azimuth,
			CloudOpacity: e.CloudOpacity,
		}
	}

	stored, err := r.forecasts.ReplaceSnapshot(ctx, loc.ID, points)
	if err != nil {
		r.trackOutcome("storage_error")
		r.logger.Error("snapshot replace failed", "location_id", loc.ID, "error", err)
		return nil, err
	}

	r.trackOutcome("success")
	if r.metrics != nil {
		r.metrics.SnapshotPoints.Observe(float64(len(stored)))
	}

	r.logger.Info("forecast snapshot refreshed", "location_id", loc.ID, "points", len(stored))
	return stored, nil
}

func (r *Refresher) trackOutcome(outcome string) {
	if r.metrics != nil {
		r.metrics.RefreshesTotal.WithLabelValues(outcome).Inc()
	}
}

func (r *Refresher) locationLock(locationID uint) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[locationID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[locationID] = lock
	}
	return lock
}
