// Package solcast provides the HTTP client for the Solcast world radiation
// forecast API. It implements the forecast.Fetcher contract.
package solcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gridwatch/solarcast/internal/forecast"
	"github.com/gridwatch/solarcast/pkg/metrics"
)

// DefaultBaseURL is the production Solcast API endpoint.
const DefaultBaseURL = "https://api.solcast.com.au"

const forecastsPath = "/world_radiation/forecasts"

// defaultTimeout bounds the outbound call when no custom client is supplied.
const defaultTimeout = 30 * time.Second

var (
	// ErrMissingAPIKey is returned when Fetch is called with an empty credential.
	ErrMissingAPIKey = errors.New("api key cannot be empty")

	// ErrMissingForecasts is returned when the response body decodes but
	// carries no forecasts list. An empty list is not an error.
	ErrMissingForecasts = errors.New("response has no forecasts list")
)

// StatusError reports a non-success HTTP status from the Solcast API.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("solcast returned status %d", e.Code)
}

// Client calls the Solcast forecast endpoint. A single attempt per call; no
// retry or backoff.
type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	metrics    *metrics.RefreshMetrics // Optional metrics
	baseURL    string
}

// ClientConfig holds the configuration for the Client.
type ClientConfig struct {
	Logger *slog.Logger

	// BaseURL overrides the production endpoint (used by tests).
	BaseURL string

	// HTTPClient overrides the default client and its timeout.
	HTTPClient *http.Client

	Metrics *metrics.RefreshMetrics
}

// NewClient creates a new Solcast API client.
func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("client config cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		logger:     cfg.Logger,
		httpClient: httpClient,
		metrics:    cfg.Metrics,
		baseURL:    baseURL,
	}, nil
}

// entryPayload mirrors the wire shape of one forecast element.
type entryPayload struct {
	PeriodEnd    string   `json:"period_end"`
	GHI          *float64 `json:"ghi"`
	GHI90        *float64 `json:"ghi90"`
	GHI10        *float64 `json:"ghi10"`
	EBH          *float64 `json:"ebh"`
	DNI          *float64 `json:"dni"`
	DNI10        *float64 `json:"dni10"`
	DNI90        *float64 `json:"dni90"`
	DHI          *float64 `json:"dhi"`
	AirTemp      *float64 `json:"air_temp"`
	Zenith       *float64 `json:"zenith"`
	Azimuth      *float64 `json:"azimuth"`
	CloudOpacity *float64 `json:"cloud_opacity"`
}

// Fetch calls the forecast endpoint for the given coordinates and returns the
// parsed entries in feed order. Any transport failure, non-success status, or
// malformed body surfaces as an error; storage is never involved here.
func (c *Client) Fetch(ctx context.Context, latitude, longitude float64, apiKey string) ([]forecast.Entry, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var timer *prometheus.Timer
	if c.metrics != nil {
		timer = prometheus.NewTimer(c.metrics.FetchDuration)
		defer timer.ObserveDuration()
	}

	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	values.Set("api_key", apiKey)
	values.Set("format", "json")

	u := fmt.Sprintf("%s%s?%s", c.baseURL, forecastsPath, values.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("fetching forecast", "latitude", latitude, "longitude", longitude)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.trackFetchError("transport")
		return nil, fmt.Errorf("forecast request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.trackFetchError("status")
		return nil, &StatusError{Code: resp.StatusCode}
	}

	// Forecasts is a pointer so an absent or null list is distinguishable
	// from a valid empty one.
	var payload struct {
		Forecasts *[]entryPayload `json:"forecasts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.trackFetchError("decode")
		return nil, fmt.Errorf("failed to decode forecast response: %w", err)
	}
	if payload.Forecasts == nil {
		c.trackFetchError("malformed")
		return nil, ErrMissingForecasts
	}

	entries := make([]forecast.Entry, 0, len(*payload.Forecasts))
	for i, e := range *payload.Forecasts {
		ts, err := time.Parse(time.RFC3339, e.PeriodEnd)
		if err != nil {
			c.trackFetchError("malformed")
			return nil, fmt.Errorf("invalid period_end in entry %d: %w", i, err)
		}

		entries = append(entries, forecast.Entry{
			PeriodEnd:    ts.UTC(),
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
		})
	}

	c.logger.Debug("forecast fetched", "entries", len(entries))
	return entries, nil
}

func (c *Client) trackFetchError(class string) {
	if c.metrics != nil {
		c.metrics.FetchErrors.WithLabelValues(class).Inc()
	}
}
