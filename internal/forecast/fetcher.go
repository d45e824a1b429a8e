// Package forecast implements the snapshot refresh routine: fetch irradiation
// data for a location, atomically replace its stored snapshot, and return the
// fresh rows in time order.
package forecast

import (
	"context"
	"time"
)

// Entry is one timestamped irradiation record from the remote feed, prior to
// storage. Numeric fields are pointers; the feed may omit any of them.
type Entry struct {
	PeriodEnd    time.Time
	GHI          *float64
	GHI10        *float64
	GHI90        *float64
	EBH          *float64
	DNI          *float64
	DNI10        *float64
	DNI90        *float64
	DHI          *float64
	AirTemp      *float64
	Zenith       *float64
	Azimuth      *float64
	CloudOpacity *float64
}

// Fetcher abstracts the remote forecast source (Solcast in production).
// Implementations make a single attempt per call; any transport, status, or
// decode problem surfaces as an error and never as a partial result.
type Fetcher interface {
	Fetch(ctx context.Context, latitude, longitude float64, apiKey string) ([]Entry, error)
}
