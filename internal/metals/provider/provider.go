// Package provider contains one adapter per external price source. Each
// adapter performs its own HTTP calls, validates the response shape, and
// normalizes prices to USD per gram. Any failure, from a network error to a
// malformed payload or missing credential, surfaces as a plain error so the
// fallback chain can move on to the next source. Adapters never panic and
// never return partial data.
package provider

import (
	"context"
	"errors"
	"time"

	"nisabd/internal/metals"
)

// ErrNotConfigured marks an adapter whose credential is absent. It behaves
// like any other unavailability: the chain skips to the next provider.
var ErrNotConfigured = errors.New("provider not configured")

// SpotResult is the normalized outcome of one current-price fetch.
type SpotResult struct {
	GoldPerGram   float64
	SilverPerGram float64
	Timestamp     time.Time
	Source        metals.Source
}

// SpotProvider fetches current gold/silver spot prices.
type SpotProvider interface {
	Name() string
	FetchSpotPrices(ctx context.Context) (*SpotResult, error)
}

// RateProvider fetches a full currency-code to USD-multiplier table.
type RateProvider interface {
	Name() string
	FetchRateTable(ctx context.Context) (*metals.ExchangeRateSnapshot, error)
}

// SeriesProvider fetches a per-day price series for a date range.
type SeriesProvider interface {
	Name() string
	FetchTimeSeries(ctx context.Context, start, end time.Time) ([]metals.HistoricalPoint, error)
}
