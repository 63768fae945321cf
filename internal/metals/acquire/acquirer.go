// Package acquire walks a priority-ordered fallback chain of provider
// adapters. The first success wins; results are never merged across sources.
package acquire

import (
	"context"
	"time"

	"nisabd/internal/metals"
	"nisabd/internal/metals/provider"

	"go.uber.org/zap"
)

type Acquirer struct {
	spot   []provider.SpotProvider
	rates  []provider.RateProvider
	series []provider.SeriesProvider
	logger *zap.Logger
}

// New builds an acquirer over the given adapters, each slice in priority
// order. Any slice may be empty.
func New(spot []provider.SpotProvider, rates []provider.RateProvider, series []provider.SeriesProvider, logger *zap.Logger) *Acquirer {
	return &Acquirer{
		spot:   spot,
		rates:  rates,
		series: series,
		logger: logger,
	}
}

// AcquireSpotPrices returns the first adapter's normalized result, tagged
// with that adapter's source identity. ok is false when the whole chain is
// unavailable; the caller decides between cached data and static defaults.
func (a *Acquirer) AcquireSpotPrices(ctx context.Context) (*provider.SpotResult, bool) {
	for _, p := range a.spot {
		result, err := p.FetchSpotPrices(ctx)
		if err != nil {
			a.logger.Warn("spot provider unavailable",
				zap.String("provider", p.Name()),
				zap.Error(err))
			continue
		}
		return result, true
	}

	a.logger.Warn("all spot price providers unavailable", zap.Int("tried", len(a.spot)))
	return nil, false
}

// AcquireExchangeRates walks the rate-table chain.
func (a *Acquirer) AcquireExchangeRates(ctx context.Context) (*metals.ExchangeRateSnapshot, bool) {
	for _, p := range a.rates {
		result, err := p.FetchRateTable(ctx)
		if err != nil {
			a.logger.Warn("rate provider unavailable",
				zap.String("provider", p.Name()),
				zap.Error(err))
			continue
		}
		return result, true
	}

	a.logger.Warn("all exchange rate providers unavailable", zap.Int("tried", len(a.rates)))
	return nil, false
}

// AcquireTimeSeries walks the timeseries chain for the given date range.
func (a *Acquirer) AcquireTimeSeries(ctx context.Context, start, end time.Time) ([]metals.HistoricalPoint, bool) {
	for _, p := range a.series {
		points, err := p.FetchTimeSeries(ctx, start, end)
		if err != nil {
			a.logger.Warn("timeseries provider unavailable",
				zap.String("provider", p.Name()),
				zap.Error(err))
			continue
		}
		if len(points) == 0 {
			a.logger.Warn("timeseries provider returned no data",
				zap.String("provider", p.Name()))
			continue
		}
		return points, true
	}

	a.logger.Warn("all timeseries providers unavailable", zap.Int("tried", len(a.series)))
	return nil, false
}
