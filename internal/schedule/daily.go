// Package schedule drives the in-process daily refresh. It complements the
// external cron endpoint so deployments without a platform scheduler still
// get one provider fetch per day.
package schedule

import (
	"context"
	"time"

	"nisabd/internal/cache"

	"go.uber.org/zap"
)

const refreshTimeout = 3 * time.Minute

type DailyRefresher struct {
	Manager *cache.Manager
	Logger  *zap.Logger
}

// Start runs a refresh immediately, then once at every UTC midnight. The
// loop exits when ctx is cancelled.
func (d *DailyRefresher) Start(ctx context.Context) {
	go func() {
		// Run immediately once at startup
		d.runOnce(ctx)

		// Wait until next UTC midnight
		now := time.Now().UTC()
		nextMidnight := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
		select {
		case <-time.After(time.Until(nextMidnight)):
		case <-ctx.Done():
			return
		}

		// Then run once every 24 hours
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			d.runOnce(ctx)
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (d *DailyRefresher) runOnce(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, refreshTimeout)
	defer cancel()

	started := time.Now()

	prices := d.Manager.RefreshMetals(ctx)
	rates := d.Manager.RefreshExchangeRates(ctx)
	historical := d.Manager.RefreshHistorical(ctx)

	d.Logger.Info("scheduled refresh complete",
		zap.Duration("took", time.Since(started)),
		zap.String("metalsSource", string(prices.Source)),
		zap.String("ratesSource", string(rates.Source)),
		zap.Int("historicalPoints", len(historical.ThirtyDay)))
}
