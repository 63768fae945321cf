package cache

import (
	"context"
	"sync"
	"time"

	"nisabd/internal/metals"
	"nisabd/internal/metals/acquire"

	"go.uber.org/zap"
)

// Cache keys shared by every server instance. Changing a stored shape is a
// breaking change across all readers.
const (
	KeyMetalsCurrent    = "metals:current"
	KeyMetalsPrevious   = "metals:previous"
	KeyExchangeRates    = "exchange:rates"
	KeyMetalsHistorical = "metals:historical"
)

// FreshFor is the staleness window applied to every cached kind.
const FreshFor = 24 * time.Hour

const backgroundRefreshTimeout = 2 * time.Minute

// Archive is the optional daily price archive behind the cache. A successful
// metals refresh records the day's prices; the historical refresh falls back
// to it when the timeseries provider is down.
type Archive interface {
	SaveDailyPrice(ctx context.Context, date time.Time, gold, silver float64, source string) error
	PricesBetween(ctx context.Context, start, end time.Time) ([]metals.HistoricalPoint, error)
}

// Manager wraps the shared Store with staleness detection and refresh
// orchestration. Metals and exchange rates refresh synchronously when empty
// or stale; the historical series serves stale data immediately and
// refreshes in the background. Store failures degrade to "always refresh",
// never to an error surfaced to callers.
type Manager struct {
	store    Store
	acquirer *acquire.Acquirer
	archive  Archive
	logger   *zap.Logger

	// injectable clock for staleness tests
	now func() time.Time

	// guards at most one concurrent background refresh per key
	mu       sync.Mutex
	inflight map[string]bool
}

func NewManager(store Store, acquirer *acquire.Acquirer, archive Archive, logger *zap.Logger) *Manager {
	return &Manager{
		store:    store,
		acquirer: acquirer,
		archive:  archive,
		logger:   logger,
		now:      time.Now,
		inflight: make(map[string]bool),
	}
}

func (m *Manager) stale(lastUpdated time.Time) bool {
	return m.now().Sub(lastUpdated) > FreshFor
}

// CurrentMetals returns the cached price snapshot, refreshing it first when
// the cache is empty or older than 24 hours. A fresh hit performs no
// outbound calls.
func (m *Manager) CurrentMetals(ctx context.Context) metals.PriceSnapshot {
	var snap metals.PriceSnapshot
	found, err := m.store.Get(ctx, KeyMetalsCurrent, &snap)
	if err != nil {
		m.logger.Warn("metals cache read failed, treating as miss", zap.Error(err))
		found = false
	}

	if found && !m.stale(snap.LastUpdated) {
		return snap
	}

	return m.RefreshMetals(ctx)
}

// RefreshMetals runs the fallback chain and persists the result. On success
// it computes day-over-day change against the previous snapshot, replaces
// both keys, and archives the day's prices. When the whole chain is down it
// serves the cached value regardless of age, or the static defaults with a
// cold cache. It never fails.
func (m *Manager) RefreshMetals(ctx context.Context) metals.PriceSnapshot {
	result, ok := m.acquirer.AcquireSpotPrices(ctx)
	if !ok {
		var cached metals.PriceSnapshot
		if found, err := m.store.Get(ctx, KeyMetalsCurrent, &cached); err == nil && found {
			m.logger.Warn("degraded mode: serving cached metal prices",
				zap.Time("lastUpdated", cached.LastUpdated),
				zap.String("source", string(cached.Source)))
			return cached
		}

		snap := metals.StaticFallback(m.now().UTC())
		m.logger.Error("degraded mode: no cache available, serving static fallback prices")
		m.setBestEffort(ctx, KeyMetalsCurrent, snap)
		return snap
	}

	snap := metals.PriceSnapshot{
		GoldPricePerGram:   result.GoldPerGram,
		SilverPricePerGram: result.SilverPerGram,
		LastUpdated:        m.now().UTC(),
		Source:             result.Source,
	}

	var prev metals.PreviousPrices
	if found, err := m.store.Get(ctx, KeyMetalsPrevious, &prev); err == nil && found {
		snap.GoldChangePercent = metals.ChangePercent(snap.GoldPricePerGram, prev.Gold)
		snap.SilverChangePercent = metals.ChangePercent(snap.SilverPricePerGram, prev.Silver)
	}

	m.setBestEffort(ctx, KeyMetalsCurrent, snap)

	// The previous-prices key moves forward only on a successful provider
	// fetch, never on cache hits and never on the static fallback.
	m.setBestEffort(ctx, KeyMetalsPrevious, metals.PreviousPrices{
		Gold:   snap.GoldPricePerGram,
		Silver: snap.SilverPricePerGram,
		Date:   snap.LastUpdated,
	})

	if m.archive != nil {
		if err := m.archive.SaveDailyPrice(ctx, snap.LastUpdated, snap.GoldPricePerGram, snap.SilverPricePerGram, string(snap.Source)); err != nil {
			m.logger.Warn("daily price archive write failed", zap.Error(err))
		}
	}

	return snap
}

// ExchangeRates returns the cached rate table, refreshing synchronously when
// empty or stale.
func (m *Manager) ExchangeRates(ctx context.Context) metals.ExchangeRateSnapshot {
	var snap metals.ExchangeRateSnapshot
	found, err := m.store.Get(ctx, KeyExchangeRates, &snap)
	if err != nil {
		m.logger.Warn("exchange rates cache read failed, treating as miss", zap.Error(err))
		found = false
	}

	if found && !m.stale(snap.LastUpdated) {
		return snap
	}

	return m.RefreshExchangeRates(ctx)
}

// RefreshExchangeRates runs the rate-table chain and persists the result,
// with the same degraded-mode ladder as RefreshMetals.
func (m *Manager) RefreshExchangeRates(ctx context.Context) metals.ExchangeRateSnapshot {
	result, ok := m.acquirer.AcquireExchangeRates(ctx)
	if !ok {
		var cached metals.ExchangeRateSnapshot
		if found, err := m.store.Get(ctx, KeyExchangeRates, &cached); err == nil && found {
			m.logger.Warn("degraded mode: serving cached exchange rates",
				zap.Time("lastUpdated", cached.LastUpdated))
			return cached
		}

		snap := metals.StaticFallbackRates(m.now().UTC())
		m.logger.Error("degraded mode: no cache available, serving base currency only")
		m.setBestEffort(ctx, KeyExchangeRates, snap)
		return snap
	}

	snap := *result
	snap.LastUpdated = m.now().UTC()
	m.setBestEffort(ctx, KeyExchangeRates, snap)
	return snap
}

// Historical returns the cached 7/30-day series. An empty cache refreshes
// synchronously; a stale one is served as-is while a single background
// refresh updates it for subsequent callers.
func (m *Manager) Historical(ctx context.Context) metals.HistoricalSeries {
	var series metals.HistoricalSeries
	found, err := m.store.Get(ctx, KeyMetalsHistorical, &series)
	if err != nil {
		m.logger.Warn("historical cache read failed, treating as miss", zap.Error(err))
		found = false
	}

	if !found {
		return m.RefreshHistorical(ctx)
	}

	if m.stale(series.LastUpdated) {
		m.refreshInBackground(KeyMetalsHistorical, func(bg context.Context) {
			m.RefreshHistorical(bg)
		})
	}

	return series
}

// RefreshHistorical rebuilds the 7/30-day series: from the timeseries
// provider first, from the daily price archive when the provider is down,
// and otherwise the cached copy regardless of age. With nothing available it
// returns an empty series without caching it, so the next caller retries.
func (m *Manager) RefreshHistorical(ctx context.Context) metals.HistoricalSeries {
	now := m.now().UTC()
	start30 := now.AddDate(0, 0, -30)

	points, ok := m.acquirer.AcquireTimeSeries(ctx, start30, now)

	if !ok && m.archive != nil {
		archived, err := m.archive.PricesBetween(ctx, start30, now)
		if err != nil {
			m.logger.Warn("daily price archive read failed", zap.Error(err))
		} else if len(archived) > 0 {
			m.logger.Info("historical series rebuilt from archive", zap.Int("points", len(archived)))
			points, ok = archived, true
		}
	}

	if !ok {
		var cached metals.HistoricalSeries
		if found, err := m.store.Get(ctx, KeyMetalsHistorical, &cached); err == nil && found {
			m.logger.Warn("degraded mode: serving cached historical series",
				zap.Time("lastUpdated", cached.LastUpdated))
			return cached
		}

		m.logger.Error("degraded mode: no historical data available, serving empty series")
		return metals.HistoricalSeries{
			SevenDay:    []metals.HistoricalPoint{},
			ThirtyDay:   []metals.HistoricalPoint{},
			LastUpdated: now,
		}
	}

	sevenDayFloor := now.AddDate(0, 0, -7).Format("2006-01-02")
	sevenDay := make([]metals.HistoricalPoint, 0, 8)
	for _, pt := range points {
		if pt.Date >= sevenDayFloor {
			sevenDay = append(sevenDay, pt)
		}
	}

	series := metals.HistoricalSeries{
		SevenDay:    sevenDay,
		ThirtyDay:   points,
		LastUpdated: now,
	}
	m.setBestEffort(ctx, KeyMetalsHistorical, series)
	return series
}

func (m *Manager) setBestEffort(ctx context.Context, key string, value any) {
	if err := m.store.Set(ctx, key, value); err != nil {
		m.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// refreshInBackground starts fn on a detached goroutine unless a refresh for
// the same key is already running. The caller never waits on it; failures
// are the refresh function's to log.
func (m *Manager) refreshInBackground(key string, fn func(context.Context)) {
	m.mu.Lock()
	if m.inflight[key] {
		m.mu.Unlock()
		return
	}
	m.inflight[key] = true
	m.mu.Unlock()

	go func() {
		defer func() {
			m.mu.Lock()
			delete(m.inflight, key)
			m.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), backgroundRefreshTimeout)
		defer cancel()
		fn(ctx)
	}()
}
