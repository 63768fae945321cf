package metals

import (
	"math"
	"time"
)

// TroyOunceGrams converts precious-metal ounce quotes to per-gram prices.
const TroyOunceGrams = 31.1034768

// Source identifies which external system a snapshot came from.
type Source string

const (
	SourceMetalPriceAPI   Source = "metalpriceapi"
	SourceGoldAPI         Source = "goldapi"
	SourceIslamicAPI      Source = "islamicapi"
	SourceExchangeRateAPI Source = "exchangerate-api"
	SourceFallback        Source = "fallback"
)

// PriceSnapshot is one observation of gold/silver spot prices in USD per
// gram. Change percentages are derived against the previous snapshot at
// write time, not fetched.
type PriceSnapshot struct {
	GoldPricePerGram    float64   `json:"goldPricePerGram"`
	SilverPricePerGram  float64   `json:"silverPricePerGram"`
	GoldChangePercent   float64   `json:"goldPriceChange"`
	SilverChangePercent float64   `json:"silverPriceChange"`
	LastUpdated         time.Time `json:"lastUpdated"`
	Source              Source    `json:"source"`
}

// PreviousPrices keeps the last successfully fetched prices so the next
// refresh can compute a day-over-day change. It is overwritten on every
// successful provider fetch and left alone otherwise.
type PreviousPrices struct {
	Gold   float64   `json:"gold"`
	Silver float64   `json:"silver"`
	Date   time.Time `json:"date"`
}

// ExchangeRateSnapshot maps currency codes to multipliers against USD.
type ExchangeRateSnapshot struct {
	Rates       map[string]float64 `json:"rates"`
	LastUpdated time.Time          `json:"lastUpdated"`
	Source      Source             `json:"source"`
}

// Rate looks up a currency multiplier. Unknown or nonsensical codes resolve
// to 1 so a bad query parameter can never take the page down.
func (s *ExchangeRateSnapshot) Rate(code string) float64 {
	if r, ok := s.Rates[code]; ok && r > 0 {
		return r
	}
	return 1
}

// HistoricalPoint is one calendar day of per-gram prices.
type HistoricalPoint struct {
	Date        string  `json:"date"` // YYYY-MM-DD
	GoldPrice   float64 `json:"goldPrice"`
	SilverPrice float64 `json:"silverPrice"`
}

// HistoricalSeries holds the 7-day and 30-day windows, ascending by date,
// one point per day.
type HistoricalSeries struct {
	SevenDay    []HistoricalPoint `json:"sevenDay"`
	ThirtyDay   []HistoricalPoint `json:"thirtyDay"`
	LastUpdated time.Time         `json:"lastUpdated"`
}

// RoundPrice normalizes a per-gram price to 4 decimal places before storage.
func RoundPrice(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// ChangePercent computes the day-over-day change between two prices, rounded
// to 2 decimal places. A missing or zero previous price yields 0.
func ChangePercent(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	change := (current - previous) / previous * 100
	return math.Round(change*100) / 100
}

// StaticFallback is the last-resort snapshot served when every provider is
// down and no cached value exists.
func StaticFallback(now time.Time) PriceSnapshot {
	return PriceSnapshot{
		GoldPricePerGram:   85.17, // ~$2,650/oz
		SilverPricePerGram: 0.98,  // ~$30.5/oz
		LastUpdated:        now,
		Source:             SourceFallback,
	}
}

// StaticFallbackRates is the rate-table counterpart: the base currency only.
func StaticFallbackRates(now time.Time) ExchangeRateSnapshot {
	return ExchangeRateSnapshot{
		Rates:       map[string]float64{"USD": 1},
		LastUpdated: now,
		Source:      SourceFallback,
	}
}
