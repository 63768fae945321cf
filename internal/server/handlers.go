package server

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"nisabd/internal/metals"
	"nisabd/internal/nisab"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetNisab serves the current thresholds, optionally converted with the
// caller-supplied exchange rate.
func (h *Handler) GetNisab(c *gin.Context) {
	currency := c.DefaultQuery("currency", "USD")
	rate, err := strconv.ParseFloat(c.DefaultQuery("rate", "1"), 64)
	if err != nil || rate <= 0 {
		rate = 1
	}

	snap := h.manager.CurrentMetals(c.Request.Context())
	c.JSON(http.StatusOK, nisab.Compute(snap, currency, rate))
}

func (h *Handler) GetExchangeRates(c *gin.Context) {
	snap := h.manager.ExchangeRates(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"rates":       snap.Rates,
		"lastUpdated": snap.LastUpdated,
		"source":      snap.Source,
	})
}

// GetHistorical serves the 7d or 30d nisab series in the requested currency.
func (h *Handler) GetHistorical(c *gin.Context) {
	timeframe := c.DefaultQuery("timeframe", "7d")
	currency := c.DefaultQuery("currency", "USD")
	rate, err := strconv.ParseFloat(c.DefaultQuery("rate", "1"), 64)
	if err != nil || rate <= 0 {
		rate = 1
	}

	series := h.manager.Historical(c.Request.Context())

	points := series.SevenDay
	if timeframe == "30d" {
		points = series.ThirtyDay
	}

	type seriesPoint struct {
		Date        string  `json:"date"`
		GoldNisab   float64 `json:"goldNisab"`
		SilverNisab float64 `json:"silverNisab"`
	}

	data := make([]seriesPoint, 0, len(points))
	for _, pt := range points {
		data = append(data, seriesPoint{
			Date:        pt.Date,
			GoldNisab:   round2(pt.GoldPrice * nisab.GoldNisabGrams * rate),
			SilverNisab: round2(pt.SilverPrice * nisab.SilverNisabGrams * rate),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"data":        data,
		"currency":    currency,
		"lastUpdated": series.LastUpdated,
	})
}

// DailyUpdate is the refresh entry point for the platform scheduler. It
// refreshes all three cached kinds and reports which sections degraded.
func (h *Handler) DailyUpdate(c *gin.Context) {
	if c.GetHeader("Authorization") != "Bearer "+h.cronSecret || h.cronSecret == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ctx := c.Request.Context()
	started := time.Now().UTC()

	metalsSnap := h.manager.RefreshMetals(ctx)
	ratesSnap := h.manager.RefreshExchangeRates(ctx)
	historical := h.manager.RefreshHistorical(ctx)

	// A fallback source means that section's chain was exhausted.
	var degraded []string
	if metalsSnap.Source == metals.SourceFallback {
		degraded = append(degraded, "metal prices")
	}
	if ratesSnap.Source == metals.SourceFallback {
		degraded = append(degraded, "exchange rates")
	}
	if len(historical.ThirtyDay) == 0 {
		degraded = append(degraded, "historical data")
	}

	h.logger.Info("daily update complete",
		zap.Duration("took", time.Since(started)),
		zap.Strings("degraded", degraded))

	c.JSON(http.StatusOK, gin.H{
		"success":   len(degraded) == 0,
		"timestamp": started,
		"results": gin.H{
			"metalPrices":   metalsSnap,
			"exchangeRates": ratesSnap,
			"historical":    historical,
		},
		"degraded": degraded,
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
