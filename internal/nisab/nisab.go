// Package nisab derives Islamic wealth thresholds from per-gram metal
// prices.
package nisab

import (
	"math"
	"time"

	"nisabd/internal/metals"
)

// Threshold weights in grams, classical standard.
const (
	GoldNisabGrams   = 87.48
	SilverNisabGrams = 612.36

	// Mahr al-Fatimah: 500 dirhams x 2.975 g silver
	MahrAlFatimahGrams = 1487.5

	// Diyyah: approximately 1000 gold dinars
	DiyyahGoldGrams = 4374
)

// Values are the computed thresholds in the requested currency.
type Values struct {
	NisabGold          float64       `json:"nisabGold"`
	NisabSilver        float64       `json:"nisabSilver"`
	Dowry              float64       `json:"dowry"`
	Diyyah             float64       `json:"diyyah"`
	Currency           string        `json:"currency"`
	GoldPricePerGram   float64       `json:"goldPricePerGram"`
	SilverPricePerGram float64       `json:"silverPricePerGram"`
	GoldPriceChange    float64       `json:"goldPriceChange"`
	SilverPriceChange  float64       `json:"silverPriceChange"`
	LastUpdated        string        `json:"lastUpdated"`
	Source             metals.Source `json:"source"`
}

// Compute converts a USD price snapshot into threshold values. rate is the
// currency multiplier against USD; callers pass 1 for USD.
func Compute(snap metals.PriceSnapshot, currency string, rate float64) Values {
	if rate <= 0 {
		rate = 1
	}

	return Values{
		NisabGold:          round2(snap.GoldPricePerGram * GoldNisabGrams * rate),
		NisabSilver:        round2(snap.SilverPricePerGram * SilverNisabGrams * rate),
		Dowry:              round2(snap.SilverPricePerGram * MahrAlFatimahGrams * rate),
		Diyyah:             round2(snap.GoldPricePerGram * DiyyahGoldGrams * rate),
		Currency:           currency,
		GoldPricePerGram:   round2(snap.GoldPricePerGram * rate),
		SilverPricePerGram: round2(snap.SilverPricePerGram * rate),
		GoldPriceChange:    snap.GoldChangePercent,
		SilverPriceChange:  snap.SilverChangePercent,
		LastUpdated:        snap.LastUpdated.Format(time.RFC3339),
		Source:             snap.Source,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
