package metals

import (
	"testing"
	"time"
)

// go test -v --run TestChangePercent
func TestChangePercent(t *testing.T) {
	cases := []struct {
		name     string
		current  float64
		previous float64
		want     float64
	}{
		{"up 10 percent", 110, 100, 10.0},
		{"down 10 percent", 90, 100, -10.0},
		{"zero previous", 85.17, 0, 0},
		{"rounded to 2 places", 100.567, 100, 0.57},
		{"unchanged", 42.42, 42.42, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ChangePercent(tc.current, tc.previous)
			if got != tc.want {
				t.Errorf("ChangePercent(%v, %v) = %v, want %v", tc.current, tc.previous, got, tc.want)
			}
		})
	}
}

// go test -v --run TestRoundPrice
func TestRoundPrice(t *testing.T) {
	if got := RoundPrice(85.123456); got != 85.1235 {
		t.Errorf("RoundPrice(85.123456) = %v, want 85.1235", got)
	}
	if got := RoundPrice(0.98); got != 0.98 {
		t.Errorf("RoundPrice(0.98) = %v, want 0.98", got)
	}

	// Troy ounce conversion rounds to 4 places
	perGram := RoundPrice(2650.0 / TroyOunceGrams)
	if perGram != 85.1995 {
		t.Errorf("2650/oz per gram = %v, want 85.1995", perGram)
	}
}

// go test -v --run TestStaticFallback
func TestStaticFallback(t *testing.T) {
	now := time.Now()
	snap := StaticFallback(now)

	if snap.GoldPricePerGram <= 0 || snap.SilverPricePerGram <= 0 {
		t.Fatalf("fallback prices must be positive: %+v", snap)
	}
	if snap.GoldChangePercent != 0 || snap.SilverChangePercent != 0 {
		t.Errorf("fallback change must be 0: %+v", snap)
	}
	if snap.Source != SourceFallback {
		t.Errorf("unexpected source: %s", snap.Source)
	}
	if !snap.LastUpdated.Equal(now) {
		t.Errorf("unexpected timestamp: %s", snap.LastUpdated)
	}
}

// go test -v --run TestRateLookup
func TestRateLookup(t *testing.T) {
	snap := ExchangeRateSnapshot{Rates: map[string]float64{"USD": 1, "GBP": 0.79}}

	if got := snap.Rate("GBP"); got != 0.79 {
		t.Errorf("Rate(GBP) = %v, want 0.79", got)
	}

	// Absent codes must not blow up lookups; they resolve 1:1
	if got := snap.Rate("XYZ"); got != 1 {
		t.Errorf("Rate(XYZ) = %v, want 1", got)
	}
}
