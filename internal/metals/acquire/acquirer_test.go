package acquire

import (
	"context"
	"errors"
	"testing"
	"time"

	"nisabd/internal/metals"
	"nisabd/internal/metals/provider"

	"go.uber.org/zap"
)

type stubSpot struct {
	name   string
	result *provider.SpotResult
	err    error
	calls  int
}

func (s *stubSpot) Name() string { return s.name }

func (s *stubSpot) FetchSpotPrices(ctx context.Context) (*provider.SpotResult, error) {
	s.calls++
	return s.result, s.err
}

type stubRates struct {
	name   string
	result *metals.ExchangeRateSnapshot
	err    error
	calls  int
}

func (s *stubRates) Name() string { return s.name }

func (s *stubRates) FetchRateTable(ctx context.Context) (*metals.ExchangeRateSnapshot, error) {
	s.calls++
	return s.result, s.err
}

// go test -v --run TestFallbackChainOrder
func TestFallbackChainOrder(t *testing.T) {
	down := errors.New("connection refused")

	first := &stubSpot{name: "metalpriceapi", err: down}
	second := &stubSpot{name: "goldapi", err: down}
	third := &stubSpot{
		name: "islamicapi",
		result: &provider.SpotResult{
			GoldPerGram:   85.17,
			SilverPerGram: 0.98,
			Timestamp:     time.Now(),
			Source:        metals.SourceIslamicAPI,
		},
	}

	a := New([]provider.SpotProvider{first, second, third}, nil, nil, zap.NewNop())

	got, ok := a.AcquireSpotPrices(context.Background())
	if !ok {
		t.Fatal("expected a result from the third adapter")
	}
	if got.Source != metals.SourceIslamicAPI {
		t.Errorf("result not tagged with winning source: %s", got.Source)
	}
	if first.calls != 1 || second.calls != 1 || third.calls != 1 {
		t.Errorf("chain walked out of order: %d %d %d", first.calls, second.calls, third.calls)
	}
}

// go test -v --run TestFallbackChainFirstWins
func TestFallbackChainFirstWins(t *testing.T) {
	first := &stubSpot{
		name:   "metalpriceapi",
		result: &provider.SpotResult{GoldPerGram: 90, SilverPerGram: 1, Source: metals.SourceMetalPriceAPI},
	}
	second := &stubSpot{name: "goldapi", err: errors.New("should not be called")}

	a := New([]provider.SpotProvider{first, second}, nil, nil, zap.NewNop())

	got, ok := a.AcquireSpotPrices(context.Background())
	if !ok || got.Source != metals.SourceMetalPriceAPI {
		t.Fatalf("expected first adapter to win, got %+v ok=%v", got, ok)
	}
	if second.calls != 0 {
		t.Errorf("second adapter called %d times despite first success", second.calls)
	}
}

// go test -v --run TestFallbackChainExhausted
func TestFallbackChainExhausted(t *testing.T) {
	down := errors.New("timeout")
	a := New(
		[]provider.SpotProvider{&stubSpot{name: "a", err: down}, &stubSpot{name: "b", err: down}},
		[]provider.RateProvider{&stubRates{name: "c", err: down}},
		nil,
		zap.NewNop(),
	)

	if _, ok := a.AcquireSpotPrices(context.Background()); ok {
		t.Error("expected ok=false when every spot adapter fails")
	}
	if _, ok := a.AcquireExchangeRates(context.Background()); ok {
		t.Error("expected ok=false when every rate adapter fails")
	}
	if _, ok := a.AcquireTimeSeries(context.Background(), time.Now().AddDate(0, 0, -7), time.Now()); ok {
		t.Error("expected ok=false with no timeseries adapters")
	}
}
