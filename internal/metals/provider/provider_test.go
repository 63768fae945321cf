package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nisabd/internal/metals"
)

// go test -v --run TestMetalPriceAPISpot
func TestMetalPriceAPISpot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/latest" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Errorf("api key not forwarded")
		}
		w.Write([]byte(`{"success":true,"timestamp":1735689600,"rates":{"XAU":0.0004,"XAG":0.033}}`))
	}))
	defer srv.Close()

	p := NewMetalPriceAPI(srv.URL, "test-key", 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := p.FetchSpotPrices(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 1 / 0.0004 / 31.1034768 = 80.3769...
	if got.GoldPerGram != 80.3769 {
		t.Errorf("gold per gram = %v, want 80.3769", got.GoldPerGram)
	}
	if got.SilverPerGram <= 0 {
		t.Errorf("silver per gram must be positive, got %v", got.SilverPerGram)
	}
	if got.Source != metals.SourceMetalPriceAPI {
		t.Errorf("unexpected source: %s", got.Source)
	}
	if got.Timestamp.Unix() != 1735689600 {
		t.Errorf("timestamp not taken from payload: %v", got.Timestamp)
	}
}

// go test -v --run TestMetalPriceAPIMalformed
func TestMetalPriceAPIMalformed(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"success false", `{"success":false,"rates":{"XAU":0.0004,"XAG":0.033}}`},
		{"missing rates", `{"success":true}`},
		{"missing silver", `{"success":true,"rates":{"XAU":0.0004}}`},
		{"not json", `<html>rate limited</html>`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			p := NewMetalPriceAPI(srv.URL, "test-key", 5*time.Second)
			if _, err := p.FetchSpotPrices(context.Background()); err == nil {
				t.Fatal("expected error for malformed response, got nil")
			}
		})
	}
}

// go test -v --run TestMetalPriceAPIServerError
func TestMetalPriceAPIServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewMetalPriceAPI(srv.URL, "test-key", 5*time.Second)
	if _, err := p.FetchSpotPrices(context.Background()); err == nil {
		t.Fatal("expected error for non-200 status, got nil")
	}
}

// go test -v --run TestMetalPriceAPIMissingKey
func TestMetalPriceAPIMissingKey(t *testing.T) {
	p := NewMetalPriceAPI("https://api.metalpriceapi.com", "", 5*time.Second)

	_, err := p.FetchSpotPrices(context.Background())
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	// Timeseries path must fail the same way
	_, err = p.FetchTimeSeries(context.Background(), time.Now().AddDate(0, 0, -7), time.Now())
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

// go test -v --run TestMetalPriceAPITimeSeries
func TestMetalPriceAPITimeSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("currencies") {
		case "XAU":
			w.Write([]byte(`{"success":true,"rates":{"2025-01-02":{"XAU":0.0004},"2025-01-01":{"XAU":0.0005}}}`))
		case "XAG":
			w.Write([]byte(`{"success":true,"rates":{"2025-01-02":{"XAG":0.033},"2025-01-01":{"XAG":0.034}}}`))
		default:
			t.Errorf("unexpected currencies param: %s", r.URL.Query().Get("currencies"))
		}
	}))
	defer srv.Close()

	p := NewMetalPriceAPI(srv.URL, "test-key", 5*time.Second)

	end := time.Now()
	points, err := p.FetchTimeSeries(context.Background(), end.AddDate(0, 0, -7), end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	// Ascending by date regardless of map iteration order
	if points[0].Date != "2025-01-01" || points[1].Date != "2025-01-02" {
		t.Errorf("points not sorted ascending: %+v", points)
	}
	for _, pt := range points {
		if pt.GoldPrice <= 0 || pt.SilverPrice <= 0 {
			t.Errorf("non-positive price in point %+v", pt)
		}
	}
}

// go test -v --run TestGoldAPISpot
func TestGoldAPISpot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-access-token") != "test-key" {
			t.Errorf("access token not set")
		}
		switch r.URL.Path {
		case "/api/XAU/USD":
			w.Write([]byte(`{"price_gram_24k":85.1234,"timestamp":1735689600}`))
		case "/api/XAG/USD":
			w.Write([]byte(`{"price_gram_24k":0.9812,"timestamp":1735689600}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	p := NewGoldAPI(srv.URL, "test-key", 5*time.Second)

	got, err := p.FetchSpotPrices(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.GoldPerGram != 85.1234 || got.SilverPerGram != 0.9812 {
		t.Errorf("unexpected prices: %+v", got)
	}
	if got.Source != metals.SourceGoldAPI {
		t.Errorf("unexpected source: %s", got.Source)
	}
}

// go test -v --run TestGoldAPIMalformed
func TestGoldAPIMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"invalid token"}`)) // no price_gram_24k
	}))
	defer srv.Close()

	p := NewGoldAPI(srv.URL, "test-key", 5*time.Second)
	if _, err := p.FetchSpotPrices(context.Background()); err == nil {
		t.Fatal("expected error for payload without prices, got nil")
	}
}

// go test -v --run TestIslamicAPISpot
func TestIslamicAPISpot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"code": 200,
			"data": {
				"updated_at": "2025-01-01T00:00:00Z",
				"nisab_thresholds": {
					"gold": {"unit_price": 85.17},
					"silver": {"unit_price": 0.98}
				}
			}
		}`))
	}))
	defer srv.Close()

	p := NewIslamicAPI(srv.URL, "test-key", 5*time.Second)

	got, err := p.FetchSpotPrices(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.GoldPerGram != 85.17 || got.SilverPerGram != 0.98 {
		t.Errorf("unexpected prices: %+v", got)
	}
	if got.Timestamp.Year() != 2025 {
		t.Errorf("updated_at not parsed: %v", got.Timestamp)
	}
}

// go test -v --run TestIslamicAPIBadCode
func TestIslamicAPIBadCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 403, "data": {}}`))
	}))
	defer srv.Close()

	p := NewIslamicAPI(srv.URL, "test-key", 5*time.Second)
	if _, err := p.FetchSpotPrices(context.Background()); err == nil {
		t.Fatal("expected error for non-200 payload code, got nil")
	}
}

// go test -v --run TestExchangeRateAPITable
func TestExchangeRateAPITable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v6/test-key/latest/USD" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"result": "success",
			"time_last_update_unix": 1735689600,
			"conversion_rates": {"USD": 1, "GBP": 0.79, "PKR": 278.5}
		}`))
	}))
	defer srv.Close()

	p := NewExchangeRateAPI(srv.URL, "test-key", 5*time.Second)

	got, err := p.FetchRateTable(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Rates["PKR"] != 278.5 {
		t.Errorf("PKR rate = %v, want 278.5", got.Rates["PKR"])
	}
	if got.Source != metals.SourceExchangeRateAPI {
		t.Errorf("unexpected source: %s", got.Source)
	}
}

// go test -v --run TestExchangeRateAPIMalformed
func TestExchangeRateAPIMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"error","error-type":"invalid-key"}`))
	}))
	defer srv.Close()

	p := NewExchangeRateAPI(srv.URL, "test-key", 5*time.Second)
	if _, err := p.FetchRateTable(context.Background()); err == nil {
		t.Fatal("expected error for missing rates, got nil")
	}
}
