package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"nisabd/internal/metals"
)

// MetalPriceAPI is the primary source (api.metalpriceapi.com). It quotes XAU
// and XAG as ounces-per-USD, so normalization inverts the rate and divides
// by grams per troy ounce. It is also the only source with a timeframe
// endpoint, which backs the historical series.
type MetalPriceAPI struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewMetalPriceAPI(baseURL, apiKey string, timeout time.Duration) *MetalPriceAPI {
	return &MetalPriceAPI{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *MetalPriceAPI) Name() string { return string(metals.SourceMetalPriceAPI) }

type metalPriceLatestResponse struct {
	Success   bool               `json:"success"`
	Timestamp int64              `json:"timestamp"`
	Rates     map[string]float64 `json:"rates"`
}

func (p *MetalPriceAPI) FetchSpotPrices(ctx context.Context) (*SpotResult, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("metalpriceapi: %w", ErrNotConfigured)
	}

	endpoint := fmt.Sprintf("%s/v1/latest?api_key=%s&base=USD&currencies=XAU,XAG", p.baseURL, p.apiKey)

	var result metalPriceLatestResponse
	if err := p.getJSON(ctx, endpoint, &result); err != nil {
		return nil, err
	}

	// Validate shape before trusting anything
	if !result.Success || result.Rates == nil {
		return nil, fmt.Errorf("metalpriceapi: invalid response shape")
	}

	xau, xag := result.Rates["XAU"], result.Rates["XAG"]
	if xau <= 0 || xag <= 0 {
		return nil, fmt.Errorf("metalpriceapi: missing XAU/XAG rates")
	}

	ts := time.Now().UTC()
	if result.Timestamp > 0 {
		ts = time.Unix(result.Timestamp, 0).UTC()
	}

	return &SpotResult{
		GoldPerGram:   metals.RoundPrice(1 / xau / metals.TroyOunceGrams),
		SilverPerGram: metals.RoundPrice(1 / xag / metals.TroyOunceGrams),
		Timestamp:     ts,
		Source:        metals.SourceMetalPriceAPI,
	}, nil
}

type metalPriceTimeframeResponse struct {
	Success bool                          `json:"success"`
	Rates   map[string]map[string]float64 `json:"rates"`
}

// FetchTimeSeries queries the timeframe endpoint once per metal (the free
// plan rejects multi-currency timeframe requests) and merges the results by
// date, ascending.
func (p *MetalPriceAPI) FetchTimeSeries(ctx context.Context, start, end time.Time) ([]metals.HistoricalPoint, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("metalpriceapi: %w", ErrNotConfigured)
	}

	gold, err := p.fetchTimeframe(ctx, "XAU", start, end)
	if err != nil {
		return nil, err
	}
	silver, err := p.fetchTimeframe(ctx, "XAG", start, end)
	if err != nil {
		return nil, err
	}

	points := make([]metals.HistoricalPoint, 0, len(gold))
	for date, xau := range gold {
		xag, ok := silver[date]
		if !ok || xau <= 0 || xag <= 0 {
			continue
		}
		points = append(points, metals.HistoricalPoint{
			Date:        date,
			GoldPrice:   metals.RoundPrice(1 / xau / metals.TroyOunceGrams),
			SilverPrice: metals.RoundPrice(1 / xag / metals.TroyOunceGrams),
		})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	return points, nil
}

func (p *MetalPriceAPI) fetchTimeframe(ctx context.Context, currency string, start, end time.Time) (map[string]float64, error) {
	endpoint := fmt.Sprintf(
		"%s/v1/timeframe?api_key=%s&start_date=%s&end_date=%s&base=USD&currencies=%s",
		p.baseURL,
		p.apiKey,
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
		currency,
	)

	var result metalPriceTimeframeResponse
	if err := p.getJSON(ctx, endpoint, &result); err != nil {
		return nil, err
	}

	if !result.Success || result.Rates == nil {
		return nil, fmt.Errorf("metalpriceapi: invalid timeframe response shape")
	}

	rates := make(map[string]float64, len(result.Rates))
	for date, byCurrency := range result.Rates {
		rates[date] = byCurrency[currency]
	}

	return rates, nil
}

func (p *MetalPriceAPI) getJSON(ctx context.Context, endpoint string, dest any) error {
	// Construct the GET request with context for timeout/cancel support
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("metalpriceapi error (%d): %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
