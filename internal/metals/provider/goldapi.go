package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"nisabd/internal/metals"
)

// GoldAPI is the first fallback (www.goldapi.io). It already quotes a
// per-gram 24k price, so no ounce conversion is needed; one request per
// metal, authenticated via the x-access-token header.
type GoldAPI struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewGoldAPI(baseURL, apiKey string, timeout time.Duration) *GoldAPI {
	return &GoldAPI{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *GoldAPI) Name() string { return string(metals.SourceGoldAPI) }

type goldAPIResponse struct {
	PriceGram24K float64 `json:"price_gram_24k"`
	Timestamp    int64   `json:"timestamp"`
}

func (p *GoldAPI) FetchSpotPrices(ctx context.Context) (*SpotResult, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("goldapi: %w", ErrNotConfigured)
	}

	gold, err := p.fetchMetal(ctx, "XAU")
	if err != nil {
		return nil, err
	}
	silver, err := p.fetchMetal(ctx, "XAG")
	if err != nil {
		return nil, err
	}

	if gold.PriceGram24K <= 0 || silver.PriceGram24K <= 0 {
		return nil, fmt.Errorf("goldapi: non-positive gram price")
	}

	ts := time.Now().UTC()
	if gold.Timestamp > 0 {
		ts = time.Unix(gold.Timestamp, 0).UTC()
	}

	return &SpotResult{
		GoldPerGram:   metals.RoundPrice(gold.PriceGram24K),
		SilverPerGram: metals.RoundPrice(silver.PriceGram24K),
		Timestamp:     ts,
		Source:        metals.SourceGoldAPI,
	}, nil
}

func (p *GoldAPI) fetchMetal(ctx context.Context, symbol string) (*goldAPIResponse, error) {
	endpoint := fmt.Sprintf("%s/api/%s/USD", p.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("x-access-token", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("goldapi error (%d): %s", resp.StatusCode, body)
	}

	var result goldAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &result, nil
}
