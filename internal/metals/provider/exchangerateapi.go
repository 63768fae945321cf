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

// ExchangeRateAPI fetches the full currency table from
// v6.exchangerate-api.com, relative to USD.
type ExchangeRateAPI struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewExchangeRateAPI(baseURL, apiKey string, timeout time.Duration) *ExchangeRateAPI {
	return &ExchangeRateAPI{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *ExchangeRateAPI) Name() string { return string(metals.SourceExchangeRateAPI) }

type exchangeRateResponse struct {
	Result             string             `json:"result"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
	ConversionRates    map[string]float64 `json:"conversion_rates"`
}

func (p *ExchangeRateAPI) FetchRateTable(ctx context.Context) (*metals.ExchangeRateSnapshot, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("exchangerate-api: %w", ErrNotConfigured)
	}

	endpoint := fmt.Sprintf("%s/v6/%s/latest/USD", p.baseURL, p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("exchangerate-api error (%d): %s", resp.StatusCode, body)
	}

	var result exchangeRateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if result.Result != "success" || len(result.ConversionRates) == 0 {
		return nil, fmt.Errorf("exchangerate-api: invalid response shape")
	}

	ts := time.Now().UTC()
	if result.TimeLastUpdateUnix > 0 {
		ts = time.Unix(result.TimeLastUpdateUnix, 0).UTC()
	}

	return &metals.ExchangeRateSnapshot{
		Rates:       result.ConversionRates,
		LastUpdated: ts,
		Source:      metals.SourceExchangeRateAPI,
	}, nil
}
