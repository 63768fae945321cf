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

// IslamicAPI is the second fallback (islamicapi.com). It serves pre-derived
// nisab threshold unit prices in USD per gram, so the values pass through
// with rounding only.
type IslamicAPI struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewIslamicAPI(baseURL, apiKey string, timeout time.Duration) *IslamicAPI {
	return &IslamicAPI{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *IslamicAPI) Name() string { return string(metals.SourceIslamicAPI) }

type islamicAPIResponse struct {
	Code int `json:"code"`
	Data struct {
		UpdatedAt       string `json:"updated_at"`
		NisabThresholds struct {
			Gold struct {
				UnitPrice float64 `json:"unit_price"`
			} `json:"gold"`
			Silver struct {
				UnitPrice float64 `json:"unit_price"`
			} `json:"silver"`
		} `json:"nisab_thresholds"`
	} `json:"data"`
}

func (p *IslamicAPI) FetchSpotPrices(ctx context.Context) (*SpotResult, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("islamicapi: %w", ErrNotConfigured)
	}

	endpoint := fmt.Sprintf(
		"%s/api/v1/zakat-nisab/?standard=classical&currency=usd&unit=g&api_key=%s",
		p.baseURL, p.apiKey,
	)

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
		return nil, fmt.Errorf("islamicapi error (%d): %s", resp.StatusCode, body)
	}

	var result islamicAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if result.Code != 200 {
		return nil, fmt.Errorf("islamicapi: unexpected code %d", result.Code)
	}

	gold := result.Data.NisabThresholds.Gold.UnitPrice
	silver := result.Data.NisabThresholds.Silver.UnitPrice
	if gold <= 0 || silver <= 0 {
		return nil, fmt.Errorf("islamicapi: missing nisab thresholds")
	}

	ts := time.Now().UTC()
	if parsed, err := time.Parse(time.RFC3339, result.Data.UpdatedAt); err == nil {
		ts = parsed.UTC()
	}

	return &SpotResult{
		GoldPerGram:   metals.RoundPrice(gold),
		SilverPerGram: metals.RoundPrice(silver),
		Timestamp:     ts,
		Source:        metals.SourceIslamicAPI,
	}, nil
}
