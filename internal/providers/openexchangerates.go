package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultOpenExchangeRatesBaseURL = "https://openexchangerates.org/api"

type OpenExchangeRatesProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type openExchangeRatesResponse struct {
	Base      string             `json:"base"`
	Timestamp int64              `json:"timestamp"`
	Rates     map[string]float64 `json:"rates"`
}

func NewOpenExchangeRatesProvider(baseURL, apiKey string) *OpenExchangeRatesProvider {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultOpenExchangeRatesBaseURL
	}
	return &OpenExchangeRatesProvider{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(apiKey),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *OpenExchangeRatesProvider) FetchRates(ctx context.Context, base string, quotes []string) ([]Rate, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" {
		return nil, fmt.Errorf("openexchangerates: base currency is required")
	}
	wanted := normalizeCodes(quotes)
	if len(wanted) == 0 {
		return nil, nil
	}
	if p.apiKey == "" {
		return nil, fmt.Errorf("openexchangerates api key is not set")
	}

	endpoint, err := url.Parse(p.baseURL + "/latest.json")
	if err != nil {
		return nil, err
	}
	query := endpoint.Query()
	query.Set("app_id", p.apiKey)
	query.Set("base", base)
	query.Set("symbols", strings.Join(wanted, ","))
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("openexchangerates error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload openExchangeRatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode openexchangerates response: %w", err)
	}
	return toRates(base, wanted, payload.Rates, "openexchangerates"), nil
}
