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

const defaultFrankfurterBaseURL = "https://api.frankfurter.app"

type FrankfurterProvider struct {
	baseURL string
	client  *http.Client
}

type frankfurterResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

func NewFrankfurterProvider(baseURL string) *FrankfurterProvider {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultFrankfurterBaseURL
	}
	return &FrankfurterProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *FrankfurterProvider) FetchRates(ctx context.Context, base string, quotes []string) ([]Rate, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" {
		return nil, fmt.Errorf("frankfurter: base currency is required")
	}
	wanted := normalizeCodes(quotes)
	if len(wanted) == 0 {
		return nil, nil
	}

	endpoint, err := url.Parse(p.baseURL + "/latest")
	if err != nil {
		return nil, err
	}
	query := endpoint.Query()
	query.Set("from", base)
	query.Set("to", strings.Join(wanted, ","))
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
		return nil, fmt.Errorf("frankfurter error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload frankfurterResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode frankfurter response: %w", err)
	}
	if payload.Base != "" && !strings.EqualFold(payload.Base, base) {
		return nil, fmt.Errorf("frankfurter returned base %q, wanted %q", payload.Base, base)
	}
	return toRates(base, wanted, payload.Rates, "frankfurter"), nil
}
