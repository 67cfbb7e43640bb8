package providers

import (
	"context"
	"strings"
)

// Rate is the number of quote units one base unit buys.
type Rate struct {
	Base     string
	Quote    string
	Rate     float64
	Provider string
}

type RateProvider interface {
	FetchRates(ctx context.Context, base string, quotes []string) ([]Rate, error)
}

func normalizeCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

func toRates(base string, wanted []string, values map[string]float64, provider string) []Rate {
	rates := make([]Rate, 0, len(wanted))
	for _, quote := range wanted {
		value, ok := values[quote]
		if !ok || value <= 0 {
			continue
		}
		rates = append(rates, Rate{Base: base, Quote: quote, Rate: value, Provider: provider})
	}
	return rates
}
