// Package dashboard aggregates a user's assets into the totals shown on the
// dashboard page.
package dashboard

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"round/internal/round"
)

// Item is one asset as the dashboard sees it.
type Item struct {
	ID    string
	Asset round.Asset
}

// Rates maps a quote currency to units of that currency per one unit of the
// base currency.
type Rates map[string]float64

type Holding struct {
	AssetID   string              `json:"asset_id"`
	Title     string              `json:"title"`
	Category  string              `json:"category"`
	Value     *float64            `json:"value"`
	Currency  string              `json:"currency,omitempty"`
	Display   string              `json:"display,omitempty"`
	Estimated bool                `json:"estimated"`
	Profile   round.ValueProfile  `json:"profile"`
	Identity  round.IdentityLevel `json:"identity"`
	Readiness round.ReadinessTier `json:"readiness"`
}

type Summary struct {
	BaseCurrency    string                      `json:"base_currency"`
	AssetCount      int                         `json:"asset_count"`
	ValuedCount     int                         `json:"valued_count"`
	RoundReadyCount int                         `json:"round_ready_count"`
	Total           float64                     `json:"total"`
	TotalDisplay    string                      `json:"total_display"`
	ByCurrency      map[string]float64          `json:"by_currency"`
	Unconverted     map[string]float64          `json:"unconverted"`
	IdentityCounts  map[round.IdentityLevel]int `json:"identity_counts"`
	ProfileCounts   map[round.ValueProfile]int  `json:"profile_counts"`
	Holdings        []Holding                   `json:"holdings"`
}

// Summarize totals items in baseCurrency. Items in a currency with no rate
// are reported in Unconverted and left out of Total.
func Summarize(items []Item, baseCurrency string, rates Rates, rules round.IdentityRules) Summary {
	base := strings.ToUpper(strings.TrimSpace(baseCurrency))
	if base == "" {
		base = round.DefaultCurrency
	}

	summary := Summary{
		BaseCurrency:   base,
		AssetCount:     len(items),
		ByCurrency:     map[string]float64{},
		Unconverted:    map[string]float64{},
		IdentityCounts: map[round.IdentityLevel]int{},
		ProfileCounts:  map[round.ValueProfile]int{},
		Holdings:       make([]Holding, 0, len(items)),
	}

	total := decimal.Zero
	byCurrency := map[string]decimal.Decimal{}
	unconverted := map[string]decimal.Decimal{}

	for _, item := range items {
		insights := round.Evaluate(item.Asset, rules)
		summary.IdentityCounts[insights.Identity.Level]++
		summary.ProfileCounts[insights.Profile]++
		if insights.Readiness.Ready {
			summary.RoundReadyCount++
		}

		holding := Holding{
			AssetID:   item.ID,
			Title:     item.Asset.Title,
			Category:  item.Asset.CategoryName,
			Profile:   insights.Profile,
			Identity:  insights.Identity.Level,
			Readiness: insights.Readiness.Tier,
		}

		amount, currency, estimated, ok := CurrentValue(item.Asset, base)
		if ok {
			value := amount.InexactFloat64()
			holding.Value = &value
			holding.Currency = currency
			holding.Display = round.FormatMoney(value, currency)
			holding.Estimated = estimated
			summary.ValuedCount++

			byCurrency[currency] = byCurrency[currency].Add(amount)
			if converted, ok := convert(amount, currency, base, rates); ok {
				total = total.Add(converted)
			} else {
				unconverted[currency] = unconverted[currency].Add(amount)
			}
		}
		summary.Holdings = append(summary.Holdings, holding)
	}

	sort.SliceStable(summary.Holdings, func(i, j int) bool {
		return strings.ToLower(summary.Holdings[i].Title) < strings.ToLower(summary.Holdings[j].Title)
	})

	summary.Total = total.Round(2).InexactFloat64()
	summary.TotalDisplay = round.FormatMoney(summary.Total, base)
	for currency, amount := range byCurrency {
		summary.ByCurrency[currency] = amount.Round(2).InexactFloat64()
	}
	for currency, amount := range unconverted {
		summary.Unconverted[currency] = amount.Round(2).InexactFloat64()
	}
	return summary
}

// CurrentValue picks the figure the dashboard shows for an asset: the
// current estimate when set, otherwise the purchase price.
func CurrentValue(a round.Asset, fallbackCurrency string) (decimal.Decimal, string, bool, bool) {
	if a.CurrentEstimatedValue != nil {
		return decimal.NewFromFloat(*a.CurrentEstimatedValue), pickCurrency(fallbackCurrency, a.EstimateCurrency, a.PurchaseCurrency), true, true
	}
	if a.PurchasePrice != nil {
		return decimal.NewFromFloat(*a.PurchasePrice), pickCurrency(fallbackCurrency, a.PurchaseCurrency), false, true
	}
	return decimal.Zero, "", false, false
}

func pickCurrency(fallback string, candidates ...string) string {
	for _, candidate := range candidates {
		if code := strings.ToUpper(strings.TrimSpace(candidate)); code != "" {
			return code
		}
	}
	return fallback
}

func convert(amount decimal.Decimal, currency, base string, rates Rates) (decimal.Decimal, bool) {
	if currency == base {
		return amount, true
	}
	rate, ok := rates[currency]
	if !ok || rate <= 0 {
		return decimal.Zero, false
	}
	return amount.Div(decimal.NewFromFloat(rate)), true
}
