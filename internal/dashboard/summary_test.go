package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"round/internal/round"
)

func ptr(v float64) *float64 { return &v }

func TestSummarizeConvertsToBaseCurrency(t *testing.T) {
	t.Parallel()

	items := []Item{
		{ID: "a", Asset: round.Asset{Title: "Laptop", CategoryName: "Laptop", Brand: "Apple", PurchasePrice: ptr(1200), PurchaseCurrency: "gbp", Notes: "work"}},
		{ID: "b", Asset: round.Asset{Title: "Camera", CategoryName: "Camera", CurrentEstimatedValue: ptr(500), EstimateCurrency: "USD", PurchasePrice: ptr(900), PurchaseCurrency: "GBP"}},
		{ID: "c", Asset: round.Asset{Title: "Painting", PurchasePrice: ptr(1000), PurchaseCurrency: "JPY"}},
		{ID: "d", Asset: round.Asset{Title: "Chair"}},
	}
	rates := Rates{"USD": 1.25}

	summary := Summarize(items, "gbp", rates, round.StandardRules)

	assert.Equal(t, "GBP", summary.BaseCurrency)
	assert.Equal(t, 4, summary.AssetCount)
	assert.Equal(t, 3, summary.ValuedCount)
	assert.Equal(t, 1, summary.RoundReadyCount)
	assert.InDelta(t, 1600.0, summary.Total, 0.001)
	assert.Equal(t, "£1,600.00", summary.TotalDisplay)
	assert.Equal(t, map[string]float64{"GBP": 1200, "USD": 500, "JPY": 1000}, summary.ByCurrency)
	assert.Equal(t, map[string]float64{"JPY": 1000}, summary.Unconverted)
	assert.Equal(t, 1, summary.IdentityCounts[round.IdentityGood])
	assert.Equal(t, 2, summary.ProfileCounts[round.ProfileDepreciating])

	require.Len(t, summary.Holdings, 4)
	assert.Equal(t, "Camera", summary.Holdings[0].Title)
	assert.True(t, summary.Holdings[0].Estimated)
	assert.Equal(t, "USD", summary.Holdings[0].Currency)
	assert.Nil(t, summary.Holdings[1].Value, "chair has no value")
}

func TestSummarizeDefaultsAndEmpty(t *testing.T) {
	t.Parallel()

	summary := Summarize(nil, "", nil, round.StandardRules)
	assert.Equal(t, round.DefaultCurrency, summary.BaseCurrency)
	assert.Zero(t, summary.Total)
	assert.Empty(t, summary.Holdings)
	assert.NotNil(t, summary.ByCurrency)

	// Assets without a currency are counted in the base currency.
	summary = Summarize([]Item{{ID: "x", Asset: round.Asset{PurchasePrice: ptr(10.10)}}, {ID: "y", Asset: round.Asset{PurchasePrice: ptr(20.20)}}}, "EUR", nil, round.StandardRules)
	assert.InDelta(t, 30.30, summary.Total, 0.0001)
	assert.Equal(t, map[string]float64{"EUR": 30.3}, summary.ByCurrency)
}

func TestCurrentValuePrefersEstimate(t *testing.T) {
	t.Parallel()

	amount, currency, estimated, ok := CurrentValue(round.Asset{CurrentEstimatedValue: ptr(5), PurchasePrice: ptr(9), PurchaseCurrency: "eur"}, "GBP")
	require.True(t, ok)
	assert.True(t, estimated)
	assert.Equal(t, "EUR", currency)
	assert.Equal(t, "5", amount.String())

	_, _, _, ok = CurrentValue(round.Asset{}, "GBP")
	assert.False(t, ok)
}
