package round

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// The rates, floors, caps and multiplier tables below are placeholders for a
// demo estimate. They are not derived from market data.
const (
	DefaultCurrency  = "GBP"
	defaultBasePrice = 100.0
	daysPerYear      = 365.25
	secondsPerDay    = 24 * 60 * 60

	appreciationRate = 0.04
	appreciationCap  = 3.0

	earlyDepreciationRate  = 0.25
	earlyDepreciationYears = 3.0
	lateDepreciationRate   = 0.10
	depreciationFloor      = 0.10

	neutralDecayRate = 0.10
	neutralFloor     = 0.30

	conditionUnknown = "unknown"
)

var softConditionMultipliers = map[string]float64{
	"like_new":  1.05,
	"excellent": 1.05,
	"good":      1.0,
	"fair":      0.97,
	"poor":      0.93,
	"unknown":   0.98,
}

var standardConditionMultipliers = map[string]float64{
	"like_new":  1.0,
	"excellent": 1.05,
	"good":      0.9,
	"fair":      0.8,
	"poor":      0.65,
	"unknown":   0.85,
}

var valuationSources = map[ValueProfile]string{
	ProfileAppreciating: "Rule-based estimate: appreciating asset (4% yearly growth, capped at 3x purchase price)",
	ProfileDepreciating: "Rule-based estimate: depreciating asset (25% yearly for 3 years, then 10% yearly)",
	ProfileNeutral:      "Rule-based estimate: neutral asset (10% yearly decay, floored at 30%)",
}

type Valuation struct {
	Value     float64      `json:"value"`
	Currency  string       `json:"currency"`
	Source    string       `json:"source"`
	Profile   ValueProfile `json:"profile"`
	Years     float64      `json:"years"`
	Condition string       `json:"condition"`
}

// Display formats the value with the currency's symbol when go-money knows it.
func (v Valuation) Display() string {
	return FormatMoney(v.Value, v.Currency)
}

// FormatMoney renders an amount as a display string such as "£1,234.50".
func FormatMoney(amount float64, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	cur := money.GetCurrency(code)
	if cur == nil {
		return fmt.Sprintf("%.2f %s", amount, code)
	}
	// shift through decimal so 379.69 does not truncate to 37968 minor units
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, code).Display()
}

// KnownCurrency reports whether code is an ISO 4217 code go-money recognises.
func KnownCurrency(code string) bool {
	return money.GetCurrency(strings.ToUpper(strings.TrimSpace(code))) != nil
}

// ComputeRuleBasedValuation produces the placeholder estimate used by Magic
// Import. now anchors the elapsed-years calculation.
func ComputeRuleBasedValuation(a Asset, now time.Time) Valuation {
	base := basePrice(a)
	years := elapsedYears(a.PurchaseDate, now)
	condition := NormalizeCondition(a.CurrentCondition)
	profile := InferValueProfile(a.CategoryName)

	var value float64
	switch profile {
	case ProfileAppreciating:
		value = base * math.Pow(1+appreciationRate, years)
		value = math.Min(value, appreciationCap*base)
		value *= conditionMultiplier(softConditionMultipliers, condition)
	case ProfileDepreciating:
		early := math.Min(years, earlyDepreciationYears)
		late := math.Max(years-earlyDepreciationYears, 0)
		value = base * math.Pow(1-earlyDepreciationRate, early) * math.Pow(1-lateDepreciationRate, late)
		value = math.Max(value, depreciationFloor*base)
		value *= conditionMultiplier(standardConditionMultipliers, condition)
	default:
		value = base * math.Pow(1-neutralDecayRate, years)
		value = math.Max(value, neutralFloor*base)
		value *= conditionMultiplier(standardConditionMultipliers, condition)
	}

	return Valuation{
		Value:     roundCents(value),
		Currency:  valuationCurrency(a),
		Source:    valuationSources[profile],
		Profile:   profile,
		Years:     years,
		Condition: condition,
	}
}

// NormalizeCondition maps free-text labels such as "Like New" to table keys.
func NormalizeCondition(condition string) string {
	normalized := strings.ToLower(strings.TrimSpace(condition))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	if normalized == "" {
		return conditionUnknown
	}
	return normalized
}

func conditionMultiplier(table map[string]float64, condition string) float64 {
	if multiplier, ok := table[condition]; ok {
		return multiplier
	}
	return table[conditionUnknown]
}

func basePrice(a Asset) float64 {
	if positive(a.PurchasePrice) {
		return *a.PurchasePrice
	}
	if positive(a.CurrentEstimatedValue) {
		return *a.CurrentEstimatedValue
	}
	return defaultBasePrice
}

func positive(value *float64) bool {
	return value != nil && *value > 0 && !math.IsInf(*value, 0) && !math.IsNaN(*value)
}

func valuationCurrency(a Asset) string {
	for _, candidate := range []string{a.PurchaseCurrency, a.EstimateCurrency} {
		if code := strings.ToUpper(strings.TrimSpace(candidate)); code != "" {
			return code
		}
	}
	return DefaultCurrency
}

func elapsedYears(purchaseDate string, now time.Time) float64 {
	purchased, ok := ParseDate(purchaseDate)
	if !ok {
		return 1
	}
	// time.Duration saturates near 292 years, so count in seconds
	years := float64(now.Unix()-purchased.Unix()) / secondsPerDay / daysPerYear
	if years < 0 {
		return 0
	}
	return years
}

func roundCents(value float64) float64 {
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}
