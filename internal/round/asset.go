// Package round holds the asset heuristics behind the dashboard and detail
// pages: identity scoring, category classification, the rule-based
// valuation estimate and the Round-Ready gate. Every function here is pure
// and total over Asset; missing or malformed fields degrade to defaults.
package round

import (
	"strings"
	"time"
)

// Asset is a read-only snapshot of a user's asset. No field is required.
// Empty strings and nil pointers both mean "absent".
type Asset struct {
	Title                 string   `json:"title,omitempty" yaml:"title,omitempty"`
	CategoryName          string   `json:"category_name,omitempty" yaml:"category_name,omitempty"`
	Brand                 string   `json:"brand,omitempty" yaml:"brand,omitempty"`
	ModelName             string   `json:"model_name,omitempty" yaml:"model_name,omitempty"`
	SerialNumber          string   `json:"serial_number,omitempty" yaml:"serial_number,omitempty"`
	PurchasePrice         *float64 `json:"purchase_price,omitempty" yaml:"purchase_price,omitempty"`
	PurchaseCurrency      string   `json:"purchase_currency,omitempty" yaml:"purchase_currency,omitempty"`
	PurchaseDate          string   `json:"purchase_date,omitempty" yaml:"purchase_date,omitempty"`
	CurrentEstimatedValue *float64 `json:"current_estimated_value,omitempty" yaml:"current_estimated_value,omitempty"`
	EstimateCurrency      string   `json:"estimate_currency,omitempty" yaml:"estimate_currency,omitempty"`
	PurchaseURL           string   `json:"purchase_url,omitempty" yaml:"purchase_url,omitempty"`
	ReceiptURL            string   `json:"receipt_url,omitempty" yaml:"receipt_url,omitempty"`
	Notes                 string   `json:"notes,omitempty" yaml:"notes,omitempty"`
	CurrentCondition      string   `json:"current_condition,omitempty" yaml:"current_condition,omitempty"`
	AssetTypeID           string   `json:"asset_type_id,omitempty" yaml:"asset_type_id,omitempty"`
	AddressCity           string   `json:"address_city,omitempty" yaml:"address_city,omitempty"`
	AddressCountry        string   `json:"address_country,omitempty" yaml:"address_country,omitempty"`
}

func present(value string) bool {
	return strings.TrimSpace(value) != ""
}

// HasCatalogLink reports whether the asset points at a canonical asset type.
func (a Asset) HasCatalogLink() bool {
	return present(a.AssetTypeID)
}

// HasContext reports whether at least one context artifact is attached:
// a purchase URL, notes or a receipt.
func (a Asset) HasContext() bool {
	return present(a.PurchaseURL) || present(a.Notes) || present(a.ReceiptURL)
}

func (a Asset) addressParts() int {
	parts := 0
	for _, field := range []string{a.Title, a.AddressCity, a.AddressCountry} {
		if present(field) {
			parts++
		}
	}
	return parts
}

func (a Asset) hasFullAddress() bool {
	return a.addressParts() == 3
}

var listingDomains = []string{"zoopla.", "rightmove."}

// HasListingURL reports whether the purchase URL points at a recognised
// property-listing site.
func (a Asset) HasListingURL() bool {
	url := strings.ToLower(strings.TrimSpace(a.PurchaseURL))
	if url == "" {
		return false
	}
	for _, domain := range listingDomains {
		if strings.Contains(url, domain) {
			return true
		}
	}
	return false
}

// ParseDate accepts YYYY-MM-DD or RFC 3339.
func ParseDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	if parsed, err := time.Parse("2006-01-02", trimmed); err == nil {
		return parsed.UTC(), true
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return parsed.UTC(), true
	}
	return time.Time{}, false
}
