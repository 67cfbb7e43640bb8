package round

import (
	"fmt"
	"strings"
)

type IdentityLevel string

const (
	IdentityUnknown IdentityLevel = "unknown"
	IdentityBasic   IdentityLevel = "basic"
	IdentityGood    IdentityLevel = "good"
	IdentityStrong  IdentityLevel = "strong"
)

// Rank orders levels from unknown (0) to strong (3).
func (l IdentityLevel) Rank() int {
	switch l {
	case IdentityBasic:
		return 1
	case IdentityGood:
		return 2
	case IdentityStrong:
		return 3
	default:
		return 0
	}
}

// AtLeastGood is the identity half of the Round-Ready gate.
func (l IdentityLevel) AtLeastGood() bool {
	return l.Rank() >= IdentityGood.Rank()
}

// IdentityRules selects which scoring table ComputeIdentity applies.
type IdentityRules struct {
	Name string
	// StrongThreshold is the signal count at which an asset becomes strong.
	StrongThreshold int
	// CatalogOverride forces strong when the asset links to an asset type.
	CatalogOverride bool
	// HomeAddress scores home-like assets on address and listing URL instead
	// of brand/model/serial.
	HomeAddress bool
}

var (
	StandardRules = IdentityRules{
		Name:            "standard",
		StrongThreshold: 3,
		CatalogOverride: true,
		HomeAddress:     true,
	}
	ExactMatchRules = IdentityRules{
		Name:            "exact",
		StrongThreshold: 4,
		CatalogOverride: true,
		HomeAddress:     false,
	}
)

// RulesByName resolves "standard" or "exact"; an empty name is standard.
func RulesByName(name string) (IdentityRules, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StandardRules.Name:
		return StandardRules, nil
	case ExactMatchRules.Name:
		return ExactMatchRules, nil
	default:
		return IdentityRules{}, fmt.Errorf("unknown identity rules %q", name)
	}
}

type Identity struct {
	Level       IdentityLevel `json:"level"`
	Score       int           `json:"score"`
	Label       string        `json:"label"`
	Description string        `json:"description"`
	ColorClass  string        `json:"color_class"`
	// Basis is "catalog", "address" or "signals".
	Basis string `json:"basis"`
}

const (
	basisCatalog = "catalog"
	basisAddress = "address"
	basisSignals = "signals"
)

// ComputeIdentity scores how well an asset's identity is known.
func ComputeIdentity(a Asset, rules IdentityRules) Identity {
	if rules.CatalogOverride && a.HasCatalogLink() {
		return describeIdentity(IdentityStrong, 4, basisCatalog)
	}
	if rules.HomeAddress && IsHomeLike(a.CategoryName) {
		return homeIdentity(a)
	}

	score := SignalScore(a)
	return describeIdentity(levelForScore(score, rules.StrongThreshold), score, basisSignals)
}

// SignalScore counts which of category, brand, model and serial are present.
func SignalScore(a Asset) int {
	score := 0
	for _, field := range []string{a.CategoryName, a.Brand, a.ModelName, a.SerialNumber} {
		if present(field) {
			score++
		}
	}
	return score
}

func levelForScore(score, strongThreshold int) IdentityLevel {
	if strongThreshold <= 2 {
		strongThreshold = StandardRules.StrongThreshold
	}
	switch {
	case score >= strongThreshold:
		return IdentityStrong
	case score >= 2:
		return IdentityGood
	case score == 1:
		return IdentityBasic
	default:
		return IdentityUnknown
	}
}

func homeIdentity(a Asset) Identity {
	parts := a.addressParts()
	listing := a.HasListingURL()

	score := parts
	if listing {
		score++
	}

	switch {
	case parts == 3 && listing:
		return describeIdentity(IdentityStrong, score, basisAddress)
	case parts == 3:
		return describeIdentity(IdentityGood, score, basisAddress)
	case parts > 0 || listing:
		return describeIdentity(IdentityBasic, score, basisAddress)
	default:
		return describeIdentity(IdentityUnknown, score, basisAddress)
	}
}

type identityCopy struct {
	label       string
	description string
	colorClass  string
}

var signalCopy = map[IdentityLevel]identityCopy{
	IdentityUnknown: {"Unknown", "Add a category, brand or model so Round can recognise this item.", "bg-gray-100 text-gray-700"},
	IdentityBasic:   {"Basic", "Some details are known. Add a brand, model or serial number.", "bg-amber-100 text-amber-800"},
	IdentityGood:    {"Good", "Round can narrow this item down. A serial number makes it strong.", "bg-sky-100 text-sky-800"},
	IdentityStrong:  {"Strong", "This item is clearly identified.", "bg-emerald-100 text-emerald-800"},
}

var addressCopy = map[IdentityLevel]identityCopy{
	IdentityUnknown: {"Unknown", "Add the property address.", "bg-gray-100 text-gray-700"},
	IdentityBasic:   {"Basic", "Partial address. Add the street, city and country.", "bg-amber-100 text-amber-800"},
	IdentityGood:    {"Good", "Full address recorded. Add a Zoopla or Rightmove link to confirm it.", "bg-sky-100 text-sky-800"},
	IdentityStrong:  {"Strong", "Address confirmed against a property listing.", "bg-emerald-100 text-emerald-800"},
}

func describeIdentity(level IdentityLevel, score int, basis string) Identity {
	text := signalCopy[level]
	switch basis {
	case basisAddress:
		text = addressCopy[level]
	case basisCatalog:
		text.description = "Matched to a catalog item."
	}
	return Identity{
		Level:       level,
		Score:       score,
		Label:       text.label,
		Description: text.description,
		ColorClass:  text.colorClass,
		Basis:       basis,
	}
}
