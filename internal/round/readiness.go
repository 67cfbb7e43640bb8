package round

type ReadinessTier string

const (
	TierReady    ReadinessTier = "ready"
	TierAlmost   ReadinessTier = "almost"
	TierNotReady ReadinessTier = "not_ready"
)

type Readiness struct {
	Ready       bool          `json:"ready"`
	Tier        ReadinessTier `json:"tier"`
	Label       string        `json:"label"`
	Description string        `json:"description"`
}

// ComputeReadiness gates Magic Import. An asset is Round-Ready when its
// identity is good or strong and it carries a purchase URL, notes or a
// receipt. Under rules with HomeAddress, home-like assets instead need a
// full address and a recognised listing URL.
func ComputeReadiness(a Asset, identity Identity, rules IdentityRules) Readiness {
	if rules.HomeAddress && IsHomeLike(a.CategoryName) {
		return homeReadiness(a)
	}

	hasContext := a.HasContext()
	switch {
	case identity.Level.AtLeastGood() && hasContext:
		return Readiness{
			Ready:       true,
			Tier:        TierReady,
			Label:       "Round-Ready",
			Description: "Identity and context are in place for Magic Import.",
		}
	case identity.Level.AtLeastGood():
		return Readiness{
			Tier:        TierAlmost,
			Label:       "Almost Ready",
			Description: "Add a purchase link, a receipt or notes.",
		}
	default:
		return Readiness{
			Tier:        TierNotReady,
			Label:       "Not Ready",
			Description: "Add more identifying details such as brand, model or serial number.",
		}
	}
}

func homeReadiness(a Asset) Readiness {
	fullAddress := a.hasFullAddress()
	listing := a.HasListingURL()

	switch {
	case fullAddress && listing:
		return Readiness{
			Ready:       true,
			Tier:        TierReady,
			Label:       "Round-Ready",
			Description: "Address and property listing are in place for Magic Import.",
		}
	case fullAddress:
		return Readiness{
			Tier:        TierAlmost,
			Label:       "Almost Ready",
			Description: "Add a Zoopla or Rightmove listing link.",
		}
	case listing:
		return Readiness{
			Tier:        TierAlmost,
			Label:       "Almost Ready",
			Description: "Complete the address with city and country.",
		}
	default:
		return Readiness{
			Tier:        TierNotReady,
			Label:       "Not Ready",
			Description: "Add the full property address and a listing link.",
		}
	}
}

// IsRoundReady is shorthand for the readiness boolean under the given rules.
func IsRoundReady(a Asset, rules IdentityRules) bool {
	return ComputeReadiness(a, ComputeIdentity(a, rules), rules).Ready
}
