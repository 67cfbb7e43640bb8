package round

// Insights is everything the detail page shows about an asset's identity.
type Insights struct {
	HomeLike  bool         `json:"home_like"`
	Profile   ValueProfile `json:"profile"`
	Identity  Identity     `json:"identity"`
	Readiness Readiness    `json:"readiness"`
}

func Evaluate(a Asset, rules IdentityRules) Insights {
	identity := ComputeIdentity(a, rules)
	return Insights{
		HomeLike:  IsHomeLike(a.CategoryName),
		Profile:   InferValueProfile(a.CategoryName),
		Identity:  identity,
		Readiness: ComputeReadiness(a, identity, rules),
	}
}
