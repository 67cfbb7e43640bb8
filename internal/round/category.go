package round

import "strings"

type ValueProfile string

const (
	ProfileAppreciating ValueProfile = "APPRECIATING"
	ProfileDepreciating ValueProfile = "DEPRECIATING"
	ProfileNeutral      ValueProfile = "NEUTRAL"
)

var homeKeywords = []string{"home", "house", "flat", "apartment", "property", "real estate"}

var appreciatingKeywords = []string{"property", "home", "house", "apartment", "flat", "real estate", "real-estate"}

var depreciatingKeywords = []string{
	"car", "vehicle", "van", "motorbike", "bike",
	"electronics", "phone", "laptop", "computer", "desktop",
	"monitor", "screen", "tv", "television", "camera",
	"console", "tablet", "headphones", "speaker", "audio",
	// product names that carry none of the generic words above
	"macbook",
}

// IsHomeLike reports whether a category name describes a property.
func IsHomeLike(categoryName string) bool {
	return containsAny(strings.ToLower(categoryName), homeKeywords)
}

// InferValueProfile classifies a category name. The appreciating list is
// checked before the depreciating list; the first match wins.
func InferValueProfile(categoryName string) ValueProfile {
	name := strings.ToLower(categoryName)
	switch {
	case containsAny(name, appreciatingKeywords):
		return ProfileAppreciating
	case containsAny(name, depreciatingKeywords):
		return ProfileDepreciating
	default:
		return ProfileNeutral
	}
}

func containsAny(haystack string, keywords []string) bool {
	if haystack == "" {
		return false
	}
	for _, keyword := range keywords {
		if strings.Contains(haystack, keyword) {
			return true
		}
	}
	return false
}
