// Package intent provides intent classification types, the classifier
// interface with keyword and LLM-backed implementations, and the business
// context state machine that carries commercial memory across turns.
package intent

import "strings"

// Category groups intent labels into the buckets the state machine
// reacts to.
type Category string

const (
	CategoryProduct    Category = "product"
	CategoryPricing    Category = "pricing"
	CategoryComparison Category = "comparison"
	CategoryCompany    Category = "company"
	CategoryCasual     Category = "casual"
	CategoryUnknown    Category = "unknown"
)

// Classification is the result of classifying one user message.
type Classification struct {
	Primary    string  `json:"primary"`
	Confidence float64 `json:"confidence"`
}

// Unknown is the placeholder classification used before any intent has
// been observed in a session.
func Unknown() Classification {
	return Classification{Primary: "unknown", Confidence: 0}
}

//nolint:gochecknoglobals // Static label taxonomy
var labelCategories = map[string]Category{
	"product_inquiry":    CategoryProduct,
	"feature_inquiry":    CategoryProduct,
	"demo_request":       CategoryProduct,
	"pricing_inquiry":    CategoryPricing,
	"cost_inquiry":       CategoryPricing,
	"comparison_inquiry": CategoryComparison,
	"competitor_inquiry": CategoryComparison,
	"company_inquiry":    CategoryCompany,
	"business_inquiry":   CategoryCompany,
	"greeting":           CategoryCasual,
	"small_talk":         CategoryCasual,
	"thanks":             CategoryCasual,
}

// CategoryOf maps an intent label to its category. Unrecognized labels
// are CategoryUnknown.
func CategoryOf(label string) Category {
	if c, ok := labelCategories[strings.ToLower(label)]; ok {
		return c
	}
	return CategoryUnknown
}

// IsBusiness reports whether the classification touches a commercial
// topic (product, pricing, comparison, or company).
func (c Classification) IsBusiness() bool {
	switch CategoryOf(c.Primary) {
	case CategoryProduct, CategoryPricing, CategoryComparison, CategoryCompany:
		return true
	default:
		return false
	}
}

// Keyword lists per intent label, used both by the fallback classifier
// and by the relevance scorer's intent-alignment dimension.
//
//nolint:gochecknoglobals // Static keyword taxonomy
var intentKeywords = map[string][]string{
	"pricing_inquiry":    {"price", "cost", "pricing", "plan", "subscription", "expensive", "budget", "how much"},
	"cost_inquiry":       {"cost", "fee", "charge", "payment", "invoice"},
	"product_inquiry":    {"product", "feature", "integration", "capability", "how does", "support", "platform"},
	"feature_inquiry":    {"feature", "functionality", "can it", "does it", "able to"},
	"demo_request":       {"demo", "trial", "try", "test", "walkthrough"},
	"comparison_inquiry": {"compare", "versus", "vs", "alternative", "difference", "better than"},
	"competitor_inquiry": {"competitor", "other vendors", "instead of", "switching from"},
	"company_inquiry":    {"company", "about you", "founded", "team", "who are", "headquarters"},
	"business_inquiry":   {"business", "enterprise", "partnership", "services"},
	"greeting":           {"hi", "hello", "hey", "good morning", "good afternoon"},
	"small_talk":         {"how are you", "weather", "nice", "cool"},
	"thanks":             {"thanks", "thank you", "appreciate"},
}

// KeywordsFor returns the fixed keyword list associated with a label.
// Unknown labels have no keywords.
func KeywordsFor(label string) []string {
	return intentKeywords[strings.ToLower(label)]
}
