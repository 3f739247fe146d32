package model

// Confidence is the model's self-reported identification confidence.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// ValidConfidence reports whether s is a member of the closed confidence set.
func ValidConfidence(s string) bool {
	switch Confidence(s) {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// PricingBasis is the condition/completeness category that selects which
// price field of a pricing candidate applies.
type PricingBasis string

const (
	BasisCompleteInBox    PricingBasis = "COMPLETE_IN_BOX"
	BasisLooseCart        PricingBasis = "LOOSE_CART"
	BasisLooseDisc        PricingBasis = "LOOSE_DISC"
	BasisNewSealed        PricingBasis = "NEW_SEALED"
	BasisLooseAccessory   PricingBasis = "LOOSE_ACCESSORY"
	BasisConsoleOnly      PricingBasis = "CONSOLE_ONLY"
	BasisCompleteConsole  PricingBasis = "COMPLETE_CONSOLE"
	BasisHandheldOnly     PricingBasis = "HANDHELD_ONLY"
	BasisCompleteHandheld PricingBasis = "COMPLETE_HANDHELD"
	BasisUsed             PricingBasis = "USED"
	BasisGradedSlab       PricingBasis = "GRADED_SLAB"
)

// ValidPricingBasis reports whether s is a member of the closed basis set.
func ValidPricingBasis(s string) bool {
	switch PricingBasis(s) {
	case BasisCompleteInBox, BasisLooseCart, BasisLooseDisc, BasisNewSealed,
		BasisLooseAccessory, BasisConsoleOnly, BasisCompleteConsole,
		BasisHandheldOnly, BasisCompleteHandheld, BasisUsed, BasisGradedSlab:
		return true
	}
	return false
}

// Category is the item category as reported by the text model.
type Category string

const (
	CategoryVideoGameSoftware Category = "Video Game Software"
	CategoryVideoGameConsole  Category = "Video Game Console"
	CategoryVideoGameAccess   Category = "Video Game Accessory"
	CategoryHandheldSystem    Category = "Handheld Game System"
	CategoryLEGO              Category = "LEGO"
	CategoryComicBooks        Category = "Comic Books"
	CategoryTradingCards      Category = "Trading Cards"
	CategoryBooks             Category = "Books"
	CategoryElectronics       Category = "Electronics"
	CategoryCollectibles      Category = "Collectibles"
)

// ValidCategory reports whether s is a member of the closed category set.
func ValidCategory(s string) bool {
	switch Category(s) {
	case CategoryVideoGameSoftware, CategoryVideoGameConsole,
		CategoryVideoGameAccess, CategoryHandheldSystem, CategoryLEGO,
		CategoryComicBooks, CategoryTradingCards, CategoryBooks,
		CategoryElectronics, CategoryCollectibles:
		return true
	}
	return false
}

// MatchConfidence grades how sure the model was of a pricing-candidate match.
type MatchConfidence string

const (
	MatchHigh   MatchConfidence = "HIGH"
	MatchMedium MatchConfidence = "MEDIUM"
	MatchLow    MatchConfidence = "LOW"
	MatchNone   MatchConfidence = "NONE"
)

// ValidMatchConfidence reports whether s is a member of the closed set.
func ValidMatchConfidence(s string) bool {
	switch MatchConfidence(s) {
	case MatchHigh, MatchMedium, MatchLow, MatchNone:
		return true
	}
	return false
}

// PlaceholderItemName is substituted when the model returns an empty or
// non-string item name. Item name is the one field the pipeline guarantees
// is always populated.
const PlaceholderItemName = "UNIDENTIFIED ITEM"

// Analysis is the validated, normalized output of the text-analysis pass.
// Required fields are always populated after validation; optional fields are
// pointers or zero values.
type Analysis struct {
	ItemName         string     `json:"item_name"`
	Platform         string     `json:"platform,omitempty"`
	Region           string     `json:"region,omitempty"`
	RegionReasoning  string     `json:"region_reasoning,omitempty"`
	Confidence       Confidence `json:"confidence"`
	ConfidenceReason string     `json:"confidence_reason"`

	EstimatedValueUSD float64 `json:"estimated_value_usd"`
	ValueRangeMin     float64 `json:"value_range_min"`
	ValueRangeMax     float64 `json:"value_range_max"`
	PriceSource       string  `json:"price_source"`

	PricingBasis PricingBasis `json:"pricing_basis"`
	Category     Category     `json:"category"`

	ConditionNotes string `json:"condition_notes,omitempty"`
	VariantNotes   string `json:"variant_notes,omitempty"`

	IssueNumber         string   `json:"issue_number,omitempty"`
	Year                *int     `json:"year,omitempty"`
	Grade               *float64 `json:"grade,omitempty"`
	Grader              string   `json:"grader,omitempty"`
	CertificationNumber string   `json:"certification_number,omitempty"`
	LabelColor          string   `json:"label_color,omitempty"`

	PersonalEffectEligible bool `json:"personal_effect_eligible,omitempty"`

	Warnings                []string        `json:"warnings,omitempty"`
	MatchUsed               *int            `json:"pricecharting_match_used,omitempty"`
	MatchConfidence         MatchConfidence `json:"pricecharting_match_confidence,omitempty"`
	ManualReviewRecommended bool            `json:"manual_review_recommended"`
	ManualReviewReason      string          `json:"manual_review_reason,omitempty"`
}

// FlagReview marks the analysis for human review. The first reason given
// wins; later corrections append their detail to Warnings instead of
// overwriting the reason a person will read.
func (a *Analysis) FlagReview(reason string) {
	a.ManualReviewRecommended = true
	if a.ManualReviewReason == "" {
		a.ManualReviewReason = reason
	}
}
