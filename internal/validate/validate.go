// Package validate enforces the inventory record contract on parsed model
// output. It is a pure function from a raw decoded object to a normalized
// Analysis: recoverable policy violations are auto-corrected and flagged for
// human review, unrecoverable ones fail with a typed error naming the rule.
package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/dittoscan/ditto/internal/model"
)

// Error is a hard validation failure. It carries the violated rule, the
// offending field and, when available, the offending value. Never retried.
type Error struct {
	Rule  string
	Field string
	Value any
}

func (e *Error) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validate: %s: field %q has value %v", e.Rule, e.Field, e.Value)
	}
	return fmt.Sprintf("validate: %s: field %q", e.Rule, e.Field)
}

func fail(rule, field string, value any) error {
	return &Error{Rule: rule, Field: field, Value: value}
}

// Options carries the per-item context the validator cross-checks against.
type Options struct {
	// PricingOptionCount is how many pricing options were actually offered
	// to the model. An index reference outside [1, count] is a
	// hallucination.
	PricingOptionCount int

	// VisionGrade is the grade the vision pass read off the slab label, if
	// any. Used only for cross-validation against the model's own grade.
	VisionGrade *float64

	// DefaultBasis replaces a null pricing_basis.
	DefaultBasis model.PricingBasis

	// GradeMismatchThreshold is the tolerated difference between the
	// vision-pass grade and the model's grade before a discrepancy warning
	// fires.
	GradeMismatchThreshold float64
}

var requiredFields = []string{
	"item_name",
	"category",
	"confidence",
	"confidence_reason",
	"estimated_value_usd",
	"price_source",
	"pricing_basis",
}

// Analyze validates and normalizes a raw decoded model object into an
// Analysis. Auto-corrections set manual_review_recommended; contract
// violations that cannot be corrected return a *Error.
func Analyze(raw map[string]any, opts Options) (*model.Analysis, error) {
	if opts.DefaultBasis == "" {
		opts.DefaultBasis = model.BasisCompleteInBox
	}
	if opts.GradeMismatchThreshold == 0 {
		opts.GradeMismatchThreshold = 0.1
	}

	var missing []string
	for _, f := range requiredFields {
		if _, ok := raw[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fail("missing required fields", strings.Join(missing, ", "), nil)
	}

	a := &model.Analysis{}

	// item_name is the one field guaranteed to be populated: an empty or
	// non-string value becomes a placeholder, never a failure.
	if name, ok := raw["item_name"].(string); ok && strings.TrimSpace(name) != "" {
		a.ItemName = strings.TrimSpace(name)
	} else {
		a.ItemName = model.PlaceholderItemName
		flagReview(a, "item name missing from model output")
	}

	if err := normalizeConfidence(a, raw["confidence"]); err != nil {
		return nil, err
	}
	if err := normalizeCategory(a, raw["category"]); err != nil {
		return nil, err
	}
	if err := normalizeBasis(a, raw["pricing_basis"], opts.DefaultBasis); err != nil {
		return nil, err
	}

	a.Platform = looseString(raw["platform"])
	a.Region = looseString(raw["region"])
	a.RegionReasoning = looseString(raw["region_reasoning"])
	a.ConfidenceReason = looseString(raw["confidence_reason"])
	a.PriceSource = looseString(raw["price_source"])
	a.ConditionNotes = looseString(raw["condition_notes"])
	a.VariantNotes = looseString(raw["variant_notes"])
	a.LabelColor = looseString(raw["label_color"])
	a.IssueNumber = looseString(raw["issue_number"])
	a.CertificationNumber = looseString(raw["certification_number"])

	applyPlatformPolicy(a)

	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"estimated_value_usd", &a.EstimatedValueUSD},
		{"value_range_min", &a.ValueRangeMin},
		{"value_range_max", &a.ValueRangeMax},
	} {
		v, ok := raw[f.name]
		if !ok {
			continue
		}
		// A present-but-null amount is as unusable as a string one.
		n, isNum := asNumber(v)
		if !isNum {
			return nil, fail("monetary field must be numeric", f.name, v)
		}
		if n < 0 {
			return nil, fail("monetary field must be non-negative", f.name, n)
		}
		*f.dst = n
	}
	if a.ValueRangeMin > a.ValueRangeMax {
		a.ValueRangeMin, a.ValueRangeMax = a.ValueRangeMax, a.ValueRangeMin
	}

	for _, f := range []string{"personal_effect_eligible", "manual_review_recommended"} {
		v, ok := raw[f]
		if !ok || v == nil {
			continue
		}
		b, isBool := v.(bool)
		if !isBool {
			return nil, fail("field must be boolean", f, v)
		}
		switch f {
		case "personal_effect_eligible":
			a.PersonalEffectEligible = b
		case "manual_review_recommended":
			if b {
				flagReview(a, looseString(raw["manual_review_reason"]))
			}
		}
	}

	if v, ok := raw["warnings"]; ok && v != nil {
		items, isArr := v.([]any)
		if !isArr {
			return nil, fail("field must be an array", "warnings", v)
		}
		for _, item := range items {
			a.Warnings = append(a.Warnings, looseString(item))
		}
	}

	if v, ok := raw["year"]; ok && v != nil {
		n, isNum := asNumber(v)
		if !isNum {
			return nil, fail("field must be numeric", "year", v)
		}
		year := int(n)
		a.Year = &year
	}

	if v, ok := raw["grade"]; ok && v != nil {
		n, isNum := asNumber(v)
		if !isNum {
			return nil, fail("field must be numeric", "grade", v)
		}
		a.Grade = &n
	}

	if v, ok := raw["grader"]; ok && v != nil {
		s, isStr := v.(string)
		if !isStr {
			return nil, fail("field must be a string", "grader", v)
		}
		a.Grader = s
	}

	if err := normalizeMatchUsed(a, raw, opts.PricingOptionCount); err != nil {
		return nil, err
	}

	if opts.VisionGrade != nil && a.Grade != nil &&
		math.Abs(*opts.VisionGrade-*a.Grade) > opts.GradeMismatchThreshold {
		a.Warnings = append(a.Warnings, fmt.Sprintf(
			"grade mismatch: vision pass read %.1f, analysis reported %.1f; vision readings are usually more reliable for slab labels",
			*opts.VisionGrade, *a.Grade))
		flagReview(a, "vision-pass grade disagrees with analysis grade")
	}

	return a, nil
}

func normalizeConfidence(a *model.Analysis, v any) error {
	if v == nil {
		a.Confidence = model.ConfidenceLow
		return nil
	}
	s, ok := v.(string)
	if !ok || !model.ValidConfidence(strings.ToUpper(s)) {
		return fail("unknown confidence value", "confidence", v)
	}
	a.Confidence = model.Confidence(strings.ToUpper(s))
	return nil
}

func normalizeCategory(a *model.Analysis, v any) error {
	s, ok := v.(string)
	if !ok || !model.ValidCategory(s) {
		return fail("unknown category value", "category", v)
	}
	a.Category = model.Category(s)
	return nil
}

func normalizeBasis(a *model.Analysis, v any, def model.PricingBasis) error {
	if v == nil {
		a.PricingBasis = def
		flagReview(a, "pricing basis missing, defaulted to "+string(def))
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return fail("unknown pricing basis", "pricing_basis", v)
	}
	s = strings.ToUpper(strings.TrimSpace(s))

	// "LOOSE_CART/COMPLETE_IN_BOX" means the model could not decide.
	if strings.Contains(s, "/") {
		first := strings.TrimSpace(strings.SplitN(s, "/", 2)[0])
		flagReview(a, fmt.Sprintf("indecisive pricing basis %q, using %q", s, first))
		s = first
	}
	if !model.ValidPricingBasis(s) {
		return fail("unknown pricing basis", "pricing_basis", s)
	}
	a.PricingBasis = model.PricingBasis(s)
	return nil
}

func normalizeMatchUsed(a *model.Analysis, raw map[string]any, optionCount int) error {
	if v, ok := raw["pricecharting_match_confidence"]; ok && v != nil {
		s, isStr := v.(string)
		if !isStr || !model.ValidMatchConfidence(strings.ToUpper(s)) {
			return fail("unknown match confidence", "pricecharting_match_confidence", v)
		}
		a.MatchConfidence = model.MatchConfidence(strings.ToUpper(s))
	}

	v, ok := raw["pricecharting_match_used"]
	if !ok || v == nil {
		return nil
	}
	n, isNum := asNumber(v)
	if !isNum || n != math.Trunc(n) {
		return fail("field must be an integer", "pricecharting_match_used", v)
	}
	idx := int(n)

	// Referencing a pricing option that was never offered is a
	// hallucination, not a choice.
	if optionCount == 0 {
		a.MatchUsed = nil
		a.MatchConfidence = model.MatchNone
		return nil
	}
	if idx < 1 || idx > optionCount {
		a.MatchUsed = nil
		flagReview(a, fmt.Sprintf("pricing match index %d outside offered range 1-%d", idx, optionCount))
		return nil
	}
	a.MatchUsed = &idx
	return nil
}

// flagReview marks the analysis for review. When a reason is already
// recorded, later reasons land in warnings so none of them are lost.
func flagReview(a *model.Analysis, reason string) {
	if a.ManualReviewRecommended && reason != "" && a.ManualReviewReason != reason {
		a.Warnings = append(a.Warnings, reason)
	}
	a.FlagReview(reason)
}

// asNumber unwraps the numeric representations encoding/json can produce.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// looseString renders free-text fields leniently: strings pass through,
// scalar values are stringified, anything else becomes empty.
func looseString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		if s == math.Trunc(s) {
			return strconv.Itoa(int(s))
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}
