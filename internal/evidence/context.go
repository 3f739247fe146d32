package evidence

import (
	"fmt"
	"strings"

	"github.com/dittoscan/ditto/internal/model"
	"github.com/dittoscan/ditto/pkg/lens"
)

// maxContextMatches caps how many search results reach the prompt. Beyond
// this the tail is marketplace noise that only burns tokens.
const maxContextMatches = 15

// FormatSearchResults renders the top visually similar listings for the
// text-analysis prompt.
func FormatSearchResults(matches []lens.VisualMatch) string {
	var b strings.Builder
	b.WriteString("=== GOOGLE IMAGE SEARCH RESULTS ===\n\n")

	if len(matches) == 0 {
		return b.String()
	}

	b.WriteString("VISUALLY SIMILAR ITEMS:\n")
	for i, m := range matches {
		if i == maxContextMatches {
			break
		}
		title := m.Title
		if title == "" {
			title = "Unknown"
		}
		link := m.Link
		if link == "" {
			link = "N/A"
		}
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, title)
		fmt.Fprintf(&b, "   Source: %s\n", link)
		if m.Price != nil {
			fmt.Fprintf(&b, "   Price: %v %s\n", m.Price.ExtractedValue, m.Price.Currency)
		}
		if m.Condition != "" {
			fmt.Fprintf(&b, "   Condition: %s\n", m.Condition)
		}
		if m.Rating != 0 {
			fmt.Fprintf(&b, "   Rating: %v (%d reviews)\n", m.Rating, m.Reviews)
		}
	}
	b.WriteString("\n")
	return b.String()
}

// FormatVisionFindings states what the vision pass did or did not read off
// the slab label. Values are quoted verbatim so the text model cannot
// "forget" a grade the vision pass already read.
func FormatVisionFindings(reading *model.GradeReading) string {
	var b strings.Builder
	b.WriteString("\n=== VISION GRADE EXTRACTION (from slab image) ===\n")

	if reading != nil && reading.Found() {
		b.WriteString("A multimodal vision model examined the scanned image and extracted:\n")
		if reading.GradingAuthority != "" {
			fmt.Fprintf(&b, "  Grading Authority: %s\n", reading.GradingAuthority)
		}
		if reading.Grade != nil {
			fmt.Fprintf(&b, "  Grade: %v\n", *reading.Grade)
		}
		if reading.CertificationNumber != "" {
			fmt.Fprintf(&b, "  Certification Number: %s\n", reading.CertificationNumber)
		}
		if reading.LabelColor != "" {
			fmt.Fprintf(&b, "  Label Color: %s\n", reading.LabelColor)
		}
		b.WriteString("\nIMPORTANT: The vision model read these values directly from the slab label.\n")
		b.WriteString("Trust the vision-extracted grade and grading authority as the primary source.\n")
		b.WriteString("Only override if search results CLEARLY contradict the vision reading.\n")
	} else {
		b.WriteString("The vision model did NOT detect a grading slab on this item.\n")
		b.WriteString("This may be a raw/ungraded item, or the slab label was not visible.\n")
		b.WriteString("If search results indicate this is a graded item, use that info.\n")
		b.WriteString("Otherwise, treat as ungraded.\n")
	}
	return b.String()
}

// FormatPricingOptions renders the offered pricing candidates, numbered
// from 1 so the model can reference its pick by index.
func FormatPricingOptions(options []model.PricingCandidate) string {
	var b strings.Builder

	if len(options) == 0 {
		b.WriteString("\n\n=== NO PRICECHARTING DATA AVAILABLE ===\n")
		b.WriteString("PriceCharting was not queried for this item. Set pricecharting_match_used to null.\n")
		return b.String()
	}

	b.WriteString("\n\n=== PRICECHARTING MATCHES ===\n")
	fmt.Fprintf(&b, "Found %d potential matches. SELECT THE CORRECT REGIONAL VARIANT:\n\n", len(options))

	for i, pc := range options {
		fmt.Fprintf(&b, "OPTION %d: %s\n", i+1, pc.ProductName)
		fmt.Fprintf(&b, "  Category/Platform: %s\n", pc.Category)
		switch {
		case pc.LoosePrice != nil:
			fmt.Fprintf(&b, "  Loose: %s, CIB: %s, New: %s\n",
				dollars(pc.LoosePrice), dollars(pc.CIBPrice), dollars(pc.NewPrice))
		case pc.UsedPrice != nil:
			fmt.Fprintf(&b, "  Used: %s, New: %s\n", dollars(pc.UsedPrice), dollars(pc.NewPrice))
		}
		if pc.ReleaseDate != "" {
			fmt.Fprintf(&b, "  Release: %s\n", pc.ReleaseDate)
		}
		if pc.UPC != "" {
			fmt.Fprintf(&b, "  UPC: %s\n", pc.UPC)
		}
		fmt.Fprintf(&b, "  URL: %s\n\n", pc.ProductURL)
	}
	return b.String()
}

// BuildContext assembles the full deterministic context for the
// text-analysis call. The vision section only appears in the graded flow;
// pass a nil reading with graded=false to omit it.
func BuildContext(matches []lens.VisualMatch, reading *model.GradeReading, graded bool, options []model.PricingCandidate) string {
	var b strings.Builder
	b.WriteString(FormatSearchResults(matches))
	if graded {
		b.WriteString(FormatVisionFindings(reading))
	}
	b.WriteString(FormatPricingOptions(options))
	return b.String()
}

func dollars(cents *int) string {
	if cents == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", float64(*cents)/100)
}
