package evidence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dittoscan/ditto/internal/model"
	"github.com/dittoscan/ditto/pkg/lens"
)

func match(title string) []lens.VisualMatch {
	return []lens.VisualMatch{{Title: title, Link: "https://example.com/listing"}}
}

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		title        string
		wantEligible bool
		wantCategory model.Category
		wantPlatform string
	}{
		{
			name:         "snes cartridge",
			title:        "Super Mario World SNES - eBay",
			wantEligible: true,
			wantCategory: model.CategoryVideoGameSoftware,
			wantPlatform: "SNES",
		},
		{
			name:         "ps2 disc",
			title:        "Gran Turismo 3 PS2 Complete",
			wantEligible: true,
			wantCategory: model.CategoryVideoGameSoftware,
			wantPlatform: "PS2",
		},
		{
			name:         "lego set",
			title:        "LEGO Creator Expert 10242 Mini Cooper",
			wantEligible: true,
			wantCategory: model.CategoryLEGO,
		},
		{
			name:         "comic issue",
			title:        "Amazing Spider-Man #300 Marvel",
			wantEligible: true,
			wantCategory: model.CategoryComicBooks,
		},
		{
			name:         "graded card",
			title:        "Charizard Pokemon Base Set PSA 10",
			wantEligible: true,
			wantCategory: model.CategoryTradingCards,
		},
		{
			name:         "physical media",
			title:        "The Matrix Blu-ray Steelbook",
			wantEligible: true,
			wantCategory: model.CategoryCollectibles,
		},
		{
			name:         "no category match",
			title:        "Vintage ceramic vase blue floral",
			wantEligible: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			d := Detect(match(tc.title))
			assert.Equal(t, tc.wantEligible, d.Eligible)
			assert.Equal(t, tc.wantCategory, d.Category)
			assert.Equal(t, tc.wantPlatform, d.Platform)
		})
	}
}

func TestDetectEmptyResults(t *testing.T) {
	t.Parallel()

	assert.False(t, Detect(nil).Eligible)
	assert.False(t, Detect([]lens.VisualMatch{{Title: "  "}}).Eligible)
}

func TestDetectNameStripsMarketplaceNoise(t *testing.T) {
	t.Parallel()

	d := Detect(match("Chrono Trigger SNES - eBay - $89.99"))
	require.True(t, d.Eligible)
	assert.Equal(t, "Chrono Trigger SNES", d.Name)
}

func TestPricingQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		d    Detection
		want string
	}{
		{
			name: "platform mapped to slug",
			d:    Detection{Name: "Super Mario World", Category: model.CategoryVideoGameSoftware, Platform: "SNES"},
			want: "Super Mario World super-nintendo",
		},
		{
			name: "unmapped platform kebab-cased",
			d:    Detection{Name: "Some Game", Category: model.CategoryVideoGameSoftware, Platform: "Odd Platform"},
			want: "Some Game odd-platform",
		},
		{
			name: "lego prefixed",
			d:    Detection{Name: "Mini Cooper", Category: model.CategoryLEGO},
			want: "lego Mini Cooper",
		},
		{
			name: "comic prefixed",
			d:    Detection{Name: "Amazing Spider-Man #300", Category: model.CategoryComicBooks},
			want: "comic Amazing Spider-Man #300",
		},
		{
			name: "trading card plain",
			d:    Detection{Name: "Charizard Base Set", Category: model.CategoryTradingCards},
			want: "Charizard Base Set",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, PricingQuery(tc.d))
		})
	}
}

func TestShortPlatform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		platform string
		region   string
		want     string
	}{
		{"verbose collapsed", "Super Nintendo", "NTSC-U", "SNES"},
		{"ambiguous prefers japanese for ntsc-j", "Super Famicom / Super Nintendo", "NTSC-J", "Super Famicom"},
		{"ambiguous prefers western otherwise", "Super Famicom / Super Nintendo", "NTSC-U", "SNES"},
		{"ambiguous western for pal", "Famicom / NES", "PAL", "NES"},
		{"unknown passes through", "Ouya", "NTSC-U", "Ouya"},
		{"empty", "", "NTSC-U", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ShortPlatform(tc.platform, tc.region))
		})
	}
}

func TestFormatSearchResultsCapsAtFifteen(t *testing.T) {
	t.Parallel()

	matches := make([]lens.VisualMatch, 20)
	for i := range matches {
		matches[i] = lens.VisualMatch{Title: "Listing", Link: "https://example.com"}
	}

	out := FormatSearchResults(matches)
	assert.Contains(t, out, "15. Listing")
	assert.NotContains(t, out, "16. Listing")
}

func TestFormatVisionFindings(t *testing.T) {
	t.Parallel()

	grade := 9.8
	reading := &model.GradeReading{
		Grade:               &grade,
		GradingAuthority:    "CGC",
		CertificationNumber: "4271988001",
		LabelColor:          "blue",
	}

	out := FormatVisionFindings(reading)
	assert.Contains(t, out, "Grading Authority: CGC")
	assert.Contains(t, out, "Grade: 9.8")
	assert.Contains(t, out, "Certification Number: 4271988001")

	empty := FormatVisionFindings(&model.GradeReading{})
	assert.Contains(t, empty, "did NOT detect a grading slab")
}

func TestFormatPricingOptions(t *testing.T) {
	t.Parallel()

	loose, cib := 8999, 15000
	out := FormatPricingOptions([]model.PricingCandidate{
		{
			ProductName: "Chrono Trigger",
			Category:    "Super Nintendo",
			LoosePrice:  &loose,
			CIBPrice:    &cib,
			ReleaseDate: "1995-08-11",
			ProductURL:  "https://www.pricecharting.com/game/6910",
		},
	})
	assert.Contains(t, out, "OPTION 1: Chrono Trigger")
	assert.Contains(t, out, "Loose: $89.99, CIB: $150.00, New: N/A")

	none := FormatPricingOptions(nil)
	assert.Contains(t, none, "NO PRICECHARTING DATA AVAILABLE")
}

func TestBuildContextOrdering(t *testing.T) {
	t.Parallel()

	out := BuildContext(match("Chrono Trigger SNES"), nil, true, nil)
	searchIdx := strings.Index(out, "GOOGLE IMAGE SEARCH RESULTS")
	visionIdx := strings.Index(out, "VISION GRADE EXTRACTION")
	pricingIdx := strings.Index(out, "NO PRICECHARTING DATA")
	require.True(t, searchIdx >= 0 && visionIdx > searchIdx && pricingIdx > visionIdx)

	ungraded := BuildContext(match("Chrono Trigger SNES"), nil, false, nil)
	assert.NotContains(t, ungraded, "VISION GRADE EXTRACTION")
}
