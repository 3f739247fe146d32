package collection

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dittoscan/ditto/internal/model"
)

func intp(v int) *int { return &v }

func floatp(v float64) *float64 { return &v }

func success(a model.Analysis) model.InventoryRecord {
	return model.InventoryRecord{Status: model.StatusSuccess, Analysis: &a}
}

func TestFormatVideoGame(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    model.Analysis
		want string
	}{
		{
			"loose cart",
			model.Analysis{ItemName: "Call of Duty Black Ops", Platform: "PlayStation 3", PricingBasis: model.BasisLooseCart},
			"Call of Duty Black Ops PS3 Item Only",
		},
		{
			"pal region inserted",
			model.Analysis{ItemName: "Donkey Kong 3", Platform: "NES", Region: "PAL", PricingBasis: model.BasisCompleteInBox},
			"Donkey Kong 3 PAL NES CIB",
		},
		{
			"sealed",
			model.Analysis{ItemName: "Mario 2", Platform: "NES", PricingBasis: model.BasisNewSealed},
			"Mario 2 NES Sealed",
		},
		{
			"japanese name kept for ntsc-j",
			model.Analysis{ItemName: "Rock Man 4", Platform: "Famicom / NES", Region: "NTSC-J", PricingBasis: model.BasisLooseCart},
			"Rock Man 4 Famicom Item Only",
		},
		{
			"no condition for unmapped basis",
			model.Analysis{ItemName: "PS2 Console", Platform: "PlayStation 2", PricingBasis: model.BasisConsoleOnly},
			"PS2 Console PS2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, formatVideoGame(&tt.a))
		})
	}
}

func TestFormatComic(t *testing.T) {
	t.Parallel()

	a := model.Analysis{
		ItemName:    "Action Comics",
		IssueNumber: "13",
		Year:        intp(1939),
		Grade:       floatp(8),
		Grader:      "CGC",
	}
	assert.Equal(t, "Action Comics #13 1939 CGC 8", formatComic(&a))

	// Issue and year already in the name are not repeated.
	a = model.Analysis{ItemName: "Action Comics #13 1939", IssueNumber: "13", Year: intp(1939)}
	assert.Equal(t, "Action Comics #13 1939", formatComic(&a))
}

func TestFormatTradingCard(t *testing.T) {
	t.Parallel()

	a := model.Analysis{ItemName: "Charizard Pokemon Base Set", IssueNumber: "4"}
	assert.Equal(t, "Charizard Pokemon Base Set #4", formatTradingCard(&a))

	a.Grader = "PSA"
	a.Grade = floatp(10)
	assert.Equal(t, "Charizard Pokemon Base Set #4 PSA 10", formatTradingCard(&a))

	// Grade without grader.
	a.Grader = ""
	a.Grade = floatp(9.5)
	assert.Equal(t, "Charizard Pokemon Base Set #4 9.5", formatTradingCard(&a))
}

func TestFormatLego(t *testing.T) {
	t.Parallel()

	rec := success(model.Analysis{ItemName: "Fire Mario", MatchUsed: intp(1)})
	rec.Pricing = []model.PricingCandidate{
		{ProductName: "Fire Mario [#71370]", Category: "LEGO Super Mario"},
	}
	assert.Equal(t, "Fire Mario #71370 LEGO Super Mario", formatLego(&rec))

	// No pricing data falls back to the item name.
	bare := success(model.Analysis{ItemName: "Millennium Falcon UCS"})
	assert.Equal(t, "Millennium Falcon UCS LEGO", formatLego(&bare))

	// Name already mentioning LEGO is left alone.
	named := success(model.Analysis{ItemName: "LEGO Creator Treehouse"})
	assert.Equal(t, "LEGO Creator Treehouse", formatLego(&named))
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	records := []model.InventoryRecord{
		success(model.Analysis{ItemName: "Super Metroid", Platform: "Super Nintendo", Category: model.CategoryVideoGameSoftware, PricingBasis: model.BasisLooseCart}),
		success(model.Analysis{ItemName: "Chrono Trigger", Platform: "Super Nintendo", Category: model.CategoryVideoGameSoftware, PricingBasis: model.BasisCompleteInBox}),
		success(model.Analysis{ItemName: "Amazing Spider-Man", IssueNumber: "300", Category: model.CategoryComicBooks, Grade: floatp(9.8), Grader: "CGC"}),
		success(model.Analysis{ItemName: "Vintage lamp", Category: model.CategoryCollectibles}),
		{Status: model.StatusFailed},
	}

	dir := t.TempDir()
	res, err := Generate(records, dir)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 2, res.Files[filepath.Join(dir, "videogames.txt")])
	assert.Equal(t, 1, res.Files[filepath.Join(dir, "comics.txt")])
	assert.NoFileExists(t, filepath.Join(dir, "cards.txt"))

	data, err := os.ReadFile(filepath.Join(dir, "videogames.txt"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"Super Metroid SNES Item Only"`, lines[0])
	assert.Equal(t, `"Chrono Trigger SNES CIB"`, lines[1])

	comics, err := os.ReadFile(filepath.Join(dir, "comics.txt"))
	require.NoError(t, err)
	assert.Equal(t, "\"Amazing Spider-Man #300 CGC 9.8\"\n", string(comics))
}
