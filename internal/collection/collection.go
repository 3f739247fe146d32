// Package collection turns the inventory into PriceCharting bulk-upload
// files: one text file of quoted search strings per supported category.
package collection

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/dittoscan/ditto/internal/evidence"
	"github.com/dittoscan/ditto/internal/model"
)

// group is an output file key.
type group string

const (
	groupVideoGames group = "videogames"
	groupLegos      group = "legos"
	groupComics     group = "comics"
	groupCards      group = "cards"
)

// conditionNames maps a pricing basis to PriceCharting's condition wording.
var conditionNames = map[model.PricingBasis]string{
	model.BasisLooseCart:     "Item Only",
	model.BasisCompleteInBox: "CIB",
	model.BasisNewSealed:     "Sealed",
}

var bracketSetNumber = regexp.MustCompile(`\[#(\d+)\]`)

// Result summarizes a generation run.
type Result struct {
	Files   map[string]int // file path -> line count
	Skipped int            // failed or non-matching items
}

// Generate writes the collection files for records into dir. Only successful
// records in PriceCharting-supported categories are included.
func Generate(records []model.InventoryRecord, dir string) (*Result, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "collection: create %s", dir)
	}

	lines := map[group][]string{}
	res := &Result{Files: map[string]int{}}
	for i := range records {
		rec := &records[i]
		g, ok := groupFor(rec)
		if !ok {
			res.Skipped++
			continue
		}
		lines[g] = append(lines[g], strconv.Quote(formatRecord(g, rec)))
	}

	for g, ls := range lines {
		path := filepath.Join(dir, string(g)+".txt")
		if err := os.WriteFile(path, []byte(strings.Join(ls, "\n")+"\n"), 0o644); err != nil {
			return nil, eris.Wrapf(err, "collection: write %s", path)
		}
		res.Files[path] = len(ls)
	}
	return res, nil
}

func groupFor(rec *model.InventoryRecord) (group, bool) {
	if !rec.Succeeded() || rec.Analysis == nil {
		return "", false
	}
	switch rec.Analysis.Category {
	case model.CategoryVideoGameSoftware, model.CategoryVideoGameConsole,
		model.CategoryVideoGameAccess, model.CategoryHandheldSystem:
		return groupVideoGames, true
	case model.CategoryLEGO:
		return groupLegos, true
	case model.CategoryComicBooks:
		return groupComics, true
	case model.CategoryTradingCards:
		return groupCards, true
	default:
		return "", false
	}
}

func formatRecord(g group, rec *model.InventoryRecord) string {
	switch g {
	case groupVideoGames:
		return formatVideoGame(rec.Analysis)
	case groupLegos:
		return formatLego(rec)
	case groupComics:
		return formatComic(rec.Analysis)
	default:
		return formatTradingCard(rec.Analysis)
	}
}

// formatVideoGame builds "{name} [PAL] {platform} [condition]", e.g.
// "Donkey Kong 3 PAL NES CIB".
func formatVideoGame(a *model.Analysis) string {
	parts := []string{a.ItemName}
	if a.Region == "PAL" {
		parts = append(parts, "PAL")
	}
	if plat := evidence.ShortPlatform(a.Platform, a.Region); plat != "" {
		parts = append(parts, plat)
	}
	if cond, ok := conditionNames[a.PricingBasis]; ok {
		parts = append(parts, cond)
	}
	return strings.Join(parts, " ")
}

// formatTradingCard builds "{name} [#{number}] [{grader} {grade}]", e.g.
// "Charizard Pokemon Base Set #4 PSA 10". The item name is expected to carry
// the set name already.
func formatTradingCard(a *model.Analysis) string {
	parts := []string{a.ItemName}
	if a.IssueNumber != "" && !strings.Contains(a.ItemName, "#"+a.IssueNumber) {
		parts = append(parts, "#"+a.IssueNumber)
	}
	parts = appendGrade(parts, a)
	return strings.Join(parts, " ")
}

// formatComic builds "{title} [#{issue}] [{year}] [{grader} {grade}]", e.g.
// "Action Comics #13 1939 CGC 8".
func formatComic(a *model.Analysis) string {
	parts := []string{a.ItemName}
	if a.IssueNumber != "" && !strings.Contains(a.ItemName, "#"+a.IssueNumber) {
		parts = append(parts, "#"+a.IssueNumber)
	}
	if a.Year != nil {
		year := strconv.Itoa(*a.Year)
		if !strings.Contains(a.ItemName, year) {
			parts = append(parts, year)
		}
	}
	parts = appendGrade(parts, a)
	return strings.Join(parts, " ")
}

func appendGrade(parts []string, a *model.Analysis) []string {
	if a.Grade == nil {
		return parts
	}
	grade := strconv.FormatFloat(*a.Grade, 'f', -1, 64)
	if a.Grader != "" {
		return append(parts, a.Grader+" "+grade)
	}
	return append(parts, grade)
}

// formatLego builds "{name} [#{set_number}] LEGO [{theme}]", preferring the
// matched PriceCharting product name and theme when the record has them,
// e.g. "Fire Mario #71370 LEGO Super Mario".
func formatLego(rec *model.InventoryRecord) string {
	a := rec.Analysis
	if len(rec.Pricing) == 0 {
		parts := []string{a.ItemName}
		if !strings.Contains(strings.ToUpper(a.ItemName), "LEGO") {
			parts = append(parts, "LEGO")
		}
		return strings.Join(parts, " ")
	}

	pc := rec.Pricing[0]
	if a.MatchUsed != nil && *a.MatchUsed >= 1 && *a.MatchUsed <= len(rec.Pricing) {
		pc = rec.Pricing[*a.MatchUsed-1]
	}

	name := pc.ProductName
	if name == "" {
		name = a.ItemName
	}
	name = bracketSetNumber.ReplaceAllString(name, "#$1")

	// The PriceCharting category carries the theme, e.g. "LEGO Super Mario".
	theme := ""
	switch {
	case strings.HasPrefix(strings.ToUpper(pc.Category), "LEGO "):
		theme = pc.Category[5:]
	case !strings.EqualFold(pc.Category, "LEGO"):
		theme = pc.Category
	}

	parts := []string{name}
	if !strings.Contains(strings.ToUpper(name), "LEGO") {
		parts = append(parts, "LEGO")
	}
	if theme != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(theme)) {
		parts = append(parts, theme)
	}
	return strings.Join(parts, " ")
}

// Describe renders a one-line summary for logs.
func (r *Result) Describe() string {
	total := 0
	for _, n := range r.Files {
		total += n
	}
	return fmt.Sprintf("%d items across %d files, %d skipped", total, len(r.Files), r.Skipped)
}
