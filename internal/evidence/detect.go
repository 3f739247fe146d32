// Package evidence builds the deterministic half of the model-facing
// context: category/platform detection from search results, pricing query
// construction, and prompt assembly. Detection decides whether a pricing
// lookup happens at all; no match means no lookup, which keeps false
// positives and wasted API calls down.
package evidence

import (
	"strings"

	"github.com/dittoscan/ditto/internal/model"
	"github.com/dittoscan/ditto/pkg/lens"
)

// Detection is the outcome of category/platform detection on search results.
type Detection struct {
	Eligible bool
	Name     string
	Category model.Category
	Platform string
}

var gamePlatformTokens = []string{
	"xbox", "xbox 360", "xbox one", "xbox series",
	"playstation", "ps1", "ps2", "ps3", "ps4", "ps5", "psp", "ps vita", "vita",
	"wii", "wii u", "switch", "nes", "famicom", "snes", "super famicom",
	"n64", "gamecube", "game boy", "gameboy", "gba", "game boy advance",
	"game boy color", "gbc", "ds", "3ds", "virtual boy",
	"genesis", "mega drive", "master system", "game gear",
	"saturn", "dreamcast", "sega cd", "sega 32x",
	"neo geo", "neo-geo", "neogeo", "aes", "mvs",
	"neo geo pocket", "wonderswan",
	"turbografx", "pc engine", "pc-engine",
	"3do", "cdi", "cd-i", "atari",
}

var gameKeywords = []string{"game", "video game", "cartridge"}

var legoContextTokens = []string{"brick", "minifig", "star wars", "creator"}

var comicTokens = []string{"#", "issue", "marvel", "dc comics", "image comics"}

var cardTokens = []string{
	"pokemon", "magic the gathering", "mtg", "yu-gi-oh", "yugioh",
	"trading card", "tcg", "baseball card", "sports card",
	"topps", "panini", "upper deck", "psa", "beckett", "graded card",
}

var mediaTokens = []string{"blu-ray", "bluray", "dvd", "vhs", "laserdisc", "box set"}

// canonical platform names, tested in order against the lower-cased title.
// More specific names come before their substrings.
var platformNames = []string{
	"Xbox Series X", "Xbox One", "Xbox 360", "Xbox",
	"PS5", "PS4", "PS3", "PS2", "PS1", "PSP", "PS Vita",
	"Switch", "Wii U", "Wii", "GameCube", "N64", "SNES", "NES",
	"Virtual Boy",
	"Game Boy Advance", "Game Boy Color", "Game Boy",
	"Nintendo 3DS", "Nintendo DS",
	"Genesis", "Sega Master System", "Game Gear",
	"Sega Saturn", "Sega Dreamcast", "Sega CD", "Sega 32X",
	"Neo Geo AES", "Neo Geo MVS", "Neo Geo Pocket Color", "Neo Geo Pocket",
	"WonderSwan Color", "WonderSwan",
	"TurboGrafx-16", "PC Engine",
	"3DO", "CDi",
	"Atari 2600", "Atari 7800", "Atari Jaguar", "Atari Lynx",
}

// Detect runs the ordered category heuristics against the first-ranked
// search result. Categories are tested in a fixed priority order (game,
// LEGO, comic, trading card, physical media) so ties cannot happen. It
// never fails: no match is a normal outcome meaning no pricing lookup.
func Detect(matches []lens.VisualMatch) Detection {
	if len(matches) == 0 {
		return Detection{}
	}

	title := strings.ToLower(matches[0].Title)
	if strings.TrimSpace(title) == "" {
		return Detection{}
	}

	isGame := containsAny(title, gamePlatformTokens) || containsAny(title, gameKeywords)
	isLego := strings.Contains(title, "lego") ||
		(strings.Contains(title, "set") && containsAny(title, legoContextTokens))
	isComic := strings.Contains(title, "comic") || containsAny(title, comicTokens)
	isCard := containsAny(title, cardTokens)
	isMedia := containsAny(title, mediaTokens)

	if !(isGame || isLego || isComic || isCard || isMedia) {
		return Detection{}
	}

	// The portion before the first dash is usually the product name; the
	// rest is marketplace noise ("- eBay", "- $12.99").
	name := strings.TrimSpace(strings.SplitN(matches[0].Title, "-", 2)[0])

	d := Detection{Eligible: true, Name: name}
	switch {
	case isGame:
		d.Category = model.CategoryVideoGameSoftware
		for _, plat := range platformNames {
			if strings.Contains(title, strings.ToLower(plat)) {
				d.Platform = plat
				break
			}
		}
	case isLego:
		d.Category = model.CategoryLEGO
	case isComic:
		d.Category = model.CategoryComicBooks
	case isCard:
		d.Category = model.CategoryTradingCards
	case isMedia:
		d.Category = model.CategoryCollectibles
	}
	return d
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
