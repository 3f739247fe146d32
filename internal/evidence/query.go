package evidence

import (
	"strings"

	"github.com/dittoscan/ditto/internal/model"
)

// pricingSlugs maps canonical platform names to the slug the pricing
// provider indexes products under.
var pricingSlugs = map[string]string{
	// Nintendo - home consoles
	"NES": "nes", "Famicom": "famicom",
	"SNES": "super-nintendo", "Super Nintendo": "super-nintendo",
	"Super Famicom": "super-famicom",
	"Nintendo 64":   "nintendo-64", "N64": "nintendo-64",
	"GameCube": "gamecube", "Wii": "wii", "Wii U": "wii-u",
	"Switch": "nintendo-switch",
	// Nintendo - handhelds
	"Game Boy": "gameboy", "Game Boy Color": "gameboy-color",
	"Game Boy Advance": "gameboy-advance",
	"Nintendo DS":      "nintendo-ds", "Nintendo 3DS": "nintendo-3ds",
	"Virtual Boy": "virtual-boy",
	// PlayStation
	"PlayStation": "playstation", "PS1": "playstation",
	"PlayStation 2": "playstation-2", "PS2": "playstation-2",
	"PlayStation 3": "playstation-3", "PS3": "playstation-3",
	"PlayStation 4": "playstation-4", "PS4": "playstation-4",
	"PlayStation 5": "playstation-5", "PS5": "playstation-5",
	"PSP": "psp", "PS Vita": "playstation-vita",
	// Xbox
	"Xbox": "xbox", "Xbox 360": "xbox-360",
	"Xbox One": "xbox-one", "Xbox Series X": "xbox-series-x",
	// Sega
	"Sega Genesis": "sega-genesis", "Genesis": "sega-genesis",
	"Mega Drive":         "sega-mega-drive",
	"Sega Master System": "sega-master-system",
	"Game Gear":          "game-gear",
	"Sega Saturn":        "sega-saturn", "Saturn": "sega-saturn",
	"Sega Dreamcast": "sega-dreamcast", "Dreamcast": "sega-dreamcast",
	"Sega CD": "sega-cd", "Sega 32X": "sega-32x",
	// SNK
	"Neo Geo AES": "neo-geo", "Neo Geo MVS": "neo-geo",
	"Neo Geo Pocket":       "neo-geo-pocket",
	"Neo Geo Pocket Color": "neo-geo-pocket-color",
	// NEC
	"TurboGrafx-16": "turbografx-16", "PC Engine": "pc-engine",
	// Bandai
	"WonderSwan": "wonderswan", "WonderSwan Color": "wonderswan-color",
	// Other
	"3DO": "3do", "CDi": "cd-i",
	"Atari 2600": "atari-2600", "Atari 7800": "atari-7800",
	"Atari Jaguar": "atari-jaguar", "Atari Lynx": "atari-lynx",
}

// PricingQuery builds the free-text query sent to the pricing lookup for a
// detected item.
func PricingQuery(d Detection) string {
	switch d.Category {
	case model.CategoryVideoGameSoftware:
		if d.Platform != "" {
			slug, ok := pricingSlugs[d.Platform]
			if !ok {
				slug = strings.ReplaceAll(strings.ToLower(d.Platform), " ", "-")
			}
			return d.Name + " " + slug
		}
		return d.Name
	case model.CategoryLEGO:
		return "lego " + d.Name
	case model.CategoryComicBooks:
		return "comic " + d.Name
	default:
		return d.Name
	}
}

// shortForms collapses verbose platform names to the canonical short form
// used in exports and collection files.
var shortForms = map[string]string{
	"super nintendo":                       "SNES",
	"super nintendo entertainment system":  "SNES",
	"nintendo entertainment system":        "NES",
	"nintendo 64":                          "N64",
	"playstation":                          "PS1",
	"playstation 1":                        "PS1",
	"playstation 2":                        "PS2",
	"playstation 3":                        "PS3",
	"playstation 4":                        "PS4",
	"playstation 5":                        "PS5",
	"playstation vita":                     "PS Vita",
	"playstation portable":                 "PSP",
	"nintendo switch":                      "Switch",
	"sega genesis":                         "Genesis",
	"sega mega drive":                      "Mega Drive",
	"sega saturn":                          "Saturn",
	"sega dreamcast":                       "Dreamcast",
	"game boy advance":                     "GBA",
	"game boy color":                       "GBC",
	"neo geo advanced entertainment system": "Neo Geo AES",
}

// japaneseNames are the Japanese-market platform names, used to resolve a
// "Famicom / NES"-style ambiguity by the item's detected region.
var japaneseNames = map[string]bool{
	"famicom":       true,
	"super famicom": true,
	"mega drive":    true,
	"pc engine":     true,
	"wonderswan":    true,
}

// ShortPlatform collapses a platform string to its canonical short form.
// When the string carries both a Japanese and a western name ("Super
// Famicom / SNES"), the item's region decides: NTSC-J keeps the
// Japanese-market name, everything else keeps the western one.
func ShortPlatform(platform, region string) string {
	platform = strings.TrimSpace(platform)
	if platform == "" {
		return ""
	}

	if strings.Contains(platform, "/") {
		parts := strings.Split(platform, "/")
		preferJP := strings.EqualFold(strings.TrimSpace(region), "NTSC-J")
		picked := strings.TrimSpace(parts[0])
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if japaneseNames[strings.ToLower(p)] == preferJP {
				picked = p
				break
			}
		}
		platform = picked
	}

	if short, ok := shortForms[strings.ToLower(platform)]; ok {
		return short
	}
	return platform
}
