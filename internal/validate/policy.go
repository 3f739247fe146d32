package validate

import (
	"fmt"
	"strings"

	"github.com/dittoscan/ditto/internal/model"
)

// platformPolicy maps a recognized platform token to the pricing basis that
// platform mandates. Disc-based platforms price complete-in-box because a
// bare disc has no meaningful market; retro cartridge platforms price loose
// because that is how they overwhelmingly trade; modern cartridges still
// trade boxed. Order matters: more specific tokens come before their
// substrings (SNES before NES, Wii U before Wii, TurboGrafx-CD before
// TurboGrafx).
var platformPolicy = []struct {
	token string
	basis model.PricingBasis
}{
	// Disc-based.
	{"playstation 5", model.BasisCompleteInBox},
	{"playstation 4", model.BasisCompleteInBox},
	{"playstation 3", model.BasisCompleteInBox},
	{"playstation 2", model.BasisCompleteInBox},
	{"playstation", model.BasisCompleteInBox},
	{"ps5", model.BasisCompleteInBox},
	{"ps4", model.BasisCompleteInBox},
	{"ps3", model.BasisCompleteInBox},
	{"ps2", model.BasisCompleteInBox},
	{"ps1", model.BasisCompleteInBox},
	{"psx", model.BasisCompleteInBox},
	{"psp", model.BasisCompleteInBox},
	{"xbox series", model.BasisCompleteInBox},
	{"xbox one", model.BasisCompleteInBox},
	{"xbox 360", model.BasisCompleteInBox},
	{"xbox", model.BasisCompleteInBox},
	{"gamecube", model.BasisCompleteInBox},
	{"wii u", model.BasisCompleteInBox},
	{"wii", model.BasisCompleteInBox},
	{"dreamcast", model.BasisCompleteInBox},
	{"sega cd", model.BasisCompleteInBox},
	{"saturn", model.BasisCompleteInBox},
	{"turbografx-cd", model.BasisCompleteInBox},
	{"pc engine cd", model.BasisCompleteInBox},
	{"3do", model.BasisCompleteInBox},
	{"cd-i", model.BasisCompleteInBox},

	// Modern cartridge.
	{"switch", model.BasisCompleteInBox},
	{"nintendo 3ds", model.BasisCompleteInBox},
	{"3ds", model.BasisCompleteInBox},
	{"nintendo ds", model.BasisCompleteInBox},
	{"vita", model.BasisCompleteInBox},

	// Retro cartridge.
	{"super nintendo", model.BasisLooseCart},
	{"super famicom", model.BasisLooseCart},
	{"snes", model.BasisLooseCart},
	{"nintendo 64", model.BasisLooseCart},
	{"n64", model.BasisLooseCart},
	{"famicom", model.BasisLooseCart},
	{"nes", model.BasisLooseCart},
	{"virtual boy", model.BasisLooseCart},
	{"game boy color", model.BasisLooseCart},
	{"game boy advance", model.BasisLooseCart},
	{"game boy", model.BasisLooseCart},
	{"gbc", model.BasisLooseCart},
	{"gba", model.BasisLooseCart},
	{"genesis", model.BasisLooseCart},
	{"mega drive", model.BasisLooseCart},
	{"master system", model.BasisLooseCart},
	{"game gear", model.BasisLooseCart},
	{"32x", model.BasisLooseCart},
	{"atari 2600", model.BasisLooseCart},
	{"atari 5200", model.BasisLooseCart},
	{"atari 7800", model.BasisLooseCart},
	{"atari lynx", model.BasisLooseCart},
	{"lynx", model.BasisLooseCart},
	{"jaguar", model.BasisLooseCart},
	{"turbografx", model.BasisLooseCart},
	{"neo geo", model.BasisLooseCart},
	{"intellivision", model.BasisLooseCart},
	{"colecovision", model.BasisLooseCart},

	// Physical media.
	{"blu-ray", model.BasisCompleteInBox},
	{"bluray", model.BasisCompleteInBox},
	{"dvd", model.BasisCompleteInBox},
	{"vhs", model.BasisCompleteInBox},
	{"laserdisc", model.BasisCompleteInBox},
}

// applyPlatformPolicy overrides the pricing basis when a recognized
// platform/category mandates one AND the model picked a value the policy
// exists to prevent (a bare-media basis where boxed is mandatory, or the
// wrong loose medium). The model often echoes a marketplace listing's
// condition instead of the item's own; genuine expert judgment like
// NEW_SEALED is left alone.
func applyPlatformPolicy(a *model.Analysis) {
	mandatory, ok := mandatoryBasis(a)
	if !ok || a.PricingBasis == mandatory {
		return
	}
	if a.PricingBasis != model.BasisLooseDisc && a.PricingBasis != model.BasisLooseCart {
		return
	}
	flagReview(a, fmt.Sprintf("pricing basis %s overridden to platform default %s",
		a.PricingBasis, mandatory))
	a.PricingBasis = mandatory
}

func mandatoryBasis(a *model.Analysis) (model.PricingBasis, bool) {
	if a.Category == model.CategoryBooks {
		return model.BasisUsed, true
	}
	platform := strings.ToLower(a.Platform)
	if platform == "" {
		return "", false
	}
	for _, p := range platformPolicy {
		if strings.Contains(platform, p.token) {
			return p.basis, true
		}
	}
	return "", false
}
