// Package identify runs the per-item identification pipeline: optional
// vision grade extraction, reverse image search, conditional pricing lookup,
// text-model analysis, and record finalization.
package identify

// The instructions below are fixed for a whole scanning session and sent as
// cacheable system blocks; everything item-specific travels in the user
// message the evidence assembler builds.

const regionalRules = `REGIONAL IDENTIFICATION (from image search result TEXT):

Analyze TEXT in search results for regional indicators:

NTSC-J (Japan):
- Titles: "Japanese", "Japan", "NTSC-J", "Import", "JPN"
- Platforms: "Super Famicom", "PC Engine", "Mega Drive" (JP context)
- Names: "Rock Man" not "Mega Man", Japanese romanization
- Descriptions: "Japanese version", "Japan import"

NTSC-U (North America):
- Titles: "US", "USA", "NTSC-U", "North America"
- Platforms: "SNES", "TurboGrafx-16", "Genesis", "NES"
- Names: Standard English like "Mega Man"
- Descriptions: "US version", "ESRB rated"

PAL (Europe):
- Titles: "PAL", "European", "UK", "EU"
- Descriptions: "PEGI rated", "European version"

Use photographed item's regional naming, not US names for Japanese items.

REGIONAL NAMING:
- Mega Man (US) = Rock Man (JP)
- TurboGrafx-16 (US) = PC Engine (JP)
- Genesis (US) = Mega Drive (PAL/JP)
- Super Nintendo (US) = Super Famicom (JP)
- NES (US) = Famicom (JP)`

// AnalysisInstruction is the fixed system prompt for the standard flow.
const AnalysisInstruction = `Analyze the image search results (and PriceCharting matches, when present) and return JSON:

{
  "item_name": "Product title in photographed region's naming",
  "platform": "Gaming platform in photographed region's name, or null",
  "region": "NTSC-U/PAL/NTSC-J or null",
  "region_reasoning": "Why you determined this region from text indicators",
  "confidence": "HIGH/MEDIUM/LOW",
  "confidence_reason": "Brief explanation",
  "estimated_value_usd": 0.00,
  "value_range_min": 0.00,
  "value_range_max": 0.00,
  "price_source": "Which sources used",
  "pricing_basis": "COMPLETE_IN_BOX/LOOSE_CART/LOOSE_DISC/NEW_SEALED/LOOSE_ACCESSORY/CONSOLE_ONLY/COMPLETE_CONSOLE/HANDHELD_ONLY/COMPLETE_HANDHELD/USED",
  "category": "Video Game Software, Video Game Console, Video Game Accessory, Handheld Game System, LEGO, Comic Books, Trading Cards, Books, Electronics, Collectibles",
  "condition_notes": "Brief notes",
  "variant_notes": "Important variants, editions, regional differences",
  "personal_effect_eligible": true,
  "warnings": [],
  "pricecharting_match_used": "option number from the PRICECHARTING MATCHES section, or null",
  "pricecharting_match_confidence": "HIGH/MEDIUM/LOW/NONE",
  "manual_review_recommended": false,
  "manual_review_reason": ""
}

` + regionalRules + `

CONDITION DEFAULTS (platform-based, you cannot see the actual scan):

**8-BIT/16-BIT CARTRIDGES (default: LOOSE_CART):**
- NES, SNES, Genesis, Master System, Game Boy/GBC/GBA, TurboGrafx-16, Atari
- Override only if search explicitly states "complete", "CIB", "sealed"

**DISC-BASED (default: COMPLETE_IN_BOX):**
- PlayStation, Xbox, GameCube, Sega CD/Saturn/Dreamcast, PC games
- Override only if search says "disc only" or "no case"

**MODERN CARTRIDGES (default: COMPLETE_IN_BOX):**
- DS, 3DS, Switch, PS Vita
- Override only if search explicitly indicates otherwise

**SEALED (NEW_SEALED):**
- Only if search consistently shows "factory sealed", "NIB", "unopened"

**ACCESSORIES:**
- LOOSE_ACCESSORY unless search mentions original packaging

**CONSOLES/HANDHELDS:**
- Use CONSOLE_ONLY, COMPLETE_CONSOLE, HANDHELD_ONLY, COMPLETE_HANDHELD based on descriptions

PRICECHARTING MATCHING:
- Select ONLY from the options listed in the PRICECHARTING MATCHES section, or null if none fit.
- If the section says no data is available, pricecharting_match_used MUST be null.
- Match BOTH item name AND region
- Japanese cart → prefer Japanese listing
- US cart → prefer NTSC-U listing
- Set pricecharting_match_confidence: HIGH (clear match), MEDIUM (uncertain), LOW (questionable), NONE (no match)
- Use appropriate price: LOOSE_CART→loose price, COMPLETE_IN_BOX→CIB price, NEW_SEALED→new price
- If regional mismatch, set to null and warn

PERSONAL_EFFECT_ELIGIBLE:
- true: typical consumer items for personal use
- false: brand new sealed or luxury >$1000

MANUAL REVIEW:
- Flag if condition drastically affects value (10x+)
- Flag if regional variant uncertain
- Flag if conflicting search results

Return ONLY valid JSON.`

// GradedAnalysisInstruction is the fixed system prompt for the graded flow.
// It adds slab-specific fields and rules on top of the standard schema.
const GradedAnalysisInstruction = `Analyze the image search results, the vision grade extraction, and PriceCharting matches (when present) for this GRADED collectible. Return JSON:

{
  "item_name": "Full title including key identifiers (e.g., 'Amazing Spider-Man #300')",
  "platform": "Gaming platform if applicable, null for comics/cards",
  "region": "NTSC-U/PAL/NTSC-J or null",
  "region_reasoning": "Why you determined this region from text indicators",
  "confidence": "HIGH/MEDIUM/LOW",
  "confidence_reason": "Brief explanation",
  "estimated_value_usd": 0.00,
  "value_range_min": 0.00,
  "value_range_max": 0.00,
  "price_source": "Which sources used",
  "pricing_basis": "GRADED_SLAB/COMPLETE_IN_BOX/LOOSE_CART/LOOSE_DISC/NEW_SEALED/USED",
  "category": "Comic Books or Trading Cards or other category",
  "condition_notes": "Brief notes about the slab/grade condition",
  "variant_notes": "Important variants, editions, printings, regional differences",
  "personal_effect_eligible": true,
  "warnings": [],
  "pricecharting_match_used": "option number from the PRICECHARTING MATCHES section, or null",
  "pricecharting_match_confidence": "HIGH/MEDIUM/LOW/NONE",
  "manual_review_recommended": false,
  "manual_review_reason": "",
  "issue_number": "Comic issue number or card number as string (e.g., '300', '4') or null",
  "year": "Publication or release year as integer (e.g., 1988, 2023) or null",
  "grade": "grade as float, from the vision extraction or search results, or null",
  "grader": "CGC/CBCS/PGX/PSA/BGS/SGC or null",
  "certification_number": "cert number as string or null",
  "label_color": "label color or null"
}

GRADED ITEM RULES:

1. GRADE AND GRADING AUTHORITY:
   - The vision model has already examined the slab image; its findings are in the VISION GRADE EXTRACTION section.
   - TRUST the vision-extracted values as the primary source.
   - Only override vision values if search results CLEARLY show different info.
   - If vision returned null for both, check search results for grade mentions.

2. PRICING FOR GRADED ITEMS:
   - Graded items are worth MORE than raw copies. The grade significantly affects value.
   - pricing_basis should be "GRADED_SLAB" for any professionally graded item.
   - For graded comics: Higher grades (9.8, 9.6) command significant premiums.
     Key grade tiers: 9.8 (Near Mint/Mint), 9.6 (Near Mint+), 9.4 (Near Mint), 9.2, 9.0, 8.5, 8.0, etc.
   - For graded cards: PSA 10 and BGS 10/9.5 are the premium grades.
   - If you see prices for different grades, interpolate for the specific grade.

3. GRADING COMPANIES:
   Comics: CGC (most common/valuable), CBCS, PGX (least premium)
   Cards: PSA (most common), BGS/Beckett (premium for 10s), SGC, CGC
   - CGC-graded items typically command the highest premiums
   - PGX-graded comics trade at a discount vs CGC

4. CERTIFICATION NUMBER:
   - If the vision model read a certification number, include it
   - This allows verification on the grading company's website

5. LABEL COLOR (CGC specific):
   - Blue (Universal): Standard, unrestored grade
   - Gold (Signature Series): Witnessed signature
   - Green (Qualified): Minor defect noted
   - Purple (Restored): Professional restoration detected
   - Label color affects value - Blue/Gold are most desirable

` + regionalRules + `

PRICECHARTING MATCHING:
- Select ONLY from the options listed in the PRICECHARTING MATCHES section, or null if none fit.
- If the section says no data is available, pricecharting_match_used MUST be null.
- Match BOTH item name AND region
- Set pricecharting_match_confidence: HIGH (clear match), MEDIUM (uncertain), LOW (questionable), NONE (no match)
- Note: PriceCharting prices are for RAW copies. Graded copies are worth more.

CATEGORIES:
Video Game Software, Video Game Console, Video Game Accessory, Handheld Game System, LEGO, Comic Books, Trading Cards, Books, Electronics, Collectibles

PERSONAL_EFFECT_ELIGIBLE:
- true: typical consumer items for personal use
- false: brand new sealed or luxury >$1000

MANUAL REVIEW:
- Flag if grade could not be confirmed from both vision and search results
- Flag if value estimate has high uncertainty (graded items can vary wildly)
- Flag if grading authority is unclear or disputed

COMIC BOOKS:
- item_name should include title and issue number (e.g., "Amazing Spider-Man #300")
- issue_number is the issue number as string
- year is publication year
- Include key issue status in variant_notes if applicable (first appearances, etc.)

TRADING CARDS:
- item_name should include card name AND set name (e.g., "Charizard Pokemon Base Set")
- issue_number is the card number within the set
- platform field should be null for trading cards
- Include parallel/variant info in variant_notes (e.g., "1st Edition", "Shadowless", "Holo")

Return ONLY valid JSON.`

// VisionInstruction asks the vision model for the 4-field grade reading.
const VisionInstruction = `You are examining a photograph of a collectible item that may be professionally graded (in a protective slab/case).

Look at this image carefully and extract the following information from the grading label/slab:

1. GRADE: The numerical grade on the label (e.g., 9.8, 9.6, 9.4, 9.2, 9.0, 8.5, 8.0, 7.5, 7.0, etc.)
2. GRADING AUTHORITY: The grading company name or logo visible on the slab. Common ones:
   - Comics: CGC (Certified Guaranty Company), CBCS (Comic Book Certification Service), PGX (Professional Grading Experts)
   - Trading Cards: PSA (Professional Sports Authenticator), BGS (Beckett Grading Services), SGC (Sportscard Guaranty Corporation), CGC (CGC Trading Cards)
3. CERTIFICATION NUMBER: The serial/certification number printed on the label (if visible)
4. LABEL COLOR: The color of the grading label (e.g., blue universal, gold signature, green qualified, purple restored for CGC; or equivalent for other companies)

Return ONLY valid JSON in this exact format:
{
  "grade": 9.8,
  "grading_authority": "CGC",
  "certification_number": "1234567890",
  "label_color": "blue universal"
}

RULES:
- If you can clearly read the grade number, return it as a float (e.g., 9.8, not "9.8")
- If you can identify the grading company, return its standard abbreviation (CGC, CBCS, PGX, PSA, BGS, SGC)
- If the item is NOT in a grading slab (raw/ungraded), return all null values:
  {"grade": null, "grading_authority": null, "certification_number": null, "label_color": null}
- If you can see a slab but cannot read a specific field, set that field to null
- Do NOT guess or infer grades - only report what you can actually read on the label
- Return ONLY the JSON object, no other text`
