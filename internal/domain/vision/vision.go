package vision

import (
	"strings"
	"unicode"
)

// Analysis is the outcome of one image-understanding call. It is derived at
// most once per turn, logged, and merged into the prompt context; it is
// never persisted as a slot.
type Analysis struct {
	Description     string
	DetectedObjects []string
	Categories      []string
	Confidence      float64
	LocationName    string
	LocationCity    string
	LocationCountry string

	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	CostEUR          float64
	LatencyMS        int64
}

// LocationLabel joins the identified place parts into a single display
// string, e.g. "Sagrada Família, Barcelona, Spanje".
func (a *Analysis) LocationLabel() string {
	var parts []string
	for _, part := range []string{a.LocationName, a.LocationCity, a.LocationCountry} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

// Explicit visual-intent trigger phrases. A message containing any of these
// alongside an image always warrants analysis.
var explicitTriggers = []string{
	"wat zie je", "wat staat er", "lees dit", "vertaal dit", "translate",
	"what do you see", "kijk", "bekijk", "op de foto", "in de afbeelding",
	"op het menu", "wat is dit", "herken je", "waar is dit", "waar ben ik",
	"waar ligt dit", "waar ligt deze", "waar is deze", "welke plek",
	"welke plaats", "welke locatie", "where is this", "where am i",
	"identify location", "kun je zien", "kun je de foto", "herkennen",
	"deze plek", "deze plaats", "dit gebouw", "deze foto", "de foto",
}

// ShouldAnalyze is the vision gate: an image with no accompanying text, an
// explicit visual-intent trigger, or a very short caption warrants an
// image-understanding call; a long unrelated sentence does not.
func ShouldAnalyze(message string, hasImage bool) bool {
	if !hasImage {
		return false
	}
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return true
	}

	lower := strings.ToLower(trimmed)
	for _, trigger := range explicitTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}

	return len(strings.Fields(trimmed)) <= 5
}

// Keywords whose presence needs OCR precision on menus, signs and text.
var highDetailKeywords = []string{
	"menu", "lees", "vertaal", "wat staat er", "tekst", "bord", "sign", "kaart",
}

// DetailLevel picks the image detail hint: high for menu/sign/text reading,
// auto for landmarks and general scenes.
func DetailLevel(message string) string {
	lower := strings.ToLower(message)
	for _, keyword := range highDetailKeywords {
		if strings.Contains(lower, keyword) {
			return "high"
		}
	}
	return "auto"
}

// SniffCategories derives coarse categories from a free-text vision reply
// via keyword matching. Used as a fallback when the model does not return
// structured categories.
func SniffCategories(text string) []string {
	lower := strings.ToLower(text)
	var categories []string
	for keyword, category := range map[string]string{
		"menu":     "menu",
		"gerecht":  "menu",
		"bord":     "signage",
		"sign":     "signage",
		"monument": "landmark",
		"landmark": "landmark",
		"gebouw":   "landmark",
		"kaart":    "map",
		"map":      "map",
	} {
		if strings.Contains(lower, keyword) && !contains(categories, category) {
			categories = append(categories, category)
		}
	}
	if len(categories) == 0 {
		categories = []string{"general"}
	}
	return categories
}

// HeuristicConfidence scores a free-text vision reply: longer answers that
// contain numbers (prices, years, distances) score higher.
func HeuristicConfidence(text string) float64 {
	confidence := 0.5
	if len(text) > 200 {
		confidence += 0.2
	} else if len(text) > 80 {
		confidence += 0.1
	}
	for _, r := range text {
		if unicode.IsDigit(r) {
			confidence += 0.15
			break
		}
	}
	if confidence > 0.95 {
		confidence = 0.95
	}
	return confidence
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
