package chat

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"travelbro-server/internal/domain/tool"
)

// ToolOutcome pairs a tool call record with its typed result for the
// formatter; exactly one result field is set per outcome.
type ToolOutcome struct {
	Record tool.CallRecord
	Places *tool.PlacesResult
	Route  *tool.RouteResult
	Search *tool.WebSearchResult
}

// FormatParams is the input of one formatting pass.
type FormatParams struct {
	RawText      string
	VisionUsed   bool
	Tools        []ToolOutcome
	LatencyMS    int64
	TokensUsed   int
	CostEUR      float64
	UserLocation *LatLng
}

// Formatter derives the voice-friendly summary, display cards and actions
// from the model reply and the tool outcomes.
type Formatter struct{}

var (
	markdownLinkPattern = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	emojiPattern        = regexp.MustCompile(`[📍🍴🗺️✅❌⭐🎯🔍🏨]`)
	multiNewlinePattern = regexp.MustCompile(`\n{3,}`)
	sentenceSplit       = regexp.MustCompile(`[.!?]\s+`)

	restaurantCardPattern = regexp.MustCompile(`(?s)\d+\.\s+\*\*([^*]+)\*\*.*?Adres:\s+([^\n]+).*?Afstand:\s+(\d+)m`)
	routeCardPattern      = regexp.MustCompile(`(?s)Afstand:\s+([0-9.]+)\s*km.*?Reistijd:\s+(\d+)\s*minuten`)
)

var clarificationPhrases = []string{
	"welke", "wat bedoel je", "kun je specificeren", "meer informatie",
	"waar bedoel je", "welk hotel", "welke bestemming",
}

// Format builds the immutable client-facing response for one turn.
func (f Formatter) Format(p FormatParams) *Response {
	return &Response{
		Text:                  p.RawText,
		SpeechText:            f.speechText(p.RawText),
		DisplayCards:          f.displayCards(p.RawText, p.Tools),
		Actions:               f.actions(p.Tools),
		RequiresClarification: f.needsClarification(p.RawText),
		VisionUsed:            p.VisionUsed,
		Metadata: Metadata{
			ProcessingTimeMS: p.LatencyMS,
			TokensUsed:       p.TokensUsed,
			CostEUR:          p.CostEUR,
		},
	}
}

// speechText shapes the reply for a voice surface: link labels only, no
// emoji or bold markers, at most 3 sentences and 300 characters.
func (Formatter) speechText(text string) string {
	speech := markdownLinkPattern.ReplaceAllString(text, "$1")
	speech = emojiPattern.ReplaceAllString(speech, "")
	speech = strings.ReplaceAll(speech, "**", "")
	speech = multiNewlinePattern.ReplaceAllString(speech, "\n\n")

	sentences := sentenceSplit.Split(speech, -1)
	if len(sentences) > 3 {
		speech = strings.Join(sentences[:3], ". ") + "."
	}

	if runes := []rune(speech); len(runes) > 300 {
		speech = string(runes[:297]) + "..."
	}

	return strings.TrimSpace(speech)
}

// displayCards reconstructs structured cards from the model's rendered
// output; the typed tool result fills any field the prose does not yield,
// so cards survive phrasing drift.
func (Formatter) displayCards(text string, outcomes []ToolOutcome) []DisplayCard {
	var cards []DisplayCard

	for _, outcome := range outcomes {
		if !outcome.Record.Success {
			continue
		}

		switch outcome.Record.Tool {
		case tool.NamePlaces:
			cards = append(cards, restaurantCards(text, outcome.Places)...)
		case tool.NameDirections:
			if card, ok := routeCard(text, outcome.Route); ok {
				cards = append(cards, card)
			}
		case tool.NameWebSearch:
			count := 0
			if outcome.Search != nil {
				count = len(outcome.Search.Results)
			}
			cards = append(cards, DisplayCard{
				Type:  "info",
				Title: "Actuele informatie",
				Data: map[string]any{
					"source":       "Google Search",
					"result_count": count,
				},
				Priority: 5,
			})
		}
	}

	// Stable sort, descending priority.
	for i := 1; i < len(cards); i++ {
		for j := i; j > 0 && cards[j].Priority > cards[j-1].Priority; j-- {
			cards[j], cards[j-1] = cards[j-1], cards[j]
		}
	}
	return cards
}

func restaurantCards(text string, result *tool.PlacesResult) []DisplayCard {
	byName := map[string]tool.Restaurant{}
	if result != nil {
		for _, r := range result.Restaurants {
			byName[strings.ToLower(strings.TrimSpace(r.Name))] = r
		}
	}

	var cards []DisplayCard
	for _, match := range restaurantCardPattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(match[1])
		distance, _ := strconv.Atoi(match[3])
		data := map[string]any{
			"address":         strings.TrimSpace(match[2]),
			"distance_meters": distance,
		}
		if known, ok := byName[strings.ToLower(name)]; ok {
			if known.Rating > 0 {
				data["rating"] = known.Rating
			}
			if known.MapsURL != "" {
				data["google_maps_url"] = known.MapsURL
			}
			delete(byName, strings.ToLower(name))
		}
		cards = append(cards, DisplayCard{Type: "restaurant", Title: name, Data: data, Priority: 10})
	}

	// Cards for results the model reworded beyond recognition.
	if len(cards) == 0 && result != nil {
		for _, r := range result.Restaurants {
			cards = append(cards, DisplayCard{
				Type:  "restaurant",
				Title: r.Name,
				Data: map[string]any{
					"address":         r.Address,
					"distance_meters": r.DistanceMeters,
					"google_maps_url": r.MapsURL,
				},
				Priority: 10,
			})
		}
	}
	return cards
}

func routeCard(text string, result *tool.RouteResult) (DisplayCard, bool) {
	if result == nil {
		return DisplayCard{}, false
	}

	distanceKM := result.DistanceKM
	durationMinutes := result.DurationMinutes
	if match := routeCardPattern.FindStringSubmatch(text); match != nil {
		if v, err := strconv.ParseFloat(match[1], 64); err == nil {
			distanceKM = v
		}
		if v, err := strconv.Atoi(match[2]); err == nil {
			durationMinutes = v
		}
	}

	return DisplayCard{
		Type:  "route",
		Title: fmt.Sprintf("Route: %s → %s", result.Origin, result.Destination),
		Data: map[string]any{
			"distance_km":      distanceKM,
			"duration_minutes": durationMinutes,
			"origin":           result.Origin,
			"destination":      result.Destination,
		},
		Priority: 9,
	}, true
}

// actions derive one navigation affordance per tool with a natural physical
// action, plus the universal share action appended last.
func (Formatter) actions(outcomes []ToolOutcome) []Action {
	var actions []Action
	for _, outcome := range outcomes {
		if !outcome.Record.Success {
			continue
		}
		switch params := outcome.Record.Params.(type) {
		case tool.PlacesParams:
			actions = append(actions, Action{
				Type:  "navigate",
				Label: "Navigeer naar restaurant",
				Data:  map[string]any{"location": params.Location},
			})
		case tool.RouteParams:
			actions = append(actions, Action{
				Type:  "navigate",
				Label: "Start navigatie",
				Data:  map[string]any{"origin": params.Origin, "destination": params.Destination},
			})
		}
	}
	actions = append(actions, Action{Type: "share", Label: "Deel dit antwoord", Data: map[string]any{}})
	return actions
}

func (Formatter) needsClarification(text string) bool {
	if !strings.Contains(text, "?") {
		return false
	}
	lower := strings.ToLower(text)
	for _, phrase := range clarificationPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
