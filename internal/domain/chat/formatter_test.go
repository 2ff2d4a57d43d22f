package chat

import (
	"strings"
	"testing"

	"travelbro-server/internal/domain/tool"
)

func TestSpeechTextLimits(t *testing.T) {
	long := strings.Repeat("Dit is een hele lange zin zonder einde ", 20)
	speech := Formatter{}.speechText(long)
	if len([]rune(speech)) > 300 {
		t.Errorf("speech text exceeds 300 characters: %d", len([]rune(speech)))
	}

	many := "Eerste zin. Tweede zin. Derde zin. Vierde zin. Vijfde zin."
	speech = Formatter{}.speechText(many)
	if got := strings.Count(speech, "."); got > 3 {
		t.Errorf("speech text has %d sentence marks, want at most 3: %q", got, speech)
	}
	if strings.Contains(speech, "Vierde") {
		t.Errorf("fourth sentence survived: %q", speech)
	}
}

func TestSpeechTextStripsMarkup(t *testing.T) {
	text := "Bekijk [La Bodega](https://maps.example/abc) 📍 voor **lunch**."
	speech := Formatter{}.speechText(text)
	if strings.Contains(speech, "https://") || strings.Contains(speech, "**") || strings.Contains(speech, "📍") {
		t.Errorf("markup left in speech text: %q", speech)
	}
	if !strings.Contains(speech, "La Bodega") {
		t.Errorf("link label lost: %q", speech)
	}
}

func TestDisplayCardsFromProse(t *testing.T) {
	text := "Hier zijn opties:\n1. **La Bodega**\n   Adres: Calle Carmen 146\n   Afstand: 240m\n2. **Green Point**\n   Adres: Calle Mesa Redonda 235\n   Afstand: 410m\n"
	outcome := ToolOutcome{
		Record: tool.CallRecord{Tool: tool.NamePlaces, Params: tool.PlacesParams{Location: "Hotel Malabar"}, Success: true},
		Places: &tool.PlacesResult{
			Location: "Hotel Malabar",
			Restaurants: []tool.Restaurant{
				{Name: "La Bodega", Address: "Calle Carmen 146", DistanceMeters: 240, Rating: 4.6, MapsURL: "https://maps.example/1"},
			},
		},
	}

	cards := Formatter{}.displayCards(text, []ToolOutcome{outcome})
	if len(cards) != 2 {
		t.Fatalf("expected 2 restaurant cards, got %d", len(cards))
	}
	if cards[0].Type != "restaurant" || cards[0].Title != "La Bodega" {
		t.Errorf("unexpected first card: %+v", cards[0])
	}
	if cards[0].Data["distance_meters"] != 240 {
		t.Errorf("distance not parsed: %v", cards[0].Data["distance_meters"])
	}
	// Structured result enriches the prose-derived card.
	if cards[0].Data["rating"] != 4.6 {
		t.Errorf("rating not merged from tool result: %v", cards[0].Data)
	}
}

func TestDisplayCardsStructuredFallback(t *testing.T) {
	// The model reworded the list beyond the pattern; cards come from the
	// typed result instead.
	text := "Er zijn genoeg leuke plekken om te eten in de buurt!"
	outcome := ToolOutcome{
		Record: tool.CallRecord{Tool: tool.NamePlaces, Params: tool.PlacesParams{Location: "Cusco"}, Success: true},
		Places: &tool.PlacesResult{
			Location:    "Cusco",
			Restaurants: []tool.Restaurant{{Name: "Pachapapa", Address: "Plazoleta San Blas", DistanceMeters: 800}},
		},
	}

	cards := Formatter{}.displayCards(text, []ToolOutcome{outcome})
	if len(cards) != 1 || cards[0].Title != "Pachapapa" {
		t.Fatalf("expected structured fallback card, got %+v", cards)
	}
}

func TestDisplayCardsSkipFailedTools(t *testing.T) {
	outcome := ToolOutcome{
		Record: tool.CallRecord{Tool: tool.NamePlaces, Params: tool.PlacesParams{Location: "Cusco"}, Summary: "geocode_failed"},
		Places: &tool.PlacesResult{Location: "Cusco"},
	}
	if cards := (Formatter{}).displayCards("Helaas, geen data.", []ToolOutcome{outcome}); len(cards) != 0 {
		t.Errorf("failed tool produced cards: %+v", cards)
	}
}

func TestRouteCardPrefersProse(t *testing.T) {
	text := "🚗 Route gevonden!\nAfstand: 585 km\nReistijd: 432 minuten"
	outcome := ToolOutcome{
		Record: tool.CallRecord{Tool: tool.NameDirections, Params: tool.RouteParams{Origin: "Lima", Destination: "Cusco"}, Success: true},
		Route:  &tool.RouteResult{Origin: "Lima", Destination: "Cusco", DistanceKM: 584, DurationMinutes: 430},
	}

	cards := Formatter{}.displayCards(text, []ToolOutcome{outcome})
	if len(cards) != 1 || cards[0].Type != "route" {
		t.Fatalf("expected one route card, got %+v", cards)
	}
	if cards[0].Data["distance_km"] != 585.0 {
		t.Errorf("prose distance not preferred: %v", cards[0].Data["distance_km"])
	}
	if cards[0].Data["duration_minutes"] != 432 {
		t.Errorf("prose duration not preferred: %v", cards[0].Data["duration_minutes"])
	}
}

func TestCardPriorityOrdering(t *testing.T) {
	outcomes := []ToolOutcome{
		{
			Record: tool.CallRecord{Tool: tool.NameWebSearch, Params: tool.SearchParams{Query: "weer cusco"}, Success: true},
			Search: &tool.WebSearchResult{Query: "weer cusco", Results: []tool.SearchResult{{Title: "Weer"}}},
		},
		{
			Record: tool.CallRecord{Tool: tool.NamePlaces, Params: tool.PlacesParams{Location: "Cusco"}, Success: true},
			Places: &tool.PlacesResult{Location: "Cusco", Restaurants: []tool.Restaurant{{Name: "Pachapapa", Address: "San Blas", DistanceMeters: 800}}},
		},
	}

	cards := Formatter{}.displayCards("prima", outcomes)
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	if cards[0].Type != "restaurant" || cards[1].Type != "info" {
		t.Errorf("cards not ordered by priority: %s, %s", cards[0].Type, cards[1].Type)
	}
}

func TestActionsShareAlwaysLast(t *testing.T) {
	outcome := ToolOutcome{
		Record: tool.CallRecord{Tool: tool.NameDirections, Params: tool.RouteParams{Origin: "Lima", Destination: "Cusco"}, Success: true},
		Route:  &tool.RouteResult{Origin: "Lima", Destination: "Cusco"},
	}

	actions := Formatter{}.actions([]ToolOutcome{outcome})
	if len(actions) != 2 {
		t.Fatalf("expected navigate plus share, got %+v", actions)
	}
	if actions[0].Type != "navigate" {
		t.Errorf("expected navigate first, got %+v", actions[0])
	}
	if actions[len(actions)-1].Type != "share" {
		t.Errorf("share must be last, got %+v", actions)
	}

	bare := Formatter{}.actions(nil)
	if len(bare) != 1 || bare[0].Type != "share" {
		t.Errorf("turn without tools should still offer share: %+v", bare)
	}
}

func TestNeedsClarification(t *testing.T) {
	tests := []struct {
		text     string
		expected bool
	}{
		{"Welke bestemming bedoel je precies?", true},
		{"Welk hotel bedoel je?", true},
		{"Het restaurant is om de hoek.", false},
		{"Zal ik een route plannen?", false},
		{"welke dag bedoel je", false},
	}
	for _, tt := range tests {
		if got := (Formatter{}).needsClarification(tt.text); got != tt.expected {
			t.Errorf("needsClarification(%q) = %v, want %v", tt.text, got, tt.expected)
		}
	}
}
