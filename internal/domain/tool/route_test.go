package tool_test

import (
	"strings"
	"testing"

	"travelbro-server/internal/domain/tool"
)

func TestParseRoutePair(t *testing.T) {
	tests := []struct {
		name        string
		message     string
		origin      string
		destination string
		ok          bool
	}{
		{"dutch pair", "hoe ver is het van Lima naar Cusco?", "Lima", "Cusco", true},
		{"dutch pair no punctuation", "route van Amsterdam naar Utrecht", "Amsterdam", "Utrecht", true},
		{"english pair", "how far is it from Lima to Cusco?", "Lima", "Cusco", true},
		{"multi word place", "van Machu Picchu dorp naar Cusco, hoe lang duurt dat", "Machu Picchu dorp", "Cusco", true},
		{"no pair", "hoe ver is het naar het centrum", "", "", false},
		{"empty", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origin, destination, ok := tool.ParseRoutePair(tt.message)
			if ok != tt.ok {
				t.Fatalf("ParseRoutePair(%q) ok = %v, want %v", tt.message, ok, tt.ok)
			}
			if origin != tt.origin || destination != tt.destination {
				t.Errorf("ParseRoutePair(%q) = %q, %q; want %q, %q",
					tt.message, origin, destination, tt.origin, tt.destination)
			}
		})
	}
}

func TestPlacesResultPromptText(t *testing.T) {
	empty := &tool.PlacesResult{Location: "Cusco"}
	if empty.PromptText() != "" {
		t.Error("empty result should render no prompt text")
	}

	open := true
	result := &tool.PlacesResult{
		Location: "Hotel Malabar",
		Restaurants: []tool.Restaurant{
			{Name: "La Bodega", Address: "Calle Carmen 146", DistanceMeters: 240, Rating: 4.6, OpenNow: &open},
		},
	}
	text := result.PromptText()
	for _, want := range []string{"La Bodega", "Calle Carmen 146", "240m", "4.6/5", "Nu open"} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt text missing %q:\n%s", want, text)
		}
	}
}
