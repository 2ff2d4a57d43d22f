package vision_test

import (
	"testing"

	"travelbro-server/internal/domain/vision"
)

func TestShouldAnalyze(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		hasImage bool
		expected bool
	}{
		{"no image", "wat zie je hier", false, false},
		{"image without text", "", true, true},
		{"image with whitespace only", "   ", true, true},
		{"explicit trigger", "wat staat er op dit bord precies, kun je dat voor mij vertalen", true, true},
		{"short caption", "mooi uitzicht hier", true, true},
		{"long unrelated sentence", "kunnen we morgen ergens anders gaan ontbijten want dit beviel niet echt", true, false},
		{"english trigger", "where am i, can you tell from this picture somehow please", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vision.ShouldAnalyze(tt.message, tt.hasImage); got != tt.expected {
				t.Errorf("ShouldAnalyze(%q, %v) = %v, want %v", tt.message, tt.hasImage, got, tt.expected)
			}
		})
	}
}

func TestDetailLevel(t *testing.T) {
	if got := vision.DetailLevel("wat staat er op het menu?"); got != "high" {
		t.Errorf("menu reading should use high detail, got %q", got)
	}
	if got := vision.DetailLevel("welk gebouw is dit?"); got != "auto" {
		t.Errorf("landmark question should use auto detail, got %q", got)
	}
}

func TestSniffCategories(t *testing.T) {
	categories := vision.SniffCategories("Op het menu staan verschillende gerechten.")
	if len(categories) == 0 || categories[0] != "menu" {
		t.Errorf("expected menu category, got %v", categories)
	}

	fallback := vision.SniffCategories("Een drukke straat met veel mensen.")
	if len(fallback) != 1 || fallback[0] != "general" {
		t.Errorf("expected general fallback, got %v", fallback)
	}
}

func TestHeuristicConfidence(t *testing.T) {
	short := vision.HeuristicConfidence("Een plein.")
	if short != 0.5 {
		t.Errorf("short digit-free reply should score 0.5, got %v", short)
	}

	long := vision.HeuristicConfidence("Dit is het Plaza de Armas in Cusco, aangelegd in 1534. Het plein wordt omringd door de kathedraal en koloniale arcades, en er zijn tientallen restaurants en winkels in de straten eromheen te vinden. Een bezoek duurt ongeveer een uur.")
	if long <= 0.5 {
		t.Errorf("long numbered reply should score higher, got %v", long)
	}
	if long > 0.95 {
		t.Errorf("confidence exceeds cap: %v", long)
	}
}
