package slots_test

import (
	"strings"
	"testing"

	"travelbro-server/internal/domain/intent"
	"travelbro-server/internal/domain/slots"
	"travelbro-server/internal/domain/trip"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestMergeDisjointFields(t *testing.T) {
	stored := slots.Slots{CurrentDestination: "Cusco"}
	merged := stored.Merge(slots.Update{CurrentHotel: strPtr("Hotel Malabar")})

	if merged.CurrentDestination != "Cusco" {
		t.Errorf("hotel update cleared destination: %q", merged.CurrentDestination)
	}
	if merged.CurrentHotel != "Hotel Malabar" {
		t.Errorf("hotel not set: %q", merged.CurrentHotel)
	}
}

func TestMergeUnsetNeverErases(t *testing.T) {
	stored := slots.Slots{
		CurrentDestination: "Lima",
		CurrentHotel:       "Hotel Costa",
		CurrentDay:         3,
		LastIntent:         intent.IntentRestaurants,
	}
	merged := stored.Merge(slots.Update{})

	if merged.CurrentDestination != stored.CurrentDestination ||
		merged.CurrentHotel != stored.CurrentHotel ||
		merged.CurrentDay != stored.CurrentDay ||
		merged.LastIntent != stored.LastIntent {
		t.Errorf("empty update changed slots: %+v", merged)
	}
}

func TestMergeMetadataKeyByKey(t *testing.T) {
	stored := slots.Slots{Metadata: map[string]any{"diet": "vegetarian", "party_size": 2}}
	merged := stored.Merge(slots.Update{Metadata: map[string]any{"party_size": 4, "budget": "low"}})

	if merged.Metadata["diet"] != "vegetarian" {
		t.Errorf("unrelated metadata key lost: %v", merged.Metadata)
	}
	if merged.Metadata["party_size"] != 4 {
		t.Errorf("updated key not overwritten: %v", merged.Metadata["party_size"])
	}
	if merged.Metadata["budget"] != "low" {
		t.Errorf("new key not added: %v", merged.Metadata)
	}
	if stored.Metadata["party_size"] != 2 {
		t.Errorf("merge mutated the stored snapshot: %v", stored.Metadata)
	}
}

func TestUpdateIsEmpty(t *testing.T) {
	if !(slots.Update{}).IsEmpty() {
		t.Error("zero update should be empty")
	}
	if (slots.Update{CurrentDay: intPtr(2)}).IsEmpty() {
		t.Error("update with a field should not be empty")
	}
	if (slots.Update{Metadata: map[string]any{"k": "v"}}).IsEmpty() {
		t.Error("update with metadata should not be empty")
	}
}

func TestExtractUpdatesFirstMatchingDayWins(t *testing.T) {
	itinerary := []trip.ItineraryDay{
		{Day: 1, Location: "Lima", Hotel: "Hotel Costa"},
		{Day: 2, Location: "Cusco", Hotel: "Hotel Malabar"},
		{Day: 3, Location: "Cusco", Hotel: "Hotel Andes"},
	}

	update := slots.ExtractUpdates("we zijn net aangekomen in Cusco", "", itinerary)
	if update.CurrentDestination == nil || *update.CurrentDestination != "Cusco" {
		t.Fatalf("destination not extracted: %+v", update)
	}
	if update.CurrentHotel == nil || *update.CurrentHotel != "Hotel Malabar" {
		t.Errorf("expected first matching day's hotel, got %+v", update.CurrentHotel)
	}
	if update.CurrentDay == nil || *update.CurrentDay != 2 {
		t.Errorf("expected day 2, got %+v", update.CurrentDay)
	}
}

func TestExtractUpdatesFromReply(t *testing.T) {
	itinerary := []trip.ItineraryDay{{Day: 1, Location: "Lima", Hotel: "Hotel Costa"}}

	update := slots.ExtractUpdates("waar slapen we vannacht?", "Jullie slapen in Hotel Costa in Lima.", itinerary)
	if update.CurrentHotel == nil || *update.CurrentHotel != "Hotel Costa" {
		t.Errorf("hotel mentioned in reply not extracted: %+v", update)
	}
}

func TestExtractUpdatesNoMatch(t *testing.T) {
	itinerary := []trip.ItineraryDay{{Day: 1, Location: "Lima"}}

	update := slots.ExtractUpdates("wat is de wifi code?", "Die staat op je kamerkaart.", itinerary)
	if !update.IsEmpty() {
		t.Errorf("expected empty update, got %+v", update)
	}
}

func TestPromptContext(t *testing.T) {
	empty := slots.Slots{}
	if empty.PromptContext() != "" {
		t.Error("empty slots should render no context block")
	}

	populated := slots.Slots{CurrentDestination: "Cusco", CurrentHotel: "Hotel Malabar", CurrentDay: 2}
	rendered := populated.PromptContext()
	for _, want := range []string{"HUIDIGE CONTEXT:", "Cusco", "Hotel Malabar", "Reisdag: 2"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("prompt context missing %q:\n%s", want, rendered)
		}
	}
}
