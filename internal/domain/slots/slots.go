package slots

import (
	"fmt"
	"strings"

	"travelbro-server/internal/domain/intent"
	"travelbro-server/internal/domain/trip"
)

// Slots is the durable cross-turn context for one (session, trip) pair,
// used to resolve pronouns and ellipsis in later messages.
type Slots struct {
	CurrentDestination string
	CurrentHotel       string
	CurrentDay         int
	CurrentCountry     string
	LastIntent         intent.Intent
	Metadata           map[string]any
}

// Update is a partial slot mutation. Nil fields leave the stored value
// untouched; Metadata is merged key-by-key instead of replaced.
type Update struct {
	CurrentDestination *string
	CurrentHotel       *string
	CurrentDay         *int
	CurrentCountry     *string
	LastIntent         *intent.Intent
	Metadata           map[string]any
}

// IsEmpty reports whether the update carries no changes.
func (u Update) IsEmpty() bool {
	return u.CurrentDestination == nil && u.CurrentHotel == nil && u.CurrentDay == nil &&
		u.CurrentCountry == nil && u.LastIntent == nil && len(u.Metadata) == 0
}

// Merge applies a partial update, returning the merged slots. Unset fields
// never erase existing values.
func (s Slots) Merge(u Update) Slots {
	merged := s
	if u.CurrentDestination != nil {
		merged.CurrentDestination = *u.CurrentDestination
	}
	if u.CurrentHotel != nil {
		merged.CurrentHotel = *u.CurrentHotel
	}
	if u.CurrentDay != nil {
		merged.CurrentDay = *u.CurrentDay
	}
	if u.CurrentCountry != nil {
		merged.CurrentCountry = *u.CurrentCountry
	}
	if u.LastIntent != nil {
		merged.LastIntent = *u.LastIntent
	}
	if len(u.Metadata) > 0 {
		metadata := make(map[string]any, len(s.Metadata)+len(u.Metadata))
		for k, v := range s.Metadata {
			metadata[k] = v
		}
		for k, v := range u.Metadata {
			metadata[k] = v
		}
		merged.Metadata = metadata
	}
	return merged
}

// PromptContext renders the slot summary block injected into the system
// prompt so the model resolves "daar"/"het hotel" against stored context
// instead of re-asking.
func (s Slots) PromptContext() string {
	if s.CurrentDestination == "" && s.CurrentHotel == "" {
		return ""
	}

	parts := []string{"HUIDIGE CONTEXT:"}
	if s.CurrentDestination != "" {
		parts = append(parts, fmt.Sprintf("- Bestemming: %s", s.CurrentDestination))
	}
	if s.CurrentHotel != "" {
		parts = append(parts, fmt.Sprintf("- Hotel: %s", s.CurrentHotel))
	}
	if s.CurrentDay > 0 {
		parts = append(parts, fmt.Sprintf("- Reisdag: %d", s.CurrentDay))
	}
	if s.CurrentCountry != "" {
		parts = append(parts, fmt.Sprintf("- Land: %s", s.CurrentCountry))
	}
	if s.LastIntent != "" {
		parts = append(parts, fmt.Sprintf("- Laatste onderwerp: %s", s.LastIntent))
	}
	parts = append(parts,
		`Verwijzingen zoals "daar", "het hotel" of "die plek" slaan op deze context. Vraag er NIET opnieuw naar.`)
	return strings.Join(parts, "\n")
}

// ExtractUpdates derives slot changes from the user message and the model
// reply by matching itinerary locations and hotel names mentioned in either
// side. The first matching day wins.
func ExtractUpdates(message, reply string, itinerary []trip.ItineraryDay) Update {
	var update Update
	lowerMessage := strings.ToLower(message)
	lowerReply := strings.ToLower(reply)

	mentioned := func(name string) bool {
		if name == "" {
			return false
		}
		lower := strings.ToLower(name)
		return strings.Contains(lowerMessage, lower) || strings.Contains(lowerReply, lower)
	}

	for _, day := range itinerary {
		if !mentioned(day.Location) && !mentioned(day.Hotel) {
			continue
		}
		location := day.Location
		update.CurrentDestination = &location
		if day.Hotel != "" {
			hotel := day.Hotel
			update.CurrentHotel = &hotel
		}
		if day.Day > 0 {
			ordinal := day.Day
			update.CurrentDay = &ordinal
		}
		break
	}

	return update
}
