package intake

import (
	"context"
	"encoding/json"
)

// Intake is the traveler questionnaire captured before departure: names,
// favorite food, allergies, interests, expectations. It is a read-only
// snapshot per turn, like the trip itself; this service never writes it.
type Intake struct {
	SessionToken string
	TripID       string
	Data         map[string]any
}

// PromptData renders the raw questionnaire as indented JSON for the system
// prompt, matching how the intake form stores it. Empty when there is
// nothing to personalize on.
func (i *Intake) PromptData() string {
	if i == nil || len(i.Data) == 0 {
		return ""
	}
	rendered, err := json.MarshalIndent(i.Data, "", "  ")
	if err != nil {
		return ""
	}
	return string(rendered)
}

// Repository loads the intake for a session. A missing or unreadable intake
// returns nil; personalization degrades, the turn never blocks on it.
type Repository interface {
	FindBySession(ctx context.Context, sessionToken string) *Intake
}
