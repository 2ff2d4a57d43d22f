package chat

import (
	"fmt"
	"net/http"
)

// LatLng is a client-reported device location.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Request is the domain-level per-turn input.
type Request struct {
	TripID       string
	SessionToken string
	Message      string
	ImageBase64  string
	ImageURL     string
	AudioBase64  string
	UserLocation *LatLng
	DeviceType   string
	PreferVoice  bool
}

// HasImage reports whether the turn carries an image, inline or by URL.
func (r Request) HasImage() bool {
	return r.ImageBase64 != "" || r.ImageURL != ""
}

// DisplayCard is a structured, renderable summary of a tool result,
// distinct from the conversational text.
type DisplayCard struct {
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Data     map[string]any `json:"data"`
	Priority int            `json:"priority"`
}

// Action is a client affordance derived from the tools invoked this turn.
type Action struct {
	Type  string         `json:"type"`
	Label string         `json:"label"`
	Data  map[string]any `json:"data"`
}

// Metadata carries cost and latency accounting for one turn.
type Metadata struct {
	ProcessingTimeMS int64   `json:"processing_time_ms"`
	TokensUsed       int     `json:"tokens_used"`
	CostEUR          float64 `json:"cost_eur"`
}

// Response is the client-facing artifact, built fresh every turn and never
// mutated after being returned.
type Response struct {
	Text                  string        `json:"text"`
	SpeechText            string        `json:"speech_text"`
	DisplayCards          []DisplayCard `json:"display_cards"`
	Actions               []Action      `json:"actions"`
	RequiresClarification bool          `json:"requires_clarification"`
	VisionUsed            bool          `json:"vision_used"`
	Metadata              Metadata      `json:"metadata"`
}

// TurnError is a turn-ending failure carrying the HTTP status the handler
// layer should surface.
type TurnError struct {
	Status  int
	Message string
	Reason  string
	Detail  string
}

func (e *TurnError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

func badRequest(message string) *TurnError {
	return &TurnError{Status: http.StatusBadRequest, Message: message}
}

func notFound(message string) *TurnError {
	return &TurnError{Status: http.StatusNotFound, Message: message}
}

func forbidden(message, reason string) *TurnError {
	return &TurnError{Status: http.StatusForbidden, Message: message, Reason: reason}
}

func internal(message, detail string) *TurnError {
	return &TurnError{Status: http.StatusInternalServerError, Message: message, Detail: detail}
}
