package trip

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a trip id does not resolve to a record.
var ErrNotFound = errors.New("trip not found")

// Status is the trip-level lifecycle flag checked before any paid call.
type Status string

const (
	StatusActive  Status = "active"
	StatusStopped Status = "stopped"
	StatusExpired Status = "expired"
)

// Trip is the external collaborator record; the chat core treats it as an
// immutable snapshot per turn.
type Trip struct {
	ID            string
	Name          string
	Status        Status
	StatusReason  string
	ExpiresAt     *time.Time
	CustomContext string
	Model         string
	Temperature   float64
	Itinerary     []ItineraryDay
	SourceURLs    []string
	VisionCostEUR float64
	ChatCostEUR   float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ItineraryDay is one ordered day entry of the trip itinerary.
type ItineraryDay struct {
	Day        int      `json:"day"`
	Date       string   `json:"date,omitempty"`
	Location   string   `json:"location"`
	Hotel      string   `json:"hotel,omitempty"`
	Activities []string `json:"activities,omitempty"`
}

// EffectiveStatus refreshes the lifecycle flag against the expiry timestamp.
// An active trip past its expiry is treated as expired even when the stored
// column has not been updated yet.
func (t *Trip) EffectiveStatus(now time.Time) Status {
	if t.Status == StatusActive && t.ExpiresAt != nil && now.After(*t.ExpiresAt) {
		return StatusExpired
	}
	return t.Status
}

// GuardReason explains why a non-active trip rejects a turn.
func (t *Trip) GuardReason(status Status) string {
	if t.StatusReason != "" {
		return t.StatusReason
	}
	switch status {
	case StatusStopped:
		return "trip is stopped"
	case StatusExpired:
		return "trip is expired"
	default:
		return ""
	}
}
