package entities

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"travelbro-server/internal/domain/trip"
)

// Trip mirrors the collaborator-managed trip record. The chat service only
// reads it and atomically increments the cost columns.
type Trip struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID      string         `gorm:"type:varchar(64);uniqueIndex;not null"`
	Name          string         `gorm:"type:varchar(256);not null"`
	Status        string         `gorm:"type:varchar(20);not null;default:'active'"`
	StatusReason  *string        `gorm:"type:varchar(256)"`
	ExpiresAt     *time.Time     `gorm:"type:timestamptz"`
	CustomContext string         `gorm:"type:text"`
	Model         string         `gorm:"type:varchar(64)"`
	Temperature   float64        `gorm:"not null;default:0"`
	Itinerary     datatypes.JSON `gorm:"type:jsonb"`
	SourceURLs    datatypes.JSON `gorm:"type:jsonb"`
	VisionCostEUR float64        `gorm:"not null;default:0"`
	ChatCostEUR   float64        `gorm:"not null;default:0"`
}

// TableName specifies the table name for Trip.
func (Trip) TableName() string {
	return "trips"
}

// EtoD converts the database entity to the domain snapshot.
func (t *Trip) EtoD() *trip.Trip {
	statusReason := ""
	if t.StatusReason != nil {
		statusReason = *t.StatusReason
	}

	var itinerary []trip.ItineraryDay
	if len(t.Itinerary) > 0 {
		// A malformed itinerary blob degrades to "no itinerary" instead of
		// failing the read.
		_ = json.Unmarshal(t.Itinerary, &itinerary)
	}

	var sourceURLs []string
	if len(t.SourceURLs) > 0 {
		_ = json.Unmarshal(t.SourceURLs, &sourceURLs)
	}

	return &trip.Trip{
		ID:            t.PublicID,
		Name:          t.Name,
		Status:        trip.Status(t.Status),
		StatusReason:  statusReason,
		ExpiresAt:     t.ExpiresAt,
		CustomContext: t.CustomContext,
		Model:         t.Model,
		Temperature:   t.Temperature,
		Itinerary:     itinerary,
		SourceURLs:    sourceURLs,
		VisionCostEUR: t.VisionCostEUR,
		ChatCostEUR:   t.ChatCostEUR,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}
