package entities

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"travelbro-server/internal/domain/intent"
	"travelbro-server/internal/domain/slots"
)

// ConversationSlots is the one-row-per-(session, trip) slot memory. Revision
// is bumped on every write and checked on update so two interleaved turns
// cannot silently drop each other's merge.
type ConversationSlots struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	TripID             string         `gorm:"type:varchar(64);uniqueIndex:idx_slots_session_trip;not null"`
	SessionToken       string         `gorm:"type:varchar(128);uniqueIndex:idx_slots_session_trip;not null"`
	CurrentDestination string         `gorm:"type:varchar(256)"`
	CurrentHotel       string         `gorm:"type:varchar(256)"`
	CurrentDay         int            `gorm:"not null;default:0"`
	CurrentCountry     string         `gorm:"type:varchar(128)"`
	LastIntent         string         `gorm:"type:varchar(32)"`
	Metadata           datatypes.JSON `gorm:"type:jsonb"`
	Revision           int64          `gorm:"not null;default:0"`
}

// TableName specifies the table name for ConversationSlots.
func (ConversationSlots) TableName() string {
	return "conversation_slots"
}

// EtoD converts the database entity to the domain slots.
func (s *ConversationSlots) EtoD() slots.Slots {
	var metadata map[string]any
	if len(s.Metadata) > 0 {
		_ = json.Unmarshal(s.Metadata, &metadata)
	}
	return slots.Slots{
		CurrentDestination: s.CurrentDestination,
		CurrentHotel:       s.CurrentHotel,
		CurrentDay:         s.CurrentDay,
		CurrentCountry:     s.CurrentCountry,
		LastIntent:         intent.Intent(s.LastIntent),
		Metadata:           metadata,
	}
}

// ApplyMerged overwrites the slot columns with the merged domain value.
func (s *ConversationSlots) ApplyMerged(merged slots.Slots) error {
	s.CurrentDestination = merged.CurrentDestination
	s.CurrentHotel = merged.CurrentHotel
	s.CurrentDay = merged.CurrentDay
	s.CurrentCountry = merged.CurrentCountry
	s.LastIntent = string(merged.LastIntent)
	if len(merged.Metadata) > 0 {
		raw, err := json.Marshal(merged.Metadata)
		if err != nil {
			return err
		}
		s.Metadata = raw
	}
	return nil
}
