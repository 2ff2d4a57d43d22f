package entities

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"travelbro-server/internal/domain/intake"
)

// TravelIntake holds the pre-departure traveler questionnaire, one row per
// session. The chat service only ever reads it; the intake form owns writes.
type TravelIntake struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	SessionToken string         `gorm:"type:varchar(128);uniqueIndex:idx_intake_session;not null"`
	TripID       string         `gorm:"type:varchar(64);index"`
	IntakeData   datatypes.JSON `gorm:"type:jsonb"`
}

// TableName specifies the table name for TravelIntake.
func (TravelIntake) TableName() string {
	return "travel_intakes"
}

// EtoD converts the database entity to the domain intake. Malformed intake
// payloads degrade to an empty questionnaire rather than failing the turn.
func (e *TravelIntake) EtoD() *intake.Intake {
	var data map[string]any
	if len(e.IntakeData) > 0 {
		_ = json.Unmarshal(e.IntakeData, &data)
	}
	return &intake.Intake{
		SessionToken: e.SessionToken,
		TripID:       e.TripID,
		Data:         data,
	}
}
