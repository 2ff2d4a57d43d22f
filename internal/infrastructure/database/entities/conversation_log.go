package entities

import (
	"time"

	"gorm.io/datatypes"
)

// ConversationLog is the per-turn audit trail: slot snapshots, tool calls
// and model accounting, kept for debugging and cost reviews.
type ConversationLog struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	TripID       string         `gorm:"type:varchar(64);index:idx_log_session_trip;not null"`
	SessionToken string         `gorm:"type:varchar(128);index:idx_log_session_trip;not null"`
	MessageID    string         `gorm:"type:varchar(50)"`
	SlotsBefore  datatypes.JSON `gorm:"type:jsonb"`
	SlotsAfter   datatypes.JSON `gorm:"type:jsonb"`
	ToolsCalled  datatypes.JSON `gorm:"type:jsonb"`
	Temperature  float64        `gorm:"not null;default:0"`
	TokensUsed   int            `gorm:"not null;default:0"`
}

// TableName specifies the table name for ConversationLog.
func (ConversationLog) TableName() string {
	return "conversation_logs"
}

// VisionLog records one image-understanding call with its prompt, reply and
// spend, one row per call.
type VisionLog struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	TripID       string         `gorm:"type:varchar(64);index;not null"`
	SessionToken string         `gorm:"type:varchar(128);not null"`
	AttachmentID string         `gorm:"type:varchar(50)"`
	Prompt       string         `gorm:"type:text"`
	Response     string         `gorm:"type:text"`
	Confidence   float64        `gorm:"not null;default:0"`
	Categories   datatypes.JSON `gorm:"type:jsonb"`
	Location     string         `gorm:"type:varchar(255)"`
	Model        string         `gorm:"type:varchar(64)"`
	TokensUsed   int            `gorm:"not null;default:0"`
	CostEUR      float64        `gorm:"not null;default:0"`
	LatencyMS    int64          `gorm:"not null;default:0"`
}

// TableName specifies the table name for VisionLog.
func (VisionLog) TableName() string {
	return "vision_logs"
}
