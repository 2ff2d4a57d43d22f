package entities

import (
	"time"

	"travelbro-server/internal/domain/conversation"
)

// ConversationTurn stores one message of the append-only conversation log.
type ConversationTurn struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	PublicID         string  `gorm:"type:varchar(50);uniqueIndex;not null"`
	TripID           string  `gorm:"type:varchar(64);index:idx_turn_session_trip;not null"`
	SessionToken     string  `gorm:"type:varchar(128);index:idx_turn_session_trip;not null"`
	Role             string  `gorm:"type:varchar(20);not null"`
	Message          string  `gorm:"type:text"`
	PromptTokens     int     `gorm:"not null;default:0"`
	CompletionTokens int     `gorm:"not null;default:0"`
	TotalTokens      int     `gorm:"not null;default:0"`
	CostEUR          float64 `gorm:"not null;default:0"`
	Modality         string  `gorm:"type:varchar(20);not null;default:'text'"`
	HasAttachment    bool    `gorm:"not null;default:false"`
}

// TableName specifies the table name for ConversationTurn.
func (ConversationTurn) TableName() string {
	return "conversation_turns"
}

// EtoD converts the database entity to the domain turn.
func (t *ConversationTurn) EtoD() conversation.Turn {
	return conversation.Turn{
		ID:               t.ID,
		PublicID:         t.PublicID,
		TripID:           t.TripID,
		SessionToken:     t.SessionToken,
		Role:             conversation.Role(t.Role),
		Message:          t.Message,
		PromptTokens:     t.PromptTokens,
		CompletionTokens: t.CompletionTokens,
		TotalTokens:      t.TotalTokens,
		CostEUR:          t.CostEUR,
		Modality:         conversation.Modality(t.Modality),
		HasAttachment:    t.HasAttachment,
		CreatedAt:        t.CreatedAt,
	}
}

// NewSchemaConversationTurn creates a database entity from the domain turn.
func NewSchemaConversationTurn(t *conversation.Turn) *ConversationTurn {
	return &ConversationTurn{
		ID:               t.ID,
		PublicID:         t.PublicID,
		TripID:           t.TripID,
		SessionToken:     t.SessionToken,
		Role:             string(t.Role),
		Message:          t.Message,
		PromptTokens:     t.PromptTokens,
		CompletionTokens: t.CompletionTokens,
		TotalTokens:      t.TotalTokens,
		CostEUR:          t.CostEUR,
		Modality:         string(t.Modality),
		HasAttachment:    t.HasAttachment,
		CreatedAt:        t.CreatedAt,
	}
}
