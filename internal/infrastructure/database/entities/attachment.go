package entities

import (
	"time"

	"travelbro-server/internal/domain/conversation"
)

// Attachment records an uploaded image and its storage location.
type Attachment struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	PublicID     string `gorm:"type:varchar(50);uniqueIndex;not null"`
	TripID       string `gorm:"type:varchar(64);index;not null"`
	SessionToken string `gorm:"type:varchar(128);not null"`
	StorageKey   string `gorm:"type:varchar(512);not null"`
	PublicURL    string `gorm:"type:varchar(1024);not null"`
	ContentType  string `gorm:"type:varchar(64)"`
	SizeBytes    int64  `gorm:"not null;default:0"`
}

// TableName specifies the table name for Attachment.
func (Attachment) TableName() string {
	return "attachments"
}

// NewSchemaAttachment creates a database entity from the domain attachment.
func NewSchemaAttachment(a *conversation.Attachment) *Attachment {
	return &Attachment{
		ID:           a.ID,
		PublicID:     a.PublicID,
		TripID:       a.TripID,
		SessionToken: a.SessionToken,
		StorageKey:   a.StorageKey,
		PublicURL:    a.PublicURL,
		ContentType:  a.ContentType,
		SizeBytes:    a.SizeBytes,
		CreatedAt:    a.CreatedAt,
	}
}
