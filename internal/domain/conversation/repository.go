package conversation

import "context"

// TurnRepository persists conversation turns.
type TurnRepository interface {
	Append(ctx context.Context, turn *Turn) error
	// ListRecent returns the last limit turns for the session/trip pair in
	// chronological order.
	ListRecent(ctx context.Context, sessionToken, tripID string, limit int) ([]Turn, error)
}

// AttachmentRepository persists attachment records.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *Attachment) error
}
