package conversation

import "time"

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Modality tags the input channel of a user turn.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityImage Modality = "image"
	ModalityAudio Modality = "audio"
)

// Turn is one row of the append-only conversation log. Ordering by creation
// time defines the replay order for prompt history.
type Turn struct {
	ID               uint
	PublicID         string
	TripID           string
	SessionToken     string
	Role             Role
	Message          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	CostEUR          float64
	Modality         Modality
	HasAttachment    bool
	CreatedAt        time.Time
}

// Attachment records an uploaded image and its stable public URL.
type Attachment struct {
	ID           uint
	PublicID     string
	TripID       string
	SessionToken string
	StorageKey   string
	PublicURL    string
	ContentType  string
	SizeBytes    int64
	CreatedAt    time.Time
}
