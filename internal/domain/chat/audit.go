package chat

import (
	"context"

	"travelbro-server/internal/domain/slots"
	"travelbro-server/internal/domain/tool"
)

// AuditEntry is the decision trail persisted for one turn: slots before and
// after, the tools invoked, and the model accounting.
type AuditEntry struct {
	SessionToken string
	TripID       string
	MessageID    string
	SlotsBefore  slots.Slots
	SlotsAfter   slots.Slots
	ToolsCalled  []tool.CallRecord
	Temperature  float64
	TokensUsed   int
}

// AuditLogger appends the per-turn decision trail. Failures are logged to a
// side channel by the caller and never surface to the client.
type AuditLogger interface {
	Log(ctx context.Context, entry *AuditEntry) error
}
