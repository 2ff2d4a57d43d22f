package slots

import "context"

// Store is the durable, session-scoped slot memory. Get returns empty
// defaults when no row exists and degrades to empty defaults on read
// failure so a turn is never blocked by slot reads. Update performs a
// read-merge-write; its error is fatal for the turn because downstream
// personalization depends on the write.
type Store interface {
	Get(ctx context.Context, sessionToken, tripID string) Slots
	Update(ctx context.Context, sessionToken, tripID string, update Update) error
}
