package trip

import "context"

// Repository reads trip snapshots.
type Repository interface {
	FindByID(ctx context.Context, id string) (*Trip, error)
}

// CostTracker accumulates per-trip spend via atomic increments against the
// trip record. Vision spend is recorded even when the parent turn later
// fails, since the model call already happened.
type CostTracker interface {
	AddVisionCost(ctx context.Context, tripID string, eur float64) error
	AddChatCost(ctx context.Context, tripID string, eur float64) error
}
