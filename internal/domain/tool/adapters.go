package tool

import "context"

// Adapters never return an error for ordinary "no results" outcomes; the
// CallRecord summary explains why a result is empty (geocode failed, zero
// results, network error) so the orchestrator can continue without tool
// grounding.

// PlacesAdapter resolves a free-text location and looks up nearby
// restaurants within a radius.
type PlacesAdapter interface {
	FindRestaurantsNearby(ctx context.Context, location string) (*PlacesResult, CallRecord)
}

// DirectionsAdapter queries a route between two free-text locations.
type DirectionsAdapter interface {
	Route(ctx context.Context, origin, destination string) (*RouteResult, CallRecord)
}

// WebSearchAdapter issues a general-purpose search, optionally scoped to a
// known location.
type WebSearchAdapter interface {
	Search(ctx context.Context, query, location string) (*WebSearchResult, CallRecord)
}
