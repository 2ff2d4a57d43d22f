package tool

import (
	"fmt"
	"strings"
)

// Name identifies a tool adapter.
type Name string

const (
	NamePlaces     Name = "google_places"
	NameDirections Name = "google_directions"
	NameWebSearch  Name = "google_search"
)

// Params is the tagged input variant of a tool call; one concrete type per
// tool so dispatch and logging are exhaustively checked.
type Params interface {
	isParams()
}

// PlacesParams is the input of a nearby-places lookup.
type PlacesParams struct {
	Location     string `json:"location"`
	RadiusMeters int    `json:"radius_meters"`
}

// RouteParams is the input of a directions lookup.
type RouteParams struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// SearchParams is the input of a web search.
type SearchParams struct {
	Query    string `json:"query"`
	Location string `json:"location,omitempty"`
}

func (PlacesParams) isParams() {}
func (RouteParams) isParams()  {}
func (SearchParams) isParams() {}

// CallRecord is the per-turn trail of one tool invocation. It is ephemeral
// and persisted only inside the observability log.
type CallRecord struct {
	Tool    Name   `json:"tool_name"`
	Params  Params `json:"params"`
	Summary string `json:"response_summary"`
	Success bool   `json:"success"`
}

// Restaurant is one normalized nearby-places result.
type Restaurant struct {
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	DistanceMeters int      `json:"distance_meters"`
	Rating         float64  `json:"rating,omitempty"`
	PriceLevel     int      `json:"price_level,omitempty"`
	CuisineTypes   []string `json:"cuisine_types,omitempty"`
	OpenNow        *bool    `json:"is_open_now,omitempty"`
	MapsURL        string   `json:"google_maps_url"`
}

// PlacesResult is the normalized output of the places adapter.
type PlacesResult struct {
	Location    string
	Restaurants []Restaurant
}

// RouteResult is the normalized output of the directions adapter.
type RouteResult struct {
	Origin          string
	Destination     string
	DistanceKM      float64
	DurationMinutes int
	MapsURL         string
}

// SearchResult is one web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// WebSearchResult is the normalized output of the web search adapter.
type WebSearchResult struct {
	Query   string
	Results []SearchResult
}

// PromptText renders the restaurants for the grounding prompt.
func (r *PlacesResult) PromptText() string {
	if r == nil || len(r.Restaurants) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🍽️ Restaurants in de buurt van %s:\n", r.Location)
	for i, restaurant := range r.Restaurants {
		fmt.Fprintf(&b, "%d. **%s**\n   Adres: %s\n   Afstand: %dm\n",
			i+1, restaurant.Name, restaurant.Address, restaurant.DistanceMeters)
		if restaurant.Rating > 0 {
			fmt.Fprintf(&b, "   Rating: %.1f/5\n", restaurant.Rating)
		}
		if restaurant.OpenNow != nil {
			if *restaurant.OpenNow {
				b.WriteString("   Nu open\n")
			} else {
				b.WriteString("   Nu gesloten\n")
			}
		}
	}
	b.WriteString("Noem restaurants in dit exacte formaat (naam, adres, afstand) in je antwoord.")
	return b.String()
}

// PromptText renders the route for the grounding prompt.
func (r *RouteResult) PromptText() string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf("🚗 Route van %s naar %s:\n- Afstand: %.0f km\n- Reistijd: %d minuten\nGebruik exact deze afstand en reistijd in je antwoord.",
		r.Origin, r.Destination, r.DistanceKM, r.DurationMinutes)
}

// PromptText renders the search hits for the grounding prompt.
func (r *WebSearchResult) PromptText() string {
	if r == nil || len(r.Results) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Relevante zoekresultaten:\n")
	for _, hit := range r.Results {
		fmt.Fprintf(&b, "- %s: %s\n", hit.Title, hit.Snippet)
	}
	return b.String()
}
