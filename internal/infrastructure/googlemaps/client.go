package googlemaps

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"travelbro-server/internal/domain/tool"
)

const baseURL = "https://maps.googleapis.com"

// Client implements the places and directions adapters against the Google
// Maps web service APIs. Lookups never fail a turn; an empty result with an
// explanatory summary is returned instead.
type Client struct {
	httpClient   *resty.Client
	apiKey       string
	radiusMeters int
	log          zerolog.Logger
}

// NewClient constructs the Maps client.
func NewClient(apiKey string, radiusMeters int, log zerolog.Logger) *Client {
	if radiusMeters <= 0 {
		radiusMeters = 1500
	}
	return &Client{
		httpClient: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second),
		apiKey:       apiKey,
		radiusMeters: radiusMeters,
		log:          log.With().Str("component", "googlemaps").Logger(),
	}
}

type geocodeResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type nearbyResponse struct {
	Results []struct {
		Name     string `json:"name"`
		Vicinity string `json:"vicinity"`
		PlaceID  string `json:"place_id"`
		Rating   float64 `json:"rating"`
		PriceLevel int   `json:"price_level"`
		Types    []string `json:"types"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		OpeningHours *struct {
			OpenNow *bool `json:"open_now"`
		} `json:"opening_hours"`
	} `json:"results"`
}

type directionsResponse struct {
	Routes []struct {
		Legs []struct {
			Distance struct {
				Value int `json:"value"`
			} `json:"distance"`
			Duration struct {
				Value int `json:"value"`
			} `json:"duration"`
		} `json:"legs"`
	} `json:"routes"`
}

// FindRestaurantsNearby geocodes the free-text location and returns up to
// five nearby restaurants sorted by the Places API relevance order.
func (c *Client) FindRestaurantsNearby(ctx context.Context, location string) (*tool.PlacesResult, tool.CallRecord) {
	record := tool.CallRecord{
		Tool:   tool.NamePlaces,
		Params: tool.PlacesParams{Location: location, RadiusMeters: c.radiusMeters},
	}

	lat, lng, ok := c.geocode(ctx, location)
	if !ok {
		record.Summary = "geocode_failed"
		return &tool.PlacesResult{Location: location}, record
	}

	var nearby nearbyResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"location": fmt.Sprintf("%f,%f", lat, lng),
			"radius":   strconv.Itoa(c.radiusMeters),
			"type":     "restaurant",
			"key":      c.apiKey,
		}).
		SetResult(&nearby).
		Get("/maps/api/place/nearbysearch/json")
	if err != nil || resp.IsError() {
		c.log.Warn().Err(err).Str("location", location).Msg("nearby search failed")
		record.Summary = "error"
		return &tool.PlacesResult{Location: location}, record
	}
	if len(nearby.Results) == 0 {
		record.Summary = "no_results"
		return &tool.PlacesResult{Location: location}, record
	}

	limit := len(nearby.Results)
	if limit > 5 {
		limit = 5
	}
	restaurants := make([]tool.Restaurant, 0, limit)
	for _, place := range nearby.Results[:limit] {
		restaurant := tool.Restaurant{
			Name:           place.Name,
			Address:        place.Vicinity,
			DistanceMeters: int(haversineMeters(lat, lng, place.Geometry.Location.Lat, place.Geometry.Location.Lng)),
			Rating:         place.Rating,
			PriceLevel:     place.PriceLevel,
			CuisineTypes:   cuisineTypes(place.Types),
			MapsURL:        "https://www.google.com/maps/place/?q=place_id:" + place.PlaceID,
		}
		if place.OpeningHours != nil {
			restaurant.OpenNow = place.OpeningHours.OpenNow
		}
		restaurants = append(restaurants, restaurant)
	}

	record.Success = true
	record.Summary = fmt.Sprintf("%d restaurants", len(restaurants))
	return &tool.PlacesResult{Location: location, Restaurants: restaurants}, record
}

// Route queries directions between two free-text locations.
func (c *Client) Route(ctx context.Context, origin, destination string) (*tool.RouteResult, tool.CallRecord) {
	record := tool.CallRecord{
		Tool:   tool.NameDirections,
		Params: tool.RouteParams{Origin: origin, Destination: destination},
	}

	var directions directionsResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"origin":      origin,
			"destination": destination,
			"key":         c.apiKey,
		}).
		SetResult(&directions).
		Get("/maps/api/directions/json")
	if err != nil || resp.IsError() {
		c.log.Warn().Err(err).Str("origin", origin).Str("destination", destination).Msg("directions lookup failed")
		record.Summary = "error"
		return nil, record
	}
	if len(directions.Routes) == 0 || len(directions.Routes[0].Legs) == 0 {
		record.Summary = "no_results"
		return nil, record
	}

	leg := directions.Routes[0].Legs[0]
	record.Success = true
	record.Summary = fmt.Sprintf("%.0f km, %d min", float64(leg.Distance.Value)/1000, leg.Duration.Value/60)
	return &tool.RouteResult{
		Origin:          origin,
		Destination:     destination,
		DistanceKM:      math.Round(float64(leg.Distance.Value) / 1000),
		DurationMinutes: int(math.Round(float64(leg.Duration.Value) / 60)),
		MapsURL: "https://www.google.com/maps/dir/?api=1&origin=" + url.QueryEscape(origin) +
			"&destination=" + url.QueryEscape(destination),
	}, record
}

func (c *Client) geocode(ctx context.Context, location string) (lat, lng float64, ok bool) {
	var geocode geocodeResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"address": location,
			"key":     c.apiKey,
		}).
		SetResult(&geocode).
		Get("/maps/api/geocode/json")
	if err != nil || resp.IsError() || len(geocode.Results) == 0 {
		c.log.Warn().Err(err).Str("location", location).Msg("geocode failed")
		return 0, 0, false
	}
	point := geocode.Results[0].Geometry.Location
	return point.Lat, point.Lng, true
}

func cuisineTypes(types []string) []string {
	var cuisine []string
	for _, t := range types {
		if strings.Contains(t, "restaurant") || strings.Contains(t, "food") {
			cuisine = append(cuisine, t)
		}
	}
	return cuisine
}

// haversineMeters is the great-circle distance between two coordinates.
func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371000
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadius * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Ensure interface compliance.
var (
	_ tool.PlacesAdapter     = (*Client)(nil)
	_ tool.DirectionsAdapter = (*Client)(nil)
)
