package intent

import "strings"

// Intent is the coarse task category a message is routed to.
type Intent string

const (
	IntentRestaurants Intent = "restaurants"
	IntentRoute       Intent = "route"
	IntentHotelInfo   Intent = "hotel_info"
	IntentActivities  Intent = "activities"
	IntentWebSearch   Intent = "web_search"
	IntentGeneral     Intent = "general"
)

// Keyword sets are evaluated in fixed priority order; the first matching
// category wins. Matching is a case-insensitive substring check, so
// Classify is a pure function: identical input always yields the same
// intent.
var priority = []struct {
	intent   Intent
	keywords []string
}{
	{IntentRestaurants, []string{
		"restaurant", "eten", "lunch", "diner", "dinner", "ontbijt", "food", "pizzeria", "waar kan ik eten",
	}},
	{IntentRoute, []string{
		"route", "afstand", "reistijd", "hoe kom ik", "hoe ver", "navigatie", "rijden", "directions", "how far",
	}},
	{IntentHotelInfo, []string{
		"hotel", "overnachting", "slapen", "accommodatie", "check-in", "check-out", "kamer",
	}},
	{IntentActivities, []string{
		"activiteit", "doen", "bezienswaardig", "excursie", "attractie", "museum", "wandeling", "things to do",
	}},
	{IntentWebSearch, []string{
		"zoek", "search", "openingstijden", "actueel", "weer", "nieuws", "weather",
	}},
}

// Classify maps a message to a task category. Unmatched messages fall back
// to the general intent.
func Classify(message string) Intent {
	lower := strings.ToLower(message)
	for _, category := range priority {
		for _, keyword := range category.keywords {
			if strings.Contains(lower, keyword) {
				return category.intent
			}
		}
	}
	return IntentGeneral
}
