package tool

import (
	"regexp"
	"strings"
)

// Route questions carry the pair as "van X ... naar Y" (or "from X to Y").
var routePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bvan\s+(.+?)\s+naar\s+(.+?)(?:[?.!,]|$)`),
	regexp.MustCompile(`(?i)\bfrom\s+(.+?)\s+to\s+(.+?)(?:[?.!,]|$)`),
}

// ParseRoutePair extracts an origin/destination pair from a message. When
// no pair can be extracted the directions adapter is skipped entirely; it
// is never called with empty arguments.
func ParseRoutePair(message string) (origin, destination string, ok bool) {
	for _, pattern := range routePatterns {
		match := pattern.FindStringSubmatch(message)
		if match == nil {
			continue
		}
		origin = strings.TrimSpace(match[1])
		destination = strings.TrimSpace(match[2])
		if origin != "" && destination != "" {
			return origin, destination, true
		}
	}
	return "", "", false
}
