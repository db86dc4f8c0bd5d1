package fare

import (
	"math"
	"strconv"
	"strings"
)

// RouteSummary carries the distance and duration of a proposed trip exactly
// as the route provider formats them for display, e.g. "12,4 km" / "18 min".
// Either field may be nil while the route is still being computed.
type RouteSummary struct {
	Distance *string `json:"distance"`
	Duration *string `json:"duration"`
}

// RouteMeasurement is the parsed, strongly typed form of a RouteSummary.
type RouteMeasurement struct {
	DistanceKm  float64
	DurationMin int
}

// ParseRouteSummary converts the provider's display strings into numeric
// kilometers and minutes. ok is false when the route is incomplete or either
// string has no usable numeric content; callers are expected to fall back to
// the tier's minimum price in that case rather than treat it as an error.
//
// Distance accepts both comma and period decimal separators. Duration must
// contain a single digit run holding the total number of minutes; composite
// hour+minute strings are not supported and the route provider is configured
// to never emit them.
func ParseRouteSummary(route RouteSummary) (RouteMeasurement, bool) {
	if route.Distance == nil || route.Duration == nil {
		return RouteMeasurement{}, false
	}

	km, ok := parseLocalizedFloat(*route.Distance)
	if !ok {
		return RouteMeasurement{}, false
	}

	min, ok := parseDigits(*route.Duration)
	if !ok {
		return RouteMeasurement{}, false
	}

	return RouteMeasurement{DistanceKm: km, DurationMin: min}, true
}

// parseLocalizedFloat strips the unit suffix and parses the numeric portion,
// treating a comma as a decimal separator: "12,4 km" -> 12.4.
func parseLocalizedFloat(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r == ',':
			b.WriteRune('.')
		}
	}

	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseDigits extracts the digit characters of s and parses them as an
// integer: "25 min" -> 25.
func parseDigits(s string) (int, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0, false
	}
	return n, true
}
