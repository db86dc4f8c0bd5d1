package routing

import (
	"context"
	"testing"
)

func TestFormatDistanceLocale(t *testing.T) {
	cases := []struct {
		language string
		meters   int
		want     string
	}{
		{"fr", 10400, "10,4 km"},
		{"fr-FR", 3200, "3,2 km"},
		{"en", 10400, "10.4 km"},
		{"fr", 500, "0,5 km"},
	}
	for _, tc := range cases {
		p := &GooglePlanner{language: tc.language}
		if got := p.formatDistance(tc.meters); got != tc.want {
			t.Errorf("formatDistance(%d) with %q = %q, want %q", tc.meters, tc.language, got, tc.want)
		}
	}
}

func TestNoopPlannerReturnsEmptySummary(t *testing.T) {
	route, err := NoopPlanner{}.Plan(context.Background(), "A", "B", nil)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if route.Distance != nil || route.Duration != nil {
		t.Fatalf("expected empty summary, got %+v", route)
	}
}
