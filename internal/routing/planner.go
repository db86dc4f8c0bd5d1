// Package routing resolves pickup/dropoff addresses into route summaries
// using the Google Maps Directions API.
package routing

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"

	"github.com/Missray24/missray-cab-app-sub000/internal/circuitbreaker"
	"github.com/Missray24/missray-cab-app-sub000/internal/fare"
	"github.com/Missray24/missray-cab-app-sub000/internal/metrics"
	"github.com/Missray24/missray-cab-app-sub000/internal/retry"
)

// Planner resolves a trip into a localized route summary
type Planner interface {
	Plan(ctx context.Context, pickup, dropoff string, stops []string) (fare.RouteSummary, error)
}

// GooglePlanner implements Planner using the Directions API
type GooglePlanner struct {
	client   *maps.Client
	language string
	region   string
	breaker  *circuitbreaker.Breaker
	logger   *zap.Logger
}

// NewGooglePlanner creates a new planner with the given API key.
// Language and region control how the provider localizes distance text.
func NewGooglePlanner(apiKey, language, region string, logger *zap.Logger) (*GooglePlanner, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GooglePlanner{
		client:   client,
		language: language,
		region:   region,
		breaker:  circuitbreaker.New("directions", circuitbreaker.DefaultConfig(), logger),
		logger:   logger,
	}, nil
}

// Plan requests driving directions through each stop in order and folds the
// legs into a single summary. Distance text follows the configured locale;
// duration text is the whole trip in minutes so it stays machine-parseable.
func (p *GooglePlanner) Plan(ctx context.Context, pickup, dropoff string, stops []string) (fare.RouteSummary, error) {
	req := &maps.DirectionsRequest{
		Origin:      pickup,
		Destination: dropoff,
		Waypoints:   stops,
		Mode:        maps.TravelModeDriving,
		Language:    p.language,
		Region:      p.region,
	}

	var routes []maps.Route
	err := p.breaker.Execute(ctx, func() error {
		return retry.Do(ctx, retry.DefaultConfig(), p.logger, func() error {
			var derr error
			routes, _, derr = p.client.Directions(ctx, req)
			return derr
		})
	})
	if err != nil {
		metrics.RouteLookups.WithLabelValues("error").Inc()
		p.logger.Warn("Directions lookup failed",
			zap.Error(err),
			zap.String("pickup", pickup),
			zap.String("dropoff", dropoff))
		return fare.RouteSummary{}, fmt.Errorf("directions lookup failed: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		metrics.RouteLookups.WithLabelValues("no_route").Inc()
		return fare.RouteSummary{}, nil
	}

	var meters int
	var minutes float64
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
		minutes += leg.Duration.Minutes()
	}

	distance := p.formatDistance(meters)
	duration := strconv.Itoa(int(math.Round(minutes)))

	metrics.RouteLookups.WithLabelValues("ok").Inc()
	return fare.RouteSummary{Distance: &distance, Duration: &duration}, nil
}

// formatDistance renders meters as kilometers the way the Directions API
// localizes its own distance text, comma decimal for French locales.
func (p *GooglePlanner) formatDistance(meters int) string {
	km := float64(meters) / 1000
	text := fmt.Sprintf("%.1f km", km)
	if strings.HasPrefix(strings.ToLower(p.language), "fr") {
		text = strings.Replace(text, ".", ",", 1)
	}
	return text
}

// NoopPlanner returns empty summaries; quotes fall back to minimum pricing.
// Used when no Maps API key is configured.
type NoopPlanner struct{}

func (NoopPlanner) Plan(ctx context.Context, pickup, dropoff string, stops []string) (fare.RouteSummary, error) {
	return fare.RouteSummary{}, nil
}
