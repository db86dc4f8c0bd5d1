package usecase

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/Missray24/missray-cab-app-sub000/internal/booking/domain"
	"github.com/Missray24/missray-cab-app-sub000/internal/booking/repo"
	"github.com/Missray24/missray-cab-app-sub000/internal/events"
	"github.com/Missray24/missray-cab-app-sub000/internal/fare"
)

// stubPlanner returns a fixed route summary for every trip.
type stubPlanner struct {
	route fare.RouteSummary
	err   error
}

func (p stubPlanner) Plan(ctx context.Context, pickup, dropoff string, stops []string) (fare.RouteSummary, error) {
	return p.route, p.err
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event *events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// recordingMailer captures sent mail for assertions.
type recordingMailer struct {
	mu            sync.Mutex
	confirmations int
	receipts      int
}

func (m *recordingMailer) SendBookingConfirmation(ctx context.Context, booking *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmations++
	return nil
}

func (m *recordingMailer) SendPaymentReceipt(ctx context.Context, booking *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts++
	return nil
}

func seedCatalog(t *testing.T, store *repo.MemoryStore) {
	t.Helper()
	ctx := context.Background()

	tiers := []domain.Tier{
		{
			Code: "berline", Name: "Berline", Currency: "EUR", Position: 1, Active: true,
			Rates: fare.RateCard{BaseFare: 5, PerKm: 1.5, PerMinute: 0.5, PerStop: 2, MinimumPrice: 10},
		},
		{
			Code: "van", Name: "Van", Currency: "EUR", Position: 2, Active: true,
			Rates: fare.RateCard{BaseFare: 8, PerKm: 2, PerMinute: 0.6, PerStop: 2.5, MinimumPrice: 15},
		},
		{
			Code: "retired", Name: "Retired", Currency: "EUR", Position: 3, Active: false,
			Rates: fare.RateCard{MinimumPrice: 1},
		},
	}
	for _, tier := range tiers {
		if _, err := store.Tiers().Upsert(ctx, tier); err != nil {
			t.Fatalf("seed tier %s: %v", tier.Code, err)
		}
	}

	options := []domain.RideOption{
		{Name: fare.OptionChildSeat, Label: "Siège enfant", Surcharge: 3, Active: true},
		{Name: fare.OptionPet, Label: "Animal", Surcharge: 4, Active: true},
	}
	for _, option := range options {
		if _, err := store.Options().Upsert(ctx, option); err != nil {
			t.Fatalf("seed option %s: %v", option.Name, err)
		}
	}
}

func newQuoteUC(store *repo.MemoryStore) *QuoteUseCase {
	return NewQuoteUseCase(store.Tiers(), store.Options(), nil, 0, zap.NewNop())
}

func strPtr(s string) *string { return &s }
