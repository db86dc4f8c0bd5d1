package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Missray24/missray-cab-app-sub000/internal/booking/domain"
	"github.com/Missray24/missray-cab-app-sub000/internal/booking/repo"
	"github.com/Missray24/missray-cab-app-sub000/internal/events"
	"github.com/Missray24/missray-cab-app-sub000/internal/fare"
)

func newBookingUC(store *repo.MemoryStore, planner stubPlanner) (*BookingUseCase, *recordingPublisher, *recordingMailer) {
	publisher := &recordingPublisher{}
	mailer := &recordingMailer{}
	uc := NewBookingUseCase(store.Bookings(), newQuoteUC(store), planner, publisher, mailer, zap.NewNop())
	return uc, publisher, mailer
}

func createRequest() CreateBookingRequest {
	return CreateBookingRequest{
		ClientID:    "client-1",
		ClientEmail: "rider@example.com",
		TierCode:    "berline",
		Pickup:      "10 Rue de Rivoli, Paris",
		Dropoff:     "Aéroport CDG, Terminal 2E",
	}
}

func TestCreateBookingSnapshotsRouteAndPrice(t *testing.T) {
	store := repo.NewMemoryStore()
	seedCatalog(t, store)
	planner := stubPlanner{route: fare.RouteSummary{Distance: strPtr("12,5 km"), Duration: strPtr("30")}}
	uc, publisher, mailer := newBookingUC(store, planner)

	booking, err := uc.Create(context.Background(), createRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if booking.Status != domain.BookingStatusPending {
		t.Errorf("status = %s, want pending", booking.Status)
	}
	if booking.PaymentStatus != domain.PaymentStatusUnpaid {
		t.Errorf("payment status = %s, want unpaid", booking.PaymentStatus)
	}
	if booking.Distance == nil || *booking.Distance != "12,5 km" {
		t.Errorf("distance snapshot = %v, want 12,5 km", booking.Distance)
	}
	if !closeTo(booking.Amount, 38.75) {
		t.Errorf("amount = %v, want 38.75", booking.Amount)
	}
	if len(booking.History) != 1 || booking.History[0].Status != domain.BookingStatusPending {
		t.Errorf("history = %+v, want single pending entry", booking.History)
	}

	stored, err := store.Bookings().GetByID(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Amount != booking.Amount {
		t.Errorf("stored amount = %v, want %v", stored.Amount, booking.Amount)
	}

	if got := publisher.types(); len(got) != 1 || got[0] != events.BookingCreated {
		t.Errorf("published events = %v, want [booking.created]", got)
	}
	if mailer.confirmations != 1 {
		t.Errorf("confirmations sent = %d, want 1", mailer.confirmations)
	}
}

func TestCreateBookingUnroutableTripPricesAtMinimum(t *testing.T) {
	store := repo.NewMemoryStore()
	seedCatalog(t, store)
	planner := stubPlanner{err: errors.New("no route found")}
	uc, _, _ := newBookingUC(store, planner)

	booking, err := uc.Create(context.Background(), createRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if booking.Amount != 10 {
		t.Errorf("amount = %v, want tier minimum 10", booking.Amount)
	}
	if booking.Distance != nil || booking.Duration != nil {
		t.Errorf("route snapshot should be empty, got %v / %v", booking.Distance, booking.Duration)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	store := repo.NewMemoryStore()
	seedCatalog(t, store)
	uc, _, _ := newBookingUC(store, stubPlanner{})

	cases := []struct {
		name   string
		mutate func(*CreateBookingRequest)
	}{
		{"missing client", func(r *CreateBookingRequest) { r.ClientID = "" }},
		{"missing tier", func(r *CreateBookingRequest) { r.TierCode = "" }},
		{"blank pickup", func(r *CreateBookingRequest) { r.Pickup = "   " }},
		{"blank dropoff", func(r *CreateBookingRequest) { r.Dropoff = "" }},
		{"empty stop", func(r *CreateBookingRequest) { r.Stops = []string{"Gare de Lyon", " "} }},
		{"negative option", func(r *CreateBookingRequest) {
			r.Options = []fare.OptionSelection{{Name: fare.OptionPet, Quantity: -1}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := createRequest()
			tc.mutate(&req)
			if _, err := uc.Create(context.Background(), req); !domain.IsInvalidInput(err) {
				t.Fatalf("expected invalid input error, got %v", err)
			}
		})
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	store := repo.NewMemoryStore()
	seedCatalog(t, store)
	uc, _, _ := newBookingUC(store, stubPlanner{})

	booking, err := uc.Create(context.Background(), createRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := uc.Get(context.Background(), booking.ID, "client-2", false); !domain.IsNotFound(err) {
		t.Fatalf("foreign client should get not found, got %v", err)
	}
	if _, err := uc.Get(context.Background(), booking.ID, "someone-else", true); err != nil {
		t.Fatalf("admin should see any booking, got %v", err)
	}
	if _, err := uc.Get(context.Background(), booking.ID, "client-1", false); err != nil {
		t.Fatalf("owner should see own booking, got %v", err)
	}
}

func TestCancelPublishesEvent(t *testing.T) {
	store := repo.NewMemoryStore()
	seedCatalog(t, store)
	uc, publisher, _ := newBookingUC(store, stubPlanner{})

	booking, err := uc.Create(context.Background(), createRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	cancelled, err := uc.Cancel(context.Background(), booking.ID, "client-1", false, "changed plans")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != domain.BookingStatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}
	if len(cancelled.History) != 2 {
		t.Errorf("history length = %d, want 2", len(cancelled.History))
	}

	got := publisher.types()
	if len(got) != 2 || got[1] != events.BookingCancelled {
		t.Errorf("published events = %v, want booking.cancelled last", got)
	}
}

func TestUpdateStatusFollowsLifecycle(t *testing.T) {
	store := repo.NewMemoryStore()
	seedCatalog(t, store)
	uc, _, _ := newBookingUC(store, stubPlanner{})

	booking, err := uc.Create(context.Background(), createRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	steps := []domain.BookingStatus{
		domain.BookingStatusConfirmed,
		domain.BookingStatusAssigned,
		domain.BookingStatusInProgress,
		domain.BookingStatusCompleted,
	}
	for _, status := range steps {
		if _, err := uc.UpdateStatus(context.Background(), booking.ID, status, "admin:ops", ""); err != nil {
			t.Fatalf("UpdateStatus(%s): %v", status, err)
		}
	}

	// Completed is terminal
	_, err = uc.UpdateStatus(context.Background(), booking.ID, domain.BookingStatusCancelled, "admin:ops", "")
	if !domain.IsInvalidState(err) {
		t.Fatalf("expected invalid state error, got %v", err)
	}
}
