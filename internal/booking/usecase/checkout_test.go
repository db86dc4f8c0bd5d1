package usecase

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/Missray24/missray-cab-app-sub000/internal/billing"
	"github.com/Missray24/missray-cab-app-sub000/internal/booking/domain"
	"github.com/Missray24/missray-cab-app-sub000/internal/booking/repo"
	"github.com/Missray24/missray-cab-app-sub000/internal/events"
	"github.com/Missray24/missray-cab-app-sub000/internal/fare"
)

func checkoutFixture(t *testing.T) (*CheckoutUseCase, *domain.Booking, *billing.MockProvider, *recordingPublisher, *recordingMailer) {
	t.Helper()
	store := repo.NewMemoryStore()
	seedCatalog(t, store)

	planner := stubPlanner{route: fare.RouteSummary{Distance: strPtr("12,5 km"), Duration: strPtr("30")}}
	bookingUC, _, _ := newBookingUC(store, planner)
	booking, err := bookingUC.Create(context.Background(), createRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	provider := billing.NewMockProvider()
	publisher := &recordingPublisher{}
	mailer := &recordingMailer{}
	uc := NewCheckoutUseCase(store.Bookings(), newQuoteUC(store), provider, publisher, mailer, 10, zap.NewNop())
	return uc, booking, provider, publisher, mailer
}

func TestStartCheckoutAppliesVAT(t *testing.T) {
	uc, booking, _, _, _ := checkoutFixture(t)

	result, err := uc.Start(context.Background(), booking.ID, "client-1", false)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if result.SessionID == "" || result.URL == "" {
		t.Fatalf("empty session: %+v", result)
	}
	// 38.75 * 1.10 = 42.625
	if !closeTo(result.Amount, 42.625) {
		t.Errorf("amount = %v, want 42.625", result.Amount)
	}

	updated, err := uc.bookings.GetByID(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.PaymentStatus != domain.PaymentStatusPending {
		t.Errorf("payment status = %s, want pending", updated.PaymentStatus)
	}
	if updated.CheckoutSession != result.SessionID {
		t.Errorf("session = %q, want %q", updated.CheckoutSession, result.SessionID)
	}
	if updated.VATPercent != 10 {
		t.Errorf("vat = %v, want 10", updated.VATPercent)
	}
	// Net amount plus stored VAT must reconstruct the charged total.
	if !closeTo(updated.VATAmount, 3.875) {
		t.Errorf("vat amount = %v, want 3.875", updated.VATAmount)
	}
	if !closeTo(updated.Amount+updated.VATAmount, result.Amount) {
		t.Errorf("amount %v + vat %v != charged %v", updated.Amount, updated.VATAmount, result.Amount)
	}
}

func TestStartCheckoutEnforcesOwnership(t *testing.T) {
	uc, booking, _, _, _ := checkoutFixture(t)

	if _, err := uc.Start(context.Background(), booking.ID, "client-2", false); !domain.IsNotFound(err) {
		t.Fatalf("expected not found for foreign client, got %v", err)
	}
}

func TestWebhookCompletionMarksBookingPaid(t *testing.T) {
	uc, booking, provider, publisher, mailer := checkoutFixture(t)

	result, err := uc.Start(context.Background(), booking.ID, "client-1", false)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	payload, err := provider.CompletedEvent(result.SessionID)
	if err != nil {
		t.Fatalf("CompletedEvent: %v", err)
	}
	if err := uc.HandleWebhook(context.Background(), payload, "sig"); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}

	updated, err := uc.bookings.GetByID(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.PaymentStatus != domain.PaymentStatusPaid {
		t.Errorf("payment status = %s, want paid", updated.PaymentStatus)
	}
	if updated.Status != domain.BookingStatusConfirmed {
		t.Errorf("status = %s, want confirmed", updated.Status)
	}

	if got := publisher.types(); len(got) != 1 || got[0] != events.BookingPaid {
		t.Errorf("published events = %v, want [booking.paid]", got)
	}
	if mailer.receipts != 1 {
		t.Errorf("receipts sent = %d, want 1", mailer.receipts)
	}

	// Redelivery must not double-apply
	if err := uc.HandleWebhook(context.Background(), payload, "sig"); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if got := publisher.types(); len(got) != 1 {
		t.Errorf("redelivery published extra events: %v", got)
	}
}

func TestStartCheckoutRejectsPaidBooking(t *testing.T) {
	uc, booking, provider, _, _ := checkoutFixture(t)

	result, err := uc.Start(context.Background(), booking.ID, "client-1", false)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	payload, _ := provider.CompletedEvent(result.SessionID)
	if err := uc.HandleWebhook(context.Background(), payload, "sig"); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}

	if _, err := uc.Start(context.Background(), booking.ID, "client-1", false); !domain.IsInvalidState(err) {
		t.Fatalf("expected invalid state error, got %v", err)
	}
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	uc, _, _, _, _ := checkoutFixture(t)

	err := uc.HandleWebhook(context.Background(), []byte(`{}`), "")
	if err == nil {
		t.Fatal("expected error for missing signature")
	}
}
