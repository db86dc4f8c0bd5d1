package usecase

import (
	"context"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Missray24/missray-cab-app-sub000/internal/billing"
	"github.com/Missray24/missray-cab-app-sub000/internal/booking/domain"
	"github.com/Missray24/missray-cab-app-sub000/internal/booking/repo"
	"github.com/Missray24/missray-cab-app-sub000/internal/events"
	"github.com/Missray24/missray-cab-app-sub000/internal/metrics"
	"github.com/Missray24/missray-cab-app-sub000/internal/notification"
	"github.com/Missray24/missray-cab-app-sub000/internal/tracing"
)

// CheckoutResult is returned to the client to redirect into hosted payment.
type CheckoutResult struct {
	SessionID string  `json:"session_id"`
	URL       string  `json:"url"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

// CheckoutUseCase turns a priced booking into a payment session and applies
// the provider's webhook outcomes back onto the booking.
type CheckoutUseCase struct {
	bookings   repo.BookingRepository
	quotes     *QuoteUseCase
	provider   billing.Provider
	events     events.Publisher
	mailer     notification.Mailer
	vatPercent float64
	logger     *zap.Logger
}

// NewCheckoutUseCase creates a new checkout use case
func NewCheckoutUseCase(
	bookings repo.BookingRepository,
	quotes *QuoteUseCase,
	provider billing.Provider,
	publisher events.Publisher,
	mailer notification.Mailer,
	vatPercent float64,
	logger *zap.Logger,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		bookings:   bookings,
		quotes:     quotes,
		provider:   provider,
		events:     publisher,
		mailer:     mailer,
		vatPercent: vatPercent,
		logger:     logger,
	}
}

// Start re-prices the booking from its stored route snapshot, applies VAT
// and opens a checkout session. Re-pricing picks up rate changes made since
// the booking was created; the booking amount is updated to match what the
// client is charged.
func (uc *CheckoutUseCase) Start(ctx context.Context, bookingID uuid.UUID, clientID string, admin bool) (*CheckoutResult, error) {
	ctx, span := tracing.StartSpan(ctx, "checkout.start")
	defer span.End()

	booking, err := uc.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !admin && booking.ClientID != clientID {
		return nil, domain.NewNotFoundError("booking", bookingID.String())
	}
	if booking.PaymentStatus == domain.PaymentStatusPaid {
		return nil, domain.NewInvalidStateError("booking is already paid", bookingID.String())
	}
	if booking.Status != domain.BookingStatusPending && booking.Status != domain.BookingStatusConfirmed {
		return nil, domain.NewInvalidStateError("booking is not payable", string(booking.Status))
	}

	quote, err := uc.quotes.QuoteTier(ctx, booking.TierCode, QuoteRequest{
		Route:   booking.RouteSummary(),
		Stops:   len(booking.Stops),
		Options: booking.Options,
	})
	if err != nil {
		return nil, err
	}

	total := quote.Amount * (1 + uc.vatPercent/100)
	cents := int64(math.Round(total * 100))
	if cents <= 0 {
		return nil, domain.NewInvalidStateError("booking amount is not chargeable", bookingID.String())
	}

	session, err := uc.provider.CreateCheckoutSession(ctx, billing.CheckoutSessionParams{
		BookingID:   booking.ID.String(),
		ClientID:    booking.ClientID,
		TierCode:    booking.TierCode,
		Description: booking.PickupAddress + " → " + booking.DropoffAddress,
		Amount:      cents,
		Currency:    booking.Currency,
	})
	if err != nil {
		metrics.CheckoutSessionsCreated.WithLabelValues(providerName(session), "error").Inc()
		return nil, domain.NewPaymentFailedError(err.Error())
	}
	metrics.CheckoutSessionsCreated.WithLabelValues(session.Provider, "ok").Inc()

	booking.Amount = quote.Amount
	booking.VATPercent = uc.vatPercent
	booking.VATAmount = total - quote.Amount
	booking.CheckoutSession = session.SessionID
	booking.PaymentStatus = domain.PaymentStatusPending
	if err := uc.bookings.Update(ctx, booking); err != nil {
		return nil, err
	}

	uc.logger.Info("Checkout session opened",
		zap.String("booking_id", booking.ID.String()),
		zap.String("session_id", session.SessionID),
		zap.Int64("amount_cents", cents))

	return &CheckoutResult{
		SessionID: session.SessionID,
		URL:       session.URL,
		Amount:    total,
		Currency:  booking.Currency,
	}, nil
}

// HandleWebhook validates and applies one provider webhook delivery.
// Deliveries are retried by the provider, so outcomes are idempotent.
func (uc *CheckoutUseCase) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ctx, span := tracing.StartSpan(ctx, "checkout.webhook")
	defer span.End()

	if err := uc.provider.ValidateWebhookSignature(payload, signature); err != nil {
		metrics.WebhookEventsReceived.WithLabelValues("unknown", "invalid_signature").Inc()
		return domain.NewUnauthorizedError("invalid webhook signature")
	}

	event, err := uc.provider.ParseWebhookEvent(payload)
	if err != nil {
		metrics.WebhookEventsReceived.WithLabelValues("unknown", "parse_error").Inc()
		return domain.NewInvalidInputError("invalid webhook payload", err.Error())
	}

	switch event.Type {
	case billing.EventCheckoutCompleted:
		err = uc.applyPayment(ctx, event)
	case billing.EventPaymentFailed:
		err = uc.applyPaymentFailure(ctx, event)
	case billing.EventCheckoutExpired:
		err = uc.applyExpiry(ctx, event)
	default:
		metrics.WebhookEventsReceived.WithLabelValues(event.Type, "ignored").Inc()
		uc.logger.Debug("Ignoring webhook event", zap.String("event_type", event.Type))
		return nil
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.WebhookEventsReceived.WithLabelValues(event.Type, status).Inc()
	return err
}

func (uc *CheckoutUseCase) applyPayment(ctx context.Context, event *billing.WebhookEvent) error {
	data, err := uc.provider.ExtractSessionData(event)
	if err != nil {
		return domain.NewInvalidInputError("invalid webhook payload", err.Error())
	}

	booking, err := uc.bookings.GetByCheckoutSession(ctx, data.SessionID)
	if err != nil {
		return err
	}
	if booking.PaymentStatus == domain.PaymentStatusPaid {
		return nil
	}

	booking.PaymentStatus = domain.PaymentStatusPaid
	if booking.Status == domain.BookingStatusPending {
		if err := booking.TransitionTo(domain.BookingStatusConfirmed, "billing", "payment received"); err != nil {
			return err
		}
		metrics.BookingStatusTransitions.WithLabelValues(
			string(domain.BookingStatusPending), string(domain.BookingStatusConfirmed)).Inc()
	}
	if err := uc.bookings.Update(ctx, booking); err != nil {
		return err
	}

	uc.logger.Info("Booking paid",
		zap.String("booking_id", booking.ID.String()),
		zap.String("session_id", data.SessionID))

	payload := events.NewEvent(events.BookingPaid, booking.ID.String(), map[string]interface{}{
		"client_id": booking.ClientID,
		"amount":    booking.Amount,
		"currency":  booking.Currency,
	})
	if err := uc.events.Publish(ctx, payload); err != nil {
		uc.logger.Warn("Failed to publish payment event",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()))
	}
	if err := uc.mailer.SendPaymentReceipt(ctx, booking); err != nil {
		uc.logger.Warn("Failed to send payment receipt",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()))
	}
	return nil
}

func (uc *CheckoutUseCase) applyPaymentFailure(ctx context.Context, event *billing.WebhookEvent) error {
	data, err := uc.provider.ExtractSessionData(event)
	if err != nil {
		return domain.NewInvalidInputError("invalid webhook payload", err.Error())
	}

	booking, err := uc.bookings.GetByCheckoutSession(ctx, data.SessionID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		return err
	}
	if booking.PaymentStatus == domain.PaymentStatusPaid {
		return nil
	}

	booking.PaymentStatus = domain.PaymentStatusFailed
	return uc.bookings.Update(ctx, booking)
}

func (uc *CheckoutUseCase) applyExpiry(ctx context.Context, event *billing.WebhookEvent) error {
	data, err := uc.provider.ExtractSessionData(event)
	if err != nil {
		return domain.NewInvalidInputError("invalid webhook payload", err.Error())
	}

	booking, err := uc.bookings.GetByCheckoutSession(ctx, data.SessionID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		return err
	}
	if booking.PaymentStatus != domain.PaymentStatusPending {
		return nil
	}

	booking.PaymentStatus = domain.PaymentStatusUnpaid
	booking.CheckoutSession = ""
	return uc.bookings.Update(ctx, booking)
}

func providerName(session *billing.CheckoutSession) string {
	if session != nil {
		return session.Provider
	}
	return "unknown"
}
