package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Missray24/missray-cab-app-sub000/internal/booking/domain"
	"github.com/Missray24/missray-cab-app-sub000/internal/booking/repo"
	"github.com/Missray24/missray-cab-app-sub000/internal/events"
	"github.com/Missray24/missray-cab-app-sub000/internal/fare"
	"github.com/Missray24/missray-cab-app-sub000/internal/log"
	"github.com/Missray24/missray-cab-app-sub000/internal/metrics"
	"github.com/Missray24/missray-cab-app-sub000/internal/notification"
	"github.com/Missray24/missray-cab-app-sub000/internal/routing"
	"github.com/Missray24/missray-cab-app-sub000/internal/tracing"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CreateBookingRequest carries the client input for a new booking.
type CreateBookingRequest struct {
	ClientID    string
	ClientEmail string
	TierCode    string
	Pickup      string
	Dropoff     string
	Stops       []string
	Options     []fare.OptionSelection
	ScheduledAt time.Time
}

// BookingUseCase drives the booking lifecycle from creation to completion.
type BookingUseCase struct {
	bookings repo.BookingRepository
	quotes   *QuoteUseCase
	planner  routing.Planner
	events   events.Publisher
	mailer   notification.Mailer
	logger   *zap.Logger
}

// NewBookingUseCase creates a new booking use case
func NewBookingUseCase(
	bookings repo.BookingRepository,
	quotes *QuoteUseCase,
	planner routing.Planner,
	publisher events.Publisher,
	mailer notification.Mailer,
	logger *zap.Logger,
) *BookingUseCase {
	return &BookingUseCase{
		bookings: bookings,
		quotes:   quotes,
		planner:  planner,
		events:   publisher,
		mailer:   mailer,
		logger:   logger,
	}
}

// Create plans the route, prices the selected tier and persists the booking.
// An unroutable trip is still bookable; it is priced at the tier minimum.
func (uc *BookingUseCase) Create(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	ctx, span := tracing.StartSpan(ctx, "booking.create")
	defer span.End()

	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	route, err := uc.planner.Plan(ctx, req.Pickup, req.Dropoff, req.Stops)
	if err != nil {
		uc.logger.Warn("Route planning failed, pricing at tier minimum",
			zap.Error(err),
			zap.String("pickup", req.Pickup),
			zap.String("dropoff", req.Dropoff))
		route = fare.RouteSummary{}
	}

	quote, err := uc.quotes.QuoteTier(ctx, req.TierCode, QuoteRequest{
		Route:   route,
		Stops:   len(req.Stops),
		Options: req.Options,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	booking := &domain.Booking{
		ID:             uuid.New(),
		ClientID:       req.ClientID,
		ClientEmail:    req.ClientEmail,
		TierCode:       req.TierCode,
		PickupAddress:  req.Pickup,
		DropoffAddress: req.Dropoff,
		Stops:          req.Stops,
		Distance:       route.Distance,
		Duration:       route.Duration,
		Options:        req.Options,
		Amount:         quote.Amount,
		Currency:       quote.Currency,
		Status:         domain.BookingStatusPending,
		PaymentStatus:  domain.PaymentStatusUnpaid,
		ScheduledAt:    req.ScheduledAt,
		History: []domain.StatusChange{{
			Status: domain.BookingStatusPending,
			Actor:  req.ClientID,
			At:     now,
		}},
	}

	if err := uc.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	metrics.BookingsCreated.WithLabelValues(booking.TierCode).Inc()
	log.Info(ctx, "Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("tier_code", booking.TierCode),
		zap.Float64("amount", booking.Amount))

	uc.publish(ctx, events.BookingCreated, booking)
	if err := uc.mailer.SendBookingConfirmation(ctx, booking); err != nil {
		uc.logger.Warn("Failed to send booking confirmation",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()))
	}

	return booking, nil
}

// Get returns a booking, enforcing that clients only see their own.
func (uc *BookingUseCase) Get(ctx context.Context, id uuid.UUID, clientID string, admin bool) (*domain.Booking, error) {
	booking, err := uc.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !admin && booking.ClientID != clientID {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	return booking, nil
}

// ListForClient returns the client's bookings, most recent first.
func (uc *BookingUseCase) ListForClient(ctx context.Context, clientID string, limit, offset int) ([]*domain.Booking, error) {
	limit, offset = clampPage(limit, offset)
	return uc.bookings.ListByClient(ctx, clientID, limit, offset)
}

// ListAll returns all bookings for admin screens, most recent first.
func (uc *BookingUseCase) ListAll(ctx context.Context, limit, offset int) ([]*domain.Booking, error) {
	limit, offset = clampPage(limit, offset)
	return uc.bookings.List(ctx, limit, offset)
}

// Cancel cancels a booking on behalf of its owner or an admin.
func (uc *BookingUseCase) Cancel(ctx context.Context, id uuid.UUID, clientID string, admin bool, note string) (*domain.Booking, error) {
	booking, err := uc.Get(ctx, id, clientID, admin)
	if err != nil {
		return nil, err
	}

	from := booking.Status
	actor := clientID
	if admin {
		actor = "admin:" + clientID
	}
	if err := booking.TransitionTo(domain.BookingStatusCancelled, actor, note); err != nil {
		return nil, err
	}
	if err := uc.bookings.Update(ctx, booking); err != nil {
		return nil, err
	}

	metrics.BookingStatusTransitions.WithLabelValues(string(from), string(booking.Status)).Inc()
	uc.publish(ctx, events.BookingCancelled, booking)
	return booking, nil
}

// UpdateStatus moves a booking along its lifecycle. Admin only.
func (uc *BookingUseCase) UpdateStatus(ctx context.Context, id uuid.UUID, target domain.BookingStatus, actor, note string) (*domain.Booking, error) {
	booking, err := uc.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := booking.Status
	if err := booking.TransitionTo(target, actor, note); err != nil {
		return nil, err
	}
	if err := uc.bookings.Update(ctx, booking); err != nil {
		return nil, err
	}

	metrics.BookingStatusTransitions.WithLabelValues(string(from), string(target)).Inc()
	if target == domain.BookingStatusCancelled {
		uc.publish(ctx, events.BookingCancelled, booking)
	}
	return booking, nil
}

func (uc *BookingUseCase) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	event := events.NewEvent(eventType, booking.ID.String(), map[string]interface{}{
		"client_id": booking.ClientID,
		"tier_code": booking.TierCode,
		"amount":    booking.Amount,
		"currency":  booking.Currency,
		"status":    string(booking.Status),
	})
	if err := uc.events.Publish(ctx, event); err != nil {
		uc.logger.Warn("Failed to publish booking event",
			zap.Error(err),
			zap.String("event_type", eventType),
			zap.String("booking_id", booking.ID.String()))
	}
}

func validateCreateRequest(req CreateBookingRequest) error {
	switch {
	case req.ClientID == "":
		return domain.NewInvalidInputError("client is required", "")
	case req.TierCode == "":
		return domain.NewInvalidInputError("tier code is required", "")
	case strings.TrimSpace(req.Pickup) == "":
		return domain.NewInvalidInputError("pickup address is required", "")
	case strings.TrimSpace(req.Dropoff) == "":
		return domain.NewInvalidInputError("dropoff address is required", "")
	}
	for _, stop := range req.Stops {
		if strings.TrimSpace(stop) == "" {
			return domain.NewInvalidInputError("stop address cannot be empty", "")
		}
	}
	for _, opt := range req.Options {
		if opt.Quantity < 0 {
			return domain.NewInvalidInputError("option quantity cannot be negative", string(opt.Name))
		}
	}
	return nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
