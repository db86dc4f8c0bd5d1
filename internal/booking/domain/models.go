package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/Missray24/missray-cab-app-sub000/internal/fare"
)

// Tier is a bookable vehicle class with its rate card. Rate cards live in
// the database and are mutated by admin screens; pricing always reads the
// freshly loaded value, never a copy memoized at startup.
type Tier struct {
	ID          uuid.UUID     `json:"id"`
	Code        string        `json:"code"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Currency    string        `json:"currency"`
	Rates       fare.RateCard `json:"rates"`
	Position    int           `json:"position"`
	Active      bool          `json:"active"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// RideOption is a configurable ride add-on with its per-unit surcharge.
type RideOption struct {
	Name      fare.OptionName `json:"name"`
	Label     string          `json:"label"`
	Surcharge float64         `json:"surcharge"`
	Active    bool            `json:"active"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TierQuote is one priced tier in a quote response, ready for display.
type TierQuote struct {
	TierCode string  `json:"tier_code"`
	TierName string  `json:"tier_name"`
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
	Floored  bool    `json:"floored"`
}

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusAssigned   BookingStatus = "driver_assigned"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// PaymentStatus represents the payment state of a booking
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// StatusChange is one entry of a booking's status history timeline.
type StatusChange struct {
	Status BookingStatus `json:"status"`
	Note   string        `json:"note,omitempty"`
	Actor  string        `json:"actor,omitempty"`
	At     time.Time     `json:"at"`
}

// Booking is a client reservation with a price snapshot taken at creation
// time. The route strings are stored exactly as the route provider returned
// them so the fare can be recomputed at payment time.
type Booking struct {
	ID              uuid.UUID              `json:"id"`
	ClientID        string                 `json:"client_id"`
	ClientEmail     string                 `json:"client_email"`
	TierCode        string                 `json:"tier_code"`
	PickupAddress   string                 `json:"pickup_address"`
	DropoffAddress  string                 `json:"dropoff_address"`
	Stops           []string               `json:"stops"`
	Distance        *string                `json:"distance"`
	Duration        *string                `json:"duration"`
	Options         []fare.OptionSelection `json:"options"`
	Amount          float64                `json:"amount"`
	VATPercent      float64                `json:"vat_percent"`
	VATAmount       float64                `json:"vat_amount"`
	Currency        string                 `json:"currency"`
	Status          BookingStatus          `json:"status"`
	PaymentStatus   PaymentStatus          `json:"payment_status"`
	CheckoutSession string                 `json:"checkout_session,omitempty"`
	History         []StatusChange         `json:"history"`
	ScheduledAt     time.Time              `json:"scheduled_at"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// RouteSummary rebuilds the fare input from the stored route snapshot.
func (b *Booking) RouteSummary() fare.RouteSummary {
	return fare.RouteSummary{Distance: b.Distance, Duration: b.Duration}
}

var allowedTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:    {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:  {BookingStatusAssigned, BookingStatusCancelled},
	BookingStatusAssigned:   {BookingStatusInProgress, BookingStatusCancelled},
	BookingStatusInProgress: {BookingStatusCompleted},
	BookingStatusCompleted:  {},
	BookingStatusCancelled:  {},
}

// CanTransitionTo reports whether the booking may move to the target status.
func (b *Booking) CanTransitionTo(target BookingStatus) bool {
	for _, next := range allowedTransitions[b.Status] {
		if next == target {
			return true
		}
	}
	return false
}

// TransitionTo moves the booking to the target status and appends the change
// to the history timeline.
func (b *Booking) TransitionTo(target BookingStatus, actor, note string) error {
	if !b.CanTransitionTo(target) {
		return NewInvalidStateError(
			"booking status transition not allowed",
			string(b.Status)+" -> "+string(target))
	}

	b.Status = target
	b.History = append(b.History, StatusChange{
		Status: target,
		Note:   note,
		Actor:  actor,
		At:     time.Now().UTC(),
	})
	return nil
}

// IsValidStatus checks that the stored status is a known one.
func (b *Booking) IsValidStatus() bool {
	switch b.Status {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusAssigned,
		BookingStatusInProgress, BookingStatusCompleted, BookingStatusCancelled:
		return true
	default:
		return false
	}
}
