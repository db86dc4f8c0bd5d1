package rest

import (
	"time"

	"github.com/Missray24/missray-cab-app-sub000/internal/booking/domain"
	"github.com/Missray24/missray-cab-app-sub000/internal/fare"
)

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type optionDTO struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

func toOptionSelections(in []optionDTO) []fare.OptionSelection {
	out := make([]fare.OptionSelection, 0, len(in))
	for _, o := range in {
		out = append(out, fare.OptionSelection{
			Name:     fare.OptionName(o.Name),
			Quantity: o.Quantity,
		})
	}
	return out
}

// quoteRequest prices a trip. Either addresses (routed server side) or an
// already known distance/duration pair may be supplied; addresses win when
// both are present.
type quoteRequest struct {
	Pickup   string      `json:"pickup"`
	Dropoff  string      `json:"dropoff"`
	Stops    []string    `json:"stops"`
	Distance *string     `json:"distance"`
	Duration *string     `json:"duration"`
	Options  []optionDTO `json:"options" validate:"dive"`
}

type quoteResponse struct {
	Quotes   []domain.TierQuote `json:"quotes"`
	Distance *string            `json:"distance,omitempty"`
	Duration *string            `json:"duration,omitempty"`
}

type createBookingRequest struct {
	TierCode    string      `json:"tier_code" validate:"required"`
	Pickup      string      `json:"pickup" validate:"required"`
	Dropoff     string      `json:"dropoff" validate:"required"`
	Stops       []string    `json:"stops"`
	Options     []optionDTO `json:"options" validate:"dive"`
	ScheduledAt time.Time   `json:"scheduled_at"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note"`
}

type cancelRequest struct {
	Note string `json:"note"`
}

type upsertTierRequest struct {
	Code         string  `json:"code" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	Description  string  `json:"description"`
	Currency     string  `json:"currency" validate:"required,len=3"`
	BaseFare     float64 `json:"base_fare" validate:"gte=0"`
	PerKm        float64 `json:"per_km" validate:"gte=0"`
	PerMinute    float64 `json:"per_minute" validate:"gte=0"`
	PerStop      float64 `json:"per_stop" validate:"gte=0"`
	MinimumPrice float64 `json:"minimum_price" validate:"gte=0"`
	Position     int     `json:"position"`
	Active       bool    `json:"active"`
}

func (r upsertTierRequest) toDomain() domain.Tier {
	return domain.Tier{
		Code:        r.Code,
		Name:        r.Name,
		Description: r.Description,
		Currency:    r.Currency,
		Position:    r.Position,
		Active:      r.Active,
		Rates: fare.RateCard{
			BaseFare:     r.BaseFare,
			PerKm:        r.PerKm,
			PerMinute:    r.PerMinute,
			PerStop:      r.PerStop,
			MinimumPrice: r.MinimumPrice,
		},
	}
}

type upsertOptionRequest struct {
	Name      string  `json:"name" validate:"required"`
	Label     string  `json:"label" validate:"required"`
	Surcharge float64 `json:"surcharge" validate:"gte=0"`
	Active    bool    `json:"active"`
}

func (r upsertOptionRequest) toDomain() domain.RideOption {
	return domain.RideOption{
		Name:      fare.OptionName(r.Name),
		Label:     r.Label,
		Surcharge: r.Surcharge,
		Active:    r.Active,
	}
}
