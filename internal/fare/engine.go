// Package fare computes trip price estimates for missray-cab service tiers.
//
// The engine is a pure function over a tier's rate card, a route summary and
// the requested add-ons: no clock, no I/O, no state between calls. It is safe
// to price any number of tiers concurrently with a single Engine.
package fare

import "fmt"

// Engine prices trips against rate cards using a configured surcharge table.
type Engine struct {
	surcharges SurchargeTable
}

// NewEngine creates an engine with the given per-option surcharges. The table
// is treated as read-only after construction.
func NewEngine(surcharges SurchargeTable) *Engine {
	return &Engine{surcharges: surcharges}
}

// Estimate computes a price for one tier.
//
// When the route cannot be parsed (not yet computed, or garbage strings) the
// tier's minimum price is returned immediately; stop count and options are
// deliberately ignored in that case so an incomplete route never produces a
// non-floor price. Otherwise the linear formula is applied and the result is
// clamped up to the minimum price.
//
// The returned amount keeps full float precision; rounding to the currency's
// minor unit happens at presentation or charge time, not here. An error is
// only returned for caller contract violations: an invalid rate card, a
// negative stop count or a negative option quantity.
func (e *Engine) Estimate(card RateCard, route RouteSummary, stops int, options []OptionSelection) (float64, error) {
	if err := card.Validate(); err != nil {
		return 0, err
	}
	if stops < 0 {
		return 0, fmt.Errorf("stop count must not be negative, got %d", stops)
	}
	for _, opt := range options {
		if opt.Quantity < 0 {
			return 0, fmt.Errorf("option %q: quantity must not be negative, got %d", opt.Name, opt.Quantity)
		}
	}

	m, ok := ParseRouteSummary(route)
	if !ok {
		return card.MinimumPrice, nil
	}

	raw := card.BaseFare +
		m.DistanceKm*card.PerKm +
		float64(m.DurationMin)*card.PerMinute +
		float64(stops)*card.PerStop

	for _, opt := range options {
		if opt.Quantity == 0 {
			continue
		}
		raw += e.surcharges[opt.Name] * float64(opt.Quantity)
	}

	if raw < card.MinimumPrice {
		return card.MinimumPrice, nil
	}
	return raw, nil
}

// Surcharge returns the configured per-unit surcharge for an option name,
// zero when the option is unknown.
func (e *Engine) Surcharge(name OptionName) float64 {
	return e.surcharges[name]
}
