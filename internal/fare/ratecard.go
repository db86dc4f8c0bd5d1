package fare

import "fmt"

// RateCard holds the pricing coefficients configured for one service tier.
// All amounts are expressed in the tier's currency unit (EUR for missray-cab).
type RateCard struct {
	BaseFare     float64 `json:"base_fare"`
	PerKm        float64 `json:"per_km"`
	PerMinute    float64 `json:"per_minute"`
	PerStop      float64 `json:"per_stop"`
	MinimumPrice float64 `json:"minimum_price"`
}

// Validate checks that no coefficient is negative. The minimum price is an
// independent floor, not a derived value, so it is only checked for sign.
func (rc RateCard) Validate() error {
	switch {
	case rc.BaseFare < 0:
		return fmt.Errorf("rate card: base_fare must not be negative, got %v", rc.BaseFare)
	case rc.PerKm < 0:
		return fmt.Errorf("rate card: per_km must not be negative, got %v", rc.PerKm)
	case rc.PerMinute < 0:
		return fmt.Errorf("rate card: per_minute must not be negative, got %v", rc.PerMinute)
	case rc.PerStop < 0:
		return fmt.Errorf("rate card: per_stop must not be negative, got %v", rc.PerStop)
	case rc.MinimumPrice < 0:
		return fmt.Errorf("rate card: minimum_price must not be negative, got %v", rc.MinimumPrice)
	}
	return nil
}

// OptionName identifies a bookable ride add-on.
type OptionName string

// Known ride add-ons. The surcharge table is not restricted to these; admin
// screens may configure additional options at runtime.
const (
	OptionChildSeat   OptionName = "child_seat"
	OptionBoosterSeat OptionName = "booster_seat"
	OptionPet         OptionName = "pet"
)

// OptionSelection is one requested add-on with its quantity.
type OptionSelection struct {
	Name     OptionName `json:"name"`
	Quantity int        `json:"quantity"`
}

// SurchargeTable maps an option name to its per-unit surcharge. Resolution of
// option names against the configured catalog happens before pricing; a name
// missing from the table contributes nothing to the estimate.
type SurchargeTable map[OptionName]float64
