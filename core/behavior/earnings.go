package behavior

import (
	"fmt"
	"math"

	"github.com/fleetlab/dispatchsim/core/model"
)

// EarningsMax is selective: it takes an offer only when the projected
// earnings per tick of trip time clear a minimum rate.
type EarningsMax struct {
	MinRewardPerTick float64
}

// NewEarningsMax validates the minimum rate.
func NewEarningsMax(minRewardPerTick float64) (EarningsMax, error) {
	if minRewardPerTick < 0 || math.IsNaN(minRewardPerTick) {
		return EarningsMax{}, fmt.Errorf("earnings_max: min reward per tick %v: %w", minRewardPerTick, model.ErrInvalidInput)
	}
	return EarningsMax{MinRewardPerTick: minRewardPerTick}, nil
}

// Name implements model.Behavior.
func (EarningsMax) Name() string { return "earnings_max" }

// Decide implements model.Behavior.
func (b EarningsMax) Decide(d *model.Driver, o model.Offer, now int64) (bool, error) {
	if err := checkContract(b.Name(), d, o); err != nil {
		return false, err
	}
	// a zero-length trip costs no time, any rate clears
	if o.ProjectedTime <= 0 {
		return true, nil
	}
	return o.ProjectedEarnings/o.ProjectedTime >= b.MinRewardPerTick, nil
}
