package behavior

import (
	"fmt"
	"math"

	"github.com/fleetlab/dispatchsim/core/model"
)

// Lazy rests between trips: it takes an offer only after a minimum idle
// stretch, and then only for pickups strictly closer than its limit. Both
// conditions must hold.
type Lazy struct {
	MinIdleTicks      int64
	MaxPickupDistance float64
}

// NewLazy validates the thresholds.
func NewLazy(minIdleTicks int64, maxPickupDistance float64) (Lazy, error) {
	if minIdleTicks < 0 {
		return Lazy{}, fmt.Errorf("lazy: min idle ticks %d: %w", minIdleTicks, model.ErrInvalidInput)
	}
	if maxPickupDistance < 0 || math.IsNaN(maxPickupDistance) {
		return Lazy{}, fmt.Errorf("lazy: max pickup distance %v: %w", maxPickupDistance, model.ErrInvalidInput)
	}
	return Lazy{MinIdleTicks: minIdleTicks, MaxPickupDistance: maxPickupDistance}, nil
}

// Name implements model.Behavior.
func (Lazy) Name() string { return "lazy" }

// Decide implements model.Behavior.
func (b Lazy) Decide(d *model.Driver, o model.Offer, now int64) (bool, error) {
	if err := checkContract(b.Name(), d, o); err != nil {
		return false, err
	}
	if now-d.IdleSince < b.MinIdleTicks {
		return false, nil
	}
	return d.Position.Dist(o.Request.Pickup) < b.MaxPickupDistance, nil
}
