package behavior

import (
	"fmt"
	"math"

	"github.com/fleetlab/dispatchsim/core/model"
)

// GreedyDistance takes any offer whose pickup is within reach, regardless of
// what the trip pays.
type GreedyDistance struct {
	MaxDistance float64
}

// NewGreedyDistance validates the threshold. The threshold is inclusive: a
// pickup exactly MaxDistance away is still taken.
func NewGreedyDistance(maxDistance float64) (GreedyDistance, error) {
	if maxDistance < 0 || math.IsNaN(maxDistance) {
		return GreedyDistance{}, fmt.Errorf("greedy_distance: max distance %v: %w", maxDistance, model.ErrInvalidInput)
	}
	return GreedyDistance{MaxDistance: maxDistance}, nil
}

// Name implements model.Behavior.
func (GreedyDistance) Name() string { return "greedy_distance" }

// Decide implements model.Behavior.
func (b GreedyDistance) Decide(d *model.Driver, o model.Offer, now int64) (bool, error) {
	if err := checkContract(b.Name(), d, o); err != nil {
		return false, err
	}
	return d.Position.Dist(o.Request.Pickup) <= b.MaxDistance, nil
}
