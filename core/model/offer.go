package model

import "fmt"

// RewardParams prices a completed trip.
type RewardParams struct {
	Base        float64 `json:"base"`
	PerDistance float64 `json:"per_distance"`
	WaitPenalty float64 `json:"wait_penalty"`
}

// DefaultRewardParams returns the standard pricing used when the
// configuration does not override it.
func DefaultRewardParams() RewardParams {
	return RewardParams{Base: 2.0, PerDistance: 1.25, WaitPenalty: 0.05}
}

// Earnings returns the reward for carrying a parcel carryDistance far after
// the customer waited waitTime ticks. Never negative.
func (p RewardParams) Earnings(carryDistance, waitTime float64) float64 {
	e := p.Base + p.PerDistance*carryDistance - p.WaitPenalty*waitTime
	if e < 0 {
		return 0
	}
	return e
}

// Offer pairs one driver with one request and carries the projected trip
// economics, computed at a specific tick. Offers live inside a single tick:
// they are built during the proposal phase and discarded once assignments
// are settled.
type Offer struct {
	Driver  *Driver
	Request *Request

	Approach     float64 // driver position to pickup
	Carry        float64 // pickup to dropoff
	TripDistance float64 // Approach + Carry

	ProjectedTime     float64 // ticks to complete the whole trip
	ProjectedWait     float64 // customer wait if accepted now
	ProjectedEarnings float64

	CreatedAt int64
}

// NewOffer projects the trip economics for d serving r at tick now.
func NewOffer(d *Driver, r *Request, now int64, reward RewardParams) (Offer, error) {
	if d == nil || r == nil {
		return Offer{}, fmt.Errorf("offer: nil driver or request: %w", ErrInvalidInput)
	}
	if d.Speed <= 0 {
		return Offer{}, fmt.Errorf("offer: driver %d speed %v: %w", d.ID, d.Speed, ErrInvalidInput)
	}
	if r.Status != RequestWaiting {
		return Offer{}, fmt.Errorf("offer: request %d is %s: %w", r.ID, r.Status, ErrInvalidInput)
	}
	approach := d.Position.Dist(r.Pickup)
	carry := r.Pickup.Dist(r.Dropoff)
	trip := approach + carry
	wait := float64(now-r.CreatedAt) + approach/d.Speed
	return Offer{
		Driver:            d,
		Request:           r,
		Approach:          approach,
		Carry:             carry,
		TripDistance:      trip,
		ProjectedTime:     trip / d.Speed,
		ProjectedWait:     wait,
		ProjectedEarnings: reward.Earnings(carry, wait),
		CreatedAt:         now,
	}, nil
}

// CloserThan orders offers for conflict resolution: shorter trip first,
// ties to the lower driver id.
func (o Offer) CloserThan(p Offer) bool {
	if o.TripDistance != p.TripDistance {
		return o.TripDistance < p.TripDistance
	}
	return o.Driver.ID < p.Driver.ID
}

// RicherThan orders offers by projected earnings, ties to the lower
// driver id.
func (o Offer) RicherThan(p Offer) bool {
	if o.ProjectedEarnings != p.ProjectedEarnings {
		return o.ProjectedEarnings > p.ProjectedEarnings
	}
	return o.Driver.ID < p.Driver.ID
}
