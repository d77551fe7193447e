package model

import "fmt"

// DriverStatus tracks what a driver is currently doing.
type DriverStatus int

const (
	DriverIdle DriverStatus = iota
	DriverToPickup
	DriverToDropoff
)

// String returns a human-readable representation of the status.
func (s DriverStatus) String() string {
	switch s {
	case DriverIdle:
		return "idle"
	case DriverToPickup:
		return "to_pickup"
	case DriverToDropoff:
		return "to_dropoff"
	default:
		return "unknown"
	}
}

// TripRecord is one completed delivery as seen by the driver.
type TripRecord struct {
	RequestID   int64
	Approach    float64 // distance from assignment position to pickup
	Carry       float64 // distance from pickup to dropoff
	Earnings    float64
	WaitTime    float64
	CompletedAt int64
}

// Driver is a courier moving at constant speed through the plane.
type Driver struct {
	ID       int64
	Position Point
	Speed    float64 // distance per tick, strictly positive
	Status   DriverStatus
	Current  *Request // request being served, nil while idle
	Behavior Behavior
	Earnings float64

	IdleSince int64        // tick the driver last became idle
	History   []TripRecord // completed trips, oldest first

	// Mutation bookkeeping, maintained by behavior rules.
	LastEvaluated int64 // tick of the last mutation evaluation, -1 before the first
	StagnantSince int64 // tick stagnation was first observed, -1 when none

	approach float64 // approach distance of the trip in progress
}

// NewDriver validates and returns an idle driver.
func NewDriver(id int64, pos Point, speed float64, b Behavior, now int64) (*Driver, error) {
	if id < 0 {
		return nil, fmt.Errorf("driver id %d: %w", id, ErrInvalidInput)
	}
	if speed <= 0 {
		return nil, fmt.Errorf("driver %d: speed %v must be positive: %w", id, speed, ErrInvalidInput)
	}
	if b == nil {
		return nil, fmt.Errorf("driver %d: nil behavior: %w", id, ErrInvalidInput)
	}
	return &Driver{
		ID:            id,
		Position:      pos,
		Speed:         speed,
		Status:        DriverIdle,
		Behavior:      b,
		IdleSince:     now,
		LastEvaluated: -1,
		StagnantSince: -1,
	}, nil
}

// IdleTicks returns how long the driver has been idle, 0 while serving.
func (d *Driver) IdleTicks(now int64) int64 {
	if d.Status != DriverIdle {
		return 0
	}
	return now - d.IdleSince
}

// Target returns the point the driver is heading to, if any.
func (d *Driver) Target() (Point, bool) {
	switch d.Status {
	case DriverToPickup:
		return d.Current.Pickup, true
	case DriverToDropoff:
		return d.Current.Dropoff, true
	default:
		return Point{}, false
	}
}

// Step advances the driver toward its target by at most Speed*dt, snapping
// exactly onto the target when it is within reach. It reports whether the
// target was reached. Idle drivers do not move.
func (d *Driver) Step(dt float64) bool {
	target, ok := d.Target()
	if !ok {
		return false
	}
	dist := d.Position.Dist(target)
	reach := d.Speed * dt
	if dist <= reach {
		d.Position = target
		return true
	}
	d.Position = d.Position.Add(target.Sub(d.Position).Scale(reach / dist))
	return false
}

// AssignRequest links driver and request both ways and heads for the pickup.
// The driver must be idle and the request waiting.
func (d *Driver) AssignRequest(r *Request, now int64) error {
	if r == nil {
		return fmt.Errorf("driver %d: assign nil request: %w", d.ID, ErrInvalidInput)
	}
	if d.Status != DriverIdle || d.Current != nil {
		return fmt.Errorf("driver %d: assign request %d in state %s: %w", d.ID, r.ID, d.Status, ErrInvalidTransition)
	}
	if err := r.Assign(d.ID, now); err != nil {
		return err
	}
	d.Current = r
	d.Status = DriverToPickup
	d.approach = d.Position.Dist(r.Pickup)
	return nil
}

// CompletePickup picks the parcel up and flips the leg to the dropoff.
// The driver must be en route to a pickup and standing on it.
func (d *Driver) CompletePickup(now int64) error {
	if d.Status != DriverToPickup || d.Current == nil {
		return fmt.Errorf("driver %d: pickup in state %s: %w", d.ID, d.Status, ErrInvalidTransition)
	}
	if !d.Position.Equal(d.Current.Pickup, Epsilon) {
		return fmt.Errorf("driver %d: pickup of request %d before arrival: %w", d.ID, d.Current.ID, ErrInvalidTransition)
	}
	if err := d.Current.MarkPickedUp(now); err != nil {
		return err
	}
	d.Status = DriverToDropoff
	return nil
}

// CompleteDropoff delivers the current request, credits the reward and
// returns the recorded trip. The driver becomes idle at the dropoff point.
func (d *Driver) CompleteDropoff(now int64, reward RewardParams) (TripRecord, error) {
	if d.Status != DriverToDropoff || d.Current == nil {
		return TripRecord{}, fmt.Errorf("driver %d: dropoff in state %s: %w", d.ID, d.Status, ErrInvalidTransition)
	}
	if !d.Position.Equal(d.Current.Dropoff, Epsilon) {
		return TripRecord{}, fmt.Errorf("driver %d: dropoff of request %d before arrival: %w", d.ID, d.Current.ID, ErrInvalidTransition)
	}
	r := d.Current
	if err := r.MarkDelivered(now); err != nil {
		return TripRecord{}, err
	}
	carry := r.Pickup.Dist(r.Dropoff)
	rec := TripRecord{
		RequestID:   r.ID,
		Approach:    d.approach,
		Carry:       carry,
		Earnings:    reward.Earnings(carry, r.WaitTime),
		WaitTime:    r.WaitTime,
		CompletedAt: now,
	}
	d.Earnings += rec.Earnings
	d.History = append(d.History, rec)
	d.Current = nil
	d.Status = DriverIdle
	d.IdleSince = now
	d.approach = 0
	return rec, nil
}

// RecentEarnings returns the earnings of the last n completed trips, oldest
// first. Shorter histories return what exists.
func (d *Driver) RecentEarnings(n int) []float64 {
	if n <= 0 || len(d.History) == 0 {
		return nil
	}
	start := len(d.History) - n
	if start < 0 {
		start = 0
	}
	out := make([]float64, 0, len(d.History)-start)
	for _, t := range d.History[start:] {
		out = append(out, t.Earnings)
	}
	return out
}
