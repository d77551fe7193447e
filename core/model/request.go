package model

import "fmt"

// RequestStatus tracks a delivery request through its lifecycle.
type RequestStatus int

const (
	RequestWaiting RequestStatus = iota
	RequestAssigned
	RequestPickedUp
	RequestDelivered
	RequestExpired
)

// String returns a human-readable representation of the status.
func (s RequestStatus) String() string {
	switch s {
	case RequestWaiting:
		return "waiting"
	case RequestAssigned:
		return "assigned"
	case RequestPickedUp:
		return "picked_up"
	case RequestDelivered:
		return "delivered"
	case RequestExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s RequestStatus) Terminal() bool {
	return s == RequestDelivered || s == RequestExpired
}

// Request is a delivery order to be carried from Pickup to Dropoff.
// All time fields are tick numbers; the ones not reached yet hold -1.
type Request struct {
	ID             int64
	Pickup         Point
	Dropoff        Point
	CreatedAt      int64
	Status         RequestStatus
	AssignedDriver int64 // serving driver id, -1 while unassigned

	AssignedAt  int64
	PickedAt    int64
	DeliveredAt int64
	ExpiredAt   int64

	// WaitTime is PickedAt-CreatedAt, fixed when the request is delivered.
	WaitTime float64
}

// NewRequest returns a waiting request created at tick now. A dropoff equal
// to the pickup is legal and makes a zero-length carry leg: the generator
// avoids producing such trips, loaded data may contain them.
func NewRequest(id int64, pickup, dropoff Point, now int64) (*Request, error) {
	if id < 0 {
		return nil, fmt.Errorf("request id %d: %w", id, ErrInvalidInput)
	}
	return &Request{
		ID:             id,
		Pickup:         pickup,
		Dropoff:        dropoff,
		CreatedAt:      now,
		Status:         RequestWaiting,
		AssignedDriver: -1,
		AssignedAt:     -1,
		PickedAt:       -1,
		DeliveredAt:    -1,
		ExpiredAt:      -1,
	}, nil
}

// Age returns the number of ticks since the request was created.
func (r *Request) Age(now int64) int64 { return now - r.CreatedAt }

// Assign links the request to a driver. Legal only while waiting.
func (r *Request) Assign(driverID, now int64) error {
	if driverID < 0 {
		return fmt.Errorf("assign request %d to driver %d: %w", r.ID, driverID, ErrInvalidInput)
	}
	if r.Status != RequestWaiting {
		return fmt.Errorf("assign request %d in state %s: %w", r.ID, r.Status, ErrInvalidTransition)
	}
	r.Status = RequestAssigned
	r.AssignedDriver = driverID
	r.AssignedAt = now
	return nil
}

// MarkPickedUp records the pickup. Legal only while assigned.
func (r *Request) MarkPickedUp(now int64) error {
	if r.Status != RequestAssigned {
		return fmt.Errorf("pick up request %d in state %s: %w", r.ID, r.Status, ErrInvalidTransition)
	}
	r.Status = RequestPickedUp
	r.PickedAt = now
	return nil
}

// MarkDelivered completes the request and fixes its wait time.
// Legal only after pickup.
func (r *Request) MarkDelivered(now int64) error {
	if r.Status != RequestPickedUp {
		return fmt.Errorf("deliver request %d in state %s: %w", r.ID, r.Status, ErrInvalidTransition)
	}
	r.Status = RequestDelivered
	r.DeliveredAt = now
	r.WaitTime = float64(r.PickedAt - r.CreatedAt)
	return nil
}

// MarkExpired abandons a request that waited too long. Legal only while
// waiting: assigned and in-transit requests never expire.
func (r *Request) MarkExpired(now int64) error {
	if r.Status != RequestWaiting {
		return fmt.Errorf("expire request %d in state %s: %w", r.ID, r.Status, ErrInvalidTransition)
	}
	r.Status = RequestExpired
	r.ExpiredAt = now
	return nil
}
