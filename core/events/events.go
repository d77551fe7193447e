// Package events defines the simulation events emitted on the event bus and
// the bus itself. Subscribers get copies of scalar data only: an event can
// never reach back into simulation state.
//
// Event types:
//   - RequestGenerated, RequestExpired: arrival process and timeouts
//   - OfferDecided: behavior verdict on a proposed pairing
//   - RequestAssigned, RequestPickedUp, RequestDelivered: trip progress
//   - BehaviorMutated: a driver switched strategy
//   - TickCompleted: per-tick roll-up
package events

import "github.com/fleetlab/dispatchsim/core/model"

// Event is implemented by every simulation event.
type Event interface {
	Kind() string
}

// RequestGenerated is published when the generator emits a new request.
type RequestGenerated struct {
	Time      int64
	RequestID int64
	Pickup    model.Point
	Dropoff   model.Point
}

// Kind implements Event.
func (RequestGenerated) Kind() string { return "request_generated" }

// RequestExpired is published when a waiting request times out.
type RequestExpired struct {
	Time      int64
	RequestID int64
	Waited    int64
}

// Kind implements Event.
func (RequestExpired) Kind() string { return "request_expired" }

// OfferDecided is published for every behavior verdict.
type OfferDecided struct {
	Time         int64
	DriverID     int64
	RequestID    int64
	Behavior     string
	Accepted     bool
	TripDistance float64
}

// Kind implements Event.
func (OfferDecided) Kind() string { return "offer_decided" }

// RequestAssigned is published once conflict resolution settles a pairing.
type RequestAssigned struct {
	Time         int64
	DriverID     int64
	RequestID    int64
	TripDistance float64
}

// Kind implements Event.
func (RequestAssigned) Kind() string { return "request_assigned" }

// RequestPickedUp is published when the parcel is collected.
type RequestPickedUp struct {
	Time      int64
	DriverID  int64
	RequestID int64
}

// Kind implements Event.
func (RequestPickedUp) Kind() string { return "request_picked_up" }

// RequestDelivered is published when a trip completes.
type RequestDelivered struct {
	Time      int64
	DriverID  int64
	RequestID int64
	Earnings  float64
	WaitTime  float64
}

// Kind implements Event.
func (RequestDelivered) Kind() string { return "request_delivered" }

// BehaviorMutated is published when a mutation rule swaps a driver's
// strategy.
type BehaviorMutated struct {
	Time     int64
	DriverID int64
	From     string
	To       string
}

// Kind implements Event.
func (BehaviorMutated) Kind() string { return "behavior_mutated" }

// TickCompleted is the per-tick roll-up published after time advances.
type TickCompleted struct {
	Time      int64 // time after the tick
	Generated int
	Expired   int
	Assigned  int
	PickedUp  int
	Delivered int
	Mutated   int
}

// Kind implements Event.
func (TickCompleted) Kind() string { return "tick_completed" }
