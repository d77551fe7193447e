package sim

import (
	"sort"

	"github.com/fleetlab/dispatchsim/core/model"
)

// Snapshot is an immutable view of the world between ticks.
type Snapshot struct {
	Time      int64         `json:"time"`
	Drivers   []DriverView  `json:"drivers"`
	Pending   []RequestView `json:"pending"`
	InTransit []TransitView `json:"in_transit"`
	Served    int64         `json:"served"`
	Expired   int64         `json:"expired"`
	AvgWait   float64       `json:"avg_wait"`
}

// DriverView is the externally visible state of one driver.
type DriverView struct {
	ID               int64   `json:"id"`
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	Status           string  `json:"status"`
	CurrentRequestID *int64  `json:"current_request_id"`
	Behavior         string  `json:"behavior"`
	Earnings         float64 `json:"earnings"`
	Trips            int     `json:"trips"`
}

// RequestView describes a request still waiting to be picked up.
type RequestView struct {
	ID      int64   `json:"id"`
	PickupX float64 `json:"pickup_x"`
	PickupY float64 `json:"pickup_y"`
	Status  string  `json:"status"`
}

// TransitView describes a request riding along with its driver.
type TransitView struct {
	ID       int64   `json:"id"`
	DriverID int64   `json:"driver_id"`
	DropoffX float64 `json:"dropoff_x"`
	DropoffY float64 `json:"dropoff_y"`
}

// Snapshot renders the current state. It performs no mutation, so taking two
// snapshots back to back yields identical values.
func (s *Simulator) Snapshot() Snapshot {
	snap := Snapshot{
		Time:      s.now,
		Served:    s.served,
		Expired:   s.expired,
		AvgWait:   s.AvgWait(),
		Drivers:   make([]DriverView, 0, len(s.drivers)),
		Pending:   []RequestView{},
		InTransit: []TransitView{},
	}
	for _, d := range s.drivers {
		v := DriverView{
			ID:       d.ID,
			X:        d.Position.X,
			Y:        d.Position.Y,
			Status:   d.Status.String(),
			Behavior: d.Behavior.Name(),
			Earnings: d.Earnings,
			Trips:    len(d.History),
		}
		if d.Current != nil {
			id := d.Current.ID
			v.CurrentRequestID = &id
		}
		snap.Drivers = append(snap.Drivers, v)
	}
	for _, r := range s.active {
		switch r.Status {
		case model.RequestWaiting, model.RequestAssigned:
			snap.Pending = append(snap.Pending, RequestView{ID: r.ID, PickupX: r.Pickup.X, PickupY: r.Pickup.Y, Status: r.Status.String()})
		case model.RequestPickedUp:
			snap.InTransit = append(snap.InTransit, TransitView{ID: r.ID, DriverID: r.AssignedDriver, DropoffX: r.Dropoff.X, DropoffY: r.Dropoff.Y})
		}
	}
	sort.Slice(snap.Pending, func(i, j int) bool { return snap.Pending[i].ID < snap.Pending[j].ID })
	sort.Slice(snap.InTransit, func(i, j int) bool { return snap.InTransit[i].ID < snap.InTransit[j].ID })
	return snap
}
