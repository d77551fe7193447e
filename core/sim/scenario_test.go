package sim

import (
	"math"
	"testing"

	"github.com/fleetlab/dispatchsim/core/behavior"
	"github.com/fleetlab/dispatchsim/core/generator"
	"github.com/fleetlab/dispatchsim/core/model"
	"github.com/fleetlab/dispatchsim/core/mutation"
	"github.com/fleetlab/dispatchsim/core/policy"
)

func eagerDriver(t *testing.T, id int64, pos model.Point, speed float64) *model.Driver {
	t.Helper()
	b, err := behavior.NewGreedyDistance(1e6)
	if err != nil {
		t.Fatalf("behavior: %v", err)
	}
	d, err := model.NewDriver(id, pos, speed, b, 0)
	if err != nil {
		t.Fatalf("driver %d: %v", id, err)
	}
	return d
}

func waitingRequest(t *testing.T, id int64, pickup, dropoff model.Point) *model.Request {
	t.Helper()
	r, err := model.NewRequest(id, pickup, dropoff, 0)
	if err != nil {
		t.Fatalf("request %d: %v", id, err)
	}
	return r
}

func newSim(t *testing.T, cfg Config, drivers []*model.Driver, requests []*model.Request) *Simulator {
	t.Helper()
	s, err := New(cfg, drivers, requests, policy.NearestNeighbor{}, generator.NewStatic(nil), mutation.Noop{}, nil, nil)
	if err != nil {
		t.Fatalf("new simulator: %v", err)
	}
	return s
}

func mustTick(t *testing.T, s *Simulator) TickReport {
	t.Helper()
	rep, err := s.Tick()
	if err != nil {
		t.Fatalf("tick %d: %v", s.Time(), err)
	}
	return rep
}

// A single driver crosses five units to a request whose dropoff equals its
// pickup. The carry leg has zero length, so pickup and delivery land on the
// same tick.
func TestSingleDriverServesDegenerateTrip(t *testing.T) {
	d := eagerDriver(t, 0, model.Point{}, 1)
	r := waitingRequest(t, 1, model.Point{X: 5}, model.Point{X: 5})
	s := newSim(t, Config{TimeoutTicks: 20}, []*model.Driver{d}, []*model.Request{r})

	rep := mustTick(t, s)
	if rep.Assigned != 1 {
		t.Fatalf("expected assignment on the first tick, got %+v", rep)
	}
	if r.Status != model.RequestAssigned || r.AssignedAt != 0 {
		t.Fatalf("expected assignment at t=0, got %v at %d", r.Status, r.AssignedAt)
	}
	for s.Time() < 5 {
		rep = mustTick(t, s)
	}
	if r.Status != model.RequestDelivered {
		t.Fatalf("expected delivery, got %v", r.Status)
	}
	if r.PickedAt != 5 || r.DeliveredAt != 5 {
		t.Fatalf("expected pickup and delivery at t=5, got %d and %d", r.PickedAt, r.DeliveredAt)
	}
	if r.WaitTime != 5 {
		t.Fatalf("expected wait 5, got %v", r.WaitTime)
	}
	if d.Status != model.DriverIdle || !d.Position.Equal(model.Point{X: 5}, model.Epsilon) {
		t.Fatalf("driver should rest at the dropoff, got %v at %v", d.Status, d.Position)
	}
	want := 2.0 - 0.05*5
	if math.Abs(d.Earnings-want) > 1e-9 {
		t.Fatalf("expected earnings %.2f, got %.2f", want, d.Earnings)
	}
	snap := s.Snapshot()
	if snap.Served != 1 || snap.AvgWait != 5 || len(snap.Pending) != 0 || len(snap.InTransit) != 0 {
		t.Fatalf("unexpected snapshot after delivery: %+v", snap)
	}
}

// A request no driver will take expires exactly when its age reaches the
// timeout.
func TestUnservedRequestExpiresAtTimeout(t *testing.T) {
	b, err := behavior.NewGreedyDistance(1)
	if err != nil {
		t.Fatalf("behavior: %v", err)
	}
	d, err := model.NewDriver(0, model.Point{}, 1, b, 0)
	if err != nil {
		t.Fatalf("driver: %v", err)
	}
	r := waitingRequest(t, 1, model.Point{X: 50, Y: 50}, model.Point{X: 60, Y: 50})
	s := newSim(t, Config{TimeoutTicks: 20}, []*model.Driver{d}, []*model.Request{r})

	for i := 0; i < 20; i++ {
		rep := mustTick(t, s)
		if rep.Expired != 0 {
			t.Fatalf("premature expiry at tick %d", rep.Time)
		}
		if rep.OffersProposed != 1 || rep.OffersAccepted != 0 {
			t.Fatalf("expected one declined offer per tick, got %+v", rep)
		}
	}
	rep := mustTick(t, s)
	if rep.Expired != 1 {
		t.Fatalf("expected expiry at t=20, got %+v", rep)
	}
	if r.Status != model.RequestExpired || r.ExpiredAt != 20 {
		t.Fatalf("expected expiry stamp 20, got %v at %d", r.Status, r.ExpiredAt)
	}
	if r.AssignedDriver != -1 {
		t.Fatalf("expired request must stay unassigned, got driver %d", r.AssignedDriver)
	}
	if s.Served() != 0 || s.Expired() != 1 {
		t.Fatalf("unexpected counters: served=%d expired=%d", s.Served(), s.Expired())
	}
	if d.Status != model.DriverIdle || !d.Position.Equal(model.Point{}, model.Epsilon) {
		t.Fatalf("driver should never have moved, got %v at %v", d.Status, d.Position)
	}
}

// Two idle drivers compete for one request; the closer one wins and the
// loser stays idle.
func TestNearerDriverWinsContestedRequest(t *testing.T) {
	d0 := eagerDriver(t, 0, model.Point{}, 1)
	d1 := eagerDriver(t, 1, model.Point{X: 10}, 1)
	r := waitingRequest(t, 1, model.Point{X: 3}, model.Point{X: 3, Y: 4})
	s := newSim(t, Config{TimeoutTicks: 20}, []*model.Driver{d0, d1}, []*model.Request{r})

	rep := mustTick(t, s)
	if rep.Assigned != 1 {
		t.Fatalf("expected one assignment, got %+v", rep)
	}
	if r.AssignedDriver != 0 {
		t.Fatalf("expected driver 0 to win, got %d", r.AssignedDriver)
	}
	if d1.Status != model.DriverIdle {
		t.Fatalf("losing driver must stay idle, got %v", d1.Status)
	}
	for s.Time() < 7 {
		mustTick(t, s)
	}
	if r.Status != model.RequestDelivered || r.PickedAt != 3 || r.DeliveredAt != 7 {
		t.Fatalf("expected pickup t=3 delivery t=7, got %v %d %d", r.Status, r.PickedAt, r.DeliveredAt)
	}
	want := 2.0 + 1.25*4 - 0.05*3
	if math.Abs(d0.Earnings-want) > 1e-9 {
		t.Fatalf("expected earnings %.2f, got %.2f", want, d0.Earnings)
	}
	if !d1.Position.Equal(model.Point{X: 10}, model.Epsilon) {
		t.Fatalf("losing driver moved to %v", d1.Position)
	}
}

// One driver, two requests at the same distance. The lower request id is
// assigned, the other keeps waiting.
func TestTiedRequestsResolveByLowestID(t *testing.T) {
	d := eagerDriver(t, 0, model.Point{}, 1)
	r1 := waitingRequest(t, 1, model.Point{X: 2}, model.Point{X: 4})
	r2 := waitingRequest(t, 2, model.Point{X: -2}, model.Point{X: -4})
	s := newSim(t, Config{TimeoutTicks: 20}, []*model.Driver{d}, []*model.Request{r1, r2})

	rep := mustTick(t, s)
	if rep.Assigned != 1 {
		t.Fatalf("expected one assignment, got %+v", rep)
	}
	if r1.Status != model.RequestAssigned {
		t.Fatalf("expected request 1 assigned, got %v", r1.Status)
	}
	if r2.Status != model.RequestWaiting {
		t.Fatalf("expected request 2 still waiting, got %v", r2.Status)
	}
}

// A driver fast enough to reach the pickup within the tick still gets the
// arrival stamped at the end of the interval.
func TestFastDriverStampsArrivalAtIntervalEnd(t *testing.T) {
	d := eagerDriver(t, 0, model.Point{}, 10)
	r := waitingRequest(t, 1, model.Point{X: 3}, model.Point{X: 3, Y: 4})
	s := newSim(t, Config{TimeoutTicks: 20}, []*model.Driver{d}, []*model.Request{r})

	rep := mustTick(t, s)
	if rep.Assigned != 1 || rep.PickedUp != 1 {
		t.Fatalf("expected same tick assignment and pickup, got %+v", rep)
	}
	if r.PickedAt != 1 {
		t.Fatalf("expected pickup stamp 1, got %d", r.PickedAt)
	}
	rep = mustTick(t, s)
	if rep.Delivered != 1 {
		t.Fatalf("expected delivery on second tick, got %+v", rep)
	}
	if r.DeliveredAt != 2 || r.WaitTime != 1 {
		t.Fatalf("expected delivery stamp 2 wait 1, got %d %v", r.DeliveredAt, r.WaitTime)
	}
}

// Declined offers leave the request waiting and the driver idle.
func TestDeclinedOffersLeaveRequestWaiting(t *testing.T) {
	lazy, err := behavior.NewLazy(1000, 50)
	if err != nil {
		t.Fatalf("behavior: %v", err)
	}
	d, err := model.NewDriver(0, model.Point{}, 1, lazy, 0)
	if err != nil {
		t.Fatalf("driver: %v", err)
	}
	r := waitingRequest(t, 1, model.Point{X: 1}, model.Point{X: 2})
	s := newSim(t, Config{TimeoutTicks: 5}, []*model.Driver{d}, []*model.Request{r})

	for i := 0; i < 3; i++ {
		rep := mustTick(t, s)
		if rep.OffersProposed != 1 || rep.OffersAccepted != 0 || rep.Assigned != 0 {
			t.Fatalf("expected declined offer on tick %d, got %+v", i, rep)
		}
		if r.Status != model.RequestWaiting || d.Status != model.DriverIdle {
			t.Fatalf("state changed without acceptance: %v %v", r.Status, d.Status)
		}
	}
}
