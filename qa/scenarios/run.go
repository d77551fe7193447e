package scenarios

import (
	"math"
	"testing"

	"github.com/fleetlab/dispatchsim/app/plugins"
	"github.com/fleetlab/dispatchsim/core/events"
	"github.com/fleetlab/dispatchsim/core/generator"
	"github.com/fleetlab/dispatchsim/core/model"
	"github.com/fleetlab/dispatchsim/core/mutation"
	"github.com/fleetlab/dispatchsim/core/sim"
)

// RunScenario builds a simulator from the fixture, runs the scripted number
// of ticks and compares the outcome against the expectations. Counters are
// checked twice, once from the snapshot and once from the published events,
// so the two observation paths cannot drift apart.
func RunScenario(t *testing.T, sc *Scenario) {
	if sc.Ticks <= 0 {
		t.Fatalf("scenario %s: ticks must be positive", sc.Name)
	}
	cfg := sim.Config{TimeoutTicks: sc.TimeoutTicks}
	if sc.Reward != nil {
		cfg.Reward = sc.Reward.ToModel()
	}
	cfg.SetDefaults()

	drivers := make([]*model.Driver, 0, len(sc.Drivers))
	for _, def := range sc.Drivers {
		b, err := plugins.NewBehavior(def.Behavior)
		if err != nil {
			t.Fatalf("behavior for driver %d: %v", def.ID, err)
		}
		d, err := def.ToModel(b)
		if err != nil {
			t.Fatalf("driver %d: %v", def.ID, err)
		}
		drivers = append(drivers, d)
	}

	var initial []*model.Request
	schedule := map[int64][]*model.Request{}
	for _, def := range sc.Requests {
		r, err := def.ToModel()
		if err != nil {
			t.Fatalf("request %d: %v", def.ID, err)
		}
		if def.At == 0 {
			initial = append(initial, r)
		} else {
			schedule[def.At] = append(schedule[def.At], r)
		}
	}

	polCfg := sc.Policy
	if polCfg.Type == "" {
		polCfg.Type = "nearest_neighbor"
	}
	pol, err := plugins.NewPolicy(polCfg)
	if err != nil {
		t.Fatalf("policy: %v", err)
	}

	bus := events.NewBus()
	s, err := sim.New(cfg, drivers, initial, pol, generator.NewStatic(schedule), mutation.Noop{}, nil, bus)
	if err != nil {
		t.Fatalf("simulator: %v", err)
	}

	var (
		rejected    int
		deliveries  int
		expirations int
		assigned    = map[int64]int64{}
	)
	sub := bus.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range sub {
			switch e := ev.(type) {
			case events.OfferDecided:
				if !e.Accepted {
					rejected++
				}
			case events.RequestAssigned:
				assigned[e.RequestID] = e.DriverID
			case events.RequestDelivered:
				deliveries++
			case events.RequestExpired:
				expirations++
			}
		}
	}()

	for i := int64(0); i < sc.Ticks; i++ {
		if _, err := s.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	bus.Close()
	<-done

	snap := s.Snapshot()
	if snap.Served != sc.Expected.Served {
		t.Errorf("scenario %s: served %d, want %d", sc.Name, snap.Served, sc.Expected.Served)
	}
	if snap.Expired != sc.Expected.Expired {
		t.Errorf("scenario %s: expired %d, want %d", sc.Name, snap.Expired, sc.Expected.Expired)
	}
	if math.Abs(snap.AvgWait-sc.Expected.AvgWait) > 1e-9 {
		t.Errorf("scenario %s: avg wait %.4f, want %.4f", sc.Name, snap.AvgWait, sc.Expected.AvgWait)
	}
	if rejected != sc.Expected.OffersRejected {
		t.Errorf("scenario %s: %d offers rejected, want %d", sc.Name, rejected, sc.Expected.OffersRejected)
	}
	if deliveries != int(snap.Served) {
		t.Errorf("scenario %s: %d delivery events for %d served", sc.Name, deliveries, snap.Served)
	}
	if expirations != int(snap.Expired) {
		t.Errorf("scenario %s: %d expiry events for %d expired", sc.Name, expirations, snap.Expired)
	}
	for reqID, wantDriver := range sc.Expected.Assignments {
		gotDriver, ok := assigned[reqID]
		if !ok {
			t.Errorf("scenario %s: request %d never assigned", sc.Name, reqID)
			continue
		}
		if gotDriver != wantDriver {
			t.Errorf("scenario %s: request %d went to driver %d, want %d", sc.Name, reqID, gotDriver, wantDriver)
		}
	}
}
