package sim

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fleetlab/dispatchsim/core/behavior"
	"github.com/fleetlab/dispatchsim/core/generator"
	"github.com/fleetlab/dispatchsim/core/model"
	"github.com/fleetlab/dispatchsim/core/mutation"
	"github.com/fleetlab/dispatchsim/core/policy"
)

func TestNewValidatesInput(t *testing.T) {
	b, err := behavior.NewGreedyDistance(10)
	if err != nil {
		t.Fatalf("behavior: %v", err)
	}
	good, err := model.NewDriver(0, model.Point{}, 1, b, 0)
	if err != nil {
		t.Fatalf("driver: %v", err)
	}
	pol := policy.NearestNeighbor{}
	gen := generator.NewStatic(nil)
	rule := mutation.Noop{}

	if _, err := New(DefaultConfig(), nil, nil, pol, gen, rule, nil, nil); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected error for empty fleet, got %v", err)
	}
	if _, err := New(DefaultConfig(), []*model.Driver{good}, nil, nil, gen, rule, nil, nil); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected error for nil policy, got %v", err)
	}
	if _, err := New(Config{TimeoutTicks: -1}, []*model.Driver{good}, nil, pol, gen, rule, nil, nil); err == nil {
		t.Fatal("expected error for negative timeout")
	}

	twin, err := model.NewDriver(0, model.Point{X: 1}, 1, b, 0)
	if err != nil {
		t.Fatalf("driver: %v", err)
	}
	if _, err := New(DefaultConfig(), []*model.Driver{good, twin}, nil, pol, gen, rule, nil, nil); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected error for duplicate driver ids, got %v", err)
	}

	busy, err := model.NewDriver(1, model.Point{}, 1, b, 0)
	if err != nil {
		t.Fatalf("driver: %v", err)
	}
	busy.Status = model.DriverToPickup
	if _, err := New(DefaultConfig(), []*model.Driver{busy}, nil, pol, gen, rule, nil, nil); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected error for busy driver, got %v", err)
	}

	bare := &model.Driver{ID: 2, Speed: 1}
	if _, err := New(DefaultConfig(), []*model.Driver{bare}, nil, pol, gen, rule, nil, nil); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected error for driver without behavior, got %v", err)
	}

	r1, err := model.NewRequest(1, model.Point{X: 1}, model.Point{X: 2}, 0)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	r1dup, err := model.NewRequest(1, model.Point{X: 3}, model.Point{X: 4}, 0)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := New(DefaultConfig(), []*model.Driver{good}, []*model.Request{r1, r1dup}, pol, gen, rule, nil, nil); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected error for duplicate request ids, got %v", err)
	}

	claimed, err := model.NewRequest(2, model.Point{X: 1}, model.Point{X: 2}, 0)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	claimed.AssignedDriver = 9
	if _, err := New(DefaultConfig(), []*model.Driver{good}, []*model.Request{claimed}, pol, gen, rule, nil, nil); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected error for pre-assigned request, got %v", err)
	}

	s, err := New(DefaultConfig(), []*model.Driver{good}, []*model.Request{r1}, pol, gen, rule, nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Time() != 0 || s.Created() != 1 || s.Served() != 0 || s.Expired() != 0 {
		t.Fatalf("unexpected initial counters: t=%d created=%d", s.Time(), s.Created())
	}
}

func TestNewSortsDriversByID(t *testing.T) {
	b, err := behavior.NewGreedyDistance(10)
	if err != nil {
		t.Fatalf("behavior: %v", err)
	}
	var ds []*model.Driver
	for _, id := range []int64{3, 1, 2} {
		d, err := model.NewDriver(id, model.Point{}, 1, b, 0)
		if err != nil {
			t.Fatalf("driver %d: %v", id, err)
		}
		ds = append(ds, d)
	}
	s, err := New(DefaultConfig(), ds, nil, policy.NearestNeighbor{}, generator.NewStatic(nil), mutation.Noop{}, nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	snap := s.Snapshot()
	for i, want := range []int64{1, 2, 3} {
		if snap.Drivers[i].ID != want {
			t.Fatalf("expected driver order 1,2,3 got %+v", snap.Drivers)
		}
	}
}

func TestMetricsRegistration(t *testing.T) {
	ResetMetrics(nil)
	t.Cleanup(func() { ResetMetrics(nil) })
	reg := prometheus.NewRegistry()
	MustRegisterMetrics(reg)
	// touch vector metrics so they are exported
	mets.offers.WithLabelValues("greedy_distance", "true").Inc()
	mets.mutations.WithLabelValues("lazy", "earnings_max").Inc()
	mets.ticks.Inc()
	mets.pending.Set(3)
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, mf := range mfs {
		names[*mf.Name] = true
	}
	expected := []string{
		"sim_ticks_total",
		"sim_requests_generated_total",
		"sim_requests_expired_total",
		"sim_requests_served_total",
		"sim_offers_decided_total",
		"sim_behavior_mutations_total",
		"sim_pending_requests",
		"sim_requests_in_transit",
		"sim_idle_drivers",
		"sim_avg_wait_ticks",
	}
	for _, n := range expected {
		if !names[n] {
			t.Errorf("metric %s not registered", n)
		}
	}
}
