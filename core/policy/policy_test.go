package policy

import (
	"errors"
	"testing"

	"github.com/fleetlab/dispatchsim/core/model"
)

type yes struct{}

func (yes) Decide(*model.Driver, model.Offer, int64) (bool, error) { return true, nil }
func (yes) Name() string                                           { return "yes" }

func driverAt(t *testing.T, id int64, x, y float64) *model.Driver {
	t.Helper()
	d, err := model.NewDriver(id, model.Point{X: x, Y: y}, 1, yes{}, 0)
	if err != nil {
		t.Fatalf("driver %d: %v", id, err)
	}
	return d
}

func requestAt(t *testing.T, id int64, x, y float64) *model.Request {
	t.Helper()
	r, err := model.NewRequest(id, model.Point{X: x, Y: y}, model.Point{X: x + 1, Y: y}, 0)
	if err != nil {
		t.Fatalf("request %d: %v", id, err)
	}
	return r
}

func TestPoliciesPreferCloserDriver(t *testing.T) {
	for _, p := range []DispatchPolicy{NearestNeighbor{}, GlobalGreedy{}} {
		near := driverAt(t, 1, 0, 0)
		far := driverAt(t, 2, 10, 0)
		r := requestAt(t, 1, 1, 0)

		got, err := p.Propose([]*model.Driver{near, far}, []*model.Request{r}, 0)
		if err != nil {
			t.Fatalf("%s: %v", p.Name(), err)
		}
		if len(got) != 1 {
			t.Fatalf("%s: expected 1 candidate got %d", p.Name(), len(got))
		}
		if got[0].Driver != near || got[0].Request != r {
			t.Fatalf("%s: expected driver 1, got driver %d", p.Name(), got[0].Driver.ID)
		}
	}
}

func TestPoliciesTieBreakOnIDs(t *testing.T) {
	for _, p := range []DispatchPolicy{NearestNeighbor{}, GlobalGreedy{}} {
		// both drivers are exactly 1 away from the request
		a := driverAt(t, 1, 0, 0)
		b := driverAt(t, 2, 2, 0)
		r := requestAt(t, 5, 1, 0)

		got, err := p.Propose([]*model.Driver{b, a}, []*model.Request{r}, 0)
		if err != nil {
			t.Fatalf("%s: %v", p.Name(), err)
		}
		if got[0].Driver != a {
			t.Fatalf("%s: tie must go to the lower driver id, got %d", p.Name(), got[0].Driver.ID)
		}

		// one driver, two requests equally far away
		c := driverAt(t, 1, 0, 0)
		r1 := requestAt(t, 11, 1, 0)
		r2 := requestAt(t, 12, -1, 0)
		got, err = p.Propose([]*model.Driver{c}, []*model.Request{r2, r1}, 0)
		if err != nil {
			t.Fatalf("%s: %v", p.Name(), err)
		}
		if got[0].Request != r1 {
			t.Fatalf("%s: tie must go to the lower request id, got %d", p.Name(), got[0].Request.ID)
		}
	}
}

func TestPoliciesNeverReuseEndpoints(t *testing.T) {
	for _, p := range []DispatchPolicy{NearestNeighbor{}, GlobalGreedy{}} {
		idle := []*model.Driver{
			driverAt(t, 1, 0, 0),
			driverAt(t, 2, 5, 5),
			driverAt(t, 3, 9, 0),
		}
		waiting := []*model.Request{
			requestAt(t, 1, 1, 1),
			requestAt(t, 2, 8, 1),
		}
		got, err := p.Propose(idle, waiting, 0)
		if err != nil {
			t.Fatalf("%s: %v", p.Name(), err)
		}
		if len(got) != 2 {
			t.Fatalf("%s: expected 2 candidates got %d", p.Name(), len(got))
		}
		drivers := map[int64]bool{}
		requests := map[int64]bool{}
		for _, c := range got {
			if drivers[c.Driver.ID] {
				t.Fatalf("%s: driver %d proposed twice", p.Name(), c.Driver.ID)
			}
			if requests[c.Request.ID] {
				t.Fatalf("%s: request %d proposed twice", p.Name(), c.Request.ID)
			}
			drivers[c.Driver.ID] = true
			requests[c.Request.ID] = true
		}
	}
}

func TestPoliciesAgreeOnMatching(t *testing.T) {
	build := func() ([]*model.Driver, []*model.Request) {
		return []*model.Driver{
				driverAt(t, 1, 0, 0),
				driverAt(t, 2, 4, 4),
				driverAt(t, 3, 10, 0),
				driverAt(t, 4, 0, 10),
			}, []*model.Request{
				requestAt(t, 1, 1, 1),
				requestAt(t, 2, 9, 1),
				requestAt(t, 3, 5, 5),
			}
	}

	d1, r1 := build()
	nn, err := NearestNeighbor{}.Propose(d1, r1, 0)
	if err != nil {
		t.Fatal(err)
	}
	d2, r2 := build()
	gg, err := GlobalGreedy{}.Propose(d2, r2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(nn) != len(gg) {
		t.Fatalf("matchings differ in size: %d vs %d", len(nn), len(gg))
	}
	pairs := map[int64]int64{}
	for _, c := range nn {
		pairs[c.Driver.ID] = c.Request.ID
	}
	for _, c := range gg {
		if pairs[c.Driver.ID] != c.Request.ID {
			t.Fatalf("policies disagree for driver %d", c.Driver.ID)
		}
	}
}

func TestProposeRejectsMalformedInput(t *testing.T) {
	for _, p := range []DispatchPolicy{NearestNeighbor{}, GlobalGreedy{}, NewLoadAdaptive()} {
		d := driverAt(t, 1, 0, 0)
		r := requestAt(t, 1, 1, 0)

		if _, err := p.Propose([]*model.Driver{nil}, []*model.Request{r}, 0); !errors.Is(err, model.ErrInvalidInput) {
			t.Fatalf("%s: nil driver: got %v", p.Name(), err)
		}
		if _, err := p.Propose([]*model.Driver{d}, []*model.Request{nil}, 0); !errors.Is(err, model.ErrInvalidInput) {
			t.Fatalf("%s: nil request: got %v", p.Name(), err)
		}

		busy := driverAt(t, 2, 0, 0)
		if err := busy.AssignRequest(requestAt(t, 9, 1, 1), 0); err != nil {
			t.Fatalf("assign: %v", err)
		}
		if _, err := p.Propose([]*model.Driver{busy}, []*model.Request{r}, 0); !errors.Is(err, model.ErrInvalidInput) {
			t.Fatalf("%s: busy driver: got %v", p.Name(), err)
		}

		assigned := requestAt(t, 3, 2, 2)
		if err := assigned.Assign(1, 0); err != nil {
			t.Fatalf("assign request: %v", err)
		}
		if _, err := p.Propose([]*model.Driver{d}, []*model.Request{assigned}, 0); !errors.Is(err, model.ErrInvalidInput) {
			t.Fatalf("%s: non-waiting request: got %v", p.Name(), err)
		}
	}
}

func TestLoadAdaptiveSelectsByLoad(t *testing.T) {
	p := NewLoadAdaptive()

	// one idle driver, two waiting requests: scarce drivers, global ranking
	d := driverAt(t, 1, 0, 0)
	rs := []*model.Request{requestAt(t, 1, 1, 0), requestAt(t, 2, 2, 0)}
	if _, err := p.Propose([]*model.Driver{d}, rs, 0); err != nil {
		t.Fatal(err)
	}
	if n, g := p.Counts(); n != 0 || g != 1 {
		t.Fatalf("expected global run, counts nearest=%d global=%d", n, g)
	}

	// drivers to spare: nearest scan
	ds := []*model.Driver{driverAt(t, 1, 0, 0), driverAt(t, 2, 5, 0)}
	if _, err := p.Propose(ds, []*model.Request{requestAt(t, 3, 1, 0)}, 1); err != nil {
		t.Fatal(err)
	}
	if n, g := p.Counts(); n != 1 || g != 1 {
		t.Fatalf("expected nearest run, counts nearest=%d global=%d", n, g)
	}
}
