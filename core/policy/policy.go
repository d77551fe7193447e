// Package policy contains the dispatch policies matching idle drivers to
// waiting requests. Policies propose candidate pairs only: behaviors and the
// conflict-resolution step downstream decide what actually gets assigned.
package policy

import (
	"fmt"

	"github.com/fleetlab/dispatchsim/core/model"
)

// Candidate pairs a driver with the request the policy proposes it serves.
type Candidate struct {
	Driver  *model.Driver
	Request *model.Request
}

// DispatchPolicy proposes assignments between idle drivers and waiting
// requests. Implementations never mutate the entities and hold no
// simulation state beyond their own counters.
type DispatchPolicy interface {
	// Propose returns candidate pairs, at most one request per driver.
	Propose(idle []*model.Driver, waiting []*model.Request, now int64) ([]Candidate, error)
	// Name identifies the policy in events and exports.
	Name() string
}

// pair is a scored driver/request combination considered by a policy.
type pair struct {
	driver  *model.Driver
	request *model.Request
	dist    float64
}

// less orders pairs by distance, then driver id, then request id. The id
// tie-breaks keep matchings reproducible across runs.
func (p pair) less(q pair) bool {
	if p.dist != q.dist {
		return p.dist < q.dist
	}
	if p.driver.ID != q.driver.ID {
		return p.driver.ID < q.driver.ID
	}
	return p.request.ID < q.request.ID
}

// validate rejects malformed inputs before any matching runs.
func validate(idle []*model.Driver, waiting []*model.Request) error {
	for _, d := range idle {
		if d == nil {
			return fmt.Errorf("policy: nil driver: %w", model.ErrInvalidInput)
		}
		if d.Status != model.DriverIdle {
			return fmt.Errorf("policy: driver %d is %s, not idle: %w", d.ID, d.Status, model.ErrInvalidInput)
		}
	}
	for _, r := range waiting {
		if r == nil {
			return fmt.Errorf("policy: nil request: %w", model.ErrInvalidInput)
		}
		if r.Status != model.RequestWaiting {
			return fmt.Errorf("policy: request %d is %s, not waiting: %w", r.ID, r.Status, model.ErrInvalidInput)
		}
	}
	return nil
}
