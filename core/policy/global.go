package policy

import (
	"sort"

	"github.com/fleetlab/dispatchsim/core/model"
)

// GlobalGreedy ranks the full cross product of idle drivers and waiting
// requests by pickup distance and sweeps the ranking once, accepting every
// pair whose driver and request are both still unclaimed. O(D*R*log(D*R)).
type GlobalGreedy struct{}

// Name implements DispatchPolicy.
func (GlobalGreedy) Name() string { return "global_greedy" }

// Propose implements DispatchPolicy.
func (GlobalGreedy) Propose(idle []*model.Driver, waiting []*model.Request, now int64) ([]Candidate, error) {
	if err := validate(idle, waiting); err != nil {
		return nil, err
	}
	pairs := make([]pair, 0, len(idle)*len(waiting))
	for _, d := range idle {
		for _, r := range waiting {
			pairs = append(pairs, pair{driver: d, request: r, dist: d.Position.Dist(r.Pickup)})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].less(pairs[j]) })

	takenD := make(map[int64]bool, len(idle))
	takenR := make(map[int64]bool, len(waiting))
	var out []Candidate
	for _, p := range pairs {
		if takenD[p.driver.ID] || takenR[p.request.ID] {
			continue
		}
		takenD[p.driver.ID] = true
		takenR[p.request.ID] = true
		out = append(out, Candidate{Driver: p.driver, Request: p.request})
	}
	return out, nil
}
