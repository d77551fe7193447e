package policy

import "github.com/fleetlab/dispatchsim/core/model"

// NearestNeighbor repeatedly picks the globally closest idle-driver and
// waiting-request pair, removes both from consideration and repeats until
// one side is exhausted. O(D*R*min(D,R)), no allocation of the full cross
// product.
type NearestNeighbor struct{}

// Name implements DispatchPolicy.
func (NearestNeighbor) Name() string { return "nearest_neighbor" }

// Propose implements DispatchPolicy.
func (NearestNeighbor) Propose(idle []*model.Driver, waiting []*model.Request, now int64) ([]Candidate, error) {
	if err := validate(idle, waiting); err != nil {
		return nil, err
	}
	drivers := append([]*model.Driver(nil), idle...)
	requests := append([]*model.Request(nil), waiting...)

	var out []Candidate
	for len(drivers) > 0 && len(requests) > 0 {
		var best pair
		bi, bj := -1, -1
		for i, d := range drivers {
			for j, r := range requests {
				p := pair{driver: d, request: r, dist: d.Position.Dist(r.Pickup)}
				if bi < 0 || p.less(best) {
					best, bi, bj = p, i, j
				}
			}
		}
		out = append(out, Candidate{Driver: best.driver, Request: best.request})
		drivers = append(drivers[:bi], drivers[bi+1:]...)
		requests = append(requests[:bj], requests[bj+1:]...)
	}
	return out, nil
}
