package policy

import "github.com/fleetlab/dispatchsim/core/model"

// LoadAdaptive switches the matching strategy with the market balance. When
// waiting requests outnumber idle drivers the scarce side is the drivers and
// the full GlobalGreedy ranking pays for itself; with drivers to spare the
// cheaper NearestNeighbor scan is enough.
type LoadAdaptive struct {
	nearest NearestNeighbor
	global  GlobalGreedy

	nearestRuns int
	globalRuns  int
}

// NewLoadAdaptive returns a selector with zeroed counters.
func NewLoadAdaptive() *LoadAdaptive { return &LoadAdaptive{} }

// Name implements DispatchPolicy.
func (*LoadAdaptive) Name() string { return "load_adaptive" }

// Propose implements DispatchPolicy.
func (p *LoadAdaptive) Propose(idle []*model.Driver, waiting []*model.Request, now int64) ([]Candidate, error) {
	if len(waiting) > len(idle) {
		p.globalRuns++
		return p.global.Propose(idle, waiting, now)
	}
	p.nearestRuns++
	return p.nearest.Propose(idle, waiting, now)
}

// Counts reports how often each underlying strategy ran.
func (p *LoadAdaptive) Counts() (nearest, global int) {
	return p.nearestRuns, p.globalRuns
}
