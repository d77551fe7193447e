package generator

import "github.com/fleetlab/dispatchsim/core/model"

// Static replays a fixed schedule of requests keyed by tick. Scenario runs
// use it to stage arrivals at exact times.
type Static struct {
	schedule map[int64][]*model.Request
}

// NewStatic wraps the schedule. A nil map produces no arrivals at all.
func NewStatic(byTick map[int64][]*model.Request) *Static {
	return &Static{schedule: byTick}
}

// Generate implements Generator.
func (s *Static) Generate(now int64) ([]*model.Request, error) {
	return s.schedule[now], nil
}
