// Package sim contains the discrete time orchestrator. A Simulator owns every
// driver and request it was constructed with and advances the world one tick
// at a time; callers observe state through TickReport and Snapshot.
package sim

import (
	"fmt"
	"sort"

	"github.com/fleetlab/dispatchsim/core/events"
	"github.com/fleetlab/dispatchsim/core/generator"
	"github.com/fleetlab/dispatchsim/core/logger"
	"github.com/fleetlab/dispatchsim/core/model"
	"github.com/fleetlab/dispatchsim/core/mutation"
	"github.com/fleetlab/dispatchsim/core/policy"
)

// Simulator advances a fleet of drivers and a stream of delivery requests
// through discrete ticks.
type Simulator struct {
	cfg  Config
	pol  policy.DispatchPolicy
	gen  generator.Generator
	rule mutation.Rule
	log  logger.Logger
	bus  events.Publisher

	drivers []*model.Driver
	active  []*model.Request
	retired []*model.Request

	now     int64
	created int64
	served  int64
	expired int64
	cumWait float64
}

// New builds a Simulator from an initial fleet and request backlog. Drivers
// must be idle with distinct ids; initial requests must be waiting and
// unassigned. The logger and bus may be nil.
func New(cfg Config, drivers []*model.Driver, requests []*model.Request, pol policy.DispatchPolicy, gen generator.Generator, rule mutation.Rule, log logger.Logger, bus events.Publisher) (*Simulator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sim config: %w", err)
	}
	if pol == nil || gen == nil || rule == nil {
		return nil, fmt.Errorf("sim: nil policy, generator or mutation rule: %w", model.ErrInvalidInput)
	}
	if len(drivers) == 0 {
		return nil, fmt.Errorf("sim: empty driver list: %w", model.ErrInvalidInput)
	}
	if log == nil {
		log = logger.Nop{}
	}

	for _, d := range drivers {
		if d == nil {
			return nil, fmt.Errorf("sim: nil driver: %w", model.ErrInvalidInput)
		}
	}
	ds := append([]*model.Driver(nil), drivers...)
	sort.Slice(ds, func(i, j int) bool { return ds[i].ID < ds[j].ID })
	seenD := make(map[int64]bool, len(ds))
	for _, d := range ds {
		if seenD[d.ID] {
			return nil, fmt.Errorf("sim: duplicate driver id %d: %w", d.ID, model.ErrInvalidInput)
		}
		seenD[d.ID] = true
		if d.Status != model.DriverIdle || d.Current != nil {
			return nil, fmt.Errorf("sim: driver %d must start idle: %w", d.ID, model.ErrInvalidInput)
		}
		if d.Behavior == nil {
			return nil, fmt.Errorf("sim: driver %d has no behavior: %w", d.ID, model.ErrInvalidInput)
		}
		if d.Speed <= 0 {
			return nil, fmt.Errorf("sim: driver %d speed must be positive: %w", d.ID, model.ErrInvalidInput)
		}
	}

	for _, r := range requests {
		if r == nil {
			return nil, fmt.Errorf("sim: nil request: %w", model.ErrInvalidInput)
		}
	}
	rs := append([]*model.Request(nil), requests...)
	sort.Slice(rs, func(i, j int) bool { return rs[i].ID < rs[j].ID })
	seenR := make(map[int64]bool, len(rs))
	for _, r := range rs {
		if seenR[r.ID] {
			return nil, fmt.Errorf("sim: duplicate request id %d: %w", r.ID, model.ErrInvalidInput)
		}
		seenR[r.ID] = true
		if r.Status != model.RequestWaiting || r.AssignedDriver != -1 {
			return nil, fmt.Errorf("sim: initial request %d must be waiting and unassigned: %w", r.ID, model.ErrInvalidInput)
		}
	}

	s := &Simulator{
		cfg:     cfg,
		pol:     pol,
		gen:     gen,
		rule:    rule,
		log:     log,
		bus:     bus,
		drivers: ds,
		active:  rs,
		created: int64(len(rs)),
	}
	s.log.Infof("simulator ready: %d drivers, %d queued requests, policy=%s", len(ds), len(rs), pol.Name())
	return s, nil
}

// Time returns the current simulation tick.
func (s *Simulator) Time() int64 { return s.now }

// Served returns the number of requests delivered so far.
func (s *Simulator) Served() int64 { return s.served }

// Expired returns the number of requests that timed out so far.
func (s *Simulator) Expired() int64 { return s.expired }

// Created returns the total number of requests ever admitted.
func (s *Simulator) Created() int64 { return s.created }

// AvgWait returns the mean wait over served requests, zero when none served.
func (s *Simulator) AvgWait() float64 {
	if s.served == 0 {
		return 0
	}
	return s.cumWait / float64(s.served)
}

func (s *Simulator) publish(e events.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}
