// Package app wires the configuration into a running simulation service.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fleetlab/dispatchsim/api"
	"github.com/fleetlab/dispatchsim/app/plugins"
	"github.com/fleetlab/dispatchsim/config"
	"github.com/fleetlab/dispatchsim/core/events"
	"github.com/fleetlab/dispatchsim/core/generator"
	coremetrics "github.com/fleetlab/dispatchsim/core/metrics"
	"github.com/fleetlab/dispatchsim/core/model"
	"github.com/fleetlab/dispatchsim/core/sim"
	"github.com/fleetlab/dispatchsim/fleet"
	"github.com/fleetlab/dispatchsim/infra/logger"
	inframetrics "github.com/fleetlab/dispatchsim/infra/metrics"
	"github.com/fleetlab/dispatchsim/infra/mqtt"
	"github.com/fleetlab/dispatchsim/infra/runlog"
)

// Service owns the simulator and its observers for one run. The simulator
// itself is single-threaded; the service mutex serializes ticks and
// snapshots between the run loop and the API.
type Service struct {
	cfg   *config.Config
	log   logger.Logger
	runID string

	mu  sync.Mutex
	sim *sim.Simulator

	bus     *events.Bus
	sink    coremetrics.Sink
	pub     mqtt.Publisher
	store   runlog.Store
	recDone <-chan struct{}
	api     *api.Server
}

// New builds a ready-to-run service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.New("service")
	runID := uuid.NewString()[:8]

	file, err := loadFleet(cfg.Fleet)
	if err != nil {
		return nil, fmt.Errorf("fleet: %w", err)
	}
	drivers, requests, err := fleet.Build(file, plugins.NewBehavior)
	if err != nil {
		return nil, fmt.Errorf("fleet: %w", err)
	}

	pol, err := plugins.NewPolicy(cfg.Policy)
	if err != nil {
		return nil, fmt.Errorf("policy: %w", err)
	}
	rule, err := plugins.NewMutation(cfg.Mutation)
	if err != nil {
		return nil, fmt.Errorf("mutation: %w", err)
	}

	gcfg := cfg.Generator
	if maxID := fleet.MaxRequestID(file); gcfg.StartID <= maxID {
		gcfg.StartID = maxID + 1
	}
	gen, err := generator.NewPoisson(gcfg)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	bus := events.NewBus()
	simulator, err := sim.New(
		sim.Config{TimeoutTicks: cfg.Sim.TimeoutTicks, Reward: cfg.Reward},
		drivers, requests, pol, gen, rule, logger.New("sim"), bus,
	)
	if err != nil {
		bus.Close()
		return nil, err
	}

	svc := &Service{
		cfg:   cfg,
		log:   log,
		runID: runID,
		sim:   simulator,
		bus:   bus,
		sink:  sink,
	}

	if cfg.Logging.Enabled {
		store, err := runlog.NewJSONLStore(cfg.Logging.Path)
		if err != nil {
			bus.Close()
			return nil, fmt.Errorf("run log: %w", err)
		}
		svc.store = store
		svc.recDone = runlog.StartRecorder(context.Background(), bus, store, runID, logger.New("runlog"))
	}

	if cfg.Telemetry.Enabled {
		pub, err := mqtt.NewPahoPublisher(cfg.Telemetry)
		if err != nil {
			bus.Close()
			return nil, fmt.Errorf("telemetry: %w", err)
		}
		svc.pub = pub
	}

	if cfg.API.Enabled {
		svc.api = api.NewServer(svc, logger.New("api"))
	}

	log.Infof("run %s: %d drivers, %d staged requests, policy %s, mutation %s",
		runID, len(drivers), len(requests), pol.Name(), rule.Name())
	return svc, nil
}

func loadFleet(cfg config.FleetConfig) (fleet.File, error) {
	if cfg.File != "" {
		return fleet.Load(cfg.File)
	}
	return fleet.Generate(cfg.Generate, nil)
}

// RunID identifies this run on sinks, telemetry topics and exports.
func (s *Service) RunID() string { return s.runID }

// Time returns the current simulation time.
func (s *Service) Time() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Time()
}

// Snapshot implements api.Simulation.
func (s *Service) Snapshot() sim.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Snapshot()
}

// Step advances the simulation n ticks, recording stats and publishing the
// snapshot after each one. It implements api.Simulation.
func (s *Service) Step(n int) ([]sim.TickReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reports := make([]sim.TickReport, 0, n)
	for i := 0; i < n; i++ {
		rep, err := s.sim.Tick()
		if err != nil {
			return reports, err
		}
		s.observe(rep)
		reports = append(reports, rep)
	}
	return reports, nil
}

// observe pushes one tick's outcome to the sinks and the publisher.
// Callers hold the mutex.
func (s *Service) observe(rep sim.TickReport) coremetrics.TickStats {
	snap := s.sim.Snapshot()
	st := statsFrom(s.runID, rep, snap)
	if err := s.sink.RecordTickStats(st); err != nil {
		s.log.Warnf("tick stats: %v", err)
	}
	if s.cfg.Metrics.DriverStates {
		if rec, ok := s.sink.(coremetrics.DriverStateRecorder); ok {
			if err := rec.RecordDriverState(driverStates(s.runID, snap)); err != nil {
				s.log.Warnf("driver states: %v", err)
			}
		}
	}
	if s.pub != nil {
		if err := s.pub.PublishSnapshot(s.runID, snap); err != nil {
			s.log.Errorf("snapshot publish: %v", err)
		}
	}
	return st
}

// Run drives the simulation from a wall clock until the context ends, the
// configured tick limit is reached or a tick fails. The API and metrics
// servers run for the duration when enabled.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.cfg.Metrics.PromAddr != "" {
		go func() {
			if err := inframetrics.StartPromServer(ctx, s.cfg.Metrics.PromAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.api != nil {
		go func() {
			if err := s.api.Serve(ctx, s.cfg.API.Addr); err != nil {
				s.log.Errorf("api server: %v", err)
			}
		}()
	}

	ticker := time.NewTicker(s.cfg.Sim.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Step(1); err != nil {
				return err
			}
			if s.cfg.Sim.MaxTicks > 0 && s.Time() >= s.cfg.Sim.MaxTicks {
				s.log.Infof("run %s: reached %d ticks", s.runID, s.cfg.Sim.MaxTicks)
				return nil
			}
		}
	}
}

// RunBatch executes n ticks without pacing and returns the per-tick stats.
// The closing run summary goes to sinks that record one.
func (s *Service) RunBatch(ctx context.Context, n int64) ([]coremetrics.TickStats, error) {
	stats := make([]coremetrics.TickStats, 0, n)
	for i := int64(0); i < n; i++ {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}
		s.mu.Lock()
		rep, err := s.sim.Tick()
		if err != nil {
			s.mu.Unlock()
			return stats, err
		}
		st := s.observe(rep)
		s.mu.Unlock()
		stats = append(stats, st)
	}
	s.recordSummary(int64(len(stats)))
	return stats, nil
}

func (s *Service) recordSummary(ticks int64) {
	rec, ok := s.sink.(coremetrics.RunSummaryRecorder)
	if !ok {
		return
	}
	snap := s.Snapshot()
	earnings := 0.0
	for _, d := range snap.Drivers {
		earnings += d.Earnings
	}
	sum := coremetrics.RunSummary{
		RunID:        s.runID,
		Ticks:        ticks,
		ServedTotal:  snap.Served,
		ExpiredTotal: snap.Expired,
		AvgWait:      snap.AvgWait,
		Earnings:     earnings,
	}
	if err := rec.RecordRunSummary(sum); err != nil {
		s.log.Warnf("run summary: %v", err)
	}
}

// Close flushes the run log and releases the publisher and the bus.
func (s *Service) Close() error {
	if s.pub != nil {
		s.pub.Disconnect()
	}
	s.bus.Close()
	if s.recDone != nil {
		<-s.recDone
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

func statsFrom(runID string, rep sim.TickReport, snap sim.Snapshot) coremetrics.TickStats {
	idle := 0
	for _, d := range snap.Drivers {
		if d.Status == model.DriverIdle.String() {
			idle++
		}
	}
	return coremetrics.TickStats{
		RunID:          runID,
		Time:           rep.Time,
		Generated:      rep.Generated,
		Expired:        rep.Expired,
		OffersProposed: rep.OffersProposed,
		OffersAccepted: rep.OffersAccepted,
		Assigned:       rep.Assigned,
		PickedUp:       rep.PickedUp,
		Delivered:      rep.Delivered,
		Mutations:      rep.Mutations,
		ServedTotal:    snap.Served,
		ExpiredTotal:   snap.Expired,
		Pending:        len(snap.Pending),
		InTransit:      len(snap.InTransit),
		IdleDrivers:    idle,
		AvgWait:        snap.AvgWait,
	}
}

func driverStates(runID string, snap sim.Snapshot) []coremetrics.DriverState {
	states := make([]coremetrics.DriverState, 0, len(snap.Drivers))
	for _, d := range snap.Drivers {
		states = append(states, coremetrics.DriverState{
			RunID:    runID,
			Time:     snap.Time,
			DriverID: d.ID,
			X:        d.X,
			Y:        d.Y,
			Status:   d.Status,
			Behavior: d.Behavior,
			Earnings: d.Earnings,
			Trips:    d.Trips,
		})
	}
	return states
}
