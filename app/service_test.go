package app

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/fleetlab/dispatchsim/api"
	"github.com/fleetlab/dispatchsim/config"
	"github.com/fleetlab/dispatchsim/core/factory"
	"github.com/fleetlab/dispatchsim/core/generator"
	"github.com/fleetlab/dispatchsim/fleet"
	"github.com/fleetlab/dispatchsim/infra/runlog"
)

var _ api.Simulation = (*Service)(nil)

func testConfig() *config.Config {
	return &config.Config{
		Generator: generator.Config{Rate: 0.4, Seed: 11},
		Fleet:     config.FleetConfig{Generate: fleet.GenConfig{Size: 4, Seed: 3}},
		Mutation:  factory.ModuleConfig{Type: "noop"},
	}
}

func TestServiceStep(t *testing.T) {
	svc, err := New(testConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer func() { _ = svc.Close() }()

	reports, err := svc.Step(10)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if len(reports) != 10 {
		t.Fatalf("got %d reports", len(reports))
	}
	for i, rep := range reports {
		if rep.Time != int64(i) {
			t.Fatalf("report %d has time %d", i, rep.Time)
		}
	}
	if svc.Time() != 10 {
		t.Fatalf("time %d after 10 ticks", svc.Time())
	}
	snap := svc.Snapshot()
	if snap.Time != 10 || len(snap.Drivers) != 4 {
		t.Fatalf("snapshot %+v", snap)
	}
}

func TestServiceRunLog(t *testing.T) {
	cfg := testConfig()
	cfg.Logging.Enabled = true
	cfg.Logging.Path = filepath.Join(t.TempDir(), "events.jsonl")
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := svc.Step(5); err != nil {
		t.Fatalf("step: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	store, err := runlog.NewJSONLStore(cfg.Logging.Path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	recs, err := store.Query(context.Background(), runlog.Query{RunID: svc.RunID(), Kind: "tick_completed"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 5 {
		t.Fatalf("got %d tick records, want 5", len(recs))
	}
}

func TestServiceRunStopsAtMaxTicks(t *testing.T) {
	cfg := testConfig()
	cfg.Sim.TickInterval = time.Millisecond
	cfg.Sim.MaxTicks = 3
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer func() { _ = svc.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := svc.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if svc.Time() != 3 {
		t.Fatalf("time %d, want 3", svc.Time())
	}
}

func TestServiceRunStopsOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Sim.TickInterval = time.Millisecond
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer func() { _ = svc.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if err := svc.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestServiceRunBatch(t *testing.T) {
	svc, err := New(testConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer func() { _ = svc.Close() }()

	stats, err := svc.RunBatch(context.Background(), 20)
	if err != nil {
		t.Fatalf("run batch: %v", err)
	}
	if len(stats) != 20 {
		t.Fatalf("got %d stats", len(stats))
	}
	last := stats[len(stats)-1]
	if last.Time != 19 || last.RunID != svc.RunID() {
		t.Fatalf("last stats %+v", last)
	}
	gen := 0
	for _, st := range stats {
		gen += st.Generated
	}
	if int(last.ServedTotal+last.ExpiredTotal)+last.Pending+last.InTransit != gen {
		t.Fatalf("conservation violated: generated %d, stats %+v", gen, last)
	}
}

func TestServiceDeterministicRuns(t *testing.T) {
	run := func() []byte {
		t.Helper()
		svc, err := New(testConfig())
		if err != nil {
			t.Fatalf("new service: %v", err)
		}
		defer func() { _ = svc.Close() }()
		if _, err := svc.Step(30); err != nil {
			t.Fatalf("step: %v", err)
		}
		b, err := json.Marshal(svc.Snapshot())
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return b
	}
	if a, b := run(), run(); string(a) != string(b) {
		t.Fatalf("same config diverged:\n%s\n%s", a, b)
	}
}

func TestServiceRejectsUnknownModules(t *testing.T) {
	cfg := testConfig()
	cfg.Policy = factory.ModuleConfig{Type: "bogus"}
	if _, err := New(cfg); err == nil {
		t.Fatal("expected unknown policy error")
	}

	cfg = testConfig()
	cfg.Mutation = factory.ModuleConfig{Type: "bogus"}
	if _, err := New(cfg); err == nil {
		t.Fatal("expected unknown mutation error")
	}

	cfg = testConfig()
	cfg.Generator.Rate = -2
	if _, err := New(cfg); err == nil {
		t.Fatal("expected generator validation error")
	}
}
