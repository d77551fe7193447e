package mqtt

import (
	"fmt"
	"sync"

	"github.com/fleetlab/dispatchsim/core/sim"
)

// Publisher pushes live run telemetry to external consumers. It is never on
// the simulation's critical path: callers log publish errors and move on.
type Publisher interface {
	PublishSnapshot(runID string, snap sim.Snapshot) error
	Disconnect()
}

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	Snapshots map[string][]sim.Snapshot
	FailRuns  map[string]bool
	mu        sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		Snapshots: make(map[string][]sim.Snapshot),
		FailRuns:  make(map[string]bool),
	}
}

// PublishSnapshot records the snapshot or returns an error if configured to fail.
func (m *MockPublisher) PublishSnapshot(runID string, snap sim.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailRuns[runID] {
		return fmt.Errorf("publish failed")
	}
	m.Snapshots[runID] = append(m.Snapshots[runID], snap)
	return nil
}

// Disconnect is a no-op.
func (m *MockPublisher) Disconnect() {}

// Published returns how many snapshots were recorded for the given run.
func (m *MockPublisher) Published(runID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Snapshots[runID])
}
