package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/fleetlab/dispatchsim/core/metrics"
)

func TestPromSinkRecordsRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	sink := s.(*PromSink)

	st := coremetrics.TickStats{RunID: "r1", Time: 3, Generated: 2, Delivered: 1, Pending: 4, IdleDrivers: 2, AvgWait: 1.5}
	if err := sink.RecordTickStats(st); err != nil {
		t.Fatalf("record: %v", err)
	}
	st.Time, st.Generated, st.Delivered = 4, 1, 0
	if err := sink.RecordTickStats(st); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := sink.RecordDriverState([]coremetrics.DriverState{{RunID: "r1", DriverID: 7, Earnings: 9.5, Trips: 3}}); err != nil {
		t.Fatalf("record driver state: %v", err)
	}

	if got := testutil.ToFloat64(sink.tick.WithLabelValues("r1")); got != 4 {
		t.Errorf("tick gauge = %v, want 4", got)
	}
	if got := testutil.ToFloat64(sink.generated.WithLabelValues("r1")); got != 3 {
		t.Errorf("generated counter = %v, want 3", got)
	}
	if got := testutil.ToFloat64(sink.served.WithLabelValues("r1")); got != 1 {
		t.Errorf("served counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(sink.earnings.WithLabelValues("r1", "7")); got != 9.5 {
		t.Errorf("earnings gauge = %v, want 9.5", got)
	}
}

// A second sink on the same registry must reuse the registered collectors
// instead of failing.
func TestPromSinkReregisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first sink: %v", err)
	}
	second, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second sink: %v", err)
	}
	if err := first.RecordTickStats(coremetrics.TickStats{RunID: "a", Generated: 1}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := second.RecordTickStats(coremetrics.TickStats{RunID: "a", Generated: 1}); err != nil {
		t.Fatalf("record: %v", err)
	}
	got := testutil.ToFloat64(second.(*PromSink).generated.WithLabelValues("a"))
	if got != 2 {
		t.Errorf("shared counter = %v, want 2", got)
	}
}
