package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/fleetlab/dispatchsim/core/metrics"
)

// PromSink records simulation statistics in Prometheus metrics. All series
// carry a run_id label so several runs can share one registry.
type PromSink struct {
	tick      *prometheus.GaugeVec
	generated *prometheus.CounterVec
	expired   *prometheus.CounterVec
	served    *prometheus.CounterVec
	mutations *prometheus.CounterVec
	pending   *prometheus.GaugeVec
	transit   *prometheus.GaugeVec
	idle      *prometheus.GaugeVec
	avgWait   *prometheus.GaugeVec
	earnings  *prometheus.GaugeVec
	trips     *prometheus.GaugeVec
}

// NewPromSink registers run metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using StartPromServer.
func NewPromSink() (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error

	runLabels := []string{"run_id"}
	driverLabels := []string{"run_id", "driver_id"}

	if s.tick, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "run_tick",
		Help: "Current simulation tick of the run",
	}, runLabels)); err != nil {
		return nil, err
	}
	if s.generated, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "run_requests_generated_total",
		Help: "Requests admitted into the run",
	}, runLabels)); err != nil {
		return nil, err
	}
	if s.expired, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "run_requests_expired_total",
		Help: "Requests that timed out before pickup",
	}, runLabels)); err != nil {
		return nil, err
	}
	if s.served, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "run_requests_served_total",
		Help: "Requests delivered",
	}, runLabels)); err != nil {
		return nil, err
	}
	if s.mutations, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "run_behavior_mutations_total",
		Help: "Behavior switches applied by the mutation rule",
	}, runLabels)); err != nil {
		return nil, err
	}
	if s.pending, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "run_pending_requests",
		Help: "Requests waiting for pickup",
	}, runLabels)); err != nil {
		return nil, err
	}
	if s.transit, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "run_requests_in_transit",
		Help: "Requests riding with a driver",
	}, runLabels)); err != nil {
		return nil, err
	}
	if s.idle, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "run_idle_drivers",
		Help: "Idle drivers",
	}, runLabels)); err != nil {
		return nil, err
	}
	if s.avgWait, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "run_avg_wait_ticks",
		Help: "Average wait over served requests",
	}, runLabels)); err != nil {
		return nil, err
	}
	if s.earnings, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "run_driver_earnings",
		Help: "Accumulated earnings per driver",
	}, driverLabels)); err != nil {
		return nil, err
	}
	if s.trips, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "run_driver_trips",
		Help: "Completed trips per driver",
	}, driverLabels)); err != nil {
		return nil, err
	}
	return s, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(T), nil
		}
		var zero T
		return zero, err
	}
	return c, nil
}

// RecordTickStats updates run gauges and adds the per-tick deltas to the
// counters.
func (s *PromSink) RecordTickStats(st coremetrics.TickStats) error {
	s.tick.WithLabelValues(st.RunID).Set(float64(st.Time))
	s.generated.WithLabelValues(st.RunID).Add(float64(st.Generated))
	s.expired.WithLabelValues(st.RunID).Add(float64(st.Expired))
	s.served.WithLabelValues(st.RunID).Add(float64(st.Delivered))
	s.mutations.WithLabelValues(st.RunID).Add(float64(st.Mutations))
	s.pending.WithLabelValues(st.RunID).Set(float64(st.Pending))
	s.transit.WithLabelValues(st.RunID).Set(float64(st.InTransit))
	s.idle.WithLabelValues(st.RunID).Set(float64(st.IdleDrivers))
	s.avgWait.WithLabelValues(st.RunID).Set(st.AvgWait)
	return nil
}

// RecordDriverState sets the per-driver gauges.
func (s *PromSink) RecordDriverState(states []coremetrics.DriverState) error {
	for _, ds := range states {
		id := strconv.FormatInt(ds.DriverID, 10)
		s.earnings.WithLabelValues(ds.RunID, id).Set(ds.Earnings)
		s.trips.WithLabelValues(ds.RunID, id).Set(float64(ds.Trips))
	}
	return nil
}
