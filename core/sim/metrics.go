package sim

import (
	"github.com/prometheus/client_golang/prometheus"
)

type collectors struct {
	ticks     prometheus.Counter
	generated prometheus.Counter
	expired   prometheus.Counter
	served    prometheus.Counter
	offers    *prometheus.CounterVec
	mutations *prometheus.CounterVec
	pending   prometheus.Gauge
	transit   prometheus.Gauge
	idle      prometheus.Gauge
	avgWait   prometheus.Gauge
}

var mets collectors

// newCollectors creates new metric collectors.
func newCollectors() collectors {
	return collectors{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sim_ticks_total",
			Help: "Number of simulation ticks executed",
		}),
		generated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sim_requests_generated_total",
			Help: "Number of requests admitted into the simulation",
		}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sim_requests_expired_total",
			Help: "Number of requests that timed out before pickup",
		}),
		served: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sim_requests_served_total",
			Help: "Number of requests delivered",
		}),
		offers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sim_offers_decided_total",
			Help: "Offer decisions by behavior and outcome",
		}, []string{"behavior", "accepted"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sim_behavior_mutations_total",
			Help: "Behavior switches by origin and destination strategy",
		}, []string{"from", "to"}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sim_pending_requests",
			Help: "Requests waiting for pickup at the end of the last tick",
		}),
		transit: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sim_requests_in_transit",
			Help: "Requests riding with a driver at the end of the last tick",
		}),
		idle: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sim_idle_drivers",
			Help: "Idle drivers at the end of the last tick",
		}),
		avgWait: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sim_avg_wait_ticks",
			Help: "Average ticks between request creation and pickup over served requests",
		}),
	}
}

func init() {
	mets = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers simulation metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		mets.ticks, mets.generated, mets.expired, mets.served,
		mets.offers, mets.mutations,
		mets.pending, mets.transit, mets.idle, mets.avgWait,
	)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	mets = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
