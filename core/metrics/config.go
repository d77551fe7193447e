package metrics

import "github.com/fleetlab/dispatchsim/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// DriverStates enables per-driver snapshots on sinks that support them.
	DriverStates bool `json:"driver_states"`
	// PromAddr serves the Prometheus scrape endpoint when non-empty.
	PromAddr string `json:"prom_addr"`
}
