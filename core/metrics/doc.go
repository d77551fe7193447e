// Package metrics defines interfaces and implementations for collecting
// simulation statistics. Sinks like PromSink and InfluxSink record per-tick
// counters and driver snapshots and can be combined with NewMultiSink. The
// factory helpers return a MultiSink automatically when multiple sinks are
// configured.
package metrics
