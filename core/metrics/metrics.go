package metrics

// TickStats summarizes one simulation tick for observability sinks.
type TickStats struct {
	RunID          string  `json:"run_id"`
	Time           int64   `json:"time"`
	Generated      int     `json:"generated"`
	Expired        int     `json:"expired"`
	OffersProposed int     `json:"offers_proposed"`
	OffersAccepted int     `json:"offers_accepted"`
	Assigned       int     `json:"assigned"`
	PickedUp       int     `json:"picked_up"`
	Delivered      int     `json:"delivered"`
	Mutations      int     `json:"mutations"`
	ServedTotal    int64   `json:"served_total"`
	ExpiredTotal   int64   `json:"expired_total"`
	Pending        int     `json:"pending"`
	InTransit      int     `json:"in_transit"`
	IdleDrivers    int     `json:"idle_drivers"`
	AvgWait        float64 `json:"avg_wait"`
}

// Sink records per-tick statistics for observability purposes.
type Sink interface {
	RecordTickStats(st TickStats) error
}

// DriverState is a snapshot of a single driver at the end of a tick.
type DriverState struct {
	RunID    string
	Time     int64
	DriverID int64
	X        float64
	Y        float64
	Status   string
	Behavior string
	Earnings float64
	Trips    int
}

// DriverStateRecorder records driver state snapshots. Sinks that store
// per-driver series implement it in addition to Sink.
type DriverStateRecorder interface {
	RecordDriverState(states []DriverState) error
}

// RunSummary describes a finished batch run.
type RunSummary struct {
	RunID        string
	Ticks        int64
	ServedTotal  int64
	ExpiredTotal int64
	AvgWait      float64
	Earnings     float64
}

// RunSummaryRecorder records the closing summary of a run.
type RunSummaryRecorder interface {
	RecordRunSummary(sum RunSummary) error
}

// NopSink implements every recorder interface with no-op methods.
type NopSink struct{}

func (NopSink) RecordTickStats(TickStats) error        { return nil }
func (NopSink) RecordDriverState([]DriverState) error  { return nil }
func (NopSink) RecordRunSummary(RunSummary) error      { return nil }
