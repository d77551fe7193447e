package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordTickStats forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordTickStats(st TickStats) error {
	for _, s := range m.Sinks {
		if err := s.RecordTickStats(st); err != nil {
			return err
		}
	}
	return nil
}

// RecordDriverState forwards driver snapshots when supported by the sink.
func (m *MultiSink) RecordDriverState(states []DriverState) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(DriverStateRecorder); ok {
			if err := rec.RecordDriverState(states); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordRunSummary forwards the closing summary when supported by the sink.
func (m *MultiSink) RecordRunSummary(sum RunSummary) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RunSummaryRecorder); ok {
			if err := rec.RecordRunSummary(sum); err != nil {
				return err
			}
		}
	}
	return nil
}
