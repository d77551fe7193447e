package runlog

import (
	"context"
	"time"

	"github.com/fleetlab/dispatchsim/core/events"
	"github.com/fleetlab/dispatchsim/core/logger"
)

// StartRecorder subscribes to the event bus and appends one record per
// simulation event until ctx is canceled or the bus closes. The returned
// channel closes once the subscription has drained, so callers can flush
// before closing the store.
func StartRecorder(ctx context.Context, bus *events.Bus, store Store, runID string, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || store == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				rec, ok := toRecord(runID, ev)
				if !ok {
					continue
				}
				if err := store.Append(ctx, rec); err != nil && log != nil {
					log.Warnf("run log append: %v", err)
				}
			}
		}
	}()
	return done
}

func toRecord(runID string, ev events.Event) (Record, bool) {
	rec := Record{RunID: runID, Kind: ev.Kind(), Wall: time.Now(), DriverID: -1, RequestID: -1}
	switch e := ev.(type) {
	case events.RequestGenerated:
		rec.Tick = e.Time
		rec.RequestID = e.RequestID
	case events.RequestExpired:
		rec.Tick = e.Time
		rec.RequestID = e.RequestID
		rec.Waited = float64(e.Waited)
	case events.OfferDecided:
		rec.Tick = e.Time
		rec.DriverID = e.DriverID
		rec.RequestID = e.RequestID
		rec.Behavior = e.Behavior
		rec.Accepted = e.Accepted
		rec.Distance = e.TripDistance
	case events.RequestAssigned:
		rec.Tick = e.Time
		rec.DriverID = e.DriverID
		rec.RequestID = e.RequestID
		rec.Distance = e.TripDistance
	case events.RequestPickedUp:
		rec.Tick = e.Time
		rec.DriverID = e.DriverID
		rec.RequestID = e.RequestID
	case events.RequestDelivered:
		rec.Tick = e.Time
		rec.DriverID = e.DriverID
		rec.RequestID = e.RequestID
		rec.Earnings = e.Earnings
		rec.Waited = e.WaitTime
	case events.BehaviorMutated:
		rec.Tick = e.Time
		rec.DriverID = e.DriverID
		rec.From = e.From
		rec.To = e.To
	case events.TickCompleted:
		rec.Tick = e.Time
		rec.Generated = e.Generated
		rec.Expired = e.Expired
		rec.Assigned = e.Assigned
		rec.PickedUp = e.PickedUp
		rec.Delivered = e.Delivered
		rec.Mutated = e.Mutated
	default:
		return Record{}, false
	}
	return rec, true
}
