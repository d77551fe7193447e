package sim

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/fleetlab/dispatchsim/core/events"
	"github.com/fleetlab/dispatchsim/core/model"
	"github.com/fleetlab/dispatchsim/core/policy"
)

// TickReport summarizes the work done by a single tick.
type TickReport struct {
	Time           int64
	Generated      int
	Expired        int
	OffersProposed int
	OffersAccepted int
	Assigned       int
	PickedUp       int
	Delivered      int
	Mutations      int
}

// Tick advances the world by one step. Phases run in a fixed order:
// admission, expiry, matching, offer decisions, conflict resolution,
// assignment, movement and behavior mutation. Waypoints reached during the
// movement phase are stamped with the end of the interval. An error aborts
// the tick and leaves counters where they were.
func (s *Simulator) Tick() (TickReport, error) {
	now := s.now
	rep := TickReport{Time: now}

	fresh, err := s.gen.Generate(now)
	if err != nil {
		return rep, fmt.Errorf("tick %d generate: %w", now, err)
	}
	for _, r := range fresh {
		if r == nil || r.Status != model.RequestWaiting {
			return rep, fmt.Errorf("tick %d generate: request must be waiting: %w", now, model.ErrInvalidInput)
		}
		s.active = append(s.active, r)
		s.created++
		mets.generated.Inc()
		s.publish(events.RequestGenerated{Time: now, RequestID: r.ID, Pickup: r.Pickup, Dropoff: r.Dropoff})
	}
	rep.Generated = len(fresh)

	for _, r := range s.active {
		if r.Status != model.RequestWaiting || r.Age(now) < s.cfg.TimeoutTicks {
			continue
		}
		if err := r.MarkExpired(now); err != nil {
			return rep, fmt.Errorf("tick %d expire request %d: %w", now, r.ID, err)
		}
		s.expired++
		rep.Expired++
		mets.expired.Inc()
		s.log.Debugf("request %d expired after waiting %d ticks", r.ID, r.Age(now))
		s.publish(events.RequestExpired{Time: now, RequestID: r.ID, Waited: r.Age(now)})
	}

	var cands []policy.Candidate
	if idle, waiting := s.idleDrivers(), s.waitingRequests(); len(idle) > 0 && len(waiting) > 0 {
		cands, err = s.pol.Propose(idle, waiting, now)
		if err != nil {
			return rep, fmt.Errorf("tick %d propose: %w", now, err)
		}
	}
	rep.OffersProposed = len(cands)

	accepted := make([]model.Offer, 0, len(cands))
	for _, c := range cands {
		o, err := model.NewOffer(c.Driver, c.Request, now, s.cfg.Reward)
		if err != nil {
			return rep, fmt.Errorf("tick %d offer driver %d request %d: %w", now, c.Driver.ID, c.Request.ID, err)
		}
		ok, err := c.Driver.Behavior.Decide(c.Driver, o, now)
		if err != nil {
			return rep, fmt.Errorf("tick %d decide driver %d: %w", now, c.Driver.ID, err)
		}
		mets.offers.WithLabelValues(c.Driver.Behavior.Name(), strconv.FormatBool(ok)).Inc()
		s.publish(events.OfferDecided{Time: now, DriverID: c.Driver.ID, RequestID: c.Request.ID, Behavior: c.Driver.Behavior.Name(), Accepted: ok, TripDistance: o.TripDistance})
		if ok {
			accepted = append(accepted, o)
		}
	}
	rep.OffersAccepted = len(accepted)

	for _, o := range resolveConflicts(accepted) {
		if err := o.Driver.AssignRequest(o.Request, now); err != nil {
			return rep, fmt.Errorf("tick %d assign driver %d request %d: %w", now, o.Driver.ID, o.Request.ID, err)
		}
		rep.Assigned++
		s.log.Debugf("driver %d assigned request %d, trip %.2f", o.Driver.ID, o.Request.ID, o.TripDistance)
		s.publish(events.RequestAssigned{Time: now, DriverID: o.Driver.ID, RequestID: o.Request.ID, TripDistance: o.TripDistance})
	}

	at := now + 1
	for _, d := range s.drivers {
		if d.Status == model.DriverIdle || !d.Step(1) {
			continue
		}
		if d.Status == model.DriverToPickup {
			r := d.Current
			if err := d.CompletePickup(at); err != nil {
				return rep, fmt.Errorf("tick %d pickup driver %d: %w", now, d.ID, err)
			}
			rep.PickedUp++
			s.publish(events.RequestPickedUp{Time: at, DriverID: d.ID, RequestID: r.ID})
			if !d.Position.Equal(r.Dropoff, model.Epsilon) {
				continue
			}
			// zero length carry leg, dropoff happens on the spot
		}
		if err := s.deliver(d, at, &rep); err != nil {
			return rep, fmt.Errorf("tick %d dropoff driver %d: %w", now, d.ID, err)
		}
	}

	for _, d := range s.drivers {
		before := d.Behavior.Name()
		if err := s.rule.MaybeMutate(d, now); err != nil {
			return rep, fmt.Errorf("tick %d mutate driver %d: %w", now, d.ID, err)
		}
		if after := d.Behavior.Name(); after != before {
			rep.Mutations++
			mets.mutations.WithLabelValues(before, after).Inc()
			s.log.Debugf("driver %d switched behavior %s -> %s", d.ID, before, after)
			s.publish(events.BehaviorMutated{Time: now, DriverID: d.ID, From: before, To: after})
		}
	}

	s.retire()
	s.now = now + 1
	mets.ticks.Inc()
	s.refreshGauges()
	s.publish(events.TickCompleted{
		Time:      s.now,
		Generated: rep.Generated,
		Expired:   rep.Expired,
		Assigned:  rep.Assigned,
		PickedUp:  rep.PickedUp,
		Delivered: rep.Delivered,
		Mutated:   rep.Mutations,
	})
	return rep, nil
}

func (s *Simulator) deliver(d *model.Driver, at int64, rep *TickReport) error {
	r := d.Current
	rec, err := d.CompleteDropoff(at, s.cfg.Reward)
	if err != nil {
		return err
	}
	s.served++
	s.cumWait += rec.WaitTime
	rep.Delivered++
	mets.served.Inc()
	s.log.Debugf("driver %d delivered request %d, earned %.2f", d.ID, r.ID, rec.Earnings)
	s.publish(events.RequestDelivered{Time: at, DriverID: d.ID, RequestID: r.ID, Earnings: rec.Earnings, WaitTime: rec.WaitTime})
	return nil
}

// resolveConflicts keeps at most one offer per request and per driver.
// Requests settle in ascending id order; the shortest trip wins a contested
// request and ties go to the lower driver id.
func resolveConflicts(accepted []model.Offer) []model.Offer {
	if len(accepted) == 0 {
		return nil
	}
	byReq := make(map[int64][]model.Offer)
	ids := make([]int64, 0, len(accepted))
	for _, o := range accepted {
		id := o.Request.ID
		if _, seen := byReq[id]; !seen {
			ids = append(ids, id)
		}
		byReq[id] = append(byReq[id], o)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	taken := make(map[int64]bool)
	winners := make([]model.Offer, 0, len(ids))
	for _, id := range ids {
		var best model.Offer
		found := false
		for _, o := range byReq[id] {
			if taken[o.Driver.ID] {
				continue
			}
			if !found || o.CloserThan(best) {
				best, found = o, true
			}
		}
		if !found {
			continue
		}
		taken[best.Driver.ID] = true
		winners = append(winners, best)
	}
	return winners
}

func (s *Simulator) idleDrivers() []*model.Driver {
	out := make([]*model.Driver, 0, len(s.drivers))
	for _, d := range s.drivers {
		if d.Status == model.DriverIdle {
			out = append(out, d)
		}
	}
	return out
}

func (s *Simulator) waitingRequests() []*model.Request {
	out := make([]*model.Request, 0, len(s.active))
	for _, r := range s.active {
		if r.Status == model.RequestWaiting {
			out = append(out, r)
		}
	}
	return out
}

// retire moves terminal requests out of the active set.
func (s *Simulator) retire() {
	keep := s.active[:0]
	for _, r := range s.active {
		if r.Status.Terminal() {
			s.retired = append(s.retired, r)
		} else {
			keep = append(keep, r)
		}
	}
	s.active = keep
}

func (s *Simulator) refreshGauges() {
	pending, transit, idle := 0, 0, 0
	for _, r := range s.active {
		switch r.Status {
		case model.RequestWaiting, model.RequestAssigned:
			pending++
		case model.RequestPickedUp:
			transit++
		}
	}
	for _, d := range s.drivers {
		if d.Status == model.DriverIdle {
			idle++
		}
	}
	mets.pending.Set(float64(pending))
	mets.transit.Set(float64(transit))
	mets.idle.Set(float64(idle))
	mets.avgWait.Set(s.AvgWait())
}
