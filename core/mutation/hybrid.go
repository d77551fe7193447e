package mutation

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/fleetlab/dispatchsim/core/behavior"
	"github.com/fleetlab/dispatchsim/core/model"
)

// Hybrid combines two adaptation pressures. A performance switch moves
// drivers whose recent average earnings cross the configured thresholds:
// strugglers fall back to taking anything nearby, high earners can afford to
// be selective. A stagnation switch kicks drivers whose earnings went flat
// into exploring another strategy. Lazy drivers are never forced out on
// performance, only stagnation moves them.
type Hybrid struct {
	cfg Config
	rng *rand.Rand

	greedy   behavior.GreedyDistance
	earnings behavior.EarningsMax
	lazy     behavior.Lazy
}

// NewHybrid validates the configuration and the replacement behaviors it
// will hand out.
func NewHybrid(cfg Config) (*Hybrid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g, err := behavior.NewGreedyDistance(cfg.GreedyMaxDistance)
	if err != nil {
		return nil, err
	}
	e, err := behavior.NewEarningsMax(cfg.EarningsMinRate)
	if err != nil {
		return nil, err
	}
	l, err := behavior.NewLazy(cfg.LazyMinIdleTicks, cfg.LazyMaxPickupDistance)
	if err != nil {
		return nil, err
	}
	return &Hybrid{
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		greedy:   g,
		earnings: e,
		lazy:     l,
	}, nil
}

// Name implements Rule.
func (*Hybrid) Name() string { return "hybrid" }

// MaybeMutate implements Rule.
func (h *Hybrid) MaybeMutate(d *model.Driver, now int64) error {
	if d == nil {
		return fmt.Errorf("hybrid mutation: nil driver: %w", model.ErrInvalidInput)
	}
	if d.Behavior == nil {
		return fmt.Errorf("hybrid mutation: driver %d has no behavior: %w", d.ID, model.ErrInvalidInput)
	}
	if d.LastEvaluated >= 0 && now-d.LastEvaluated < h.cfg.CooldownTicks {
		return nil
	}
	d.LastEvaluated = now

	window := d.RecentEarnings(h.cfg.WindowTrips)
	if len(window) == 0 {
		return nil
	}
	avg := stat.Mean(window, nil)

	if h.applyPerformance(d, avg) {
		d.StagnantSince = -1
		return nil
	}
	h.applyStagnation(d, window, avg, now)
	return nil
}

// applyPerformance runs the threshold exits and reports whether a switch
// happened.
func (h *Hybrid) applyPerformance(d *model.Driver, avg float64) bool {
	switch d.Behavior.(type) {
	case behavior.GreedyDistance:
		if avg > h.cfg.HighEarnings {
			d.Behavior = h.earnings
			return true
		}
	case behavior.EarningsMax:
		if avg < h.cfg.LowEarnings {
			d.Behavior = h.greedy
			return true
		}
	}
	return false
}

// applyStagnation tracks how long earnings have been flat and, once the
// stretch is long enough, swaps in a different strategy: always for Lazy,
// with probability ExploreProb for the others.
func (h *Hybrid) applyStagnation(d *model.Driver, window []float64, avg float64, now int64) {
	if !h.stagnant(window, avg) {
		d.StagnantSince = -1
		return
	}
	if d.StagnantSince < 0 {
		d.StagnantSince = now
	}
	if now-d.StagnantSince < h.cfg.MinStagnationTicks {
		return
	}
	if _, isLazy := d.Behavior.(behavior.Lazy); !isLazy {
		if h.rng.Float64() >= h.cfg.ExploreProb {
			return
		}
	}
	d.Behavior = h.explore(d.Behavior)
	d.StagnantSince = -1
}

// stagnant reports whether enough of the window sits inside the band
// around the mean.
func (h *Hybrid) stagnant(window []float64, avg float64) bool {
	band := h.cfg.StagnationBand * math.Abs(avg)
	inside := 0
	for _, e := range window {
		if math.Abs(e-avg) <= band {
			inside++
		}
	}
	return float64(inside)/float64(len(window)) >= h.cfg.StagnationShare
}

// explore picks uniformly among the strategies the driver is not running.
func (h *Hybrid) explore(cur model.Behavior) model.Behavior {
	options := make([]model.Behavior, 0, 2)
	for _, b := range []model.Behavior{h.greedy, h.earnings, h.lazy} {
		if b.Name() != cur.Name() {
			options = append(options, b)
		}
	}
	return options[h.rng.Intn(len(options))]
}
