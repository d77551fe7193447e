// Package generator produces the requests appearing during a run. Arrivals
// follow a Poisson process; loaded scenarios use the zero rate or a fixed
// schedule instead.
package generator

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/fleetlab/dispatchsim/core/model"
)

// Generator produces the new requests appearing at a tick. Implementations
// own their randomness so identical seeds replay identical arrivals.
type Generator interface {
	Generate(now int64) ([]*model.Request, error)
}

// Poisson draws the per-tick arrival count from a Poisson distribution and
// places each request uniformly inside the configured area, redrawing the
// dropoff while it collides with the pickup. Ids increase monotonically
// from the configured start.
type Poisson struct {
	cfg  Config
	dist distuv.Poisson
	rng  *rand.Rand
	next int64
}

// NewPoisson validates the configuration and seeds the source.
func NewPoisson(cfg Config) (*Poisson, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	src := rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)
	return &Poisson{
		cfg:  cfg,
		dist: distuv.Poisson{Lambda: cfg.Rate, Src: src},
		rng:  rand.New(src),
		next: cfg.StartID,
	}, nil
}

// Generate implements Generator.
func (g *Poisson) Generate(now int64) ([]*model.Request, error) {
	if g.cfg.Rate == 0 {
		return nil, nil
	}
	n := int(g.dist.Rand())
	if n <= 0 {
		return nil, nil
	}
	out := make([]*model.Request, 0, n)
	for i := 0; i < n; i++ {
		pickup := g.point()
		dropoff := g.point()
		for dropoff.Equal(pickup, model.Epsilon) {
			dropoff = g.point()
		}
		r, err := model.NewRequest(g.next, pickup, dropoff, now)
		if err != nil {
			return nil, err
		}
		g.next++
		out = append(out, r)
	}
	return out, nil
}

func (g *Poisson) point() model.Point {
	return model.Point{
		X: g.cfg.MinX + g.rng.Float64()*(g.cfg.MaxX-g.cfg.MinX),
		Y: g.cfg.MinY + g.rng.Float64()*(g.cfg.MaxY-g.cfg.MinY),
	}
}
