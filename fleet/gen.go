package fleet

import (
	"fmt"
	"math/rand"

	"github.com/fleetlab/dispatchsim/core/factory"
	"github.com/fleetlab/dispatchsim/core/model"
)

// BehaviorShare pairs a behavior description with its share of the fleet.
// Shares are relative weights and need not sum to one.
type BehaviorShare struct {
	Share    float64              `json:"share" yaml:"share"`
	Behavior factory.ModuleConfig `json:"behavior" yaml:"behavior"`
}

// GenConfig parameterizes random fleet generation.
type GenConfig struct {
	Size     int     `json:"size" yaml:"size"`
	SpeedMin float64 `json:"speed_min" yaml:"speed_min"`
	SpeedMax float64 `json:"speed_max" yaml:"speed_max"`
	MinX     float64 `json:"min_x" yaml:"min_x"`
	MinY     float64 `json:"min_y" yaml:"min_y"`
	MaxX     float64 `json:"max_x" yaml:"max_x"`
	MaxY     float64 `json:"max_y" yaml:"max_y"`
	// Seed feeds the generator rng when the caller does not supply one.
	Seed int64           `json:"seed" yaml:"seed"`
	Mix  []BehaviorShare `json:"mix" yaml:"mix"`
}

// SetDefaults applies sane defaults.
func (c *GenConfig) SetDefaults() {
	if c.Size == 0 {
		c.Size = 20
	}
	if c.SpeedMin == 0 {
		c.SpeedMin = 1
	}
	if c.SpeedMax == 0 {
		c.SpeedMax = 2
	}
	if c.MaxX == 0 && c.MinX == 0 {
		c.MaxX = 100
	}
	if c.MaxY == 0 && c.MinY == 0 {
		c.MaxY = 100
	}
	if len(c.Mix) == 0 {
		c.Mix = []BehaviorShare{
			{Share: 0.4, Behavior: factory.ModuleConfig{Type: "greedy_distance"}},
			{Share: 0.4, Behavior: factory.ModuleConfig{Type: "earnings_max"}},
			{Share: 0.2, Behavior: factory.ModuleConfig{Type: "lazy"}},
		}
	}
}

// Validate checks the generation parameters.
func (c GenConfig) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("%w: fleet size must be positive", model.ErrInvalidInput)
	}
	if c.SpeedMin <= 0 || c.SpeedMax < c.SpeedMin {
		return fmt.Errorf("%w: speed range [%v, %v]", model.ErrInvalidInput, c.SpeedMin, c.SpeedMax)
	}
	if c.MaxX <= c.MinX || c.MaxY <= c.MinY {
		return fmt.Errorf("%w: empty generation area", model.ErrInvalidInput)
	}
	if len(c.Mix) == 0 {
		return fmt.Errorf("%w: empty behavior mix", model.ErrInvalidInput)
	}
	for _, m := range c.Mix {
		if m.Share <= 0 {
			return fmt.Errorf("%w: behavior share must be positive", model.ErrInvalidInput)
		}
		if m.Behavior.Type == "" {
			return fmt.Errorf("%w: behavior mix entry without type", model.ErrInvalidInput)
		}
	}
	return nil
}

// Generate produces a random fleet description: uniform positions within the
// bounds, uniform speeds within the range, behaviors drawn by share. A nil
// rng seeds one from cfg.Seed, so equal configs yield equal fleets.
func Generate(cfg GenConfig, rng *rand.Rand) (File, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return File{}, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}

	total := 0.0
	cum := make([]float64, len(cfg.Mix))
	for i, m := range cfg.Mix {
		total += m.Share
		cum[i] = total
	}

	drivers := make([]DriverSpec, cfg.Size)
	for i := range drivers {
		pick := rng.Float64() * total
		mix := cfg.Mix[len(cfg.Mix)-1]
		for j, c := range cum {
			if pick < c {
				mix = cfg.Mix[j]
				break
			}
		}
		drivers[i] = DriverSpec{
			ID:       int64(i),
			X:        cfg.MinX + rng.Float64()*(cfg.MaxX-cfg.MinX),
			Y:        cfg.MinY + rng.Float64()*(cfg.MaxY-cfg.MinY),
			Speed:    cfg.SpeedMin + rng.Float64()*(cfg.SpeedMax-cfg.SpeedMin),
			Behavior: mix.Behavior,
		}
	}
	return File{Drivers: drivers}, nil
}
