package mutation

import "fmt"

// Config parameterizes the Hybrid rule: evaluation cadence, the earnings
// thresholds, the stagnation detector and the parameters given to newly
// minted behaviors.
type Config struct {
	CooldownTicks int64 `json:"cooldown_ticks"`
	WindowTrips   int   `json:"window_trips"`

	LowEarnings  float64 `json:"low_earnings"`
	HighEarnings float64 `json:"high_earnings"`

	StagnationBand     float64 `json:"stagnation_band"`  // fraction of the mean
	StagnationShare    float64 `json:"stagnation_share"` // trips inside the band
	MinStagnationTicks int64   `json:"min_stagnation_ticks"`
	ExploreProb        float64 `json:"explore_prob"`

	Seed int64 `json:"seed"`

	GreedyMaxDistance     float64 `json:"greedy_max_distance"`
	EarningsMinRate       float64 `json:"earnings_min_rate"`
	LazyMinIdleTicks      int64   `json:"lazy_min_idle_ticks"`
	LazyMaxPickupDistance float64 `json:"lazy_max_pickup_distance"`
}

// SetDefaults fills unset fields with the reference tuning.
func (c *Config) SetDefaults() {
	if c.CooldownTicks == 0 {
		c.CooldownTicks = 10
	}
	if c.WindowTrips == 0 {
		c.WindowTrips = 10
	}
	if c.LowEarnings == 0 {
		c.LowEarnings = 3.0
	}
	if c.HighEarnings == 0 {
		c.HighEarnings = 8.0
	}
	if c.StagnationBand == 0 {
		c.StagnationBand = 0.10
	}
	if c.StagnationShare == 0 {
		c.StagnationShare = 0.7
	}
	if c.MinStagnationTicks == 0 {
		c.MinStagnationTicks = 20
	}
	if c.ExploreProb == 0 {
		c.ExploreProb = 0.3
	}
	if c.GreedyMaxDistance == 0 {
		c.GreedyMaxDistance = 15
	}
	if c.EarningsMinRate == 0 {
		c.EarningsMinRate = 0.8
	}
	if c.LazyMinIdleTicks == 0 {
		c.LazyMinIdleTicks = 5
	}
	if c.LazyMaxPickupDistance == 0 {
		c.LazyMaxPickupDistance = 8
	}
}

// Validate rejects inconsistent tunings.
func (c Config) Validate() error {
	if c.CooldownTicks <= 0 {
		return fmt.Errorf("mutation: cooldown_ticks must be positive, got %d", c.CooldownTicks)
	}
	if c.WindowTrips <= 0 {
		return fmt.Errorf("mutation: window_trips must be positive, got %d", c.WindowTrips)
	}
	if c.LowEarnings > c.HighEarnings {
		return fmt.Errorf("mutation: low_earnings %v above high_earnings %v", c.LowEarnings, c.HighEarnings)
	}
	if c.StagnationBand < 0 || c.StagnationBand > 1 {
		return fmt.Errorf("mutation: stagnation_band %v outside [0,1]", c.StagnationBand)
	}
	if c.StagnationShare <= 0 || c.StagnationShare > 1 {
		return fmt.Errorf("mutation: stagnation_share %v outside (0,1]", c.StagnationShare)
	}
	if c.MinStagnationTicks < 0 {
		return fmt.Errorf("mutation: min_stagnation_ticks %d negative", c.MinStagnationTicks)
	}
	if c.ExploreProb < 0 || c.ExploreProb > 1 {
		return fmt.Errorf("mutation: explore_prob %v outside [0,1]", c.ExploreProb)
	}
	return nil
}

// DefaultConfig returns the reference tuning.
func DefaultConfig() Config {
	var c Config
	c.SetDefaults()
	return c
}
