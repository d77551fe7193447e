package sim

import (
	"fmt"

	"github.com/fleetlab/dispatchsim/core/model"
)

// Config holds the orchestrator settings.
type Config struct {
	// TimeoutTicks is the age at which a request still waiting for a driver
	// expires.
	TimeoutTicks int64 `json:"timeout_ticks"`
	// Reward prices completed trips.
	Reward model.RewardParams `json:"reward"`
}

// SetDefaults fills unset fields with default values.
func (c *Config) SetDefaults() {
	if c.TimeoutTicks == 0 {
		c.TimeoutTicks = 20
	}
	if c.Reward == (model.RewardParams{}) {
		c.Reward = model.DefaultRewardParams()
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.TimeoutTicks <= 0 {
		return fmt.Errorf("timeout_ticks must be positive, got %d", c.TimeoutTicks)
	}
	if c.Reward.Base < 0 || c.Reward.PerDistance < 0 || c.Reward.WaitPenalty < 0 {
		return fmt.Errorf("reward parameters must not be negative")
	}
	return nil
}

// DefaultConfig returns a Config with defaults applied.
func DefaultConfig() Config {
	var c Config
	c.SetDefaults()
	return c
}
