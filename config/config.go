// Package config loads and validates the service configuration from YAML or
// JSON files with environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/fleetlab/dispatchsim/core/factory"
	"github.com/fleetlab/dispatchsim/core/generator"
	"github.com/fleetlab/dispatchsim/core/metrics"
	"github.com/fleetlab/dispatchsim/core/model"
	"github.com/fleetlab/dispatchsim/fleet"
	"github.com/fleetlab/dispatchsim/infra/mqtt"
	"github.com/fleetlab/dispatchsim/infra/runlog"
)

// Config is the root service configuration.
type Config struct {
	Sim       SimConfig            `json:"sim"`
	Generator generator.Config     `json:"generator"`
	Reward    model.RewardParams   `json:"reward"`
	Policy    factory.ModuleConfig `json:"policy"`
	Mutation  factory.ModuleConfig `json:"mutation"`
	Fleet     FleetConfig          `json:"fleet"`
	Logging   runlog.Config        `json:"logging"`
	Metrics   metrics.Config       `json:"metrics"`
	Telemetry mqtt.Config          `json:"telemetry"`
	API       APIConfig            `json:"api"`
}

// SimConfig controls the stepping core and the service tick loop.
type SimConfig struct {
	// TimeoutTicks is the waiting time after which a request expires.
	TimeoutTicks int64 `json:"timeout_ticks"`
	// TickInterval paces service mode. Batch runs ignore it.
	TickInterval time.Duration `json:"tick_interval"`
	// MaxTicks stops the run when positive, 0 runs until canceled.
	MaxTicks int64 `json:"max_ticks"`
}

// SetDefaults applies sane defaults.
func (c *SimConfig) SetDefaults() {
	if c.TimeoutTicks == 0 {
		c.TimeoutTicks = 20
	}
	if c.TickInterval == 0 {
		c.TickInterval = time.Second
	}
}

// Validate checks the stepping parameters.
func (c SimConfig) Validate() error {
	if c.TimeoutTicks <= 0 {
		return fmt.Errorf("sim: timeout_ticks must be positive, got %d", c.TimeoutTicks)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("sim: tick_interval must be positive, got %s", c.TickInterval)
	}
	if c.MaxTicks < 0 {
		return fmt.Errorf("sim: max_ticks must not be negative, got %d", c.MaxTicks)
	}
	return nil
}

// FleetConfig selects where the initial fleet comes from. A file wins over
// generation when both are set.
type FleetConfig struct {
	File     string          `json:"file"`
	Generate fleet.GenConfig `json:"generate"`
}

// Validate checks that one fleet source is usable.
func (c *FleetConfig) Validate() error {
	if c.File != "" {
		return nil
	}
	c.Generate.SetDefaults()
	if err := c.Generate.Validate(); err != nil {
		return fmt.Errorf("fleet: %w", err)
	}
	return nil
}

// APIConfig exposes the inspection HTTP server.
type APIConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// SetDefaults fills unset sections of the whole configuration.
func (c *Config) SetDefaults() {
	c.Sim.SetDefaults()
	c.Generator.SetDefaults()
	if c.Reward == (model.RewardParams{}) {
		c.Reward = model.DefaultRewardParams()
	}
	if c.Policy.Type == "" {
		c.Policy.Type = "nearest_neighbor"
	}
	if c.Mutation.Type == "" {
		c.Mutation.Type = "hybrid"
	}
	c.Logging.SetDefaults()
	c.API.SetDefaults()
}

// Validate checks every section that can be rejected before wiring.
func (c *Config) Validate() error {
	if err := c.Sim.Validate(); err != nil {
		return err
	}
	if err := c.Generator.Validate(); err != nil {
		return err
	}
	if err := c.Fleet.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if c.Policy.Type == "" {
		return fmt.Errorf("policy: type is required")
	}
	if c.Mutation.Type == "" {
		return fmt.Errorf("mutation: type is required")
	}
	return nil
}

// Load reads the configuration from a YAML or JSON file, applies DS_*
// environment overrides (DS_SIM__MAX_TICKS=500 sets sim.max_ticks), then
// defaults and validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("DS_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "ds_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
