// Package runlog persists simulation events as JSON lines so a run can be
// replayed or inspected after the fact.
package runlog

import (
	"context"
	"fmt"
	"time"
)

// Config enables event logging for a run.
type Config struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Path == "" {
		c.Path = "events.jsonl"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Enabled && c.Path == "" {
		return fmt.Errorf("runlog: path is required")
	}
	return nil
}

// Record is one logged simulation event. DriverID and RequestID hold -1 when
// the event carries no such id.
type Record struct {
	RunID     string    `json:"run_id"`
	Kind      string    `json:"kind"`
	Tick      int64     `json:"tick"`
	Wall      time.Time `json:"wall"`
	DriverID  int64     `json:"driver_id"`
	RequestID int64     `json:"request_id"`
	Behavior  string    `json:"behavior,omitempty"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Accepted  bool      `json:"accepted,omitempty"`
	Distance  float64   `json:"distance,omitempty"`
	Earnings  float64   `json:"earnings,omitempty"`
	Waited    float64   `json:"waited,omitempty"`
	Generated int       `json:"generated,omitempty"`
	Expired   int       `json:"expired,omitempty"`
	Assigned  int       `json:"assigned,omitempty"`
	PickedUp  int       `json:"picked_up,omitempty"`
	Delivered int       `json:"delivered,omitempty"`
	Mutated   int       `json:"mutated,omitempty"`
}

// Query filters stored records. Zero values match everything.
type Query struct {
	RunID string
	Kind  string
	Start time.Time
	End   time.Time
}

// Store persists run log records.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
