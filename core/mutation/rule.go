// Package mutation contains the rules that evolve driver behaviors between
// ticks based on each driver's recent record.
package mutation

import (
	"fmt"

	"github.com/fleetlab/dispatchsim/core/model"
)

// Rule may replace a driver's behavior in place. Rules run once per driver
// per tick; everything they need lives on the driver itself.
type Rule interface {
	// MaybeMutate inspects the driver and possibly swaps its behavior.
	// Errors are contract violations, never a "no mutation" signal.
	MaybeMutate(d *model.Driver, now int64) error

	// Name identifies the rule in events and exports.
	Name() string
}

// Noop never mutates. Useful as the control arm when comparing runs.
type Noop struct{}

// Name implements Rule.
func (Noop) Name() string { return "noop" }

// MaybeMutate implements Rule.
func (Noop) MaybeMutate(d *model.Driver, now int64) error {
	if d == nil {
		return fmt.Errorf("noop mutation: nil driver: %w", model.ErrInvalidInput)
	}
	return nil
}
