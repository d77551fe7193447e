// Package behavior provides the built-in driver decision strategies. Each
// strategy implements model.Behavior and is a pure predicate over the driver
// and the offer it is handed.
package behavior

import (
	"fmt"

	"github.com/fleetlab/dispatchsim/core/model"
)

// checkContract rejects calls that break the decision contract. These are
// reported as input errors so callers can tell them apart from lifecycle
// violations.
func checkContract(name string, d *model.Driver, o model.Offer) error {
	if d == nil {
		return fmt.Errorf("%s: nil driver: %w", name, model.ErrInvalidInput)
	}
	if o.Driver == nil || o.Request == nil {
		return fmt.Errorf("%s: malformed offer: %w", name, model.ErrInvalidInput)
	}
	if o.Driver != d {
		return fmt.Errorf("%s: offer for driver %d handed to driver %d: %w", name, o.Driver.ID, d.ID, model.ErrInvalidInput)
	}
	return nil
}
