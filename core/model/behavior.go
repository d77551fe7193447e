package model

// Behavior decides whether a driver accepts an offer. Implementations read
// the driver and the offer and must not modify either; the simulation state
// they see is whatever the offer carries.
type Behavior interface {
	// Decide reports whether the driver takes the offer. An error signals
	// a contract violation (nil driver, an offer built for another
	// driver), never a plain rejection.
	Decide(d *Driver, o Offer, now int64) (bool, error)

	// Name identifies the strategy in snapshots, events and exports.
	Name() string
}
