package generator

import "fmt"

// Config drives the stochastic arrival process. Pickups and dropoffs are
// drawn uniformly inside the [MinX,MaxX]x[MinY,MaxY] rectangle.
type Config struct {
	Rate    float64 `json:"rate"` // mean arrivals per tick, 0 disables
	MinX    float64 `json:"min_x"`
	MinY    float64 `json:"min_y"`
	MaxX    float64 `json:"max_x"`
	MaxY    float64 `json:"max_y"`
	Seed    uint64  `json:"seed"`
	StartID int64   `json:"start_id"` // first generated request id
}

// SetDefaults fills unset fields with a 100x100 service area.
func (c *Config) SetDefaults() {
	if c.MaxX == 0 && c.MinX == 0 {
		c.MaxX = 100
	}
	if c.MaxY == 0 && c.MinY == 0 {
		c.MaxY = 100
	}
}

// Validate rejects negative rates and empty areas.
func (c Config) Validate() error {
	if c.Rate < 0 {
		return fmt.Errorf("generator: rate %v must not be negative", c.Rate)
	}
	if c.MaxX <= c.MinX || c.MaxY <= c.MinY {
		return fmt.Errorf("generator: empty area [%v,%v]x[%v,%v]", c.MinX, c.MaxX, c.MinY, c.MaxY)
	}
	if c.StartID < 0 {
		return fmt.Errorf("generator: start id %d must not be negative", c.StartID)
	}
	return nil
}
