package model

import "math"

// Epsilon is the tolerance for spatial equality. Positions are compared
// against it instead of ==, so arrival detection survives float drift.
const Epsilon = 1e-9

// Point is a position in the simulation plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p scaled by f.
func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Equal reports whether p and q coincide within eps.
func (p Point) Equal(q Point, eps float64) bool { return p.Dist(q) <= eps }
