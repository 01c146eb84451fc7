package layout

import "fmt"

// Point is an immutable position in native units. The page origin is the
// bottom-left corner and Y grows upwards, matching PDF user space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint returns the point (x, y).
func NewPoint(x, y float64) Point { return Point{X: x, Y: y} }

// Translate returns a new point moved dx to the right and dy down. dy follows
// the direction of content flow, so a positive value lowers the point.
func (p Point) Translate(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y - dy}
}

// Equal reports whether p and o are the same position within eps.
func (p Point) Equal(o Point, eps float64) bool {
	return abs(p.X-o.X) <= eps && abs(p.Y-o.Y) <= eps
}

func (p Point) String() string { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
