package layout

// Boundary is the ordered polygon trace of a node's extent. Rectangular boxes
// are traced clockwise from the top-left corner: top-left, top-right,
// bottom-right, bottom-left.
type Boundary struct {
	points []Point
	closed bool
}

// NewBoundary returns an empty, open boundary.
func NewBoundary() *Boundary { return &Boundary{} }

// RectBoundary returns a closed rectangular boundary whose top-left corner is
// topLeft.
func RectBoundary(topLeft Point, width, height float64) *Boundary {
	b := &Boundary{}
	b.setRect(topLeft, width, height)
	return b
}

func (b *Boundary) setRect(topLeft Point, width, height float64) {
	b.points = append(b.points[:0],
		topLeft,
		topLeft.Translate(width, 0),
		topLeft.Translate(width, height),
		topLeft.Translate(0, height),
	)
	b.closed = true
}

// SetNext appends the point (x, y) to the trace. Appending to a closed
// boundary is a programming error and panics; call ResetTo first.
func (b *Boundary) SetNext(x, y float64) *Boundary {
	if b.closed {
		panic("layout: SetNext on a closed boundary")
	}
	b.points = append(b.points, Point{X: x, Y: y})
	return b
}

// Close marks the trace as complete. Closing twice is a no-op.
func (b *Boundary) Close() *Boundary {
	b.closed = true
	return b
}

// IsClosed reports whether Close has been called since the last reset.
func (b *Boundary) IsClosed() bool { return b.closed }

// Len returns the number of points in the trace.
func (b *Boundary) Len() int { return len(b.points) }

// At returns the i-th point. It panics if i is out of range.
func (b *Boundary) At(i int) Point { return b.points[i] }

// Points returns a copy of the trace.
func (b *Boundary) Points() []Point {
	out := make([]Point, len(b.points))
	copy(out, b.points)
	return out
}

// FirstPoint returns the first point ever added, or the zero point for an
// empty boundary.
func (b *Boundary) FirstPoint() Point {
	if len(b.points) == 0 {
		return Point{}
	}
	return b.points[0]
}

// DiagonalPoint returns the point opposite the first one. For rectangular
// traces this is the third point; shorter traces fall back to the last point.
func (b *Boundary) DiagonalPoint() Point {
	switch n := len(b.points); {
	case n == 0:
		return Point{}
	case n >= 3:
		return b.points[2]
	default:
		return b.points[n-1]
	}
}

// Width is |diagonal.x - first.x|.
func (b *Boundary) Width() float64 {
	return abs(b.DiagonalPoint().X - b.FirstPoint().X)
}

// Height is |first.y - diagonal.y|.
func (b *Boundary) Height() float64 {
	return abs(b.FirstPoint().Y - b.DiagonalPoint().Y)
}

// ResetTo collapses the trace to the single point p and reopens it.
func (b *Boundary) ResetTo(p Point) *Boundary {
	b.points = append(b.points[:0], p)
	b.closed = false
	return b
}

// Translate moves every point by (dx, dy) using Point.Translate semantics.
func (b *Boundary) Translate(dx, dy float64) {
	for i, p := range b.points {
		b.points[i] = p.Translate(dx, dy)
	}
}

// TranslatePoint moves only the i-th point.
func (b *Boundary) TranslatePoint(i int, dx, dy float64) {
	b.points[i] = b.points[i].Translate(dx, dy)
}

// Clone returns a deep copy. Points are values, so the copy never aliases b.
func (b *Boundary) Clone() *Boundary {
	return &Boundary{points: b.Points(), closed: b.closed}
}
