package layout

// Decoration paints around a node's content: backgrounds, borders, page
// backdrops. Decorations are collected as drawing tasks at their own
// priority.
type Decoration interface {
	Name() string
	Priority() Priority
	Enhance(gc GraphicsContext, n *Node) error
}

// Background fills the node's boundary.
type Background struct {
	Color Color
}

func (Background) Name() string       { return "background" }
func (Background) Priority() Priority { return PriorityBackground }

func (b Background) Enhance(gc GraphicsContext, n *Node) error {
	if n.boundary.Len() < 3 {
		return nil
	}
	c := b.Color
	return gc.DrawPolygon(n.boundary.Points(), ShapeStyle{Fill: &c})
}

// Border strokes the node's boundary.
type Border struct {
	Color Color
	Width float64
}

func (Border) Name() string       { return "border" }
func (Border) Priority() Priority { return PriorityBorder }

func (b Border) Enhance(gc GraphicsContext, n *Node) error {
	if n.boundary.Len() < 3 {
		return nil
	}
	c := b.Color
	return gc.DrawPolygon(n.boundary.Points(), ShapeStyle{Stroke: &c, StrokeWidth: b.Width})
}

// PageBackground fills the whole surface, margins included.
type PageBackground struct {
	Color Color
}

func (PageBackground) Name() string       { return "page-background" }
func (PageBackground) Priority() Priority { return PriorityPageBackground }

func (b PageBackground) Enhance(gc GraphicsContext, _ *Node) error {
	w, h := gc.Width(), gc.Height()
	c := b.Color
	return gc.DrawPolygon(RectBoundary(Point{Y: h}, w, h).Points(), ShapeStyle{Fill: &c})
}
