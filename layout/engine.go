package layout

import "image"

// GraphicsContext is one drawing surface, typically a page. Coordinates are
// native units with the origin at the bottom-left corner.
type GraphicsContext interface {
	Width() float64
	Height() float64
	DrawLine(from, to Point, style LineStyle) error
	// DrawPolygon fills and/or strokes the closed polygon through points.
	DrawPolygon(points []Point, style ShapeStyle) error
	// DrawText draws a single line whose top-left corner is at.
	DrawText(text string, at Point, font FontSpec) error
	// DrawImage stretches img over the rectangle spanned by topLeft and
	// bottomRight.
	DrawImage(img image.Image, topLeft, bottomRight Point) error
	// Copy returns an independent surface with the same content.
	Copy() GraphicsContext
}

// TemplateSource is an already produced document whose surfaces can be
// reused as page templates.
type TemplateSource interface {
	AttachedGraphicsContexts() []GraphicsContext
}

// TemplateLoader opens a template document. encoding names the text
// encoding of any textual parts of the source, e.g. "utf-8".
type TemplateLoader interface {
	Load(path, encoding string) (TemplateSource, error)
}

// TextMeasurer is the font-metrics oracle consulted for text nodes. size is
// the font size in native units.
type TextMeasurer interface {
	MeasureText(text string, size float64) (width, height float64, err error)
}

// Engine is a rendering backend. Formatting and scheduling only depend on
// this interface; vector and raster variants implement it.
type Engine interface {
	UnitConverter
	TemplateSource
	NewGraphicsContext(width, height float64) (GraphicsContext, error)
	// NewGraphicsContextFromImage wraps a decoded image as a surface, used
	// when loading image based templates.
	NewGraphicsContextFromImage(img image.Image) (GraphicsContext, error)
	AttachGraphicsContext(gc GraphicsContext)
	// Render encodes every attached surface, in attach order.
	Render() ([]byte, error)
}
