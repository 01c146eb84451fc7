package raster

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/papyrus/layout"
)

// Surface is one page backed by a gg context. Layout coordinates grow
// upward from the bottom-left corner while gg grows downward from the
// top-left, so every y is flipped on the way in.
type Surface struct {
	engine *Engine
	dc     *gg.Context
}

var _ layout.GraphicsContext = (*Surface)(nil)

func (s *Surface) Width() float64  { return float64(s.dc.Width()) }
func (s *Surface) Height() float64 { return float64(s.dc.Height()) }

// Image returns the page pixels.
func (s *Surface) Image() image.Image { return s.dc.Image() }

func (s *Surface) flip(y float64) float64 { return s.Height() - y }

func (s *Surface) DrawLine(from, to layout.Point, style layout.LineStyle) error {
	w := style.Width
	if w <= 0 {
		w = 1
	}
	setColor(s.dc, style.Color)
	s.dc.SetLineWidth(w)
	s.dc.DrawLine(from.X, s.flip(from.Y), to.X, s.flip(to.Y))
	s.dc.Stroke()
	return nil
}

func (s *Surface) DrawPolygon(points []layout.Point, style layout.ShapeStyle) error {
	if len(points) < 2 {
		return fmt.Errorf("polygon needs at least 2 points, got %d", len(points))
	}
	s.dc.MoveTo(points[0].X, s.flip(points[0].Y))
	for _, p := range points[1:] {
		s.dc.LineTo(p.X, s.flip(p.Y))
	}
	s.dc.ClosePath()
	switch {
	case style.Fill != nil && style.Stroke != nil:
		setColor(s.dc, *style.Fill)
		s.dc.FillPreserve()
		s.stroke(*style.Stroke, style.StrokeWidth)
	case style.Fill != nil:
		setColor(s.dc, *style.Fill)
		s.dc.Fill()
	case style.Stroke != nil:
		s.stroke(*style.Stroke, style.StrokeWidth)
	default:
		s.dc.ClearPath()
	}
	return nil
}

func (s *Surface) stroke(c layout.Color, w float64) {
	if w <= 0 {
		w = 1
	}
	setColor(s.dc, c)
	s.dc.SetLineWidth(w)
	s.dc.Stroke()
}

// DrawText draws with the baseline one ascent below at.
func (s *Surface) DrawText(text string, at layout.Point, spec layout.FontSpec) error {
	face, err := s.engine.face(spec)
	if err != nil {
		return err
	}
	s.dc.SetFontFace(face)
	setColor(s.dc, spec.Color)
	ascent := fixedToFloat(face.Metrics().Ascent)
	s.dc.DrawString(text, at.X, s.flip(at.Y)+ascent)
	return nil
}

// DrawImage scales img onto the rectangle.
func (s *Surface) DrawImage(img image.Image, topLeft, bottomRight layout.Point) error {
	w := bottomRight.X - topLeft.X
	h := topLeft.Y - bottomRight.Y
	b := img.Bounds()
	if w <= 0 || h <= 0 || b.Empty() {
		return fmt.Errorf("%w: empty image rectangle", layout.ErrInvalidArgument)
	}
	s.dc.Push()
	s.dc.Translate(topLeft.X, s.flip(topLeft.Y))
	s.dc.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	s.dc.DrawImage(img, -b.Min.X, -b.Min.Y)
	s.dc.Pop()
	return nil
}

// Copy clones the pixels into a new page.
func (s *Surface) Copy() layout.GraphicsContext {
	return &Surface{engine: s.engine, dc: gg.NewContextForImage(s.dc.Image())}
}

func setColor(dc *gg.Context, c layout.Color) {
	dc.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, 1)
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
