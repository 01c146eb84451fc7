package canvasrenderer

import (
	"fmt"
	"image"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/papyrus/layout"
)

// Surface is one PDF page. Layout coordinates are points with a bottom-left
// origin, which is canvas' default coordinate system once scaled to mm.
type Surface struct {
	engine *Engine
	w, h   float64 // points
	c      *canvas.Canvas
	ctx    *canvas.Context
}

var _ layout.GraphicsContext = (*Surface)(nil)

func newSurface(e *Engine, w, h float64) *Surface {
	c := canvas.New(toMm(w), toMm(h))
	return &Surface{engine: e, w: w, h: h, c: c, ctx: canvas.NewContext(c)}
}

func (s *Surface) Width() float64  { return s.w }
func (s *Surface) Height() float64 { return s.h }

// Canvas exposes the underlying canvas, e.g. to write it with another
// canvas renderer.
func (s *Surface) Canvas() *canvas.Canvas { return s.c }

func (s *Surface) DrawLine(from, to layout.Point, style layout.LineStyle) error {
	w := style.Width
	if w <= 0 {
		w = 0.5
	}
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	p.LineTo(toMm(to.X-from.X), toMm(to.Y-from.Y))
	s.ctx.SetFillColor(canvas.Transparent)
	s.ctx.SetStrokeColor(colorFromLayout(style.Color))
	s.ctx.SetStrokeWidth(toMm(w))
	s.ctx.DrawPath(toMm(from.X), toMm(from.Y), p)
	return nil
}

func (s *Surface) DrawPolygon(points []layout.Point, style layout.ShapeStyle) error {
	if len(points) < 2 {
		return fmt.Errorf("polygon needs at least 2 points, got %d", len(points))
	}
	p := &canvas.Path{}
	p.MoveTo(toMm(points[0].X), toMm(points[0].Y))
	for _, pt := range points[1:] {
		p.LineTo(toMm(pt.X), toMm(pt.Y))
	}
	p.Close()
	if style.Fill != nil {
		s.ctx.SetFillColor(colorFromLayout(*style.Fill))
	} else {
		s.ctx.SetFillColor(canvas.Transparent)
	}
	if style.Stroke != nil {
		w := style.StrokeWidth
		if w <= 0 {
			w = 0.5
		}
		s.ctx.SetStrokeColor(colorFromLayout(*style.Stroke))
		s.ctx.SetStrokeWidth(toMm(w))
	} else {
		s.ctx.SetStrokeColor(canvas.Transparent)
	}
	s.ctx.DrawPath(0, 0, p)
	return nil
}

// DrawText places the baseline one ascent below at.
func (s *Surface) DrawText(text string, at layout.Point, font layout.FontSpec) error {
	face, err := s.engine.fontFace(font)
	if err != nil {
		return err
	}
	line := canvas.NewTextLine(face, text, canvas.Left)
	baseline := toMm(at.Y) - face.Metrics().Ascent
	s.ctx.DrawText(toMm(at.X), baseline, line)
	return nil
}

// DrawImage stretches img over the rectangle, scaling each axis on its own.
func (s *Surface) DrawImage(img image.Image, topLeft, bottomRight layout.Point) error {
	w, h := toMm(bottomRight.X-topLeft.X), toMm(topLeft.Y-bottomRight.Y)
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: empty image rectangle", layout.ErrInvalidArgument)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil
	}
	// Image pixels span (0,0)-(Dx,Dy) with the first row on top.
	m := canvas.Identity.
		Translate(toMm(topLeft.X), toMm(bottomRight.Y)).
		Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	s.c.RenderImage(img, m)
	return nil
}

// Copy replays the page onto a fresh canvas of the same size.
func (s *Surface) Copy() layout.GraphicsContext {
	cp := newSurface(s.engine, s.w, s.h)
	s.c.RenderTo(cp.c)
	return cp
}
