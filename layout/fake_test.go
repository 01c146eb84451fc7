package layout

import (
	"errors"
	"image"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/log"
)

// fakeGC records every primitive as a short string.
type fakeGC struct {
	w, h   float64
	ops    []string
	failOn string

	textAt  []Point
	imageAt [][2]Point
}

func (g *fakeGC) Width() float64  { return g.w }
func (g *fakeGC) Height() float64 { return g.h }

func (g *fakeGC) record(op string) error {
	g.ops = append(g.ops, op)
	if g.failOn != "" && strings.HasPrefix(op, g.failOn) {
		return errors.New("boom")
	}
	return nil
}

func (g *fakeGC) DrawLine(from, to Point, _ LineStyle) error { return g.record("line") }

func (g *fakeGC) DrawPolygon(_ []Point, style ShapeStyle) error {
	if style.Fill != nil {
		return g.record("fill")
	}
	return g.record("stroke")
}

func (g *fakeGC) DrawText(text string, at Point, _ FontSpec) error {
	g.textAt = append(g.textAt, at)
	return g.record("text:" + text)
}

func (g *fakeGC) DrawImage(_ image.Image, topLeft, bottomRight Point) error {
	g.imageAt = append(g.imageAt, [2]Point{topLeft, bottomRight})
	return g.record("image")
}

func (g *fakeGC) Copy() GraphicsContext {
	cp := *g
	cp.ops = append([]string(nil), g.ops...)
	cp.textAt = append([]Point(nil), g.textAt...)
	cp.imageAt = append([][2]Point(nil), g.imageAt...)
	return &cp
}

type fakeSource struct{ gcs []GraphicsContext }

func (s fakeSource) AttachedGraphicsContexts() []GraphicsContext { return s.gcs }

type fakeEngine struct {
	IdentityConverter
	attached []GraphicsContext
	failOn   string
}

func (e *fakeEngine) AttachedGraphicsContexts() []GraphicsContext { return e.attached }

func (e *fakeEngine) NewGraphicsContext(w, h float64) (GraphicsContext, error) {
	return &fakeGC{w: w, h: h, failOn: e.failOn}, nil
}

func (e *fakeEngine) NewGraphicsContextFromImage(img image.Image) (GraphicsContext, error) {
	b := img.Bounds()
	return &fakeGC{w: float64(b.Dx()), h: float64(b.Dy())}, nil
}

func (e *fakeEngine) AttachGraphicsContext(gc GraphicsContext) { e.attached = append(e.attached, gc) }

func (e *fakeEngine) Render() ([]byte, error) { return []byte("rendered"), nil }

type fakeLoader struct {
	src      fakeSource
	path     string
	encoding string
}

func (l *fakeLoader) Load(path, encoding string) (TemplateSource, error) {
	l.path, l.encoding = path, encoding
	return l.src, nil
}

func quietLogger() *log.Logger { return log.New(io.Discard) }

func near(a, b float64) bool { return math.Abs(a-b) <= 1e-6 }

func mustNode(t interface{ Fatalf(string, ...any) }, cfg BoxConfig, opts ...NodeOption) *Node {
	n, err := NewNode(cfg, opts...)
	if err != nil {
		t.Fatalf("NewNode(%+v): %v", cfg, err)
	}
	return n
}

func mustPage(t interface{ Fatalf(string, ...any) }, cfg PageConfig, opts ...NodeOption) *Page {
	p, err := NewPage(cfg, opts...)
	if err != nil {
		t.Fatalf("NewPage(%+v): %v", cfg, err)
	}
	return p
}
