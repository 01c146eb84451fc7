// Package canvasrenderer is the vector engine: pages are drawn with
// github.com/tdewolff/canvas and encoded as PDF.
package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"
	"sort"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ByLCY/papyrus/layout"
)

// DefaultDPI is used for px lengths when Options.DPI is zero.
const DefaultDPI = 96

// FallbackFont names the Go Regular face used when no font is configured.
const FallbackFont = "papyrus-fallback"

// Engine lays out in points and draws onto canvases measured in
// millimeters.
type Engine struct {
	*layout.VectorConverter

	meta        Meta
	defaultFont string
	fontBlobs   map[string][]byte // by family name

	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily

	attached []layout.GraphicsContext
}

var (
	_ layout.Engine       = (*Engine)(nil)
	_ layout.TextMeasurer = (*Engine)(nil)
)

// Options configures the engine.
type Options struct {
	DPI         int
	Fonts       map[string]Resource // font family name → TTF/OTF data
	DefaultFont string              // family used when FontSpec.Family is empty
	Meta        Meta
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// Meta is written into the PDF info dictionary.
type Meta struct {
	Title, Subject, Keywords, Author, Creator string
}

// New creates a vector engine. Font paths are read eagerly.
func New(opts Options) (*Engine, error) {
	dpi := opts.DPI
	if dpi == 0 {
		dpi = DefaultDPI
	}
	conv, err := layout.NewVectorConverter(dpi)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		VectorConverter: conv,
		meta:            opts.Meta,
		defaultFont:     opts.DefaultFont,
		fontBlobs:       map[string][]byte{},
		families:        map[string]*canvas.FontFamily{},
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		data := res.Bytes
		if len(data) == 0 && res.Path != "" {
			if data, err = os.ReadFile(res.Path); err != nil {
				return nil, fmt.Errorf("read font %s: %w", name, err)
			}
		}
		if len(data) > 0 {
			e.fontBlobs[name] = data
		}
	}
	if e.defaultFont == "" && len(e.fontBlobs) > 0 {
		names := make([]string, 0, len(e.fontBlobs))
		for name := range e.fontBlobs {
			names = append(names, name)
		}
		sort.Strings(names)
		e.defaultFont = names[0]
	}
	return e, nil
}

// NewGraphicsContext returns a blank page of w×h points.
func (e *Engine) NewGraphicsContext(w, h float64) (layout.GraphicsContext, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: surface size %gx%g", layout.ErrInvalidArgument, w, h)
	}
	return newSurface(e, w, h), nil
}

// NewGraphicsContextFromImage returns a page the size of img, with img
// drawn over it.
func (e *Engine) NewGraphicsContextFromImage(img image.Image) (layout.GraphicsContext, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty image", layout.ErrInvalidArgument)
	}
	w := e.Convert(layout.Of(float64(b.Dx()), layout.UnitPX)).Value
	h := e.Convert(layout.Of(float64(b.Dy()), layout.UnitPX)).Value
	s := newSurface(e, w, h)
	if err := s.DrawImage(img, layout.Point{Y: h}, layout.Point{X: w}); err != nil {
		return nil, err
	}
	return s, nil
}

func (e *Engine) AttachGraphicsContext(gc layout.GraphicsContext) {
	if gc != nil {
		e.attached = append(e.attached, gc)
	}
}

func (e *Engine) AttachedGraphicsContexts() []layout.GraphicsContext {
	return append([]layout.GraphicsContext(nil), e.attached...)
}

// Render writes every attached page into one PDF.
func (e *Engine) Render() ([]byte, error) {
	if len(e.attached) == 0 {
		return nil, fmt.Errorf("%w: no pages to render", layout.ErrLogic)
	}
	var buf bytes.Buffer
	var writer *pdf.PDF
	for i, gc := range e.attached {
		s, ok := gc.(*Surface)
		if !ok {
			return nil, fmt.Errorf("page %d: %w: foreign surface %T", i+1, layout.ErrInvalidArgument, gc)
		}
		w, h := toMm(s.w), toMm(s.h)
		if writer == nil {
			writer = pdf.New(&buf, w, h, nil)
			writer.SetInfo(e.meta.Title, e.meta.Subject, e.meta.Keywords, e.meta.Author, e.meta.Creator)
		} else {
			writer.NewPage(w, h)
		}
		s.c.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// MeasureText measures a single line in points with the default face.
func (e *Engine) MeasureText(text string, size float64) (float64, float64, error) {
	face, err := e.fontFace(layout.FontSpec{Size: size})
	if err != nil {
		return 0, 0, err
	}
	return toPt(face.TextWidth(text)), toPt(face.Metrics().LineHeight), nil
}

func (e *Engine) fontFace(spec layout.FontSpec) (*canvas.FontFace, error) {
	family, err := e.fontFamily(spec.Family)
	if err != nil {
		return nil, err
	}
	size := spec.Size
	if size <= 0 {
		size = 12
	}
	return family.Face(size, colorFromLayout(spec.Color), canvas.FontRegular, canvas.FontNormal), nil
}

func (e *Engine) fontFamily(name string) (*canvas.FontFamily, error) {
	if name == "" {
		name = e.defaultFont
	}
	if name == "" {
		name = FallbackFont
	}
	e.fontMu.Lock()
	defer e.fontMu.Unlock()
	if family, ok := e.families[name]; ok {
		return family, nil
	}
	data, ok := e.fontBlobs[name]
	if !ok && name == FallbackFont {
		data, ok = goregular.TTF, true
	}
	if !ok {
		return nil, fmt.Errorf("%w: font %s is not configured", layout.ErrInvalidArgument, name)
	}
	family := canvas.NewFontFamily(name)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("load font %s: %w", name, err)
	}
	e.families[name] = family
	return family, nil
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

func toPt(mm float64) float64 { return mm * layout.MmToPt }

func toMm(pt float64) float64 { return pt * layout.PtToMm }
