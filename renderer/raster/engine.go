// Package raster is the pixel engine: pages are painted with
// github.com/fogleman/gg and encoded as PNG, TIFF or BMP.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/bmp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/tiff"

	"github.com/ByLCY/papyrus/layout"
)

// DefaultDPI is used when Options.DPI is zero.
const DefaultDPI = 96

// FallbackFont names the Go Regular face used when no font is configured.
const FallbackFont = "papyrus-fallback"

// Output formats understood by Render.
const (
	FormatPNG  = "png"
	FormatTIFF = "tiff"
	FormatBMP  = "bmp"
)

// Options configures the engine.
type Options struct {
	DPI         int
	Fonts       map[string][]byte // family name → TTF/OTF data
	FontPaths   map[string]string // family name → font file, read at New
	DefaultFont string
	Format      string         // png (default), tiff or bmp
	Background  *image.Uniform // page fill, white when nil
}

type faceKey struct {
	family string
	size   float64
}

// Engine lays out and draws in pixels.
type Engine struct {
	*layout.RasterConverter

	format      string
	background  *image.Uniform
	defaultFont string
	fonts       map[string]*opentype.Font

	faceMu sync.Mutex
	faces  map[faceKey]font.Face

	attached []layout.GraphicsContext
}

var (
	_ layout.Engine       = (*Engine)(nil)
	_ layout.TextMeasurer = (*Engine)(nil)
)

// New creates a raster engine.
func New(opts Options) (*Engine, error) {
	dpi := opts.DPI
	if dpi == 0 {
		dpi = DefaultDPI
	}
	conv, err := layout.NewRasterConverter(dpi)
	if err != nil {
		return nil, err
	}
	format := strings.ToLower(opts.Format)
	switch format {
	case "":
		format = FormatPNG
	case FormatPNG, FormatTIFF, FormatBMP:
	default:
		return nil, fmt.Errorf("%w: unknown image format %q", layout.ErrInvalidArgument, opts.Format)
	}
	e := &Engine{
		RasterConverter: conv,
		format:          format,
		background:      opts.Background,
		defaultFont:     opts.DefaultFont,
		fonts:           map[string]*opentype.Font{},
		faces:           map[faceKey]font.Face{},
	}
	if e.background == nil {
		e.background = image.White
	}
	blobs := map[string][]byte{}
	for name, data := range opts.Fonts {
		blobs[name] = data
	}
	for name, path := range opts.FontPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", name, err)
		}
		blobs[name] = data
	}
	for name, data := range blobs {
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", name, err)
		}
		e.fonts[name] = f
	}
	if e.defaultFont == "" && len(e.fonts) > 0 {
		names := make([]string, 0, len(e.fonts))
		for name := range e.fonts {
			names = append(names, name)
		}
		sort.Strings(names)
		e.defaultFont = names[0]
	}
	return e, nil
}

// NewGraphicsContext returns a page of w×h pixels, rounded to whole pixels.
func (e *Engine) NewGraphicsContext(w, h float64) (layout.GraphicsContext, error) {
	pw, ph := int(math.Round(w)), int(math.Round(h))
	if pw < 1 || ph < 1 {
		return nil, fmt.Errorf("%w: surface size %gx%g", layout.ErrInvalidArgument, w, h)
	}
	dc := gg.NewContext(pw, ph)
	dc.SetColor(e.background.C)
	dc.Clear()
	return &Surface{engine: e, dc: dc}, nil
}

// NewGraphicsContextFromImage copies img into a new page of the same size.
func (e *Engine) NewGraphicsContextFromImage(img image.Image) (layout.GraphicsContext, error) {
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", layout.ErrInvalidArgument)
	}
	return &Surface{engine: e, dc: gg.NewContextForImage(img)}, nil
}

func (e *Engine) AttachGraphicsContext(gc layout.GraphicsContext) {
	if gc != nil {
		e.attached = append(e.attached, gc)
	}
}

func (e *Engine) AttachedGraphicsContexts() []layout.GraphicsContext {
	return append([]layout.GraphicsContext(nil), e.attached...)
}

// Render encodes the attached pages as one image. Several pages are stacked
// top to bottom in attach order.
func (e *Engine) Render() ([]byte, error) {
	pages, err := e.images()
	if err != nil {
		return nil, err
	}
	img := pages[0]
	if len(pages) > 1 {
		img = stack(pages, e.background)
	}
	return e.encode(img)
}

// RenderPages encodes every attached page on its own.
func (e *Engine) RenderPages() ([][]byte, error) {
	pages, err := e.images()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, 0, len(pages))
	for i, img := range pages {
		data, err := e.encode(img)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		out = append(out, data)
	}
	return out, nil
}

func (e *Engine) images() ([]image.Image, error) {
	if len(e.attached) == 0 {
		return nil, fmt.Errorf("%w: no page attached", layout.ErrLogic)
	}
	pages := make([]image.Image, 0, len(e.attached))
	for i, gc := range e.attached {
		s, ok := gc.(*Surface)
		if !ok {
			return nil, fmt.Errorf("page %d: %w: foreign surface %T", i+1, layout.ErrInvalidArgument, gc)
		}
		pages = append(pages, s.Image())
	}
	return pages, nil
}

func stack(pages []image.Image, bg *image.Uniform) image.Image {
	var w, h int
	for _, p := range pages {
		b := p.Bounds()
		w = max(w, b.Dx())
		h += b.Dy()
	}
	dc := gg.NewContext(w, h)
	dc.SetColor(bg.C)
	dc.Clear()
	y := 0
	for _, p := range pages {
		dc.DrawImage(p, 0, y)
		y += p.Bounds().Dy()
	}
	return dc.Image()
}

func (e *Engine) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch e.format {
	case FormatTIFF:
		err = tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate})
	case FormatBMP:
		err = bmp.Encode(&buf, img)
	default:
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.format, err)
	}
	return buf.Bytes(), nil
}

// MeasureText measures a single line in pixels with the default face.
func (e *Engine) MeasureText(text string, size float64) (float64, float64, error) {
	face, err := e.face(layout.FontSpec{Size: size})
	if err != nil {
		return 0, 0, err
	}
	w := font.MeasureString(face, text)
	return fixedToFloat(w), fixedToFloat(face.Metrics().Height), nil
}

func (e *Engine) face(spec layout.FontSpec) (font.Face, error) {
	name := spec.Family
	if name == "" {
		name = e.defaultFont
	}
	if name == "" {
		name = FallbackFont
	}
	size := spec.Size
	if size <= 0 {
		size = 12
	}
	key := faceKey{family: name, size: size}

	e.faceMu.Lock()
	defer e.faceMu.Unlock()
	if f, ok := e.faces[key]; ok {
		return f, nil
	}
	f, ok := e.fonts[name]
	if !ok && name == FallbackFont {
		parsed, err := opentype.Parse(goregular.TTF)
		if err != nil {
			return basicfont.Face7x13, nil
		}
		e.fonts[FallbackFont] = parsed
		f, ok = parsed, true
	}
	if !ok {
		return nil, fmt.Errorf("font %q is not configured", name)
	}
	// size is already in pixels, so 72 dpi keeps it one to one.
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("font %q at %gpx: %w", name, size, err)
	}
	e.faces[key] = face
	return face, nil
}
