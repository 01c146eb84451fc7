package layout

import (
	"fmt"
	"image"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ByLCY/papyrus/binding"
)

const defaultFontSize = "12pt"

type textContent struct {
	raw      string
	rendered string
	size     float64
	family   string
	color    Color

	measuredHeight float64
}

// interpolate expands page placeholders once the node is attached to a page
// with a context. Without one the raw text is kept.
func (t *textContent) interpolate(n *Node, doc *Document) string {
	if !binding.HasPlaceholders(t.raw) {
		return t.raw
	}
	page := n.Page()
	if page == nil || page.ctx == nil {
		return t.raw
	}
	total := page.ctx.Number
	if doc != nil {
		total = max(total, len(doc.pages))
	}
	return binding.Interpolate(t.raw, binding.Values{
		"page": map[string]int{"number": page.ctx.Number, "total": total},
	})
}

// NewText builds a single-line text leaf. content may reference
// ${page.number} and ${page.total}.
func NewText(content string, cfg TextConfig, opts ...NodeOption) (*Node, error) {
	n, err := newNode(KindText, cfg.BoxConfig, TextChain(), opts)
	if err != nil {
		return nil, err
	}
	raw := cfg.FontSize
	if strings.TrimSpace(raw) == "" {
		raw = defaultFontSize
	}
	size, err := ConvertUnit(n.converter, raw)
	if err != nil {
		return nil, fmt.Errorf("font size: %w", err)
	}
	if size <= 0 {
		return nil, invalidArgf("font size must be positive, %q given", raw)
	}
	n.text = &textContent{raw: content, rendered: content, size: size, family: cfg.Font, color: cfg.Color}
	n.paint = paintText
	return n, nil
}

// Text returns the text as last laid out.
func (n *Node) Text() string {
	if n.text == nil {
		return ""
	}
	return n.text.rendered
}

func paintText(gc GraphicsContext, n *Node) error {
	at := n.contentOrigin().Translate(0, n.alignOffset(n.text.measuredHeight))
	return gc.DrawText(n.text.rendered, at, FontSpec{Family: n.text.family, Size: n.text.size, Color: n.text.color})
}

type imageContent struct {
	img image.Image
}

// NewImage builds an image leaf. Auto sizes come from the pixel bounds of
// img.
func NewImage(img image.Image, cfg BoxConfig, opts ...NodeOption) (*Node, error) {
	if img == nil {
		return nil, invalidArgf("image is nil")
	}
	n, err := newNode(KindImage, cfg, ImageChain(), opts)
	if err != nil {
		return nil, err
	}
	n.image = &imageContent{img: img}
	n.paint = paintImage
	return n, nil
}

// paintImage stretches the image over the content box. Static nodes keep the
// image's natural size instead, shrunk to fit and aligned vertically.
func paintImage(gc GraphicsContext, n *Node) error {
	topLeft := n.contentOrigin()
	w, h := n.contentWidth(), n.contentHeight()
	if n.staticSize {
		w, h = n.image.fit(n.converter, w, h)
		topLeft = topLeft.Translate(0, n.alignOffset(h))
	}
	return gc.DrawImage(n.image.img, topLeft, topLeft.Translate(w, h))
}

// fit returns the natural size of the image, scaled down to fit w by h.
func (c *imageContent) fit(conv UnitConverter, w, h float64) (float64, float64) {
	b := c.img.Bounds()
	natW := conv.Convert(Of(float64(b.Dx()), UnitPX)).Value
	natH := conv.Convert(Of(float64(b.Dy()), UnitPX)).Value
	if natW <= 0 || natH <= 0 {
		return w, h
	}
	scale := math.Min(1, math.Min(w/natW, h/natH))
	return natW * scale, natH * scale
}

// EstimateMeasurer approximates text extents when no font metrics are
// available: every rune is a little more than half the font size wide.
type EstimateMeasurer struct{}

func (EstimateMeasurer) MeasureText(text string, size float64) (float64, float64, error) {
	if size <= 0 {
		size = 12
	}
	lines := strings.Split(text, "\n")
	maxChars := 0
	for _, line := range lines {
		maxChars = max(maxChars, utf8.RuneCountInString(line))
	}
	return size * 0.55 * float64(maxChars+1), size * float64(len(lines)), nil
}
