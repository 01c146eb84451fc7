package layout

import (
	"fmt"
	"math"
)

const epsilon = 1e-9

// Formatter is one step of a node's layout. Steps are stateless; per node
// state lives on the node.
type Formatter interface {
	Format(n *Node, doc *Document) error
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(n *Node, doc *Document) error

func (f FormatterFunc) Format(n *Node, doc *Document) error { return f(n, doc) }

// Chain runs formatters in order and stops at the first error.
type Chain []Formatter

func (c Chain) Format(n *Node, doc *Document) error {
	for _, f := range c {
		if err := f.Format(n, doc); err != nil {
			return err
		}
	}
	return nil
}

// ContainerChain sizes and places a container, lays out its children, then
// grows it around them.
func ContainerChain() Chain {
	return Chain{
		StandardDimensionFormatter{},
		PositionFormatter{},
		ContainerFormatter{},
		ContainerDimensionFormatter{},
		VerticalAlignFormatter{},
	}
}

// TextChain lays out a text leaf. The boundary is collapsed first so that
// repeated formatting starts from the same point.
func TextChain() Chain {
	return Chain{
		FlowResetFormatter{},
		StandardDimensionFormatter{},
		TextDimensionFormatter{},
		PositionFormatter{},
	}
}

func ImageChain() Chain {
	return Chain{
		StandardDimensionFormatter{},
		ImageDimensionFormatter{},
		PositionFormatter{},
	}
}

// PageChain only formats the page body; the page geometry is set by the
// page itself.
func PageChain() Chain {
	return Chain{ContainerFormatter{}}
}

// ContainerFormatter formats every child, in document order.
type ContainerFormatter struct{}

func (ContainerFormatter) Format(n *Node, doc *Document) error {
	for _, c := range n.children {
		if err := c.Format(doc); err != nil {
			return err
		}
	}
	return nil
}

// StandardDimensionFormatter resolves auto and percentage sizes against the
// parent's content box. Auto height starts at zero and is grown later by the
// content.
type StandardDimensionFormatter struct{}

func (StandardDimensionFormatter) Format(n *Node, _ *Document) error {
	if n.staticSize {
		return nil
	}
	var pw, ph float64
	if p := n.parent; p != nil {
		pw, ph = p.contentWidth(), p.contentHeight()
	}
	switch {
	case n.widthSpec.percent != nil:
		n.width = math.Max(n.converter.ConvertPercentage(*n.widthSpec.percent, pw), 0)
	case n.widthSpec.auto:
		if n.parent != nil && !n.IsInline() {
			n.width = math.Max(pw-n.margin.Horizontal(), 0)
		} else {
			n.width = 0
		}
	}
	switch {
	case n.heightSpec.percent != nil:
		n.height = math.Max(n.converter.ConvertPercentage(*n.heightSpec.percent, ph), 0)
	case n.heightSpec.auto:
		n.height = 0
	}
	return nil
}

// PositionFormatter places the node's rectangle inside its parent. Blocks
// stack below the previous line; inline nodes follow their inline sibling
// and wrap to a new line when they overflow the parent's content box.
type PositionFormatter struct{}

func (PositionFormatter) Format(n *Node, _ *Document) error {
	if n.staticSize || n.parent == nil {
		n.boundary.setRect(n.boundary.FirstPoint(), n.width, n.height)
		return nil
	}
	n.boundary.setRect(placement(n), n.width, n.height)
	return nil
}

func placement(n *Node) Point {
	p := n.parent
	origin := p.contentOrigin()
	idx := n.indexInParent()
	if idx <= 0 || p.children[idx-1].boundary.Len() == 0 {
		return origin.Translate(n.margin.Left, n.margin.Top)
	}
	prev := p.children[idx-1]
	if n.IsInline() && prev.IsInline() {
		x := prev.DiagonalPoint().X + prev.margin.Right
		right := origin.X + p.contentWidth()
		fits := x+n.margin.Left+n.width+n.margin.Right <= right+epsilon
		if fits || p.contentWidth() <= 0 {
			rowTop := prev.FirstPoint().Y + prev.margin.Top
			return Point{X: x + n.margin.Left, Y: rowTop - n.margin.Top}
		}
	}
	return Point{X: origin.X + n.margin.Left, Y: lineBottom(p, idx-1) - n.margin.Top}
}

// lineBottom returns the lowest margin edge of the line ending with child i.
func lineBottom(p *Node, i int) float64 {
	last := p.children[i]
	if !last.IsInline() {
		return last.DiagonalPoint().Y - last.margin.Bottom
	}
	rowTop := last.FirstPoint().Y + last.margin.Top
	bottom := math.Inf(1)
	for j := i; j >= 0; j-- {
		s := p.children[j]
		if !s.IsInline() || s.boundary.Len() == 0 || abs(s.FirstPoint().Y+s.margin.Top-rowTop) > epsilon {
			break
		}
		bottom = math.Min(bottom, s.DiagonalPoint().Y-s.margin.Bottom)
	}
	return bottom
}

// ContainerDimensionFormatter grows a container so that it encloses the
// margin boxes of its children. Height only grows. Inline containers take
// the computed width as is; block containers only grow.
type ContainerDimensionFormatter struct{}

func (ContainerDimensionFormatter) Format(n *Node, _ *Document) error {
	if n.staticSize {
		return nil
	}
	var minX, maxX, minY, maxY float64
	found := false
	for _, c := range n.children {
		if c.boundary.Len() == 0 {
			continue
		}
		first, diag := c.FirstPoint(), c.DiagonalPoint()
		left, right := first.X-c.margin.Left, diag.X+c.margin.Right
		top, bottom := first.Y+c.margin.Top, diag.Y-c.margin.Bottom
		if !found {
			minX, maxX, minY, maxY = left, right, bottom, top
			found = true
			continue
		}
		// Strict comparisons: on ties the extreme found first is kept.
		if right > maxX {
			maxX = right
		}
		if top > maxY {
			maxY = top
		}
		if left < minX {
			minX = left
		}
		if bottom < minY {
			minY = bottom
		}
	}
	if !found {
		return nil
	}
	realWidth := n.padding.Horizontal() + (maxX - minX)
	realHeight := n.padding.Vertical() + (maxY - minY)
	if realHeight > n.height {
		n.height = realHeight
	}
	if n.IsInline() || realWidth > n.width {
		n.width = realWidth
	}
	n.resize()
	return nil
}

// VerticalAlignFormatter shifts children down inside a container taller
// than its content.
type VerticalAlignFormatter struct{}

func (VerticalAlignFormatter) Format(n *Node, _ *Document) error {
	if n.valign == VerticalAlignTop || len(n.children) == 0 {
		return nil
	}
	top, bottom := math.Inf(-1), math.Inf(1)
	for _, c := range n.children {
		if c.boundary.Len() == 0 {
			continue
		}
		top = math.Max(top, c.FirstPoint().Y+c.margin.Top)
		bottom = math.Min(bottom, c.DiagonalPoint().Y-c.margin.Bottom)
	}
	if math.IsInf(top, 0) {
		return nil
	}
	free := n.contentHeight() - (top - bottom)
	if free <= epsilon {
		return nil
	}
	shift := free
	if n.valign == VerticalAlignMiddle {
		shift = free / 2
	}
	for _, c := range n.children {
		c.translateTree(0, shift)
	}
	return nil
}

// FlowResetFormatter collapses the boundary to its first point.
type FlowResetFormatter struct{}

func (FlowResetFormatter) Format(n *Node, _ *Document) error {
	if n.boundary.Len() > 0 {
		n.boundary.ResetTo(n.boundary.FirstPoint())
	}
	return nil
}

// TextDimensionFormatter measures a text node. Page placeholders such as
// ${page.number} are expanded first so the measured text is what gets
// painted. Static nodes keep their size; the measured height is still
// recorded for vertical alignment.
type TextDimensionFormatter struct{}

func (TextDimensionFormatter) Format(n *Node, doc *Document) error {
	if n.text == nil {
		return nil
	}
	n.text.rendered = n.text.interpolate(n, doc)
	w, h, err := doc.Measurer().MeasureText(n.text.rendered, n.text.size)
	if err != nil {
		return fmt.Errorf("measure text %q: %w", n.label(), err)
	}
	n.text.measuredHeight = h
	if n.staticSize {
		return nil
	}
	if n.widthSpec.auto && (n.IsInline() || n.parent == nil) {
		n.width = w + n.padding.Horizontal()
	}
	if n.heightSpec.auto {
		n.height = h + n.padding.Vertical()
	}
	return nil
}

// ImageDimensionFormatter sizes an image from its pixel bounds. When only
// one side is declared the other keeps the aspect ratio.
type ImageDimensionFormatter struct{}

func (ImageDimensionFormatter) Format(n *Node, _ *Document) error {
	if n.image == nil || n.staticSize {
		return nil
	}
	b := n.image.img.Bounds()
	natW := n.converter.Convert(Of(float64(b.Dx()), UnitPX)).Value
	natH := n.converter.Convert(Of(float64(b.Dy()), UnitPX)).Value
	autoW := n.widthSpec.auto && (n.IsInline() || n.parent == nil)
	autoH := n.heightSpec.auto
	switch {
	case autoW && autoH:
		n.width, n.height = natW, natH
	case autoH && natW > 0:
		n.height = n.width * natH / natW
	case autoW && natH > 0:
		n.width = n.height * natW / natH
	}
	return nil
}
