package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/ByLCY/papyrus/dsl"
)

// Kind distinguishes the node variants that share the box model.
type Kind int

const (
	KindContainer Kind = iota
	KindText
	KindImage
	KindPage
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindPage:
		return "page"
	default:
		return "container"
	}
}

// dimension is a declared width or height before layout.
type dimension struct {
	auto    bool
	percent *Length
}

func (d dimension) fixed() bool { return !d.auto && d.percent == nil }

// Node is a box in the layout tree. Structural attributes are fixed at
// construction; formatting only changes its size and boundary. A node owns
// its children and its boundary.
type Node struct {
	kind Kind
	name string

	width, height         float64
	widthSpec, heightSpec dimension
	margin, padding       Edges
	display               Display
	valign                VerticalAlign
	staticSize            bool

	parent   *Node
	children []*Node
	page     *Page // set on page roots and placeholders only

	boundary    *Boundary
	converter   UnitConverter
	decorations []Decoration
	chain       Chain
	paint       func(gc GraphicsContext, n *Node) error

	text  *textContent
	image *imageContent
}

// NewNode builds a container node.
func NewNode(cfg BoxConfig, opts ...NodeOption) (*Node, error) {
	return newNode(KindContainer, cfg, ContainerChain(), opts)
}

func newNode(kind Kind, cfg BoxConfig, chain Chain, opts []NodeOption) (*Node, error) {
	n := &Node{
		kind:      kind,
		boundary:  NewBoundary(),
		converter: IdentityConverter{},
		chain:     chain,
	}
	for _, opt := range opts {
		opt(n)
	}
	if err := n.applyBox(cfg); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Node) applyBox(cfg BoxConfig) error {
	var err error
	if n.widthSpec, n.width, err = n.resolveSize(cfg.Width, "width"); err != nil {
		return err
	}
	if n.heightSpec, n.height, err = n.resolveSize(cfg.Height, "height"); err != nil {
		return err
	}
	if n.margin, err = n.resolveEdges(cfg.Margin, "margin"); err != nil {
		return err
	}
	if n.padding, err = n.resolveEdges(cfg.Padding, "padding"); err != nil {
		return err
	}
	n.display = cfg.Display
	n.valign = cfg.VerticalAlign
	if cfg.Background != nil {
		n.decorations = append(n.decorations, Background{Color: *cfg.Background})
	}
	if cfg.Border != nil {
		w := 0.0
		if cfg.Border.Width != "" {
			if w, err = ConvertUnit(n.converter, cfg.Border.Width); err != nil {
				return fmt.Errorf("border width: %w", err)
			}
		}
		n.decorations = append(n.decorations, Border{Color: cfg.Border.Color, Width: w})
	}
	return nil
}

func (n *Node) resolveSize(raw, attr string) (dimension, float64, error) {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, "auto") {
		return dimension{auto: true}, 0, nil
	}
	l, err := ParseLength(v)
	if err != nil {
		return dimension{}, 0, fmt.Errorf("%s: %w", attr, err)
	}
	if l.Value < 0 {
		return dimension{}, 0, invalidArgf("%s must not be negative, %q given", attr, raw)
	}
	if l.IsPercent() {
		return dimension{percent: &l}, 0, nil
	}
	size := n.converter.Convert(l).Value
	if math.IsNaN(size) || math.IsInf(size, 0) {
		return dimension{}, 0, invalidArgf("%s %q is not finite", attr, raw)
	}
	return dimension{}, size, nil
}

func (n *Node) resolveEdges(raw, attr string) (Edges, error) {
	if strings.TrimSpace(raw) == "" {
		return Edges{}, nil
	}
	parts, err := dsl.ParseBox(raw)
	if err != nil {
		return Edges{}, fmt.Errorf("%w: %s: %v", ErrInvalidArgument, attr, err)
	}
	vals := make([]float64, 0, len(parts))
	for _, p := range parts {
		l, err := ParseLength(p)
		if err != nil {
			return Edges{}, fmt.Errorf("%s: %w", attr, err)
		}
		if l.IsPercent() {
			return Edges{}, invalidArgf("%s: percentages are not supported, %q given", attr, raw)
		}
		vals = append(vals, math.Max(n.converter.Convert(l).Value, 0))
	}
	return EdgesFrom(vals...), nil
}

func (n *Node) Kind() Kind   { return n.kind }
func (n *Node) Name() string { return n.name }

func (n *Node) label() string {
	if n.name != "" {
		return n.name
	}
	return n.kind.String()
}

func (n *Node) Width() float64  { return n.width }
func (n *Node) Height() float64 { return n.height }

// SetWidth fixes the declared width. Negative values are clamped to zero.
func (n *Node) SetWidth(w float64) {
	n.widthSpec = dimension{}
	n.width = math.Max(w, 0)
	n.resize()
}

// SetHeight fixes the declared height. Negative values are clamped to zero.
func (n *Node) SetHeight(h float64) {
	n.heightSpec = dimension{}
	n.height = math.Max(h, 0)
	n.resize()
}

// HasFixedHeight reports whether the node declares a finite height of its
// own, independent of its parent or content.
func (n *Node) HasFixedHeight() bool {
	return n.heightSpec.fixed() && !math.IsNaN(n.height) && !math.IsInf(n.height, 0)
}

func (n *Node) Margin() Edges                { return n.margin }
func (n *Node) Padding() Edges               { return n.padding }
func (n *Node) Display() Display             { return n.display }
func (n *Node) IsInline() bool               { return n.display == DisplayInline }
func (n *Node) VerticalAlign() VerticalAlign { return n.valign }
func (n *Node) Converter() UnitConverter     { return n.converter }
func (n *Node) Decorations() []Decoration    { return append([]Decoration(nil), n.decorations...) }

// SetStaticSize pins the node's size and position; placeholders use it so
// that the formatter chain only lays out their content.
func (n *Node) SetStaticSize(static bool) { n.staticSize = static }
func (n *Node) IsStaticSize() bool        { return n.staticSize }

func (n *Node) Boundary() *Boundary  { return n.boundary }
func (n *Node) FirstPoint() Point    { return n.boundary.FirstPoint() }
func (n *Node) DiagonalPoint() Point { return n.boundary.DiagonalPoint() }

func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children in document order.
func (n *Node) Children() []*Node { return append([]*Node(nil), n.children...) }

// Add appends child. A node can only have one parent and pages cannot be
// nested.
func (n *Node) Add(children ...*Node) error {
	for _, c := range children {
		if c == nil {
			continue
		}
		if c.kind == KindPage {
			return invalidArgf("a page cannot be a child node")
		}
		if c.parent != nil {
			return fmt.Errorf("%w: node %q already has a parent", ErrLogic, c.label())
		}
		c.parent = n
		n.children = append(n.children, c)
	}
	return nil
}

// Page returns the page the node belongs to, or nil when detached.
func (n *Node) Page() *Page {
	root := n
	for root.parent != nil {
		root = root.parent
	}
	return root.page
}

// Format runs the node's formatter chain; containers format their subtree.
func (n *Node) Format(doc *Document) error {
	return n.chain.Format(n, doc)
}

// DrawingTasks returns the tasks painting n and its subtree on gc, in
// document order. Decorations come before the node's own content.
func (n *Node) DrawingTasks(gc GraphicsContext) []*DrawingTask {
	var tasks []*DrawingTask
	n.appendTasks(gc, &tasks)
	return tasks
}

func (n *Node) appendTasks(gc GraphicsContext, tasks *[]*DrawingTask) {
	for _, d := range n.decorations {
		d := d
		*tasks = append(*tasks, NewDrawingTask(n.label()+"/"+d.Name(), d.Priority(), func() error {
			return d.Enhance(gc, n)
		}))
	}
	if n.paint != nil {
		*tasks = append(*tasks, NewDrawingTask(n.label(), PriorityContent, func() error {
			return n.paint(gc, n)
		}))
	}
	for _, c := range n.children {
		c.appendTasks(gc, tasks)
	}
}

// Clone deep-copies the node and its subtree. The copy is detached.
func (n *Node) Clone() *Node {
	cp := new(Node)
	*cp = *n
	cp.parent = nil
	cp.page = nil
	cp.boundary = n.boundary.Clone()
	cp.decorations = append([]Decoration(nil), n.decorations...)
	if n.text != nil {
		t := *n.text
		cp.text = &t
	}
	cp.children = make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		cc := c.Clone()
		cc.parent = cp
		cp.children = append(cp.children, cc)
	}
	return cp
}

func (n *Node) contentOrigin() Point {
	return n.boundary.FirstPoint().Translate(n.padding.Left, n.padding.Top)
}

// alignOffset is how far content of the given height moves down inside the
// content box under the node's vertical alignment.
func (n *Node) alignOffset(extent float64) float64 {
	free := n.contentHeight() - extent
	if free <= epsilon {
		return 0
	}
	switch n.valign {
	case VerticalAlignMiddle:
		return free / 2
	case VerticalAlignBottom:
		return free
	default:
		return 0
	}
}

func (n *Node) contentWidth() float64 {
	return math.Max(n.width-n.padding.Horizontal(), 0)
}

func (n *Node) contentHeight() float64 {
	return math.Max(n.height-n.padding.Vertical(), 0)
}

// resize redraws a laid out rectangle after a size change, keeping its
// top-left corner.
func (n *Node) resize() {
	if n.boundary.Len() == 0 {
		return
	}
	n.boundary.setRect(n.boundary.FirstPoint(), n.width, n.height)
}

func (n *Node) translateTree(dx, dy float64) {
	n.boundary.Translate(dx, dy)
	for _, c := range n.children {
		c.translateTree(dx, dy)
	}
}

func (n *Node) indexInParent() int {
	if n.parent == nil {
		return -1
	}
	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}
	return -1
}
