package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ByLCY/papyrus/dsl"
)

// Placeholder slot names.
const (
	PlaceholderHeader    = "header"
	PlaceholderFooter    = "footer"
	PlaceholderWatermark = "watermark"
)

// PageContext is a page's handle in its document's registry. It does not
// own the document.
type PageContext struct {
	Number   int // 1-based
	Document uuid.UUID
}

// Page is the root of a layout tree. Its own width and height, as reported
// by Width and Height, are those of the inner boundary left over after
// margins, header and footer; PageWidth and PageHeight give the surface
// size.
type Page struct {
	Node

	size                    string
	pageWidth, pageHeight   float64
	header, footer, watermk *Node

	ctx *PageContext

	template         string
	templateEncoding string
	templateApplied  bool

	gc           GraphicsContext
	prepared     bool
	surfaceTasks []*DrawingTask
	painted      map[*DrawingTask]bool
}

// NewPage builds a page from cfg. Size defaults to A4. Lengths are resolved
// with the converter given through WithConverter.
func NewPage(cfg PageConfig, opts ...NodeOption) (*Page, error) {
	p := &Page{}
	p.Node = Node{
		kind:      KindPage,
		boundary:  NewBoundary(),
		converter: IdentityConverter{},
		chain:     PageChain(),
	}
	for _, opt := range opts {
		opt(&p.Node)
	}
	p.Node.page = p

	size := cfg.Size
	if strings.TrimSpace(size) == "" {
		size = DefaultPageSize
	}
	if err := p.SetPageSize(size); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Margin) != "" {
		m, err := p.resolveEdges(cfg.Margin, "margin")
		if err != nil {
			return nil, err
		}
		if err := p.setMargin(m); err != nil {
			return nil, err
		}
	}
	if cfg.Template != "" {
		p.SetTemplate(cfg.Template, cfg.TemplateEncoding)
	}
	if cfg.Background != nil {
		p.decorations = append(p.decorations, PageBackground{Color: *cfg.Background})
	}
	return p, nil
}

// SetPageSize accepts "W:H" with independently converted sides, or a preset
// name with an optional landscape suffix ("a4-landscape", "LETTER
// landscape").
func (p *Page) SetPageSize(spec string) error {
	ps, err := dsl.ParsePageSize(spec)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	var w, h float64
	if ps.Preset != "" {
		pw, ph, ok := PresetSize(ps.Preset)
		if !ok {
			return invalidArgf("unknown page size %q", spec)
		}
		w = p.converter.Convert(Of(pw, UnitPT)).Value
		h = p.converter.Convert(Of(ph, UnitPT)).Value
		if ps.Landscape {
			w, h = h, w
		}
	} else {
		if w, err = p.pageSide(ps.Width, spec); err != nil {
			return err
		}
		if h, err = p.pageSide(ps.Height, spec); err != nil {
			return err
		}
	}
	if err := p.setSurface(w, h); err != nil {
		return err
	}
	p.size = strings.TrimSpace(spec)
	return nil
}

func (p *Page) pageSide(raw, spec string) (float64, error) {
	v, err := ConvertUnit(p.converter, raw)
	if err != nil {
		return 0, fmt.Errorf("page size %q: %w", spec, err)
	}
	if v <= 0 {
		return 0, invalidArgf("page size %q: sides must be positive", spec)
	}
	return v, nil
}

// PageSize returns the size as last set: a preset spec or "W:H".
func (p *Page) PageSize() string { return p.size }

func (p *Page) PageWidth() float64  { return p.pageWidth }
func (p *Page) PageHeight() float64 { return p.pageHeight }

// SetWidth changes the surface width and rewrites the page size as "W:H".
func (p *Page) SetWidth(w float64) error {
	if err := p.setSurface(w, p.pageHeight); err != nil {
		return err
	}
	p.size = formatSize(p.pageWidth, p.pageHeight)
	return nil
}

// SetHeight changes the surface height and rewrites the page size as "W:H".
func (p *Page) SetHeight(h float64) error {
	if err := p.setSurface(p.pageWidth, h); err != nil {
		return err
	}
	p.size = formatSize(p.pageWidth, p.pageHeight)
	return nil
}

func formatSize(w, h float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64) + ":" + strconv.FormatFloat(h, 'f', -1, 64)
}

func (p *Page) setSurface(w, h float64) error {
	if w <= 0 || h <= 0 {
		return invalidArgf("page sides must be positive, got %gx%g", w, h)
	}
	oldW, oldH := p.pageWidth, p.pageHeight
	p.pageWidth, p.pageHeight = w, h
	if err := p.reflow(); err != nil {
		p.pageWidth, p.pageHeight = oldW, oldH
		return err
	}
	return nil
}

// SetMargin shrinks the inner boundary. It takes the same one to four values
// as a CSS margin: (all), (vertical, horizontal), (top, horizontal, bottom)
// or (top, right, bottom, left).
func (p *Page) SetMargin(vals ...float64) error {
	if len(vals) == 0 || len(vals) > 4 {
		return invalidArgf("margin takes 1 to 4 values, %d given", len(vals))
	}
	for _, v := range vals {
		if v < 0 {
			return invalidArgf("margin must not be negative, %g given", v)
		}
	}
	return p.setMargin(EdgesFrom(vals...))
}

func (p *Page) setMargin(m Edges) error {
	old := p.margin
	p.margin = m
	if err := p.reflow(); err != nil {
		p.margin = old
		return err
	}
	return nil
}

// SetHeader attaches n flush to the top of the inner boundary, spanning its
// width. n must declare a fixed height.
func (p *Page) SetHeader(n *Node) error { return p.setPlaceholder(&p.header, n, PlaceholderHeader) }

// SetFooter attaches n flush to the bottom of the inner boundary.
func (p *Page) SetFooter(n *Node) error { return p.setPlaceholder(&p.footer, n, PlaceholderFooter) }

// SetWatermark stretches n over the whole surface, ignoring margins, and
// centers its content vertically.
func (p *Page) SetWatermark(n *Node) error {
	return p.setPlaceholder(&p.watermk, n, PlaceholderWatermark)
}

func (p *Page) setPlaceholder(slot **Node, n *Node, name string) error {
	if n == nil {
		return invalidArgf("%s node is nil", name)
	}
	if n.kind == KindPage {
		return invalidArgf("a page cannot be a %s", name)
	}
	if n.parent != nil {
		return fmt.Errorf("%w: %s node already has a parent", ErrLogic, name)
	}
	if name != PlaceholderWatermark && !n.HasFixedHeight() {
		return invalidArgf("%s must have a fixed height", name)
	}
	old := *slot
	*slot = n
	if err := p.reflow(); err != nil {
		*slot = old
		return err
	}
	if old != nil && old != n {
		old.page = nil
		old.staticSize = false
	}
	n.staticSize = true
	n.page = p
	if name == PlaceholderWatermark {
		n.valign = VerticalAlignMiddle
	}
	p.resetSurfaceTasks()
	return nil
}

// Header, Footer and Watermark return the attached placeholders, or nil.
func (p *Page) Header() *Node    { return p.header }
func (p *Page) Footer() *Node    { return p.footer }
func (p *Page) Watermark() *Node { return p.watermk }

// Placeholder returns a placeholder by slot name.
func (p *Page) Placeholder(name string) *Node {
	switch name {
	case PlaceholderHeader:
		return p.header
	case PlaceholderFooter:
		return p.footer
	case PlaceholderWatermark:
		return p.watermk
	default:
		return nil
	}
}

// reflow rebuilds the inner boundary and the placeholder boxes from the
// page size, margins and placeholder heights. Nothing changes on error.
func (p *Page) reflow() error {
	w, h := p.pageWidth, p.pageHeight
	m := p.margin
	inner := RectBoundary(Point{Y: h}, w, h)
	inner.TranslatePoint(0, m.Left, m.Top)
	inner.TranslatePoint(1, -m.Right, m.Top)
	inner.TranslatePoint(2, -m.Right, -m.Bottom)
	inner.TranslatePoint(3, m.Left, -m.Bottom)
	if err := checkInner(inner, "margins"); err != nil {
		return err
	}

	var header, footer *Boundary
	if p.header != nil {
		hh := p.header.height
		header = RectBoundary(inner.At(0), inner.Width(), hh)
		inner.TranslatePoint(0, 0, hh)
		inner.TranslatePoint(1, 0, hh)
		if err := checkInner(inner, "header"); err != nil {
			return err
		}
	}
	if p.footer != nil {
		fh := p.footer.height
		footer = RectBoundary(inner.At(3).Translate(0, -fh), inner.Width(), fh)
		inner.TranslatePoint(2, 0, -fh)
		inner.TranslatePoint(3, 0, -fh)
		if err := checkInner(inner, "footer"); err != nil {
			return err
		}
	}

	p.boundary = inner
	p.width, p.height = inner.Width(), inner.Height()
	placeBox(p.header, header)
	placeBox(p.footer, footer)
	placeBox(p.watermk, RectBoundary(Point{Y: h}, w, h))
	return nil
}

func checkInner(b *Boundary, cause string) error {
	first, diag := b.FirstPoint(), b.DiagonalPoint()
	if first.X > diag.X+epsilon || first.Y < diag.Y-epsilon {
		return invalidArgf("%s leave no room on the page", cause)
	}
	return nil
}

func placeBox(n *Node, b *Boundary) {
	if n == nil || b == nil {
		return
	}
	n.boundary = b
	n.width, n.height = b.Width(), b.Height()
}

// SetContext attaches the page to a document registry slot.
func (p *Page) SetContext(ctx PageContext) {
	c := ctx
	p.ctx = &c
}

// Context returns the page's registry handle. It fails with ErrLogic if the
// page was never added to a document.
func (p *Page) Context() (PageContext, error) {
	if p.ctx == nil {
		return PageContext{}, fmt.Errorf("%w: page has no context", ErrLogic)
	}
	return *p.ctx, nil
}

// SetTemplate configures a template document whose surfaces seed this
// page. encoding defaults to utf-8.
func (p *Page) SetTemplate(path, encoding string) {
	if encoding == "" {
		encoding = "utf-8"
	}
	p.template, p.templateEncoding = path, encoding
	p.templateApplied = false
	p.resetSurfaceTasks()
}

func (p *Page) Template() string { return p.template }

// GraphicsContext returns the page surface, or nil before drawing starts.
func (p *Page) GraphicsContext() GraphicsContext { return p.gc }

// SetGraphicsContext replaces the page surface.
func (p *Page) SetGraphicsContext(gc GraphicsContext) {
	p.gc = gc
	p.resetSurfaceTasks()
}

// Format lays out the page body. Placeholders are not formatted here; they
// are formatted once, when their drawing tasks are first needed.
func (p *Page) Format(doc *Document) error {
	if err := p.applyTemplate(doc); err != nil {
		return err
	}
	return p.Node.Format(doc)
}

func (p *Page) applyTemplate(doc *Document) error {
	if p.template == "" || p.templateApplied {
		return nil
	}
	src, err := doc.LoadTemplate(p.template, p.templateEncoding)
	if err != nil {
		return err
	}
	gcs := src.AttachedGraphicsContexts()
	if len(gcs) == 0 {
		return invalidArgf("template %q has no pages", p.template)
	}
	idx := 0
	if p.ctx != nil && p.ctx.Number > 0 {
		idx = (p.ctx.Number - 1) % len(gcs)
	}
	gc := gcs[idx].Copy()
	if err := p.setSurface(gc.Width(), gc.Height()); err != nil {
		return fmt.Errorf("template %q: %w", p.template, err)
	}
	p.size = formatSize(p.pageWidth, p.pageHeight)
	p.gc = gc
	p.templateApplied = true
	p.resetSurfaceTasks()
	return nil
}

func (p *Page) ensureGraphicsContext(doc *Document) (GraphicsContext, error) {
	if p.gc != nil {
		return p.gc, nil
	}
	if doc == nil || doc.engine == nil {
		return nil, fmt.Errorf("%w: page has no graphics context and no engine", ErrLogic)
	}
	gc, err := doc.engine.NewGraphicsContext(p.pageWidth, p.pageHeight)
	if err != nil {
		return nil, fmt.Errorf("new graphics context: %w", err)
	}
	p.gc = gc
	return gc, nil
}

// PrepareTemplate paints the page decorations and the placeholders onto
// the page surface ahead of the body. Later collections skip them. When a
// task fails, the ones that already ran are not painted again.
func (p *Page) PrepareTemplate(doc *Document) error {
	if p.prepared {
		return nil
	}
	if err := p.applyTemplate(doc); err != nil {
		return err
	}
	tasks, err := p.pendingSurfaceTasks(doc)
	if err != nil {
		return err
	}
	q := NewTaskQueue(doc.Logger())
	for _, t := range tasks {
		t := t
		q.Insert(NewDrawingTask(t.name, t.priority, func() error {
			if t.action != nil {
				if err := t.action(); err != nil {
					return err
				}
			}
			p.painted[t] = true
			return nil
		}))
	}
	if err := q.Invoke(); err != nil {
		return err
	}
	p.prepared = true
	return nil
}

// IsPrepared reports whether placeholders were already painted.
func (p *Page) IsPrepared() bool { return p.prepared }

// CollectOrderedDrawingTasks inserts every task needed to paint the page
// into q: page decorations and placeholders unless already prepared, then
// the body. The page must be formatted first.
func (p *Page) CollectOrderedDrawingTasks(doc *Document, q *TaskQueue) error {
	gc, err := p.ensureGraphicsContext(doc)
	if err != nil {
		return err
	}
	if !p.prepared {
		tasks, err := p.pendingSurfaceTasks(doc)
		if err != nil {
			return err
		}
		q.Insert(tasks...)
	}
	for _, c := range p.children {
		q.Insert(c.DrawingTasks(gc)...)
	}
	return nil
}

// pendingSurfaceTasks returns the surface tasks PrepareTemplate has not
// painted yet.
func (p *Page) pendingSurfaceTasks(doc *Document) ([]*DrawingTask, error) {
	tasks, err := p.surfaceDrawingTasks(doc)
	if err != nil {
		return nil, err
	}
	pending := make([]*DrawingTask, 0, len(tasks))
	for _, t := range tasks {
		if !p.painted[t] {
			pending = append(pending, t)
		}
	}
	return pending, nil
}

// surfaceDrawingTasks builds, on first use, the tasks for the page
// decorations and the placeholders, formatting the placeholders once. The
// page background sits below the watermark, header and footer over the
// body. A template surface replaces the page background.
func (p *Page) surfaceDrawingTasks(doc *Document) ([]*DrawingTask, error) {
	if p.surfaceTasks != nil {
		return p.surfaceTasks, nil
	}
	gc, err := p.ensureGraphicsContext(doc)
	if err != nil {
		return nil, err
	}
	tasks := []*DrawingTask{}
	for _, d := range p.decorations {
		if _, ok := d.(PageBackground); ok && p.templateApplied {
			continue
		}
		d := d
		tasks = append(tasks, NewDrawingTask(p.label()+"/"+d.Name(), d.Priority(), func() error {
			return d.Enhance(gc, &p.Node)
		}))
	}
	for _, slot := range []struct {
		n        *Node
		priority Priority
	}{
		{p.watermk, PriorityWatermark},
		{p.header, PriorityOverlay},
		{p.footer, PriorityOverlay},
	} {
		if slot.n == nil {
			continue
		}
		if err := slot.n.Format(doc); err != nil {
			return nil, fmt.Errorf("format placeholder %q: %w", slot.n.label(), err)
		}
		for _, t := range slot.n.DrawingTasks(gc) {
			tasks = append(tasks, NewDrawingTask(t.name, slot.priority, t.action))
		}
	}
	p.surfaceTasks = tasks
	p.painted = make(map[*DrawingTask]bool, len(tasks))
	return tasks, nil
}

func (p *Page) resetSurfaceTasks() {
	p.surfaceTasks = nil
	p.painted = nil
}

// Copy returns an independent page with the same size, margins,
// placeholders and body. The surface is copied only if one exists; the
// copy has no context.
func (p *Page) Copy() *Page {
	cp := &Page{
		size:             p.size,
		pageWidth:        p.pageWidth,
		pageHeight:       p.pageHeight,
		template:         p.template,
		templateEncoding: p.templateEncoding,
		templateApplied:  p.templateApplied,
		prepared:         p.prepared,
	}
	cp.Node = *p.Node.Clone()
	cp.Node.page = cp
	for _, c := range cp.Node.children {
		c.parent = &cp.Node
	}
	cp.header = clonePlaceholder(p.header, cp)
	cp.footer = clonePlaceholder(p.footer, cp)
	cp.watermk = clonePlaceholder(p.watermk, cp)
	if p.gc != nil {
		cp.gc = p.gc.Copy()
	}
	return cp
}

func clonePlaceholder(n *Node, owner *Page) *Node {
	if n == nil {
		return nil
	}
	c := n.Clone()
	c.page = owner
	return c
}
