package layout

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Document is the page registry of one build. Pages refer back to it
// through PageContext handles only.
type Document struct {
	id     uuid.UUID
	engine Engine
	pages  []*Page
	drawn  bool

	logger   *log.Logger
	loader   TemplateLoader
	measurer TextMeasurer
	filters  []StringFilter
}

// NewDocument returns an empty document drawing with engine.
func NewDocument(engine Engine, opts ...DocumentOption) (*Document, error) {
	if engine == nil {
		return nil, invalidArgf("engine is nil")
	}
	d := &Document{
		id:     uuid.New(),
		engine: engine,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

func (d *Document) ID() uuid.UUID  { return d.id }
func (d *Document) Engine() Engine { return d.engine }

func (d *Document) Logger() *log.Logger {
	if d == nil || d.logger == nil {
		return log.Default()
	}
	return d.logger
}

// Measurer returns the text measurer: the configured one, the engine if it
// can measure text, or EstimateMeasurer.
func (d *Document) Measurer() TextMeasurer {
	if d == nil {
		return EstimateMeasurer{}
	}
	if d.measurer != nil {
		return d.measurer
	}
	if m, ok := d.engine.(TextMeasurer); ok {
		return m
	}
	return EstimateMeasurer{}
}

// NewPage builds a page whose lengths use the engine's units.
func (d *Document) NewPage(cfg PageConfig, opts ...NodeOption) (*Page, error) {
	return NewPage(cfg, d.nodeOptions(opts)...)
}

// NewNode builds a container whose lengths use the engine's units.
func (d *Document) NewNode(cfg BoxConfig, opts ...NodeOption) (*Node, error) {
	return NewNode(cfg, d.nodeOptions(opts)...)
}

// NewText builds a text node whose lengths use the engine's units.
func (d *Document) NewText(content string, cfg TextConfig, opts ...NodeOption) (*Node, error) {
	return NewText(content, cfg, d.nodeOptions(opts)...)
}

// NewImage builds an image node whose lengths use the engine's units.
func (d *Document) NewImage(img image.Image, cfg BoxConfig, opts ...NodeOption) (*Node, error) {
	return NewImage(img, cfg, d.nodeOptions(opts)...)
}

func (d *Document) nodeOptions(opts []NodeOption) []NodeOption {
	return append([]NodeOption{WithConverter(d.engine)}, opts...)
}

// AddPage registers p and attaches its context.
func (d *Document) AddPage(p *Page) (PageContext, error) {
	if p == nil {
		return PageContext{}, invalidArgf("page is nil")
	}
	if p.ctx != nil {
		return PageContext{}, fmt.Errorf("%w: page already registered as #%d", ErrLogic, p.ctx.Number)
	}
	d.pages = append(d.pages, p)
	ctx := PageContext{Number: len(d.pages), Document: d.id}
	p.SetContext(ctx)
	return ctx, nil
}

// Pages returns the registered pages in order.
func (d *Document) Pages() []*Page { return append([]*Page(nil), d.pages...) }

// PageCount is the number of registered pages.
func (d *Document) PageCount() int { return len(d.pages) }

// Page resolves a handle returned by AddPage.
func (d *Document) Page(ctx PageContext) (*Page, error) {
	if ctx.Document != d.id {
		return nil, fmt.Errorf("%w: page context belongs to document %s", ErrLogic, ctx.Document)
	}
	if ctx.Number < 1 || ctx.Number > len(d.pages) {
		return nil, invalidArgf("page number %d out of range [1, %d]", ctx.Number, len(d.pages))
	}
	return d.pages[ctx.Number-1], nil
}

// LoadTemplate opens a template document through the configured loader,
// after passing path through the string filters.
func (d *Document) LoadTemplate(path, encoding string) (TemplateSource, error) {
	if d == nil || d.loader == nil {
		return nil, fmt.Errorf("%w: no template loader configured", ErrLogic)
	}
	resolved := applyFilters(d.filters, path)
	src, err := d.loader.Load(resolved, encoding)
	if err != nil {
		return nil, fmt.Errorf("load template %q: %w", resolved, err)
	}
	return src, nil
}

// Draw formats every page, schedules its drawing tasks in a fresh queue and
// runs them, then attaches the page surface to the engine. A failing page
// does not stop the others; all failures are returned joined. ctx is only
// checked between pages.
func (d *Document) Draw(ctx context.Context) error {
	if d.drawn {
		return fmt.Errorf("%w: document already drawn", ErrLogic)
	}
	d.drawn = true
	var errs []error
	for i, p := range d.pages {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := d.drawPage(p); err != nil {
			d.Logger().Error("page failed", "page", i+1, "err", err)
			errs = append(errs, fmt.Errorf("page %d: %w", i+1, err))
		}
	}
	return errors.Join(errs...)
}

func (d *Document) drawPage(p *Page) error {
	logger := d.Logger()
	if err := p.Format(d); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	logger.Debug("page formatted", "page", p.ctx.Number, "size", p.PageSize(), "children", len(p.children))
	q := NewTaskQueue(logger)
	if err := p.CollectOrderedDrawingTasks(d, q); err != nil {
		return err
	}
	logger.Debug("drawing tasks collected", "page", p.ctx.Number, "tasks", q.Len())
	err := q.Invoke()
	// Painted output survives a failing task.
	d.engine.AttachGraphicsContext(p.gc)
	return err
}

// Render encodes the attached surfaces with the engine.
func (d *Document) Render() ([]byte, error) {
	return d.engine.Render()
}
