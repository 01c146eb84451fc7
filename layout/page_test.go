package layout

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"
)

func TestSetPageSize(t *testing.T) {
	p := mustPage(t, PageConfig{})
	if p.PageWidth() != 595 || p.PageHeight() != 842 || p.PageSize() != "A4" {
		t.Fatalf("default page: %gx%g %q", p.PageWidth(), p.PageHeight(), p.PageSize())
	}
	cases := []struct {
		spec string
		w, h float64
	}{
		{"100:200", 100, 200},
		{"a4-landscape", 842, 595},
		{"A4_LANDSCAPE", 842, 595},
		{"letter", 612, 792},
		{"LEGAL landscape", 1008, 612},
		{"b5 landscape", 709, 499},
		{"c10", 79, 113},
		{"4a0", 4768, 6741},
		{"2A0", 3370, 4768},
	}
	for _, tc := range cases {
		if err := p.SetPageSize(tc.spec); err != nil {
			t.Fatalf("%q: %v", tc.spec, err)
		}
		if p.PageWidth() != tc.w || p.PageHeight() != tc.h {
			t.Fatalf("%q: got %gx%g want %gx%g", tc.spec, p.PageWidth(), p.PageHeight(), tc.w, tc.h)
		}
		if p.Width() != tc.w || p.Height() != tc.h {
			t.Fatalf("%q: inner box should match the page without margins", tc.spec)
		}
	}
	for _, spec := range []string{"100", "", "0:100", "a4-sideways", "50%:100"} {
		if err := p.SetPageSize(spec); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("%q: expected ErrInvalidArgument, got %v", spec, err)
		}
	}
	if p.PageWidth() != 3370 || p.PageHeight() != 4768 {
		t.Fatalf("failed calls must not change the page, got %gx%g", p.PageWidth(), p.PageHeight())
	}
}

func TestPageSizeConvertsSides(t *testing.T) {
	vc, _ := NewVectorConverter(72)
	p := mustPage(t, PageConfig{Size: "210mm:1in"}, WithConverter(vc))
	if !near(p.PageWidth(), 595.2755905511812) || p.PageHeight() != 72 {
		t.Fatalf("got %gx%g", p.PageWidth(), p.PageHeight())
	}
	rc, _ := NewRasterConverter(144)
	r := mustPage(t, PageConfig{Size: "a4"}, WithConverter(rc))
	if r.PageWidth() != 1190 || r.PageHeight() != 1684 {
		t.Fatalf("raster A4 at 144dpi: %gx%g", r.PageWidth(), r.PageHeight())
	}
}

func TestPageWidthHeightRewriteSize(t *testing.T) {
	p := mustPage(t, PageConfig{Size: "a4"})
	if err := p.SetWidth(123); err != nil {
		t.Fatal(err)
	}
	if p.PageSize() != "123:842" {
		t.Fatalf("after SetWidth: %q", p.PageSize())
	}
	if err := p.SetHeight(321); err != nil {
		t.Fatal(err)
	}
	if p.PageSize() != "123:321" {
		t.Fatalf("after SetHeight: %q", p.PageSize())
	}
	if err := p.SetWidth(-1); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("negative width: %v", err)
	}
}

func TestPageMargins(t *testing.T) {
	p := mustPage(t, PageConfig{Size: "100:200"})
	if err := p.SetMargin(10, 20); err != nil {
		t.Fatal(err)
	}
	if p.FirstPoint() != (Point{X: 20, Y: 190}) || p.DiagonalPoint() != (Point{X: 80, Y: 10}) {
		t.Fatalf("inner boundary: %v", p.Boundary().Points())
	}
	if p.Width() != 60 || p.Height() != 180 {
		t.Fatalf("inner size: %gx%g", p.Width(), p.Height())
	}
	if err := p.SetMargin(1, 2, 3, 4); err != nil {
		t.Fatal(err)
	}
	if p.FirstPoint() != (Point{X: 4, Y: 199}) || p.DiagonalPoint() != (Point{X: 98, Y: 3}) {
		t.Fatalf("inner boundary: %v", p.Boundary().Points())
	}
	if err := p.SetMargin(60); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("margins wider than the page should fail, got %v", err)
	}
	if err := p.SetMargin(-1); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("negative margin should fail, got %v", err)
	}
	if p.Width() != 94 {
		t.Fatalf("failed SetMargin changed the page: width %g", p.Width())
	}
}

func TestHeaderAndFooterShrinkInnerBoundary(t *testing.T) {
	p := mustPage(t, PageConfig{Size: "100:200", Margin: "10"})
	header := mustNode(t, BoxConfig{Height: "20"})
	if err := p.SetHeader(header); err != nil {
		t.Fatal(err)
	}
	wantHeader := []Point{{10, 190}, {90, 190}, {90, 170}, {10, 170}}
	for i, pt := range header.Boundary().Points() {
		if pt != wantHeader[i] {
			t.Fatalf("header point %d: %v want %v", i, pt, wantHeader[i])
		}
	}
	if p.FirstPoint().Y != 170 || p.Boundary().At(1).Y != 170 {
		t.Fatalf("top edge should move down by 20: %v", p.Boundary().Points())
	}

	footer := mustNode(t, BoxConfig{Height: "30"})
	if err := p.SetFooter(footer); err != nil {
		t.Fatal(err)
	}
	wantFooter := []Point{{10, 40}, {90, 40}, {90, 10}, {10, 10}}
	for i, pt := range footer.Boundary().Points() {
		if pt != wantFooter[i] {
			t.Fatalf("footer point %d: %v want %v", i, pt, wantFooter[i])
		}
	}
	if p.DiagonalPoint().Y != 40 || p.Boundary().At(3).Y != 40 {
		t.Fatalf("bottom edge should move up by 30: %v", p.Boundary().Points())
	}
	if p.Height() != 130 || header.Width() != 80 || !header.IsStaticSize() {
		t.Fatalf("inner height %g, header width %g", p.Height(), header.Width())
	}
	if header.Page() != p || p.Placeholder(PlaceholderFooter) != footer {
		t.Fatalf("placeholders not attached")
	}
}

func TestHeaderValidation(t *testing.T) {
	p := mustPage(t, PageConfig{Size: "100:200", Margin: "10"})
	if err := p.SetHeader(mustNode(t, BoxConfig{})); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("auto height header: %v", err)
	}
	if err := p.SetFooter(mustNode(t, BoxConfig{Height: "50%"})); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("percentage height footer: %v", err)
	}
	if err := p.SetHeader(mustNode(t, BoxConfig{Height: "190"})); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("oversized header: %v", err)
	}
	if p.Header() != nil || p.Height() != 180 {
		t.Fatalf("rejected header changed the page")
	}
	owned := mustNode(t, BoxConfig{Height: "5"})
	_ = mustNode(t, BoxConfig{}).Add(owned)
	if err := p.SetHeader(owned); !errors.Is(err, ErrLogic) {
		t.Fatalf("a child node cannot become a header: %v", err)
	}
}

func TestWatermarkSpansPage(t *testing.T) {
	p := mustPage(t, PageConfig{Size: "100:200", Margin: "10"})
	w := mustNode(t, BoxConfig{})
	if err := p.SetWatermark(w); err != nil {
		t.Fatal(err)
	}
	if w.FirstPoint() != (Point{X: 0, Y: 200}) || w.DiagonalPoint() != (Point{X: 100, Y: 0}) {
		t.Fatalf("watermark boundary: %v", w.Boundary().Points())
	}
	if w.Width() != 100 || w.Height() != 200 || w.VerticalAlign() != VerticalAlignMiddle {
		t.Fatalf("watermark: %gx%g %s", w.Width(), w.Height(), w.VerticalAlign())
	}
	if p.Width() != 80 {
		t.Fatalf("watermark must not touch the inner boundary")
	}
}

func TestPageContextRequired(t *testing.T) {
	p := mustPage(t, PageConfig{})
	if _, err := p.Context(); !errors.Is(err, ErrLogic) {
		t.Fatalf("expected ErrLogic, got %v", err)
	}
	p.SetContext(PageContext{Number: 3})
	if ctx, err := p.Context(); err != nil || ctx.Number != 3 {
		t.Fatalf("got %+v, %v", ctx, err)
	}
}

func templateFixture() (*fakeLoader, []GraphicsContext) {
	gcs := []GraphicsContext{
		&fakeGC{w: 100, h: 100},
		&fakeGC{w: 200, h: 250},
		&fakeGC{w: 300, h: 300},
	}
	return &fakeLoader{src: fakeSource{gcs: gcs}}, gcs
}

func TestTemplateSelection(t *testing.T) {
	loader, gcs := templateFixture()
	doc, _ := NewDocument(&fakeEngine{},
		WithTemplateLoader(loader),
		WithStringFilters(ResourcePathFilter{Dir: "/res"}),
		WithLogger(quietLogger()),
	)
	p := mustPage(t, PageConfig{Template: "%resources%/tpl.png"})
	p.SetContext(PageContext{Number: 5})
	if err := p.Format(doc); err != nil {
		t.Fatal(err)
	}
	if loader.path != "/res/tpl.png" || loader.encoding != "utf-8" {
		t.Fatalf("loader called with %q %q", loader.path, loader.encoding)
	}
	if p.PageWidth() != 200 || p.PageHeight() != 250 || p.PageSize() != "200:250" {
		t.Fatalf("page should adopt the template size, got %gx%g", p.PageWidth(), p.PageHeight())
	}
	gc := p.GraphicsContext()
	if gc == nil || gc == gcs[1] || gc.Width() != 200 {
		t.Fatalf("page should use a copy of template page 2")
	}

	first := mustPage(t, PageConfig{Template: "tpl.png", TemplateEncoding: "windows-1250"})
	if err := first.Format(doc); err != nil {
		t.Fatal(err)
	}
	if first.PageWidth() != 100 || loader.encoding != "windows-1250" {
		t.Fatalf("pages without context use the first template page")
	}
}

func TestTemplateNeedsLoader(t *testing.T) {
	doc, _ := NewDocument(&fakeEngine{})
	p := mustPage(t, PageConfig{Template: "x.png"})
	if err := p.Format(doc); !errors.Is(err, ErrLogic) {
		t.Fatalf("expected ErrLogic, got %v", err)
	}
}

func headerPage(t *testing.T, doc *Document) *Page {
	t.Helper()
	p, err := doc.NewPage(PageConfig{Size: "100:200"})
	if err != nil {
		t.Fatal(err)
	}
	h, err := doc.NewText("Header", TextConfig{BoxConfig: BoxConfig{Height: "20"}}, WithName("header-text"))
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SetHeader(h); err != nil {
		t.Fatal(err)
	}
	if _, err := doc.AddPage(p); err != nil {
		t.Fatal(err)
	}
	return p
}

func tasksNamed(q *TaskQueue, name string) []*DrawingTask {
	var out []*DrawingTask
	for _, task := range q.Tasks() {
		if task.Name() == name {
			out = append(out, task)
		}
	}
	return out
}

func TestPlaceholderTasksCollectedOnce(t *testing.T) {
	doc, _ := NewDocument(&fakeEngine{}, WithLogger(quietLogger()))
	p := headerPage(t, doc)
	if err := p.Format(doc); err != nil {
		t.Fatal(err)
	}
	q1, q2 := NewTaskQueue(quietLogger()), NewTaskQueue(quietLogger())
	if err := p.CollectOrderedDrawingTasks(doc, q1); err != nil {
		t.Fatal(err)
	}
	if err := p.CollectOrderedDrawingTasks(doc, q2); err != nil {
		t.Fatal(err)
	}
	a, b := tasksNamed(q1, "header-text"), tasksNamed(q2, "header-text")
	if len(a) != 1 || len(b) != 1 || a[0] != b[0] {
		t.Fatalf("header should be scheduled once and reused: %d %d", len(a), len(b))
	}
	if a[0].Priority() != PriorityOverlay {
		t.Fatalf("header priority %d", a[0].Priority())
	}
}

func TestPrepareTemplatePaintsPlaceholders(t *testing.T) {
	doc, _ := NewDocument(&fakeEngine{}, WithLogger(quietLogger()))
	p := headerPage(t, doc)
	if err := p.PrepareTemplate(doc); err != nil {
		t.Fatal(err)
	}
	if err := p.PrepareTemplate(doc); err != nil {
		t.Fatal(err)
	}
	gc := p.GraphicsContext().(*fakeGC)
	if len(gc.ops) != 1 || gc.ops[0] != "text:Header" {
		t.Fatalf("prepared surface: %v", gc.ops)
	}
	q := NewTaskQueue(quietLogger())
	if err := p.CollectOrderedDrawingTasks(doc, q); err != nil {
		t.Fatal(err)
	}
	if len(tasksNamed(q, "header-text")) != 0 || !p.IsPrepared() {
		t.Fatalf("prepared placeholders must not be scheduled again")
	}
}

func TestPageCopy(t *testing.T) {
	p := mustPage(t, PageConfig{Size: "100:200", Margin: "5"})
	child := mustNode(t, BoxConfig{Height: "10"})
	_ = p.Add(child)
	_ = p.SetFooter(mustNode(t, BoxConfig{Height: "10"}))
	cp := p.Copy()
	if cp.GraphicsContext() != nil {
		t.Fatalf("no surface to copy")
	}
	if cp.Boundary() == p.Boundary() || cp.Footer() == p.Footer() {
		t.Fatalf("copy shares state with the original")
	}
	cp.Boundary().Translate(1, 1)
	if p.FirstPoint() != (Point{X: 5, Y: 195}) {
		t.Fatalf("original boundary moved: %v", p.FirstPoint())
	}
	kids := cp.Children()
	if len(kids) != 1 || kids[0] == child || kids[0].Page() != cp || cp.Footer().Page() != cp {
		t.Fatalf("children not re-parented onto the copy")
	}
	if _, err := cp.Context(); !errors.Is(err, ErrLogic) {
		t.Fatalf("copies start without a context")
	}

	p.SetGraphicsContext(&fakeGC{w: 100, h: 200, ops: []string{"fill"}})
	cp = p.Copy()
	gc, ok := cp.GraphicsContext().(*fakeGC)
	if !ok || gc == p.GraphicsContext() || len(gc.ops) != 1 {
		t.Fatalf("surface should be copied")
	}
}

func TestDecodePageConfig(t *testing.T) {
	src := `
size = "a4-landscape"
margin = "10 20"
template = "%resources%/bg.png"
template-encoding = "windows-1250"

[background]
r = 10
g = 20
b = 30
`
	cfg, err := DecodePageConfig(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Size != "a4-landscape" || cfg.TemplateEncoding != "windows-1250" || cfg.Background == nil || cfg.Background.G != 20 {
		t.Fatalf("decoded %+v", cfg)
	}
	p := mustPage(t, cfg)
	if p.Width() != 802 || p.Height() != 575 || len(p.Decorations()) != 1 {
		t.Fatalf("page from config: %gx%g", p.Width(), p.Height())
	}
	if _, err := DecodePageConfig(strings.NewReader("size = ")); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("malformed TOML: %v", err)
	}
}

func expectOps(t *testing.T, gc GraphicsContext, want ...string) {
	t.Helper()
	got := gc.(*fakeGC).ops
	if len(got) != len(want) {
		t.Fatalf("ops: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ops: got %v want %v", got, want)
		}
	}
}

func TestWatermarkPaintsOverPageBackground(t *testing.T) {
	doc, _ := NewDocument(&fakeEngine{}, WithLogger(quietLogger()))
	p, _ := doc.NewPage(PageConfig{Size: "100:200", Background: &Color{R: 255, G: 255, B: 255}})
	w, _ := doc.NewText("DRAFT", TextConfig{FontSize: "12"})
	if err := p.SetWatermark(w); err != nil {
		t.Fatal(err)
	}
	_, _ = doc.AddPage(p)
	if err := doc.Draw(context.Background()); err != nil {
		t.Fatal(err)
	}
	expectOps(t, p.GraphicsContext(), "fill", "text:DRAFT")
}

func TestPrepareTemplateKeepsPlaceholdersAboveBackground(t *testing.T) {
	doc, _ := NewDocument(&fakeEngine{}, WithLogger(quietLogger()))
	p, _ := doc.NewPage(PageConfig{Size: "100:200", Background: &Color{B: 255}})
	h, _ := doc.NewText("Header", TextConfig{BoxConfig: BoxConfig{Height: "20"}})
	if err := p.SetHeader(h); err != nil {
		t.Fatal(err)
	}
	_, _ = doc.AddPage(p)
	if err := p.PrepareTemplate(doc); err != nil {
		t.Fatal(err)
	}
	expectOps(t, p.GraphicsContext(), "fill", "text:Header")
	if err := doc.Draw(context.Background()); err != nil {
		t.Fatal(err)
	}
	expectOps(t, p.GraphicsContext(), "fill", "text:Header")
}

func TestTemplateSurfaceIsNotFilled(t *testing.T) {
	loader, _ := templateFixture()
	doc, _ := NewDocument(&fakeEngine{}, WithTemplateLoader(loader), WithLogger(quietLogger()))
	p, _ := doc.NewPage(PageConfig{Template: "tpl.png", Background: &Color{R: 1}})
	txt, _ := doc.NewText("body", TextConfig{})
	_ = p.Add(txt)
	_, _ = doc.AddPage(p)
	if err := doc.Draw(context.Background()); err != nil {
		t.Fatal(err)
	}
	expectOps(t, p.GraphicsContext(), "text:body")
}

func TestFailedPrepareDoesNotRepaint(t *testing.T) {
	eng := &fakeEngine{failOn: "text:Footer"}
	doc, _ := NewDocument(eng, WithLogger(quietLogger()))
	p := headerPage(t, doc)
	f, _ := doc.NewText("Footer", TextConfig{BoxConfig: BoxConfig{Height: "20"}})
	if err := p.SetFooter(f); err != nil {
		t.Fatal(err)
	}
	if err := p.PrepareTemplate(doc); err == nil {
		t.Fatalf("footer should fail")
	}
	if p.IsPrepared() {
		t.Fatalf("a failed preparation must not count as prepared")
	}
	gc := p.GraphicsContext().(*fakeGC)
	gc.failOn = ""
	if err := doc.Draw(context.Background()); err != nil {
		t.Fatal(err)
	}
	expectOps(t, gc, "text:Header", "text:Footer", "text:Footer")
}

func TestTextWatermarkIsCentered(t *testing.T) {
	doc, _ := NewDocument(&fakeEngine{}, WithLogger(quietLogger()))
	p, _ := doc.NewPage(PageConfig{Size: "100:200"})
	w, _ := doc.NewText("DRAFT", TextConfig{FontSize: "12"})
	if err := p.SetWatermark(w); err != nil {
		t.Fatal(err)
	}
	_, _ = doc.AddPage(p)
	if err := doc.Draw(context.Background()); err != nil {
		t.Fatal(err)
	}
	// 12 units of text leave 188 free, split evenly.
	at := p.GraphicsContext().(*fakeGC).textAt
	if len(at) != 1 || !near(at[0].X, 0) || !near(at[0].Y, 106) {
		t.Fatalf("watermark drawn at %v", at)
	}
}

func TestImageWatermarkIsCentered(t *testing.T) {
	cases := []struct {
		w, h               int
		top, right, bottom float64
	}{
		{50, 20, 110, 50, 90},
		{400, 100, 112.5, 100, 87.5},
	}
	for _, tc := range cases {
		doc, _ := NewDocument(&fakeEngine{}, WithLogger(quietLogger()))
		p, _ := doc.NewPage(PageConfig{Size: "100:200"})
		img, _ := doc.NewImage(image.NewRGBA(image.Rect(0, 0, tc.w, tc.h)), BoxConfig{})
		if err := p.SetWatermark(img); err != nil {
			t.Fatal(err)
		}
		_, _ = doc.AddPage(p)
		if err := doc.Draw(context.Background()); err != nil {
			t.Fatal(err)
		}
		rects := p.GraphicsContext().(*fakeGC).imageAt
		if len(rects) != 1 {
			t.Fatalf("%dx%d: %d images", tc.w, tc.h, len(rects))
		}
		tl, br := rects[0][0], rects[0][1]
		if !near(tl.X, 0) || !near(tl.Y, tc.top) || !near(br.X, tc.right) || !near(br.Y, tc.bottom) {
			t.Fatalf("%dx%d: drawn over %v %v", tc.w, tc.h, tl, br)
		}
	}
}
