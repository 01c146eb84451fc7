// Package template loads page templates: pre-rendered surfaces a page
// copies as its starting graphics state.
//
// A template is either an image file (one surface, or one per frame for
// GIF) or a manifest, a text file listing one image path per line. Blank
// lines and lines starting with # are skipped, and relative paths resolve
// against the manifest's directory.
package template

import (
	"bufio"
	"fmt"
	"image"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/ByLCY/papyrus/layout"
)

// DefaultEncoding is assumed for manifests when none is given.
const DefaultEncoding = "utf-8"

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// Source is a loaded template.
type Source struct {
	path     string
	contexts []layout.GraphicsContext
}

var _ layout.TemplateSource = (*Source)(nil)

func (s *Source) Path() string { return s.path }

func (s *Source) AttachedGraphicsContexts() []layout.GraphicsContext {
	return append([]layout.GraphicsContext(nil), s.contexts...)
}

// Loader builds template surfaces with an engine. Loaded sources are cached
// by path and encoding, since every page of a document asks for its
// template again.
type Loader struct {
	engine layout.Engine
	logger *log.Logger

	mu    sync.Mutex
	cache map[string]*Source
}

var _ layout.TemplateLoader = (*Loader)(nil)

// NewLoader returns a loader drawing onto surfaces of engine. A nil logger
// uses log.Default().
func NewLoader(engine layout.Engine, logger *log.Logger) (*Loader, error) {
	if engine == nil {
		return nil, fmt.Errorf("%w: template loader needs an engine", layout.ErrInvalidArgument)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{engine: engine, logger: logger, cache: map[string]*Source{}}, nil
}

// Load opens path. encoding only matters for manifests.
func (l *Loader) Load(path, encoding string) (layout.TemplateSource, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	key := path + "\x00" + strings.ToLower(encoding)

	l.mu.Lock()
	defer l.mu.Unlock()
	if src, ok := l.cache[key]; ok {
		return src, nil
	}

	var (
		contexts []layout.GraphicsContext
		err      error
	)
	if imageExts[strings.ToLower(filepath.Ext(path))] {
		contexts, err = l.loadImage(path)
	} else {
		contexts, err = l.loadManifest(path, encoding)
	}
	if err != nil {
		return nil, err
	}
	src := &Source{path: path, contexts: contexts}
	l.cache[key] = src
	l.logger.Debug("template loaded", "path", path, "pages", len(contexts))
	return src, nil
}

func (l *Loader) loadImage(path string) ([]layout.GraphicsContext, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open template %s: %w", path, err)
	}
	defer f.Close()

	var frames []image.Image
	if strings.EqualFold(filepath.Ext(path), ".gif") {
		g, err := gif.DecodeAll(f)
		if err != nil {
			return nil, fmt.Errorf("decode template %s: %w", path, err)
		}
		frames = composeGIF(g)
	} else {
		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode template %s: %w", path, err)
		}
		frames = append(frames, img)
	}

	contexts := make([]layout.GraphicsContext, 0, len(frames))
	for i, img := range frames {
		gc, err := l.engine.NewGraphicsContextFromImage(img)
		if err != nil {
			return nil, fmt.Errorf("template %s frame %d: %w", path, i, err)
		}
		contexts = append(contexts, gc)
	}
	return contexts, nil
}

// composeGIF renders every frame of g onto its logical screen. Frames may
// only cover part of the screen, so each page shows the frames before it
// as left by their disposal method.
func composeGIF(g *gif.GIF) []image.Image {
	screen := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if screen.Empty() && len(g.Image) > 0 {
		screen = image.Rectangle{Max: g.Image[0].Bounds().Max}
	}
	acc := image.NewRGBA(screen)
	frames := make([]image.Image, 0, len(g.Image))
	for i, frame := range g.Image {
		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		var previous *image.RGBA
		if disposal == gif.DisposalPrevious {
			previous = cloneRGBA(acc)
		}
		draw.Draw(acc, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		frames = append(frames, cloneRGBA(acc))
		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(acc, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			acc = previous
		}
	}
	return frames
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}

func (l *Loader) loadManifest(path, encoding string) ([]layout.GraphicsContext, error) {
	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding %q: %v", layout.ErrInvalidArgument, encoding, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open template %s: %w", path, err)
	}
	defer f.Close()

	dir := filepath.Dir(path)
	var contexts []layout.GraphicsContext
	sc := bufio.NewScanner(transform.NewReader(f, enc.NewDecoder()))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(dir, line)
		}
		if !imageExts[strings.ToLower(filepath.Ext(line))] {
			return nil, fmt.Errorf("%w: manifest %s lists non-image %s", layout.ErrInvalidArgument, path, line)
		}
		gcs, err := l.loadImage(line)
		if err != nil {
			return nil, err
		}
		contexts = append(contexts, gcs...)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	if len(contexts) == 0 {
		return nil, fmt.Errorf("%w: manifest %s lists no pages", layout.ErrInvalidArgument, path)
	}
	return contexts, nil
}
