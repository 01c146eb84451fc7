// Package renderer selects a rendering engine by output kind.
package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ByLCY/papyrus/layout"
	canvasrenderer "github.com/ByLCY/papyrus/renderer/canvas"
	"github.com/ByLCY/papyrus/renderer/raster"
)

// Engine kinds accepted by New.
const (
	KindPDF   = "pdf"
	KindImage = "image"
)

// Options configures either engine and can be decoded from TOML.
type Options struct {
	DPI         int               `toml:"dpi"`
	Fonts       map[string]string `toml:"fonts"` // family → font file
	DefaultFont string            `toml:"default-font"`
	ImageFormat string            `toml:"image-format"` // raster only: png, tiff or bmp

	// PDF metadata, ignored by the raster engine.
	Title    string `toml:"title"`
	Subject  string `toml:"subject"`
	Keywords string `toml:"keywords"`
	Author   string `toml:"author"`
	Creator  string `toml:"creator"`
}

// New returns the engine for kind: "pdf" or "vector" for the canvas engine,
// "image" or "raster" for the pixel engine.
func New(kind string, opts Options) (layout.Engine, error) {
	switch strings.ToLower(kind) {
	case KindPDF, "vector":
		fonts := make(map[string]canvasrenderer.Resource, len(opts.Fonts))
		for name, path := range opts.Fonts {
			fonts[name] = canvasrenderer.Resource{Path: path}
		}
		e, err := canvasrenderer.New(canvasrenderer.Options{
			DPI:         opts.DPI,
			Fonts:       fonts,
			DefaultFont: opts.DefaultFont,
			Meta: canvasrenderer.Meta{
				Title:    opts.Title,
				Subject:  opts.Subject,
				Keywords: opts.Keywords,
				Author:   opts.Author,
				Creator:  opts.Creator,
			},
		})
		if err != nil {
			return nil, err
		}
		return e, nil
	case KindImage, "raster":
		e, err := raster.New(raster.Options{
			DPI:         opts.DPI,
			FontPaths:   opts.Fonts,
			DefaultFont: opts.DefaultFont,
			Format:      opts.ImageFormat,
		})
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("%w: unknown engine kind %q", layout.ErrInvalidArgument, kind)
	}
}

// DecodeOptions reads engine options from TOML.
func DecodeOptions(r io.Reader) (Options, error) {
	var opts Options
	if _, err := toml.NewDecoder(r).Decode(&opts); err != nil {
		return Options{}, fmt.Errorf("%w: engine options: %v", layout.ErrInvalidArgument, err)
	}
	return opts, nil
}
