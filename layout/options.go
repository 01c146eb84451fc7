package layout

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// BoxConfig holds the declared box attributes of a node. Lengths are written
// the way authors write them ("12", "10mm", "50%"); empty or "auto" sizes
// are resolved by the formatter chain.
type BoxConfig struct {
	Width         string        `toml:"width"`
	Height        string        `toml:"height"`
	Margin        string        `toml:"margin"`  // 1-4 value shorthand
	Padding       string        `toml:"padding"` // 1-4 value shorthand
	Display       Display       `toml:"display"`
	VerticalAlign VerticalAlign `toml:"vertical-align"`
	Background    *Color        `toml:"background"`
	Border        *BorderConfig `toml:"border"`
}

// BorderConfig declares a Border decoration.
type BorderConfig struct {
	Color Color  `toml:"color"`
	Width string `toml:"width"`
}

// TextConfig adds font attributes to a box.
type TextConfig struct {
	BoxConfig
	FontSize string `toml:"font-size"` // defaults to 12pt
	Font     string `toml:"font"`
	Color    Color  `toml:"color"`
}

// PageConfig configures a page. Size defaults to A4 and margins to zero.
type PageConfig struct {
	Size             string `toml:"size"`
	Margin           string `toml:"margin"`
	Template         string `toml:"template"`
	TemplateEncoding string `toml:"template-encoding"`
	Background       *Color `toml:"background"`
}

// DecodePageConfig reads a TOML page configuration.
func DecodePageConfig(r io.Reader) (PageConfig, error) {
	var cfg PageConfig
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return PageConfig{}, fmt.Errorf("%w: page config: %v", ErrInvalidArgument, err)
	}
	return cfg, nil
}

// NodeOption customizes node construction.
type NodeOption func(*Node)

// WithConverter overrides the unit converter used to resolve the node's
// lengths. Without it lengths are plain numbers.
func WithConverter(c UnitConverter) NodeOption {
	return func(n *Node) {
		if c != nil {
			n.converter = c
		}
	}
}

// WithName labels the node in drawing task names and debug output.
func WithName(name string) NodeOption {
	return func(n *Node) { n.name = name }
}

// WithDecorations attaches extra decorations.
func WithDecorations(d ...Decoration) NodeOption {
	return func(n *Node) { n.decorations = append(n.decorations, d...) }
}

// DocumentOption customizes a Document.
type DocumentOption func(*Document)

// WithLogger sets the logger used for formatting and drawing diagnostics.
func WithLogger(l *log.Logger) DocumentOption {
	return func(d *Document) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithTemplateLoader sets the collaborator used for page templates.
func WithTemplateLoader(l TemplateLoader) DocumentOption {
	return func(d *Document) { d.loader = l }
}

// WithMeasurer overrides the text measurer. By default the engine is used
// when it implements TextMeasurer, EstimateMeasurer otherwise.
func WithMeasurer(m TextMeasurer) DocumentOption {
	return func(d *Document) { d.measurer = m }
}

// WithStringFilters sets filters applied to template paths.
func WithStringFilters(f ...StringFilter) DocumentOption {
	return func(d *Document) { d.filters = append(d.filters, f...) }
}
