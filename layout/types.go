package layout

import (
	"fmt"
	"strings"
)

// Color is an RGB triple with channels in 0-255.
type Color struct {
	R int `json:"r" toml:"r"`
	G int `json:"g" toml:"g"`
	B int `json:"b" toml:"b"`
}

// Black is the default stroke and text color.
var Black = Color{}

// LineStyle describes a stroked segment. Width is in native units; values
// <= 0 let the engine pick a hairline.
type LineStyle struct {
	Color Color
	Width float64
}

// ShapeStyle describes a polygon. A nil Fill or Stroke disables it.
type ShapeStyle struct {
	Fill        *Color
	Stroke      *Color
	StrokeWidth float64
}

// FontSpec selects the face for DrawText. Family may be empty to use the
// engine's default face.
type FontSpec struct {
	Family string
	Size   float64
	Color  Color
}

// Display controls whether a node flows inline or stacks as a block.
type Display int

const (
	DisplayBlock Display = iota
	DisplayInline
)

func (d Display) String() string {
	if d == DisplayInline {
		return "inline"
	}
	return "block"
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Display) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "block":
		*d = DisplayBlock
	case "inline":
		*d = DisplayInline
	default:
		return fmt.Errorf("%w: display %q", ErrInvalidArgument, text)
	}
	return nil
}

// VerticalAlign positions children inside a container taller than them.
type VerticalAlign int

const (
	VerticalAlignTop VerticalAlign = iota
	VerticalAlignMiddle
	VerticalAlignBottom
)

func (v VerticalAlign) String() string {
	switch v {
	case VerticalAlignMiddle:
		return "middle"
	case VerticalAlignBottom:
		return "bottom"
	default:
		return "top"
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *VerticalAlign) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "top":
		*v = VerticalAlignTop
	case "middle", "center":
		*v = VerticalAlignMiddle
	case "bottom":
		*v = VerticalAlignBottom
	default:
		return fmt.Errorf("%w: vertical-align %q", ErrInvalidArgument, text)
	}
	return nil
}
