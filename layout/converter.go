package layout

import "math"

// UnitConverter normalizes lengths into an engine's native unit. It is
// immutable after construction and safe to share read-only.
type UnitConverter interface {
	// Convert resolves l to native units. Percentages are returned untouched;
	// resolve them with ConvertPercentage once the base is known.
	Convert(l Length) Length
	// ConvertPercentage resolves percent against base. Non-percentage values
	// are converted as Convert would.
	ConvertPercentage(percent Length, base float64) float64
}

// ConvertUnit parses raw and converts it with c.
func ConvertUnit(c UnitConverter, raw string) (float64, error) {
	l, err := ParseLength(raw)
	if err != nil {
		return 0, err
	}
	if l.IsPercent() {
		return 0, invalidArgf("percentage %q needs a reference length", raw)
	}
	return c.Convert(l).Value, nil
}

// IdentityConverter is the converter used when a context has no device
// semantics: every value is a plain numeric cast.
type IdentityConverter struct{}

var _ UnitConverter = IdentityConverter{}

func (IdentityConverter) Convert(l Length) Length {
	if l.IsPercent() {
		return l
	}
	return Length{Value: l.Value}
}

// ConvertPercentage returns base unchanged: without a device there is
// nothing to scale against.
func (IdentityConverter) ConvertPercentage(_ Length, base float64) float64 { return base }

// VectorConverter targets point space (72 units per inch).
type VectorConverter struct {
	dpi           int
	unitsPerPixel float64
}

var _ UnitConverter = (*VectorConverter)(nil)

// NewVectorConverter returns a point-space converter. dpi only affects px.
func NewVectorConverter(dpi int) (*VectorConverter, error) {
	if dpi < 1 {
		return nil, invalidArgf("dpi must be a positive integer, %d given", dpi)
	}
	return &VectorConverter{dpi: dpi, unitsPerPixel: UnitsPerInch / float64(dpi)}, nil
}

func (c *VectorConverter) DPI() int { return c.dpi }

func (c *VectorConverter) Convert(l Length) Length {
	var v float64
	switch l.Unit {
	case UnitPercent:
		return l
	case UnitNone, UnitPT:
		v = l.Value
	case UnitPX:
		v = l.Value * c.unitsPerPixel
	case UnitIN:
		v = l.Value * UnitsPerInch
	case UnitMM:
		v = l.Value * UnitsPerInch / MMPerInch
	case UnitCM:
		v = l.Value * UnitsPerInch / CMPerInch
	case UnitPC:
		v = l.Value * PointsPerPica
	default:
		v = l.Value
	}
	return Length{Value: v}
}

func (c *VectorConverter) ConvertPercentage(percent Length, base float64) float64 {
	return convertPercentage(c, percent, base)
}

// RasterConverter targets pixel space at a fixed DPI.
type RasterConverter struct {
	dpi           int
	pixelsPerUnit float64
}

var _ UnitConverter = (*RasterConverter)(nil)

// NewRasterConverter returns a pixel-space converter.
func NewRasterConverter(dpi int) (*RasterConverter, error) {
	if dpi < 1 {
		return nil, invalidArgf("dpi must be a positive integer, %d given", dpi)
	}
	return &RasterConverter{dpi: dpi, pixelsPerUnit: float64(dpi) / UnitsPerInch}, nil
}

func (c *RasterConverter) DPI() int { return c.dpi }

// Convert maps l to pixels. Integer lengths pass through; bare floats are
// read as points.
func (c *RasterConverter) Convert(l Length) Length {
	if l.Integer {
		return Length{Value: l.Value}
	}
	var v float64
	switch l.Unit {
	case UnitPercent:
		return l
	case UnitPX:
		v = math.Trunc(l.Value)
	case UnitNone, UnitPT:
		v = l.Value * c.pixelsPerUnit
	case UnitIN:
		v = l.Value * float64(c.dpi)
	case UnitMM:
		v = l.Value * float64(c.dpi) / MMPerInch
	case UnitCM:
		v = l.Value * float64(c.dpi) / CMPerInch
	case UnitPC:
		v = l.Value * PointsPerPica * c.pixelsPerUnit
	default:
		v = l.Value
	}
	return Length{Value: v}
}

func (c *RasterConverter) ConvertPercentage(percent Length, base float64) float64 {
	return convertPercentage(c, percent, base)
}

func convertPercentage(c UnitConverter, percent Length, base float64) float64 {
	if !percent.IsPercent() {
		return c.Convert(percent).Value
	}
	return percent.Value / 100 * base
}
