package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// This file defines unit-safe length values as written by document authors.

// Unit represents the original unit of a length value.
type Unit int

const (
	UnitNone    Unit = iota // bare number, already in native units
	UnitPX                  // pixels
	UnitPT                  // points
	UnitIN                  // inches
	UnitMM                  // millimeters
	UnitCM                  // centimeters
	UnitPC                  // picas
	UnitPercent             // percentage of a reference length
)

// Conversion constants. One inch is 72 points and 25.4 millimeters.
const (
	UnitsPerInch  = 72.0
	MMPerInch     = 25.4
	CMPerInch     = 2.54
	PointsPerPica = 12.0

	PtToMm = MMPerInch / UnitsPerInch
	MmToPt = UnitsPerInch / MMPerInch
)

var unitSuffixes = []struct {
	s string
	u Unit
}{{"px", UnitPX}, {"pt", UnitPT}, {"in", UnitIN}, {"mm", UnitMM}, {"cm", UnitCM}, {"pc", UnitPC}, {"%", UnitPercent}}

// String returns the suffix used to write u.
func (u Unit) String() string {
	for _, suf := range unitSuffixes {
		if suf.u == u {
			return suf.s
		}
	}
	return ""
}

// Length preserves a numeric value with its unit. Integer is set only for
// values built with Int: raster targets pass those through unchanged.
type Length struct {
	Value   float64 `json:"value"`
	Unit    Unit    `json:"unit"`
	Integer bool    `json:"integer,omitempty"`
}

// Num is a bare floating point length.
func Num(v float64) Length { return Length{Value: v} }

// Int is a bare integer length.
func Int(v int) Length { return Length{Value: float64(v), Integer: true} }

// Of builds a length with an explicit unit.
func Of(v float64, u Unit) Length { return Length{Value: v, Unit: u} }

// As re-tags the numeric part of l with unit u, the way an explicit unit
// argument overrides whatever suffix the value was written with.
func (l Length) As(u Unit) Length { return Length{Value: l.Value, Unit: u} }

func (l Length) IsZero() bool    { return l.Value == 0 }
func (l Length) IsPercent() bool { return l.Unit == UnitPercent }

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + l.Unit.String()
}

// ParseLength parses "12", "12.5mm", "3in", "50%". Suffixes are matched case
// insensitively.
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, invalidArgf("empty length")
	}
	unit := UnitNone
	num := v
	for _, suf := range unitSuffixes {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("%w: length %q: %v", ErrInvalidArgument, value, err)
	}
	return Length{Value: f, Unit: unit}, nil
}

// Edges holds resolved top/right/bottom/left values in native units.
type Edges struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Horizontal is Left+Right.
func (e Edges) Horizontal() float64 { return e.Left + e.Right }

// Vertical is Top+Bottom.
func (e Edges) Vertical() float64 { return e.Top + e.Bottom }

// EdgesFrom expands a CSS-like shorthand of one to four values:
// 1 → all sides, 2 → vertical horizontal, 3 → top horizontal bottom,
// 4 → top right bottom left. Values beyond four are ignored.
func EdgesFrom(vals ...float64) Edges {
	switch len(vals) {
	case 0:
		return Edges{}
	case 1:
		v := vals[0]
		return Edges{Top: v, Right: v, Bottom: v, Left: v}
	case 2:
		return Edges{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}
	case 3:
		return Edges{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}
	default:
		return Edges{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
	}
}
