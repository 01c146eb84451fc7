// Package dsl parses the small attribute languages used by layout nodes:
// page sizes ("100mm:200mm", "a4-landscape", "LETTER landscape") and box
// shorthands ("2 3 4 5").
package dsl

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	attrLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Preset", Pattern: `(?i:[24]a0|[abc](?:10|[0-9])|letter|legal)`},
		{Name: "Length", Pattern: `(?:\d+\.\d*|\.\d+|\d+)(?i:px|pt|in|mm|cm|pc|%)?`},
		{Name: "Ident", Pattern: `[A-Za-z]+`},
		{Name: "Colon", Pattern: `:`},
		{Name: "Separator", Pattern: `[-_]`},
	})

	// Whitespace is kept here because it separates a preset from its
	// orientation.
	pageSizeParser = participle.MustBuild[PageSizeExpr](
		participle.Lexer(attrLexer),
		participle.UseLookahead(2),
	)

	boxParser = participle.MustBuild[BoxExpr](
		participle.Lexer(attrLexer),
		participle.Elide("Whitespace"),
	)
)

// PageSizeExpr is either an explicit "W:H" pair or a named preset.
type PageSizeExpr struct {
	Explicit *ExplicitSize `parser:"  @@"`
	Named    *NamedSize    `parser:"| @@"`
}

// ExplicitSize holds the raw width and height lengths, units included.
type ExplicitSize struct {
	Width  string `parser:"@Length Whitespace? Colon Whitespace?"`
	Height string `parser:"@Length"`
}

// NamedSize is a paper preset with an optional orientation word, separated
// by "-", "_" or whitespace.
type NamedSize struct {
	Preset      string `parser:"@Preset"`
	Orientation string `parser:"( ( Whitespace ( Separator Whitespace? )? | Separator Whitespace? ) @Ident )?"`
}

// BoxExpr is a whitespace separated list of one or more lengths.
type BoxExpr struct {
	Values []string `parser:"@Length+"`
}

// PageSize is the normalized result of ParsePageSize. Either Preset is set
// (upper-cased) or Width and Height are.
type PageSize struct {
	Width     string
	Height    string
	Preset    string
	Landscape bool
}

// ParsePageSize parses a page-size attribute value.
func ParsePageSize(spec string) (*PageSize, error) {
	expr, err := pageSizeParser.ParseString("", strings.TrimSpace(spec))
	if err != nil {
		return nil, fmt.Errorf("page size %q: %w", spec, err)
	}
	if expr.Explicit != nil {
		return &PageSize{Width: expr.Explicit.Width, Height: expr.Explicit.Height}, nil
	}
	ps := &PageSize{Preset: strings.ToUpper(expr.Named.Preset)}
	switch strings.ToLower(expr.Named.Orientation) {
	case "", "portrait":
	case "landscape":
		ps.Landscape = true
	default:
		return nil, fmt.Errorf("page size %q: unknown orientation %q", spec, expr.Named.Orientation)
	}
	return ps, nil
}

// ParseBox splits a one to four value shorthand such as "10mm 5mm".
func ParseBox(spec string) ([]string, error) {
	expr, err := boxParser.ParseString("", strings.TrimSpace(spec))
	if err != nil {
		return nil, fmt.Errorf("box shorthand %q: %w", spec, err)
	}
	if len(expr.Values) > 4 {
		return nil, fmt.Errorf("box shorthand %q: at most 4 values, got %d", spec, len(expr.Values))
	}
	return expr.Values, nil
}
