// Package binding expands ${path.to.value} placeholders in node text, for
// example ${page.number} of ${page.total} in a footer.
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Values is the usual shape of binding data.
type Values map[string]any

// HasPlaceholders reports whether text contains at least one ${...}.
func HasPlaceholders(text string) bool {
	return exprPattern.MatchString(text)
}

// Interpolate replaces ${path} in text with the value found in data.
// Unknown paths are left as written.
func Interpolate(text string, data any) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		path := strings.TrimSpace(groups[1])
		if path == "" {
			return match
		}
		if val, ok := Lookup(data, path); ok {
			return fmt.Sprint(val)
		}
		return match
	})
}

// Lookup resolves a dotted path with optional [i] indexes, e.g.
// "pages[2].number".
func Lookup(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			if current, ok = descendMap(current, name); !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			if current, ok = descendSlice(current, idx); !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []string) {
	i := strings.IndexByte(segment, '[')
	if i == -1 {
		return segment, nil
	}
	name, rest := segment[:i], segment[i:]
	var indexes []string
	for len(rest) > 0 && rest[0] == '[' {
		end := strings.IndexByte(rest, ']')
		if end == -1 {
			break
		}
		indexes = append(indexes, rest[1:end])
		rest = rest[end+1:]
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case Values:
		v, ok := c[key]
		return v, ok
	case map[string]any:
		v, ok := c[key]
		return v, ok
	case map[string]int:
		v, ok := c[key]
		return v, ok
	case map[string]string:
		v, ok := c[key]
		return v, ok
	default:
		return nil, false
	}
}

func descendSlice(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []string:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
