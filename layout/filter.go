package layout

import (
	"path/filepath"
	"strings"
)

// StringFilter rewrites attribute values before they are used, e.g. to
// expand a resources placeholder in template paths.
type StringFilter interface {
	Filter(value string) string
}

// StringFilterFunc adapts a function to StringFilter.
type StringFilterFunc func(string) string

func (f StringFilterFunc) Filter(value string) string { return f(value) }

// ResourcesPlaceholder is replaced by ResourcePathFilter.
const ResourcesPlaceholder = "%resources%"

// ResourcePathFilter expands %resources% to Dir.
type ResourcePathFilter struct {
	Dir string
}

func (f ResourcePathFilter) Filter(value string) string {
	if !strings.Contains(value, ResourcesPlaceholder) {
		return value
	}
	return filepath.Clean(strings.ReplaceAll(value, ResourcesPlaceholder, f.Dir))
}

func applyFilters(filters []StringFilter, value string) string {
	for _, f := range filters {
		value = f.Filter(value)
	}
	return value
}
