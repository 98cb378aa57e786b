package discovery

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"ktp/internal/domain"
)

// Filter selects file nodes by file name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName keeps the file nodes whose base name matches pattern.
// Patterns with wildcards ("*UserTest.kt", "*Payment*") are globs; anything else is a
// substring match. An empty pattern keeps everything.
func (f *Filter) FilterByName(nodes []*domain.TestNode, pattern string) []*domain.TestNode {
	if pattern == "" {
		return nodes
	}

	glob := strings.ContainsAny(pattern, "*?[")
	var filtered []*domain.TestNode
	for _, n := range nodes {
		name := n.Label
		if glob {
			if ok, err := doublestar.Match(pattern, name); err == nil && ok {
				filtered = append(filtered, n)
			}
			continue
		}
		if strings.Contains(name, pattern) {
			filtered = append(filtered, n)
		}
	}
	return filtered
}
