package discovery

import (
	"context"
	"iter"
	"regexp"
	"sort"
	"strings"

	"ktp/internal/domain"
)

var (
	// declaration keyword, name, optional type parameters, primary constructor and
	// supertype clause, then the opening brace
	classPattern = regexp.MustCompile(`\b(?:class|object)\s+(\w+)\s*(?:<[^>{;]*>)?\s*(?:(?:(?:private|protected|internal|public)\s+)?(?:constructor\s*)?\([^)]*\))?\s*(?::[^{};]*)?\{`)

	// @Test directly before fun or suspend fun; the parameter list is only opened
	methodPattern = regexp.MustCompile(`@Test(?:\([^)]*\))?\s+(?:suspend\s+)?fun\s+(\w+)\s*\(`)
)

// HeuristicExtractor finds test classes and methods with regular expressions and brace
// counting. It is not a parser: matches inside strings or comments are not excluded.
type HeuristicExtractor struct {
	nameMarker string
}

// NewHeuristicExtractor creates an extractor that keeps classes whose name contains nameMarker
func NewHeuristicExtractor(nameMarker string) *HeuristicExtractor {
	return &HeuristicExtractor{nameMarker: nameMarker}
}

// Extract never fails; the sequence is computed lazily as it is ranged over
func (h *HeuristicExtractor) Extract(_ context.Context, content []byte) (iter.Seq[Declaration], error) {
	return h.Declarations(string(content)), nil
}

// Declarations yields each class whose name contains the marker, with the test methods
// declared directly in its body. Methods of nested classes are left to those classes.
func (h *HeuristicExtractor) Declarations(content string) iter.Seq[Declaration] {
	return func(yield func(Declaration) bool) {
		lines := newLineIndex(content)
		for _, m := range classPattern.FindAllStringSubmatchIndex(content, -1) {
			name := content[m[2]:m[3]]
			if !strings.Contains(name, h.nameMarker) {
				continue
			}

			open := m[1] - 1
			end := matchingBrace(content, open)
			body := content[open+1 : end]

			decl := Declaration{
				ClassName: name,
				Range:     domain.Range{StartLine: lines.line(m[0]), EndLine: lines.line(end)},
				Methods:   directMethods(body, open+1, lines),
			}
			if !yield(decl) {
				return
			}
		}
	}
}

// matchingBrace returns the index of the brace closing the one at open, or len(s) when
// the content ends first.
func matchingBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(s)
}

// directMethods finds test methods in body, skipping those inside nested class bodies.
// offset is the body's position in the whole file, used for line numbers.
func directMethods(body string, offset int, lines lineIndex) []Method {
	type span struct{ start, end int }
	var nested []span
	for _, m := range classPattern.FindAllStringIndex(body, -1) {
		open := m[1] - 1
		nested = append(nested, span{open, matchingBrace(body, open)})
	}

	var methods []Method
outer:
	for _, m := range methodPattern.FindAllStringSubmatchIndex(body, -1) {
		for _, sp := range nested {
			if m[0] > sp.start && m[0] < sp.end {
				continue outer
			}
		}
		methods = append(methods, Method{
			Name: body[m[2]:m[3]],
			Line: lines.line(offset + m[2]),
		})
	}
	return methods
}

// lineIndex maps byte offsets to 1-based line numbers
type lineIndex []int

func newLineIndex(s string) lineIndex {
	idx := lineIndex{0}
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

func (l lineIndex) line(offset int) int {
	return sort.Search(len(l), func(i int) bool { return l[i] > offset })
}
