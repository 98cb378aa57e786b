package discovery

import (
	"bytes"
	"path/filepath"
	"strings"
)

// DefaultContentMarkers are test framework tokens; a candidate file must contain one
var DefaultContentMarkers = []string{
	"@org.junit.",
	"@kotlin.test.",
	"import org.junit",
	"import kotlin.test",
	"import io.kotest",
	"import org.testng",
}

// Classifier decides whether a file is worth scanning for tests.
// False negatives (tests in unconventionally named files) are accepted.
type Classifier struct {
	extensions map[string]bool
	nameMarker string
	markers    [][]byte
}

// NewClassifier creates a Classifier for the given extensions and file name marker
func NewClassifier(extensions []string, nameMarker string, contentMarkers []string) *Classifier {
	c := &Classifier{
		extensions: make(map[string]bool, len(extensions)),
		nameMarker: nameMarker,
	}
	for _, ext := range extensions {
		c.extensions[strings.ToLower(ext)] = true
	}
	for _, m := range contentMarkers {
		c.markers = append(c.markers, []byte(m))
	}
	return c
}

// HasExtension reports whether path has a recognized source extension
func (c *Classifier) HasExtension(path string) bool {
	return c.extensions[strings.ToLower(filepath.Ext(path))]
}

// IsCandidate reports whether path looks like a test file: recognized extension, the name
// marker in the file name, and at least one framework marker in the content.
func (c *Classifier) IsCandidate(path string, content []byte) bool {
	if !c.HasExtension(path) {
		return false
	}
	if !strings.Contains(filepath.Base(path), c.nameMarker) {
		return false
	}
	for _, m := range c.markers {
		if bytes.Contains(content, m) {
			return true
		}
	}
	return false
}
