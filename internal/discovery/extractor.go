package discovery

import (
	"context"
	"iter"

	"ktp/internal/domain"
)

// Declaration is a test class found in a source file
type Declaration struct {
	ClassName string
	Range     domain.Range
	Methods   []Method
}

// Method is a test method found directly in a class body
type Method struct {
	Name string
	Line int
}

// MethodNames returns the declaration's method names in source order
func (d Declaration) MethodNames() []string {
	names := make([]string, len(d.Methods))
	for i, m := range d.Methods {
		names[i] = m.Name
	}
	return names
}

// Extractor finds test declarations in file content, in source order
type Extractor interface {
	Extract(ctx context.Context, content []byte) (iter.Seq[Declaration], error)
}
