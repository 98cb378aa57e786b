package discovery

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/kotlin"

	"ktp/internal/domain"
)

// Kotlin grammar node types
const (
	nodeClassDeclaration    = "class_declaration"
	nodeObjectDeclaration   = "object_declaration"
	nodeClassBody           = "class_body"
	nodeFunctionDeclaration = "function_declaration"
	nodeModifiers           = "modifiers"
	nodeAnnotation          = "annotation"
	nodeUserType            = "user_type"
	nodeConstructorInvoc    = "constructor_invocation"
	nodeTypeIdentifier      = "type_identifier"
	nodeSimpleIdentifier    = "simple_identifier"
)

// maxTreeDepth bounds recursion over pathological inputs
const maxTreeDepth = 1000

// SyntaxExtractor finds the same declarations as HeuristicExtractor from a tree-sitter
// syntax tree. It applies the same name and @Test filters.
type SyntaxExtractor struct {
	nameMarker string
}

// NewSyntaxExtractor creates an extractor that keeps classes whose name contains nameMarker
func NewSyntaxExtractor(nameMarker string) *SyntaxExtractor {
	return &SyntaxExtractor{nameMarker: nameMarker}
}

// Extract parses content eagerly; the tree is released before the sequence is returned
func (s *SyntaxExtractor) Extract(ctx context.Context, content []byte) (iter.Seq[Declaration], error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(kotlin.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse kotlin: %w", err)
	}
	defer tree.Close()

	var decls []Declaration
	s.walk(tree.RootNode(), content, 0, &decls)
	return slices.Values(decls), nil
}

func (s *SyntaxExtractor) walk(node *sitter.Node, src []byte, depth int, out *[]Declaration) {
	if node == nil || depth > maxTreeDepth {
		return
	}
	if t := node.Type(); t == nodeClassDeclaration || t == nodeObjectDeclaration {
		if d, ok := s.declaration(node, src); ok {
			*out = append(*out, d)
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		s.walk(node.Child(i), src, depth+1, out)
	}
}

func (s *SyntaxExtractor) declaration(node *sitter.Node, src []byte) (Declaration, bool) {
	name := childContent(node, src, nodeTypeIdentifier, nodeSimpleIdentifier)
	if name == "" || !strings.Contains(name, s.nameMarker) {
		return Declaration{}, false
	}

	d := Declaration{
		ClassName: name,
		Range: domain.Range{
			StartLine: int(node.StartPoint().Row) + 1,
			EndLine:   int(node.EndPoint().Row) + 1,
		},
	}

	body := childOfType(node, nodeClassBody)
	if body == nil {
		return d, true
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		fn := body.Child(i)
		if fn.Type() != nodeFunctionDeclaration || !hasTestAnnotation(fn, src) {
			continue
		}
		if m := childContent(fn, src, nodeSimpleIdentifier); m != "" {
			d.Methods = append(d.Methods, Method{Name: m, Line: int(fn.StartPoint().Row) + 1})
		}
	}
	return d, true
}

func hasTestAnnotation(fn *sitter.Node, src []byte) bool {
	mods := childOfType(fn, nodeModifiers)
	if mods == nil {
		return false
	}
	for i := 0; i < int(mods.ChildCount()); i++ {
		child := mods.Child(i)
		if child.Type() == nodeAnnotation && annotationName(child, src) == "Test" {
			return true
		}
	}
	return false
}

// annotationName handles both @Test and @Test(...) forms
func annotationName(ann *sitter.Node, src []byte) string {
	for i := 0; i < int(ann.ChildCount()); i++ {
		child := ann.Child(i)
		switch child.Type() {
		case nodeUserType:
			return childContent(child, src, nodeTypeIdentifier)
		case nodeConstructorInvoc:
			if ut := childOfType(child, nodeUserType); ut != nil {
				return childContent(ut, src, nodeTypeIdentifier)
			}
		}
	}
	return ""
}

func childOfType(node *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		if c := node.Child(i); c.Type() == typ {
			return c
		}
	}
	return nil
}

func childContent(node *sitter.Node, src []byte, types ...string) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if slices.Contains(types, c.Type()) {
			return strings.Trim(c.Content(src), "`")
		}
	}
	return ""
}
