package domain

import "path/filepath"

// IDPrefix namespaces file node ids so they never clash with other providers in a host UI.
const IDPrefix = "kotlin-test:"

// Separator joins a parent id and a declaration name. Class and method names must not
// contain it or selector recovery becomes ambiguous.
const Separator = "."

// Kind is the level of a node in the test tree
type Kind int

const (
	KindFile Kind = iota
	KindClass
	KindMethod
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindClass:
		return "class"
	case KindMethod:
		return "method"
	}
	return "unknown"
}

// Range is a 1-based line span inside a source file
type Range struct {
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`
}

// Location points at the file that contributed a node and, when known, where in it
type Location struct {
	Path  string `json:"path"`
	Range *Range `json:"range,omitempty"`
}

// TestNode is a file, class or method in the test tree.
// Parent is a non-owning back reference used for ancestry checks only.
type TestNode struct {
	ID       string
	Kind     Kind
	Label    string
	Location Location
	Parent   *TestNode

	children []*TestNode
	index    map[string]int
}

// NewFileNode creates the root node for a source file
func NewFileNode(path string) *TestNode {
	return &TestNode{
		ID:       FileID(path),
		Kind:     KindFile,
		Label:    filepath.Base(path),
		Location: Location{Path: path},
	}
}

// AddChild creates a child of the given kind. Its id is derived from the receiver's id and
// name. A child with the same id replaces the earlier one in place, keeping its position.
func (n *TestNode) AddChild(kind Kind, name string, rng *Range) *TestNode {
	child := &TestNode{
		ID:       ChildID(n.ID, name),
		Kind:     kind,
		Label:    name,
		Location: Location{Path: n.Location.Path, Range: rng},
		Parent:   n,
	}
	if n.index == nil {
		n.index = make(map[string]int)
	}
	if i, ok := n.index[child.ID]; ok {
		n.children[i] = child
		return child
	}
	n.index[child.ID] = len(n.children)
	n.children = append(n.children, child)
	return child
}

// Children returns the node's children in discovery order
func (n *TestNode) Children() []*TestNode {
	out := make([]*TestNode, len(n.children))
	copy(out, n.children)
	return out
}

// IsLeaf reports whether the node is dispatched directly rather than expanded
func (n *TestNode) IsLeaf() bool {
	return len(n.children) == 0
}

// IsWithin reports whether n equals one of the given nodes or descends from one
func (n *TestNode) IsWithin(set map[string]bool) bool {
	if len(set) == 0 {
		return false
	}
	for cur := n; cur != nil; cur = cur.Parent {
		if set[cur.ID] {
			return true
		}
	}
	return false
}

// Walk visits n and all descendants depth first, parents before children
func (n *TestNode) Walk(fn func(*TestNode)) {
	fn(n)
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// FileID returns the id of the node for a source file
func FileID(path string) string {
	return IDPrefix + path
}

// ChildID returns the id of a declaration nested under parentID
func ChildID(parentID, name string) string {
	return parentID + Separator + name
}
