// Package tree holds the in-memory registry of discovered test nodes.
package tree

import (
	"sort"
	"sync"

	"ktp/internal/domain"
)

// Listener is called after a mutation with the affected file path, or "" after Clear
type Listener func(path string)

// Store owns every discovered node. It keeps an id index over all nodes and a file index
// of the root nodes each file contributed, so a file's subtree can be dropped in one step.
type Store struct {
	mu        sync.RWMutex
	nodes     map[string]*domain.TestNode
	files     map[string][]*domain.TestNode
	listeners []Listener
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		nodes: make(map[string]*domain.TestNode),
		files: make(map[string][]*domain.TestNode),
	}
}

// Subscribe registers a listener for tree mutations
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// ReplaceFile drops everything path contributed and, when root is non-nil, indexes root
// and its descendants in its place. Readers never observe the half-replaced state.
func (s *Store) ReplaceFile(path string, root *domain.TestNode) {
	s.mu.Lock()
	s.removeLocked(path)
	if root != nil {
		s.files[path] = []*domain.TestNode{root}
		root.Walk(func(n *domain.TestNode) {
			s.nodes[n.ID] = n
		})
	}
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners, path)
}

// RemoveFile drops the subtree contributed by path. It is a no-op for unknown paths.
func (s *Store) RemoveFile(path string) {
	s.ReplaceFile(path, nil)
}

func (s *Store) removeLocked(path string) {
	for _, root := range s.files[path] {
		root.Walk(func(n *domain.TestNode) {
			// a colliding id may since belong to another file's subtree
			if s.nodes[n.ID] == n {
				delete(s.nodes, n.ID)
			}
		})
	}
	delete(s.files, path)
}

// Clear removes all nodes and file entries
func (s *Store) Clear() {
	s.mu.Lock()
	s.nodes = make(map[string]*domain.TestNode)
	s.files = make(map[string][]*domain.TestNode)
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners, "")
}

// Get looks a node up by id
func (s *Store) Get(id string) (*domain.TestNode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	return n, ok
}

// FileNodes returns the root nodes contributed by path
func (s *Store) FileNodes(path string) []*domain.TestNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.TestNode, len(s.files[path]))
	copy(out, s.files[path])
	return out
}

// Roots returns every file-level node ordered by path
func (s *Store) Roots() []*domain.TestNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var roots []*domain.TestNode
	for _, p := range paths {
		roots = append(roots, s.files[p]...)
	}
	return roots
}

// Len returns the number of indexed nodes
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

func notify(listeners []Listener, path string) {
	for _, l := range listeners {
		l(path)
	}
}
