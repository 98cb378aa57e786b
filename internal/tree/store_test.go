package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ktp/internal/domain"
)

func buildFile(path string, classes map[string][]string, order ...string) *domain.TestNode {
	file := domain.NewFileNode(path)
	for _, name := range order {
		class := file.AddChild(domain.KindClass, name, nil)
		for _, m := range classes[name] {
			class.AddChild(domain.KindMethod, m, nil)
		}
	}
	return file
}

func TestStore_ReplaceFileIndexesSubtree(t *testing.T) {
	s := NewStore()
	file := buildFile("/ws/FooTest.kt", map[string][]string{"FooTest": {"a", "b"}}, "FooTest")
	s.ReplaceFile("/ws/FooTest.kt", file)

	assert.Equal(t, 4, s.Len())
	n, ok := s.Get(file.ID + ".FooTest.b")
	require.True(t, ok)
	assert.Equal(t, domain.KindMethod, n.Kind)
	assert.Equal(t, []*domain.TestNode{file}, s.FileNodes("/ws/FooTest.kt"))
}

func TestStore_ReplaceFileDiscardsOldSubtree(t *testing.T) {
	s := NewStore()
	old := buildFile("/ws/FooTest.kt", map[string][]string{"FooTest": {"a", "b"}}, "FooTest")
	s.ReplaceFile("/ws/FooTest.kt", old)

	fresh := buildFile("/ws/FooTest.kt", map[string][]string{"FooTest": {"a"}}, "FooTest")
	s.ReplaceFile("/ws/FooTest.kt", fresh)

	assert.Equal(t, 3, s.Len())
	_, ok := s.Get(old.ID + ".FooTest.b")
	assert.False(t, ok)
	got, _ := s.Get(fresh.ID)
	assert.Same(t, fresh, got)
}

func TestStore_RemoveFile(t *testing.T) {
	s := NewStore()
	s.ReplaceFile("/ws/ATest.kt", buildFile("/ws/ATest.kt", nil, "ATest"))
	s.ReplaceFile("/ws/BTest.kt", buildFile("/ws/BTest.kt", nil, "BTest"))

	s.RemoveFile("/ws/ATest.kt")
	s.RemoveFile("/ws/missing.kt")

	require.Len(t, s.Roots(), 1)
	assert.Equal(t, "BTest.kt", s.Roots()[0].Label)
	assert.Empty(t, s.FileNodes("/ws/ATest.kt"))
}

func TestStore_ClearAndRootsOrder(t *testing.T) {
	s := NewStore()
	s.ReplaceFile("/ws/b/BTest.kt", buildFile("/ws/b/BTest.kt", nil))
	s.ReplaceFile("/ws/a/ATest.kt", buildFile("/ws/a/ATest.kt", nil))

	roots := s.Roots()
	require.Len(t, roots, 2)
	assert.Equal(t, "ATest.kt", roots[0].Label)

	s.Clear()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Roots())
}

func TestStore_NotifiesListeners(t *testing.T) {
	s := NewStore()
	var seen []string
	s.Subscribe(func(path string) { seen = append(seen, path) })

	s.ReplaceFile("/ws/ATest.kt", buildFile("/ws/ATest.kt", nil))
	s.RemoveFile("/ws/ATest.kt")
	s.Clear()

	assert.Equal(t, []string{"/ws/ATest.kt", "/ws/ATest.kt", ""}, seen)
}
