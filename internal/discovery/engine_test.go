package discovery

import (
	"context"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ktp/internal/domain"
	"ktp/internal/tree"
)

const fooTest = `import org.junit.Test

class FooTest {
    @Test fun testBar() {}
    @Test fun testBaz() {}
}
`

func newTestEngine(t *testing.T, roots ...string) *Engine {
	t.Helper()
	classifier := NewClassifier([]string{".kt", ".kts"}, "Test", DefaultContentMarkers)
	return NewEngine(
		tree.NewStore(),
		classifier,
		NewHeuristicExtractor("Test"),
		NewScanner([]string{"build"}, nil, classifier),
		roots,
		nil,
	)
}

// shape flattens a subtree into "kind id" lines for comparison
func shape(n *domain.TestNode) []string {
	var out []string
	n.Walk(func(c *domain.TestNode) {
		out = append(out, c.Kind.String()+" "+c.ID)
	})
	return out
}

func TestEngine_AnnotationAloneIsNotEnough(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "FooTest.kt")
	writeFiles(t, root, map[string]string{
		"FooTest.kt": "class FooTest { @Test fun testBar() {} }",
	})
	e := newTestEngine(t, root)

	require.NoError(t, e.DiscoverAll(context.Background()))
	assert.Zero(t, e.Store().Len())

	writeFiles(t, root, map[string]string{
		"FooTest.kt": "import org.junit.Test\nclass FooTest { @Test fun testBar() {} }",
	})
	require.NoError(t, e.DiscoverAll(context.Background()))

	fileID := domain.FileID(path)
	assert.Equal(t, []string{
		"file " + fileID,
		"class " + fileID + ".FooTest",
		"method " + fileID + ".FooTest.testBar",
	}, shape(e.Store().Roots()[0]))
}

func TestEngine_RescanFileIsIdempotent(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "FooTest.kt")
	writeFiles(t, root, map[string]string{"FooTest.kt": fooTest})
	e := newTestEngine(t, root)
	ctx := context.Background()

	require.NoError(t, e.RescanFile(ctx, path))
	first := shape(e.Store().FileNodes(path)[0])
	count := e.Store().Len()

	require.NoError(t, e.RescanFile(ctx, path))
	second := shape(e.Store().FileNodes(path)[0])

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("subtree changed across rescans (-first +second):\n%s", diff)
	}
	assert.Equal(t, count, e.Store().Len())
	assert.Len(t, e.Store().FileNodes(path), 1)
}

func TestEngine_IDsArePrefixedByAncestors(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a/FooTest.kt":   fooTest,
		"b/OuterTest.kt": "import kotlin.test.Test\nclass OuterTest {\n inner class InnerTest { @Test fun x() {} }\n @Test fun y() {}\n}",
	})
	e := newTestEngine(t, root)
	require.NoError(t, e.DiscoverAll(context.Background()))

	var methods int
	for _, file := range e.Store().Roots() {
		file.Walk(func(n *domain.TestNode) {
			if n.Parent != nil {
				assert.True(t, strings.HasPrefix(n.ID, n.Parent.ID+domain.Separator), n.ID)
			}
			if n.Kind == domain.KindMethod {
				methods++
				assert.Equal(t, domain.KindClass, n.Parent.Kind)
				assert.Equal(t, domain.KindFile, n.Parent.Parent.Kind)
			}
		})
	}
	assert.Equal(t, 4, methods)
}

func TestEngine_RescanAfterChangeAndDelete(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "FooTest.kt")
	writeFiles(t, root, map[string]string{"FooTest.kt": fooTest})
	e := newTestEngine(t, root)
	ctx := context.Background()
	require.NoError(t, e.DiscoverAll(ctx))
	require.Equal(t, 4, e.Store().Len())

	writeFiles(t, root, map[string]string{
		"FooTest.kt": "import org.junit.Test\nclass FooTest {\n @Test fun testBar() {}\n}",
	})
	require.NoError(t, e.RescanFile(ctx, path))
	assert.Equal(t, 3, e.Store().Len())
	_, ok := e.Store().Get(domain.FileID(path) + ".FooTest.testBaz")
	assert.False(t, ok)

	require.NoError(t, os.Remove(path))
	require.NoError(t, e.RescanFile(ctx, path))
	assert.Zero(t, e.Store().Len())
}

func TestEngine_SkipsBuildOutputAndUnrecognizedFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"build/FooTest.kt": fooTest,
		"FooTest.java":     fooTest,
		".idea/FooTest.kt": fooTest,
	})
	e := newTestEngine(t, root)
	require.NoError(t, e.DiscoverAll(context.Background()))

	roots := e.Store().Roots()
	require.Len(t, roots, 1)
	assert.Equal(t, filepath.Join(root, ".idea", "FooTest.kt"), roots[0].Location.Path)
}

type failingExtractor struct{ panic bool }

func (f failingExtractor) Extract(context.Context, []byte) (iter.Seq[Declaration], error) {
	if f.panic {
		panic("boom")
	}
	return nil, errors.New("extract failed")
}

func TestEngine_ScanFailureDoesNotAbortDiscovery(t *testing.T) {
	for _, panics := range []bool{false, true} {
		root := t.TempDir()
		writeFiles(t, root, map[string]string{"ATest.kt": fooTest, "BTest.kt": fooTest})
		e := newTestEngine(t, root)
		e.extractor = failingExtractor{panic: panics}

		require.NoError(t, e.DiscoverAll(context.Background()))
		assert.Zero(t, e.Store().Len())

		err := e.RescanFile(context.Background(), filepath.Join(root, "ATest.kt"))
		assert.Error(t, err)
	}
}

func TestEngine_DiscoverAllClearsStaleNodes(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"FooTest.kt": fooTest})
	e := newTestEngine(t, root)
	stale := domain.NewFileNode("/elsewhere/GoneTest.kt")
	e.Store().ReplaceFile("/elsewhere/GoneTest.kt", stale)

	require.NoError(t, e.DiscoverAll(context.Background()))

	_, ok := e.Store().Get(stale.ID)
	assert.False(t, ok)
	assert.Len(t, e.Store().Roots(), 1)
}

func TestEngine_MissingRootIsLoggedNotReturned(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"FooTest.kt": fooTest})
	e := newTestEngine(t, "/no/such/root", root)

	require.NoError(t, e.DiscoverAll(context.Background()))
	assert.Len(t, e.Store().Roots(), 1)
}
