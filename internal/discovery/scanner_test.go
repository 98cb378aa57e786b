package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
}

func TestScanner_Scan(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"src/test/kotlin/UserTest.kt":         "",
		"src/test/kotlin/.hidden/OrderTest.kt": "",
		"src/main/kotlin/User.kt":             "",
		"build.gradle.kts":                    "",
		"build/generated/GenTest.kt":          "",
		"app/build/tmp/OtherTest.kt":          "",
		"fixtures/data/FixtureTest.kt":        "",
		"README.md":                           "",
	})

	classifier := NewClassifier([]string{".kt", ".kts"}, "Test", nil)
	scanner := NewScanner([]string{"build"}, []string{"fixtures/**"}, classifier)

	t.Run("scans source files correctly", func(t *testing.T) {
		var found []string
		err := scanner.Scan(context.Background(), tmpDir, func(path string) {
			rel, _ := filepath.Rel(tmpDir, path)
			found = append(found, filepath.ToSlash(rel))
		})
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{
			"build.gradle.kts",
			"src/main/kotlin/User.kt",
			"src/test/kotlin/.hidden/OrderTest.kt",
			"src/test/kotlin/UserTest.kt",
		}, found)
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		err := scanner.Scan(context.Background(), "/non/existent/path", func(string) {})
		assert.Error(t, err)
	})

	t.Run("returns error for file instead of directory", func(t *testing.T) {
		err := scanner.Scan(context.Background(), filepath.Join(tmpDir, "README.md"), func(string) {})
		assert.Error(t, err)
	})

	t.Run("stops on cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := scanner.Scan(ctx, tmpDir, func(string) {})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
