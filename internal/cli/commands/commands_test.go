package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ktp/internal/cli"
	"ktp/internal/config"
	"ktp/internal/domain"
)

const fooTest = `package app

import org.junit.jupiter.api.Test

class FooTest {
    @Test
    fun testBar() {}

    @Test
    fun testBaz() {}
}
`

const barTest = `package app

import kotlin.test.Test

class BarTest {
    @Test
    fun works() {}
}
`

func init() {
	color.NoColor = true
}

// workspace writes a Gradle project with two test files and returns its dependencies.
// The session shell is cat, so build command lines are echoed to the session output.
func workspace(t *testing.T) (*Dependencies, string) {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"build.gradle.kts":                     "",
		"src/test/kotlin/app/FooTest.kt":       fooTest,
		"src/test/kotlin/app/BarTest.kt":       barTest,
		"build/generated/app/GeneratedTest.kt": fooTest,
		"src/main/kotlin/app/Service.kt":       "class Service",
	}
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}

	cfg, err := config.Load(root, config.Flags{})
	require.NoError(t, err)
	cfg.Shell = "cat"

	deps, err := NewDependencies(cfg, nil)
	require.NoError(t, err)
	return deps, cfg.WorkspaceRoot()
}

func fooID(root string) string {
	return domain.FileID(filepath.Join(root, "src/test/kotlin/app/FooTest.kt"))
}

func TestNewDependencies_RejectsUnknownExtractor(t *testing.T) {
	cfg := config.New()
	cfg.Extractor = "magic"
	_, err := NewDependencies(cfg, nil)
	assert.ErrorContains(t, err, "unknown extractor")
}

func TestNewDependencies_SyntaxExtractorFindsSameTree(t *testing.T) {
	deps, root := workspace(t)
	require.NoError(t, deps.discover(context.Background()))
	heuristic := deps.Store.Len()

	deps.Config.Extractor = config.ExtractorSyntax
	syntaxDeps, err := NewDependencies(deps.Config, nil)
	require.NoError(t, err)
	require.NoError(t, syntaxDeps.discover(context.Background()))

	assert.Equal(t, heuristic, syntaxDeps.Store.Len())
	_, ok := syntaxDeps.Store.Get(fooID(root) + ".FooTest.testBaz")
	assert.True(t, ok)
}

func TestListCommand_Execute(t *testing.T) {
	deps, _ := workspace(t)
	var buf bytes.Buffer
	deps.Formatter.SetOutput(&buf)
	deps.Config.Flags = config.Flags{NameFilter: "Foo*", TestCases: true}

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	require.NoError(t, NewListCommand(deps).Execute(cmd, nil))

	out := buf.String()
	assert.Contains(t, out, "Found 1 test file(s) with test cases")
	assert.Contains(t, out, filepath.Join("src", "test", "kotlin", "app", "FooTest.kt"))
	assert.Contains(t, out, "testBaz")
	assert.NotContains(t, out, "BarTest")
	assert.NotContains(t, out, "GeneratedTest")
}

func TestRunCommand_Request(t *testing.T) {
	deps, root := workspace(t)
	require.NoError(t, deps.discover(context.Background()))
	rc := NewRunCommand(deps)

	t.Run("ids resolve to nodes", func(t *testing.T) {
		deps.Config.Flags = config.Flags{Exclude: []string{fooID(root) + ".FooTest.testBar", "kotlin-test:/nowhere"}}
		req, err := rc.request([]string{fooID(root)})
		require.NoError(t, err)
		require.Len(t, req.Include, 1)
		assert.Equal(t, fooID(root), req.Include[0].ID)
		require.Len(t, req.Exclude, 1)
	})

	t.Run("unknown id is an error", func(t *testing.T) {
		deps.Config.Flags = config.Flags{}
		_, err := rc.request([]string{"kotlin-test:/nowhere"})
		assert.ErrorContains(t, err, "unknown test id")
	})

	t.Run("filter selects files", func(t *testing.T) {
		deps.Config.Flags = config.Flags{NameFilter: "Bar"}
		req, err := rc.request(nil)
		require.NoError(t, err)
		require.Len(t, req.Include, 1)
		assert.Equal(t, "BarTest.kt", req.Include[0].Label)
	})

	t.Run("filter without matches is an error", func(t *testing.T) {
		deps.Config.Flags = config.Flags{NameFilter: "Nope"}
		_, err := rc.request(nil)
		assert.Error(t, err)
	})
}

func TestSession_SendsOneCommandPerLeaf(t *testing.T) {
	deps, root := workspace(t)
	ctx := context.Background()
	require.NoError(t, deps.discover(ctx))

	var out bytes.Buffer
	scheduler, session := deps.NewSession(&out)
	deps.Config.Flags = config.Flags{Exclude: []string{fooID(root) + ".FooTest.testBaz"}}
	req, err := NewRunCommand(deps).request(nil)
	require.NoError(t, err)

	summary, err := scheduler.Run(ctx, req, nil)
	require.NoError(t, err)
	require.NoError(t, session.Close())

	passed, failed := summary.Counts()
	assert.Equal(t, 2, passed)
	assert.Equal(t, 0, failed)
	assert.Contains(t, out.String(), "gradle test --tests FooTest.testBar\n")
	assert.Contains(t, out.String(), "gradle test --tests BarTest.works\n")
	assert.NotContains(t, out.String(), "testBaz")

	saved, err := deps.Storage.Save(summary)
	require.NoError(t, err)
	loaded, err := deps.Storage.Load()
	require.NoError(t, err)
	assert.Equal(t, saved.Meta.RunID, loaded.Meta.RunID)
	assert.FileExists(t, filepath.Join(root, config.DefaultOutputJSONDir, config.DefaultOutputJSONFile))
}

func TestCommands_Setup(t *testing.T) {
	_, root := workspace(t)

	c := NewCommands()
	flags := &cli.Flags{Workspace: root, Extractor: config.ExtractorSyntax}
	require.NoError(t, c.Setup(flags))
	defer c.Sync()

	assert.Equal(t, []string{root}, c.deps.Config.WorkspaceRoots)
	assert.Equal(t, config.ExtractorSyntax, c.deps.Config.Extractor)
	assert.Same(t, c.deps, c.List.deps)
	assert.NotNil(t, c.Run.deps.Engine)
}

func TestRegister_AddsCommands(t *testing.T) {
	root := &cobra.Command{Use: "ktp"}
	NewCommands().Register(root, &cli.Flags{})

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.ElementsMatch(t, []string{"list", "run", "test", "watch", "explore", "failures"}, names)
	assert.NotNil(t, root.PersistentFlags().Lookup("workspace"))
}
