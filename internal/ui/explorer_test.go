package ui

import (
	"errors"
	"testing"

	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ktp/internal/domain"
)

func TestBuildTree(t *testing.T) {
	files := sampleFiles()
	class := files[0].Children()[0]
	method := class.Children()[0]

	statuses := map[string]domain.Status{method.ID: domain.StatusPassed}
	excluded := map[string]bool{files[1].ID: true}

	root := buildTree(files, "/ws", statuses, excluded)
	require.Len(t, root.GetChildren(), 2)
	assert.Equal(t, "tests (2 files)", root.GetText())

	fileNode := root.GetChildren()[0]
	assert.Equal(t, "  src/FooTest.kt", fileNode.GetText())
	assert.Same(t, files[0], fileNode.GetReference())

	classNode := fileNode.GetChildren()[0]
	assert.Equal(t, "  FooTest", classNode.GetText())

	methodNode := classNode.GetChildren()[0]
	assert.Equal(t, "✓ testBar", methodNode.GetText())

	assert.Equal(t, "  src/EmptyTest.kt (excluded)", root.GetChildren()[1].GetText())
}

func TestBuildTree_AllNodesReferenceTestNodes(t *testing.T) {
	root := buildTree(sampleFiles(), "", nil, nil)

	count := 0
	root.Walk(func(node, parent *tview.TreeNode) bool {
		if parent == nil {
			return true
		}
		_, ok := node.GetReference().(*domain.TestNode)
		assert.True(t, ok)
		count++
		return true
	})
	assert.Equal(t, 5, count)
}

func TestNodeLabel(t *testing.T) {
	assert.Equal(t, "✗ FooTest", nodeLabel("FooTest", domain.StatusFailed, false))
	assert.Equal(t, "… FooTest (excluded)", nodeLabel("FooTest", domain.StatusStarted, true))
}

func TestRunStatusText(t *testing.T) {
	summary := &domain.RunSummary{Outcomes: []domain.Outcome{
		{Status: domain.StatusPassed},
		{Status: domain.StatusFailed},
	}}
	assert.Equal(t, "[red]1 accepted, 1 failed", runStatusText(summary, nil))
	assert.Equal(t, "[red]boom", runStatusText(summary, errors.New("boom")))

	summary.Cancelled = true
	assert.Equal(t, "[yellow]Cancelled after 2 item(s)", runStatusText(summary, nil))
}
