package ui

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"ktp/internal/discovery"
	"ktp/internal/domain"
	"ktp/internal/execution"
	"ktp/internal/logging"
)

// Explorer is an interactive test tree. Enter runs the selected node, a runs everything,
// x toggles exclusion, r rediscovers and q quits. Build output goes to the lower pane.
type Explorer struct {
	engine *discovery.Engine
	root   string
	logger *zap.Logger

	app    *tview.Application
	view   *tview.TreeView
	output *tview.TextView
	status *tview.TextView

	// touched only from the UI goroutine
	statuses map[string]domain.Status
	excluded map[string]bool
	running  bool
}

// NewExplorer creates an Explorer over the engine's store. Files are labelled relative to root.
func NewExplorer(engine *discovery.Engine, root string, logger *zap.Logger) *Explorer {
	e := &Explorer{
		engine:   engine,
		root:     root,
		logger:   logging.OrNop(logger),
		app:      tview.NewApplication(),
		statuses: make(map[string]domain.Status),
		excluded: make(map[string]bool),
	}

	e.view = tview.NewTreeView().SetRoot(tview.NewTreeNode("tests"))
	e.view.SetBorder(true).SetTitle(" Tests ")

	e.output = tview.NewTextView().
		SetDynamicColors(false).
		SetScrollable(true).
		SetChangedFunc(func() { e.app.Draw() })
	e.output.SetBorder(true).SetTitle(" Output ")

	e.status = tview.NewTextView().SetDynamicColors(true)
	return e
}

// Output is where the build session should write
func (e *Explorer) Output() io.Writer {
	return e.output
}

// Run discovers tests, then blocks in the TUI until the user quits or ctx is done
func (e *Explorer) Run(ctx context.Context, scheduler *execution.Scheduler) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := e.engine.DiscoverAll(ctx); err != nil {
		return err
	}
	e.rebuild()

	e.engine.Store().Subscribe(func(string) {
		if ctx.Err() != nil {
			return
		}
		go e.app.QueueUpdateDraw(e.rebuild)
	})

	e.view.SetSelectedFunc(func(node *tview.TreeNode) {
		if n, ok := node.GetReference().(*domain.TestNode); ok {
			e.startRun(ctx, scheduler, []*domain.TestNode{n})
		}
	})

	e.view.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() != tcell.KeyRune {
			return event
		}
		switch event.Rune() {
		case 'q':
			e.app.Stop()
		case 'a':
			e.startRun(ctx, scheduler, nil)
		case 'x':
			e.toggleExcluded()
		case 'r':
			e.setStatus("[yellow]Refreshing...")
			go func() {
				if err := e.engine.DiscoverAll(ctx); err != nil {
					e.logger.Warn("refresh failed", zap.Error(err))
				}
				if ctx.Err() == nil {
					e.app.QueueUpdateDraw(func() { e.setStatus("Ready") })
				}
			}()
		default:
			return event
		}
		return nil
	})

	go func() {
		<-ctx.Done()
		e.app.Stop()
	}()

	e.setStatus("Ready")
	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(tview.NewTextView().SetDynamicColors(true).
			SetText(" [yellow]Enter[white] run  [yellow]a[white] run all  [yellow]x[white] exclude  [yellow]r[white] refresh  [yellow]q[white] quit"), 1, 0, false).
		AddItem(e.view, 0, 2, true).
		AddItem(e.output, 0, 1, false).
		AddItem(e.status, 1, 0, false)

	if err := e.app.SetRoot(layout, true).SetFocus(e.view).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func (e *Explorer) startRun(ctx context.Context, scheduler *execution.Scheduler, include []*domain.TestNode) {
	if e.running {
		e.setStatus("[yellow]A run is already in progress")
		return
	}

	var exclude []*domain.TestNode
	for id := range e.excluded {
		if n, ok := e.engine.Store().Get(id); ok {
			exclude = append(exclude, n)
		}
	}

	e.running = true
	e.setStatus("[yellow]Running...")
	go func() {
		rep := execution.ReporterFunc(func(o domain.Outcome) {
			if o.Node == nil {
				return
			}
			id, status := o.Node.ID, o.Status
			e.app.QueueUpdateDraw(func() {
				e.statuses[id] = status
				e.rebuild()
			})
		})

		summary, err := scheduler.Run(ctx, execution.Request{Include: include, Exclude: exclude}, rep)
		msg := runStatusText(summary, err)
		e.app.QueueUpdateDraw(func() {
			e.running = false
			e.setStatus(msg)
		})
	}()
}

func runStatusText(summary *domain.RunSummary, err error) string {
	if err != nil {
		return fmt.Sprintf("[red]%v", err)
	}
	passed, failed := summary.Counts()
	if summary.Cancelled {
		return fmt.Sprintf("[yellow]Cancelled after %d item(s)", passed+failed)
	}
	if failed > 0 {
		return fmt.Sprintf("[red]%d accepted, %d failed", passed, failed)
	}
	return fmt.Sprintf("[green]%d accepted", passed)
}

func (e *Explorer) toggleExcluded() {
	node := e.view.GetCurrentNode()
	if node == nil {
		return
	}
	n, ok := node.GetReference().(*domain.TestNode)
	if !ok {
		return
	}
	if e.excluded[n.ID] {
		delete(e.excluded, n.ID)
	} else {
		e.excluded[n.ID] = true
	}
	e.rebuild()
}

func (e *Explorer) setStatus(text string) {
	e.status.SetText(" " + text)
}

// rebuild replaces the tree with the store's current contents, keeping the selection and
// collapsed nodes
func (e *Explorer) rebuild() {
	var selected string
	if cur := e.view.GetCurrentNode(); cur != nil {
		if n, ok := cur.GetReference().(*domain.TestNode); ok {
			selected = n.ID
		}
	}
	collapsed := make(map[string]bool)
	e.view.GetRoot().Walk(func(node, _ *tview.TreeNode) bool {
		if n, ok := node.GetReference().(*domain.TestNode); ok && !node.IsExpanded() {
			collapsed[n.ID] = true
		}
		return true
	})

	root := buildTree(e.engine.Store().Roots(), e.root, e.statuses, e.excluded)
	e.view.SetRoot(root)
	e.view.SetCurrentNode(root)
	root.Walk(func(node, _ *tview.TreeNode) bool {
		n, ok := node.GetReference().(*domain.TestNode)
		if !ok {
			return true
		}
		if collapsed[n.ID] {
			node.SetExpanded(false)
		}
		if n.ID == selected {
			e.view.SetCurrentNode(node)
		}
		return true
	})
}

// buildTree converts store roots to tview nodes. Each node's reference is its TestNode.
func buildTree(roots []*domain.TestNode, base string, statuses map[string]domain.Status, excluded map[string]bool) *tview.TreeNode {
	top := tview.NewTreeNode(fmt.Sprintf("tests (%d files)", len(roots))).
		SetColor(tcell.ColorYellow).
		SetSelectable(false)

	var add func(parent *tview.TreeNode, n *domain.TestNode)
	add = func(parent *tview.TreeNode, n *domain.TestNode) {
		label := n.Label
		if n.Kind == domain.KindFile {
			label = relativeTo(base, n.Location.Path)
		}
		node := tview.NewTreeNode(nodeLabel(label, statuses[n.ID], excluded[n.ID])).
			SetReference(n).
			SetSelectable(true)
		switch {
		case excluded[n.ID]:
			node.SetColor(tcell.ColorGray)
		case n.Kind == domain.KindFile:
			node.SetColor(tcell.ColorDarkCyan)
		case n.Kind == domain.KindClass:
			node.SetColor(tcell.ColorYellow)
		}
		parent.AddChild(node)
		for _, c := range n.Children() {
			add(node, c)
		}
	}

	for _, r := range roots {
		add(top, r)
	}
	return top
}

func nodeLabel(label string, status domain.Status, excluded bool) string {
	marker := "  "
	switch status {
	case domain.StatusPassed:
		marker = "✓ "
	case domain.StatusFailed:
		marker = "✗ "
	case domain.StatusStarted:
		marker = "… "
	}
	if excluded {
		return marker + label + " (excluded)"
	}
	return marker + label
}

func relativeTo(base, path string) string {
	if base == "" {
		return path
	}
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}
