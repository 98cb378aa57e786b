package commands

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ktp/internal/domain"
)

// WatchCommand handles the watch command
type WatchCommand struct {
	deps *Dependencies
}

// NewWatchCommand creates a new WatchCommand
func NewWatchCommand(deps *Dependencies) *WatchCommand {
	return &WatchCommand{deps: deps}
}

// Execute discovers tests and reports tree changes until interrupted
func (wc *WatchCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := wc.deps.discover(ctx); err != nil {
		return err
	}
	color.Green("Watching %d test file(s) in %v (Ctrl+C to stop)", len(wc.deps.Store.Roots()), wc.deps.Config.WorkspaceRoots)

	out := cmd.OutOrStdout()
	wc.deps.Store.Subscribe(func(path string) {
		if path == "" {
			return
		}
		stamp := time.Now().Format("15:04:05")
		nodes := wc.deps.Store.FileNodes(path)
		if len(nodes) == 0 {
			fmt.Fprintf(out, "%s %s %s\n", stamp, color.RedString("removed"), path)
			return
		}
		leaves := 0
		nodes[0].Walk(func(n *domain.TestNode) {
			if n.IsLeaf() {
				leaves++
			}
		})
		fmt.Fprintf(out, "%s %s %s (%d test(s))\n", stamp, color.CyanString("updated"), path, leaves)
	})

	watcher, err := wc.deps.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Stop()
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	<-ctx.Done()
	return nil
}
