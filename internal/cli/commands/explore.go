package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ktp/internal/ui"
)

// ExploreCommand handles the explore command
type ExploreCommand struct {
	deps *Dependencies
}

// NewExploreCommand creates a new ExploreCommand
func NewExploreCommand(deps *Dependencies) *ExploreCommand {
	return &ExploreCommand{deps: deps}
}

// Execute opens the interactive tree. Build output is shown inside the TUI.
func (ec *ExploreCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	explorer := ui.NewExplorer(ec.deps.Engine, ec.deps.Config.WorkspaceRoot(), ec.deps.Logger)

	scheduler, session := ec.deps.NewSession(explorer.Output())
	defer func() {
		if err := session.Close(); err != nil {
			ec.deps.Logger.Warn("build session ended with error", zap.Error(err))
		}
	}()

	if !ec.deps.Config.Flags.NoWatch {
		watcher, err := ec.deps.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer watcher.Stop()
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
	}

	return explorer.Run(ctx, scheduler)
}
