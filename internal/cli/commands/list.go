package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ListCommand handles the list command
type ListCommand struct {
	deps *Dependencies
}

// NewListCommand creates a new ListCommand
func NewListCommand(deps *Dependencies) *ListCommand {
	return &ListCommand{deps: deps}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	if err := lc.deps.discover(cmd.Context()); err != nil {
		return err
	}

	files := lc.deps.Filter.FilterByName(lc.deps.Store.Roots(), lc.deps.Config.Flags.NameFilter)
	if len(files) == 0 {
		color.Yellow("No tests found")
		return nil
	}

	lc.deps.Formatter.PrintTestList(files, lc.deps.Config.Flags.TestCases)
	return nil
}
