package commands

import (
	"github.com/spf13/cobra"

	"ktp/internal/ui"
)

// FailuresCommand handles the failures command
type FailuresCommand struct {
	deps *Dependencies
}

// NewFailuresCommand creates a new FailuresCommand
func NewFailuresCommand(deps *Dependencies) *FailuresCommand {
	return &FailuresCommand{deps: deps}
}

// Execute runs the command
func (fc *FailuresCommand) Execute(cmd *cobra.Command, args []string) error {
	results, err := fc.deps.Storage.Load()
	if err != nil {
		return err
	}

	return ui.NewFailureViewer(fc.deps.Storage).View(results)
}
