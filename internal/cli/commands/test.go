package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ktp/internal/domain"
	"ktp/internal/execution"
)

// TestCommand handles the test command: run one class or method by name
type TestCommand struct {
	deps *Dependencies
}

// NewTestCommand creates a new TestCommand
func NewTestCommand(deps *Dependencies) *TestCommand {
	return &TestCommand{deps: deps}
}

// Execute runs the command. args are method then class; an empty method runs the class.
func (tc *TestCommand) Execute(cmd *cobra.Command, args []string) error {
	sel := domain.Selector{Method: args[0], Class: args[1]}
	if sel.Class == "" {
		return errors.New("class name is required")
	}

	scheduler, session := tc.deps.NewSession(os.Stdout)
	summary, runErr := scheduler.RunSelector(cmd.Context(), sel, execution.ReporterFunc(func(o domain.Outcome) {
		if o.Status != domain.StatusStarted {
			fmt.Fprintln(cmd.ErrOrStderr(), describeOutcome(o))
		}
	}))

	if err := session.Close(); err != nil {
		tc.deps.Logger.Warn("build session ended with error", zap.Error(err))
	}

	if _, err := tc.deps.Storage.Save(summary); err != nil {
		return fmt.Errorf("failed to save run results: %w", err)
	}
	if runErr != nil {
		return runErr
	}
	if _, failed := summary.Counts(); failed > 0 {
		return fmt.Errorf("%s: %s", sel, summary.Outcomes[len(summary.Outcomes)-1].Message)
	}
	return nil
}
