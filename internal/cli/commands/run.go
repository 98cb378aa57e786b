package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ktp/internal/domain"
	"ktp/internal/execution"
	"ktp/internal/ui"
)

// RunCommand handles the run command
type RunCommand struct {
	deps *Dependencies
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(deps *Dependencies) *RunCommand {
	return &RunCommand{deps: deps}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := rc.deps.discover(ctx); err != nil {
		return err
	}

	req, err := rc.request(args)
	if err != nil {
		return err
	}

	scheduler, session := rc.deps.NewSession(os.Stdout)
	leaves := scheduler.Plan(req)
	if len(leaves) == 0 && rc.deps.Config.WorkspaceRoot() != "" {
		color.Yellow("No tests to execute")
		return nil
	}

	progressBar := ui.NewProgressBar(len(leaves))
	summary, runErr := scheduler.Run(ctx, req, progressBar)
	progressBar.Finish()

	if err := session.Close(); err != nil {
		rc.deps.Logger.Warn("build session ended with error", zap.Error(err))
	}

	output, err := rc.deps.Storage.Save(summary)
	if err != nil {
		return fmt.Errorf("failed to save run results: %w", err)
	}
	rc.deps.Formatter.PrintMetaStats(output)

	if runErr != nil {
		return runErr
	}
	if summary.Cancelled {
		return ctx.Err()
	}
	return nil
}

// request resolves ids and the name filter into a run request. Explicit ids win over the
// filter; with neither, the request is empty and runs everything.
func (rc *RunCommand) request(ids []string) (execution.Request, error) {
	var req execution.Request
	store := rc.deps.Store

	for _, id := range ids {
		n, ok := store.Get(id)
		if !ok {
			return req, fmt.Errorf("unknown test id %q", id)
		}
		req.Include = append(req.Include, n)
	}

	if len(ids) == 0 && rc.deps.Config.Flags.NameFilter != "" {
		req.Include = rc.deps.Filter.FilterByName(store.Roots(), rc.deps.Config.Flags.NameFilter)
		if len(req.Include) == 0 {
			return req, errors.New("no test files match the filter")
		}
	}

	for _, id := range rc.deps.Config.Flags.Exclude {
		n, ok := store.Get(id)
		if !ok {
			rc.deps.Logger.Debug("excluded id not in tree", zap.String("id", id))
			continue
		}
		req.Exclude = append(req.Exclude, n)
	}
	return req, nil
}

// describeOutcome is used by single-item runs where a progress bar adds nothing
func describeOutcome(o domain.Outcome) string {
	if o.Status == domain.StatusFailed {
		return color.RedString("✗ %s: %s", o.Selector, o.Message)
	}
	return color.GreenString("✓ %s sent to the build session", o.Selector)
}
