package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ktp/internal/cli"
	"ktp/internal/config"
	"ktp/internal/discovery"
	"ktp/internal/execution"
	"ktp/internal/logging"
	"ktp/internal/storage"
	"ktp/internal/tree"
	"ktp/internal/ui"
	"ktp/internal/watch"
)

// Dependencies are the components shared by every command. They are built once the
// workspace and flags are known.
type Dependencies struct {
	Config    *config.Config
	Logger    *zap.Logger
	Store     *tree.Store
	Engine    *discovery.Engine
	Filter    *discovery.Filter
	Storage   storage.Storage
	Formatter *ui.Formatter
}

// NewDependencies wires discovery, storage and output for cfg
func NewDependencies(cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger = logging.OrNop(logger)

	classifier := discovery.NewClassifier(cfg.Extensions, cfg.NameMarker, discovery.DefaultContentMarkers)
	scanner := discovery.NewScanner(cfg.PathsToIgnore, cfg.ExcludeGlobs, classifier)

	var extractor discovery.Extractor
	switch cfg.Extractor {
	case config.ExtractorSyntax:
		extractor = discovery.NewSyntaxExtractor(cfg.NameMarker)
	default:
		extractor = discovery.NewHeuristicExtractor(cfg.NameMarker)
	}

	store := tree.NewStore()
	engine := discovery.NewEngine(store, classifier, extractor, scanner, cfg.WorkspaceRoots, logger)

	return &Dependencies{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Engine:    engine,
		Filter:    discovery.NewFilter(),
		Storage:   storage.NewJSONStorage(cfg.GetOutputPath()),
		Formatter: ui.NewFormatter(cfg.WorkspaceRoot()),
	}, nil
}

// NewSession starts (lazily) the shell build commands are sent to and a scheduler over it
func (d *Dependencies) NewSession(out io.Writer) (*execution.Scheduler, *execution.ShellSession) {
	root := d.Config.WorkspaceRoot()
	session := execution.NewShellSession(d.Config.Shell, root, out, d.Logger)
	invoker := execution.NewGradleInvoker(session, d.Config.BuildCommand, d.Config.PreferWrapper, d.Config.Manifests, d.Logger)
	return execution.NewScheduler(d.Store, invoker, root, d.Logger), session
}

// NewWatcher creates a watcher that rescans into the store
func (d *Dependencies) NewWatcher() (*watch.Watcher, error) {
	classifier := discovery.NewClassifier(d.Config.Extensions, d.Config.NameMarker, discovery.DefaultContentMarkers)
	return watch.New(d.Engine, d.Config.WorkspaceRoots, d.Config.PathsToIgnore, classifier.HasExtension, d.Config.WatchDebounce, d.Logger)
}

// Commands holds all CLI commands
type Commands struct {
	deps *Dependencies

	List     *ListCommand
	Run      *RunCommand
	Test     *TestCommand
	Watch    *WatchCommand
	Explore  *ExploreCommand
	Failures *FailuresCommand
}

// NewCommands creates all commands. Their dependencies are filled in by Register's
// pre-run hook.
func NewCommands() *Commands {
	c := &Commands{deps: &Dependencies{}}
	c.List = NewListCommand(c.deps)
	c.Run = NewRunCommand(c.deps)
	c.Test = NewTestCommand(c.deps)
	c.Watch = NewWatchCommand(c.deps)
	c.Explore = NewExploreCommand(c.deps)
	c.Failures = NewFailuresCommand(c.deps)
	return c
}

// Setup loads configuration for the workspace and builds the shared dependencies
func (c *Commands) Setup(flags *cli.Flags) error {
	workspace := flags.Workspace
	if workspace == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
		workspace = wd
	}

	cfg, err := config.Load(workspace, flags.ToConfigFlags())
	if err != nil {
		return err
	}
	logger, err := logging.New(flags.Verbose)
	if err != nil {
		return err
	}
	deps, err := NewDependencies(cfg, logger)
	if err != nil {
		return err
	}
	*c.deps = *deps
	return nil
}

// Sync flushes the logger
func (c *Commands) Sync() {
	if c.deps.Logger != nil {
		_ = c.deps.Logger.Sync()
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) {
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&flags.Workspace, "workspace", "w", "", "Workspace folder (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&flags.Extractor, "extractor", "", "Declaration extractor: heuristic or syntax")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return c.Setup(flags)
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		c.Sync()
	}

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered tests",
		Long:  "Scan the workspace and print the test tree without running anything",
		Args:  cobra.NoArgs,
		RunE:  c.List.Execute,
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter test files by name pattern (supports wildcards, e.g., '*ServiceTest.kt' or '*Payment*')")
	listCmd.Flags().BoolVarP(&flags.TestCases, "test-cases", "c", false, "List classes and methods instead of files only")
	rootCmd.AddCommand(listCmd)

	// Run command
	runCmd := &cobra.Command{
		Use:   "run [id...]",
		Short: "Run tests through Gradle",
		Long:  "Discover tests and send one Gradle test command per leaf to a shell session. With no ids, everything is run.",
		RunE:  c.Run.Execute,
	}
	runCmd.Flags().StringSliceVarP(&flags.Exclude, "exclude", "x", nil, "Test ids to leave out, including their descendants")
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Only run test files matching this name pattern")
	rootCmd.AddCommand(runCmd)

	// Test command
	testCmd := &cobra.Command{
		Use:   "test <method> <class>",
		Short: "Run a single test method or class",
		Long:  "Send one Gradle test command for the given class, or class.method when method is not empty",
		Args:  cobra.ExactArgs(2),
		RunE:  c.Test.Execute,
	}
	rootCmd.AddCommand(testCmd)

	// Watch command
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the test tree in step with the filesystem",
		Long:  "Discover tests, then rescan files as they are created, changed, renamed or removed",
		Args:  cobra.NoArgs,
		RunE:  c.Watch.Execute,
	}
	rootCmd.AddCommand(watchCmd)

	// Explore command
	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse and run tests interactively",
		Long:  "Open an interactive test tree. Enter runs the selected node, x excludes it from runs, r refreshes, q quits",
		Args:  cobra.NoArgs,
		RunE:  c.Explore.Execute,
	}
	exploreCmd.Flags().BoolVar(&flags.NoWatch, "no-watch", false, "Do not watch the workspace for changes")
	rootCmd.AddCommand(exploreCmd)

	// Failures command
	failuresCmd := &cobra.Command{
		Use:   "failures",
		Short: "View failed run items interactively",
		Long:  "Display the failed items of the last run in an interactive viewer",
		Args:  cobra.NoArgs,
		RunE:  c.Failures.Execute,
	}
	rootCmd.AddCommand(failuresCmd)
}

// discover rebuilds the store from scratch
func (d *Dependencies) discover(ctx context.Context) error {
	if err := d.Engine.DiscoverAll(ctx); err != nil {
		return fmt.Errorf("discover tests: %w", err)
	}
	return nil
}
