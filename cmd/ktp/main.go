package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ktp/internal/cli"
	"ktp/internal/cli/commands"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:           "ktp",
		Short:         "Kotlin test processor",
		Long:          `Discover Kotlin tests in a Gradle workspace, keep the test tree in step with the filesystem, and run tests by class or method through Gradle.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands; dependencies are built once flags are parsed
	cmds := commands.NewCommands()
	cmds.Register(rootCmd, &flags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
