// Command lgc creates GitHub issues, links them to Linear through Linear's
// native GitHub sync, and patches metadata onto the Linear issue once the
// sync completes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Negoth/linear-github-cli/internal/config"
	"github.com/Negoth/linear-github-cli/internal/gitx"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	cfg *config.Config
	git *gitx.Git

	jsonOutput bool
	quietFlag  bool

	// Signal-aware context for graceful cancellation.
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:   "lgc",
	Short: "Create GitHub issues wired to Linear",
	Long: `lgc creates GitHub issues (parents and sub-issues), waits for
Linear's GitHub sync to mirror them, then patches due date, project, and
labels onto the Linear issue. It also generates branch names and first
commits from Linear identifiers.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			FatalError("resolving working directory: %v", err)
		}
		cfg, err = config.Load(cwd)
		if err != nil {
			FatalError("loading configuration: %v", err)
		}
		git = gitx.New(&gitx.ExecRunner{})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the lgc version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("lgc " + Version)
	},
}

func main() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer rootCancel()

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output machine-readable JSON")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		FatalError("%v", err)
	}
}
