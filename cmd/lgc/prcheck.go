package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Negoth/linear-github-cli/internal/gitx"
)

var prcheckCmd = &cobra.Command{
	Use:   "prcheck",
	Short: "Verify the branch is safe to open a PR from",
	Long: `Check that the current branch has an upstream and no unpushed
commits. Run this before creating a pull request; a PR opened from a
branch with unpushed commits reviews stale code.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runPRCheck()
	},
}

func runPRCheck() {
	if !git.IsRepo(rootCtx) {
		FatalError("not a git repository")
	}

	branchName, err := git.CurrentBranch(rootCtx)
	if err != nil {
		FatalError("%v", err)
	}

	ahead, err := git.AheadCount(rootCtx)
	if err != nil {
		if errors.Is(err, gitx.ErrNoUpstream) {
			FatalErrorWithHint(
				fmt.Sprintf("branch %s has no upstream", branchName),
				fmt.Sprintf("push it first: git push -u origin %s", branchName))
		}
		FatalError("%v", err)
	}

	if ahead > 0 {
		FatalErrorWithHint(
			fmt.Sprintf("branch %s has %d unpushed commit(s)", branchName, ahead),
			"push them first: git push")
	}

	if !quietFlag {
		fmt.Printf("%s %s is up to date with its upstream, safe to open a PR\n", okMark(), branchName)
	}
}

func init() {
	rootCmd.AddCommand(prcheckCmd)
}
