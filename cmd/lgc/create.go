package main

import (
	"github.com/spf13/cobra"
)

var createOpts issueOptions

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a parent issue on GitHub and wire it to Linear",
	Long: `Create a GitHub issue, wait for Linear's GitHub sync to mirror it,
then patch due date, project, and labels onto the Linear issue.

Without --title the command runs an interactive form. When a GitHub
project board is configured, the due date is also written to the board's
date fields. If the Linear issue does not appear within the sync wait
budget the metadata step is skipped with a warning; the sync still
completes on Linear's side eventually.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runIssueFlow(&createOpts, "")
	},
}

func init() {
	registerIssueFlags(createCmd.Flags(), &createOpts)
	rootCmd.AddCommand(createCmd)
}
