package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Negoth/linear-github-cli/internal/branch"
	"github.com/Negoth/linear-github-cli/internal/github"
	"github.com/Negoth/linear-github-cli/internal/linear"
)

var subOpts issueOptions

var subCmd = &cobra.Command{
	Use:   "sub <parent>",
	Short: "Create a sub-issue under an existing parent",
	Long: `Create a GitHub issue linked as a sub-issue of <parent>, then wire
it to Linear like 'lgc create'.

<parent> is a GitHub issue number ("45" or "#45") or a Linear identifier
("LEA-123"), which is resolved to its synced GitHub issue.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		parentNodeID := resolveParentNodeID(args[0], &subOpts)
		runIssueFlow(&subOpts, parentNodeID)
	},
}

// resolveParentNodeID turns the parent reference into the GraphQL node ID
// the sub-issue mutation needs. A missing parent is a precondition
// failure: nothing has been created yet, so it aborts.
func resolveParentNodeID(ref string, opts *issueOptions) string {
	if err := cfg.RequireGitHub(); err != nil {
		FatalErrorWithHint(err.Error(), "create a token at https://github.com/settings/tokens")
	}

	owner, repo := resolveRepo(opts.repo)
	gh := github.NewClient(cfg.GitHubToken, owner, repo)

	number, err := parentIssueNumber(ref)
	if err != nil {
		FatalError("%v", err)
	}

	nodeID, err := gh.IssueNodeID(rootCtx, number)
	if err != nil {
		FatalError("resolving parent issue: %v", err)
	}
	return nodeID
}

// parentIssueNumber resolves a parent reference to a GitHub issue number.
// Linear identifiers are resolved through the synced issue's GitHub
// attachment.
func parentIssueNumber(ref string) (int, error) {
	ref = strings.TrimSpace(ref)

	if id, ok := branch.ExtractIssueID(ref); ok && id == ref {
		if err := cfg.RequireLinear(); err != nil {
			return 0, err
		}
		lin := linear.NewClient(cfg.LinearAPIKey)
		issue, err := lin.IssueByIdentifier(rootCtx, ref)
		if err != nil {
			return 0, err
		}
		if issue == nil {
			return 0, fmt.Errorf("Linear issue %s not found", ref)
		}
		number, ok := linear.GitHubIssueNumber(issue)
		if !ok {
			return 0, fmt.Errorf("%s has no linked GitHub issue; pass the GitHub number instead", ref)
		}
		return number, nil
	}

	number, err := strconv.Atoi(strings.TrimPrefix(ref, "#"))
	if err != nil || number <= 0 {
		return 0, fmt.Errorf("invalid parent %q: expected an issue number or a Linear identifier", ref)
	}
	return number, nil
}

func init() {
	registerIssueFlags(subCmd.Flags(), &subOpts)
	rootCmd.AddCommand(subCmd)
}
