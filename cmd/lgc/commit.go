package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Negoth/linear-github-cli/internal/branch"
	"github.com/Negoth/linear-github-cli/internal/prompt"
)

var commitYes bool

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Generate the first commit of a branch from its name",
	Long: `Derive a conventional-commit message from the current branch name
({prefix}/{LINEAR-ID}-{slug}) and record it as an empty commit, anchoring
the branch before real work lands.

A branch prefix outside the known set (feat, fix, chore, docs, refactor,
test, research) prompts for the commit type, unless commit.default_type
is set in the config.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runCommitFirst()
	},
}

func runCommitFirst() {
	if !git.IsRepo(rootCtx) {
		FatalError("not a git repository")
	}

	branchName, err := git.CurrentBranch(rootCtx)
	if err != nil {
		FatalError("%v", err)
	}

	commitType := resolveCommitType(branchName)
	message := firstCommitMessage(commitType, branchName)

	if !commitYes {
		fmt.Printf("Commit message:\n\n%s\n\n", message)
		ok, err := prompt.Confirm("Record this commit?")
		if err != nil || !ok {
			fmt.Fprintln(rootCmd.ErrOrStderr(), "Commit cancelled.")
			exit(0)
		}
	}

	if err := git.CommitAllowEmpty(rootCtx, message); err != nil {
		FatalError("recording commit: %v", err)
	}
	if !quietFlag {
		fmt.Printf("%s Committed: %s\n", okMark(), strings.SplitN(message, "\n", 2)[0])
	}
}

// resolveCommitType maps the branch prefix to a commit type. An unknown
// prefix falls back to config (commit.default_type) when set, and prompts
// otherwise: silently guessing the type hides branch-naming mistakes.
func resolveCommitType(branchName string) string {
	if p, ok := branch.ParsePrefix(branchName); ok {
		return branch.CommitType(p)
	}

	if cfg.CommitDefaultType != "" {
		return cfg.CommitDefaultType
	}

	options := make([]string, 0, len(branch.Prefixes()))
	seen := map[string]bool{}
	for _, p := range branch.Prefixes() {
		t := branch.CommitType(p)
		if !seen[t] {
			seen[t] = true
			options = append(options, t)
		}
	}

	choice, err := prompt.Select(fmt.Sprintf("Branch %q has no known prefix. Commit type?", branchName), options)
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Commit cancelled.")
		exit(0)
	}
	return choice
}

// firstCommitMessage composes "type: start <subject>" with a Linear ref
// footer when the branch carries an identifier.
func firstCommitMessage(commitType, branchName string) string {
	id, hasID := branch.ExtractIssueID(branchName)

	subject := branchSubject(branchName, id)
	msg := fmt.Sprintf("%s: start %s", commitType, subject)
	if hasID {
		msg += fmt.Sprintf("\n\nRefs: %s", id)
	}
	return msg
}

// branchSubject extracts the human-readable part of the branch name: the
// slug after the Linear ID with hyphens respaced, falling back to the
// segment after the prefix, then the whole name.
func branchSubject(branchName, id string) string {
	rest := branchName
	if idx := strings.Index(rest, "/"); idx >= 0 {
		rest = rest[idx+1:]
	}
	if id != "" {
		rest = strings.TrimPrefix(rest, id)
		rest = strings.TrimPrefix(rest, "-")
	}
	if rest == "" {
		if id != "" {
			return id
		}
		return branchName
	}
	return strings.ReplaceAll(rest, "-", " ")
}

func init() {
	commitCmd.Flags().BoolVarP(&commitYes, "yes", "y", false, "Commit without confirmation")
	rootCmd.AddCommand(commitCmd)
}
