package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/Negoth/linear-github-cli/internal/branch"
	"github.com/Negoth/linear-github-cli/internal/github"
	"github.com/Negoth/linear-github-cli/internal/gitx"
	"github.com/Negoth/linear-github-cli/internal/linear"
	"github.com/Negoth/linear-github-cli/internal/prompt"
	"github.com/Negoth/linear-github-cli/internal/ui"
)

// issueOptions carries the flag values shared by create and sub.
type issueOptions struct {
	repo      string // "owner/name"
	title     string
	body      string
	due       string
	labels    string // comma-separated
	team      string // Linear team key
	project   string // Linear project name
	ghProject string // GitHub ProjectV2 name
	noBranch  bool
}

func registerIssueFlags(flags *pflag.FlagSet, opts *issueOptions) {
	flags.StringVar(&opts.repo, "repo", "", "Target repository as owner/name (default from config)")
	flags.StringVar(&opts.title, "title", "", "Issue title (skips the interactive form)")
	flags.StringVar(&opts.body, "body", "", "Issue body")
	flags.StringVar(&opts.due, "due", "", "Due date: '2025-12-31', '+2w', or 'next friday'")
	flags.StringVar(&opts.labels, "labels", "", "Comma-separated labels")
	flags.StringVar(&opts.team, "team", "", "Linear team key (default from config)")
	flags.StringVar(&opts.project, "project", "", "Linear project name (default from config)")
	flags.StringVar(&opts.ghProject, "gh-project", "", "GitHub project board for date fields (default from config)")
	flags.BoolVar(&opts.noBranch, "no-branch", false, "Skip the branch-creation offer")
}

// resolveRepo determines the target repository from the flag or config,
// offering an interactive picker when neither names one.
func resolveRepo(flagRepo string) (owner, repo string) {
	target := flagRepo
	if target == "" && cfg.GitHubOwner != "" && cfg.GitHubRepo != "" {
		return cfg.GitHubOwner, cfg.GitHubRepo
	}
	if target == "" && ui.IsInteractive() {
		target = selectRepository()
	}
	if target == "" {
		FatalErrorWithHint("no target repository",
			"pass --repo owner/name or set github.owner and github.repo in ~/.config/lgc/config.yaml")
	}
	parts := strings.SplitN(target, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		FatalError("invalid --repo %q, expected owner/name", target)
	}
	return parts[0], parts[1]
}

// selectRepository runs a picker over the repositories the token can see,
// most recently updated first. Returns "" when the list is unavailable so
// the caller falls back to its usual error.
func selectRepository() string {
	gh := github.NewClient(cfg.GitHubToken, "", "")
	repos, err := gh.ListRepositories(rootCtx)
	if err != nil || len(repos) == 0 {
		if err != nil {
			WarnError("could not list repositories: %v", err)
		}
		return ""
	}

	names := make([]string, 0, len(repos))
	for _, r := range repos {
		names = append(names, r.FullName)
	}
	choice, err := prompt.Select("Which repository?", names)
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Issue creation cancelled.")
		exit(0)
	}
	return choice
}

// gatherInput builds the issue input from flags when --title is given,
// otherwise runs the interactive form seeded with the repo's labels,
// previews the rendered body, and confirms before anything is created.
func gatherInput(gh *github.Client, opts *issueOptions) *prompt.IssueInput {
	if opts.title != "" {
		input := &prompt.IssueInput{
			Title:       opts.title,
			Description: opts.body,
			Labels:      prompt.SplitLabels(opts.labels),
		}
		if opts.due != "" {
			due, err := parseDueFlag(opts.due)
			if err != nil {
				FatalError("%v", err)
			}
			input.DueDate = due
		}
		return input
	}

	var labelNames []string
	if repoLabels, err := gh.ListLabels(rootCtx); err != nil {
		WarnError("could not list repository labels: %v", err)
	} else {
		for _, l := range repoLabels {
			labelNames = append(labelNames, l.Name)
		}
	}

	input, err := prompt.IssueForm(labelNames)
	if err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			fmt.Fprintln(rootCmd.ErrOrStderr(), "Issue creation cancelled.")
			exit(0)
		}
		FatalError("%v", err)
	}

	if input.Description != "" {
		fmt.Println()
		fmt.Println(ui.RenderMarkdown(input.Description))
	}
	ok, err := prompt.Confirm(fmt.Sprintf("Create issue %q?", input.Title))
	if err != nil || !ok {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Issue creation cancelled.")
		exit(0)
	}
	return input
}

// runIssueFlow is the shared create path: GitHub issue, optional sub-issue
// link, Linear sync wait, metadata patch, project dates, branch offer.
// parentNodeID is empty for parent issues.
func runIssueFlow(opts *issueOptions, parentNodeID string) {
	if err := cfg.RequireGitHub(); err != nil {
		FatalErrorWithHint(err.Error(), "create a token at https://github.com/settings/tokens")
	}
	if err := cfg.RequireLinear(); err != nil {
		FatalErrorWithHint(err.Error(), "create a key at https://linear.app/settings/api")
	}

	owner, repo := resolveRepo(opts.repo)
	gh := github.NewClient(cfg.GitHubToken, owner, repo)
	lin := linear.NewClient(cfg.LinearAPIKey)

	input := gatherInput(gh, opts)

	issue, err := gh.CreateIssue(rootCtx, input.Title, input.Description, input.Labels)
	if err != nil {
		FatalError("creating GitHub issue: %v", err)
	}
	printCreatedIssue(issue)

	if parentNodeID != "" {
		if err := gh.AddSubIssue(rootCtx, parentNodeID, issue.NodeID); err != nil {
			WarnError("could not link sub-issue to parent: %v", err)
		} else if !quietFlag {
			fmt.Printf("  Linked as sub-issue.\n")
		}
	}

	linIssue := waitForLinearSync(lin, issue.HTMLURL)
	if linIssue != nil {
		applyLinearMetadata(lin, linIssue, input, opts)
	}

	setProjectDates(gh, issue.NodeID, input.DueDate, opts)

	if !opts.noBranch && linIssue != nil {
		offerBranch(linIssue, input.Title)
	}

	if jsonOutput {
		outputIssueJSON(issue, linIssue)
	}
}

// waitForLinearSync polls for the Linear issue the GitHub sync creates.
// Returns nil when the wait budget runs out; callers degrade.
func waitForLinearSync(lin *linear.Client, githubURL string) *linear.Issue {
	if !quietFlag {
		fmt.Printf("Waiting for Linear sync...\n")
	}

	linIssue, err := lin.WaitForSyncedIssue(rootCtx, githubURL, linear.WaitOptions{
		Interval: cfg.SyncInterval,
		MaxWait:  cfg.SyncMaxWait,
		OnAttempt: func(attempt, maxAttempts int) {
			// Every 4th attempt keeps the terminal quiet without going silent.
			if !quietFlag && attempt%4 == 0 {
				fmt.Printf("  still waiting (%d/%d)...\n", attempt, maxAttempts)
			}
		},
	})
	if err != nil {
		if errors.Is(err, linear.ErrNotSynced) {
			WarnError("Linear issue not synced within %s; due date, project, and labels were not set. Linear's sync will create the issue shortly, set its metadata there", cfg.SyncMaxWait)
			return nil
		}
		WarnError("waiting for Linear sync: %v", err)
		return nil
	}

	if !quietFlag {
		fmt.Printf("%s Synced to Linear: %s\n", okMark(), linIssue.Identifier)
	}
	return linIssue
}

// applyLinearMetadata patches due date, project, and labels onto the
// synced Linear issue and reports per-field outcomes.
func applyLinearMetadata(lin *linear.Client, linIssue *linear.Issue, input *prompt.IssueInput, opts *issueOptions) {
	patch := linear.MetadataPatch{
		DueDate: input.DueDate,
		Labels:  input.Labels,
	}

	projectName := opts.project
	if projectName == "" {
		projectName = cfg.LinearProject
	}
	if projectName != "" {
		if id, err := findLinearProject(lin, projectName); err != nil {
			WarnError("%v", err)
		} else {
			patch.ProjectID = id
		}
	}

	if patch.IsZero() {
		return
	}

	teamID := linearTeamID(lin, linIssue, opts)
	if teamID == "" && len(patch.Labels) > 0 {
		WarnError("no Linear team resolved; skipping label assignment")
		patch.Labels = nil
	}
	if patch.IsZero() {
		return
	}

	result := linear.ApplyMetadata(rootCtx, lin, linIssue.ID, teamID, patch)
	printPatchResult(result)
}

// linearTeamID resolves the team scope for label operations: the synced
// issue's own team when present, then the --team/config key.
func linearTeamID(lin *linear.Client, linIssue *linear.Issue, opts *issueOptions) string {
	if linIssue.Team != nil {
		return linIssue.Team.ID
	}

	key := opts.team
	if key == "" {
		key = cfg.LinearTeam
	}
	if key == "" {
		return ""
	}
	teams, err := lin.Teams(rootCtx)
	if err != nil {
		WarnError("listing Linear teams: %v", err)
		return ""
	}
	for _, t := range teams {
		if strings.EqualFold(t.Key, key) {
			return t.ID
		}
	}
	WarnError("Linear team %q not found", key)
	return ""
}

// findLinearProject resolves a project name to its ID.
func findLinearProject(lin *linear.Client, name string) (string, error) {
	projects, err := lin.Projects(rootCtx)
	if err != nil {
		return "", fmt.Errorf("listing Linear projects: %w", err)
	}
	for _, p := range projects {
		if strings.EqualFold(p.Name, name) {
			return p.ID, nil
		}
	}
	return "", fmt.Errorf("Linear project %q not found; set it manually in Linear", name)
}

// setProjectDates writes the due date into the GitHub project board's
// date fields. Board indexing lags issue creation, so the item lookup
// retries internally. Every step degrades to a warning.
func setProjectDates(gh *github.Client, issueNodeID, dueDate string, opts *issueOptions) {
	boardName := opts.ghProject
	if boardName == "" {
		boardName = cfg.ProjectName
	}
	if boardName == "" || dueDate == "" {
		return
	}

	project, err := gh.ResolveProject(rootCtx, boardName)
	if err != nil {
		WarnError("%v", err)
		return
	}

	itemID, err := gh.FindProjectItem(rootCtx, project.ID, issueNodeID)
	if err != nil {
		WarnError("issue not yet on board %q: %v", boardName, err)
		return
	}

	fields, err := gh.ResolveFields(rootCtx, project.ID, cfg.TargetField, cfg.StartField)
	if err != nil {
		WarnError("%v", err)
		return
	}

	// Each field writes independently; one failure never blocks the other.
	writeDate := func(fieldName, date string) {
		fieldID, ok := fields[fieldName]
		if !ok {
			WarnError("project %q has no %q field", boardName, fieldName)
			return
		}
		if err := gh.SetDateField(rootCtx, project.ID, itemID, fieldID, date); err != nil {
			WarnError("setting %q: %v", fieldName, err)
			return
		}
		if !quietFlag {
			fmt.Printf("%s %s → %s on %s\n", okMark(), fieldName, date, boardName)
		}
	}
	writeDate(cfg.TargetField, dueDate)
	writeDate(cfg.StartField, today())
}

// offerBranch proposes a work branch named after the Linear identifier.
func offerBranch(linIssue *linear.Issue, title string) {
	if !git.IsRepo(rootCtx) {
		return
	}

	owner := cfg.BranchOwner
	if owner == "" {
		owner = git.UserName(rootCtx)
	}
	name := branch.Compose(owner, linIssue.Identifier, title)

	ok, err := prompt.Confirm(fmt.Sprintf("Create branch %s?", name))
	if err != nil || !ok {
		return
	}
	if err := git.CreateBranch(rootCtx, name); err != nil {
		if errors.Is(err, gitx.ErrBranchExists) {
			WarnError("branch %s already exists; switch to it with: git switch %s", name, name)
			return
		}
		WarnError("creating branch: %v", err)
		return
	}
	if !quietFlag {
		fmt.Printf("%s Created branch %s\n", okMark(), name)
	}
}
