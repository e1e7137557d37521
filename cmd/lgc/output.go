package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/Negoth/linear-github-cli/internal/github"
	"github.com/Negoth/linear-github-cli/internal/linear"
	"github.com/Negoth/linear-github-cli/internal/timeparse"
	"github.com/Negoth/linear-github-cli/internal/ui"
)

// exit wraps os.Exit so flows can end early without FatalError's prefix.
func exit(code int) {
	os.Exit(code)
}

// okMark returns a green check for human output.
func okMark() string {
	return color.New(color.FgGreen).Sprint(ui.IconPass)
}

// today returns the current date in Linear/ProjectV2 date format.
func today() string {
	return timeparse.FormatDueDate(time.Now())
}

// parseDueFlag resolves a --due flag value to YYYY-MM-DD.
func parseDueFlag(raw string) (string, error) {
	due, err := timeparse.ParseDueDate(raw, time.Now())
	if err != nil {
		return "", err
	}
	return timeparse.FormatDueDate(due), nil
}

// printCreatedIssue reports the freshly created GitHub issue.
func printCreatedIssue(issue *github.Issue) {
	if quietFlag {
		return
	}
	fmt.Printf("\n%s Created issue #%d: %s\n", okMark(), issue.Number, issue.Title)
	fmt.Printf("  %s\n", ui.RenderMuted(issue.HTMLURL))
}

// printPatchResult reports per-field metadata outcomes without collapsing
// them into a single pass/fail.
func printPatchResult(result linear.PatchResult) {
	if quietFlag {
		return
	}
	for _, f := range result.Fields {
		switch f.Outcome {
		case linear.OutcomeApplied:
			fmt.Printf("%s Linear %s set\n", okMark(), f.Field)
		case linear.OutcomeFailed:
			fmt.Printf("%s Linear %s failed: %v, set it manually in Linear\n",
				color.New(color.FgRed).Sprint(ui.IconFail), f.Field, f.Err)
		case linear.OutcomeSkipped:
			// not requested, say nothing
		}
	}
}

// issueSummary is the --json output shape for create and sub.
type issueSummary struct {
	GitHubNumber     int    `json:"github_number"`
	GitHubURL        string `json:"github_url"`
	Title            string `json:"title"`
	LinearID         string `json:"linear_id,omitempty"`
	LinearIdentifier string `json:"linear_identifier,omitempty"`
	LinearURL        string `json:"linear_url,omitempty"`
	Synced           bool   `json:"synced"`
}

func outputIssueJSON(issue *github.Issue, linIssue *linear.Issue) {
	summary := issueSummary{
		GitHubNumber: issue.Number,
		GitHubURL:    issue.HTMLURL,
		Title:        issue.Title,
	}
	if linIssue != nil {
		summary.Synced = true
		summary.LinearID = linIssue.ID
		summary.LinearIdentifier = linIssue.Identifier
		summary.LinearURL = linIssue.URL
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		WarnError("marshaling JSON output: %v", err)
		return
	}
	fmt.Println(string(data))
}
