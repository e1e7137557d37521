// Package prompt gathers interactive input through terminal forms.
package prompt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/Negoth/linear-github-cli/internal/timeparse"
)

// ErrAborted is returned when the user cancels a form (Ctrl+C). Callers
// exit 0: cancellation is not an error.
var ErrAborted = errors.New("cancelled")

// IssueInput is what the issue forms collect.
type IssueInput struct {
	Title       string
	Description string
	DueDate     string // YYYY-MM-DD, empty when skipped
	Labels      []string
}

// maxTitleLength matches GitHub's effective issue-title limit.
const maxTitleLength = 256

// ValidateTitle enforces the title rules shared by both issue forms.
func ValidateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("title is required")
	}
	if len(s) > maxTitleLength {
		return fmt.Errorf("title must be %d characters or less", maxTitleLength)
	}
	return nil
}

// ValidateDueDate accepts empty (no due date) or anything the layered date
// parser understands.
func ValidateDueDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := timeparse.ParseDueDate(strings.TrimSpace(s), time.Now()); err != nil {
		return err
	}
	return nil
}

// SplitLabels parses a comma-separated label list, dropping empties.
func SplitLabels(s string) []string {
	var out []string
	for _, l := range strings.Split(s, ",") {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// IssueForm runs the interactive issue form. existingLabels seeds the
// label picker; free-text labels can be added alongside. Confirmation is
// the caller's step: it sits after the rendered body preview.
func IssueForm(existingLabels []string) (*IssueInput, error) {
	var (
		title       string
		description string
		dueDateRaw  string
		picked      []string
		extraLabels string
	)

	labelOptions := make([]huh.Option[string], 0, len(existingLabels))
	for _, l := range existingLabels {
		labelOptions = append(labelOptions, huh.NewOption(l, l))
	}

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Description("Issue title (required)").
				Placeholder("e.g., Fix login bug").
				Value(&title).
				Validate(ValidateTitle),

			huh.NewText().
				Title("Description").
				Description("Markdown body for the issue").
				CharLimit(10000).
				Value(&description),

			huh.NewInput().
				Title("Due date").
				Description("'2025-12-31', '+2w', or 'next friday'; empty for none").
				Value(&dueDateRaw).
				Validate(ValidateDueDate),
		),
	}

	labelFields := []huh.Field{}
	if len(labelOptions) > 0 {
		labelFields = append(labelFields,
			huh.NewMultiSelect[string]().
				Title("Labels").
				Description("Existing labels to apply").
				Options(labelOptions...).
				Value(&picked))
	}
	labelFields = append(labelFields,
		huh.NewInput().
			Title("New labels").
			Description("Comma-separated labels to add (optional)").
			Placeholder("e.g., urgent, backend").
			Value(&extraLabels))
	groups = append(groups, huh.NewGroup(labelFields...))

	if err := huh.NewForm(groups...).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, ErrAborted
		}
		return nil, fmt.Errorf("form error: %w", err)
	}

	input := &IssueInput{
		Title:       strings.TrimSpace(title),
		Description: description,
		Labels:      append(picked, SplitLabels(extraLabels)...),
	}
	if raw := strings.TrimSpace(dueDateRaw); raw != "" {
		due, err := timeparse.ParseDueDate(raw, time.Now())
		if err != nil {
			return nil, fmt.Errorf("parsing due date: %w", err)
		}
		input.DueDate = timeparse.FormatDueDate(due)
	}
	return input, nil
}

// Select runs a single-choice picker over options.
func Select(title string, options []string) (string, error) {
	opts := make([]huh.Option[string], 0, len(options))
	for _, o := range options {
		opts = append(opts, huh.NewOption(o, o))
	}

	var choice string
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(title).
			Options(opts...).
			Value(&choice),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrAborted
		}
		return "", fmt.Errorf("form error: %w", err)
	}
	return choice, nil
}

// Confirm asks a yes/no question.
func Confirm(title string) (bool, error) {
	var ok bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Value(&ok),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, ErrAborted
		}
		return false, fmt.Errorf("form error: %w", err)
	}
	return ok, nil
}
