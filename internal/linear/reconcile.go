package linear

import (
	"context"
	"fmt"
	"strings"
)

// MetadataPatch is the sparse set of fields to push onto a Linear issue
// after sync. Fields are idempotent assignments: re-applying overwrites
// with current values, never accumulates.
type MetadataPatch struct {
	DueDate   string   // YYYY-MM-DD; empty means don't set
	ProjectID string   // empty means don't set
	Labels    []string // label names; nil/empty means don't touch labels
}

// IsZero reports whether the patch carries nothing to apply.
func (p MetadataPatch) IsZero() bool {
	return p.DueDate == "" && p.ProjectID == "" && len(p.Labels) == 0
}

// Outcome classifies what happened to one field of a patch.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeSkipped         // field not requested
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FieldResult is the per-field outcome of a metadata patch.
type FieldResult struct {
	Field   string
	Outcome Outcome
	Err     error
}

// PatchResult aggregates per-field outcomes. A failure in one field never
// aborts the others; callers report the whole picture to the user.
type PatchResult struct {
	Fields []FieldResult
}

// Failed reports whether any requested field failed.
func (r PatchResult) Failed() bool {
	for _, f := range r.Fields {
		if f.Outcome == OutcomeFailed {
			return true
		}
	}
	return false
}

// metadataAPI is the slice of the Linear client the reconciler needs.
type metadataAPI interface {
	UpdateIssue(ctx context.Context, issueID string, input UpdateIssueInput) error
	TeamLabels(ctx context.Context, teamID string) ([]Label, error)
	CreateLabel(ctx context.Context, teamID, name string) (*Label, error)
}

// ApplyMetadata pushes a patch onto an issue via discrete, independently-
// failing calls: due date, project, then labels. Labels are find-or-create
// against the team's label set (case-insensitive name match), then written
// in a single batched update.
func ApplyMetadata(ctx context.Context, api metadataAPI, issueID, teamID string, patch MetadataPatch) PatchResult {
	var result PatchResult

	record := func(field string, outcome Outcome, err error) {
		result.Fields = append(result.Fields, FieldResult{Field: field, Outcome: outcome, Err: err})
	}

	if patch.DueDate == "" {
		record("due date", OutcomeSkipped, nil)
	} else {
		due := patch.DueDate
		if err := api.UpdateIssue(ctx, issueID, UpdateIssueInput{DueDate: &due}); err != nil {
			record("due date", OutcomeFailed, err)
		} else {
			record("due date", OutcomeApplied, nil)
		}
	}

	if patch.ProjectID == "" {
		record("project", OutcomeSkipped, nil)
	} else {
		projectID := patch.ProjectID
		if err := api.UpdateIssue(ctx, issueID, UpdateIssueInput{ProjectID: &projectID}); err != nil {
			record("project", OutcomeFailed, err)
		} else {
			record("project", OutcomeApplied, nil)
		}
	}

	if len(patch.Labels) == 0 {
		record("labels", OutcomeSkipped, nil)
		return result
	}

	labelIDs, err := resolveLabelIDs(ctx, api, teamID, patch.Labels)
	if err != nil {
		record("labels", OutcomeFailed, err)
		return result
	}
	if err := api.UpdateIssue(ctx, issueID, UpdateIssueInput{LabelIDs: labelIDs}); err != nil {
		record("labels", OutcomeFailed, err)
		return result
	}
	record("labels", OutcomeApplied, nil)
	return result
}

// resolveLabelIDs maps requested label names to IDs, creating any label
// the team does not already have. A single label-creation failure drops
// that label and keeps going; the error is returned only when no requested
// label could be resolved at all.
func resolveLabelIDs(ctx context.Context, api metadataAPI, teamID string, names []string) ([]string, error) {
	existing, err := api.TeamLabels(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("listing team labels: %w", err)
	}

	byName := make(map[string]string, len(existing))
	for _, l := range existing {
		byName[strings.ToLower(l.Name)] = l.ID
	}

	var ids []string
	var lastErr error
	for _, name := range names {
		if id, ok := byName[strings.ToLower(name)]; ok {
			ids = append(ids, id)
			continue
		}
		created, err := api.CreateLabel(ctx, teamID, name)
		if err != nil {
			lastErr = err
			continue
		}
		ids = append(ids, created.ID)
	}

	if len(ids) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return ids, nil
}
