package linear

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI implements metadataAPI with scriptable failures.
type fakeAPI struct {
	labels      []Label
	failDueDate bool
	failCreate  map[string]bool // label name -> fail

	updates []UpdateIssueInput
	created []string
}

func (f *fakeAPI) UpdateIssue(ctx context.Context, issueID string, input UpdateIssueInput) error {
	if f.failDueDate && input.DueDate != nil {
		return errors.New("due date rejected")
	}
	f.updates = append(f.updates, input)
	return nil
}

func (f *fakeAPI) TeamLabels(ctx context.Context, teamID string) ([]Label, error) {
	return f.labels, nil
}

func (f *fakeAPI) CreateLabel(ctx context.Context, teamID, name string) (*Label, error) {
	if f.failCreate[name] {
		return nil, errors.New("label creation failed")
	}
	f.created = append(f.created, name)
	return &Label{ID: "new-" + name, Name: name}, nil
}

func outcomeOf(t *testing.T, r PatchResult, field string) FieldResult {
	t.Helper()
	for _, f := range r.Fields {
		if f.Field == field {
			return f
		}
	}
	t.Fatalf("no result for field %q", field)
	return FieldResult{}
}

func TestApplyMetadataAllFields(t *testing.T) {
	api := &fakeAPI{labels: []Label{{ID: "l1", Name: "Fix"}}}

	result := ApplyMetadata(context.Background(), api, "issue-1", "team-1", MetadataPatch{
		DueDate:   "2025-12-31",
		ProjectID: "proj-1",
		Labels:    []string{"fix"},
	})

	assert.False(t, result.Failed())
	assert.Equal(t, OutcomeApplied, outcomeOf(t, result, "due date").Outcome)
	assert.Equal(t, OutcomeApplied, outcomeOf(t, result, "project").Outcome)
	assert.Equal(t, OutcomeApplied, outcomeOf(t, result, "labels").Outcome)

	// Three discrete update calls: due date, project, batched labels.
	require.Len(t, api.updates, 3)
	require.NotNil(t, api.updates[0].DueDate)
	assert.Equal(t, "2025-12-31", *api.updates[0].DueDate)
	require.NotNil(t, api.updates[1].ProjectID)
	assert.Equal(t, "proj-1", *api.updates[1].ProjectID)
	// Case-insensitive match: "fix" resolves to existing "Fix", no create.
	assert.Equal(t, []string{"l1"}, api.updates[2].LabelIDs)
	assert.Empty(t, api.created)
}

// TestApplyMetadataFailureIndependence: a label failure must not prevent
// the due date from being set, and vice versa.
func TestApplyMetadataFailureIndependence(t *testing.T) {
	api := &fakeAPI{
		failCreate: map[string]bool{"newlabel": true},
	}

	result := ApplyMetadata(context.Background(), api, "issue-1", "team-1", MetadataPatch{
		DueDate: "2025-12-31",
		Labels:  []string{"newlabel"},
	})

	assert.True(t, result.Failed())
	assert.Equal(t, OutcomeApplied, outcomeOf(t, result, "due date").Outcome)
	assert.Equal(t, OutcomeFailed, outcomeOf(t, result, "labels").Outcome)
	assert.Equal(t, OutcomeSkipped, outcomeOf(t, result, "project").Outcome)

	// The due-date write happened despite the label failure.
	require.Len(t, api.updates, 1)
	require.NotNil(t, api.updates[0].DueDate)
}

func TestApplyMetadataDueDateFailureDoesNotBlockSiblings(t *testing.T) {
	api := &fakeAPI{
		failDueDate: true,
		labels:      []Label{{ID: "l1", Name: "fix"}},
	}

	result := ApplyMetadata(context.Background(), api, "issue-1", "team-1", MetadataPatch{
		DueDate:   "2025-12-31",
		ProjectID: "proj-1",
		Labels:    []string{"fix"},
	})

	assert.Equal(t, OutcomeFailed, outcomeOf(t, result, "due date").Outcome)
	assert.Equal(t, OutcomeApplied, outcomeOf(t, result, "project").Outcome)
	assert.Equal(t, OutcomeApplied, outcomeOf(t, result, "labels").Outcome)
}

func TestApplyMetadataFindOrCreate(t *testing.T) {
	api := &fakeAPI{labels: []Label{{ID: "l1", Name: "fix"}}}

	result := ApplyMetadata(context.Background(), api, "issue-1", "team-1", MetadataPatch{
		Labels: []string{"fix", "urgent"},
	})

	assert.False(t, result.Failed())
	assert.Equal(t, []string{"urgent"}, api.created)

	// One batched label write carrying both IDs.
	require.Len(t, api.updates, 1)
	assert.Equal(t, []string{"l1", "new-urgent"}, api.updates[0].LabelIDs)
}

// TestApplyMetadataPartialLabelFailure: one label failing to create drops
// that label but still assigns the rest.
func TestApplyMetadataPartialLabelFailure(t *testing.T) {
	api := &fakeAPI{
		labels:     []Label{{ID: "l1", Name: "fix"}},
		failCreate: map[string]bool{"broken": true},
	}

	result := ApplyMetadata(context.Background(), api, "issue-1", "team-1", MetadataPatch{
		Labels: []string{"fix", "broken"},
	})

	assert.False(t, result.Failed())
	require.Len(t, api.updates, 1)
	assert.Equal(t, []string{"l1"}, api.updates[0].LabelIDs)
}

func TestApplyMetadataZeroPatch(t *testing.T) {
	api := &fakeAPI{}
	patch := MetadataPatch{}
	assert.True(t, patch.IsZero())

	result := ApplyMetadata(context.Background(), api, "issue-1", "team-1", patch)
	assert.False(t, result.Failed())
	assert.Empty(t, api.updates)
	for _, f := range result.Fields {
		assert.Equal(t, OutcomeSkipped, f.Outcome)
	}
}
