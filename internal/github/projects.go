package github

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrProjectNotFound is returned when no ProjectV2 board matches the name
// in either organization or user scope.
var ErrProjectNotFound = errors.New("project not found")

// ErrItemNotFound is returned when the issue has not been indexed into the
// project's item list within the retry budget.
var ErrItemNotFound = errors.New("project item not found")

// ErrFieldNotFound is returned when a named date field does not exist on
// the project.
var ErrFieldNotFound = errors.New("project field not found")

// itemLookupRetries bounds the eventual-consistency retry for the item
// lookup: a freshly created issue can take a few seconds to appear on the
// board, so the lookup retries with linearly increasing waits (1s, 2s, 3s).
const itemLookupRetries = 3

// linearBackOff waits step, 2*step, 3*step, ... up to maxTries waits.
// cenkalti/backoff only ships constant and exponential policies.
type linearBackOff struct {
	step     time.Duration
	maxTries int
	tries    int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	if b.tries >= b.maxTries {
		return backoff.Stop
	}
	b.tries++
	return time.Duration(b.tries) * b.step
}

func (b *linearBackOff) Reset() { b.tries = 0 }

const projectsByNameQuery = `
query($login: String!, $name: String!) {
  %s(login: $login) {
    projectsV2(query: $name, first: 20) {
      nodes { id title }
    }
  }
}`

// ResolveProject finds a ProjectV2 board by title. Ownership type is not
// known a priori, so organization scope is tried first, then user scope.
// A scope that does not apply to the owner is skipped; any other failure
// (transport, auth) is reported as itself, not as a missing project.
func (c *Client) ResolveProject(ctx context.Context, name string) (*Project, error) {
	var lastErr error
	answered := false
	for _, scope := range []string{"organization", "user"} {
		project, err := c.projectInScope(ctx, scope, name)
		if err != nil {
			if !isScopeMismatch(err) {
				lastErr = err
			}
			continue
		}
		answered = true
		if project != nil {
			return project, nil
		}
	}
	if !answered && lastErr != nil {
		return nil, fmt.Errorf("resolving project %q: %w", name, lastErr)
	}
	return nil, fmt.Errorf("%w: %q (owner %s)", ErrProjectNotFound, name, c.Owner)
}

// isScopeMismatch reports whether the error is GitHub saying the owner is
// not of the queried type ("Could not resolve to an Organization ..." or
// "... to a User ...").
func isScopeMismatch(err error) bool {
	return strings.Contains(err.Error(), "Could not resolve to a")
}

func (c *Client) projectInScope(ctx context.Context, scope, name string) (*Project, error) {
	var resp map[string]struct {
		ProjectsV2 struct {
			Nodes []struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			} `json:"nodes"`
		} `json:"projectsV2"`
	}

	query := fmt.Sprintf(projectsByNameQuery, scope)
	err := c.doGraphQL(ctx, query, map[string]interface{}{
		"login": c.Owner,
		"name":  name,
	}, &resp)
	if err != nil {
		return nil, err
	}

	for _, node := range resp[scope].ProjectsV2.Nodes {
		if node.Title == name {
			return &Project{ID: node.ID, Title: node.Title}, nil
		}
	}
	return nil, nil
}

const projectItemsQuery = `
query($projectId: ID!, $cursor: String) {
  node(id: $projectId) {
    ... on ProjectV2 {
      items(first: 100, after: $cursor) {
        nodes {
          id
          content { ... on Issue { id } }
        }
        pageInfo { hasNextPage endCursor }
      }
    }
  }
}`

// findProjectItem pages through the full item list looking for the issue.
// The list is cursor-paginated and a new item is usually appended near the
// tail, so the whole list has to be walked.
func (c *Client) findProjectItem(ctx context.Context, projectID, issueNodeID string) (string, error) {
	var cursor *string
	for page := 0; page < MaxPages; page++ {
		var resp struct {
			Node struct {
				Items struct {
					Nodes []struct {
						ID      string `json:"id"`
						Content struct {
							ID string `json:"id"`
						} `json:"content"`
					} `json:"nodes"`
					PageInfo struct {
						HasNextPage bool   `json:"hasNextPage"`
						EndCursor   string `json:"endCursor"`
					} `json:"pageInfo"`
				} `json:"items"`
			} `json:"node"`
		}

		vars := map[string]interface{}{"projectId": projectID}
		if cursor != nil {
			vars["cursor"] = *cursor
		}
		if err := c.doGraphQL(ctx, projectItemsQuery, vars, &resp); err != nil {
			return "", err
		}

		for _, item := range resp.Node.Items.Nodes {
			if item.Content.ID == issueNodeID {
				return item.ID, nil
			}
		}

		if !resp.Node.Items.PageInfo.HasNextPage {
			return "", ErrItemNotFound
		}
		end := resp.Node.Items.PageInfo.EndCursor
		cursor = &end
	}
	return "", fmt.Errorf("pagination limit exceeded: stopped after %d pages", MaxPages)
}

// FindProjectItem locates the project item for an issue, retrying on miss
// because the issue may not yet be indexed into the board at first query.
// Query errors are terminal; only a clean miss is retried.
func (c *Client) FindProjectItem(ctx context.Context, projectID, issueNodeID string) (string, error) {
	var itemID string
	op := func() error {
		id, err := c.findProjectItem(ctx, projectID, issueNodeID)
		if err != nil {
			if errors.Is(err, ErrItemNotFound) {
				return err // retryable: board indexing lags issue creation
			}
			return backoff.Permanent(err)
		}
		itemID = id
		return nil
	}

	bo := &linearBackOff{step: time.Second, maxTries: itemLookupRetries}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return "", err
	}
	return itemID, nil
}

const projectFieldsQuery = `
query($projectId: ID!) {
  node(id: $projectId) {
    ... on ProjectV2 {
      fields(first: 50) {
        nodes { ... on ProjectV2FieldCommon { id name } }
      }
    }
  }
}`

// ResolveFields maps the requested field names to their field IDs. Missing
// names are simply absent from the result; callers decide whether that is
// a warning or an error.
func (c *Client) ResolveFields(ctx context.Context, projectID string, names ...string) (map[string]string, error) {
	var resp struct {
		Node struct {
			Fields struct {
				Nodes []struct {
					ID   string `json:"id"`
					Name string `json:"name"`
				} `json:"nodes"`
			} `json:"fields"`
		} `json:"node"`
	}
	err := c.doGraphQL(ctx, projectFieldsQuery, map[string]interface{}{
		"projectId": projectID,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to list project fields: %w", err)
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	out := make(map[string]string)
	for _, f := range resp.Node.Fields.Nodes {
		if wanted[f.Name] {
			out[f.Name] = f.ID
		}
	}
	return out, nil
}

const setDateFieldMutation = `
mutation($projectId: ID!, $itemId: ID!, $fieldId: ID!, $date: Date!) {
  updateProjectV2ItemFieldValue(input: {
    projectId: $projectId,
    itemId: $itemId,
    fieldId: $fieldId,
    value: { date: $date }
  }) {
    projectV2Item { id }
  }
}`

// SetDateField writes a date value (YYYY-MM-DD) to one project field.
func (c *Client) SetDateField(ctx context.Context, projectID, itemID, fieldID, date string) error {
	err := c.doGraphQL(ctx, setDateFieldMutation, map[string]interface{}{
		"projectId": projectID,
		"itemId":    itemID,
		"fieldId":   fieldID,
		"date":      date,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to set date field: %w", err)
	}
	return nil
}
