package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// graphqlURL derives the GraphQL endpoint from the REST base URL.
// api.github.com serves GraphQL at /graphql; GitHub Enterprise serves it
// at <host>/api/graphql next to <host>/api/v3.
func (c *Client) graphqlURL() string {
	if strings.HasSuffix(c.BaseURL, "/api/v3") {
		return strings.TrimSuffix(c.BaseURL, "/v3") + "/graphql"
	}
	return c.BaseURL + "/graphql"
}

// graphQLRequest is the wire shape of a GraphQL call.
type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// graphQLError is a single error entry in a GraphQL response.
type graphQLError struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
}

// doGraphQL executes a GraphQL query and unmarshals the "data" object into
// out. GraphQL-level errors are returned as Go errors even when the HTTP
// status is 200.
func (c *Client) doGraphQL(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	respBody, _, err := c.doRequest(ctx, http.MethodPost, c.graphqlURL(), graphQLRequest{
		Query:     query,
		Variables: variables,
	})
	if err != nil {
		return err
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("failed to parse GraphQL response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		msgs := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("GraphQL error: %s", strings.Join(msgs, "; "))
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to parse GraphQL data: %w", err)
		}
	}
	return nil
}

// addSubIssueMutation links a child issue under a parent. The sub-issues
// API is GraphQL-only.
const addSubIssueMutation = `
mutation($parentId: ID!, $childId: ID!) {
  addSubIssue(input: {issueId: $parentId, subIssueId: $childId}) {
    issue { id }
  }
}`

// AddSubIssue links childNodeID as a sub-issue of parentNodeID.
func (c *Client) AddSubIssue(ctx context.Context, parentNodeID, childNodeID string) error {
	err := c.doGraphQL(ctx, addSubIssueMutation, map[string]interface{}{
		"parentId": parentNodeID,
		"childId":  childNodeID,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to link sub-issue: %w", err)
	}
	return nil
}

// issueNodeIDQuery resolves an issue number to its GraphQL node ID.
const issueNodeIDQuery = `
query($owner: String!, $repo: String!, $number: Int!) {
  repository(owner: $owner, name: $repo) {
    issue(number: $number) { id }
  }
}`

// IssueNodeID resolves an issue number to the node ID GraphQL mutations
// require. CreateIssue already returns the node ID; this exists for flows
// that start from a bare issue number (e.g. sub-issue creation against an
// existing parent).
func (c *Client) IssueNodeID(ctx context.Context, number int) (string, error) {
	var resp struct {
		Repository struct {
			Issue *struct {
				ID string `json:"id"`
			} `json:"issue"`
		} `json:"repository"`
	}
	err := c.doGraphQL(ctx, issueNodeIDQuery, map[string]interface{}{
		"owner":  c.Owner,
		"repo":   c.Repo,
		"number": number,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("failed to resolve issue #%d: %w", number, err)
	}
	if resp.Repository.Issue == nil {
		return "", fmt.Errorf("issue #%d not found in %s", number, c.repoPath())
	}
	return resp.Repository.Issue.ID, nil
}
