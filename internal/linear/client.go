package linear

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// NewClient creates a Linear API client.
func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:   apiKey,
		Endpoint: DefaultEndpoint,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// WithEndpoint returns a new client with a custom endpoint (for testing).
func (c *Client) WithEndpoint(endpoint string) *Client {
	return &Client{
		APIKey:     c.APIKey,
		Endpoint:   endpoint,
		HTTPClient: c.HTTPClient,
	}
}

// WithHTTPClient returns a new client with a custom HTTP client.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	return &Client{
		APIKey:     c.APIKey,
		Endpoint:   c.Endpoint,
		HTTPClient: httpClient,
	}
}

// doQuery executes a GraphQL query and unmarshals the "data" object into
// out. GraphQL-level errors come back as Go errors.
func (c *Client) doQuery(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	payload, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	// Personal API keys are sent bare, without a Bearer prefix.
	req.Header.Set("Authorization", c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	const maxResponseSize = 10 * 1024 * 1024
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API error: %s (status %d)", string(respBody), resp.StatusCode)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
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
			return fmt.Errorf("failed to parse data: %w", err)
		}
	}
	return nil
}

const teamsQuery = `
query {
  teams(first: 100) {
    nodes { id name key }
  }
}`

// Teams lists the workspace's teams.
func (c *Client) Teams(ctx context.Context) ([]Team, error) {
	var resp struct {
		Teams struct {
			Nodes []Team `json:"nodes"`
		} `json:"teams"`
	}
	if err := c.doQuery(ctx, teamsQuery, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return resp.Teams.Nodes, nil
}

const projectsQuery = `
query {
  projects(first: 100) {
    nodes { id name }
  }
}`

// Projects lists the workspace's projects.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var resp struct {
		Projects struct {
			Nodes []Project `json:"nodes"`
		} `json:"projects"`
	}
	if err := c.doQuery(ctx, projectsQuery, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return resp.Projects.Nodes, nil
}

const teamLabelsQuery = `
query($teamId: String!) {
  team(id: $teamId) {
    labels(first: 250) {
      nodes { id name }
    }
  }
}`

// TeamLabels lists the labels scoped to a team.
func (c *Client) TeamLabels(ctx context.Context, teamID string) ([]Label, error) {
	var resp struct {
		Team struct {
			Labels struct {
				Nodes []Label `json:"nodes"`
			} `json:"labels"`
		} `json:"team"`
	}
	err := c.doQuery(ctx, teamLabelsQuery, map[string]interface{}{"teamId": teamID}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to list team labels: %w", err)
	}
	return resp.Team.Labels.Nodes, nil
}

const createLabelMutation = `
mutation($teamId: String!, $name: String!) {
  issueLabelCreate(input: {teamId: $teamId, name: $name}) {
    success
    issueLabel { id name }
  }
}`

// CreateLabel creates a team-scoped label.
func (c *Client) CreateLabel(ctx context.Context, teamID, name string) (*Label, error) {
	var resp struct {
		IssueLabelCreate struct {
			Success    bool   `json:"success"`
			IssueLabel *Label `json:"issueLabel"`
		} `json:"issueLabelCreate"`
	}
	err := c.doQuery(ctx, createLabelMutation, map[string]interface{}{
		"teamId": teamID,
		"name":   name,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to create label %q: %w", name, err)
	}
	if !resp.IssueLabelCreate.Success || resp.IssueLabelCreate.IssueLabel == nil {
		return nil, fmt.Errorf("label creation for %q reported failure", name)
	}
	return resp.IssueLabelCreate.IssueLabel, nil
}

const updateIssueMutation = `
mutation($id: String!, $input: IssueUpdateInput!) {
  issueUpdate(id: $id, input: $input) {
    success
  }
}`

// UpdateIssue applies a sparse metadata patch to an issue.
func (c *Client) UpdateIssue(ctx context.Context, issueID string, input UpdateIssueInput) error {
	fields := map[string]interface{}{}
	if input.DueDate != nil {
		fields["dueDate"] = *input.DueDate
	}
	if input.ProjectID != nil {
		fields["projectId"] = *input.ProjectID
	}
	if input.LabelIDs != nil {
		fields["labelIds"] = input.LabelIDs
	}

	var resp struct {
		IssueUpdate struct {
			Success bool `json:"success"`
		} `json:"issueUpdate"`
	}
	err := c.doQuery(ctx, updateIssueMutation, map[string]interface{}{
		"id":    issueID,
		"input": fields,
	}, &resp)
	if err != nil {
		return fmt.Errorf("failed to update issue: %w", err)
	}
	if !resp.IssueUpdate.Success {
		return fmt.Errorf("issue update reported failure")
	}
	return nil
}

const issueByAttachmentQuery = `
query($url: String!) {
  attachmentsForURL(url: $url) {
    nodes {
      id
      issue { id identifier title url team { id name key } }
    }
  }
}`

// IssueByGitHubURL finds the Linear issue whose attachment set contains the
// given GitHub issue URL. Returns nil when the sync has not created one
// yet. At most one issue should match a given URL.
func (c *Client) IssueByGitHubURL(ctx context.Context, githubURL string) (*Issue, error) {
	var resp struct {
		AttachmentsForURL struct {
			Nodes []struct {
				ID    string `json:"id"`
				Issue *Issue `json:"issue"`
			} `json:"nodes"`
		} `json:"attachmentsForURL"`
	}
	err := c.doQuery(ctx, issueByAttachmentQuery, map[string]interface{}{"url": githubURL}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to look up attachment: %w", err)
	}
	for _, node := range resp.AttachmentsForURL.Nodes {
		if node.Issue != nil {
			return node.Issue, nil
		}
	}
	return nil, nil
}

// identifierRe splits a Linear identifier into team key and number.
var identifierRe = regexp.MustCompile(`^([A-Z][A-Z0-9]+)-(\d+)$`)

const issueByIdentifierQuery = `
query($teamKey: String!, $number: Float!) {
  issues(filter: {team: {key: {eq: $teamKey}}, number: {eq: $number}}, first: 1) {
    nodes {
      id identifier title url
      team { id name key }
      attachments(first: 50) { nodes { id url } }
    }
  }
}`

// IssueByIdentifier looks up an issue by its human identifier ("LEA-123").
// Returns nil when no issue matches.
func (c *Client) IssueByIdentifier(ctx context.Context, identifier string) (*Issue, error) {
	m := identifierRe.FindStringSubmatch(identifier)
	if m == nil {
		return nil, fmt.Errorf("invalid Linear identifier: %q", identifier)
	}
	number, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, fmt.Errorf("invalid issue number in %q", identifier)
	}

	var resp struct {
		Issues struct {
			Nodes []Issue `json:"nodes"`
		} `json:"issues"`
	}
	err = c.doQuery(ctx, issueByIdentifierQuery, map[string]interface{}{
		"teamKey": m[1],
		"number":  number,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", identifier, err)
	}
	if len(resp.Issues.Nodes) == 0 {
		return nil, nil
	}
	return &resp.Issues.Nodes[0], nil
}

// githubIssueURLRe extracts the issue number from a GitHub issue URL.
var githubIssueURLRe = regexp.MustCompile(`github\.com/[^/]+/[^/]+/issues/(\d+)`)

// GitHubIssueNumber extracts the linked GitHub issue number from an issue's
// attachments. Returns ok=false when no GitHub issue attachment exists.
func GitHubIssueNumber(issue *Issue) (int, bool) {
	if issue == nil || issue.Attachments == nil {
		return 0, false
	}
	for _, a := range issue.Attachments.Nodes {
		if m := githubIssueURLRe.FindStringSubmatch(a.URL); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				return n, true
			}
		}
	}
	return 0, false
}
