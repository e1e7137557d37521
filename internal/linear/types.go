// Package linear provides a typed GraphQL client for the Linear API:
// team/project/label lookup, issue metadata updates, and the sync-wait
// poller that discovers the Linear issue created by Linear's GitHub sync.
package linear

import (
	"net/http"
	"time"
)

// API configuration constants.
const (
	// DefaultEndpoint is the Linear GraphQL endpoint.
	DefaultEndpoint = "https://api.linear.app/graphql"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second
)

// Client provides access to the Linear GraphQL API.
type Client struct {
	APIKey     string
	Endpoint   string
	HTTPClient *http.Client
}

// Team is a Linear team. Key is the identifier prefix (e.g. "LEA").
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Key  string `json:"key"`
}

// Project is a Linear project.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Label is a team-scoped issue label.
type Label struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Issue is a Linear issue. Only the fields this tool reads are mapped.
type Issue struct {
	ID          string          `json:"id"`
	Identifier  string          `json:"identifier"` // e.g. "LEA-123"
	Title       string          `json:"title"`
	URL         string          `json:"url"`
	Team        *Team           `json:"team,omitempty"`
	Attachments *AttachmentList `json:"attachments,omitempty"`
}

// AttachmentList is a connection of attachments.
type AttachmentList struct {
	Nodes []Attachment `json:"nodes"`
}

// Attachment is a link attached to an issue. Linear's GitHub sync records
// the GitHub issue URL as an attachment, which is what the sync-wait
// correlation keys on.
type Attachment struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// UpdateIssueInput is the sparse metadata patch for an issue. Nil pointer
// fields are omitted from the mutation entirely; LabelIDs nil means
// "leave labels alone" while an empty non-nil slice clears them.
type UpdateIssueInput struct {
	DueDate   *string  `json:"dueDate,omitempty"`
	ProjectID *string  `json:"projectId,omitempty"`
	LabelIDs  []string `json:"labelIds,omitempty"`
}
