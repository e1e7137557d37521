// Package github provides a typed client for the GitHub REST and GraphQL
// APIs: issue creation, label listing, sub-issue linking, and ProjectV2
// date-field writes.
package github

import (
	"net/http"
	"time"
)

// API configuration constants.
const (
	// DefaultAPIEndpoint is the GitHub REST API base URL. The GraphQL
	// endpoint is derived from it (see graphqlURL).
	DefaultAPIEndpoint = "https://api.github.com"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is the maximum number of retries for rate-limited requests.
	MaxRetries = 3

	// RetryDelay is the base delay between retries (exponential backoff).
	RetryDelay = time.Second

	// MaxPageSize is the maximum number of records to fetch per page.
	MaxPageSize = 100

	// MaxPages is the maximum number of pages to fetch before stopping.
	// Prevents infinite loops from malformed Link headers or cursors.
	MaxPages = 1000
)

// Client provides methods to interact with the GitHub API.
type Client struct {
	Token      string       // GitHub personal access token
	Owner      string       // Repository owner (user or org)
	Repo       string       // Repository name
	BaseURL    string       // API base URL (default: https://api.github.com)
	HTTPClient *http.Client // Optional custom HTTP client
}

// Issue represents an issue from the GitHub REST API. Only the fields this
// tool reads are mapped.
type Issue struct {
	ID      int64   `json:"id"`
	NodeID  string  `json:"node_id"` // GraphQL node ID, needed for mutations
	Number  int     `json:"number"`
	Title   string  `json:"title"`
	Body    string  `json:"body"`
	State   string  `json:"state"`
	Labels  []Label `json:"labels"`
	HTMLURL string  `json:"html_url"`
}

// Label represents a repository label.
type Label struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
}

// Repository represents a repository the token can access.
type Repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Private  bool   `json:"private"`
}

// Project is a ProjectV2 board.
type Project struct {
	ID    string
	Title string
}
