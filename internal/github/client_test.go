package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestNewClient verifies the constructor creates a properly configured client.
func TestNewClient(t *testing.T) {
	client := NewClient("test-token", "owner", "repo")

	if client.Token != "test-token" {
		t.Errorf("Token = %q, want %q", client.Token, "test-token")
	}
	if client.Owner != "owner" {
		t.Errorf("Owner = %q, want %q", client.Owner, "owner")
	}
	if client.Repo != "repo" {
		t.Errorf("Repo = %q, want %q", client.Repo, "repo")
	}
	if client.BaseURL != DefaultAPIEndpoint {
		t.Errorf("BaseURL = %q, want %q", client.BaseURL, DefaultAPIEndpoint)
	}
	if client.HTTPClient == nil {
		t.Error("HTTPClient is nil, want non-nil default client")
	}
}

// TestClientWithBaseURL verifies custom base URL setting.
func TestClientWithBaseURL(t *testing.T) {
	client := NewClient("token", "owner", "repo").WithBaseURL("https://github.example.com/api/v3")

	if client.BaseURL != "https://github.example.com/api/v3" {
		t.Errorf("BaseURL = %q, want custom URL", client.BaseURL)
	}
	if client.Owner != "owner" {
		t.Errorf("Owner = %q, want %q", client.Owner, "owner")
	}
}

// TestBuildURL verifies URL construction for API endpoints.
func TestBuildURL(t *testing.T) {
	client := NewClient("token", "owner", "repo")

	tests := []struct {
		name    string
		path    string
		params  map[string]string
		wantURL string
	}{
		{
			name:    "issues endpoint",
			path:    "/repos/owner/repo/issues",
			params:  nil,
			wantURL: "https://api.github.com/repos/owner/repo/issues",
		},
		{
			name:    "with query params",
			path:    "/repos/owner/repo/labels",
			params:  map[string]string{"per_page": "100"},
			wantURL: "https://api.github.com/repos/owner/repo/labels",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := client.buildURL(tt.path, tt.params)
			if !strings.HasPrefix(got, tt.wantURL) {
				t.Errorf("buildURL(%q) = %q, want prefix %q", tt.path, got, tt.wantURL)
			}
			for k, v := range tt.params {
				if !strings.Contains(got, k+"="+v) {
					t.Errorf("buildURL missing param %s=%s in %q", k, v, got)
				}
			}
		})
	}
}

// TestGraphqlURL verifies GraphQL endpoint derivation.
func TestGraphqlURL(t *testing.T) {
	c := NewClient("t", "o", "r")
	if got := c.graphqlURL(); got != "https://api.github.com/graphql" {
		t.Errorf("graphqlURL = %q", got)
	}

	c = c.WithBaseURL("https://github.example.com/api/v3")
	if got := c.graphqlURL(); got != "https://github.example.com/api/graphql" {
		t.Errorf("enterprise graphqlURL = %q", got)
	}
}

// TestCreateIssue verifies issue creation posts the right body and parses
// the response.
func TestCreateIssue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			t.Errorf("Authorization header = %q, want Bearer prefix", r.Header.Get("Authorization"))
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if body["title"] != "Fix login bug" {
			t.Errorf("title = %v", body["title"])
		}

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Issue{
			Number:  45,
			NodeID:  "I_abc123",
			Title:   "Fix login bug",
			HTMLURL: "https://github.com/owner/repo/issues/45",
		})
	}))
	defer server.Close()

	client := NewClient("token", "owner", "repo").WithBaseURL(server.URL)
	issue, err := client.CreateIssue(context.Background(), "Fix login bug", "body", []string{"fix"})
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	if issue.Number != 45 {
		t.Errorf("Number = %d, want 45", issue.Number)
	}
	if issue.NodeID != "I_abc123" {
		t.Errorf("NodeID = %q", issue.NodeID)
	}
}

// TestListLabelsPagination verifies Link-header pagination is followed.
func TestListLabelsPagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		switch page {
		case "", "1":
			w.Header().Set("Link", `<`+server.URL+`/repos/owner/repo/labels?page=2>; rel="next"`)
			_ = json.NewEncoder(w).Encode([]Label{{Name: "bug"}, {Name: "fix"}})
		default:
			_ = json.NewEncoder(w).Encode([]Label{{Name: "docs"}})
		}
	}))
	defer server.Close()

	client := NewClient("token", "owner", "repo").WithBaseURL(server.URL)
	labels, err := client.ListLabels(context.Background())
	if err != nil {
		t.Fatalf("ListLabels: %v", err)
	}
	if len(labels) != 3 {
		t.Fatalf("got %d labels, want 3", len(labels))
	}
	if labels[2].Name != "docs" {
		t.Errorf("labels[2] = %q, want docs", labels[2].Name)
	}
}

// TestListRepositories verifies the accessible-repository listing that
// seeds the interactive repository picker.
func TestListRepositories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/user/repos") {
			t.Errorf("path = %q, want /user/repos", r.URL.Path)
		}
		if got := r.URL.Query().Get("sort"); got != "updated" {
			t.Errorf("sort = %q, want updated", got)
		}
		_ = json.NewEncoder(w).Encode([]Repository{
			{Name: "widgets", FullName: "acme/widgets"},
			{Name: "gadgets", FullName: "acme/gadgets", Private: true},
		})
	}))
	defer server.Close()

	client := NewClient("token", "", "").WithBaseURL(server.URL)
	repos, err := client.ListRepositories(context.Background())
	if err != nil {
		t.Fatalf("ListRepositories: %v", err)
	}
	if len(repos) != 2 {
		t.Fatalf("got %d repos, want 2", len(repos))
	}
	if repos[0].FullName != "acme/widgets" || !repos[1].Private {
		t.Errorf("repos = %+v", repos)
	}
}

// TestDoRequestAPIError verifies non-2xx responses surface as errors
// without retrying.
func TestDoRequestAPIError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer server.Close()

	client := NewClient("token", "owner", "repo").WithBaseURL(server.URL)
	_, err := client.FetchIssueByNumber(context.Background(), 999)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on hard API error)", calls)
	}
}

// TestDoRequestRateLimitRetry verifies a 429 is retried and the request
// body is re-sent intact.
func TestDoRequestRateLimitRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("retried request body unreadable: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Issue{Number: 1})
	}))
	defer server.Close()

	client := NewClient("token", "owner", "repo").WithBaseURL(server.URL)
	client.HTTPClient.Timeout = 5 * time.Second

	issue, err := client.CreateIssue(context.Background(), "t", "b", nil)
	if err != nil {
		t.Fatalf("CreateIssue after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if issue.Number != 1 {
		t.Errorf("Number = %d, want 1", issue.Number)
	}
}

// TestDoRequestRateLimitExhausted verifies a persistently rate-limited
// request fails after MaxRetries+1 attempts without waiting out the delay
// a final retry would have used.
func TestDoRequestRateLimitExhausted(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("token", "owner", "repo").WithBaseURL(server.URL)
	start := time.Now()
	_, err := client.FetchIssueByNumber(context.Background(), 1)
	elapsed := time.Since(start)

	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("err = %v, want rate-limit failure", err)
	}
	if calls != MaxRetries+1 {
		t.Errorf("calls = %d, want %d", calls, MaxRetries+1)
	}
	// MaxRetries sleeps of 1s happen between attempts; a sleep after the
	// last attempt would push this past MaxRetries+1 seconds.
	if elapsed >= time.Duration(MaxRetries)*time.Second+700*time.Millisecond {
		t.Errorf("elapsed %v: the exhausted final attempt must not sleep", elapsed)
	}
}
