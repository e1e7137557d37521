package main

import (
	"testing"

	"github.com/Negoth/linear-github-cli/internal/config"
)

func TestParentIssueNumberNumeric(t *testing.T) {
	cfg = &config.Config{}

	tests := []struct {
		ref     string
		want    int
		wantErr bool
	}{
		{"45", 45, false},
		{"#45", 45, false},
		{" 12 ", 12, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := parentIssueNumber(tt.ref)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parentIssueNumber(%q): expected error", tt.ref)
			}
			continue
		}
		if err != nil {
			t.Errorf("parentIssueNumber(%q): %v", tt.ref, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parentIssueNumber(%q) = %d, want %d", tt.ref, got, tt.want)
		}
	}
}

func TestParentIssueNumberLinearNeedsCredential(t *testing.T) {
	cfg = &config.Config{}

	// A Linear identifier requires the Linear API key to resolve.
	if _, err := parentIssueNumber("LEA-123"); err == nil {
		t.Error("expected credential error for Linear identifier without API key")
	}
}

func TestResolveRepoFromFlag(t *testing.T) {
	cfg = &config.Config{}

	owner, repo := resolveRepo("acme/widgets")
	if owner != "acme" || repo != "widgets" {
		t.Errorf("resolveRepo = (%q, %q)", owner, repo)
	}
}

func TestResolveRepoFromConfig(t *testing.T) {
	cfg = &config.Config{GitHubOwner: "acme", GitHubRepo: "widgets"}

	owner, repo := resolveRepo("")
	if owner != "acme" || repo != "widgets" {
		t.Errorf("resolveRepo = (%q, %q)", owner, repo)
	}
}

func TestResolveRepoFlagWinsOverConfig(t *testing.T) {
	cfg = &config.Config{GitHubOwner: "acme", GitHubRepo: "widgets"}

	owner, repo := resolveRepo("other/thing")
	if owner != "other" || repo != "thing" {
		t.Errorf("resolveRepo = (%q, %q)", owner, repo)
	}
}
