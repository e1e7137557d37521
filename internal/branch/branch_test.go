package branch

import (
	"regexp"
	"strings"
	"testing"
)

// slugShape is the shape every non-empty sanitized title must have.
var slugShape = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Fix login bug", "fix-login-bug"},
		{"multiple spaces and punctuation", "Hello   World!!", "hello-world"},
		{"already clean", "hello-world", "hello-world"},
		{"mixed case", "Add OAuth2 Support", "add-oauth2-support"},
		{"leading and trailing space", "  padded  ", "padded"},
		{"punctuation only", "!!! ??? ...", ""},
		{"empty", "", ""},
		{"unicode stripped", "café résumé", "caf-rsum"},
		{"doubled hyphens collapse", "a -- b", "a-b"},
		{"tabs and newlines", "a\tb\nc", "a-b-c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeTruncation(t *testing.T) {
	got := Sanitize(strings.Repeat("a", 60))
	if got != strings.Repeat("a", 50) {
		t.Errorf("Sanitize(60*a) = %q, want 50*a", got)
	}

	// Truncation must not leave a dangling hyphen.
	title := strings.Repeat("ab ", 30) // sanitizes to ab-ab-ab-... longer than 50
	got = Sanitize(title)
	if len(got) > MaxSlugLength {
		t.Errorf("len = %d, want <= %d", len(got), MaxSlugLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("Sanitize left trailing hyphen: %q", got)
	}
}

// TestSanitizeShape checks the output invariant across a spread of inputs:
// empty, or lowercase alphanumeric runs joined by single hyphens.
func TestSanitizeShape(t *testing.T) {
	inputs := []string{
		"Fix login bug", "Hello   World!!", "a", "A!B@C#D",
		"--edge--case--", strings.Repeat("word ", 40), "123 456",
		"\t\n", "(parens) [brackets] {braces}",
	}
	for _, in := range inputs {
		got := Sanitize(in)
		if got == "" {
			continue
		}
		if !slugShape.MatchString(got) {
			t.Errorf("Sanitize(%q) = %q, does not match slug shape", in, got)
		}
		if len(got) > MaxSlugLength {
			t.Errorf("Sanitize(%q) length %d > %d", in, len(got), MaxSlugLength)
		}
	}
}

func TestCompose(t *testing.T) {
	tests := []struct {
		name   string
		owner  string
		id     string
		title  string
		want   string
	}{
		{"full", "alice", "LEA-123", "Fix login bug", "alice/LEA-123-fix-login-bug"},
		{"empty title drops slug", "alice", "LEA-123", "!!!", "alice/LEA-123"},
		{"empty owner falls back", "", "LEA-7", "Thing", "user/LEA-7-thing"},
		{"owner sanitized", "Alice Smith", "LEA-9", "x", "alice-smith/LEA-9-x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compose(tt.owner, tt.id, tt.title)
			if got != tt.want {
				t.Errorf("Compose(%q, %q, %q) = %q, want %q", tt.owner, tt.id, tt.title, got, tt.want)
			}
		})
	}
}

func TestExtractIssueID(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"feat/LEA-123-title", "LEA-123", true},
		{"alice/ENG-4567-fix-the-thing", "ENG-4567", true},
		{"no-id-here", "", false},
		{"feat/lea-123-lowercase", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ExtractIssueID(tt.input)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ExtractIssueID(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParsePrefix(t *testing.T) {
	tests := []struct {
		input  string
		want   Prefix
		wantOK bool
	}{
		{"research/LEA-75-x", PrefixResearch, true},
		{"feat/LEA-1-y", PrefixFeat, true},
		{"fix/LEA-2", PrefixFix, true},
		{"bogus/LEA-1-x", PrefixUnknown, false},
		{"no-slash-at-all", PrefixUnknown, false},
		{"/leading-slash", PrefixUnknown, false},
		{"", PrefixUnknown, false},
	}

	for _, tt := range tests {
		got, ok := ParsePrefix(tt.input)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParsePrefix(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCommitType(t *testing.T) {
	if got := CommitType(PrefixResearch); got != "chore" {
		t.Errorf("CommitType(research) = %q, want chore", got)
	}
	if got := CommitType(PrefixFeat); got != "feat" {
		t.Errorf("CommitType(feat) = %q, want feat", got)
	}
}
