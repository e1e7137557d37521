// Package branch derives and parses work-branch names of the form
// {prefix}/{LINEAR-ID}-{slug}.
package branch

import (
	"regexp"
	"strings"
)

// MaxSlugLength is the cap on the sanitized title segment.
const MaxSlugLength = 50

// Prefix categorizes a branch by the kind of work it carries.
type Prefix string

const (
	PrefixFeat     Prefix = "feat"
	PrefixFix      Prefix = "fix"
	PrefixChore    Prefix = "chore"
	PrefixDocs     Prefix = "docs"
	PrefixRefactor Prefix = "refactor"
	PrefixTest     Prefix = "test"
	PrefixResearch Prefix = "research"
	PrefixUnknown  Prefix = ""
)

// validPrefixes is the closed taxonomy. Anything else is PrefixUnknown.
var validPrefixes = map[Prefix]bool{
	PrefixFeat:     true,
	PrefixFix:      true,
	PrefixChore:    true,
	PrefixDocs:     true,
	PrefixRefactor: true,
	PrefixTest:     true,
	PrefixResearch: true,
}

// Prefixes returns the valid prefixes in display order.
func Prefixes() []Prefix {
	return []Prefix{PrefixFeat, PrefixFix, PrefixChore, PrefixDocs, PrefixRefactor, PrefixTest, PrefixResearch}
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	invalidRe    = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRunRe  = regexp.MustCompile(`-{2,}`)
	issueIDRe    = regexp.MustCompile(`[A-Z][A-Z0-9]+-\d+`)
)

// Sanitize converts a free-form title into a branch-safe slug: lowercase,
// hyphen-separated, [a-z0-9-] only, at most MaxSlugLength characters, no
// leading, trailing, or doubled hyphens. An all-punctuation title sanitizes
// to the empty string.
func Sanitize(title string) string {
	s := strings.ToLower(title)
	s = whitespaceRe.ReplaceAllString(s, "-")
	s = invalidRe.ReplaceAllString(s, "")
	s = hyphenRunRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxSlugLength {
		s = s[:MaxSlugLength]
		s = strings.TrimRight(s, "-")
	}
	return s
}

// Compose builds a branch name from an owner handle, a Linear identifier,
// and a title. An empty sanitized title drops the slug segment entirely.
// An empty sanitized owner falls back to "user".
func Compose(owner, linearID, title string) string {
	o := Sanitize(owner)
	if o == "" {
		o = "user"
	}
	slug := Sanitize(title)
	if slug == "" {
		return o + "/" + linearID
	}
	return o + "/" + linearID + "-" + slug
}

// ExtractIssueID finds a Linear identifier (team key + number, e.g.
// "LEA-123") in a branch name. Returns ok=false when none is present.
func ExtractIssueID(branchName string) (string, bool) {
	m := issueIDRe.FindString(branchName)
	if m == "" {
		return "", false
	}
	return m, true
}

// ParsePrefix extracts the segment before the first "/" and validates it
// against the prefix taxonomy. A missing or unrecognized segment yields
// (PrefixUnknown, false); callers decide whether to prompt or default.
func ParsePrefix(branchName string) (Prefix, bool) {
	idx := strings.Index(branchName, "/")
	if idx <= 0 {
		return PrefixUnknown, false
	}
	p := Prefix(branchName[:idx])
	if !validPrefixes[p] {
		return PrefixUnknown, false
	}
	return p, true
}

// CommitType maps a branch prefix to its conventional-commit type.
// Research work commits as chore since "research" is not a commit type.
func CommitType(p Prefix) string {
	if p == PrefixResearch {
		return string(PrefixChore)
	}
	return string(p)
}
