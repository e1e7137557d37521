package gitx

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBranchExists is returned by CreateBranch when the branch already
// exists. Callers treat it as degraded, not fatal: the user can switch to
// the existing branch themselves.
var ErrBranchExists = errors.New("branch already exists")

// ErrNoUpstream is returned by AheadCount when the current branch has no
// remote-tracking branch configured.
var ErrNoUpstream = errors.New("no upstream branch")

// Git issues git commands through a Runner.
type Git struct {
	runner Runner
}

// New returns a Git adapter backed by the given runner.
func New(r Runner) *Git {
	return &Git{runner: r}
}

// IsRepo reports whether the working directory is inside a git repository.
func (g *Git) IsRepo(ctx context.Context) bool {
	_, err := g.runner.Run(ctx, "git", "rev-parse", "--git-dir")
	return err == nil
}

// Root returns the repository root directory.
func (g *Git) Root(ctx context.Context) (string, error) {
	out, err := g.runner.Run(ctx, "git", "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}
	return out, nil
}

// CurrentBranch returns the checked-out branch name.
func (g *Git) CurrentBranch(ctx context.Context) (string, error) {
	out, err := g.runner.Run(ctx, "git", "branch", "--show-current")
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", errors.New("detached HEAD: no current branch")
	}
	return out, nil
}

// HasUpstream reports whether the current branch tracks a remote branch.
func (g *Git) HasUpstream(ctx context.Context) bool {
	_, err := g.runner.Run(ctx, "git", "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{u}")
	return err == nil
}

// AheadCount returns how many local commits the current branch has that its
// upstream does not.
func (g *Git) AheadCount(ctx context.Context) (int, error) {
	if !g.HasUpstream(ctx) {
		return 0, ErrNoUpstream
	}
	out, err := g.runner.Run(ctx, "git", "rev-list", "--count", "@{u}..HEAD")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(out)
	if err != nil {
		return 0, fmt.Errorf("unexpected rev-list output %q: %w", out, err)
	}
	return n, nil
}

// CreateBranch creates and switches to a new branch. An existing branch of
// the same name yields ErrBranchExists.
func (g *Git) CreateBranch(ctx context.Context, name string) error {
	_, err := g.runner.Run(ctx, "git", "switch", "-c", name)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("%w: %s", ErrBranchExists, name)
		}
		return err
	}
	return nil
}

// Commit records a commit with the given message. Staged changes only; the
// caller is responsible for staging.
func (g *Git) Commit(ctx context.Context, message string) error {
	_, err := g.runner.Run(ctx, "git", "commit", "-m", message)
	return err
}

// CommitAllowEmpty records a commit even when nothing is staged. Used for
// the branch-opening commit, which exists to anchor the branch on the
// remote before any real work lands.
func (g *Git) CommitAllowEmpty(ctx context.Context, message string) error {
	_, err := g.runner.Run(ctx, "git", "commit", "--allow-empty", "-m", message)
	return err
}

// UserName returns the configured git user.name, or "" when unset.
func (g *Git) UserName(ctx context.Context) string {
	out, err := g.runner.Run(ctx, "git", "config", "user.name")
	if err != nil {
		return ""
	}
	return out
}
