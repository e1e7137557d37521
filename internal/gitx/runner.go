// Package gitx wraps the git commands this tool needs behind a small
// structured interface, so callers never build shell strings and tests
// never need a real repository.
package gitx

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes a command and returns its trimmed stdout. Implementations
// must not invoke a shell; arguments are passed through verbatim.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct {
	// Dir is the working directory for every command. Empty means the
	// process working directory.
	Dir string
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("%s %s: %s", name, strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}
