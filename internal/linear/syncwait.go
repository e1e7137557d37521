package linear

import (
	"context"
	"errors"
	"time"
)

// ErrNotSynced is returned when the wait budget runs out before Linear's
// GitHub sync creates the issue. Callers degrade gracefully: skip the
// metadata patch and tell the user the sync will finish on its own.
var ErrNotSynced = errors.New("linear issue not synced within wait budget")

// Poll defaults. The budget is deliberately short: a human is waiting at
// the terminal, and the webhook-driven sync normally lands within single-
// digit seconds. A fixed short interval beats exponential backoff here
// because the expected latency distribution is narrow.
const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultMaxWait      = 10 * time.Second
)

// WaitOptions configures the sync-wait poll loop.
type WaitOptions struct {
	Interval time.Duration // time between attempts; DefaultPollInterval when zero
	MaxWait  time.Duration // total wall-clock budget; DefaultMaxWait when zero

	// OnAttempt, when set, is called after each unsuccessful attempt that
	// will be followed by another. Used to throttle progress output.
	OnAttempt func(attempt, maxAttempts int)
}

// lookupFunc checks once for the synced issue. found=false with a nil
// error means "not there yet".
type lookupFunc func(ctx context.Context) (id string, found bool, err error)

// WaitForSyncedIssue polls Linear until the issue created by the GitHub
// sync for githubURL appears, or the wait budget is exhausted with
// ErrNotSynced.
//
// Lookup errors are treated the same as "not found yet": from here a
// transient API failure and webhook lag are indistinguishable, and the
// loop is already bounded.
func (c *Client) WaitForSyncedIssue(ctx context.Context, githubURL string, opts WaitOptions) (*Issue, error) {
	var matched *Issue
	_, err := waitForIssue(ctx, func(ctx context.Context) (string, bool, error) {
		issue, err := c.IssueByGitHubURL(ctx, githubURL)
		if err != nil {
			return "", false, err
		}
		if issue == nil {
			return "", false, nil
		}
		matched = issue
		return issue.ID, true, nil
	}, opts)
	if err != nil {
		return nil, err
	}
	return matched, nil
}

func waitForIssue(ctx context.Context, lookup lookupFunc, opts WaitOptions) (string, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	maxWait := opts.MaxWait
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}

	maxAttempts := int(maxWait/interval) + 1

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		id, found, err := lookup(ctx)
		if err == nil && found {
			return id, nil
		}

		if attempt < maxAttempts {
			if opts.OnAttempt != nil {
				opts.OnAttempt(attempt, maxAttempts)
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(interval):
			}
		}
	}

	return "", ErrNotSynced
}
