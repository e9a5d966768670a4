// Package retry implements a small exponential-backoff helper for
// calling flaky upstreams. Retrying happens at the call site: the
// services themselves attempt each operation exactly once.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy controls how many times an operation is attempted and how the
// pause between attempts grows.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// BaseDelay is the pause after the first failure. Each further
	// failure doubles it: BaseDelay, 2*BaseDelay, 4*BaseDelay, ...
	BaseDelay time.Duration
}

// DefaultPolicy matches the backoff used by the ingestion CLI: three
// attempts starting at one second.
var DefaultPolicy = Policy{MaxAttempts: 3, BaseDelay: time.Second}

// Do runs fn until it succeeds, the policy is exhausted, or the context
// is cancelled. The sleep between attempts honours ctx, so a cancelled
// caller never waits out a long backoff.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		delay := p.BaseDelay << (attempt - 1)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
}
