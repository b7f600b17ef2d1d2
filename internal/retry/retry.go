// Package retry implements the retry policy shared by every component
// that talks to a remote service.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leadharvest/leadharvest/internal/logger"
)

// Permanent wraps an error to tell Do that retrying cannot help.
type Permanent struct {
	Err error
}

func (p *Permanent) Error() string { return p.Err.Error() }
func (p *Permanent) Unwrap() error { return p.Err }

// Policy controls how Do retries: up to MaxAttempts tries, sleeping
// BaseDelay times the attempt number between them. The zero value never
// retries.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Default matches the historical behaviour of the consolidation pipeline:
// five attempts with a linearly growing wait (10s, 20s, 30s, 40s).
var Default = Policy{MaxAttempts: 5, BaseDelay: 10 * time.Second}

// Do runs fn until it succeeds, wraps a Permanent error, the attempts are
// exhausted, or ctx is done. The sleep between attempts is also cut short
// by ctx.
func (p Policy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		var perm *Permanent
		if errors.As(err, &perm) {
			return perm.Err
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		delay := p.BaseDelay * time.Duration(attempt)
		logger.Warn("operation failed, retrying",
			"op", op, "attempt", attempt, "max_attempts", attempts,
			"delay", delay, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("%s: %d attempts failed: %w", op, attempts, lastErr)
}
