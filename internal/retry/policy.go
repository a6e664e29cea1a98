// Package retry holds the single retry-with-backoff policy shared by delivery
// and the network collectors.
package retry

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
)

var (
	// ErrTransient marks failures worth another attempt.
	ErrTransient = errors.New("transient failure")
	// ErrPermanent marks failures that will not improve on retry.
	ErrPermanent = errors.New("permanent failure")
	// ErrExhausted marks an operation that failed on every allowed attempt.
	ErrExhausted = errors.New("retry budget exhausted")
)

// Transient marks err as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return errors.Mark(err, ErrTransient)
}

// Permanent marks err as non-retryable.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return errors.Mark(err, ErrPermanent)
}

// IsTransient is the default retryable-error predicate.
func IsTransient(err error) bool {
	return err != nil && !errors.Is(err, ErrPermanent) && errors.Is(err, ErrTransient)
}

// FromStatus classifies an HTTP failure: throttling and server errors are
// transient, every other status is permanent.
func FromStatus(status int, err error) error {
	if status == http.StatusTooManyRequests || status == http.StatusRequestTimeout || status >= http.StatusInternalServerError {
		return Transient(err)
	}
	return Permanent(err)
}

type delayedError struct {
	cause error
	after time.Duration
}

func (e *delayedError) Error() string             { return e.cause.Error() }
func (e *delayedError) Unwrap() error             { return e.cause }
func (e *delayedError) RetryAfter() time.Duration { return e.after }

// WithRetryAfter attaches a server-suggested wait to err.
func WithRetryAfter(err error, after time.Duration) error {
	if err == nil || after <= 0 {
		return err
	}
	return &delayedError{cause: err, after: after}
}

// RetryAfter extracts a server-suggested wait from err, if any.
func RetryAfter(err error) time.Duration {
	var hinted interface{ RetryAfter() time.Duration }
	if errors.As(err, &hinted) {
		return hinted.RetryAfter()
	}
	return 0
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real-clock Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Policy retries an operation with exponential backoff: the wait before
// attempt n+1 is BaseDelay * 2^(n-1), capped at MaxDelay, or the server hint
// when that is longer.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Retryable   func(error) bool
	Sleep       Sleeper
	OnRetry     func(attempt int, wait time.Duration, err error)
}

// Default returns the policy used for message delivery.
func Default() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
		Retryable:   IsTransient,
		Sleep:       Sleep,
	}
}

// Backoff returns the wait after the given failed attempt (1-based).
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt < 1 || p.BaseDelay <= 0 {
		return 0
	}
	wait := p.BaseDelay
	for i := 1; i < attempt; i++ {
		wait *= 2
		if p.MaxDelay > 0 && wait >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && wait > p.MaxDelay {
		return p.MaxDelay
	}
	return wait
}

// Do runs op until it succeeds, returns a non-retryable error, or the attempt
// budget runs out. Exhaustion is reported with ErrExhausted marked on the last
// error.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "retry aborted")
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		wait := p.Backoff(attempt)
		if hint := RetryAfter(lastErr); hint > wait {
			wait = hint
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, wait, lastErr)
		}
		if err := sleep(ctx, wait); err != nil {
			return errors.Wrap(err, "retry aborted")
		}
	}

	return errors.Mark(errors.Wrapf(lastErr, "gave up after %d attempts", attempts), ErrExhausted)
}
