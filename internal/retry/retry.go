// Package retry implements the bounded-retry policy used for every external
// call: retry only on rate-limit (429) or server-error (5xx) responses, with
// exponential backoff, up to a small fixed ceiling. Everything else fails
// immediately.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// StatusError carries the HTTP-equivalent status code of a failed external
// call. Clients translate their SDK errors into this type so the retry
// predicate can classify them without knowing the SDK.
type StatusError struct {
	Code int
	Err  error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %v", e.Code, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// NewStatusError wraps err with its status code
func NewStatusError(code int, err error) *StatusError {
	return &StatusError{Code: code, Err: err}
}

// Policy configures the retry wrapper
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Retryable   func(error) bool
}

// DefaultPolicy returns the standard policy: 3 attempts, 500ms base delay,
// retrying on 429/5xx only.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		Retryable:   RetryableStatus,
	}
}

// RetryableStatus reports whether err is a rate-limit or server-side fault
func RetryableStatus(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == 429 || se.Code >= 500
}

// Backoff returns the delay before the given retry attempt (0-based), doubling
// per attempt from the base delay.
func (p Policy) Backoff(attempt int) time.Duration {
	return p.BaseDelay << attempt
}

// Do runs fn under the policy. The last error is returned when retries
// exhaust; non-retryable errors return immediately.
func Do(ctx context.Context, p Policy, op string, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Backoff(attempt - 1)):
			}
		}

		if err = fn(ctx); err == nil {
			return nil
		}

		if p.Retryable == nil || !p.Retryable(err) {
			return err
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, p.MaxAttempts, err)
}
