package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type RetryableError interface {
	error
	IsRetryable() bool
}

type FatalError interface {
	error
	IsFatal() bool
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) IsRetryable() bool {
	return true
}

func (e *retryableError) Unwrap() error {
	return e.err
}

func NewRetryableError(err error) RetryableError {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     0, // unlimited, the broker is expected to come back
		InitialInterval: 1 * time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
	}
}

// Retry runs fn under the policy's exponential backoff. MaxAttempts <= 0
// means retry until the context is cancelled. Errors implementing
// FatalError stop the loop immediately.
func Retry(ctx context.Context, policy Policy, fn func() error) error {
	var b backoff.BackOff = backoff.WithContext(policy.newBackoff(), ctx)
	if policy.MaxAttempts > 0 {
		b = backoff.WithMaxRetries(b, uint64(policy.MaxAttempts-1))
	}

	operation := func() error {
		err := fn()
		if err == nil {
			return nil
		}

		var fatalErr FatalError
		if errors.As(err, &fatalErr) && fatalErr.IsFatal() {
			return backoff.Permanent(err)
		}

		return err
	}

	return backoff.Retry(operation, b)
}

// RetryNotify is Retry with a callback before each backoff sleep.
func RetryNotify(ctx context.Context, policy Policy, fn func() error, notify func(err error, nextDelay time.Duration)) error {
	attempt := 0
	return Retry(ctx, policy, func() error {
		attempt++
		err := fn()
		if err != nil && notify != nil {
			if policy.MaxAttempts <= 0 || attempt < policy.MaxAttempts {
				notify(err, policy.nextDelay(attempt))
			}
		}
		return err
	})
}
