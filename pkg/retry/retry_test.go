package retry

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mqttlog/pkg/errors"
)

func fastPolicy(maxAttempts int) Policy {
	return Policy{
		MaxAttempts:     maxAttempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), fastPolicy(5), func() error {
		attempts++
		if attempts < 3 {
			return apperrors.ErrConnection
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryStopsAfterMaxAttempts(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), fastPolicy(3), func() error {
		attempts++
		return apperrors.ErrConnection
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryStopsOnFatalError(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), fastPolicy(5), func() error {
		attempts++
		return apperrors.ErrInvalidArgument
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := Retry(ctx, fastPolicy(0), func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return fmt.Errorf("still down")
	})

	require.Error(t, err)
	assert.LessOrEqual(t, attempts, 3)
}

func TestRetryNotifyReportsEachFailedAttempt(t *testing.T) {
	var delays []time.Duration

	attempts := 0
	err := RetryNotify(context.Background(), fastPolicy(5), func() error {
		attempts++
		if attempts < 3 {
			return apperrors.ErrConnection
		}
		return nil
	}, func(err error, nextDelay time.Duration) {
		delays = append(delays, nextDelay)
	})

	require.NoError(t, err)
	assert.Len(t, delays, 2)
}

func TestNextDelayGrowsAndCapsAtMaxInterval(t *testing.T) {
	p := Policy{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2.0,
	}

	assert.Equal(t, 200*time.Millisecond, p.nextDelay(1))
	assert.Equal(t, 400*time.Millisecond, p.nextDelay(2))
	assert.Equal(t, time.Second, p.nextDelay(10))
}

func TestRetryNotifySkipsNotifyOnFinalAttempt(t *testing.T) {
	notified := 0
	err := RetryNotify(context.Background(), fastPolicy(2), func() error {
		return apperrors.ErrConnection
	}, func(err error, nextDelay time.Duration) {
		notified++
	})

	require.Error(t, err)
	assert.Equal(t, 1, notified)
}
