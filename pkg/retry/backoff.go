package retry

import (
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// newBackoff builds the policy's exponential backoff. MaxElapsedTime
// stays zero: the reconnect loop never gives up on elapsed time alone —
// attempt caps and context cancellation are layered on by Retry.
func (p Policy) newBackoff() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	exp.MaxInterval = p.MaxInterval
	exp.Multiplier = p.Multiplier
	exp.MaxElapsedTime = 0
	return exp
}

// nextDelay estimates the sleep before the next attempt after the given
// number of failed attempts, for notify callbacks. The live backoff
// adds jitter, so this is indicative, not exact.
func (p Policy) nextDelay(failedAttempts int) time.Duration {
	d := float64(p.InitialInterval) * math.Pow(p.Multiplier, float64(failedAttempts))
	if d > float64(p.MaxInterval) {
		return p.MaxInterval
	}
	return time.Duration(d)
}
