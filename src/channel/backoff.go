package channel

import (
	"math/rand"
	"time"
)

// -----------------------------------------------------------------------------
// Reconnect delay policy: pure doubling, no state. Growth is unbounded
// because the attempt counter is capped by the retry ceiling before this
// is consulted again.
// -----------------------------------------------------------------------------

// Backoff returns the delay before reconnect attempt number `attempt`
// (attempt >= 1): base * 2^attempt.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base * (1 << uint(attempt))
}

// -----------------------------------------------------------------------------

// BackoffWithJitter spreads the delay uniformly over [0.5x, 1.5x] of the
// unjittered value.
func BackoffWithJitter(base time.Duration, attempt int) time.Duration {
	d := Backoff(base, attempt)
	half := d / 2
	return half + time.Duration(rand.Int63n(int64(d)+1))
}
