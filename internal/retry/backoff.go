// Package retry computes delays between reconnect attempts.
package retry

import (
	"context"
	"time"
)

// Backoff describes the delay between consecutive failed attempts. When Max
// is not greater than Base the delay is fixed at Base; otherwise it doubles
// per attempt up to Max.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// Delay returns the wait before retry number attempt. attempt is 1-based;
// values < 1 are treated as 1.
func (b Backoff) Delay(attempt int) time.Duration {
	if b.Max <= b.Base {
		return max(b.Base, 0)
	}
	return ExponentialDelay(b.Base, b.Max, attempt)
}

// ExponentialDelay returns base*2^(attempt-1), optionally capped by maxDelay.
// attempt is 1-based; values < 1 are treated as 1.
func ExponentialDelay(base, maxDelay time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if base <= 0 {
		return 0
	}

	delay := base
	for i := 1; i < attempt; i++ {
		if maxDelay > 0 && delay >= maxDelay {
			break
		}
		if delay > time.Duration(1<<62)/2 {
			break
		}
		delay *= 2
	}
	if maxDelay > 0 && delay > maxDelay {
		return maxDelay
	}
	return delay
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
