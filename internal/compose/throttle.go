package compose

import (
	"context"
	"sync"
	"time"
)

// Throttle enforces a minimum interval between sends to the same chat.
type Throttle struct {
	minInterval time.Duration
	mu          sync.Mutex
	lastSend    map[int64]time.Time
}

// NewThrottle creates a Throttle. A non-positive interval disables it.
func NewThrottle(minInterval time.Duration) *Throttle {
	return &Throttle{
		minInterval: minInterval,
		lastSend:    make(map[int64]time.Time),
	}
}

// Wait blocks until the minimum interval has passed since the last send to
// chatID, or until ctx is done.
func (t *Throttle) Wait(ctx context.Context, chatID int64) error {
	if t == nil || t.minInterval <= 0 {
		return nil
	}

	t.mu.Lock()
	now := time.Now()
	var sleepDur time.Duration
	if last, ok := t.lastSend[chatID]; ok {
		nextAllowed := last.Add(t.minInterval)
		if now.Before(nextAllowed) {
			sleepDur = nextAllowed.Sub(now)
			t.lastSend[chatID] = nextAllowed
		} else {
			t.lastSend[chatID] = now
		}
	} else {
		t.lastSend[chatID] = now
	}
	t.mu.Unlock()

	if sleepDur <= 0 {
		return nil
	}
	timer := time.NewTimer(sleepDur)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
