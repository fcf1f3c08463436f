package core

import (
	"sync"
	"time"
)

// RequestThrottle is a single process-wide cooldown gate in front of the
// generation call. It is deliberately global, not per user: the upstream
// model quota is shared by everyone talking to the pet.
type RequestThrottle struct {
	mu            sync.Mutex
	cooldown      time.Duration
	lastRequestAt time.Time
	now           func() time.Time
}

func NewRequestThrottle(cooldown time.Duration) *RequestThrottle {
	return &RequestThrottle{
		cooldown: cooldown,
		now:      time.Now,
	}
}

// TryAcquire reports whether a request may proceed. When allowed, the
// current time is recorded under the same lock, so two requests inside the
// cooldown window cannot both pass.
func (t *RequestThrottle) TryAcquire() (allowed bool, remaining time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	elapsed := now.Sub(t.lastRequestAt)
	if !t.lastRequestAt.IsZero() && elapsed < t.cooldown {
		return false, t.cooldown - elapsed
	}

	t.lastRequestAt = now
	return true, 0
}
