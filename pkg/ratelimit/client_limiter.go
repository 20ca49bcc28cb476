package ratelimit

import (
	"fmt"
	"time"
)

const (
	DefaultClientLimit  = 10
	DefaultClientWindow = time.Hour
)

// Decision is the outcome of one client limiter check. It reflects the window
// state after the bundled counter mutation.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns the whole seconds until the window resets, clamped to
// zero.
func (d Decision) RetryAfter(now time.Time) int {
	secs := int(d.ResetAt.Sub(now).Seconds())
	if secs < 0 {
		return 0
	}
	return secs
}

type ClientLimiterOpts struct {
	TimeProvider func() time.Time
}

// ClientLimiter enforces a fixed per-identifier window: at most limit
// admissions per window length, counted from the first request of the window.
type ClientLimiter struct {
	store        *Store
	limit        int
	window       time.Duration
	timeProvider func() time.Time
}

func NewClientLimiter(store *Store, limit int, window time.Duration, opts *ClientLimiterOpts) *ClientLimiter {
	timeProvider := time.Now
	if opts != nil && opts.TimeProvider != nil {
		timeProvider = opts.TimeProvider
	}
	if limit <= 0 {
		limit = DefaultClientLimit
	}
	if window <= 0 {
		window = DefaultClientWindow
	}
	return &ClientLimiter{
		store:        store,
		limit:        limit,
		window:       window,
		timeProvider: timeProvider,
	}
}

// Limit returns the configured window ceiling.
func (l *ClientLimiter) Limit() int {
	return l.limit
}

// Check decides admission for clientID and, on a live window, increments its
// counter in the same critical section. A fresh window is created when none
// exists or the stored one has expired.
func (l *ClientLimiter) Check(clientID string) Decision {
	var decision Decision
	l.store.Update(clientKey(clientID), func(cur Window, ok bool) Window {
		now := l.timeProvider()
		if !ok || now.After(cur.ResetAt) {
			resetAt := now.Add(l.window)
			decision = Decision{Allowed: true, Remaining: l.limit - 1, ResetAt: resetAt}
			return Window{Count: 1, ResetAt: resetAt}
		}
		if cur.Count >= l.limit {
			decision = Decision{Allowed: false, Remaining: 0, ResetAt: cur.ResetAt}
			return cur
		}
		cur.Count++
		decision = Decision{Allowed: true, Remaining: l.limit - cur.Count, ResetAt: cur.ResetAt}
		return cur
	})
	return decision
}

func clientKey(clientID string) string {
	return fmt.Sprintf("ratelimit:client:%s", clientID)
}
