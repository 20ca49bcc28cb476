package ratelimit

import (
	"fmt"
	"time"
)

const DefaultDailyLimit = 1000

const dayFormat = "2006-01-02"

// DailyDecision is the outcome of one global daily limiter check.
type DailyDecision struct {
	Allowed bool
	Used    int
	Limit   int
}

type DailyLimiterOpts struct {
	TimeProvider func() time.Time
}

// DailyLimiter enforces a single shared ceiling per calendar day across all
// clients. The day key comes from the process-local clock; a new day produces
// a new key and prior days' entries are simply left behind in the store.
type DailyLimiter struct {
	store        *Store
	limit        int
	timeProvider func() time.Time
}

func NewDailyLimiter(store *Store, limit int, opts *DailyLimiterOpts) *DailyLimiter {
	timeProvider := time.Now
	if opts != nil && opts.TimeProvider != nil {
		timeProvider = opts.TimeProvider
	}
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	return &DailyLimiter{
		store:        store,
		limit:        limit,
		timeProvider: timeProvider,
	}
}

// Limit returns the configured daily ceiling.
func (l *DailyLimiter) Limit() int {
	return l.limit
}

// Check decides admission against today's counter, incrementing it on allow
// and leaving it untouched on reject.
func (l *DailyLimiter) Check() DailyDecision {
	var decision DailyDecision
	now := l.timeProvider()
	l.store.Update(dailyKey(now), func(cur Window, ok bool) Window {
		if !ok {
			cur = Window{ResetAt: startOfNextDay(now)}
		}
		if cur.Count >= l.limit {
			decision = DailyDecision{Allowed: false, Used: cur.Count, Limit: l.limit}
			return cur
		}
		cur.Count++
		decision = DailyDecision{Allowed: true, Used: cur.Count, Limit: l.limit}
		return cur
	})
	return decision
}

func dailyKey(now time.Time) string {
	return fmt.Sprintf("ratelimit:daily:%s", now.Format(dayFormat))
}

func startOfNextDay(now time.Time) time.Time {
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
}
