package analyses

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	pollLimitWindow = time.Second
	pollSweepAt     = 10000
)

type pollEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// pollLimiter allows one status read of an analysis per window for each
// user. Clients polling an async generation hit it first.
type pollLimiter struct {
	mu      sync.Mutex
	entries map[string]*pollEntry
	now     func() time.Time
	window  time.Duration
}

func newPollLimiter(window time.Duration, now func() time.Time) *pollLimiter {
	if now == nil {
		now = time.Now
	}
	if window <= 0 {
		window = pollLimitWindow
	}
	return &pollLimiter{entries: make(map[string]*pollEntry), now: now, window: window}
}

func (l *pollLimiter) Allow(userID, analysisID string) bool {
	if l == nil {
		return true
	}
	key := userID + "|" + analysisID
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		if len(l.entries) >= pollSweepAt {
			for k, old := range l.entries {
				if now.Sub(old.lastSeen) >= l.window {
					delete(l.entries, k)
				}
			}
		}
		e = &pollEntry{lim: rate.NewLimiter(rate.Every(l.window), 1)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.lim.AllowN(now, 1)
}

// RetryAfterSeconds is the Retry-After value for a throttled poll, at
// least one second.
func (l *pollLimiter) RetryAfterSeconds() int {
	window := pollLimitWindow
	if l != nil {
		window = l.window
	}
	return max(1, int(math.Ceil(window.Seconds())))
}
