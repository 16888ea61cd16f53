package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Result of one limiter check. Denial is a value, not an error; the limiter
// never blocks and never fails.
type Result struct {
	Allowed    bool
	RetryAfter time.Duration
}

type entry struct {
	count   int
	resetAt time.Time
}

// Limiter is a fixed-window counter keyed by caller identifier. State lives
// only in process memory, so the limit is per warm instance and is lost on
// restart. That weak consistency is accepted: this is advisory throttling,
// not the security boundary.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	max     int
	window  time.Duration
	now     func() time.Time
}

func New(max int, window time.Duration) *Limiter {
	return &Limiter{
		entries: make(map[string]*entry),
		max:     max,
		window:  window,
		now:     time.Now,
	}
}

// NewWithClock builds a limiter with an injected clock.
func NewWithClock(max int, window time.Duration, now func() time.Time) *Limiter {
	l := New(max, window)
	l.now = now
	return l
}

// Check records one attempt for the identifier. The first attempt in a
// window, or any attempt after the window elapsed, opens a fresh window with
// count 1. Once the count exceeds the maximum the attempt is denied together
// with the seconds remaining until reset.
func (l *Limiter) Check(identifier string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[identifier]
	if !ok || now.After(e.resetAt) {
		l.entries[identifier] = &entry{count: 1, resetAt: now.Add(l.window)}
		return Result{Allowed: true}
	}

	e.count++
	if e.count > l.max {
		retry := time.Duration(math.Ceil(e.resetAt.Sub(now).Seconds())) * time.Second
		if retry <= 0 {
			retry = time.Second
		}
		return Result{Allowed: false, RetryAfter: retry}
	}
	return Result{Allowed: true}
}
