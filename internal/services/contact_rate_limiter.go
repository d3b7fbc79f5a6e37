package services

import (
	"sync"
	"time"
)

// rateWindow tracks one caller's fixed window.
type rateWindow struct {
	count     int
	resetTime time.Time
}

// ContactRateLimiter is an in-process fixed-window limiter keyed by caller IP.
// State is per process and is lost on restart. Windows are never evicted.
type ContactRateLimiter struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
	max     int
	window  time.Duration
	now     func() time.Time
}

const (
	DefaultContactRateLimitMax    = 5
	DefaultContactRateLimitWindow = time.Hour
)

// NewContactRateLimiter allows max submissions per window for each IP.
// Non-positive values fall back to 5 per hour.
func NewContactRateLimiter(max int, window time.Duration) *ContactRateLimiter {
	if max <= 0 {
		max = DefaultContactRateLimitMax
	}
	if window <= 0 {
		window = DefaultContactRateLimitWindow
	}
	return &ContactRateLimiter{
		windows: make(map[string]*rateWindow),
		max:     max,
		window:  window,
		now:     time.Now,
	}
}

// WithClock swaps the time source. Intended for tests.
func (l *ContactRateLimiter) WithClock(now func() time.Time) *ContactRateLimiter {
	l.now = now
	return l
}

// Allow records one submission from ip and reports whether it is within the limit.
// A fresh or expired window is restarted with a count of one. A denied call
// leaves the count unchanged.
func (l *ContactRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[ip]
	if !ok || now.After(w.resetTime) {
		l.windows[ip] = &rateWindow{count: 1, resetTime: now.Add(l.window)}
		return true
	}

	if w.count >= l.max {
		return false
	}

	w.count++
	return true
}

// Tracked returns the number of IPs with a window on record.
func (l *ContactRateLimiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
