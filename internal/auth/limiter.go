package auth

import (
	"sync"
	"time"
)

// LoginLimiter is a sliding-window attempt counter keyed by client. It
// throttles credential guessing per process; keys expire once their window
// drains.
type LoginLimiter struct {
	mu        sync.Mutex
	attempts  map[string][]time.Time
	window    time.Duration
	limit     int
	lastSweep time.Time
}

// NewLoginLimiter builds a limiter allowing limit attempts per window.
func NewLoginLimiter(window time.Duration, limit int) *LoginLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if limit <= 0 {
		limit = 10
	}
	return &LoginLimiter{
		attempts: make(map[string][]time.Time),
		window:   window,
		limit:    limit,
	}
}

// Allow records an attempt for key and reports whether it is within limits.
func (l *LoginLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-l.window)

	// Once per window, drop keys whose attempts have all drained, so the map
	// does not accumulate one entry per client IP forever.
	if now.Sub(l.lastSweep) >= l.window {
		for k, attempts := range l.attempts {
			if len(attempts) == 0 || !attempts[len(attempts)-1].After(cutoff) {
				delete(l.attempts, k)
			}
		}
		l.lastSweep = now
	}

	valid := l.attempts[key][:0]
	for _, at := range l.attempts[key] {
		if at.After(cutoff) {
			valid = append(valid, at)
		}
	}

	if len(valid) >= l.limit {
		l.attempts[key] = valid
		return false
	}

	l.attempts[key] = append(valid, now)
	return true
}
