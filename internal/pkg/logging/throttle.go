package logging

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle deduplicates noisy diagnostic logging: for each key, at
// most one record per interval goes through. The feed produces the
// same unresolved line thousands of times under steady noise, so the
// per-key limiter is what keeps the log readable.
type Throttle struct {
	interval time.Duration
	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	// lastSweep bounds limiter map growth; keys are feed-derived and
	// unbounded over a long run.
	lastSweep time.Time
}

// NewThrottle creates a throttle emitting at most one record per key
// per interval.
func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Throttle{
		interval:  interval,
		limiters:  make(map[string]*rate.Limiter),
		lastSweep: time.Now(),
	}
}

// Allow reports whether a record for key may be logged now.
func (t *Throttle) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if time.Since(t.lastSweep) > 10*t.interval && len(t.limiters) > 4096 {
		t.limiters = make(map[string]*rate.Limiter)
		t.lastSweep = time.Now()
	}

	lim, ok := t.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(t.interval), 1)
		t.limiters[key] = lim
	}
	return lim.Allow()
}

// Debug logs at Debug level if the key is within its budget.
func (t *Throttle) Debug(key, msg string, args ...any) {
	if t.Allow(key) {
		slog.Debug(msg, args...)
	}
}

// Warn logs at Warn level if the key is within its budget.
func (t *Throttle) Warn(key, msg string, args ...any) {
	if t.Allow(key) {
		slog.Warn(msg, args...)
	}
}
