package analytics

import (
	"sync"
	"time"
)

// rateLimiter caps how many collect calls one key (an IP) may make per
// window. Stale keys are swept inline at most once per window, so no
// background goroutine is needed.
type rateLimiter struct {
	mu        sync.Mutex
	max       int
	window    time.Duration
	hits      map[string][]time.Time
	nextSweep time.Time
}

func newRateLimiter(max int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		max:    max,
		window: window,
		hits:   make(map[string][]time.Time),
	}
}

// allow reports whether key may proceed and records the hit if so.
func (r *rateLimiter) allow(key string) bool {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()

	if now.After(r.nextSweep) {
		r.sweep(now)
		r.nextSweep = now.Add(r.window)
	}

	cutoff := now.Add(-r.window)
	kept := r.hits[key][:0]
	for _, t := range r.hits[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= r.max {
		r.hits[key] = kept
		return false
	}
	r.hits[key] = append(kept, now)
	return true
}

func (r *rateLimiter) sweep(now time.Time) {
	cutoff := now.Add(-r.window)
	for key, times := range r.hits {
		kept := times[:0]
		for _, t := range times {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			delete(r.hits, key)
		} else {
			r.hits[key] = kept
		}
	}
}
