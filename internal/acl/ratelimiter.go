package acl

import (
	"sync"
	"time"

	"github.com/joshuafuller/zoneguard/internal/metrics"
)

// limitEntry tracks request rate for a single key (address or signer name).
type limitEntry struct {
	windowStart    time.Time
	cooldownExpiry time.Time
	lastSeen       time.Time
	key            string
	count          int
}

// RateLimiter is an ACL element (spec §4.7's extensible element set) that
// matches "has this key exceeded N requests per window", adapted from the
// teacher's per-source-IP sliding-window limiter: same window+cooldown+LRU
// shape, generalized from a source IP key to whatever key the caller's
// Request maps to a match against (typically the request address, but a
// signer-scoped limiter can be built the same way).
type RateLimiter struct {
	threshold  int
	cooldown   time.Duration
	maxEntries int

	mu      sync.RWMutex
	entries map[string]*limitEntry

	metrics *metrics.ACL
}

// NewRateLimiter returns a limiter allowing up to threshold requests per
// one-second window per key, dropping for cooldown once exceeded, and
// bounding tracked keys to maxEntries via oldest-first eviction.
func NewRateLimiter(threshold int, cooldown time.Duration, maxEntries int) *RateLimiter {
	return &RateLimiter{
		threshold:  threshold,
		cooldown:   cooldown,
		maxEntries: maxEntries,
		entries:    make(map[string]*limitEntry),
	}
}

// WithMetrics attaches a metrics.ACL collector set, reporting every Allow
// decision and every eviction. Returns the limiter for chaining at
// construction time.
func (rl *RateLimiter) WithMetrics(m *metrics.ACL) *RateLimiter {
	rl.metrics = m
	return rl
}

// Allow reports whether a request keyed by key should proceed. false means
// the key is over its rate or within a post-limit cooldown window.
func (rl *RateLimiter) Allow(key string) bool {
	now := time.Now()

	rl.mu.RLock()
	entry, exists := rl.entries[key]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		entry, exists = rl.entries[key]
		if !exists {
			rl.entries[key] = &limitEntry{key: key, count: 1, windowStart: now, lastSeen: now}
			if len(rl.entries) > rl.maxEntries {
				rl.evictLocked()
			}
			rl.mu.Unlock()
			rl.record(true)
			return true
		}
		rl.mu.Unlock()
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if !entry.cooldownExpiry.IsZero() && now.Before(entry.cooldownExpiry) {
		rl.record(false)
		return false
	}
	if !entry.cooldownExpiry.IsZero() && now.After(entry.cooldownExpiry) {
		entry.count = 1
		entry.windowStart = now
		entry.cooldownExpiry = time.Time{}
		entry.lastSeen = now
		rl.record(true)
		return true
	}

	if now.Sub(entry.windowStart) > time.Second {
		entry.count = 1
		entry.windowStart = now
	} else {
		entry.count++
	}
	entry.lastSeen = now

	if entry.count > rl.threshold {
		entry.cooldownExpiry = now.Add(rl.cooldown)
		rl.record(false)
		return false
	}
	rl.record(true)
	return true
}

func (rl *RateLimiter) record(allowed bool) {
	if rl.metrics == nil {
		return
	}
	outcome := "allow"
	if !allowed {
		outcome = "deny"
	}
	rl.metrics.RateLimitDecisions.WithLabelValues(outcome).Inc()
}

// evictLocked removes the oldest 10% of entries by lastSeen. Caller holds
// rl.mu write lock.
func (rl *RateLimiter) evictLocked() {
	evictCount := rl.maxEntries / 10
	if evictCount == 0 {
		evictCount = 1
	}

	type keyTime struct {
		key      string
		lastSeen time.Time
	}
	all := make([]keyTime, 0, len(rl.entries))
	for k, e := range rl.entries {
		all = append(all, keyTime{key: k, lastSeen: e.lastSeen})
	}

	for i := 0; i < evictCount && i < len(all); i++ {
		oldest := i
		for j := i + 1; j < len(all); j++ {
			if all[j].lastSeen.Before(all[oldest].lastSeen) {
				oldest = j
			}
		}
		all[i], all[oldest] = all[oldest], all[i]
	}

	evicted := 0
	for i := 0; i < evictCount && i < len(all); i++ {
		delete(rl.entries, all[i].key)
		evicted++
	}
	if rl.metrics != nil && evicted > 0 {
		rl.metrics.RateLimiterEvictions.Add(float64(evicted))
	}
}

// Cleanup removes entries not seen within the last minute, bounding map
// growth between eviction triggers (spec extension of §4.7's element set;
// adapted from the teacher's periodic Cleanup sweep).
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for k, e := range rl.entries {
		if now.Sub(e.lastSeen) > time.Minute {
			delete(rl.entries, k)
		}
	}
}
