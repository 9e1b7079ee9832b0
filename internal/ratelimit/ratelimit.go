package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Rule caps a scope to Requests per Window for each client key.
type Rule struct {
	Requests int
	Window   time.Duration
}

var (
	RegisterRule = Rule{Requests: 5, Window: time.Minute}
	LoginRule    = Rule{Requests: 10, Window: time.Minute}
	PasswordRule = Rule{Requests: 5, Window: time.Minute}
	CommentRule  = Rule{Requests: 5, Window: time.Minute}
)

type Limiter interface {
	Allow(ctx context.Context, key string, rule Rule) (bool, error)
}

const (
	memoryCleanupInterval = 5 * time.Minute
	memoryLimiterTTL      = 30 * time.Minute
)

type memoryEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// MemoryLimiter keeps one token bucket per key in process memory. It suits a
// single instance; use RedisLimiter when several instances share traffic.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{entries: make(map[string]*memoryEntry)}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, rule Rule) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &memoryEntry{
			limiter: rate.NewLimiter(rate.Every(rule.Window/time.Duration(rule.Requests)), rule.Requests),
		}
		l.entries[key] = e
	}
	e.lastUse = time.Now()
	return e.limiter.Allow(), nil
}

// Evict drops buckets idle since before cutoff.
func (l *MemoryLimiter) Evict(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, e := range l.entries {
		if e.lastUse.Before(cutoff) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Run evicts idle buckets periodically until ctx is done.
func (l *MemoryLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(memoryCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.Evict(now.Add(-memoryLimiterTTL))
		}
	}
}
