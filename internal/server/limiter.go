package server

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientIdleTTL is how long a client's bucket is kept after its last request.
const clientIdleTTL = 10 * time.Minute

type clientBucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

// clientLimiter keeps one token bucket per client key.
type clientLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idle      time.Duration
	now       func() time.Time
	clients   map[string]*clientBucket
	lastSweep time.Time
}

func newClientLimiter(limit float64, burst int) *clientLimiter {
	l := &clientLimiter{
		limit:   rate.Inf,
		idle:    clientIdleTTL,
		now:     time.Now,
		clients: make(map[string]*clientBucket),
	}
	if limit > 0 {
		l.limit = rate.Limit(limit)
		l.burst = max(burst, 1)
	}
	return l
}

// Allow takes a token from key's bucket.
func (l *clientLimiter) Allow(key string) bool {
	if l.limit == rate.Inf {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idle {
		l.sweep(now)
	}

	b, ok := l.clients[key]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = b
	}
	b.seen = now
	return b.limiter.AllowN(now, 1)
}

// sweep drops buckets idle for longer than l.idle. Callers hold l.mu.
func (l *clientLimiter) sweep(now time.Time) {
	for key, b := range l.clients {
		if now.Sub(b.seen) > l.idle {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

// Len returns the number of tracked clients.
func (l *clientLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}
