// Package ratelimit is an in-process token bucket keyed by client IP. It
// guards embed loads, which are cheap enough not to need a Redis round trip.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const idleAfter = 10 * time.Minute

type Decision struct {
	Allowed    bool
	Limit      int
	RetryAfter time.Duration
}

type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    rate.Limit
	burst   int
	perMin  int
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter allows perMinute requests per key with the given burst.
func NewLimiter(perMinute, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	l := &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate.Limit(float64(perMinute) / 60),
		burst:   burst,
		perMin:  perMinute,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

func (l *Limiter) Allow(key string) Decision {
	now := l.now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	r := b.limiter.ReserveN(now, 1)
	if r.OK() && r.DelayFrom(now) == 0 {
		return Decision{Allowed: true, Limit: l.perMin}
	}

	wait := time.Second
	if r.OK() {
		if d := r.DelayFrom(now); d > wait {
			wait = d
		}
		r.CancelAt(now)
	}
	return Decision{Allowed: false, Limit: l.perMin, RetryAfter: wait}
}

func (l *Limiter) sweepLoop() {
	ticker := time.NewTicker(idleAfter)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep drops buckets that are idle and full again.
func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-idleAfter)
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) && b.limiter.TokensAt(l.now()) >= float64(l.burst) {
			delete(l.buckets, key)
		}
	}
}

func (l *Limiter) Close() {
	l.once.Do(func() { close(l.stop) })
}
