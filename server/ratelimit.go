package server

import (
	"sync"

	"golang.org/x/time/rate"
)

// sessionLimiters rate-limits location updates per session so one noisy
// client cannot flood the cache or the distance computation.
type sessionLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newSessionLimiters(updatesPerSecond float64) *sessionLimiters {
	if updatesPerSecond <= 0 {
		updatesPerSecond = 2
	}
	return &sessionLimiters{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(updatesPerSecond),
		burst:    int(updatesPerSecond*2) + 1,
	}
}

func (l *sessionLimiters) Allow(sessionID string) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[sessionID]
	if !ok {
		limiter = rate.NewLimiter(l.rps, l.burst)
		l.limiters[sessionID] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow()
}

// Remove drops the limiter when its session disconnects.
func (l *sessionLimiters) Remove(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.limiters, sessionID)
}
