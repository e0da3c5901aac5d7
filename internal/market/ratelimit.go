package market

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// MultiRateLimiter paces outbound requests per data source.
type MultiRateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
}

// NewMultiRateLimiter creates a new multi-source rate limiter
func NewMultiRateLimiter() *MultiRateLimiter {
	return &MultiRateLimiter{
		limiters: make(map[string]*rate.Limiter),
	}
}

// AddLimiter allows perSecond requests with the given burst for source.
func (mrl *MultiRateLimiter) AddLimiter(source string, perSecond float64, burst int) {
	if burst < 1 {
		burst = 1
	}
	mrl.mu.Lock()
	defer mrl.mu.Unlock()

	mrl.limiters[source] = rate.NewLimiter(rate.Limit(perSecond), burst)
}

// Wait blocks until source may issue a request. Unknown sources are unlimited.
func (mrl *MultiRateLimiter) Wait(ctx context.Context, source string) error {
	if mrl == nil {
		return nil
	}
	mrl.mu.RLock()
	limiter, ok := mrl.limiters[source]
	mrl.mu.RUnlock()

	if !ok {
		return nil
	}
	return limiter.Wait(ctx)
}
