// Package ratelimit provides named per-source call gating.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Default cooldown applied to sources registered without one.
const defaultCooldown = time.Second

// Source keys known to the pipeline. Each has its own independent window;
// waiting on one never affects another's eligibility.
const (
	SourceGeocode         = "geocode"
	SourceListing         = "listing"
	SourceDirectorySearch = "directory-search"
	SourceDirectoryDetail = "directory-detail"
	SourceWebsite         = "website"
	SourceReviews         = "reviews"
	SourcePipeline        = "pipeline"
)

// Registry holds one limiter per source key. Clients receive the registry
// by injection and gate each network call on their own key.
type Registry struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRegistry creates a Registry with the given per-source cooldowns.
// Sources acquired without a configured cooldown get defaultCooldown.
func NewRegistry(cooldowns map[string]time.Duration) *Registry {
	r := &Registry{limiters: make(map[string]*rate.Limiter, len(cooldowns))}
	for source, d := range cooldowns {
		r.limiters[source] = newLimiter(d)
	}
	return r
}

// newLimiter allows one call per cooldown, with the first call passing
// immediately.
func newLimiter(cooldown time.Duration) *rate.Limiter {
	if cooldown <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(cooldown), 1)
}

// Acquire blocks until the source's cooldown has elapsed since its last
// call, then records the call. It is a pure wait primitive: the only error
// is context cancellation.
func (r *Registry) Acquire(ctx context.Context, source string) error {
	r.mu.Lock()
	lim, ok := r.limiters[source]
	if !ok {
		lim = newLimiter(defaultCooldown)
		r.limiters[source] = lim
	}
	r.mu.Unlock()

	if !lim.Allow() {
		zap.L().Debug("ratelimit: waiting for cooldown", zap.String("source", source))
		return lim.Wait(ctx)
	}
	return nil
}
