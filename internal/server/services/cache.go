package services

import (
	"context"
	"sync"
)

type currentUserCacheKey struct{}

// currentUserCache memoizes CurrentUser results for one request. Middleware
// installs a fresh cache per request, so one user's resolved identity can
// never leak into another request's context.
type currentUserCache struct {
	mu      sync.Mutex
	entries map[CurrentUserOptions]currentUserEntry
}

type currentUserEntry struct {
	result *CurrentUser
	err    error
}

// WithCurrentUserCache returns a context carrying a fresh per-request
// memoization cache for CurrentUser.
func WithCurrentUserCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, currentUserCacheKey{}, &currentUserCache{
		entries: make(map[CurrentUserOptions]currentUserEntry),
	})
}

func currentUserCacheFrom(ctx context.Context) *currentUserCache {
	cache, _ := ctx.Value(currentUserCacheKey{}).(*currentUserCache)
	return cache
}

func (c *currentUserCache) lookup(opts CurrentUserOptions) (currentUserEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[opts]
	return entry, ok
}

func (c *currentUserCache) store(opts CurrentUserOptions, result *CurrentUser, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[opts] = currentUserEntry{result: result, err: err}
}
