package usecase

import "context"

// ListingCache caches rendered listing payloads keyed as "prefix:suffix".
// Implemented by the redis-backed cache; tests swap in an in-memory one.
type ListingCache interface {
	Get(ctx context.Context, key string, out any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// noopCache satisfies ListingCache when caching is disabled.
type noopCache struct{}

func (noopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (noopCache) Set(context.Context, string, any) error         { return nil }
func (noopCache) InvalidatePrefix(context.Context, string) error { return nil }
