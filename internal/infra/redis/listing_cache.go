package redis

import (
	"context"
	"encoding/json"
	"time"

	"vip-content-platform/internal/infra/metrics"
)

// ListingCache caches rendered listing payloads (chat lists, feed pages).
// It replaces the old process-wide TTL map: the clock is injected so tests
// control staleness, expiry is enforced per entry, and invalidation works
// by key prefix instead of a background sweeper. Redis TTLs act as the
// backstop so entries never outlive twice their logical TTL.
type ListingCache struct {
	client *Client
	name   string
	ttl    time.Duration
	now    func() time.Time
}

type cacheEnvelope struct {
	ExpiresAt time.Time       `json:"expires_at"`
	Payload   json.RawMessage `json:"payload"`
}

func NewListingCache(client *Client, name string, ttl time.Duration, now func() time.Time) *ListingCache {
	if now == nil {
		now = time.Now
	}
	return &ListingCache{client: client, name: name, ttl: ttl, now: now}
}

func (c *ListingCache) key(k string) string { return c.name + ":" + k }

func (c *ListingCache) indexKey(prefix string) string { return c.name + ":idx:" + prefix }

// Get unmarshals the cached payload for key into out. The second return
// value reports a hit; a stale or absent entry is a miss.
func (c *ListingCache) Get(ctx context.Context, key string, out any) (bool, error) {
	raw, err := c.client.Get(ctx, c.key(key))
	if err != nil {
		if IsNil(err) {
			metrics.IncCacheRequest(c.name, "miss")
			return false, nil
		}
		return false, err
	}
	var env cacheEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return false, err
	}
	if c.now().After(env.ExpiresAt) {
		metrics.IncCacheRequest(c.name, "miss")
		return false, nil
	}
	if err := json.Unmarshal(env.Payload, out); err != nil {
		return false, err
	}
	metrics.IncCacheRequest(c.name, "hit")
	return true, nil
}

// Set stores value under key and records the key in the prefix index so
// InvalidatePrefix can find it later. Prefix is everything before the first
// colon in key (e.g. "chats:u-1" indexes under "chats").
func (c *ListingCache) Set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	env, err := json.Marshal(cacheEnvelope{
		ExpiresAt: c.now().Add(c.ttl),
		Payload:   payload,
	})
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key(key), env, 2*c.ttl); err != nil {
		return err
	}
	return c.client.SAdd(ctx, c.indexKey(prefixOf(key)), c.key(key))
}

// InvalidatePrefix drops every key stored under the given prefix.
func (c *ListingCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	idx := c.indexKey(prefix)
	keys, err := c.client.SMembers(ctx, idx)
	if err != nil {
		if IsNil(err) {
			return nil
		}
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, append(keys, idx)...)
}

func prefixOf(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i]
		}
	}
	return key
}
