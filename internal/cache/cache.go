// Package cache is a tagged read-through cache for dashboard reads. Entries
// are grouped under tags so a write can drop every entry that depends on it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/formcraft/formcraft-backend/logger"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "cache:"
	tagPrefix = "cache:tag:"
)

type Cache interface {
	// Get decodes the entry into dest. A miss is (false, nil).
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration, tags ...string) error
	// Invalidate drops every entry stored under any of the tags.
	Invalidate(ctx context.Context, tags ...string) error
}

// RedisCache stores JSON values with SET EX and tracks tag membership in sets.
type RedisCache struct {
	client redis.Cmdable
}

func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// a stale shape from an older build; treat as a miss
		logger.GetLogger().Warnw("Discarding undecodable cache entry", "key", key, "error", err)
		c.client.Del(ctx, keyPrefix+key)
		return false, nil
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration, tags ...string) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, keyPrefix+key, raw, ttl)
	for _, tag := range tags {
		pipe.SAdd(ctx, tagPrefix+tag, keyPrefix+key)
		pipe.Expire(ctx, tagPrefix+tag, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		members, err := c.client.SMembers(ctx, tagPrefix+tag).Result()
		if err != nil {
			return fmt.Errorf("cache tag %s: %w", tag, err)
		}
		keys := append(members, tagPrefix+tag)
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("cache invalidate %s: %w", tag, err)
		}
	}
	return nil
}

// NoopCache never hits. Used when CACHE_ENABLED is false.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (NoopCache) Set(context.Context, string, interface{}, time.Duration, ...string) error {
	return nil
}
func (NoopCache) Invalidate(context.Context, ...string) error { return nil }

var (
	_ Cache = (*RedisCache)(nil)
	_ Cache = NoopCache{}
)
