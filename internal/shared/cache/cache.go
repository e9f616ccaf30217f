package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Prefixes group every cached entry of one query family so the whole
// family can be dropped with a single version bump.
const (
	PrefixLeaveRequests = "LeaveRequests"
	PrefixLeaveBalances = "LeaveBalances"
)

const versionKeyPrefix = "version:"

// Cache is a versioned read-through cache. The effective key is
// "{prefix}:v{version}:{key}" where version lives in redis under
// "version:{prefix}". InvalidateByPrefix just increments the version:
// old entries become unreachable and age out by TTL, so invalidation is
// O(1) instead of a key scan. The version is read fresh on every
// operation and shared by all service instances.
type Cache struct {
	rdb    *redis.Client
	sf     singleflight.Group
	logger *zap.Logger
}

func New(rdb *redis.Client, logger ...*zap.Logger) *Cache {
	l := zap.L().Named("shared.cache")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("shared.cache")
	}
	return &Cache{rdb: rdb, logger: l}
}

// Version returns the current version for a prefix, initializing it to 1
// on first use.
func (c *Cache) Version(ctx context.Context, prefix string) (int64, error) {
	key := versionKeyPrefix + prefix

	v, err := c.rdb.Get(ctx, key).Int64()
	if err == redis.Nil {
		if err := c.rdb.Set(ctx, key, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return v, nil
}

// InvalidateByPrefix orphans every entry under the prefix by bumping the
// version counter.
func (c *Cache) InvalidateByPrefix(ctx context.Context, prefix string) error {
	return c.rdb.Incr(ctx, versionKeyPrefix+prefix).Err()
}

func (c *Cache) versionedKey(ctx context.Context, prefix, key string) (string, error) {
	version, err := c.Version(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d:%s", prefix, version, key), nil
}

// GetOrCreate returns the cached value under prefix+key, or runs factory,
// stores its result with the given TTL, and returns it. Concurrent misses
// for the same key are collapsed into one factory call. Redis faults
// degrade to a direct factory call rather than failing the read.
func GetOrCreate[T any](
	ctx context.Context,
	c *Cache,
	prefix, key string,
	ttl time.Duration,
	factory func(ctx context.Context) (T, error),
) (T, error) {
	var zero T
	if c == nil || c.rdb == nil {
		return factory(ctx)
	}

	fullKey, err := c.versionedKey(ctx, prefix, key)
	if err != nil {
		c.logger.Warn("cache version lookup failed", zap.String("prefix", prefix), zap.Error(err))
		return factory(ctx)
	}

	cached, err := c.rdb.Get(ctx, fullKey).Result()
	if err == nil {
		var value T
		if err := json.Unmarshal([]byte(cached), &value); err == nil {
			return value, nil
		}
		// Undecodable entry: fall through and recompute.
	} else if err != redis.Nil {
		c.logger.Warn("cache read failed", zap.String("key", fullKey), zap.Error(err))
	}

	v, err, _ := c.sf.Do(fullKey, func() (any, error) {
		value, err := factory(ctx)
		if err != nil {
			return nil, err
		}

		if payload, err := json.Marshal(value); err == nil {
			if err := c.rdb.Set(ctx, fullKey, payload, ttl).Err(); err != nil {
				c.logger.Warn("cache write failed", zap.String("key", fullKey), zap.Error(err))
			}
		}

		return value, nil
	})
	if err != nil {
		return zero, err
	}

	return v.(T), nil
}
