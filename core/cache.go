package core

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

const (
	cacheKeyPrefix   = "storyspotlight:"
	bookListCacheKey = cacheKeyPrefix + "books"
)

func bookDetailCacheKey(id int64) string {
	return cacheKeyPrefix + "book:" + strconv.FormatInt(id, 10)
}

// BookCache stores rendered catalogue reads. A miss is (false, nil).
type BookCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

// RedisBookCache keeps JSON payloads in Redis with a fixed TTL.
type RedisBookCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisClient returns a go-redis client from URL (e.g., redis://localhost:6379/0) after a ping.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, errors.New("empty redis url")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, oops.Code("REDIS_URL_INVALID").Wrap(err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, oops.Code("REDIS_UNAVAILABLE").Wrap(err)
	}
	return client, nil
}

func NewRedisBookCache(client redis.Cmdable, ttl time.Duration) *RedisBookCache {
	return &RedisBookCache{client: client, ttl: ttl}
}

func (c *RedisBookCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, oops.Code("CACHE_GET_FAILED").With("key", key).Wrap(err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// stale layout; drop it and treat as a miss
		_ = c.client.Del(ctx, key).Err()
		return false, nil
	}
	return true, nil
}

func (c *RedisBookCache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return oops.Code("CACHE_ENCODE_FAILED").With("key", key).Wrap(err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return oops.Code("CACHE_SET_FAILED").With("key", key).Wrap(err)
	}
	return nil
}

func (c *RedisBookCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return oops.Code("CACHE_DELETE_FAILED").With("keys", keys).Wrap(err)
	}
	return nil
}

// NoopBookCache is used when REDIS_URL is empty.
type NoopBookCache struct{}

func (NoopBookCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (NoopBookCache) Set(context.Context, string, any) error         { return nil }
func (NoopBookCache) Delete(context.Context, ...string) error        { return nil }
