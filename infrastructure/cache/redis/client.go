// ABOUTME: Redis cache backend for sharing the feed cache and reading progress across instances
// ABOUTME: Namespaces keys with a configurable prefix and maps redis.Nil to a cache miss

package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"bookshelf-api/core/interfaces"
	"bookshelf-api/pkg/config"
)

const (
	dialTimeout = 5 * time.Second
	scanBatch   = 100
)

// RedisCache implements interfaces.Cache on a redis server
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to cfg.Address and fails fast when it does not answer PING
func NewRedisCache(cfg config.RedisConfig) (*RedisCache, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Address,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisCache{client: client, prefix: cfg.KeyPrefix}, nil
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

// Get returns interfaces.ErrCacheMiss for absent or expired keys
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, interfaces.ErrCacheMiss
	}
	return val, err
}

// Set stores value for ttl. A non-positive ttl never expires; go-redis would
// otherwise read -1 as "keep the existing TTL".
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

// Delete removes key. A missing key is not an error.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}

// Clear deletes every key under this cache's prefix. Without a prefix it
// refuses, since that would wipe the whole database.
func (c *RedisCache) Clear(ctx context.Context) error {
	if c.prefix == "" {
		return errors.New("refusing to clear redis cache without a key prefix")
	}

	iter := c.client.Scan(ctx, 0, c.prefix+"*", scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.client.Del(ctx, batch...).Err()
	}
	return nil
}

// Close closes the connection pool
func (c *RedisCache) Close() error {
	return c.client.Close()
}
