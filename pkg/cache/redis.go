package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"supplier-portal/pkg/config"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

var (
	// ErrDisabled is returned by every operation on a disabled cache
	ErrDisabled = errors.New("cache is disabled")
	// ErrMiss is returned when the key is not cached
	ErrMiss = errors.New("key not found in cache")
)

// RedisCache provides caching using Redis
type RedisCache struct {
	client  *redis.Client
	enabled bool
}

// NewRedisCache creates a new Redis cache. A disabled config yields a cache
// whose operations all return ErrDisabled.
func NewRedisCache(cfg config.RedisConfig) (*RedisCache, error) {
	if !cfg.Enabled {
		return &RedisCache{enabled: false}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "failed to connect to Redis")
	}

	return &RedisCache{
		client:  client,
		enabled: true,
	}, nil
}

// Enabled reports whether the cache talks to a Redis server
func (c *RedisCache) Enabled() bool {
	return c != nil && c.enabled
}

// Get retrieves a value from cache
func (c *RedisCache) Get(ctx context.Context, key string, value interface{}) error {
	if !c.Enabled() {
		return ErrDisabled
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ErrMiss
		}
		return errors.Wrap(err, "failed to get value from Redis")
	}

	if err := json.Unmarshal(data, value); err != nil {
		return errors.Wrap(err, "failed to unmarshal cached value")
	}
	return nil
}

// Set stores a value in cache with optional expiration
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if !c.Enabled() {
		return ErrDisabled
	}

	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "failed to marshal value for caching")
	}

	if err := c.client.Set(ctx, key, data, expiration).Err(); err != nil {
		return errors.Wrap(err, "failed to set value in Redis")
	}
	return nil
}

// Delete removes a key from cache
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return ErrDisabled
	}
	return errors.Wrap(c.client.Del(ctx, key).Err(), "failed to delete value from Redis")
}

// GetReputationCacheKey generates a cache key for an external reputation report
func GetReputationCacheKey(query string) string {
	return fmt.Sprintf("reputation:%s", strings.ToLower(strings.Join(strings.Fields(query), " ")))
}

// GetAnalysisCacheKey generates a cache key for a supplier risk analysis
func GetAnalysisCacheKey(supplierID string) string {
	return fmt.Sprintf("analysis:%s", supplierID)
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	if !c.Enabled() || c.client == nil {
		return nil
	}
	return c.client.Close()
}
