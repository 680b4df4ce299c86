// Package cache implements the analysis result cache on Redis.
package cache

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/redis/go-redis/v9"

	"analyzer_server/core/domain"
	"analyzer_server/core/port/out"
)

// RedisAnalysisCache implements out.AnalysisCache
type RedisAnalysisCache struct {
	client *redis.Client
}

var _ out.AnalysisCache = (*RedisAnalysisCache)(nil)

// NewRedisAnalysisCache creates a new RedisAnalysisCache
func NewRedisAnalysisCache(client *redis.Client) *RedisAnalysisCache {
	return &RedisAnalysisCache{client: client}
}

// GetResult looks up a cached analysis result. A miss is (nil, false, nil).
func (c *RedisAnalysisCache) GetResult(ctx context.Context, key string) (*domain.AnalysisResult, bool, error) {
	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, false, err
	}

	return &result, true, nil
}

// SetResult stores an analysis result with a TTL.
func (c *RedisAnalysisCache) SetResult(ctx context.Context, key string, result *domain.AnalysisResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}
