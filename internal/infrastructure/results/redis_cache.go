// Package results provides the processed-results replay cache.
package results

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/delang-zeta/ai-gateway/internal/config"
	"github.com/delang-zeta/ai-gateway/internal/domain/models"
	"github.com/delang-zeta/ai-gateway/pkg/constants"
	"github.com/delang-zeta/ai-gateway/pkg/logger"
)

// RedisCache implements service.ResultsCache on Redis. Cache failures
// degrade to misses; the cache is an optimization, never a dependency.
type RedisCache struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedisCache connects to Redis using the given configuration.
func NewRedisCache(cfg config.RedisConfig, log logger.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisCacheWithClient(client, log)
}

// NewRedisCacheWithClient wraps an existing client. Tests pass a client
// pointed at miniredis.
func NewRedisCacheWithClient(client *redis.Client, log logger.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		logger: log.WithComponent("results_cache"),
	}
}

// Get returns the cached result for a submission, or a miss.
func (c *RedisCache) Get(ctx context.Context, submissionID string) (*models.CachedResult, bool) {
	raw, err := c.client.Get(ctx, cacheKey(submissionID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn(ctx, "results cache read failed, treating as miss",
			logger.Error(err),
			logger.String("submission_id", submissionID))
		return nil, false
	}

	var result models.CachedResult
	if err := json.Unmarshal(raw, &result); err != nil {
		c.logger.Warn(ctx, "results cache entry corrupt, treating as miss",
			logger.Error(err),
			logger.String("submission_id", submissionID))
		return nil, false
	}
	return &result, true
}

// Set stores the processed result for replay within the retention window.
func (c *RedisCache) Set(ctx context.Context, submissionID string, result *models.CachedResult) {
	raw, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn(ctx, "results cache marshal failed",
			logger.Error(err),
			logger.String("submission_id", submissionID))
		return
	}
	if err := c.client.Set(ctx, cacheKey(submissionID), raw, constants.ResultsCacheTTL).Err(); err != nil {
		c.logger.Warn(ctx, "results cache write failed",
			logger.Error(err),
			logger.String("submission_id", submissionID))
	}
}

// Delete removes a cached result, forcing the next request to reprocess.
func (c *RedisCache) Delete(ctx context.Context, submissionID string) {
	if err := c.client.Del(ctx, cacheKey(submissionID)).Err(); err != nil {
		c.logger.Warn(ctx, "results cache delete failed",
			logger.Error(err),
			logger.String("submission_id", submissionID))
	}
}

// Ping reports whether the cache backend is reachable.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func cacheKey(submissionID string) string {
	return fmt.Sprintf("ai-results:%s", submissionID)
}
