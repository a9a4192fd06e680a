package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quotewizard/models"

	"github.com/go-redis/redis/v8"
)

const (
	resultKeyPrefix = "quote:submission:"
	lockKeyPrefix   = "quote:submission:lock:"
)

// RedisResultCache keeps settled submissions in Redis for ttl.
type RedisResultCache struct {
	client  *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

func NewRedisResultCache(client *redis.Client, ttl, lockTTL time.Duration) *RedisResultCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if lockTTL <= 0 {
		lockTTL = time.Minute
	}
	return &RedisResultCache{client: client, ttl: ttl, lockTTL: lockTTL}
}

func (c *RedisResultCache) Get(ctx context.Context, idempotencyKey string) (*models.SubmissionResult, error) {
	data, err := c.client.Get(ctx, resultKeyPrefix+idempotencyKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read submission %s: %w", idempotencyKey, err)
	}
	var result models.SubmissionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse submission %s: %w", idempotencyKey, err)
	}
	return &result, nil
}

func (c *RedisResultCache) Put(ctx context.Context, idempotencyKey string, result models.SubmissionResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %w", err)
	}
	if err := c.client.Set(ctx, resultKeyPrefix+idempotencyKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store submission %s: %w", idempotencyKey, err)
	}
	return nil
}

func (c *RedisResultCache) Acquire(ctx context.Context, idempotencyKey string) (bool, error) {
	ok, err := c.client.SetNX(ctx, lockKeyPrefix+idempotencyKey, time.Now().Unix(), c.lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to lock submission %s: %w", idempotencyKey, err)
	}
	return ok, nil
}

func (c *RedisResultCache) Release(ctx context.Context, idempotencyKey string) error {
	return c.client.Del(ctx, lockKeyPrefix+idempotencyKey).Err()
}
