package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Missray24/missray-cab-app-sub000/internal/log"
)

// RedisLimiter implements a Redis-based rate limiter using a sliding window.
// It guards the public quote endpoint against scripted crawling.
type RedisLimiter struct {
	client      *redis.Client
	windowSize  time.Duration
	maxRequests int
	keyPrefix   string
}

// NewRedisLimiter creates a new Redis-based rate limiter
func NewRedisLimiter(client *redis.Client, windowSize time.Duration, maxRequests int) *RedisLimiter {
	return &RedisLimiter{
		client:      client,
		windowSize:  windowSize,
		maxRequests: maxRequests,
		keyPrefix:   "rate_limit",
	}
}

// Allow checks if a request is allowed for the given key (typically a client
// IP or user ID). Fails open on Redis errors so a cache outage never blocks
// quoting.
func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("%s:%s", rl.keyPrefix, key)
	now := time.Now()
	windowStart := now.Add(-rl.windowSize)

	pipe := rl.client.Pipeline()

	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	pipe.Expire(ctx, redisKey, rl.windowSize)

	if _, err := pipe.Exec(ctx); err != nil {
		log.L(ctx).Error("Redis rate limiter error", zap.Error(err))
		return true, err
	}

	count, err := countCmd.Result()
	if err != nil {
		return true, err
	}

	return count < int64(rl.maxRequests), nil
}

// Reset clears the rate limit for a key
func (rl *RedisLimiter) Reset(ctx context.Context, key string) error {
	redisKey := fmt.Sprintf("%s:%s", rl.keyPrefix, key)
	return rl.client.Del(ctx, redisKey).Err()
}
