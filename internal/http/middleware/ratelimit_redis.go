package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"rpsls_wager/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter initializes a shared Redis client used by the middleware.
// If addr is empty or the ping fails, limiters count in process memory instead.
func InitRedisRateLimiter(addr, password string, db int) {
	if addr == "" {
		return
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, using in-process rate limits", "addr", addr, "error", err)
		_ = client.Close()
		return
	}
	redisClient = client
	logger.Info("redis rate limiter connected", "addr", addr)
}

// CloseRedis releases the shared client.
func CloseRedis() {
	if redisClient != nil {
		_ = redisClient.Close()
		redisClient = nil
	}
}

// RedisPing reports Redis health for readiness probes.
func RedisPing(ctx context.Context) error {
	if redisClient == nil {
		return errors.New("redis not configured")
	}
	return redisClient.Ping(ctx).Err()
}

// RedisEnabled reports whether limiters are backed by Redis.
func RedisEnabled() bool {
	return redisClient != nil
}

// hit increments key in Redis, or in fallback when Redis is not configured.
// key format: <prefix>:<window_seconds>:<identifier>
func hit(ctx context.Context, fallback *windowCounter, key string, window time.Duration) (int64, error) {
	if redisClient == nil {
		return fallback.incr(key), nil
	}
	val, err := redisClient.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if val == 1 {
		redisClient.Expire(ctx, key, window)
	}
	return val, nil
}

// RedisRateLimit implements a fixed-window per-IP limiter using Redis INCR/EXPIRE.
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	fallback := newWindowCounter(window)
	return func(c *gin.Context) {
		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()

		val, err := hit(c.Request.Context(), fallback, key, window)
		if err != nil {
			// fail-open on Redis errors
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
