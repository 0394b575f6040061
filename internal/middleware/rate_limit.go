package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pageza/foodgram/backend/internal/metrics"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Config() RateLimitConfig
}

// RedisLimiter is a fixed-window limiter shared by every server instance.
type RedisLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
}

func NewRedisLimiter(redisClient *redis.Client, config RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{redis: redisClient, config: config}
}

func (rl *RedisLimiter) Config() RateLimitConfig { return rl.config }

// Allow counts the request in the current window.
func (rl *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	windowStart := time.Now().Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= rl.config.Limit,
		Remaining: remaining,
		Reset:     windowStart.Add(rl.config.Window),
	}, nil
}

// MemoryLimiter keeps a token bucket per key in process memory. Buckets
// idle for a full window have refilled and are swept on the next window.
type MemoryLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*memoryBucket
	config    RateLimitConfig
	lastSweep time.Time
	now       func() time.Time
}

type memoryBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewMemoryLimiter(config RateLimitConfig) *MemoryLimiter {
	return &MemoryLimiter{
		limiters:  make(map[string]*memoryBucket),
		config:    config,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (ml *MemoryLimiter) Config() RateLimitConfig { return ml.config }

func (ml *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := ml.now()

	ml.mu.Lock()
	if now.Sub(ml.lastSweep) >= ml.config.Window {
		ml.sweep(now)
	}
	bucket, ok := ml.limiters[key]
	if !ok {
		every := ml.config.Window / time.Duration(ml.config.Limit)
		bucket = &memoryBucket{limiter: rate.NewLimiter(rate.Every(every), ml.config.Limit)}
		ml.limiters[key] = bucket
	}
	bucket.lastSeen = now
	limiter := bucket.limiter
	ml.mu.Unlock()

	allowed := limiter.AllowN(now, 1)
	remaining := int(limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}

	reset := now
	if missing := ml.config.Limit - remaining; missing > 0 {
		reset = now.Add(time.Duration(float64(time.Second) * float64(missing) / float64(limiter.Limit())))
	}
	return Decision{Allowed: allowed, Remaining: remaining, Reset: reset}, nil
}

// sweep drops buckets unused for a whole window. Caller holds mu.
func (ml *MemoryLimiter) sweep(now time.Time) {
	for key, bucket := range ml.limiters {
		if now.Sub(bucket.lastSeen) >= ml.config.Window {
			delete(ml.limiters, key)
		}
	}
	ml.lastSweep = now
}

// Len reports how many keys currently hold a bucket.
func (ml *MemoryLimiter) Len() int {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	return len(ml.limiters)
}

// NewLimiter picks the Redis limiter when a client is available.
func NewLimiter(redisClient *redis.Client, config RateLimitConfig) Limiter {
	if redisClient != nil {
		return NewRedisLimiter(redisClient, config)
	}
	return NewMemoryLimiter(config)
}

// RateLimit returns a Gin middleware that enforces limiter per user, or per
// client IP for anonymous requests.
func RateLimit(limiter Limiter, log *zap.Logger) gin.HandlerFunc {
	cfg := limiter.Config()
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if id, ok := UserID(c); ok {
			key = "user:" + id.String()
		}

		decision, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			// Fail open when the limiter backend is down.
			log.Warn("rate limit check failed", zap.Error(err))
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.Reset.Unix(), 10))

		if !decision.Allowed {
			metrics.RateLimitHits.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"message":     fmt.Sprintf("You have exceeded the rate limit of %d requests per %v", cfg.Limit, cfg.Window),
				"retry_after": int(time.Until(decision.Reset).Seconds()),
			})
			return
		}

		c.Next()
	}
}
