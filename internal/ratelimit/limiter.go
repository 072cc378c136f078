package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter bounds attempts per key (a client address) within a window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Close() error
}

// MemoryLimiter is a rolling-window limiter kept in process memory.
type MemoryLimiter struct {
	mu       sync.Mutex
	max      int
	window   time.Duration
	attempts map[string][]time.Time
	swept    time.Time
	now      func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		max:      max,
		window:   window,
		attempts: make(map[string][]time.Time),
		now:      time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	if now.Sub(l.swept) >= l.window {
		l.sweep(cutoff)
		l.swept = now
	}

	recent := l.attempts[key][:0]
	for _, at := range l.attempts[key] {
		if at.After(cutoff) {
			recent = append(recent, at)
		}
	}

	if len(recent) >= l.max {
		l.attempts[key] = recent
		return false, nil
	}

	l.attempts[key] = append(recent, now)
	return true, nil
}

// sweep drops clients with no attempt after cutoff; callers hold mu.
func (l *MemoryLimiter) sweep(cutoff time.Time) {
	for key, attempts := range l.attempts {
		if len(attempts) == 0 || !attempts[len(attempts)-1].After(cutoff) {
			delete(l.attempts, key)
		}
	}
}

func (l *MemoryLimiter) Close() error {
	return nil
}

const limitKeyTpl = "ratelimit:%s:%s" // ratelimit:${scope}:${key}

// RedisLimiter is a fixed-window counter shared between processes.
type RedisLimiter struct {
	redis  *redis.Client
	scope  string
	max    int
	window time.Duration
}

func NewRedisLimiter(ctx context.Context, redisURL, scope string, max int, window time.Duration) (*RedisLimiter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisLimiter{redis: client, scope: scope, max: max, window: window}, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := fmt.Sprintf(limitKeyTpl, l.scope, key)

	pipe := l.redis.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to count attempt: %w", err)
	}

	return incr.Val() <= int64(l.max), nil
}

func (l *RedisLimiter) Close() error {
	if l.redis != nil {
		return l.redis.Close()
	}
	return nil
}
