package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	timeFormat    = time.RFC3339Nano
	sessionKeyTpl = "session:%s" // session:${id}
)

// RedisStore keeps sessions in hashes that expire with the session, so
// several server processes can share logins.
type RedisStore struct {
	redis *redis.Client
}

func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{redis: client}, nil
}

func (rs *RedisStore) Get(ctx context.Context, id string) (*Data, error) {
	key := fmt.Sprintf(sessionKeyTpl, id)

	values, err := rs.redis.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}
	if len(values) == 0 {
		return nil, ErrNoSession
	}

	teacher, _ := strconv.ParseBool(values["teacher"])
	createdAt, _ := time.Parse(timeFormat, values["created_at"])
	expiresAt, err := time.Parse(timeFormat, values["expires_at"])
	if err != nil || !time.Now().Before(expiresAt) {
		return nil, ErrNoSession
	}

	return &Data{
		Teacher:   teacher,
		Flash:     values["flash"],
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}, nil
}

func (rs *RedisStore) Save(ctx context.Context, id string, data *Data) error {
	key := fmt.Sprintf(sessionKeyTpl, id)

	pipe := rs.redis.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"teacher":    strconv.FormatBool(data.Teacher),
		"flash":      data.Flash,
		"created_at": data.CreatedAt.UTC().Format(timeFormat),
		"expires_at": data.ExpiresAt.UTC().Format(timeFormat),
	})
	pipe.ExpireAt(ctx, key, data.ExpiresAt)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (rs *RedisStore) Delete(ctx context.Context, id string) error {
	if err := rs.redis.Del(ctx, fmt.Sprintf(sessionKeyTpl, id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (rs *RedisStore) Close() error {
	if rs.redis != nil {
		return rs.redis.Close()
	}
	return nil
}
