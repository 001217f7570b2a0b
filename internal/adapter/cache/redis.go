package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MikeRez0/ypshop/internal/adapter/config"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "shop:idempotency:"

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(ctx context.Context, conf *config.Cache) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: conf.Address})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, keyPrefix+key, value, ttl).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
