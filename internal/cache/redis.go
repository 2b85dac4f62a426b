package cache

import (
	"context"
	"errors"
	"fmt"

	redisClient "github.com/go-redis/redis/v8"

	"github.com/sukalov/hymnarium/internal/config"
)

// RedisStore keeps entries in redis.
type RedisStore struct {
	client *redisClient.Client
}

// NewRedisClient connects to the TLS redis endpoint from the configuration.
func NewRedisClient(cfg config.Redis) (*redisClient.Client, error) {
	opt, err := redisClient.ParseURL(fmt.Sprintf("rediss://default:%s@%s", cfg.Password, cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redisClient.NewClient(opt), nil
}

func NewRedisStore(client *redisClient.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redisClient.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores without a redis TTL; expiry is decided from the entry timestamp.
func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisStore) DeletePrefix(ctx context.Context, prefix string) error {
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return r.client.Del(ctx, batch...).Err()
	}
	return nil
}
