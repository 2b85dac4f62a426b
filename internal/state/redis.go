package state

import (
	"context"
	"errors"

	redisClient "github.com/go-redis/redis/v8"
)

// editionsKey is the redis hash of chat id to edition tag.
const editionsKey = "hymnarium-chat-editions"

// RedisBackend stores preferences in a single redis hash.
type RedisBackend struct {
	client *redisClient.Client
}

func NewRedisBackend(client *redisClient.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (r *RedisBackend) LoadEditions(ctx context.Context) (map[string]string, error) {
	raw, err := r.client.HGetAll(ctx, editionsKey).Result()
	if errors.Is(err, redisClient.Nil) {
		return map[string]string{}, nil
	}
	return raw, err
}

func (r *RedisBackend) SaveEdition(ctx context.Context, chatID string, edition string) error {
	return r.client.HSet(ctx, editionsKey, chatID, edition).Err()
}
