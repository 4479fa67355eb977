package nickname

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the hash holding all nicknames.
const DefaultRedisKey = "suisplit:nicknames"

// RedisStore keeps nicknames in a single Redis hash.
type RedisStore struct {
	client *redis.Client
	key    string
}

var _ Store = (*RedisStore)(nil)

// NewRedisClient creates a Redis client and checks the connection.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("nickname: redis ping: %w", err)
	}

	return client, nil
}

// NewRedisStore wraps a Redis client. An empty key uses DefaultRedisKey.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, address string) (string, bool, error) {
	nickname, err := s.client.HGet(ctx, s.key, address).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get nickname: %w", err)
	}
	return nickname, true, nil
}

// All implements Store.
func (s *RedisStore) All(ctx context.Context) (map[string]string, error) {
	names, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list nicknames: %w", err)
	}
	return names, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, address, nickname string) error {
	if err := s.client.HSet(ctx, s.key, address, nickname).Err(); err != nil {
		return fmt.Errorf("failed to set nickname: %w", err)
	}
	return nil
}

// Remove implements Store.
func (s *RedisStore) Remove(ctx context.Context, address string) error {
	if err := s.client.HDel(ctx, s.key, address).Err(); err != nil {
		return fmt.Errorf("failed to remove nickname: %w", err)
	}
	return nil
}
