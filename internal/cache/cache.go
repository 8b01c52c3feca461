package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"confpilot/internal/logging"
)

// Store is the key-value contract consumed by the research layer. A JSON read
// whose stored payload fails to deserialize is reported as a miss, not an
// error; every other failure propagates.
type Store interface {
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, target any) (bool, error)
	SetString(ctx context.Context, key, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
}

// RedisStore implements Store on a shared go-redis client. The client owns
// connection pooling, so constructing one RedisStore at the composition root
// and injecting it everywhere gives every caller the same connections.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore builds a Store from a Redis URL (redis://host:port[/db]).
func NewRedisStore(url string, logger *slog.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisStoreFromClient(redis.NewClient(opts), logger), nil
}

// NewRedisStoreFromClient wraps an existing client, which the caller owns.
func NewRedisStoreFromClient(client *redis.Client, logger *slog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: logging.NewComponentLogger(logger, "cache"),
	}
}

// Ping verifies the backing connection is usable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client's connections.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// SetJSON marshals value and stores it under key. A non-positive ttl stores
// the key without expiry.
func (s *RedisStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.set(ctx, key, string(payload), ttl)
}

// GetJSON reads key and unmarshals it into target. Returns false when the key
// is absent or the stored payload is not valid JSON for target; the latter is
// logged and treated as a miss so stale garbage never poisons callers.
func (s *RedisStore) GetJSON(ctx context.Context, key string, target any) (bool, error) {
	payload, found, err := s.GetString(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal([]byte(payload), target); err != nil {
		s.logger.Warn("discarding unparseable cache entry",
			logging.String("key", key),
			logging.Error(err))
		return false, nil
	}
	return true, nil
}

// SetString stores a raw string value under key.
func (s *RedisStore) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.set(ctx, key, value, ttl)
}

// GetString reads a raw string value. The second return reports presence.
func (s *RedisStore) GetString(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return value, true, nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}
