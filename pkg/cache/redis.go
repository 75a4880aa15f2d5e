package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/uraniaedu/urania-api/pkg/config"
)

// NewRedis returns a configured Redis client.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// Store is a thin JSON get/set wrapper over a Redis client. A nil Store is a
// no-op, so callers never have to branch on whether caching is enabled.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore wraps a Redis client with a default TTL.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if client == nil {
		return nil
	}
	return &Store{client: client, ttl: ttl}
}

// GetJSON loads key into dest. Returns false on miss or decode failure.
func (s *Store) GetJSON(ctx context.Context, key string, dest any) bool {
	if s == nil {
		return false
	}
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// SetJSON stores value under key with the default TTL. Failures are ignored;
// the cache is an optimisation, never a source of truth.
func (s *Store) SetJSON(ctx context.Context, key string, value any) {
	if s == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = s.client.Set(ctx, key, raw, s.ttl).Err()
}

// Delete removes keys.
func (s *Store) Delete(ctx context.Context, keys ...string) {
	if s == nil || len(keys) == 0 {
		return
	}
	_ = s.client.Del(ctx, keys...).Err()
}
