package ops

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sungwon/ion-notify/internal/config"
)

// KeyStore is the subset of Redis the session and cache chores use.
type KeyStore interface {
	Keys(ctx context.Context, pattern string) ([]string, error)
	Delete(ctx context.Context, keys ...string) (int64, error)
	FlushDB(ctx context.Context) error
	Close() error
}

// OpenStore opens a KeyStore on one Redis logical database.
type OpenStore func(db int) KeyStore

// RedisStore is a KeyStore backed by go-redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to logical database db of the configured server.
func NewRedisStore(cfg config.OpsConfig, db int) *RedisStore {
	return &RedisStore{client: redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       db,
	})}
}

// RedisOpener returns an OpenStore for the configured server.
func RedisOpener(cfg config.OpsConfig) OpenStore {
	return func(db int) KeyStore { return NewRedisStore(cfg, db) }
}

// Keys returns every key matching pattern using SCAN.
func (s *RedisStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", pattern, err)
	}
	return keys, nil
}

// Delete removes keys and returns how many existed.
func (s *RedisStore) Delete(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := s.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("del: %w", err)
	}
	return n, nil
}

// FlushDB removes every key in the selected database.
func (s *RedisStore) FlushDB(ctx context.Context) error {
	if err := s.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("flushdb: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
