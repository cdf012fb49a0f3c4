package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brdgenius-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

type RedisSnapshotStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSnapshotStore(rdb *redis.Client, ttl time.Duration) contract.SnapshotStore {
	return &RedisSnapshotStore{rdb: rdb, ttl: ttl}
}

func (s *RedisSnapshotStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, true, nil
}

func (s *RedisSnapshotStore) Put(ctx context.Context, key string, data []byte) error {
	if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisSnapshotStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
