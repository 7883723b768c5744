package backup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisSyncState keeps the time of the last successful remote sync.
type RedisSyncState struct {
	redisClient *redis.Client
}

func NewRedisSyncState(redisClient *redis.Client) *RedisSyncState {
	return &RedisSyncState{
		redisClient: redisClient,
	}
}

// LastSync returns nil when no sync has happened yet.
func (s *RedisSyncState) LastSync(ctx context.Context) (*time.Time, error) {
	val, err := s.redisClient.Get(ctx, LastSyncKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get last sync: %w", err)
	}

	at, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return nil, fmt.Errorf("parse last sync [%s]: %w", val, err)
	}
	return &at, nil
}

func (s *RedisSyncState) SetLastSync(ctx context.Context, at time.Time) error {
	val := at.UTC().Format(time.RFC3339Nano)
	if err := s.redisClient.Set(ctx, LastSyncKey, val, 0).Err(); err != nil {
		return fmt.Errorf("set last sync: %w", err)
	}
	return nil
}
