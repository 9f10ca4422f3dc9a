package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dacsan-be/internal/checkout"

	"github.com/redis/go-redis/v9"
)

var ErrSnapshotMiss = errors.New("session snapshot not found")

// Store keeps session state across restarts.
type Store interface {
	Load(ctx context.Context, id string) (checkout.Saved, error)
	Save(ctx context.Context, id string, saved checkout.Saved) error
	Delete(ctx context.Context, id string) error
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Load(ctx context.Context, id string) (checkout.Saved, error) {
	data, err := r.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return checkout.Saved{}, ErrSnapshotMiss
	}
	if err != nil {
		return checkout.Saved{}, fmt.Errorf("redis get failed: %w", err)
	}

	var saved checkout.Saved
	if err := json.Unmarshal(data, &saved); err != nil {
		return checkout.Saved{}, fmt.Errorf("unmarshal session failed: %w", err)
	}
	return saved, nil
}

func (r *RedisStore) Save(ctx context.Context, id string, saved checkout.Saved) error {
	data, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}
	if err := r.client.Set(ctx, key(id), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func key(id string) string {
	return fmt.Sprintf("session:%s", id)
}
