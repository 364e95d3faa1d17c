package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/wastefinder/internal/datastore"
)

// RedisKV is a Redis implementation of datastore.Backend.
type RedisKV struct {
	client *redis.Client
	prefix string
}

// NewRedisKV creates a new Redis-backed key-value backend.
func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{
		client: client,
		prefix: "wf:kv:",
	}
}

func (r *RedisKV) Load(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, datastore.ErrNoValue
		}

		return nil, err
	}

	return raw, nil
}

func (r *RedisKV) Save(ctx context.Context, key string, raw []byte) error {
	return r.client.Set(ctx, r.prefix+key, raw, 0).Err()
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Shutdown is a no-op for RedisKV (client managed externally).
func (r *RedisKV) Shutdown() error {
	return nil
}

// Compile-time check.
var _ datastore.Backend = (*RedisKV)(nil)
