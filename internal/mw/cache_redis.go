package mw

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"farmflow-backend/internal/log"
)

// RedisCache shares cached responses between replicas. Entries live under
// prefix+"entry:"; the generation counter lives at prefix+"generation".
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (r *RedisCache) entryKey(key string) string {
	return r.prefix + "entry:" + key
}

func (r *RedisCache) generationKey() string {
	return r.prefix + "generation"
}

func (r *RedisCache) Get(ctx context.Context, key string) (CachedResponse, bool) {
	data, err := r.client.Get(ctx, r.entryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return CachedResponse{}, false
	}
	if err != nil {
		log.Warn("redis cache get failed", "key", key, "error", err)
		return CachedResponse{}, false
	}
	var resp CachedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return CachedResponse{}, false
	}
	return resp, true
}

func (r *RedisCache) Set(ctx context.Context, key string, resp CachedResponse, ttl time.Duration) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, r.entryKey(key), data, ttl).Err(); err != nil {
		log.Warn("redis cache set failed", "key", key, "error", err)
	}
}

// Generation reads the shared counter; a missing counter is generation 0.
func (r *RedisCache) Generation(ctx context.Context) (uint64, error) {
	gen, err := r.client.Get(ctx, r.generationKey()).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Flush bumps the generation, then deletes the entries it made unreachable.
func (r *RedisCache) Flush(ctx context.Context) error {
	if err := r.client.Incr(ctx, r.generationKey()).Err(); err != nil {
		return err
	}

	iter := r.client.Scan(ctx, 0, r.entryKey("*"), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}
