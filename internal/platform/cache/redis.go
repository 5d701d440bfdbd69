package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type RedisStore struct {
	rdb    *goredis.Client
	prefix string
}

func NewRedisStore(rdb *goredis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (r *RedisStore) key(k string) string { return r.prefix + k }

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return raw, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, raw []byte, ttl time.Duration, tags ...string) error {
	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, r.key(key), raw, ttl)
	for _, tag := range tags {
		pipe.SAdd(ctx, r.key(tagKey(tag)), r.key(key))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (r *RedisStore) InvalidateTag(ctx context.Context, tag string) error {
	tk := r.key(tagKey(tag))
	members, err := r.rdb.SMembers(ctx, tk).Result()
	if err != nil {
		return fmt.Errorf("redis smembers %q: %w", tag, err)
	}
	keys := append(members, tk)
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del tag %q: %w", tag, err)
	}
	return nil
}
