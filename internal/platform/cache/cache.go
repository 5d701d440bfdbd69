package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Store is a key/value cache with per-entry TTL and tag-based invalidation.
// Values are JSON encoded so both backends behave the same.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, raw []byte, ttl time.Duration, tags ...string) error
	InvalidateTag(ctx context.Context, tag string) error
}

// Remember returns the cached value under key, or calls load and caches its
// result. Cache read/write failures degrade to calling load directly.
func Remember[T any](ctx context.Context, store Store, key string, ttl time.Duration, tags []string, load func(context.Context) (T, error)) (T, error) {
	var out T
	if store != nil {
		raw, ok, err := store.Get(ctx, key)
		if err == nil && ok {
			if jerr := json.Unmarshal(raw, &out); jerr == nil {
				return out, nil
			}
		}
	}
	out, err := load(ctx)
	if err != nil {
		return out, err
	}
	if store != nil {
		if raw, jerr := json.Marshal(out); jerr == nil {
			_ = store.Set(ctx, key, raw, ttl, tags...)
		}
	}
	return out, nil
}

func tagKey(tag string) string { return fmt.Sprintf("cache:tag:%s", tag) }
