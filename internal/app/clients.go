package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/catalog-backend/internal/platform/cache"
	"github.com/yungbote/catalog-backend/internal/platform/gcp"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

type Clients struct {
	// Bucket is nil when object storage could not be reached at boot.
	Bucket gcp.BucketService
	// Redis is nil unless REDIS_ADDR is set and reachable.
	Redis *goredis.Client
	Cache cache.Store
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Gcs
	var bucket gcp.BucketService
	b, err := resolveBucketService(log, cfg)
	if err != nil {
		var bootErr *StorageProviderBootstrapError
		if !errors.As(err, &bootErr) || !bootErr.Degradable() {
			return Clients{}, fmt.Errorf("init object storage: %w", err)
		}
		log.Warn("Object storage unavailable, continuing without it", "error", err)
	} else {
		bucket = b
	}

	// Redis
	var rdb *goredis.Client
	var store cache.Store = cache.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		client, err := newRedisClient(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, using in-process listing cache", "addr", cfg.Redis.Addr, "error", err)
		} else {
			rdb = client
			store = cache.NewRedisStore(client, cfg.Redis.Prefix)
			log.Info("Listing cache backed by redis", "addr", cfg.Redis.Addr)
		}
	}

	return Clients{
		Bucket: bucket,
		Redis:  rdb,
		Cache:  store,
	}, nil
}

func newRedisClient(cfg RedisConfig) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
