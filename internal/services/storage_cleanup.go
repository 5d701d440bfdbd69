package services

import (
	"fmt"
	"time"

	"github.com/yungbote/catalog-backend/internal/data/repos"
	"github.com/yungbote/catalog-backend/internal/observability"
	"github.com/yungbote/catalog-backend/internal/platform/ctxutil"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/gcp"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

const (
	storageDeleteAttempts = 3
	storageDeleteBackoff  = 200 * time.Millisecond
)

// storageCleanup is the storage half of the row+object sagas. Each object
// gets a few idempotent delete attempts; what still fails is written to the
// orphan log for SweepOrphans instead of being dropped.
type storageCleanup struct {
	log      *logger.Logger
	bucket   gcp.BucketService
	orphans  repos.StorageOrphanRepo
	attempts int
	backoff  time.Duration
}

func newStorageCleanup(log *logger.Logger, bucket gcp.BucketService, orphans repos.StorageOrphanRepo) *storageCleanup {
	return &storageCleanup{
		log:      log,
		bucket:   bucket,
		orphans:  orphans,
		attempts: storageDeleteAttempts,
		backoff:  storageDeleteBackoff,
	}
}

// Remove deletes every key and returns how many were left as orphans.
// It never fails the caller.
func (c *storageCleanup) Remove(dbc dbctx.Context, category gcp.BucketCategory, keys []string) int {
	orphaned := 0
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := c.removeOne(dbc, category, key); err != nil {
			orphaned++
			c.recordOrphan(dbc, category, key, err)
			observability.Current().ObserveStorageDelete(string(category), "orphaned")
			continue
		}
		observability.Current().ObserveStorageDelete(string(category), "ok")
	}
	return orphaned
}

func (c *storageCleanup) removeOne(dbc dbctx.Context, category gcp.BucketCategory, key string) error {
	if c.bucket == nil {
		return fmt.Errorf("object storage not configured")
	}
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err := dbc.Ctx.Err(); err != nil {
			return err
		}
		lastErr = c.bucket.DeleteFile(dbc, category, key)
		if lastErr == nil {
			return nil
		}
		if attempt < c.attempts && c.backoff > 0 {
			select {
			case <-dbc.Ctx.Done():
				return dbc.Ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}
	}
	return lastErr
}

func (c *storageCleanup) recordOrphan(dbc dbctx.Context, category gcp.BucketCategory, key string, cause error) {
	fields := append([]interface{}{"bucket", category, "storage_path", key, "error", cause}, ctxutil.LogFields(dbc.Ctx)...)
	c.log.Warn("Storage delete failed, recording orphan", fields...)
	if c.orphans == nil {
		return
	}
	// The orphan row must survive a rollback of the caller's transaction.
	outer := dbctx.Context{Ctx: dbc.Ctx}
	if err := c.orphans.Record(outer, string(category), key, cause.Error()); err != nil {
		c.log.Error("Failed to record storage orphan", "bucket", category, "storage_path", key, "error", err)
	}
}
