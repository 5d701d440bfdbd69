package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/catalog-backend/internal/domain"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/gcp"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

const DefaultLegacyUploadConcurrency = 10

type LegacyUploadResult struct {
	Uploaded int
	Failed   int
	Skipped  int
}

// UploadLegacyDirectory copies the image files found directly in dir to the
// root of the legacy bucket, overwriting existing objects of the same name.
// Individual failures are counted, not fatal. The listing is invalidated
// when anything was written.
func UploadLegacyDirectory(ctx context.Context, log *logger.Logger, bucket gcp.BucketService, listing *LegacyListing, dir string, concurrency int) (*LegacyUploadResult, error) {
	if bucket == nil {
		return nil, fmt.Errorf("object storage is not configured")
	}
	if concurrency <= 0 {
		concurrency = DefaultLegacyUploadConcurrency
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	res := &LegacyUploadResult{}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !types.IsGalleryImageKey(e.Name()) {
			res.Skipped++
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var uploaded, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, name := range names {
		name := name
		g.Go(func() error {
			if err := uploadLegacyFile(gctx, bucket, filepath.Join(dir, name), name); err != nil {
				failed.Add(1)
				log.Warn("Legacy upload failed", "file", name, "error", err)
				return nil
			}
			uploaded.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	res.Uploaded = int(uploaded.Load())
	res.Failed = int(failed.Load())
	if res.Uploaded > 0 {
		listing.Invalidate(ctx)
	}
	log.Info("Legacy upload complete", "uploaded", res.Uploaded, "failed", res.Failed, "skipped", res.Skipped)
	return res, nil
}

func uploadLegacyFile(ctx context.Context, bucket gcp.BucketService, fullPath, key string) error {
	f, err := os.Open(fullPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return bucket.UploadFile(dbctx.Context{Ctx: ctx}, gcp.BucketCategoryLegacy, key, f, gcp.UploadOptions{
		ContentType:  gcp.ContentTypeForKey(key),
		CacheControl: uploadCacheControl,
	})
}
