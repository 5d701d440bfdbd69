package services

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/catalog-backend/internal/data/repos"
	"github.com/yungbote/catalog-backend/internal/platform/apierr"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/gcp"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

const (
	DefaultSweepLimit = 100
	sweepConcurrency  = 4
)

type SweepResult struct {
	Checked  int `json:"checked"`
	Resolved int `json:"resolved"`
	Failed   int `json:"failed"`
}

// OrphanSweepService retries storage deletes that failed during purge or
// product delete.
type OrphanSweepService interface {
	SweepOrphans(dbc dbctx.Context, limit int) (*SweepResult, error)
}

type orphanSweepService struct {
	log        *logger.Logger
	bucket     gcp.BucketService
	orphanRepo repos.StorageOrphanRepo
}

func NewOrphanSweepService(log *logger.Logger, bucket gcp.BucketService, orphanRepo repos.StorageOrphanRepo) OrphanSweepService {
	return &orphanSweepService{
		log:        log.With("service", "OrphanSweepService"),
		bucket:     bucket,
		orphanRepo: orphanRepo,
	}
}

func (s *orphanSweepService) SweepOrphans(dbc dbctx.Context, limit int) (*SweepResult, error) {
	if limit <= 0 {
		limit = DefaultSweepLimit
	}
	if s.bucket == nil {
		s.log.Warn("Object storage not configured, skipping orphan sweep")
		return &SweepResult{}, nil
	}
	rows, err := s.orphanRepo.ListUnresolved(dbc, limit)
	if err != nil {
		return nil, apierr.Internal("orphan_sweep_failed", err)
	}
	res := &SweepResult{Checked: len(rows)}
	if len(rows) == 0 {
		return res, nil
	}

	var (
		mu       sync.Mutex
		resolved []uuid.UUID
		failed   = map[uuid.UUID]error{}
	)
	g, gctx := errgroup.WithContext(dbc.Ctx)
	g.SetLimit(sweepConcurrency)
	for _, o := range rows {
		o := o
		g.Go(func() error {
			err := s.bucket.DeleteFile(dbctx.Context{Ctx: gctx}, gcp.BucketCategory(o.Bucket), o.StoragePath)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[o.ID] = err
				return nil
			}
			resolved = append(resolved, o.ID)
			return nil
		})
	}
	_ = g.Wait()

	if err := s.orphanRepo.MarkResolved(dbc, resolved); err != nil {
		return nil, apierr.Internal("orphan_sweep_failed", err)
	}
	for id, cause := range failed {
		if err := s.orphanRepo.IncrementAttempts(dbc, id, cause.Error()); err != nil {
			s.log.Warn("Orphan attempt update failed", "orphan_id", id, "error", err)
		}
	}
	res.Resolved = len(resolved)
	res.Failed = len(failed)
	s.log.Info("Orphan sweep complete", "checked", res.Checked, "resolved", res.Resolved, "failed", res.Failed)
	return res, nil
}
