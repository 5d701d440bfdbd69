package services

import (
	"github.com/yungbote/catalog-backend/internal/data/repos"
	"github.com/yungbote/catalog-backend/internal/platform/apierr"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

type DashboardStats struct {
	Products         int64 `json:"products"`
	Categories       int64 `json:"categories"`
	Assets           int64 `json:"assets"`
	UnassignedAssets int64 `json:"unassigned_assets"`
	TrashedAssets    int64 `json:"trashed_assets"`
	StorageOrphans   int64 `json:"storage_orphans"`
}

type StatsService interface {
	GetStats(dbc dbctx.Context) (*DashboardStats, error)
}

type statsService struct {
	log          *logger.Logger
	productRepo  repos.ProductRepo
	categoryRepo repos.CategoryRepo
	assetRepo    repos.AssetRepo
	orphanRepo   repos.StorageOrphanRepo
}

func NewStatsService(log *logger.Logger, productRepo repos.ProductRepo, categoryRepo repos.CategoryRepo, assetRepo repos.AssetRepo, orphanRepo repos.StorageOrphanRepo) StatsService {
	return &statsService{
		log:          log.With("service", "StatsService"),
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		assetRepo:    assetRepo,
		orphanRepo:   orphanRepo,
	}
}

func (s *statsService) GetStats(dbc dbctx.Context) (*DashboardStats, error) {
	out := &DashboardStats{}
	var err error
	if out.Products, err = s.productRepo.Count(dbc, repos.ProductFilter{}); err != nil {
		return nil, apierr.Internal("stats_failed", err)
	}
	if out.Categories, err = s.categoryRepo.Count(dbc); err != nil {
		return nil, apierr.Internal("stats_failed", err)
	}
	if out.Assets, err = s.assetRepo.Count(dbc, repos.AssetFilter{}); err != nil {
		return nil, apierr.Internal("stats_failed", err)
	}
	if out.UnassignedAssets, err = s.assetRepo.Count(dbc, repos.AssetFilter{OnlyUnassigned: true}); err != nil {
		return nil, apierr.Internal("stats_failed", err)
	}
	if out.TrashedAssets, err = s.assetRepo.CountTrashed(dbc); err != nil {
		return nil, apierr.Internal("stats_failed", err)
	}
	if out.StorageOrphans, err = s.orphanRepo.CountUnresolved(dbc); err != nil {
		return nil, apierr.Internal("stats_failed", err)
	}
	return out, nil
}
