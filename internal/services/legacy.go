package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/catalog-backend/internal/data/repos"
	"github.com/yungbote/catalog-backend/internal/data/repos/sqlutil"
	types "github.com/yungbote/catalog-backend/internal/domain"
	"github.com/yungbote/catalog-backend/internal/observability"
	"github.com/yungbote/catalog-backend/internal/platform/apierr"
	"github.com/yungbote/catalog-backend/internal/platform/cache"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/gcp"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
	"github.com/yungbote/catalog-backend/internal/platform/natsort"
)

const (
	LegacyListingCacheKey = "legacy:listing"
	LegacyListingCacheTag = "images"

	DefaultListingTTL    = 60 * time.Second
	DefaultUnlinkedLimit = 50
	maxUnlinkedLimit     = 500
)

// LegacyListing serves the root-level file names of the legacy bucket,
// memoized in the cache store for ttl.
type LegacyListing struct {
	log    *logger.Logger
	bucket gcp.BucketService
	store  cache.Store
	ttl    time.Duration
}

func NewLegacyListing(log *logger.Logger, bucket gcp.BucketService, store cache.Store, ttl time.Duration) *LegacyListing {
	if ttl <= 0 {
		ttl = DefaultListingTTL
	}
	return &LegacyListing{
		log:    log.With("component", "LegacyListing"),
		bucket: bucket,
		store:  store,
		ttl:    ttl,
	}
}

// Files returns the naturally sorted listing. Without a configured bucket it
// logs and returns an empty listing.
func (l *LegacyListing) Files(ctx context.Context) ([]string, error) {
	if l == nil || l.bucket == nil {
		if l != nil {
			l.log.Warn("Legacy bucket not configured, returning empty listing")
		}
		return []string{}, nil
	}
	return cache.Remember(ctx, l.store, LegacyListingCacheKey, l.ttl, []string{LegacyListingCacheTag}, l.load)
}

func (l *LegacyListing) load(ctx context.Context) ([]string, error) {
	entries, err := l.bucket.ListObjects(ctx, gcp.BucketCategoryLegacy, "")
	if err != nil {
		return nil, fmt.Errorf("list legacy bucket: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	natsort.Strings(names)
	observability.Current().ObserveListingRefresh(len(names))
	l.log.Debug("Legacy listing refreshed", "count", len(names))
	return names, nil
}

// Invalidate drops the cached listing.
func (l *LegacyListing) Invalidate(ctx context.Context) {
	if l == nil || l.store == nil {
		return
	}
	if err := l.store.InvalidateTag(ctx, LegacyListingCacheTag); err != nil {
		l.log.Warn("Listing cache invalidation failed", "tag", LegacyListingCacheTag, "error", err)
	}
}

func (l *LegacyListing) PublicURL(fileName string) string {
	if l == nil || l.bucket == nil {
		return fileName
	}
	return l.bucket.GetPublicURL(gcp.BucketCategoryLegacy, fileName)
}

type LegacyFile struct {
	FileName string `json:"file_name"`
	URL      string `json:"url"`
}

type UnlinkedFilesPage struct {
	Files      []LegacyFile `json:"files"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
}

type LegacySyncResult struct {
	Scanned  int `json:"scanned"`
	Imported int `json:"imported"`
}

type LegacyService interface {
	GetUnlinkedFiles(dbc dbctx.Context, page, limit int) (*UnlinkedFilesPage, error)
	LinkFile(dbc dbctx.Context, productID uuid.UUID, fileName string) (*types.Asset, error)
	// SyncLegacyFiles imports every unlinked legacy file as an unassigned asset.
	SyncLegacyFiles(dbc dbctx.Context) (*LegacySyncResult, error)
}

type legacyService struct {
	log         *logger.Logger
	listing     *LegacyListing
	assetRepo   repos.AssetRepo
	productRepo repos.ProductRepo
	assets      AssetService
}

func NewLegacyService(log *logger.Logger, listing *LegacyListing, assetRepo repos.AssetRepo, productRepo repos.ProductRepo, assets AssetService) LegacyService {
	return &legacyService{
		log:         log.With("service", "LegacyService"),
		listing:     listing,
		assetRepo:   assetRepo,
		productRepo: productRepo,
		assets:      assets,
	}
}

// unlinked is listing minus every file name already referenced by an asset
// row, trashed rows included. Listing order is preserved.
func (s *legacyService) unlinked(dbc dbctx.Context) ([]string, error) {
	files, err := s.listing.Files(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	linked, err := s.assetRepo.LinkedFileNames(dbc)
	if err != nil {
		return nil, fmt.Errorf("load linked file names: %w", err)
	}
	seen := make(map[string]struct{}, len(linked))
	for _, n := range linked {
		seen[n] = struct{}{}
	}
	out := make([]string, 0, len(files))
	for _, f := range files {
		if _, ok := seen[f]; !ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *legacyService) GetUnlinkedFiles(dbc dbctx.Context, page, limit int) (*UnlinkedFilesPage, error) {
	p := sqlutil.Page{Number: page, Size: limit}.Normalize(DefaultUnlinkedLimit, maxUnlinkedLimit)
	names, err := s.unlinked(dbc)
	if err != nil {
		s.log.Error("Unlinked file lookup failed", "error", err)
		return nil, apierr.Internal("legacy_listing_failed", err)
	}
	out := &UnlinkedFilesPage{
		Files:      []LegacyFile{},
		Total:      len(names),
		Page:       p.Number,
		TotalPages: sqlutil.TotalPages(int64(len(names)), p.Size),
	}
	start := p.Offset()
	if start >= len(names) {
		return out, nil
	}
	end := start + p.Size
	if end > len(names) {
		end = len(names)
	}
	for _, n := range names[start:end] {
		out.Files = append(out.Files, LegacyFile{FileName: n, URL: s.listing.PublicURL(n)})
	}
	return out, nil
}

func (s *legacyService) LinkFile(dbc dbctx.Context, productID uuid.UUID, fileName string) (*types.Asset, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" || strings.HasSuffix(fileName, "/") {
		return nil, apierr.BadRequest("invalid_file_name", "file name is required")
	}
	if productID == uuid.Nil {
		return nil, apierr.BadRequest("invalid_product", "product id is required")
	}
	ok, err := s.productRepo.Exists(dbc, productID)
	if err != nil {
		return nil, apierr.Internal("link_failed", err)
	}
	if !ok {
		return nil, apierr.NotFound("product_not_found", "product not found")
	}
	return s.assets.CreateAssetRecord(dbc, s.legacyAssetInput(&productID, fileName))
}

func (s *legacyService) legacyAssetInput(productID *uuid.UUID, fileName string) CreateAssetInput {
	return CreateAssetInput{
		ProductID:   productID,
		FileName:    fileName,
		FileType:    types.FileTypeForName(fileName),
		FileURL:     s.listing.PublicURL(fileName),
		StoragePath: fileName,
	}
}

func (s *legacyService) SyncLegacyFiles(dbc dbctx.Context) (*LegacySyncResult, error) {
	files, err := s.listing.Files(dbc.Ctx)
	if err != nil {
		return nil, apierr.Internal("legacy_listing_failed", err)
	}
	names, err := s.unlinked(dbc)
	if err != nil {
		return nil, apierr.Internal("legacy_listing_failed", err)
	}
	res := &LegacySyncResult{Scanned: len(files)}
	for _, n := range names {
		if _, err := s.assets.CreateAssetRecord(dbc, s.legacyAssetInput(nil, n)); err != nil {
			s.log.Warn("Legacy import failed", "file_name", n, "error", err)
			continue
		}
		res.Imported++
	}
	s.log.Info("Legacy sync complete", "scanned", res.Scanned, "imported", res.Imported)
	return res, nil
}
