package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/data/repos"
	"github.com/yungbote/catalog-backend/internal/data/repos/sqlutil"
	types "github.com/yungbote/catalog-backend/internal/domain"
	"github.com/yungbote/catalog-backend/internal/platform/apierr"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/gcp"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

const (
	DefaultAssetPageSize = 24
	maxAssetPageSize     = 200
)

type CreateAssetInput struct {
	ProductID   *uuid.UUID     `json:"product_id"`
	FileName    string         `json:"file_name" validate:"required"`
	FileType    types.FileType `json:"file_type" validate:"required,oneof=image document"`
	FileURL     string         `json:"file_url" validate:"required"`
	StoragePath string         `json:"storage_path" validate:"required"`
	IsPrimary   bool           `json:"is_primary"`
	Width       *int           `json:"width" validate:"omitempty,min=0"`
	Height      *int           `json:"height" validate:"omitempty,min=0"`
}

type AssetQuery struct {
	Search   string
	Page     int
	PageSize int
}

type AssetPage struct {
	Assets     []*types.Asset `json:"assets"`
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
}

type ProductAssets struct {
	Images    []*types.Asset `json:"images"`
	Documents []*types.Asset `json:"documents"`
}

// PurgeResult counts what a purge did: rows removed, ids ignored because
// they were unknown or not in the trash, and storage objects left behind
// in the orphan log.
type PurgeResult struct {
	Purged   int64 `json:"purged"`
	Skipped  int   `json:"skipped"`
	Orphaned int   `json:"orphaned"`
}

type AssetService interface {
	CreateAssetRecord(dbc dbctx.Context, in CreateAssetInput) (*types.Asset, error)
	UpdateNote(dbc dbctx.Context, assetID uuid.UUID, note string) (*types.Asset, error)
	GetNoteHistory(dbc dbctx.Context, assetID uuid.UUID) ([]*types.AssetNoteHistory, error)

	DeleteAsset(dbc dbctx.Context, assetID uuid.UUID) error
	BulkDeleteAssets(dbc dbctx.Context, assetIDs []uuid.UUID) (int64, error)
	GetDeletedAssets(dbc dbctx.Context) ([]*types.Asset, error)
	RestoreAssets(dbc dbctx.Context, assetIDs []uuid.UUID) (int64, error)
	// PurgeAssets is the only transition that removes storage objects, and
	// only for trashed assets under the managed prefix.
	PurgeAssets(dbc dbctx.Context, assetIDs []uuid.UUID) (*PurgeResult, error)

	AssignAsset(dbc dbctx.Context, assetID, productID uuid.UUID) error
	BulkAssignAssets(dbc dbctx.Context, assetIDs []uuid.UUID, productID uuid.UUID) (int64, error)

	ListAssets(dbc dbctx.Context, q AssetQuery) (*AssetPage, error)
	ListUnassignedAssets(dbc dbctx.Context, page, pageSize int) (*AssetPage, error)
	GetProductAssets(dbc dbctx.Context, productID uuid.UUID) (*ProductAssets, error)
	ListDocuments(dbc dbctx.Context, assetID uuid.UUID) ([]*types.AssetDocument, error)
}

type assetService struct {
	db          *gorm.DB
	log         *logger.Logger
	assetRepo   repos.AssetRepo
	historyRepo repos.NoteHistoryRepo
	docRepo     repos.AssetDocumentRepo
	productRepo repos.ProductRepo
	listing     *LegacyListing
	cleanup     *storageCleanup
}

func NewAssetService(
	db *gorm.DB,
	log *logger.Logger,
	assetRepo repos.AssetRepo,
	historyRepo repos.NoteHistoryRepo,
	docRepo repos.AssetDocumentRepo,
	productRepo repos.ProductRepo,
	orphanRepo repos.StorageOrphanRepo,
	bucket gcp.BucketService,
	listing *LegacyListing,
) AssetService {
	serviceLog := log.With("service", "AssetService")
	return &assetService{
		db:          db,
		log:         serviceLog,
		assetRepo:   assetRepo,
		historyRepo: historyRepo,
		docRepo:     docRepo,
		productRepo: productRepo,
		listing:     listing,
		cleanup:     newStorageCleanup(serviceLog, bucket, orphanRepo),
	}
}

func (s *assetService) CreateAssetRecord(dbc dbctx.Context, in CreateAssetInput) (*types.Asset, error) {
	in.FileName = strings.TrimSpace(in.FileName)
	in.StoragePath = strings.TrimLeft(strings.TrimSpace(in.StoragePath), "/")
	if in.FileType == "" {
		in.FileType = types.FileTypeForName(in.FileName)
	}
	if err := validateInput("invalid_asset", in); err != nil {
		return nil, err
	}
	row := &types.Asset{
		ProductID:   in.ProductID,
		FileName:    in.FileName,
		FileType:    in.FileType,
		FileURL:     in.FileURL,
		StoragePath: in.StoragePath,
		IsPrimary:   in.IsPrimary,
		Width:       in.Width,
		Height:      in.Height,
	}
	created, err := s.assetRepo.Create(dbc, []*types.Asset{row})
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apierr.BadRequest("invalid_product", "product does not exist")
		}
		s.log.Error("Asset create failed", "file_name", in.FileName, "error", err)
		return nil, apierr.Internal("asset_create_failed", err)
	}
	s.listing.Invalidate(dbc.Ctx)
	return created[0], nil
}

// UpdateNote writes the note and, when it is non-empty, appends it to the
// history in the same transaction so history order matches applied order.
func (s *assetService) UpdateNote(dbc dbctx.Context, assetID uuid.UUID, note string) (*types.Asset, error) {
	if assetID == uuid.Nil {
		return nil, apierr.BadRequest("invalid_asset_id", "asset id is required")
	}
	note = strings.TrimSpace(note)

	apply := func(inner dbctx.Context) (*types.Asset, error) {
		if err := s.assetRepo.UpdateFields(inner, assetID, map[string]interface{}{"notes": note}); err != nil {
			return nil, err
		}
		if note != "" {
			if _, err := s.historyRepo.Append(inner, &types.AssetNoteHistory{AssetID: assetID, Note: note}); err != nil {
				return nil, fmt.Errorf("append note history: %w", err)
			}
		}
		return s.assetRepo.GetByID(inner, assetID)
	}

	var updated *types.Asset
	var err error
	if dbc.Tx != nil {
		updated, err = apply(dbc)
	} else {
		err = s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
			out, txErr := apply(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
			updated = out
			return txErr
		})
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("asset_not_found", "asset not found")
		}
		s.log.Error("Note update failed", "asset_id", assetID, "error", err)
		return nil, apierr.Internal("note_update_failed", err)
	}
	return updated, nil
}

func (s *assetService) GetNoteHistory(dbc dbctx.Context, assetID uuid.UUID) ([]*types.AssetNoteHistory, error) {
	out, err := s.historyRepo.ListByAsset(dbc, assetID)
	if err != nil {
		return nil, apierr.Internal("note_history_failed", err)
	}
	return out, nil
}

func (s *assetService) DeleteAsset(dbc dbctx.Context, assetID uuid.UUID) error {
	n, err := s.BulkDeleteAssets(dbc, []uuid.UUID{assetID})
	if err != nil {
		return err
	}
	if n == 0 {
		return apierr.NotFound("asset_not_found", "asset not found")
	}
	return nil
}

func (s *assetService) BulkDeleteAssets(dbc dbctx.Context, assetIDs []uuid.UUID) (int64, error) {
	ids := uniqueIDs(assetIDs)
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := s.assetRepo.SoftDeleteByIDs(dbc, ids)
	if err != nil {
		s.log.Error("Soft delete failed", "count", len(ids), "error", err)
		return 0, apierr.Internal("asset_delete_failed", err)
	}
	return n, nil
}

func (s *assetService) GetDeletedAssets(dbc dbctx.Context) ([]*types.Asset, error) {
	out, err := s.assetRepo.ListTrashed(dbc)
	if err != nil {
		return nil, apierr.Internal("trash_list_failed", err)
	}
	return out, nil
}

func (s *assetService) RestoreAssets(dbc dbctx.Context, assetIDs []uuid.UUID) (int64, error) {
	ids := uniqueIDs(assetIDs)
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := s.assetRepo.RestoreByIDs(dbc, ids)
	if err != nil {
		s.log.Error("Restore failed", "count", len(ids), "error", err)
		return 0, apierr.Internal("asset_restore_failed", err)
	}
	return n, nil
}

func (s *assetService) PurgeAssets(dbc dbctx.Context, assetIDs []uuid.UUID) (*PurgeResult, error) {
	res := &PurgeResult{}
	ids := uniqueIDs(assetIDs)
	if len(ids) == 0 {
		return res, nil
	}
	rows, err := s.assetRepo.GetByIDsAnyState(dbc, ids)
	if err != nil {
		return nil, apierr.Internal("asset_purge_failed", err)
	}
	trashed := make([]uuid.UUID, 0, len(rows))
	var keys []string
	for _, a := range rows {
		if a.State() != types.AssetStateTrashed {
			continue
		}
		trashed = append(trashed, a.ID)
		if a.IsManaged() {
			keys = append(keys, a.StoragePath)
		}
	}
	res.Skipped = len(ids) - len(trashed)
	if len(trashed) == 0 {
		return res, nil
	}
	docKeys, err := s.docRepo.StoragePathsByAssets(dbc, trashed)
	if err != nil {
		return nil, apierr.Internal("asset_purge_failed", err)
	}
	keys = append(keys, docKeys...)

	res.Orphaned = s.cleanup.Remove(dbc, gcp.BucketCategoryProducts, keys)

	n, err := s.assetRepo.FullDeleteTrashedByIDs(dbc, trashed)
	if err != nil {
		s.log.Error("Purge row delete failed", "count", len(trashed), "error", err)
		return nil, apierr.Internal("asset_purge_failed", err)
	}
	res.Purged = n
	// A purged legacy link makes its file unlinked again.
	s.listing.Invalidate(dbc.Ctx)
	s.log.Info("Assets purged", "purged", res.Purged, "skipped", res.Skipped, "orphaned", res.Orphaned)
	return res, nil
}

func (s *assetService) AssignAsset(dbc dbctx.Context, assetID, productID uuid.UUID) error {
	n, err := s.BulkAssignAssets(dbc, []uuid.UUID{assetID}, productID)
	if err != nil {
		return err
	}
	if n == 0 {
		return apierr.NotFound("asset_not_found", "asset not found")
	}
	return nil
}

// BulkAssignAssets relies on the foreign key to reject unknown products.
func (s *assetService) BulkAssignAssets(dbc dbctx.Context, assetIDs []uuid.UUID, productID uuid.UUID) (int64, error) {
	ids := uniqueIDs(assetIDs)
	if len(ids) == 0 {
		return 0, nil
	}
	if productID == uuid.Nil {
		return 0, apierr.BadRequest("invalid_product", "product id is required")
	}
	n, err := s.assetRepo.AssignProduct(dbc, ids, productID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, apierr.BadRequest("invalid_product", "product does not exist")
		}
		s.log.Error("Bulk assign failed", "count", len(ids), "product_id", productID, "error", err)
		return 0, apierr.Internal("asset_assign_failed", err)
	}
	return n, nil
}

func (s *assetService) ListAssets(dbc dbctx.Context, q AssetQuery) (*AssetPage, error) {
	return s.page(dbc, repos.AssetFilter{Search: strings.TrimSpace(q.Search)}, q.Page, q.PageSize)
}

func (s *assetService) ListUnassignedAssets(dbc dbctx.Context, page, pageSize int) (*AssetPage, error) {
	return s.page(dbc, repos.AssetFilter{OnlyUnassigned: true}, page, pageSize)
}

// page runs the count and the fetch as two statements; under concurrent
// writes they may disagree by a few rows.
func (s *assetService) page(dbc dbctx.Context, f repos.AssetFilter, page, pageSize int) (*AssetPage, error) {
	p := sqlutil.Page{Number: page, Size: pageSize}.Normalize(DefaultAssetPageSize, maxAssetPageSize)
	total, err := s.assetRepo.Count(dbc, f)
	if err != nil {
		return nil, apierr.Internal("asset_list_failed", err)
	}
	rows, err := s.assetRepo.List(dbc, f, p)
	if err != nil {
		return nil, apierr.Internal("asset_list_failed", err)
	}
	return &AssetPage{
		Assets:     rows,
		TotalCount: total,
		Page:       p.Number,
		TotalPages: sqlutil.TotalPages(total, p.Size),
	}, nil
}

func (s *assetService) GetProductAssets(dbc dbctx.Context, productID uuid.UUID) (*ProductAssets, error) {
	ok, err := s.productRepo.Exists(dbc, productID)
	if err != nil {
		return nil, apierr.Internal("asset_list_failed", err)
	}
	if !ok {
		return nil, apierr.NotFound("product_not_found", "product not found")
	}
	rows, err := s.assetRepo.ListByProduct(dbc, productID)
	if err != nil {
		return nil, apierr.Internal("asset_list_failed", err)
	}
	out := &ProductAssets{Images: []*types.Asset{}, Documents: []*types.Asset{}}
	for _, a := range rows {
		if a.FileType == types.FileTypeDocument {
			out.Documents = append(out.Documents, a)
		} else {
			out.Images = append(out.Images, a)
		}
	}
	return out, nil
}

func (s *assetService) ListDocuments(dbc dbctx.Context, assetID uuid.UUID) ([]*types.AssetDocument, error) {
	out, err := s.docRepo.ListByAsset(dbc, assetID)
	if err != nil {
		return nil, apierr.Internal("document_list_failed", err)
	}
	return out, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
