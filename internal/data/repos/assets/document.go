package assets

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/catalog-backend/internal/domain"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

type AssetDocumentRepo interface {
	Create(dbc dbctx.Context, row *types.AssetDocument) (*types.AssetDocument, error)
	ListByAsset(dbc dbctx.Context, assetID uuid.UUID) ([]*types.AssetDocument, error)
	StoragePathsByAssets(dbc dbctx.Context, assetIDs []uuid.UUID) ([]string, error)
	StoragePathsByProduct(dbc dbctx.Context, productID uuid.UUID) ([]string, error)
}

type assetDocumentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssetDocumentRepo(db *gorm.DB, baseLog *logger.Logger) AssetDocumentRepo {
	return &assetDocumentRepo{db: db, log: baseLog.With("repo", "AssetDocumentRepo")}
}

func (r *assetDocumentRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *assetDocumentRepo) Create(dbc dbctx.Context, row *types.AssetDocument) (*types.AssetDocument, error) {
	if err := r.tx(dbc).Omit("Asset").Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *assetDocumentRepo) ListByAsset(dbc dbctx.Context, assetID uuid.UUID) ([]*types.AssetDocument, error) {
	var out []*types.AssetDocument
	if assetID == uuid.Nil {
		return out, nil
	}
	if err := r.tx(dbc).Where("asset_id = ?", assetID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetDocumentRepo) StoragePathsByAssets(dbc dbctx.Context, assetIDs []uuid.UUID) ([]string, error) {
	var out []string
	if len(assetIDs) == 0 {
		return out, nil
	}
	if err := r.tx(dbc).
		Model(&types.AssetDocument{}).
		Where("asset_id IN ? AND storage_path <> ''", assetIDs).
		Pluck("storage_path", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetDocumentRepo) StoragePathsByProduct(dbc dbctx.Context, productID uuid.UUID) ([]string, error) {
	var out []string
	if productID == uuid.Nil {
		return out, nil
	}
	if err := r.tx(dbc).
		Model(&types.AssetDocument{}).
		Joins("JOIN assets ON assets.id = asset_documents.asset_id").
		Where("assets.product_id = ? AND asset_documents.storage_path <> ''", productID).
		Pluck("asset_documents.storage_path", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
