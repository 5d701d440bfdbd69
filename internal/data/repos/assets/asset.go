package assets

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/data/repos/sqlutil"
	types "github.com/yungbote/catalog-backend/internal/domain"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

type AssetFilter struct {
	Search         string
	ProductID      *uuid.UUID
	OnlyUnassigned bool
}

type AssetRepo interface {
	Create(dbc dbctx.Context, rows []*types.Asset) ([]*types.Asset, error)

	// GetByID returns active assets only.
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Asset, error)
	// GetByIDsAnyState includes trashed rows.
	GetByIDsAnyState(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Asset, error)

	List(dbc dbctx.Context, f AssetFilter, page sqlutil.Page) ([]*types.Asset, error)
	Count(dbc dbctx.Context, f AssetFilter) (int64, error)
	ListByProduct(dbc dbctx.Context, productID uuid.UUID) ([]*types.Asset, error)
	ListTrashed(dbc dbctx.Context) ([]*types.Asset, error)
	CountTrashed(dbc dbctx.Context) (int64, error)
	// StoragePathsByProduct includes trashed rows.
	StoragePathsByProduct(dbc dbctx.Context, productID uuid.UUID) ([]string, error)
	// LinkedFileNames returns the distinct file names of every row, trashed included.
	LinkedFileNames(dbc dbctx.Context) ([]string, error)

	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	AssignProduct(dbc dbctx.Context, ids []uuid.UUID, productID uuid.UUID) (int64, error)

	SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error)
	RestoreByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error)
	// FullDeleteTrashedByIDs removes rows that are currently trashed; active ids are ignored.
	FullDeleteTrashedByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error)
}

type assetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssetRepo(db *gorm.DB, baseLog *logger.Logger) AssetRepo {
	return &assetRepo{db: db, log: baseLog.With("repo", "AssetRepo")}
}

func (r *assetRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *assetRepo) Create(dbc dbctx.Context, rows []*types.Asset) ([]*types.Asset, error) {
	if len(rows) == 0 {
		return []*types.Asset{}, nil
	}
	if err := r.tx(dbc).Omit("Product").Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assetRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Asset, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Asset
	if err := r.tx(dbc).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *assetRepo) GetByIDsAnyState(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Asset, error) {
	var out []*types.Asset
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.tx(dbc).Unscoped().Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetRepo) filtered(dbc dbctx.Context, f AssetFilter) *gorm.DB {
	q := r.tx(dbc).Model(&types.Asset{})
	if f.Search != "" {
		q = q.Where(sqlutil.ILike("assets.file_name"), sqlutil.ContainsPattern(f.Search))
	}
	if f.OnlyUnassigned {
		q = q.Where("assets.product_id IS NULL")
	} else if f.ProductID != nil {
		q = q.Where("assets.product_id = ?", *f.ProductID)
	}
	return q
}

func (r *assetRepo) List(dbc dbctx.Context, f AssetFilter, page sqlutil.Page) ([]*types.Asset, error) {
	var out []*types.Asset
	q := r.filtered(dbc, f).Preload("Product").Order("assets.created_at DESC, assets.id ASC")
	if err := page.Apply(q).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetRepo) Count(dbc dbctx.Context, f AssetFilter) (int64, error) {
	var n int64
	if err := r.filtered(dbc, f).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *assetRepo) ListByProduct(dbc dbctx.Context, productID uuid.UUID) ([]*types.Asset, error) {
	var out []*types.Asset
	if productID == uuid.Nil {
		return out, nil
	}
	if err := r.tx(dbc).
		Where("product_id = ?", productID).
		Order("created_at DESC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetRepo) ListTrashed(dbc dbctx.Context) ([]*types.Asset, error) {
	var out []*types.Asset
	if err := r.tx(dbc).
		Unscoped().
		Preload("Product").
		Where("deleted_at IS NOT NULL").
		Order("deleted_at DESC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetRepo) StoragePathsByProduct(dbc dbctx.Context, productID uuid.UUID) ([]string, error) {
	var out []string
	if productID == uuid.Nil {
		return out, nil
	}
	if err := r.tx(dbc).
		Unscoped().
		Model(&types.Asset{}).
		Where("product_id = ?", productID).
		Pluck("storage_path", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetRepo) LinkedFileNames(dbc dbctx.Context) ([]string, error) {
	var out []string
	if err := r.tx(dbc).
		Unscoped().
		Model(&types.Asset{}).
		Distinct("file_name").
		Pluck("file_name", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetRepo) CountTrashed(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := r.tx(dbc).
		Unscoped().
		Model(&types.Asset{}).
		Where("deleted_at IS NOT NULL").
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *assetRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	res := r.tx(dbc).Model(&types.Asset{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *assetRepo) AssignProduct(dbc dbctx.Context, ids []uuid.UUID, productID uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.tx(dbc).Model(&types.Asset{}).Where("id IN ?", ids).Update("product_id", productID)
	return res.RowsAffected, res.Error
}

func (r *assetRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.tx(dbc).Where("id IN ?", ids).Delete(&types.Asset{})
	return res.RowsAffected, res.Error
}

func (r *assetRepo) RestoreByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.tx(dbc).
		Unscoped().
		Model(&types.Asset{}).
		Where("id IN ? AND deleted_at IS NOT NULL", ids).
		Updates(map[string]interface{}{"deleted_at": nil, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

func (r *assetRepo) FullDeleteTrashedByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.tx(dbc).
		Unscoped().
		Where("id IN ? AND deleted_at IS NOT NULL", ids).
		Delete(&types.Asset{})
	return res.RowsAffected, res.Error
}
