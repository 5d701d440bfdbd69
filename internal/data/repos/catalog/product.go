package catalog

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/data/repos/sqlutil"
	types "github.com/yungbote/catalog-backend/internal/domain"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

type ProductFilter struct {
	Search     string
	CategoryID *uuid.UUID
}

type ProductRepo interface {
	Create(dbc dbctx.Context, row *types.Product) (*types.Product, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Product, error)
	GetBySKUs(dbc dbctx.Context, skus []string) ([]*types.Product, error)
	Exists(dbc dbctx.Context, id uuid.UUID) (bool, error)

	List(dbc dbctx.Context, f ProductFilter, page sqlutil.Page) ([]*types.ProductListRow, error)
	Count(dbc dbctx.Context, f ProductFilter) (int64, error)
	ListByCategory(dbc dbctx.Context, categoryID uuid.UUID) ([]*types.Product, error)
	ListFolders(dbc dbctx.Context) ([]*types.Folder, error)

	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	// Delete hard-deletes the product; asset rows go with it via the FK cascade.
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return &productRepo{db: db, log: baseLog.With("repo", "ProductRepo")}
}

func (r *productRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *productRepo) Create(dbc dbctx.Context, row *types.Product) (*types.Product, error) {
	if row == nil {
		return nil, nil
	}
	if err := r.tx(dbc).Omit("Category").Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *productRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Product, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Product
	if err := r.tx(dbc).Preload("Category").Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *productRepo) GetBySKUs(dbc dbctx.Context, skus []string) ([]*types.Product, error) {
	var out []*types.Product
	if len(skus) == 0 {
		return out, nil
	}
	if err := r.tx(dbc).Where("sku IN ?", skus).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) Exists(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	var n int64
	if err := r.tx(dbc).Model(&types.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *productRepo) filtered(dbc dbctx.Context, f ProductFilter) *gorm.DB {
	q := r.tx(dbc).Table("products")
	if f.Search != "" {
		q = q.Where(sqlutil.ILike("products.name"), sqlutil.ContainsPattern(f.Search))
	}
	if f.CategoryID != nil {
		q = q.Where("products.category_id = ?", *f.CategoryID)
	}
	return q
}

func (r *productRepo) List(dbc dbctx.Context, f ProductFilter, page sqlutil.Page) ([]*types.ProductListRow, error) {
	var out []*types.ProductListRow
	q := r.filtered(dbc, f).
		Select("products.id, products.name, products.sku, products.status, products.category_id, categories.name AS category_name, products.updated_at").
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Order("products.updated_at DESC, products.id ASC")
	if err := page.Apply(q).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) Count(dbc dbctx.Context, f ProductFilter) (int64, error) {
	var n int64
	if err := r.filtered(dbc, f).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *productRepo) ListByCategory(dbc dbctx.Context, categoryID uuid.UUID) ([]*types.Product, error) {
	var out []*types.Product
	if categoryID == uuid.Nil {
		return out, nil
	}
	if err := r.tx(dbc).
		Where("category_id = ?", categoryID).
		Order("updated_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) ListFolders(dbc dbctx.Context) ([]*types.Folder, error) {
	var out []*types.Folder
	if err := r.tx(dbc).
		Model(&types.Product{}).
		Select("id, name").
		Order("updated_at DESC").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	res := r.tx(dbc).Model(&types.Product{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	res := r.tx(dbc).Where("id = ?", id).Delete(&types.Product{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
