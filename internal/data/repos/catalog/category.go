package catalog

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/catalog-backend/internal/domain"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

type CategoryRepo interface {
	Create(dbc dbctx.Context, rows []*types.Category) ([]*types.Category, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Category, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Category, error)
	GetBySlugs(dbc dbctx.Context, slugs []string) ([]*types.Category, error)
	First(dbc dbctx.Context) (*types.Category, error)

	// ListAll returns every category ordered by sort_order, then name.
	ListAll(dbc dbctx.Context) ([]*types.Category, error)
	ListOptions(dbc dbctx.Context) ([]*types.CategoryOption, error)
	Count(dbc dbctx.Context) (int64, error)

	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type categoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return &categoryRepo{db: db, log: baseLog.With("repo", "CategoryRepo")}
}

func (r *categoryRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *categoryRepo) Create(dbc dbctx.Context, rows []*types.Category) ([]*types.Category, error) {
	if len(rows) == 0 {
		return []*types.Category{}, nil
	}
	if err := r.tx(dbc).Omit("Parent").Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *categoryRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Category, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.first(r.tx(dbc).Where("id = ?", id))
}

func (r *categoryRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Category, error) {
	if slug == "" {
		return nil, nil
	}
	return r.first(r.tx(dbc).Where("slug = ?", slug))
}

func (r *categoryRepo) GetBySlugs(dbc dbctx.Context, slugs []string) ([]*types.Category, error) {
	var out []*types.Category
	if len(slugs) == 0 {
		return out, nil
	}
	if err := r.tx(dbc).Where("slug IN ?", slugs).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryRepo) First(dbc dbctx.Context) (*types.Category, error) {
	return r.first(r.tx(dbc).Order("sort_order ASC, name ASC"))
}

func (r *categoryRepo) first(q *gorm.DB) (*types.Category, error) {
	var row types.Category
	if err := q.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *categoryRepo) ListAll(dbc dbctx.Context) ([]*types.Category, error) {
	var out []*types.Category
	if err := r.tx(dbc).Order("sort_order ASC, name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryRepo) ListOptions(dbc dbctx.Context) ([]*types.CategoryOption, error) {
	var out []*types.CategoryOption
	if err := r.tx(dbc).
		Model(&types.Category{}).
		Select("id, name, parent_id").
		Order("name ASC").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := r.tx(dbc).Model(&types.Category{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *categoryRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	res := r.tx(dbc).Model(&types.Category{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
