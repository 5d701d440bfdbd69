package services

import (
	"errors"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/data/repos"
	types "github.com/yungbote/catalog-backend/internal/domain"
	"github.com/yungbote/catalog-backend/internal/domain/catalog"
	"github.com/yungbote/catalog-backend/internal/platform/apierr"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

type CategoryInput struct {
	Name        string     `json:"name" validate:"required,min=2,max=120"`
	Slug        string     `json:"slug" validate:"omitempty,max=140"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Description string     `json:"description"`
	SortOrder   int        `json:"sort_order"`
}

// CategoryUpdate applies only the fields that are set. ClearParent moves
// the category to the root.
type CategoryUpdate struct {
	Name        *string    `json:"name" validate:"omitempty,min=2,max=120"`
	Description *string    `json:"description"`
	SortOrder   *int       `json:"sort_order"`
	ParentID    *uuid.UUID `json:"parent_id"`
	ClearParent bool       `json:"clear_parent"`
}

type CategoryService interface {
	GetCategoryTree(dbc dbctx.Context) ([]*types.CategoryNode, error)
	ListCategoryOptions(dbc dbctx.Context) ([]*types.CategoryOption, error)
	GetCategoryBySlug(dbc dbctx.Context, slug string) (*types.Category, error)
	CreateCategory(dbc dbctx.Context, in CategoryInput) (*types.Category, error)
	UpdateCategory(dbc dbctx.Context, id uuid.UUID, in CategoryUpdate) (*types.Category, error)
	ListProductsByCategory(dbc dbctx.Context, categoryID uuid.UUID) ([]*types.Product, error)
}

type categoryService struct {
	log          *logger.Logger
	categoryRepo repos.CategoryRepo
	productRepo  repos.ProductRepo
}

func NewCategoryService(log *logger.Logger, categoryRepo repos.CategoryRepo, productRepo repos.ProductRepo) CategoryService {
	return &categoryService{
		log:          log.With("service", "CategoryService"),
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

func (s *categoryService) GetCategoryTree(dbc dbctx.Context) ([]*types.CategoryNode, error) {
	cats, err := s.categoryRepo.ListAll(dbc)
	if err != nil {
		s.log.Error("Category list failed", "error", err)
		return nil, apierr.Internal("category_list_failed", err)
	}
	catalog.SortCategories(cats)
	tree := catalog.BuildCategoryTree(cats)
	if len(tree.Cycles) > 0 {
		s.log.Warn("Category parent cycle detected, promoted to root", "category_ids", tree.Cycles)
	}
	return tree.Roots, nil
}

func (s *categoryService) ListCategoryOptions(dbc dbctx.Context) ([]*types.CategoryOption, error) {
	out, err := s.categoryRepo.ListOptions(dbc)
	if err != nil {
		return nil, apierr.Internal("category_list_failed", err)
	}
	return out, nil
}

func (s *categoryService) GetCategoryBySlug(dbc dbctx.Context, slug string) (*types.Category, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, apierr.BadRequest("invalid_slug", "slug is required")
	}
	c, err := s.categoryRepo.GetBySlug(dbc, slug)
	if err != nil {
		return nil, apierr.Internal("category_lookup_failed", err)
	}
	if c == nil {
		return nil, apierr.NotFound("category_not_found", "category not found")
	}
	return c, nil
}

func (s *categoryService) CreateCategory(dbc dbctx.Context, in CategoryInput) (*types.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput("invalid_category", in); err != nil {
		return nil, err
	}
	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(in.Name)
	}
	if slug == "" {
		return nil, apierr.BadRequest("invalid_category", "slug could not be derived from name")
	}
	if in.ParentID != nil {
		parent, err := s.categoryRepo.GetByID(dbc, *in.ParentID)
		if err != nil {
			return nil, apierr.Internal("category_create_failed", err)
		}
		if parent == nil {
			return nil, apierr.BadRequest("invalid_parent", "parent category does not exist")
		}
	}
	row := &types.Category{
		Name:        in.Name,
		Slug:        slug,
		ParentID:    in.ParentID,
		Description: strings.TrimSpace(in.Description),
		SortOrder:   in.SortOrder,
	}
	if _, err := s.categoryRepo.Create(dbc, []*types.Category{row}); err != nil {
		if isUniqueViolation(err) {
			return nil, apierr.Conflict("slug_exists", "A category with this slug already exists.")
		}
		s.log.Error("Category create failed", "slug", slug, "error", err)
		return nil, apierr.Internal("category_create_failed", err)
	}
	return row, nil
}

func (s *categoryService) UpdateCategory(dbc dbctx.Context, id uuid.UUID, in CategoryUpdate) (*types.Category, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apierr.BadRequest("invalid_category", "name is required")
		}
		in.Name = &name
	}
	if err := validateInput("invalid_category", in); err != nil {
		return nil, err
	}
	current, err := s.categoryRepo.GetByID(dbc, id)
	if err != nil {
		return nil, apierr.Internal("category_update_failed", err)
	}
	if current == nil {
		return nil, apierr.NotFound("category_not_found", "category not found")
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.SortOrder != nil {
		updates["sort_order"] = *in.SortOrder
	}
	switch {
	case in.ClearParent:
		updates["parent_id"] = nil
	case in.ParentID != nil:
		if err := s.checkParent(dbc, id, *in.ParentID); err != nil {
			return nil, err
		}
		updates["parent_id"] = *in.ParentID
	}
	if len(updates) == 0 {
		return current, nil
	}
	if err := s.categoryRepo.UpdateFields(dbc, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("category_not_found", "category not found")
		}
		return nil, apierr.Internal("category_update_failed", err)
	}
	return s.categoryRepo.GetByID(dbc, id)
}

// checkParent rejects a parent that is the category itself or one of its
// descendants. Existing cycles in stored data stop the walk.
func (s *categoryService) checkParent(dbc dbctx.Context, id, parentID uuid.UUID) error {
	if parentID == id {
		return apierr.BadRequest("invalid_parent", "a category cannot be its own parent")
	}
	cats, err := s.categoryRepo.ListAll(dbc)
	if err != nil {
		return apierr.Internal("category_update_failed", err)
	}
	parentOf := make(map[uuid.UUID]*uuid.UUID, len(cats))
	for _, c := range cats {
		parentOf[c.ID] = c.ParentID
	}
	if _, ok := parentOf[parentID]; !ok {
		return apierr.BadRequest("invalid_parent", "parent category does not exist")
	}
	seen := map[uuid.UUID]bool{}
	for cur := &parentID; cur != nil && !seen[*cur]; cur = parentOf[*cur] {
		if *cur == id {
			return apierr.BadRequest("invalid_parent", "parent would create a cycle")
		}
		seen[*cur] = true
	}
	return nil
}

func (s *categoryService) ListProductsByCategory(dbc dbctx.Context, categoryID uuid.UUID) ([]*types.Product, error) {
	out, err := s.productRepo.ListByCategory(dbc, categoryID)
	if err != nil {
		return nil, apierr.Internal("product_list_failed", err)
	}
	return out, nil
}

// Slugify lowercases s and joins its letter/digit runs with '-'. Turkish
// letters are folded to ASCII.
func Slugify(s string) string {
	s = turkishFold.Replace(strings.TrimSpace(s))
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

var turkishFold = strings.NewReplacer(
	"ç", "c", "Ç", "c",
	"ğ", "g", "Ğ", "g",
	"ı", "i", "İ", "i",
	"ö", "o", "Ö", "o",
	"ş", "s", "Ş", "s",
	"ü", "u", "Ü", "u",
)
