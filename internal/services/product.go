package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
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
	DefaultProductPageSize = 10
	maxProductPageSize     = 100

	DefaultFolderCategoryName = "Genel"
	DefaultFolderCategorySlug = "genel"

	skuExistsMessage = "A product with this SKU already exists."
)

type SpecificationInput struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value" validate:"required"`
}

type ProductInput struct {
	Name           string               `json:"name" validate:"required,min=2,max=200"`
	SKU            string               `json:"sku" validate:"required,min=2,max=64"`
	CategoryID     *uuid.UUID           `json:"category_id" validate:"required"`
	Description    string               `json:"description"`
	Dimensions     string               `json:"dimensions"`
	Specifications []SpecificationInput `json:"specifications" validate:"dive"`
	Status         types.ProductStatus  `json:"status" validate:"omitempty,oneof=draft published archived"`
}

type ProductQuery struct {
	Search     string
	CategoryID *uuid.UUID
	Page       int
	PageSize   int
}

type ProductPage struct {
	Products   []*types.ProductListRow `json:"products"`
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	TotalPages int                     `json:"total_pages"`
}

type ProductDeleteResult struct {
	RemovedObjects int `json:"removed_objects"`
	Orphaned       int `json:"orphaned"`
}

type ProductService interface {
	CreateProduct(dbc dbctx.Context, in ProductInput) (*types.Product, error)
	UpdateProduct(dbc dbctx.Context, id uuid.UUID, in ProductInput) (*types.Product, error)
	GetProduct(dbc dbctx.Context, id uuid.UUID) (*types.Product, error)
	ListProducts(dbc dbctx.Context, q ProductQuery) (*ProductPage, error)
	// DeleteProduct removes the managed objects of every asset the product
	// owns, trashed ones included, then the product row. Assets, note
	// history and documents follow through the foreign key cascade.
	DeleteProduct(dbc dbctx.Context, id uuid.UUID) (*ProductDeleteResult, error)

	ListFolders(dbc dbctx.Context) ([]*types.Folder, error)
	CreateFolder(dbc dbctx.Context, name string) (*types.Product, error)
}

type productService struct {
	log          *logger.Logger
	productRepo  repos.ProductRepo
	categoryRepo repos.CategoryRepo
	assetRepo    repos.AssetRepo
	docRepo      repos.AssetDocumentRepo
	listing      *LegacyListing
	cleanup      *storageCleanup
	now          func() time.Time
}

func NewProductService(
	log *logger.Logger,
	productRepo repos.ProductRepo,
	categoryRepo repos.CategoryRepo,
	assetRepo repos.AssetRepo,
	docRepo repos.AssetDocumentRepo,
	orphanRepo repos.StorageOrphanRepo,
	bucket gcp.BucketService,
	listing *LegacyListing,
) ProductService {
	serviceLog := log.With("service", "ProductService")
	return &productService{
		log:          serviceLog,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		assetRepo:    assetRepo,
		docRepo:      docRepo,
		listing:      listing,
		cleanup:      newStorageCleanup(serviceLog, bucket, orphanRepo),
		now:          time.Now,
	}
}

func normalizeProductInput(in ProductInput) ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.SKU = strings.TrimSpace(in.SKU)
	in.Description = strings.TrimSpace(in.Description)
	in.Dimensions = strings.TrimSpace(in.Dimensions)
	in.Status = types.ProductStatus(strings.ToLower(strings.TrimSpace(string(in.Status))))
	if in.Status == "" {
		in.Status = types.ProductStatusDraft
	}
	for i := range in.Specifications {
		in.Specifications[i].Key = strings.TrimSpace(in.Specifications[i].Key)
		in.Specifications[i].Value = strings.TrimSpace(in.Specifications[i].Value)
	}
	return in
}

func specifications(in []SpecificationInput) datatypes.JSONSlice[types.Specification] {
	out := make(datatypes.JSONSlice[types.Specification], 0, len(in))
	for _, sp := range in {
		out = append(out, types.Specification{Key: sp.Key, Value: sp.Value})
	}
	return out
}

func (s *productService) checkCategory(dbc dbctx.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	c, err := s.categoryRepo.GetByID(dbc, *id)
	if err != nil {
		return apierr.Internal("category_lookup_failed", err)
	}
	if c == nil {
		return apierr.BadRequest("invalid_category", "category does not exist")
	}
	return nil
}

func (s *productService) CreateProduct(dbc dbctx.Context, in ProductInput) (*types.Product, error) {
	in = normalizeProductInput(in)
	if err := validateInput("invalid_product", in); err != nil {
		return nil, err
	}
	if err := s.checkCategory(dbc, in.CategoryID); err != nil {
		return nil, err
	}
	row := &types.Product{
		CategoryID:     in.CategoryID,
		Name:           in.Name,
		SKU:            in.SKU,
		Description:    in.Description,
		Dimensions:     in.Dimensions,
		Specifications: specifications(in.Specifications),
		Status:         in.Status,
	}
	if _, err := s.productRepo.Create(dbc, row); err != nil {
		if isUniqueViolation(err) {
			return nil, apierr.Conflict("sku_exists", skuExistsMessage)
		}
		s.log.Error("Product create failed", "sku", in.SKU, "error", err)
		return nil, apierr.Internal("product_create_failed", err)
	}
	return row, nil
}

func (s *productService) UpdateProduct(dbc dbctx.Context, id uuid.UUID, in ProductInput) (*types.Product, error) {
	in = normalizeProductInput(in)
	if err := validateInput("invalid_product", in); err != nil {
		return nil, err
	}
	if err := s.checkCategory(dbc, in.CategoryID); err != nil {
		return nil, err
	}
	err := s.productRepo.UpdateFields(dbc, id, map[string]interface{}{
		"category_id":    in.CategoryID,
		"name":           in.Name,
		"sku":            in.SKU,
		"description":    in.Description,
		"dimensions":     in.Dimensions,
		"specifications": specifications(in.Specifications),
		"status":         in.Status,
	})
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apierr.NotFound("product_not_found", "product not found")
	case isUniqueViolation(err):
		return nil, apierr.Conflict("sku_exists", skuExistsMessage)
	default:
		s.log.Error("Product update failed", "product_id", id, "error", err)
		return nil, apierr.Internal("product_update_failed", err)
	}
	return s.GetProduct(dbc, id)
}

func (s *productService) GetProduct(dbc dbctx.Context, id uuid.UUID) (*types.Product, error) {
	p, err := s.productRepo.GetByID(dbc, id)
	if err != nil {
		return nil, apierr.Internal("product_lookup_failed", err)
	}
	if p == nil {
		return nil, apierr.NotFound("product_not_found", "product not found")
	}
	return p, nil
}

func (s *productService) ListProducts(dbc dbctx.Context, q ProductQuery) (*ProductPage, error) {
	p := sqlutil.Page{Number: q.Page, Size: q.PageSize}.Normalize(DefaultProductPageSize, maxProductPageSize)
	f := repos.ProductFilter{Search: strings.TrimSpace(q.Search), CategoryID: q.CategoryID}
	total, err := s.productRepo.Count(dbc, f)
	if err != nil {
		return nil, apierr.Internal("product_list_failed", err)
	}
	rows, err := s.productRepo.List(dbc, f, p)
	if err != nil {
		return nil, apierr.Internal("product_list_failed", err)
	}
	return &ProductPage{
		Products:   rows,
		TotalCount: total,
		Page:       p.Number,
		TotalPages: sqlutil.TotalPages(total, p.Size),
	}, nil
}

func (s *productService) DeleteProduct(dbc dbctx.Context, id uuid.UUID) (*ProductDeleteResult, error) {
	ok, err := s.productRepo.Exists(dbc, id)
	if err != nil {
		return nil, apierr.Internal("product_delete_failed", err)
	}
	if !ok {
		return nil, apierr.NotFound("product_not_found", "product not found")
	}
	assetPaths, err := s.assetRepo.StoragePathsByProduct(dbc, id)
	if err != nil {
		return nil, apierr.Internal("product_delete_failed", err)
	}
	docPaths, err := s.docRepo.StoragePathsByProduct(dbc, id)
	if err != nil {
		return nil, apierr.Internal("product_delete_failed", err)
	}
	keys := make([]string, 0, len(assetPaths)+len(docPaths))
	for _, p := range assetPaths {
		if types.IsManagedPath(p) {
			keys = append(keys, p)
		}
	}
	keys = append(keys, docPaths...)

	res := &ProductDeleteResult{}
	res.Orphaned = s.cleanup.Remove(dbc, gcp.BucketCategoryProducts, keys)
	res.RemovedObjects = len(keys) - res.Orphaned

	deleted, err := s.productRepo.Delete(dbc, id)
	if err != nil {
		s.log.Error("Product delete failed", "product_id", id, "error", err)
		return nil, apierr.Internal("product_delete_failed", err)
	}
	if !deleted {
		return nil, apierr.NotFound("product_not_found", "product not found")
	}
	s.listing.Invalidate(dbc.Ctx)
	s.log.Info("Product deleted", "product_id", id, "removed_objects", res.RemovedObjects, "orphaned", res.Orphaned)
	return res, nil
}

func (s *productService) ListFolders(dbc dbctx.Context) ([]*types.Folder, error) {
	out, err := s.productRepo.ListFolders(dbc)
	if err != nil {
		return nil, apierr.Internal("folder_list_failed", err)
	}
	return out, nil
}

// CreateFolder makes a published product under the first category, creating
// the default category when none exist.
func (s *productService) CreateFolder(dbc dbctx.Context, name string) (*types.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.BadRequest("invalid_folder", "folder name is required")
	}
	cat, err := s.folderCategory(dbc)
	if err != nil {
		s.log.Error("Folder category lookup failed", "error", err)
		return nil, apierr.Internal("folder_create_failed", err)
	}
	row := &types.Product{
		CategoryID:     &cat.ID,
		Name:           name,
		SKU:            fmt.Sprintf("FOLDER-%d", s.now().UnixMilli()),
		Specifications: datatypes.JSONSlice[types.Specification]{},
		Status:         types.ProductStatusPublished,
	}
	if _, err := s.productRepo.Create(dbc, row); err != nil {
		if isUniqueViolation(err) {
			return nil, apierr.Conflict("sku_exists", skuExistsMessage)
		}
		return nil, apierr.Internal("folder_create_failed", err)
	}
	return row, nil
}

func (s *productService) folderCategory(dbc dbctx.Context) (*types.Category, error) {
	cat, err := s.categoryRepo.First(dbc)
	if err != nil || cat != nil {
		return cat, err
	}
	cat = &types.Category{Name: DefaultFolderCategoryName, Slug: DefaultFolderCategorySlug}
	if _, err := s.categoryRepo.Create(dbc, []*types.Category{cat}); err != nil {
		if !isUniqueViolation(err) {
			return nil, err
		}
		// Lost a race with another request creating the same default.
		existing, lookupErr := s.categoryRepo.GetBySlug(dbc, DefaultFolderCategorySlug)
		if lookupErr != nil || existing == nil {
			return nil, err
		}
		return existing, nil
	}
	return cat, nil
}
