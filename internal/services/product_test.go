package services

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/catalog-backend/internal/domain"
	"github.com/yungbote/catalog-backend/internal/platform/apierr"
)

func TestCreateProductDuplicateSKU(t *testing.T) {
	h := newHarness(t)
	h.product(t, "PNL-AC-001")
	cat, _ := h.categoryRepo.First(h.dbc)

	_, err := h.products.CreateProduct(h.dbc, ProductInput{Name: "Other", SKU: "PNL-AC-001", CategoryID: &cat.ID})
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("duplicate sku: want *apierr.Error got=%v", err)
	}
	if ae.Status != http.StatusConflict || ae.Code != "sku_exists" {
		t.Fatalf("duplicate sku: want 409 sku_exists got=%d %s", ae.Status, ae.Code)
	}
	if ae.Error() != "A product with this SKU already exists." {
		t.Fatalf("duplicate sku message: got=%q", ae.Error())
	}
}

func TestCreateProductValidation(t *testing.T) {
	h := newHarness(t)
	cat := h.category(t, "Polyurethane")
	missing := uuid.New()
	cases := []struct {
		name string
		in   ProductInput
		code string
		msg  string
	}{
		{"short name", ProductInput{Name: "A", SKU: "SKU-1", CategoryID: &cat.ID}, "invalid_product", "name must be at least 2"},
		{"no category", ProductInput{Name: "Panel", SKU: "SKU-1"}, "invalid_product", "category_id is required"},
		{"bad status", ProductInput{Name: "Panel", SKU: "SKU-1", CategoryID: &cat.ID, Status: "deleted"}, "invalid_product", "status must be one of"},
		{"empty spec", ProductInput{Name: "Panel", SKU: "SKU-1", CategoryID: &cat.ID, Specifications: []SpecificationInput{{Key: "Density", Value: " "}}}, "invalid_product", "value is required"},
		{"unknown category", ProductInput{Name: "Panel", SKU: "SKU-1", CategoryID: &missing}, "invalid_category", "category does not exist"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.products.CreateProduct(h.dbc, tc.in)
			if apierr.CodeOf(err) != tc.code {
				t.Fatalf("code: want=%q got=%v", tc.code, err)
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Fatalf("message: want contains %q got=%q", tc.msg, err.Error())
			}
		})
	}
}

func TestUpdateProductReplacesFields(t *testing.T) {
	h := newHarness(t)
	p := h.product(t, "PNL-AC-001")
	other := h.product(t, "DEC-CR-020")

	updated, err := h.products.UpdateProduct(h.dbc, p.ID, ProductInput{
		Name:           "Acoustic Insulation Panel A1",
		SKU:            "PNL-AC-001",
		CategoryID:     p.CategoryID,
		Status:         types.ProductStatusPublished,
		Specifications: []SpecificationInput{{Key: "Density", Value: "32 kg/m3"}, {Key: "Fire Class", Value: "B-s1,d0"}},
	})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if updated.Status != types.ProductStatusPublished || len(updated.Specifications) != 2 {
		t.Fatalf("updated: want published with 2 specs got=%s/%d", updated.Status, len(updated.Specifications))
	}
	if updated.Specifications[1].Key != "Fire Class" {
		t.Fatalf("spec order: want Fire Class second got=%q", updated.Specifications[1].Key)
	}
	if updated.Category == nil {
		t.Fatalf("category: want preloaded")
	}

	_, err = h.products.UpdateProduct(h.dbc, p.ID, ProductInput{Name: "Clash", SKU: other.SKU, CategoryID: p.CategoryID})
	if apierr.CodeOf(err) != "sku_exists" {
		t.Fatalf("update to taken sku: want=sku_exists got=%v", err)
	}
	_, err = h.products.UpdateProduct(h.dbc, uuid.New(), ProductInput{Name: "Ghost", SKU: "GHOST", CategoryID: p.CategoryID})
	if apierr.CodeOf(err) != "product_not_found" {
		t.Fatalf("update missing: want=product_not_found got=%v", err)
	}
}

func TestListProductsPaginatesAndFilters(t *testing.T) {
	h := newHarness(t)
	for _, sku := range []string{"A-1", "A-2", "A-3"} {
		h.product(t, sku)
	}
	page, err := h.products.ListProducts(h.dbc, ProductQuery{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if page.TotalCount != 3 || page.TotalPages != 2 || len(page.Products) != 1 {
		t.Fatalf("page 2: want total=3 pages=2 rows=1 got=%d/%d/%d", page.TotalCount, page.TotalPages, len(page.Products))
	}
	found, _ := h.products.ListProducts(h.dbc, ProductQuery{Search: "product a-2"})
	if found.TotalCount != 1 || found.Products[0].SKU != "A-2" {
		t.Fatalf("search: want A-2 got=%d", found.TotalCount)
	}
	if found.Products[0].CategoryName == nil {
		t.Fatalf("search: want category name")
	}
}

func TestDeleteProductRemovesManagedObjectsOnly(t *testing.T) {
	h := newHarness(t)
	p := h.product(t, "PNL-AC-001")
	managed := h.asset(t, CreateAssetInput{ProductID: &p.ID, FileName: "m.jpg", StoragePath: "products/p/m.jpg"})
	h.asset(t, CreateAssetInput{ProductID: &p.ID, FileName: "legacy.jpg", StoragePath: "legacy.jpg"})
	trashed := h.asset(t, CreateAssetInput{ProductID: &p.ID, FileName: "t.jpg", StoragePath: "products/p/t.jpg"})
	if err := h.assets.DeleteAsset(h.dbc, trashed.ID); err != nil {
		t.Fatalf("DeleteAsset: %v", err)
	}

	res, err := h.products.DeleteProduct(h.dbc, p.ID)
	if err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if res.RemovedObjects != 2 || res.Orphaned != 0 {
		t.Fatalf("delete result: want removed=2 orphaned=0 got=%+v", *res)
	}
	for _, d := range h.bucket.deletes() {
		if strings.HasSuffix(d, "legacy.jpg") {
			t.Fatalf("legacy object deleted: %s", d)
		}
	}
	left, _ := h.assetRepo.GetByIDsAnyState(h.dbc, []uuid.UUID{managed.ID, trashed.ID})
	if len(left) != 0 {
		t.Fatalf("assets after product delete: want=0 got=%d", len(left))
	}
	if _, err := h.products.DeleteProduct(h.dbc, p.ID); apierr.CodeOf(err) != "product_not_found" {
		t.Fatalf("delete twice: want=product_not_found got=%v", err)
	}
}

func TestDeleteProductOrphansFailedObjects(t *testing.T) {
	h := newHarness(t)
	p := h.product(t, "PNL-AC-001")
	h.asset(t, CreateAssetInput{ProductID: &p.ID, FileName: "m.jpg", StoragePath: "products/p/m.jpg"})
	h.bucket.failDelete["products/p/m.jpg"] = -1

	res, err := h.products.DeleteProduct(h.dbc, p.ID)
	if err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if res.Orphaned != 1 {
		t.Fatalf("orphaned: want=1 got=%d", res.Orphaned)
	}
	n, _ := h.orphanRepo.CountUnresolved(h.dbc)
	if n != 1 {
		t.Fatalf("orphan rows: want=1 got=%d", n)
	}
	if _, err := h.products.GetProduct(h.dbc, p.ID); apierr.CodeOf(err) != "product_not_found" {
		t.Fatalf("product row: want deleted got=%v", err)
	}
}

func TestCreateFolderUsesDefaultCategory(t *testing.T) {
	h := newHarness(t)
	h.products.(*productService).now = func() time.Time { return time.UnixMilli(1700000000123) }

	f, err := h.products.CreateFolder(h.dbc, "  Showroom  ")
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	if f.SKU != "FOLDER-1700000000123" {
		t.Fatalf("sku: want=FOLDER-1700000000123 got=%q", f.SKU)
	}
	if f.Status != types.ProductStatusPublished || f.Name != "Showroom" {
		t.Fatalf("folder: want published Showroom got=%s %q", f.Status, f.Name)
	}
	cat, _ := h.categoryRepo.GetBySlug(h.dbc, DefaultFolderCategorySlug)
	if cat == nil || f.CategoryID == nil || *f.CategoryID != cat.ID {
		t.Fatalf("folder category: want default %q", DefaultFolderCategorySlug)
	}

	folders, _ := h.products.ListFolders(h.dbc)
	if len(folders) != 1 || folders[0].Name != "Showroom" {
		t.Fatalf("ListFolders: want=[Showroom] got=%v", folders)
	}
	if _, err := h.products.CreateFolder(h.dbc, " "); apierr.CodeOf(err) != "invalid_folder" {
		t.Fatalf("empty folder name: want=invalid_folder got=%v", err)
	}
}
