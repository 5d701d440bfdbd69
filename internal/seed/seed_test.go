package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/yungbote/catalog-backend/internal/data/repos"
	"github.com/yungbote/catalog-backend/internal/data/repos/testutil"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/services"
)

func TestDefaultFixtureParses(t *testing.T) {
	f, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(f.Categories) == 0 || len(f.Products) == 0 {
		t.Fatalf("fixture: categories=%d products=%d", len(f.Categories), len(f.Products))
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	dbc := dbctx.Context{Ctx: context.Background()}

	categoryRepo := repos.NewCategoryRepo(db, log)
	productRepo := repos.NewProductRepo(db, log)
	categories := services.NewCategoryService(log, categoryRepo, productRepo)
	products := services.NewProductService(log, productRepo, categoryRepo, repos.NewAssetRepo(db, log), repos.NewAssetDocumentRepo(db, log), repos.NewStorageOrphanRepo(db, log), nil, nil)

	f, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	first, err := Apply(dbc, log, f, categories, products)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if first.CategoriesCreated != len(f.Categories) || first.ProductsCreated != len(f.Products) {
		t.Fatalf("first run: want=%d/%d got=%+v", len(f.Categories), len(f.Products), first)
	}

	second, err := Apply(dbc, log, f, categories, products)
	if err != nil {
		t.Fatalf("Apply (second): %v", err)
	}
	if second.CategoriesCreated != 0 || second.ProductsCreated != 0 {
		t.Fatalf("second run created rows: %+v", second)
	}
	if second.CategoriesSkipped != len(f.Categories) || second.ProductsSkipped != len(f.Products) {
		t.Fatalf("second run skipped: want=%d/%d got=%+v", len(f.Categories), len(f.Products), second)
	}

	child, err := categories.GetCategoryBySlug(dbc, "sert-kopuk")
	if err != nil {
		t.Fatalf("GetCategoryBySlug: %v", err)
	}
	if child.ParentID == nil {
		t.Fatalf("sert-kopuk: want parent, got root")
	}
}

func TestApplyRejectsForwardParent(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	categoryRepo := repos.NewCategoryRepo(db, log)
	productRepo := repos.NewProductRepo(db, log)
	categories := services.NewCategoryService(log, categoryRepo, productRepo)

	f, err := Parse([]byte("categories:\n  - name: Child\n    parent: later\n  - name: Later\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = Apply(dbc, log, f, categories, nil)
	if err == nil || !strings.Contains(err.Error(), "must appear earlier") {
		t.Fatalf("err: want parent ordering error, got=%v", err)
	}
}
