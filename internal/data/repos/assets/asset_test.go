package assets

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/catalog-backend/internal/data/repos/sqlutil"
	"github.com/yungbote/catalog-backend/internal/data/repos/testutil"
	types "github.com/yungbote/catalog-backend/internal/domain"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
)

func TestAssetRepoSoftDeleteRestorePurge(t *testing.T) {
	db := testutil.DB(t)
	repo := NewAssetRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	rows, err := repo.Create(dbc, []*types.Asset{
		{FileName: "a.jpg", FileType: types.FileTypeImage, FileURL: "u/a", StoragePath: "products/p/a.jpg"},
		{FileName: "b.jpg", FileType: types.FileTypeImage, FileURL: "u/b", StoragePath: "b.jpg"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	a, b := rows[0], rows[1]

	n, err := repo.SoftDeleteByIDs(dbc, []uuid.UUID{a.ID})
	if err != nil || n != 1 {
		t.Fatalf("SoftDeleteByIDs: want=1 got=%d err=%v", n, err)
	}
	if got, _ := repo.GetByID(dbc, a.ID); got != nil {
		t.Fatalf("GetByID after soft delete: want=nil got=%v", got.ID)
	}
	trashed, err := repo.ListTrashed(dbc)
	if err != nil {
		t.Fatalf("ListTrashed: %v", err)
	}
	if len(trashed) != 1 || trashed[0].ID != a.ID {
		t.Fatalf("ListTrashed: want=[%s] got=%d rows", a.ID, len(trashed))
	}
	if trashed[0].State() != types.AssetStateTrashed {
		t.Fatalf("state: want=%q got=%q", types.AssetStateTrashed, trashed[0].State())
	}

	n, err = repo.RestoreByIDs(dbc, []uuid.UUID{a.ID, b.ID})
	if err != nil || n != 1 {
		t.Fatalf("RestoreByIDs: want=1 got=%d err=%v", n, err)
	}
	total, _ := repo.Count(dbc, AssetFilter{})
	if total != 2 {
		t.Fatalf("active count: want=2 got=%d", total)
	}

	// Purge only touches trashed rows.
	n, err = repo.FullDeleteTrashedByIDs(dbc, []uuid.UUID{b.ID})
	if err != nil || n != 0 {
		t.Fatalf("FullDeleteTrashedByIDs active: want=0 got=%d err=%v", n, err)
	}
	if _, err := repo.SoftDeleteByIDs(dbc, []uuid.UUID{b.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}
	n, err = repo.FullDeleteTrashedByIDs(dbc, []uuid.UUID{b.ID})
	if err != nil || n != 1 {
		t.Fatalf("FullDeleteTrashedByIDs: want=1 got=%d err=%v", n, err)
	}
	left, _ := repo.GetByIDsAnyState(dbc, []uuid.UUID{a.ID, b.ID})
	if len(left) != 1 || left[0].ID != a.ID {
		t.Fatalf("remaining rows: want=[%s] got=%d", a.ID, len(left))
	}
}

func TestAssetRepoBulkOpsWithNoIDs(t *testing.T) {
	db := testutil.DB(t)
	repo := NewAssetRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	for name, fn := range map[string]func() (int64, error){
		"soft_delete": func() (int64, error) { return repo.SoftDeleteByIDs(dbc, nil) },
		"restore":     func() (int64, error) { return repo.RestoreByIDs(dbc, nil) },
		"purge":       func() (int64, error) { return repo.FullDeleteTrashedByIDs(dbc, nil) },
		"assign":      func() (int64, error) { return repo.AssignProduct(dbc, nil, uuid.New()) },
	} {
		n, err := fn()
		if err != nil || n != 0 {
			t.Fatalf("%s: want=0,nil got=%d,%v", name, n, err)
		}
	}
}

func TestAssetRepoListFiltersAndLinkedNames(t *testing.T) {
	db := testutil.DB(t)
	repo := NewAssetRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	product := testutil.SeedProduct(t, dbc.Ctx, db, "PNL-1", nil)
	rows, err := repo.Create(dbc, []*types.Asset{
		{ProductID: &product.ID, FileName: "Panel_Front.JPG", FileType: types.FileTypeImage, FileURL: "u1", StoragePath: "products/x/1.jpg"},
		{FileName: "loose_100%.png", FileType: types.FileTypeImage, FileURL: "u2", StoragePath: "loose_100%.png"},
		{FileName: "trashed.png", FileType: types.FileTypeImage, FileURL: "u3", StoragePath: "trashed.png"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.SoftDeleteByIDs(dbc, []uuid.UUID{rows[2].ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}

	found, err := repo.List(dbc, AssetFilter{Search: "panel_front"}, sqlutil.Page{Number: 1, Size: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(found) != 1 || found[0].Product == nil || found[0].Product.SKU != "PNL-1" {
		t.Fatalf("search: want one row with product preloaded got=%d", len(found))
	}

	pct, _ := repo.Count(dbc, AssetFilter{Search: "100%"})
	if pct != 1 {
		t.Fatalf("literal percent search: want=1 got=%d", pct)
	}

	unassigned, _ := repo.Count(dbc, AssetFilter{OnlyUnassigned: true})
	if unassigned != 1 {
		t.Fatalf("unassigned: want=1 got=%d", unassigned)
	}

	linked, err := repo.LinkedFileNames(dbc)
	if err != nil {
		t.Fatalf("LinkedFileNames: %v", err)
	}
	if len(linked) != 3 {
		t.Fatalf("linked names include trashed: want=3 got=%d", len(linked))
	}
}

func TestProductDeleteCascadesToAssets(t *testing.T) {
	db := testutil.DB(t)
	repo := NewAssetRepo(db, testutil.Logger(t))
	history := NewNoteHistoryRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	product := testutil.SeedProduct(t, dbc.Ctx, db, "PNL-2", nil)
	asset := testutil.SeedAsset(t, dbc.Ctx, db, &product.ID, "products/p/a.jpg")
	if _, err := history.Append(dbc, &types.AssetNoteHistory{AssetID: asset.ID, Note: "first"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := db.Delete(&types.Product{}, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("delete product: %v", err)
	}
	left, _ := repo.GetByIDsAnyState(dbc, []uuid.UUID{asset.ID})
	if len(left) != 0 {
		t.Fatalf("assets after product delete: want=0 got=%d", len(left))
	}
	notes, _ := history.ListByAsset(dbc, asset.ID)
	if len(notes) != 0 {
		t.Fatalf("history after cascade: want=0 got=%d", len(notes))
	}
}
