package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/catalog-backend/internal/domain"
	"github.com/yungbote/catalog-backend/internal/platform/apierr"
	"github.com/yungbote/catalog-backend/internal/platform/ctxutil"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/gcp"
)

func containsAsset(rows []*types.Asset, id uuid.UUID) bool {
	for _, a := range rows {
		if a.ID == id {
			return true
		}
	}
	return false
}

func TestDeleteThenRestoreRoundTrip(t *testing.T) {
	h := newHarness(t)
	p := h.product(t, "PNL-AC-001")
	a := h.asset(t, CreateAssetInput{ProductID: &p.ID, FileName: "front.jpg", StoragePath: "products/x/front.jpg"})

	if err := h.assets.DeleteAsset(h.dbc, a.ID); err != nil {
		t.Fatalf("DeleteAsset: %v", err)
	}
	trash, err := h.assets.GetDeletedAssets(h.dbc)
	if err != nil {
		t.Fatalf("GetDeletedAssets: %v", err)
	}
	if !containsAsset(trash, a.ID) {
		t.Fatalf("trash: want asset %s present", a.ID)
	}
	if trash[0].Product == nil || trash[0].Product.ID != p.ID {
		t.Fatalf("trash: want product joined")
	}
	if got := len(h.bucket.deletes()); got != 0 {
		t.Fatalf("soft delete storage calls: want=0 got=%d", got)
	}

	n, err := h.assets.RestoreAssets(h.dbc, []uuid.UUID{a.ID})
	if err != nil || n != 1 {
		t.Fatalf("RestoreAssets: want=1 got=%d err=%v", n, err)
	}
	trash, _ = h.assets.GetDeletedAssets(h.dbc)
	if containsAsset(trash, a.ID) {
		t.Fatalf("trash after restore: want asset absent")
	}
	page, err := h.assets.ListAssets(h.dbc, AssetQuery{})
	if err != nil {
		t.Fatalf("ListAssets: %v", err)
	}
	if !containsAsset(page.Assets, a.ID) {
		t.Fatalf("active listing after restore: want asset present")
	}
}

func TestDeleteAssetTwiceIsNotFound(t *testing.T) {
	h := newHarness(t)
	a := h.asset(t, CreateAssetInput{FileName: "a.jpg", StoragePath: "a.jpg"})
	if err := h.assets.DeleteAsset(h.dbc, a.ID); err != nil {
		t.Fatalf("DeleteAsset: %v", err)
	}
	err := h.assets.DeleteAsset(h.dbc, a.ID)
	if apierr.CodeOf(err) != "asset_not_found" {
		t.Fatalf("second delete: want=asset_not_found got=%v", err)
	}
}

func TestPurgeRespectsStoragePrefix(t *testing.T) {
	h := newHarness(t)
	managed := h.asset(t, CreateAssetInput{FileName: "m.jpg", StoragePath: "products/p1/m.jpg"})
	legacy := h.asset(t, CreateAssetInput{FileName: "legacy.jpg", StoragePath: "legacy.jpg"})
	h.bucket.put(gcp.BucketCategoryProducts, "products/p1/m.jpg")
	h.bucket.put(gcp.BucketCategoryLegacy, "legacy.jpg")

	if _, err := h.assets.BulkDeleteAssets(h.dbc, []uuid.UUID{managed.ID, legacy.ID}); err != nil {
		t.Fatalf("BulkDeleteAssets: %v", err)
	}
	res, err := h.assets.PurgeAssets(h.dbc, []uuid.UUID{managed.ID, legacy.ID})
	if err != nil {
		t.Fatalf("PurgeAssets: %v", err)
	}
	if res.Purged != 2 || res.Skipped != 0 || res.Orphaned != 0 {
		t.Fatalf("purge result: want={2 0 0} got=%+v", *res)
	}
	deletes := h.bucket.deletes()
	if len(deletes) != 1 || deletes[0] != "products:products/p1/m.jpg" {
		t.Fatalf("storage deletes: want=[products:products/p1/m.jpg] got=%v", deletes)
	}
	if !h.bucket.has(gcp.BucketCategoryLegacy, "legacy.jpg") {
		t.Fatalf("legacy object: want preserved")
	}
	left, _ := h.assetRepo.GetByIDsAnyState(h.dbc, []uuid.UUID{managed.ID, legacy.ID})
	if len(left) != 0 {
		t.Fatalf("rows after purge: want=0 got=%d", len(left))
	}
}

func TestPurgeSkipsActiveAssets(t *testing.T) {
	h := newHarness(t)
	a := h.asset(t, CreateAssetInput{FileName: "m.jpg", StoragePath: "products/p1/m.jpg"})

	res, err := h.assets.PurgeAssets(h.dbc, []uuid.UUID{a.ID, uuid.New()})
	if err != nil {
		t.Fatalf("PurgeAssets: %v", err)
	}
	if res.Purged != 0 || res.Skipped != 2 {
		t.Fatalf("purge result: want purged=0 skipped=2 got=%+v", *res)
	}
	if got := len(h.bucket.deletes()); got != 0 {
		t.Fatalf("storage deletes: want=0 got=%d", got)
	}
	still, _ := h.assetRepo.GetByID(h.dbc, a.ID)
	if still == nil {
		t.Fatalf("active asset: want untouched")
	}
}

func TestPurgeRecordsOrphanOnPersistentStorageFailure(t *testing.T) {
	h := newHarness(t)
	a := h.asset(t, CreateAssetInput{FileName: "m.jpg", StoragePath: "products/p1/m.jpg"})
	h.bucket.failDelete["products/p1/m.jpg"] = -1
	if err := h.assets.DeleteAsset(h.dbc, a.ID); err != nil {
		t.Fatalf("DeleteAsset: %v", err)
	}

	res, err := h.assets.PurgeAssets(h.dbc, []uuid.UUID{a.ID})
	if err != nil {
		t.Fatalf("PurgeAssets: %v", err)
	}
	if res.Purged != 1 || res.Orphaned != 1 {
		t.Fatalf("purge result: want purged=1 orphaned=1 got=%+v", *res)
	}
	if got := len(h.bucket.deletes()); got != storageDeleteAttempts {
		t.Fatalf("delete attempts: want=%d got=%d", storageDeleteAttempts, got)
	}
	orphans, _ := h.orphanRepo.ListUnresolved(h.dbc, 10)
	if len(orphans) != 1 || orphans[0].StoragePath != "products/p1/m.jpg" {
		t.Fatalf("orphans: want one for products/p1/m.jpg got=%d", len(orphans))
	}
}

func TestPurgeOrphanNamesTheRequest(t *testing.T) {
	h := newHarness(t)
	a := h.asset(t, CreateAssetInput{FileName: "m.jpg", StoragePath: "products/p1/m.jpg"})
	h.bucket.failDelete["products/p1/m.jpg"] = -1
	if err := h.assets.DeleteAsset(h.dbc, a.ID); err != nil {
		t.Fatalf("DeleteAsset: %v", err)
	}

	ctx := ctxutil.WithTraceData(context.Background(), &ctxutil.TraceData{TraceID: "t-1", RequestID: "req-purge", Route: "/api/trash/purge"})
	if _, err := h.assets.PurgeAssets(dbctx.Context{Ctx: ctx}, []uuid.UUID{a.ID}); err != nil {
		t.Fatalf("PurgeAssets: %v", err)
	}
	orphans, _ := h.orphanRepo.ListUnresolved(h.dbc, 10)
	if len(orphans) != 1 {
		t.Fatalf("orphans: want=1 got=%d", len(orphans))
	}
	if orphans[0].RequestID != "req-purge" || orphans[0].Route != "/api/trash/purge" {
		t.Fatalf("orphan origin: want=req-purge,/api/trash/purge got=%q,%q", orphans[0].RequestID, orphans[0].Route)
	}
}

func TestPurgeRetriesTransientStorageFailure(t *testing.T) {
	h := newHarness(t)
	a := h.asset(t, CreateAssetInput{FileName: "m.jpg", StoragePath: "products/p1/m.jpg"})
	h.bucket.failDelete["products/p1/m.jpg"] = 1
	if err := h.assets.DeleteAsset(h.dbc, a.ID); err != nil {
		t.Fatalf("DeleteAsset: %v", err)
	}
	res, err := h.assets.PurgeAssets(h.dbc, []uuid.UUID{a.ID})
	if err != nil {
		t.Fatalf("PurgeAssets: %v", err)
	}
	if res.Orphaned != 0 {
		t.Fatalf("orphaned: want=0 got=%d", res.Orphaned)
	}
	if got := len(h.bucket.deletes()); got != 2 {
		t.Fatalf("delete attempts: want=2 got=%d", got)
	}
}

func TestPurgeRemovesDocumentObjects(t *testing.T) {
	h := newHarness(t)
	a := h.asset(t, CreateAssetInput{FileName: "legacy.jpg", StoragePath: "legacy.jpg"})
	if _, err := h.docRepo.Create(h.dbc, &types.AssetDocument{AssetID: a.ID, FileName: "spec.pdf", FileURL: "u", StoragePath: "documents/1-spec.pdf"}); err != nil {
		t.Fatalf("create document: %v", err)
	}
	if err := h.assets.DeleteAsset(h.dbc, a.ID); err != nil {
		t.Fatalf("DeleteAsset: %v", err)
	}
	if _, err := h.assets.PurgeAssets(h.dbc, []uuid.UUID{a.ID}); err != nil {
		t.Fatalf("PurgeAssets: %v", err)
	}
	deletes := h.bucket.deletes()
	if len(deletes) != 1 || deletes[0] != "products:documents/1-spec.pdf" {
		t.Fatalf("storage deletes: want=[products:documents/1-spec.pdf] got=%v", deletes)
	}
}

func TestBulkOperationsWithNoIDsTouchNothing(t *testing.T) {
	// Nil repos and bucket: any call past the empty-input guard panics.
	svc := &assetService{}
	dbc := dbctx.Context{Ctx: context.Background()}

	if n, err := svc.BulkDeleteAssets(dbc, nil); err != nil || n != 0 {
		t.Fatalf("BulkDeleteAssets: want=0,nil got=%d,%v", n, err)
	}
	if n, err := svc.RestoreAssets(dbc, []uuid.UUID{}); err != nil || n != 0 {
		t.Fatalf("RestoreAssets: want=0,nil got=%d,%v", n, err)
	}
	res, err := svc.PurgeAssets(dbc, nil)
	if err != nil || res.Purged != 0 {
		t.Fatalf("PurgeAssets: want empty result got=%+v,%v", res, err)
	}
	if n, err := svc.BulkAssignAssets(dbc, nil, uuid.New()); err != nil || n != 0 {
		t.Fatalf("BulkAssignAssets: want=0,nil got=%d,%v", n, err)
	}
}

func TestUpdateNoteAppendsHistoryOnlyForNonEmpty(t *testing.T) {
	h := newHarness(t)
	a := h.asset(t, CreateAssetInput{FileName: "a.jpg", StoragePath: "a.jpg"})

	for _, note := range []string{"first", "second", ""} {
		updated, err := h.assets.UpdateNote(h.dbc, a.ID, note)
		if err != nil {
			t.Fatalf("UpdateNote(%q): %v", note, err)
		}
		if updated.Notes != note {
			t.Fatalf("notes: want=%q got=%q", note, updated.Notes)
		}
	}
	history, err := h.assets.GetNoteHistory(h.dbc, a.ID)
	if err != nil {
		t.Fatalf("GetNoteHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history rows: want=2 got=%d", len(history))
	}
	seen := map[string]bool{}
	for _, row := range history {
		seen[row.Note] = true
	}
	if !seen["first"] || !seen["second"] {
		t.Fatalf("history: want first and second got=%v", seen)
	}
}

func TestUpdateNoteMissingAsset(t *testing.T) {
	h := newHarness(t)
	_, err := h.assets.UpdateNote(h.dbc, uuid.New(), "hello")
	if apierr.CodeOf(err) != "asset_not_found" {
		t.Fatalf("UpdateNote missing: want=asset_not_found got=%v", err)
	}
	history, _ := h.historyRepo.ListByAsset(h.dbc, uuid.New())
	if len(history) != 0 {
		t.Fatalf("history: want=0 got=%d", len(history))
	}
}

func TestBulkAssignUnknownProduct(t *testing.T) {
	h := newHarness(t)
	a := h.asset(t, CreateAssetInput{FileName: "a.jpg", StoragePath: "a.jpg"})
	_, err := h.assets.BulkAssignAssets(h.dbc, []uuid.UUID{a.ID}, uuid.New())
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Status != http.StatusBadRequest {
		t.Fatalf("BulkAssignAssets unknown product: want 400 got=%v", err)
	}
}

func TestUnassignedAndProductAssets(t *testing.T) {
	h := newHarness(t)
	p := h.product(t, "DEC-CR-020")
	loose := h.asset(t, CreateAssetInput{FileName: "loose.jpg", StoragePath: "loose.jpg"})
	h.asset(t, CreateAssetInput{ProductID: &p.ID, FileName: "img.jpg", StoragePath: "products/p/img.jpg"})
	h.asset(t, CreateAssetInput{ProductID: &p.ID, FileName: "sheet.pdf", StoragePath: "products/p/sheet.pdf"})

	un, err := h.assets.ListUnassignedAssets(h.dbc, 1, 0)
	if err != nil {
		t.Fatalf("ListUnassignedAssets: %v", err)
	}
	if un.TotalCount != 1 || un.Assets[0].ID != loose.ID {
		t.Fatalf("unassigned: want only loose.jpg got=%d", un.TotalCount)
	}

	if err := h.assets.AssignAsset(h.dbc, loose.ID, p.ID); err != nil {
		t.Fatalf("AssignAsset: %v", err)
	}
	pa, err := h.assets.GetProductAssets(h.dbc, p.ID)
	if err != nil {
		t.Fatalf("GetProductAssets: %v", err)
	}
	if len(pa.Images) != 2 || len(pa.Documents) != 1 {
		t.Fatalf("product assets: want 2 images 1 document got=%d/%d", len(pa.Images), len(pa.Documents))
	}
}
