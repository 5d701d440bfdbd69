package handlers_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/catalog-backend/internal/data/repos"
	"github.com/yungbote/catalog-backend/internal/data/repos/testutil"
	internalhttp "github.com/yungbote/catalog-backend/internal/http"
	httpH "github.com/yungbote/catalog-backend/internal/http/handlers"
	"github.com/yungbote/catalog-backend/internal/platform/cache"
	"github.com/yungbote/catalog-backend/internal/services"
)

// newTestRouter wires the full API over SQLite with object storage left
// unconfigured.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)

	categoryRepo := repos.NewCategoryRepo(db, log)
	productRepo := repos.NewProductRepo(db, log)
	assetRepo := repos.NewAssetRepo(db, log)
	historyRepo := repos.NewNoteHistoryRepo(db, log)
	docRepo := repos.NewAssetDocumentRepo(db, log)
	orphanRepo := repos.NewStorageOrphanRepo(db, log)
	noteRepo := repos.NewNoteRepo(db, log)

	listing := services.NewLegacyListing(log, nil, cache.NewMemoryStore(), services.DefaultListingTTL)
	categories := services.NewCategoryService(log, categoryRepo, productRepo)
	products := services.NewProductService(log, productRepo, categoryRepo, assetRepo, docRepo, orphanRepo, nil, listing)
	assets := services.NewAssetService(db, log, assetRepo, historyRepo, docRepo, productRepo, orphanRepo, nil, listing)
	legacy := services.NewLegacyService(log, listing, assetRepo, productRepo, assets)
	gallery := services.NewGalleryService(log, listing, noteRepo)
	uploads := services.NewUploadService(log, nil, assets, assetRepo, productRepo, docRepo, orphanRepo, 1<<20)
	sweeper := services.NewOrphanSweepService(log, nil, orphanRepo)
	stats := services.NewStatsService(log, productRepo, categoryRepo, assetRepo, orphanRepo)

	return internalhttp.NewRouter(internalhttp.RouterConfig{
		Log:                log,
		MaxUploadBytes:     1 << 20,
		HealthHandler:      httpH.NewHealthHandler(db),
		CategoryHandler:    httpH.NewCategoryHandler(log, categories),
		ProductHandler:     httpH.NewProductHandler(log, products, assets, uploads, 1<<20),
		AssetHandler:       httpH.NewAssetHandler(log, assets, uploads, 1<<20),
		LegacyHandler:      httpH.NewLegacyHandler(log, legacy),
		GalleryHandler:     httpH.NewGalleryHandler(log, gallery),
		UploadHandler:      httpH.NewUploadHandler(log, uploads, 1<<20),
		MaintenanceHandler: httpH.NewMaintenanceHandler(log, stats, sweeper),
	})
}

func do(t *testing.T, r http.Handler, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	out := map[string]any{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, out
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func errorMessage(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	msg, _ := e["message"].(string)
	return msg
}

func createProduct(t *testing.T, r http.Handler, sku string) string {
	t.Helper()
	status, body := do(t, r, http.MethodPost, "/api/categories", map[string]any{"name": "Polyurethane"})
	var catID string
	if status == http.StatusCreated {
		catID = body["category"].(map[string]any)["id"].(string)
	} else {
		_, opts := do(t, r, http.MethodGet, "/api/categories/options", nil)
		catID = opts["categories"].([]any)[0].(map[string]any)["id"].(string)
	}
	status, body = do(t, r, http.MethodPost, "/api/products", map[string]any{
		"name": "Panel " + sku, "sku": sku, "category_id": catID,
	})
	if status != http.StatusCreated {
		t.Fatalf("create product: want=201 got=%d body=%v", status, body)
	}
	return body["product"].(map[string]any)["id"].(string)
}

func TestHealthcheck(t *testing.T) {
	r := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: got=%d %q", rec.Code, rec.Body.String())
	}
}

func TestProductCreateConflictAndValidation(t *testing.T) {
	r := newTestRouter(t)
	id := createProduct(t, r, "PNL-AC-001")

	status, body := do(t, r, http.MethodGet, "/api/products/"+id, nil)
	if status != http.StatusOK || body["success"] != true {
		t.Fatalf("get product: got=%d body=%v", status, body)
	}

	_, opts := do(t, r, http.MethodGet, "/api/categories/options", nil)
	catID := opts["categories"].([]any)[0].(map[string]any)["id"].(string)
	status, body = do(t, r, http.MethodPost, "/api/products", map[string]any{
		"name": "Other", "sku": "PNL-AC-001", "category_id": catID,
	})
	if status != http.StatusConflict || errorCode(body) != "sku_exists" {
		t.Fatalf("duplicate sku: want=409 sku_exists got=%d %v", status, body)
	}
	if errorMessage(body) != "A product with this SKU already exists." {
		t.Fatalf("duplicate sku message: got=%q", errorMessage(body))
	}
	if body["success"] != false {
		t.Fatalf("error envelope: want success=false got=%v", body["success"])
	}

	status, body = do(t, r, http.MethodPost, "/api/products", map[string]any{"name": "X", "sku": "S"})
	if status != http.StatusBadRequest || errorCode(body) != "invalid_product" {
		t.Fatalf("validation: want=400 invalid_product got=%d %v", status, body)
	}

	status, body = do(t, r, http.MethodGet, "/api/products/not-a-uuid", nil)
	if status != http.StatusBadRequest || errorCode(body) != "invalid_product_id" {
		t.Fatalf("bad id: want=400 invalid_product_id got=%d %v", status, body)
	}

	status, body = do(t, r, http.MethodGet, "/api/products?search=ac-001", nil)
	if status != http.StatusOK || body["total_count"] != float64(1) {
		t.Fatalf("list search: got=%d %v", status, body)
	}
}

func TestAssetTrashRoundTrip(t *testing.T) {
	r := newTestRouter(t)
	productID := createProduct(t, r, "PNL-1")

	status, body := do(t, r, http.MethodPost, "/api/assets", map[string]any{
		"product_id": productID, "file_name": "photo.jpg", "file_url": "https://cdn.test/photo.jpg", "storage_path": "photo.jpg",
	})
	if status != http.StatusCreated {
		t.Fatalf("create asset: got=%d %v", status, body)
	}
	assetID := body["asset"].(map[string]any)["id"].(string)

	if status, body = do(t, r, http.MethodDelete, "/api/assets/"+assetID, nil); status != http.StatusOK {
		t.Fatalf("delete: got=%d %v", status, body)
	}
	if status, body = do(t, r, http.MethodDelete, "/api/assets/"+assetID, nil); status != http.StatusNotFound {
		t.Fatalf("second delete: want=404 got=%d %v", status, body)
	}
	_, body = do(t, r, http.MethodGet, "/api/trash", nil)
	if n := len(body["assets"].([]any)); n != 1 {
		t.Fatalf("trash: want=1 got=%d", n)
	}

	status, body = do(t, r, http.MethodPost, "/api/trash/restore", map[string]any{"ids": []string{assetID}})
	if status != http.StatusOK || body["count"] != float64(1) {
		t.Fatalf("restore: got=%d %v", status, body)
	}
	_, body = do(t, r, http.MethodGet, "/api/products/"+productID+"/assets", nil)
	if n := len(body["images"].([]any)); n != 1 {
		t.Fatalf("product images after restore: want=1 got=%d", n)
	}

	// A legacy path loses only its row; no storage is configured here.
	do(t, r, http.MethodDelete, "/api/assets/"+assetID, nil)
	status, body = do(t, r, http.MethodPost, "/api/trash/purge", map[string]any{"ids": []string{assetID}})
	if status != http.StatusOK || body["purged"] != float64(1) || body["orphaned"] != float64(0) {
		t.Fatalf("purge: got=%d %v", status, body)
	}

	status, body = do(t, r, http.MethodPost, "/api/assets/bulk-delete", map[string]any{"ids": []string{}})
	if status != http.StatusOK || body["count"] != float64(0) {
		t.Fatalf("empty bulk delete: got=%d %v", status, body)
	}
}

func TestAssetNoteHistory(t *testing.T) {
	r := newTestRouter(t)
	status, body := do(t, r, http.MethodPost, "/api/assets", map[string]any{
		"file_name": "a.jpg", "file_url": "https://cdn.test/a.jpg", "storage_path": "a.jpg",
	})
	if status != http.StatusCreated {
		t.Fatalf("create asset: got=%d %v", status, body)
	}
	id := body["asset"].(map[string]any)["id"].(string)

	for _, note := range []string{"first", "second", ""} {
		if status, body = do(t, r, http.MethodPut, "/api/assets/"+id+"/note", map[string]any{"note": note}); status != http.StatusOK {
			t.Fatalf("note %q: got=%d %v", note, status, body)
		}
	}
	_, body = do(t, r, http.MethodGet, "/api/assets/"+id+"/notes", nil)
	if n := len(body["history"].([]any)); n != 2 {
		t.Fatalf("history: want=2 got=%d", n)
	}
}

func TestStorageBackedRoutesWithoutBucket(t *testing.T) {
	r := newTestRouter(t)

	status, body := do(t, r, http.MethodGet, "/api/legacy/files", nil)
	if status != http.StatusOK || body["total"] != float64(0) {
		t.Fatalf("legacy files: got=%d %v", status, body)
	}
	status, body = do(t, r, http.MethodGet, "/api/gallery", nil)
	if status != http.StatusOK || body["total"] != float64(0) {
		t.Fatalf("gallery: got=%d %v", status, body)
	}

	var img bytes.Buffer
	if err := png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("png: %v", err)
	}
	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	fw, _ := mw.CreateFormFile("file", "a.png")
	_, _ = fw.Write(img.Bytes())
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/uploads/documents", &form)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("upload without storage: want=502 got=%d %s", rec.Code, rec.Body.String())
	}
	var env map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	if errorCode(env) != "storage_unavailable" {
		t.Fatalf("upload code: want=storage_unavailable got=%v", env)
	}

	status, body = do(t, r, http.MethodPost, "/api/uploads/documents", nil)
	if status != http.StatusBadRequest || errorCode(body) != "invalid_file" {
		t.Fatalf("missing file: want=400 invalid_file got=%d %v", status, body)
	}
}

func TestCategoryRoutes(t *testing.T) {
	r := newTestRouter(t)
	status, body := do(t, r, http.MethodPost, "/api/categories", map[string]any{"name": "Decorative Panels"})
	if status != http.StatusCreated {
		t.Fatalf("create: got=%d %v", status, body)
	}
	cat := body["category"].(map[string]any)
	if cat["slug"] != "decorative-panels" {
		t.Fatalf("slug: got=%v", cat["slug"])
	}
	status, body = do(t, r, http.MethodPost, "/api/categories", map[string]any{"name": "Decorative Panels"})
	if status != http.StatusConflict || errorCode(body) != "slug_exists" {
		t.Fatalf("duplicate: want=409 slug_exists got=%d %v", status, body)
	}
	status, body = do(t, r, http.MethodGet, "/api/categories/slug/decorative-panels", nil)
	if status != http.StatusOK {
		t.Fatalf("by slug: got=%d %v", status, body)
	}
	id := cat["id"].(string)
	status, body = do(t, r, http.MethodPatch, "/api/categories/"+id, map[string]any{"parent_id": id})
	if status != http.StatusBadRequest || errorCode(body) != "invalid_parent" {
		t.Fatalf("self parent: want=400 invalid_parent got=%d %v", status, body)
	}
	status, body = do(t, r, http.MethodGet, "/api/categories/tree", nil)
	if status != http.StatusOK || len(body["categories"].([]any)) != 1 {
		t.Fatalf("tree: got=%d %v", status, body)
	}
	status, body = do(t, r, http.MethodGet, "/api/stats", nil)
	if status != http.StatusOK || body["stats"].(map[string]any)["categories"] != float64(1) {
		t.Fatalf("stats: got=%d %v", status, body)
	}
}
