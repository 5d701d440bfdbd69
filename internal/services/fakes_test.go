package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/data/repos"
	"github.com/yungbote/catalog-backend/internal/data/repos/testutil"
	types "github.com/yungbote/catalog-backend/internal/domain"
	"github.com/yungbote/catalog-backend/internal/platform/cache"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/gcp"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

type fakeBucket struct {
	mu          sync.Mutex
	objects     map[gcp.BucketCategory]map[string][]byte
	deleteCalls []string
	// failDelete holds how many more deletes of a key fail; negative fails forever.
	failDelete map[string]int
	uploadErr  error
	listCalls  int
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{
		objects: map[gcp.BucketCategory]map[string][]byte{
			gcp.BucketCategoryProducts: {},
			gcp.BucketCategoryLegacy:   {},
		},
		failDelete: map[string]int{},
	}
}

func (f *fakeBucket) put(category gcp.BucketCategory, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[category][key] = []byte("x")
}

func (f *fakeBucket) has(category gcp.BucketCategory, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[category][key]
	return ok
}

func (f *fakeBucket) UploadFile(_ dbctx.Context, category gcp.BucketCategory, key string, file io.Reader, opts gcp.UploadOptions) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	raw, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[category][key]; ok && opts.NoOverwrite {
		return gcp.ErrObjectExists
	}
	f.objects[category][key] = raw
	return nil
}

func (f *fakeBucket) DeleteFile(_ dbctx.Context, category gcp.BucketCategory, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, string(category)+":"+key)
	if n, ok := f.failDelete[key]; ok && n != 0 {
		if n > 0 {
			f.failDelete[key] = n - 1
		}
		return errors.New("storage unavailable")
	}
	delete(f.objects[category], key)
	return nil
}

func (f *fakeBucket) ListObjects(_ context.Context, category gcp.BucketCategory, prefix string) ([]gcp.ObjectEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	var out []gcp.ObjectEntry
	for k, v := range f.objects[category] {
		if strings.HasPrefix(k, prefix) && !strings.Contains(strings.TrimPrefix(k, prefix), "/") {
			out = append(out, gcp.ObjectEntry{Name: k, Size: int64(len(v))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeBucket) EnsureBucket(context.Context, gcp.BucketCategory, string) (bool, error) {
	return false, nil
}

func (f *fakeBucket) BucketName(category gcp.BucketCategory) string { return string(category) }

func (f *fakeBucket) GetPublicURL(category gcp.BucketCategory, key string) string {
	return "https://cdn.test/" + string(category) + "/" + key
}

func (f *fakeBucket) deletes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleteCalls...)
}

type harness struct {
	db     *gorm.DB
	log    *logger.Logger
	dbc    dbctx.Context
	bucket *fakeBucket
	store  *cache.MemoryStore

	categoryRepo repos.CategoryRepo
	productRepo  repos.ProductRepo
	assetRepo    repos.AssetRepo
	historyRepo  repos.NoteHistoryRepo
	docRepo      repos.AssetDocumentRepo
	orphanRepo   repos.StorageOrphanRepo
	noteRepo     repos.NoteRepo

	listing    *LegacyListing
	categories CategoryService
	products   ProductService
	assets     AssetService
	legacy     LegacyService
	gallery    GalleryService
	uploads    UploadService
	sweeper    OrphanSweepService
	stats      StatsService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	h := &harness{
		db:     db,
		log:    log,
		dbc:    dbctx.Context{Ctx: context.Background()},
		bucket: newFakeBucket(),
		store:  cache.NewMemoryStore(),

		categoryRepo: repos.NewCategoryRepo(db, log),
		productRepo:  repos.NewProductRepo(db, log),
		assetRepo:    repos.NewAssetRepo(db, log),
		historyRepo:  repos.NewNoteHistoryRepo(db, log),
		docRepo:      repos.NewAssetDocumentRepo(db, log),
		orphanRepo:   repos.NewStorageOrphanRepo(db, log),
		noteRepo:     repos.NewNoteRepo(db, log),
	}
	h.listing = NewLegacyListing(log, h.bucket, h.store, DefaultListingTTL)
	h.categories = NewCategoryService(log, h.categoryRepo, h.productRepo)
	h.products = NewProductService(log, h.productRepo, h.categoryRepo, h.assetRepo, h.docRepo, h.orphanRepo, h.bucket, h.listing)
	h.assets = NewAssetService(db, log, h.assetRepo, h.historyRepo, h.docRepo, h.productRepo, h.orphanRepo, h.bucket, h.listing)
	h.legacy = NewLegacyService(log, h.listing, h.assetRepo, h.productRepo, h.assets)
	h.gallery = NewGalleryService(log, h.listing, h.noteRepo)
	h.uploads = NewUploadService(log, h.bucket, h.assets, h.assetRepo, h.productRepo, h.docRepo, h.orphanRepo, 1<<20)
	h.sweeper = NewOrphanSweepService(log, h.bucket, h.orphanRepo)
	h.stats = NewStatsService(log, h.productRepo, h.categoryRepo, h.assetRepo, h.orphanRepo)

	h.products.(*productService).cleanup.backoff = 0
	h.assets.(*assetService).cleanup.backoff = 0
	h.uploads.(*uploadService).cleanup.backoff = 0
	return h
}

func (h *harness) category(t *testing.T, name string) *types.Category {
	t.Helper()
	c, err := h.categories.CreateCategory(h.dbc, CategoryInput{Name: name})
	if err != nil {
		t.Fatalf("CreateCategory(%q): %v", name, err)
	}
	return c
}

func (h *harness) product(t *testing.T, sku string) *types.Product {
	t.Helper()
	cat, err := h.categoryRepo.First(h.dbc)
	if err != nil {
		t.Fatalf("First category: %v", err)
	}
	if cat == nil {
		cat = h.category(t, "Polyurethane")
	}
	p, err := h.products.CreateProduct(h.dbc, ProductInput{Name: "Product " + sku, SKU: sku, CategoryID: &cat.ID})
	if err != nil {
		t.Fatalf("CreateProduct(%q): %v", sku, err)
	}
	return p
}

func (h *harness) asset(t *testing.T, in CreateAssetInput) *types.Asset {
	t.Helper()
	if in.FileURL == "" {
		in.FileURL = "https://cdn.test/" + in.StoragePath
	}
	a, err := h.assets.CreateAssetRecord(h.dbc, in)
	if err != nil {
		t.Fatalf("CreateAssetRecord(%q): %v", in.FileName, err)
	}
	return a
}
