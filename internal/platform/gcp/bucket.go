package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

type BucketCategory string

const (
	// BucketCategoryProducts is the managed bucket. Objects under products/
	// and documents/ are written and removed by this service.
	BucketCategoryProducts BucketCategory = "products"
	// BucketCategoryLegacy is the flat pre-migration image bucket. It is
	// listed and read, never deleted from.
	BucketCategoryLegacy BucketCategory = "images"
)

const listPageSize = 100

// ErrObjectExists is returned by UploadFile when NoOverwrite is set and the key is taken.
var ErrObjectExists = errors.New("object already exists")

type bucketConfig struct {
	name      string
	cdnDomain string
}

type UploadOptions struct {
	ContentType  string
	CacheControl string
	NoOverwrite  bool
}

type ObjectEntry struct {
	Name        string
	Size        int64
	ContentType string
	Updated     time.Time
}

type BucketService interface {
	UploadFile(dbc dbctx.Context, category BucketCategory, key string, file io.Reader, opts UploadOptions) error
	// DeleteFile removes one object. Deleting a missing object is a no-op.
	DeleteFile(dbc dbctx.Context, category BucketCategory, key string) error
	// ListObjects returns every object under prefix in name order, skipping
	// directory placeholders. Only the top level is listed.
	ListObjects(ctx context.Context, category BucketCategory, prefix string) ([]ObjectEntry, error)
	EnsureBucket(ctx context.Context, category BucketCategory, projectID string) (bool, error)
	BucketName(category BucketCategory) string
	GetPublicURL(category BucketCategory, key string) string
}

type bucketService struct {
	log            *logger.Logger
	storageClient  *storage.Client
	storageMode    ObjectStorageMode
	emulatorHost   string
	productsBucket bucketConfig
	legacyBucket   bucketConfig
	publicBaseURL  string
}

func NewBucketService(log *logger.Logger, storageCfg ObjectStorageConfig) (BucketService, error) {
	if err := ValidateObjectStorageConfig(storageCfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	serviceLog := log.With("service", "BucketService")

	stClient, err := newStorageClientForMode(context.Background(), storageCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	serviceLog.Info(
		"Object storage initialized",
		"mode", storageCfg.Mode,
		"mode_source", storageCfg.ModeSource(),
		"emulator_host", storageCfg.EmulatorHost,
		"public_base_url", storageCfg.PublicBaseURL,
		"products_bucket", storageCfg.Products.Name,
		"legacy_bucket", storageCfg.Legacy.Name,
	)

	return &bucketService{
		log:            serviceLog,
		storageClient:  stClient,
		storageMode:    storageCfg.Mode,
		emulatorHost:   storageCfg.EmulatorHost,
		productsBucket: bucketConfig{name: storageCfg.Products.Name, cdnDomain: storageCfg.Products.CDNDomain},
		legacyBucket:   bucketConfig{name: storageCfg.Legacy.Name, cdnDomain: storageCfg.Legacy.CDNDomain},
		publicBaseURL:  storageCfg.PublicBaseURL,
	}, nil
}

func newStorageClientForMode(ctx context.Context, storageCfg ObjectStorageConfig) (*storage.Client, error) {
	switch storageCfg.Mode {
	case ObjectStorageModeGCS:
		opts := clientOptions(storageCfg)
		opts = append(opts, option.WithScopes(storage.ScopeFullControl))
		return storage.NewClient(ctx, opts...)
	case ObjectStorageModeGCSEmulator:
		_ = os.Setenv("STORAGE_EMULATOR_HOST", storageCfg.EmulatorHost)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Value: string(storageCfg.Mode)}
	}
}

func (bs *bucketService) getBucketConfig(category BucketCategory) (bucketConfig, error) {
	switch category {
	case BucketCategoryProducts:
		return bs.productsBucket, nil
	case BucketCategoryLegacy:
		return bs.legacyBucket, nil
	default:
		return bucketConfig{}, fmt.Errorf("unknown bucket category: %s", category)
	}
}

func (bs *bucketService) BucketName(category BucketCategory) string {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return ""
	}
	return cfg.name
}

func (bs *bucketService) UploadFile(dbc dbctx.Context, category BucketCategory, key string, file io.Reader, opts UploadOptions) error {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(dbc.Ctx, 2*time.Minute)
	defer cancel()

	obj := bs.storageClient.Bucket(cfg.name).Object(key)
	if opts.NoOverwrite {
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	}
	w := obj.NewWriter(ctx)
	w.ContentType = opts.ContentType
	if w.ContentType == "" {
		w.ContentType = ContentTypeForKey(key)
	}
	if opts.CacheControl != "" {
		w.CacheControl = opts.CacheControl
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		if isPreconditionFailed(err) {
			return fmt.Errorf("upload %q: %w", key, ErrObjectExists)
		}
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}

func (bs *bucketService) DeleteFile(dbc dbctx.Context, category BucketCategory, key string) error {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(dbc.Ctx, 30*time.Second)
	defer cancel()
	if err := bs.storageClient.Bucket(cfg.name).Object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil
		}
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, cfg.name, err)
	}
	return nil
}

func (bs *bucketService) ListObjects(ctx context.Context, category BucketCategory, prefix string) ([]ObjectEntry, error) {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	it := bs.storageClient.Bucket(cfg.name).Objects(ctx, &storage.Query{Prefix: prefix, Delimiter: "/"})
	pager := iterator.NewPager(it, listPageSize, "")
	out := []ObjectEntry{}
	for {
		var page []*storage.ObjectAttrs
		next, err := pager.NextPage(&page)
		if err != nil {
			return nil, fmt.Errorf("list %q in bucket %q: %w", prefix, cfg.name, err)
		}
		for _, attrs := range page {
			if attrs == nil || attrs.Name == "" || isPlaceholderKey(attrs.Name) {
				continue
			}
			out = append(out, ObjectEntry{
				Name:        attrs.Name,
				Size:        attrs.Size,
				ContentType: attrs.ContentType,
				Updated:     attrs.Updated,
			})
		}
		if next == "" || len(page) < listPageSize {
			break
		}
	}
	return out, nil
}

func isPlaceholderKey(name string) bool {
	return strings.HasSuffix(name, "/") || path.Base(name) == ".emptyFolderPlaceholder"
}

// EnsureBucket creates the bucket when it does not exist and reports whether
// it did.
func (bs *bucketService) EnsureBucket(ctx context.Context, category BucketCategory, projectID string) (bool, error) {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return false, err
	}
	handle := bs.storageClient.Bucket(cfg.name)
	if _, err := handle.Attrs(ctx); err == nil {
		return false, nil
	} else if !errors.Is(err, storage.ErrBucketNotExist) {
		return false, fmt.Errorf("bucket attrs %q: %w", cfg.name, err)
	}
	if strings.TrimSpace(projectID) == "" {
		return false, fmt.Errorf("bucket %q does not exist and no project id was given", cfg.name)
	}
	attrs := &storage.BucketAttrs{
		UniformBucketLevelAccess: storage.UniformBucketLevelAccess{Enabled: true},
	}
	if err := handle.Create(ctx, projectID, attrs); err != nil {
		return false, fmt.Errorf("create bucket %q: %w", cfg.name, err)
	}
	bs.log.Info("Bucket created", "bucket", cfg.name, "category", category)
	return true, nil
}

func (bs *bucketService) GetPublicURL(category BucketCategory, key string) string {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return key
	}
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if cfg.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", cfg.cdnDomain, key)
	}
	if bs.storageMode == ObjectStorageModeGCSEmulator {
		if u := bs.emulatorObjectMediaURL(cfg.name, key); u != "" {
			return u
		}
	}
	if bs.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", bs.publicBaseURL, cfg.name, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", cfg.name, key)
}

func (bs *bucketService) emulatorObjectMediaURL(bucket, key string) string {
	base := strings.TrimRight(strings.TrimSpace(bs.publicBaseURL), "/")
	if base == "" {
		base = strings.TrimRight(strings.TrimSpace(bs.emulatorHost), "/")
	}
	if base == "" {
		return ""
	}
	return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", base, url.PathEscape(bucket), url.PathEscape(key))
}

// ContentTypeForKey maps the extensions this catalog stores to MIME types.
func ContentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch path.Ext(s) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".svg":
		return "image/svg+xml"
	case ".pdf":
		return "application/pdf"
	default:
		return ""
	}
}
