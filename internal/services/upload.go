package services

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/catalog-backend/internal/data/repos"
	types "github.com/yungbote/catalog-backend/internal/domain"
	"github.com/yungbote/catalog-backend/internal/platform/apierr"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/gcp"
	"github.com/yungbote/catalog-backend/internal/platform/imageinfo"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

const (
	DefaultUploadMaxBytes = 10 << 20
	documentsPrefix       = "documents/"
	uploadCacheControl    = "public, max-age=31536000"
)

// allowedUploadTypes maps accepted MIME types to the extension used for
// generated keys.
var allowedUploadTypes = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/webp":      ".webp",
	"image/gif":       ".gif",
	"application/pdf": ".pdf",
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

type UploadedFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

type UploadResult struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

type UploadService interface {
	// UploadProductAsset stores the file under products/{productId}/ and
	// records it as an asset. Storage errors abort the operation.
	UploadProductAsset(dbc dbctx.Context, productID uuid.UUID, f UploadedFile) (*types.Asset, error)
	UploadDocument(dbc dbctx.Context, f UploadedFile) (*UploadResult, error)
	AddAssetDocument(dbc dbctx.Context, assetID uuid.UUID, f UploadedFile) (*types.AssetDocument, error)
}

type uploadService struct {
	log         *logger.Logger
	bucket      gcp.BucketService
	assets      AssetService
	assetRepo   repos.AssetRepo
	productRepo repos.ProductRepo
	docRepo     repos.AssetDocumentRepo
	cleanup     *storageCleanup
	maxBytes    int64
	now         func() time.Time
}

func NewUploadService(
	log *logger.Logger,
	bucket gcp.BucketService,
	assets AssetService,
	assetRepo repos.AssetRepo,
	productRepo repos.ProductRepo,
	docRepo repos.AssetDocumentRepo,
	orphanRepo repos.StorageOrphanRepo,
	maxBytes int64,
) UploadService {
	if maxBytes <= 0 {
		maxBytes = DefaultUploadMaxBytes
	}
	serviceLog := log.With("service", "UploadService")
	return &uploadService{
		log:         serviceLog,
		bucket:      bucket,
		assets:      assets,
		assetRepo:   assetRepo,
		productRepo: productRepo,
		docRepo:     docRepo,
		cleanup:     newStorageCleanup(serviceLog, bucket, orphanRepo),
		maxBytes:    maxBytes,
		now:         time.Now,
	}
}

// checkFile resolves the file's MIME type and rejects anything outside the
// allow-list or over the size limit.
func (s *uploadService) checkFile(f UploadedFile) (string, error) {
	if len(f.Data) == 0 {
		return "", apierr.BadRequest("invalid_file", "file is empty")
	}
	if int64(len(f.Data)) > s.maxBytes {
		return "", apierr.BadRequest("file_too_large", fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}
	ct := strings.ToLower(strings.TrimSpace(f.ContentType))
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		ct = mt
	}
	if ct == "" || ct == "application/octet-stream" {
		ct = gcp.ContentTypeForKey(f.FileName)
	}
	if _, ok := allowedUploadTypes[ct]; !ok {
		return "", apierr.BadRequest("unsupported_file_type", "only PNG, JPEG, WEBP, GIF and PDF files are accepted")
	}
	return ct, nil
}

func (s *uploadService) requireBucket() error {
	if s.bucket == nil {
		return apierr.New(http.StatusBadGateway, "storage_unavailable", errors.New("object storage is not configured"))
	}
	return nil
}

func (s *uploadService) put(dbc dbctx.Context, key, contentType string, data []byte, noOverwrite bool) error {
	err := s.bucket.UploadFile(dbc, gcp.BucketCategoryProducts, key, bytes.NewReader(data), gcp.UploadOptions{
		ContentType:  contentType,
		CacheControl: uploadCacheControl,
		NoOverwrite:  noOverwrite,
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, gcp.ErrObjectExists) {
		return apierr.Conflict("file_exists", "a file with this name already exists")
	}
	s.log.Error("Upload failed", "storage_path", key, "error", err)
	return apierr.New(http.StatusBadGateway, "upload_failed", err)
}

func productAssetKey(productID uuid.UUID, ext string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s%s/%s%s", types.ManagedStoragePrefix, productID, token, ext)
}

func (s *uploadService) UploadProductAsset(dbc dbctx.Context, productID uuid.UUID, f UploadedFile) (*types.Asset, error) {
	ct, err := s.checkFile(f)
	if err != nil {
		return nil, err
	}
	if err := s.requireBucket(); err != nil {
		return nil, err
	}
	ok, err := s.productRepo.Exists(dbc, productID)
	if err != nil {
		return nil, apierr.Internal("upload_failed", err)
	}
	if !ok {
		return nil, apierr.NotFound("product_not_found", "product not found")
	}

	key := productAssetKey(productID, allowedUploadTypes[ct])
	if err := s.put(dbc, key, ct, f.Data, false); err != nil {
		return nil, err
	}

	in := CreateAssetInput{
		ProductID:   &productID,
		FileName:    displayName(f.FileName, key),
		FileType:    types.FileTypeImage,
		FileURL:     s.bucket.GetPublicURL(gcp.BucketCategoryProducts, key),
		StoragePath: key,
	}
	if ct == "application/pdf" {
		in.FileType = types.FileTypeDocument
	} else if info, err := imageinfo.Sniff(f.Data); err == nil {
		in.Width, in.Height = &info.Width, &info.Height
	} else {
		s.log.Debug("Image dimensions unavailable", "storage_path", key, "error", err)
	}

	asset, err := s.assets.CreateAssetRecord(dbc, in)
	if err != nil {
		// The object has no row pointing at it; hand it to the orphan log.
		s.cleanup.Remove(dbctx.Context{Ctx: dbc.Ctx}, gcp.BucketCategoryProducts, []string{key})
		return nil, err
	}
	return asset, nil
}

func (s *uploadService) documentKey(fileName string) string {
	return fmt.Sprintf("%s%d-%s", documentsPrefix, s.now().UnixMilli(), SanitizeFileName(fileName))
}

func (s *uploadService) UploadDocument(dbc dbctx.Context, f UploadedFile) (*UploadResult, error) {
	ct, err := s.checkFile(f)
	if err != nil {
		return nil, err
	}
	if err := s.requireBucket(); err != nil {
		return nil, err
	}
	key := s.documentKey(f.FileName)
	if err := s.put(dbc, key, ct, f.Data, true); err != nil {
		return nil, err
	}
	return &UploadResult{Path: key, URL: s.bucket.GetPublicURL(gcp.BucketCategoryProducts, key)}, nil
}

func (s *uploadService) AddAssetDocument(dbc dbctx.Context, assetID uuid.UUID, f UploadedFile) (*types.AssetDocument, error) {
	ct, err := s.checkFile(f)
	if err != nil {
		return nil, err
	}
	if err := s.requireBucket(); err != nil {
		return nil, err
	}
	asset, err := s.assetRepo.GetByID(dbc, assetID)
	if err != nil {
		return nil, apierr.Internal("document_upload_failed", err)
	}
	if asset == nil {
		return nil, apierr.NotFound("asset_not_found", "asset not found")
	}
	key := s.documentKey(f.FileName)
	if err := s.put(dbc, key, ct, f.Data, true); err != nil {
		return nil, err
	}
	doc, err := s.docRepo.Create(dbc, &types.AssetDocument{
		AssetID:     assetID,
		FileName:    displayName(f.FileName, key),
		FileURL:     s.bucket.GetPublicURL(gcp.BucketCategoryProducts, key),
		FileSize:    int64(len(f.Data)),
		StoragePath: key,
	})
	if err != nil {
		s.cleanup.Remove(dbctx.Context{Ctx: dbc.Ctx}, gcp.BucketCategoryProducts, []string{key})
		s.log.Error("Document record failed", "asset_id", assetID, "error", err)
		return nil, apierr.Internal("document_upload_failed", err)
	}
	return doc, nil
}

// SanitizeFileName replaces everything outside [a-zA-Z0-9.-] with '_'.
func SanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	return unsafeNameChars.ReplaceAllString(name, "_")
}

func displayName(original, key string) string {
	if n := strings.TrimSpace(original); n != "" {
		return path.Base(strings.ReplaceAll(n, `\`, "/"))
	}
	return path.Base(key)
}
