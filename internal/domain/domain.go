package domain

import (
	"github.com/yungbote/catalog-backend/internal/domain/assets"
	"github.com/yungbote/catalog-backend/internal/domain/catalog"
	"github.com/yungbote/catalog-backend/internal/domain/gallery"
)

const (
	ProductStatusDraft     = catalog.ProductStatusDraft
	ProductStatusPublished = catalog.ProductStatusPublished
	ProductStatusArchived  = catalog.ProductStatusArchived

	FileTypeImage    = assets.FileTypeImage
	FileTypeDocument = assets.FileTypeDocument

	AssetStateActive  = assets.StateActive
	AssetStateTrashed = assets.StateTrashed

	ManagedStoragePrefix = assets.ManagedPrefix
)

type Category = catalog.Category
type CategoryOption = catalog.CategoryOption
type CategoryNode = catalog.CategoryNode
type Product = catalog.Product
type ProductStatus = catalog.ProductStatus
type ProductListRow = catalog.ProductListRow
type Specification = catalog.Specification
type Folder = catalog.Folder

type Asset = assets.Asset
type AssetState = assets.State
type FileType = assets.FileType
type AssetNoteHistory = assets.AssetNoteHistory
type AssetDocument = assets.AssetDocument
type StorageOrphan = assets.StorageOrphan

type Note = gallery.Note
type GalleryImage = gallery.Image

func IsManagedPath(p string) bool { return assets.IsManagedPath(p) }

func FileTypeForName(name string) FileType { return assets.FileTypeForName(name) }

func IsGalleryImageKey(key string) bool { return gallery.IsImageKey(key) }

// Models lists every persisted type in dependency order for migrations.
func Models() []interface{} {
	return []interface{}{
		&Category{},
		&Product{},
		&Asset{},
		&AssetNoteHistory{},
		&AssetDocument{},
		&StorageOrphan{},
		&Note{},
	}
}
