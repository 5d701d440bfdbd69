package repos

import (
	"github.com/yungbote/catalog-backend/internal/data/repos/assets"
	"github.com/yungbote/catalog-backend/internal/data/repos/catalog"
	"github.com/yungbote/catalog-backend/internal/data/repos/gallery"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type CategoryRepo = catalog.CategoryRepo
type ProductRepo = catalog.ProductRepo
type ProductFilter = catalog.ProductFilter

type AssetRepo = assets.AssetRepo
type AssetFilter = assets.AssetFilter
type NoteHistoryRepo = assets.NoteHistoryRepo
type AssetDocumentRepo = assets.AssetDocumentRepo
type StorageOrphanRepo = assets.StorageOrphanRepo

type NoteRepo = gallery.NoteRepo

func NewCategoryRepo(db *gorm.DB, log *logger.Logger) CategoryRepo {
	return catalog.NewCategoryRepo(db, log)
}
func NewProductRepo(db *gorm.DB, log *logger.Logger) ProductRepo {
	return catalog.NewProductRepo(db, log)
}
func NewAssetRepo(db *gorm.DB, log *logger.Logger) AssetRepo {
	return assets.NewAssetRepo(db, log)
}
func NewNoteHistoryRepo(db *gorm.DB, log *logger.Logger) NoteHistoryRepo {
	return assets.NewNoteHistoryRepo(db, log)
}
func NewAssetDocumentRepo(db *gorm.DB, log *logger.Logger) AssetDocumentRepo {
	return assets.NewAssetDocumentRepo(db, log)
}
func NewStorageOrphanRepo(db *gorm.DB, log *logger.Logger) StorageOrphanRepo {
	return assets.NewStorageOrphanRepo(db, log)
}
func NewNoteRepo(db *gorm.DB, log *logger.Logger) NoteRepo {
	return gallery.NewNoteRepo(db, log)
}
