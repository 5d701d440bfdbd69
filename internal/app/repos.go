package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/data/repos"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

type Repos struct {
	Category      repos.CategoryRepo
	Product       repos.ProductRepo
	Asset         repos.AssetRepo
	NoteHistory   repos.NoteHistoryRepo
	AssetDocument repos.AssetDocumentRepo
	StorageOrphan repos.StorageOrphanRepo
	Note          repos.NoteRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Category:      repos.NewCategoryRepo(db, log),
		Product:       repos.NewProductRepo(db, log),
		Asset:         repos.NewAssetRepo(db, log),
		NoteHistory:   repos.NewNoteHistoryRepo(db, log),
		AssetDocument: repos.NewAssetDocumentRepo(db, log),
		StorageOrphan: repos.NewStorageOrphanRepo(db, log),
		Note:          repos.NewNoteRepo(db, log),
	}
}
