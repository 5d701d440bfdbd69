package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/platform/logger"
	"github.com/yungbote/catalog-backend/internal/services"
)

type Services struct {
	Listing     *services.LegacyListing
	Category    services.CategoryService
	Product     services.ProductService
	Asset       services.AssetService
	Legacy      services.LegacyService
	Gallery     services.GalleryService
	Upload      services.UploadService
	OrphanSweep services.OrphanSweepService
	Stats       services.StatsService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, clients Clients, r Repos) Services {
	log.Info("Wiring services...")

	listing := services.NewLegacyListing(log, clients.Bucket, clients.Cache, cfg.ListingCacheTTL)
	assets := services.NewAssetService(db, log, r.Asset, r.NoteHistory, r.AssetDocument, r.Product, r.StorageOrphan, clients.Bucket, listing)

	return Services{
		Listing:     listing,
		Category:    services.NewCategoryService(log, r.Category, r.Product),
		Product:     services.NewProductService(log, r.Product, r.Category, r.Asset, r.AssetDocument, r.StorageOrphan, clients.Bucket, listing),
		Asset:       assets,
		Legacy:      services.NewLegacyService(log, listing, r.Asset, r.Product, assets),
		Gallery:     services.NewGalleryService(log, listing, r.Note),
		Upload:      services.NewUploadService(log, clients.Bucket, assets, r.Asset, r.Product, r.AssetDocument, r.StorageOrphan, cfg.UploadMaxBytes),
		OrphanSweep: services.NewOrphanSweepService(log, clients.Bucket, r.StorageOrphan),
		Stats:       services.NewStatsService(log, r.Product, r.Category, r.Asset, r.StorageOrphan),
	}
}
