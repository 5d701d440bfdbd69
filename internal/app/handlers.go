package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/catalog-backend/internal/http/handlers"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

type Handlers struct {
	Health      *httpH.HealthHandler
	Category    *httpH.CategoryHandler
	Product     *httpH.ProductHandler
	Asset       *httpH.AssetHandler
	Legacy      *httpH.LegacyHandler
	Gallery     *httpH.GalleryHandler
	Upload      *httpH.UploadHandler
	Maintenance *httpH.MaintenanceHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, cfg Config, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(db),
		Category:    httpH.NewCategoryHandler(log, s.Category),
		Product:     httpH.NewProductHandler(log, s.Product, s.Asset, s.Upload, cfg.UploadMaxBytes),
		Asset:       httpH.NewAssetHandler(log, s.Asset, s.Upload, cfg.UploadMaxBytes),
		Legacy:      httpH.NewLegacyHandler(log, s.Legacy),
		Gallery:     httpH.NewGalleryHandler(log, s.Gallery),
		Upload:      httpH.NewUploadHandler(log, s.Upload, cfg.UploadMaxBytes),
		Maintenance: httpH.NewMaintenanceHandler(log, s.Stats, s.OrphanSweep),
	}
}
