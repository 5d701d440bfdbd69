package app

import (
	internalhttp "github.com/yungbote/catalog-backend/internal/http"
	"github.com/yungbote/catalog-backend/internal/observability"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, h Handlers) *internalhttp.Server {
	log.Info("Wiring router...")
	return internalhttp.NewServer(internalhttp.RouterConfig{
		Log:                log,
		ServiceName:        cfg.Otel.ServiceName,
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		MaxUploadBytes:     cfg.UploadMaxBytes,
		Metrics:            observability.Current(),
		HealthHandler:      h.Health,
		CategoryHandler:    h.Category,
		ProductHandler:     h.Product,
		AssetHandler:       h.Asset,
		LegacyHandler:      h.Legacy,
		GalleryHandler:     h.Gallery,
		UploadHandler:      h.Upload,
		MaintenanceHandler: h.Maintenance,
	})
}
