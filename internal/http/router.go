package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/catalog-backend/internal/http/handlers"
	httpMW "github.com/yungbote/catalog-backend/internal/http/middleware"
	"github.com/yungbote/catalog-backend/internal/observability"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	MaxUploadBytes int64
	Metrics        *observability.Metrics

	HealthHandler      *httpH.HealthHandler
	CategoryHandler    *httpH.CategoryHandler
	ProductHandler     *httpH.ProductHandler
	AssetHandler       *httpH.AssetHandler
	LegacyHandler      *httpH.LegacyHandler
	GalleryHandler     *httpH.GalleryHandler
	UploadHandler      *httpH.UploadHandler
	MaintenanceHandler *httpH.MaintenanceHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	if cfg.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = cfg.MaxUploadBytes
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "catalog-backend"
	}
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Dashboard + maintenance
		if cfg.MaintenanceHandler != nil {
			api.GET("/stats", cfg.MaintenanceHandler.Stats)
			api.POST("/maintenance/orphans/sweep", cfg.MaintenanceHandler.SweepOrphans)
		}

		// Categories
		if cfg.CategoryHandler != nil {
			api.GET("/categories/tree", cfg.CategoryHandler.GetTree)
			api.GET("/categories/options", cfg.CategoryHandler.ListOptions)
			api.GET("/categories/slug/:slug", cfg.CategoryHandler.GetBySlug)
			api.POST("/categories", cfg.CategoryHandler.Create)
			api.PATCH("/categories/:id", cfg.CategoryHandler.Update)
			api.GET("/categories/:id/products", cfg.CategoryHandler.ListProducts)
		}

		// Products + folders
		if cfg.ProductHandler != nil {
			api.GET("/products", cfg.ProductHandler.List)
			api.POST("/products", cfg.ProductHandler.Create)
			api.GET("/products/:id", cfg.ProductHandler.Get)
			api.PUT("/products/:id", cfg.ProductHandler.Update)
			api.DELETE("/products/:id", cfg.ProductHandler.Delete)
			api.GET("/products/:id/assets", cfg.ProductHandler.ListAssets)
			api.POST("/products/:id/assets", cfg.ProductHandler.UploadAsset)
			api.GET("/folders", cfg.ProductHandler.ListFolders)
			api.POST("/folders", cfg.ProductHandler.CreateFolder)
		}

		// Assets + trash
		if cfg.AssetHandler != nil {
			api.GET("/assets", cfg.AssetHandler.List)
			api.POST("/assets", cfg.AssetHandler.CreateRecord)
			api.GET("/assets/unassigned", cfg.AssetHandler.ListUnassigned)
			api.POST("/assets/bulk-delete", cfg.AssetHandler.BulkDelete)
			api.POST("/assets/bulk-assign", cfg.AssetHandler.BulkAssign)
			api.PUT("/assets/:id/note", cfg.AssetHandler.UpdateNote)
			api.GET("/assets/:id/notes", cfg.AssetHandler.ListNotes)
			api.DELETE("/assets/:id", cfg.AssetHandler.Delete)
			api.POST("/assets/:id/assign", cfg.AssetHandler.Assign)
			api.GET("/assets/:id/documents", cfg.AssetHandler.ListDocuments)
			api.POST("/assets/:id/documents", cfg.AssetHandler.AddDocument)

			api.GET("/trash", cfg.AssetHandler.ListTrash)
			api.POST("/trash/restore", cfg.AssetHandler.Restore)
			api.POST("/trash/purge", cfg.AssetHandler.Purge)
		}

		// Legacy bucket
		if cfg.LegacyHandler != nil {
			api.GET("/legacy/files", cfg.LegacyHandler.UnlinkedFiles)
			api.POST("/legacy/link", cfg.LegacyHandler.Link)
		}
		if cfg.GalleryHandler != nil {
			api.GET("/gallery", cfg.GalleryHandler.List)
			api.GET("/gallery/:key", cfg.GalleryHandler.Get)
			api.PUT("/gallery/:key/note", cfg.GalleryHandler.SaveNote)
		}

		if cfg.UploadHandler != nil {
			api.POST("/uploads/documents", cfg.UploadHandler.UploadDocument)
		}
	}

	return r
}
