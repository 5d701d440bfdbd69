package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/catalog-backend/internal/http/response"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
	"github.com/yungbote/catalog-backend/internal/services"
)

type ProductHandler struct {
	log      *logger.Logger
	products services.ProductService
	assets   services.AssetService
	uploads  services.UploadService
	maxBytes int64
}

func NewProductHandler(
	log *logger.Logger,
	products services.ProductService,
	assets services.AssetService,
	uploads services.UploadService,
	maxUploadBytes int64,
) *ProductHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = services.DefaultUploadMaxBytes
	}
	return &ProductHandler{
		log:      log.With("handler", "ProductHandler"),
		products: products,
		assets:   assets,
		uploads:  uploads,
		maxBytes: maxUploadBytes,
	}
}

// GET /api/products?page=&page_size=&search=&category_id=
func (h *ProductHandler) List(c *gin.Context) {
	q := services.ProductQuery{
		Search:   c.Query("search"),
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "page_size"),
	}
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_category_id", err)
			return
		}
		q.CategoryID = &id
	}
	page, err := h.products.ListProducts(requestDBC(c), q)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{
		"products":    page.Products,
		"total_count": page.TotalCount,
		"page":        page.Page,
		"total_pages": page.TotalPages,
	})
}

// POST /api/products
func (h *ProductHandler) Create(c *gin.Context) {
	var in services.ProductInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.products.CreateProduct(requestDBC(c), in)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"product": p})
}

// GET /api/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_product_id")
	if !ok {
		return
	}
	p, err := h.products.GetProduct(requestDBC(c), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"product": p})
}

// PUT /api/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_product_id")
	if !ok {
		return
	}
	var in services.ProductInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.products.UpdateProduct(requestDBC(c), id, in)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"product": p})
}

// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_product_id")
	if !ok {
		return
	}
	res, err := h.products.DeleteProduct(requestDBC(c), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondMessage(c, "Product deleted.", gin.H{
		"removed_objects": res.RemovedObjects,
		"orphaned":        res.Orphaned,
	})
}

// GET /api/products/:id/assets
func (h *ProductHandler) ListAssets(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_product_id")
	if !ok {
		return
	}
	out, err := h.assets.GetProductAssets(requestDBC(c), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"images": out.Images, "documents": out.Documents})
}

// POST /api/products/:id/assets (multipart "file")
func (h *ProductHandler) UploadAsset(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_product_id")
	if !ok {
		return
	}
	f, ok := readUpload(c, "file", h.maxBytes)
	if !ok {
		return
	}
	asset, err := h.uploads.UploadProductAsset(requestDBC(c), id, f)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"asset": asset})
}

// GET /api/folders
func (h *ProductHandler) ListFolders(c *gin.Context) {
	folders, err := h.products.ListFolders(requestDBC(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"folders": folders})
}

type createFolderRequest struct {
	Name string `json:"name"`
}

// POST /api/folders
func (h *ProductHandler) CreateFolder(c *gin.Context) {
	var req createFolderRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.products.CreateFolder(requestDBC(c), req.Name)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"folder": p})
}
