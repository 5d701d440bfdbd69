package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/catalog-backend/internal/http/response"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
	"github.com/yungbote/catalog-backend/internal/services"
)

type CategoryHandler struct {
	log        *logger.Logger
	categories services.CategoryService
}

func NewCategoryHandler(log *logger.Logger, categories services.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		log:        log.With("handler", "CategoryHandler"),
		categories: categories,
	}
}

// GET /api/categories/tree
func (h *CategoryHandler) GetTree(c *gin.Context) {
	tree, err := h.categories.GetCategoryTree(requestDBC(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"categories": tree})
}

// GET /api/categories/options
func (h *CategoryHandler) ListOptions(c *gin.Context) {
	opts, err := h.categories.ListCategoryOptions(requestDBC(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"categories": opts})
}

// GET /api/categories/slug/:slug
func (h *CategoryHandler) GetBySlug(c *gin.Context) {
	cat, err := h.categories.GetCategoryBySlug(requestDBC(c), c.Param("slug"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"category": cat})
}

// POST /api/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var in services.CategoryInput
	if !bindJSON(c, &in) {
		return
	}
	cat, err := h.categories.CreateCategory(requestDBC(c), in)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"category": cat})
}

// PATCH /api/categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_category_id")
	if !ok {
		return
	}
	var in services.CategoryUpdate
	if !bindJSON(c, &in) {
		return
	}
	cat, err := h.categories.UpdateCategory(requestDBC(c), id, in)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"category": cat})
}

// GET /api/categories/:id/products
func (h *CategoryHandler) ListProducts(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_category_id")
	if !ok {
		return
	}
	products, err := h.categories.ListProductsByCategory(requestDBC(c), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"products": products})
}
