package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/catalog-backend/internal/http/response"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
	"github.com/yungbote/catalog-backend/internal/services"
)

type GalleryHandler struct {
	log     *logger.Logger
	gallery services.GalleryService
}

func NewGalleryHandler(log *logger.Logger, gallery services.GalleryService) *GalleryHandler {
	return &GalleryHandler{log: log.With("handler", "GalleryHandler"), gallery: gallery}
}

// GET /api/gallery?search=&page=&page_size=
func (h *GalleryHandler) List(c *gin.Context) {
	page, err := h.gallery.ListGallery(requestDBC(c), services.GalleryQuery{
		Search:   c.Query("search"),
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "page_size"),
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{
		"images":      page.Images,
		"total":       page.Total,
		"page":        page.Page,
		"total_pages": page.TotalPages,
	})
}

// GET /api/gallery/:key
func (h *GalleryHandler) Get(c *gin.Context) {
	detail, err := h.gallery.GetGalleryImage(requestDBC(c), c.Param("key"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{
		"image":    detail.Image,
		"position": detail.Position,
		"total":    detail.Total,
		"prev_key": detail.PrevKey,
		"next_key": detail.NextKey,
	})
}

type galleryNoteRequest struct {
	Content string `json:"content"`
}

// PUT /api/gallery/:key/note
func (h *GalleryHandler) SaveNote(c *gin.Context) {
	var req galleryNoteRequest
	if !bindJSON(c, &req) {
		return
	}
	note, err := h.gallery.SaveNote(requestDBC(c), c.Param("key"), req.Content)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondMessage(c, "Note saved.", gin.H{"note": note})
}
