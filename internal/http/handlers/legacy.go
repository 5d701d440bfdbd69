package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/catalog-backend/internal/http/response"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
	"github.com/yungbote/catalog-backend/internal/services"
)

type LegacyHandler struct {
	log    *logger.Logger
	legacy services.LegacyService
}

func NewLegacyHandler(log *logger.Logger, legacy services.LegacyService) *LegacyHandler {
	return &LegacyHandler{log: log.With("handler", "LegacyHandler"), legacy: legacy}
}

// GET /api/legacy/files?page=&limit=
func (h *LegacyHandler) UnlinkedFiles(c *gin.Context) {
	page, err := h.legacy.GetUnlinkedFiles(requestDBC(c), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{
		"files":       page.Files,
		"total":       page.Total,
		"page":        page.Page,
		"total_pages": page.TotalPages,
	})
}

type linkRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	FileName  string    `json:"file_name"`
}

// POST /api/legacy/link
func (h *LegacyHandler) Link(c *gin.Context) {
	var req linkRequest
	if !bindJSON(c, &req) {
		return
	}
	asset, err := h.legacy.LinkFile(requestDBC(c), req.ProductID, req.FileName)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondMessage(c, "File linked.", gin.H{"asset": asset})
}
