package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/catalog-backend/internal/http/response"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
	"github.com/yungbote/catalog-backend/internal/services"
)

type UploadHandler struct {
	log      *logger.Logger
	uploads  services.UploadService
	maxBytes int64
}

func NewUploadHandler(log *logger.Logger, uploads services.UploadService, maxUploadBytes int64) *UploadHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = services.DefaultUploadMaxBytes
	}
	return &UploadHandler{log: log.With("handler", "UploadHandler"), uploads: uploads, maxBytes: maxUploadBytes}
}

// POST /api/uploads/documents (multipart "file")
func (h *UploadHandler) UploadDocument(c *gin.Context) {
	f, ok := readUpload(c, "file", h.maxBytes)
	if !ok {
		return
	}
	res, err := h.uploads.UploadDocument(requestDBC(c), f)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"path": res.Path, "url": res.URL})
}
