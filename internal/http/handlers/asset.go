package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/catalog-backend/internal/http/response"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
	"github.com/yungbote/catalog-backend/internal/services"
)

type AssetHandler struct {
	log      *logger.Logger
	assets   services.AssetService
	uploads  services.UploadService
	maxBytes int64
}

func NewAssetHandler(log *logger.Logger, assets services.AssetService, uploads services.UploadService, maxUploadBytes int64) *AssetHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = services.DefaultUploadMaxBytes
	}
	return &AssetHandler{
		log:      log.With("handler", "AssetHandler"),
		assets:   assets,
		uploads:  uploads,
		maxBytes: maxUploadBytes,
	}
}

func respondAssetPage(c *gin.Context, page *services.AssetPage) {
	response.RespondOK(c, gin.H{
		"assets":      page.Assets,
		"total_count": page.TotalCount,
		"page":        page.Page,
		"total_pages": page.TotalPages,
	})
}

// GET /api/assets?page=&page_size=&search=
func (h *AssetHandler) List(c *gin.Context) {
	page, err := h.assets.ListAssets(requestDBC(c), services.AssetQuery{
		Search:   c.Query("search"),
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "page_size"),
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondAssetPage(c, page)
}

// GET /api/assets/unassigned
func (h *AssetHandler) ListUnassigned(c *gin.Context) {
	page, err := h.assets.ListUnassignedAssets(requestDBC(c), queryInt(c, "page"), queryInt(c, "page_size"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondAssetPage(c, page)
}

// POST /api/assets records an object that is already in storage.
func (h *AssetHandler) CreateRecord(c *gin.Context) {
	var in services.CreateAssetInput
	if !bindJSON(c, &in) {
		return
	}
	asset, err := h.assets.CreateAssetRecord(requestDBC(c), in)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"asset": asset})
}

type noteRequest struct {
	Note string `json:"note"`
}

// PUT /api/assets/:id/note
func (h *AssetHandler) UpdateNote(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_asset_id")
	if !ok {
		return
	}
	var req noteRequest
	if !bindJSON(c, &req) {
		return
	}
	asset, err := h.assets.UpdateNote(requestDBC(c), id, req.Note)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondMessage(c, "Note saved.", gin.H{"asset": asset})
}

// GET /api/assets/:id/notes
func (h *AssetHandler) ListNotes(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_asset_id")
	if !ok {
		return
	}
	history, err := h.assets.GetNoteHistory(requestDBC(c), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"history": history})
}

// DELETE /api/assets/:id moves the asset to the trash.
func (h *AssetHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_asset_id")
	if !ok {
		return
	}
	if err := h.assets.DeleteAsset(requestDBC(c), id); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondMessage(c, "Asset moved to trash.", nil)
}

// POST /api/assets/bulk-delete
func (h *AssetHandler) BulkDelete(c *gin.Context) {
	var req idsRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.assets.BulkDeleteAssets(requestDBC(c), req.IDs)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondMessage(c, "Assets moved to trash.", gin.H{"count": n})
}

type bulkAssignRequest struct {
	IDs       []uuid.UUID `json:"ids"`
	ProductID uuid.UUID   `json:"product_id"`
}

// POST /api/assets/bulk-assign
func (h *AssetHandler) BulkAssign(c *gin.Context) {
	var req bulkAssignRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.assets.BulkAssignAssets(requestDBC(c), req.IDs, req.ProductID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondMessage(c, "Assets assigned.", gin.H{"count": n})
}

type assignRequest struct {
	ProductID uuid.UUID `json:"product_id"`
}

// POST /api/assets/:id/assign
func (h *AssetHandler) Assign(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_asset_id")
	if !ok {
		return
	}
	var req assignRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.assets.AssignAsset(requestDBC(c), id, req.ProductID); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondMessage(c, "Asset assigned.", nil)
}

// GET /api/assets/:id/documents
func (h *AssetHandler) ListDocuments(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_asset_id")
	if !ok {
		return
	}
	docs, err := h.assets.ListDocuments(requestDBC(c), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"documents": docs})
}

// POST /api/assets/:id/documents (multipart "file")
func (h *AssetHandler) AddDocument(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_asset_id")
	if !ok {
		return
	}
	f, ok := readUpload(c, "file", h.maxBytes)
	if !ok {
		return
	}
	doc, err := h.uploads.AddAssetDocument(requestDBC(c), id, f)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"document": doc})
}

// GET /api/trash
func (h *AssetHandler) ListTrash(c *gin.Context) {
	trashed, err := h.assets.GetDeletedAssets(requestDBC(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"assets": trashed})
}

// POST /api/trash/restore
func (h *AssetHandler) Restore(c *gin.Context) {
	var req idsRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.assets.RestoreAssets(requestDBC(c), req.IDs)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondMessage(c, "Assets restored.", gin.H{"count": n})
}

// POST /api/trash/purge
func (h *AssetHandler) Purge(c *gin.Context) {
	var req idsRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.assets.PurgeAssets(requestDBC(c), req.IDs)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondMessage(c, "Assets permanently deleted.", gin.H{
		"purged":   res.Purged,
		"skipped":  res.Skipped,
		"orphaned": res.Orphaned,
	})
}
