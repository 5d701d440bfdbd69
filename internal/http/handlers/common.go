package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/catalog-backend/internal/http/response"
	"github.com/yungbote/catalog-backend/internal/platform/apierr"
	"github.com/yungbote/catalog-backend/internal/platform/ctxutil"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
	"github.com/yungbote/catalog-backend/internal/services"
)

func requestDBC(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

// respondServiceError writes err as an error envelope. Client errors keep
// their message; server errors are logged and answered generically.
func respondServiceError(c *gin.Context, log *logger.Logger, err error) {
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		ae = apierr.Internal("internal_error", err)
	}
	if ae.Status < http.StatusInternalServerError {
		response.RespondError(c, ae.Status, ae.Code, ae)
		return
	}
	fields := append([]interface{}{"code", ae.Code, "path", c.FullPath(), "error", err}, ctxutil.LogFields(c.Request.Context())...)
	log.Error("Request failed", fields...)
	msg := "The request could not be completed."
	if ae.Status == http.StatusBadGateway {
		msg = "Object storage is unavailable."
	}
	response.RespondError(c, ae.Status, ae.Code, errors.New(msg))
}

func uuidParam(c *gin.Context, name, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, code, fmt.Errorf("%s must be a valid id", name))
		return uuid.Nil, false
	}
	return id, true
}

// queryInt returns 0 for a missing or malformed value; services apply
// their own defaults.
func queryInt(c *gin.Context, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	if err != nil {
		return 0
	}
	return n
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}

type idsRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

// readUpload reads the multipart file in field. At most maxBytes+1 bytes
// are read so the service can reject oversized files.
func readUpload(c *gin.Context, field string, maxBytes int64) (services.UploadedFile, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_file", fmt.Errorf("multipart field %q is required", field))
		return services.UploadedFile{}, false
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_file", err)
		return services.UploadedFile{}, false
	}
	defer f.Close()
	raw, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_file", err)
		return services.UploadedFile{}, false
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(raw)
	}
	return services.UploadedFile{FileName: fh.Filename, ContentType: ct, Data: raw}, true
}
