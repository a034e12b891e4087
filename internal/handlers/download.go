package handlers

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"media-storage-backend/internal/media"
	"media-storage-backend/internal/models"
)

type DownloadHandler struct {
	resolver *media.Resolver
	archiver *media.Archiver
	isDev    bool
}

func NewDownloadHandler(resolver *media.Resolver, archiver *media.Archiver, isDev bool) *DownloadHandler {
	return &DownloadHandler{resolver: resolver, archiver: archiver, isDev: isDev}
}

// Download godoc
// @Summary     Download one stored object as an attachment
// @Tags        media
// @Security    Bearer
// @Param       id path string true "Public file id"
// @Param       name query string false "Override for the downloaded file name"
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /media/download/{id} [get]
func (h *DownloadHandler) Download(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	publicID := c.Param("id")
	rc, err := h.resolver.Resolve(c.Request.Context(), publicID, userID)
	if err != nil {
		writeError(c, err, h.isDev)
		return
	}
	defer rc.Close()

	name := c.Query("name")
	if name == "" {
		name = publicID
	} else {
		name += filepath.Ext(publicID)
	}

	contentType := mime.TypeByExtension(filepath.Ext(publicID))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Status(http.StatusOK)
	io.Copy(c.Writer, rc)
}

// DownloadArchive godoc
// @Summary     Download a set of stored objects as one zip
// @Description Streams a zip with one entry per requested id, in request
// @Description order. Any unresolvable id fails the whole archive.
// @Tags        media
// @Accept      json
// @Security    Bearer
// @Param       name query string false "Archive file name without extension"
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /media/download/files [post]
func (h *DownloadHandler) DownloadArchive(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.DownloadFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	name := c.Query("name")
	if name == "" {
		name = "files"
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".zip"))
	c.Status(http.StatusOK)

	if err := h.archiver.WriteZip(c.Request.Context(), c.Writer, req.Downloads, userID); err != nil {
		// Headers are already out; the truncated archive is the only
		// possible signal at this point.
		c.Error(err)
	}
}
