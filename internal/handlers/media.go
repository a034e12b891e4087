package handlers

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"media-storage-backend/internal/media"
	"media-storage-backend/internal/models"
)

type MediaHandler struct {
	viewer   *media.Viewer
	resolver *media.Resolver
	isDev    bool
}

func NewMediaHandler(viewer *media.Viewer, resolver *media.Resolver, isDev bool) *MediaHandler {
	return &MediaHandler{viewer: viewer, resolver: resolver, isDev: isDev}
}

// Show godoc
// @Summary     Describe a stored media object
// @Description Returns the metadata view (mime type, size, preview URL,
// @Description dimensions for images) without streaming the content.
// @Tags        media
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Public file id (uuid[.size].ext)"
// @Success     200 {object} models.MediaView
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /media/show/{id} [get]
func (h *MediaHandler) Show(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	view, err := h.viewer.Describe(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeError(c, err, h.isDev)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Image serves an image object inline. An id that belongs to another
// group reads as not found.
func (h *MediaHandler) Image(c *gin.Context) {
	h.serveInline(c, models.GroupImages)
}

// Document serves a document object inline.
func (h *MediaHandler) Document(c *gin.Context) {
	h.serveInline(c, models.GroupDocs)
}

// Video serves a video object inline, whole-body. Range playback goes
// through the streaming endpoint.
func (h *MediaHandler) Video(c *gin.Context) {
	h.serveInline(c, models.GroupVideos)
}

func (h *MediaHandler) serveInline(c *gin.Context, group models.Group) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	publicID := c.Param("id")
	rc, err := h.resolver.ResolveGroup(c.Request.Context(), publicID, userID, group)
	if err != nil {
		writeError(c, err, h.isDev)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(publicID))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	io.Copy(c.Writer, rc)
}
