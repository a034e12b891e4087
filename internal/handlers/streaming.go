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
	"media-storage-backend/internal/storage"
)

// StreamHandler serves video content in bounded chunks with byte-range
// support for seekable playback.
type StreamHandler struct {
	resolver  *media.Resolver
	src       storage.RangeSource
	chunkSize uint64
	isDev     bool
}

func NewStreamHandler(resolver *media.Resolver, src storage.RangeSource, chunkSize uint64, isDev bool) *StreamHandler {
	return &StreamHandler{resolver: resolver, src: src, chunkSize: chunkSize, isDev: isDev}
}

// Stream godoc
// @Summary     Stream a video with byte-range support
// @Description Serves the object in bounded chunks. With a Range header the
// @Description response is 206 and covers exactly the requested window;
// @Description without one the full body streams back as 200. Only video
// @Description uploads are streamable; other ids read as not found.
// @Tags        media
// @Security    Bearer
// @Param       id path string true "Public file id"
// @Param       Range header string false "bytes=start-end"
// @Failure     404 {object} models.ErrorResponse
// @Failure     416 {object} models.ErrorResponse
// @Router      /media/streaming/{id} [get]
func (h *StreamHandler) Stream(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	publicID := c.Param("id")
	group, err := h.resolver.Group(c.Request.Context(), publicID, userID)
	if err != nil {
		writeError(c, err, h.isDev)
		return
	}
	if group != models.GroupVideos {
		writeError(c, fmt.Errorf("%w: upload %s is not streamable", media.ErrNotFound, publicID), h.isDev)
		return
	}

	rangeHeader := c.GetHeader("Range")
	reader, err := storage.NewRangeReader(
		c.Request.Context(), h.src, models.BucketVideos, publicID, 0, rangeHeader, h.chunkSize)
	if err != nil {
		writeError(c, err, h.isDev)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(publicID))
	if contentType == "" {
		contentType = "video/mp4"
	}
	c.Header("Accept-Ranges", "bytes")
	c.Header("Content-Type", contentType)

	start, end, explicit := reader.Window()
	if explicit {
		c.Header("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, reader.TotalLength()))
		c.Header("Content-Length", fmt.Sprintf("%d", end-start+1))
		c.Status(http.StatusPartialContent)
	} else {
		c.Header("Content-Length", fmt.Sprintf("%d", reader.TotalLength()))
		c.Status(http.StatusOK)
	}

	if _, err := io.Copy(c.Writer, reader); err != nil {
		// Status and headers are already out; record the aborted stream.
		c.Error(err)
	}
}
