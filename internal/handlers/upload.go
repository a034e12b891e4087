package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"media-storage-backend/internal/media"
	"media-storage-backend/internal/models"
)

type UploadHandler struct {
	pipeline *media.Pipeline
	isDev    bool
}

func NewUploadHandler(pipeline *media.Pipeline, isDev bool) *UploadHandler {
	return &UploadHandler{pipeline: pipeline, isDev: isDev}
}

// Upload godoc
// @Summary     Upload a batch of files
// @Description Streams every part of the multipart body into the object store.
// @Description Files that fail (unsupported type, size limit, storage error) are
// @Description reported per file; the rest of the batch still succeeds.
// @Tags        media
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.UploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /media/upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	descs, err := h.pipeline.Ingest(c.Request.Context(), c.Request, userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read multipart body",
			Message: err.Error(),
		})
		return
	}

	// Partition into saved files and per-file errors, keeping the
	// submission order within each list.
	response := models.UploadResponse{
		Files:  make([]models.FileDescriptor, 0, len(descs)),
		Errors: make([]models.ErrorInfo, 0),
	}
	for _, desc := range descs {
		if desc.Error != nil {
			info := *desc.Error
			info.FileName = desc.Filename
			// Validation detail (mime lists, size ceilings) is meant for
			// the client; internal failure detail is not.
			if !h.isDev && info.Status == http.StatusInternalServerError {
				info.Detail = ""
			}
			response.Errors = append(response.Errors, info)
			continue
		}
		response.Files = append(response.Files, desc)
	}

	c.JSON(http.StatusOK, response)
}
