package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"media-storage-backend/internal/media"
	"media-storage-backend/internal/models"
)

type ImportHandler struct {
	importer *media.URLImporter
}

func NewImportHandler(importer *media.URLImporter) *ImportHandler {
	return &ImportHandler{importer: importer}
}

// ImportURLs godoc
// @Summary     Import images from remote URLs
// @Description Fetches every URL, validates and normalizes the images and
// @Description stores them under content-derived ids. Fails when fewer than
// @Description three images survive validation.
// @Tags        media
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ImportURLsResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /media/upload/urls [post]
func (h *ImportHandler) ImportURLs(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	var req models.ImportURLsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	ids, err := h.importer.Import(c.Request.Context(), req.URLs)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to import images",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, models.ImportURLsResponse{IDs: ids})
}
