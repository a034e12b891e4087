package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"media-storage-backend/internal/media"
	"media-storage-backend/internal/middleware"
	"media-storage-backend/internal/models"
	"media-storage-backend/internal/storage"
)

// writeError maps retrieval errors onto HTTP statuses. Error detail is
// only echoed back in development.
func writeError(c *gin.Context, err error, isDev bool) {
	status := http.StatusInternalServerError
	title := "Internal Server Error"

	switch {
	case errors.Is(err, media.ErrNotFound):
		status = http.StatusNotFound
		title = "content not found"
	case errors.Is(err, media.ErrForbidden):
		status = http.StatusForbidden
		title = "access denied"
	case errors.Is(err, storage.ErrInvalidRange):
		status = http.StatusRequestedRangeNotSatisfiable
		title = "invalid range"
	}

	resp := models.ErrorResponse{Error: title}
	if isDev {
		resp.Message = err.Error()
	}
	c.JSON(status, resp)
}

// currentUserID reads the authenticated user from the gin context. A
// missing or malformed value aborts the request.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid user id"})
		return uuid.Nil, false
	}
	return userID, true
}
