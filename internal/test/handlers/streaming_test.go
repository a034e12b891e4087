package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"media-storage-backend/internal/handlers"
	"media-storage-backend/internal/media"
	"media-storage-backend/internal/middleware"
	"media-storage-backend/internal/models"
	"media-storage-backend/internal/storage"
)

func TestStreamHandler_FullBody(t *testing.T) {
	e := newEnv(t)
	data := bytes.Repeat([]byte("v"), 4096)
	key := e.seedVideo(t, data)

	req := httptest.NewRequest("GET", "/api/v1/media/streaming/"+key, nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bytes", w.Header().Get("Accept-Ranges"))
	assert.Equal(t, "4096", w.Header().Get("Content-Length"))
	assert.Equal(t, data, w.Body.Bytes())
}

func TestStreamHandler_ByteRange(t *testing.T) {
	e := newEnv(t)
	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i % 251)
	}
	key := e.seedVideo(t, data)

	req := httptest.NewRequest("GET", "/api/v1/media/streaming/"+key, nil)
	req.Header.Set("Range", "bytes=100-199")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusPartialContent, w.Code)
	assert.Equal(t, "bytes 100-199/4096", w.Header().Get("Content-Range"))
	assert.Equal(t, "100", w.Header().Get("Content-Length"))
	assert.Equal(t, data[100:200], w.Body.Bytes())
}

func TestStreamHandler_InvalidRange(t *testing.T) {
	e := newEnv(t)
	key := e.seedVideo(t, make([]byte, 1000))

	req := httptest.NewRequest("GET", "/api/v1/media/streaming/"+key, nil)
	req.Header.Set("Range", "bytes=5000-")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, w.Code)
}

// flakyRangeSource serves the first chunk, then fails every fetch.
type flakyRangeSource struct {
	storage.RangeSource
	calls int
}

func (s *flakyRangeSource) GetRange(ctx context.Context, bucket models.Bucket, key string, start, end int64) ([]byte, error) {
	s.calls++
	if s.calls > 1 {
		return nil, errors.New("connection reset by peer")
	}
	return s.RangeSource.GetRange(ctx, bucket, key, start, end)
}

func TestStreamHandler_MidStreamFailureIsRecorded(t *testing.T) {
	e := newEnv(t)
	key := e.seedVideo(t, bytes.Repeat([]byte("v"), 4096))

	resolver := media.NewResolver(e.store, e.meta)
	handler := handlers.NewStreamHandler(resolver, &flakyRangeSource{RangeSource: e.store}, 1024, true)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/media/streaming/"+key, nil)
	c.Params = gin.Params{{Key: "id", Value: key}}
	c.Set(middleware.UserIDKey, e.userID.String())

	handler.Stream(c)

	// Status went out with the first chunk; the abort lands on the
	// context errors instead of the response.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1024, w.Body.Len())
	require.Len(t, c.Errors, 1)
	assert.Contains(t, c.Errors[0].Error(), "range read")
}

func TestStreamHandler_OnlyVideosStream(t *testing.T) {
	e := newEnv(t)
	docKey := e.seedDoc(t, []byte("pdf bytes"))

	req := httptest.NewRequest("GET", "/api/v1/media/streaming/"+docKey, nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
