package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"media-storage-backend/internal/models"
)

func TestUploadHandler_PartialSuccess(t *testing.T) {
	e := newEnv(t)

	body, contentType := multipartBody(t, map[string][2]string{
		"report.pdf": {"application/pdf", "pdf bytes"},
		"tool.exe":   {"application/x-msdownload", "MZ"},
	})
	req := httptest.NewRequest("POST", "/api/v1/media/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Files, 1)
	require.Len(t, resp.Errors, 1)

	assert.Equal(t, "report.pdf", resp.Files[0].Filename)
	assert.Equal(t, models.GroupDocs, resp.Files[0].Group)
	assert.NotNil(t, resp.Files[0].Preview)

	assert.Equal(t, "tool.exe", resp.Errors[0].FileName)
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.Errors[0].Status)
	assert.Equal(t, "Unsupported mime type", resp.Errors[0].Title)
}

func TestUploadHandler_NotMultipart(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest("POST", "/api/v1/media/upload", nil)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShowHandler(t *testing.T) {
	e := newEnv(t)
	key := e.seedDoc(t, []byte("pdf bytes"))

	req := httptest.NewRequest("GET", "/api/v1/media/show/"+key, nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var view models.MediaView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, key, view.ID)
	assert.Equal(t, "application/pdf", view.MimeType)
	assert.Equal(t, uint64(len("pdf bytes")), view.Size)
}

func TestShowHandler_UnknownID(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest("GET", "/api/v1/media/show/does-not-exist.pdf", nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInlineHandlers_GroupScoping(t *testing.T) {
	e := newEnv(t)
	docKey := e.seedDoc(t, []byte("pdf bytes"))

	// The matching group route serves the content.
	req := httptest.NewRequest("GET", "/api/v1/media/docs/"+docKey, nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pdf bytes", w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))

	// Another group's route does not leak it.
	req = httptest.NewRequest("GET", "/api/v1/media/images/"+docKey, nil)
	w = httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
