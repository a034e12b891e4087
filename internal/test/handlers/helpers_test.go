package handlers_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"media-storage-backend/internal/config"
	"media-storage-backend/internal/handlers"
	"media-storage-backend/internal/media"
	"media-storage-backend/internal/middleware"
	"media-storage-backend/internal/models"
	"media-storage-backend/internal/testutil"
)

// env wires the full handler stack against in-memory fakes, with a stub
// auth middleware injecting a fixed user.
type env struct {
	store  *testutil.MemStore
	meta   *testutil.MemMeta
	router *gin.Engine
	userID uuid.UUID
}

func handlerTestConfig() *config.Config {
	return &config.Config{
		CDNBaseURL: "http://cdn.test/media",
		Buckets: map[models.Bucket]config.BucketSpec{
			models.BucketImages: {Name: "images"},
			models.BucketDocs:   {Name: "docs"},
			models.BucketVideos: {Name: "videos"},
			models.BucketTmp:    {Name: "tmp", Temporary: true},
		},
		MimeTypes: map[models.Group][]string{
			models.GroupImages: {"image/jpeg", "image/png"},
			models.GroupDocs:   {"application/pdf"},
			models.GroupVideos: {"video/mp4"},
		},
		Preview: config.PreviewSpec{Width: 320, Height: 320, Fit: "fill"},
		Sizes: map[string]config.SizeSpec{
			"s": {Coefficient: 0.25},
			"m": {Coefficient: 1},
			"l": {Coefficient: 2},
		},
		ResizeWorkers: 2,
	}
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := handlerTestConfig()
	store := testutil.NewMemStore()
	meta := testutil.NewMemMeta()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	dispatcher := media.NewDispatcher()
	dispatcher.Register(models.GroupImages, media.NewImageFinisher(store, meta, cfg, log))
	dispatcher.Register(models.GroupDocs, media.NewDocFinisher(meta, cfg))
	dispatcher.Register(models.GroupVideos, media.NewVideoFinisher(meta, cfg))

	pipeline := media.NewPipeline(store, meta, media.NewClassifier(cfg.MimeTypes), dispatcher, 1<<20, true, log)
	resolver := media.NewResolver(store, meta)
	viewer := media.NewViewer(resolver, cfg.CDNBaseURL, "images", "docs", "videos")
	archiver := media.NewArchiver(resolver)

	userID := uuid.New()

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID.String())
		c.Next()
	})

	uploadHandler := handlers.NewUploadHandler(pipeline, true)
	mediaHandler := handlers.NewMediaHandler(viewer, resolver, true)
	downloadHandler := handlers.NewDownloadHandler(resolver, archiver, true)
	streamHandler := handlers.NewStreamHandler(resolver, store, 1024, true)

	api.POST("/media/upload", uploadHandler.Upload)
	api.GET("/media/show/:id", mediaHandler.Show)
	api.GET("/media/images/:id", mediaHandler.Image)
	api.GET("/media/docs/:id", mediaHandler.Document)
	api.GET("/media/videos/:id", mediaHandler.Video)
	api.GET("/media/download/:id", downloadHandler.Download)
	api.POST("/media/download/files", downloadHandler.DownloadArchive)
	api.GET("/media/streaming/:id", streamHandler.Stream)

	return &env{store: store, meta: meta, router: router, userID: userID}
}

func (e *env) seedDoc(t *testing.T, data []byte) string {
	t.Helper()
	id := uuid.New()
	key := id.String() + ".pdf"
	e.store.Seed(models.BucketDocs, key, data)
	ctx := context.Background()
	require.NoError(t, e.meta.CreateUpload(ctx, &models.Upload{ID: id, UserID: e.userID, Group: models.GroupDocs}))
	require.NoError(t, e.meta.CreateDocument(ctx, &models.Document{UploadID: id, MimeType: "application/pdf"}))
	require.NoError(t, e.meta.MarkUploadReady(ctx, id))
	return key
}

func (e *env) seedVideo(t *testing.T, data []byte) string {
	t.Helper()
	id := uuid.New()
	key := id.String() + ".mp4"
	e.store.Seed(models.BucketVideos, key, data)
	ctx := context.Background()
	require.NoError(t, e.meta.CreateUpload(ctx, &models.Upload{ID: id, UserID: e.userID, Group: models.GroupVideos}))
	require.NoError(t, e.meta.CreateVideo(ctx, &models.Video{UploadID: id, MimeType: "video/mp4"}))
	require.NoError(t, e.meta.MarkUploadReady(ctx, id))
	return key
}

func multipartBody(t *testing.T, parts map[string][2]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for filename, part := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, filename))
		h.Set("Content-Type", part[0])
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write([]byte(part[1]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}
