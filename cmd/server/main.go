// @title           Media Storage Backend API
// @version         1.0.0
// @description     Backend API for uploading, classifying and serving media files. Handles multipart uploads, image derivative generation, archive downloads and byte-range video streaming.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"media-storage-backend/internal/config"
	"media-storage-backend/internal/database"
	"media-storage-backend/internal/handlers"
	"media-storage-backend/internal/logger"
	"media-storage-backend/internal/media"
	"media-storage-backend/internal/middleware"
	"media-storage-backend/internal/models"
	"media-storage-backend/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	logFormat := "text"
	if !cfg.IsDevelopment() {
		logFormat = "json"
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: logFormat})

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Object store
	store, err := storage.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize object store", "error", err)
		os.Exit(1)
	}
	if err := store.EnsureBuckets(ctx); err != nil {
		log.Error("failed to ensure buckets", "error", err)
		os.Exit(1)
	}
	if err := store.SweepTemporary(ctx); err != nil {
		log.Warn("failed to sweep temporary buckets", "error", err)
	}

	// Database
	db, err := database.NewClient(cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to initialize database client", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	migrator, err := database.NewMigrator(cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to initialize migrator", "error", err)
		os.Exit(1)
	}
	if err := migrator.Run(); err != nil {
		migrator.Close()
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	migrator.Close()

	// Media pipeline
	classifier := media.NewClassifier(cfg.MimeTypes)
	dispatcher := media.NewDispatcher()
	dispatcher.Register(models.GroupImages, media.NewImageFinisher(store, db, cfg, log))
	dispatcher.Register(models.GroupDocs, media.NewDocFinisher(db, cfg))
	dispatcher.Register(models.GroupVideos, media.NewVideoFinisher(db, cfg))

	pipeline := media.NewPipeline(store, db, classifier, dispatcher, cfg.MaxFileSizeBytes(), cfg.IsDevelopment(), log)
	resolver := media.NewResolver(store, db)
	viewer := media.NewViewer(resolver, cfg.CDNBaseURL,
		cfg.Buckets[models.BucketImages].Name,
		cfg.Buckets[models.BucketDocs].Name,
		cfg.Buckets[models.BucketVideos].Name)
	archiver := media.NewArchiver(resolver)
	importer := media.NewURLImporter(store, log)

	// Handlers
	isDev := cfg.IsDevelopment()
	uploadHandler := handlers.NewUploadHandler(pipeline, isDev)
	mediaHandler := handlers.NewMediaHandler(viewer, resolver, isDev)
	downloadHandler := handlers.NewDownloadHandler(resolver, archiver, isDev)
	streamHandler := handlers.NewStreamHandler(resolver, store, cfg.StreamChunkSize, isDev)
	importHandler := handlers.NewImportHandler(importer)

	// Setup router
	router := gin.Default()
	router.Use(gin.Recovery())

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	api.POST("/media/upload", uploadHandler.Upload)
	api.POST("/media/upload/urls", importHandler.ImportURLs)

	api.GET("/media/show/:id", mediaHandler.Show)
	api.GET("/media/images/:id", mediaHandler.Image)
	api.GET("/media/docs/:id", mediaHandler.Document)
	api.GET("/media/videos/:id", mediaHandler.Video)

	api.GET("/media/download/:id", downloadHandler.Download)
	api.POST("/media/download/files", downloadHandler.DownloadArchive)

	api.GET("/media/streaming/:id", streamHandler.Stream)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Info("server starting", "port", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
