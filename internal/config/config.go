package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"media-storage-backend/internal/models"
)

// BucketSpec maps a logical bucket to its physical name. Temporary
// buckets hold batch-scoped objects and are swept at startup.
type BucketSpec struct {
	Name      string
	Temporary bool
}

// SizeSpec describes one configured image size variant. Variant
// dimensions are derived from the original as round(dim * Coefficient),
// so the aspect ratio is always preserved.
type SizeSpec struct {
	Coefficient float64
}

// PreviewSpec describes the thumbnail derived for every image upload.
// Fit "fill" crops to cover the exact box; "fit" shrinks to fit inside
// it, preserving aspect.
type PreviewSpec struct {
	Width  int
	Height int
	Fit    string
}

type Config struct {
	// Server
	Port        string
	Environment string
	BaseURL     string
	LogLevel    string

	// Auth
	JWTSecret string

	// Database
	DatabaseURL string

	// Object store (S3-compatible)
	StoreEndpoint  string
	StoreAccessKey string
	StoreSecretKey string
	StoreRegion    string
	StoreUseSSL    bool

	// Media
	CDNBaseURL      string
	Buckets         map[models.Bucket]BucketSpec
	MimeTypes       map[models.Group][]string
	MaxFileSizeMB   int
	Preview         PreviewSpec
	Sizes           map[string]SizeSpec
	StreamChunkSize uint64
	ResizeWorkers   int
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		StoreEndpoint:  getEnv("MEDIA_S3_URL", "127.0.0.1:9000"),
		StoreAccessKey: getEnv("MEDIA_S3_ACCESS_KEY_ID", ""),
		StoreSecretKey: getEnv("MEDIA_S3_ACCESS_KEY", ""),
		StoreRegion:    getEnv("MEDIA_S3_REGION", "us-west-2"),
		StoreUseSSL:    getEnv("MEDIA_S3_USE_SSL", "false") == "true",

		CDNBaseURL: getEnv("CDN_BASE_URL", "http://localhost:8080/media"),
		Buckets: map[models.Bucket]BucketSpec{
			models.BucketImages: {Name: getEnv("MEDIA_S3_IMAGES_BUCKET", "images")},
			models.BucketDocs:   {Name: getEnv("MEDIA_S3_DOCS_BUCKET", "docs")},
			models.BucketVideos: {Name: getEnv("MEDIA_S3_VIDEOS_BUCKET", "videos")},
			models.BucketTmp:    {Name: getEnv("MEDIA_S3_TMP_BUCKET", "tmp"), Temporary: true},
		},
		MimeTypes: map[models.Group][]string{
			models.GroupImages: splitList(getEnv("MEDIA_IMAGE_MIME_TYPES", "image/jpeg,image/gif,image/png,image/tiff")),
			models.GroupDocs:   splitList(getEnv("MEDIA_DOC_MIME_TYPES", "application/pdf")),
			models.GroupVideos: splitList(getEnv("MEDIA_VIDEO_MIME_TYPES", "video/mp4,video/webm")),
		},
		MaxFileSizeMB: getEnvInt("MEDIA_MAX_FILE_SIZE_MB", 10),
		Preview:       PreviewSpec{Width: 320, Height: 320, Fit: getEnv("MEDIA_PREVIEW_FIT", "fill")},
		Sizes: map[string]SizeSpec{
			"s": {Coefficient: 0.25},
			"m": {Coefficient: 1},
			"l": {Coefficient: 2},
		},
		StreamChunkSize: uint64(getEnvInt("MEDIA_STREAM_CHUNK_BYTES", 1024*1024)),
		ResizeWorkers:   getEnvInt("MEDIA_RESIZE_WORKERS", 4),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.StoreAccessKey == "" {
		return fmt.Errorf("MEDIA_S3_ACCESS_KEY_ID is required")
	}
	if c.StoreSecretKey == "" {
		return fmt.Errorf("MEDIA_S3_ACCESS_KEY is required")
	}
	if c.MaxFileSizeMB <= 0 {
		return fmt.Errorf("MEDIA_MAX_FILE_SIZE_MB must be positive")
	}
	if c.StreamChunkSize == 0 {
		return fmt.Errorf("MEDIA_STREAM_CHUNK_BYTES must be positive")
	}
	return nil
}

// MaxFileSizeBytes converts the configured megabyte ceiling to bytes.
func (c *Config) MaxFileSizeBytes() uint64 {
	return uint64(c.MaxFileSizeMB) * 1024 * 1024
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
