package media

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"media-storage-backend/internal/models"
)

// Sentinel errors for retrieval failures. Handlers map them onto HTTP
// status codes.
var (
	ErrNotFound  = errors.New("content not found")
	ErrForbidden = errors.New("access denied")
)

// ObjectStore is the object-store capability the media pipeline needs.
// Implemented by storage.Client; tests use an in-memory fake.
type ObjectStore interface {
	Put(ctx context.Context, bucket models.Bucket, key, contentType string, r io.Reader) error
	Get(ctx context.Context, bucket models.Bucket, key string) (io.ReadCloser, error)
	Size(ctx context.Context, bucket models.Bucket, key string) (uint64, error)
	Remove(ctx context.Context, bucket models.Bucket, key string) error
	RemoveMany(ctx context.Context, bucket models.Bucket, keys []string) error
}

// MetadataStore is the persistence capability for upload and derivative
// rows. Implemented by database.Client. Lookups report absence with
// database.ErrNoRows.
type MetadataStore interface {
	CreateUpload(ctx context.Context, upload *models.Upload) error
	GetUpload(ctx context.Context, id uuid.UUID) (*models.Upload, error)
	MarkUploadReady(ctx context.Context, id uuid.UUID) error
	MarkUploadFailed(ctx context.Context, id uuid.UUID, message string) error
	CreateImage(ctx context.Context, image *models.Image) error
	FindImage(ctx context.Context, uploadID uuid.UUID, sizeType, extension string) (*models.Image, error)
	ListImages(ctx context.Context, uploadID uuid.UUID) ([]models.Image, error)
	CreateDocument(ctx context.Context, doc *models.Document) error
	FindDocument(ctx context.Context, uploadID uuid.UUID, extension string) (*models.Document, error)
	CreateVideo(ctx context.Context, video *models.Video) error
	FindVideo(ctx context.Context, uploadID uuid.UUID, extension string) (*models.Video, error)
}
