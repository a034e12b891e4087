package testutil

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"media-storage-backend/internal/database"
	"media-storage-backend/internal/models"
)

// MemMeta is an in-memory metadata store for tests. Lookups report
// absence with database.ErrNoRows, like the real client.
type MemMeta struct {
	mu      sync.Mutex
	uploads map[uuid.UUID]*models.Upload
	images  map[uuid.UUID][]models.Image
	docs    map[uuid.UUID]*models.Document
	videos  map[uuid.UUID]*models.Video
}

func NewMemMeta() *MemMeta {
	return &MemMeta{
		uploads: make(map[uuid.UUID]*models.Upload),
		images:  make(map[uuid.UUID][]models.Image),
		docs:    make(map[uuid.UUID]*models.Document),
		videos:  make(map[uuid.UUID]*models.Video),
	}
}

func (m *MemMeta) CreateUpload(ctx context.Context, upload *models.Upload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *upload
	m.uploads[upload.ID] = &cp
	return nil
}

func (m *MemMeta) GetUpload(ctx context.Context, id uuid.UUID) (*models.Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	upload, ok := m.uploads[id]
	if !ok || upload.DeletedAt.Valid {
		return nil, database.ErrNoRows
	}
	cp := *upload
	return &cp, nil
}

func (m *MemMeta) MarkUploadReady(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	upload, ok := m.uploads[id]
	if !ok {
		return database.ErrNoRows
	}
	upload.IsReady = true
	return nil
}

func (m *MemMeta) MarkUploadFailed(ctx context.Context, id uuid.UUID, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	upload, ok := m.uploads[id]
	if !ok {
		return database.ErrNoRows
	}
	upload.IsReady = false
	upload.ErrorMessage = sql.NullString{String: message, Valid: true}
	return nil
}

func (m *MemMeta) CreateImage(ctx context.Context, image *models.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.images[image.UploadID]
	for i := range rows {
		if rows[i].SizeType == image.SizeType {
			rows[i] = *image
			return nil
		}
	}
	m.images[image.UploadID] = append(rows, *image)
	return nil
}

func (m *MemMeta) FindImage(ctx context.Context, uploadID uuid.UUID, sizeType, extension string) (*models.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, img := range m.images[uploadID] {
		if img.SizeType == sizeType && mimeHasExtension(img.MimeType, extension) {
			cp := img
			return &cp, nil
		}
	}
	return nil, database.ErrNoRows
}

func (m *MemMeta) ListImages(ctx context.Context, uploadID uuid.UUID) ([]models.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Image, len(m.images[uploadID]))
	copy(out, m.images[uploadID])
	return out, nil
}

func (m *MemMeta) CreateDocument(ctx context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *doc
	m.docs[doc.UploadID] = &cp
	return nil
}

func (m *MemMeta) FindDocument(ctx context.Context, uploadID uuid.UUID, extension string) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[uploadID]
	if !ok || !mimeHasExtension(doc.MimeType, extension) {
		return nil, database.ErrNoRows
	}
	cp := *doc
	return &cp, nil
}

func (m *MemMeta) CreateVideo(ctx context.Context, video *models.Video) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *video
	m.videos[video.UploadID] = &cp
	return nil
}

func (m *MemMeta) FindVideo(ctx context.Context, uploadID uuid.UUID, extension string) (*models.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	video, ok := m.videos[uploadID]
	if !ok || !mimeHasExtension(video.MimeType, extension) {
		return nil, database.ErrNoRows
	}
	cp := *video
	return &cp, nil
}

// Upload returns the stored upload row without the ErrNoRows mapping.
func (m *MemMeta) Upload(id uuid.UUID) (*models.Upload, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	upload, ok := m.uploads[id]
	if !ok {
		return nil, false
	}
	cp := *upload
	return &cp, true
}

// Images returns the variant rows of one upload.
func (m *MemMeta) Images(id uuid.UUID) []models.Image {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Image, len(m.images[id]))
	copy(out, m.images[id])
	return out
}

func mimeHasExtension(mimeType, extension string) bool {
	if extension == "" {
		return true
	}
	return len(mimeType) >= len(extension) && mimeType[len(mimeType)-len(extension):] == extension
}
