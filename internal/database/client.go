package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"media-storage-backend/internal/models"
)

// ErrNoRows reports that a lookup matched nothing. Callers translate it
// into their own not-found semantics.
var ErrNoRows = errors.New("no matching rows")

type Client struct {
	db *sql.DB
}

func NewClient(connectionString string) (*Client, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{db: db}, nil
}

func (c *Client) CreateUpload(ctx context.Context, upload *models.Upload) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO uploads (id, user_id, is_ready, media_group)
		VALUES ($1, $2, $3, $4)
	`, upload.ID, upload.UserID, upload.IsReady, upload.Group)
	if err != nil {
		return fmt.Errorf("failed to create upload: %w", err)
	}
	return nil
}

func (c *Client) GetUpload(ctx context.Context, id uuid.UUID) (*models.Upload, error) {
	var upload models.Upload
	err := c.db.QueryRowContext(ctx, `
		SELECT id, user_id, is_ready, media_group, error_message, created_at, updated_at, deleted_at
		FROM uploads
		WHERE id = $1 AND deleted_at IS NULL
	`, id).Scan(
		&upload.ID, &upload.UserID, &upload.IsReady, &upload.Group,
		&upload.ErrorMessage, &upload.CreatedAt, &upload.UpdatedAt, &upload.DeletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get upload: %w", err)
	}
	return &upload, nil
}

func (c *Client) MarkUploadReady(ctx context.Context, id uuid.UUID) error {
	res, err := c.db.ExecContext(ctx, `
		UPDATE uploads
		SET is_ready = TRUE, updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark upload ready: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRows
	}
	return nil
}

func (c *Client) MarkUploadFailed(ctx context.Context, id uuid.UUID, message string) error {
	_, err := c.db.ExecContext(ctx, `
		UPDATE uploads
		SET error_message = $1, updated_at = NOW()
		WHERE id = $2
	`, message, id)
	if err != nil {
		return fmt.Errorf("failed to mark upload failed: %w", err)
	}
	return nil
}

func (c *Client) CreateImage(ctx context.Context, image *models.Image) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO images (upload_id, size_type, mime_type, width, height)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (upload_id, size_type) DO UPDATE
		SET mime_type = EXCLUDED.mime_type, width = EXCLUDED.width, height = EXCLUDED.height
	`, image.UploadID, image.SizeType, image.MimeType, image.Width, image.Height)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	return nil
}

// FindImage looks up a variant row by upload, size label and extension.
// The extension is matched against the tail of the stored mime type.
func (c *Client) FindImage(ctx context.Context, uploadID uuid.UUID, sizeType, extension string) (*models.Image, error) {
	var image models.Image
	err := c.db.QueryRowContext(ctx, `
		SELECT upload_id, size_type, mime_type, width, height, created_at
		FROM images
		WHERE upload_id = $1 AND size_type = $2 AND mime_type LIKE '%' || $3
	`, uploadID, sizeType, extension).Scan(
		&image.UploadID, &image.SizeType, &image.MimeType,
		&image.Width, &image.Height, &image.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find image: %w", err)
	}
	return &image, nil
}

func (c *Client) ListImages(ctx context.Context, uploadID uuid.UUID) ([]models.Image, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT upload_id, size_type, mime_type, width, height, created_at
		FROM images
		WHERE upload_id = $1
		ORDER BY size_type ASC
	`, uploadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	var images []models.Image
	for rows.Next() {
		var image models.Image
		if err := rows.Scan(
			&image.UploadID, &image.SizeType, &image.MimeType,
			&image.Width, &image.Height, &image.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, image)
	}
	return images, rows.Err()
}

func (c *Client) CreateDocument(ctx context.Context, doc *models.Document) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO documents (upload_id, mime_type)
		VALUES ($1, $2)
		ON CONFLICT (upload_id) DO UPDATE SET mime_type = EXCLUDED.mime_type
	`, doc.UploadID, doc.MimeType)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (c *Client) FindDocument(ctx context.Context, uploadID uuid.UUID, extension string) (*models.Document, error) {
	var doc models.Document
	err := c.db.QueryRowContext(ctx, `
		SELECT upload_id, mime_type, created_at
		FROM documents
		WHERE upload_id = $1 AND mime_type LIKE '%' || $2
	`, uploadID, extension).Scan(&doc.UploadID, &doc.MimeType, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	return &doc, nil
}

func (c *Client) CreateVideo(ctx context.Context, video *models.Video) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO videos (upload_id, mime_type)
		VALUES ($1, $2)
		ON CONFLICT (upload_id) DO UPDATE SET mime_type = EXCLUDED.mime_type
	`, video.UploadID, video.MimeType)
	if err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}
	return nil
}

func (c *Client) FindVideo(ctx context.Context, uploadID uuid.UUID, extension string) (*models.Video, error) {
	var video models.Video
	err := c.db.QueryRowContext(ctx, `
		SELECT upload_id, mime_type, created_at
		FROM videos
		WHERE upload_id = $1 AND mime_type LIKE '%' || $2
	`, uploadID, extension).Scan(&video.UploadID, &video.MimeType, &video.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find video: %w", err)
	}
	return &video, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}
