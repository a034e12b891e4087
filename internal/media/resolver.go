package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"media-storage-backend/internal/database"
	"media-storage-backend/internal/models"
)

// Resolver is the single authorized entry point for reading back any
// previously ingested object. It enforces ownership and verifies the
// corresponding metadata row exists before touching the store, so a key
// that was never actually persisted is a clean NotFound instead of an
// empty stream.
type Resolver struct {
	store ObjectStore
	meta  MetadataStore
}

func NewResolver(store ObjectStore, meta MetadataStore) *Resolver {
	return &Resolver{store: store, meta: meta}
}

// Group returns the upload's group without opening the store, used by
// the streaming dispatch to pick the video path.
func (r *Resolver) Group(ctx context.Context, publicID string, userID uuid.UUID) (models.Group, error) {
	upload, err := r.lookupOwned(ctx, publicID, userID)
	if err != nil {
		return "", err
	}
	return upload.Group, nil
}

// Resolve opens a streaming read of the object named by publicID.
// userID == uuid.Nil skips the ownership check (internal callers).
func (r *Resolver) Resolve(ctx context.Context, publicID string, userID uuid.UUID) (io.ReadCloser, error) {
	return r.ResolveGroup(ctx, publicID, userID, models.GroupAny)
}

// ResolveGroup is Resolve restricted to one group. An upload that exists
// but belongs to a different group reads as not found, so the group
// routes never leak objects across each other.
func (r *Resolver) ResolveGroup(ctx context.Context, publicID string, userID uuid.UUID, want models.Group) (io.ReadCloser, error) {
	upload, err := r.lookupOwned(ctx, publicID, userID)
	if err != nil {
		return nil, err
	}
	if want != models.GroupAny && upload.Group != want {
		return nil, fmt.Errorf("%w: upload %s is not in group %s", ErrNotFound, publicID, want)
	}

	id, sizeType, extension, _ := parsePublicID(publicID)

	switch upload.Group {
	case models.GroupImages:
		if err := r.verifyImage(ctx, id, sizeType, extension); err != nil {
			return nil, err
		}
		return r.open(ctx, models.BucketImages, publicID)

	case models.GroupDocs:
		if _, err := r.meta.FindDocument(ctx, id, extension); err != nil {
			return nil, notFoundOr(err, "document %s.%s", id, extension)
		}
		return r.open(ctx, models.BucketDocs, publicID)

	case models.GroupVideos:
		if _, err := r.meta.FindVideo(ctx, id, extension); err != nil {
			return nil, notFoundOr(err, "video %s.%s", id, extension)
		}
		return r.open(ctx, models.BucketVideos, publicID)

	default:
		return nil, fmt.Errorf("upload %s has unhandled group %q", id, upload.Group)
	}
}

func (r *Resolver) lookupOwned(ctx context.Context, publicID string, userID uuid.UUID) (*models.Upload, error) {
	id, _, _, err := parsePublicID(publicID)
	if err != nil {
		return nil, fmt.Errorf("%w: upload %q", ErrNotFound, publicID)
	}

	upload, err := r.meta.GetUpload(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "upload %s", id)
	}
	if userID != uuid.Nil && userID != upload.UserID {
		return nil, fmt.Errorf("%w: user %s has no access to file %s", ErrForbidden, userID, publicID)
	}
	return upload, nil
}

// verifyImage checks the variant row for a size-labelled key, or for a
// primary key ("uuid.ext") that any variant with the same extension
// exists, meaning the derivative chain actually ran.
func (r *Resolver) verifyImage(ctx context.Context, id uuid.UUID, sizeType, extension string) error {
	if sizeType != "" {
		if _, err := r.meta.FindImage(ctx, id, sizeType, extension); err != nil {
			return notFoundOr(err, "image %s sizeType %s extension %s", id, sizeType, extension)
		}
		return nil
	}

	images, err := r.meta.ListImages(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list images for %s: %w", id, err)
	}
	for _, img := range images {
		if extensionFromMime(img.MimeType) == extension {
			return nil
		}
	}
	return fmt.Errorf("%w: image %s with extension %s", ErrNotFound, id, extension)
}

func (r *Resolver) open(ctx context.Context, bucket models.Bucket, key string) (io.ReadCloser, error) {
	rc, err := r.store.Get(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s after existence check: %w", key, err)
	}
	return rc, nil
}

func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, database.ErrNoRows) {
		return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
	}
	return err
}
