package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
	"media-storage-backend/internal/config"
	"media-storage-backend/internal/models"
)

// ImageFinisher derives the fixed preview thumbnail and the configured
// size variants from a stored original. The upload is marked ready only
// after every variant's bytes and row have been committed.
type ImageFinisher struct {
	store      ObjectStore
	meta       MetadataStore
	cdnBase    string
	bucketName string
	preview    config.PreviewSpec
	sizes      map[string]config.SizeSpec
	workers    int
	log        *slog.Logger
}

func NewImageFinisher(store ObjectStore, meta MetadataStore, cfg *config.Config, log *slog.Logger) *ImageFinisher {
	return &ImageFinisher{
		store:      store,
		meta:       meta,
		cdnBase:    cfg.CDNBaseURL,
		bucketName: cfg.Buckets[models.BucketImages].Name,
		preview:    cfg.Preview,
		sizes:      cfg.Sizes,
		workers:    cfg.ResizeWorkers,
		log:        log,
	}
}

func (f *ImageFinisher) Finish(ctx context.Context, desc *models.FileDescriptor) (*models.FileDescriptor, error) {
	rc, err := f.store.Get(ctx, desc.Bucket, desc.Key)
	if err != nil {
		return nil, err
	}
	src, err := imaging.Decode(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", desc.Key, err)
	}

	bounds := src.Bounds()
	desc.Dimensions = &models.Dimensions{Width: bounds.Dx(), Height: bounds.Dy()}

	if err := f.writeThumbnail(ctx, desc, src); err != nil {
		return nil, err
	}

	if err := f.writeVariants(ctx, desc, src); err != nil {
		return nil, err
	}

	if err := f.meta.MarkUploadReady(ctx, desc.ID); err != nil {
		return nil, err
	}
	return desc, nil
}

func (f *ImageFinisher) writeThumbnail(ctx context.Context, desc *models.FileDescriptor, src image.Image) error {
	var thumb image.Image
	switch f.preview.Fit {
	case "fit":
		thumb = imaging.Fit(src, f.preview.Width, f.preview.Height, imaging.Lanczos)
	default:
		thumb = imaging.Fill(src, f.preview.Width, f.preview.Height, imaging.Center, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return fmt.Errorf("failed to encode thumbnail for %s: %w", desc.Key, err)
	}

	key := thumbKey(desc.ID)
	if err := f.store.Put(ctx, desc.Bucket, key, "image/png", &buf); err != nil {
		return err
	}

	desc.Preview = &models.Preview{
		URL: fmt.Sprintf("%s/%s/%s", f.cdnBase, f.bucketName, key),
	}
	return nil
}

// writeVariants generates all configured size variants concurrently.
// Resizes are CPU bound, so the group is capped at the configured worker
// count. The whole group is a barrier: a single failed variant fails the
// finisher and the upload stays not ready.
func (f *ImageFinisher) writeVariants(ctx context.Context, desc *models.FileDescriptor, src image.Image) error {
	format, err := imaging.FormatFromExtension(desc.Extension)
	if err != nil {
		return fmt.Errorf("no encoder for extension %q: %w", desc.Extension, err)
	}

	origW := desc.Dimensions.Width
	origH := desc.Dimensions.Height

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	for sizeType, spec := range f.sizes {
		sizeType, spec := sizeType, spec
		g.Go(func() error {
			width := int(math.Round(float64(origW) * spec.Coefficient))
			height := int(math.Round(float64(origH) * spec.Coefficient))

			variant := imaging.Resize(src, width, height, imaging.Lanczos)
			var buf bytes.Buffer
			if err := imaging.Encode(&buf, variant, format); err != nil {
				return fmt.Errorf("failed to encode %s variant of %s: %w", sizeType, desc.Key, err)
			}

			key := variantKey(desc.ID, sizeType, desc.Extension)
			if err := f.store.Put(gctx, desc.Bucket, key, desc.MimeType, &buf); err != nil {
				return err
			}

			return f.meta.CreateImage(gctx, &models.Image{
				UploadID: desc.ID,
				SizeType: sizeType,
				MimeType: desc.MimeType,
				Width:    width,
				Height:   height,
			})
		})
	}
	return g.Wait()
}
