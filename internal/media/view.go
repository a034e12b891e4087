package media

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"media-storage-backend/internal/models"
)

// Viewer assembles the public metadata view of a stored object: mime
// type, stored size, preview URL and, for images, pixel dimensions.
type Viewer struct {
	res          *Resolver
	cdnBase      string
	imagesBucket string
	docsBucket   string
	videosBucket string
}

func NewViewer(res *Resolver, cdnBase, imagesBucket, docsBucket, videosBucket string) *Viewer {
	return &Viewer{
		res:          res,
		cdnBase:      cdnBase,
		imagesBucket: imagesBucket,
		docsBucket:   docsBucket,
		videosBucket: videosBucket,
	}
}

func (v *Viewer) Describe(ctx context.Context, publicID string, userID uuid.UUID) (*models.MediaView, error) {
	upload, err := v.res.lookupOwned(ctx, publicID, userID)
	if err != nil {
		return nil, err
	}
	id, sizeType, extension, _ := parsePublicID(publicID)

	switch upload.Group {
	case models.GroupImages:
		return v.describeImage(ctx, publicID, id, sizeType, extension)

	case models.GroupDocs:
		doc, err := v.res.meta.FindDocument(ctx, id, extension)
		if err != nil {
			return nil, notFoundOr(err, "document %s.%s", id, extension)
		}
		size, err := v.res.store.Size(ctx, models.BucketDocs, publicID)
		if err != nil {
			return nil, err
		}
		return &models.MediaView{
			ID:       publicID,
			MimeType: doc.MimeType,
			Size:     size,
			Preview:  &models.Preview{URL: v.publicURL(v.docsBucket, publicID)},
		}, nil

	case models.GroupVideos:
		video, err := v.res.meta.FindVideo(ctx, id, extension)
		if err != nil {
			return nil, notFoundOr(err, "video %s.%s", id, extension)
		}
		size, err := v.res.store.Size(ctx, models.BucketVideos, publicID)
		if err != nil {
			return nil, err
		}
		return &models.MediaView{
			ID:       publicID,
			MimeType: video.MimeType,
			Size:     size,
			Preview:  &models.Preview{URL: v.publicURL(v.videosBucket, publicID)},
		}, nil

	default:
		return nil, fmt.Errorf("upload %s has unhandled group %q", id, upload.Group)
	}
}

func (v *Viewer) describeImage(ctx context.Context, publicID string, id uuid.UUID, sizeType, extension string) (*models.MediaView, error) {
	images, err := v.res.meta.ListImages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list images for %s: %w", id, err)
	}

	// A size-labelled id describes that variant. A bare id presents the
	// small variant, the view clients embed in listings.
	want := sizeType
	objectKey := publicID
	if want == "" {
		want = "s"
		objectKey = variantKey(id, want, extension)
	}
	var row *models.Image
	for i := range images {
		if images[i].SizeType == want && extensionFromMime(images[i].MimeType) == extension {
			row = &images[i]
			break
		}
	}
	if row == nil {
		return nil, fmt.Errorf("%w: image %s sizeType %s extension %s", ErrNotFound, id, want, extension)
	}

	size, err := v.res.store.Size(ctx, models.BucketImages, objectKey)
	if err != nil {
		return nil, err
	}
	return &models.MediaView{
		ID:         publicID,
		MimeType:   row.MimeType,
		Size:       size,
		Preview:    &models.Preview{URL: v.publicURL(v.imagesBucket, thumbKey(id))},
		Dimensions: &models.Dimensions{Width: row.Width, Height: row.Height},
	}, nil
}

func (v *Viewer) publicURL(bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", v.cdnBase, bucket, key)
}
