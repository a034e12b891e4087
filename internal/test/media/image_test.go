package media_test

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"media-storage-backend/internal/media"
	"media-storage-backend/internal/models"
	"media-storage-backend/internal/testutil"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 120, G: 30, B: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func seedImageUpload(t *testing.T, store *testutil.MemStore, meta *testutil.MemMeta, userID uuid.UUID, width, height int) *models.FileDescriptor {
	t.Helper()
	id := uuid.New()
	key := id.String() + ".png"
	store.Seed(models.BucketImages, key, encodePNG(t, width, height))
	require.NoError(t, meta.CreateUpload(context.Background(), &models.Upload{
		ID:     id,
		UserID: userID,
		Group:  models.GroupImages,
	}))
	return &models.FileDescriptor{
		ID:        id,
		Key:       key,
		Extension: "png",
		MimeType:  "image/png",
		Filename:  "photo.png",
		Group:     models.GroupImages,
		Bucket:    models.BucketImages,
	}
}

func TestImageFinisher_GeneratesVariantsAndThumbnail(t *testing.T) {
	store := testutil.NewMemStore()
	meta := testutil.NewMemMeta()
	finisher := media.NewImageFinisher(store, meta, testConfig(), testLogger())

	desc := seedImageUpload(t, store, meta, uuid.New(), 1000, 800)
	enriched, err := finisher.Finish(context.Background(), desc)
	require.NoError(t, err)

	require.NotNil(t, enriched.Dimensions)
	assert.Equal(t, 1000, enriched.Dimensions.Width)
	assert.Equal(t, 800, enriched.Dimensions.Height)

	// Variant rows carry coefficient-scaled dimensions.
	wantSizes := map[string][2]int{
		"s": {250, 200},
		"m": {1000, 800},
		"l": {2000, 1600},
	}
	rows := meta.Images(desc.ID)
	require.Len(t, rows, len(wantSizes))
	for _, row := range rows {
		want, ok := wantSizes[row.SizeType]
		require.True(t, ok, "unexpected size type %q", row.SizeType)
		assert.Equal(t, want[0], row.Width, row.SizeType)
		assert.Equal(t, want[1], row.Height, row.SizeType)
		assert.Equal(t, "image/png", row.MimeType)

		variantKey := fmt.Sprintf("%s.%s.png", desc.ID, row.SizeType)
		data, ok := store.Object(models.BucketImages, variantKey)
		require.True(t, ok, "variant object %s", variantKey)

		img, err := imaging.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, want[0], img.Bounds().Dx(), row.SizeType)
		assert.Equal(t, want[1], img.Bounds().Dy(), row.SizeType)
	}

	// Fixed preview thumbnail.
	thumbKey := desc.ID.String() + ".thumb.png"
	data, ok := store.Object(models.BucketImages, thumbKey)
	require.True(t, ok)
	thumb, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 320, thumb.Bounds().Dx())
	assert.Equal(t, 320, thumb.Bounds().Dy())

	require.NotNil(t, enriched.Preview)
	assert.Equal(t, "http://cdn.test/media/images/"+thumbKey, enriched.Preview.URL)

	// Readiness flips only after all variants committed.
	upload, found := meta.Upload(desc.ID)
	require.True(t, found)
	assert.True(t, upload.IsReady)
}

func TestImageFinisher_FitPreviewPreservesAspect(t *testing.T) {
	store := testutil.NewMemStore()
	meta := testutil.NewMemMeta()
	cfg := testConfig()
	cfg.Preview.Fit = "fit"
	finisher := media.NewImageFinisher(store, meta, cfg, testLogger())

	desc := seedImageUpload(t, store, meta, uuid.New(), 1000, 800)
	_, err := finisher.Finish(context.Background(), desc)
	require.NoError(t, err)

	// In fit mode the thumbnail shrinks into the box instead of cropping
	// to cover it, so the source aspect ratio survives.
	data, ok := store.Object(models.BucketImages, desc.ID.String()+".thumb.png")
	require.True(t, ok)
	thumb, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 320, thumb.Bounds().Dx())
	assert.Equal(t, 256, thumb.Bounds().Dy())
}

func TestImageFinisher_VariantFailureLeavesUploadNotReady(t *testing.T) {
	store := testutil.NewMemStore()
	meta := testutil.NewMemMeta()
	finisher := media.NewImageFinisher(store, meta, testConfig(), testLogger())

	desc := seedImageUpload(t, store, meta, uuid.New(), 1000, 800)
	store.PutFailures[fmt.Sprintf("%s.l.png", desc.ID)] = fmt.Errorf("store unavailable")

	_, err := finisher.Finish(context.Background(), desc)
	require.Error(t, err)

	upload, found := meta.Upload(desc.ID)
	require.True(t, found)
	assert.False(t, upload.IsReady)
}

func TestImageFinisher_UndecodableImage(t *testing.T) {
	store := testutil.NewMemStore()
	meta := testutil.NewMemMeta()
	finisher := media.NewImageFinisher(store, meta, testConfig(), testLogger())

	id := uuid.New()
	key := id.String() + ".png"
	store.Seed(models.BucketImages, key, []byte("not a png"))
	require.NoError(t, meta.CreateUpload(context.Background(), &models.Upload{
		ID:    id,
		Group: models.GroupImages,
	}))

	_, err := finisher.Finish(context.Background(), &models.FileDescriptor{
		ID:        id,
		Key:       key,
		Extension: "png",
		MimeType:  "image/png",
		Group:     models.GroupImages,
		Bucket:    models.BucketImages,
	})
	assert.Error(t, err)
}
