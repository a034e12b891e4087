package media

import (
	"context"
	"fmt"

	"media-storage-backend/internal/config"
	"media-storage-backend/internal/models"
)

// DocFinisher persists the document metadata row. Docs have no
// derivative fan-out, so the upload is ready as soon as the row commits.
type DocFinisher struct {
	meta       MetadataStore
	cdnBase    string
	bucketName string
}

func NewDocFinisher(meta MetadataStore, cfg *config.Config) *DocFinisher {
	return &DocFinisher{
		meta:       meta,
		cdnBase:    cfg.CDNBaseURL,
		bucketName: cfg.Buckets[models.BucketDocs].Name,
	}
}

func (f *DocFinisher) Finish(ctx context.Context, desc *models.FileDescriptor) (*models.FileDescriptor, error) {
	err := f.meta.CreateDocument(ctx, &models.Document{
		UploadID: desc.ID,
		MimeType: desc.MimeType,
	})
	if err != nil {
		return nil, err
	}
	if err := f.meta.MarkUploadReady(ctx, desc.ID); err != nil {
		return nil, err
	}

	desc.Preview = &models.Preview{
		URL: fmt.Sprintf("%s/%s/%s", f.cdnBase, f.bucketName, desc.Key),
	}
	return desc, nil
}

// VideoFinisher mirrors DocFinisher for the videos group.
type VideoFinisher struct {
	meta       MetadataStore
	cdnBase    string
	bucketName string
}

func NewVideoFinisher(meta MetadataStore, cfg *config.Config) *VideoFinisher {
	return &VideoFinisher{
		meta:       meta,
		cdnBase:    cfg.CDNBaseURL,
		bucketName: cfg.Buckets[models.BucketVideos].Name,
	}
}

func (f *VideoFinisher) Finish(ctx context.Context, desc *models.FileDescriptor) (*models.FileDescriptor, error) {
	err := f.meta.CreateVideo(ctx, &models.Video{
		UploadID: desc.ID,
		MimeType: desc.MimeType,
	})
	if err != nil {
		return nil, err
	}
	if err := f.meta.MarkUploadReady(ctx, desc.ID); err != nil {
		return nil, err
	}

	desc.Preview = &models.Preview{
		URL: fmt.Sprintf("%s/%s/%s", f.cdnBase, f.bucketName, desc.Key),
	}
	return desc, nil
}
