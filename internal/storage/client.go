package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"media-storage-backend/internal/config"
	"media-storage-backend/internal/models"
)

// Client wraps an S3-compatible object store and resolves logical
// buckets to their configured physical names.
type Client struct {
	mc      *minio.Client
	region  string
	buckets map[models.Bucket]config.BucketSpec
}

func NewClient(cfg *config.Config) (*Client, error) {
	mc, err := minio.New(cfg.StoreEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.StoreAccessKey, cfg.StoreSecretKey, ""),
		Secure: cfg.StoreUseSSL,
		Region: cfg.StoreRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	return &Client{
		mc:      mc,
		region:  cfg.StoreRegion,
		buckets: cfg.Buckets,
	}, nil
}

func (c *Client) bucketName(bucket models.Bucket) (string, error) {
	spec, ok := c.buckets[bucket]
	if !ok {
		return "", fmt.Errorf("unknown bucket %q", bucket)
	}
	return spec.Name, nil
}

// Put streams r into (bucket, key). The object size is unknown up
// front, so the client runs a multipart upload under the hood.
func (c *Client) Put(ctx context.Context, bucket models.Bucket, key, contentType string, r io.Reader) error {
	name, err := c.bucketName(bucket)
	if err != nil {
		return err
	}
	_, err = c.mc.PutObject(ctx, name, key, r, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to store %s/%s: %w", name, key, err)
	}
	return nil
}

// Get opens a streaming read of the whole object.
func (c *Client) Get(ctx context.Context, bucket models.Bucket, key string) (io.ReadCloser, error) {
	name, err := c.bucketName(bucket)
	if err != nil {
		return nil, err
	}
	obj, err := c.mc.GetObject(ctx, name, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s/%s: %w", name, key, err)
	}
	return obj, nil
}

// GetRange fetches the inclusive byte window [start, end] of the object.
func (c *Client) GetRange(ctx context.Context, bucket models.Bucket, key string, start, end int64) ([]byte, error) {
	name, err := c.bucketName(bucket)
	if err != nil {
		return nil, err
	}
	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(start, end); err != nil {
		return nil, fmt.Errorf("invalid range %d-%d: %w", start, end, err)
	}
	obj, err := c.mc.GetObject(ctx, name, key, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open range of %s/%s: %w", name, key, err)
	}
	defer obj.Close()

	buf := bytes.NewBuffer(make([]byte, 0, end-start+1))
	if _, err := io.Copy(buf, obj); err != nil {
		return nil, fmt.Errorf("failed to read range %d-%d of %s/%s: %w", start, end, name, key, err)
	}
	return buf.Bytes(), nil
}

// Size heads the object and returns its content length.
func (c *Client) Size(ctx context.Context, bucket models.Bucket, key string) (uint64, error) {
	name, err := c.bucketName(bucket)
	if err != nil {
		return 0, err
	}
	info, err := c.mc.StatObject(ctx, name, key, minio.StatObjectOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s/%s: %w", name, key, err)
	}
	return uint64(info.Size), nil
}

func (c *Client) Remove(ctx context.Context, bucket models.Bucket, key string) error {
	name, err := c.bucketName(bucket)
	if err != nil {
		return err
	}
	if err := c.mc.RemoveObject(ctx, name, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove %s/%s: %w", name, key, err)
	}
	return nil
}

func (c *Client) RemoveMany(ctx context.Context, bucket models.Bucket, keys []string) error {
	for _, key := range keys {
		if err := c.Remove(ctx, bucket, key); err != nil {
			return err
		}
	}
	return nil
}

// EnsureBuckets creates any configured bucket that does not exist yet.
func (c *Client) EnsureBuckets(ctx context.Context) error {
	for _, spec := range c.buckets {
		exists, err := c.mc.BucketExists(ctx, spec.Name)
		if err != nil {
			return fmt.Errorf("failed to check bucket %s: %w", spec.Name, err)
		}
		if exists {
			continue
		}
		if err := c.mc.MakeBucket(ctx, spec.Name, minio.MakeBucketOptions{Region: c.region}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", spec.Name, err)
		}
	}
	return nil
}

// SweepTemporary removes leftover objects from buckets flagged as
// temporary. Batch-scoped prefixes keep concurrent batches apart while
// the process runs; the sweep reclaims whatever earlier runs left behind.
func (c *Client) SweepTemporary(ctx context.Context) error {
	for _, spec := range c.buckets {
		if !spec.Temporary {
			continue
		}
		for obj := range c.mc.ListObjects(ctx, spec.Name, minio.ListObjectsOptions{Recursive: true}) {
			if obj.Err != nil {
				return fmt.Errorf("failed to list bucket %s: %w", spec.Name, obj.Err)
			}
			if err := c.mc.RemoveObject(ctx, spec.Name, obj.Key, minio.RemoveObjectOptions{}); err != nil {
				return fmt.Errorf("failed to remove %s/%s: %w", spec.Name, obj.Key, err)
			}
		}
	}
	return nil
}
