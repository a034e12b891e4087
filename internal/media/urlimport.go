package media

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
	"media-storage-backend/internal/models"
)

const (
	maxImportBytes = 15 << 20
	minImportSide  = 768
	maxImportSide  = 3072
	minUsableCount = 3
)

// URLImporter pulls images from remote URLs, normalizes them and stores
// them under content-derived keys. Oversized images are downscaled so
// the shorter side fits maxImportSide; anything below minImportSide is
// rejected. Keys are derived from a sha256 of the stored bytes, so the
// same image imported twice lands on the same key.
type URLImporter struct {
	store  ObjectStore
	client *http.Client
	log    *slog.Logger
}

func NewURLImporter(store ObjectStore, log *slog.Logger) *URLImporter {
	return &URLImporter{
		store:  store,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log,
	}
}

// Import fetches all URLs concurrently and stores every usable image.
// It fails when fewer than three images survive validation, listing the
// per-URL rejection reasons.
func (i *URLImporter) Import(ctx context.Context, urls []string) ([]string, error) {
	results := make([]string, len(urls))
	reasons := make([]string, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	for idx, url := range urls {
		idx, url := idx, url
		g.Go(func() error {
			key, err := i.importOne(gctx, url)
			if err != nil {
				reasons[idx] = err.Error()
				return nil
			}
			results[idx] = key
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var (
		keys []string
		bad  []string
	)
	for idx, key := range results {
		if key != "" {
			keys = append(keys, key)
		} else {
			i.log.Warn("rejected image import", "url", urls[idx], "reason", reasons[idx])
			bad = append(bad, fmt.Sprintf("№(%d): %s", idx+1, reasons[idx]))
		}
	}
	if len(keys) < minUsableCount {
		return nil, fmt.Errorf("less than %d usable images: %s", minUsableCount, strings.Join(bad, "; "))
	}
	return keys, nil
}

func (i *URLImporter) importOne(ctx context.Context, url string) (string, error) {
	data, err := i.fetchWithRetry(ctx, url, 3)
	if err != nil {
		return "", err
	}

	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("unsupported image format")
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if min(width, height) < minImportSide {
		return "", fmt.Errorf("width or height < %d", minImportSide)
	}

	if min(width, height) > maxImportSide {
		if width < height {
			src = imaging.Resize(src, maxImportSide, 0, imaging.Lanczos)
		} else {
			src = imaging.Resize(src, 0, maxImportSide, imaging.Lanczos)
		}
	}

	// jpeg stays jpeg, everything else is normalized to png.
	format := imaging.PNG
	extension := "png"
	if f, err := imaging.FormatFromExtension(extensionOf(url, data)); err == nil && f == imaging.JPEG {
		format = imaging.JPEG
		extension = "jpeg"
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, src, format); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	key := contentKey(buf.Bytes()) + "." + extension
	if err := i.store.Put(ctx, models.BucketImages, key, "image/"+extension, bytes.NewReader(buf.Bytes())); err != nil {
		return "", err
	}
	return key, nil
}

// fetchWithRetry downloads a URL with exponential backoff. Client-side
// rejections (401, 403, 404) are terminal and not retried.
func (i *URLImporter) fetchWithRetry(ctx context.Context, url string, maxRetries int) ([]byte, error) {
	backoffs := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		data, retryable, err := i.fetch(ctx, url)
		if err == nil {
			return data, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
		if attempt < len(backoffs) {
			select {
			case <-time.After(backoffs[attempt]):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

func (i *URLImporter) fetch(ctx context.Context, url string) (data []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := i.client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return nil, false, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	default:
		return nil, true, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxImportBytes+1))
	if err != nil {
		return nil, true, err
	}
	if len(data) > maxImportBytes {
		return nil, false, fmt.Errorf("fetch %s: body exceeds %d bytes", url, maxImportBytes)
	}
	return data, false, nil
}

// extensionOf guesses the source format from the URL suffix, falling
// back to the jpeg magic bytes.
func extensionOf(url string, data []byte) string {
	if idx := strings.LastIndex(url, "."); idx >= 0 && idx > strings.LastIndex(url, "/") {
		return strings.ToLower(url[idx+1:])
	}
	if len(data) >= 2 && data[0] == 0xff && data[1] == 0xd8 {
		return "jpeg"
	}
	return ""
}

// contentKey formats the leading 128 bits of a sha256 as a uuid-shaped
// string.
func contentKey(data []byte) string {
	sum := sha256.Sum256(data)
	l := hex.EncodeToString(sum[:])
	return fmt.Sprintf("%s-%s-%s-%s-%s", l[0:8], l[8:12], l[12:16], l[16:20], l[20:32])
}
