package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"media-storage-backend/internal/models"
)

// Pipeline turns a multipart request body into a settled list of file
// descriptors. Each descriptor ends up either fully stored, classified
// and dispatched to its finisher, or carrying an error with no bytes
// left behind in the store.
type Pipeline struct {
	store       ObjectStore
	meta        MetadataStore
	classifier  *Classifier
	dispatcher  *Dispatcher
	maxFileSize uint64
	isDev       bool
	log         *slog.Logger
}

func NewPipeline(store ObjectStore, meta MetadataStore, classifier *Classifier, dispatcher *Dispatcher, maxFileSize uint64, isDev bool, log *slog.Logger) *Pipeline {
	return &Pipeline{
		store:       store,
		meta:        meta,
		classifier:  classifier,
		dispatcher:  dispatcher,
		maxFileSize: maxFileSize,
		isDev:       isDev,
		log:         log,
	}
}

// Ingest streams every file part of the request into the object store,
// classifying as it goes. Parts arrive sequentially on the wire, but
// each store write and its post-write validation run on their own
// goroutine, so the tail of one upload overlaps the next part. The
// returned slice preserves submission order. A malformed multipart
// stream aborts the whole request; everything else is isolated per file.
func (p *Pipeline) Ingest(ctx context.Context, r *http.Request, userID uuid.UUID) ([]models.FileDescriptor, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("failed to read multipart body: %w", err)
	}

	// Unsupported files land in the tmp bucket under a batch-scoped
	// prefix so concurrent batches never touch each other's objects.
	batchPrefix := "batch-" + uuid.New().String()

	var (
		wg    sync.WaitGroup
		descs []*models.FileDescriptor
	)

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed multipart stream: %w", err)
		}
		if part.FileName() == "" {
			continue
		}

		mimeType := part.Header.Get("Content-Type")
		bucket, group, supported := p.classifier.Classify(mimeType)

		id := uuid.New()
		extension := extensionFromMime(mimeType)
		key := primaryKey(id, extension)
		if !supported {
			key = batchPrefix + "/" + key
		}

		desc := &models.FileDescriptor{
			ID:        id,
			Key:       key,
			Extension: extension,
			MimeType:  mimeType,
			Filename:  part.FileName(),
			Group:     group,
			Bucket:    bucket,
		}
		descs = append(descs, desc)

		pr, pw := io.Pipe()
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.storeAndValidate(ctx, desc, supported, pr)
		}()

		// Cap the copy one byte past the ceiling: an oversized part is
		// truncated and flagged by the post-write size check, not
		// rejected mid-stream.
		if _, err := io.Copy(pw, io.LimitReader(part, int64(p.maxFileSize)+1)); err != nil {
			pw.CloseWithError(err)
		} else {
			pw.Close()
		}
	}

	wg.Wait()

	if err := p.removeFailed(ctx, descs); err != nil {
		p.log.Error("failed to clean up rejected uploads", "error", err)
	}

	p.finishSucceeded(ctx, descs, userID)

	out := make([]models.FileDescriptor, len(descs))
	for i, d := range descs {
		out[i] = *d
	}
	return out, nil
}

// storeAndValidate drains one part into the store, then runs the
// post-write checks: stored size against the ceiling and the declared
// mime type against the allow-lists. Total size is unknown until the
// store confirms completion, hence the read-back.
func (p *Pipeline) storeAndValidate(ctx context.Context, desc *models.FileDescriptor, supported bool, r io.ReadCloser) {
	defer r.Close()

	if err := p.store.Put(ctx, desc.Bucket, desc.Key, desc.MimeType, r); err != nil {
		p.log.Error("store write failed", "key", desc.Key, "error", err)
		desc.Error = p.newErrorInfo(http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}
	desc.IsSaved = true

	size, err := p.store.Size(ctx, desc.Bucket, desc.Key)
	if err != nil {
		p.log.Error("store size check failed", "key", desc.Key, "error", err)
		desc.Error = p.newErrorInfo(http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}
	desc.Size = size

	if !supported {
		desc.Error = p.newErrorInfo(
			http.StatusUnsupportedMediaType,
			"Unsupported mime type",
			fmt.Sprintf("supportedMimeTypes: %v, mimeType: %s", p.classifier.AllMimeTypes(), desc.MimeType),
		)
		return
	}
	if size > p.maxFileSize {
		desc.Error = p.newErrorInfo(
			http.StatusRequestEntityTooLarge,
			"Too big file",
			fmt.Sprintf("maxFileSize: %d bytes", p.maxFileSize),
		)
	}
}

// removeFailed deletes the stored bytes of every descriptor that was
// written but then rejected, before the batch response returns.
func (p *Pipeline) removeFailed(ctx context.Context, descs []*models.FileDescriptor) error {
	byBucket := make(map[models.Bucket][]string)
	for _, d := range descs {
		if d.IsSaved && d.Error != nil {
			byBucket[d.Bucket] = append(byBucket[d.Bucket], d.Key)
		}
	}
	for bucket, keys := range byBucket {
		if err := p.store.RemoveMany(ctx, bucket, keys); err != nil {
			return err
		}
	}
	return nil
}

// finishSucceeded persists an upload row per surviving descriptor and
// hands each to its group finisher. Finishers for different files run
// concurrently. A finisher failure marks the upload row failed and
// surfaces on the descriptor; it never aborts sibling files.
func (p *Pipeline) finishSucceeded(ctx context.Context, descs []*models.FileDescriptor, userID uuid.UUID) {
	var wg sync.WaitGroup
	for _, desc := range descs {
		if desc.Error != nil {
			continue
		}

		upload := &models.Upload{
			ID:     desc.ID,
			UserID: userID,
			Group:  desc.Group,
		}
		if err := p.meta.CreateUpload(ctx, upload); err != nil {
			p.log.Error("failed to persist upload", "id", desc.ID, "error", err)
			desc.Error = p.newErrorInfo(http.StatusInternalServerError, "Internal Server Error", err.Error())
			// The object was written before the row failed; delete it so
			// the store never holds bytes without a metadata row.
			if rmErr := p.store.Remove(ctx, desc.Bucket, desc.Key); rmErr != nil {
				p.log.Error("failed to remove orphaned object", "key", desc.Key, "error", rmErr)
			}
			continue
		}

		wg.Add(1)
		go func(desc *models.FileDescriptor) {
			defer wg.Done()
			enriched, err := p.dispatcher.Dispatch(ctx, desc)
			if err != nil {
				p.log.Error("finisher failed", "id", desc.ID, "group", desc.Group, "error", err)
				if markErr := p.meta.MarkUploadFailed(ctx, desc.ID, err.Error()); markErr != nil {
					p.log.Error("failed to mark upload failed", "id", desc.ID, "error", markErr)
				}
				desc.Error = p.newErrorInfo(http.StatusInternalServerError, "Internal Server Error", err.Error())
				return
			}
			if enriched != nil {
				*desc = *enriched
			}
		}(desc)
	}
	wg.Wait()
}

func (p *Pipeline) newErrorInfo(status int, title, detail string) *models.ErrorInfo {
	info := &models.ErrorInfo{
		Status: status,
		Title:  title,
		Detail: detail,
	}
	if p.isDev {
		info.Stack = string(debug.Stack())
	}
	return info
}
