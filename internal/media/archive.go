package media

import (
	"archive/zip"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"media-storage-backend/internal/models"
)

// Archiver streams a set of resolved objects into a zip written
// directly to w, one entry per requested item, in request order.
// Nothing is buffered to disk.
type Archiver struct {
	resolver *Resolver
}

func NewArchiver(resolver *Resolver) *Archiver {
	return &Archiver{resolver: resolver}
}

func (a *Archiver) WriteZip(ctx context.Context, w io.Writer, items []models.DownloadItem, userID uuid.UUID) error {
	zw := zip.NewWriter(w)
	for _, item := range items {
		rc, err := a.resolver.Resolve(ctx, item.ID, userID)
		if err != nil {
			return err
		}

		keyPart, extension := splitPublicID(item.ID)
		name := item.Name
		if name == "" {
			name = keyPart
		}

		entry, err := zw.Create(name + "." + extension)
		if err != nil {
			rc.Close()
			return fmt.Errorf("failed to create zip entry for %s: %w", item.ID, err)
		}
		if _, err := io.Copy(entry, rc); err != nil {
			rc.Close()
			return fmt.Errorf("failed to write zip entry for %s: %w", item.ID, err)
		}
		rc.Close()
	}
	return zw.Close()
}
